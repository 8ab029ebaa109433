package store

// Model is a key and value pair read from a store.
type Model struct {
	Key   []byte
	Value []byte
}

// SliceIterator iterates over models materialized in memory.
type SliceIterator struct {
	data []Model
	idx  int
}

var _ Iterator = (*SliceIterator)(nil)

// NewSliceIterator returns an iterator over data, which must already be
// in iteration order.
func NewSliceIterator(data []Model) *SliceIterator {
	return &SliceIterator{data: data}
}

func (s *SliceIterator) Valid() bool {
	return s.idx < len(s.data)
}

// Next panics when the iterator is exhausted.
func (s *SliceIterator) Next() {
	s.mustBeValid()
	s.idx++
}

func (s *SliceIterator) Key() []byte {
	s.mustBeValid()
	return s.data[s.idx].Key
}

func (s *SliceIterator) Value() []byte {
	s.mustBeValid()
	return s.data[s.idx].Value
}

func (s *SliceIterator) Close() {
	s.data = nil
}

func (s *SliceIterator) mustBeValid() {
	if s.idx >= len(s.data) {
		panic("iterator exhausted")
	}
}

// emptyStore is the bottom layer of an in-memory store.
type emptyStore struct{}

var _ ReadOnlyKVStore = emptyStore{}

func (emptyStore) Get(key []byte) ([]byte, error) { return nil, nil }

func (emptyStore) Has(key []byte) (bool, error) { return false, nil }

func (emptyStore) Iterator(start, end []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}
