package quorum

// ReadOnlyKVStore reads the raw state of a chain. Keys must not be nil.
type ReadOnlyKVStore interface {
	// Get returns nil when the key is absent.
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	// Iterator walks [start, end) in ascending key order. A nil bound is
	// open. The domain must not be written while the iterator is open.
	Iterator(start, end []byte) (Iterator, error)
}

// SetDeleter is the write half shared by stores and batches.
type SetDeleter interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// KVStore is a readable and writable store.
type KVStore interface {
	ReadOnlyKVStore
	SetDeleter
	// NewBatch returns a batch applied to this store on Write.
	NewBatch() Batch
}

// Batch groups writes that are applied together.
type Batch interface {
	SetDeleter
	Write() error
}

// Iterator is a cursor over a key range.
//
//	it, err := kv.Iterator(start, end)
//	...
//	defer it.Close()
//	for ; it.Valid(); it.Next() {
//		k, v := it.Key(), it.Value()
//	}
//
// Next, Key and Value panic once Valid returns false.
type Iterator interface {
	Valid() bool
	Next()
	Key() []byte
	Value() []byte
	Close()
}

// CacheableKVStore can buffer writes in a KVCacheWrap. Every call frame
// of a chain runs on its own wrap, so that a failing frame leaves no
// trace.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap is a scratch pad over a parent store. Reads see the buffered
// writes. Write applies them to the parent, Discard drops them.
type KVCacheWrap interface {
	CacheableKVStore
	Write() error
	Discard()
}
