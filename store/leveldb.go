package store

import (
	"github.com/iov-one/quorum/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDB is a persistent KVStore. Writes made through a cache wrap are
// flushed in a single atomic leveldb batch.
type LevelDB struct {
	db *leveldb.DB
}

var _ CacheableKVStore = (*LevelDB)(nil)

// NewLevelDB opens or creates a database at the given path.
func NewLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{ErrorIfMissing: false})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open %s: %s", path, err)
	}
	return &LevelDB{db: db}, nil
}

// Get returns nil if the key does not exist.
func (l *LevelDB) Get(key []byte) ([]byte, error) {
	data, err := l.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return data, nil
}

// Has checks if the key exists.
func (l *LevelDB) Has(key []byte) (bool, error) {
	ok, err := l.db.Has(key, nil)
	if err != nil {
		return false, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return ok, nil
}

// Set stores a key-value pair in the database.
func (l *LevelDB) Set(key, value []byte) error {
	if err := l.db.Put(key, value, nil); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// Delete removes the key from the database.
func (l *LevelDB) Delete(key []byte) error {
	if err := l.db.Delete(key, nil); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// Iterator reads all pairs within [start, end) into memory.
func (l *LevelDB) Iterator(start, end []byte) (Iterator, error) {
	it := l.db.NewIterator(&util.Range{Start: start, Limit: end}, nil)
	defer it.Release()

	var res []Model
	for it.Next() {
		// leveldb reuses the buffers between steps
		k := append([]byte(nil), it.Key()...)
		v := append([]byte(nil), it.Value()...)
		res = append(res, Model{Key: k, Value: v})
	}
	if err := it.Error(); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return NewSliceIterator(res), nil
}

// NewBatch returns an atomic batch.
func (l *LevelDB) NewBatch() Batch {
	return &levelBatch{db: l.db, batch: new(leveldb.Batch)}
}

// CacheWrap returns a scratch pad that is flushed atomically on Write.
func (l *LevelDB) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(l, l.NewBatch(), nil)
}

// Close shuts down the database connection.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

type levelBatch struct {
	db    *leveldb.DB
	batch *leveldb.Batch
}

func (b *levelBatch) Set(key, value []byte) error {
	b.batch.Put(key, value)
	return nil
}

func (b *levelBatch) Delete(key []byte) error {
	b.batch.Delete(key)
	return nil
}

func (b *levelBatch) Write() error {
	err := b.db.Write(b.batch, &opt.WriteOptions{Sync: true})
	b.batch.Reset()
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}
