package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/quorum/errors"
)

// freeListSize is the number of released nodes kept for reuse.
const freeListSize = btree.DefaultFreeListSize

// MemStore returns a store kept only in memory.
func MemStore() CacheableKVStore {
	return NewBTreeCacheWrap(emptyStore{}, nopBatch{}, nil)
}

// nopBatch drops everything written to it. The btree of a MemStore is the
// only copy of its data.
type nopBatch struct{}

func (nopBatch) Set(key, value []byte) error { return nil }
func (nopBatch) Delete(key []byte) error     { return nil }
func (nopBatch) Write() error                { return nil }

// BTreeCacheWrap buffers writes in a btree over a read only parent. The
// writes reach the parent through batch when the wrap is written.
type BTreeCacheWrap struct {
	bt    *btree.BTree
	free  *btree.FreeList
	back  ReadOnlyKVStore
	batch Batch
}

var _ KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap returns an empty wrap over kv. free may be nil, wraps
// stacked on each other share one list.
func NewBTreeCacheWrap(kv ReadOnlyKVStore, batch Batch, free *btree.FreeList) BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(freeListSize)
	}
	return BTreeCacheWrap{
		bt:    btree.NewWithFreeList(2, free),
		free:  free,
		back:  kv,
		batch: batch,
	}
}

// CacheWrap stacks another wrap on this one. Each call frame of a chain
// runs on its own wrap.
func (b BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b, b.NewBatch(), b.free)
}

func (b BTreeCacheWrap) NewBatch() Batch {
	return &opLog{out: b}
}

// Write flushes the buffered writes into the parent and empties the wrap.
func (b BTreeCacheWrap) Write() error {
	err := b.batch.Write()
	b.Discard()
	return err
}

// Discard drops the buffered writes.
func (b BTreeCacheWrap) Discard() {
	for b.bt.DeleteMin() != nil {
	}
}

func (b BTreeCacheWrap) Set(key, value []byte) error {
	if key == nil {
		panic("nil key")
	}
	b.bt.ReplaceOrInsert(setItem{bkey{key}, value})
	return b.batch.Set(key, value)
}

func (b BTreeCacheWrap) Delete(key []byte) error {
	if key == nil {
		panic("nil key")
	}
	b.bt.ReplaceOrInsert(deletedItem{bkey{key}})
	return b.batch.Delete(key)
}

func (b BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	res := b.bt.Get(bkey{key})
	if res != nil {
		switch t := res.(type) {
		case setItem:
			return t.value, nil
		case deletedItem:
			return nil, nil
		default:
			return nil, errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", res)
		}
	}
	return b.back.Get(key)
}

func (b BTreeCacheWrap) Has(key []byte) (bool, error) {
	res := b.bt.Get(bkey{key})
	if res != nil {
		switch res.(type) {
		case setItem:
			return true, nil
		case deletedItem:
			return false, nil
		default:
			return false, errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", res)
		}
	}
	return b.back.Has(key)
}

// Iterator merges the buffered writes with the parent content.
func (b BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	parent, err := b.back.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	defer parent.Close()
	return combine(ascendBtree(b.bt, start, end), parent), nil
}

// opLog replays writes on a parent wrap in the order they were made.
type opLog struct {
	out SetDeleter
	ops []op
}

type op struct {
	key   []byte
	value []byte
	del   bool
}

func (l *opLog) Set(key, value []byte) error {
	l.ops = append(l.ops, op{key: key, value: value})
	return nil
}

func (l *opLog) Delete(key []byte) error {
	l.ops = append(l.ops, op{key: key, del: true})
	return nil
}

func (l *opLog) Write() error {
	for _, o := range l.ops {
		var err error
		if o.del {
			err = l.out.Delete(o.key)
		} else {
			err = l.out.Set(o.key, o.value)
		}
		if err != nil {
			return err
		}
	}
	l.ops = nil
	return nil
}

// Btree items are ordered by key. A deletedItem shadows the parent value.
type keyer interface {
	Key() []byte
}

type bkey struct {
	key []byte
}

var _ btree.Item = bkey{}

func (k bkey) Key() []byte {
	return k.key
}

func (k bkey) Less(item btree.Item) bool {
	return bytes.Compare(k.key, item.(keyer).Key()) < 0
}

type deletedItem struct {
	bkey
}

type setItem struct {
	bkey
	value []byte
}
