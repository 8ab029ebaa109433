package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelDBCacheWrapIsAtomic(t *testing.T) {
	db, err := NewLevelDB(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	cache := db.CacheWrap()
	require.NoError(t, cache.Set([]byte("owner"), []byte("alice")))
	require.NoError(t, cache.Set([]byte("threshold"), []byte{2}))

	// nothing reaches the disk before Write
	assertMissing(t, db, []byte("owner"))

	require.NoError(t, cache.Write())
	assertValue(t, db, []byte("owner"), []byte("alice"))
	assertValue(t, db, []byte("threshold"), []byte{2})

	discarded := db.CacheWrap()
	require.NoError(t, discarded.Delete([]byte("owner")))
	discarded.Discard()
	assertValue(t, db, []byte("owner"), []byte("alice"))

	it, err := db.Iterator(nil, nil)
	require.NoError(t, err)
	defer it.Close()
	var keys []string
	for ; it.Valid(); it.Next() {
		keys = append(keys, string(it.Key()))
	}
	assert.Equal(t, []string{"owner", "threshold"}, keys)
}
