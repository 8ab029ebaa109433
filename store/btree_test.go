package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBTreeCacheGetSet does basic sanity checks on our cache
func TestBTreeCacheGetSet(t *testing.T) {
	base := MemStore()

	// make sure the btree is empty at start but returns results
	// that are written to it
	k, v := []byte("french"), []byte("fry")
	assertMissing(t, base, k)
	require.NoError(t, base.Set(k, v))
	assertValue(t, base, k, v)

	// now layer another btree on top and make sure that we get
	// base data
	cache := base.CacheWrap()
	assertValue(t, cache, k, v)

	// writing more data is only visible in the cache
	k2, v2 := []byte("LA"), []byte("Dodgers")
	assertMissing(t, cache, k2)
	require.NoError(t, cache.Set(k2, v2))
	assertValue(t, cache, k2, v2)
	assertMissing(t, base, k2)

	// we can write the cache to the base layer...
	require.NoError(t, cache.Write())
	assertValue(t, base, k, v)
	assertValue(t, base, k2, v2)

	// we can discard one
	k3, v3 := []byte("Bayern"), []byte("Munich")
	c2 := base.CacheWrap()
	require.NoError(t, c2.Set(k3, v3))
	c2.Discard()
	assertMissing(t, base, k3)

	// and commit another
	c3 := base.CacheWrap()
	require.NoError(t, c3.Delete(k))
	require.NoError(t, c3.Write())

	assertMissing(t, base, k)
	assertValue(t, base, k2, v2)
}

func TestNestedCacheDiscard(t *testing.T) {
	base := MemStore()
	outer := base.CacheWrap()
	require.NoError(t, outer.Set([]byte("a"), []byte("1")))

	inner := outer.CacheWrap()
	require.NoError(t, inner.Set([]byte("b"), []byte("2")))
	require.NoError(t, inner.Delete([]byte("a")))
	assertMissing(t, inner, []byte("a"))
	inner.Discard()

	// the inner savepoint is gone, the outer one is untouched
	assertValue(t, outer, []byte("a"), []byte("1"))
	assertMissing(t, outer, []byte("b"))

	require.NoError(t, outer.Write())
	assertValue(t, base, []byte("a"), []byte("1"))
}

func TestCacheIterator(t *testing.T) {
	base := MemStore()
	for _, k := range []string{"a", "c", "e", "g"} {
		require.NoError(t, base.Set([]byte(k), []byte("base-"+k)))
	}
	cache := base.CacheWrap()
	require.NoError(t, cache.Set([]byte("b"), []byte("cache-b")))
	require.NoError(t, cache.Set([]byte("e"), []byte("cache-e")))
	require.NoError(t, cache.Delete([]byte("c")))

	cases := map[string]struct {
		start, end []byte
		want       []Model
	}{
		"full range": {
			want: []Model{
				{Key: []byte("a"), Value: []byte("base-a")},
				{Key: []byte("b"), Value: []byte("cache-b")},
				{Key: []byte("e"), Value: []byte("cache-e")},
				{Key: []byte("g"), Value: []byte("base-g")},
			},
		},
		"bounded range": {
			start: []byte("b"),
			end:   []byte("g"),
			want: []Model{
				{Key: []byte("b"), Value: []byte("cache-b")},
				{Key: []byte("e"), Value: []byte("cache-e")},
			},
		},
		"open end": {
			start: []byte("f"),
			want: []Model{
				{Key: []byte("g"), Value: []byte("base-g")},
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			it, err := cache.Iterator(tc.start, tc.end)
			require.NoError(t, err)
			defer it.Close()

			var got []Model
			for ; it.Valid(); it.Next() {
				got = append(got, Model{Key: it.Key(), Value: it.Value()})
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func assertValue(t *testing.T, kv KVStore, key, want []byte) {
	t.Helper()
	got, err := kv.Get(key)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	has, err := kv.Has(key)
	require.NoError(t, err)
	assert.True(t, has)
}

func assertMissing(t *testing.T, kv KVStore, key []byte) {
	t.Helper()
	got, err := kv.Get(key)
	require.NoError(t, err)
	assert.Nil(t, got)
	has, err := kv.Has(key)
	require.NoError(t, err)
	assert.False(t, has)
}
