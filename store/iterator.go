package store

import (
	"bytes"

	"github.com/google/btree"
)

// ascendBtree collects all cached items within [start, end).
func ascendBtree(bt *btree.BTree, start, end []byte) []btree.Item {
	var items []btree.Item
	insert := func(item btree.Item) bool {
		items = append(items, item)
		return true
	}

	if start == nil && end == nil {
		bt.Ascend(insert)
	} else if start == nil { // end != nil
		bt.AscendLessThan(bkey{end}, insert)
	} else if end == nil { // start != nil
		bt.AscendGreaterOrEqual(bkey{start}, insert)
	} else { // both != nil
		bt.AscendRange(bkey{start}, bkey{end}, insert)
	}
	return items
}

// combine joins our cached items with those of the parent, taking into
// consideration overwrites and deletes. Both inputs are sorted by key. The
// result is materialized so that the parent iterator can be released right
// away.
func combine(ours []btree.Item, parent Iterator) Iterator {
	var res []Model
	i := 0
	for parent.Valid() || i < len(ours) {
		var src source
		switch {
		case !parent.Valid():
			src = us
		case i >= len(ours):
			src = theirs
		default:
			switch cmp := bytes.Compare(parent.Key(), ours[i].(keyer).Key()); {
			case cmp < 0:
				src = theirs
			case cmp > 0:
				src = us
			default:
				src = both
			}
		}

		switch src {
		case theirs:
			res = append(res, Model{Key: parent.Key(), Value: parent.Value()})
			parent.Next()
		case both:
			parent.Next()
			fallthrough
		case us:
			if item, ok := ours[i].(setItem); ok {
				res = append(res, Model{Key: item.key, Value: item.value})
			}
			i++
		}
	}
	return NewSliceIterator(res)
}

// source marks where the current item comes from
type source int32

const (
	us source = iota
	theirs
	both
)
