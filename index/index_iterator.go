package index

import (
	"cmp"

	"github.com/Garyyyyyyy/bustub/buffer"
	"github.com/Garyyyyyyy/bustub/storage/disk"
	"github.com/Garyyyyyyy/bustub/util"
)

// IndexIterator walks a leaf chain left to right. It never holds a
// latch between calls: each Next() that crosses into a new leaf grabs a
// fresh read guard just long enough to copy that leaf's entries out,
// then drops it before returning.
type IndexIterator[K cmp.Ordered, V any] struct {
	bpm    *buffer.BufferpoolManager
	pos    int
	keys   []K
	values []V
	next   int64
}

func newIndexIteratorAt[K cmp.Ordered, V any](bpm *buffer.BufferpoolManager, pageId int64, pos int) (*IndexIterator[K, V], error) {
	if pageId == disk.INVALID_PAGE_ID {
		return &IndexIterator[K, V]{bpm: bpm, next: disk.INVALID_PAGE_ID}, nil
	}

	guard, err := bpm.FetchPageRead(pageId)
	if err != nil {
		return nil, err
	}
	leaf, err := util.ToStruct[bplusLeafPage[K, V]](guard.GetData())
	guard.Drop()
	if err != nil {
		return nil, err
	}

	return &IndexIterator[K, V]{bpm: bpm, pos: pos, keys: leaf.Keys, values: leaf.Values, next: leaf.Next}, nil
}

// IsEnd reports whether every entry has been consumed.
func (it *IndexIterator[K, V]) IsEnd() bool {
	return it.pos >= len(it.keys) && it.next == disk.INVALID_PAGE_ID
}

// Next returns the current key/value and advances. Crossing a leaf
// boundary fetches the next leaf fresh rather than following a pointer
// kept alive from an earlier latch.
func (it *IndexIterator[K, V]) Next() (K, V, error) {
	var zk K
	var zv V

	if it.pos >= len(it.keys) {
		if it.next == disk.INVALID_PAGE_ID {
			return zk, zv, util.NewInvalidOperationError("iterator exhausted")
		}

		guard, err := it.bpm.FetchPageRead(it.next)
		if err != nil {
			return zk, zv, err
		}
		leaf, err := util.ToStruct[bplusLeafPage[K, V]](guard.GetData())
		guard.Drop()
		if err != nil {
			return zk, zv, err
		}

		it.keys, it.values, it.next, it.pos = leaf.Keys, leaf.Values, leaf.Next, 0
	}

	if it.pos >= len(it.keys) {
		return zk, zv, util.NewInvalidOperationError("iterator exhausted")
	}

	k, v := it.keys[it.pos], it.values[it.pos]
	it.pos++
	return k, v, nil
}

// Begin returns an iterator positioned at the smallest key in the tree.
func (b *BplusTree[K, V]) Begin() (*IndexIterator[K, V], error) {
	rootId, err := b.rootPageId()
	if err != nil {
		return nil, err
	}
	if rootId == disk.INVALID_PAGE_ID {
		return newIndexIteratorAt[K, V](b.bpm, disk.INVALID_PAGE_ID, 0)
	}

	leafId, err := b.leftmostLeafId(rootId)
	if err != nil {
		return nil, err
	}
	return newIndexIteratorAt[K, V](b.bpm, leafId, 0)
}

// BeginAt returns an iterator positioned at the slot equal to key, or
// End() if key is absent.
func (b *BplusTree[K, V]) BeginAt(key K) (*IndexIterator[K, V], error) {
	leaf, pos, ok, err := b.lowerBound(key)
	if err != nil {
		return nil, err
	}
	if !ok || pos >= leaf.getSize() || leaf.keyAt(pos) != key {
		return b.End(), nil
	}

	return newIndexIteratorAt[K, V](b.bpm, leaf.PageId, pos)
}

// beginFrom returns an iterator positioned at the first key >= key,
// landing on End() past the last key. Unlike BeginAt, an absent key does
// not turn into End() unless it's past everything in the tree — used by
// range scans, which want the first key in range rather than an exact
// match.
func (b *BplusTree[K, V]) beginFrom(key K) (*IndexIterator[K, V], error) {
	leaf, pos, ok, err := b.lowerBound(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return b.End(), nil
	}

	return newIndexIteratorAt[K, V](b.bpm, leaf.PageId, pos)
}

// lowerBound descends to the leaf that would hold key and returns its
// slot (the first index whose key is >= key, possibly leaf.getSize() if
// every key in the leaf is smaller). ok is false only for an empty tree.
func (b *BplusTree[K, V]) lowerBound(key K) (bplusLeafPage[K, V], int, bool, error) {
	rootId, err := b.rootPageId()
	if err != nil {
		return bplusLeafPage[K, V]{}, 0, false, err
	}
	if rootId == disk.INVALID_PAGE_ID {
		return bplusLeafPage[K, V]{}, 0, false, nil
	}

	leaf, guard, err := b.descendToLeafForRead(rootId, key)
	if err != nil {
		return bplusLeafPage[K, V]{}, 0, false, err
	}
	pos := leaf.searchKeyIdx(key, 0)
	guard.Drop()

	return leaf, pos, true, nil
}

// End returns an iterator that is already exhausted, for the usual
// `for it := begin; it != end; ...` idiom translated to IsEnd() checks.
func (b *BplusTree[K, V]) End() *IndexIterator[K, V] {
	return &IndexIterator[K, V]{next: disk.INVALID_PAGE_ID}
}

func (b *BplusTree[K, V]) leftmostLeafId(rootId int64) (int64, error) {
	currId := rootId
	for {
		guard, err := b.bpm.FetchPageRead(currId)
		if err != nil {
			return disk.INVALID_PAGE_ID, err
		}

		pt, err := peekPageType(guard.GetData())
		if err != nil {
			guard.Drop()
			return disk.INVALID_PAGE_ID, err
		}
		if pt == LEAF_PAGE {
			guard.Drop()
			return currId, nil
		}

		internal, err := util.ToStruct[bplusInternalPage[K]](guard.GetData())
		guard.Drop()
		if err != nil {
			return disk.INVALID_PAGE_ID, err
		}
		currId = internal.valueAt(0)
	}
}
