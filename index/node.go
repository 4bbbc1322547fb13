package index

import (
	"cmp"
	"slices"
)

// BplusPageHeader is the layout shared by every B+ tree page, leaf or
// internal: a fixed header plus parallel Keys/Values slices. Internal
// pages instantiate it as BplusPageHeader[K, int64], since their values
// are child page ids; leaf pages instantiate it as BplusPageHeader[K,
// V] for whatever value type the index stores. Internal pages leave
// Keys[0] unused — a child's leftmost descendant can be less than every
// separator key above it, so slot 0 never needs one.
type BplusPageHeader[K cmp.Ordered, V any] struct {
	PageId   int64
	Parent   int64
	Next     int64
	Prev     int64
	Size     int32
	MaxSize  int32
	PageType PageType
	Keys     []K
	Values   []V
}

func (p *BplusPageHeader[K, V]) isLeafPage() bool {
	return p.PageType == LEAF_PAGE
}

func (p *BplusPageHeader[K, V]) getSize() int {
	return int(p.Size)
}

func (p *BplusPageHeader[K, V]) keyAt(idx int) K {
	return p.Keys[idx]
}

func (p *BplusPageHeader[K, V]) valueAt(idx int) V {
	return p.Values[idx]
}

func (p *BplusPageHeader[K, V]) setKeyAt(idx int, key K) {
	p.Keys[idx] = key
}

func (p *BplusPageHeader[K, V]) setValAt(idx int, value V) {
	p.Values[idx] = value
}

// minSize is ceil(MaxSize/2). It's meaningless for the root, which is
// exempt from the underflow rule everyone else follows.
func (p *BplusPageHeader[K, V]) minSize() int32 {
	return (p.MaxSize + 1) / 2
}

// isSafeForInsert reports whether this node can absorb one more entry
// without becoming full, meaning a write-descent holding this node's
// guard can safely release every ancestor above it.
func (p *BplusPageHeader[K, V]) isSafeForInsert() bool {
	return p.Size < p.MaxSize-1
}

// isSafeForRemove reports whether this node can lose one entry without
// dropping below its minimum occupancy.
func (p *BplusPageHeader[K, V]) isSafeForRemove() bool {
	return p.Size > p.minSize()
}

// searchKeyIdx returns the position key occupies, or would occupy, among
// Keys[lo:Size) via binary search. lo is 0 for leaves (every slot holds
// a real key) and 1 for internal pages (slot 0 is a placeholder).
func (p *BplusPageHeader[K, V]) searchKeyIdx(key K, lo int) int {
	left, right := lo, p.getSize()-1

	for left <= right {
		mid := left + (right-left)/2
		if p.keyAt(mid) < key {
			left = mid + 1
		} else {
			right = mid - 1
		}
	}

	return left
}

// insertAt splices key/value into slot idx, shifting everything after it
// right by one and growing Size.
func (p *BplusPageHeader[K, V]) insertAt(idx int, key K, value V) {
	p.Keys = slices.Insert(p.Keys, idx, key)
	p.Values = slices.Insert(p.Values, idx, value)
	p.Size++
}

// removeAt deletes slot idx, shifting everything after it left by one
// and shrinking Size.
func (p *BplusPageHeader[K, V]) removeAt(idx int) {
	p.Keys = slices.Delete(p.Keys, idx, idx+1)
	p.Values = slices.Delete(p.Values, idx, idx+1)
	p.Size--
}
