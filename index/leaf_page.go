package index

import "cmp"

// bplusLeafPage is a B+ tree leaf: every slot holds a real key/value
// pair, and Next/Prev chain leaves together for forward iteration.
type bplusLeafPage[K cmp.Ordered, V any] struct {
	BplusPageHeader[K, V]
}

func newLeafPage[K cmp.Ordered, V any](pageId, parentPageId int64, maxSize int32) bplusLeafPage[K, V] {
	return bplusLeafPage[K, V]{
		BplusPageHeader[K, V]{
			PageId:   pageId,
			Parent:   parentPageId,
			Next:     INVALID_PAGE_ID,
			Prev:     INVALID_PAGE_ID,
			PageType: LEAF_PAGE,
			MaxSize:  maxSize,
			Keys:     make([]K, 0, maxSize+1),
			Values:   make([]V, 0, maxSize+1),
		},
	}
}

// find returns the value stored for key and whether it was present.
func (p *bplusLeafPage[K, V]) find(key K) (V, bool) {
	idx := p.searchKeyIdx(key, 0)
	if idx < p.getSize() && p.keyAt(idx) == key {
		return p.valueAt(idx), true
	}

	var zero V
	return zero, false
}

// insert adds key/value in sorted position. It reports false without
// modifying the page if key is already present.
func (p *bplusLeafPage[K, V]) insert(key K, value V) bool {
	idx := p.searchKeyIdx(key, 0)
	if idx < p.getSize() && p.keyAt(idx) == key {
		return false
	}

	p.insertAt(idx, key, value)
	return true
}

// remove deletes key if present, reporting whether it was found.
func (p *bplusLeafPage[K, V]) remove(key K) bool {
	idx := p.searchKeyIdx(key, 0)
	if idx >= p.getSize() || p.keyAt(idx) != key {
		return false
	}

	p.removeAt(idx)
	return true
}

// split moves the upper half of this leaf's entries into a new sibling,
// wires up the Next/Prev chain, and returns the sibling along with the
// key that should be inserted into the parent to separate the two.
func (p *bplusLeafPage[K, V]) split(newPageId int64) (bplusLeafPage[K, V], K) {
	s := p.getSize()
	offset := (s + 2) / 2 // ceil((s+1)/2)
	sibling := newLeafPage[K, V](newPageId, p.Parent, p.MaxSize)

	sibling.Keys = append(sibling.Keys, p.Keys[offset:]...)
	sibling.Values = append(sibling.Values, p.Values[offset:]...)
	sibling.Size = int32(len(sibling.Keys))

	p.Keys = p.Keys[:offset]
	p.Values = p.Values[:offset]
	p.Size = int32(offset)

	sibling.Next = p.Next
	sibling.Prev = p.PageId
	p.Next = sibling.PageId

	return sibling, sibling.keyAt(0)
}

// borrowFromLeft moves the left sibling's last entry into this page,
// returning the new separator key the parent should use.
func (p *bplusLeafPage[K, V]) borrowFromLeft(left *bplusLeafPage[K, V]) K {
	lastIdx := left.getSize() - 1
	key, val := left.keyAt(lastIdx), left.valueAt(lastIdx)
	left.removeAt(lastIdx)
	p.insertAt(0, key, val)
	return p.keyAt(0)
}

// borrowFromRight moves the right sibling's first entry into this page,
// returning the new separator key the parent should use for right.
func (p *bplusLeafPage[K, V]) borrowFromRight(right *bplusLeafPage[K, V]) K {
	key, val := right.keyAt(0), right.valueAt(0)
	right.removeAt(0)
	p.Keys = append(p.Keys, key)
	p.Values = append(p.Values, val)
	p.Size++
	return right.keyAt(0)
}

// mergeInto appends this page's entries onto left and relinks the leaf
// chain around the page being removed. Merges only ever go right into
// left, matching the rest of the tree's borrow/merge direction.
func (p *bplusLeafPage[K, V]) mergeInto(left *bplusLeafPage[K, V]) {
	left.Keys = append(left.Keys, p.Keys...)
	left.Values = append(left.Values, p.Values...)
	left.Size += p.Size

	left.Next = p.Next
}
