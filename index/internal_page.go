package index

import "cmp"

// bplusInternalPage routes lookups to children. Keys[0] is an unused
// placeholder: Values[i] is the child whose smallest key is Keys[i], and
// there's nothing smaller than Values[0]'s subtree, so Keys[0] never
// needs a real value.
type bplusInternalPage[K cmp.Ordered] struct {
	BplusPageHeader[K, int64]
}

func newInternalPage[K cmp.Ordered](pageId, parentPageId int64, maxSize int32) bplusInternalPage[K] {
	return bplusInternalPage[K]{
		BplusPageHeader[K, int64]{
			PageId:   pageId,
			Parent:   parentPageId,
			PageType: INTERNAL_PAGE,
			MaxSize:  maxSize,
			Keys:     make([]K, 0, maxSize+1),
			Values:   make([]int64, 0, maxSize+1),
		},
	}
}

// appendFirstChild is only used while building a brand new root: it
// establishes slot 0 (placeholder key, first child) on an otherwise
// empty page.
func (p *bplusInternalPage[K]) appendFirstChild(child int64) {
	var zero K
	p.Keys = append(p.Keys, zero)
	p.Values = append(p.Values, child)
	p.Size++
}

// childIndex returns the position of the child whose subtree key is
// closest to, without exceeding, key — the one the search should
// descend into. It's a linear scan over a handful of separator keys,
// not a hot loop over the whole page.
func (p *bplusInternalPage[K]) childIndex(key K) int {
	idx := 0
	for i := 1; i < p.getSize(); i++ {
		if p.keyAt(i) <= key {
			idx = i
		} else {
			break
		}
	}
	return idx
}

// insertChild adds a new separator key and child pointer in sorted
// position among the real keys (slots 1..Size).
func (p *bplusInternalPage[K]) insertChild(key K, child int64) {
	idx := p.searchKeyIdx(key, 1)
	p.insertAt(idx, key, child)
}

// split moves the upper half of this page's children into a new
// sibling and returns it along with the key that should be promoted to
// the parent. That key is consumed, not duplicated: it lives in neither
// child afterward, only in the parent.
func (p *bplusInternalPage[K]) split(newPageId int64) (bplusInternalPage[K], K) {
	s := p.getSize()
	offset := (s + 2) / 2 // ceil((s+1)/2)
	promoted := p.keyAt(offset)

	sibling := newInternalPage[K](newPageId, p.Parent, p.MaxSize)
	sibling.Keys = append(sibling.Keys[:0:0], p.Keys[offset:]...)
	sibling.Values = append(sibling.Values[:0:0], p.Values[offset:]...)
	sibling.Size = int32(len(sibling.Values))
	var zero K
	sibling.Keys[0] = zero

	p.Keys = p.Keys[:offset]
	p.Values = p.Values[:offset]
	p.Size = int32(offset)

	return sibling, promoted
}

func (p *bplusInternalPage[K]) popLastChild() (K, int64) {
	idx := p.getSize() - 1
	key, child := p.keyAt(idx), p.valueAt(idx)
	p.removeAt(idx)
	return key, child
}

// pushFrontChild inserts child as the new first child. separator is the
// key the parent previously used to describe this page — it becomes
// the boundary between the new child and the page's old first child.
func (p *bplusInternalPage[K]) pushFrontChild(separator K, child int64) {
	var zero K
	p.insertAt(0, zero, child)
	p.Keys[1] = separator
}

// popFirstChild removes and returns the first child along with the key
// that used to separate it from the second child.
func (p *bplusInternalPage[K]) popFirstChild() (K, int64) {
	child := p.valueAt(0)
	separator := p.keyAt(1)
	p.removeAt(0)
	var zero K
	p.Keys[0] = zero
	return separator, child
}

func (p *bplusInternalPage[K]) pushBackChild(separator K, child int64) {
	p.Keys = append(p.Keys, separator)
	p.Values = append(p.Values, child)
	p.Size++
}

// mergeRightInto appends right's children onto left, using separator
// (the parent's old key for right) as the boundary between left's last
// pre-merge child and right's first child.
func mergeRightInto[K cmp.Ordered](left, right *bplusInternalPage[K], separator K) {
	left.Keys = append(left.Keys, separator)
	left.Values = append(left.Values, right.valueAt(0))
	left.Size++

	for i := 1; i < right.getSize(); i++ {
		left.Keys = append(left.Keys, right.keyAt(i))
		left.Values = append(left.Values, right.valueAt(i))
		left.Size++
	}
}
