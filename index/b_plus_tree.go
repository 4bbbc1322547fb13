package index

import (
	"cmp"
	"fmt"

	"github.com/Garyyyyyyy/bustub/buffer"
	"github.com/Garyyyyyyy/bustub/storage/disk"
	"github.com/Garyyyyyyy/bustub/util"
)

// BplusTree is a disk-backed B+ tree index keyed on K, storing one V per
// key. All structural state (the current root, and every node) lives in
// pages fetched through bpm; the tree itself holds no page data between
// calls, only size parameters, so it's safe to use from many goroutines
// concurrently via latch crabbing.
type BplusTree[K cmp.Ordered, V any] struct {
	name            string
	bpm             *buffer.BufferpoolManager
	leafMaxSize     int32
	internalMaxSize int32
}

// NewBplusTree creates (or reopens) an index over bpm. internalMaxSize
// is the B+ tree order; internal pages are allowed one extra slot of
// slack beyond it, since the placeholder key in slot 0 doesn't carry a
// real separator.
func NewBplusTree[K cmp.Ordered, V any](name string, bpm *buffer.BufferpoolManager, leafMaxSize, internalMaxSize int32) (*BplusTree[K, V], error) {
	guard, err := bpm.FetchPageWrite(HEADER_PAGE_ID)
	if err != nil {
		return nil, err
	}
	defer guard.Drop()

	hp, err := util.ToStruct[headerPage](*guard.GetDataMut())
	if err != nil {
		return nil, err
	}
	if hp.RootPageId == 0 {
		hp.RootPageId = disk.INVALID_PAGE_ID
		data, err := util.ToByteSlice(hp)
		if err != nil {
			return nil, err
		}
		copy(*guard.GetDataMut(), data)
	}

	return &BplusTree[K, V]{
		name:            name,
		bpm:             bpm,
		leafMaxSize:     leafMaxSize,
		internalMaxSize: internalMaxSize + 1,
	}, nil
}

func (b *BplusTree[K, V]) IsEmpty() (bool, error) {
	id, err := b.rootPageId()
	if err != nil {
		return false, err
	}
	return id == disk.INVALID_PAGE_ID, nil
}

// GetValue returns the value stored for key. Lookups read-latch at most
// two pages at a time: a child is latched before its parent is
// released, and the parent is released the instant the child is safely
// in hand.
func (b *BplusTree[K, V]) GetValue(key K) (V, error) {
	var zero V

	rootId, err := b.rootPageId()
	if err != nil {
		return zero, err
	}
	if rootId == disk.INVALID_PAGE_ID {
		return zero, util.NewNotFoundError(fmt.Sprintf("%s: key not found: %v", b.name, key))
	}

	leaf, guard, err := b.descendToLeafForRead(rootId, key)
	if err != nil {
		return zero, err
	}
	defer guard.Drop()

	val, ok := leaf.find(key)
	if !ok {
		return zero, util.NewNotFoundError(fmt.Sprintf("%s: key not found: %v", b.name, key))
	}
	return val, nil
}

func (b *BplusTree[K, V]) descendToLeafForRead(rootId int64, key K) (bplusLeafPage[K, V], *buffer.ReadPageGuard, error) {
	var parent *buffer.ReadPageGuard
	currId := rootId

	for {
		guard, err := b.bpm.FetchPageRead(currId)
		if err != nil {
			if parent != nil {
				parent.Drop()
			}
			return bplusLeafPage[K, V]{}, nil, err
		}
		if parent != nil {
			parent.Drop()
		}

		pt, err := peekPageType(guard.GetData())
		if err != nil {
			guard.Drop()
			return bplusLeafPage[K, V]{}, nil, err
		}

		if pt == LEAF_PAGE {
			leaf, err := util.ToStruct[bplusLeafPage[K, V]](guard.GetData())
			if err != nil {
				guard.Drop()
				return bplusLeafPage[K, V]{}, nil, err
			}
			return leaf, guard, nil
		}

		internal, err := util.ToStruct[bplusInternalPage[K]](guard.GetData())
		if err != nil {
			guard.Drop()
			return bplusLeafPage[K, V]{}, nil, err
		}

		currId = internal.valueAt(internal.childIndex(key))
		parent = guard
	}
}

// Insert adds key/value, reporting false without error if key is
// already present. The write descent holds write latches top-down,
// contracting the held chain to just the nodes that might still need
// to change (those not isSafeForInsert) as it goes, so an insert that
// only touches a leaf never blocks concurrent work higher in the tree.
func (b *BplusTree[K, V]) Insert(key K, value V) (bool, error) {
	headerGuard, err := b.bpm.FetchPageWrite(HEADER_PAGE_ID)
	if err != nil {
		return false, err
	}

	hp, err := util.ToStruct[headerPage](*headerGuard.GetDataMut())
	if err != nil {
		headerGuard.Drop()
		return false, err
	}

	if hp.RootPageId == disk.INVALID_PAGE_ID {
		return b.insertIntoEmptyTree(headerGuard, key, value)
	}

	stack := []writeFrame{{guard: headerGuard, pageId: HEADER_PAGE_ID, header: true}}
	currId := hp.RootPageId

	for {
		guard, err := b.bpm.FetchPageWrite(currId)
		if err != nil {
			dropWriteStack(stack)
			return false, err
		}

		pt, err := peekPageType(*guard.GetDataMut())
		if err != nil {
			guard.Drop()
			dropWriteStack(stack)
			return false, err
		}

		if pt == LEAF_PAGE {
			return b.insertIntoLeaf(stack, guard, currId, key, value)
		}

		internal, err := util.ToStruct[bplusInternalPage[K]](*guard.GetDataMut())
		if err != nil {
			guard.Drop()
			dropWriteStack(stack)
			return false, err
		}

		childId := internal.valueAt(internal.childIndex(key))

		if internal.isSafeForInsert() {
			dropWriteStack(stack)
			stack = []writeFrame{{guard: guard, pageId: currId}}
		} else {
			stack = append(stack, writeFrame{guard: guard, pageId: currId})
		}

		currId = childId
	}
}

func (b *BplusTree[K, V]) insertIntoEmptyTree(headerGuard *buffer.WritePageGuard, key K, value V) (bool, error) {
	pageId := b.bpm.NewPageId()
	guard, err := b.bpm.FetchPageWrite(pageId)
	if err != nil {
		headerGuard.Drop()
		return false, err
	}

	leaf := newLeafPage[K, V](pageId, disk.INVALID_PAGE_ID, b.leafMaxSize)
	leaf.insert(key, value)
	if err := writeLeaf(guard, &leaf); err != nil {
		headerGuard.Drop()
		return false, err
	}

	hdata, err := util.ToByteSlice(headerPage{RootPageId: pageId})
	if err != nil {
		headerGuard.Drop()
		return false, err
	}
	copy(*headerGuard.GetDataMut(), hdata)
	headerGuard.Drop()
	return true, nil
}

func (b *BplusTree[K, V]) insertIntoLeaf(stack []writeFrame, guard *buffer.WritePageGuard, leafId int64, key K, value V) (bool, error) {
	leaf, err := util.ToStruct[bplusLeafPage[K, V]](*guard.GetDataMut())
	if err != nil {
		guard.Drop()
		dropWriteStack(stack)
		return false, err
	}

	if _, exists := leaf.find(key); exists {
		guard.Drop()
		dropWriteStack(stack)
		return false, nil
	}

	if leaf.isSafeForInsert() {
		dropWriteStack(stack)
		leaf.insert(key, value)
		if err := writeLeaf(guard, &leaf); err != nil {
			return false, err
		}
		return true, nil
	}

	leaf.insert(key, value)
	siblingId := b.bpm.NewPageId()
	sibling, promoted := leaf.split(siblingId)
	util.Log.Debug("leaf split", "tree", b.name, "leaf", leafId, "sibling", siblingId, "promoted", promoted)

	siblingGuard, err := b.bpm.FetchPageWrite(siblingId)
	if err != nil {
		guard.Drop()
		dropWriteStack(stack)
		return false, err
	}
	if err := writeLeaf(siblingGuard, &sibling); err != nil {
		guard.Drop()
		dropWriteStack(stack)
		return false, err
	}
	if err := writeLeaf(guard, &leaf); err != nil {
		dropWriteStack(stack)
		return false, err
	}

	return b.insertIntoParent(stack, leafId, promoted, siblingId)
}

// insertIntoParent propagates a split upward, splitting every ancestor
// still held on the stack (they're there precisely because they were
// found unsafe during descent, so each one is guaranteed to overflow on
// receiving the new child) until it reaches either a node that's safe
// after absorbing the new child, or the header page, at which point a
// new root is created.
func (b *BplusTree[K, V]) insertIntoParent(stack []writeFrame, leftId int64, key K, rightId int64) (bool, error) {
	for {
		if len(stack) == 0 {
			return false, util.NewInvalidOperationError("write descent stack exhausted before reaching root")
		}

		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.header {
			return b.createNewRoot(top.guard, leftId, key, rightId)
		}

		internal, err := util.ToStruct[bplusInternalPage[K]](*top.guard.GetDataMut())
		if err != nil {
			top.guard.Drop()
			dropWriteStack(stack)
			return false, err
		}

		internal.insertChild(key, rightId)
		if err := b.setParent(rightId, internal.PageId); err != nil {
			top.guard.Drop()
			dropWriteStack(stack)
			return false, err
		}

		if internal.getSize() < int(internal.MaxSize) {
			if err := writeInternal(top.guard, &internal); err != nil {
				dropWriteStack(stack)
				return false, err
			}
			dropWriteStack(stack)
			return true, nil
		}

		siblingId := b.bpm.NewPageId()
		sibling, promoted := internal.split(siblingId)
		util.Log.Debug("internal split", "tree", b.name, "node", internal.PageId, "sibling", siblingId, "promoted", promoted)

		siblingGuard, err := b.bpm.FetchPageWrite(siblingId)
		if err != nil {
			top.guard.Drop()
			dropWriteStack(stack)
			return false, err
		}
		for i := 0; i < sibling.getSize(); i++ {
			if err := b.setParent(sibling.valueAt(i), sibling.PageId); err != nil {
				siblingGuard.Drop()
				top.guard.Drop()
				dropWriteStack(stack)
				return false, err
			}
		}
		if err := writeInternal(siblingGuard, &sibling); err != nil {
			top.guard.Drop()
			dropWriteStack(stack)
			return false, err
		}
		if err := writeInternal(top.guard, &internal); err != nil {
			dropWriteStack(stack)
			return false, err
		}

		leftId, key, rightId = internal.PageId, promoted, siblingId
	}
}

func (b *BplusTree[K, V]) createNewRoot(headerGuard *buffer.WritePageGuard, leftId int64, key K, rightId int64) (bool, error) {
	newRootId := b.bpm.NewPageId()
	util.Log.Debug("root growth", "tree", b.name, "newRoot", newRootId, "left", leftId, "right", rightId)
	rootGuard, err := b.bpm.FetchPageWrite(newRootId)
	if err != nil {
		headerGuard.Drop()
		return false, err
	}

	root := newInternalPage[K](newRootId, disk.INVALID_PAGE_ID, b.internalMaxSize)
	root.appendFirstChild(leftId)
	root.pushBackChild(key, rightId)
	if err := writeInternal(rootGuard, &root); err != nil {
		headerGuard.Drop()
		return false, err
	}

	if err := b.setParent(leftId, newRootId); err != nil {
		headerGuard.Drop()
		return false, err
	}
	if err := b.setParent(rightId, newRootId); err != nil {
		headerGuard.Drop()
		return false, err
	}

	hdata, err := util.ToByteSlice(headerPage{RootPageId: newRootId})
	if err != nil {
		headerGuard.Drop()
		return false, err
	}
	copy(*headerGuard.GetDataMut(), hdata)
	headerGuard.Drop()
	return true, nil
}

// Remove deletes key, reporting util.NotFoundError if it isn't present.
// Like Insert, the write descent contracts to the unsafe suffix of the
// path — here "unsafe" means a node at exactly its minimum occupancy,
// one removal away from underflow.
func (b *BplusTree[K, V]) Remove(key K) error {
	headerGuard, err := b.bpm.FetchPageWrite(HEADER_PAGE_ID)
	if err != nil {
		return err
	}

	hp, err := util.ToStruct[headerPage](*headerGuard.GetDataMut())
	if err != nil {
		headerGuard.Drop()
		return err
	}

	if hp.RootPageId == disk.INVALID_PAGE_ID {
		headerGuard.Drop()
		return util.NewNotFoundError(fmt.Sprintf("%s: key not found: %v", b.name, key))
	}

	stack := []removeFrame{{guard: headerGuard, pageId: HEADER_PAGE_ID, header: true, selfIndexInParent: -1}}
	currId := hp.RootPageId
	currSelfIdx := -1

	for {
		guard, err := b.bpm.FetchPageWrite(currId)
		if err != nil {
			dropRemoveStack(stack)
			return err
		}

		pt, err := peekPageType(*guard.GetDataMut())
		if err != nil {
			guard.Drop()
			dropRemoveStack(stack)
			return err
		}

		if pt == LEAF_PAGE {
			return b.removeFromLeaf(stack, guard, key, currSelfIdx)
		}

		internal, err := util.ToStruct[bplusInternalPage[K]](*guard.GetDataMut())
		if err != nil {
			guard.Drop()
			dropRemoveStack(stack)
			return err
		}

		cidx := internal.childIndex(key)
		childId := internal.valueAt(cidx)

		if internal.isSafeForRemove() {
			dropRemoveStack(stack)
			stack = []removeFrame{{guard: guard, pageId: currId, selfIndexInParent: currSelfIdx}}
		} else {
			stack = append(stack, removeFrame{guard: guard, pageId: currId, selfIndexInParent: currSelfIdx})
		}

		currId = childId
		currSelfIdx = cidx
	}
}

func (b *BplusTree[K, V]) removeFromLeaf(stack []removeFrame, guard *buffer.WritePageGuard, key K, selfIdx int) error {
	leaf, err := util.ToStruct[bplusLeafPage[K, V]](*guard.GetDataMut())
	if err != nil {
		guard.Drop()
		dropRemoveStack(stack)
		return err
	}

	if _, exists := leaf.find(key); !exists {
		guard.Drop()
		dropRemoveStack(stack)
		return util.NewNotFoundError(fmt.Sprintf("%s: key not found: %v", b.name, key))
	}

	isRoot := len(stack) == 1 && stack[0].header
	preSafe := leaf.isSafeForRemove()
	leaf.remove(key)

	if isRoot || preSafe {
		dropRemoveStack(stack)
		return writeLeaf(guard, &leaf)
	}

	parentFrame := stack[len(stack)-1]
	stack = stack[:len(stack)-1]

	parent, err := util.ToStruct[bplusInternalPage[K]](*parentFrame.guard.GetDataMut())
	if err != nil {
		guard.Drop()
		parentFrame.guard.Drop()
		dropRemoveStack(stack)
		return err
	}

	borrowed, err := b.resolveLeafUnderflow(&leaf, guard, &parent, selfIdx)
	if err != nil {
		parentFrame.guard.Drop()
		dropRemoveStack(stack)
		return err
	}

	if borrowed {
		if err := writeInternal(parentFrame.guard, &parent); err != nil {
			dropRemoveStack(stack)
			return err
		}
		dropRemoveStack(stack)
		return nil
	}

	_, err = b.propagateInternalUnderflow(stack, &parent, parentFrame.guard, parentFrame.selfIndexInParent)
	return err
}

// resolveLeafUnderflow rebalances with the adjacent sibling recorded at
// descent time: the right sibling unless self is the rightmost child,
// in which case the left. Borrowing is tried before merging either way.
func (b *BplusTree[K, V]) resolveLeafUnderflow(leaf *bplusLeafPage[K, V], guard *buffer.WritePageGuard, parent *bplusInternalPage[K], selfIdx int) (bool, error) {
	hasRight := selfIdx < parent.getSize()-1

	if hasRight {
		rightId := parent.valueAt(selfIdx + 1)
		rightGuard, err := b.bpm.FetchPageWrite(rightId)
		if err != nil {
			guard.Drop()
			return false, err
		}
		right, err := util.ToStruct[bplusLeafPage[K, V]](*rightGuard.GetDataMut())
		if err != nil {
			rightGuard.Drop()
			guard.Drop()
			return false, err
		}

		if right.getSize() > int(right.minSize()) {
			parent.setKeyAt(selfIdx+1, leaf.borrowFromRight(&right))
			if err := writeLeaf(rightGuard, &right); err != nil {
				guard.Drop()
				return false, err
			}
			return true, writeLeaf(guard, leaf)
		}

		rightGuard.Drop()
	} else {
		leftId := parent.valueAt(selfIdx - 1)
		leftGuard, err := b.bpm.FetchPageWrite(leftId)
		if err != nil {
			guard.Drop()
			return false, err
		}
		left, err := util.ToStruct[bplusLeafPage[K, V]](*leftGuard.GetDataMut())
		if err != nil {
			leftGuard.Drop()
			guard.Drop()
			return false, err
		}

		if left.getSize() > int(left.minSize()) {
			parent.setKeyAt(selfIdx, leaf.borrowFromLeft(&left))
			if err := writeLeaf(leftGuard, &left); err != nil {
				guard.Drop()
				return false, err
			}
			return true, writeLeaf(guard, leaf)
		}
		leftGuard.Drop()
	}

	if hasRight {
		rightId := parent.valueAt(selfIdx + 1)
		rightGuard, err := b.bpm.FetchPageWrite(rightId)
		if err != nil {
			guard.Drop()
			return false, err
		}
		right, err := util.ToStruct[bplusLeafPage[K, V]](*rightGuard.GetDataMut())
		if err != nil {
			rightGuard.Drop()
			guard.Drop()
			return false, err
		}

		util.Log.Debug("leaf merge", "tree", b.name, "into", leaf.PageId, "absorbed", right.PageId)
		right.mergeInto(leaf)
		if err := writeLeaf(guard, leaf); err != nil {
			rightGuard.Drop()
			return false, err
		}
		rightGuard.Drop()
		b.bpm.DeletePage(right.PageId)
		parent.removeAt(selfIdx + 1)
		return false, nil
	}

	leftId := parent.valueAt(selfIdx - 1)
	leftGuard, err := b.bpm.FetchPageWrite(leftId)
	if err != nil {
		guard.Drop()
		return false, err
	}
	left, err := util.ToStruct[bplusLeafPage[K, V]](*leftGuard.GetDataMut())
	if err != nil {
		leftGuard.Drop()
		guard.Drop()
		return false, err
	}

	util.Log.Debug("leaf merge", "tree", b.name, "into", left.PageId, "absorbed", leaf.PageId)
	leaf.mergeInto(&left)
	if err := writeLeaf(leftGuard, &left); err != nil {
		guard.Drop()
		return false, err
	}
	guard.Drop()
	b.bpm.DeletePage(leaf.PageId)
	parent.removeAt(selfIdx)
	return false, nil
}

// propagateInternalUnderflow handles the case where node just lost a
// child (its Size already reflects the removal) by borrowing from a
// sibling, merging with one, or, at the root, collapsing to promote its
// last remaining child. A merge keeps the loop going one level up; a
// borrow or a safe node ends it immediately, same as insertIntoParent.
func (b *BplusTree[K, V]) propagateInternalUnderflow(stack []removeFrame, node *bplusInternalPage[K], guard *buffer.WritePageGuard, selfIdx int) (bool, error) {
	for {
		isRoot := len(stack) == 1 && stack[0].header

		if isRoot {
			headerFrame := stack[0]

			if node.getSize() == 1 {
				onlyChild := node.valueAt(0)
				nodeId := node.PageId
				util.Log.Debug("root collapse", "tree", b.name, "oldRoot", nodeId, "newRoot", onlyChild)
				guard.Drop()
				b.bpm.DeletePage(nodeId)

				if err := b.setParent(onlyChild, disk.INVALID_PAGE_ID); err != nil {
					headerFrame.guard.Drop()
					return false, err
				}
				hdata, err := util.ToByteSlice(headerPage{RootPageId: onlyChild})
				if err != nil {
					headerFrame.guard.Drop()
					return false, err
				}
				copy(*headerFrame.guard.GetDataMut(), hdata)
				headerFrame.guard.Drop()
				return true, nil
			}

			if err := writeInternal(guard, node); err != nil {
				headerFrame.guard.Drop()
				return false, err
			}
			headerFrame.guard.Drop()
			return true, nil
		}

		if node.getSize() >= int(node.minSize()) {
			if err := writeInternal(guard, node); err != nil {
				dropRemoveStack(stack)
				return false, err
			}
			dropRemoveStack(stack)
			return true, nil
		}

		parentFrame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		parent, err := util.ToStruct[bplusInternalPage[K]](*parentFrame.guard.GetDataMut())
		if err != nil {
			guard.Drop()
			parentFrame.guard.Drop()
			dropRemoveStack(stack)
			return false, err
		}

		borrowed, err := b.resolveInternalUnderflow(node, guard, &parent, selfIdx)
		if err != nil {
			parentFrame.guard.Drop()
			dropRemoveStack(stack)
			return false, err
		}

		if borrowed {
			if err := writeInternal(parentFrame.guard, &parent); err != nil {
				dropRemoveStack(stack)
				return false, err
			}
			dropRemoveStack(stack)
			return true, nil
		}

		node = &parent
		guard = parentFrame.guard
		selfIdx = parentFrame.selfIndexInParent
	}
}

// resolveInternalUnderflow mirrors resolveLeafUnderflow's sibling
// preference (right unless self is rightmost) at the internal-node
// level, using the internal borrow/merge primitives and reparenting any
// child that moves between pages.
func (b *BplusTree[K, V]) resolveInternalUnderflow(node *bplusInternalPage[K], guard *buffer.WritePageGuard, parent *bplusInternalPage[K], selfIdx int) (bool, error) {
	hasRight := selfIdx < parent.getSize()-1

	if hasRight {
		rightId := parent.valueAt(selfIdx + 1)
		rightGuard, err := b.bpm.FetchPageWrite(rightId)
		if err != nil {
			guard.Drop()
			return false, err
		}
		right, err := util.ToStruct[bplusInternalPage[K]](*rightGuard.GetDataMut())
		if err != nil {
			rightGuard.Drop()
			guard.Drop()
			return false, err
		}

		if right.getSize() > int(right.minSize()) {
			oldSeparator := parent.keyAt(selfIdx + 1)
			separator, child := right.popFirstChild()
			node.pushBackChild(oldSeparator, child)
			parent.setKeyAt(selfIdx+1, separator)

			if err := b.setParent(child, node.PageId); err != nil {
				rightGuard.Drop()
				guard.Drop()
				return false, err
			}
			if err := writeInternal(rightGuard, &right); err != nil {
				guard.Drop()
				return false, err
			}
			return true, writeInternal(guard, node)
		}
		rightGuard.Drop()
	} else {
		leftId := parent.valueAt(selfIdx - 1)
		leftGuard, err := b.bpm.FetchPageWrite(leftId)
		if err != nil {
			guard.Drop()
			return false, err
		}
		left, err := util.ToStruct[bplusInternalPage[K]](*leftGuard.GetDataMut())
		if err != nil {
			leftGuard.Drop()
			guard.Drop()
			return false, err
		}

		if left.getSize() > int(left.minSize()) {
			oldSeparator := parent.keyAt(selfIdx)
			key, child := left.popLastChild()
			node.pushFrontChild(oldSeparator, child)
			parent.setKeyAt(selfIdx, key)

			if err := b.setParent(child, node.PageId); err != nil {
				leftGuard.Drop()
				guard.Drop()
				return false, err
			}
			if err := writeInternal(leftGuard, &left); err != nil {
				guard.Drop()
				return false, err
			}
			return true, writeInternal(guard, node)
		}
		leftGuard.Drop()
	}

	if hasRight {
		rightId := parent.valueAt(selfIdx + 1)
		rightGuard, err := b.bpm.FetchPageWrite(rightId)
		if err != nil {
			guard.Drop()
			return false, err
		}
		right, err := util.ToStruct[bplusInternalPage[K]](*rightGuard.GetDataMut())
		if err != nil {
			rightGuard.Drop()
			guard.Drop()
			return false, err
		}

		separator := parent.keyAt(selfIdx + 1)
		util.Log.Debug("internal merge", "tree", b.name, "into", node.PageId, "absorbed", right.PageId)
		mergeRightInto(node, &right, separator)
		for i := 0; i < right.getSize(); i++ {
			if err := b.setParent(right.valueAt(i), node.PageId); err != nil {
				rightGuard.Drop()
				guard.Drop()
				return false, err
			}
		}
		if err := writeInternal(guard, node); err != nil {
			rightGuard.Drop()
			return false, err
		}
		rightGuard.Drop()
		b.bpm.DeletePage(right.PageId)
		parent.removeAt(selfIdx + 1)
		return false, nil
	}

	leftId := parent.valueAt(selfIdx - 1)
	leftGuard, err := b.bpm.FetchPageWrite(leftId)
	if err != nil {
		guard.Drop()
		return false, err
	}
	left, err := util.ToStruct[bplusInternalPage[K]](*leftGuard.GetDataMut())
	if err != nil {
		leftGuard.Drop()
		guard.Drop()
		return false, err
	}

	separator := parent.keyAt(selfIdx)
	util.Log.Debug("internal merge", "tree", b.name, "into", left.PageId, "absorbed", node.PageId)
	mergeRightInto(&left, node, separator)
	for i := 0; i < node.getSize(); i++ {
		if err := b.setParent(node.valueAt(i), left.PageId); err != nil {
			leftGuard.Drop()
			guard.Drop()
			return false, err
		}
	}
	if err := writeInternal(leftGuard, &left); err != nil {
		guard.Drop()
		return false, err
	}
	nodeId := node.PageId
	guard.Drop()
	b.bpm.DeletePage(nodeId)
	parent.removeAt(selfIdx)
	return false, nil
}
