package index

import (
	"cmp"

	"github.com/Garyyyyyyy/bustub/buffer"
	"github.com/Garyyyyyyy/bustub/storage/disk"
	"github.com/Garyyyyyyy/bustub/util"
)

// pageHeaderProbe decodes just the fields every page type shares, so a
// descent can tell a leaf from an internal page before committing to
// decoding the whole (generically-typed) struct.
type pageHeaderProbe struct {
	PageId   int64
	Parent   int64
	Size     int32
	MaxSize  int32
	PageType PageType
}

func peekPageType(data []byte) (PageType, error) {
	probe, err := util.ToStruct[pageHeaderProbe](data)
	if err != nil {
		return INVALID_PAGE, err
	}
	return probe.PageType, nil
}

// writeFrame is one ancestor held during a write-crabbing insert
// descent: either the header page (header) or an internal page whose
// guard must stay pinned until we know it won't need modifying.
type writeFrame struct {
	guard  *buffer.WritePageGuard
	pageId int64
	header bool
}

func dropWriteStack(stack []writeFrame) {
	for _, f := range stack {
		f.guard.Drop()
	}
}

// removeFrame is the remove-descent equivalent of writeFrame. It also
// tracks selfIndexInParent, the slot this page occupies among its
// parent's children — needed to find siblings and patch the parent's
// child/key arrays once an underflow is discovered.
type removeFrame struct {
	guard             *buffer.WritePageGuard
	pageId            int64
	header            bool
	selfIndexInParent int
}

func dropRemoveStack(stack []removeFrame) {
	for _, f := range stack {
		f.guard.Drop()
	}
}

func writeLeaf[K cmp.Ordered, V any](guard *buffer.WritePageGuard, leaf *bplusLeafPage[K, V]) error {
	data, err := util.ToByteSlice(*leaf)
	if err != nil {
		guard.Drop()
		return err
	}
	copy(*guard.GetDataMut(), data)
	guard.Drop()
	return nil
}

func writeInternal[K cmp.Ordered](guard *buffer.WritePageGuard, node *bplusInternalPage[K]) error {
	data, err := util.ToByteSlice(*node)
	if err != nil {
		guard.Drop()
		return err
	}
	copy(*guard.GetDataMut(), data)
	guard.Drop()
	return nil
}

// setParent rewrites a child page's Parent pointer. It decodes the page
// generically enough to work whether the child is a leaf or an
// internal page, which is why it lives on BplusTree[K, V] rather than
// as a free function: it needs V to decode a leaf.
func (b *BplusTree[K, V]) setParent(pageId, parentId int64) error {
	guard, err := b.bpm.FetchPageWrite(pageId)
	if err != nil {
		return err
	}

	pt, err := peekPageType(*guard.GetDataMut())
	if err != nil {
		guard.Drop()
		return err
	}

	if pt == LEAF_PAGE {
		leaf, err := util.ToStruct[bplusLeafPage[K, V]](*guard.GetDataMut())
		if err != nil {
			guard.Drop()
			return err
		}
		leaf.Parent = parentId
		return writeLeaf(guard, &leaf)
	}

	internal, err := util.ToStruct[bplusInternalPage[K]](*guard.GetDataMut())
	if err != nil {
		guard.Drop()
		return err
	}
	internal.Parent = parentId
	return writeInternal(guard, &internal)
}

func (b *BplusTree[K, V]) rootPageId() (int64, error) {
	guard, err := b.bpm.FetchPageRead(HEADER_PAGE_ID)
	if err != nil {
		return disk.INVALID_PAGE_ID, err
	}
	defer guard.Drop()

	hp, err := util.ToStruct[headerPage](guard.GetData())
	if err != nil {
		return disk.INVALID_PAGE_ID, err
	}
	return hp.RootPageId, nil
}
