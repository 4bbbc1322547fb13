package index

import "github.com/Garyyyyyyy/bustub/storage/disk"

// INVALID_PAGE_ID is the sentinel a leaf's Next/Prev field holds when
// there's no sibling in that direction.
const INVALID_PAGE_ID = disk.INVALID_PAGE_ID

// PageType distinguishes a B+ tree internal page from a leaf page once
// it's been decoded off disk; the header page that anchors the tree's
// root id has no PageType of its own.
type PageType int32

const (
	INVALID_PAGE PageType = iota
	INTERNAL_PAGE
	LEAF_PAGE
)

// HEADER_PAGE_ID is the fixed page id every BplusTree reserves for its
// header page (just the current root page id) so a tree can be reopened
// without passing the root id back in from outside.
const HEADER_PAGE_ID int64 = 0

// headerPage is the tiny anchor page stored at HEADER_PAGE_ID. It exists
// so a tree's root can move (grow, shrink, collapse) without the caller
// having to track where the current root lives.
type headerPage struct {
	RootPageId int64
}
