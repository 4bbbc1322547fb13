package disk

import (
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
)

// PAGE_SIZE is the fixed size of every page, on disk and in memory.
const PAGE_SIZE = 4096

// INVALID_PAGE_ID marks the absence of a page: an empty tree's header,
// a leaf with no right sibling, a child slot that was never populated.
const INVALID_PAGE_ID int64 = -1

// DEFAULT_PAGE_CAPACITY is the number of page slots the backing file
// starts with; allocatePage doubles it once the file fills up. NewManager
// does not resize the file, so it must already be at least this large.
const DEFAULT_PAGE_CAPACITY = 16

// DiskManager is the storage core's one dependency on durable storage.
// The buffer pool calls it synchronously through a DiskScheduler and
// never has to know whether pages live in a single file, one file per
// table, or something else entirely.
type DiskManager interface {
	ReadPage(pageId int64) ([]byte, error)
	WritePage(pageId int64, data []byte) error
	DeletePage(pageId int64)
	Shutdown() error
}

// FileDiskManager is a single-file DiskManager: every page is a fixed
// PAGE_SIZE slot in one os.File, slots are handed out by allocatePage,
// and deleted pages go on a free list for reuse. It keeps a last-seen
// checksum per page purely for diagnostics — a mismatch on read means
// something outside this process touched the file, which is worth a log
// line but not a hard failure, since the spec leaves crash recovery and
// durability guarantees to a layer this package doesn't own.
type FileDiskManager struct {
	dbFile       *os.File
	pages        map[int64]int64
	freeSlots    []int64
	pageCapacity int64
	checksums    map[int64]uint64
}

func NewManager(file *os.File) *FileDiskManager {
	return &FileDiskManager{
		dbFile:       file,
		pageCapacity: DEFAULT_PAGE_CAPACITY,
		freeSlots:    []int64{},
		pages:        map[int64]int64{},
		checksums:    map[int64]uint64{},
	}
}

func (dm *FileDiskManager) WritePage(pageId int64, data []byte) error {
	offset, ok := dm.pages[pageId]
	if !ok {
		var err error
		offset, err = dm.allocatePage()
		if err != nil {
			return err
		}
		dm.pages[pageId] = offset
	}

	if _, err := dm.dbFile.WriteAt(data, offset); err != nil {
		return fmt.Errorf("error writing at offset %d: %w", offset, err)
	}

	dm.checksums[pageId] = xxhash.Sum64(data)
	return nil
}

func (dm *FileDiskManager) ReadPage(pageId int64) ([]byte, error) {
	offset, ok := dm.pages[pageId]
	if !ok {
		var err error
		offset, err = dm.allocatePage()
		if err != nil {
			return nil, err
		}
		dm.pages[pageId] = offset
	}

	buf := make([]byte, PAGE_SIZE)
	if _, err := dm.dbFile.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("error reading from offset %d: %w", offset, err)
	}

	if want, seen := dm.checksums[pageId]; seen && want != xxhash.Sum64(buf) {
		fmt.Fprintf(os.Stderr, "disk: page %d changed on disk since last write\n", pageId)
	}

	return buf, nil
}

func (dm *FileDiskManager) DeletePage(pageId int64) {
	if offset, ok := dm.pages[pageId]; ok {
		dm.freeSlots = append(dm.freeSlots, offset)
		delete(dm.pages, pageId)
		delete(dm.checksums, pageId)
	}
}

func (dm *FileDiskManager) Shutdown() error {
	return dm.dbFile.Sync()
}

func (dm *FileDiskManager) allocatePage() (int64, error) {
	if len(dm.freeSlots) > 0 {
		offset := dm.freeSlots[0]
		dm.freeSlots = dm.freeSlots[1:]
		return offset, nil
	}

	if int64(len(dm.pages))+1 > dm.pageCapacity {
		dm.pageCapacity *= 2
		if err := os.Truncate(dm.dbFile.Name(), dm.pageCapacity*PAGE_SIZE); err != nil {
			return -1, fmt.Errorf("error resizing db file: %w", err)
		}
	}

	return dm.getNextOffset(), nil
}

func (dm *FileDiskManager) getNextOffset() int64 {
	return int64(len(dm.pages)) * PAGE_SIZE
}
