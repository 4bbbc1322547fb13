package buffer

import (
	"sync"
	"sync/atomic"

	"github.com/Garyyyyyyy/bustub/storage/disk"
	"github.com/Garyyyyyyy/bustub/util"
)

// BufferpoolManager keeps a bounded set of pages resident in memory,
// backed by a DiskScheduler for misses and an LRU-K replacer for
// eviction. Every acquisition API here is non-blocking: if every frame
// is pinned and nothing is evictable, it returns a
// util.BufferpoolExhaustedError instead of waiting for one to free up.
// Callers that need to wait are expected to retry, not spin inside the
// pool.
type BufferpoolManager struct {
	mu            sync.Mutex
	frames        []*Frame
	pageTable     map[int64]int
	nextPageId    atomic.Int64
	diskScheduler *disk.DiskScheduler
	replacer      *lrukReplacer
	freeFrames    []int
}

func NewBufferpoolManager(size int, replacer *lrukReplacer, diskScheduler *disk.DiskScheduler) *BufferpoolManager {
	frames := make([]*Frame, size)
	freeFrames := make([]int, size)

	for i := range size {
		frames[i] = &Frame{id: i, Data: make([]byte, disk.PAGE_SIZE), PageId: disk.INVALID_PAGE_ID}
		freeFrames[i] = i
	}

	return &BufferpoolManager{
		frames:        frames,
		pageTable:     make(map[int64]int),
		replacer:      replacer,
		diskScheduler: diskScheduler,
		freeFrames:    freeFrames,
	}
}

// acquireFrame pins a frame for pageId, claiming one from the free list
// or the replacer if pageId isn't already resident. needsLoad tells the
// caller whether the frame's contents still need to come from disk.
func (b *BufferpoolManager) acquireFrame(pageId int64) (frame *Frame, needsLoad bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if id, ok := b.pageTable[pageId]; ok {
		frame := b.frames[id]
		b.replacer.recordAccess(frame.id)
		b.replacer.setEvictable(frame.id, false)
		frame.pin()
		return frame, false, nil
	}

	frame, err = b.claimFrame()
	if err != nil {
		return nil, false, err
	}

	delete(b.pageTable, frame.PageId)
	b.pageTable[pageId] = frame.id

	b.replacer.recordAccess(frame.id)
	b.replacer.setEvictable(frame.id, false)

	frame.reset()
	frame.pin()
	frame.PageId = pageId

	return frame, true, nil
}

// claimFrame must be called with b.mu held. It returns a free frame, or
// evicts (and flushes, if dirty) one chosen by the replacer.
func (b *BufferpoolManager) claimFrame() (*Frame, error) {
	if len(b.freeFrames) > 0 {
		id := b.freeFrames[0]
		b.freeFrames = b.freeFrames[1:]
		return b.frames[id], nil
	}

	id, ok := b.replacer.evict()
	if !ok {
		util.Log.Warn("pool exhausted, no evictable frame", "stats", b.statsLocked())
		return nil, util.NewBufferpoolExhaustedError(disk.INVALID_PAGE_ID)
	}

	frame := b.frames[id]
	util.Log.Debug("evicting frame", "pageId", frame.PageId, "stats", b.statsLocked())
	b.flushLocked(frame)
	return frame, nil
}

// flushLocked must be called with b.mu held.
func (b *BufferpoolManager) flushLocked(frame *Frame) {
	if !frame.Dirty {
		return
	}

	req := disk.NewRequest(frame.PageId, frame.Data, true)
	resp := <-b.diskScheduler.Schedule(req)
	if !resp.Success {
		util.Log.Warn("failed to flush evicted frame", "pageId", frame.PageId, "err", resp.Err)
		return
	}
	frame.Dirty = false
}

func (b *BufferpoolManager) loadFromDisk(frame *Frame, pageId int64) error {
	req := disk.NewRequest(pageId, nil, false)
	resp := <-b.diskScheduler.Schedule(req)
	if !resp.Success {
		return util.NewIoError("read page", resp.Err)
	}

	copy(frame.Data, resp.Data)
	return nil
}

// FetchPageRead pins pageId and returns it with a read latch held.
func (b *BufferpoolManager) FetchPageRead(pageId int64) (*ReadPageGuard, error) {
	frame, needsLoad, err := b.acquireFrame(pageId)
	if err != nil {
		return nil, err
	}

	frame.Latch.RLock()
	if needsLoad {
		if err := b.loadFromDisk(frame, pageId); err != nil {
			frame.Latch.RUnlock()
			b.UnpinPage(pageId, false)
			return nil, err
		}
	}

	return NewReadPageGuard(frame, b), nil
}

// FetchPageWrite pins pageId and returns it with a write latch held.
// The frame is marked dirty immediately, since a write guard implies
// the caller intends to mutate it.
func (b *BufferpoolManager) FetchPageWrite(pageId int64) (*WritePageGuard, error) {
	frame, needsLoad, err := b.acquireFrame(pageId)
	if err != nil {
		return nil, err
	}

	frame.Latch.Lock()
	frame.Dirty = true
	if needsLoad {
		if err := b.loadFromDisk(frame, pageId); err != nil {
			frame.Latch.Unlock()
			b.UnpinPage(pageId, false)
			return nil, err
		}
	}

	return NewWritePageGuard(frame, b), nil
}

// FetchPageBasic pins pageId without taking any latch at all; callers
// are responsible for their own latching discipline (or for only
// reading fields that are safe without one, like a header page id).
func (b *BufferpoolManager) FetchPageBasic(pageId int64) (*BasicPageGuard, error) {
	frame, needsLoad, err := b.acquireFrame(pageId)
	if err != nil {
		return nil, err
	}

	if needsLoad {
		if err := b.loadFromDisk(frame, pageId); err != nil {
			b.UnpinPage(pageId, false)
			return nil, err
		}
	}

	guard := newBasicPageGuard(frame, b)
	return &guard, nil
}

// NewPageGuarded allocates a fresh page id and returns it pinned with no
// latch held. The disk slot is allocated lazily on the first flush.
func (b *BufferpoolManager) NewPageGuarded() (int64, *BasicPageGuard, error) {
	pageId := b.NewPageId()
	frame, _, err := b.acquireFrame(pageId)
	if err != nil {
		return pageId, nil, err
	}

	guard := newBasicPageGuard(frame, b)
	return pageId, &guard, nil
}

// ReadPage and WritePage are thin aliases over FetchPageRead and
// FetchPageWrite.
func (b *BufferpoolManager) ReadPage(pageId int64) (*ReadPageGuard, error) {
	return b.FetchPageRead(pageId)
}

func (b *BufferpoolManager) WritePage(pageId int64) (*WritePageGuard, error) {
	return b.FetchPageWrite(pageId)
}

func (b *BufferpoolManager) NewPageId() int64 {
	return b.nextPageId.Add(1)
}

// UnpinPage decrements a page's pin count directly, for callers that
// went through FetchPageBasic and manage dirtiness themselves instead of
// going through a guard's Drop.
func (b *BufferpoolManager) UnpinPage(pageId int64, isDirty bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	id, ok := b.pageTable[pageId]
	if !ok {
		return false
	}

	frame := b.frames[id]
	if frame.pinCount() <= 0 {
		return false
	}

	if isDirty {
		frame.Dirty = true
	}

	if frame.unpin() == 0 {
		b.replacer.setEvictable(frame.id, true)
	}

	return true
}

func (b *BufferpoolManager) FlushPage(pageId int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	id, ok := b.pageTable[pageId]
	if !ok {
		return false
	}

	frame := b.frames[id]
	req := disk.NewRequest(pageId, frame.Data, true)
	resp := <-b.diskScheduler.Schedule(req)
	if resp.Success {
		frame.Dirty = false
	}
	return resp.Success
}

func (b *BufferpoolManager) FlushAllPages() {
	b.mu.Lock()
	pageIds := make([]int64, 0, len(b.pageTable))
	for pageId := range b.pageTable {
		pageIds = append(pageIds, pageId)
	}
	b.mu.Unlock()

	for _, pageId := range pageIds {
		b.FlushPage(pageId)
	}
}

// DeletePage drops a page from the pool outright. It fails (returns
// false) if the page is still pinned; callers must unpin everywhere
// first. Deleting a page id that isn't resident is a no-op success.
func (b *BufferpoolManager) DeletePage(pageId int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	id, ok := b.pageTable[pageId]
	if !ok {
		return true
	}

	frame := b.frames[id]
	if frame.pinCount() > 0 {
		return false
	}

	if err := b.replacer.remove(frame.id); err != nil {
		util.Log.Error("replacer invariant violated during delete", "pageId", pageId, "err", err)
	}
	delete(b.pageTable, pageId)
	frame.reset()
	b.freeFrames = append(b.freeFrames, frame.id)

	// Free the disk slot too, so a long-lived pool doesn't leak pages
	// that were allocated and then deleted without ever being flushed.
	<-b.diskScheduler.ScheduleDelete(pageId)
	return true
}
