package buffer

import (
	"sync"
	"sync/atomic"

	"github.com/Garyyyyyyy/bustub/storage/disk"
)

// Frame is one fixed-size slot of the buffer pool's backing array. It
// owns a page's bytes and latch for however long that page is resident;
// the frame id never changes, only which page id currently occupies it.
type Frame struct {
	Latch  sync.RWMutex
	id     int
	Data   []byte
	pins   atomic.Int32
	Dirty  bool
	PageId int64
}

func (f *Frame) pin() {
	f.pins.Add(1)
}

// unpin returns the pin count after decrementing it.
func (f *Frame) unpin() int32 {
	return f.pins.Add(-1)
}

func (f *Frame) pinCount() int32 {
	return f.pins.Load()
}

// reset wipes a frame's contents before a new page takes it over. It
// does not touch the latch; callers hold the pool's mutex, not the
// frame latch.
func (f *Frame) reset() {
	f.Dirty = false
	f.pins.Store(0)
	f.Data = make([]byte, disk.PAGE_SIZE)
	f.PageId = disk.INVALID_PAGE_ID
}
