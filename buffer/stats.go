package buffer

import (
	"fmt"

	"github.com/Garyyyyyyy/bustub/storage/disk"
	"github.com/dustin/go-humanize"
)

// Stats returns a human-readable one-liner summarizing the pool's
// current occupancy, handy for logging alongside slow-query traces.
func (b *BufferpoolManager) Stats() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.statsLocked()
}

// statsLocked is Stats without acquiring b.mu, for call sites (eviction,
// exhaustion) that already hold it.
func (b *BufferpoolManager) statsLocked() string {
	resident := len(b.pageTable)
	free := len(b.freeFrames)
	residentBytes := uint64(resident) * uint64(disk.PAGE_SIZE)

	return fmt.Sprintf(
		"%d/%d frames resident (%s), %d free, %d evictable",
		resident, len(b.frames), humanize.Bytes(residentBytes), free, b.replacer.size(),
	)
}
