package buffer

import (
	"fmt"
	"sync"
)

// lrukReplacer picks which frame to evict using the LRU-K policy: a
// frame's backward k-distance is current_timestamp minus its k-th most
// recent access, or infinite if it has fewer than k accesses yet.
// Eviction always prefers the largest backward k-distance, which means
// frames with an infinite distance (not enough history) go first, tied
// by whichever was first seen longest ago.
type lrukReplacer struct {
	mu            sync.Mutex
	nodeStore     map[int]*lrukNode
	replacerSize  int
	currSize      int
	currTimestamp int
	k             int
}

func NewLrukReplacer(capacity, k int) *lrukReplacer {
	return &lrukReplacer{
		k:            k,
		nodeStore:    map[int]*lrukNode{},
		replacerSize: capacity,
	}
}

// recordAccess logs a new access to frameId. Unknown frames are created
// on first access, not evictable until the caller says otherwise.
func (lru *lrukReplacer) recordAccess(frameId int) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	node, ok := lru.nodeStore[frameId]
	if !ok {
		node = &lrukNode{frameId: frameId, k: lru.k}
		lru.nodeStore[frameId] = node
	}

	lru.currTimestamp++
	node.addTimestamp(lru.currTimestamp)
}

// setEvictable flips whether a frame may be chosen by evict. The buffer
// pool calls this with false while a frame is pinned, true once the pin
// count drops to zero.
func (lru *lrukReplacer) setEvictable(frameId int, evictable bool) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	node, ok := lru.nodeStore[frameId]
	if !ok {
		return
	}

	if node.isEvictable && !evictable {
		lru.currSize--
	} else if !node.isEvictable && evictable {
		lru.currSize++
	}

	node.isEvictable = evictable
}

// evict picks the frame with the largest backward k-distance among the
// evictable set, returning (frameId, true). It returns (INVALID_FRAME_ID,
// false) when nothing is currently evictable.
func (lru *lrukReplacer) evict() (int, bool) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	best := -1
	bestTimestamp := 0
	sawLessThanK := false

	for frameId, node := range lru.nodeStore {
		if !node.isEvictable {
			continue
		}

		nodeHasLessThanK := !node.hasKAccess()

		switch {
		case nodeHasLessThanK && !sawLessThanK:
			best, bestTimestamp, sawLessThanK = frameId, node.kthAccess(), true
		case nodeHasLessThanK == sawLessThanK:
			if best == -1 || node.kthAccess() < bestTimestamp || (node.kthAccess() == bestTimestamp && frameId < best) {
				best, bestTimestamp = frameId, node.kthAccess()
			}
		}
	}

	if best == -1 {
		return INVALID_FRAME_ID, false
	}

	delete(lru.nodeStore, best)
	lru.currSize--
	return best, true
}

// remove drops a frame's history without evicting anything through the
// buffer pool's own path — used when a page is deleted outright.
func (lru *lrukReplacer) remove(frameId int) error {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	node, ok := lru.nodeStore[frameId]
	if !ok {
		return nil
	}

	if !node.isEvictable {
		return fmt.Errorf("removing a non-evictable frame from the replacer")
	}

	delete(lru.nodeStore, frameId)
	lru.currSize--
	return nil
}

func (lru *lrukReplacer) size() int {
	lru.mu.Lock()
	defer lru.mu.Unlock()
	return lru.currSize
}
