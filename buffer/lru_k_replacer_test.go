package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLrukReplacer(t *testing.T) {
	t.Run("recording an access on an unknown frame creates it, not evictable", func(t *testing.T) {
		replacer := NewLrukReplacer(5, 2)

		replacer.recordAccess(1)
		assert.Equal(t, 0, replacer.size())

		_, ok := replacer.evict()
		assert.False(t, ok)
	})

	t.Run("setEvictable toggles membership in the evictable set", func(t *testing.T) {
		replacer := NewLrukReplacer(5, 2)

		replacer.recordAccess(1)
		replacer.setEvictable(1, true)
		assert.Equal(t, 1, replacer.size())

		replacer.setEvictable(1, false)
		assert.Equal(t, 0, replacer.size())
	})

	t.Run("remove fails on a pinned (non-evictable) frame", func(t *testing.T) {
		replacer := NewLrukReplacer(5, 2)
		replacer.recordAccess(1)

		err := replacer.remove(1)
		assert.Error(t, err)

		replacer.setEvictable(1, true)
		err = replacer.remove(1)
		assert.NoError(t, err)
	})
}

func TestLrukReplacerEvict(t *testing.T) {
	t.Run("nothing evictable returns false", func(t *testing.T) {
		replacer := NewLrukReplacer(5, 2)

		replacer.recordAccess(1)
		replacer.recordAccess(2)

		_, ok := replacer.evict()
		assert.False(t, ok)
	})

	t.Run("prefers frames with fewer than k accesses over ones with k", func(t *testing.T) {
		replacer := NewLrukReplacer(5, 2)

		replacer.recordAccess(1)
		replacer.recordAccess(1)
		replacer.recordAccess(2)
		replacer.recordAccess(3)
		replacer.recordAccess(3)

		replacer.setEvictable(1, true)
		replacer.setEvictable(2, true)
		replacer.setEvictable(3, true)

		evicted, ok := replacer.evict()
		assert.True(t, ok)
		assert.Equal(t, 2, evicted)
	})

	t.Run("among frames with fewer than k accesses, evicts the one first seen longest ago", func(t *testing.T) {
		replacer := NewLrukReplacer(5, 2)

		replacer.recordAccess(2) // seen first
		replacer.recordAccess(3)
		replacer.recordAccess(1)

		replacer.setEvictable(1, true)
		replacer.setEvictable(2, true)
		replacer.setEvictable(3, true)
		assert.Equal(t, 3, replacer.size())

		evicted, ok := replacer.evict()
		assert.True(t, ok)
		assert.Equal(t, 2, evicted)
	})

	t.Run("among frames with k accesses, evicts the one whose kth access is furthest in the past", func(t *testing.T) {
		replacer := NewLrukReplacer(5, 2)

		replacer.recordAccess(3)
		replacer.recordAccess(3)

		replacer.recordAccess(2)
		replacer.recordAccess(2)

		replacer.recordAccess(1)
		replacer.recordAccess(1)

		replacer.setEvictable(1, true)
		replacer.setEvictable(2, true)
		replacer.setEvictable(3, true)
		assert.Equal(t, 3, replacer.size())

		evicted, ok := replacer.evict()
		assert.True(t, ok)
		assert.Equal(t, 3, evicted)
	})

	t.Run("accessing a frame again updates its recency", func(t *testing.T) {
		replacer := NewLrukReplacer(5, 2)

		replacer.recordAccess(1)
		replacer.recordAccess(1)
		replacer.recordAccess(2)
		replacer.recordAccess(2)

		replacer.setEvictable(1, true)
		replacer.setEvictable(2, true)

		// frame 1 is the older of the two k-access frames right now.
		replacer.recordAccess(1)
		replacer.recordAccess(1)
		// now frame 2 is the older one.

		evicted, ok := replacer.evict()
		assert.True(t, ok)
		assert.Equal(t, 2, evicted)
	})
}
