package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalPage(t *testing.T) {
	t.Run("appendFirstChild seeds a placeholder slot 0", func(t *testing.T) {
		node := newInternalPage[int](1, 0, 4)
		node.appendFirstChild(10)

		assert.Equal(t, 1, node.getSize())
		assert.Equal(t, int64(10), node.valueAt(0))
	})

	t.Run("childIndex picks the rightmost slot not exceeding the key", func(t *testing.T) {
		node := newInternalPage[int](1, 0, 4)
		node.appendFirstChild(100)
		node.pushBackChild(10, 101)
		node.pushBackChild(20, 102)

		assert.Equal(t, 0, node.childIndex(5))
		assert.Equal(t, 1, node.childIndex(10))
		assert.Equal(t, 1, node.childIndex(15))
		assert.Equal(t, 2, node.childIndex(25))
	})

	t.Run("insertChild keeps separators sorted", func(t *testing.T) {
		node := newInternalPage[int](1, 0, 4)
		node.appendFirstChild(100)
		node.insertChild(30, 103)
		node.insertChild(10, 101)
		node.insertChild(20, 102)

		assert.Equal(t, []int{0, 10, 20, 30}, node.Keys)
		assert.Equal(t, []int64{100, 101, 102, 103}, node.Values)
	})

	t.Run("split moves the upper half and clears the promoted key from sibling's placeholder", func(t *testing.T) {
		node := newInternalPage[int](1, 9, 4)
		node.appendFirstChild(100)
		node.pushBackChild(10, 101)
		node.pushBackChild(20, 102)

		sibling, promoted := node.split(2)

		assert.Equal(t, 20, promoted)
		assert.Equal(t, []int{0, 10}, node.Keys)
		assert.Equal(t, 0, sibling.Keys[0])
		assert.Equal(t, []int64{102}, sibling.Values)
		assert.Equal(t, int64(9), sibling.Parent)
	})

	t.Run("pushFrontChild and popFirstChild round-trip", func(t *testing.T) {
		node := newInternalPage[int](1, 0, 4)
		node.appendFirstChild(100)
		node.pushBackChild(10, 101)

		node.pushFrontChild(5, 99)
		assert.Equal(t, []int64{99, 100, 101}, node.Values)
		assert.Equal(t, 5, node.Keys[1])

		separator, child := node.popFirstChild()
		assert.Equal(t, 5, separator)
		assert.Equal(t, int64(99), child)
		assert.Equal(t, 0, node.Keys[0])
	})

	t.Run("mergeRightInto appends right's children with the separator as the boundary", func(t *testing.T) {
		left := newInternalPage[int](1, 0, 4)
		left.appendFirstChild(100)
		left.pushBackChild(10, 101)

		right := newInternalPage[int](2, 0, 4)
		right.appendFirstChild(200)
		right.pushBackChild(30, 201)

		mergeRightInto(&left, &right, 20)

		assert.Equal(t, []int{0, 10, 20, 30}, left.Keys)
		assert.Equal(t, []int64{100, 101, 200, 201}, left.Values)
	})
}
