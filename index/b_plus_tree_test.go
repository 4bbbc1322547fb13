package index

import (
	"fmt"
	"os"
	"path"
	"testing"

	"github.com/Garyyyyyyy/bustub/buffer"
	"github.com/Garyyyyyyy/bustub/storage/disk"
	"github.com/Garyyyyyyy/bustub/util"
	"github.com/stretchr/testify/assert"
)

func TestBPlusTree(t *testing.T) {
	t.Run("stored values can be retrieved", func(t *testing.T) {
		bpm := createTreeBpm(t)
		tree, err := NewBplusTree[string, int]("people", bpm, 4, 4)
		assert.NoError(t, err)

		register := map[string]int{"john": 25, "doe": 45, "jane": 40}
		for k, v := range register {
			inserted, err := tree.Insert(k, v)
			assert.NoError(t, err)
			assert.True(t, inserted)
		}

		for k, v := range register {
			val, err := tree.GetValue(k)
			assert.NoError(t, err)
			assert.Equal(t, v, val)
		}
	})

	t.Run("duplicate insert is rejected without error", func(t *testing.T) {
		bpm := createTreeBpm(t)
		tree, err := NewBplusTree[int, int]("dups", bpm, 4, 4)
		assert.NoError(t, err)

		inserted, err := tree.Insert(1, 100)
		assert.NoError(t, err)
		assert.True(t, inserted)

		inserted, err = tree.Insert(1, 200)
		assert.NoError(t, err)
		assert.False(t, inserted)

		val, err := tree.GetValue(1)
		assert.NoError(t, err)
		assert.Equal(t, 100, val)
	})

	t.Run("lookup on an empty tree is NotFound", func(t *testing.T) {
		bpm := createTreeBpm(t)
		tree, err := NewBplusTree[int, int]("empty", bpm, 4, 4)
		assert.NoError(t, err)

		empty, err := tree.IsEmpty()
		assert.NoError(t, err)
		assert.True(t, empty)

		_, err = tree.GetValue(1)
		var nf *util.NotFoundError
		assert.ErrorAs(t, err, &nf)
	})

	t.Run("tree grows to height two under an internal root", func(t *testing.T) {
		bpm := createTreeBpm(t)
		tree, err := NewBplusTree[int, int]("growth", bpm, 3, 3)
		assert.NoError(t, err)

		for _, k := range []int{1, 2, 3, 4, 5} {
			inserted, err := tree.Insert(k, k*100)
			assert.NoError(t, err)
			assert.True(t, inserted)
		}

		for _, k := range []int{1, 2, 3, 4, 5} {
			val, err := tree.GetValue(k)
			assert.NoError(t, err)
			assert.Equal(t, k*100, val)
		}

		_, err = tree.GetValue(6)
		var nf *util.NotFoundError
		assert.ErrorAs(t, err, &nf)

		rootId, err := tree.rootPageId()
		assert.NoError(t, err)

		guard, err := bpm.FetchPageRead(rootId)
		assert.NoError(t, err)
		root, err := util.ToStruct[bplusInternalPage[int]](guard.GetData())
		guard.Drop()
		assert.NoError(t, err)

		assert.Equal(t, INTERNAL_PAGE, root.PageType)
		assert.Equal(t, 2, root.getSize())
	})

	t.Run("remove merges siblings and can collapse the root", func(t *testing.T) {
		bpm := createTreeBpm(t)
		tree, err := NewBplusTree[int, int]("merge", bpm, 3, 3)
		assert.NoError(t, err)

		for _, k := range []int{1, 2, 3, 4, 5} {
			_, err := tree.Insert(k, k*100)
			assert.NoError(t, err)
		}

		assert.NoError(t, tree.Remove(5))

		_, err = tree.GetValue(5)
		var nf *util.NotFoundError
		assert.ErrorAs(t, err, &nf)

		for _, k := range []int{1, 2, 3, 4} {
			val, err := tree.GetValue(k)
			assert.NoError(t, err)
			assert.Equal(t, k*100, val)
		}
	})

	t.Run("remove of an absent key is reported, not silently ignored", func(t *testing.T) {
		bpm := createTreeBpm(t)
		tree, err := NewBplusTree[int, int]("absent", bpm, 4, 4)
		assert.NoError(t, err)

		_, err = tree.Insert(1, 1)
		assert.NoError(t, err)

		err = tree.Remove(2)
		var nf *util.NotFoundError
		assert.ErrorAs(t, err, &nf)

		val, err := tree.GetValue(1)
		assert.NoError(t, err)
		assert.Equal(t, 1, val)
	})

	t.Run("forward iteration visits every key exactly once in order", func(t *testing.T) {
		bpm := createTreeBpm(t)
		tree, err := NewBplusTree[int, int]("iter", bpm, 3, 3)
		assert.NoError(t, err)

		for _, k := range []int{1, 2, 3, 4, 5} {
			_, err := tree.Insert(k, k*100)
			assert.NoError(t, err)
		}

		it, err := tree.Begin()
		assert.NoError(t, err)

		var keys []int
		for !it.IsEnd() {
			k, v, err := it.Next()
			assert.NoError(t, err)
			assert.Equal(t, k*100, v)
			keys = append(keys, k)
		}

		assert.Equal(t, []int{1, 2, 3, 4, 5}, keys)
	})

	t.Run("BeginAt positions at the slot equal to the target", func(t *testing.T) {
		bpm := createTreeBpm(t)
		tree, err := NewBplusTree[int, int]("beginat", bpm, 3, 3)
		assert.NoError(t, err)

		for _, k := range []int{1, 2, 3, 4, 5} {
			_, err := tree.Insert(k, k)
			assert.NoError(t, err)
		}

		it, err := tree.BeginAt(3)
		assert.NoError(t, err)

		var keys []int
		for !it.IsEnd() {
			k, _, err := it.Next()
			assert.NoError(t, err)
			keys = append(keys, k)
		}

		assert.Equal(t, []int{3, 4, 5}, keys)
	})

	t.Run("BeginAt an absent key returns End", func(t *testing.T) {
		bpm := createTreeBpm(t)
		tree, err := NewBplusTree[int, int]("beginat-absent", bpm, 3, 3)
		assert.NoError(t, err)

		for _, k := range []int{1, 2, 4, 5} {
			_, err := tree.Insert(k, k)
			assert.NoError(t, err)
		}

		it, err := tree.BeginAt(3)
		assert.NoError(t, err)
		assert.True(t, it.IsEnd())

		it, err = tree.BeginAt(100)
		assert.NoError(t, err)
		assert.True(t, it.IsEnd())
	})

	t.Run("round trips a larger workload of inserts and removes", func(t *testing.T) {
		bpm := createTreeBpm(t)
		tree, err := NewBplusTree[int, int]("workload", bpm, 4, 4)
		assert.NoError(t, err)

		for i := 0; i < 50; i++ {
			inserted, err := tree.Insert(i, i*10)
			assert.NoError(t, err)
			assert.True(t, inserted)
		}

		for i := 0; i < 50; i += 2 {
			assert.NoError(t, tree.Remove(i))
		}

		for i := 0; i < 50; i++ {
			val, err := tree.GetValue(i)
			if i%2 == 0 {
				var nf *util.NotFoundError
				assert.ErrorAs(t, err, &nf)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, i*10, val)
			}
		}

		it, err := tree.Begin()
		assert.NoError(t, err)
		var keys []int
		for !it.IsEnd() {
			k, _, err := it.Next()
			assert.NoError(t, err)
			keys = append(keys, k)
		}
		for i, k := range keys {
			if i > 0 {
				assert.Less(t, keys[i-1], k)
			}
		}
		assert.Equal(t, 25, len(keys))
	})
}

func createTreeBpm(t *testing.T) *buffer.BufferpoolManager {
	t.Helper()
	file := createIndexDbFile(t)

	replacer := buffer.NewLrukReplacer(64, 2)
	diskMgr := disk.NewManager(file)
	diskScheduler := disk.NewScheduler(diskMgr)
	return buffer.NewBufferpoolManager(64, replacer, diskScheduler)
}

func createIndexDbFile(t *testing.T) *os.File {
	t.Helper()
	dbFile := path.Join(t.TempDir(), "test.db")

	file, err := os.OpenFile(dbFile, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		panic(fmt.Sprintf("failed creating db file: %v", err))
	}
	_ = os.Truncate(file.Name(), disk.DEFAULT_PAGE_CAPACITY*disk.PAGE_SIZE)
	t.Cleanup(func() { _ = os.Remove(file.Name()) })
	return file
}
