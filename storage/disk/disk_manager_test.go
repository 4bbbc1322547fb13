package disk

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileDiskManager(t *testing.T) {
	t.Run("allocates sequential offsets", func(t *testing.T) {
		dm := NewManager(CreateDbFile(t))

		off1, err := dm.allocatePage()
		assert.NoError(t, err)
		assert.Equal(t, int64(0), off1)
		dm.pages[1] = off1

		off2, err := dm.allocatePage()
		assert.NoError(t, err)
		assert.Equal(t, int64(PAGE_SIZE), off2)
	})

	t.Run("reuses freed slots before growing", func(t *testing.T) {
		dm := NewManager(CreateDbFile(t))

		dm.pages[1] = 0
		dm.freeSlots = append(dm.freeSlots, 0)

		off, err := dm.allocatePage()
		assert.NoError(t, err)
		assert.Equal(t, int64(0), off)
	})

	t.Run("writes and reads a page back", func(t *testing.T) {
		dm := NewManager(CreateDbFile(t))

		data := make([]byte, PAGE_SIZE)
		copy(data, []byte("hello, world!"))

		assert.NoError(t, dm.WritePage(1, data))

		res, err := dm.ReadPage(1)
		assert.NoError(t, err)
		assert.Equal(t, data, res)
	})

	t.Run("deleted page's offset is reused", func(t *testing.T) {
		dm := NewManager(CreateDbFile(t))

		data := make([]byte, PAGE_SIZE)
		assert.NoError(t, dm.WritePage(1, data))
		firstOffset := dm.pages[1]

		dm.DeletePage(1)
		_, stillThere := dm.pages[1]
		assert.False(t, stillThere)

		assert.NoError(t, dm.WritePage(2, data))
		assert.Equal(t, firstOffset, dm.pages[2])
	})

	t.Run("file grows once capacity is exceeded", func(t *testing.T) {
		dm := NewManager(CreateDbFile(t))
		dm.pageCapacity = 1

		assert.NoError(t, dm.WritePage(1, make([]byte, PAGE_SIZE)))
		assert.NoError(t, dm.WritePage(2, make([]byte, PAGE_SIZE)))

		assert.Equal(t, int64(2), dm.pageCapacity)
	})
}

func CreateDbFile(t *testing.T) *os.File {
	t.Helper()
	dbFile := path.Join(t.TempDir(), "test.db")

	file, err := os.OpenFile(dbFile, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		panic(fmt.Sprintf("failed creating db file\n%v", err))
	}

	_ = os.Truncate(file.Name(), DEFAULT_PAGE_CAPACITY*PAGE_SIZE)
	fileInfo, err := os.Stat(file.Name())
	assert.NoError(t, err)
	assert.True(t, fileInfo.Size() >= PAGE_SIZE)
	return file
}

func trim(data []byte) string {
	return string(bytes.Trim(data, "\x00"))
}
