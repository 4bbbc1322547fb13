package util

import (
	"github.com/Garyyyyyyy/bustub/storage/disk"
	"github.com/vmihailenco/msgpack"
)

// ToByteSlice encodes obj with msgpack and returns a disk.PAGE_SIZE
// buffer with the encoding at the front and the remainder zero-filled.
// Every struct this is called with must stay small enough to fit; an
// encoding longer than PAGE_SIZE is rejected with an
// InvalidOperationError.
func ToByteSlice[T any](obj T) ([]byte, error) {
	data, err := msgpack.Marshal(obj)
	if err != nil {
		return nil, err
	}

	if len(data) > disk.PAGE_SIZE {
		return nil, NewInvalidOperationError("encoded page exceeds page size")
	}

	res := make([]byte, disk.PAGE_SIZE)
	copy(res, data)
	return res, nil
}

// ToStruct decodes a page-sized buffer back into T. Trailing zero bytes
// are msgpack no-ops, so the buffer doesn't need to be trimmed first.
func ToStruct[T any](data []byte) (T, error) {
	var res T

	if err := msgpack.Unmarshal(data, &res); err != nil {
		return res, err
	}

	return res, nil
}
