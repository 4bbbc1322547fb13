package index

import "github.com/Garyyyyyyy/bustub/util"

// GetKeyRange returns every value whose key falls in [start, stop],
// walking the leaf chain instead of repeating point lookups.
func (b *BplusTree[K, V]) GetKeyRange(start, stop K) ([]V, error) {
	it, err := b.beginFrom(start)
	if err != nil {
		return nil, err
	}

	res := []V{}
	for !it.IsEnd() {
		key, val, err := it.Next()
		if err != nil {
			return res, err
		}
		if key > stop {
			break
		}
		res = append(res, val)
	}

	return res, nil
}

// BatchInsert inserts every item, stopping at the first duplicate or
// error so the caller knows exactly which key it failed on.
func (b *BplusTree[K, V]) BatchInsert(items map[K]V) error {
	for k, v := range items {
		inserted, err := b.Insert(k, v)
		if err != nil {
			return err
		}
		if !inserted {
			return util.NewDuplicateKeyError(k)
		}
	}
	return nil
}
