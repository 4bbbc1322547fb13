package buffer

const INVALID_FRAME_ID = -1

// lrukNode tracks the access history the replacer needs to compute a
// frame's backward k-distance: the last k access timestamps, oldest
// first, capped at k entries.
type lrukNode struct {
	frameId     int
	k           int
	history     []int
	isEvictable bool
}

// hasKAccess reports whether the frame has been accessed at least k
// times, i.e. whether it has a finite backward k-distance.
func (n *lrukNode) hasKAccess() bool {
	return len(n.history) == n.k
}

// kthAccess returns the oldest timestamp still in the window — the
// reference point backward k-distance is measured from. Frames with an
// infinite backward k-distance (fewer than k accesses) are still
// ordered by this same value, since it equals their very first access.
func (n *lrukNode) kthAccess() int {
	if len(n.history) > 0 {
		return n.history[0]
	}

	return -1
}

func (n *lrukNode) addTimestamp(timestamp int) {
	if len(n.history) < n.k {
		n.history = append(n.history, timestamp)
		return
	}

	n.history = n.history[1:]
	n.history = append(n.history, timestamp)
}
