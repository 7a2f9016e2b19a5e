package hybridastar

import "container/heap"

// frontierEntry is a queued key with the f value it had when pushed. Several entries may exist for
// one key; only the one matching the open node's current f is live.
type frontierEntry struct {
	key int64
	f   float64
	seq uint64
}

// entryHeap orders entries by f, then by push order so ties pop deterministically.
type entryHeap []frontierEntry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x interface{}) { *h = append(*h, x.(frontierEntry)) }

func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// frontier is the open set: a lazy-deletion priority queue plus the index of the best node per key.
type frontier struct {
	entries entryHeap
	open    map[int64]int
	seq     uint64
}

func newFrontier() *frontier {
	return &frontier{open: map[int64]int{}}
}

// push records idx as the best node for key and queues it with priority f.
func (fr *frontier) push(key int64, idx int, f float64) {
	fr.open[key] = idx
	heap.Push(&fr.entries, frontierEntry{key: key, f: f, seq: fr.seq})
	fr.seq++
}

// lookup returns the open node for key.
func (fr *frontier) lookup(key int64) (int, bool) {
	idx, ok := fr.open[key]
	return idx, ok
}

// pop removes and returns the lowest entry whose f still matches the open node for its key, and
// removes the key from the open index. It returns false once no live entry remains.
func (fr *frontier) pop(fOf func(idx int) float64) (key int64, idx int, ok bool) {
	for fr.entries.Len() > 0 {
		e := heap.Pop(&fr.entries).(frontierEntry)
		idx, live := fr.open[e.key]
		if !live || fOf(idx) != e.f {
			continue
		}
		delete(fr.open, e.key)
		return e.key, idx, true
	}
	return 0, 0, false
}

func (fr *frontier) len() int {
	return len(fr.open)
}

func (fr *frontier) reset() {
	fr.entries = fr.entries[:0]
	clear(fr.open)
	fr.seq = 0
}
