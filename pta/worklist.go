package pta

import "github.com/kvistgaard/sift/internal/queue"

// workEntry pairs a pointer with a set of objects to propagate into it.
type workEntry struct {
	p   Pointer
	pts *PointsToSet
}

// worklist is a FIFO of (pointer, points-to set) entries. Duplicates are
// permitted; the delta check in the main loop absorbs them.
type worklist struct {
	q queue.Queue[workEntry]
}

func (w *worklist) add(p Pointer, pts *PointsToSet) {
	w.q.Push(workEntry{p, pts})
}

func (w *worklist) poll() (workEntry, bool) {
	return w.q.Poll()
}
