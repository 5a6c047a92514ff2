package qem

import (
	"container/heap"

	"github.com/isomesh/isomesh/mesh"
)

// pair is a proposed contraction of two vertices, carrying the version sum
// its endpoints had when it was enqueued so a pop can detect staleness.
type pair struct {
	v1, v2    int
	version   int
	err       float64
	newVertex mesh.Vertex
}

// pairHeap is a min-heap on quadric error: the smallest error is popped
// first, equivalent to spec's max-priority queue keyed by negative error.
type pairHeap []*pair

func (h pairHeap) Len() int { return len(h) }
func (h pairHeap) Less(i, j int) bool {
	if h[i].err != h[j].err {
		return h[i].err < h[j].err
	}
	// Deterministic tie-break: lower endpoint pair sorts first.
	if h[i].v1 != h[j].v1 {
		return h[i].v1 < h[j].v1
	}
	return h[i].v2 < h[j].v2
}
func (h pairHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *pairHeap) Push(x any) {
	*h = append(*h, x.(*pair))
}

func (h *pairHeap) Pop() any {
	old := *h
	n := len(old)
	p := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return p
}

var _ heap.Interface = (*pairHeap)(nil)
