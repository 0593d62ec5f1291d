package analytics

import (
	"cmp"
	"container/heap"
	"sort"
)

// rankEntry pairs a string key with an ordered rank value.
type rankEntry[V cmp.Ordered] struct {
	Key   string
	Value V
}

// entryHeap is a min-heap on (Value, Key): the weakest entry sits at the
// root and is the first evicted. Ties on Value break toward keeping the
// lexicographically smaller key, so results are deterministic.
type entryHeap[V cmp.Ordered] struct {
	items []rankEntry[V]
}

func (h entryHeap[V]) Len() int      { return len(h.items) }
func (h entryHeap[V]) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h entryHeap[V]) Less(i, j int) bool {
	if h.items[i].Value != h.items[j].Value {
		return h.items[i].Value < h.items[j].Value
	}
	return h.items[i].Key > h.items[j].Key
}
func (h *entryHeap[V]) Push(x interface{}) { h.items = append(h.items, x.(rankEntry[V])) }
func (h *entryHeap[V]) Pop() interface{} {
	old := h.items
	n := len(old)
	x := old[n-1]
	h.items = old[:n-1]
	return x
}

// topN retains the N largest entries inserted into it, with ties broken
// by key ascending.
type topN[V cmp.Ordered] struct {
	h        *entryHeap[V]
	capacity int
}

func newTopN[V cmp.Ordered](capacity int) *topN[V] {
	if capacity <= 0 {
		capacity = 1
	}
	h := &entryHeap[V]{items: make([]rankEntry[V], 0, capacity)}
	heap.Init(h)
	return &topN[V]{h: h, capacity: capacity}
}

func (t *topN[V]) Insert(key string, value V) {
	e := rankEntry[V]{Key: key, Value: value}
	if t.h.Len() < t.capacity {
		heap.Push(t.h, e)
		return
	}
	root := t.h.items[0]
	if value > root.Value || (value == root.Value && key < root.Key) {
		t.h.items[0] = e
		heap.Fix(t.h, 0)
	}
}

// Values returns the retained entries sorted by value descending, key
// ascending on ties.
func (t *topN[V]) Values() []rankEntry[V] {
	out := make([]rankEntry[V], len(t.h.items))
	copy(out, t.h.items)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Key < out[j].Key
	})
	return out
}
