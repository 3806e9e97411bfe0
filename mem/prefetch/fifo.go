package prefetch

// fifo is a fixed-capacity queue backed by an array that is allocated once.
// Pushing into a full fifo drops the oldest entry.
type fifo[T any] struct {
	entries []T
	head    int
	size    int
}

func newFIFO[T any](capacity int) *fifo[T] {
	return &fifo[T]{
		entries: make([]T, capacity),
	}
}

// Len returns the number of entries in the fifo.
func (q *fifo[T]) Len() int {
	return q.size
}

// Cap returns the maximum number of entries that the fifo can hold.
func (q *fifo[T]) Cap() int {
	return len(q.entries)
}

// PushBack appends an entry as the newest one.
func (q *fifo[T]) PushBack(e T) {
	if q.size == len(q.entries) {
		q.entries[q.head] = e
		q.head = (q.head + 1) % len(q.entries)

		return
	}

	q.entries[(q.head+q.size)%len(q.entries)] = e
	q.size++
}

// At returns the i-th oldest entry. The pointer stays valid until the slot
// is overwritten.
func (q *fifo[T]) At(i int) *T {
	if i < 0 || i >= q.size {
		panic("fifo index out of range")
	}

	return &q.entries[(q.head+i)%len(q.entries)]
}

// Clear removes all entries.
func (q *fifo[T]) Clear() {
	var zero T
	for i := range q.entries {
		q.entries[i] = zero
	}

	q.head = 0
	q.size = 0
}
