package sim

import "log"

// HookPosBufPush marks when an element is pushed into the buffer.
var HookPosBufPush = &HookPos{Name: "Buffer Push"}

// HookPosBufPop marks when an element is popped from the buffer.
var HookPosBufPop = &HookPos{Name: "Buffer Pop"}

// A Buffer is a bounded FIFO queue. The monitor reports the level of every
// buffer a component owns.
type Buffer interface {
	Named
	Hookable

	CanPush() bool

	// Push appends an element. Pushing into a full buffer panics.
	Push(e any)

	// Pop removes the oldest element. It returns nil if the buffer is empty.
	Pop() any

	Peek() any
	Capacity() int
	Size() int
	Clear()
}

// NewBuffer creates a buffer that holds up to capacity elements.
func NewBuffer(name string, capacity int) Buffer {
	NameMustBeValid(name)

	if capacity < 0 {
		log.Panicf("buffer %s: negative capacity %d", name, capacity)
	}

	return &ringBuffer{
		name:  name,
		slots: make([]any, capacity),
	}
}

// ringBuffer stores the elements in a fixed slice. head is the slot of the
// oldest element.
type ringBuffer struct {
	HookableBase

	name  string
	slots []any
	head  int
	count int
}

func (b *ringBuffer) Name() string {
	return b.name
}

func (b *ringBuffer) CanPush() bool {
	return b.count < len(b.slots)
}

func (b *ringBuffer) Push(e any) {
	if !b.CanPush() {
		log.Panicf("buffer %s overflow", b.name)
	}

	b.slots[(b.head+b.count)%len(b.slots)] = e
	b.count++

	b.invoke(HookPosBufPush, e)
}

func (b *ringBuffer) Pop() any {
	if b.count == 0 {
		return nil
	}

	e := b.slots[b.head]
	b.slots[b.head] = nil
	b.head = (b.head + 1) % len(b.slots)
	b.count--

	b.invoke(HookPosBufPop, e)

	return e
}

func (b *ringBuffer) Peek() any {
	if b.count == 0 {
		return nil
	}

	return b.slots[b.head]
}

func (b *ringBuffer) Capacity() int {
	return len(b.slots)
}

func (b *ringBuffer) Size() int {
	return b.count
}

func (b *ringBuffer) Clear() {
	clear(b.slots)
	b.head = 0
	b.count = 0
}

func (b *ringBuffer) invoke(pos *HookPos, e any) {
	if b.NumHooks() == 0 {
		return
	}

	b.InvokeHook(HookCtx{Domain: b, Pos: pos, Item: e})
}
