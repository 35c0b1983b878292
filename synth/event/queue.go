// Package event holds the time-ordered command queue the engine drains on
// its control loop. Commands are plain data; the engine decides what they do.
package event

import (
	"container/heap"
	"fmt"
)

// Kind identifies what a queued command asks for.
type Kind int

const (
	// SchedulerTick plays the next sequencer note.
	SchedulerTick Kind = iota
	// Release starts the release phase of a voice.
	Release
	// Teardown detaches a voice from the bus.
	Teardown
)

func (k Kind) String() string {
	switch k {
	case SchedulerTick:
		return "tick"
	case Release:
		return "release"
	case Teardown:
		return "teardown"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Command is due at At on the engine clock.
type Command struct {
	At      float64
	Kind    Kind
	VoiceID uint64
	// Generation lets the scheduler discard a tick queued before a restart.
	Generation uint64
}

// Handle identifies a queued command for cancellation. The zero Handle is
// never issued.
type Handle uint64

type item struct {
	cmd    Command
	handle Handle
	seq    uint64
	index  int
}

type itemHeap []*item

func (h itemHeap) Len() int { return len(h) }

func (h itemHeap) Less(i, j int) bool {
	if h[i].cmd.At != h[j].cmd.At {
		return h[i].cmd.At < h[j].cmd.At
	}
	return h[i].seq < h[j].seq
}

func (h itemHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *itemHeap) Push(x any) {
	it := x.(*item)
	it.index = len(*h)
	*h = append(*h, it)
}

func (h *itemHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*h = old[:n-1]
	return it
}

// Queue orders commands by due time, then by insertion. It is not safe for
// concurrent use; the engine guards it with its own mutex.
type Queue struct {
	items  itemHeap
	byID   map[Handle]*item
	nextID Handle
	seq    uint64
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{byID: make(map[Handle]*item)}
}

// Push queues cmd and returns a handle for Cancel.
func (q *Queue) Push(cmd Command) Handle {
	q.nextID++
	q.seq++
	it := &item{cmd: cmd, handle: q.nextID, seq: q.seq}
	heap.Push(&q.items, it)
	q.byID[it.handle] = it
	return it.handle
}

// Cancel removes the command behind h. It reports false when h was never
// issued, already fired or already cancelled.
func (q *Queue) Cancel(h Handle) bool {
	it, ok := q.byID[h]
	if !ok {
		return false
	}
	heap.Remove(&q.items, it.index)
	delete(q.byID, h)
	return true
}

// Pending reports whether h is still queued.
func (q *Queue) Pending(h Handle) bool {
	_, ok := q.byID[h]
	return ok
}

// Peek returns the earliest command without removing it.
func (q *Queue) Peek() (Command, bool) {
	if len(q.items) == 0 {
		return Command{}, false
	}
	return q.items[0].cmd, true
}

// PopDue removes and returns the earliest command with At <= now.
func (q *Queue) PopDue(now float64) (Command, bool) {
	if len(q.items) == 0 || q.items[0].cmd.At > now {
		return Command{}, false
	}
	it := heap.Pop(&q.items).(*item)
	delete(q.byID, it.handle)
	return it.cmd, true
}

// Len returns the number of queued commands.
func (q *Queue) Len() int { return len(q.items) }

// Count returns how many queued commands have the given kind.
func (q *Queue) Count(kind Kind) int {
	n := 0
	for _, it := range q.items {
		if it.cmd.Kind == kind {
			n++
		}
	}
	return n
}

// Clear drops every queued command.
func (q *Queue) Clear() {
	for i := range q.items {
		q.items[i] = nil
	}
	q.items = q.items[:0]
	clear(q.byID)
}
