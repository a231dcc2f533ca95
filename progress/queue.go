package progress

import (
	"sync"
	"sync/atomic"
)

// Event is a snapshot of the progress of an operation
type Event struct {
	Op    Operation
	Value int
	Max   int
}

// Queue is a Reporter delivering every change as an Event on an infinitely
// buffered channel, so the operation never blocks on a slow consumer
type Queue struct {
	ch    chan Event
	done  chan struct{}
	items []Event
	mu    sync.Mutex
	busy  atomic.Bool
	once  sync.Once

	// current state, only touched by the reporting goroutine
	op    Operation
	value int
	max   int
}

func NewQueue() *Queue {
	q := &Queue{
		ch:   make(chan Event),
		done: make(chan struct{}),
	}
	return q
}

// Chan returns the channel events are delivered on
func (q *Queue) Chan() <-chan Event {
	return q.ch
}

// Close stops delivery. Pending events are dropped
func (q *Queue) Close() {
	q.once.Do(func() {
		close(q.done)
	})
}

func (q *Queue) New(op Operation, max int) {
	q.op = op
	q.max = max
	q.value = 0
	q.push(Event{Op: op, Max: max})
}

func (q *Queue) Increment() {
	q.value += 1
	q.push(Event{Op: q.op, Value: q.value, Max: q.max})
}

func (q *Queue) push(item Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	select {
	case <-q.done:
		return
	default:
	}
	q.items = append(q.items, item)
	if !q.busy.Load() {
		q.busy.Store(true)
		go q.process()
	}
}

func (q *Queue) pop() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var item Event
	switch len(q.items) {
	case 0:
		q.busy.Store(false)
		return item, false
	case 1:
		item = q.items[0]
		q.items = make([]Event, 0)
	default:
		item = q.items[0]
		q.items = q.items[1:]
	}
	return item, true
}

func (q *Queue) process() {
	for {
		item, ok := q.pop()
		if !ok {
			return
		}
		select {
		case q.ch <- item:
		case <-q.done:
			q.mu.Lock()
			q.items = nil
			q.busy.Store(false)
			q.mu.Unlock()
			return
		}
	}
}
