// Package notify is the process-wide toast analogue: transient
// notifications held in an explicit bounded FIFO. When the queue is full
// the oldest entry is evicted, matching how the UI dismissed the oldest
// toast before showing a new one.
package notify

import (
	"sync"
	"time"
)

// Type mirrors the notification styles the UI distinguished.
type Type string

const (
	Success Type = "success"
	Error   Type = "error"
	Info    Type = "info"
)

type Notification struct {
	Type    Type
	Message string
	At      time.Time
}

// Sink receives notifications as they are pushed, e.g. to print them.
type Sink func(Notification)

// Queue is a bounded FIFO of the most recent notifications.
type Queue struct {
	mu    sync.Mutex
	max   int
	items []Notification
	sink  Sink
}

const defaultMax = 2

// NewQueue creates a queue holding at most max notifications. A max below
// one falls back to the default of 2 (the UI's toast limit).
func NewQueue(max int, sink Sink) *Queue {
	if max < 1 {
		max = defaultMax
	}
	return &Queue{max: max, sink: sink}
}

// Push appends a notification, evicting the oldest when full.
func (q *Queue) Push(t Type, message string) {
	n := Notification{Type: t, Message: message, At: time.Now()}

	q.mu.Lock()
	if len(q.items) >= q.max {
		q.items = append(q.items[:0], q.items[1:]...)
	}
	q.items = append(q.items, n)
	sink := q.sink
	q.mu.Unlock()

	if sink != nil {
		sink(n)
	}
}

func (q *Queue) Successf(message string) { q.Push(Success, message) }
func (q *Queue) Errorf(message string)   { q.Push(Error, message) }

// Pending returns the queued notifications, oldest first.
func (q *Queue) Pending() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Notification, len(q.items))
	copy(out, q.items)
	return out
}

// Len returns the number of queued notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
