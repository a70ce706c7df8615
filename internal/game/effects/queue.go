package effects

import (
	"errors"
	"sync"
)

// FollowUpKind describes what scheduled the follow-up.
type FollowUpKind string

const (
	// FollowUpTriggered comes from a trigger reacting to an event.
	FollowUpTriggered FollowUpKind = "TRIGGERED"
	// FollowUpScripted comes from an effect scheduling more work.
	FollowUpScripted FollowUpKind = "SCRIPTED"
)

// FollowUp is a deferred unit of work produced while an action is being
// applied. Follow-ups run after the current action completes, in the
// order they were enqueued, so reactions observe a consistent state.
type FollowUp struct {
	ID          string
	Controller  string
	Description string
	Kind        FollowUpKind
	SourceID    string
	Metadata    map[string]string
	Run         func() error
}

// Queue is a FIFO of pending follow-ups.
type Queue struct {
	mu    sync.Mutex
	items []FollowUp
}

// NewQueue creates an empty follow-up queue.
func NewQueue() *Queue {
	return &Queue{items: make([]FollowUp, 0, 8)}
}

// Enqueue appends an item to the back of the queue.
func (q *Queue) Enqueue(item FollowUp) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, item)
}

// Dequeue removes and returns the front item.
func (q *Queue) Dequeue() (FollowUp, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return FollowUp{}, errors.New("queue empty")
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, nil
}

// Remove deletes an item from anywhere in the queue by ID.
func (q *Queue) Remove(id string) (FollowUp, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for idx, item := range q.items {
		if item.ID == id {
			q.items = append(q.items[:idx], q.items[idx+1:]...)
			return item, true
		}
	}
	return FollowUp{}, false
}

// List returns a copy of the pending items, front first.
func (q *Queue) List() []FollowUp {
	q.mu.Lock()
	defer q.mu.Unlock()
	cpy := make([]FollowUp, len(q.items))
	copy(cpy, q.items)
	return cpy
}

// Len returns the number of pending items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// IsEmpty returns whether the queue is empty.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// Clear drops all pending items.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = q.items[:0]
}
