package store

import (
	"sync"

	"github.com/example/workspace-planner/internal/floorplan"
)

// Broadcaster fans committed plans out to subscribers. Each subscriber has a
// one-slot buffer; publishing replaces an unread plan instead of blocking.
type Broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan floorplan.FloorPlan
}

// NewBroadcaster returns a broadcaster without subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan floorplan.FloorPlan)}
}

// Subscribe adds a subscriber. Calling cancel closes the channel.
func (b *Broadcaster) Subscribe() (<-chan floorplan.FloorPlan, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan floorplan.FloorPlan, 1)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

// Publish hands a copy of plan to every subscriber.
func (b *Broadcaster) Publish(plan floorplan.FloorPlan) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- plan.Clone():
			continue
		default:
		}
		// drop the unread plan so the newest one wins
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- plan.Clone():
		default:
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
