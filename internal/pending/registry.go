// Package pending tracks named in-flight operations so that an external
// poller (typically browser test automation) can tell when a page has
// gone quiet.
package pending

import (
	"context"
	"sync"
	"time"

	"github.com/ziadkadry99/pageutil/internal/logging"
)

var log = logging.For("pending")

// NoID is the "do not register" sentinel. Begin(NoID) only reports the
// current count.
const NoID = ""

// InitID is registered by the server while it starts up.
const InitID = "init"

// EventKind says which side of an operation an Event reports.
type EventKind string

const (
	EventBegin EventKind = "begin"
	EventEnd   EventKind = "end"
)

// Event describes one change to the registry.
type Event struct {
	Kind  EventKind
	ID    string
	Count int
	At    time.Time
}

// Observer is notified after every change. Observers run synchronously
// on the caller's goroutine, outside the registry lock.
type Observer func(Event)

// Registry is a multiset of pending operation ids plus a log of the ones
// that completed. The zero value is not usable; call New.
type Registry struct {
	mu          sync.Mutex
	pending     []string
	completed   []string
	observers   []Observer
	subscribers map[int]chan int
	nextSub     int
	now         func() time.Time
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		subscribers: make(map[int]chan int),
		now:         time.Now,
	}
}

// Begin registers id as outstanding and returns the new pending count.
// The same id may be registered more than once; each registration needs
// its own End.
func (r *Registry) Begin(id string) int {
	if id == NoID {
		return r.Count()
	}

	r.mu.Lock()
	r.pending = append(r.pending, id)
	n := len(r.pending)
	r.publishLocked(n)
	r.mu.Unlock()

	log.WithField("id", id).WithField("count", n).Debug("pending begin")
	r.notify(Event{Kind: EventBegin, ID: id, Count: n, At: r.now()})
	return n
}

// End resolves the first outstanding registration of id and returns the
// remaining pending count. Ending an id that is not pending is a no-op.
func (r *Registry) End(id string) int {
	r.mu.Lock()
	idx := -1
	for i, p := range r.pending {
		if p == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		n := len(r.pending)
		r.mu.Unlock()
		log.WithField("id", id).Debug("pending end for unknown id")
		return n
	}

	r.pending = append(r.pending[:idx], r.pending[idx+1:]...)
	r.completed = append(r.completed, id)
	n := len(r.pending)
	r.publishLocked(n)
	r.mu.Unlock()

	log.WithField("id", id).WithField("count", n).Debug("pending end")
	r.notify(Event{Kind: EventEnd, ID: id, Count: n, At: r.now()})
	return n
}

// Count returns the number of outstanding registrations. Zero means idle.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Pending returns a copy of the outstanding ids in registration order.
func (r *Registry) Pending() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.pending...)
}

// Completed returns a copy of the completion log.
func (r *Registry) Completed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.completed...)
}

// Observe adds an observer that sees every subsequent change.
func (r *Registry) Observe(o Observer) {
	r.mu.Lock()
	r.observers = append(r.observers, o)
	r.mu.Unlock()
}

// Subscribe returns a channel that receives the pending count after each
// change. Slow readers only see the latest value. The returned func
// unsubscribes and closes the channel.
func (r *Registry) Subscribe() (<-chan int, func()) {
	ch := make(chan int, 1)

	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subscribers[id] = ch
	r.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subscribers, id)
			r.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// WaitIdle blocks until nothing is pending or ctx is done.
func (r *Registry) WaitIdle(ctx context.Context) error {
	ch, cancel := r.Subscribe()
	defer cancel()

	if r.Count() == 0 {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-ch:
			if n == 0 {
				return nil
			}
		}
	}
}

// publishLocked hands n to every subscriber, replacing any value the
// subscriber has not read yet. r.mu must be held.
func (r *Registry) publishLocked(n int) {
	for _, ch := range r.subscribers {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- n:
		default:
		}
	}
}

func (r *Registry) notify(e Event) {
	r.mu.Lock()
	observers := append([]Observer(nil), r.observers...)
	r.mu.Unlock()

	for _, o := range observers {
		o(e)
	}
}
