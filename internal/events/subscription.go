package events

import (
	"context"
	"errors"
	"sync"
)

// ErrSubscriptionClosed is returned when sending to or reading from a closed
// subscription.
var ErrSubscriptionClosed = errors.New("subscription closed")

// Subscription is one subscriber's unbounded, ordered message queue.
type Subscription struct {
	id     string
	filter Filter

	mu     sync.Mutex
	queue  []Event
	closed bool
	ready  chan struct{}
	done   chan struct{}
}

func newSubscription(id string, filter Filter) *Subscription {
	return &Subscription{
		id:     id,
		filter: filter,
		ready:  make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// ID returns the subscriber ID.
func (s *Subscription) ID() string {
	return s.id
}

// Filter returns the subscriber's filter.
func (s *Subscription) Filter() Filter {
	return s.filter
}

// Ready is signalled whenever new events were queued.
func (s *Subscription) Ready() <-chan struct{} {
	return s.ready
}

// Done is closed when the subscription is closed.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Drain removes and returns all queued events in order.
func (s *Subscription) Drain() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.queue
	s.queue = nil
	return out
}

// Pending returns the number of queued events.
func (s *Subscription) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Next blocks until an event is available, the subscription is closed or ctx
// is done.
func (s *Subscription) Next(ctx context.Context) (Event, error) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			ev := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return ev, nil
		}
		closed := s.closed
		s.mu.Unlock()

		if closed {
			return Event{}, ErrSubscriptionClosed
		}

		select {
		case <-s.ready:
		case <-s.done:
		case <-ctx.Done():
			return Event{}, ctx.Err()
		}
	}
}

// Close marks the subscription as gone. The bus drops it on its next
// broadcast; call Bus.Unsubscribe to drop it immediately. Close is idempotent.
func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.queue = nil
	close(s.done)
}

// Closed reports whether Close was called.
func (s *Subscription) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Subscription) send(ev Event) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSubscriptionClosed
	}
	s.queue = append(s.queue, ev)
	s.mu.Unlock()

	select {
	case s.ready <- struct{}{}:
	default:
	}
	return nil
}
