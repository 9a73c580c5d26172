package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/giantswarm/kubectl-mcp/internal/logging"
)

// Publisher is the capability services use to announce resource changes.
type Publisher interface {
	NotifyResourceChange(ctx context.Context, resourceType, eventType string, data map[string]any)
}

// WatchFunc reacts to a resource change. Errors and panics are logged and
// never interrupt the broadcast path.
type WatchFunc func(ctx context.Context, ev Event) error

// Recorder receives bus measurements. It is satisfied by
// *instrumentation.Metrics.
type Recorder interface {
	RecordEventBroadcast(eventType string, delivered, pruned int)
	RecordSubscribers(delta int64)
}

// AllResources registers a watcher for every resource type.
const AllResources = "*"

type watcher struct {
	id string
	fn WatchFunc
}

// Bus is the process-wide subscriber registry.
type Bus struct {
	mu          sync.Mutex
	subscribers map[string]*Subscription

	watchMu  sync.RWMutex
	watchers map[string][]watcher

	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(b *Bus) {
		b.recorder = r
	}
}

// WithClock replaces the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(b *Bus) {
		b.now = now
	}
}

// NewBus returns an empty Bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		subscribers: make(map[string]*Subscription),
		watchers:    make(map[string][]watcher),
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a new subscriber receiving events that pass filter.
func (b *Bus) Subscribe(filter Filter) *Subscription {
	sub := newSubscription(uuid.NewString(), filter)

	b.mu.Lock()
	b.subscribers[sub.id] = sub
	count := len(b.subscribers)
	b.mu.Unlock()

	if b.recorder != nil {
		b.recorder.RecordSubscribers(1)
	}
	b.logger.Info("subscriber added",
		logging.Subscriber(sub.id),
		logging.ResourceType(filter.ResourceType),
		logging.Namespace(filter.Namespace),
		slog.Int("subscribers", count))
	return sub
}

// Unsubscribe removes and closes sub. It is safe to call more than once.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	_, ok := b.subscribers[sub.id]
	if ok {
		delete(b.subscribers, sub.id)
	}
	count := len(b.subscribers)
	b.mu.Unlock()

	sub.Close()
	if !ok {
		return
	}
	if b.recorder != nil {
		b.recorder.RecordSubscribers(-1)
	}
	b.logger.Info("subscriber removed", logging.Subscriber(sub.id), slog.Int("subscribers", count))
}

// SubscriberCount returns the number of registered subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// Broadcast wraps data in an Event of the given type and queues it for every
// matching subscriber. It returns the number of subscribers the event was
// delivered to. Subscribers whose send failed are removed afterwards.
func (b *Bus) Broadcast(eventType string, data map[string]any) int {
	return b.publish(Event{Type: eventType, Data: data})
}

func (b *Bus) publish(ev Event) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.subscribers) == 0 {
		return 0
	}

	if ev.Timestamp.IsZero() {
		ev.Timestamp = b.now().UTC()
	}
	if ev.Data == nil {
		ev.Data = map[string]any{}
	}

	delivered := 0
	var failed []*Subscription
	for _, sub := range b.subscribers {
		if !sub.filter.Matches(ev) {
			continue
		}
		if err := sub.send(ev); err != nil {
			failed = append(failed, sub)
			continue
		}
		delivered++
	}

	for _, sub := range failed {
		delete(b.subscribers, sub.id)
		b.logger.Error("dropping subscriber after failed send",
			logging.Subscriber(sub.id),
			logging.EventType(ev.Type))
	}

	if b.recorder != nil {
		b.recorder.RecordEventBroadcast(ev.Type, delivered, len(failed))
		if len(failed) > 0 {
			b.recorder.RecordSubscribers(-int64(len(failed)))
		}
	}
	return delivered
}

// NotifyResourceChange broadcasts "<resourceType>_<eventType>" and then runs
// the watchers registered for resourceType and for AllResources.
func (b *Bus) NotifyResourceChange(ctx context.Context, resourceType, eventType string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	ev := Event{
		Type:         Name(resourceType, eventType),
		ResourceType: resourceType,
		EventType:    eventType,
		Timestamp:    b.now().UTC(),
		Data:         data,
	}
	b.publish(ev)

	for _, w := range b.watchersFor(resourceType) {
		b.runWatcher(ctx, w, ev)
	}
}

// Watch registers fn for changes of resourceType (or AllResources) and
// returns a function removing it.
func (b *Bus) Watch(resourceType string, fn WatchFunc) (cancel func()) {
	w := watcher{id: uuid.NewString(), fn: fn}

	b.watchMu.Lock()
	b.watchers[resourceType] = append(b.watchers[resourceType], w)
	b.watchMu.Unlock()

	return func() {
		b.watchMu.Lock()
		defer b.watchMu.Unlock()
		list := b.watchers[resourceType]
		for i := range list {
			if list[i].id == w.id {
				b.watchers[resourceType] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Close unsubscribes everyone and drops all watchers.
func (b *Bus) Close() {
	b.mu.Lock()
	subs := b.subscribers
	b.subscribers = make(map[string]*Subscription)
	b.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
	if b.recorder != nil && len(subs) > 0 {
		b.recorder.RecordSubscribers(-int64(len(subs)))
	}

	b.watchMu.Lock()
	b.watchers = make(map[string][]watcher)
	b.watchMu.Unlock()
}

func (b *Bus) watchersFor(resourceType string) []watcher {
	b.watchMu.RLock()
	defer b.watchMu.RUnlock()
	out := make([]watcher, 0, len(b.watchers[resourceType])+len(b.watchers[AllResources]))
	out = append(out, b.watchers[resourceType]...)
	if resourceType != AllResources {
		out = append(out, b.watchers[AllResources]...)
	}
	return out
}

func (b *Bus) runWatcher(ctx context.Context, w watcher, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("watcher panicked",
				logging.EventType(ev.Type),
				logging.Err(fmt.Errorf("%v", r)))
		}
	}()
	if err := w.fn(ctx, ev); err != nil {
		b.logger.Error("watcher failed", logging.EventType(ev.Type), logging.Err(err))
	}
}
