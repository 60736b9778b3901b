package realtime

import (
	"context"
	"sync"

	"go-jobboard-backend/internal/domain"
)

// subscriptionBuffer bounds how far a slow subscriber may lag before events
// are dropped for it.
const subscriptionBuffer = 64

// MemoryFeed is an in-process NotificationFeed used when Redis is not
// configured. It only reaches subscribers in the same process.
type MemoryFeed struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]*memorySubscription
}

var _ domain.NotificationFeed = (*MemoryFeed)(nil)

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{subs: make(map[string]map[uint64]*memorySubscription)}
}

// Publish delivers event to every subscriber of the record's owner. A full
// subscriber buffer drops the event for that subscriber only.
func (f *MemoryFeed) Publish(_ context.Context, event domain.NotificationEvent) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, sub := range f.subs[event.Record.UserID] {
		sub.deliver(event)
	}
	return nil
}

func (f *MemoryFeed) Subscribe(ctx context.Context, userID string) (domain.FeedSubscription, error) {
	f.mu.Lock()
	f.nextID++
	sub := &memorySubscription{
		feed:   f,
		id:     f.nextID,
		userID: userID,
		events: make(chan domain.NotificationEvent, subscriptionBuffer),
		done:   make(chan struct{}),
	}
	if f.subs[userID] == nil {
		f.subs[userID] = make(map[uint64]*memorySubscription)
	}
	f.subs[userID][sub.id] = sub
	f.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			_ = sub.Close()
		case <-sub.done:
		}
	}()
	return sub, nil
}

// Subscribers returns the number of open subscriptions for userID.
func (f *MemoryFeed) Subscribers(userID string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs[userID])
}

// Close ends every open subscription.
func (f *MemoryFeed) Close() error {
	f.mu.RLock()
	var open []*memorySubscription
	for _, byID := range f.subs {
		for _, sub := range byID {
			open = append(open, sub)
		}
	}
	f.mu.RUnlock()

	for _, sub := range open {
		_ = sub.Close()
	}
	return nil
}

func (f *MemoryFeed) remove(sub *memorySubscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs[sub.userID], sub.id)
	if len(f.subs[sub.userID]) == 0 {
		delete(f.subs, sub.userID)
	}
}

type memorySubscription struct {
	feed   *MemoryFeed
	id     uint64
	userID string
	events chan domain.NotificationEvent
	done   chan struct{}

	mu     sync.Mutex
	closed bool
}

func (s *memorySubscription) deliver(event domain.NotificationEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- event:
	default:
	}
}

func (s *memorySubscription) Events() <-chan domain.NotificationEvent {
	return s.events
}

// Close is idempotent.
func (s *memorySubscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.events)
	close(s.done)
	s.mu.Unlock()

	s.feed.remove(s)
	return nil
}
