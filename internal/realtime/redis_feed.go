package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// ChannelFor returns the Redis pub/sub channel carrying one account's events.
func ChannelFor(userID string) string {
	return "notifications:" + userID
}

// RedisFeed fans notification events out through Redis pub/sub so every API
// replica reaches its own WebSocket clients.
type RedisFeed struct {
	client *redis.Client
}

var _ domain.NotificationFeed = (*RedisFeed)(nil)

func NewRedisFeed(client *redis.Client) *RedisFeed {
	return &RedisFeed{client: client}
}

func (f *RedisFeed) Publish(ctx context.Context, event domain.NotificationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode notification event: %w", err)
	}
	if err := f.client.Publish(ctx, ChannelFor(event.Record.UserID), payload).Err(); err != nil {
		return fmt.Errorf("publish notification event: %w", err)
	}
	return nil
}

// Subscribe returns once Redis has confirmed the subscription.
func (f *RedisFeed) Subscribe(ctx context.Context, userID string) (domain.FeedSubscription, error) {
	channel := ChannelFor(userID)
	pubsub := f.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &redisSubscription{
		pubsub: pubsub,
		cancel: cancel,
		events: make(chan domain.NotificationEvent, subscriptionBuffer),
	}
	go sub.forward(subCtx, userID)
	return sub, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	cancel context.CancelFunc
	events chan domain.NotificationEvent
	once   sync.Once
}

func (s *redisSubscription) forward(ctx context.Context, userID string) {
	defer close(s.events)
	ch := s.pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			event, err := DecodeEvent([]byte(msg.Payload))
			if err != nil {
				logger.Log.Warn("dropping malformed notification event",
					slog.String("channel", msg.Channel), slog.Any("error", err))
				continue
			}
			// Channel names are per account, but never trust the payload blindly
			if event.Record.UserID != userID {
				continue
			}
			select {
			case s.events <- event:
			case <-ctx.Done():
				return
			default:
				logger.Log.Warn("subscriber lagging, dropping notification event",
					slog.String("notification_id", event.Record.ID))
			}
		}
	}
}

func (s *redisSubscription) Events() <-chan domain.NotificationEvent {
	return s.events
}

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() {
		s.cancel()
		err = s.pubsub.Close()
	})
	return err
}

// DecodeEvent parses a feed payload and rejects events that are not
// INSERT or UPDATE or that lack an id or owner.
func DecodeEvent(payload []byte) (domain.NotificationEvent, error) {
	var event domain.NotificationEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return event, fmt.Errorf("decode notification event: %w", err)
	}
	switch event.Type {
	case domain.NotificationEventInsert, domain.NotificationEventUpdate:
	default:
		return event, fmt.Errorf("unsupported notification event type %q", event.Type)
	}
	if event.Record.ID == "" || event.Record.UserID == "" {
		return event, fmt.Errorf("notification event missing id or user_id")
	}
	return event, nil
}
