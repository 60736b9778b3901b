package domain

import (
	"context"
	"time"
)

// Notification categories (wire-level enumeration)
const (
	NotificationJobAlert          = "job_alert"
	NotificationApplicationUpdate = "application_update"
	NotificationProfileView       = "profile_view"
	NotificationSystem            = "system"
	NotificationMarketing         = "marketing"
)

// NotificationTypes lists every accepted category in display order.
var NotificationTypes = []string{
	NotificationJobAlert,
	NotificationApplicationUpdate,
	NotificationProfileView,
	NotificationSystem,
	NotificationMarketing,
}

// IsNotificationType reports whether t is one of NotificationTypes.
func IsNotificationType(t string) bool {
	for _, known := range NotificationTypes {
		if known == t {
			return true
		}
	}
	return false
}

// DefaultNotificationLimit is the fixed row limit for list queries.
const DefaultNotificationLimit = 50

// Notification is an in-app message owned by one account.
// Owner and Type never change after creation; only IsRead flips.
type Notification struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Type      string                 `json:"type"`
	IsRead    bool                   `json:"is_read"`
	ActionURL *string                `json:"action_url,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// CreateNotificationInput carries the fields accepted when creating a notification.
type CreateNotificationInput struct {
	UserID    string                 `json:"user_id" validate:"required,uuid"`
	Title     string                 `json:"title" validate:"required,max=200"`
	Message   string                 `json:"message" validate:"required,max=2000"`
	Type      string                 `json:"type" validate:"required,notification_type"`
	ActionURL *string                `json:"action_url,omitempty" validate:"omitempty,max=2048,action_ref"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Change event kinds delivered by the notification feed
const (
	NotificationEventInsert = "INSERT"
	NotificationEventUpdate = "UPDATE"
)

// NotificationEvent is one row change observed on the notifications table.
type NotificationEvent struct {
	Type   string       `json:"type"`
	Record Notification `json:"record"`
}

// ListResult is a fail-soft read. Degraded is set when the backend could not
// be reached, so an empty Items with Degraded=false really means "no data".
type ListResult struct {
	Items    []Notification `json:"items"`
	Degraded bool           `json:"degraded"`
}

// CountResult is the fail-soft unread counter.
type CountResult struct {
	Count    int  `json:"count"`
	Degraded bool `json:"degraded"`
}

// SubscribeHandlers receives pushed row changes. Either callback may be nil.
type SubscribeHandlers struct {
	OnInsert func(Notification)
	OnUpdate func(Notification)
}

// Unsubscriber tears down a live subscription.
type Unsubscriber interface {
	Close() error
}

// FeedSubscription is an open per-user change stream.
type FeedSubscription interface {
	Events() <-chan NotificationEvent
	Close() error
}

// NotificationFeed fans row changes out to per-user subscribers.
type NotificationFeed interface {
	Publish(ctx context.Context, event NotificationEvent) error
	Subscribe(ctx context.Context, userID string) (FeedSubscription, error)
}

// NotificationRepository defines data access methods for notifications
type NotificationRepository interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	GetByID(ctx context.Context, userID, id string) (*Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteMany(ctx context.Context, userID string, ids []string) (int64, error)
	Create(ctx context.Context, n *Notification) error
}

// NotificationUsecase translates notification-center intents into storage calls.
// Reads are fail-soft (Degraded flag), writes fail loud.
type NotificationUsecase interface {
	List(ctx context.Context, userID string, limit int) ListResult
	CountUnread(ctx context.Context, userID string) CountResult
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteMany(ctx context.Context, userID string, ids []string) (int64, error)
	Create(ctx context.Context, input CreateNotificationInput) (*Notification, error)
	Subscribe(ctx context.Context, userID string, handlers SubscribeHandlers) (Unsubscriber, error)
}

// NotificationEmail is the out-of-band email copy of a notification.
type NotificationEmail struct {
	NotificationID string  `json:"notification_id"`
	To             string  `json:"to"`
	Name           string  `json:"name"`
	Title          string  `json:"title"`
	Message        string  `json:"message"`
	Type           string  `json:"type"`
	ActionURL      *string `json:"action_url,omitempty"`
}

// NotificationMailer queues notification emails for background delivery.
type NotificationMailer interface {
	EnqueueNotificationEmail(ctx context.Context, email NotificationEmail) error
}
