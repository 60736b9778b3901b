package notifycenter

import (
	"strings"

	"go-jobboard-backend/internal/domain"
)

// Filter categories beyond the concrete notification types
const (
	CategoryAll    = "all"
	CategoryUnread = "unread"
)

// Filter narrows the working set for display. The zero value shows everything.
type Filter struct {
	Category string `json:"category"`
	Search   string `json:"search"`
}

// Valid reports whether the category is all, unread, or a notification type.
func (f Filter) Valid() bool {
	switch f.Category {
	case "", CategoryAll, CategoryUnread:
		return true
	}
	return domain.IsNotificationType(f.Category)
}

// Match evaluates the filter against one notification.
func (f Filter) Match(n domain.Notification) bool {
	switch f.Category {
	case "", CategoryAll:
	case CategoryUnread:
		if n.IsRead {
			return false
		}
	default:
		if n.Type != f.Category {
			return false
		}
	}

	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(n.Title), term) ||
		strings.Contains(strings.ToLower(n.Message), term)
}

// Apply returns the matching notifications in working-set order.
func (f Filter) Apply(items []domain.Notification) []domain.Notification {
	out := make([]domain.Notification, 0, len(items))
	for _, n := range items {
		if f.Match(n) {
			out = append(out, n)
		}
	}
	return out
}
