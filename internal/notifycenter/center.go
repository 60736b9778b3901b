// Package notifycenter holds one signed-in user's notification working set:
// the list shown in the dropdown and on the full page, its unread counter,
// the active filter, and the live subscription that keeps it current.
package notifycenter

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"

	"golang.org/x/sync/errgroup"
)

// State of a Center's working set
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
)

// NavigationKind says how a client should follow an action reference.
type NavigationKind string

const (
	NavigateNone     NavigationKind = "none"
	NavigateInternal NavigationKind = "internal" // route inside the app
	NavigateExternal NavigationKind = "external" // open a new browsing context
)

type Navigation struct {
	Kind   NavigationKind `json:"kind"`
	Target string         `json:"target,omitempty"`
}

// ChangeKind tags a pushed change delivered to a Listener.
type ChangeKind string

const (
	ChangeInserted ChangeKind = "inserted"
	ChangeUpdated  ChangeKind = "updated"
)

// Change is a pushed row that altered the working set.
type Change struct {
	Kind         ChangeKind          `json:"kind"`
	Notification domain.Notification `json:"notification"`
}

// Listener is called after a pushed change has been merged. It runs on the
// subscription goroutine and must not block for long.
type Listener func(Change)

// Snapshot is the filtered view of a Center at one point in time.
type Snapshot struct {
	State       State                 `json:"state"`
	Items       []domain.Notification `json:"items"`
	Total       int                   `json:"total"`
	UnreadCount int                   `json:"unread_count"`
	Filter      Filter                `json:"filter"`
	Degraded    bool                  `json:"degraded"`
}

// Center is safe for concurrent use: pushes arrive on the subscription
// goroutine while commands come from the client connection.
type Center struct {
	userID string
	uc     domain.NotificationUsecase
	limit  int

	mu       sync.Mutex
	state    State
	items    []domain.Notification
	unread   int
	degraded bool
	filter   Filter
	pending  []domain.Notification // pushes received while loading
	sub      domain.Unsubscriber
}

// New creates an idle Center for userID.
func New(userID string, uc domain.NotificationUsecase, limit int) *Center {
	return &Center{
		userID: userID,
		uc:     uc,
		limit:  limit,
		state:  StateIdle,
		items:  []domain.Notification{},
	}
}

func (c *Center) UserID() string { return c.userID }

// Load fetches the list and the unread count in parallel. A degraded read
// keeps the prior working set and marks the snapshot degraded.
func (c *Center) Load(ctx context.Context) Snapshot {
	c.mu.Lock()
	c.state = StateLoading
	c.mu.Unlock()

	var list domain.ListResult
	var count domain.CountResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list = c.uc.List(gctx, c.userID, c.limit)
		return nil
	})
	g.Go(func() error {
		count = c.uc.CountUnread(gctx, c.userID)
		return nil
	})
	_ = g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.degraded = list.Degraded || count.Degraded
	if !list.Degraded {
		c.items = append([]domain.Notification(nil), list.Items...)
	}
	if !count.Degraded {
		c.unread = count.Count
	}

	pending := c.pending
	c.pending = nil
	c.state = StateLoaded
	for _, n := range pending {
		c.mergeLocked(n)
	}
	return c.snapshotLocked()
}

// Merge prepends a pushed notification and counts it if unread, whatever
// the active filter. A notification already in the working set is replaced
// in place. It reports whether the row was new.
func (c *Center) Merge(n domain.Notification) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n.UserID != "" && n.UserID != c.userID {
		return false
	}
	if c.state == StateLoading {
		for i := range c.pending {
			if c.pending[i].ID == n.ID {
				c.pending[i] = n
				return false
			}
		}
		c.pending = append(c.pending, n)
		return c.indexLocked(n.ID) < 0
	}
	return c.mergeLocked(n)
}

func (c *Center) mergeLocked(n domain.Notification) bool {
	if i := c.indexLocked(n.ID); i >= 0 {
		c.replaceLocked(i, n)
		return false
	}
	c.items = append([]domain.Notification{n}, c.items...)
	if !n.IsRead {
		c.unread++
	}
	return true
}

// ApplyUpdate folds a pushed update into the working set. Rows outside the
// working set are ignored. It reports whether anything changed.
func (c *Center) ApplyUpdate(n domain.Notification) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n.UserID != "" && n.UserID != c.userID {
		return false
	}
	i := c.indexLocked(n.ID)
	if i < 0 {
		return false
	}
	return c.replaceLocked(i, n)
}

func (c *Center) replaceLocked(i int, n domain.Notification) bool {
	old := c.items[i]
	switch {
	case !old.IsRead && n.IsRead:
		c.decrementLocked(1)
	case old.IsRead && !n.IsRead:
		c.unread++
	}
	c.items[i] = n
	return old.IsRead != n.IsRead || old.Title != n.Title || old.Message != n.Message
}

func (c *Center) decrementLocked(by int) {
	c.unread -= by
	if c.unread < 0 {
		c.unread = 0
	}
}

func (c *Center) indexLocked(id string) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

// MarkRead flips an unread notification optimistically and confirms with
// the server. On failure the flip is reverted and the error returned.
// Already-read rows are left alone, so repeated calls are harmless.
func (c *Center) MarkRead(ctx context.Context, id string) error {
	c.mu.Lock()
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return apperror.NotFound("Notification not found")
	}
	if c.items[i].IsRead {
		c.mu.Unlock()
		return nil
	}
	c.items[i].IsRead = true
	c.decrementLocked(1)
	c.mu.Unlock()

	if err := c.uc.MarkRead(ctx, c.userID, id); err != nil {
		c.mu.Lock()
		if j := c.indexLocked(id); j >= 0 && c.items[j].IsRead {
			c.items[j].IsRead = false
			c.unread++
		}
		c.mu.Unlock()
		return err
	}
	return nil
}

// Open marks the notification read and resolves where its action leads.
func (c *Center) Open(ctx context.Context, id string) (Navigation, error) {
	if err := c.MarkRead(ctx, id); err != nil {
		return Navigation{Kind: NavigateNone}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(id)
	if i < 0 {
		return Navigation{Kind: NavigateNone}, nil
	}
	return ResolveAction(c.items[i].ActionURL), nil
}

// ResolveAction classifies an action reference: a leading "/" is an in-app
// route, an absolute http(s) URL opens externally, anything else is inert.
func ResolveAction(ref *string) Navigation {
	if ref == nil {
		return Navigation{Kind: NavigateNone}
	}
	target := strings.TrimSpace(*ref)
	if target == "" {
		return Navigation{Kind: NavigateNone}
	}
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") {
		return Navigation{Kind: NavigateInternal, Target: target}
	}
	u, err := url.Parse(target)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return Navigation{Kind: NavigateExternal, Target: target}
	}
	return Navigation{Kind: NavigateNone}
}

// MarkAllRead flips every unread row optimistically, reverting on failure.
func (c *Center) MarkAllRead(ctx context.Context) error {
	c.mu.Lock()
	var flipped []string
	for i := range c.items {
		if !c.items[i].IsRead {
			c.items[i].IsRead = true
			flipped = append(flipped, c.items[i].ID)
		}
	}
	// Unread rows beyond the loaded window only live in the counter
	offscreen := c.unread - len(flipped)
	if offscreen < 0 {
		offscreen = 0
	}
	c.unread = 0
	c.mu.Unlock()

	if _, err := c.uc.MarkAllRead(ctx, c.userID); err != nil {
		c.mu.Lock()
		// Pushes merged meanwhile already moved the counter; add back only
		// what this call took away
		restored := 0
		for _, id := range flipped {
			if i := c.indexLocked(id); i >= 0 && c.items[i].IsRead {
				c.items[i].IsRead = false
				restored++
			}
		}
		c.unread += offscreen + restored
		c.mu.Unlock()
		return err
	}
	return nil
}

// Delete removes one notification on the server, then locally. A row the
// server no longer has is dropped locally without error.
func (c *Center) Delete(ctx context.Context, id string) error {
	if err := c.uc.Delete(ctx, c.userID, id); err != nil && !apperror.IsNotFound(err) {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(map[string]struct{}{id: {}})
	return nil
}

// DeleteSelected removes exactly the given ids and returns how many were
// dropped from the working set.
func (c *Center) DeleteSelected(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if _, err := c.uc.DeleteMany(ctx, c.userID, ids); err != nil {
		return 0, err
	}

	selected := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		selected[id] = struct{}{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeLocked(selected), nil
}

func (c *Center) removeLocked(ids map[string]struct{}) int {
	kept := c.items[:0]
	removed, removedUnread := 0, 0
	for _, n := range c.items {
		if _, ok := ids[n.ID]; ok {
			removed++
			if !n.IsRead {
				removedUnread++
			}
			continue
		}
		kept = append(kept, n)
	}
	c.items = kept
	c.decrementLocked(removedUnread)
	return removed
}

// ErrInvalidFilter is returned for a category that is not all, unread, or a
// notification type.
var ErrInvalidFilter = errors.New("invalid notification filter")

// SetFilter changes the view without touching the server.
func (c *Center) SetFilter(f Filter) (Snapshot, error) {
	if !f.Valid() {
		return c.View(), ErrInvalidFilter
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = f
	return c.snapshotLocked(), nil
}

// View returns the filtered working set.
func (c *Center) View() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Center) snapshotLocked() Snapshot {
	return Snapshot{
		State:       c.state,
		Items:       c.filter.Apply(c.items),
		Total:       len(c.items),
		UnreadCount: c.unread,
		Filter:      c.filter,
		Degraded:    c.degraded,
	}
}

// Attach opens the live subscription once; later calls are no-ops.
func (c *Center) Attach(ctx context.Context, listener Listener) error {
	c.mu.Lock()
	if c.sub != nil {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	sub, err := c.uc.Subscribe(ctx, c.userID, domain.SubscribeHandlers{
		OnInsert: func(n domain.Notification) {
			if c.Merge(n) && listener != nil {
				listener(Change{Kind: ChangeInserted, Notification: n})
			}
		},
		OnUpdate: func(n domain.Notification) {
			if c.ApplyUpdate(n) && listener != nil {
				listener(Change{Kind: ChangeUpdated, Notification: n})
			}
		},
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sub != nil {
		// Lost a race with another Attach
		return sub.Close()
	}
	c.sub = sub
	return nil
}

// Close tears down the live subscription.
func (c *Center) Close() error {
	c.mu.Lock()
	sub := c.sub
	c.sub = nil
	c.mu.Unlock()
	if sub == nil {
		return nil
	}
	return sub.Close()
}
