package usecase

import (
	"context"
	"log/slog"
	"strings"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/logger"
	"go-jobboard-backend/pkg/security"
	"go-jobboard-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type notificationUsecase struct {
	repo        domain.NotificationRepository
	profileRepo domain.ProfileRepository
	feed        domain.NotificationFeed
	mailer      domain.NotificationMailer
	audit       *security.SecurityLogger
	validate    *validator.Validate
	limit       int
}

// NewNotificationUsecase wires the notification access layer. mailer and
// audit may be nil.
func NewNotificationUsecase(
	repo domain.NotificationRepository,
	profileRepo domain.ProfileRepository,
	feed domain.NotificationFeed,
	mailer domain.NotificationMailer,
	audit *security.SecurityLogger,
	validate *validator.Validate,
	limit int,
) domain.NotificationUsecase {
	if limit <= 0 || limit > domain.DefaultNotificationLimit {
		limit = domain.DefaultNotificationLimit
	}
	return &notificationUsecase{
		repo:        repo,
		profileRepo: profileRepo,
		feed:        feed,
		mailer:      mailer,
		audit:       audit,
		validate:    validate,
		limit:       limit,
	}
}

func (u *notificationUsecase) clampLimit(limit int) int {
	if limit <= 0 || limit > u.limit {
		return u.limit
	}
	return limit
}

func (u *notificationUsecase) List(ctx context.Context, userID string, limit int) domain.ListResult {
	if userID == "" {
		logger.Log.Warn("notification list requested without identity")
		return domain.ListResult{Items: []domain.Notification{}, Degraded: true}
	}

	items, err := u.repo.ListByUser(ctx, userID, u.clampLimit(limit))
	if err != nil {
		logger.Log.Error("failed to list notifications",
			slog.String("user_id", userID), slog.Any("error", err))
		return domain.ListResult{Items: []domain.Notification{}, Degraded: true}
	}
	if items == nil {
		items = []domain.Notification{}
	}
	return domain.ListResult{Items: items}
}

func (u *notificationUsecase) CountUnread(ctx context.Context, userID string) domain.CountResult {
	if userID == "" {
		logger.Log.Warn("unread count requested without identity")
		return domain.CountResult{Degraded: true}
	}

	count, err := u.repo.CountUnread(ctx, userID)
	if err != nil {
		logger.Log.Error("failed to count unread notifications",
			slog.String("user_id", userID), slog.Any("error", err))
		return domain.CountResult{Degraded: true}
	}
	if count < 0 {
		count = 0
	}
	return domain.CountResult{Count: count}
}

func (u *notificationUsecase) MarkRead(ctx context.Context, userID, id string) error {
	if userID == "" {
		return apperror.Unauthorized("User not authenticated")
	}
	if err := checkNotificationID(id); err != nil {
		return err
	}
	return u.repo.MarkRead(ctx, userID, id)
}

func (u *notificationUsecase) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, apperror.Unauthorized("User not authenticated")
	}
	return u.repo.MarkAllRead(ctx, userID)
}

func (u *notificationUsecase) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return apperror.Unauthorized("User not authenticated")
	}
	if err := checkNotificationID(id); err != nil {
		return err
	}
	return u.repo.Delete(ctx, userID, id)
}

func (u *notificationUsecase) DeleteMany(ctx context.Context, userID string, ids []string) (int64, error) {
	if userID == "" {
		return 0, apperror.Unauthorized("User not authenticated")
	}
	unique := dedupe(ids)
	if len(unique) == 0 {
		return 0, nil
	}
	return u.repo.DeleteMany(ctx, userID, unique)
}

func (u *notificationUsecase) Create(ctx context.Context, input domain.CreateNotificationInput) (*domain.Notification, error) {
	if err := u.validate.Struct(input); err != nil {
		return nil, apperror.BadRequest(strings.Join(validation.FormatValidationErrors(err), "; "))
	}

	n := &domain.Notification{
		UserID:    input.UserID,
		Title:     strings.TrimSpace(input.Title),
		Message:   strings.TrimSpace(input.Message),
		Type:      input.Type,
		ActionURL: input.ActionURL,
		Metadata:  input.Metadata,
	}
	if err := u.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	u.audit.LogNotificationCreated(ctx, actorFrom(ctx), n.UserID, n.Type)
	u.enqueueEmail(ctx, n)
	return n, nil
}

// enqueueEmail never fails the create; email is a best-effort copy.
func (u *notificationUsecase) enqueueEmail(ctx context.Context, n *domain.Notification) {
	if u.mailer == nil || u.profileRepo == nil {
		return
	}

	profile, err := u.profileRepo.GetByID(ctx, n.UserID)
	if err != nil {
		if !apperror.IsNotFound(err) {
			logger.Log.Warn("skipping notification email, profile unavailable",
				slog.String("notification_id", n.ID), slog.Any("error", err))
		}
		return
	}
	if !profile.WantsEmailFor(n.Type) {
		return
	}

	email := domain.NotificationEmail{
		NotificationID: n.ID,
		To:             *profile.Email,
		Title:          n.Title,
		Message:        n.Message,
		Type:           n.Type,
		ActionURL:      n.ActionURL,
	}
	if profile.FullName != nil {
		email.Name = *profile.FullName
	}
	if err := u.mailer.EnqueueNotificationEmail(ctx, email); err != nil {
		logger.Log.Error("failed to enqueue notification email",
			slog.String("notification_id", n.ID), slog.Any("error", err))
	}
}

// Subscribe forwards insert and update events for userID to handlers until
// the returned handle is closed or ctx ends.
func (u *notificationUsecase) Subscribe(ctx context.Context, userID string, handlers domain.SubscribeHandlers) (domain.Unsubscriber, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	sub, err := u.feed.Subscribe(ctx, userID)
	if err != nil {
		return nil, apperror.Unavailable("Real-time notifications are unavailable", err)
	}

	go func() {
		for event := range sub.Events() {
			switch event.Type {
			case domain.NotificationEventInsert:
				if handlers.OnInsert != nil {
					handlers.OnInsert(event.Record)
				}
			case domain.NotificationEventUpdate:
				if handlers.OnUpdate != nil {
					handlers.OnUpdate(event.Record)
				}
			}
		}
	}()
	return sub, nil
}

func actorFrom(ctx context.Context) string {
	if id, ok := ctx.Value(domain.KeyUserID).(string); ok {
		return id
	}
	return "system"
}

// checkNotificationID rejects ids that cannot name a row. A malformed id is
// reported like an unknown one.
func checkNotificationID(id string) error {
	if id == "" {
		return apperror.BadRequest("Notification id is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NotFound("Notification not found")
	}
	return nil
}

// dedupe trims ids and drops blanks, repeats and ids that are not UUIDs.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, err := uuid.Parse(id); err != nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
