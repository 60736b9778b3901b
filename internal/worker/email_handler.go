package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/email"
	"go-jobboard-backend/pkg/security"

	"github.com/hibiken/asynq"
)

// EmailSender is the part of *email.EmailService the handler needs.
type EmailSender interface {
	SendNotificationEmail(data email.NotificationEmailData) error
	ResolveActionURL(ref string) string
	IsConfigured() bool
}

// EmailTaskHandler consumes notification email tasks.
type EmailTaskHandler struct {
	sender EmailSender
	logger *slog.Logger
}

func NewEmailTaskHandler(sender EmailSender, logger *slog.Logger) *EmailTaskHandler {
	return &EmailTaskHandler{sender: sender, logger: logger}
}

// ProcessTask implements asynq.Handler.
func (h *EmailTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload domain.NotificationEmail
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("unmarshal task payload failed", slog.Any("error", err))
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.To == "" {
		return fmt.Errorf("notification %s has no recipient: %w", payload.NotificationID, asynq.SkipRetry)
	}

	log := h.logger.With(
		slog.String("notification_id", payload.NotificationID),
		slog.String("to", security.MaskEmail(payload.To)),
	)
	if !h.sender.IsConfigured() {
		log.Warn("SMTP not configured, dropping notification email")
		return nil
	}

	data := email.NotificationEmailData{
		RecipientName:  payload.Name,
		RecipientEmail: payload.To,
		Title:          payload.Title,
		Message:        payload.Message,
	}
	if payload.ActionURL != nil {
		data.ActionURL = h.sender.ResolveActionURL(*payload.ActionURL)
	}

	if err := h.sender.SendNotificationEmail(data); err != nil {
		log.Error("send notification email failed", slog.Any("error", err))
		return err
	}
	log.Info("notification email sent")
	return nil
}
