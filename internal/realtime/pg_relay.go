package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RowLoader reloads a notification whose change payload was too large to
// carry the full row. NotificationRepository satisfies it.
type RowLoader interface {
	GetByID(ctx context.Context, userID, id string) (*domain.Notification, error)
}

// PGRelay LISTENs on the channel written by the notifications trigger and
// republishes every change onto a NotificationFeed.
type PGRelay struct {
	pool      *pgxpool.Pool
	channel   string
	feed      domain.NotificationFeed
	rows      RowLoader
	retryWait time.Duration
}

func NewPGRelay(pool *pgxpool.Pool, channel string, feed domain.NotificationFeed, rows RowLoader) *PGRelay {
	return &PGRelay{
		pool:      pool,
		channel:   channel,
		feed:      feed,
		rows:      rows,
		retryWait: 2 * time.Second,
	}
}

// Run blocks until ctx is cancelled, reconnecting after connection loss.
func (r *PGRelay) Run(ctx context.Context) error {
	for {
		err := r.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		logger.Log.Error("notification relay disconnected, retrying",
			slog.String("channel", r.channel),
			slog.Duration("retry_in", r.retryWait),
			slog.Any("error", err))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(r.retryWait):
		}
	}
}

func (r *PGRelay) listen(ctx context.Context) error {
	pooled, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen connection: %w", err)
	}
	// A LISTENing connection must not go back to the pool
	conn := pooled.Hijack()
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{r.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen %s: %w", r.channel, err)
	}
	logger.Log.Info("notification relay listening", slog.String("channel", r.channel))

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			return fmt.Errorf("wait for notification: %w", err)
		}
		r.relay(ctx, []byte(n.Payload))
	}
}

func (r *PGRelay) relay(ctx context.Context, payload []byte) {
	event, err := DecodeEvent(payload)
	if err != nil {
		logger.Log.Warn("skipping notification change", slog.Any("error", err))
		return
	}

	// Rows over the NOTIFY size limit arrive as id, owner and flags only
	var envelope struct {
		Partial bool `json:"partial"`
	}
	_ = json.Unmarshal(payload, &envelope)
	if envelope.Partial {
		full, err := r.rows.GetByID(ctx, event.Record.UserID, event.Record.ID)
		if err != nil {
			if !apperror.IsNotFound(err) {
				logger.Log.Error("failed to load notification for change",
					slog.String("notification_id", event.Record.ID),
					slog.Any("error", err))
			}
			return
		}
		event.Record = *full
	}

	if err := r.feed.Publish(ctx, event); err != nil {
		logger.Log.Error("failed to publish notification change",
			slog.String("notification_id", event.Record.ID),
			slog.Any("error", err))
	}
}
