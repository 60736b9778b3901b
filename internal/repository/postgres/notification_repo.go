package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const notificationColumns = `id, user_id, title, message, type, is_read, action_url, metadata, created_at`

type notificationRepo struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) domain.NotificationRepository {
	return &notificationRepo{db: db}
}

// scanner is satisfied by pgx.Row and pgx.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanNotification(row scanner) (*domain.Notification, error) {
	var n domain.Notification
	var metadata []byte
	if err := row.Scan(
		&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.IsRead,
		&n.ActionURL, &metadata, &n.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &n.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for notification %s: %w", n.ID, err)
		}
	}
	return &n, nil
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > domain.DefaultNotificationLimit {
		limit = domain.DefaultNotificationLimit
	}
	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Notification, 0, limit)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *n)
	}
	return items, rows.Err()
}

func (r *notificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false`,
		userID,
	).Scan(&count)
	return count, err
}

func (r *notificationRepo) GetByID(ctx context.Context, userID, id string) (*domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1 AND user_id = $2`
	n, err := scanNotification(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("Notification not found")
		}
		return nil, err
	}
	return n, nil
}

// MarkRead is idempotent: marking an already-read row succeeds.
func (r *notificationRepo) MarkRead(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Notification not found")
	}
	return nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = true WHERE user_id = $1 AND is_read = false`,
		userID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *notificationRepo) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM notifications WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Notification not found")
	}
	return nil
}

func (r *notificationRepo) DeleteMany(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx,
		`DELETE FROM notifications WHERE user_id = $1 AND id = ANY($2::uuid[])`,
		userID, ids,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Create inserts n and fills in the generated id and timestamp.
func (r *notificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	var metadata []byte
	if n.Metadata != nil {
		var err error
		if metadata, err = json.Marshal(n.Metadata); err != nil {
			return apperror.BadRequest("metadata must be a JSON object")
		}
	}

	query := `INSERT INTO notifications (user_id, title, message, type, is_read, action_url, metadata)
		VALUES ($1, $2, $3, $4, false, $5, $6)
		RETURNING id, is_read, created_at`
	return r.db.QueryRow(ctx, query,
		n.UserID, n.Title, n.Message, n.Type, n.ActionURL, metadata,
	).Scan(&n.ID, &n.IsRead, &n.CreatedAt)
}
