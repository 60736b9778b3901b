package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/redis"

	"github.com/hibiken/asynq"
)

// Task types shared by producers and the worker
const (
	TypeNotificationEmail = "notification:email"
)

// QueueNotifications is the asynq queue for notification side effects.
const QueueNotifications = "notifications"

// NewNotificationEmailTask builds the email task for one notification.
func NewNotificationEmailTask(email domain.NotificationEmail) (*asynq.Task, error) {
	payload, err := json.Marshal(email)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeNotificationEmail, payload,
		asynq.Queue(QueueNotifications),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	), nil
}

// RedisConnOpt derives asynq connection options from the shared Redis config.
func RedisConnOpt(cfg redis.Config) (asynq.RedisClientOpt, error) {
	opts, err := redis.Options(cfg)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	return asynq.RedisClientOpt{
		Addr:      opts.Addr,
		Username:  opts.Username,
		Password:  opts.Password,
		DB:        opts.DB,
		TLSConfig: opts.TLSConfig,
	}, nil
}

// taskEnqueuer is the part of *asynq.Client the Enqueuer uses.
type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer queues notification emails; it implements domain.NotificationMailer.
type Enqueuer struct {
	client taskEnqueuer
}

var _ domain.NotificationMailer = (*Enqueuer)(nil)

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) EnqueueNotificationEmail(ctx context.Context, email domain.NotificationEmail) error {
	task, err := NewNotificationEmailTask(email)
	if err != nil {
		return fmt.Errorf("build notification email task: %w", err)
	}
	// One email per notification even if Create is retried by a caller
	var opts []asynq.Option
	if email.NotificationID != "" {
		opts = append(opts, asynq.TaskID("notification-email:"+email.NotificationID))
	}
	if _, err := e.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue notification email: %w", err)
	}
	return nil
}
