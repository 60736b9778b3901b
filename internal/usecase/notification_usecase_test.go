package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/realtime"
	"go-jobboard-backend/internal/usecase"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	userA = "11111111-1111-1111-1111-111111111111"
	userB = "22222222-2222-2222-2222-222222222222"
)

func strPtr(s string) *string { return &s }

func newNotificationUC(repo *MockNotificationRepo, profiles *MockProfileRepo, feed domain.NotificationFeed, mailer domain.NotificationMailer) domain.NotificationUsecase {
	if feed == nil {
		feed = realtime.NewMemoryFeed()
	}
	return usecase.NewNotificationUsecase(repo, profiles, feed, mailer, nil, validation.New(), 50)
}

func TestNotificationList_FailSoft(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return items newest first from the repository", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		items := []domain.Notification{{ID: "n2"}, {ID: "n1"}}
		repo.On("ListByUser", ctx, userA, 50).Return(items, nil)

		res := newNotificationUC(repo, nil, nil, nil).List(ctx, userA, 0)
		assert.False(t, res.Degraded)
		assert.Equal(t, items, res.Items)
	})

	t.Run("Should clamp the limit to 50", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		repo.On("ListByUser", ctx, userA, 50).Return([]domain.Notification{}, nil)

		newNotificationUC(repo, nil, nil, nil).List(ctx, userA, 500)
		repo.AssertExpectations(t)
	})

	t.Run("Should mark result degraded instead of failing on backend error", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		repo.On("ListByUser", ctx, userA, 50).Return(nil, errors.New("connection refused"))

		res := newNotificationUC(repo, nil, nil, nil).List(ctx, userA, 50)
		assert.True(t, res.Degraded)
		assert.NotNil(t, res.Items)
		assert.Empty(t, res.Items)
	})

	t.Run("Should distinguish an empty inbox from a degraded read", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		repo.On("ListByUser", ctx, userA, 50).Return(nil, nil)

		res := newNotificationUC(repo, nil, nil, nil).List(ctx, userA, 50)
		assert.False(t, res.Degraded)
		assert.Empty(t, res.Items)
	})

	t.Run("Should degrade without identity and never touch the repository", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		res := newNotificationUC(repo, nil, nil, nil).List(ctx, "", 50)
		assert.True(t, res.Degraded)
		repo.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestNotificationCountUnread_FailSoft(t *testing.T) {
	ctx := context.Background()

	repo := new(MockNotificationRepo)
	repo.On("CountUnread", ctx, userA).Return(3, nil).Once()
	repo.On("CountUnread", ctx, userA).Return(0, errors.New("timeout")).Once()
	uc := newNotificationUC(repo, nil, nil, nil)

	assert.Equal(t, domain.CountResult{Count: 3}, uc.CountUnread(ctx, userA))
	assert.Equal(t, domain.CountResult{Degraded: true}, uc.CountUnread(ctx, userA))
}

func TestNotificationWrites_FailLoud(t *testing.T) {
	ctx := context.Background()
	backendErr := errors.New("db down")
	const (
		n1 = "aaaaaaaa-0000-0000-0000-000000000001"
		n2 = "aaaaaaaa-0000-0000-0000-000000000002"
	)

	t.Run("MarkRead propagates backend errors", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		repo.On("MarkRead", ctx, userA, n1).Return(backendErr)
		err := newNotificationUC(repo, nil, nil, nil).MarkRead(ctx, userA, n1)
		assert.ErrorIs(t, err, backendErr)
	})

	t.Run("MarkRead requires identity", func(t *testing.T) {
		err := newNotificationUC(new(MockNotificationRepo), nil, nil, nil).MarkRead(ctx, "", n1)
		assert.Equal(t, 401, apperror.StatusOf(err))
	})

	t.Run("Malformed ids are not found without reaching storage", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		uc := newNotificationUC(repo, nil, nil, nil)

		assert.True(t, apperror.IsNotFound(uc.MarkRead(ctx, userA, "abc")))
		assert.True(t, apperror.IsNotFound(uc.Delete(ctx, userA, "abc")))
		assert.Equal(t, 400, apperror.StatusOf(uc.Delete(ctx, userA, "")))
		repo.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("MarkAllRead returns flipped row count", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		repo.On("MarkAllRead", ctx, userA).Return(int64(4), nil)
		n, err := newNotificationUC(repo, nil, nil, nil).MarkAllRead(ctx, userA)
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})

	t.Run("Delete propagates not found", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		repo.On("Delete", ctx, userA, n2).Return(apperror.NotFound("Notification not found"))
		err := newNotificationUC(repo, nil, nil, nil).Delete(ctx, userA, n2)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("DeleteMany dedupes ids and skips empty selections", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		repo.On("DeleteMany", ctx, userA, []string{n1, n2}).Return(int64(2), nil)
		uc := newNotificationUC(repo, nil, nil, nil)

		n, err := uc.DeleteMany(ctx, userA, []string{n1, " " + n2 + " ", n1, "", "abc"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = uc.DeleteMany(ctx, userA, nil)
		require.NoError(t, err)
		assert.Zero(t, n)

		n, err = uc.DeleteMany(ctx, userA, []string{"abc"})
		require.NoError(t, err)
		assert.Zero(t, n)
		repo.AssertNumberOfCalls(t, "DeleteMany", 1)
	})
}

func TestNotificationCreate(t *testing.T) {
	ctx := context.Background()

	valid := domain.CreateNotificationInput{
		UserID:    userA,
		Title:     "Job Offer Received",
		Message:   "Acme sent you an offer",
		Type:      domain.NotificationApplicationUpdate,
		ActionURL: strPtr("/applications/42"),
	}

	t.Run("Should reject an unknown category", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		in := valid
		in.Type = "newsletter"
		_, err := newNotificationUC(repo, nil, nil, nil).Create(ctx, in)
		assert.Equal(t, 400, apperror.StatusOf(err))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Should accept emoji in titles", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		repo.On("Create", ctx, mock.Anything).Return(nil)
		in := valid
		in.Title = "🎉 Offer received"

		n, err := newNotificationUC(repo, nil, nil, nil).Create(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, "🎉 Offer received", n.Title)
	})

	t.Run("Should reject a protocol-relative action link", func(t *testing.T) {
		in := valid
		in.ActionURL = strPtr("//evil.example/phish")
		_, err := newNotificationUC(new(MockNotificationRepo), nil, nil, nil).Create(ctx, in)
		assert.Equal(t, 400, apperror.StatusOf(err))
	})

	t.Run("Should insert unread and enqueue email when preferences allow", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).
			Run(func(args mock.Arguments) {
				n := args.Get(1).(*domain.Notification)
				n.ID = "n-new"
				n.CreatedAt = time.Now()
			}).Return(nil)

		profiles := new(MockProfileRepo)
		profiles.On("GetByID", ctx, userA).Return(&domain.Profile{
			ID:                 userA,
			Email:              strPtr("ana@example.com"),
			FullName:           strPtr("Ana"),
			EmailNotifications: true,
			ApplicationUpdates: true,
		}, nil)

		mailer := new(MockMailer)
		mailer.On("EnqueueNotificationEmail", ctx, mock.MatchedBy(func(e domain.NotificationEmail) bool {
			return e.NotificationID == "n-new" && e.To == "ana@example.com" && e.Name == "Ana"
		})).Return(nil)

		n, err := newNotificationUC(repo, profiles, nil, mailer).Create(ctx, valid)
		require.NoError(t, err)
		assert.Equal(t, "n-new", n.ID)
		assert.False(t, n.IsRead)
		mailer.AssertExpectations(t)
	})

	t.Run("Should not email when the category preference is off", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		repo.On("Create", ctx, mock.Anything).Return(nil)
		profiles := new(MockProfileRepo)
		profiles.On("GetByID", ctx, userA).Return(&domain.Profile{
			Email:              strPtr("ana@example.com"),
			EmailNotifications: true,
			ApplicationUpdates: false,
		}, nil)
		mailer := new(MockMailer)

		_, err := newNotificationUC(repo, profiles, nil, mailer).Create(ctx, valid)
		require.NoError(t, err)
		mailer.AssertNotCalled(t, "EnqueueNotificationEmail", mock.Anything, mock.Anything)
	})

	t.Run("Should still succeed when enqueueing fails", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		repo.On("Create", ctx, mock.Anything).Return(nil)
		profiles := new(MockProfileRepo)
		profiles.On("GetByID", ctx, userA).Return(&domain.Profile{
			Email:              strPtr("ana@example.com"),
			EmailNotifications: true,
			ApplicationUpdates: true,
		}, nil)
		mailer := new(MockMailer)
		mailer.On("EnqueueNotificationEmail", ctx, mock.Anything).Return(errors.New("redis down"))

		_, err := newNotificationUC(repo, profiles, nil, mailer).Create(ctx, valid)
		assert.NoError(t, err)
	})

	t.Run("Should propagate insert failure", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		repo.On("Create", ctx, mock.Anything).Return(errors.New("insert failed"))
		_, err := newNotificationUC(repo, nil, nil, nil).Create(ctx, valid)
		assert.Error(t, err)
	})
}

func TestNotificationSubscribe(t *testing.T) {
	ctx := context.Background()
	feed := realtime.NewMemoryFeed()
	uc := newNotificationUC(new(MockNotificationRepo), nil, feed, nil)

	inserted := make(chan domain.Notification, 1)
	updated := make(chan domain.Notification, 1)
	sub, err := uc.Subscribe(ctx, userA, domain.SubscribeHandlers{
		OnInsert: func(n domain.Notification) { inserted <- n },
		OnUpdate: func(n domain.Notification) { updated <- n },
	})
	require.NoError(t, err)

	require.NoError(t, feed.Publish(ctx, domain.NotificationEvent{
		Type:   domain.NotificationEventInsert,
		Record: domain.Notification{ID: "n1", UserID: userA},
	}))
	require.NoError(t, feed.Publish(ctx, domain.NotificationEvent{
		Type:   domain.NotificationEventInsert,
		Record: domain.Notification{ID: "other", UserID: userB},
	}))
	require.NoError(t, feed.Publish(ctx, domain.NotificationEvent{
		Type:   domain.NotificationEventUpdate,
		Record: domain.Notification{ID: "n1", UserID: userA, IsRead: true},
	}))

	select {
	case n := <-inserted:
		assert.Equal(t, "n1", n.ID)
	case <-time.After(time.Second):
		t.Fatal("insert not forwarded")
	}
	select {
	case n := <-updated:
		assert.True(t, n.IsRead)
	case <-time.After(time.Second):
		t.Fatal("update not forwarded")
	}

	require.NoError(t, sub.Close())
	assert.Equal(t, 0, feed.Subscribers(userA))
}
