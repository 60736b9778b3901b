package v1_test

import (
	"context"
	"errors"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"

	"github.com/stretchr/testify/mock"
)

// stubAuth accepts a fixed set of tokens.
type stubAuth struct{}

var identities = map[string]*domain.Identity{
	"candidate-token": {UserID: "11111111-1111-1111-1111-111111111111", Email: "ana@example.com", Role: domain.RoleCandidate},
	"admin-token":     {UserID: "99999999-9999-9999-9999-999999999999", Email: "ops@example.com", Role: domain.RoleAdmin},
}

func (stubAuth) GetCurrentUser(_ context.Context, id string) (*domain.User, error) {
	for _, ident := range identities {
		if ident.UserID == id && ident.Role == domain.RoleAdmin {
			return &domain.User{ID: id, Email: ident.Email, Role: ident.Role}, nil
		}
	}
	return nil, apperror.NotFound("User not found")
}

func (stubAuth) Authenticate(_ context.Context, token string) (*domain.Identity, error) {
	if id, ok := identities[token]; ok {
		return id, nil
	}
	return nil, errors.New("bad token")
}

type MockNotificationUsecase struct {
	mock.Mock
}

func (m *MockNotificationUsecase) List(ctx context.Context, userID string, limit int) domain.ListResult {
	return m.Called(ctx, userID, limit).Get(0).(domain.ListResult)
}

func (m *MockNotificationUsecase) CountUnread(ctx context.Context, userID string) domain.CountResult {
	return m.Called(ctx, userID).Get(0).(domain.CountResult)
}

func (m *MockNotificationUsecase) MarkRead(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockNotificationUsecase) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationUsecase) Delete(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockNotificationUsecase) DeleteMany(ctx context.Context, userID string, ids []string) (int64, error) {
	args := m.Called(ctx, userID, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationUsecase) Create(ctx context.Context, input domain.CreateNotificationInput) (*domain.Notification, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *MockNotificationUsecase) Subscribe(ctx context.Context, userID string, handlers domain.SubscribeHandlers) (domain.Unsubscriber, error) {
	args := m.Called(ctx, userID, handlers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Unsubscriber), args.Error(1)
}

type nopUnsubscriber struct{}

func (nopUnsubscriber) Close() error { return nil }

type MockProfileUsecase struct {
	mock.Mock
}

func (m *MockProfileUsecase) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileUsecase) Save(ctx context.Context, userID string, edit domain.ProfileEdit) (*domain.Profile, error) {
	args := m.Called(ctx, userID, edit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

type MockResumeUsecase struct {
	mock.Mock
}

func (m *MockResumeUsecase) Upload(ctx context.Context, userID, clientIP string, file domain.ResumeUpload) (*domain.UploadReport, error) {
	args := m.Called(ctx, userID, clientIP, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadReport), args.Error(1)
}

func (m *MockResumeUsecase) Delete(ctx context.Context, userID string) *domain.DeleteReport {
	return m.Called(ctx, userID).Get(0).(*domain.DeleteReport)
}
