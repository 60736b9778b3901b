package usecase_test

import (
	"context"
	"io"

	"go-jobboard-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

// Mock Repositories
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *MockNotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationRepo) GetByID(ctx context.Context, userID, id string) (*domain.Notification, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *MockNotificationRepo) MarkRead(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockNotificationRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepo) Delete(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockNotificationRepo) DeleteMany(ctx context.Context, userID string, ids []string) (int64, error) {
	args := m.Called(ctx, userID, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}

type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) UpdateEditable(ctx context.Context, id string, edit domain.ProfileEdit) error {
	return m.Called(ctx, id, edit).Error(0)
}

func (m *MockProfileRepo) SetResume(ctx context.Context, id string, ref domain.ResumeRef) error {
	return m.Called(ctx, id, ref).Error(0)
}

func (m *MockProfileRepo) ClearResume(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Upload(ctx context.Context, path string, body io.Reader, size int64, opts domain.UploadOptions) (string, error) {
	args := m.Called(ctx, path, body, size, opts)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) PublicURL(path string) string {
	return m.Called(path).String(0)
}

func (m *MockObjectStore) List(ctx context.Context, folder string) ([]domain.ObjectInfo, error) {
	args := m.Called(ctx, folder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ObjectInfo), args.Error(1)
}

func (m *MockObjectStore) Remove(ctx context.Context, paths []string) error {
	return m.Called(ctx, paths).Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) EnqueueNotificationEmail(ctx context.Context, email domain.NotificationEmail) error {
	return m.Called(ctx, email).Error(0)
}
