package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/lorrc/user-registry/internal/core/domain"
	"github.com/lorrc/user-registry/internal/core/ports"
)

// MockUserRepository is a mock implementation of ports.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockAvatarRepository is a mock implementation of ports.AvatarRepository
type MockAvatarRepository struct {
	mock.Mock
}

func NewMockAvatarRepository() *MockAvatarRepository {
	return &MockAvatarRepository{}
}

func (m *MockAvatarRepository) FindByUserID(ctx context.Context, userID string) (*domain.AvatarRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AvatarRecord), args.Error(1)
}

func (m *MockAvatarRepository) Save(ctx context.Context, record *domain.AvatarRecord) (*domain.AvatarRecord, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AvatarRecord), args.Error(1)
}

func (m *MockAvatarRepository) DeleteByUserID(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockBlobStore is a mock implementation of ports.BlobStore
type MockBlobStore struct {
	mock.Mock
}

func NewMockBlobStore() *MockBlobStore {
	return &MockBlobStore{}
}

func (m *MockBlobStore) Path(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) Exists(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBlobStore) Write(ctx context.Context, userID string, r io.Reader) (int64, error) {
	args := m.Called(ctx, userID, r)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBlobStore) Open(ctx context.Context, userID string) (io.ReadCloser, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockBlobStore) Remove(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockOriginFetcher is a mock implementation of ports.OriginFetcher
type MockOriginFetcher struct {
	mock.Mock
}

func NewMockOriginFetcher() *MockOriginFetcher {
	return &MockOriginFetcher{}
}

func (m *MockOriginFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// MockProfileClient is a mock implementation of ports.ProfileClient
type MockProfileClient struct {
	mock.Mock
}

func NewMockProfileClient() *MockProfileClient {
	return &MockProfileClient{}
}

func (m *MockProfileClient) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProfile), args.Error(1)
}

// NoopLocker grants every lock immediately.
type NoopLocker struct{}

func (NoopLocker) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}

// MockSender is a mock implementation of ports.Sender
type MockSender struct {
	mock.Mock
}

func NewMockSender() *MockSender {
	return &MockSender{}
}

func (m *MockSender) Send(ctx context.Context, message, recipient string) error {
	args := m.Called(ctx, message, recipient)
	return args.Error(0)
}

// MockSenderSelector is a mock implementation of ports.SenderSelector
type MockSenderSelector struct {
	mock.Mock
}

func NewMockSenderSelector() *MockSenderSelector {
	return &MockSenderSelector{}
}

func (m *MockSenderSelector) Sender(env domain.Environment, channel domain.Channel) (ports.Sender, error) {
	args := m.Called(env, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.Sender), args.Error(1)
}

// MockAvatarService is a mock implementation of ports.AvatarService
type MockAvatarService struct {
	mock.Mock
}

func NewMockAvatarService() *MockAvatarService {
	return &MockAvatarService{}
}

func (m *MockAvatarService) GetAvatar(ctx context.Context, userID, originURL string) (domain.AvatarResult, error) {
	args := m.Called(ctx, userID, originURL)
	return args.Get(0).(domain.AvatarResult), args.Error(1)
}

func (m *MockAvatarService) DeleteAvatar(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockAvatarService) FilePath(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *MockAvatarService) Inspect(ctx context.Context, userID string) (*domain.AvatarInspection, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AvatarInspection), args.Error(1)
}

// MockUserService is a mock implementation of ports.UserService
type MockUserService struct {
	mock.Mock
}

func NewMockUserService() *MockUserService {
	return &MockUserService{}
}

func (m *MockUserService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockProfileService is a mock implementation of ports.ProfileService
type MockProfileService struct {
	mock.Mock
}

func NewMockProfileService() *MockProfileService {
	return &MockProfileService{}
}

func (m *MockProfileService) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProfile), args.Error(1)
}
