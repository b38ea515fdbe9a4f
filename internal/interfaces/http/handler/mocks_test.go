package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/modelmart/backend/internal/domain/catalog"
	"github.com/modelmart/backend/internal/domain/identity"
	"github.com/modelmart/backend/internal/domain/ledger"
	"github.com/modelmart/backend/internal/domain/shared"
	"github.com/modelmart/backend/internal/infrastructure/auth"
	"github.com/modelmart/backend/internal/infrastructure/config"
)

// testJWTConfig returns a default JWT config for tests
func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-key-32-characters-long",
		RefreshSecret:          "test-refresh-key-32-characters-ok",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	}
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(testJWTConfig())
}

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// MockModelRepository is a mock implementation of catalog.ModelRepository
type MockModelRepository struct {
	mock.Mock
}

func (m *MockModelRepository) Create(ctx context.Context, model *catalog.Model) error {
	args := m.Called(ctx, model)
	return args.Error(0)
}

func (m *MockModelRepository) Update(ctx context.Context, model *catalog.Model) error {
	args := m.Called(ctx, model)
	return args.Error(0)
}

func (m *MockModelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockModelRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Model, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Model), args.Error(1)
}

func (m *MockModelRepository) FindAll(ctx context.Context, filter catalog.ModelFilter) ([]catalog.Model, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Model), args.Get(1).(int64), args.Error(2)
}

func (m *MockModelRepository) FindByDeveloper(ctx context.Context, developerID uuid.UUID, filter shared.Filter) ([]catalog.Model, int64, error) {
	args := m.Called(ctx, developerID, filter)
	return args.Get(0).([]catalog.Model), args.Get(1).(int64), args.Error(2)
}

func (m *MockModelRepository) IncrementPurchaseCount(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPurchaseRepository is a mock implementation of ledger.PurchaseRepository
type MockPurchaseRepository struct {
	mock.Mock
}

func (m *MockPurchaseRepository) Append(ctx context.Context, record *ledger.PurchaseRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPurchaseRepository) FindByBuyerAndModel(ctx context.Context, buyerID, modelID uuid.UUID) (*ledger.PurchaseRecord, error) {
	args := m.Called(ctx, buyerID, modelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.PurchaseRecord), args.Error(1)
}

func (m *MockPurchaseRepository) HistoryByBuyer(ctx context.Context, buyerID uuid.UUID) ([]ledger.PurchaseRecord, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.PurchaseRecord), args.Error(1)
}

// MockObjectStorage is a mock implementation of the catalog storage service
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) PublicURL(storageKey string) string {
	args := m.Called(storageKey)
	return args.String(0)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
}
