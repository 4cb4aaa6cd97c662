package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/vitrina/backend/internal/domain/catalog"
	"github.com/vitrina/backend/internal/domain/shared"
	"github.com/vitrina/backend/internal/domain/sourcing"
	domainsync "github.com/vitrina/backend/internal/domain/sync"
)

// MockCategoryRepository is a mock implementation of CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindByExternalID(ctx context.Context, platform sourcing.PlatformCode, externalID string) (*catalog.Category, error) {
	args := m.Called(ctx, platform, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindAllByPlatform(ctx context.Context, platform sourcing.PlatformCode) ([]catalog.Category, error) {
	args := m.Called(ctx, platform)
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindChildren(ctx context.Context, parentID uuid.UUID) ([]catalog.Category, error) {
	args := m.Called(ctx, parentID)
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) SaveBatch(ctx context.Context, categories []*catalog.Category) error {
	args := m.Called(ctx, categories)
	return args.Error(0)
}

func (m *MockCategoryRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepository) CountDanglingParents(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockParameterRepository is a mock implementation of ParameterRepository
type MockParameterRepository struct {
	mock.Mock
}

func (m *MockParameterRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Parameter, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Parameter), args.Error(1)
}

func (m *MockParameterRepository) FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]catalog.Parameter, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).([]catalog.Parameter), args.Error(1)
}

func (m *MockParameterRepository) FindByExternalIDs(ctx context.Context, categoryID uuid.UUID, platform sourcing.PlatformCode, ids []string) ([]catalog.Parameter, error) {
	args := m.Called(ctx, categoryID, platform, ids)
	return args.Get(0).([]catalog.Parameter), args.Error(1)
}

func (m *MockParameterRepository) Save(ctx context.Context, parameter *catalog.Parameter) error {
	args := m.Called(ctx, parameter)
	return args.Error(0)
}

func (m *MockParameterRepository) SaveBatch(ctx context.Context, parameters []*catalog.Parameter) error {
	args := m.Called(ctx, parameters)
	return args.Error(0)
}

// MockParameterOptionRepository is a mock implementation of ParameterOptionRepository
type MockParameterOptionRepository struct {
	mock.Mock
}

func (m *MockParameterOptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ParameterOption, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ParameterOption), args.Error(1)
}

func (m *MockParameterOptionRepository) FindByParameter(ctx context.Context, parameterID uuid.UUID) ([]catalog.ParameterOption, error) {
	args := m.Called(ctx, parameterID)
	return args.Get(0).([]catalog.ParameterOption), args.Error(1)
}

func (m *MockParameterOptionRepository) FindByParameters(ctx context.Context, parameterIDs []uuid.UUID) ([]catalog.ParameterOption, error) {
	args := m.Called(ctx, parameterIDs)
	return args.Get(0).([]catalog.ParameterOption), args.Error(1)
}

func (m *MockParameterOptionRepository) FindByExternalIDs(ctx context.Context, parameterIDs []uuid.UUID, platform sourcing.PlatformCode, ids []string) ([]catalog.ParameterOption, error) {
	args := m.Called(ctx, parameterIDs, platform, ids)
	return args.Get(0).([]catalog.ParameterOption), args.Error(1)
}

func (m *MockParameterOptionRepository) Save(ctx context.Context, option *catalog.ParameterOption) error {
	args := m.Called(ctx, option)
	return args.Error(0)
}

func (m *MockParameterOptionRepository) SaveBatch(ctx context.Context, options []*catalog.ParameterOption) error {
	args := m.Called(ctx, options)
	return args.Error(0)
}

// MockSyncLogRepository is a mock implementation of SyncLogRepository
type MockSyncLogRepository struct {
	mock.Mock
}

func (m *MockSyncLogRepository) Create(ctx context.Context, log *domainsync.SyncLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockSyncLogRepository) Update(ctx context.Context, log *domainsync.SyncLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockSyncLogRepository) FindByID(ctx context.Context, id int64) (*domainsync.SyncLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainsync.SyncLog), args.Error(1)
}

func (m *MockSyncLogRepository) FindRecent(ctx context.Context, syncType domainsync.SyncType, platform sourcing.PlatformCode, filter shared.Filter) (*shared.Paginated[domainsync.SyncLog], error) {
	args := m.Called(ctx, syncType, platform, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[domainsync.SyncLog]), args.Error(1)
}

func (m *MockSyncLogRepository) FindLastByType(ctx context.Context, syncType domainsync.SyncType, platform sourcing.PlatformCode) (*domainsync.SyncLog, error) {
	args := m.Called(ctx, syncType, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainsync.SyncLog), args.Error(1)
}

func (m *MockSyncLogRepository) FindStaleInProgress(ctx context.Context, startedBefore time.Time) ([]domainsync.SyncLog, error) {
	args := m.Called(ctx, startedBefore)
	return args.Get(0).([]domainsync.SyncLog), args.Error(1)
}
