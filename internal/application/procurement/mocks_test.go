package procurement

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/procura/backend/internal/domain/identity"
	"github.com/procura/backend/internal/domain/procurement"
	"github.com/procura/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockRequestRepository is a mock implementation of RequestRepository
type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.Request), args.Error(1)
}

func (m *MockRequestRepository) FindAll(ctx context.Context, filter procurement.RequestFilter) ([]*procurement.Request, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*procurement.Request), args.Get(1).(int64), args.Error(2)
}

func (m *MockRequestRepository) Create(ctx context.Context, request *procurement.Request) error {
	return m.Called(ctx, request).Error(0)
}

func (m *MockRequestRepository) Update(ctx context.Context, request *procurement.Request) error {
	return m.Called(ctx, request).Error(0)
}

func (m *MockRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRequestRepository) Stats(ctx context.Context, filter procurement.RequestFilter) (*procurement.RequestStats, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.RequestStats), args.Error(1)
}

// MockVendorRepository is a mock implementation of VendorRepository
type MockVendorRepository struct {
	mock.Mock
}

func (m *MockVendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.Vendor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.Vendor), args.Error(1)
}

func (m *MockVendorRepository) FindAll(ctx context.Context, filter procurement.VendorFilter) ([]*procurement.Vendor, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*procurement.Vendor), args.Get(1).(int64), args.Error(2)
}

func (m *MockVendorRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockVendorRepository) Create(ctx context.Context, vendor *procurement.Vendor) error {
	return m.Called(ctx, vendor).Error(0)
}

func (m *MockVendorRepository) Update(ctx context.Context, vendor *procurement.Vendor) error {
	return m.Called(ctx, vendor).Error(0)
}

// MockUserSummaryFinder is a mock implementation of UserSummaryFinder
type MockUserSummaryFinder struct {
	mock.Mock
}

func (m *MockUserSummaryFinder) FindSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]identity.UserSummary, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]identity.UserSummary), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}

// MockObjectStorage is a mock implementation of ObjectStorage
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

// =============================================================================
// In-memory store
// =============================================================================

// memoryRequestRepository keeps requests in a map and checks versions like the
// GORM repository, for scenario tests spanning several operations.
type memoryRequestRepository struct {
	mu    sync.Mutex
	items map[uuid.UUID]procurement.Request
}

func newMemoryRequestRepository() *memoryRequestRepository {
	return &memoryRequestRepository{items: make(map[uuid.UUID]procurement.Request)}
}

func (r *memoryRequestRepository) FindByID(_ context.Context, id uuid.UUID) (*procurement.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, shared.NewNotFoundError("Request")
	}
	return &item, nil
}

func (r *memoryRequestRepository) FindAll(_ context.Context, filter procurement.RequestFilter) ([]*procurement.Request, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*procurement.Request, 0)
	for _, item := range r.items {
		item := item
		if filter.RequesterID != nil && item.RequesterID != *filter.RequesterID {
			continue
		}
		if filter.Status != nil && item.Status != *filter.Status {
			continue
		}
		out = append(out, &item)
	}
	return out, int64(len(out)), nil
}

func (r *memoryRequestRepository) Create(_ context.Context, request *procurement.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[request.ID] = snapshot(request)
	return nil
}

func (r *memoryRequestRepository) Update(_ context.Context, request *procurement.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[request.ID]
	if !ok {
		return shared.NewNotFoundError("Request")
	}
	if stored.Version != request.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	r.items[request.ID] = snapshot(request)
	return nil
}

func (r *memoryRequestRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return shared.NewNotFoundError("Request")
	}
	delete(r.items, id)
	return nil
}

func (r *memoryRequestRepository) Stats(ctx context.Context, filter procurement.RequestFilter) (*procurement.RequestStats, error) {
	items, _, _ := r.FindAll(ctx, filter)
	stats := procurement.NewRequestStats()
	for _, item := range items {
		stats.Total++
		stats.ByStatus[item.Status]++
		if item.IsApproved() {
			stats.ApprovedSpend = stats.ApprovedSpend.Add(item.Cost)
		}
	}
	return stats, nil
}

// snapshot copies a request without its pending events, as a store round trip would
func snapshot(request *procurement.Request) procurement.Request {
	item := *request
	item.ClearDomainEvents()
	item.Attachments = append([]string(nil), request.Attachments...)
	return item
}
