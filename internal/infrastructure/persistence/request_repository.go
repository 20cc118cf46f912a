package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/procura/backend/internal/domain/procurement"
	"github.com/procura/backend/internal/domain/shared"
	"github.com/procura/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRequestRepository implements procurement.RequestRepository using GORM
type GormRequestRepository struct {
	db *gorm.DB
}

// NewGormRequestRepository creates a new GormRequestRepository
func NewGormRequestRepository(db *gorm.DB) *GormRequestRepository {
	return &GormRequestRepository{db: db}
}

// FindByID finds a request by its ID
func (r *GormRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.Request, error) {
	var model models.PurchaseRequestModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Request")
		}
		return nil, shared.NewStoreError(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds requests matching the filter, newest first
func (r *GormRequestRepository) FindAll(ctx context.Context, filter procurement.RequestFilter) ([]*procurement.Request, int64, error) {
	var total int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.PurchaseRequestModel{}), filter).
		Count(&total).Error; err != nil {
		return nil, 0, shared.NewStoreError(err)
	}

	query := r.applyFilter(r.db.WithContext(ctx), filter).Order("created_at DESC")
	if filter.IsPaged() {
		query = query.Scopes(paginate(filter.Page, filter.PageSize))
	}
	var rows []models.PurchaseRequestModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, shared.NewStoreError(err)
	}

	requests := make([]*procurement.Request, len(rows))
	for i := range rows {
		requests[i] = rows[i].ToDomain()
	}
	return requests, total, nil
}

// Create persists a new request
func (r *GormRequestRepository) Create(ctx context.Context, request *procurement.Request) error {
	model := models.PurchaseRequestModelFromDomain(request)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return shared.NewStoreError(err)
	}
	return nil
}

// Update writes every mutable column, guarded by the previous version
func (r *GormRequestRepository) Update(ctx context.Context, request *procurement.Request) error {
	model := models.PurchaseRequestModelFromDomain(request)
	result := r.db.WithContext(ctx).
		Model(&models.PurchaseRequestModel{}).
		Where("id = ? AND version = ?", request.ID, request.Version-1).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return shared.NewStoreError(result.Error)
	}
	if result.RowsAffected == 0 {
		return r.missingOrStale(ctx, request.ID)
	}
	return nil
}

// Delete permanently removes a request
func (r *GormRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PurchaseRequestModel{}, "id = ?", id)
	if result.Error != nil {
		return shared.NewStoreError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Request")
	}
	return nil
}

// Stats counts matching requests per status and sums the approved cost
func (r *GormRequestRepository) Stats(ctx context.Context, filter procurement.RequestFilter) (*procurement.RequestStats, error) {
	var rows []models.RequestStatusCountRow
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.PurchaseRequestModel{}), filter).
		Select("status, COUNT(*) AS count, COALESCE(SUM(cost), 0) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, shared.NewStoreError(err)
	}

	stats := procurement.NewRequestStats()
	for _, row := range rows {
		stats.ByStatus[row.Status] += row.Count
		stats.Total += row.Count
		if row.Status == procurement.RequestStatusApproved && row.Total.Valid {
			stats.ApprovedSpend = stats.ApprovedSpend.Add(row.Total.Decimal)
		}
	}
	return stats, nil
}

// applyFilter adds the filter's conditions. Nil fields add nothing.
func (r *GormRequestRepository) applyFilter(query *gorm.DB, filter procurement.RequestFilter) *gorm.DB {
	if filter.Department != nil {
		query = query.Where("department = ?", *filter.Department)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CostRange != nil {
		query = query.Where("cost BETWEEN ? AND ?", filter.CostRange.Min, filter.CostRange.Max)
	}
	if filter.RequesterID != nil {
		query = query.Where("requester_id = ?", *filter.RequesterID)
	}
	return query
}

// missingOrStale distinguishes a deleted row from a version mismatch
func (r *GormRequestRepository) missingOrStale(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PurchaseRequestModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return shared.NewStoreError(err)
	}
	if count == 0 {
		return shared.NewNotFoundError("Request")
	}
	return shared.ErrConcurrencyConflict
}
