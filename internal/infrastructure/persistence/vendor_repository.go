package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/procura/backend/internal/domain/procurement"
	"github.com/procura/backend/internal/domain/shared"
	"github.com/procura/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormVendorRepository implements procurement.VendorRepository using GORM
type GormVendorRepository struct {
	db *gorm.DB
}

// NewGormVendorRepository creates a new GormVendorRepository
func NewGormVendorRepository(db *gorm.DB) *GormVendorRepository {
	return &GormVendorRepository{db: db}
}

// FindByID finds a vendor by its ID
func (r *GormVendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.Vendor, error) {
	var model models.VendorModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Vendor")
		}
		return nil, shared.NewStoreError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists vendors ordered by name
func (r *GormVendorRepository) FindAll(ctx context.Context, filter procurement.VendorFilter) ([]*procurement.Vendor, int64, error) {
	var total int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.VendorModel{}), filter).
		Count(&total).Error; err != nil {
		return nil, 0, shared.NewStoreError(err)
	}

	var rows []models.VendorModel
	if err := r.applyFilter(r.db.WithContext(ctx), filter).
		Order("name ASC").
		Scopes(paginate(filter.Page, filter.PageSize)).
		Find(&rows).Error; err != nil {
		return nil, 0, shared.NewStoreError(err)
	}

	vendors := make([]*procurement.Vendor, len(rows))
	for i := range rows {
		vendors[i] = rows[i].ToDomain()
	}
	return vendors, total, nil
}

// ExistsByName checks for a vendor with the same name, ignoring case
func (r *GormVendorRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.VendorModel{}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Count(&count).Error; err != nil {
		return false, shared.NewStoreError(err)
	}
	return count > 0, nil
}

// Create persists a new vendor
func (r *GormVendorRepository) Create(ctx context.Context, vendor *procurement.Vendor) error {
	if err := r.db.WithContext(ctx).Create(models.VendorModelFromDomain(vendor)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError(shared.CodeAlreadyExists, "A vendor with this name already exists")
		}
		return shared.NewStoreError(err)
	}
	return nil
}

// Update writes the vendor, guarded by the previous version
func (r *GormVendorRepository) Update(ctx context.Context, vendor *procurement.Vendor) error {
	result := r.db.WithContext(ctx).
		Model(&models.VendorModel{}).
		Where("id = ? AND version = ?", vendor.ID, vendor.Version-1).
		Select("*").
		Omit("id", "created_at").
		Updates(models.VendorModelFromDomain(vendor))
	if result.Error != nil {
		return shared.NewStoreError(result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.VendorModel{}).Where("id = ?", vendor.ID).Count(&count).Error; err != nil {
		return shared.NewStoreError(err)
	}
	if count == 0 {
		return shared.NewNotFoundError("Vendor")
	}
	return shared.ErrConcurrencyConflict
}

func (r *GormVendorRepository) applyFilter(query *gorm.DB, filter procurement.VendorFilter) *gorm.DB {
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		pattern := likePattern(strings.ToLower(keyword))
		query = query.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(category) LIKE ? ESCAPE '\\')", pattern, pattern)
	}
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	return query
}
