package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/procura/backend/internal/domain/identity"
	"github.com/procura/backend/internal/domain/shared"
	"github.com/procura/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create persists a new user
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	if err := r.db.WithContext(ctx).Create(models.UserModelFromDomain(user)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError(shared.CodeAlreadyExists, "A user with this email already exists")
		}
		return shared.NewStoreError(err)
	}
	return nil
}

// Update writes the user, guarded by the previous version
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	result := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("id = ? AND version = ?", user.ID, user.Version-1).
		Select("*").
		Omit("id", "created_at").
		Updates(models.UserModelFromDomain(user))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError(shared.CodeAlreadyExists, "A user with this email already exists")
		}
		return shared.NewStoreError(result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UserModel{}).Where("id = ?", user.ID).Count(&count).Error; err != nil {
		return shared.NewStoreError(err)
	}
	if count == 0 {
		return shared.NewNotFoundError("User")
	}
	return shared.ErrConcurrencyConflict
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("User")
		}
		return nil, shared.NewStoreError(err)
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a user by email, ignoring case
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("User")
		}
		return nil, shared.NewStoreError(err)
	}
	return model.ToDomain(), nil
}

// FindSummaries loads the display identity of each id in one query
func (r *GormUserRepository) FindSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]identity.UserSummary, error) {
	summaries := make(map[uuid.UUID]identity.UserSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	var rows []models.UserSummaryRow
	if err := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Select("id, name, email").
		Where("id IN ?", ids).
		Scan(&rows).Error; err != nil {
		return nil, shared.NewStoreError(err)
	}

	for _, row := range rows {
		id, err := uuid.Parse(row.ID)
		if err != nil {
			continue
		}
		summaries[id] = identity.UserSummary{ID: id, Name: row.Name, Email: row.Email}
	}
	return summaries, nil
}

// FindAll lists users ordered by name
func (r *GormUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]*identity.User, int64, error) {
	var total int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.UserModel{}), filter).
		Count(&total).Error; err != nil {
		return nil, 0, shared.NewStoreError(err)
	}

	var rows []models.UserModel
	if err := r.applyFilter(r.db.WithContext(ctx), filter).
		Order("name ASC").
		Scopes(paginate(filter.Page, filter.PageSize)).
		Find(&rows).Error; err != nil {
		return nil, 0, shared.NewStoreError(err)
	}

	users := make([]*identity.User, len(rows))
	for i := range rows {
		users[i] = rows[i].ToDomain()
	}
	return users, total, nil
}

func (r *GormUserRepository) applyFilter(query *gorm.DB, filter identity.UserFilter) *gorm.DB {
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		pattern := likePattern(strings.ToLower(keyword))
		query = query.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR email LIKE ? ESCAPE '\\')", pattern, pattern)
	}
	return query
}
