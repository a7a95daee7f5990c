package repository

import (
	"context"

	"paydesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RequestTypeRepository interface {
	Create(ctx context.Context, rt *model.RequestType) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RequestType, error)
	FindByName(ctx context.Context, name string) (*model.RequestType, error)
	List(ctx context.Context, activeOnly bool, page, limit int) ([]model.RequestType, int64, error)
	Update(ctx context.Context, rt *model.RequestType) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountRequests(ctx context.Context, id uuid.UUID) (int64, error)
}

type requestTypeRepository struct {
	db *gorm.DB
}

func NewRequestTypeRepository(db *gorm.DB) RequestTypeRepository {
	return &requestTypeRepository{db: db}
}

func (r *requestTypeRepository) Create(ctx context.Context, rt *model.RequestType) error {
	return GetDB(ctx, r.db).Create(rt).Error
}

func (r *requestTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.RequestType, error) {
	var rt model.RequestType
	if err := GetDB(ctx, r.db).First(&rt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *requestTypeRepository) FindByName(ctx context.Context, name string) (*model.RequestType, error) {
	var rt model.RequestType
	if err := GetDB(ctx, r.db).First(&rt, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *requestTypeRepository) List(ctx context.Context, activeOnly bool, page, limit int) ([]model.RequestType, int64, error) {
	var types []model.RequestType
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.RequestType{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetch := db.Order("name asc").Offset(offset).Limit(limit)
	if activeOnly {
		fetch = fetch.Where("is_active = ?", true)
	}
	if err := fetch.Find(&types).Error; err != nil {
		return nil, 0, err
	}

	return types, total, nil
}

func (r *requestTypeRepository) Update(ctx context.Context, rt *model.RequestType) error {
	return GetDB(ctx, r.db).Save(rt).Error
}

func (r *requestTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.RequestType{}).Error
}

// CountRequests returns how many requests reference the type. Used for the
// in-use check before delete; must run inside the same transaction as the delete.
func (r *requestTypeRepository) CountRequests(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Request{}).Where("request_type_id = ?", id).Count(&count).Error
	return count, err
}
