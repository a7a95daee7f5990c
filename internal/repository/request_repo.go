package repository

import (
	"context"

	"paydesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestFilter narrows request listings.
type RequestFilter struct {
	Status        string
	RequestTypeID *uuid.UUID
	GroupID       *uuid.UUID
	CreatorID     *uuid.UUID
}

type RequestRepository interface {
	Create(ctx context.Context, req *model.Request) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Request, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Request, error)
	List(ctx context.Context, filter RequestFilter, page, limit int) ([]model.Request, int64, error)
	Update(ctx context.Context, req *model.Request) error

	CreateAttachment(ctx context.Context, att *model.RequestAttachment) error
	FindAttachment(ctx context.Context, requestID, attachmentID uuid.UUID) (*model.RequestAttachment, error)
	DeleteAttachment(ctx context.Context, attachmentID uuid.UUID) error
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *model.Request) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	var req model.Request
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	var req model.Request
	if err := GetDB(ctx, r.db).
		Preload("RequestType").
		Preload("Creator").
		Preload("Assignee").
		Preload("Attachments").
		First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) List(ctx context.Context, filter RequestFilter, page, limit int) ([]model.Request, int64, error) {
	var requests []model.Request
	var total int64

	db := GetDB(ctx, r.db)
	applyFilter := func(q *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.RequestTypeID != nil {
			q = q.Where("request_type_id = ?", *filter.RequestTypeID)
		}
		if filter.GroupID != nil {
			q = q.Where("group_id = ?", *filter.GroupID)
		}
		if filter.CreatorID != nil {
			q = q.Where("creator_id = ?", *filter.CreatorID)
		}
		return q
	}

	if err := applyFilter(db.Model(&model.Request{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetch := applyFilter(db.Preload("Creator").Preload("Assignee"))
	if err := fetch.Order("created_at DESC").Offset(offset).Limit(limit).Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *requestRepository) Update(ctx context.Context, req *model.Request) error {
	return GetDB(ctx, r.db).Save(req).Error
}

func (r *requestRepository) CreateAttachment(ctx context.Context, att *model.RequestAttachment) error {
	return GetDB(ctx, r.db).Create(att).Error
}

func (r *requestRepository) FindAttachment(ctx context.Context, requestID, attachmentID uuid.UUID) (*model.RequestAttachment, error) {
	var att model.RequestAttachment
	if err := GetDB(ctx, r.db).
		First(&att, "id = ? AND request_id = ?", attachmentID, requestID).Error; err != nil {
		return nil, err
	}
	return &att, nil
}

func (r *requestRepository) DeleteAttachment(ctx context.Context, attachmentID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", attachmentID).Delete(&model.RequestAttachment{}).Error
}
