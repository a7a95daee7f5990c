package repository

import (
	"context"

	"paydesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GroupRepository interface {
	Create(ctx context.Context, g *model.RequestGroup) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RequestGroup, error)
	ListActive(ctx context.Context, requestTypeID *uuid.UUID) ([]model.RequestGroup, error)
	Update(ctx context.Context, g *model.RequestGroup) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountDependents(ctx context.Context, id uuid.UUID) (int64, error)
}

type groupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, g *model.RequestGroup) error {
	return GetDB(ctx, r.db).Create(g).Error
}

func (r *groupRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.RequestGroup, error) {
	var g model.RequestGroup
	if err := GetDB(ctx, r.db).First(&g, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *groupRepository) ListActive(ctx context.Context, requestTypeID *uuid.UUID) ([]model.RequestGroup, error) {
	var groups []model.RequestGroup
	query := GetDB(ctx, r.db).Where("is_active = ?", true)
	if requestTypeID != nil {
		query = query.Where("request_type_id = ?", *requestTypeID)
	}
	if err := query.Order("name asc").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) Update(ctx context.Context, g *model.RequestGroup) error {
	return GetDB(ctx, r.db).Save(g).Error
}

func (r *groupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.RequestGroup{}).Error
}

// CountDependents counts subgroups and requests still referencing the group.
func (r *groupRepository) CountDependents(ctx context.Context, id uuid.UUID) (int64, error) {
	db := GetDB(ctx, r.db)

	var subGroups int64
	if err := db.Model(&model.RequestSubGroup{}).Where("group_id = ?", id).Count(&subGroups).Error; err != nil {
		return 0, err
	}

	var requests int64
	if err := db.Model(&model.Request{}).Where("group_id = ?", id).Count(&requests).Error; err != nil {
		return 0, err
	}

	return subGroups + requests, nil
}

type SubGroupRepository interface {
	Create(ctx context.Context, sg *model.RequestSubGroup) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RequestSubGroup, error)
	ListActive(ctx context.Context, groupID *uuid.UUID) ([]model.RequestSubGroup, error)
	Update(ctx context.Context, sg *model.RequestSubGroup) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountDependents(ctx context.Context, id uuid.UUID) (int64, error)
}

type subGroupRepository struct {
	db *gorm.DB
}

func NewSubGroupRepository(db *gorm.DB) SubGroupRepository {
	return &subGroupRepository{db: db}
}

func (r *subGroupRepository) Create(ctx context.Context, sg *model.RequestSubGroup) error {
	return GetDB(ctx, r.db).Create(sg).Error
}

func (r *subGroupRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.RequestSubGroup, error) {
	var sg model.RequestSubGroup
	if err := GetDB(ctx, r.db).First(&sg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sg, nil
}

func (r *subGroupRepository) ListActive(ctx context.Context, groupID *uuid.UUID) ([]model.RequestSubGroup, error) {
	var subGroups []model.RequestSubGroup
	query := GetDB(ctx, r.db).Where("is_active = ?", true)
	if groupID != nil {
		query = query.Where("group_id = ?", *groupID)
	}
	if err := query.Order("name asc").Find(&subGroups).Error; err != nil {
		return nil, err
	}
	return subGroups, nil
}

func (r *subGroupRepository) Update(ctx context.Context, sg *model.RequestSubGroup) error {
	return GetDB(ctx, r.db).Save(sg).Error
}

func (r *subGroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.RequestSubGroup{}).Error
}

// CountDependents counts requests still referencing the subgroup.
func (r *subGroupRepository) CountDependents(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Request{}).Where("sub_group_id = ?", id).Count(&count).Error
	return count, err
}
