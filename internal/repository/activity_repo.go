package repository

import (
	"context"

	"paydesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityRepository is append-only: the ledger exposes no update or delete.
type ActivityRepository interface {
	Append(ctx context.Context, entry *model.RequestActivity) error
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.RequestActivity, error)
	CountByRequest(ctx context.Context, requestID uuid.UUID) (int64, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Append(ctx context.Context, entry *model.RequestActivity) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

// ListByRequest returns the full timeline most-recent-first, resolving the
// acting user for display. Ties on created_at fall back to insertion order.
func (r *activityRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.RequestActivity, error) {
	var entries []model.RequestActivity
	if err := GetDB(ctx, r.db).
		Preload("User").
		Where("request_id = ?", requestID).
		Order("created_at desc, id desc").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *activityRepository) CountByRequest(ctx context.Context, requestID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.RequestActivity{}).
		Where("request_id = ?", requestID).Count(&count).Error
	return count, err
}
