package service

import (
	"context"
	"errors"
	"time"

	"paydesk/internal/apperr"
	"paydesk/internal/model"
	"paydesk/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateRequestTypeDTO struct {
	Name        string                        `json:"name" binding:"required"`
	Description string                        `json:"description"`
	FieldConfig map[string]model.FieldSetting `json:"field_config"`
}

// UpdateRequestTypeDTO carries a partial update. Only non-nil fields change.
// FieldConfig is merged key by key: present keys overwrite, a null entry clears
// an extra key, everything the caller omits survives untouched.
type UpdateRequestTypeDTO struct {
	Name        *string                        `json:"name"`
	Description *string                        `json:"description"`
	IsActive    *bool                          `json:"is_active"`
	FieldConfig map[string]*model.FieldSetting `json:"field_config"`
}

type RequestTypeResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	IsActive    bool              `json:"is_active"`
	FieldConfig model.FieldConfig `json:"field_config"`
	CreatorID   *string           `json:"creator_id"`
	CreatedAt   string            `json:"created_at"`
	UpdatedAt   string            `json:"updated_at"`
}

// --- Interface ---

type RequestTypeService interface {
	Create(ctx context.Context, dto CreateRequestTypeDTO, actorID uuid.UUID) (RequestTypeResponse, error)
	Get(ctx context.Context, id uuid.UUID) (RequestTypeResponse, error)
	List(ctx context.Context, activeOnly bool, page, limit int) ([]RequestTypeResponse, int64, error)
	Update(ctx context.Context, id uuid.UUID, dto UpdateRequestTypeDTO) (RequestTypeResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type requestTypeService struct {
	repo repository.RequestTypeRepository
	txm  repository.TransactionManager
}

func NewRequestTypeService(repo repository.RequestTypeRepository, txm repository.TransactionManager) RequestTypeService {
	return &requestTypeService{repo: repo, txm: txm}
}

// --- Implementation ---

// Create registers a new request type. The submitted field config is copied and
// normalized so every well-known key is present; name collisions fail with a
// DuplicateNameError. The uniqueness check runs inside the insert transaction
// and is backed by the unique index, so two concurrent creates cannot both win.
func (s *requestTypeService) Create(ctx context.Context, dto CreateRequestTypeDTO, actorID uuid.UUID) (RequestTypeResponse, error) {
	if dto.Name == "" {
		return RequestTypeResponse{}, &apperr.ValidationError{Violations: []apperr.FieldViolation{
			{Field: "name", Reason: "must not be empty"},
		}}
	}

	config := model.FieldConfig{}
	for key, setting := range dto.FieldConfig {
		config[key] = setting
	}
	config = config.Normalize()

	rt := model.RequestType{
		Name:        dto.Name,
		Description: dto.Description,
		IsActive:    true,
		FieldConfig: config,
		CreatorID:   &actorID,
	}

	err := s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if _, findErr := s.repo.FindByName(txCtx, dto.Name); findErr == nil {
			return &apperr.DuplicateNameError{Name: dto.Name}
		} else if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return apperr.Storage("request type lookup", findErr)
		}

		if createErr := s.repo.Create(txCtx, &rt); createErr != nil {
			if errors.Is(createErr, gorm.ErrDuplicatedKey) {
				return &apperr.DuplicateNameError{Name: dto.Name}
			}
			return apperr.Storage("request type create", createErr)
		}
		return nil
	})
	if err != nil {
		return RequestTypeResponse{}, err
	}

	return toRequestTypeResponse(rt), nil
}

func (s *requestTypeService) Get(ctx context.Context, id uuid.UUID) (RequestTypeResponse, error) {
	rt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestTypeResponse{}, apperr.NotFound("request type")
		}
		return RequestTypeResponse{}, apperr.Storage("request type lookup", err)
	}
	return toRequestTypeResponse(*rt), nil
}

func (s *requestTypeService) List(ctx context.Context, activeOnly bool, page, limit int) ([]RequestTypeResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	types, total, err := s.repo.List(ctx, activeOnly, page, limit)
	if err != nil {
		return nil, 0, apperr.Storage("request type list", err)
	}

	result := make([]RequestTypeResponse, 0, len(types))
	for _, rt := range types {
		result = append(result, toRequestTypeResponse(rt))
	}
	return result, total, nil
}

// Update applies a partial update. A rename re-checks name uniqueness; a field
// config patch is merged, never replaced wholesale, so extra keys the caller
// omits round-trip without loss.
func (s *requestTypeService) Update(ctx context.Context, id uuid.UUID, dto UpdateRequestTypeDTO) (RequestTypeResponse, error) {
	var updated model.RequestType

	err := s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		rt, findErr := s.repo.FindByID(txCtx, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("request type")
			}
			return apperr.Storage("request type lookup", findErr)
		}

		if dto.Name != nil && *dto.Name != rt.Name {
			if *dto.Name == "" {
				return &apperr.ValidationError{Violations: []apperr.FieldViolation{
					{Field: "name", Reason: "must not be empty"},
				}}
			}
			if _, nameErr := s.repo.FindByName(txCtx, *dto.Name); nameErr == nil {
				return &apperr.DuplicateNameError{Name: *dto.Name}
			} else if !errors.Is(nameErr, gorm.ErrRecordNotFound) {
				return apperr.Storage("request type lookup", nameErr)
			}
			rt.Name = *dto.Name
		}

		if dto.Description != nil {
			rt.Description = *dto.Description
		}
		if dto.IsActive != nil {
			rt.IsActive = *dto.IsActive
		}
		if dto.FieldConfig != nil {
			merged, mergeErr := rt.FieldConfig.Merge(dto.FieldConfig)
			if mergeErr != nil {
				return &apperr.ValidationError{Violations: []apperr.FieldViolation{
					{Field: "field_config", Reason: mergeErr.Error()},
				}}
			}
			rt.FieldConfig = merged
		}

		if saveErr := s.repo.Update(txCtx, rt); saveErr != nil {
			if errors.Is(saveErr, gorm.ErrDuplicatedKey) {
				return &apperr.DuplicateNameError{Name: rt.Name}
			}
			return apperr.Storage("request type update", saveErr)
		}

		updated = *rt
		return nil
	})
	if err != nil {
		return RequestTypeResponse{}, err
	}

	return toRequestTypeResponse(updated), nil
}

// Delete hard-deletes a type that no request references. The in-use count and
// the delete run in one transaction to close the check-then-act race.
func (s *requestTypeService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if _, findErr := s.repo.FindByID(txCtx, id); findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("request type")
			}
			return apperr.Storage("request type lookup", findErr)
		}

		count, countErr := s.repo.CountRequests(txCtx, id)
		if countErr != nil {
			return apperr.Storage("request type dependents count", countErr)
		}
		if count > 0 {
			return &apperr.ConflictError{Reason: "request type is in use and cannot be deleted"}
		}

		if delErr := s.repo.Delete(txCtx, id); delErr != nil {
			return apperr.Storage("request type delete", delErr)
		}
		return nil
	})
}

// --- Helpers ---

func toRequestTypeResponse(rt model.RequestType) RequestTypeResponse {
	resp := RequestTypeResponse{
		ID:          rt.ID.String(),
		Name:        rt.Name,
		Description: rt.Description,
		IsActive:    rt.IsActive,
		FieldConfig: rt.FieldConfig,
		CreatedAt:   rt.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   rt.UpdatedAt.Format(time.RFC3339),
	}
	if rt.CreatorID != nil {
		s := rt.CreatorID.String()
		resp.CreatorID = &s
	}
	return resp
}
