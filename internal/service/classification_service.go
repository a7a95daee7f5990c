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

type CreateGroupDTO struct {
	Name          string    `json:"name" binding:"required"`
	Description   string    `json:"description"`
	RequestTypeID uuid.UUID `json:"request_type_id" binding:"required"`
}

type UpdateGroupDTO struct {
	Name          *string    `json:"name"`
	Description   *string    `json:"description"`
	IsActive      *bool      `json:"is_active"`
	RequestTypeID *uuid.UUID `json:"request_type_id"`
}

type CreateSubGroupDTO struct {
	Name        string    `json:"name" binding:"required"`
	Description string    `json:"description"`
	GroupID     uuid.UUID `json:"group_id" binding:"required"`
}

type UpdateSubGroupDTO struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	IsActive    *bool      `json:"is_active"`
	GroupID     *uuid.UUID `json:"group_id"`
}

type GroupResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	RequestTypeID string `json:"request_type_id"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at"`
}

type SubGroupResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	GroupID     string `json:"group_id"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
}

// DeleteResult reports whether a classification node was removed or merely
// deactivated, so callers can surface the right message.
type DeleteResult struct {
	SoftDeleted bool `json:"soft_deleted"`
}

// --- Interface ---

type ClassificationService interface {
	CreateGroup(ctx context.Context, dto CreateGroupDTO, actorID uuid.UUID) (GroupResponse, error)
	UpdateGroup(ctx context.Context, id uuid.UUID, dto UpdateGroupDTO) (GroupResponse, error)
	DeleteGroup(ctx context.Context, id uuid.UUID) (DeleteResult, error)
	ListActiveGroups(ctx context.Context, requestTypeID *uuid.UUID) ([]GroupResponse, error)

	CreateSubGroup(ctx context.Context, dto CreateSubGroupDTO, actorID uuid.UUID) (SubGroupResponse, error)
	UpdateSubGroup(ctx context.Context, id uuid.UUID, dto UpdateSubGroupDTO) (SubGroupResponse, error)
	DeleteSubGroup(ctx context.Context, id uuid.UUID) (DeleteResult, error)
	ListActiveSubGroups(ctx context.Context, groupID *uuid.UUID) ([]SubGroupResponse, error)
}

type classificationService struct {
	groups    repository.GroupRepository
	subGroups repository.SubGroupRepository
	types     repository.RequestTypeRepository
	txm       repository.TransactionManager
}

func NewClassificationService(
	groups repository.GroupRepository,
	subGroups repository.SubGroupRepository,
	types repository.RequestTypeRepository,
	txm repository.TransactionManager,
) ClassificationService {
	return &classificationService{groups: groups, subGroups: subGroups, types: types, txm: txm}
}

// --- Shared delete policy ---

// dependentsPolicy is the one place deciding soft-delete versus hard-delete for
// classification nodes: nodes referenced by historical records stay resolvable,
// so a node with dependents is deactivated instead of removed.
type dependentsPolicy struct {
	countDependents func(ctx context.Context) (int64, error)
	deactivate      func(ctx context.Context) error
	hardDelete      func(ctx context.Context) error
}

func (s *classificationService) deleteNode(ctx context.Context, policy dependentsPolicy) (DeleteResult, error) {
	var result DeleteResult
	err := s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		count, err := policy.countDependents(txCtx)
		if err != nil {
			return apperr.Storage("dependents count", err)
		}

		if count > 0 {
			if err := policy.deactivate(txCtx); err != nil {
				return apperr.Storage("deactivate", err)
			}
			result.SoftDeleted = true
			return nil
		}

		if err := policy.hardDelete(txCtx); err != nil {
			return apperr.Storage("delete", err)
		}
		return nil
	})
	return result, err
}

// --- Groups ---

func (s *classificationService) CreateGroup(ctx context.Context, dto CreateGroupDTO, actorID uuid.UUID) (GroupResponse, error) {
	if _, err := s.types.FindByID(ctx, dto.RequestTypeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GroupResponse{}, apperr.NotFound("request type")
		}
		return GroupResponse{}, apperr.Storage("request type lookup", err)
	}

	group := model.RequestGroup{
		Name:          dto.Name,
		Description:   dto.Description,
		RequestTypeID: dto.RequestTypeID,
		IsActive:      true,
		CreatorID:     &actorID,
	}
	if err := s.groups.Create(ctx, &group); err != nil {
		return GroupResponse{}, apperr.Storage("group create", err)
	}

	return toGroupResponse(group), nil
}

// UpdateGroup applies a partial update. Changing the parent request type is
// permitted (mirroring the reference behavior) but the new parent must exist.
func (s *classificationService) UpdateGroup(ctx context.Context, id uuid.UUID, dto UpdateGroupDTO) (GroupResponse, error) {
	group, err := s.groups.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GroupResponse{}, apperr.NotFound("request group")
		}
		return GroupResponse{}, apperr.Storage("group lookup", err)
	}

	if dto.RequestTypeID != nil && *dto.RequestTypeID != group.RequestTypeID {
		if _, typeErr := s.types.FindByID(ctx, *dto.RequestTypeID); typeErr != nil {
			if errors.Is(typeErr, gorm.ErrRecordNotFound) {
				return GroupResponse{}, apperr.NotFound("request type")
			}
			return GroupResponse{}, apperr.Storage("request type lookup", typeErr)
		}
		group.RequestTypeID = *dto.RequestTypeID
	}

	if dto.Name != nil {
		group.Name = *dto.Name
	}
	if dto.Description != nil {
		group.Description = *dto.Description
	}
	if dto.IsActive != nil {
		group.IsActive = *dto.IsActive
	}

	if err := s.groups.Update(ctx, group); err != nil {
		return GroupResponse{}, apperr.Storage("group update", err)
	}
	return toGroupResponse(*group), nil
}

func (s *classificationService) DeleteGroup(ctx context.Context, id uuid.UUID) (DeleteResult, error) {
	group, err := s.groups.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DeleteResult{}, apperr.NotFound("request group")
		}
		return DeleteResult{}, apperr.Storage("group lookup", err)
	}

	return s.deleteNode(ctx, dependentsPolicy{
		countDependents: func(txCtx context.Context) (int64, error) {
			return s.groups.CountDependents(txCtx, id)
		},
		deactivate: func(txCtx context.Context) error {
			group.IsActive = false
			return s.groups.Update(txCtx, group)
		},
		hardDelete: func(txCtx context.Context) error {
			return s.groups.Delete(txCtx, id)
		},
	})
}

func (s *classificationService) ListActiveGroups(ctx context.Context, requestTypeID *uuid.UUID) ([]GroupResponse, error) {
	groups, err := s.groups.ListActive(ctx, requestTypeID)
	if err != nil {
		return nil, apperr.Storage("group list", err)
	}
	result := make([]GroupResponse, 0, len(groups))
	for _, g := range groups {
		result = append(result, toGroupResponse(g))
	}
	return result, nil
}

// --- SubGroups ---

func (s *classificationService) CreateSubGroup(ctx context.Context, dto CreateSubGroupDTO, actorID uuid.UUID) (SubGroupResponse, error) {
	if _, err := s.groups.FindByID(ctx, dto.GroupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SubGroupResponse{}, apperr.NotFound("request group")
		}
		return SubGroupResponse{}, apperr.Storage("group lookup", err)
	}

	sg := model.RequestSubGroup{
		Name:        dto.Name,
		Description: dto.Description,
		GroupID:     dto.GroupID,
		IsActive:    true,
		CreatorID:   &actorID,
	}
	if err := s.subGroups.Create(ctx, &sg); err != nil {
		return SubGroupResponse{}, apperr.Storage("subgroup create", err)
	}

	return toSubGroupResponse(sg), nil
}

func (s *classificationService) UpdateSubGroup(ctx context.Context, id uuid.UUID, dto UpdateSubGroupDTO) (SubGroupResponse, error) {
	sg, err := s.subGroups.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SubGroupResponse{}, apperr.NotFound("request subgroup")
		}
		return SubGroupResponse{}, apperr.Storage("subgroup lookup", err)
	}

	if dto.GroupID != nil && *dto.GroupID != sg.GroupID {
		if _, groupErr := s.groups.FindByID(ctx, *dto.GroupID); groupErr != nil {
			if errors.Is(groupErr, gorm.ErrRecordNotFound) {
				return SubGroupResponse{}, apperr.NotFound("request group")
			}
			return SubGroupResponse{}, apperr.Storage("group lookup", groupErr)
		}
		sg.GroupID = *dto.GroupID
	}

	if dto.Name != nil {
		sg.Name = *dto.Name
	}
	if dto.Description != nil {
		sg.Description = *dto.Description
	}
	if dto.IsActive != nil {
		sg.IsActive = *dto.IsActive
	}

	if err := s.subGroups.Update(ctx, sg); err != nil {
		return SubGroupResponse{}, apperr.Storage("subgroup update", err)
	}
	return toSubGroupResponse(*sg), nil
}

func (s *classificationService) DeleteSubGroup(ctx context.Context, id uuid.UUID) (DeleteResult, error) {
	sg, err := s.subGroups.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DeleteResult{}, apperr.NotFound("request subgroup")
		}
		return DeleteResult{}, apperr.Storage("subgroup lookup", err)
	}

	return s.deleteNode(ctx, dependentsPolicy{
		countDependents: func(txCtx context.Context) (int64, error) {
			return s.subGroups.CountDependents(txCtx, id)
		},
		deactivate: func(txCtx context.Context) error {
			sg.IsActive = false
			return s.subGroups.Update(txCtx, sg)
		},
		hardDelete: func(txCtx context.Context) error {
			return s.subGroups.Delete(txCtx, id)
		},
	})
}

func (s *classificationService) ListActiveSubGroups(ctx context.Context, groupID *uuid.UUID) ([]SubGroupResponse, error) {
	subGroups, err := s.subGroups.ListActive(ctx, groupID)
	if err != nil {
		return nil, apperr.Storage("subgroup list", err)
	}
	result := make([]SubGroupResponse, 0, len(subGroups))
	for _, sg := range subGroups {
		result = append(result, toSubGroupResponse(sg))
	}
	return result, nil
}

// --- Helpers ---

func toGroupResponse(g model.RequestGroup) GroupResponse {
	return GroupResponse{
		ID:            g.ID.String(),
		Name:          g.Name,
		Description:   g.Description,
		RequestTypeID: g.RequestTypeID.String(),
		IsActive:      g.IsActive,
		CreatedAt:     g.CreatedAt.Format(time.RFC3339),
	}
}

func toSubGroupResponse(sg model.RequestSubGroup) SubGroupResponse {
	return SubGroupResponse{
		ID:          sg.ID.String(),
		Name:        sg.Name,
		Description: sg.Description,
		GroupID:     sg.GroupID.String(),
		IsActive:    sg.IsActive,
		CreatedAt:   sg.CreatedAt.Format(time.RFC3339),
	}
}
