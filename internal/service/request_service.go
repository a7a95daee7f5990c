package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"paydesk/internal/apperr"
	"paydesk/internal/filestore"
	"paydesk/internal/model"
	"paydesk/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateRequestDTO struct {
	RequestTypeID    uuid.UUID        `json:"request_type_id" binding:"required"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Amount           *decimal.Decimal `json:"amount"`
	EffectiveDate    *time.Time       `json:"effective_date"`
	BeneficiaryName  string           `json:"beneficiary_name"`
	BeneficiaryPhone string           `json:"beneficiary_phone"`
	ContactID        *uuid.UUID       `json:"contact_id"`
	GroupID          *uuid.UUID       `json:"group_id"`
	SubGroupID       *uuid.UUID       `json:"sub_group_id"`
	AssigneeID       *uuid.UUID       `json:"assignee_id"`
}

// UpdateRequestDTO is a patch: only non-nil fields are applied.
type UpdateRequestDTO struct {
	Title            *string          `json:"title"`
	Description      *string          `json:"description"`
	Amount           *decimal.Decimal `json:"amount"`
	EffectiveDate    *time.Time       `json:"effective_date"`
	BeneficiaryName  *string          `json:"beneficiary_name"`
	BeneficiaryPhone *string          `json:"beneficiary_phone"`
	ContactID        *uuid.UUID       `json:"contact_id"`
	GroupID          *uuid.UUID       `json:"group_id"`
	SubGroupID       *uuid.UUID       `json:"sub_group_id"`
	AssigneeID       *uuid.UUID       `json:"assignee_id"`
}

type ChangeStatusDTO struct {
	Status  string `json:"status" binding:"required"`
	Comment string `json:"comment"`
}

type UploadAttachmentDTO struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

type AttachmentResponse struct {
	ID         string `json:"id"`
	FilePath   string `json:"file_path"`
	FileType   string `json:"file_type"`
	FileName   string `json:"file_name"`
	UploadedBy string `json:"uploaded_by"`
	UploadedAt string `json:"uploaded_at"`
}

type RequestResponse struct {
	ID               string               `json:"id"`
	RequestTypeID    string               `json:"request_type_id"`
	RequestTypeName  string               `json:"request_type_name,omitempty"`
	Title            string               `json:"title"`
	Description      string               `json:"description"`
	Amount           *string              `json:"amount"`
	EffectiveDate    *string              `json:"effective_date"`
	BeneficiaryName  string               `json:"beneficiary_name"`
	BeneficiaryPhone string               `json:"beneficiary_phone"`
	ContactID        *string              `json:"contact_id"`
	GroupID          *string              `json:"group_id"`
	SubGroupID       *string              `json:"sub_group_id"`
	Status           string               `json:"status"`
	CreatorID        string               `json:"creator_id"`
	CreatorName      string               `json:"creator_name,omitempty"`
	AssigneeID       *string              `json:"assignee_id"`
	AssigneeName     string               `json:"assignee_name,omitempty"`
	Attachments      []AttachmentResponse `json:"attachments,omitempty"`
	CreatedAt        string               `json:"created_at"`
	UpdatedAt        string               `json:"updated_at"`
}

// --- Interface ---

type RequestService interface {
	Create(ctx context.Context, dto CreateRequestDTO, creatorID uuid.UUID) (RequestResponse, error)
	Get(ctx context.Context, id, actorID uuid.UUID, actorRole string) (RequestResponse, error)
	List(ctx context.Context, filter repository.RequestFilter, page, limit int) ([]RequestResponse, int64, error)
	Update(ctx context.Context, id uuid.UUID, dto UpdateRequestDTO, actorID uuid.UUID, actorRole string) (RequestResponse, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, dto ChangeStatusDTO, actorID uuid.UUID, actorRole string) (RequestResponse, error)
	IsEditable(ctx context.Context, id uuid.UUID) (bool, error)
	CanAccess(ctx context.Context, id, actorID uuid.UUID, actorRole string) error

	UploadAttachment(ctx context.Context, requestID uuid.UUID, dto UploadAttachmentDTO, actorID uuid.UUID, actorRole string) (AttachmentResponse, error)
	DeleteAttachment(ctx context.Context, requestID, attachmentID, actorID uuid.UUID, actorRole string) error
}

type requestService struct {
	requests   repository.RequestRepository
	types      repository.RequestTypeRepository
	groups     repository.GroupRepository
	subGroups  repository.SubGroupRepository
	activities repository.ActivityRepository
	files      filestore.Provider
	txm        repository.TransactionManager
}

func NewRequestService(
	requests repository.RequestRepository,
	types repository.RequestTypeRepository,
	groups repository.GroupRepository,
	subGroups repository.SubGroupRepository,
	activities repository.ActivityRepository,
	files filestore.Provider,
	txm repository.TransactionManager,
) RequestService {
	return &requestService{
		requests:   requests,
		types:      types,
		groups:     groups,
		subGroups:  subGroups,
		activities: activities,
		files:      files,
		txm:        txm,
	}
}

// --- Implementation ---

// Create validates the submission against the type's field configuration and
// persists the request together with its CREATE ledger entry in one
// transaction. Validation collects every violation before failing so the
// caller can display all problems at once.
func (s *requestService) Create(ctx context.Context, dto CreateRequestDTO, creatorID uuid.UUID) (RequestResponse, error) {
	var created model.Request

	err := s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		rt, findErr := s.types.FindByID(txCtx, dto.RequestTypeID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("request type")
			}
			return apperr.Storage("request type lookup", findErr)
		}
		if !rt.IsActive {
			return apperr.NotFound("request type")
		}

		submitted := dto.populatedFields()
		if valErr := validateAgainstConfig(rt.FieldConfig, submitted, submitted); valErr != nil {
			return valErr
		}

		if dto.GroupID != nil {
			if _, groupErr := s.groups.FindByID(txCtx, *dto.GroupID); groupErr != nil {
				if errors.Is(groupErr, gorm.ErrRecordNotFound) {
					return apperr.NotFound("request group")
				}
				return apperr.Storage("group lookup", groupErr)
			}
		}
		if dto.SubGroupID != nil {
			if _, sgErr := s.subGroups.FindByID(txCtx, *dto.SubGroupID); sgErr != nil {
				if errors.Is(sgErr, gorm.ErrRecordNotFound) {
					return apperr.NotFound("request subgroup")
				}
				return apperr.Storage("subgroup lookup", sgErr)
			}
		}

		req := model.Request{
			RequestTypeID:    dto.RequestTypeID,
			Title:            dto.Title,
			Description:      dto.Description,
			Amount:           dto.Amount,
			EffectiveDate:    dto.EffectiveDate,
			BeneficiaryName:  dto.BeneficiaryName,
			BeneficiaryPhone: dto.BeneficiaryPhone,
			ContactID:        dto.ContactID,
			GroupID:          dto.GroupID,
			SubGroupID:       dto.SubGroupID,
			Status:           model.StatusPending,
			CreatorID:        creatorID,
			AssigneeID:       dto.AssigneeID,
		}
		if createErr := s.requests.Create(txCtx, &req); createErr != nil {
			return apperr.Storage("request create", createErr)
		}

		snapshot := dto.fieldSnapshot()
		if actErr := s.appendActivity(txCtx, req.ID, creatorID, model.ActionCreate, snapshot); actErr != nil {
			return actErr
		}

		created = req
		return nil
	})
	if err != nil {
		return RequestResponse{}, err
	}

	return s.reload(ctx, created.ID)
}

func (s *requestService) Get(ctx context.Context, id, actorID uuid.UUID, actorRole string) (RequestResponse, error) {
	req, err := s.loadRequest(ctx, id)
	if err != nil {
		return RequestResponse{}, err
	}
	if accessErr := checkAccess(req, actorID, actorRole); accessErr != nil {
		return RequestResponse{}, accessErr
	}
	return s.reload(ctx, id)
}

func (s *requestService) List(ctx context.Context, filter repository.RequestFilter, page, limit int) ([]RequestResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	requests, total, err := s.requests.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, apperr.Storage("request list", err)
	}

	result := make([]RequestResponse, 0, len(requests))
	for _, r := range requests {
		result = append(result, toRequestResponse(r))
	}
	return result, total, nil
}

// Update applies only the fields present in the patch and logs an UPDATE
// activity containing exactly the changed fields. Requires access and a
// non-terminal status.
func (s *requestService) Update(ctx context.Context, id uuid.UUID, dto UpdateRequestDTO, actorID uuid.UUID, actorRole string) (RequestResponse, error) {
	err := s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		req, loadErr := s.loadRequest(txCtx, id)
		if loadErr != nil {
			return loadErr
		}
		if accessErr := checkAccess(req, actorID, actorRole); accessErr != nil {
			return accessErr
		}
		if !req.IsEditable() {
			return &apperr.NotEditableError{Status: req.Status}
		}

		rt, typeErr := s.types.FindByID(txCtx, req.RequestTypeID)
		if typeErr != nil {
			return apperr.Storage("request type lookup", typeErr)
		}
		if valErr := validateAgainstConfig(rt.FieldConfig, dto.populatedFields(), dto.resultingPopulated(req)); valErr != nil {
			return valErr
		}

		changed := map[string]interface{}{}

		if dto.Title != nil && *dto.Title != req.Title {
			req.Title = *dto.Title
			changed[model.FieldTitle] = *dto.Title
		}
		if dto.Description != nil && *dto.Description != req.Description {
			req.Description = *dto.Description
			changed[model.FieldDescription] = *dto.Description
		}
		if dto.Amount != nil && (req.Amount == nil || !req.Amount.Equal(*dto.Amount)) {
			req.Amount = dto.Amount
			changed[model.FieldAmount] = dto.Amount.String()
		}
		if dto.EffectiveDate != nil && (req.EffectiveDate == nil || !req.EffectiveDate.Equal(*dto.EffectiveDate)) {
			req.EffectiveDate = dto.EffectiveDate
			changed[model.FieldEffectiveDate] = dto.EffectiveDate.Format(time.RFC3339)
		}
		if dto.BeneficiaryName != nil && *dto.BeneficiaryName != req.BeneficiaryName {
			req.BeneficiaryName = *dto.BeneficiaryName
			changed[model.FieldBeneficiaryName] = *dto.BeneficiaryName
		}
		if dto.BeneficiaryPhone != nil && *dto.BeneficiaryPhone != req.BeneficiaryPhone {
			req.BeneficiaryPhone = *dto.BeneficiaryPhone
			changed[model.FieldBeneficiaryPhone] = *dto.BeneficiaryPhone
		}
		if dto.ContactID != nil && (req.ContactID == nil || *req.ContactID != *dto.ContactID) {
			req.ContactID = dto.ContactID
			changed[model.FieldContactID] = dto.ContactID.String()
		}
		if dto.GroupID != nil && (req.GroupID == nil || *req.GroupID != *dto.GroupID) {
			if _, groupErr := s.groups.FindByID(txCtx, *dto.GroupID); groupErr != nil {
				if errors.Is(groupErr, gorm.ErrRecordNotFound) {
					return apperr.NotFound("request group")
				}
				return apperr.Storage("group lookup", groupErr)
			}
			req.GroupID = dto.GroupID
			changed[model.FieldGroupID] = dto.GroupID.String()
		}
		if dto.SubGroupID != nil && (req.SubGroupID == nil || *req.SubGroupID != *dto.SubGroupID) {
			if _, sgErr := s.subGroups.FindByID(txCtx, *dto.SubGroupID); sgErr != nil {
				if errors.Is(sgErr, gorm.ErrRecordNotFound) {
					return apperr.NotFound("request subgroup")
				}
				return apperr.Storage("subgroup lookup", sgErr)
			}
			req.SubGroupID = dto.SubGroupID
			changed["subGroupId"] = dto.SubGroupID.String()
		}
		if dto.AssigneeID != nil && (req.AssigneeID == nil || *req.AssigneeID != *dto.AssigneeID) {
			req.AssigneeID = dto.AssigneeID
			changed["assigneeId"] = dto.AssigneeID.String()
		}

		if len(changed) == 0 {
			return nil
		}

		if saveErr := s.requests.Update(txCtx, req); saveErr != nil {
			return apperr.Storage("request update", saveErr)
		}
		return s.appendActivity(txCtx, req.ID, actorID, model.ActionUpdate, changed)
	})
	if err != nil {
		return RequestResponse{}, err
	}

	return s.reload(ctx, id)
}

// ChangeStatus moves the request to any valid status value unless the current
// status is terminal. The status write and its STATUS_CHANGE ledger entry
// commit atomically; notification of "paid" transitions is the caller's
// concern and only happens after this returns.
func (s *requestService) ChangeStatus(ctx context.Context, id uuid.UUID, dto ChangeStatusDTO, actorID uuid.UUID, actorRole string) (RequestResponse, error) {
	if !model.IsValidStatus(dto.Status) {
		return RequestResponse{}, &apperr.ValidationError{Violations: []apperr.FieldViolation{
			{Field: "status", Reason: fmt.Sprintf("unknown status %q", dto.Status)},
		}}
	}

	err := s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		req, loadErr := s.loadRequest(txCtx, id)
		if loadErr != nil {
			return loadErr
		}
		if accessErr := checkAccess(req, actorID, actorRole); accessErr != nil {
			return accessErr
		}
		if !req.IsEditable() {
			return &apperr.NotEditableError{Status: req.Status}
		}

		oldStatus := req.Status
		req.Status = dto.Status
		if saveErr := s.requests.Update(txCtx, req); saveErr != nil {
			return apperr.Storage("status update", saveErr)
		}

		details := map[string]interface{}{
			"old_status": oldStatus,
			"new_status": dto.Status,
		}
		if dto.Comment != "" {
			details["comment"] = dto.Comment
		}
		return s.appendActivity(txCtx, req.ID, actorID, model.ActionStatusChange, details)
	})
	if err != nil {
		return RequestResponse{}, err
	}

	return s.reload(ctx, id)
}

// IsEditable reports whether the request accepts mutations.
func (s *requestService) IsEditable(ctx context.Context, id uuid.UUID) (bool, error) {
	req, err := s.loadRequest(ctx, id)
	if err != nil {
		return false, err
	}
	return req.IsEditable(), nil
}

// CanAccess applies the access policy: privileged roles always pass, otherwise
// the actor must be the creator or the assignee. A missing request surfaces as
// NotFound, never as a silent denial, so callers can tell the two apart.
func (s *requestService) CanAccess(ctx context.Context, id, actorID uuid.UUID, actorRole string) error {
	req, err := s.loadRequest(ctx, id)
	if err != nil {
		return err
	}
	return checkAccess(req, actorID, actorRole)
}

// UploadAttachment stores the bytes first; only a successful byte write is
// followed by the attachment record + ledger entry transaction. A failed
// transaction removes the orphaned object best-effort.
func (s *requestService) UploadAttachment(ctx context.Context, requestID uuid.UUID, dto UploadAttachmentDTO, actorID uuid.UUID, actorRole string) (AttachmentResponse, error) {
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return AttachmentResponse{}, err
	}
	if accessErr := checkAccess(req, actorID, actorRole); accessErr != nil {
		return AttachmentResponse{}, accessErr
	}
	if !req.IsEditable() {
		return AttachmentResponse{}, &apperr.NotEditableError{Status: req.Status}
	}

	objectName := fmt.Sprintf("requests/%s/%s-%s", requestID, uuid.New(), dto.FileName)
	path, saveErr := s.files.Save(ctx, objectName, dto.Content, dto.Size, dto.ContentType)
	if saveErr != nil {
		return AttachmentResponse{}, apperr.Storage("attachment upload", saveErr)
	}

	att := model.RequestAttachment{
		RequestID:  requestID,
		FilePath:   path,
		FileType:   dto.ContentType,
		FileName:   dto.FileName,
		UploadedBy: actorID,
	}
	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.requests.CreateAttachment(txCtx, &att); createErr != nil {
			return apperr.Storage("attachment record create", createErr)
		}
		return s.appendActivity(txCtx, requestID, actorID, model.ActionAttachmentUpload, map[string]interface{}{
			"file_name": dto.FileName,
			"file_path": path,
		})
	})
	if err != nil {
		if rmErr := s.files.Remove(ctx, path); rmErr != nil {
			log.WithError(rmErr).WithField("object", path).Warn("failed to clean up orphaned attachment object")
		}
		return AttachmentResponse{}, err
	}

	return toAttachmentResponse(att), nil
}

// DeleteAttachment removes the record and its ledger entry atomically, then
// removes the stored bytes best-effort. Requires access and editability.
func (s *requestService) DeleteAttachment(ctx context.Context, requestID, attachmentID, actorID uuid.UUID, actorRole string) error {
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if accessErr := checkAccess(req, actorID, actorRole); accessErr != nil {
		return accessErr
	}
	if !req.IsEditable() {
		return &apperr.NotEditableError{Status: req.Status}
	}

	att, findErr := s.requests.FindAttachment(ctx, requestID, attachmentID)
	if findErr != nil {
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			return apperr.NotFound("attachment")
		}
		return apperr.Storage("attachment lookup", findErr)
	}

	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if delErr := s.requests.DeleteAttachment(txCtx, attachmentID); delErr != nil {
			return apperr.Storage("attachment record delete", delErr)
		}
		return s.appendActivity(txCtx, requestID, actorID, model.ActionAttachmentDelete, map[string]interface{}{
			"file_name": att.FileName,
			"file_path": att.FilePath,
		})
	})
	if err != nil {
		return err
	}

	if rmErr := s.files.Remove(ctx, att.FilePath); rmErr != nil {
		log.WithError(rmErr).WithField("object", att.FilePath).Warn("failed to remove attachment object")
	}
	return nil
}

// --- Validation ---

// validateAgainstConfig checks a submission against the type's field
// configuration, collecting every violation. The disabled check applies to
// `set`, the fields this submission writes; the required check applies to
// `populated`, the values the request ends up with. On create the two maps are
// identical; on update `populated` also counts stored values a patch left alone.
func validateAgainstConfig(config model.FieldConfig, set, populated map[string]bool) error {
	var violations []apperr.FieldViolation

	for _, key := range model.WellKnownFieldKeys {
		setting := config.Setting(key)
		if set[key] && !setting.Enabled {
			violations = append(violations, apperr.FieldViolation{
				Field:  key,
				Reason: "not enabled for this request type",
			})
		}
		if setting.Enabled && setting.Required && !populated[key] {
			violations = append(violations, apperr.FieldViolation{
				Field:  key,
				Reason: "is required",
			})
		}
	}

	if len(violations) > 0 {
		return &apperr.ValidationError{Violations: violations}
	}
	return nil
}

// populatedFields maps well-known keys to whether the create submission set them.
func (dto CreateRequestDTO) populatedFields() map[string]bool {
	return map[string]bool{
		model.FieldTitle:            dto.Title != "",
		model.FieldDescription:      dto.Description != "",
		model.FieldAmount:           dto.Amount != nil,
		model.FieldEffectiveDate:    dto.EffectiveDate != nil,
		model.FieldBeneficiaryName:  dto.BeneficiaryName != "",
		model.FieldBeneficiaryPhone: dto.BeneficiaryPhone != "",
		model.FieldContactID:        dto.ContactID != nil,
		model.FieldGroupID:          dto.GroupID != nil,
	}
}

// populatedFields for a patch only reports the keys the patch sets to a value;
// it feeds the disabled-field check, which must ignore stored data.
func (dto UpdateRequestDTO) populatedFields() map[string]bool {
	populated := map[string]bool{}
	if dto.Title != nil && *dto.Title != "" {
		populated[model.FieldTitle] = true
	}
	if dto.Description != nil && *dto.Description != "" {
		populated[model.FieldDescription] = true
	}
	if dto.Amount != nil {
		populated[model.FieldAmount] = true
	}
	if dto.EffectiveDate != nil {
		populated[model.FieldEffectiveDate] = true
	}
	if dto.BeneficiaryName != nil && *dto.BeneficiaryName != "" {
		populated[model.FieldBeneficiaryName] = true
	}
	if dto.BeneficiaryPhone != nil && *dto.BeneficiaryPhone != "" {
		populated[model.FieldBeneficiaryPhone] = true
	}
	if dto.ContactID != nil {
		populated[model.FieldContactID] = true
	}
	if dto.GroupID != nil {
		populated[model.FieldGroupID] = true
	}
	return populated
}

// resultingPopulated maps well-known keys to whether the request will carry a
// value once the patch is applied: keys the patch touches take the patch's
// value, everything else keeps the stored one. Feeds the required-field check,
// so an untouched required field the request already carries stays valid while
// a patch that clears a required field is still caught.
func (dto UpdateRequestDTO) resultingPopulated(req *model.Request) map[string]bool {
	populated := map[string]bool{
		model.FieldTitle:            req.Title != "",
		model.FieldDescription:      req.Description != "",
		model.FieldAmount:           req.Amount != nil,
		model.FieldEffectiveDate:    req.EffectiveDate != nil,
		model.FieldBeneficiaryName:  req.BeneficiaryName != "",
		model.FieldBeneficiaryPhone: req.BeneficiaryPhone != "",
		model.FieldContactID:        req.ContactID != nil,
		model.FieldGroupID:          req.GroupID != nil,
	}
	if dto.Title != nil {
		populated[model.FieldTitle] = *dto.Title != ""
	}
	if dto.Description != nil {
		populated[model.FieldDescription] = *dto.Description != ""
	}
	if dto.Amount != nil {
		populated[model.FieldAmount] = true
	}
	if dto.EffectiveDate != nil {
		populated[model.FieldEffectiveDate] = true
	}
	if dto.BeneficiaryName != nil {
		populated[model.FieldBeneficiaryName] = *dto.BeneficiaryName != ""
	}
	if dto.BeneficiaryPhone != nil {
		populated[model.FieldBeneficiaryPhone] = *dto.BeneficiaryPhone != ""
	}
	if dto.ContactID != nil {
		populated[model.FieldContactID] = true
	}
	if dto.GroupID != nil {
		populated[model.FieldGroupID] = true
	}
	return populated
}

func (dto CreateRequestDTO) fieldSnapshot() map[string]interface{} {
	snapshot := map[string]interface{}{
		"request_type_id": dto.RequestTypeID.String(),
	}
	if dto.Title != "" {
		snapshot[model.FieldTitle] = dto.Title
	}
	if dto.Description != "" {
		snapshot[model.FieldDescription] = dto.Description
	}
	if dto.Amount != nil {
		snapshot[model.FieldAmount] = dto.Amount.String()
	}
	if dto.EffectiveDate != nil {
		snapshot[model.FieldEffectiveDate] = dto.EffectiveDate.Format(time.RFC3339)
	}
	if dto.BeneficiaryName != "" {
		snapshot[model.FieldBeneficiaryName] = dto.BeneficiaryName
	}
	if dto.BeneficiaryPhone != "" {
		snapshot[model.FieldBeneficiaryPhone] = dto.BeneficiaryPhone
	}
	if dto.ContactID != nil {
		snapshot[model.FieldContactID] = dto.ContactID.String()
	}
	if dto.GroupID != nil {
		snapshot[model.FieldGroupID] = dto.GroupID.String()
	}
	if dto.SubGroupID != nil {
		snapshot["subGroupId"] = dto.SubGroupID.String()
	}
	return snapshot
}

// --- Access policy ---

func checkAccess(req *model.Request, actorID uuid.UUID, actorRole string) error {
	if model.IsPrivilegedRole(actorRole) {
		return nil
	}
	if req.CreatorID == actorID {
		return nil
	}
	if req.AssigneeID != nil && *req.AssigneeID == actorID {
		return nil
	}
	return &apperr.ForbiddenError{}
}

// --- Helpers ---

func (s *requestService) loadRequest(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("request")
		}
		return nil, apperr.Storage("request lookup", err)
	}
	return req, nil
}

// appendActivity writes one ledger entry inside the caller's transaction. A
// failed write fails the whole operation; the ledger is never skipped silently.
func (s *requestService) appendActivity(ctx context.Context, requestID, userID uuid.UUID, action string, details map[string]interface{}) error {
	payload, _ := json.Marshal(details)
	entry := model.RequestActivity{
		RequestID: requestID,
		UserID:    userID,
		Action:    action,
		Details:   string(payload),
	}
	if err := s.activities.Append(ctx, &entry); err != nil {
		return apperr.Storage("activity append", err)
	}
	return nil
}

func (s *requestService) reload(ctx context.Context, id uuid.UUID) (RequestResponse, error) {
	req, err := s.requests.FindByIDWithRelations(ctx, id)
	if err != nil {
		return RequestResponse{}, apperr.Storage("request reload", err)
	}
	return toRequestResponse(*req), nil
}

func toRequestResponse(r model.Request) RequestResponse {
	resp := RequestResponse{
		ID:               r.ID.String(),
		RequestTypeID:    r.RequestTypeID.String(),
		Title:            r.Title,
		Description:      r.Description,
		BeneficiaryName:  r.BeneficiaryName,
		BeneficiaryPhone: r.BeneficiaryPhone,
		Status:           r.Status,
		CreatorID:        r.CreatorID.String(),
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        r.UpdatedAt.Format(time.RFC3339),
	}

	if r.RequestType != nil {
		resp.RequestTypeName = r.RequestType.Name
	}
	if r.Amount != nil {
		s := r.Amount.String()
		resp.Amount = &s
	}
	if r.EffectiveDate != nil {
		s := r.EffectiveDate.Format(time.RFC3339)
		resp.EffectiveDate = &s
	}
	if r.ContactID != nil {
		s := r.ContactID.String()
		resp.ContactID = &s
	}
	if r.GroupID != nil {
		s := r.GroupID.String()
		resp.GroupID = &s
	}
	if r.SubGroupID != nil {
		s := r.SubGroupID.String()
		resp.SubGroupID = &s
	}
	if r.Creator != nil {
		resp.CreatorName = r.Creator.Username
	}
	if r.AssigneeID != nil {
		s := r.AssigneeID.String()
		resp.AssigneeID = &s
	}
	if r.Assignee != nil {
		resp.AssigneeName = r.Assignee.Username
	}
	for _, att := range r.Attachments {
		resp.Attachments = append(resp.Attachments, toAttachmentResponse(att))
	}

	return resp
}

func toAttachmentResponse(a model.RequestAttachment) AttachmentResponse {
	return AttachmentResponse{
		ID:         a.ID.String(),
		FilePath:   a.FilePath,
		FileType:   a.FileType,
		FileName:   a.FileName,
		UploadedBy: a.UploadedBy.String(),
		UploadedAt: a.UploadedAt.Format(time.RFC3339),
	}
}
