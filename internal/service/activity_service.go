package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"paydesk/internal/apperr"
	"paydesk/internal/model"
	"paydesk/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityResponse struct {
	ID        string          `json:"id"`
	RequestID string          `json:"request_id"`
	UserID    string          `json:"user_id"`
	UserName  string          `json:"user_name,omitempty"`
	Action    string          `json:"action"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt string          `json:"created_at"`
}

// ActivityService exposes the append-only ledger. There is no update or
// delete: the trail is tamper-evident by construction.
type ActivityService interface {
	LogActivity(ctx context.Context, requestID, userID uuid.UUID, action string, details map[string]interface{}) error
	ListActivities(ctx context.Context, requestID uuid.UUID) ([]ActivityResponse, error)
}

type activityService struct {
	activities repository.ActivityRepository
	requests   repository.RequestRepository
}

func NewActivityService(activities repository.ActivityRepository, requests repository.RequestRepository) ActivityService {
	return &activityService{activities: activities, requests: requests}
}

// LogActivity appends one ledger entry. The only failures are an unknown
// request and storage errors; both are surfaced, never swallowed.
func (s *activityService) LogActivity(ctx context.Context, requestID, userID uuid.UUID, action string, details map[string]interface{}) error {
	if _, err := s.requests.FindByID(ctx, requestID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("request")
		}
		return apperr.Storage("request lookup", err)
	}

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

// ListActivities returns the request's timeline most-recent-first with the
// acting user's display identity resolved.
func (s *activityService) ListActivities(ctx context.Context, requestID uuid.UUID) ([]ActivityResponse, error) {
	if _, err := s.requests.FindByID(ctx, requestID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("request")
		}
		return nil, apperr.Storage("request lookup", err)
	}

	entries, err := s.activities.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, apperr.Storage("activity list", err)
	}

	result := make([]ActivityResponse, 0, len(entries))
	for _, e := range entries {
		resp := ActivityResponse{
			ID:        e.ID.String(),
			RequestID: e.RequestID.String(),
			UserID:    e.UserID.String(),
			Action:    e.Action,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		}
		if e.User != nil {
			resp.UserName = e.User.Username
		}
		if e.Details != "" {
			resp.Details = json.RawMessage(e.Details)
		}
		result = append(result, resp)
	}
	return result, nil
}
