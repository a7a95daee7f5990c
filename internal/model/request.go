package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RequestStatus enum constants
const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusPaid      = "PAID"
	StatusRejected  = "REJECTED"
	StatusCompleted = "COMPLETED"
	StatusCanceled  = "CANCELED"
)

// RequestStatuses lists every valid status value.
var RequestStatuses = []string{
	StatusPending,
	StatusApproved,
	StatusPaid,
	StatusRejected,
	StatusCompleted,
	StatusCanceled,
}

// IsValidStatus reports whether s is a member of the status enum.
func IsValidStatus(s string) bool {
	for _, v := range RequestStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether a request in status s is frozen.
// Terminal requests reject edits and further status changes; reads stay open.
func IsTerminalStatus(s string) bool {
	return s == StatusCompleted || s == StatusCanceled
}

// Request is a payment or generic request routed through the approval workflow.
// Requests are never hard-deleted; only their status changes.
type Request struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	RequestTypeID uuid.UUID        `gorm:"type:uuid;not null;index" json:"request_type_id"`
	RequestType   *RequestType     `gorm:"foreignKey:RequestTypeID" json:"request_type,omitempty"`
	Title         string           `gorm:"type:varchar(255);not null" json:"title"`
	Description   string           `gorm:"type:text" json:"description"`
	Amount        *decimal.Decimal `gorm:"type:decimal(18,4)" json:"amount"`
	EffectiveDate *time.Time       `json:"effective_date"`

	BeneficiaryName  string     `gorm:"type:varchar(255)" json:"beneficiary_name"`
	BeneficiaryPhone string     `gorm:"type:varchar(20)" json:"beneficiary_phone"`
	ContactID        *uuid.UUID `gorm:"type:uuid;index" json:"contact_id"`
	GroupID          *uuid.UUID `gorm:"type:uuid;index" json:"group_id"`
	SubGroupID       *uuid.UUID `gorm:"type:uuid;index" json:"sub_group_id"`

	Status     string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	CreatorID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"creator_id"`
	Creator    *User      `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	AssigneeID *uuid.UUID `gorm:"type:uuid;index" json:"assignee_id"`
	Assignee   *User      `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`

	Attachments []RequestAttachment `gorm:"foreignKey:RequestID" json:"attachments,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func (r *Request) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// IsEditable reports whether the request still accepts mutations.
func (r *Request) IsEditable() bool {
	return !IsTerminalStatus(r.Status)
}

// RequestAttachment records a stored proof file for a request. The bytes live in
// the file store; this row only carries the reference metadata.
type RequestAttachment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID  uuid.UUID `gorm:"type:uuid;not null;index" json:"request_id"`
	FilePath   string    `gorm:"type:text;not null" json:"file_path"`
	FileType   string    `gorm:"type:varchar(100)" json:"file_type"`
	FileName   string    `gorm:"type:varchar(255);not null" json:"file_name"`
	UploadedBy uuid.UUID `gorm:"type:uuid;not null" json:"uploaded_by"`
	Uploader   *User     `gorm:"foreignKey:UploadedBy" json:"uploader,omitempty"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

func (a *RequestAttachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
