package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Activity action constants
const (
	ActionCreate           = "CREATE"
	ActionUpdate           = "UPDATE"
	ActionStatusChange     = "STATUS_CHANGE"
	ActionAttachmentUpload = "ATTACHMENT_UPLOAD"
	ActionAttachmentDelete = "ATTACHMENT_DELETE"
)

// RequestActivity is one entry of the append-only ledger tracking Who, What, and
// When for every mutation of a request. Entries are never updated or deleted.
type RequestActivity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID uuid.UUID `gorm:"type:uuid;not null;index" json:"request_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action    string    `gorm:"type:varchar(50);not null;index" json:"action"`
	Details   string    `gorm:"type:jsonb" json:"details"` // Serialized JSON payload of the action
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (a *RequestActivity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
