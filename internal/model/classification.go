package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestGroup buckets requests under a RequestType for reporting and filtering.
// Groups referenced by subgroups or requests are never hard-deleted; they are
// deactivated so historical records stay resolvable.
type RequestGroup struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string       `gorm:"type:varchar(255);not null" json:"name"`
	Description   string       `gorm:"type:text" json:"description"`
	RequestTypeID uuid.UUID    `gorm:"type:uuid;not null;index" json:"request_type_id"`
	RequestType   *RequestType `gorm:"foreignKey:RequestTypeID" json:"request_type,omitempty"`
	IsActive      bool         `gorm:"not null;default:true" json:"is_active"`
	CreatorID     *uuid.UUID   `gorm:"type:uuid" json:"creator_id"`
	CreatedAt     time.Time    `json:"created_at"`
}

func (g *RequestGroup) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// RequestSubGroup is the second classification level, scoped to one RequestGroup.
// Same deactivate-instead-of-delete policy as RequestGroup.
type RequestSubGroup struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string        `gorm:"type:varchar(255);not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	GroupID     uuid.UUID     `gorm:"type:uuid;not null;index" json:"group_id"`
	Group       *RequestGroup `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	IsActive    bool          `gorm:"not null;default:true" json:"is_active"`
	CreatorID   *uuid.UUID    `gorm:"type:uuid" json:"creator_id"`
	CreatedAt   time.Time     `json:"created_at"`
}

func (sg *RequestSubGroup) BeforeCreate(tx *gorm.DB) error {
	if sg.ID == uuid.Nil {
		sg.ID = uuid.New()
	}
	return nil
}
