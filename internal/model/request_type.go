package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestType is a named template controlling which fields a Request may or must
// carry. The field configuration is owned by value: creating a type copies the
// submitted config, it is never shared across types.
type RequestType struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string      `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	IsActive    bool        `gorm:"not null;default:true" json:"is_active"`
	FieldConfig FieldConfig `gorm:"type:jsonb;not null" json:"field_config"`
	CreatorID   *uuid.UUID  `gorm:"type:uuid;index" json:"creator_id"`
	Creator     *User       `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (rt *RequestType) BeforeCreate(tx *gorm.DB) error {
	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	return nil
}
