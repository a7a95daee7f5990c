package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Well-known field keys validated by the request engine. Extra keys may appear
// in a FieldConfig but are opaque pass-through metadata for the presentation layer.
const (
	FieldTitle            = "title"
	FieldDescription      = "description"
	FieldAmount           = "amount"
	FieldEffectiveDate    = "effectiveDate"
	FieldBeneficiaryName  = "beneficiaryName"
	FieldBeneficiaryPhone = "beneficiaryPhone"
	FieldContactID        = "contactId"
	FieldGroupID          = "groupId"
)

// WellKnownFieldKeys lists every key that must be present in a FieldConfig.
var WellKnownFieldKeys = []string{
	FieldTitle,
	FieldDescription,
	FieldAmount,
	FieldEffectiveDate,
	FieldBeneficiaryName,
	FieldBeneficiaryPhone,
	FieldContactID,
	FieldGroupID,
}

// FieldSetting describes one logical form field of a request type.
type FieldSetting struct {
	Enabled  bool   `json:"enabled"`
	Required bool   `json:"required"`
	Label    string `json:"label"`
}

// FieldConfig maps field keys to their settings. Stored as a single JSONB column
// on the owning RequestType; every RequestType holds its own copy, never a shared one.
type FieldConfig map[string]FieldSetting

// Value implements driver.Valuer so gorm can persist the config as JSONB.
func (fc FieldConfig) Value() (driver.Value, error) {
	if fc == nil {
		fc = FieldConfig{}
	}
	b, err := json.Marshal(fc)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (fc *FieldConfig) Scan(value interface{}) error {
	if value == nil {
		*fc = FieldConfig{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for FieldConfig scan")
	}
	return json.Unmarshal(data, fc)
}

// GormDataType tells gorm which column type to use for migrations.
func (FieldConfig) GormDataType() string {
	return "jsonb"
}

// Clone returns an independent copy of the config.
func (fc FieldConfig) Clone() FieldConfig {
	out := make(FieldConfig, len(fc))
	for k, v := range fc {
		out[k] = v
	}
	return out
}

// Normalize ensures every well-known key is present, filling absent ones as
// disabled/optional. The input is not modified.
func (fc FieldConfig) Normalize() FieldConfig {
	out := fc.Clone()
	for _, key := range WellKnownFieldKeys {
		if _, ok := out[key]; !ok {
			out[key] = FieldSetting{Enabled: false, Required: false}
		}
	}
	return out
}

// Merge applies a patch with only-present-keys-change semantics: keys in the
// patch overwrite, a nil entry clears an extra key, and all other keys survive
// untouched. Well-known keys cannot be cleared, only overwritten.
func (fc FieldConfig) Merge(patch map[string]*FieldSetting) (FieldConfig, error) {
	out := fc.Clone()
	for key, setting := range patch {
		if setting == nil {
			if isWellKnownField(key) {
				return nil, fmt.Errorf("field %q is built-in and cannot be removed", key)
			}
			delete(out, key)
			continue
		}
		out[key] = *setting
	}
	return out.Normalize(), nil
}

// Setting returns the setting for a key, treating unknown keys as disabled.
func (fc FieldConfig) Setting(key string) FieldSetting {
	if s, ok := fc[key]; ok {
		return s
	}
	return FieldSetting{}
}

func isWellKnownField(key string) bool {
	for _, k := range WellKnownFieldKeys {
		if k == key {
			return true
		}
	}
	return false
}
