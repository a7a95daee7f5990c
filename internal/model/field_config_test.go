package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldConfigNormalizeFillsMissingKeys(t *testing.T) {
	fc := FieldConfig{
		FieldTitle: {Enabled: true, Required: true},
	}

	normalized := fc.Normalize()

	assert.Len(t, normalized, len(WellKnownFieldKeys))
	assert.Equal(t, FieldSetting{Enabled: true, Required: true}, normalized[FieldTitle])
	assert.Equal(t, FieldSetting{}, normalized[FieldAmount])

	// The source must stay untouched.
	assert.Len(t, fc, 1)
}

func TestFieldConfigMergePatchSemantics(t *testing.T) {
	base := FieldConfig{
		FieldTitle:  {Enabled: true, Required: true, Label: "Title"},
		FieldAmount: {Enabled: true},
		"extra":     {Enabled: true, Label: "Extra"},
	}.Normalize()

	merged, err := base.Merge(map[string]*FieldSetting{
		FieldAmount: {Enabled: true, Required: true},
		"extra":     nil,
	})
	require.NoError(t, err)

	assert.True(t, merged[FieldAmount].Required)
	assert.Equal(t, base[FieldTitle], merged[FieldTitle])
	_, ok := merged["extra"]
	assert.False(t, ok)

	// Merge returns a copy; the receiver keeps its extra key.
	_, ok = base["extra"]
	assert.True(t, ok)
}

func TestFieldConfigMergeRejectsBuiltinRemoval(t *testing.T) {
	base := FieldConfig{}.Normalize()

	_, err := base.Merge(map[string]*FieldSetting{
		FieldBeneficiaryPhone: nil,
	})
	require.Error(t, err)
}

func TestFieldConfigScanValueRoundTrip(t *testing.T) {
	original := FieldConfig{
		FieldTitle: {Enabled: true, Required: true, Label: "عنوان"},
		"budget":   {Enabled: true, Label: "بودجه"},
	}

	value, err := original.Value()
	require.NoError(t, err)

	var scanned FieldConfig
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, original, scanned)
}

func TestFieldConfigSettingUnknownKeyIsDisabled(t *testing.T) {
	fc := FieldConfig{}
	setting := fc.Setting("nonexistent")
	assert.False(t, setting.Enabled)
	assert.False(t, setting.Required)
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalStatus(StatusCompleted))
	assert.True(t, IsTerminalStatus(StatusCanceled))
	assert.False(t, IsTerminalStatus(StatusPending))
	assert.False(t, IsTerminalStatus(StatusPaid))
	assert.False(t, IsTerminalStatus(StatusRejected))
}
