package service

import (
	"context"
	"testing"

	"paydesk/internal/apperr"
	"paydesk/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRequestTypeNormalizesConfig(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, model.RoleAdmin)

	rt, err := f.types.Create(context.Background(), CreateRequestTypeDTO{
		Name: "hazine",
		FieldConfig: map[string]model.FieldSetting{
			model.FieldTitle: {Enabled: true, Required: true},
		},
	}, admin.ID)
	require.NoError(t, err)

	assert.True(t, rt.IsActive)
	for _, key := range model.WellKnownFieldKeys {
		_, ok := rt.FieldConfig[key]
		assert.True(t, ok, "expected key %q to be present after normalization", key)
	}
	assert.False(t, rt.FieldConfig[model.FieldAmount].Enabled)
	assert.True(t, rt.FieldConfig[model.FieldTitle].Required)
}

func TestCreateRequestTypeDuplicateName(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, model.RoleAdmin)

	_, err := f.types.Create(context.Background(), CreateRequestTypeDTO{Name: "payment"}, admin.ID)
	require.NoError(t, err)

	_, err = f.types.Create(context.Background(), CreateRequestTypeDTO{Name: "payment"}, admin.ID)
	var dup *apperr.DuplicateNameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "payment", dup.Name)
}

func TestCreateRequestTypeEmptyName(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, model.RoleAdmin)

	_, err := f.types.Create(context.Background(), CreateRequestTypeDTO{Name: ""}, admin.ID)
	var validation *apperr.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestUpdateRequestTypeMergePreservesExtraKeys(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, model.RoleAdmin)

	rt, err := f.types.Create(context.Background(), CreateRequestTypeDTO{
		Name: "with-extras",
		FieldConfig: map[string]model.FieldSetting{
			model.FieldTitle: {Enabled: true, Required: true},
			"costCenter":     {Enabled: true, Required: false, Label: "مرکز هزینه"},
		},
	}, admin.ID)
	require.NoError(t, err)

	// Patch only touches amount; the extra key must round-trip untouched.
	updated, err := f.types.Update(context.Background(), uuid.MustParse(rt.ID), UpdateRequestTypeDTO{
		FieldConfig: map[string]*model.FieldSetting{
			model.FieldAmount: {Enabled: true, Required: true},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, model.FieldSetting{Enabled: true, Required: false, Label: "مرکز هزینه"}, updated.FieldConfig["costCenter"])
	assert.True(t, updated.FieldConfig[model.FieldAmount].Required)
	assert.True(t, updated.FieldConfig[model.FieldTitle].Required)

	// Reload from storage to prove the persisted copy matches.
	reloaded, err := f.types.Get(context.Background(), uuid.MustParse(rt.ID))
	require.NoError(t, err)
	assert.Equal(t, updated.FieldConfig, reloaded.FieldConfig)
}

func TestUpdateRequestTypeCannotRemoveBuiltinField(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, model.RoleAdmin)
	rt := f.seedType(t, admin.ID)

	_, err := f.types.Update(context.Background(), uuid.MustParse(rt.ID), UpdateRequestTypeDTO{
		FieldConfig: map[string]*model.FieldSetting{
			model.FieldTitle: nil,
		},
	})
	var validation *apperr.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestUpdateRequestTypeRemoveExtraKey(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, model.RoleAdmin)

	rt, err := f.types.Create(context.Background(), CreateRequestTypeDTO{
		Name: "prunable",
		FieldConfig: map[string]model.FieldSetting{
			"legacyField": {Enabled: true},
		},
	}, admin.ID)
	require.NoError(t, err)

	updated, err := f.types.Update(context.Background(), uuid.MustParse(rt.ID), UpdateRequestTypeDTO{
		FieldConfig: map[string]*model.FieldSetting{
			"legacyField": nil,
		},
	})
	require.NoError(t, err)
	_, ok := updated.FieldConfig["legacyField"]
	assert.False(t, ok)
}

func TestUpdateRequestTypeRenameToExistingName(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, model.RoleAdmin)

	_, err := f.types.Create(context.Background(), CreateRequestTypeDTO{Name: "first"}, admin.ID)
	require.NoError(t, err)
	second, err := f.types.Create(context.Background(), CreateRequestTypeDTO{Name: "second"}, admin.ID)
	require.NoError(t, err)

	name := "first"
	_, err = f.types.Update(context.Background(), uuid.MustParse(second.ID), UpdateRequestTypeDTO{Name: &name})
	var dup *apperr.DuplicateNameError
	require.ErrorAs(t, err, &dup)
}

func TestDeleteRequestTypeInUse(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, model.RoleAdmin)
	rt := f.seedType(t, admin.ID)

	_, err := f.requests.Create(context.Background(), CreateRequestDTO{
		RequestTypeID: uuid.MustParse(rt.ID),
		Title:         "pending payment",
	}, admin.ID)
	require.NoError(t, err)

	err = f.types.Delete(context.Background(), uuid.MustParse(rt.ID))
	var conflict *apperr.ConflictError
	require.ErrorAs(t, err, &conflict)

	// The type must survive the failed delete.
	_, err = f.types.Get(context.Background(), uuid.MustParse(rt.ID))
	require.NoError(t, err)
}

func TestDeleteRequestTypeUnused(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, model.RoleAdmin)
	rt := f.seedType(t, admin.ID)

	require.NoError(t, f.types.Delete(context.Background(), uuid.MustParse(rt.ID)))

	_, err := f.types.Get(context.Background(), uuid.MustParse(rt.ID))
	var notFound *apperr.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestListRequestTypesActiveOnly(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, model.RoleAdmin)

	active, err := f.types.Create(context.Background(), CreateRequestTypeDTO{Name: "active-one"}, admin.ID)
	require.NoError(t, err)
	inactive, err := f.types.Create(context.Background(), CreateRequestTypeDTO{Name: "inactive-one"}, admin.ID)
	require.NoError(t, err)

	off := false
	_, err = f.types.Update(context.Background(), uuid.MustParse(inactive.ID), UpdateRequestTypeDTO{IsActive: &off})
	require.NoError(t, err)

	all, total, err := f.types.List(context.Background(), false, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	activeOnly, total, err := f.types.List(context.Background(), true, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, activeOnly, 1)
	assert.Equal(t, active.ID, activeOnly[0].ID)
}
