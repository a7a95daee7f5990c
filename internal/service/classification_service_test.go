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

func TestCreateGroupUnknownType(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, model.RoleAdmin)

	_, err := f.classification.CreateGroup(context.Background(), CreateGroupDTO{
		Name:          "orphan",
		RequestTypeID: uuid.New(),
	}, admin.ID)
	var notFound *apperr.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "request type", notFound.Entity)
}

func TestDeleteGroupWithSubGroupsSoftDeletes(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, model.RoleAdmin)
	rt := f.seedType(t, admin.ID)

	group, err := f.classification.CreateGroup(context.Background(), CreateGroupDTO{
		Name:          "operations",
		RequestTypeID: uuid.MustParse(rt.ID),
	}, admin.ID)
	require.NoError(t, err)

	_, err = f.classification.CreateSubGroup(context.Background(), CreateSubGroupDTO{
		Name:    "field-ops",
		GroupID: uuid.MustParse(group.ID),
	}, admin.ID)
	require.NoError(t, err)

	result, err := f.classification.DeleteGroup(context.Background(), uuid.MustParse(group.ID))
	require.NoError(t, err)
	assert.True(t, result.SoftDeleted)

	// A soft-deleted group stays resolvable but leaves active listings.
	var stored model.RequestGroup
	require.NoError(t, f.db.First(&stored, "id = ?", group.ID).Error)
	assert.False(t, stored.IsActive)

	active, err := f.classification.ListActiveGroups(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestDeleteGroupWithoutDependentsHardDeletes(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, model.RoleAdmin)
	rt := f.seedType(t, admin.ID)

	group, err := f.classification.CreateGroup(context.Background(), CreateGroupDTO{
		Name:          "ephemeral",
		RequestTypeID: uuid.MustParse(rt.ID),
	}, admin.ID)
	require.NoError(t, err)

	result, err := f.classification.DeleteGroup(context.Background(), uuid.MustParse(group.ID))
	require.NoError(t, err)
	assert.False(t, result.SoftDeleted)

	var count int64
	require.NoError(t, f.db.Model(&model.RequestGroup{}).Where("id = ?", group.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestDeleteGroupReferencedByRequestSoftDeletes(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, model.RoleAdmin)
	rt := f.seedType(t, admin.ID)

	group, err := f.classification.CreateGroup(context.Background(), CreateGroupDTO{
		Name:          "referenced",
		RequestTypeID: uuid.MustParse(rt.ID),
	}, admin.ID)
	require.NoError(t, err)

	groupID := uuid.MustParse(group.ID)
	_, err = f.requests.Create(context.Background(), CreateRequestDTO{
		RequestTypeID: uuid.MustParse(rt.ID),
		Title:         "grouped request",
		GroupID:       &groupID,
	}, admin.ID)
	require.NoError(t, err)

	result, err := f.classification.DeleteGroup(context.Background(), groupID)
	require.NoError(t, err)
	assert.True(t, result.SoftDeleted)
}

func TestCreateSubGroupUnknownParent(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, model.RoleAdmin)

	_, err := f.classification.CreateSubGroup(context.Background(), CreateSubGroupDTO{
		Name:    "dangling",
		GroupID: uuid.New(),
	}, admin.ID)
	var notFound *apperr.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "request group", notFound.Entity)
}

func TestUpdateGroupReparentValidatesNewType(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, model.RoleAdmin)
	rt := f.seedType(t, admin.ID)

	group, err := f.classification.CreateGroup(context.Background(), CreateGroupDTO{
		Name:          "movable",
		RequestTypeID: uuid.MustParse(rt.ID),
	}, admin.ID)
	require.NoError(t, err)

	missing := uuid.New()
	_, err = f.classification.UpdateGroup(context.Background(), uuid.MustParse(group.ID), UpdateGroupDTO{
		RequestTypeID: &missing,
	})
	var notFound *apperr.NotFoundError
	require.ErrorAs(t, err, &notFound)

	other := f.seedType(t, admin.ID)
	otherID := uuid.MustParse(other.ID)
	updated, err := f.classification.UpdateGroup(context.Background(), uuid.MustParse(group.ID), UpdateGroupDTO{
		RequestTypeID: &otherID,
	})
	require.NoError(t, err)
	assert.Equal(t, other.ID, updated.RequestTypeID)
}

func TestListActiveGroupsFiltersByType(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, model.RoleAdmin)
	first := f.seedType(t, admin.ID)
	second := f.seedType(t, admin.ID)

	_, err := f.classification.CreateGroup(context.Background(), CreateGroupDTO{
		Name:          "alpha",
		RequestTypeID: uuid.MustParse(first.ID),
	}, admin.ID)
	require.NoError(t, err)
	_, err = f.classification.CreateGroup(context.Background(), CreateGroupDTO{
		Name:          "beta",
		RequestTypeID: uuid.MustParse(second.ID),
	}, admin.ID)
	require.NoError(t, err)

	firstID := uuid.MustParse(first.ID)
	groups, err := f.classification.ListActiveGroups(context.Background(), &firstID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "alpha", groups[0].Name)

	all, err := f.classification.ListActiveGroups(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeleteSubGroupPolicy(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, model.RoleAdmin)
	rt := f.seedType(t, admin.ID)

	group, err := f.classification.CreateGroup(context.Background(), CreateGroupDTO{
		Name:          "parent",
		RequestTypeID: uuid.MustParse(rt.ID),
	}, admin.ID)
	require.NoError(t, err)

	sg, err := f.classification.CreateSubGroup(context.Background(), CreateSubGroupDTO{
		Name:    "child",
		GroupID: uuid.MustParse(group.ID),
	}, admin.ID)
	require.NoError(t, err)
	sgID := uuid.MustParse(sg.ID)

	// Referenced by a request: soft delete.
	_, err = f.requests.Create(context.Background(), CreateRequestDTO{
		RequestTypeID: uuid.MustParse(rt.ID),
		Title:         "classified",
		SubGroupID:    &sgID,
	}, admin.ID)
	require.NoError(t, err)

	result, err := f.classification.DeleteSubGroup(context.Background(), sgID)
	require.NoError(t, err)
	assert.True(t, result.SoftDeleted)

	// Unreferenced: hard delete.
	fresh, err := f.classification.CreateSubGroup(context.Background(), CreateSubGroupDTO{
		Name:    "empty",
		GroupID: uuid.MustParse(group.ID),
	}, admin.ID)
	require.NoError(t, err)

	result, err = f.classification.DeleteSubGroup(context.Background(), uuid.MustParse(fresh.ID))
	require.NoError(t, err)
	assert.False(t, result.SoftDeleted)
}
