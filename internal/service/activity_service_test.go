package service

import (
	"context"
	"encoding/json"
	"testing"

	"paydesk/internal/apperr"
	"paydesk/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogActivityUnknownRequest(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, model.RoleStaff)

	err := f.activities.LogActivity(context.Background(), uuid.New(), user.ID, model.ActionUpdate, nil)
	var notFound *apperr.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestListActivitiesResolvesUserAndOrder(t *testing.T) {
	f := newFixture(t)
	staff := f.seedUser(t, model.RoleStaff)
	rt := f.seedType(t, staff.ID)

	req, err := f.requests.Create(context.Background(), CreateRequestDTO{
		RequestTypeID: uuid.MustParse(rt.ID),
		Title:         "traceable",
	}, staff.ID)
	require.NoError(t, err)
	reqID := uuid.MustParse(req.ID)

	require.NoError(t, f.activities.LogActivity(context.Background(), reqID, staff.ID, model.ActionUpdate, map[string]interface{}{
		"note": "manual entry",
	}))

	entries, err := f.activities.ListActivities(context.Background(), reqID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, model.ActionUpdate, entries[0].Action)
	assert.Equal(t, model.ActionCreate, entries[1].Action)
	assert.Equal(t, staff.Username, entries[0].UserName)

	var details map[string]string
	require.NoError(t, json.Unmarshal(entries[0].Details, &details))
	assert.Equal(t, "manual entry", details["note"])
}
