package service

import (
	"context"
	"testing"

	"paydesk/internal/apperr"
	"paydesk/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFullRequestLifecycle walks one request through the whole workflow:
// type setup, submission, approval, payment, completion and the final freeze,
// verifying the ledger mirrors every step.
func TestFullRequestLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.seedUser(t, model.RoleAdmin)
	manager := f.seedUser(t, model.RoleFinancialManager)
	staff := f.seedUser(t, model.RoleStaff)

	rt, err := f.types.Create(ctx, CreateRequestTypeDTO{
		Name:        "پرداخت هزینه",
		Description: "expense payments",
		FieldConfig: map[string]model.FieldSetting{
			model.FieldTitle:            {Enabled: true, Required: true, Label: "عنوان"},
			model.FieldAmount:           {Enabled: true, Required: true, Label: "مبلغ"},
			model.FieldBeneficiaryName:  {Enabled: true, Required: false, Label: "نام ذینفع"},
			model.FieldBeneficiaryPhone: {Enabled: true, Required: false, Label: "تلفن ذینفع"},
			model.FieldGroupID:          {Enabled: true, Required: false, Label: "گروه"},
		},
	}, admin.ID)
	require.NoError(t, err)
	rtID := uuid.MustParse(rt.ID)

	group, err := f.classification.CreateGroup(ctx, CreateGroupDTO{
		Name:          "جاری",
		RequestTypeID: rtID,
	}, admin.ID)
	require.NoError(t, err)
	groupID := uuid.MustParse(group.ID)

	amount := decimal.NewFromInt(42000000)
	req, err := f.requests.Create(ctx, CreateRequestDTO{
		RequestTypeID:    rtID,
		Title:            "پرداخت اجاره دفتر",
		Amount:           &amount,
		BeneficiaryName:  "شرکت املاک",
		BeneficiaryPhone: "09121234567",
		GroupID:          &groupID,
	}, staff.ID)
	require.NoError(t, err)
	reqID := uuid.MustParse(req.ID)
	assert.Equal(t, model.StatusPending, req.Status)

	transitions := []string{model.StatusApproved, model.StatusPaid, model.StatusCompleted}
	for _, status := range transitions {
		req, err = f.requests.ChangeStatus(ctx, reqID, ChangeStatusDTO{Status: status}, manager.ID, model.RoleFinancialManager)
		require.NoError(t, err)
		assert.Equal(t, status, req.Status)
	}

	// Completed is terminal; nothing moves anymore, even for the manager.
	_, err = f.requests.ChangeStatus(ctx, reqID, ChangeStatusDTO{Status: model.StatusCanceled}, manager.ID, model.RoleFinancialManager)
	var notEditable *apperr.NotEditableError
	require.ErrorAs(t, err, &notEditable)

	// One CREATE plus three STATUS_CHANGE entries, newest first.
	entries, err := f.activities.ListActivities(ctx, reqID)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, model.ActionStatusChange, entries[0].Action)
	assert.Equal(t, model.ActionStatusChange, entries[1].Action)
	assert.Equal(t, model.ActionStatusChange, entries[2].Action)
	assert.Equal(t, model.ActionCreate, entries[3].Action)

	// The in-use type cannot be deleted while the request references it.
	err = f.types.Delete(ctx, rtID)
	var conflict *apperr.ConflictError
	require.ErrorAs(t, err, &conflict)

	// The referenced group survives deletion as an inactive node.
	result, err := f.classification.DeleteGroup(ctx, groupID)
	require.NoError(t, err)
	assert.True(t, result.SoftDeleted)

	got, err := f.requests.Get(ctx, reqID, staff.ID, model.RoleStaff)
	require.NoError(t, err)
	require.NotNil(t, got.GroupID)
	assert.Equal(t, group.ID, *got.GroupID)
}
