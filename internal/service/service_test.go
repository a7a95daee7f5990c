package service

import (
	"context"
	"testing"

	"paydesk/internal/database"
	"paydesk/internal/filestore"
	"paydesk/internal/model"
	"paydesk/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// fixture wires the full service stack against an in-memory database so each
// test exercises the real transaction and repository paths.
type fixture struct {
	db             *gorm.DB
	files          *filestore.MemoryStore
	types          RequestTypeService
	classification ClassificationService
	requests       RequestService
	activities     ActivityService
	activityRepo   repository.ActivityRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := setupTestDB(t)
	txm := repository.NewTransactionManager(db)
	typeRepo := repository.NewRequestTypeRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	subGroupRepo := repository.NewSubGroupRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	files := filestore.NewMemoryStore()

	return &fixture{
		db:             db,
		files:          files,
		types:          NewRequestTypeService(typeRepo, txm),
		classification: NewClassificationService(groupRepo, subGroupRepo, typeRepo, txm),
		requests:       NewRequestService(requestRepo, typeRepo, groupRepo, subGroupRepo, activityRepo, files, txm),
		activities:     NewActivityService(activityRepo, requestRepo),
		activityRepo:   activityRepo,
	}
}

func (f *fixture) seedUser(t *testing.T, role string) *model.User {
	t.Helper()

	user := &model.User{
		Username: "user-" + uuid.NewString()[:8],
		Email:    uuid.NewString()[:8] + "@example.com",
		Phone:    "0912000000",
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

// seedType creates a request type whose config enables title (required),
// amount and groupId (optional) and leaves the remaining well-known fields
// disabled.
func (f *fixture) seedType(t *testing.T, actorID uuid.UUID) RequestTypeResponse {
	t.Helper()

	rt, err := f.types.Create(context.Background(), CreateRequestTypeDTO{
		Name: "type-" + uuid.NewString()[:8],
		FieldConfig: map[string]model.FieldSetting{
			model.FieldTitle:   {Enabled: true, Required: true, Label: "عنوان"},
			model.FieldAmount:  {Enabled: true, Required: false, Label: "مبلغ"},
			model.FieldGroupID: {Enabled: true, Required: false, Label: "گروه"},
		},
	}, actorID)
	require.NoError(t, err)
	return rt
}
