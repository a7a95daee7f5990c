package database

import (
	"testing"

	"paydesk/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSeedRBACIdempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	require.NoError(t, SeedRBAC(db))
	require.NoError(t, SeedRBAC(db))

	var roles, permissions int64
	require.NoError(t, db.Model(&model.Role{}).Count(&roles).Error)
	require.NoError(t, db.Model(&model.Permission{}).Count(&permissions).Error)
	assert.EqualValues(t, 3, roles)
	assert.EqualValues(t, 5, permissions)

	var admin model.Role
	require.NoError(t, db.Preload("Permissions").First(&admin, "name = ?", model.RoleAdmin).Error)
	assert.True(t, admin.IsSystem)
	assert.Len(t, admin.Permissions, 5)
}
