package database

import (
	log "github.com/sirupsen/logrus"

	"paydesk/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM.
// TranslateError is enabled so unique-index violations surface as
// gorm.ErrDuplicatedKey and can be mapped to the domain error kinds.
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		log.WithError(err).Warn("Failed to auto-migrate models")
	}
	if err := SeedRBAC(db); err != nil {
		log.WithError(err).Warn("Failed to seed role catalog")
	}

	return db, nil
}

// SeedRBAC ensures the built-in roles and their permission catalog exist.
// Idempotent; existing rows are left untouched so admins can adjust them.
func SeedRBAC(db *gorm.DB) error {
	permissions := []model.Permission{
		{Code: "request_types.manage", Name: "Manage request types", Group: "request_types"},
		{Code: "classification.manage", Name: "Manage groups and subgroups", Group: "classification"},
		{Code: "requests.view_all", Name: "View all requests", Group: "requests"},
		{Code: "requests.change_status", Name: "Change request status", Group: "requests"},
		{Code: "users.manage", Name: "Manage users", Group: "users"},
	}
	for i := range permissions {
		if err := db.Where("code = ?", permissions[i].Code).FirstOrCreate(&permissions[i]).Error; err != nil {
			return err
		}
	}

	byCode := func(codes ...string) []model.Permission {
		var out []model.Permission
		for _, code := range codes {
			for _, p := range permissions {
				if p.Code == code {
					out = append(out, p)
				}
			}
		}
		return out
	}

	roles := []model.Role{
		{
			Name:        model.RoleAdmin,
			Description: "Full access to every surface",
			IsSystem:    true,
			Permissions: permissions,
		},
		{
			Name:        model.RoleFinancialManager,
			Description: "Manages types, classification and request statuses",
			IsSystem:    true,
			Permissions: byCode("request_types.manage", "classification.manage", "requests.view_all", "requests.change_status"),
		},
		{
			Name:        model.RoleStaff,
			Description: "Submits and tracks own requests",
			IsSystem:    true,
		},
	}
	for i := range roles {
		if err := db.Where("name = ?", roles[i].Name).FirstOrCreate(&roles[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Migrate runs AutoMigrate for every core model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Role{},
		&model.Permission{},
		&model.RequestType{},
		&model.RequestGroup{},
		&model.RequestSubGroup{},
		&model.Request{},
		&model.RequestAttachment{},
		&model.RequestActivity{},
	)
}
