package service

import (
	"context"
	"testing"

	"paydesk/internal/apperr"
	"paydesk/internal/model"
	"paydesk/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(t *testing.T) (UserService, *fixture) {
	t.Helper()
	f := newFixture(t)
	return NewUserService(repository.NewUserRepository(f.db)), f
}

func TestCreateUserHashesPassword(t *testing.T) {
	users, f := newUserService(t)

	created, err := users.CreateUser(context.Background(), CreateUserRequest{
		Username: "sara",
		Email:    "sara@example.com",
		Phone:    "0912123456",
		Password: "secret123",
		Role:     model.RoleStaff,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleStaff, created.Role)

	var stored model.User
	require.NoError(t, f.db.First(&stored, "id = ?", created.ID).Error)
	assert.NotEqual(t, "secret123", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret123")))
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	users, _ := newUserService(t)

	_, err := users.CreateUser(context.Background(), CreateUserRequest{
		Username: "bad",
		Email:    "bad@example.com",
		Phone:    "0912123456",
		Password: "secret123",
		Role:     "superuser",
	})
	var validation *apperr.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	users, _ := newUserService(t)

	req := CreateUserRequest{
		Username: "reza",
		Email:    "reza@example.com",
		Phone:    "0912123456",
		Password: "secret123",
		Role:     model.RoleStaff,
	}
	_, err := users.CreateUser(context.Background(), req)
	require.NoError(t, err)

	req.Email = "reza2@example.com"
	_, err = users.CreateUser(context.Background(), req)
	var conflict *apperr.ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestLogin(t *testing.T) {
	users, _ := newUserService(t)

	_, err := users.CreateUser(context.Background(), CreateUserRequest{
		Username: "mina",
		Email:    "mina@example.com",
		Phone:    "0912123456",
		Password: "secret123",
		Role:     model.RoleFinancialManager,
	})
	require.NoError(t, err)

	token, err := users.Login(context.Background(), LoginUserRequest{
		Email:    "mina@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)

	_, err = users.Login(context.Background(), LoginUserRequest{
		Email:    "mina@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
}

func TestUpdateUserRoleValidation(t *testing.T) {
	users, _ := newUserService(t)

	created, err := users.CreateUser(context.Background(), CreateUserRequest{
		Username: "omid",
		Email:    "omid@example.com",
		Phone:    "0912123456",
		Password: "secret123",
		Role:     model.RoleStaff,
	})
	require.NoError(t, err)

	updated, err := users.UpdateUser(context.Background(), created.ID.String(), UpdateUserRequest{
		Role: model.RoleFinancialManager,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleFinancialManager, updated.Role)

	_, err = users.UpdateUser(context.Background(), created.ID.String(), UpdateUserRequest{
		Role: "root",
	})
	var validation *apperr.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestDeleteUserMissing(t *testing.T) {
	users, _ := newUserService(t)

	err := users.DeleteUser(context.Background(), "00000000-0000-0000-0000-000000000000")
	var notFound *apperr.NotFoundError
	require.ErrorAs(t, err, &notFound)
}
