package service

import (
	"context"
	"encoding/json"
	"testing"

	"warehouse-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserService() (*UserService, *memStore) {
	repo := newMemStore()
	svc := NewUserService(repo)
	svc.hashCost = bcrypt.MinCost
	return svc, repo
}

func TestCreateUserHashesPassword(t *testing.T) {
	svc, repo := newUserService()

	user, err := svc.CreateUser(context.Background(), &CreateUserRequest{
		Name: "Ada", Email: "ada@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	stored := repo.users[user.ID]
	assert.NotEqual(t, "correct-horse", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct-horse")))
	assert.Equal(t, models.UserRoleStaff, user.Role)
	assert.Equal(t, models.UserStatusActive, user.Status)

	body, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "password")
	assert.NotContains(t, string(body), stored.PasswordHash)
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, &CreateUserRequest{Name: "Ada", Email: "not-an-email", Password: "correct-horse"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.CreateUser(ctx, &CreateUserRequest{Name: "Ada", Email: "ada@example.com", Password: "short"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, &CreateUserRequest{Name: "Ada", Email: "ada@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, &CreateUserRequest{Name: "Other", Email: "ada@example.com", Password: "battery-staple"})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestUpdateUserPassword(t *testing.T) {
	svc, repo := newUserService()
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, &CreateUserRequest{Name: "Ada", Email: "ada@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	oldHash := repo.users[user.ID].PasswordHash

	updated, err := svc.UpdateUser(ctx, user.ID, &UpdateUserRequest{Role: "Manager"})
	require.NoError(t, err)
	assert.Equal(t, "Manager", updated.Role)
	assert.Equal(t, oldHash, repo.users[user.ID].PasswordHash)

	_, err = svc.UpdateUser(ctx, user.ID, &UpdateUserRequest{Password: "battery-staple"})
	require.NoError(t, err)
	newHash := repo.users[user.ID].PasswordHash
	assert.NotEqual(t, oldHash, newHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(newHash), []byte("battery-staple")))

	_, err = svc.UpdateUser(ctx, 99, &UpdateUserRequest{Name: "Ghost"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}
