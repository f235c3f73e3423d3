package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateNewUser(t *testing.T) {
	valid := NewUserRequest{Username: "hopfan", Email: "hopfan@example.com", Password: "cascade-42"}
	assert.NoError(t, ValidateNewUser(&valid))

	invalid := []NewUserRequest{
		{Username: " ", Email: "hopfan@example.com", Password: "cascade-42"},
		{Username: "hopfan", Email: "", Password: "cascade-42"},
		{Username: "hopfan", Email: "not-an-email", Password: "cascade-42"},
		{Username: "hopfan", Email: "hopfan@example.com", Password: "short"},
	}
	for _, req := range invalid {
		assert.ErrorIs(t, ValidateNewUser(&req), ErrValidation, "%+v", req)
	}
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	user, err := repo.CreateUser(ctx, &NewUserRequest{Username: "hopfan", Email: "hopfan@example.com", Password: "cascade-42"})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "cascade-42", user.PasswordHash)

	_, err = repo.CreateUser(ctx, &NewUserRequest{Username: "hopfan", Email: "other@example.com", Password: "cascade-42"})
	assert.ErrorIs(t, err, ErrUserExists)
	_, err = repo.CreateUser(ctx, &NewUserRequest{Username: "other", Email: "HOPFAN@example.com", Password: "cascade-42"})
	assert.ErrorIs(t, err, ErrUserExists)

	got, err := repo.AuthenticateUser(ctx, &UserLoginCredentials{Username: "hopfan", Password: "cascade-42"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = repo.AuthenticateUser(ctx, &UserLoginCredentials{Username: "hopfan", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = repo.AuthenticateUser(ctx, &UserLoginCredentials{Username: "nobody", Password: "cascade-42"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	info, err := repo.GetUserInfo(ctx, "hopfan")
	require.NoError(t, err)
	assert.Equal(t, "hopfan@example.com", info.Email)

	_, err = repo.GetUserInfo(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestNewAuthRepositoryWithoutConnection(t *testing.T) {
	_, ok := NewAuthRepository(nil).(*MemoryRepository)
	assert.True(t, ok)
}
