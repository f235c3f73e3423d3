package auth

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepository(t *testing.T) {
	dsn := os.Getenv("TEST_DSN")
	if dsn == "" {
		t.Skip("TEST_DSN not set, skipping Postgres test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil || pool.Ping(ctx) != nil {
		t.Skip("Postgres not available, skipping test")
	}
	defer pool.Close()

	repo := NewPostgresRepository(pool)
	require.NoError(t, repo.EnsureSchema(ctx))

	suffix := uuid.New().String()[:8]
	req := &NewUserRequest{Username: "brewer-" + suffix, Email: "brewer-" + suffix + "@example.com", Password: "cascade-42"}
	t.Cleanup(func() {
		pool.Exec(context.Background(), `DELETE FROM users WHERE username = $1`, req.Username)
	})

	user, err := repo.CreateUser(ctx, req)
	require.NoError(t, err)
	assert.False(t, user.CreatedAt.IsZero())

	_, err = repo.CreateUser(ctx, req)
	assert.ErrorIs(t, err, ErrUserExists)

	got, err := repo.AuthenticateUser(ctx, &UserLoginCredentials{Username: req.Username, Password: req.Password})
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = repo.AuthenticateUser(ctx, &UserLoginCredentials{Username: req.Username, Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = repo.GetUserInfo(ctx, "missing-"+suffix)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
