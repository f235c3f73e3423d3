package auth

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var (
	// Email validation regex - standard email format
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	passwordCost = 12
)

type AuthRepository interface {
	CreateUser(ctx context.Context, req *NewUserRequest) (*User, error)
	AuthenticateUser(ctx context.Context, credentials *UserLoginCredentials) (*User, error)
	GetUserInfo(ctx context.Context, username string) (*User, error)
}

// NewAuthRepository returns a Postgres repository, or an in-memory one
// when there is no connection
func NewAuthRepository(conn *pgxpool.Pool) AuthRepository {
	if conn == nil {
		return NewMemoryRepository()
	}
	return NewPostgresRepository(conn)
}

// ValidateNewUser checks a registration request
func ValidateNewUser(req *NewUserRequest) error {
	if strings.TrimSpace(req.Username) == "" {
		return fmt.Errorf("%w: username is required", ErrValidation)
	}
	if strings.TrimSpace(req.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if !emailRegex.MatchString(req.Email) {
		return fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	if len(req.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
