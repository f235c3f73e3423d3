package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Compile-time interface checks.
var (
	_ AuthRepository = (*MemoryRepository)(nil)
	_ AuthRepository = (*PostgresRepository)(nil)
)

// MemoryRepository keeps users in process memory
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]User // by username
}

// NewMemoryRepository creates an empty repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]User)}
}

func (m *MemoryRepository) CreateUser(ctx context.Context, req *NewUserRequest) (*User, error) {
	if err := ValidateNewUser(req); err != nil {
		return nil, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == req.Username || strings.EqualFold(u.Email, req.Email) {
			return nil, ErrUserExists
		}
	}

	user := User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	m.users[user.Username] = user
	return &user, nil
}

func (m *MemoryRepository) AuthenticateUser(ctx context.Context, cred *UserLoginCredentials) (*User, error) {
	m.mu.RLock()
	user, ok := m.users[cred.Username]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := checkPassword(user.PasswordHash, cred.Password); err != nil {
		return nil, err
	}
	return &user, nil
}

func (m *MemoryRepository) GetUserInfo(ctx context.Context, username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}
