package repository

import (
	"context"
	"sync"
	"time"

	"github.com/campusops/ccrm-api/internal/models"
)

// UserRepository keeps API users and their refresh-token sessions in memory.
type UserRepository struct {
	mu      sync.RWMutex
	users   map[string]models.User
	byEmail map[string]string
	tokens  map[string]models.RefreshToken
}

// NewUserRepository constructs an empty UserRepository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[string]models.User),
		byEmail: make(map[string]string),
		tokens:  make(map[string]models.RefreshToken),
	}
}

// Save inserts a user, failing with ErrDuplicate on an ID or email collision.
func (r *UserRepository) Save(ctx context.Context, user models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.ID]; exists {
		return ErrDuplicate
	}
	if _, exists := r.byEmail[user.Email]; exists {
		return ErrDuplicate
	}
	r.users[user.ID] = user
	r.byEmail[user.Email] = user.ID
	return nil
}

// FindByEmail resolves a user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	user := r.users[id]
	return &user, nil
}

// FindByID resolves a user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

// UpdateLastLogin stamps the user's last successful login.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	user.LastLogin = &ts
	r.users[id] = user
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	user.PasswordHash = passwordHash
	r.users[id] = user
	return nil
}

// CreateRefreshToken stores an issued refresh token.
func (r *UserRepository) CreateRefreshToken(ctx context.Context, token models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.Token] = token
	return nil
}

// FindRefreshToken resolves a refresh token by its opaque value.
func (r *UserRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.tokens[token]
	if !ok {
		return nil, ErrNotFound
	}
	return &stored, nil
}

// RevokeRefreshToken marks the token revoked.
func (r *UserRepository) RevokeRefreshToken(ctx context.Context, token string, revokedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tokens[token]
	if !ok {
		return ErrNotFound
	}
	stored.Revoked = true
	stored.RevokedAt = &revokedAt
	r.tokens[token] = stored
	return nil
}

// RevokeUserRefreshTokens revokes every live token belonging to the user.
func (r *UserRepository) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for key, stored := range r.tokens {
		if stored.UserID == userID && !stored.Revoked {
			stored.Revoked = true
			stored.RevokedAt = &now
			r.tokens[key] = stored
		}
	}
	return nil
}
