package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User roles.
const (
	RoleUser    = "user"
	RoleAdmin   = "admin"
	RoleService = "service"
)

// InternalUser is a user account stored in the internal store.
// PasswordHash is a bcrypt hash; it is never serialized to API responses.
type InternalUser struct {
	UserID       string    `json:"user_id" badgerhold:"key"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SetPassword hashes and stores the given plaintext password.
func (u *InternalUser) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// VerifyPassword reports whether the plaintext password matches the stored hash.
func (u *InternalUser) VerifyPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

// SystemKeyValue is a system-level configuration entry (non user-scoped).
type SystemKeyValue struct {
	Key      string    `json:"key" badgerhold:"key"`
	Value    string    `json:"value"`
	DateTime time.Time `json:"datetime"`
}
