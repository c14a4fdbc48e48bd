package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles. Stored as text in the users table and embedded (as a
// snapshot) in access-token claims.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is a platform account. Password always holds the bcrypt hash,
// never the plaintext, and is excluded from every JSON response.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
