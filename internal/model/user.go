package model

import (
	"strings"
	"time"
)

// User represents an account as stored in the `users` table. Every user
// holds exactly one Role; the role-specific data lives in the matching
// profile table (performers, casting_directors, production_managers).
//
// Fields:
//
//	Key          – primary key; New until the row is inserted.
//	Email        – unique, stored lower-cased.
//	PasswordHash – bcrypt hash, never rendered.
//	RegisteredAt – set on insert when zero.
type User struct {
	Key          Key       `json:"id"`            // users.id
	FirstName    string    `json:"first_name"`    // users.first_name
	LastName     string    `json:"last_name"`     // users.last_name
	Email        string    `json:"email"`         // users.email
	Phone        string    `json:"phone"`         // users.phone
	PasswordHash string    `json:"-"`             // users.password_hash
	Role         Role      `json:"role"`          // users.role
	RegisteredAt time.Time `json:"registered_at"` // users.registered_at
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
