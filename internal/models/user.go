package models

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
)

type User struct {
	ID        uuid.UUID `db:"id"`
	ClerkID   string    `db:"clerk_id"` // external identity provider subject
	Email     string    `db:"email"`
	Password  string    `db:"password"` // bcrypt hash, empty for webhook-synced users
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Role      UserRole  `db:"role"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
