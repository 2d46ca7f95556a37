package model

import (
	"time"

	"github.com/google/uuid"
)

// Role values. ADMIN is never assignable through registration.
const (
	RoleBuyer   = "BUYER"
	RoleArtisan = "ARTISAN"
	RoleAdmin   = "ADMIN"
)

// Actor is the authenticated identity passed into every service operation,
// resolved upstream from the bearer token.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// IsAdmin reports whether the actor carries the ADMIN role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// User stores marketplace accounts with role-based access.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string    `gorm:"not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Role         string    `gorm:"type:varchar(20);not null;default:'BUYER'"`
	Bio          *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
