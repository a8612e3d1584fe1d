package domain

import (
	"errors"
	"fmt"
	"time"
)

// User represents a system user
type User struct {
	ID             string
	Username       string
	FirstName      string
	LastName       string
	HashedPassword string
	Role           Role
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Role represents a user's access level
type Role string

const (
	// RoleUser owns at most one account and sees only their own data
	RoleUser Role = "user"

	// RoleAdmin can read every user, account and transaction and promote users
	RoleAdmin Role = "admin"
)

// Valid roles
var validRoles = map[Role]bool{
	RoleUser:  true,
	RoleAdmin: true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanViewAll checks if the role can read resources owned by other users
func (r Role) CanViewAll() bool {
	return r == RoleAdmin
}

// CanPromote checks if the role can grant admin to other users
func (r Role) CanPromote() bool {
	return r == RoleAdmin
}

// ParseRole converts a stored or token-carried role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// Authentication errors
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrAdminAlreadyExists = fmt.Errorf("an admin already exists: %w", ErrForbidden)
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
)
