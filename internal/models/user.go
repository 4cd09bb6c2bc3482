package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lib/pq"
)

// Roles assignable to a user.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

type User struct {
	ID           string        `db:"id" json:"id"`
	Username     string        `db:"username" json:"username"`
	Email        string        `db:"email" json:"email"`
	FullName     string        `db:"full_name" json:"fullName"`
	PasswordHash string        `db:"password_hash" json:"-"`
	Role         string        `db:"role" json:"role"`
	AssignedVMs  pq.Int64Array `db:"assigned_vms" json:"assignedVMs"`
	CreatedAt    time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Claims defines the structure of the JWT claims. Role and assigned VMs are
// deliberately absent: both are re-read from the user store on every request
// so that admin edits take effect before the token expires.
type Claims struct {
	UserID   string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
