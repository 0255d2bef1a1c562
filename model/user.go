package model

import (
	"time"
)

// Roles a user account can hold. There is at most one superadmin
// system-wide; institution admins are scoped to their InstitutionID.
const (
	RoleSuperadmin       = "superadmin"
	RoleInstitutionAdmin = "institution_admin"
)

// User represents an administrator account (superadmin or institution admin)
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	FirstName    string    `gorm:"not null" json:"first_name"`
	LastName     string    `json:"last_name"`
	Username     string    `gorm:"not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"` // Never expose password in JSON
	Role         string    `gorm:"type:varchar(20);default:'institution_admin'" json:"role"`

	// InstitutionID is null until a superadmin binds the admin to a tenant.
	// Once set it scopes every roster query the admin makes.
	InstitutionID *uint `gorm:"index" json:"institution_id"`
	IsFirstLogin  bool  `gorm:"default:true" json:"is_first_login"`

	// Relationships
	Institution *Institution `gorm:"foreignKey:InstitutionID" json:"institution,omitempty"`
}

// IsSuperadmin reports whether the user holds the singleton superadmin role.
func (u *User) IsSuperadmin() bool {
	return u.Role == RoleSuperadmin
}
