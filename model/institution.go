package model

import (
	"time"
)

// Institution represents a tenant. Every roster record carries its
// InstitutionID and the domain is globally unique.
type Institution struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `gorm:"not null" json:"name"`
	Email       string    `gorm:"not null" json:"email"`
	Address     string    `gorm:"not null" json:"address"`
	Domain      string    `gorm:"uniqueIndex;not null" json:"domain"` // lowercase, [a-z0-9.-]+
	CreatedByID uint      `json:"created_by_id"`

	// Relationships
	CreatedBy *User `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}
