package model

import (
	"time"
)

// Teacher is a roster record scoped to one institution. A teacher may
// only be assigned to courses of the same institution.
type Teacher struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Name          string    `gorm:"not null" json:"name"`
	Email         string    `gorm:"uniqueIndex;not null" json:"email"`
	InstitutionID uint      `gorm:"not null;index" json:"institution_id"`

	// Relationships
	AssignedCourses []Course `gorm:"foreignKey:TeacherID" json:"assigned_courses"`
}
