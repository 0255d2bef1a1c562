package model

import (
	"time"
)

// Course belongs to exactly one institution and has at most one teacher.
// TeacherID is the single source of truth for the course/teacher edge;
// Teacher.AssignedCourses is a view over it, so the two can never drift.
type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`

	TeacherID     *uint `gorm:"index" json:"teacher_id"`
	InstitutionID uint  `gorm:"not null;index" json:"institution_id"`
	CreatedByID   uint  `json:"created_by_id"`

	// Relationships
	Teacher   *Teacher `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	CreatedBy *User    `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}
