package model

import (
	"time"
)

// Student is a roster record scoped to one institution. Enrollment rows
// link students to courses of the same institution.
type Student struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Name          string    `gorm:"not null" json:"name"`
	Email         string    `gorm:"uniqueIndex;not null" json:"email"`
	InstitutionID uint      `gorm:"not null;index" json:"institution_id"`

	// Relationships
	EnrolledCourses []Course `gorm:"many2many:enrollments;" json:"enrolled_courses"`
}

// Enrollment is the join row behind Student.EnrolledCourses. The
// composite primary key makes double enrollment a constraint violation
// on top of the handler-level check.
type Enrollment struct {
	StudentID  uint  `gorm:"primaryKey" json:"student_id"`
	CourseID   uint  `gorm:"primaryKey" json:"course_id"`
	EnrolledAt int64 `gorm:"autoCreateTime" json:"enrolled_at"`

	// Relationships
	Student Student `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Course  Course  `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}
