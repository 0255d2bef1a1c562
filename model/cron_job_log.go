package model

import (
	"time"
)

// CronJobLog tracks scheduled job runs (roster reconciliation)
type CronJobLog struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	JobName     string     `gorm:"index;not null" json:"job_name"`
	Status      string     `gorm:"type:varchar(20)" json:"status"` // running, completed, failed
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Message     string     `json:"message"`
	ErrorMsg    string     `json:"error_msg"`
	Metadata    string     `gorm:"type:text" json:"metadata"`
}
