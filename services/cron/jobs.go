package cron

import (
	"fmt"
	"log"
	"time"

	"github.com/learnnest/learnnest-api/model"
)

// ReconcileRoster repairs relationship edges that drifted out of sync.
// Handlers maintain both sides transactionally, so this is a compensating
// job for edges broken by out-of-band writes or partial failures.
func (m *CronManager) ReconcileRoster() {
	jobName := "reconcile_roster"

	repaired := 0

	// 1. Enrollments pointing at a course that no longer exists
	result := m.db.Where(
		"course_id NOT IN (?)",
		m.db.Model(&model.Course{}).Select("id"),
	).Delete(&model.Enrollment{})
	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to remove orphaned enrollments: %w", result.Error))
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("[CRON] Removed %d enrollments with missing courses", result.RowsAffected)
		repaired += int(result.RowsAffected)
	}

	// 2. Enrollments pointing at a student that no longer exists
	result = m.db.Where(
		"student_id NOT IN (?)",
		m.db.Model(&model.Student{}).Select("id"),
	).Delete(&model.Enrollment{})
	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to remove dangling enrollments: %w", result.Error))
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("[CRON] Removed %d enrollments with missing students", result.RowsAffected)
		repaired += int(result.RowsAffected)
	}

	// 3. Cross-tenant enrollments: the student and the course must live
	// in the same institution
	result = m.db.Where(
		"(student_id, course_id) IN (?)",
		m.db.Table("enrollments e").
			Select("e.student_id, e.course_id").
			Joins("JOIN students s ON s.id = e.student_id").
			Joins("JOIN courses c ON c.id = e.course_id").
			Where("s.institution_id <> c.institution_id"),
	).Delete(&model.Enrollment{})
	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to remove cross-tenant enrollments: %w", result.Error))
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("[CRON] Removed %d cross-tenant enrollments", result.RowsAffected)
		repaired += int(result.RowsAffected)
	}

	// 4. Courses assigned to a teacher that no longer exists
	result = m.db.Model(&model.Course{}).
		Where("teacher_id IS NOT NULL AND teacher_id NOT IN (?)",
			m.db.Model(&model.Teacher{}).Select("id")).
		Update("teacher_id", nil)
	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to clear missing teacher assignments: %w", result.Error))
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("[CRON] Cleared %d courses assigned to missing teachers", result.RowsAffected)
		repaired += int(result.RowsAffected)
	}

	// 5. Cross-tenant teacher assignments
	result = m.db.Model(&model.Course{}).
		Where("teacher_id IS NOT NULL AND id IN (?)",
			m.db.Table("courses c").
				Select("c.id").
				Joins("JOIN teachers t ON t.id = c.teacher_id").
				Where("t.institution_id <> c.institution_id")).
		Update("teacher_id", nil)
	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to clear cross-tenant teacher assignments: %w", result.Error))
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("[CRON] Cleared %d cross-tenant teacher assignments", result.RowsAffected)
		repaired += int(result.RowsAffected)
	}

	if repaired == 0 {
		m.logJobComplete(jobName, "Roster edges consistent, nothing to repair")
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Repaired %d inconsistent roster edges", repaired))
}

// CleanupOldData removes old log data to keep the database clean
// Runs daily at 2 AM
func (m *CronManager) CleanupOldData() {
	jobName := "cleanup_old_data"

	totalCleaned := 0

	// 1. Clean up old cron job logs (keep only last 90 days)
	cutoffLogs := time.Now().Add(-90 * 24 * time.Hour)
	result := m.db.Where("started_at < ?", cutoffLogs).Delete(&model.CronJobLog{})
	if result.Error != nil {
		log.Printf("[CRON] Failed to clean cron logs: %v", result.Error)
	} else {
		log.Printf("[CRON] Cleaned %d old cron logs", result.RowsAffected)
		totalCleaned += int(result.RowsAffected)
	}

	// 2. Clean up old admin audit logs (keep only last 180 days)
	cutoffAudit := time.Now().Add(-180 * 24 * time.Hour)
	result = m.db.Where("created_at < ?", cutoffAudit).Delete(&model.AdminAuditLog{})
	if result.Error != nil {
		log.Printf("[CRON] Failed to clean audit logs: %v", result.Error)
	} else {
		log.Printf("[CRON] Cleaned %d old audit logs", result.RowsAffected)
		totalCleaned += int(result.RowsAffected)
	}

	m.logJobComplete(jobName, fmt.Sprintf("Cleaned up %d total records", totalCleaned))
}
