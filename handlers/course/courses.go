package course

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/learnnest/learnnest-api/model"
	"github.com/learnnest/learnnest-api/utils/middleware"
	"github.com/learnnest/learnnest-api/utils/response"
	"github.com/learnnest/learnnest-api/utils/validation"
	"gorm.io/gorm"
)

// CourseHandler handles course-related requests. Every operation is
// scoped to the calling admin's institution.
type CourseHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(db *gorm.DB) *CourseHandler {
	return &CourseHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateCourseRequest represents the request body for creating a course
type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required,min=3"`
	Description string `json:"description" validate:"required"`
	TeacherID   *uint  `json:"teacher_id"`
}

// UpdateCourseRequest represents the request body for updating a course.
// teacher_id is kept raw to tell three cases apart: absent leaves the
// assignment unchanged, null clears it, a number moves it.
type UpdateCourseRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	TeacherID   json.RawMessage `json:"teacher_id"`
}

// CreateCourse handles POST /api/courses
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}
	institutionID, ok := middleware.GetInstitutionID(c)
	if !ok {
		return response.Forbidden(c, "No institution assigned to this account")
	}

	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Title == "" || req.Description == "" {
		return response.BadRequest(c, "Please provide all required fields: title, description")
	}

	// An initial teacher must belong to the same institution
	if req.TeacherID != nil {
		var teacher model.Teacher
		if err := h.db.First(&teacher, *req.TeacherID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return response.NotFound(c, "Teacher not found")
			}
			return response.InternalServerError(c, "Failed to verify teacher")
		}
		if teacher.InstitutionID != institutionID {
			return response.Forbidden(c, "Teacher does not belong to your institution")
		}
	}

	course := model.Course{
		Title:         validation.SanitizeString(req.Title),
		Description:   validation.SanitizeString(req.Description),
		TeacherID:     req.TeacherID,
		InstitutionID: institutionID,
		CreatedByID:   user.ID,
	}

	if err := h.db.Create(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to create course")
	}

	h.db.Preload("Teacher").First(&course, course.ID)

	return response.Created(c, "Course created successfully", course)
}

// ListCourses handles GET /api/courses
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	institutionID, ok := middleware.GetInstitutionID(c)
	if !ok {
		return response.Forbidden(c, "No institution assigned to this account")
	}

	var courses []model.Course
	if err := h.db.Where("institution_id = ?", institutionID).
		Preload("Teacher").
		Preload("CreatedBy").
		Order("created_at DESC").
		Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	return response.SuccessList(c, len(courses), courses)
}

// GetCourse handles GET /api/courses/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	institutionID, ok := middleware.GetInstitutionID(c)
	if !ok {
		return response.Forbidden(c, "No institution assigned to this account")
	}

	var course model.Course
	if err := h.db.Preload("Teacher").
		Preload("CreatedBy").
		First(&course, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	// Tenant check beyond the list filter
	if course.InstitutionID != institutionID {
		return response.Forbidden(c, "Access denied")
	}

	return response.Success(c, course)
}

// UpdateCourse handles PUT /api/courses/:id
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	institutionID, ok := middleware.GetInstitutionID(c)
	if !ok {
		return response.Forbidden(c, "No institution assigned to this account")
	}

	var course model.Course
	if err := h.db.First(&course, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	if course.InstitutionID != institutionID {
		return response.Forbidden(c, "Access denied")
	}

	var req UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// A teacher change moves the edge: the previous teacher loses the
	// course the moment TeacherID is overwritten. An explicit null
	// unassigns the course.
	if len(req.TeacherID) > 0 {
		if string(req.TeacherID) == "null" {
			course.TeacherID = nil
		} else {
			var teacherID uint
			if err := json.Unmarshal(req.TeacherID, &teacherID); err != nil {
				return response.BadRequest(c, "Invalid teacher ID")
			}
			var teacher model.Teacher
			if err := h.db.First(&teacher, teacherID).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return response.NotFound(c, "Teacher not found")
				}
				return response.InternalServerError(c, "Failed to verify teacher")
			}
			if teacher.InstitutionID != institutionID {
				return response.Forbidden(c, "Teacher does not belong to your institution")
			}
			course.TeacherID = &teacherID
		}
	}

	if req.Title != "" {
		course.Title = validation.SanitizeString(req.Title)
	}
	if req.Description != "" {
		course.Description = validation.SanitizeString(req.Description)
	}

	if err := h.db.Save(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to update course")
	}

	h.db.Preload("Teacher").First(&course, course.ID)

	return response.SuccessWithMessage(c, "Course updated successfully", course)
}

// DeleteCourse handles DELETE /api/courses/:id. Deletion cascades in
// one transaction: enrollment rows are removed so no student keeps a
// dangling reference; the teacher side detaches with the row itself.
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	institutionID, ok := middleware.GetInstitutionID(c)
	if !ok {
		return response.Forbidden(c, "No institution assigned to this account")
	}

	var course model.Course
	if err := h.db.First(&course, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	if course.InstitutionID != institutionID {
		return response.Forbidden(c, "Access denied")
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", course.ID).
			Delete(&model.Enrollment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&course).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to delete course")
	}

	return response.SuccessWithMessage(c, "Course deleted successfully", nil)
}
