package teacher

import (
	"github.com/gofiber/fiber/v2"
	"github.com/learnnest/learnnest-api/model"
	"github.com/learnnest/learnnest-api/utils/middleware"
	"github.com/learnnest/learnnest-api/utils/response"
	"github.com/learnnest/learnnest-api/utils/validation"
	"gorm.io/gorm"
)

// TeacherHandler handles teacher roster requests
type TeacherHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewTeacherHandler creates a new teacher handler
func NewTeacherHandler(db *gorm.DB) *TeacherHandler {
	return &TeacherHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateTeacherRequest represents the request body for creating a teacher
type CreateTeacherRequest struct {
	Name            string `json:"name" validate:"required,min=3"`
	Email           string `json:"email" validate:"required,email"`
	AssignedCourses []uint `json:"assigned_courses"`
}

// UpdateTeacherRequest represents the request body for updating a teacher
type UpdateTeacherRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CourseIDRequest carries the course reference for assign/unassign
type CourseIDRequest struct {
	CourseID uint `json:"course_id"`
}

// verifyCoursesInInstitution batch-validates course references: all must
// exist and all must belong to the given institution.
func verifyCoursesInInstitution(db *gorm.DB, courseIDs []uint, institutionID uint) (int, string) {
	var courses []model.Course
	if err := db.Where("id IN ?", courseIDs).Find(&courses).Error; err != nil {
		return fiber.StatusInternalServerError, "Failed to verify courses"
	}
	if len(courses) != len(courseIDs) {
		return fiber.StatusNotFound, "One or more courses not found"
	}
	for _, course := range courses {
		if course.InstitutionID != institutionID {
			return fiber.StatusForbidden, "One or more courses do not belong to your institution"
		}
	}
	return 0, ""
}

// CreateTeacher handles POST /api/teachers
func (h *TeacherHandler) CreateTeacher(c *fiber.Ctx) error {
	institutionID, ok := middleware.GetInstitutionID(c)
	if !ok {
		return response.Forbidden(c, "No institution assigned to this account")
	}

	var req CreateTeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Name == "" || req.Email == "" {
		return response.BadRequest(c, "Please provide all required fields: name, email")
	}

	if !validation.ValidateEmail(req.Email) {
		return response.BadRequest(c, "Invalid email format")
	}

	var existing model.Teacher
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return response.BadRequest(c, "A teacher with this email already exists")
	}

	if len(req.AssignedCourses) > 0 {
		if status, msg := verifyCoursesInInstitution(h.db, req.AssignedCourses, institutionID); status != 0 {
			return response.Error(c, status, msg, statusCode(status))
		}
	}

	teacher := model.Teacher{
		Name:          validation.SanitizeString(req.Name),
		Email:         req.Email,
		InstitutionID: institutionID,
	}

	// Creating the teacher and claiming its initial courses is one
	// atomic step; a claimed course leaves its previous teacher.
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&teacher).Error; err != nil {
			return err
		}
		if len(req.AssignedCourses) > 0 {
			if err := tx.Model(&model.Course{}).
				Where("id IN ?", req.AssignedCourses).
				Update("teacher_id", teacher.ID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to create teacher")
	}

	h.db.Preload("AssignedCourses").First(&teacher, teacher.ID)

	return response.Created(c, "Teacher created successfully", teacher)
}

// ListTeachers handles GET /api/teachers
func (h *TeacherHandler) ListTeachers(c *fiber.Ctx) error {
	institutionID, ok := middleware.GetInstitutionID(c)
	if !ok {
		return response.Forbidden(c, "No institution assigned to this account")
	}

	var teachers []model.Teacher
	if err := h.db.Where("institution_id = ?", institutionID).
		Preload("AssignedCourses").
		Order("created_at DESC").
		Find(&teachers).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch teachers")
	}

	return response.SuccessList(c, len(teachers), teachers)
}

// GetTeacher handles GET /api/teachers/:id
func (h *TeacherHandler) GetTeacher(c *fiber.Ctx) error {
	institutionID, ok := middleware.GetInstitutionID(c)
	if !ok {
		return response.Forbidden(c, "No institution assigned to this account")
	}

	var teacher model.Teacher
	if err := h.db.Preload("AssignedCourses").
		First(&teacher, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Teacher not found")
		}
		return response.InternalServerError(c, "Failed to fetch teacher")
	}

	if teacher.InstitutionID != institutionID {
		return response.Forbidden(c, "Access denied")
	}

	return response.Success(c, teacher)
}

// UpdateTeacher handles PUT /api/teachers/:id
func (h *TeacherHandler) UpdateTeacher(c *fiber.Ctx) error {
	institutionID, ok := middleware.GetInstitutionID(c)
	if !ok {
		return response.Forbidden(c, "No institution assigned to this account")
	}

	var teacher model.Teacher
	if err := h.db.First(&teacher, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Teacher not found")
		}
		return response.InternalServerError(c, "Failed to fetch teacher")
	}

	if teacher.InstitutionID != institutionID {
		return response.Forbidden(c, "Access denied")
	}

	var req UpdateTeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// If email is being changed, check for uniqueness
	if req.Email != "" && req.Email != teacher.Email {
		if !validation.ValidateEmail(req.Email) {
			return response.BadRequest(c, "Invalid email format")
		}
		var existing model.Teacher
		if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
			return response.BadRequest(c, "A teacher with this email already exists")
		}
		teacher.Email = req.Email
	}

	if req.Name != "" {
		teacher.Name = validation.SanitizeString(req.Name)
	}

	if err := h.db.Save(&teacher).Error; err != nil {
		return response.InternalServerError(c, "Failed to update teacher")
	}

	h.db.Preload("AssignedCourses").First(&teacher, teacher.ID)

	return response.SuccessWithMessage(c, "Teacher updated successfully", teacher)
}

// DeleteTeacher handles DELETE /api/teachers/:id. Courses taught by the
// teacher fall back to unassigned in the same transaction.
func (h *TeacherHandler) DeleteTeacher(c *fiber.Ctx) error {
	institutionID, ok := middleware.GetInstitutionID(c)
	if !ok {
		return response.Forbidden(c, "No institution assigned to this account")
	}

	var teacher model.Teacher
	if err := h.db.First(&teacher, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Teacher not found")
		}
		return response.InternalServerError(c, "Failed to fetch teacher")
	}

	if teacher.InstitutionID != institutionID {
		return response.Forbidden(c, "Access denied")
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Course{}).
			Where("teacher_id = ?", teacher.ID).
			Update("teacher_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&teacher).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to delete teacher")
	}

	return response.SuccessWithMessage(c, "Teacher deleted successfully", nil)
}

// AssignCourse handles PATCH /api/teachers/:id/assign. A course has at
// most one teacher: assigning it here detaches it from any previous one.
func (h *TeacherHandler) AssignCourse(c *fiber.Ctx) error {
	institutionID, ok := middleware.GetInstitutionID(c)
	if !ok {
		return response.Forbidden(c, "No institution assigned to this account")
	}

	var req CourseIDRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.CourseID == 0 {
		return response.BadRequest(c, "Course ID is required")
	}

	var teacher model.Teacher
	if err := h.db.First(&teacher, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Teacher not found")
		}
		return response.InternalServerError(c, "Failed to fetch teacher")
	}
	if teacher.InstitutionID != institutionID {
		return response.Forbidden(c, "Access denied")
	}

	var course model.Course
	if err := h.db.First(&course, req.CourseID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}
	if course.InstitutionID != institutionID {
		return response.Forbidden(c, "Course does not belong to your institution")
	}

	if course.TeacherID != nil && *course.TeacherID == teacher.ID {
		return response.BadRequest(c, "Teacher is already assigned to this course")
	}

	if err := h.db.Model(&course).Update("teacher_id", teacher.ID).Error; err != nil {
		return response.InternalServerError(c, "Failed to assign teacher")
	}

	h.db.Preload("AssignedCourses").First(&teacher, teacher.ID)

	return response.SuccessWithMessage(c, "Teacher assigned to course successfully", teacher)
}

// UnassignCourse handles PATCH /api/teachers/:id/unassign. Unassigning a
// course the teacher does not hold is a tolerant no-op.
func (h *TeacherHandler) UnassignCourse(c *fiber.Ctx) error {
	institutionID, ok := middleware.GetInstitutionID(c)
	if !ok {
		return response.Forbidden(c, "No institution assigned to this account")
	}

	var req CourseIDRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.CourseID == 0 {
		return response.BadRequest(c, "Course ID is required")
	}

	var teacher model.Teacher
	if err := h.db.First(&teacher, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Teacher not found")
		}
		return response.InternalServerError(c, "Failed to fetch teacher")
	}
	if teacher.InstitutionID != institutionID {
		return response.Forbidden(c, "Access denied")
	}

	// Clears the edge only when it points at this teacher
	if err := h.db.Model(&model.Course{}).
		Where("id = ? AND teacher_id = ?", req.CourseID, teacher.ID).
		Update("teacher_id", nil).Error; err != nil {
		return response.InternalServerError(c, "Failed to unassign teacher")
	}

	h.db.Preload("AssignedCourses").First(&teacher, teacher.ID)

	return response.SuccessWithMessage(c, "Teacher unassigned from course successfully", teacher)
}

func statusCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	default:
		return "INTERNAL_ERROR"
	}
}
