package student

import (
	"github.com/gofiber/fiber/v2"
	"github.com/learnnest/learnnest-api/model"
	"github.com/learnnest/learnnest-api/utils/middleware"
	"github.com/learnnest/learnnest-api/utils/response"
	"github.com/learnnest/learnnest-api/utils/validation"
	"gorm.io/gorm"
)

// StudentHandler handles student roster requests
type StudentHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(db *gorm.DB) *StudentHandler {
	return &StudentHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateStudentRequest represents the request body for creating a student
type CreateStudentRequest struct {
	Name            string `json:"name" validate:"required,min=3"`
	Email           string `json:"email" validate:"required,email"`
	EnrolledCourses []uint `json:"enrolled_courses"`
}

// UpdateStudentRequest represents the request body for updating a
// student. A nil EnrolledCourses leaves enrollment untouched; a present
// (possibly empty) list replaces it.
type UpdateStudentRequest struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	EnrolledCourses *[]uint `json:"enrolled_courses"`
}

// CourseIDRequest carries the course reference for enroll/unenroll
type CourseIDRequest struct {
	CourseID uint `json:"course_id"`
}

// verifyCoursesInInstitution batch-validates course references: all must
// exist and all must belong to the given institution. A zero status
// means the references are valid.
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

// CreateStudent handles POST /api/students
func (h *StudentHandler) CreateStudent(c *fiber.Ctx) error {
	institutionID, ok := middleware.GetInstitutionID(c)
	if !ok {
		return response.Forbidden(c, "No institution assigned to this account")
	}

	var req CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Name == "" || req.Email == "" {
		return response.BadRequest(c, "Please provide all required fields: name, email")
	}

	if !validation.ValidateEmail(req.Email) {
		return response.BadRequest(c, "Invalid email format")
	}

	var existing model.Student
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return response.BadRequest(c, "A student with this email already exists")
	}

	if len(req.EnrolledCourses) > 0 {
		if status, msg := verifyCoursesInInstitution(h.db, req.EnrolledCourses, institutionID); status != 0 {
			return response.Error(c, status, msg, statusCode(status))
		}
	}

	student := model.Student{
		Name:          validation.SanitizeString(req.Name),
		Email:         req.Email,
		InstitutionID: institutionID,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&student).Error; err != nil {
			return err
		}
		for _, courseID := range req.EnrolledCourses {
			enrollment := model.Enrollment{StudentID: student.ID, CourseID: courseID}
			if err := tx.Create(&enrollment).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to create student")
	}

	h.db.Preload("EnrolledCourses").First(&student, student.ID)

	return response.Created(c, "Student created successfully", student)
}

// ListStudents handles GET /api/students
func (h *StudentHandler) ListStudents(c *fiber.Ctx) error {
	institutionID, ok := middleware.GetInstitutionID(c)
	if !ok {
		return response.Forbidden(c, "No institution assigned to this account")
	}

	var students []model.Student
	if err := h.db.Where("institution_id = ?", institutionID).
		Preload("EnrolledCourses").
		Order("created_at DESC").
		Find(&students).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch students")
	}

	return response.SuccessList(c, len(students), students)
}

// GetStudent handles GET /api/students/:id
func (h *StudentHandler) GetStudent(c *fiber.Ctx) error {
	institutionID, ok := middleware.GetInstitutionID(c)
	if !ok {
		return response.Forbidden(c, "No institution assigned to this account")
	}

	var student model.Student
	if err := h.db.Preload("EnrolledCourses").
		First(&student, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	if student.InstitutionID != institutionID {
		return response.Forbidden(c, "Access denied")
	}

	return response.Success(c, student)
}

// UpdateStudent handles PUT /api/students/:id
func (h *StudentHandler) UpdateStudent(c *fiber.Ctx) error {
	institutionID, ok := middleware.GetInstitutionID(c)
	if !ok {
		return response.Forbidden(c, "No institution assigned to this account")
	}

	var student model.Student
	if err := h.db.First(&student, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	if student.InstitutionID != institutionID {
		return response.Forbidden(c, "Access denied")
	}

	var req UpdateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// If email is being changed, check for uniqueness
	if req.Email != "" && req.Email != student.Email {
		if !validation.ValidateEmail(req.Email) {
			return response.BadRequest(c, "Invalid email format")
		}
		var existing model.Student
		if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
			return response.BadRequest(c, "A student with this email already exists")
		}
		student.Email = req.Email
	}

	if req.Name != "" {
		student.Name = validation.SanitizeString(req.Name)
	}

	if req.EnrolledCourses != nil && len(*req.EnrolledCourses) > 0 {
		if status, msg := verifyCoursesInInstitution(h.db, *req.EnrolledCourses, institutionID); status != 0 {
			return response.Error(c, status, msg, statusCode(status))
		}
	}

	// Replacing the enrollment set and saving the record is one atomic step
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&student).Error; err != nil {
			return err
		}
		if req.EnrolledCourses != nil {
			if err := tx.Where("student_id = ?", student.ID).
				Delete(&model.Enrollment{}).Error; err != nil {
				return err
			}
			for _, courseID := range *req.EnrolledCourses {
				enrollment := model.Enrollment{StudentID: student.ID, CourseID: courseID}
				if err := tx.Create(&enrollment).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to update student")
	}

	h.db.Preload("EnrolledCourses").First(&student, student.ID)

	return response.SuccessWithMessage(c, "Student updated successfully", student)
}

// DeleteStudent handles DELETE /api/students/:id. Only the student's own
// enrollment rows go with it; nothing else cascades.
func (h *StudentHandler) DeleteStudent(c *fiber.Ctx) error {
	institutionID, ok := middleware.GetInstitutionID(c)
	if !ok {
		return response.Forbidden(c, "No institution assigned to this account")
	}

	var student model.Student
	if err := h.db.First(&student, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	if student.InstitutionID != institutionID {
		return response.Forbidden(c, "Access denied")
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", student.ID).
			Delete(&model.Enrollment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&student).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to delete student")
	}

	return response.SuccessWithMessage(c, "Student deleted successfully", nil)
}

// EnrollCourse handles PATCH /api/students/:id/enroll
func (h *StudentHandler) EnrollCourse(c *fiber.Ctx) error {
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

	var student model.Student
	if err := h.db.First(&student, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}
	if student.InstitutionID != institutionID {
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

	// Enrolling twice is an error, not a duplicate row
	var existing model.Enrollment
	if err := h.db.Where("student_id = ? AND course_id = ?", student.ID, course.ID).
		First(&existing).Error; err == nil {
		return response.BadRequest(c, "Student is already enrolled in this course")
	}

	enrollment := model.Enrollment{StudentID: student.ID, CourseID: course.ID}
	if err := h.db.Create(&enrollment).Error; err != nil {
		return response.InternalServerError(c, "Failed to enroll student")
	}

	h.db.Preload("EnrolledCourses").First(&student, student.ID)

	return response.SuccessWithMessage(c, "Student enrolled in course successfully", student)
}

// UnenrollCourse handles PATCH /api/students/:id/unenroll. Removing an
// enrollment that does not exist is a tolerant no-op.
func (h *StudentHandler) UnenrollCourse(c *fiber.Ctx) error {
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

	var student model.Student
	if err := h.db.First(&student, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}
	if student.InstitutionID != institutionID {
		return response.Forbidden(c, "Access denied")
	}

	if err := h.db.Where("student_id = ? AND course_id = ?", student.ID, req.CourseID).
		Delete(&model.Enrollment{}).Error; err != nil {
		return response.InternalServerError(c, "Failed to unenroll student")
	}

	h.db.Preload("EnrolledCourses").First(&student, student.ID)

	return response.SuccessWithMessage(c, "Student unenrolled from course successfully", student)
}
