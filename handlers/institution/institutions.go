package institution

import (
	"github.com/gofiber/fiber/v2"
	"github.com/learnnest/learnnest-api/model"
	"github.com/learnnest/learnnest-api/utils/middleware"
	"github.com/learnnest/learnnest-api/utils/response"
	"github.com/learnnest/learnnest-api/utils/validation"
	"gorm.io/gorm"
)

// InstitutionHandler handles tenant directory requests
type InstitutionHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewInstitutionHandler creates a new institution handler
func NewInstitutionHandler(db *gorm.DB) *InstitutionHandler {
	return &InstitutionHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateInstitutionRequest represents the request body for creating an institution
type CreateInstitutionRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address" validate:"required"`
	Domain  string `json:"domain" validate:"required"`
}

// UpdateInstitutionRequest represents the request body for updating an institution
type UpdateInstitutionRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Domain  string `json:"domain"`
}

// CreateInstitution handles POST /api/institutions (superadmin only)
func (h *InstitutionHandler) CreateInstitution(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req CreateInstitutionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Name == "" || req.Email == "" || req.Address == "" || req.Domain == "" {
		return response.BadRequest(c, "Please provide all required fields: name, email, address, domain")
	}

	if !validation.ValidateEmail(req.Email) {
		return response.BadRequest(c, "Invalid email format")
	}

	domain := validation.NormalizeDomain(req.Domain)
	if !validation.ValidateDomain(domain) {
		return response.BadRequest(c, "Domain can only contain lowercase letters, numbers, hyphens, and dots")
	}

	// Domain uniqueness is the hard tenant constraint
	var existing model.Institution
	if err := h.db.Where("domain = ?", domain).First(&existing).Error; err == nil {
		return response.BadRequest(c, "An institution with this domain already exists")
	}

	institution := model.Institution{
		Name:        validation.SanitizeString(req.Name),
		Email:       req.Email,
		Address:     validation.SanitizeString(req.Address),
		Domain:      domain,
		CreatedByID: user.ID,
	}

	if err := h.db.Create(&institution).Error; err != nil {
		return response.InternalServerError(c, "Failed to create institution")
	}

	return response.Created(c, "Institution created successfully", institution)
}

// ListInstitutions handles GET /api/institutions (superadmin only)
func (h *InstitutionHandler) ListInstitutions(c *fiber.Ctx) error {
	var institutions []model.Institution
	if err := h.db.Order("created_at DESC").Find(&institutions).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch institutions")
	}

	return response.SuccessList(c, len(institutions), institutions)
}

// GetInstitution handles GET /api/institutions/:id (superadmin only)
func (h *InstitutionHandler) GetInstitution(c *fiber.Ctx) error {
	id := c.Params("id")

	var institution model.Institution
	if err := h.db.First(&institution, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Institution not found")
		}
		return response.InternalServerError(c, "Failed to fetch institution")
	}

	return response.Success(c, institution)
}

// UpdateInstitution handles PUT /api/institutions/:id (superadmin only)
func (h *InstitutionHandler) UpdateInstitution(c *fiber.Ctx) error {
	id := c.Params("id")

	var institution model.Institution
	if err := h.db.First(&institution, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Institution not found")
		}
		return response.InternalServerError(c, "Failed to fetch institution")
	}

	var req UpdateInstitutionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// If domain is being changed, re-validate uniqueness
	if req.Domain != "" {
		domain := validation.NormalizeDomain(req.Domain)
		if !validation.ValidateDomain(domain) {
			return response.BadRequest(c, "Domain can only contain lowercase letters, numbers, hyphens, and dots")
		}
		if domain != institution.Domain {
			var existing model.Institution
			if err := h.db.Where("domain = ?", domain).First(&existing).Error; err == nil {
				return response.BadRequest(c, "An institution with this domain already exists")
			}
		}
		institution.Domain = domain
	}

	if req.Name != "" {
		institution.Name = validation.SanitizeString(req.Name)
	}
	if req.Email != "" {
		if !validation.ValidateEmail(req.Email) {
			return response.BadRequest(c, "Invalid email format")
		}
		institution.Email = req.Email
	}
	if req.Address != "" {
		institution.Address = validation.SanitizeString(req.Address)
	}

	if err := h.db.Save(&institution).Error; err != nil {
		return response.InternalServerError(c, "Failed to update institution")
	}

	return response.SuccessWithMessage(c, "Institution updated successfully", institution)
}

// DeleteInstitution handles DELETE /api/institutions/:id (superadmin only).
// A tenant that still owns admins or roster records cannot be deleted;
// the operator must empty it first.
func (h *InstitutionHandler) DeleteInstitution(c *fiber.Ctx) error {
	id := c.Params("id")

	var institution model.Institution
	if err := h.db.First(&institution, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Institution not found")
		}
		return response.InternalServerError(c, "Failed to fetch institution")
	}

	counts := []struct {
		model interface{}
		what  string
	}{
		{&model.User{}, "admin accounts"},
		{&model.Course{}, "courses"},
		{&model.Teacher{}, "teachers"},
		{&model.Student{}, "students"},
	}
	for _, chk := range counts {
		var n int64
		if err := h.db.Model(chk.model).
			Where("institution_id = ?", institution.ID).
			Count(&n).Error; err != nil {
			return response.InternalServerError(c, "Failed to check institution contents")
		}
		if n > 0 {
			return response.Conflict(c, "Institution still has "+chk.what+" and cannot be deleted")
		}
	}

	if err := h.db.Delete(&institution).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete institution")
	}

	return response.SuccessWithMessage(c, "Institution deleted successfully", nil)
}

// GetMyInstitution handles GET /api/institutions/my (institution admin only)
func (h *InstitutionHandler) GetMyInstitution(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	if user.InstitutionID == nil {
		return response.NotFound(c, "No institution assigned to this account. Please contact LearnNest Admin to assign an institution.")
	}

	var institution model.Institution
	if err := h.db.First(&institution, *user.InstitutionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Institution not found")
		}
		return response.InternalServerError(c, "Failed to fetch institution")
	}

	return response.Success(c, institution)
}
