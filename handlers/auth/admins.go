package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/learnnest/learnnest-api/model"
	authutil "github.com/learnnest/learnnest-api/utils/auth"
	"github.com/learnnest/learnnest-api/utils/response"
	"github.com/learnnest/learnnest-api/utils/validation"
	"gorm.io/gorm"
)

// UpdateAdminRequest represents an institution admin update. Nil/empty
// fields are left unchanged.
type UpdateAdminRequest struct {
	FirstName     string  `json:"first_name"`
	LastName      *string `json:"last_name"`
	Username      string  `json:"username"`
	Email         string  `json:"email"`
	Password      string  `json:"password"`
	InstitutionID *uint   `json:"institution_id"`
}

// ListAdmins handles GET /api/auth/admins (superadmin only)
func (h *AuthHandler) ListAdmins(c *fiber.Ctx) error {
	var admins []model.User
	if err := h.db.Where("role = ?", model.RoleInstitutionAdmin).
		Preload("Institution").
		Order("created_at DESC").
		Find(&admins).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch admins")
	}

	out := make([]UserResponse, 0, len(admins))
	for i := range admins {
		out = append(out, toUserResponse(&admins[i]))
	}

	return response.SuccessList(c, len(out), out)
}

// UpdateAdmin handles PUT /api/auth/admins/:id (superadmin only)
func (h *AuthHandler) UpdateAdmin(c *fiber.Ctx) error {
	id := c.Params("id")

	var admin model.User
	if err := h.db.First(&admin, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Admin not found")
		}
		return response.InternalServerError(c, "Failed to fetch admin")
	}

	// Only institution admin accounts are managed here
	if admin.Role != model.RoleInstitutionAdmin {
		return response.NotFound(c, "Admin not found")
	}

	var req UpdateAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// If email is being changed, check for uniqueness
	if req.Email != "" && req.Email != admin.Email {
		if !validation.ValidateEmail(req.Email) {
			return response.BadRequest(c, "Invalid email format")
		}
		var existing model.User
		if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
			return response.BadRequest(c, "A user with this email already exists")
		}
		admin.Email = req.Email
	}

	if req.FirstName != "" {
		admin.FirstName = validation.SanitizeString(req.FirstName)
	}
	if req.LastName != nil {
		admin.LastName = validation.SanitizeString(*req.LastName)
	}
	if req.Username != "" {
		admin.Username = validation.SanitizeString(req.Username)
	}

	// Passwords are hashed whenever the field changes
	if req.Password != "" {
		hash, err := authutil.HashPassword(req.Password)
		if err != nil {
			return response.BadRequest(c, "Password must be at least 6 characters long")
		}
		admin.PasswordHash = hash
	}

	if req.InstitutionID != nil {
		var institution model.Institution
		if err := h.db.First(&institution, *req.InstitutionID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return response.NotFound(c, "Institution not found")
			}
			return response.InternalServerError(c, "Failed to verify institution")
		}
		admin.InstitutionID = req.InstitutionID
	}

	if err := h.db.Save(&admin).Error; err != nil {
		return response.InternalServerError(c, "Failed to update admin")
	}

	return response.SuccessWithMessage(c, "Admin updated successfully", toUserResponse(&admin))
}

// DeleteAdmin handles DELETE /api/auth/admins/:id (superadmin only)
func (h *AuthHandler) DeleteAdmin(c *fiber.Ctx) error {
	id := c.Params("id")

	var admin model.User
	if err := h.db.First(&admin, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Admin not found")
		}
		return response.InternalServerError(c, "Failed to fetch admin")
	}

	if admin.Role != model.RoleInstitutionAdmin {
		return response.NotFound(c, "Admin not found")
	}

	if err := h.db.Delete(&admin).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete admin")
	}

	return response.SuccessWithMessage(c, "Admin deleted successfully", nil)
}
