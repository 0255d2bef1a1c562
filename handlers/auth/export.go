package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/learnnest/learnnest-api/model"
	"github.com/learnnest/learnnest-api/utils/response"
	"gorm.io/gorm"
)

// passwordExportMarker replaces the hash in exported records
const passwordExportMarker = "hashed, cannot export"

// AdminExportRecord is one redacted row of an admin export
type AdminExportRecord struct {
	ID            uint      `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Password      string    `json:"password"`
	Role          string    `json:"role"`
	InstitutionID *uint     `json:"institution_id"`
	Institution   string    `json:"institution,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ExportAdmins handles GET /api/auth/export/admins (superadmin only)
func (h *AuthHandler) ExportAdmins(c *fiber.Ctx) error {
	return h.exportAdmins(c, nil)
}

// ExportInstitutionAdmins handles GET /api/auth/export/institution/:id/admins
func (h *AuthHandler) ExportInstitutionAdmins(c *fiber.Ctx) error {
	id := c.Params("id")

	var institution model.Institution
	if err := h.db.First(&institution, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Institution not found")
		}
		return response.InternalServerError(c, "Failed to fetch institution")
	}

	return h.exportAdmins(c, &institution.ID)
}

func (h *AuthHandler) exportAdmins(c *fiber.Ctx, institutionID *uint) error {
	query := h.db.Where("role = ?", model.RoleInstitutionAdmin).
		Preload("Institution").
		Order("created_at DESC")
	if institutionID != nil {
		query = query.Where("institution_id = ?", *institutionID)
	}

	var admins []model.User
	if err := query.Find(&admins).Error; err != nil {
		return response.InternalServerError(c, "Failed to export admins")
	}

	records := make([]AdminExportRecord, 0, len(admins))
	for i := range admins {
		u := &admins[i]
		rec := AdminExportRecord{
			ID:            u.ID,
			FirstName:     u.FirstName,
			LastName:      u.LastName,
			Username:      u.Username,
			Email:         u.Email,
			Password:      passwordExportMarker,
			Role:          u.Role,
			InstitutionID: u.InstitutionID,
			CreatedAt:     u.CreatedAt,
		}
		if u.Institution != nil {
			rec.Institution = u.Institution.Name
		}
		records = append(records, rec)
	}

	return response.SuccessList(c, len(records), records)
}
