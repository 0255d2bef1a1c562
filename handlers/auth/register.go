package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/learnnest/learnnest-api/model"
	authutil "github.com/learnnest/learnnest-api/utils/auth"
	"github.com/learnnest/learnnest-api/utils/middleware"
	"github.com/learnnest/learnnest-api/utils/response"
	"github.com/learnnest/learnnest-api/utils/validation"
	"gorm.io/gorm"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *authutil.JWTManager
	bruteForceProtection *middleware.BruteForceProtection
	validator            *validation.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, bruteForceProtection *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		bruteForceProtection: bruteForceProtection,
		validator:            validation.NewValidator(),
	}
}

// RegisterRequest represents an account creation request
type RegisterRequest struct {
	FirstName     string `json:"first_name" validate:"required,min=3"`
	LastName      string `json:"last_name"`
	Username      string `json:"username" validate:"required,min=3,max=30"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=6"`
	Role          string `json:"role,omitempty"` // Optional, defaults to institution_admin
	InstitutionID *uint  `json:"institution_id,omitempty"`
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID            uint      `json:"id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Role          string    `json:"role"`
	InstitutionID *uint     `json:"institution_id"`
	IsFirstLogin  bool      `json:"is_first_login"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Role:          u.Role,
		InstitutionID: u.InstitutionID,
		IsFirstLogin:  u.IsFirstLogin,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// Register handles POST /api/auth/signup. The route carries only the
// Optional auth stage: anonymous callers may attempt a superadmin
// bootstrap, while institution admin accounts can only be created by an
// authenticated superadmin.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.FirstName == "" || req.Username == "" || req.Email == "" || req.Password == "" {
		return response.BadRequest(c, "Missing required fields")
	}

	if !validation.ValidateEmail(req.Email) {
		return response.BadRequest(c, "Invalid email format")
	}

	if !authutil.IsPasswordValid(req.Password) {
		return response.BadRequest(c, "Password must be at least 6 characters long")
	}

	// Set default role if not provided
	if req.Role == "" {
		req.Role = model.RoleInstitutionAdmin
	}

	if req.Role != model.RoleSuperadmin && req.Role != model.RoleInstitutionAdmin {
		return response.BadRequest(c, "Invalid role. Must be 'superadmin' or 'institution_admin'")
	}

	// The superadmin is a singleton: the rule holds no matter who calls
	if req.Role == model.RoleSuperadmin {
		var count int64
		if err := h.db.Model(&model.User{}).
			Where("role = ?", model.RoleSuperadmin).
			Count(&count).Error; err != nil {
			return response.InternalServerError(c, "Failed to check existing accounts")
		}
		if count > 0 {
			return response.Forbidden(c, "Superadmin already exists")
		}
	}

	if req.Role == model.RoleInstitutionAdmin {
		caller, ok := middleware.GetUser(c)
		if !ok || !caller.IsSuperadmin() {
			return response.Forbidden(c, "Only superadmin can create institution admin")
		}
		if req.InstitutionID == nil {
			return response.BadRequest(c, "Institution ID is required for institution admin accounts")
		}
		var institution model.Institution
		if err := h.db.First(&institution, *req.InstitutionID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return response.NotFound(c, "Institution not found")
			}
			return response.InternalServerError(c, "Failed to verify institution")
		}
	}

	// Check if user already exists
	var existingUser model.User
	if err := h.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		return response.Conflict(c, "User with this email already exists")
	}

	hashedPassword, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	user := model.User{
		FirstName:     validation.SanitizeString(req.FirstName),
		LastName:      validation.SanitizeString(req.LastName),
		Username:      validation.SanitizeString(req.Username),
		Email:         req.Email,
		PasswordHash:  hashedPassword,
		Role:          req.Role,
		InstitutionID: req.InstitutionID,
		IsFirstLogin:  true,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return response.InternalServerError(c, "Failed to create user")
	}

	return response.Created(c, "User created", toUserResponse(&user))
}
