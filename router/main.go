package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/learnnest/learnnest-api/database"
	"github.com/learnnest/learnnest-api/handlers"
	auth_handlers "github.com/learnnest/learnnest-api/handlers/auth"
	course_handlers "github.com/learnnest/learnnest-api/handlers/course"
	institution_handlers "github.com/learnnest/learnnest-api/handlers/institution"
	student_handlers "github.com/learnnest/learnnest-api/handlers/student"
	teacher_handlers "github.com/learnnest/learnnest-api/handlers/teacher"
	"github.com/learnnest/learnnest-api/model"
	"github.com/learnnest/learnnest-api/utils"
	"github.com/learnnest/learnnest-api/utils/auth"
	"github.com/learnnest/learnnest-api/utils/cache"
	"github.com/learnnest/learnnest-api/utils/middleware"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	// Get JWT secret from environment
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "learnnest-api"
	}

	// Initialize JWT manager with config
	jwtConfig := auth.JWTConfig{
		Secret: jwtSecret,
		Expiry: 24 * time.Hour, // Access token expires in 24 hours
		Issuer: jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Initialize Redis cache for brute force protection
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	// Initialize brute force protection
	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	// Initialize auth middleware with DB so the caller's current role and
	// institution binding come from the account record, not the token
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Initialize handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)
	institutionHandler := institution_handlers.NewInstitutionHandler(db)
	courseHandler := course_handlers.NewCourseHandler(db)
	teacherHandler := teacher_handlers.NewTeacherHandler(db)
	studentHandler := student_handlers.NewStudentHandler(db)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, store))

	// API group. Identity resolution is optional here: anonymous requests
	// pass through and each route group layers its own requirements.
	api := app.Group("/api", authMiddleware.Optional())

	// Auth routes
	authGroup := api.Group("/auth")

	// Signup stays open so the bootstrap superadmin can be created, but it
	// still sees an authenticated superadmin when one is calling
	authGroup.Post("/signup", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)

	// Admin account management (superadmin only)
	requireAuth := authMiddleware.Required()
	requireSuperadmin := authMiddleware.RequireRole(model.RoleSuperadmin)
	requireInstitutionAdmin := authMiddleware.RequireRole(model.RoleInstitutionAdmin)

	authGroup.Get("/admins", requireAuth, requireSuperadmin, authHandler.ListAdmins)
	authGroup.Put("/admins/:id", requireAuth, requireSuperadmin,
		middleware.AdminAuditLog(db, "admin_update", "admins"), authHandler.UpdateAdmin)
	authGroup.Delete("/admins/:id", requireAuth, requireSuperadmin,
		middleware.AdminAuditLog(db, "admin_delete", "admins"), authHandler.DeleteAdmin)

	// Redacted credential exports (superadmin only)
	authGroup.Get("/export/admins", requireAuth, requireSuperadmin, authHandler.ExportAdmins)
	authGroup.Get("/export/institution/:id/admins", requireAuth, requireSuperadmin, authHandler.ExportInstitutionAdmins)

	// Institution routes
	institutions := api.Group("/institutions")

	// /my must register before /:id so it is not captured as an id
	institutions.Get("/my", requireAuth, requireInstitutionAdmin, institutionHandler.GetMyInstitution)

	institutions.Post("/", requireAuth, requireSuperadmin,
		middleware.AdminAuditLog(db, "institution_create", "institutions"), institutionHandler.CreateInstitution)
	institutions.Get("/", requireAuth, requireSuperadmin, institutionHandler.ListInstitutions)
	institutions.Get("/:id", requireAuth, requireSuperadmin, institutionHandler.GetInstitution)
	institutions.Put("/:id", requireAuth, requireSuperadmin,
		middleware.AdminAuditLog(db, "institution_update", "institutions"), institutionHandler.UpdateInstitution)
	institutions.Delete("/:id", requireAuth, requireSuperadmin,
		middleware.AdminAuditLog(db, "institution_delete", "institutions"), institutionHandler.DeleteInstitution)

	// Roster routes (institution admin only, scoped to own tenant)
	courses := api.Group("/courses", requireAuth, requireInstitutionAdmin)
	courses.Post("/", courseHandler.CreateCourse)
	courses.Get("/", courseHandler.ListCourses)
	courses.Get("/:id", courseHandler.GetCourse)
	courses.Put("/:id", courseHandler.UpdateCourse)
	courses.Delete("/:id", courseHandler.DeleteCourse)

	teachers := api.Group("/teachers", requireAuth, requireInstitutionAdmin)
	teachers.Post("/", teacherHandler.CreateTeacher)
	teachers.Get("/", teacherHandler.ListTeachers)
	teachers.Get("/:id", teacherHandler.GetTeacher)
	teachers.Put("/:id", teacherHandler.UpdateTeacher)
	teachers.Delete("/:id", teacherHandler.DeleteTeacher)
	teachers.Patch("/:id/assign", teacherHandler.AssignCourse)
	teachers.Patch("/:id/unassign", teacherHandler.UnassignCourse)

	students := api.Group("/students", requireAuth, requireInstitutionAdmin)
	students.Post("/", studentHandler.CreateStudent)
	students.Get("/", studentHandler.ListStudents)
	students.Get("/:id", studentHandler.GetStudent)
	students.Put("/:id", studentHandler.UpdateStudent)
	students.Delete("/:id", studentHandler.DeleteStudent)
	students.Patch("/:id/enroll", studentHandler.EnrollCourse)
	students.Patch("/:id/unenroll", studentHandler.UnenrollCourse)
}
