package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/learnnest/learnnest-api/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testStore adapts a test database connection to the Storage interface
type testStore struct {
	db *gorm.DB
}

func (s *testStore) Init() error        { return nil }
func (s *testStore) Close() error       { return nil }
func (s *testStore) HealthCheck() error { return nil }
func (s *testStore) GetDB() interface{} { return s.db }

// setupTestApp connects to TEST_DATABASE_URL, resets the schema, and
// wires the full route tree. Tests are skipped when no test database is
// configured.
func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	t.Setenv("JWT_SECRET", "integration-test-secret")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	// Fresh schema per run
	if err := db.Migrator().DropTable(
		&model.Enrollment{}, &model.Student{}, &model.Course{}, &model.Teacher{},
		&model.AdminAuditLog{}, &model.CronJobLog{}, &model.User{}, &model.Institution{},
	); err != nil {
		t.Fatalf("failed to drop tables: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{}, &model.Institution{}, &model.Course{}, &model.Teacher{},
		&model.Student{}, &model.Enrollment{}, &model.AdminAuditLog{}, &model.CronJobLog{},
	); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	app := fiber.New()
	SetupRoutes(app, &testStore{db: db})

	return app, db
}

// doJSON sends a JSON request and decodes the envelope
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var parsed map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("%s %s returned unparseable body: %v", method, path, err)
	}
	return resp.StatusCode, parsed
}

func dataField(t *testing.T, parsed map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := parsed["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected object data field, got %v", parsed)
	}
	return data
}

func idOf(t *testing.T, parsed map[string]interface{}) uint {
	t.Helper()
	id, ok := dataField(t, parsed)["id"].(float64)
	if !ok {
		t.Fatalf("expected numeric id in data, got %v", parsed)
	}
	return uint(id)
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	status, parsed := doJSON(t, app, "POST", "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if status != fiber.StatusOK {
		t.Fatalf("login as %s failed with status %d: %v", email, status, parsed)
	}
	token, ok := dataField(t, parsed)["token"].(string)
	if !ok || token == "" {
		t.Fatalf("login as %s returned no token", email)
	}
	return token
}

func TestAdminWorkflow(t *testing.T) {
	app, db := setupTestApp(t)
	_ = db

	// ---- Superadmin bootstrap ----

	status, parsed := doJSON(t, app, "POST", "/api/auth/signup", "", map[string]interface{}{
		"first_name": "Root",
		"username":   "superadmin",
		"email":      "root@learnnest.io",
		"password":   "rootpass",
		"role":       "superadmin",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("superadmin bootstrap failed with status %d: %v", status, parsed)
	}

	// Singleton rule: a second superadmin is rejected even anonymously
	status, _ = doJSON(t, app, "POST", "/api/auth/signup", "", map[string]interface{}{
		"first_name": "Rogue",
		"username":   "rogue",
		"email":      "rogue@learnnest.io",
		"password":   "roguepass",
		"role":       "superadmin",
	})
	if status != fiber.StatusForbidden {
		t.Errorf("second superadmin signup: expected 403, got %d", status)
	}

	rootToken := login(t, app, "root@learnnest.io", "rootpass")

	// ---- Institutions ----

	status, parsed = doJSON(t, app, "POST", "/api/institutions", rootToken, map[string]string{
		"name":    "Greenwood College",
		"email":   "office@greenwood.edu",
		"address": "1 College Rd",
		"domain":  "Greenwood.EDU",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("institution create failed with status %d: %v", status, parsed)
	}
	greenwoodID := idOf(t, parsed)
	if dataField(t, parsed)["domain"] != "greenwood.edu" {
		t.Errorf("expected normalized domain greenwood.edu, got %v", dataField(t, parsed)["domain"])
	}

	// Duplicate domain rejected
	status, _ = doJSON(t, app, "POST", "/api/institutions", rootToken, map[string]string{
		"name":    "Copycat",
		"email":   "copy@greenwood.edu",
		"address": "2 College Rd",
		"domain":  "greenwood.edu",
	})
	if status != fiber.StatusBadRequest {
		t.Errorf("duplicate domain: expected 400, got %d", status)
	}

	status, parsed = doJSON(t, app, "POST", "/api/institutions", rootToken, map[string]string{
		"name":    "Riverside Academy",
		"email":   "office@riverside.edu",
		"address": "9 River St",
		"domain":  "riverside.edu",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("second institution create failed with status %d: %v", status, parsed)
	}
	riversideID := idOf(t, parsed)

	// ---- Institution admin provisioning ----

	// Anonymous callers cannot create institution admins
	status, _ = doJSON(t, app, "POST", "/api/auth/signup", "", map[string]interface{}{
		"first_name":     "Eve",
		"username":       "eve",
		"email":          "eve@greenwood.edu",
		"password":       "evepass",
		"institution_id": greenwoodID,
	})
	if status != fiber.StatusForbidden {
		t.Errorf("anonymous admin signup: expected 403, got %d", status)
	}

	status, parsed = doJSON(t, app, "POST", "/api/auth/signup", rootToken, map[string]interface{}{
		"first_name":     "Grace",
		"username":       "grace",
		"email":          "grace@greenwood.edu",
		"password":       "gracepass",
		"institution_id": greenwoodID,
	})
	if status != fiber.StatusCreated {
		t.Fatalf("admin provisioning failed with status %d: %v", status, parsed)
	}
	if dataField(t, parsed)["is_first_login"] != true {
		t.Error("expected freshly provisioned admin to have is_first_login=true")
	}

	status, parsed = doJSON(t, app, "POST", "/api/auth/signup", rootToken, map[string]interface{}{
		"first_name":     "Riley",
		"username":       "riley",
		"email":          "riley@riverside.edu",
		"password":       "rileypass",
		"institution_id": riversideID,
	})
	if status != fiber.StatusCreated {
		t.Fatalf("second admin provisioning failed with status %d: %v", status, parsed)
	}

	// Duplicate email conflicts
	status, _ = doJSON(t, app, "POST", "/api/auth/signup", rootToken, map[string]interface{}{
		"first_name":     "Grace",
		"username":       "grace2",
		"email":          "grace@greenwood.edu",
		"password":       "gracepass",
		"institution_id": greenwoodID,
	})
	if status != fiber.StatusConflict {
		t.Errorf("duplicate email signup: expected 409, got %d", status)
	}

	graceToken := login(t, app, "grace@greenwood.edu", "gracepass")
	rileyToken := login(t, app, "riley@riverside.edu", "rileypass")

	// ---- Role boundaries ----

	// Institution admin cannot reach tenant management
	status, _ = doJSON(t, app, "GET", "/api/institutions", graceToken, nil)
	if status != fiber.StatusForbidden {
		t.Errorf("institution list as tenant admin: expected 403, got %d", status)
	}

	// Superadmin is not bound to a tenant and cannot use roster routes
	status, _ = doJSON(t, app, "GET", "/api/courses", rootToken, nil)
	if status != fiber.StatusForbidden {
		t.Errorf("course list as superadmin: expected 403, got %d", status)
	}

	// Anonymous requests are rejected outright
	status, _ = doJSON(t, app, "GET", "/api/courses", "", nil)
	if status != fiber.StatusUnauthorized {
		t.Errorf("anonymous course list: expected 401, got %d", status)
	}

	status, parsed = doJSON(t, app, "GET", "/api/institutions/my", graceToken, nil)
	if status != fiber.StatusOK {
		t.Fatalf("my institution failed with status %d: %v", status, parsed)
	}
	if uint(dataField(t, parsed)["id"].(float64)) != greenwoodID {
		t.Error("my institution returned the wrong tenant")
	}

	// ---- Roster: teachers and courses ----

	status, parsed = doJSON(t, app, "POST", "/api/teachers", graceToken, map[string]interface{}{
		"name":  "Alan Turing",
		"email": "alan@greenwood.edu",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("teacher create failed with status %d: %v", status, parsed)
	}
	teacherID := idOf(t, parsed)

	status, parsed = doJSON(t, app, "POST", "/api/courses", graceToken, map[string]interface{}{
		"title":       "Computation Theory",
		"description": "Automata and decidability",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("course create failed with status %d: %v", status, parsed)
	}
	courseID := idOf(t, parsed)

	status, parsed = doJSON(t, app, "PATCH", fmt.Sprintf("/api/teachers/%d/assign", teacherID), graceToken, map[string]interface{}{
		"course_id": courseID,
	})
	if status != fiber.StatusOK {
		t.Fatalf("assign failed with status %d: %v", status, parsed)
	}

	// Assigning again is an error
	status, _ = doJSON(t, app, "PATCH", fmt.Sprintf("/api/teachers/%d/assign", teacherID), graceToken, map[string]interface{}{
		"course_id": courseID,
	})
	if status != fiber.StatusBadRequest {
		t.Errorf("duplicate assign: expected 400, got %d", status)
	}

	// Both sides of the edge agree
	var course model.Course
	if err := db.First(&course, courseID).Error; err != nil {
		t.Fatalf("failed to load course: %v", err)
	}
	if course.TeacherID == nil || *course.TeacherID != teacherID {
		t.Error("course does not point back at the assigned teacher")
	}

	// Cross-tenant reads are denied
	status, _ = doJSON(t, app, "GET", fmt.Sprintf("/api/teachers/%d", teacherID), rileyToken, nil)
	if status != fiber.StatusForbidden {
		t.Errorf("cross-tenant teacher read: expected 403, got %d", status)
	}

	// Clearing the assignment through a course update releases the edge
	status, _ = doJSON(t, app, "PUT", fmt.Sprintf("/api/courses/%d", courseID), graceToken, map[string]interface{}{
		"teacher_id": nil,
	})
	if status != fiber.StatusOK {
		t.Errorf("teacher clear via course update: expected 200, got %d", status)
	}
	if err := db.First(&course, courseID).Error; err != nil {
		t.Fatalf("failed to reload course: %v", err)
	}
	if course.TeacherID != nil {
		t.Error("expected course update with null teacher_id to unassign")
	}

	// Cross-tenant course references are denied
	status, _ = doJSON(t, app, "POST", "/api/teachers", rileyToken, map[string]interface{}{
		"name":             "Poacher",
		"email":            "poacher@riverside.edu",
		"assigned_courses": []uint{courseID},
	})
	if status != fiber.StatusForbidden {
		t.Errorf("cross-tenant course claim: expected 403, got %d", status)
	}

	// ---- Roster: students and enrollment ----

	// A course list referencing another tenant's course is rejected and
	// nothing is persisted
	status, _ = doJSON(t, app, "POST", "/api/students", rileyToken, map[string]interface{}{
		"name":             "Infiltrator",
		"email":            "infiltrator@riverside.edu",
		"enrolled_courses": []uint{courseID},
	})
	if status != fiber.StatusForbidden {
		t.Errorf("cross-tenant enrolled_courses on create: expected 403, got %d", status)
	}
	var strays int64
	db.Model(&model.Student{}).Where("email = ?", "infiltrator@riverside.edu").Count(&strays)
	if strays != 0 {
		t.Errorf("expected no student row after rejected create, found %d", strays)
	}

	// Unknown course ids are a 404
	status, _ = doJSON(t, app, "POST", "/api/students", graceToken, map[string]interface{}{
		"name":             "Ghost",
		"email":            "ghost@greenwood.edu",
		"enrolled_courses": []uint{99999},
	})
	if status != fiber.StatusNotFound {
		t.Errorf("missing enrolled_courses id on create: expected 404, got %d", status)
	}

	status, parsed = doJSON(t, app, "POST", "/api/students", graceToken, map[string]interface{}{
		"name":             "Ada Lovelace",
		"email":            "ada@greenwood.edu",
		"enrolled_courses": []uint{courseID},
	})
	if status != fiber.StatusCreated {
		t.Fatalf("student create failed with status %d: %v", status, parsed)
	}
	studentID := idOf(t, parsed)

	// The same guard holds on update: a foreign course in the replacement
	// list leaves the existing enrollment untouched
	status, parsed = doJSON(t, app, "POST", "/api/courses", rileyToken, map[string]interface{}{
		"title":       "River Ecology",
		"description": "Field studies",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("riverside course create failed with status %d: %v", status, parsed)
	}
	riversideCourseID := idOf(t, parsed)

	status, _ = doJSON(t, app, "PUT", fmt.Sprintf("/api/students/%d", studentID), graceToken, map[string]interface{}{
		"enrolled_courses": []uint{riversideCourseID},
	})
	if status != fiber.StatusForbidden {
		t.Errorf("cross-tenant enrolled_courses on update: expected 403, got %d", status)
	}
	var kept int64
	db.Model(&model.Enrollment{}).Where("student_id = ? AND course_id = ?", studentID, courseID).Count(&kept)
	if kept != 1 {
		t.Errorf("expected original enrollment to survive rejected update, found %d rows", kept)
	}

	status, _ = doJSON(t, app, "PUT", fmt.Sprintf("/api/students/%d", studentID), graceToken, map[string]interface{}{
		"enrolled_courses": []uint{99999},
	})
	if status != fiber.StatusNotFound {
		t.Errorf("missing enrolled_courses id on update: expected 404, got %d", status)
	}

	// Enrolling in a course already held is an error
	status, _ = doJSON(t, app, "PATCH", fmt.Sprintf("/api/students/%d/enroll", studentID), graceToken, map[string]interface{}{
		"course_id": courseID,
	})
	if status != fiber.StatusBadRequest {
		t.Errorf("duplicate enroll: expected 400, got %d", status)
	}

	// Unenroll is tolerant and reflects on both sides
	status, _ = doJSON(t, app, "PATCH", fmt.Sprintf("/api/students/%d/unenroll", studentID), graceToken, map[string]interface{}{
		"course_id": courseID,
	})
	if status != fiber.StatusOK {
		t.Errorf("unenroll: expected 200, got %d", status)
	}
	var enrollments int64
	db.Model(&model.Enrollment{}).Where("student_id = ?", studentID).Count(&enrollments)
	if enrollments != 0 {
		t.Errorf("expected no enrollments after unenroll, found %d", enrollments)
	}

	// Re-enroll for the deletion cascade check below
	status, _ = doJSON(t, app, "PATCH", fmt.Sprintf("/api/students/%d/enroll", studentID), graceToken, map[string]interface{}{
		"course_id": courseID,
	})
	if status != fiber.StatusOK {
		t.Errorf("re-enroll: expected 200, got %d", status)
	}

	// Deleting the course removes enrollment rows with it
	status, _ = doJSON(t, app, "DELETE", fmt.Sprintf("/api/courses/%d", courseID), graceToken, nil)
	if status != fiber.StatusOK {
		t.Errorf("course delete: expected 200, got %d", status)
	}
	db.Model(&model.Enrollment{}).Where("course_id = ?", courseID).Count(&enrollments)
	if enrollments != 0 {
		t.Errorf("expected enrollments to cascade with course delete, found %d", enrollments)
	}

	// ---- Institution delete protection ----

	status, _ = doJSON(t, app, "DELETE", fmt.Sprintf("/api/institutions/%d", greenwoodID), rootToken, nil)
	if status != fiber.StatusConflict {
		t.Errorf("non-empty institution delete: expected 409, got %d", status)
	}

	// ---- Password lifecycle ----

	status, _ = doJSON(t, app, "POST", "/api/auth/change-password", graceToken, map[string]string{
		"current_password": "wrong",
		"new_password":     "newgracepass",
	})
	if status != fiber.StatusUnauthorized {
		t.Errorf("change-password with wrong current: expected 401, got %d", status)
	}

	status, _ = doJSON(t, app, "POST", "/api/auth/change-password", graceToken, map[string]string{
		"current_password": "gracepass",
		"new_password":     "newgracepass",
	})
	if status != fiber.StatusOK {
		t.Errorf("change-password: expected 200, got %d", status)
	}

	var grace model.User
	if err := db.Where("email = ?", "grace@greenwood.edu").First(&grace).Error; err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	if grace.IsFirstLogin {
		t.Error("expected is_first_login to clear after password change")
	}

	login(t, app, "grace@greenwood.edu", "newgracepass")

	// ---- Admin management and export ----

	status, parsed = doJSON(t, app, "GET", "/api/auth/admins", rootToken, nil)
	if status != fiber.StatusOK {
		t.Fatalf("admin list failed with status %d: %v", status, parsed)
	}
	if count, ok := parsed["count"].(float64); !ok || count != 2 {
		t.Errorf("expected 2 admins in list, got %v", parsed["count"])
	}

	status, parsed = doJSON(t, app, "GET", "/api/auth/export/admins", rootToken, nil)
	if status != fiber.StatusOK {
		t.Fatalf("admin export failed with status %d: %v", status, parsed)
	}
	records, ok := parsed["data"].([]interface{})
	if !ok || len(records) != 2 {
		t.Fatalf("expected 2 export records, got %v", parsed["data"])
	}
	for _, rec := range records {
		if rec.(map[string]interface{})["password"] == "" {
			t.Error("export record missing password marker")
		}
		if pw := rec.(map[string]interface{})["password"].(string); pw == grace.PasswordHash {
			t.Error("export leaked a password hash")
		}
	}
}
