package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/learnnest/learnnest-api/model"
)

// withUser seeds the locals the same way Optional does after a
// successful token check.
func withUser(user *model.User) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", user.ID)
		c.Locals("user_role", user.Role)
		c.Locals("user", user)
		return c.Next()
	}
}

func okHandler(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusOK)
}

func TestRequiredRejectsAnonymous(t *testing.T) {
	m := &AuthMiddleware{}

	app := fiber.New()
	app.Get("/protected", m.Required(), okHandler)

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}

func TestRequiredPassesAuthenticated(t *testing.T) {
	m := &AuthMiddleware{}
	user := &model.User{Role: model.RoleInstitutionAdmin}
	user.ID = 7

	app := fiber.New()
	app.Get("/protected", withUser(user), m.Required(), okHandler)

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestRequireRole(t *testing.T) {
	m := &AuthMiddleware{}

	superadmin := &model.User{Role: model.RoleSuperadmin}
	superadmin.ID = 1
	tenantAdmin := &model.User{Role: model.RoleInstitutionAdmin}
	tenantAdmin.ID = 2

	cases := []struct {
		name       string
		user       *model.User
		roles      []string
		wantStatus int
	}{
		{"superadmin allowed", superadmin, []string{model.RoleSuperadmin}, fiber.StatusOK},
		{"wrong role rejected", tenantAdmin, []string{model.RoleSuperadmin}, fiber.StatusForbidden},
		{"anonymous rejected", nil, []string{model.RoleSuperadmin}, fiber.StatusUnauthorized},
		{"multi-role match", tenantAdmin, []string{model.RoleSuperadmin, model.RoleInstitutionAdmin}, fiber.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			if tc.user != nil {
				app.Get("/protected", withUser(tc.user), m.RequireRole(tc.roles...), okHandler)
			} else {
				app.Get("/protected", m.RequireRole(tc.roles...), okHandler)
			}

			resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
			if err != nil {
				t.Fatalf("app.Test failed: %v", err)
			}
			if resp.StatusCode != tc.wantStatus {
				t.Errorf("expected %d, got %d", tc.wantStatus, resp.StatusCode)
			}
		})
	}
}

func TestGetUserAccessors(t *testing.T) {
	institutionID := uint(3)
	user := &model.User{Role: model.RoleInstitutionAdmin, InstitutionID: &institutionID}
	user.ID = 9

	app := fiber.New()
	app.Get("/inspect", withUser(user), func(c *fiber.Ctx) error {
		u, ok := GetUser(c)
		if !ok || u.ID != 9 {
			t.Error("GetUser did not return the seeded user")
		}
		id, ok := GetUserID(c)
		if !ok || id != 9 {
			t.Error("GetUserID did not return the seeded id")
		}
		role, ok := GetUserRole(c)
		if !ok || role != model.RoleInstitutionAdmin {
			t.Error("GetUserRole did not return the seeded role")
		}
		instID, ok := GetInstitutionID(c)
		if !ok || instID != 3 {
			t.Error("GetInstitutionID did not return the seeded binding")
		}
		return c.SendStatus(fiber.StatusOK)
	})

	app.Get("/anonymous", func(c *fiber.Ctx) error {
		if _, ok := GetUser(c); ok {
			t.Error("GetUser should report anonymous")
		}
		if _, ok := GetInstitutionID(c); ok {
			t.Error("GetInstitutionID should report unbound")
		}
		return c.SendStatus(fiber.StatusOK)
	})

	if _, err := app.Test(httptest.NewRequest("GET", "/inspect", nil)); err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if _, err := app.Test(httptest.NewRequest("GET", "/anonymous", nil)); err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
}
