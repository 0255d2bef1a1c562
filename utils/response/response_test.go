package response

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func doRequest(t *testing.T, handler fiber.Handler) (int, Response) {
	t.Helper()

	app := fiber.New()
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}

	var parsed Response
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("failed to parse body %q: %v", body, err)
	}
	return resp.StatusCode, parsed
}

func TestSuccessEnvelope(t *testing.T) {
	status, parsed := doRequest(t, func(c *fiber.Ctx) error {
		return Success(c, fiber.Map{"id": 1})
	})

	if status != fiber.StatusOK {
		t.Errorf("expected 200, got %d", status)
	}
	if !parsed.Success {
		t.Error("expected success=true")
	}
	if parsed.Error != nil {
		t.Error("expected no error detail")
	}
}

func TestSuccessListIncludesCount(t *testing.T) {
	status, parsed := doRequest(t, func(c *fiber.Ctx) error {
		return SuccessList(c, 2, []string{"a", "b"})
	})

	if status != fiber.StatusOK {
		t.Errorf("expected 200, got %d", status)
	}
	if parsed.Count == nil || *parsed.Count != 2 {
		t.Error("expected count=2 in list envelope")
	}
}

func TestCreatedEnvelope(t *testing.T) {
	status, parsed := doRequest(t, func(c *fiber.Ctx) error {
		return Created(c, "Resource created", fiber.Map{"id": 1})
	})

	if status != fiber.StatusCreated {
		t.Errorf("expected 201, got %d", status)
	}
	if parsed.Message != "Resource created" {
		t.Errorf("unexpected message %q", parsed.Message)
	}
}

func TestErrorEnvelopes(t *testing.T) {
	cases := []struct {
		name       string
		handler    fiber.Handler
		wantStatus int
		wantCode   string
	}{
		{"bad request", func(c *fiber.Ctx) error { return BadRequest(c, "bad input") }, fiber.StatusBadRequest, "BAD_REQUEST"},
		{"unauthorized", func(c *fiber.Ctx) error { return Unauthorized(c, "") }, fiber.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", func(c *fiber.Ctx) error { return Forbidden(c, "Access denied") }, fiber.StatusForbidden, "FORBIDDEN"},
		{"not found", func(c *fiber.Ctx) error { return NotFound(c, "") }, fiber.StatusNotFound, "NOT_FOUND"},
		{"conflict", func(c *fiber.Ctx) error { return Conflict(c, "duplicate") }, fiber.StatusConflict, "CONFLICT"},
		{"too many requests", func(c *fiber.Ctx) error { return TooManyRequests(c, "") }, fiber.StatusTooManyRequests, "TOO_MANY_REQUESTS"},
		{"internal", func(c *fiber.Ctx) error { return InternalServerError(c, "") }, fiber.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, parsed := doRequest(t, tc.handler)
			if status != tc.wantStatus {
				t.Errorf("expected %d, got %d", tc.wantStatus, status)
			}
			if parsed.Success {
				t.Error("expected success=false")
			}
			if parsed.Error == nil || parsed.Error.Code != tc.wantCode {
				t.Errorf("expected error code %s, got %+v", tc.wantCode, parsed.Error)
			}
		})
	}
}
