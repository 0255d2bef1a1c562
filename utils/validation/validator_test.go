package validation

import "testing"

func TestValidateEmail(t *testing.T) {
	cases := []struct {
		email string
		valid bool
	}{
		{"admin@example.com", true},
		{"first.last+tag@sub.example.co", true},
		{"", false},
		{"not-an-email", false},
		{"@example.com", false},
		{"admin@", false},
		{"admin@example", false},
	}

	for _, tc := range cases {
		if got := ValidateEmail(tc.email); got != tc.valid {
			t.Errorf("ValidateEmail(%q) = %v, want %v", tc.email, got, tc.valid)
		}
	}
}

func TestNormalizeDomain(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Greenwood.EDU", "greenwood.edu"},
		{"  spaced.example.org  ", "spaced.example.org"},
		{"already-lower.io", "already-lower.io"},
	}

	for _, tc := range cases {
		if got := NormalizeDomain(tc.in); got != tc.want {
			t.Errorf("NormalizeDomain(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidateDomain(t *testing.T) {
	cases := []struct {
		domain string
		valid  bool
	}{
		{"greenwood.edu", true},
		{"my-school.example.org", true},
		{"school123.io", true},
		{"", false},
		{"UpperCase.edu", false},
		{"has space.edu", false},
		{"under_score.edu", false},
	}

	for _, tc := range cases {
		if got := ValidateDomain(tc.domain); got != tc.valid {
			t.Errorf("ValidateDomain(%q) = %v, want %v", tc.domain, got, tc.valid)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello\x00 world  "); got != "hello world" {
		t.Errorf("SanitizeString = %q, want %q", got, "hello world")
	}
}

func TestValidateStruct(t *testing.T) {
	type payload struct {
		Name  string `validate:"required,min=3"`
		Email string `validate:"required,email"`
	}

	v := NewValidator()

	if err := v.ValidateStruct(payload{Name: "Ada", Email: "ada@example.com"}); err != nil {
		t.Errorf("expected valid struct, got %v", err)
	}
	if err := v.ValidateStruct(payload{Name: "A", Email: "nope"}); err == nil {
		t.Error("expected validation error for invalid struct")
	}
}
