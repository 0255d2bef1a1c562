package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("hash must not equal the plaintext password")
	}

	if err := VerifyPassword(hash, "secret123"); err != nil {
		t.Errorf("expected password to verify, got %v", err)
	}
	if err := VerifyPassword(hash, "wrong-password"); err != ErrPasswordMismatch {
		t.Errorf("expected ErrPasswordMismatch, got %v", err)
	}
}

func TestHashPasswordTooShort(t *testing.T) {
	if _, err := HashPassword("short"); err != ErrPasswordTooShort {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestIsPasswordValid(t *testing.T) {
	cases := []struct {
		password string
		valid    bool
	}{
		{"", false},
		{"12345", false},
		{"123456", true},
		{"a longer passphrase", true},
	}

	for _, tc := range cases {
		if got := IsPasswordValid(tc.password); got != tc.valid {
			t.Errorf("IsPasswordValid(%q) = %v, want %v", tc.password, got, tc.valid)
		}
	}
}
