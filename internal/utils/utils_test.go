package utils

import (
	"encoding/base64"
	"testing"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"admin@velum.com", true},
		{" user@example.org ", true},
		{"no-at-sign.com", false},
		{"", false},
		{"a@", false},
	}
	for _, tt := range tests {
		if got := IsValidEmail(tt.email); got != tt.want {
			t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestIsValidUsername(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"admin", true},
		{"jane.doe-01", true},
		{"ab", false},
		{"has space", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidUsername(tt.name); got != tt.want {
			t.Errorf("IsValidUsername(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPasswordProblems(t *testing.T) {
	tests := []struct {
		password string
		problems int
	}{
		{"Admin@123", 0},
		{"short1!", 2},
		{"alllowercase", 3},
		{"NoDigits!!", 1},
		{"", 5},
	}
	for _, tt := range tests {
		got := PasswordProblems(tt.password)
		if len(got) != tt.problems {
			t.Errorf("PasswordProblems(%q) = %v, want %d problems", tt.password, got, tt.problems)
		}
		if IsComplexPassword(tt.password) != (tt.problems == 0) {
			t.Errorf("IsComplexPassword(%q) disagrees with PasswordProblems", tt.password)
		}
	}
}

func TestGenerateSecureToken(t *testing.T) {
	a, err := GenerateSecureToken(32)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := GenerateSecureToken(32)
	if a == b {
		t.Error("tokens should differ")
	}
	raw, err := base64.RawURLEncoding.DecodeString(a)
	if err != nil || len(raw) != 32 {
		t.Errorf("token decodes to %d bytes, err %v", len(raw), err)
	}
	if NewRequestID() == NewRequestID() {
		t.Error("request ids should differ")
	}
}
