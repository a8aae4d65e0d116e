package utils

import (
	"strings"
	"testing"
)

func TestSanitizeEmail(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercase unchanged",
			input:    "user@example.com",
			expected: "user@example.com",
		},
		{
			name:     "uppercase is lowered",
			input:    "User@Example.COM",
			expected: "user@example.com",
		},
		{
			name:     "surrounding whitespace is trimmed",
			input:    " user@example.com\n",
			expected: "user@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeEmail(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeEmail(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestCheckEmailFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{
			name:     "simple address",
			input:    "ann@x.com",
			expected: true,
		},
		{
			name:     "subdomain",
			input:    "ann@mail.school.edu",
			expected: true,
		},
		{
			name:     "missing domain",
			input:    "ann@",
			expected: false,
		},
		{
			name:     "missing at sign",
			input:    "ann.x.com",
			expected: false,
		},
		{
			name:     "missing tld",
			input:    "ann@host",
			expected: false,
		},
		{
			name:     "too long",
			input:    strings.Repeat("a", 250) + "@x.com",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckEmailFormat(tt.input)
			if result != tt.expected {
				t.Errorf("CheckEmailFormat(%q) = %t, want %t", tt.input, result, tt.expected)
			}
		})
	}
}

func TestBlurEmailAddress(t *testing.T) {
	if got := BlurEmailAddress("ann@x.com"); got != "a****@x.com" {
		t.Errorf("unexpected blurred email: %s", got)
	}
	if got := BlurEmailAddress(""); got != "****@**" {
		t.Errorf("unexpected blurred email: %s", got)
	}
}

func TestGenerateOTPCode(t *testing.T) {
	for _, length := range []int{4, 6} {
		code, err := GenerateOTPCode(length)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != length {
			t.Errorf("expected code of length %d, got %q", length, code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Errorf("expected digits only, got %q", code)
			}
		}
	}
}

func TestGetFileExtensionFromContentType(t *testing.T) {
	tests := []struct {
		contentType string
		expected    string
	}{
		{"image/jpeg", ".jpg"},
		{"image/png", ".png"},
		{"image/gif", ".gif"},
		{"image/webp", ".webp"},
		{"application/pdf", ""},
	}

	for _, tt := range tests {
		if got := GetFileExtensionFromContentType(tt.contentType); got != tt.expected {
			t.Errorf("GetFileExtensionFromContentType(%q) = %q, want %q", tt.contentType, got, tt.expected)
		}
	}
}
