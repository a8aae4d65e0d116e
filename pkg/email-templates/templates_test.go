package emailtemplates

import (
	"strings"
	"testing"
)

func TestResolveTemplate(t *testing.T) {
	tests := []struct {
		name        string
		templateDef string
		contentInfo map[string]string
		expectError bool
		expected    string
	}{
		{
			name:        "simple substitution",
			templateDef: "Hello {{.name}}",
			contentInfo: map[string]string{"name": "Ann"},
			expected:    "Hello Ann",
		},
		{
			name:        "empty template",
			templateDef: "  ",
			contentInfo: map[string]string{},
			expectError: true,
		},
		{
			name:        "broken template",
			templateDef: "Hello {{.name",
			contentInfo: map[string]string{},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := ResolveTemplate(tt.name, tt.templateDef, tt.contentInfo)
			if tt.expectError {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if content != tt.expected {
				t.Errorf("got %q, want %q", content, tt.expected)
			}
		})
	}
}

func TestVerificationEmail(t *testing.T) {
	subject, content, err := VerificationEmail("1234", "abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject != SUBJECT_EMAIL_VERIFICATION {
		t.Errorf("unexpected subject: %s", subject)
	}
	if !strings.Contains(content, "1234") {
		t.Error("expected content to contain the code")
	}
	if !strings.Contains(content, "abc123") {
		t.Error("expected content to contain the account id")
	}
}

func TestPasswordResetEmail(t *testing.T) {
	subject, content, err := PasswordResetEmail("token-xyz", "abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject != SUBJECT_PASSWORD_RESET {
		t.Errorf("unexpected subject: %s", subject)
	}
	if !strings.Contains(content, "token-xyz") || !strings.Contains(content, "abc123") {
		t.Error("expected content to contain the token and the account id")
	}
}

func TestAccountDeletedEmail(t *testing.T) {
	_, content, err := AccountDeletedEmail("Ann")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(content, "Ann") {
		t.Error("expected content to contain the name")
	}
}
