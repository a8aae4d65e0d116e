package pwhash

import (
	"strings"
	"testing"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}

	match, err := ComparePasswordWithHash(hash, "correct horse battery staple")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !match {
		t.Error("expected password to match its own hash")
	}

	match, err = ComparePasswordWithHash(hash, "wrong password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match {
		t.Error("expected wrong password to not match")
	}
}

func TestHashIsSalted(t *testing.T) {
	h1, err := HashPassword("pw123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h2, err := HashPassword("pw123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h1 == h2 {
		t.Error("expected different salts to produce different hashes")
	}
}

func TestCompareWithMalformedHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{
			name: "empty string",
			hash: "",
		},
		{
			name: "not argon2id",
			hash: "$bcrypt$v=19$m=65536,t=4,p=2$c2FsdA$aGFzaA",
		},
		{
			name: "missing segments",
			hash: "$argon2id$v=19$m=65536,t=4,p=2",
		},
		{
			name: "bad salt encoding",
			hash: "$argon2id$v=19$m=65536,t=4,p=2$!!!!$aGFzaA",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ComparePasswordWithHash(tt.hash, "pw"); err == nil {
				t.Error("expected error for malformed hash")
			}
		})
	}
}
