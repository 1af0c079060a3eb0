package middleware

import (
	"testing"

	"hackmate/models"
)

func TestTokenRoundTrip(t *testing.T) {
	user := &models.User{ID: 42, Email: "dev@example.com", Username: "dev"}

	token, err := GenerateToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	userID, err := ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if userID != 42 {
		t.Errorf("user id = %d, want 42", userID)
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	for _, token := range []string{"", "not.a.token", "eyJhbGciOiJIUzI1NiJ9.e30."} {
		if _, err := ParseToken(token); err == nil {
			t.Errorf("ParseToken(%q) accepted an invalid token", token)
		}
	}
}
