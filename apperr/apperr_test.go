package apperr

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad input"), fiber.StatusBadRequest},
		{Unauthenticated("who are you"), fiber.StatusUnauthorized},
		{Forbidden("not yours"), fiber.StatusForbidden},
		{NotFound("gone"), fiber.StatusNotFound},
		{Conflict("already there"), fiber.StatusConflict},
		{Internal("broke"), fiber.StatusInternalServerError},
		{fmt.Errorf("plain error"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusCode(tc.err); got != tc.want {
			t.Errorf("StatusCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestStatusCodeUnwraps(t *testing.T) {
	wrapped := fmt.Errorf("loading team: %w", NotFound("Team not found"))
	if got := StatusCode(wrapped); got != fiber.StatusNotFound {
		t.Errorf("StatusCode(wrapped) = %d, want 404", got)
	}
	if !IsKind(wrapped, KindNotFound) {
		t.Error("IsKind failed to unwrap")
	}
}
