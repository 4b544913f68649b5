package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestStatusCodes(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad input"), fiber.StatusBadRequest},
		{NotFound("missing"), fiber.StatusNotFound},
		{Forbidden("nope"), fiber.StatusForbidden},
		{Conflict("taken"), fiber.StatusConflict},
		{Upstream("flaky", errors.New("timeout")), fiber.StatusBadGateway},
		{New(KindInternal, "boom"), fiber.StatusInternalServerError},
		{errors.New("plain"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusCode(tc.err); got != tc.want {
			t.Errorf("StatusCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	inner := NotFound("order not found")
	wrapped := fmt.Errorf("loading order: %w", inner)
	if KindOf(wrapped) != KindNotFound {
		t.Errorf("KindOf should see through fmt.Errorf wrapping")
	}
	if !errors.Is(wrapped, inner) {
		t.Errorf("errors.Is should match the sentinel")
	}
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Upstream("carrier unavailable", cause)
	if !errors.Is(err, cause) {
		t.Errorf("wrapped cause should be reachable via errors.Is")
	}
}
