package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Unauthorized("who"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{Conflict("dup"), http.StatusConflict},
		{Internal(errors.New("boom"), "failed"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := tt.err.Kind.Status(); got != tt.want {
			t.Errorf("%s: expected status %d, got %d", tt.err.Kind, tt.want, got)
		}
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("loading comment: %w", NotFound("Comment not found"))

	if KindOf(err) != KindNotFound {
		t.Errorf("Expected not_found, got %s", KindOf(err))
	}
	if !Is(err, KindNotFound) {
		t.Error("Is should match wrapped kind")
	}
	if KindOf(errors.New("plain")) != KindInternal {
		t.Error("Untagged errors should be internal")
	}
	if Is(nil, KindInternal) {
		t.Error("nil should not match any kind")
	}
}

func TestInternalUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal(cause, "failed to load post")

	if !errors.Is(err, cause) {
		t.Error("Internal should unwrap to its cause")
	}
	if err.Message != "failed to load post" {
		t.Errorf("Unexpected message %q", err.Message)
	}
}
