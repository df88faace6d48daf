package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIsMatchesByKind(t *testing.T) {
	err := Validation("no seats available")
	if !errors.Is(err, ErrValidation) {
		t.Fatal("expected validation error to match ErrValidation")
	}
	if errors.Is(err, ErrPermissionDenied) {
		t.Fatal("validation error must not match ErrPermissionDenied")
	}

	wrapped := fmt.Errorf("register: %w", err)
	if !errors.Is(wrapped, ErrValidation) {
		t.Fatal("expected wrapped error to match ErrValidation")
	}
}

func TestUnauthenticatedSentinel(t *testing.T) {
	err := fmt.Errorf("identify: %w", Wrap(KindUnauthenticated, "invalid or expired token", errors.New("expired")))
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatal("expected wrapped error to match ErrUnauthenticated")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("unique violation")
	err := Wrap(KindValidation, "already registered for this event", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	if err.Error() != "already registered for this event" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"plain", errors.New("boom"), KindInternal},
		{"not found", NotFound("event not found"), KindNotFound},
		{"wrapped permission", fmt.Errorf("x: %w", PermissionDenied("no")), KindPermissionDenied},
		{"unauthenticated", Unauthenticated("login"), KindUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := map[Kind]int{
		KindValidation:       http.StatusBadRequest,
		KindUnauthenticated:  http.StatusUnauthorized,
		KindPermissionDenied: http.StatusForbidden,
		KindNotFound:         http.StatusNotFound,
		KindInternal:         http.StatusInternalServerError,
	}
	for kind, want := range tests {
		if got := kind.HTTPStatus(); got != want {
			t.Fatalf("%s: got %d, want %d", kind, got, want)
		}
	}
}
