package scan_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/tkiley/jobtrail/internal/scan"
)

func TestIsAuthError(t *testing.T) {
	authErr := &scan.AuthError{Message: "authentication failed for user@example.com"}

	if !scan.IsAuthError(authErr) {
		t.Error("expected IsAuthError to be true for AuthError")
	}

	wrapped := fmt.Errorf("scan failed: %w", authErr)
	if !scan.IsAuthError(wrapped) {
		t.Error("expected IsAuthError to be true for wrapped AuthError")
	}

	if scan.IsAuthError(errors.New("connection refused")) {
		t.Error("expected IsAuthError to be false for plain error")
	}

	if scan.IsAuthError(nil) {
		t.Error("expected IsAuthError to be false for nil")
	}
}

func TestAuthErrorMessage(t *testing.T) {
	err := &scan.AuthError{Message: "bad password"}
	want := "auth error: bad password"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
