package errors

import (
	"fmt"
	"os/exec"
	"strings"
	"testing"
)

func TestBuildError_Error(t *testing.T) {
	err := NewResolutionError("install", "No matching distribution found for nope", nil)

	msg := err.Error()
	if !strings.Contains(msg, "resolution") {
		t.Fatalf("Expected category in message, got: %s", msg)
	}
	if !strings.Contains(msg, "install step") {
		t.Fatalf("Expected step context in message, got: %s", msg)
	}
}

func TestBuildError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := NewFilesystemError("clean", "cannot remove staging", cause)

	if err.Unwrap() != cause {
		t.Fatalf("Expected cause to unwrap")
	}
}

func TestBuildError_UserFriendlyMessage(t *testing.T) {
	err := NewEnvironmentError("provision", "image pull failed", nil)

	msg := err.GetUserFriendlyMessage()
	if !strings.Contains(msg, "Suggestion:") {
		t.Fatalf("Expected suggestion in message, got: %s", msg)
	}
}

func TestWrapError_PassesThroughBuildErrors(t *testing.T) {
	original := NewValidationError("manifest", "bad line", nil)
	wrapped := WrapError(fmt.Errorf("context: %w", original), "install")

	if wrapped != original {
		t.Fatalf("Expected wrapped BuildError to pass through")
	}
}

func TestWrapError_Nil(t *testing.T) {
	if WrapError(nil, "any") != nil {
		t.Fatalf("Expected nil for nil error")
	}
}

func TestWrapError_Categorizes(t *testing.T) {
	tests := []struct {
		message string
		want    ErrorCategory
	}{
		{"failed to pull image busybox", ErrorCategoryEnvironment},
		{"No matching distribution found for nope", ErrorCategoryResolution},
		{"connection refused", ErrorCategoryNetwork},
		{"permission denied on /layer", ErrorCategoryFilesystem},
		{"invalid requirement line", ErrorCategoryValidation},
		{"something inexplicable", ErrorCategoryUnknown},
	}

	for _, tt := range tests {
		err := WrapError(fmt.Errorf("%s", tt.message), "step")
		if err.Category != tt.want {
			t.Errorf("WrapError(%q): expected category %s, got %s", tt.message, tt.want, err.Category)
		}
	}
}

func TestExitCode_PropagatesSubprocessCode(t *testing.T) {
	cmd := exec.Command("sh", "-c", "exit 3")
	runErr := cmd.Run()
	if runErr == nil {
		t.Fatalf("Expected subprocess failure")
	}

	buildErr := NewResolutionError("install", "install failed", fmt.Errorf("install failed: %w", runErr))
	if code := ExitCode(buildErr); code != 3 {
		t.Fatalf("Expected exit code 3, got %d", code)
	}
}

func TestExitCode_Defaults(t *testing.T) {
	if code := ExitCode(nil); code != 0 {
		t.Fatalf("Expected 0 for nil error, got %d", code)
	}
	if code := ExitCode(fmt.Errorf("plain error")); code != 1 {
		t.Fatalf("Expected 1 for plain error, got %d", code)
	}
}
