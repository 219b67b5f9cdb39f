package errors

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrorCategory represents the flat error taxonomy of the builder. Every
// category is fatal; categorization exists for reporting, not recovery.
type ErrorCategory string

const (
	ErrorCategoryEnvironment ErrorCategory = "environment" // container runtime, image pull, volume mounts
	ErrorCategoryResolution  ErrorCategory = "resolution"  // package resolution or install failure
	ErrorCategoryFilesystem  ErrorCategory = "filesystem"  // staging directory, archive writes
	ErrorCategoryValidation  ErrorCategory = "validation"  // manifest or configuration input
	ErrorCategoryNetwork     ErrorCategory = "network"     // registry or index connectivity
	ErrorCategoryUnknown     ErrorCategory = "unknown"
)

type ErrorSeverity string

const (
	ErrorSeverityMedium   ErrorSeverity = "medium"
	ErrorSeverityHigh     ErrorSeverity = "high"
	ErrorSeverityCritical ErrorSeverity = "critical"
)

// BuildError carries the category, step context and underlying cause of a
// failed pipeline step.
type BuildError struct {
	Category   ErrorCategory `json:"category"`
	Severity   ErrorSeverity `json:"severity"`
	Message    string        `json:"message"`
	Cause      error         `json:"-"`
	Step       string        `json:"step,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}

func (e *BuildError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("[%s:%s] %s step: %s", e.Category, e.Severity, e.Step, e.Message)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Severity, e.Message)
}

func (e *BuildError) Unwrap() error {
	return e.Cause
}

func (e *BuildError) IsCritical() bool {
	return e.Severity == ErrorSeverityCritical
}

// GetUserFriendlyMessage returns the message with the suggestion appended.
func (e *BuildError) GetUserFriendlyMessage() string {
	msg := e.Message
	if e.Suggestion != "" {
		msg += "\n\nSuggestion: " + e.Suggestion
	}
	return msg
}

func newError(category ErrorCategory, severity ErrorSeverity, step, message, suggestion string, cause error) *BuildError {
	return &BuildError{
		Category:   category,
		Severity:   severity,
		Message:    message,
		Cause:      cause,
		Step:       step,
		Suggestion: suggestion,
		Timestamp:  time.Now(),
	}
}

// NewEnvironmentError reports a container runtime or build environment
// failure.
func NewEnvironmentError(step, message string, cause error) *BuildError {
	return newError(ErrorCategoryEnvironment, ErrorSeverityCritical, step, message,
		"Check that the container runtime is installed and the build image is reachable", cause)
}

// NewResolutionError reports a package resolution or install failure.
func NewResolutionError(step, message string, cause error) *BuildError {
	return newError(ErrorCategoryResolution, ErrorSeverityHigh, step, message,
		"Check the manifest for unresolvable packages or version conflicts", cause)
}

// NewFilesystemError reports a staging directory or archive write failure.
func NewFilesystemError(step, message string, cause error) *BuildError {
	return newError(ErrorCategoryFilesystem, ErrorSeverityHigh, step, message,
		"Check file paths and permissions", cause)
}

// NewValidationError reports invalid manifest or configuration input.
func NewValidationError(step, message string, cause error) *BuildError {
	return newError(ErrorCategoryValidation, ErrorSeverityCritical, step, message,
		"Check input syntax and format", cause)
}

// NewNetworkError reports a registry or package index connectivity failure.
func NewNetworkError(step, message string, cause error) *BuildError {
	return newError(ErrorCategoryNetwork, ErrorSeverityMedium, step, message,
		"Check network connectivity and retry", cause)
}

// WrapError wraps an error with step context, auto-categorizing from the
// message. BuildErrors pass through unchanged.
func WrapError(err error, step string) *BuildError {
	if err == nil {
		return nil
	}

	var buildErr *BuildError
	if errors.As(err, &buildErr) {
		return buildErr
	}

	return newError(categorizeError(err.Error()), ErrorSeverityHigh, step, err.Error(), "", err)
}

func categorizeError(message string) ErrorCategory {
	msgLower := strings.ToLower(message)

	switch {
	case strings.Contains(msgLower, "executable file not found") ||
		strings.Contains(msgLower, "docker") || strings.Contains(msgLower, "podman") ||
		strings.Contains(msgLower, "pull") || strings.Contains(msgLower, "image"):
		return ErrorCategoryEnvironment
	case strings.Contains(msgLower, "could not find a version") ||
		strings.Contains(msgLower, "no matching distribution") ||
		strings.Contains(msgLower, "resolution"):
		return ErrorCategoryResolution
	case strings.Contains(msgLower, "connection") || strings.Contains(msgLower, "timeout") ||
		strings.Contains(msgLower, "network"):
		return ErrorCategoryNetwork
	case strings.Contains(msgLower, "permission") || strings.Contains(msgLower, "denied") ||
		strings.Contains(msgLower, "file") || strings.Contains(msgLower, "directory") ||
		strings.Contains(msgLower, "no such"):
		return ErrorCategoryFilesystem
	case strings.Contains(msgLower, "invalid") || strings.Contains(msgLower, "parse") ||
		strings.Contains(msgLower, "manifest"):
		return ErrorCategoryValidation
	default:
		return ErrorCategoryUnknown
	}
}

// ExitCode returns the process exit code for err. A failing subprocess's
// own exit code is propagated, not translated; anything else exits 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code > 0 {
			return code
		}
	}

	return 1
}
