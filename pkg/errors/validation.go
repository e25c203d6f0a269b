package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateScenarioName validates a scenario name for safety and correctness.
// Scenario names become cache keys, archive ids and output file stems, so
// they are rejected if they could be used for path traversal.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateScenarioName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidScenario, "scenario name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidScenario, "scenario name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidScenario, "scenario name contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidScenario, "scenario name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidatePath validates a file path relative to a scenario directory.
// It prevents path traversal when manifests reference road or bounds files.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidatePositive checks that a named scalar is a finite positive number.
func ValidatePositive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidConfig, "%s must be finite, got %g", name, v)
	}
	if v <= 0 {
		return New(ErrCodeInvalidConfig, "%s must be positive, got %g", name, v)
	}
	return nil
}

// ValidateRatio checks that a named scalar lies in the half-open range (0, 1].
func ValidateRatio(name string, v float64) error {
	if err := ValidatePositive(name, v); err != nil {
		return err
	}
	if v > 1 {
		return New(ErrCodeInvalidConfig, "%s must be at most 1, got %g", name, v)
	}
	return nil
}
