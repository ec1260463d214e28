package ff

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig marks every configuration failure of the feature set.
	ErrConfig = errors.New("feature config error")
	// ErrNotFound is returned when a feature function lookup fails.
	ErrNotFound = errors.New("feature function not found")
)

// ConfigError describes a malformed or unusable feature line.
type ConfigError struct {
	Line   int // 1-based index of the feature line, 0 when not tied to one
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	msg := "feature config"
	if e.Line > 0 {
		msg += fmt.Sprintf(" line %d", e.Line)
	}
	if e.Key != "" {
		msg += fmt.Sprintf(" key %q", e.Key)
	}
	return msg + ": " + e.Reason
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// NotFoundError names the feature function that could not be found.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("feature function %q not found", e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
