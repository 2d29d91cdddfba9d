package gen

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingConfig is matched by every *ConfigError.
	ErrMissingConfig = errors.New("gen: missing configuration")
	// ErrGenerationFailed is matched by every *GenerationError.
	ErrGenerationFailed = errors.New("gen: code generation failed")
)

// Phase names the step of the generation that failed.
type Phase string

// Generation phases.
const (
	PhaseRender Phase = "render"
	PhaseWrite  Phase = "write"
)

// ConfigError reports an invalid or missing Config field.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

func (e *ConfigError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("gen: %s: %s", e.Option, e.Message)
	}
	return fmt.Sprintf("gen: %s %q: %s", e.Option, fmt.Sprint(e.Value), e.Message)
}

func (e *ConfigError) Is(target error) bool { return target == ErrMissingConfig }

// NewConfigError returns a ConfigError for the given Config field.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Message: message}
}

// GenerationError reports a file that could not be rendered or written.
// File is the path relative to the target directory, or the target
// directory itself.
type GenerationError struct {
	Phase   Phase
	File    string
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	msg := "gen: " + string(e.Phase)
	if e.File != "" {
		msg += " " + e.File
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *GenerationError) Unwrap() error { return e.Cause }

func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }

// NewGenerationError returns a GenerationError.
func NewGenerationError(phase Phase, file, message string, cause error) *GenerationError {
	return &GenerationError{Phase: phase, File: file, Message: message, Cause: cause}
}

// IsConfigError reports whether err is a ConfigError.
func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}

// IsGenerationError reports whether err is a GenerationError.
func IsGenerationError(err error) bool {
	var e *GenerationError
	return errors.As(err, &e)
}
