package metadata

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidSchema indicates a declaration that cannot be resolved into a node.
	ErrInvalidSchema = errors.New("schemagraph: invalid schema")
	// ErrInvalidRelation indicates a relation whose target or inverse cannot be resolved.
	ErrInvalidRelation = errors.New("schemagraph: invalid relation")
	// ErrDuplicateJoinColumn indicates two relations claiming the same join column.
	ErrDuplicateJoinColumn = errors.New("schemagraph: duplicate join column")
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("schemagraph: missing configuration")
	// ErrBuildInProgress is returned when Build is called on a builder that is
	// already building.
	ErrBuildInProgress = errors.New("schemagraph: build already in progress")
)

// SchemaError represents a declaration error on an entity.
type SchemaError struct {
	Entity   string // Entity name
	Property string // Property path (if applicable)
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("schemagraph: schema error")
	if e.Entity != "" {
		b.WriteString(" on entity ")
		b.WriteString(e.Entity)
	}
	if e.Property != "" {
		b.WriteString(" property ")
		b.WriteString(e.Property)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(entity, property, message string, cause error) *SchemaError {
	return &SchemaError{
		Entity:   entity,
		Property: property,
		Message:  message,
		Cause:    cause,
	}
}

// RelationError represents a relation resolution error.
type RelationError struct {
	Entity   string // Owning entity
	Property string // Relation property path
	Target   string // Related target
	Message  string
}

// Error implements the error interface.
func (e *RelationError) Error() string {
	var b strings.Builder
	b.WriteString("schemagraph: relation error")
	if e.Entity != "" {
		fmt.Fprintf(&b, " on %s#%s", e.Entity, e.Property)
	}
	if e.Target != "" {
		b.WriteString(" -> ")
		b.WriteString(e.Target)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for RelationError.
func (e *RelationError) Is(target error) bool {
	return target == ErrInvalidRelation
}

// NewRelationError creates a new RelationError.
func NewRelationError(entity, property, target, message string) *RelationError {
	return &RelationError{
		Entity:   entity,
		Property: property,
		Target:   target,
		Message:  message,
	}
}

// JoinColumnError represents a join column claimed twice on one entity.
type JoinColumnError struct {
	Entity   string
	Property string // Relation being resolved
	Other    string // Relation or declaration already holding the column
	Column   string
	Message  string
}

// Error implements the error interface.
func (e *JoinColumnError) Error() string {
	msg := fmt.Sprintf("schemagraph: join column %q on entity %s", e.Column, e.Entity)
	if e.Other != "" {
		msg += fmt.Sprintf(" is claimed by both %s and %s", e.Other, e.Property)
	} else {
		msg += fmt.Sprintf(" of %s", e.Property)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether the target matches the sentinel error for JoinColumnError.
func (e *JoinColumnError) Is(target error) bool {
	return target == ErrDuplicateJoinColumn
}

// ConfigError represents a builder configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("schemagraph: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("schemagraph: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// IsSchemaError reports if the error is a SchemaError.
func IsSchemaError(err error) bool {
	var e *SchemaError
	return errors.As(err, &e)
}

// IsRelationError reports if the error is a RelationError.
func IsRelationError(err error) bool {
	var e *RelationError
	return errors.As(err, &e)
}

// IsJoinColumnError reports if the error is a JoinColumnError.
func IsJoinColumnError(err error) bool {
	var e *JoinColumnError
	return errors.As(err, &e)
}

// IsConfigError reports if the error is a ConfigError.
func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}
