package metadata

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("underlying error")
		err := NewSchemaError("User", "email", "invalid column", cause)

		assert.Contains(t, err.Error(), "schemagraph: schema error")
		assert.Contains(t, err.Error(), "entity User")
		assert.Contains(t, err.Error(), "property email")
		assert.Contains(t, err.Error(), "invalid column")
		assert.Contains(t, err.Error(), "underlying error")
	})

	t.Run("Error message with entity only", func(t *testing.T) {
		err := &SchemaError{Entity: "User"}
		assert.Contains(t, err.Error(), "entity User")
		assert.NotContains(t, err.Error(), "property")
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("root cause")
		err := NewSchemaError("User", "", "", cause)

		assert.Equal(t, cause, err.Unwrap())
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("Is matches ErrInvalidSchema", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", NewSchemaError("User", "", "", nil))
		assert.True(t, errors.Is(err, ErrInvalidSchema))
		assert.True(t, IsSchemaError(err))
		assert.False(t, IsSchemaError(errors.New("other")))
	})
}

func TestRelationError(t *testing.T) {
	err := NewRelationError("Post", "author", "Writer", "entity metadata was not found")
	assert.Contains(t, err.Error(), "Post#author")
	assert.Contains(t, err.Error(), "-> Writer")
	assert.Contains(t, err.Error(), "was not found")
	assert.True(t, errors.Is(err, ErrInvalidRelation))
	assert.True(t, IsRelationError(err))
	assert.False(t, IsRelationError(NewSchemaError("", "", "", nil)))
}

func TestJoinColumnError(t *testing.T) {
	t.Run("Two claimants", func(t *testing.T) {
		err := &JoinColumnError{Entity: "Post", Property: "owner", Other: "author", Column: "user_id"}
		assert.Contains(t, err.Error(), `"user_id"`)
		assert.Contains(t, err.Error(), "author and owner")
		assert.True(t, errors.Is(err, ErrDuplicateJoinColumn))
		assert.True(t, IsJoinColumnError(err))
	})

	t.Run("Single claimant", func(t *testing.T) {
		err := &JoinColumnError{Entity: "Post", Property: "owner", Column: "id", Message: "referenced twice"}
		assert.Contains(t, err.Error(), "of owner")
		assert.Contains(t, err.Error(), "referenced twice")
	})
}

func TestConfigError(t *testing.T) {
	t.Run("Error message with value", func(t *testing.T) {
		err := NewConfigError("Dialect", "db2", "unknown dialect")
		assert.Contains(t, err.Error(), "schemagraph: config error")
		assert.Contains(t, err.Error(), "Dialect")
		assert.Contains(t, err.Error(), "db2")
	})

	t.Run("Error message without value", func(t *testing.T) {
		err := NewConfigError("Logger", nil, "logger cannot be nil")
		assert.NotContains(t, err.Error(), "value:")
		assert.True(t, errors.Is(err, ErrMissingConfig))
		assert.True(t, IsConfigError(err))
	})
}
