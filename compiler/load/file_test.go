package load

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFile(t *testing.T) {
	s, err := ReadFile(filepath.Join("testdata", "blog.yaml"))
	require.NoError(t, err)
	require.Len(t, s.Tables, 4)
	require.Len(t, s.Columns, 6)
	require.Len(t, s.Relations, 5)
	assert.Equal(t, ManyToMany, s.Relations[3].Kind)
	assert.Equal(t, "posts", s.Relations[3].InverseSide)
	assert.Equal(t, 255, s.Columns[1].Length)
	require.NotNil(t, s.FindJoinTable("Post", "categories"))
	require.Equal(t, Increment, s.FindGenerated("User", "id").Strategy)
}

func TestReadFileMultiDocument(t *testing.T) {
	s, err := ReadFile(filepath.Join("testdata", "tree.yaml"))
	require.NoError(t, err)
	require.Len(t, s.Tables, 1)
	require.Len(t, s.Relations, 2)
	assert.Equal(t, Closure, s.Tables[0].Kind)
	assert.True(t, s.Relations[0].TreeParent)
}

func TestReadFileErrors(t *testing.T) {
	_, err := ReadFile(filepath.Join("testdata", "missing.yaml"))
	require.Error(t, err)

	_, err = ReadFile(filepath.Join("testdata", "invalid.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid.yaml")
}

func TestReadFiles(t *testing.T) {
	s, err := ReadFiles(context.Background(),
		filepath.Join("testdata", "blog.yaml"),
		filepath.Join("testdata", "tree.yaml"),
	)
	require.NoError(t, err)
	require.Len(t, s.Tables, 5)
	assert.Equal(t, "User", s.Tables[0].Target)
	assert.Equal(t, "Category", s.Tables[4].Target)

	_, err = ReadFiles(context.Background(), filepath.Join("testdata", "invalid.yaml"))
	require.Error(t, err)
}

func TestEncodeDecode(t *testing.T) {
	s, err := NewStorage(
		&Table{Target: "User"},
		&Column{Target: "User", PropertyName: "id", Primary: true, Type: "uuid"},
		&Index{Target: "User", Columns: []string{"id"}, Unique: true},
	)
	require.NoError(t, err)
	data, err := s.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), "target: User")

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, s.Columns, got.Columns)
	assert.Equal(t, s.Indices, got.Indices)

	empty, err := Decode(nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Tables)
}
