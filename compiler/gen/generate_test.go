package gen

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/schemagraph/compiler/load"
	"github.com/syssam/schemagraph/compiler/metadata"
)

const pkg = "example.com/app/schema"

func build(t *testing.T, decls metadata.Declarations) *metadata.Graph {
	t.Helper()
	b, err := metadata.NewBuilder(decls)
	require.NoError(t, err)
	g, err := b.Build(context.Background())
	require.NoError(t, err)
	return g
}

func blog(t *testing.T) *metadata.Graph {
	t.Helper()
	s, err := load.ReadFile("../metadata/testdata/blog.yaml")
	require.NoError(t, err)
	return build(t, s)
}

func config(t *testing.T, opts ...Option) *Config {
	t.Helper()
	cfg, err := NewConfig(append([]Option{WithPackage(pkg), WithTarget(t.TempDir())}, opts...)...)
	require.NoError(t, err)
	return cfg
}

func render(t *testing.T, files []*File) map[string]string {
	t.Helper()
	out := make(map[string]string, len(files))
	for _, f := range files {
		var buf bytes.Buffer
		require.NoError(t, f.Render(&buf), f.Path)
		out[f.Path] = buf.String()
	}
	return out
}

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig(WithPackage(pkg), WithTarget("out"))
	require.NoError(t, err)
	assert.Equal(t, pkg, cfg.Package)
	assert.Equal(t, "out", cfg.Target)
	assert.NotEmpty(t, cfg.Header)
	assert.Positive(t, cfg.Workers)

	tests := []struct {
		name string
		opts []Option
	}{
		{"missing package", []Option{WithTarget("out")}},
		{"missing target", []Option{WithPackage(pkg)}},
		{"empty package", []Option{WithPackage(""), WithTarget("out")}},
		{"invalid package", []Option{WithPackage("example.com/my-schema"), WithTarget("out")}},
		{"empty target", []Option{WithPackage(pkg), WithTarget("")}},
		{"zero workers", []Option{WithPackage(pkg), WithTarget("out"), WithWorkers(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfig(tt.opts...)
			require.Error(t, err)
			assert.True(t, IsConfigError(err))
			assert.ErrorIs(t, err, ErrMissingConfig)
		})
	}
}

func TestFiles(t *testing.T) {
	files, err := Files(blog(t), config(t, WithHeader("Code generated by test.")))
	require.NoError(t, err)
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	assert.Equal(t, []string{
		"user/user.go",
		"profile/profile.go",
		"post/post.go",
		"category/category.go",
		"postscategories/postscategories.go",
		"tables.go",
	}, paths)

	out := render(t, files)
	user := out["user/user.go"]
	assert.Contains(t, user, "// Code generated by test.")
	assert.Contains(t, user, "package user")
	assert.Regexp(t, `Label\s+= "User"`, user)
	assert.Regexp(t, `Table\s+= "users"`, user)
	assert.Regexp(t, `FieldID\s+= "id"`, user)
	assert.Regexp(t, `FieldEmail\s+= "email"`, user)
	assert.Regexp(t, `EdgeProfile\s+= "profile"`, user)
	assert.Regexp(t, `ProfileTable\s+= "profiles"`, user)
	assert.Regexp(t, `ProfileColumn\s+= "user_id"`, user)
	assert.Regexp(t, `ProfileInverseTable\s+= "profiles"`, user)
	assert.Contains(t, user, "var Columns = []string{FieldID, FieldEmail}")
	assert.Contains(t, user, `var PrimaryKey = []string{"id"}`)
	assert.Contains(t, user, "func ValidColumn(column string) bool")

	post := out["post/post.go"]
	assert.Regexp(t, `FieldAuthorID\s+= "author_id"`, post)
	assert.Regexp(t, `AuthorTable\s+= "posts"`, post)
	assert.Regexp(t, `AuthorColumn\s+= "author_id"`, post)
	assert.Regexp(t, `AuthorInverseTable\s+= "users"`, post)
	assert.Regexp(t, `CategoriesTable\s+= "posts_categories"`, post)
	assert.Contains(t, post, `CategoriesPrimaryKey = []string{"post_id", "category_id"}`)

	junction := out["postscategories/postscategories.go"]
	assert.Contains(t, junction, "package postscategories")
	assert.Regexp(t, `Table\s+= "posts_categories"`, junction)
	assert.Regexp(t, `FieldPostID\s+= "post_id"`, junction)

	tables := out["tables.go"]
	assert.Contains(t, tables, "package schema")
	assert.Contains(t, tables, `"example.com/app/schema/user"`)
	assert.Contains(t, tables, "user.Table")
	assert.Contains(t, tables, `Junctions = []string{"posts_categories"}`)
}

func TestFilesInheritance(t *testing.T) {
	s, err := load.NewStorage(
		&load.Table{Target: "Animal"},
		&load.Inheritance{Target: "Animal", Pattern: load.SingleTable},
		&load.Table{Target: "Dog", Kind: load.EntityChild, Extends: "Animal"},
		&load.DiscriminatorValue{Target: "Dog", Value: "canine"},
		&load.Column{Target: "Animal", PropertyName: "id", Type: "integer", Primary: true},
		&load.Column{Target: "Dog", PropertyName: "breed", Type: "varchar"},
	)
	require.NoError(t, err)
	files, err := Files(build(t, s), config(t))
	require.NoError(t, err)
	require.Len(t, files, 2)
	out := render(t, files)
	animal := out["animal/animal.go"]
	assert.Regexp(t, `FieldBreed\s+= "breed"`, animal)
	assert.Regexp(t, `FieldType\s+= "type"`, animal)
	assert.Regexp(t, `TypeDog\s+= "canine"`, animal)
}

func TestFilesPackageNames(t *testing.T) {
	t.Run("keyword", func(t *testing.T) {
		s, err := load.NewStorage(
			&load.Table{Target: "Type"},
			&load.Column{Target: "Type", PropertyName: "id", Type: "integer", Primary: true},
		)
		require.NoError(t, err)
		files, err := Files(build(t, s), config(t))
		require.NoError(t, err)
		assert.Equal(t, "typetable/typetable.go", files[0].Path)
	})

	t.Run("collision", func(t *testing.T) {
		s, err := load.NewStorage(
			&load.Table{Target: "LineItem"},
			&load.Column{Target: "LineItem", PropertyName: "id", Type: "integer", Primary: true},
			&load.Table{Target: "Line_Item", Name: "legacy_line_items"},
			&load.Column{Target: "Line_Item", PropertyName: "id", Type: "integer", Primary: true},
		)
		require.NoError(t, err)
		_, err = Files(build(t, s), config(t))
		require.Error(t, err)
		assert.True(t, IsGenerationError(err))
		assert.ErrorIs(t, err, ErrGenerationFailed)
	})
}

func TestGenerate(t *testing.T) {
	cfg := config(t, WithWorkers(2))
	require.NoError(t, Generate(context.Background(), blog(t), cfg))
	for _, p := range []string{"tables.go", "user/user.go", "postscategories/postscategories.go"} {
		_, err := os.Stat(filepath.Join(cfg.Target, p))
		assert.NoError(t, err, p)
	}

	err := Generate(context.Background(), blog(t), &Config{})
	assert.True(t, IsConfigError(err))
}

func TestWriter(t *testing.T) {
	files, err := Files(blog(t), config(t))
	require.NoError(t, err)
	w := NewWriter(t.TempDir()).WithWorkers(1)
	require.NoError(t, w.Write(context.Background(), files))
	m := w.Metrics()
	assert.Equal(t, len(files), m.FilesGenerated)
	assert.Positive(t, m.TotalBytes)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = NewWriter(t.TempDir()).Write(ctx, files)
	assert.ErrorIs(t, err, context.Canceled)
}
