package schema

import (
	"testing"

	"ariga.io/atlas/sql/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/schemagraph/compiler/load"
)

func usersTable(columns ...*schema.Column) *schema.Table {
	id := schema.NewIntColumn("id", "integer")
	t := schema.NewTable("users").AddColumns(id).SetPrimaryKey(schema.NewPrimaryKey(id))
	return t.AddColumns(columns...)
}

func TestValidateDiff(t *testing.T) {
	email := func(size int, null bool) *schema.Column {
		return schema.NewColumn("email").SetType(&schema.StringType{T: "varchar", Size: size}).SetNull(null)
	}
	tests := []struct {
		name     string
		current  *schema.Schema
		desired  *schema.Schema
		opts     []ValidateOption
		errors   int
		warnings int
		breaking bool
	}{
		{
			name:    "unchanged",
			current: schema.New("public").AddTables(usersTable(email(255, false))),
			desired: schema.New("public").AddTables(usersTable(email(255, false))),
		},
		{
			name:     "drop table",
			current:  schema.New("public").AddTables(usersTable(), schema.NewTable("posts")),
			desired:  schema.New("public").AddTables(usersTable()),
			errors:   1,
			breaking: true,
		},
		{
			name:     "drop table allowed",
			current:  schema.New("public").AddTables(usersTable(), schema.NewTable("posts")),
			desired:  schema.New("public").AddTables(usersTable()),
			opts:     []ValidateOption{AllowDropTable()},
			warnings: 1,
			breaking: true,
		},
		{
			name:     "drop column",
			current:  schema.New("public").AddTables(usersTable(email(255, false))),
			desired:  schema.New("public").AddTables(usersTable()),
			errors:   1,
			breaking: true,
		},
		{
			name:     "drop column allowed",
			current:  schema.New("public").AddTables(usersTable(email(255, false))),
			desired:  schema.New("public").AddTables(usersTable()),
			opts:     []ValidateOption{AllowDropColumn()},
			warnings: 1,
			breaking: true,
		},
		{
			name:     "new not null column",
			current:  schema.New("public").AddTables(usersTable()),
			desired:  schema.New("public").AddTables(usersTable(email(255, false))),
			warnings: 1,
		},
		{
			name:    "new nullable column",
			current: schema.New("public").AddTables(usersTable()),
			desired: schema.New("public").AddTables(usersTable(email(255, true))),
		},
		{
			name:     "null to not null",
			current:  schema.New("public").AddTables(usersTable(email(255, true))),
			desired:  schema.New("public").AddTables(usersTable(email(255, false))),
			errors:   1,
			breaking: true,
		},
		{
			name:     "null to not null allowed",
			current:  schema.New("public").AddTables(usersTable(email(255, true))),
			desired:  schema.New("public").AddTables(usersTable(email(255, false))),
			opts:     []ValidateOption{AllowNullToNotNull()},
			warnings: 1,
			breaking: true,
		},
		{
			name:     "shrink and retype",
			current:  schema.New("public").AddTables(usersTable(email(255, true))),
			desired:  schema.New("public").AddTables(usersTable(email(64, true))),
			warnings: 2,
		},
		{
			name:    "add unique",
			current: schema.New("public").AddTables(usersTable(email(255, true))),
			desired: func() *schema.Schema {
				c := email(255, true)
				return schema.New("public").AddTables(usersTable(c).AddIndexes(schema.NewUniqueIndex("UQ_email").AddColumns(c)))
			}(),
			warnings: 1,
		},
		{
			name: "drop index",
			current: func() *schema.Schema {
				c := email(255, true)
				return schema.New("public").AddTables(usersTable(c).AddIndexes(schema.NewIndex("IDX_email").AddColumns(c)))
			}(),
			desired: schema.New("public").AddTables(usersTable(email(255, true))),
			errors:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ValidateDiff(tt.current, tt.desired, tt.opts...)
			assert.Len(t, r.Errors, tt.errors, r.String())
			assert.Len(t, r.Warnings, tt.warnings, r.String())
			assert.Equal(t, tt.breaking, r.HasBreakingChanges())
		})
	}
}

func TestValidateDiffGraphs(t *testing.T) {
	before, err := Export(blog(t), "public")
	require.NoError(t, err)

	decls, err := load.ReadFile("../../../compiler/metadata/testdata/blog.yaml")
	require.NoError(t, err)
	require.NoError(t, decls.Register(
		&load.Column{Target: "Post", PropertyName: "body", Type: "text"},
	))
	after, err := Export(build(t, decls), "public")
	require.NoError(t, err)

	r := ValidateDiff(before, after)
	assert.False(t, r.HasErrors(), r.String())
	require.Len(t, r.Warnings, 1)
	assert.Equal(t, "posts", r.Warnings[0].Table)
	assert.Equal(t, "body", r.Warnings[0].Column)

	r = ValidateDiff(after, before)
	require.Len(t, r.Errors, 1)
	assert.True(t, r.HasBreakingChanges())
	assert.Contains(t, r.String(), "posts.body: column will be dropped [BREAKING]")
}

func TestValidateTable(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		r := ValidateTable(usersTable())
		assert.False(t, r.HasErrors())
		assert.False(t, r.HasWarnings())
		assert.Equal(t, "No issues found", r.String())
	})

	t.Run("no primary key", func(t *testing.T) {
		r := ValidateTable(schema.NewTable("logs").AddColumns(schema.NewStringColumn("line", "text")))
		require.Len(t, r.Warnings, 1)
		assert.Equal(t, "logs: table has no primary key", r.Warnings[0].Error())
	})

	t.Run("duplicate column", func(t *testing.T) {
		r := ValidateTable(usersTable(schema.NewIntColumn("id", "integer")))
		require.Len(t, r.Errors, 1)
		assert.Equal(t, "users.id: duplicate column name", r.Errors[0].Error())
	})

	t.Run("unsupported type", func(t *testing.T) {
		r := ValidateTable(usersTable(schema.NewColumn("shape").SetType(&schema.UnsupportedType{T: "geometry"})))
		require.Len(t, r.Warnings, 1)
		assert.Contains(t, r.Warnings[0].Message, `"geometry"`)
	})

	t.Run("index on missing column", func(t *testing.T) {
		tb := usersTable()
		tb.AddIndexes(schema.NewIndex("IDX_name").AddColumns(schema.NewStringColumn("name", "varchar")))
		r := ValidateTable(tb)
		require.Len(t, r.Errors, 1)
		assert.Contains(t, r.Errors[0].Message, `"name"`)
	})

	t.Run("duplicate index", func(t *testing.T) {
		tb := usersTable()
		id, _ := tb.Column("id")
		tb.AddIndexes(schema.NewIndex("IDX_id").AddColumns(id), schema.NewIndex("IDX_id").AddColumns(id))
		r := ValidateTable(tb)
		require.Len(t, r.Errors, 1)
		assert.Contains(t, r.Errors[0].Message, "duplicate index name")
	})
}

func TestValidateSchema(t *testing.T) {
	s, err := Export(blog(t), "public")
	require.NoError(t, err)
	r := ValidateSchema(s)
	assert.False(t, r.HasErrors(), r.String())
	assert.False(t, r.HasWarnings(), r.String())

	users := usersTable()
	id, _ := users.Column("id")
	posts := usersTable()
	posts.Name = "posts"
	author := schema.NewIntColumn("author_id", "integer")
	posts.AddColumns(author).AddForeignKeys(
		schema.NewForeignKey("FK_author").AddColumns(author).SetRefTable(users).AddRefColumns(id),
	)
	r = ValidateSchema(schema.New("public").AddTables(posts, usersTable()))
	require.Len(t, r.Errors, 1)
	assert.Equal(t, "posts", r.Errors[0].Table)
	assert.Contains(t, r.Errors[0].Message, "outside the schema")

	r = ValidateSchema(schema.New("public").AddTables(usersTable(), usersTable()))
	require.Len(t, r.Errors, 1)
	assert.Equal(t, "users: duplicate table name", r.Errors[0].Error())
}
