package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/schemagraph/compiler/load"
	"github.com/syssam/schemagraph/dialect"
	"github.com/syssam/schemagraph/naming"
)

func constraintDecls(t *testing.T, extra ...any) *load.Storage {
	t.Helper()
	decls := []any{
		&load.Table{Target: "User"},
		&load.Column{Target: "User", PropertyName: "id", Type: "integer", Primary: true},
		&load.Column{Target: "User", PropertyName: "email", Type: "varchar", Nullable: true},
		&load.Column{Target: "User", PropertyName: "nick", Type: "varchar"},
		&load.Unique{Target: "User", Columns: []string{"email"}},
		&load.Index{Target: "User", Columns: []string{"nick"}, Unique: true},
		&load.Check{Target: "User", Expression: "length(nick) > 0"},
		&load.Exclusion{Target: "User", Expression: "USING gist (nick WITH =)"},
		&load.Table{Target: "Profile"},
		&load.Column{Target: "Profile", PropertyName: "id", Type: "integer", Primary: true},
		&load.Relation{Target: "Profile", PropertyName: "user", Kind: load.OneToOne, Type: "User"},
		&load.JoinColumn{Target: "Profile", PropertyName: "user"},
		&load.Table{Target: "Post"},
		&load.Column{Target: "Post", PropertyName: "id", Type: "integer", Primary: true},
		&load.Relation{Target: "Post", PropertyName: "author", Kind: load.ManyToOne, Type: "User"},
	}
	return newStorage(t, append(decls, extra...)...)
}

type constraint struct {
	name    string
	columns []string
	unique  bool
	where   string
}

func indices(g *Graph, e *EntityMetadata) []constraint {
	var out []constraint
	for _, ref := range e.Indices {
		idx := g.Index(ref)
		out = append(out, constraint{name: idx.Name, columns: g.ColumnNames(idx.Columns), unique: idx.Unique, where: idx.Where})
	}
	return out
}

func uniques(g *Graph, e *EntityMetadata) []constraint {
	var out []constraint
	for _, ref := range e.Uniques {
		u := g.Unique(ref)
		out = append(out, constraint{name: u.Name, columns: g.ColumnNames(u.Columns), unique: true})
	}
	return out
}

// autoIndexed is a dialect whose database indexes foreign keys itself.
type autoIndexed struct {
	*dialect.Dialect
}

func (d autoIndexed) Support(mode dialect.Mode) bool {
	return (d.Mode() | dialect.AutoIndexesForeignKeys).Support(mode)
}

func TestConstraintsByDialect(t *testing.T) {
	var n naming.Default
	cols := func(c ...string) []string { return c }
	tests := []struct {
		name        string
		autoIndex   bool
		dialect     string
		userIdx     []constraint
		userUniq    []constraint
		profileIdx  []constraint
		profileUniq []constraint
		postIdx     []constraint
		exclusions  int
	}{
		{
			dialect:     dialect.Postgres,
			userIdx:     []constraint{{n.IndexName("users", cols("nick"), ""), cols("nick"), true, ""}},
			userUniq:    []constraint{{n.UniqueConstraintName("users", cols("email")), cols("email"), true, ""}},
			profileUniq: []constraint{{n.RelationConstraintName("profiles", cols("user_id"), ""), cols("user_id"), true, ""}},
			exclusions:  1,
		},
		{
			dialect: dialect.MySQL,
			userIdx: []constraint{
				{n.IndexName("users", cols("nick"), ""), cols("nick"), true, ""},
				{n.IndexName("users", cols("email"), ""), cols("email"), true, ""},
			},
			profileIdx: []constraint{{n.RelationConstraintName("profiles", cols("user_id"), ""), cols("user_id"), true, ""}},
		},
		{
			dialect: dialect.SQLServer,
			userIdx: []constraint{
				{n.IndexName("users", cols("nick"), ""), cols("nick"), true, ""},
				{n.IndexName("users", cols("email"), "[email] IS NOT NULL"), cols("email"), true, "[email] IS NOT NULL"},
			},
			profileIdx: []constraint{{
				n.RelationConstraintName("profiles", cols("user_id"), "[user_id] IS NOT NULL"),
				cols("user_id"), true, "[user_id] IS NOT NULL",
			}},
		},
		{
			dialect: dialect.Cockroach,
			userUniq: []constraint{
				{n.UniqueConstraintName("users", cols("nick")), cols("nick"), true, ""},
				{n.UniqueConstraintName("users", cols("email")), cols("email"), true, ""},
			},
			profileIdx:  []constraint{{n.IndexName("profiles", cols("user_id"), ""), cols("user_id"), false, ""}},
			profileUniq: []constraint{{n.RelationConstraintName("profiles", cols("user_id"), ""), cols("user_id"), true, ""}},
			postIdx:     []constraint{{n.IndexName("posts", cols("author_id"), ""), cols("author_id"), false, ""}},
		},
		{
			name:      "cockroachdb auto-indexed",
			autoIndex: true,
			dialect:   dialect.Cockroach,
			userUniq: []constraint{
				{n.UniqueConstraintName("users", cols("nick")), cols("nick"), true, ""},
				{n.UniqueConstraintName("users", cols("email")), cols("email"), true, ""},
			},
			profileUniq: []constraint{{n.RelationConstraintName("profiles", cols("user_id"), ""), cols("user_id"), true, ""}},
		},
	}
	for _, tt := range tests {
		name := tt.name
		if name == "" {
			name = tt.dialect
		}
		t.Run(name, func(t *testing.T) {
			opt := WithDialectName(tt.dialect)
			if tt.autoIndex {
				d, err := dialect.Lookup(tt.dialect)
				require.NoError(t, err)
				opt = WithDialect(autoIndexed{d})
			}
			g := buildGraph(t, constraintDecls(t), opt)
			assert.Equal(t, tt.dialect, g.Dialect)
			user, profile, post := entity(t, g, "User"), entity(t, g, "Profile"), entity(t, g, "Post")
			assert.Equal(t, tt.userIdx, indices(g, user))
			assert.Equal(t, tt.userUniq, uniques(g, user))
			assert.Equal(t, tt.profileIdx, indices(g, profile))
			assert.Equal(t, tt.profileUniq, uniques(g, profile))
			assert.Equal(t, tt.postIdx, indices(g, post))
			assert.Len(t, user.Exclusions, tt.exclusions)
			require.Len(t, user.Checks, 1)
			assert.Equal(t, n.CheckConstraintName("users", "length(nick) > 0"), g.Check(user.Checks[0]).Name)
		})
	}
}

func TestConstraintNames(t *testing.T) {
	s := newStorage(t,
		&load.Table{Target: "User"},
		&load.Column{Target: "User", PropertyName: "id", Type: "integer", Primary: true},
		&load.Column{Target: "User", PropertyName: "email", Type: "varchar"},
		&load.Column{Target: "User", PropertyName: "active", Type: "boolean"},
		&load.Index{Target: "User", Name: "idx_user_email", Columns: []string{"email"}},
		&load.Index{Target: "User", Columns: []string{"email"}, Where: "active"},
		&load.Unique{Target: "User", Name: "uq_user_email", Columns: []string{"email", "active"}},
		&load.Check{Target: "User", Name: "chk_email", Expression: "email <> ''"},
		&load.Exclusion{Target: "User", Name: "xcl_email", Expression: "USING gist (email WITH =)"},
	)
	g := buildGraph(t, s)
	user := entity(t, g, "User")
	require.Len(t, user.Indices, 2)
	assert.Equal(t, "idx_user_email", g.Index(user.Indices[0]).Name)
	filtered := g.Index(user.Indices[1])
	assert.Equal(t, "active", filtered.Where)
	assert.Equal(t, naming.Default{}.IndexName("users", []string{"email"}, "active"), filtered.Name)
	assert.NotEqual(t, naming.Default{}.IndexName("users", []string{"email"}, ""), filtered.Name)
	assert.Equal(t, "uq_user_email", g.Unique(user.Uniques[0]).Name)
	assert.Equal(t, []string{"email", "active"}, g.ColumnNames(g.Unique(user.Uniques[0]).Columns))
	assert.Equal(t, "chk_email", g.Check(user.Checks[0]).Name)
	assert.Equal(t, "xcl_email", g.Exclusion(user.Exclusions[0]).Name)
}

func TestConstraintRelationColumns(t *testing.T) {
	g := buildGraph(t, constraintDecls(t,
		&load.Index{Target: "Post", Columns: []string{"author", "id"}},
	))
	post := entity(t, g, "Post")
	require.Len(t, post.Indices, 1)
	assert.Equal(t, []string{"author_id", "id"}, g.ColumnNames(g.Index(post.Indices[0]).Columns))
}

func TestConstraintUnknownColumn(t *testing.T) {
	tests := []struct {
		name string
		decl any
	}{
		{"index", &load.Index{Target: "User", Columns: []string{"missing"}}},
		{"unique", &load.Unique{Target: "User", Columns: []string{"missing"}}},
		{"inverse relation", &load.Index{Target: "User", Columns: []string{"profile"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decls := constraintDecls(t, tt.decl)
			if tt.name == "inverse relation" {
				require.NoError(t, decls.Register(
					&load.Relation{Target: "User", PropertyName: "profile", Kind: load.OneToOne, Type: "Profile", InverseSide: "user"},
				))
			}
			err := buildError(t, decls)
			var serr *SchemaError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, "User", serr.Entity)
			assert.Contains(t, serr.Message, "constraint column is not declared")
		})
	}
}
