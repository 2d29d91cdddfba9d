package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/syssam/schemagraph/compiler/load"
)

func TestDeriveIdempotent(t *testing.T) {
	s := readStorage(t, "testdata/blog.yaml")
	require.NoError(t, s.Register(
		&load.Embedded{Target: "User", PropertyName: "address", Type: "Address"},
		&load.Column{Target: "Address", PropertyName: "city", Type: "varchar"},
		&load.Listener{Target: "Address", PropertyName: "Normalize", Kind: load.BeforeInsert},
	))
	b, err := NewBuilder(s)
	require.NoError(t, err)
	g := buildGraph(t, s)
	before := g.String()

	r := &run{Builder: b, g: g, log: zap.NewNop()}
	for _, e := range g.Entities {
		columns, relations := e.Columns, e.Relations
		all := e.AllEmbeddeds
		require.NoError(t, r.derive(e))
		require.NoError(t, r.derive(e))
		assert.Equal(t, columns, e.Columns, e.Name)
		assert.Equal(t, relations, e.Relations, e.Name)
		assert.Equal(t, all, e.AllEmbeddeds, e.Name)
	}
	assert.Equal(t, before, g.String())

	user := entity(t, g, "User")
	assert.Equal(t, []string{"id", "email", "address_city"}, g.ColumnNames(user.Columns))
	assert.Len(t, user.ListenersOf(load.BeforeInsert), 1)
	assert.Contains(t, user.Properties, "address.city")
	assert.Contains(t, user.Properties, "profile")
}
