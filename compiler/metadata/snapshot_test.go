package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/schemagraph/compiler/load"
)

func TestSnapshot(t *testing.T) {
	g := buildGraph(t, readStorage(t, "testdata/blog.yaml"))
	data, err := msgpack.Marshal(g)
	require.NoError(t, err)

	for range 20 {
		again, err := g.MarshalMsgpack()
		require.NoError(t, err)
		require.Equal(t, data, again, "snapshots are deterministic")
	}

	decoded, err := UnmarshalSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, g.String(), decoded.String())
	assert.Equal(t, g.Dialect, decoded.Dialect)
	require.Len(t, decoded.Entities, len(g.Entities))

	post := decoded.EntityByName("Post")
	require.NotNil(t, post)
	rel := decoded.RelationByProperty(post, "categories")
	require.NotNil(t, rel)
	assert.Equal(t, "posts_categories", decoded.Entity(rel.Junction).TableName)
	assert.Equal(t, g.EntityByName("Post").Properties, post.Properties)
	for _, e := range g.Entities {
		d := decoded.EntityByName(e.Name)
		require.NotNil(t, d, e.Name)
		assert.Equal(t, e.Properties, d.Properties, e.Name)
		assert.Equal(t, e.ListenersByKind, d.ListenersByKind, e.Name)
	}

	redone, err := decoded.MarshalMsgpack()
	require.NoError(t, err)
	assert.Equal(t, data, redone)
}

func TestSnapshotLookupMaps(t *testing.T) {
	s := newStorage(t,
		&load.Table{Target: "User"},
		&load.Column{Target: "User", PropertyName: "id", Type: "integer", Primary: true},
		&load.Column{Target: "User", PropertyName: "email", Type: "varchar"},
		&load.Column{Target: "User", PropertyName: "name", Type: "varchar"},
		&load.Column{Target: "User", PropertyName: "age", Type: "integer"},
		&load.Listener{Target: "User", PropertyName: "Hash", Kind: load.BeforeInsert},
		&load.Listener{Target: "User", PropertyName: "Touch", Kind: load.BeforeUpdate},
		&load.Listener{Target: "User", PropertyName: "Load", Kind: load.AfterLoad},
		&load.Embedded{Target: "User", PropertyName: "profile", Type: "Profile"},
		&load.Column{Target: "Profile", PropertyName: "bio", Type: "text"},
		&load.Column{Target: "Profile", PropertyName: "site", Type: "text"},
		&load.Listener{Target: "Profile", PropertyName: "Trim", Kind: load.AfterRemove},
	)
	g := buildGraph(t, s)
	data, err := g.MarshalMsgpack()
	require.NoError(t, err)
	for range 50 {
		again, err := g.MarshalMsgpack()
		require.NoError(t, err)
		require.Equal(t, data, again)
	}

	decoded, err := UnmarshalSnapshot(data)
	require.NoError(t, err)
	user := entity(t, decoded, "User")
	assert.Equal(t, entity(t, g, "User").Properties, user.Properties)
	assert.Equal(t, entity(t, g, "User").ListenersByKind, user.ListenersByKind)
	require.Len(t, user.ListenersOf(load.BeforeInsert), 1)
	assert.Equal(t, "Hash", decoded.Listener(user.ListenersOf(load.BeforeInsert)[0]).Method)
	site := decoded.ColumnByProperty(user, "profile.site")
	require.NotNil(t, site)
	assert.Equal(t, site.ID, user.Properties["profile.site"].Column)
}

func TestSnapshotErrors(t *testing.T) {
	tests := []struct {
		name string
		data func(t *testing.T) []byte
		want string
	}{
		{
			name: "garbage",
			data: func(*testing.T) []byte { return []byte{0xc1} },
			want: "decode snapshot",
		},
		{
			name: "version",
			data: func(t *testing.T) []byte {
				b, err := msgpack.Marshal(map[string]any{"version": SnapshotVersion + 1, "graph": map[string]any{}})
				require.NoError(t, err)
				return b
			},
			want: "unsupported version",
		},
		{
			name: "missing graph",
			data: func(t *testing.T) []byte {
				b, err := msgpack.Marshal(map[string]any{"version": SnapshotVersion})
				require.NoError(t, err)
				return b
			},
			want: "missing graph",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := UnmarshalSnapshot(tt.data(t))
			require.Error(t, err)
			assert.Nil(t, g)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
