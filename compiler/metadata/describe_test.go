package metadata

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeGolden(t *testing.T) {
	g := buildGraph(t, readStorage(t, "testdata/blog.yaml"))
	gold := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	gold.Assert(t, "blog", []byte(g.String()))
}

func TestDescribeInheritance(t *testing.T) {
	g := buildGraph(t, animals(t))
	var b strings.Builder
	require.NoError(t, g.Describe(&b))
	lines := strings.Split(b.String(), "\n")
	assert.Equal(t, "entity Animal table=animals kind=regular inheritance=STI discriminator=Animal", lines[0])
	assert.Contains(t, lines, "entity Dog table=animals kind=entity-child parent=Animal discriminator=Dog")
	assert.Contains(t, lines, "  column type type varchar virtual discriminator")
	assert.Contains(t, lines, "  column breed breed varchar nullable")
}

func TestDescribeTree(t *testing.T) {
	g := buildGraph(t, readStorage(t, "testdata/tree.yaml"))
	out := g.String()
	assert.Contains(t, out, "entity Category table=categories kind=closure tree=closure-table closure=categories_closure\n")
	assert.Contains(t, out, "  column ancestor ancestor integer primary virtual ancestor references=categories.id\n")
	assert.Contains(t, out, "  relation parent many-to-one Category inverse=children owning nullable join=(parent_id)\n")
}
