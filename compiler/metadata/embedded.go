package metadata

// EmbeddedMetadata is a value group embedded into an entity. Embeddeds
// nest; every embedded links to its parent and owning entity by ref.
type EmbeddedMetadata struct {
	ID           EmbeddedRef
	Entity       EntityRef
	Parent       EmbeddedRef
	Target       string
	Type         string
	PropertyName string
	PropertyPath string
	CustomPrefix string
	NoPrefix     bool
	Prefix       string
	Array        bool

	Columns        []ColumnRef
	Relations      []RelationRef
	Listeners      []ListenerRef
	Indices        []IndexRef
	Uniques        []UniqueRef
	RelationIDs    []RelationIDRef
	RelationCounts []RelationCountRef
	Embeddeds      []EmbeddedRef

	ColumnsFromTree        []ColumnRef
	RelationsFromTree      []RelationRef
	ListenersFromTree      []ListenerRef
	IndicesFromTree        []IndexRef
	UniquesFromTree        []UniqueRef
	RelationIDsFromTree    []RelationIDRef
	RelationCountsFromTree []RelationCountRef
}

// embeddedPath returns the embedded chain from the outermost embedded to e.
func (g *Graph) embeddedPath(ref EmbeddedRef) []*EmbeddedMetadata {
	var path []*EmbeddedMetadata
	for e := g.Embedded(ref); e != nil; e = g.Embedded(e.Parent) {
		path = append([]*EmbeddedMetadata{e}, path...)
	}
	return path
}

// prefixes returns the column prefixes of the embedded chain ending at ref.
func (g *Graph) prefixes(ref EmbeddedRef) []string {
	var out []string
	for _, e := range g.embeddedPath(ref) {
		out = append(out, e.Prefix)
	}
	return out
}

// subtree returns ref and all its nested embeddeds in pre-order.
func (g *Graph) subtree(ref EmbeddedRef) []*EmbeddedMetadata {
	var (
		out   []*EmbeddedMetadata
		stack = []EmbeddedRef{ref}
	)
	for len(stack) > 0 {
		e := g.Embedded(stack[len(stack)-1])
		stack = stack[:len(stack)-1]
		out = append(out, e)
		for i := len(e.Embeddeds) - 1; i >= 0; i-- {
			stack = append(stack, e.Embeddeds[i])
		}
	}
	return out
}
