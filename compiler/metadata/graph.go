package metadata

// Refs address nodes of a Graph. The zero value of every ref means "none".
type (
	EntityRef        int
	ColumnRef        int
	RelationRef      int
	EmbeddedRef      int
	IndexRef         int
	UniqueRef        int
	CheckRef         int
	ExclusionRef     int
	ForeignKeyRef    int
	ListenerRef      int
	RelationIDRef    int
	RelationCountRef int
)

// Graph is a resolved schema graph. All nodes are stored in the arena
// slices below and link to each other by ref; a node's ref is its index
// in its slice plus one. Entities are kept in node collection order.
//
// A Graph returned by Builder.Build must be treated as read-only.
type Graph struct {
	Dialect        string
	Entities       []*EntityMetadata
	Columns        []*ColumnMetadata
	Relations      []*RelationMetadata
	Embeddeds      []*EmbeddedMetadata
	Indices        []*IndexMetadata
	Uniques        []*UniqueMetadata
	Checks         []*CheckMetadata
	Exclusions     []*ExclusionMetadata
	ForeignKeys    []*ForeignKeyMetadata
	Listeners      []*ListenerMetadata
	RelationIDs    []*RelationIDMetadata
	RelationCounts []*RelationCountMetadata
	LazyAccessors  []*LazyAccessor
}

func at[T any](s []*T, ref int) *T {
	if ref <= 0 || ref > len(s) {
		return nil
	}
	return s[ref-1]
}

// Entity returns the entity of the given ref, or nil.
func (g *Graph) Entity(ref EntityRef) *EntityMetadata { return at(g.Entities, int(ref)) }

// Column returns the column of the given ref, or nil.
func (g *Graph) Column(ref ColumnRef) *ColumnMetadata { return at(g.Columns, int(ref)) }

// Relation returns the relation of the given ref, or nil.
func (g *Graph) Relation(ref RelationRef) *RelationMetadata { return at(g.Relations, int(ref)) }

// Embedded returns the embedded of the given ref, or nil.
func (g *Graph) Embedded(ref EmbeddedRef) *EmbeddedMetadata { return at(g.Embeddeds, int(ref)) }

// Index returns the index of the given ref, or nil.
func (g *Graph) Index(ref IndexRef) *IndexMetadata { return at(g.Indices, int(ref)) }

// Unique returns the unique constraint of the given ref, or nil.
func (g *Graph) Unique(ref UniqueRef) *UniqueMetadata { return at(g.Uniques, int(ref)) }

// Check returns the check constraint of the given ref, or nil.
func (g *Graph) Check(ref CheckRef) *CheckMetadata { return at(g.Checks, int(ref)) }

// Exclusion returns the exclusion constraint of the given ref, or nil.
func (g *Graph) Exclusion(ref ExclusionRef) *ExclusionMetadata { return at(g.Exclusions, int(ref)) }

// ForeignKey returns the foreign key of the given ref, or nil.
func (g *Graph) ForeignKey(ref ForeignKeyRef) *ForeignKeyMetadata { return at(g.ForeignKeys, int(ref)) }

// Listener returns the listener of the given ref, or nil.
func (g *Graph) Listener(ref ListenerRef) *ListenerMetadata { return at(g.Listeners, int(ref)) }

// RelationID returns the relation id of the given ref, or nil.
func (g *Graph) RelationID(ref RelationIDRef) *RelationIDMetadata { return at(g.RelationIDs, int(ref)) }

// RelationCount returns the relation count of the given ref, or nil.
func (g *Graph) RelationCount(ref RelationCountRef) *RelationCountMetadata {
	return at(g.RelationCounts, int(ref))
}

// EntityByName returns the first entity with the given name, or nil.
func (g *Graph) EntityByName(name string) *EntityMetadata {
	for _, e := range g.Entities {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// EntityByTable returns the first non-child entity stored in the given table, or nil.
func (g *Graph) EntityByTable(table string) *EntityMetadata {
	for _, e := range g.Entities {
		if e.TableName == table && e.Parent == 0 {
			return e
		}
	}
	return nil
}

// ColumnsOf resolves column refs.
func (g *Graph) ColumnsOf(refs []ColumnRef) []*ColumnMetadata {
	cols := make([]*ColumnMetadata, len(refs))
	for i, r := range refs {
		cols[i] = g.Column(r)
	}
	return cols
}

// RelationsOf resolves relation refs.
func (g *Graph) RelationsOf(refs []RelationRef) []*RelationMetadata {
	rels := make([]*RelationMetadata, len(refs))
	for i, r := range refs {
		rels[i] = g.Relation(r)
	}
	return rels
}

// ColumnNames returns the database names of the given columns.
func (g *Graph) ColumnNames(refs []ColumnRef) []string {
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = g.Column(r).DatabaseName
	}
	return names
}

// Tables returns the entities that own a table: every entity except
// single-table inheritance children.
func (g *Graph) Tables() []*EntityMetadata {
	var tables []*EntityMetadata
	for _, e := range g.Entities {
		if e.Parent == 0 {
			tables = append(tables, e)
		}
	}
	return tables
}

func (g *Graph) addEntity(e *EntityMetadata) *EntityMetadata {
	g.Entities = append(g.Entities, e)
	e.ID = EntityRef(len(g.Entities))
	return e
}

func (g *Graph) addColumn(c *ColumnMetadata) *ColumnMetadata {
	g.Columns = append(g.Columns, c)
	c.ID = ColumnRef(len(g.Columns))
	return c
}

func (g *Graph) addRelation(r *RelationMetadata) *RelationMetadata {
	g.Relations = append(g.Relations, r)
	r.ID = RelationRef(len(g.Relations))
	return r
}

func (g *Graph) addEmbedded(e *EmbeddedMetadata) *EmbeddedMetadata {
	g.Embeddeds = append(g.Embeddeds, e)
	e.ID = EmbeddedRef(len(g.Embeddeds))
	return e
}

func (g *Graph) addIndex(i *IndexMetadata) *IndexMetadata {
	g.Indices = append(g.Indices, i)
	i.ID = IndexRef(len(g.Indices))
	return i
}

func (g *Graph) addUnique(u *UniqueMetadata) *UniqueMetadata {
	g.Uniques = append(g.Uniques, u)
	u.ID = UniqueRef(len(g.Uniques))
	return u
}

func (g *Graph) addCheck(c *CheckMetadata) *CheckMetadata {
	g.Checks = append(g.Checks, c)
	c.ID = CheckRef(len(g.Checks))
	return c
}

func (g *Graph) addExclusion(e *ExclusionMetadata) *ExclusionMetadata {
	g.Exclusions = append(g.Exclusions, e)
	e.ID = ExclusionRef(len(g.Exclusions))
	return e
}

func (g *Graph) addForeignKey(fk *ForeignKeyMetadata) *ForeignKeyMetadata {
	g.ForeignKeys = append(g.ForeignKeys, fk)
	fk.ID = ForeignKeyRef(len(g.ForeignKeys))
	return fk
}

func (g *Graph) addListener(l *ListenerMetadata) *ListenerMetadata {
	g.Listeners = append(g.Listeners, l)
	l.ID = ListenerRef(len(g.Listeners))
	return l
}

func (g *Graph) addRelationID(r *RelationIDMetadata) *RelationIDMetadata {
	g.RelationIDs = append(g.RelationIDs, r)
	r.ID = RelationIDRef(len(g.RelationIDs))
	return r
}

func (g *Graph) addRelationCount(r *RelationCountMetadata) *RelationCountMetadata {
	g.RelationCounts = append(g.RelationCounts, r)
	r.ID = RelationCountRef(len(g.RelationCounts))
	return r
}
