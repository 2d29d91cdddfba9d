package metadata

import (
	"reflect"

	"github.com/syssam/schemagraph/compiler/load"
)

// EntityMetadata is one resolved schema node. Own* lists hold what the
// entity declares itself; the unprefixed lists and the fields below them
// are derived by the builder and include the embedded trees.
type EntityMetadata struct {
	ID                 EntityRef
	Name               string
	Type               reflect.Type `msgpack:"-"`
	TableName          string
	GivenTableName     string
	TableKind          load.TableKind
	InheritancePattern load.InheritancePattern
	TreeKind           load.TreeKind
	ClosureTableName   string
	DiscriminatorValue string
	InheritanceTree    []string
	Comment            string

	Parent           EntityRef
	Children         []EntityRef
	ClosureJunction  EntityRef
	ClosureOf        EntityRef
	JunctionRelation RelationRef

	OwnColumns     []ColumnRef
	OwnRelations   []RelationRef
	OwnIndices     []IndexRef
	OwnUniques     []UniqueRef
	OwnListeners   []ListenerRef
	Embeddeds      []EmbeddedRef
	AllEmbeddeds   []EmbeddedRef
	Checks         []CheckRef
	Exclusions     []ExclusionRef
	ForeignKeys    []ForeignKeyRef
	RelationIDs    []RelationIDRef
	RelationCounts []RelationCountRef

	Columns         []ColumnRef
	Relations       []RelationRef
	Indices         []IndexRef
	Uniques         []UniqueRef
	Listeners       []ListenerRef
	ListenersByKind map[load.ListenerKind][]ListenerRef `msgpack:"-"`

	EagerRelations           []RelationRef
	LazyRelations            []RelationRef
	OneToOneRelations        []RelationRef
	OwnerOneToOneRelations   []RelationRef
	OneToManyRelations       []RelationRef
	ManyToOneRelations       []RelationRef
	ManyToManyRelations      []RelationRef
	OwnerManyToManyRelations []RelationRef
	RelationsWithJoinColumns []RelationRef
	TreeParentRelation       RelationRef
	TreeChildrenRelation     RelationRef
	HasNonNullableRelations  bool

	PrimaryColumns          []ColumnRef
	NonVirtualColumns       []ColumnRef
	GeneratedColumns        []ColumnRef
	AncestorColumns         []ColumnRef
	DescendantColumns       []ColumnRef
	HasMultiplePrimaryKeys  bool
	HasUUIDGeneratedColumns bool
	CreateDateColumn        ColumnRef
	UpdateDateColumn        ColumnRef
	DeleteDateColumn        ColumnRef
	VersionColumn           ColumnRef
	DiscriminatorColumn     ColumnRef
	TreeLevelColumn         ColumnRef
	NestedSetLeftColumn     ColumnRef
	NestedSetRightColumn    ColumnRef
	MaterializedPathColumn  ColumnRef

	// Properties and ListenersByKind are rebuilt when a snapshot is decoded.
	Properties map[string]Property `msgpack:"-"`
}

// Property is an entry of the entity property map. Exactly one of the
// refs is set.
type Property struct {
	Column   ColumnRef   `msgpack:",omitempty"`
	Relation RelationRef `msgpack:",omitempty"`
}

// IsJunction reports if the entity is a synthesized association table.
func (e *EntityMetadata) IsJunction() bool {
	return e.TableKind == load.Junction || e.TableKind == load.ClosureJunction
}

// IsChild reports if the entity is a single-table inheritance child.
func (e *EntityMetadata) IsChild() bool {
	return e.TableKind == load.EntityChild
}

// ListenersOf returns the listeners of the given lifecycle phase.
func (e *EntityMetadata) ListenersOf(kind load.ListenerKind) []ListenerRef {
	return e.ListenersByKind[kind]
}

// ColumnByProperty returns the column with the given property path, or nil.
func (g *Graph) ColumnByProperty(e *EntityMetadata, path string) *ColumnMetadata {
	for _, ref := range e.Columns {
		if c := g.Column(ref); c.PropertyPath == path {
			return c
		}
	}
	return nil
}

// ColumnByName returns the column with the given database name, or nil.
func (g *Graph) ColumnByName(e *EntityMetadata, name string) *ColumnMetadata {
	for _, ref := range e.Columns {
		if c := g.Column(ref); c.DatabaseName == name {
			return c
		}
	}
	return nil
}

// RelationByProperty returns the relation with the given property path, or nil.
func (g *Graph) RelationByProperty(e *EntityMetadata, path string) *RelationMetadata {
	for _, ref := range e.Relations {
		if r := g.Relation(ref); r.PropertyPath == path {
			return r
		}
	}
	return nil
}

func (g *Graph) ownColumnByProperty(e *EntityMetadata, property string) ColumnRef {
	for _, ref := range e.OwnColumns {
		if g.Column(ref).PropertyName == property {
			return ref
		}
	}
	return 0
}

func (g *Graph) ownRelationByProperty(e *EntityMetadata, property string) RelationRef {
	for _, ref := range e.OwnRelations {
		if g.Relation(ref).PropertyName == property {
			return ref
		}
	}
	return 0
}
