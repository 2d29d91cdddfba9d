package metadata

import (
	"github.com/syssam/schemagraph/compiler/load"
)

// RelationMetadata is a relation between two entities.
type RelationMetadata struct {
	ID           RelationRef
	Entity       EntityRef
	Embedded     EmbeddedRef
	Target       string
	PropertyName string
	PropertyPath string
	Kind         load.RelationKind
	// Type is the name of the related target.
	Type                    string
	GivenInverseSide        string
	InverseSidePropertyPath string
	InverseEntity           EntityRef
	InverseRelation         RelationRef

	Lazy         bool
	Eager        bool
	Nullable     bool
	Primary      bool
	OnDelete     string
	OnUpdate     string
	TreeParent   bool
	TreeChildren bool

	Owning         bool
	OneToOneOwner  bool
	WithJoinColumn bool

	JoinColumns        []ColumnRef
	InverseJoinColumns []ColumnRef
	ForeignKeys        []ForeignKeyRef
	Junction           EntityRef
}

func newRelation(entity EntityRef, embedded EmbeddedRef, d *load.Relation) *RelationMetadata {
	r := &RelationMetadata{
		Entity:           entity,
		Embedded:         embedded,
		Target:           d.Target,
		PropertyName:     d.PropertyName,
		Kind:             d.Kind,
		Type:             d.Type,
		GivenInverseSide: d.InverseSide,
		Lazy:             d.Lazy,
		Eager:            d.Eager,
		Nullable:         !d.Required && !d.Primary,
		Primary:          d.Primary,
		OnDelete:         d.OnDelete,
		OnUpdate:         d.OnUpdate,
		TreeParent:       d.TreeParent,
		TreeChildren:     d.TreeChildren,
	}
	r.setOwning()
	return r
}

// registerForeignKeys attaches foreign keys to the relation. The first key
// holds the join columns, the second one the inverse join columns of a
// junction.
func (r *RelationMetadata) registerForeignKeys(g *Graph, fks ...ForeignKeyRef) {
	r.ForeignKeys = append(r.ForeignKeys, fks...)
	r.JoinColumns, r.InverseJoinColumns = nil, nil
	if len(r.ForeignKeys) > 0 {
		r.JoinColumns = g.ForeignKey(r.ForeignKeys[0]).Columns
	}
	if len(r.ForeignKeys) > 1 {
		r.InverseJoinColumns = g.ForeignKey(r.ForeignKeys[1]).Columns
	}
	r.setOwning()
}

func (r *RelationMetadata) setOwning() {
	r.Owning = r.Kind == load.ManyToOne ||
		(r.Kind == load.ManyToMany || r.Kind == load.OneToOne) && len(r.JoinColumns) > 0
	r.OneToOneOwner = r.Kind == load.OneToOne && r.Owning
	r.WithJoinColumn = r.Kind == load.ManyToOne || r.OneToOneOwner
}

// IsToMany reports if the relation holds a collection.
func (r *RelationMetadata) IsToMany() bool {
	return r.Kind == load.OneToMany || r.Kind == load.ManyToMany
}

// IsSelfReferencing reports if both sides of the relation are the same entity.
func (r *RelationMetadata) IsSelfReferencing() bool {
	return r.Entity == r.InverseEntity
}
