package metadata

import (
	"github.com/syssam/schemagraph/compiler/load"
)

// IndexMetadata is a table index. Declared indices name their columns by
// property path; synthesized ones carry column refs directly.
type IndexMetadata struct {
	ID           IndexRef
	Entity       EntityRef
	Embedded     EmbeddedRef
	Target       string
	GivenName    string
	Name         string
	GivenColumns []string
	Columns      []ColumnRef
	Unique       bool
	Spatial      bool
	Fulltext     bool
	Where        string
	// FilterNulls restricts a unique index to rows where all its columns
	// are set, when any of them is nullable.
	FilterNulls bool
	Synthesized bool
}

// UniqueMetadata is a unique constraint.
type UniqueMetadata struct {
	ID           UniqueRef
	Entity       EntityRef
	Embedded     EmbeddedRef
	Target       string
	GivenName    string
	Name         string
	GivenColumns []string
	Columns      []ColumnRef
	Synthesized  bool
}

// CheckMetadata is a check constraint.
type CheckMetadata struct {
	ID         CheckRef
	Entity     EntityRef
	Target     string
	GivenName  string
	Name       string
	Expression string
}

// ExclusionMetadata is an exclusion constraint.
type ExclusionMetadata struct {
	ID         ExclusionRef
	Entity     EntityRef
	Target     string
	GivenName  string
	Name       string
	Expression string
}

// ForeignKeyMetadata is a foreign key from columns of Entity to columns
// of ReferencedEntity, in pairs.
type ForeignKeyMetadata struct {
	ID                ForeignKeyRef
	Entity            EntityRef
	ReferencedEntity  EntityRef
	Relation          RelationRef
	Name              string
	Columns           []ColumnRef
	ReferencedColumns []ColumnRef
	OnDelete          string
	OnUpdate          string
}

// ListenerMetadata is a lifecycle callback.
type ListenerMetadata struct {
	ID       ListenerRef
	Entity   EntityRef
	Embedded EmbeddedRef
	Target   string
	Method   string
	Kind     load.ListenerKind
}

// RelationIDMetadata projects the ids of a relation onto a property.
type RelationIDMetadata struct {
	ID           RelationIDRef
	Entity       EntityRef
	Embedded     EmbeddedRef
	Target       string
	PropertyName string
	RelationName string
	Alias        string
	Relation     RelationRef
}

// RelationCountMetadata projects the size of a relation onto a property.
type RelationCountMetadata struct {
	ID           RelationCountRef
	Entity       EntityRef
	Embedded     EmbeddedRef
	Target       string
	PropertyName string
	RelationName string
	Alias        string
	Relation     RelationRef
}
