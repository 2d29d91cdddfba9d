package metadata

import (
	"github.com/syssam/schemagraph/compiler/load"
)

// ClosureType is the role of a closure junction column.
type ClosureType string

// Closure column roles.
const (
	Ancestor   ClosureType = "ancestor"
	Descendant ClosureType = "descendant"
)

// ColumnMetadata maps a property to a table column.
type ColumnMetadata struct {
	ID                          ColumnRef
	Entity                      EntityRef
	Embedded                    EmbeddedRef
	Target                      string
	PropertyName                string
	PropertyPath                string
	GivenDatabaseName           string
	DatabaseName                string
	DatabaseNameWithoutPrefixes string
	Mode                        load.ColumnMode
	Type                        string
	Length                      int
	Precision                   int
	Scale                       int
	Default                     any
	Comment                     string

	Primary            bool
	Nullable           bool
	Generated          bool
	GenerationStrategy load.GenerationStrategy
	Virtual            bool
	Discriminator      bool
	Version            bool
	CreateDate         bool
	UpdateDate         bool
	DeleteDate         bool
	TreeLevel          bool
	NestedSetLeft      bool
	NestedSetRight     bool
	MaterializedPath   bool
	ClosureType        ClosureType

	// ReferencedColumn and Relation are set on join columns.
	ReferencedColumn ColumnRef
	Relation         RelationRef
	// Synthesized marks columns created by the builder, not declared.
	Synthesized bool
}

// newColumn creates column metadata from a declaration.
func newColumn(entity EntityRef, embedded EmbeddedRef, d *load.Column) *ColumnMetadata {
	c := &ColumnMetadata{
		Entity:            entity,
		Embedded:          embedded,
		Target:            d.Target,
		PropertyName:      d.PropertyName,
		GivenDatabaseName: d.Name,
		Mode:              d.Mode,
		Type:              d.Type,
		Length:            d.Length,
		Precision:         d.Precision,
		Scale:             d.Scale,
		Default:           d.Default,
		Comment:           d.Comment,
		Primary:           d.Primary,
		Nullable:          d.Nullable,
	}
	if c.Mode == "" {
		c.Mode = load.ModeRegular
	}
	switch c.Mode {
	case load.ModeVirtual:
		c.Virtual = true
	case load.ModeCreateDate:
		c.CreateDate = true
	case load.ModeUpdateDate:
		c.UpdateDate = true
	case load.ModeDeleteDate:
		c.DeleteDate = true
	case load.ModeVersion:
		c.Version = true
	case load.ModeTreeLevel:
		c.TreeLevel = true
	}
	return c
}

// IsJoinColumn reports if the column holds a foreign key value.
func (c *ColumnMetadata) IsJoinColumn() bool {
	return c.ReferencedColumn != 0
}
