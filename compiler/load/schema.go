// Package load holds the declarations a schema graph is built from.
//
// Declarations are flat records keyed by a target name, the name of the
// declaring type. They are collected in a Storage, either in code or by
// decoding YAML/JSON documents, and filtered by the metadata builder.
package load

import (
	"reflect"
)

// TableKind is the kind of a table declaration.
type TableKind string

// Table kinds.
const (
	Regular         TableKind = "regular"
	Abstract        TableKind = "abstract"
	Closure         TableKind = "closure"
	EntityChild     TableKind = "entity-child"
	View            TableKind = "view"
	Junction        TableKind = "junction"
	ClosureJunction TableKind = "closure-junction"
)

// Materialized reports if tables of this kind produce a schema node.
func (k TableKind) Materialized() bool {
	return k == Regular || k == Closure || k == EntityChild || k == ""
}

// ColumnMode is the role of a column declaration.
type ColumnMode string

// Column modes.
const (
	ModeRegular    ColumnMode = "regular"
	ModeVirtual    ColumnMode = "virtual"
	ModeCreateDate ColumnMode = "create-date"
	ModeUpdateDate ColumnMode = "update-date"
	ModeDeleteDate ColumnMode = "delete-date"
	ModeVersion    ColumnMode = "version"
	ModeTreeLevel  ColumnMode = "tree-level"
)

// RelationKind is the cardinality of a relation.
type RelationKind string

// Relation kinds.
const (
	OneToOne   RelationKind = "one-to-one"
	OneToMany  RelationKind = "one-to-many"
	ManyToOne  RelationKind = "many-to-one"
	ManyToMany RelationKind = "many-to-many"
)

// ListenerKind is the lifecycle phase of a listener.
type ListenerKind string

// Listener kinds.
const (
	AfterLoad    ListenerKind = "after-load"
	BeforeInsert ListenerKind = "before-insert"
	AfterInsert  ListenerKind = "after-insert"
	BeforeUpdate ListenerKind = "before-update"
	AfterUpdate  ListenerKind = "after-update"
	BeforeRemove ListenerKind = "before-remove"
	AfterRemove  ListenerKind = "after-remove"
)

// InheritancePattern is the table inheritance strategy of a root.
type InheritancePattern string

// Inheritance patterns.
const (
	SingleTable InheritancePattern = "STI"
)

// TreeKind is the hierarchy storage strategy of a tree entity.
type TreeKind string

// Tree kinds.
const (
	ClosureTable     TreeKind = "closure-table"
	MaterializedPath TreeKind = "materialized-path"
	NestedSet        TreeKind = "nested-set"
	AdjacencyList    TreeKind = "adjacency-list"
)

// GenerationStrategy is the value generation strategy of a column.
type GenerationStrategy string

// Generation strategies.
const (
	Increment GenerationStrategy = "increment"
	Identity  GenerationStrategy = "identity"
	UUID      GenerationStrategy = "uuid"
	RowID     GenerationStrategy = "rowid"
)

// Table declares a table for a target.
type Table struct {
	Target  string       `json:"target" yaml:"target"`
	Type    reflect.Type `json:"-" yaml:"-"`
	Name    string       `json:"name,omitempty" yaml:"name,omitempty"`
	Kind    TableKind    `json:"kind,omitempty" yaml:"kind,omitempty"`
	Extends string       `json:"extends,omitempty" yaml:"extends,omitempty"`
	Comment string       `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// Column declares a column on a target.
type Column struct {
	Target       string     `json:"target" yaml:"target"`
	PropertyName string     `json:"property" yaml:"property"`
	Mode         ColumnMode `json:"mode,omitempty" yaml:"mode,omitempty"`
	Name         string     `json:"name,omitempty" yaml:"name,omitempty"`
	Type         string     `json:"type,omitempty" yaml:"type,omitempty"`
	Length       int        `json:"length,omitempty" yaml:"length,omitempty"`
	Precision    int        `json:"precision,omitempty" yaml:"precision,omitempty"`
	Scale        int        `json:"scale,omitempty" yaml:"scale,omitempty"`
	Primary      bool       `json:"primary,omitempty" yaml:"primary,omitempty"`
	Nullable     bool       `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Default      any        `json:"default,omitempty" yaml:"default,omitempty"`
	Comment      string     `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// Relation declares a relation from a target to another target.
type Relation struct {
	Target       string       `json:"target" yaml:"target"`
	PropertyName string       `json:"property" yaml:"property"`
	Kind         RelationKind `json:"kind" yaml:"kind"`
	Type         string       `json:"type" yaml:"type"`
	InverseSide  string       `json:"inverse_side,omitempty" yaml:"inverse_side,omitempty"`
	Lazy         bool         `json:"lazy,omitempty" yaml:"lazy,omitempty"`
	Eager        bool         `json:"eager,omitempty" yaml:"eager,omitempty"`
	Required     bool         `json:"required,omitempty" yaml:"required,omitempty"`
	Primary      bool         `json:"primary,omitempty" yaml:"primary,omitempty"`
	OnDelete     string       `json:"on_delete,omitempty" yaml:"on_delete,omitempty"`
	OnUpdate     string       `json:"on_update,omitempty" yaml:"on_update,omitempty"`
	TreeParent   bool         `json:"tree_parent,omitempty" yaml:"tree_parent,omitempty"`
	TreeChildren bool         `json:"tree_children,omitempty" yaml:"tree_children,omitempty"`
}

// Embedded declares a value group embedded into a target.
type Embedded struct {
	Target       string `json:"target" yaml:"target"`
	PropertyName string `json:"property" yaml:"property"`
	Type         string `json:"type" yaml:"type"`
	Prefix       string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	NoPrefix     bool   `json:"no_prefix,omitempty" yaml:"no_prefix,omitempty"`
	Array        bool   `json:"array,omitempty" yaml:"array,omitempty"`
}

// Listener declares a lifecycle callback method on a target.
type Listener struct {
	Target       string       `json:"target" yaml:"target"`
	PropertyName string       `json:"method" yaml:"method"`
	Kind         ListenerKind `json:"kind" yaml:"kind"`
}

// Index declares an index over property paths of a target.
type Index struct {
	Target   string   `json:"target" yaml:"target"`
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	Columns  []string `json:"columns" yaml:"columns"`
	Unique   bool     `json:"unique,omitempty" yaml:"unique,omitempty"`
	Spatial  bool     `json:"spatial,omitempty" yaml:"spatial,omitempty"`
	Fulltext bool     `json:"fulltext,omitempty" yaml:"fulltext,omitempty"`
	Where    string   `json:"where,omitempty" yaml:"where,omitempty"`
}

// Unique declares a unique constraint over property paths of a target.
type Unique struct {
	Target  string   `json:"target" yaml:"target"`
	Name    string   `json:"name,omitempty" yaml:"name,omitempty"`
	Columns []string `json:"columns" yaml:"columns"`
}

// Check declares a check constraint on a target.
type Check struct {
	Target     string `json:"target" yaml:"target"`
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	Expression string `json:"expression" yaml:"expression"`
}

// Exclusion declares an exclusion constraint on a target.
type Exclusion struct {
	Target     string `json:"target" yaml:"target"`
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	Expression string `json:"expression" yaml:"expression"`
}

// Generated declares a generated column value.
type Generated struct {
	Target       string             `json:"target" yaml:"target"`
	PropertyName string             `json:"property" yaml:"property"`
	Strategy     GenerationStrategy `json:"strategy" yaml:"strategy"`
}

// JoinColumn declares one local column of a relation's foreign key.
type JoinColumn struct {
	Target           string `json:"target" yaml:"target"`
	PropertyName     string `json:"property" yaml:"property"`
	Name             string `json:"name,omitempty" yaml:"name,omitempty"`
	ReferencedColumn string `json:"referenced_column,omitempty" yaml:"referenced_column,omitempty"`
	Unique           bool   `json:"unique,omitempty" yaml:"unique,omitempty"`
}

// JoinTableColumn names one junction column of a join table.
type JoinTableColumn struct {
	Name             string `json:"name,omitempty" yaml:"name,omitempty"`
	ReferencedColumn string `json:"referenced_column,omitempty" yaml:"referenced_column,omitempty"`
}

// JoinTable declares the owning side of a many-to-many relation.
type JoinTable struct {
	Target             string            `json:"target" yaml:"target"`
	PropertyName       string            `json:"property" yaml:"property"`
	Name               string            `json:"name,omitempty" yaml:"name,omitempty"`
	JoinColumns        []JoinTableColumn `json:"join_columns,omitempty" yaml:"join_columns,omitempty"`
	InverseJoinColumns []JoinTableColumn `json:"inverse_join_columns,omitempty" yaml:"inverse_join_columns,omitempty"`
}

// Inheritance declares the inheritance pattern of a root target.
type Inheritance struct {
	Target     string             `json:"target" yaml:"target"`
	Pattern    InheritancePattern `json:"pattern" yaml:"pattern"`
	Column     string             `json:"column,omitempty" yaml:"column,omitempty"`
	ColumnType string             `json:"column_type,omitempty" yaml:"column_type,omitempty"`
}

// DiscriminatorValue declares the discriminator value of a target.
type DiscriminatorValue struct {
	Target string `json:"target" yaml:"target"`
	Value  string `json:"value" yaml:"value"`
}

// Tree declares the hierarchy strategy of a target.
type Tree struct {
	Target           string   `json:"target" yaml:"target"`
	Kind             TreeKind `json:"kind" yaml:"kind"`
	ClosureTableName string   `json:"closure_table,omitempty" yaml:"closure_table,omitempty"`
}

// RelationID declares a property holding the ids of a relation.
type RelationID struct {
	Target       string `json:"target" yaml:"target"`
	PropertyName string `json:"property" yaml:"property"`
	Relation     string `json:"relation" yaml:"relation"`
	Alias        string `json:"alias,omitempty" yaml:"alias,omitempty"`
}

// RelationCount declares a property holding the count of a relation.
type RelationCount struct {
	Target       string `json:"target" yaml:"target"`
	PropertyName string `json:"property" yaml:"property"`
	Relation     string `json:"relation" yaml:"relation"`
	Alias        string `json:"alias,omitempty" yaml:"alias,omitempty"`
}
