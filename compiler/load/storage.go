package load

import (
	"fmt"
	"reflect"
	"slices"
)

// Storage collects declarations in registration order.
type Storage struct {
	Tables              []*Table              `json:"tables,omitempty" yaml:"tables,omitempty"`
	Columns             []*Column             `json:"columns,omitempty" yaml:"columns,omitempty"`
	Relations           []*Relation           `json:"relations,omitempty" yaml:"relations,omitempty"`
	Embeddeds           []*Embedded           `json:"embeddeds,omitempty" yaml:"embeddeds,omitempty"`
	Listeners           []*Listener           `json:"listeners,omitempty" yaml:"listeners,omitempty"`
	Indices             []*Index              `json:"indices,omitempty" yaml:"indices,omitempty"`
	Uniques             []*Unique             `json:"uniques,omitempty" yaml:"uniques,omitempty"`
	Checks              []*Check              `json:"checks,omitempty" yaml:"checks,omitempty"`
	Exclusions          []*Exclusion          `json:"exclusions,omitempty" yaml:"exclusions,omitempty"`
	Generations         []*Generated          `json:"generations,omitempty" yaml:"generations,omitempty"`
	JoinColumns         []*JoinColumn         `json:"join_columns,omitempty" yaml:"join_columns,omitempty"`
	JoinTables          []*JoinTable          `json:"join_tables,omitempty" yaml:"join_tables,omitempty"`
	Inheritances        []*Inheritance        `json:"inheritances,omitempty" yaml:"inheritances,omitempty"`
	DiscriminatorValues []*DiscriminatorValue `json:"discriminator_values,omitempty" yaml:"discriminator_values,omitempty"`
	Trees               []*Tree               `json:"trees,omitempty" yaml:"trees,omitempty"`
	RelationIDs         []*RelationID         `json:"relation_ids,omitempty" yaml:"relation_ids,omitempty"`
	RelationCounts      []*RelationCount      `json:"relation_counts,omitempty" yaml:"relation_counts,omitempty"`
}

// NewStorage returns a storage holding the given declarations.
func NewStorage(decls ...any) (*Storage, error) {
	s := &Storage{}
	if err := s.Register(decls...); err != nil {
		return nil, err
	}
	return s, nil
}

// Register appends declarations to the storage. Each argument must be a
// pointer to one of the declaration types of this package.
func (s *Storage) Register(decls ...any) error {
	for _, d := range decls {
		switch d := d.(type) {
		case *Table:
			if d.Target == "" && d.Type != nil {
				d.Target = indirect(d.Type).Name()
			}
			if d.Target == "" {
				return fmt.Errorf("load: table declaration without target")
			}
			s.Tables = append(s.Tables, d)
		case *Column:
			s.Columns = append(s.Columns, d)
		case *Relation:
			s.Relations = append(s.Relations, d)
		case *Embedded:
			s.Embeddeds = append(s.Embeddeds, d)
		case *Listener:
			s.Listeners = append(s.Listeners, d)
		case *Index:
			s.Indices = append(s.Indices, d)
		case *Unique:
			s.Uniques = append(s.Uniques, d)
		case *Check:
			s.Checks = append(s.Checks, d)
		case *Exclusion:
			s.Exclusions = append(s.Exclusions, d)
		case *Generated:
			s.Generations = append(s.Generations, d)
		case *JoinColumn:
			s.JoinColumns = append(s.JoinColumns, d)
		case *JoinTable:
			s.JoinTables = append(s.JoinTables, d)
		case *Inheritance:
			s.Inheritances = append(s.Inheritances, d)
		case *DiscriminatorValue:
			s.DiscriminatorValues = append(s.DiscriminatorValues, d)
		case *Tree:
			s.Trees = append(s.Trees, d)
		case *RelationID:
			s.RelationIDs = append(s.RelationIDs, d)
		case *RelationCount:
			s.RelationCounts = append(s.RelationCounts, d)
		default:
			return fmt.Errorf("load: unexpected declaration type %T", d)
		}
	}
	return nil
}

// Merge appends all declarations of o to s, keeping their order.
func (s *Storage) Merge(o *Storage) {
	s.Tables = append(s.Tables, o.Tables...)
	s.Columns = append(s.Columns, o.Columns...)
	s.Relations = append(s.Relations, o.Relations...)
	s.Embeddeds = append(s.Embeddeds, o.Embeddeds...)
	s.Listeners = append(s.Listeners, o.Listeners...)
	s.Indices = append(s.Indices, o.Indices...)
	s.Uniques = append(s.Uniques, o.Uniques...)
	s.Checks = append(s.Checks, o.Checks...)
	s.Exclusions = append(s.Exclusions, o.Exclusions...)
	s.Generations = append(s.Generations, o.Generations...)
	s.JoinColumns = append(s.JoinColumns, o.JoinColumns...)
	s.JoinTables = append(s.JoinTables, o.JoinTables...)
	s.Inheritances = append(s.Inheritances, o.Inheritances...)
	s.DiscriminatorValues = append(s.DiscriminatorValues, o.DiscriminatorValues...)
	s.Trees = append(s.Trees, o.Trees...)
	s.RelationIDs = append(s.RelationIDs, o.RelationIDs...)
	s.RelationCounts = append(s.RelationCounts, o.RelationCounts...)
}

// FilterTables returns the table declarations of the given targets in
// registration order. No targets selects all tables.
func (s *Storage) FilterTables(targets ...string) []*Table {
	if len(targets) == 0 {
		return slices.Clone(s.Tables)
	}
	return filter(s.Tables, func(t *Table) bool { return slices.Contains(targets, t.Target) })
}

// FindTable returns the table declaration of a target.
func (s *Storage) FindTable(target string) *Table {
	for _, t := range s.Tables {
		if t.Target == target {
			return t
		}
	}
	return nil
}

// FilterColumns returns the columns declared on the targets of tree.
// A property declared on several targets resolves to the declaration of
// the target nearest to tree[0], at the position it was first declared.
func (s *Storage) FilterColumns(tree []string) []*Column {
	return byTree(tree, s.Columns, func(c *Column) (string, string) { return c.Target, c.PropertyName })
}

// FilterRelations returns the relations declared on the targets of tree,
// without duplicate properties.
func (s *Storage) FilterRelations(tree []string) []*Relation {
	return byTree(tree, s.Relations, func(r *Relation) (string, string) { return r.Target, r.PropertyName })
}

// FilterEmbeddeds returns the embeddeds declared on the targets of tree,
// without duplicate properties.
func (s *Storage) FilterEmbeddeds(tree []string) []*Embedded {
	return byTree(tree, s.Embeddeds, func(e *Embedded) (string, string) { return e.Target, e.PropertyName })
}

// FilterRelationIDs returns the relation ids declared on the targets of tree,
// without duplicate properties.
func (s *Storage) FilterRelationIDs(tree []string) []*RelationID {
	return byTree(tree, s.RelationIDs, func(r *RelationID) (string, string) { return r.Target, r.PropertyName })
}

// FilterRelationCounts returns the relation counts declared on the targets of
// tree, without duplicate properties.
func (s *Storage) FilterRelationCounts(tree []string) []*RelationCount {
	return byTree(tree, s.RelationCounts, func(r *RelationCount) (string, string) { return r.Target, r.PropertyName })
}

// FilterListeners returns the listeners declared on the targets of tree.
func (s *Storage) FilterListeners(tree []string) []*Listener {
	return filter(s.Listeners, func(l *Listener) bool { return slices.Contains(tree, l.Target) })
}

// FilterIndices returns the indices declared on the targets of tree.
func (s *Storage) FilterIndices(tree []string) []*Index {
	return filter(s.Indices, func(i *Index) bool { return slices.Contains(tree, i.Target) })
}

// FilterUniques returns the unique constraints declared on the targets of tree.
func (s *Storage) FilterUniques(tree []string) []*Unique {
	return filter(s.Uniques, func(u *Unique) bool { return slices.Contains(tree, u.Target) })
}

// FilterChecks returns the check constraints declared on the targets of tree.
func (s *Storage) FilterChecks(tree []string) []*Check {
	return filter(s.Checks, func(c *Check) bool { return slices.Contains(tree, c.Target) })
}

// FilterExclusions returns the exclusion constraints declared on the targets of tree.
func (s *Storage) FilterExclusions(tree []string) []*Exclusion {
	return filter(s.Exclusions, func(e *Exclusion) bool { return slices.Contains(tree, e.Target) })
}

// FilterJoinColumns returns the join columns of a relation property declared
// anywhere in the inheritance tree of target.
func (s *Storage) FilterJoinColumns(target, property string) []*JoinColumn {
	tree := s.InheritanceTree(target)
	return filter(s.JoinColumns, func(j *JoinColumn) bool {
		return j.PropertyName == property && slices.Contains(tree, j.Target)
	})
}

// FindJoinTable returns the join table of a relation property declared
// anywhere in the inheritance tree of target.
func (s *Storage) FindJoinTable(target, property string) *JoinTable {
	tree := s.InheritanceTree(target)
	for _, j := range s.JoinTables {
		if j.PropertyName == property && slices.Contains(tree, j.Target) {
			return j
		}
	}
	return nil
}

// FindGenerated returns the generation declaration of a column.
func (s *Storage) FindGenerated(target, property string) *Generated {
	for _, g := range s.Generations {
		if g.Target == target && g.PropertyName == property {
			return g
		}
	}
	return nil
}

// FindInheritance returns the inheritance declaration of target.
func (s *Storage) FindInheritance(target string) *Inheritance {
	for _, i := range s.Inheritances {
		if i.Target == target {
			return i
		}
	}
	return nil
}

// FindDiscriminatorValue returns the discriminator value declaration of target.
func (s *Storage) FindDiscriminatorValue(target string) *DiscriminatorValue {
	for _, d := range s.DiscriminatorValues {
		if d.Target == target {
			return d
		}
	}
	return nil
}

// FindTree returns the tree declaration of target.
func (s *Storage) FindTree(target string) *Tree {
	for _, t := range s.Trees {
		if t.Target == target {
			return t
		}
	}
	return nil
}

// FilterSingleTableChildren returns the entity-child tables that inherit,
// directly or not, from target.
func (s *Storage) FilterSingleTableChildren(target string) []*Table {
	return filter(s.Tables, func(t *Table) bool {
		return t.Kind == EntityChild && s.IsInherited(t.Target, target)
	})
}

// IsInherited reports if child inherits from parent. A target does not
// inherit from itself.
func (s *Storage) IsInherited(child, parent string) bool {
	if child == parent {
		return false
	}
	return slices.Contains(s.InheritanceTree(child), parent)
}

// InheritanceTree returns target followed by its ancestors, nearest first.
// The parent of a table is its Extends target, or the registered table whose
// Go type is embedded anonymously into the table's Go type.
func (s *Storage) InheritanceTree(target string) []string {
	tree := []string{target}
	for cur := target; ; {
		parent := s.parentOf(cur)
		if parent == "" || slices.Contains(tree, parent) {
			return tree
		}
		tree = append(tree, parent)
		cur = parent
	}
}

func (s *Storage) parentOf(target string) string {
	t := s.FindTable(target)
	switch {
	case t == nil:
		return ""
	case t.Extends != "":
		return t.Extends
	case t.Type == nil:
		return ""
	}
	typ := indirect(t.Type)
	if typ.Kind() != reflect.Struct {
		return ""
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !f.Anonymous {
			continue
		}
		ft := indirect(f.Type)
		for _, p := range s.Tables {
			if p.Type != nil && indirect(p.Type) == ft {
				return p.Target
			}
		}
	}
	return ""
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func filter[T any](items []T, keep func(T) bool) []T {
	var out []T
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// byTree returns the items declared on the targets of tree in registration
// order. A property declared more than once keeps the position of its first
// declaration and the declaration of the target nearest to tree[0], the
// most derived one.
func byTree[T any](tree []string, items []T, key func(T) (target, property string)) []T {
	var (
		out []T
		pos = make(map[string]int)
	)
	rank := func(it T) int {
		t, _ := key(it)
		return slices.Index(tree, t)
	}
	for _, it := range items {
		r := rank(it)
		if r < 0 {
			continue
		}
		_, p := key(it)
		if i, ok := pos[p]; ok {
			if r < rank(out[i]) {
				out[i] = it
			}
			continue
		}
		pos[p] = len(out)
		out = append(out, it)
	}
	return out
}
