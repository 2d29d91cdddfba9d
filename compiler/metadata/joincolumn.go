package metadata

import (
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/schemagraph/compiler/load"
	"github.com/syssam/schemagraph/dialect"
)

// columnSpec is one declared local column of a foreign key.
type columnSpec struct {
	name       string
	referenced string
	unique     bool
}

// binding pairs a referenced column with the declaration naming its local column.
type binding struct {
	column *ColumnMetadata
	spec   columnSpec
}

// buildJoinColumns creates the foreign keys of owning one-to-one and
// many-to-one relations, with the unique constraint and index each one
// requires on the dialect.
func (r *run) buildJoinColumns() error {
	for _, e := range r.entities(func(e *EntityMetadata) bool { return !e.IsChild() }) {
		for _, ref := range slices.Clone(e.Relations) {
			rel := r.g.Relation(ref)
			if rel.Kind != load.OneToOne && rel.Kind != load.ManyToOne {
				continue
			}
			var specs []columnSpec
			for _, d := range r.decls.FilterJoinColumns(rel.Target, rel.PropertyName) {
				specs = append(specs, columnSpec{name: d.Name, referenced: d.ReferencedColumn, unique: d.Unique})
			}
			fk, unique, err := r.resolveJoinColumns(e, rel, specs)
			if err != nil {
				return err
			}
			if fk == nil {
				continue
			}
			e.ForeignKeys = append(e.ForeignKeys, fk.ID)
			rel.registerForeignKeys(r.g, fk.ID)
			if unique {
				r.addRelationUnique(e, rel, fk.Columns)
			}
			if r.dialect.Support(dialect.ForeignKeyIndices) && !r.dialect.Support(dialect.AutoIndexesForeignKeys) {
				r.addRelationIndex(e, rel, &IndexMetadata{Columns: fk.Columns})
			}
			if err := r.derive(e); err != nil {
				return err
			}
			if err := r.shareJoinColumns(e, rel, fk.Columns); err != nil {
				return err
			}
		}
	}
	return nil
}

// shareJoinColumns adds the join columns of rel to the single-table
// children of e holding rel.
func (r *run) shareJoinColumns(e *EntityMetadata, rel *RelationMetadata, cols []ColumnRef) error {
	if rel.Embedded != 0 {
		return nil
	}
	for _, c := range r.g.Entities {
		if c.Parent != e.ID || !slices.Contains(c.OwnRelations, rel.ID) {
			continue
		}
		for _, col := range cols {
			if !slices.Contains(c.OwnColumns, col) {
				c.OwnColumns = append(c.OwnColumns, col)
			}
		}
		if err := r.derive(c); err != nil {
			return err
		}
	}
	return nil
}

// resolveJoinColumns creates the foreign key of rel. It returns nil when
// rel does not own a join column. The returned flag reports if the local
// columns must be unique.
func (r *run) resolveJoinColumns(e *EntityMetadata, rel *RelationMetadata, specs []columnSpec) (*ForeignKeyMetadata, bool, error) {
	if len(specs) == 0 && rel.Kind == load.OneToOne {
		return nil, false, nil
	}
	inv := r.g.Entity(rel.InverseEntity)
	bound, err := r.bindReferences(e, rel, inv, specs)
	if err != nil {
		return nil, false, err
	}
	if len(bound) == 0 {
		return nil, false, NewRelationError(e.Name, rel.PropertyPath, inv.Name, "no primary column to reference")
	}
	fk := &ForeignKeyMetadata{
		Entity:           rel.Entity,
		ReferencedEntity: inv.ID,
		Relation:         rel.ID,
		OnDelete:         rel.OnDelete,
		OnUpdate:         rel.OnUpdate,
	}
	unique := rel.Kind == load.OneToOne
	for _, b := range bound {
		c, err := r.joinColumn(e, rel, b)
		if err != nil {
			return nil, false, err
		}
		fk.Columns = append(fk.Columns, c.ID)
		fk.ReferencedColumns = append(fk.ReferencedColumns, b.column.ID)
		unique = unique || b.spec.unique
	}
	return r.g.addForeignKey(fk), unique, nil
}

// bindReferences binds specs to columns of target. Specs naming a
// referenced column bind to it first; the others take the remaining
// primary columns in order. When only primary columns are bound, primary
// columns left over are appended with default names.
func (r *run) bindReferences(e *EntityMetadata, rel *RelationMetadata, target *EntityMetadata, specs []columnSpec) ([]binding, error) {
	var (
		bound   []binding
		unnamed []columnSpec
		used    = make(map[ColumnRef]bool)
	)
	for _, s := range specs {
		if s.referenced == "" {
			unnamed = append(unnamed, s)
			continue
		}
		c := r.g.ColumnByProperty(target, s.referenced)
		if c == nil {
			c = r.g.ColumnByName(target, s.referenced)
		}
		if c == nil {
			return nil, NewRelationError(e.Name, rel.PropertyPath, target.Name,
				fmt.Sprintf("referenced column %s was not found", s.referenced))
		}
		if used[c.ID] {
			return nil, &JoinColumnError{
				Entity:   e.Name,
				Property: rel.PropertyPath,
				Column:   c.DatabaseName,
				Message:  "referenced column is bound by more than one join column",
			}
		}
		used[c.ID] = true
		bound = append(bound, binding{column: c, spec: s})
	}
	var rest []*ColumnMetadata
	for _, c := range r.g.ColumnsOf(target.PrimaryColumns) {
		if !used[c.ID] {
			rest = append(rest, c)
		}
	}
	if len(unnamed) > len(rest) {
		return nil, NewRelationError(e.Name, rel.PropertyPath, target.Name,
			fmt.Sprintf("%d join columns declared but only %d primary columns are left to reference", len(unnamed), len(rest)))
	}
	for i, s := range unnamed {
		bound = append(bound, binding{column: rest[i], spec: s})
	}
	if slices.ContainsFunc(bound, func(b binding) bool { return !b.column.Primary }) {
		return bound, nil
	}
	for _, c := range rest[len(unnamed):] {
		bound = append(bound, binding{column: c})
	}
	return bound, nil
}

// joinColumn returns the local column of b, reusing a column with the
// same name in the relation's container or synthesizing one. A column
// holds the join of a single relation, declared or not.
func (r *run) joinColumn(e *EntityMetadata, rel *RelationMetadata, b binding) (*ColumnMetadata, error) {
	name := b.spec.name
	if name == "" {
		name = r.naming.JoinColumnName(rel.PropertyName, b.column.PropertyName)
	}
	container := &e.OwnColumns
	if emb := r.g.Embedded(rel.Embedded); emb != nil {
		container = &emb.Columns
	}
	var col *ColumnMetadata
	for _, c := range r.g.ColumnsOf(*container) {
		if c.DatabaseNameWithoutPrefixes == name {
			col = c
			break
		}
	}
	switch {
	case col == nil:
		col = r.g.addColumn(&ColumnMetadata{
			Entity:            e.ID,
			Embedded:          rel.Embedded,
			Target:            rel.Target,
			PropertyName:      name,
			GivenDatabaseName: name,
			Mode:              load.ModeVirtual,
			Virtual:           true,
			Nullable:          rel.Nullable || r.declaredOnChild(rel.Target),
			Primary:           rel.Primary,
			Synthesized:       true,
		})
		*container = append(*container, col.ID)
	case col.Relation != 0 && col.Relation != rel.ID:
		return nil, &JoinColumnError{
			Entity:   e.Name,
			Property: rel.PropertyPath,
			Other:    r.g.Relation(col.Relation).PropertyPath,
			Column:   name,
		}
	}
	col.ReferencedColumn = b.column.ID
	col.Type = b.column.Type
	col.Length = b.column.Length
	if col.Relation == 0 {
		col.Relation = rel.ID
	}
	r.buildColumn(col)
	return col, nil
}

// addRelationUnique makes the join columns of rel unique, as a unique
// index on dialects that store unique constraints that way.
func (r *run) addRelationUnique(e *EntityMetadata, rel *RelationMetadata, cols []ColumnRef) {
	names := r.g.ColumnNames(cols)
	if !r.dialect.Support(dialect.UniquesAsIndices) {
		u := r.g.addUnique(&UniqueMetadata{
			Entity:      e.ID,
			Embedded:    rel.Embedded,
			Target:      rel.Target,
			GivenName:   r.naming.RelationConstraintName(e.TableName, names, ""),
			Columns:     cols,
			Synthesized: true,
		})
		if emb := r.g.Embedded(rel.Embedded); emb != nil {
			emb.Uniques = append(emb.Uniques, u.ID)
		} else {
			e.OwnUniques = append(e.OwnUniques, u.ID)
		}
		return
	}
	idx := &IndexMetadata{Columns: cols, Unique: true}
	if r.dialect.Support(dialect.FilteredUniqueIndices) {
		idx.Where = r.notNull(cols)
	}
	idx.GivenName = r.naming.RelationConstraintName(e.TableName, names, idx.Where)
	r.addRelationIndex(e, rel, idx)
}

func (r *run) addRelationIndex(e *EntityMetadata, rel *RelationMetadata, idx *IndexMetadata) {
	idx.Entity, idx.Embedded, idx.Target = e.ID, rel.Embedded, rel.Target
	idx.Synthesized = true
	r.g.addIndex(idx)
	if emb := r.g.Embedded(rel.Embedded); emb != nil {
		emb.Indices = append(emb.Indices, idx.ID)
	} else {
		e.OwnIndices = append(e.OwnIndices, idx.ID)
	}
}

// notNull returns a predicate matching rows where all cols are set.
func (r *run) notNull(cols []ColumnRef) string {
	conds := make([]string, len(cols))
	for i, name := range r.g.ColumnNames(cols) {
		conds[i] = r.dialect.Quote(name) + " IS NOT NULL"
	}
	return strings.Join(conds, " AND ")
}

// declaredOnChild reports if target is a single-table child.
func (r *run) declaredOnChild(target string) bool {
	t := r.decls.FindTable(target)
	return t != nil && t.Kind == load.EntityChild
}
