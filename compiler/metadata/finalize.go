package metadata

import (
	"slices"
)

// finalizeConstraints resolves the columns and names of every index,
// unique, check and exclusion constraint. It runs once all columns of
// the graph are known.
func (r *run) finalizeConstraints() error {
	for _, e := range r.g.Entities {
		for _, ref := range e.Indices {
			if err := r.finalizeIndex(e, r.g.Index(ref)); err != nil {
				return err
			}
		}
		for _, ref := range e.Uniques {
			u := r.g.Unique(ref)
			if len(u.GivenColumns) > 0 {
				cols, err := r.resolveColumns(e, u.Embedded, u.GivenColumns)
				if err != nil {
					return err
				}
				u.Columns = cols
			}
			u.Name = u.GivenName
			if u.Name == "" {
				u.Name = r.naming.UniqueConstraintName(e.TableName, r.g.ColumnNames(u.Columns))
			}
		}
		for _, ref := range e.Checks {
			c := r.g.Check(ref)
			c.Name = c.GivenName
			if c.Name == "" {
				c.Name = r.naming.CheckConstraintName(e.TableName, c.Expression)
			}
		}
		for _, ref := range e.Exclusions {
			x := r.g.Exclusion(ref)
			x.Name = x.GivenName
			if x.Name == "" {
				x.Name = r.naming.ExclusionConstraintName(e.TableName, x.Expression)
			}
		}
	}
	return nil
}

func (r *run) finalizeIndex(e *EntityMetadata, idx *IndexMetadata) error {
	if len(idx.GivenColumns) > 0 {
		cols, err := r.resolveColumns(e, idx.Embedded, idx.GivenColumns)
		if err != nil {
			return err
		}
		idx.Columns = cols
	}
	if idx.FilterNulls && idx.Where == "" &&
		slices.ContainsFunc(r.g.ColumnsOf(idx.Columns), func(c *ColumnMetadata) bool { return c.Nullable }) {
		idx.Where = r.notNull(idx.Columns)
	}
	idx.Name = idx.GivenName
	if idx.Name == "" {
		idx.Name = r.naming.IndexName(e.TableName, r.g.ColumnNames(idx.Columns), idx.Where)
	}
	return nil
}

// resolveColumns maps property paths, relative to the given embedded, to
// columns of e. A path naming a relation with join columns stands for
// those columns.
func (r *run) resolveColumns(e *EntityMetadata, embedded EmbeddedRef, paths []string) ([]ColumnRef, error) {
	var cols []ColumnRef
	for _, p := range paths {
		path := r.propertyPath(embedded, p)
		if c := r.g.ColumnByProperty(e, path); c != nil {
			cols = append(cols, c.ID)
			continue
		}
		if rel := r.g.RelationByProperty(e, path); rel != nil && rel.WithJoinColumn {
			cols = append(cols, rel.JoinColumns...)
			continue
		}
		return nil, NewSchemaError(e.Name, path, "constraint column is not declared", nil)
	}
	return cols, nil
}
