package metadata

import (
	"cmp"
	"slices"

	"github.com/syssam/schemagraph/compiler/load"
)

const cascade = "CASCADE"

// buildJunctions creates the junction tables of many-to-many relations
// that declare a join table.
func (r *run) buildJunctions() error {
	for _, e := range r.entities(func(e *EntityMetadata) bool { return !e.IsChild() }) {
		for _, ref := range slices.Clone(e.Relations) {
			rel := r.g.Relation(ref)
			if rel.Kind != load.ManyToMany {
				continue
			}
			jt := r.decls.FindJoinTable(rel.Target, rel.PropertyName)
			if jt == nil {
				continue
			}
			j, err := r.buildJunction(e, rel, jt)
			if err != nil {
				return err
			}
			rel.registerForeignKeys(r.g, j.ForeignKeys...)
			rel.Junction = j.ID
			if inv := r.g.Relation(rel.InverseRelation); inv != nil && inv.Junction == 0 {
				inv.Junction = j.ID
			}
			if err := r.derive(j); err != nil {
				return err
			}
			if err := r.resolveInverse(j); err != nil {
				return err
			}
			if err := r.derive(e); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildJunction creates the junction entity of rel, with one foreign key
// to each side. The columns of a self-referencing relation are named
// after the relation on the inverse side.
func (r *run) buildJunction(owner *EntityMetadata, rel *RelationMetadata, jt *load.JoinTable) (*EntityMetadata, error) {
	inv := r.g.Entity(rel.InverseEntity)
	table := jt.Name
	if table == "" {
		table = r.naming.JoinTableName(owner.TableName, rel.PropertyPath, inv.TableName)
	}
	ownerRefs, err := r.bindReferences(owner, rel, owner, junctionSpecs(jt.JoinColumns))
	if err != nil {
		return nil, err
	}
	invRefs, err := r.bindReferences(owner, rel, inv, junctionSpecs(jt.InverseJoinColumns))
	if err != nil {
		return nil, err
	}
	if len(ownerRefs) == 0 || len(invRefs) == 0 {
		return nil, NewRelationError(owner.Name, rel.PropertyPath, inv.Name, "junction sides need primary columns to reference")
	}
	invTable := inv.TableName
	if rel.IsSelfReferencing() {
		invTable = rel.PropertyName
	}
	ownerNames := make([]string, len(ownerRefs))
	for i, b := range ownerRefs {
		ownerNames[i] = b.spec.name
		if ownerNames[i] == "" {
			ownerNames[i] = r.naming.JoinTableColumnName(owner.TableName, b.column.PropertyName, b.column.DatabaseName)
		}
	}
	invNames := make([]string, len(invRefs))
	for i, b := range invRefs {
		invNames[i] = b.spec.name
		if invNames[i] == "" {
			invNames[i] = r.naming.JoinTableInverseColumnName(invTable, b.column.PropertyName, b.column.DatabaseName)
		}
	}
	for i := range ownerNames {
		if k := slices.Index(invNames, ownerNames[i]); k >= 0 {
			ownerNames[i] += "_1"
			invNames[k] += "_2"
		}
	}

	j := r.g.addEntity(&EntityMetadata{
		Name:               table,
		TableName:          table,
		GivenTableName:     jt.Name,
		TableKind:          load.Junction,
		JunctionRelation:   rel.ID,
		DiscriminatorValue: table,
		InheritanceTree:    []string{table},
	})
	column := func(b binding, name string) ColumnRef {
		c := r.g.addColumn(&ColumnMetadata{
			Entity:            j.ID,
			Target:            table,
			PropertyName:      name,
			GivenDatabaseName: name,
			Mode:              load.ModeVirtual,
			Type:              b.column.Type,
			Length:            b.column.Length,
			Primary:           true,
			Virtual:           true,
			ReferencedColumn:  b.column.ID,
			Relation:          rel.ID,
			Synthesized:       true,
		})
		j.OwnColumns = append(j.OwnColumns, c.ID)
		return c.ID
	}
	ownerFK := &ForeignKeyMetadata{
		Entity:           j.ID,
		ReferencedEntity: owner.ID,
		Relation:         rel.ID,
		OnDelete:         cmp.Or(rel.OnDelete, cascade),
		OnUpdate:         rel.OnUpdate,
	}
	for i, b := range ownerRefs {
		ownerFK.Columns = append(ownerFK.Columns, column(b, ownerNames[i]))
		ownerFK.ReferencedColumns = append(ownerFK.ReferencedColumns, b.column.ID)
	}
	invFK := &ForeignKeyMetadata{
		Entity:           j.ID,
		ReferencedEntity: inv.ID,
		Relation:         rel.ID,
		OnDelete:         cascade,
	}
	if ir := r.g.Relation(rel.InverseRelation); ir != nil {
		invFK.OnDelete = cmp.Or(ir.OnDelete, cascade)
		invFK.OnUpdate = ir.OnUpdate
	}
	for i, b := range invRefs {
		invFK.Columns = append(invFK.Columns, column(b, invNames[i]))
		invFK.ReferencedColumns = append(invFK.ReferencedColumns, b.column.ID)
	}
	r.addJunctionKeys(j, ownerFK, invFK)
	return j, nil
}

// buildClosures creates the ancestor/descendant tables of closure-table
// trees.
func (r *run) buildClosures() error {
	trees := r.entities(func(e *EntityMetadata) bool {
		return e.TreeKind == load.ClosureTable && !e.IsChild()
	})
	for _, e := range trees {
		pks := r.g.ColumnsOf(e.PrimaryColumns)
		if len(pks) == 0 {
			return NewSchemaError(e.Name, "", "closure-table tree has no primary column", nil)
		}
		table := r.naming.ClosureJunctionTableName(cmp.Or(e.ClosureTableName, e.TableName))
		j := r.g.addEntity(&EntityMetadata{
			Name:               table,
			TableName:          table,
			TableKind:          load.ClosureJunction,
			ClosureOf:          e.ID,
			DiscriminatorValue: table,
			InheritanceTree:    []string{table},
		})
		e.ClosureJunction = j.ID
		fks := make([]*ForeignKeyMetadata, 0, 2)
		for _, role := range []ClosureType{Ancestor, Descendant} {
			fk := &ForeignKeyMetadata{Entity: j.ID, ReferencedEntity: e.ID, OnDelete: cascade}
			for _, pk := range pks {
				name := string(role)
				if len(pks) > 1 {
					name += "_" + pk.DatabaseName
				}
				c := r.g.addColumn(&ColumnMetadata{
					Entity:            j.ID,
					Target:            table,
					PropertyName:      name,
					GivenDatabaseName: name,
					Mode:              load.ModeVirtual,
					Type:              pk.Type,
					Length:            pk.Length,
					Primary:           true,
					Virtual:           true,
					ClosureType:       role,
					ReferencedColumn:  pk.ID,
					Synthesized:       true,
				})
				j.OwnColumns = append(j.OwnColumns, c.ID)
				fk.Columns = append(fk.Columns, c.ID)
				fk.ReferencedColumns = append(fk.ReferencedColumns, pk.ID)
			}
			fks = append(fks, fk)
		}
		r.addJunctionKeys(j, fks...)
		if err := r.derive(j); err != nil {
			return err
		}
		if err := r.resolveInverse(j); err != nil {
			return err
		}
	}
	return nil
}

// addJunctionKeys registers the foreign keys of a junction entity and
// indexes the columns of each of them.
func (r *run) addJunctionKeys(j *EntityMetadata, fks ...*ForeignKeyMetadata) {
	for _, fk := range fks {
		j.ForeignKeys = append(j.ForeignKeys, r.g.addForeignKey(fk).ID)
		idx := r.g.addIndex(&IndexMetadata{Entity: j.ID, Target: j.Name, Columns: fk.Columns, Synthesized: true})
		j.OwnIndices = append(j.OwnIndices, idx.ID)
	}
}

func junctionSpecs(cols []load.JoinTableColumn) []columnSpec {
	specs := make([]columnSpec, len(cols))
	for i, c := range cols {
		specs[i] = columnSpec{name: c.Name, referenced: c.ReferencedColumn}
	}
	return specs
}
