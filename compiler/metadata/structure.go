package metadata

import (
	"fmt"
	"slices"

	"github.com/syssam/schemagraph/compiler/load"
	"github.com/syssam/schemagraph/dialect"
)

// buildStructure fills the own lists of e from its declarations.
// Single-table children reuse the nodes of their root for every shared
// property, so the root must be built first.
func (r *run) buildStructure(e *EntityMetadata) error {
	parent := r.g.Entity(e.Parent)
	if e.IsChild() && parent != nil {
		e.TableName = parent.TableName
	} else {
		e.TableName = r.naming.TableName(e.Name, e.GivenTableName)
	}
	e.DiscriminatorValue = e.Name
	if dv := r.decls.FindDiscriminatorValue(e.Name); dv != nil {
		e.DiscriminatorValue = dv.Value
	}
	sti := e.InheritancePattern == load.SingleTable
	tree := e.InheritanceTree

	if parent != nil {
		for _, d := range r.decls.FilterEmbeddeds(tree) {
			ref := r.embeddedByProperty(parent.Embeddeds, d.PropertyName)
			if ref == 0 {
				return NewSchemaError(e.Name, d.PropertyName, "embedded is not declared on the inheritance root", nil)
			}
			e.Embeddeds = append(e.Embeddeds, ref)
		}
	} else if err := r.createEmbeddeds(e, sti); err != nil {
		return err
	}

	for _, d := range r.decls.FilterColumns(tree) {
		if parent != nil {
			ref := r.g.ownColumnByProperty(parent, d.PropertyName)
			if ref == 0 {
				return NewSchemaError(e.Name, d.PropertyName, "column is not declared on the inheritance root", nil)
			}
			e.OwnColumns = append(e.OwnColumns, ref)
			continue
		}
		c := r.g.addColumn(newColumn(e.ID, 0, d))
		if r.declaredOnChild(d.Target) {
			c.Nullable = true
		}
		e.OwnColumns = append(e.OwnColumns, c.ID)
	}
	if sti && parent == nil {
		r.buildDiscriminator(e)
	}
	if parent != nil {
		for _, ref := range parent.OwnColumns {
			if r.g.Column(ref).Discriminator && !slices.Contains(e.OwnColumns, ref) {
				e.OwnColumns = append(e.OwnColumns, ref)
			}
		}
	}
	r.buildTreeColumns(e)

	for _, d := range r.decls.FilterRelations(tree) {
		if parent != nil {
			ref := r.g.ownRelationByProperty(parent, d.PropertyName)
			if ref == 0 {
				return NewSchemaError(e.Name, d.PropertyName, "relation is not declared on the inheritance root", nil)
			}
			e.OwnRelations = append(e.OwnRelations, ref)
			continue
		}
		e.OwnRelations = append(e.OwnRelations, r.g.addRelation(newRelation(e.ID, 0, d)).ID)
	}
	for _, d := range r.decls.FilterRelationIDs(tree) {
		if parent != nil {
			ref := r.relationIDByProperty(parent.RelationIDs, d.PropertyName)
			if ref == 0 {
				return NewSchemaError(e.Name, d.PropertyName, "relation id is not declared on the inheritance root", nil)
			}
			e.RelationIDs = append(e.RelationIDs, ref)
			continue
		}
		e.RelationIDs = append(e.RelationIDs, r.g.addRelationID(newRelationID(e.ID, 0, d)).ID)
	}
	for _, d := range r.decls.FilterRelationCounts(tree) {
		if parent != nil {
			ref := r.relationCountByProperty(parent.RelationCounts, d.PropertyName)
			if ref == 0 {
				return NewSchemaError(e.Name, d.PropertyName, "relation count is not declared on the inheritance root", nil)
			}
			e.RelationCounts = append(e.RelationCounts, ref)
			continue
		}
		e.RelationCounts = append(e.RelationCounts, r.g.addRelationCount(newRelationCount(e.ID, 0, d)).ID)
	}
	for _, d := range r.decls.FilterListeners(tree) {
		e.OwnListeners = append(e.OwnListeners, r.g.addListener(newListener(e.ID, 0, d)).ID)
	}
	for _, d := range r.decls.FilterChecks(tree) {
		c := r.g.addCheck(&CheckMetadata{Entity: e.ID, Target: d.Target, GivenName: d.Name, Expression: d.Expression})
		e.Checks = append(e.Checks, c.ID)
	}
	if r.dialect.Support(dialect.Exclusions) {
		for _, d := range r.decls.FilterExclusions(tree) {
			x := r.g.addExclusion(&ExclusionMetadata{Entity: e.ID, Target: d.Target, GivenName: d.Name, Expression: d.Expression})
			e.Exclusions = append(e.Exclusions, x.ID)
		}
	}
	r.buildConstraints(e)
	return nil
}

// buildConstraints creates the declared indices and unique constraints
// of e in the form the dialect stores them.
func (r *run) buildConstraints(e *EntityMetadata) {
	asConstraints := r.dialect.Support(dialect.UniqueIndicesAsConstraints)
	for _, d := range r.decls.FilterIndices(e.InheritanceTree) {
		if d.Unique && asConstraints {
			u := r.g.addUnique(&UniqueMetadata{Entity: e.ID, Target: d.Target, GivenName: d.Name, GivenColumns: d.Columns})
			e.OwnUniques = append(e.OwnUniques, u.ID)
			continue
		}
		e.OwnIndices = append(e.OwnIndices, r.g.addIndex(newIndex(e.ID, 0, d)).ID)
	}
	for _, d := range r.decls.FilterUniques(e.InheritanceTree) {
		if r.dialect.Support(dialect.UniquesAsIndices) {
			idx := r.g.addIndex(&IndexMetadata{
				Entity:       e.ID,
				Target:       d.Target,
				GivenName:    d.Name,
				GivenColumns: d.Columns,
				Unique:       true,
				FilterNulls:  r.dialect.Support(dialect.FilteredUniqueIndices),
			})
			e.OwnIndices = append(e.OwnIndices, idx.ID)
			continue
		}
		u := r.g.addUnique(&UniqueMetadata{Entity: e.ID, Target: d.Target, GivenName: d.Name, GivenColumns: d.Columns})
		e.OwnUniques = append(e.OwnUniques, u.ID)
	}
}

// buildDiscriminator marks the declared discriminator column of a
// single-table root, or synthesizes one.
func (r *run) buildDiscriminator(e *EntityMetadata) {
	name, typ := r.naming.DiscriminatorColumnName(), "varchar"
	if inh := r.decls.FindInheritance(e.Name); inh != nil {
		if inh.Column != "" {
			name = inh.Column
		}
		if inh.ColumnType != "" {
			typ = inh.ColumnType
		}
	}
	if ref := r.g.ownColumnByProperty(e, name); ref != 0 {
		r.g.Column(ref).Discriminator = true
		return
	}
	c := r.g.addColumn(&ColumnMetadata{
		Entity:            e.ID,
		Target:            e.Name,
		PropertyName:      name,
		GivenDatabaseName: name,
		Mode:              load.ModeVirtual,
		Type:              typ,
		Virtual:           true,
		Discriminator:     true,
		Synthesized:       true,
	})
	e.OwnColumns = append(e.OwnColumns, c.ID)
}

// buildTreeColumns synthesizes the bookkeeping columns of materialized
// path and nested set trees.
func (r *run) buildTreeColumns(e *EntityMetadata) {
	add := func(c *ColumnMetadata) {
		c.Entity, c.Target = e.ID, e.Name
		c.GivenDatabaseName = c.PropertyName
		c.Mode, c.Virtual, c.Synthesized = load.ModeVirtual, true, true
		e.OwnColumns = append(e.OwnColumns, r.g.addColumn(c).ID)
	}
	switch e.TreeKind {
	case load.MaterializedPath:
		add(&ColumnMetadata{PropertyName: "mpath", Type: "varchar", Nullable: true, Default: "", MaterializedPath: true})
	case load.NestedSet:
		add(&ColumnMetadata{PropertyName: "nsleft", Type: "integer", Default: 1, NestedSetLeft: true})
		add(&ColumnMetadata{PropertyName: "nsright", Type: "integer", Default: 2, NestedSetRight: true})
	}
}

// createEmbeddeds creates the embedded trees of a root entity. Embedded
// columns are forced nullable when nullable is set.
func (r *run) createEmbeddeds(e *EntityMetadata, nullable bool) error {
	type item struct {
		decl   *load.Embedded
		parent EmbeddedRef
		types  []string
	}
	var queue []item
	for _, d := range r.decls.FilterEmbeddeds(e.InheritanceTree) {
		queue = append(queue, item{decl: d})
	}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		d := it.decl
		if slices.Contains(it.types, d.Type) {
			return NewSchemaError(e.Name, d.PropertyName, fmt.Sprintf("embedded type %s contains itself", d.Type), nil)
		}
		emb := r.g.addEmbedded(&EmbeddedMetadata{
			Entity:       e.ID,
			Parent:       it.parent,
			Target:       d.Target,
			Type:         d.Type,
			PropertyName: d.PropertyName,
			CustomPrefix: d.Prefix,
			NoPrefix:     d.NoPrefix,
			Array:        d.Array,
		})
		if p := r.g.Embedded(it.parent); p != nil {
			p.Embeddeds = append(p.Embeddeds, emb.ID)
		} else {
			e.Embeddeds = append(e.Embeddeds, emb.ID)
		}
		tree := r.decls.InheritanceTree(d.Type)
		for _, cd := range r.decls.FilterColumns(tree) {
			c := r.g.addColumn(newColumn(e.ID, emb.ID, cd))
			if nullable {
				c.Nullable = true
			}
			emb.Columns = append(emb.Columns, c.ID)
		}
		for _, rd := range r.decls.FilterRelations(tree) {
			emb.Relations = append(emb.Relations, r.g.addRelation(newRelation(e.ID, emb.ID, rd)).ID)
		}
		for _, ld := range r.decls.FilterListeners(tree) {
			emb.Listeners = append(emb.Listeners, r.g.addListener(newListener(e.ID, emb.ID, ld)).ID)
		}
		for _, id := range r.decls.FilterIndices(tree) {
			emb.Indices = append(emb.Indices, r.g.addIndex(newIndex(e.ID, emb.ID, id)).ID)
		}
		for _, ud := range r.decls.FilterUniques(tree) {
			u := r.g.addUnique(&UniqueMetadata{Entity: e.ID, Embedded: emb.ID, Target: ud.Target, GivenName: ud.Name, GivenColumns: ud.Columns})
			emb.Uniques = append(emb.Uniques, u.ID)
		}
		for _, rd := range r.decls.FilterRelationIDs(tree) {
			emb.RelationIDs = append(emb.RelationIDs, r.g.addRelationID(newRelationID(e.ID, emb.ID, rd)).ID)
		}
		for _, rd := range r.decls.FilterRelationCounts(tree) {
			emb.RelationCounts = append(emb.RelationCounts, r.g.addRelationCount(newRelationCount(e.ID, emb.ID, rd)).ID)
		}
		types := append(slices.Clone(it.types), d.Type)
		for _, nd := range r.decls.FilterEmbeddeds(tree) {
			queue = append(queue, item{decl: nd, parent: emb.ID, types: types})
		}
	}
	return nil
}

func (r *run) embeddedByProperty(refs []EmbeddedRef, property string) EmbeddedRef {
	for _, ref := range refs {
		if r.g.Embedded(ref).PropertyName == property {
			return ref
		}
	}
	return 0
}

func (r *run) relationIDByProperty(refs []RelationIDRef, property string) RelationIDRef {
	for _, ref := range refs {
		if r.g.RelationID(ref).PropertyName == property {
			return ref
		}
	}
	return 0
}

func (r *run) relationCountByProperty(refs []RelationCountRef, property string) RelationCountRef {
	for _, ref := range refs {
		if r.g.RelationCount(ref).PropertyName == property {
			return ref
		}
	}
	return 0
}

func newIndex(entity EntityRef, embedded EmbeddedRef, d *load.Index) *IndexMetadata {
	return &IndexMetadata{
		Entity:       entity,
		Embedded:     embedded,
		Target:       d.Target,
		GivenName:    d.Name,
		GivenColumns: d.Columns,
		Unique:       d.Unique,
		Spatial:      d.Spatial,
		Fulltext:     d.Fulltext,
		Where:        d.Where,
	}
}

func newListener(entity EntityRef, embedded EmbeddedRef, d *load.Listener) *ListenerMetadata {
	return &ListenerMetadata{Entity: entity, Embedded: embedded, Target: d.Target, Method: d.PropertyName, Kind: d.Kind}
}

func newRelationID(entity EntityRef, embedded EmbeddedRef, d *load.RelationID) *RelationIDMetadata {
	return &RelationIDMetadata{
		Entity:       entity,
		Embedded:     embedded,
		Target:       d.Target,
		PropertyName: d.PropertyName,
		RelationName: d.Relation,
		Alias:        d.Alias,
	}
}

func newRelationCount(entity EntityRef, embedded EmbeddedRef, d *load.RelationCount) *RelationCountMetadata {
	return &RelationCountMetadata{
		Entity:       entity,
		Embedded:     embedded,
		Target:       d.Target,
		PropertyName: d.PropertyName,
		RelationName: d.Relation,
		Alias:        d.Alias,
	}
}
