package metadata

import (
	"fmt"

	"github.com/syssam/schemagraph/compiler/load"
)

// derive recomputes every derived list of e from its own lists and its
// embedded trees. It replaces previous results, so it may run any number
// of times.
func (r *run) derive(e *EntityMetadata) error {
	e.AllEmbeddeds = nil
	for _, top := range e.Embeddeds {
		for _, emb := range r.g.subtree(top) {
			r.buildEmbedded(emb)
			e.AllEmbeddeds = append(e.AllEmbeddeds, emb.ID)
		}
	}
	for _, ref := range e.AllEmbeddeds {
		r.collectEmbedded(r.g.Embedded(ref))
	}

	e.Columns = append([]ColumnRef(nil), e.OwnColumns...)
	e.Relations = append([]RelationRef(nil), e.OwnRelations...)
	e.Indices = append([]IndexRef(nil), e.OwnIndices...)
	e.Uniques = append([]UniqueRef(nil), e.OwnUniques...)
	e.Listeners = append([]ListenerRef(nil), e.OwnListeners...)
	for _, ref := range e.Embeddeds {
		emb := r.g.Embedded(ref)
		e.Columns = append(e.Columns, emb.ColumnsFromTree...)
		e.Relations = append(e.Relations, emb.RelationsFromTree...)
		e.Indices = append(e.Indices, emb.IndicesFromTree...)
		e.Uniques = append(e.Uniques, emb.UniquesFromTree...)
		e.Listeners = append(e.Listeners, emb.ListenersFromTree...)
	}
	seen := make(map[string]bool, len(e.Columns))
	for _, c := range r.g.ColumnsOf(e.Columns) {
		r.buildColumn(c)
		if seen[c.PropertyPath] {
			return NewSchemaError(e.Name, c.PropertyPath, "property is mapped to more than one column", nil)
		}
		seen[c.PropertyPath] = true
	}
	for _, rel := range r.g.RelationsOf(e.Relations) {
		r.buildRelation(rel)
	}
	r.bucketRelations(e)
	r.bucketColumns(e)

	r.g.indexEntity(e)
	for _, ref := range e.ForeignKeys {
		fk := r.g.ForeignKey(ref)
		fk.Name = r.naming.ForeignKeyName(e.TableName, r.g.ColumnNames(fk.Columns))
	}
	return r.resolveProjections(e)
}

func (r *run) buildEmbedded(emb *EmbeddedMetadata) {
	emb.PropertyPath = emb.PropertyName
	if p := r.g.Embedded(emb.Parent); p != nil {
		emb.PropertyPath = p.PropertyPath + "." + emb.PropertyName
	}
	switch {
	case emb.NoPrefix:
		emb.Prefix = ""
	case emb.CustomPrefix != "":
		emb.Prefix = emb.CustomPrefix
	default:
		emb.Prefix = emb.PropertyName
	}
}

// collectEmbedded fills the FromTree lists of emb with the nodes of emb
// and all embeddeds nested in it.
func (r *run) collectEmbedded(emb *EmbeddedMetadata) {
	emb.ColumnsFromTree, emb.RelationsFromTree, emb.ListenersFromTree = nil, nil, nil
	emb.IndicesFromTree, emb.UniquesFromTree = nil, nil
	emb.RelationIDsFromTree, emb.RelationCountsFromTree = nil, nil
	for _, sub := range r.g.subtree(emb.ID) {
		emb.ColumnsFromTree = append(emb.ColumnsFromTree, sub.Columns...)
		emb.RelationsFromTree = append(emb.RelationsFromTree, sub.Relations...)
		emb.ListenersFromTree = append(emb.ListenersFromTree, sub.Listeners...)
		emb.IndicesFromTree = append(emb.IndicesFromTree, sub.Indices...)
		emb.UniquesFromTree = append(emb.UniquesFromTree, sub.Uniques...)
		emb.RelationIDsFromTree = append(emb.RelationIDsFromTree, sub.RelationIDs...)
		emb.RelationCountsFromTree = append(emb.RelationCountsFromTree, sub.RelationCounts...)
	}
}

// buildColumn computes the property path and database names of c.
func (r *run) buildColumn(c *ColumnMetadata) {
	c.PropertyPath = r.propertyPath(c.Embedded, c.PropertyName)
	c.DatabaseNameWithoutPrefixes = r.naming.ColumnName(c.PropertyName, c.GivenDatabaseName, nil)
	c.DatabaseName = r.naming.ColumnName(c.PropertyName, c.GivenDatabaseName, r.g.prefixes(c.Embedded))
}

func (r *run) buildRelation(rel *RelationMetadata) {
	rel.PropertyPath = r.propertyPath(rel.Embedded, rel.PropertyName)
}

func (r *run) propertyPath(embedded EmbeddedRef, property string) string {
	if emb := r.g.Embedded(embedded); emb != nil {
		return emb.PropertyPath + "." + property
	}
	return property
}

func (r *run) bucketRelations(e *EntityMetadata) {
	e.EagerRelations, e.LazyRelations = nil, nil
	e.OneToOneRelations, e.OneToManyRelations = nil, nil
	e.ManyToOneRelations, e.ManyToManyRelations = nil, nil
	e.OwnerOneToOneRelations, e.OwnerManyToManyRelations = nil, nil
	e.TreeParentRelation, e.TreeChildrenRelation = 0, 0
	for _, rel := range r.g.RelationsOf(e.Relations) {
		if rel.Eager {
			e.EagerRelations = append(e.EagerRelations, rel.ID)
		}
		if rel.Lazy {
			e.LazyRelations = append(e.LazyRelations, rel.ID)
		}
		switch rel.Kind {
		case load.OneToOne:
			e.OneToOneRelations = append(e.OneToOneRelations, rel.ID)
			if rel.OneToOneOwner {
				e.OwnerOneToOneRelations = append(e.OwnerOneToOneRelations, rel.ID)
			}
		case load.OneToMany:
			e.OneToManyRelations = append(e.OneToManyRelations, rel.ID)
		case load.ManyToOne:
			e.ManyToOneRelations = append(e.ManyToOneRelations, rel.ID)
		case load.ManyToMany:
			e.ManyToManyRelations = append(e.ManyToManyRelations, rel.ID)
			if rel.Owning {
				e.OwnerManyToManyRelations = append(e.OwnerManyToManyRelations, rel.ID)
			}
		}
		if rel.TreeParent && e.TreeParentRelation == 0 {
			e.TreeParentRelation = rel.ID
		}
		if rel.TreeChildren && e.TreeChildrenRelation == 0 {
			e.TreeChildrenRelation = rel.ID
		}
	}
}

func (r *run) bucketColumns(e *EntityMetadata) {
	e.PrimaryColumns, e.NonVirtualColumns, e.GeneratedColumns = nil, nil, nil
	e.AncestorColumns, e.DescendantColumns = nil, nil
	e.HasUUIDGeneratedColumns = false
	e.CreateDateColumn, e.UpdateDateColumn, e.DeleteDateColumn = 0, 0, 0
	e.VersionColumn, e.DiscriminatorColumn, e.TreeLevelColumn = 0, 0, 0
	e.NestedSetLeftColumn, e.NestedSetRightColumn, e.MaterializedPathColumn = 0, 0, 0
	first := func(ref *ColumnRef, ok bool, id ColumnRef) {
		if ok && *ref == 0 {
			*ref = id
		}
	}
	for _, c := range r.g.ColumnsOf(e.Columns) {
		if c.Primary {
			e.PrimaryColumns = append(e.PrimaryColumns, c.ID)
		}
		if !c.Virtual {
			e.NonVirtualColumns = append(e.NonVirtualColumns, c.ID)
		}
		if c.Generated {
			e.GeneratedColumns = append(e.GeneratedColumns, c.ID)
			if c.GenerationStrategy == load.UUID {
				e.HasUUIDGeneratedColumns = true
			}
		}
		switch c.ClosureType {
		case Ancestor:
			e.AncestorColumns = append(e.AncestorColumns, c.ID)
		case Descendant:
			e.DescendantColumns = append(e.DescendantColumns, c.ID)
		}
		first(&e.CreateDateColumn, c.CreateDate, c.ID)
		first(&e.UpdateDateColumn, c.UpdateDate, c.ID)
		first(&e.DeleteDateColumn, c.DeleteDate, c.ID)
		first(&e.VersionColumn, c.Version, c.ID)
		first(&e.DiscriminatorColumn, c.Discriminator, c.ID)
		first(&e.TreeLevelColumn, c.TreeLevel, c.ID)
		first(&e.NestedSetLeftColumn, c.NestedSetLeft, c.ID)
		first(&e.NestedSetRightColumn, c.NestedSetRight, c.ID)
		first(&e.MaterializedPathColumn, c.MaterializedPath, c.ID)
	}
	e.HasMultiplePrimaryKeys = len(e.PrimaryColumns) > 1
}

// resolveProjections binds relation ids and counts to the relations they
// project.
func (r *run) resolveProjections(e *EntityMetadata) error {
	ids := append([]RelationIDRef(nil), e.RelationIDs...)
	counts := append([]RelationCountRef(nil), e.RelationCounts...)
	for _, ref := range e.Embeddeds {
		emb := r.g.Embedded(ref)
		ids = append(ids, emb.RelationIDsFromTree...)
		counts = append(counts, emb.RelationCountsFromTree...)
	}
	for _, ref := range ids {
		rid := r.g.RelationID(ref)
		rel, err := r.projected(e, rid.Embedded, rid.PropertyName, rid.RelationName)
		if err != nil {
			return err
		}
		rid.Relation = rel
	}
	for _, ref := range counts {
		rc := r.g.RelationCount(ref)
		rel, err := r.projected(e, rc.Embedded, rc.PropertyName, rc.RelationName)
		if err != nil {
			return err
		}
		rc.Relation = rel
	}
	return nil
}

func (r *run) projected(e *EntityMetadata, embedded EmbeddedRef, property, relation string) (RelationRef, error) {
	path := r.propertyPath(embedded, relation)
	if rel := r.g.RelationByProperty(e, path); rel != nil {
		return rel.ID, nil
	}
	return 0, NewSchemaError(e.Name, r.propertyPath(embedded, property), fmt.Sprintf("relation %s is not declared", path), nil)
}

// indexEntity rebuilds the lookup maps of e from its derived lists.
func (g *Graph) indexEntity(e *EntityMetadata) {
	e.ListenersByKind = make(map[load.ListenerKind][]ListenerRef)
	for _, ref := range e.Listeners {
		l := g.Listener(ref)
		e.ListenersByKind[l.Kind] = append(e.ListenersByKind[l.Kind], ref)
	}
	e.Properties = make(map[string]Property, len(e.Columns)+len(e.Relations))
	for _, c := range g.ColumnsOf(e.Columns) {
		if _, ok := e.Properties[c.PropertyPath]; !ok {
			e.Properties[c.PropertyPath] = Property{Column: c.ID}
		}
	}
	for _, rel := range g.RelationsOf(e.Relations) {
		if _, ok := e.Properties[rel.PropertyPath]; !ok {
			e.Properties[rel.PropertyPath] = Property{Relation: rel.ID}
		}
	}
}
