package metadata

import (
	"fmt"
)

// resolveInverse links every relation of e to its target entity and, when
// the target declares it, to the inverse relation. Each side searches on
// its own; linking one side never sets the other.
func (r *run) resolveInverse(e *EntityMetadata) error {
	for _, rel := range r.g.RelationsOf(e.Relations) {
		inv := r.g.EntityByName(rel.Type)
		if inv == nil {
			return NewRelationError(e.Name, rel.PropertyPath, rel.Type,
				fmt.Sprintf("entity metadata for %s#%s was not found", e.Name, rel.PropertyPath))
		}
		rel.InverseEntity = inv.ID
		rel.InverseSidePropertyPath = r.inverseSidePath(rel, inv)
		rel.InverseRelation = 0
		if rel.InverseSidePropertyPath == "" {
			continue
		}
		if ir := r.g.RelationByProperty(inv, rel.InverseSidePropertyPath); ir != nil {
			rel.InverseRelation = ir.ID
		}
	}
	return nil
}

// inverseSidePath returns the declared inverse side of rel. Tree relations
// default to the opposite tree relation of the target.
func (r *run) inverseSidePath(rel *RelationMetadata, inv *EntityMetadata) string {
	switch {
	case rel.GivenInverseSide != "":
		return rel.GivenInverseSide
	case rel.TreeParent && inv.TreeChildrenRelation != 0:
		return r.g.Relation(inv.TreeChildrenRelation).PropertyName
	case rel.TreeChildren && inv.TreeParentRelation != 0:
		return r.g.Relation(inv.TreeParentRelation).PropertyName
	}
	return ""
}
