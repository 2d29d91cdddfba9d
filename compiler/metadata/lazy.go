package metadata

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/syssam/schemagraph/naming"
)

// LazyAccessor describes a lazily loaded relation field of a Go type.
// Runtimes install deferred loading on Field of Type when they receive it.
type LazyAccessor struct {
	Entity   EntityRef
	Relation RelationRef
	Property string
	Type     reflect.Type `msgpack:"-"`
	// Field is the index sequence of the relation field, for reflect.Value.FieldByIndex.
	Field       []int
	Many        bool
	RelatedType reflect.Type `msgpack:"-"`
}

// RelationLoader receives the lazy relation accessors of a build.
type RelationLoader interface {
	EnableLazyLoad(*LazyAccessor) error
}

// The RelationLoaderFunc type is an adapter to allow the use of ordinary
// functions as RelationLoader.
type RelationLoaderFunc func(*LazyAccessor) error

// EnableLazyLoad calls f(a).
func (f RelationLoaderFunc) EnableLazyLoad(a *LazyAccessor) error { return f(a) }

// wireLazyRelations creates an accessor for each lazy relation of an
// entity backed by a Go type.
func (r *run) wireLazyRelations() error {
	for _, e := range r.g.Entities {
		if e.Type == nil {
			continue
		}
		for _, rel := range r.g.RelationsOf(e.LazyRelations) {
			field, err := fieldIndex(e.Type, rel.PropertyPath)
			if err != nil {
				return NewSchemaError(e.Name, rel.PropertyPath, "lazy relation has no field", err)
			}
			a := &LazyAccessor{
				Entity:   e.ID,
				Relation: rel.ID,
				Property: rel.PropertyPath,
				Type:     e.Type,
				Field:    field,
				Many:     rel.IsToMany(),
			}
			if inv := r.g.Entity(rel.InverseEntity); inv != nil {
				a.RelatedType = inv.Type
			}
			r.g.LazyAccessors = append(r.g.LazyAccessors, a)
			if r.loader == nil {
				continue
			}
			if err := r.loader.EnableLazyLoad(a); err != nil {
				return NewSchemaError(e.Name, rel.PropertyPath, "enable lazy load", err)
			}
		}
	}
	return nil
}

// fieldIndex returns the field index sequence of a dotted property path
// in the struct type t. Field names match properties case-insensitively.
func fieldIndex(t reflect.Type, path string) ([]int, error) {
	var index []int
	for _, name := range strings.Split(path, ".") {
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct {
			return nil, fmt.Errorf("%s is not a struct", t)
		}
		f, ok := t.FieldByNameFunc(func(n string) bool {
			return strings.EqualFold(n, name) || n == naming.Pascal(name)
		})
		if !ok {
			return nil, fmt.Errorf("field %s not found in %s", name, t)
		}
		index = append(index, f.Index...)
		t = f.Type
	}
	return index, nil
}
