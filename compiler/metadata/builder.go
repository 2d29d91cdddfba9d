package metadata

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/syssam/schemagraph/compiler/load"
	"github.com/syssam/schemagraph/dialect"
	"github.com/syssam/schemagraph/naming"
)

// Declarations is the declaration store a graph is built from.
// It is implemented by *load.Storage.
type Declarations interface {
	FilterTables(targets ...string) []*load.Table
	FindTable(target string) *load.Table
	InheritanceTree(target string) []string
	IsInherited(child, parent string) bool
	FilterSingleTableChildren(target string) []*load.Table
	FilterColumns(tree []string) []*load.Column
	FilterRelations(tree []string) []*load.Relation
	FilterEmbeddeds(tree []string) []*load.Embedded
	FilterRelationIDs(tree []string) []*load.RelationID
	FilterRelationCounts(tree []string) []*load.RelationCount
	FilterListeners(tree []string) []*load.Listener
	FilterIndices(tree []string) []*load.Index
	FilterUniques(tree []string) []*load.Unique
	FilterChecks(tree []string) []*load.Check
	FilterExclusions(tree []string) []*load.Exclusion
	FilterJoinColumns(target, property string) []*load.JoinColumn
	FindJoinTable(target, property string) *load.JoinTable
	FindGenerated(target, property string) *load.Generated
	FindInheritance(target string) *load.Inheritance
	FindDiscriminatorValue(target string) *load.DiscriminatorValue
	FindTree(target string) *load.Tree
}

var _ Declarations = (*load.Storage)(nil)

// Builder builds schema graphs from declarations. A builder runs one
// build at a time.
type Builder struct {
	decls   Declarations
	dialect dialect.Capabilities
	naming  naming.Strategy
	log     *zap.Logger
	loader  RelationLoader
	mu      sync.Mutex
}

// NewBuilder returns a builder over the given declarations.
func NewBuilder(decls Declarations, opts ...Option) (*Builder, error) {
	if decls == nil {
		return nil, NewConfigError("Declarations", nil, "declarations cannot be nil")
	}
	pg, err := dialect.Lookup(dialect.Postgres)
	if err != nil {
		return nil, err
	}
	b := &Builder{
		decls:   decls,
		dialect: pg,
		naming:  naming.Default{},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Build resolves the declarations of the given targets, or of all
// declared tables when no target is given, into a graph. Any
// configuration error aborts the build and no graph is returned.
func (b *Builder) Build(ctx context.Context, targets ...string) (*Graph, error) {
	if !b.mu.TryLock() {
		return nil, ErrBuildInProgress
	}
	defer b.mu.Unlock()
	r := &run{
		Builder: b,
		g:       &Graph{Dialect: b.dialect.Name()},
		log:     b.log.With(zap.String("dialect", b.dialect.Name())),
	}
	if err := r.build(ctx, targets); err != nil {
		return nil, err
	}
	return r.g, nil
}

// run holds the state of a single build.
type run struct {
	*Builder
	g      *Graph
	log    *zap.Logger
	tables []*load.Table
}

func (r *run) build(ctx context.Context, targets []string) error {
	phases := []struct {
		name string
		fn   func() error
	}{
		{"classify", func() error { return r.classify(targets) }},
		{"create", r.createEntities},
		{"link", r.linkInheritance},
		{"structure", r.buildStructures},
		{"derive", r.deriveAll},
		{"inverse", r.inverseAll},
		{"join-columns", r.buildJoinColumns},
		{"junctions", r.buildJunctions},
		{"join-flags", r.computeJoinFlags},
		{"closures", r.buildClosures},
		{"discriminator-index", r.buildDiscriminatorIndices},
		{"constraints", r.finalizeConstraints},
		{"lazy", r.wireLazyRelations},
		{"generated", r.normalizeGenerated},
	}
	for _, p := range phases {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.fn(); err != nil {
			r.log.Debug("build failed", zap.String("phase", p.name), zap.Error(err))
			return err
		}
		r.log.Debug("phase complete",
			zap.String("phase", p.name),
			zap.Int("entities", len(r.g.Entities)),
			zap.Int("columns", len(r.g.Columns)),
		)
	}
	return nil
}

// classify keeps the tables that materialize a schema node.
func (r *run) classify(targets []string) error {
	for _, t := range r.decls.FilterTables(targets...) {
		if t.Kind.Materialized() {
			r.tables = append(r.tables, t)
		}
	}
	return nil
}

// createEntities creates one bare node per materialized table.
func (r *run) createEntities() error {
	for _, t := range r.tables {
		tree := r.decls.InheritanceTree(t.Target)
		inh := r.decls.FindInheritance(t.Target)
		e := &EntityMetadata{
			Name:           t.Target,
			Type:           t.Type,
			GivenTableName: t.Name,
			TableKind:      t.Kind,
			Comment:        t.Comment,
		}
		if e.TableKind == "" {
			e.TableKind = load.Regular
		}
		if inh != nil {
			e.InheritancePattern = inh.Pattern
		}
		if tr := r.decls.FindTree(t.Target); tr != nil {
			e.TreeKind = tr.Kind
			e.ClosureTableName = tr.ClosureTableName
		}
		if e.InheritancePattern == load.SingleTable || e.TableKind == load.EntityChild {
			for _, c := range r.decls.FilterSingleTableChildren(t.Target) {
				tree = append(tree, c.Target)
			}
		}
		e.InheritanceTree = tree
		r.g.addEntity(e)
	}
	return nil
}

// linkInheritance links single-table children to their root, and every
// entity to the entities inheriting from it.
func (r *run) linkInheritance() error {
	for _, e := range r.g.Entities {
		if !e.IsChild() {
			continue
		}
		for _, p := range r.g.Entities {
			if p != e && p.InheritancePattern == load.SingleTable && slices.Contains(p.InheritanceTree, e.Name) {
				e.Parent = p.ID
				break
			}
		}
		if e.Parent == 0 {
			return NewSchemaError(e.Name, "", "entity-child table has no single-table inheritance root", nil)
		}
	}
	for _, e := range r.g.Entities {
		for _, c := range r.g.Entities {
			if r.decls.IsInherited(c.Name, e.Name) {
				e.Children = append(e.Children, c.ID)
			}
		}
	}
	return nil
}

// buildStructures runs the structural build for non-child nodes first,
// then for children, which reuse their root's nodes.
func (r *run) buildStructures() error {
	for _, e := range r.entities(func(e *EntityMetadata) bool { return !e.IsChild() }) {
		if err := r.buildStructure(e); err != nil {
			return err
		}
	}
	for _, e := range r.entities((*EntityMetadata).IsChild) {
		if err := r.buildStructure(e); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) deriveAll() error {
	for _, e := range r.g.Entities {
		if err := r.derive(e); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) inverseAll() error {
	for _, e := range r.g.Entities {
		if err := r.resolveInverse(e); err != nil {
			return err
		}
	}
	return nil
}

// computeJoinFlags computes the relations carrying join columns.
func (r *run) computeJoinFlags() error {
	for _, e := range r.g.Entities {
		e.RelationsWithJoinColumns = nil
		e.HasNonNullableRelations = false
		for _, ref := range e.Relations {
			rel := r.g.Relation(ref)
			if !rel.WithJoinColumn {
				continue
			}
			e.RelationsWithJoinColumns = append(e.RelationsWithJoinColumns, ref)
			if !rel.Nullable || rel.Primary {
				e.HasNonNullableRelations = true
			}
		}
	}
	return nil
}

// buildDiscriminatorIndices indexes the discriminator column of every
// single-table inheritance root.
func (r *run) buildDiscriminatorIndices() error {
	for _, e := range r.g.Entities {
		if e.InheritancePattern != load.SingleTable || e.DiscriminatorColumn == 0 {
			continue
		}
		idx := r.g.addIndex(&IndexMetadata{
			Entity:      e.ID,
			Target:      e.Name,
			Columns:     []ColumnRef{e.DiscriminatorColumn},
			Synthesized: true,
		})
		e.OwnIndices = append(e.OwnIndices, idx.ID)
		if err := r.derive(e); err != nil {
			return err
		}
	}
	return nil
}

// normalizeGenerated applies generation declarations to columns and
// defaults their type by strategy.
func (r *run) normalizeGenerated() error {
	for _, e := range r.g.Entities {
		changed := false
		for _, c := range r.g.ColumnsOf(e.Columns) {
			gen := r.decls.FindGenerated(c.Target, c.PropertyName)
			if gen == nil {
				continue
			}
			c.Generated = true
			c.GenerationStrategy = gen.Strategy
			if c.Type == "" {
				switch gen.Strategy {
				case load.UUID:
					c.Type = "uuid"
				default:
					c.Type = "integer"
				}
				r.inheritType(c)
			}
			r.buildColumn(c)
			changed = true
		}
		if changed {
			if err := r.derive(e); err != nil {
				return err
			}
		}
	}
	return nil
}

// inheritType copies the type of c to join columns referencing it that
// have no type yet.
func (r *run) inheritType(c *ColumnMetadata) {
	for _, o := range r.g.Columns {
		if o.ReferencedColumn == c.ID && o.Type == "" {
			o.Type = c.Type
		}
	}
}

// entities returns a snapshot of the entities matching f.
func (r *run) entities(f func(*EntityMetadata) bool) []*EntityMetadata {
	var out []*EntityMetadata
	for _, e := range r.g.Entities {
		if f(e) {
			out = append(out, e)
		}
	}
	return out
}
