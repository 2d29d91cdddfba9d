// Package metadata resolves schema declarations into a relational schema graph.
//
// A Builder reads declarations (tables, columns, relations, embeddeds,
// constraints, inheritance and tree settings) from a Declarations store and
// runs a fixed sequence of phases over them:
//
//	classify -> create -> link -> structure (roots, then children)
//	         -> derive -> inverse -> join columns -> junctions
//	         -> join flags -> closures -> discriminator index
//	         -> constraints -> lazy -> generated
//
// # Graph
//
// The resulting Graph stores every node in arena slices and links nodes by
// typed refs (EntityRef, ColumnRef, ...). A zero ref means none. Single-table
// inheritance children hold the refs of their root's columns and relations,
// so both sides address the same nodes.
//
// Some entities are synthesized: junction tables backing many-to-many
// relations with a join table, and closure tables of closure-table trees.
// They are regular entities of the graph with TableKind Junction and
// ClosureJunction.
//
// # Dialects
//
// Dialect specific behavior is driven by dialect.Capabilities flags:
//
//   - dialect.Exclusions: exclusion constraints are kept.
//   - dialect.UniquesAsIndices: unique constraints become unique indices.
//   - dialect.FilteredUniqueIndices: those indices skip NULL rows.
//   - dialect.UniqueIndicesAsConstraints: unique indices become unique constraints.
//   - dialect.ForeignKeyIndices: every foreign key gets an index, unless
//     the dialect also has dialect.AutoIndexesForeignKeys.
//
// # Errors
//
// Every build error is a configuration error. Build returns no graph on
// error, and the error is one of *SchemaError, *RelationError,
// *JoinColumnError or *ConfigError, naming the entity and property at fault.
package metadata
