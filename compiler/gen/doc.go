// Package gen generates Go name constants from a resolved schema graph.
//
// Every table of the graph gets its own package holding the table name,
// one constant per column and relation, the ordered column list and a
// ValidColumn helper. The root package lists all tables:
//
//	<target>/
//	├── tables.go      (package <root>: Tables)
//	├── user/user.go   (package user: Table, FieldID, FieldEmail, ...)
//	└── postscategories/postscategories.go
//
// Files are rendered with jennifer and written in parallel:
//
//	cfg, err := gen.NewConfig(gen.WithPackage("example.com/app/schema"), gen.WithTarget("./schema"))
//	if err != nil {
//	    return err
//	}
//	if err := gen.Generate(ctx, graph, cfg); err != nil {
//	    return err
//	}
package gen
