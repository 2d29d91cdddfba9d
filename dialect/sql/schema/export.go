// Package schema converts resolved schema graphs into atlas schemas and
// validates them.
package schema

import (
	"fmt"
	"strings"

	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/schemagraph/compiler/load"
	"github.com/syssam/schemagraph/compiler/metadata"
	"github.com/syssam/schemagraph/dialect"
)

// Export converts every table of g into an atlas schema named name.
// Exclusion constraints have no atlas representation and are left out.
func Export(g *metadata.Graph, name string) (*schema.Schema, error) {
	d, err := dialect.Lookup(g.Dialect)
	if err != nil {
		return nil, fmt.Errorf("schema: export: %w", err)
	}
	x := &exporter{
		g:       g,
		d:       d,
		tables:  make(map[metadata.EntityRef]*schema.Table),
		columns: make(map[metadata.ColumnRef]*schema.Column),
	}
	s := schema.New(name)
	entities := g.Tables()
	for _, e := range entities {
		t, err := x.table(e)
		if err != nil {
			return nil, err
		}
		s.AddTables(t)
	}
	for _, e := range entities {
		if err := x.foreignKeys(e); err != nil {
			return nil, err
		}
	}
	return s, nil
}

type exporter struct {
	g       *metadata.Graph
	d       *dialect.Dialect
	tables  map[metadata.EntityRef]*schema.Table
	columns map[metadata.ColumnRef]*schema.Column
}

func (x *exporter) table(e *metadata.EntityMetadata) (*schema.Table, error) {
	t := schema.NewTable(e.TableName)
	if e.Comment != "" {
		t.SetComment(e.Comment)
	}
	for _, c := range x.g.ColumnsOf(e.Columns) {
		if _, ok := t.Column(c.DatabaseName); ok {
			return nil, fmt.Errorf("schema: table %q: column %q is mapped more than once", e.TableName, c.DatabaseName)
		}
		col, err := x.column(e, c)
		if err != nil {
			return nil, err
		}
		t.AddColumns(col)
		x.columns[c.ID] = col
	}
	if len(e.PrimaryColumns) > 0 {
		t.SetPrimaryKey(schema.NewPrimaryKey(x.lookup(e.PrimaryColumns)...))
	}
	for _, ref := range e.Indices {
		idx := x.g.Index(ref)
		i := schema.NewIndex(idx.Name).SetUnique(idx.Unique).AddColumns(x.lookup(idx.Columns)...)
		if attr := x.predicate(idx.Where); attr != nil {
			i.AddAttrs(attr)
		}
		if attr := x.indexType(idx); attr != nil {
			i.AddAttrs(attr)
		}
		t.AddIndexes(i)
	}
	for _, ref := range e.Uniques {
		u := x.g.Unique(ref)
		t.AddIndexes(schema.NewUniqueIndex(u.Name).AddColumns(x.lookup(u.Columns)...))
	}
	for _, ref := range e.Checks {
		c := x.g.Check(ref)
		t.AddChecks(schema.NewCheck().SetName(c.Name).SetExpr(c.Expression))
	}
	x.tables[e.ID] = t
	return t, nil
}

func (x *exporter) column(e *metadata.EntityMetadata, c *metadata.ColumnMetadata) (*schema.Column, error) {
	typ, err := x.columnType(c)
	if err != nil {
		return nil, fmt.Errorf("schema: table %q: %w", e.TableName, err)
	}
	col := schema.NewColumn(c.DatabaseName).SetType(typ).SetNull(c.Nullable)
	if c.Comment != "" {
		col.SetComment(c.Comment)
	}
	if c.Default != nil {
		col.SetDefault(literal(c.Default))
	}
	if c.Generated && x.identity() && (c.GenerationStrategy == load.Increment || c.GenerationStrategy == load.Identity) {
		col.AddAttrs(&postgres.Identity{Generation: "BY DEFAULT"})
	}
	return col, nil
}

// foreignKeys adds the foreign keys of e once all tables exist.
func (x *exporter) foreignKeys(e *metadata.EntityMetadata) error {
	t := x.tables[e.ID]
	for _, ref := range e.ForeignKeys {
		fk := x.g.ForeignKey(ref)
		target := x.g.Entity(fk.ReferencedEntity)
		for target != nil && target.Parent != 0 {
			target = x.g.Entity(target.Parent)
		}
		rt, ok := x.tables[target.ID]
		if !ok {
			return fmt.Errorf("schema: foreign key %q references unknown table %q", fk.Name, target.TableName)
		}
		f := schema.NewForeignKey(fk.Name).
			AddColumns(x.lookup(fk.Columns)...).
			SetRefTable(rt).
			AddRefColumns(x.lookup(fk.ReferencedColumns)...)
		if fk.OnDelete != "" {
			f.SetOnDelete(schema.ReferenceOption(strings.ToUpper(fk.OnDelete)))
		}
		if fk.OnUpdate != "" {
			f.SetOnUpdate(schema.ReferenceOption(strings.ToUpper(fk.OnUpdate)))
		}
		t.AddForeignKeys(f)
	}
	return nil
}

func (x *exporter) lookup(refs []metadata.ColumnRef) []*schema.Column {
	cols := make([]*schema.Column, 0, len(refs))
	for _, ref := range refs {
		if c, ok := x.columns[ref]; ok {
			cols = append(cols, c)
		}
	}
	return cols
}

func (x *exporter) identity() bool {
	return x.d.Name() == dialect.Postgres
}

// predicate returns the partial index attribute of the dialect.
func (x *exporter) predicate(where string) schema.Attr {
	if where == "" {
		return nil
	}
	switch x.d.Name() {
	case dialect.Postgres, dialect.Cockroach:
		return &postgres.IndexPredicate{P: where}
	case dialect.SQLite:
		return &sqlite.IndexPredicate{P: where}
	}
	return nil
}

func (x *exporter) indexType(idx *metadata.IndexMetadata) schema.Attr {
	switch name := x.d.Name(); {
	case idx.Spatial && name == dialect.Postgres:
		return &postgres.IndexType{T: postgres.IndexTypeGiST}
	case idx.Fulltext && name == dialect.Postgres:
		return &postgres.IndexType{T: postgres.IndexTypeGIN}
	case idx.Spatial && (name == dialect.MySQL || name == dialect.MariaDB):
		return &mysql.IndexType{T: mysql.IndexTypeSpatial}
	case idx.Fulltext && (name == dialect.MySQL || name == dialect.MariaDB):
		return &mysql.IndexType{T: mysql.IndexTypeFullText}
	}
	return nil
}

// columnType maps the declared type of c to an atlas type.
func (x *exporter) columnType(c *metadata.ColumnMetadata) (schema.Type, error) {
	if c.Type == "" {
		return nil, fmt.Errorf("column %q has no type", c.DatabaseName)
	}
	t := x.d.NormalizeType(c.Type)
	base := t
	if i := strings.IndexByte(base, '('); i > 0 {
		base = strings.TrimSpace(base[:i])
	}
	switch base {
	case "smallint", "integer", "int", "bigint", "tinyint", "mediumint", "int2", "int4", "int8", "number", "serial", "bigserial":
		return &schema.IntegerType{T: t}, nil
	case "varchar", "char", "character", "character varying", "text", "string", "nvarchar", "nchar", "varchar2", "mediumtext", "longtext":
		return &schema.StringType{T: t, Size: c.Length}, nil
	case "boolean", "bool", "bit":
		return &schema.BoolType{T: t}, nil
	case "date", "time", "datetime", "datetime2", "timestamp", "timestamptz",
		"timestamp without time zone", "timestamp with time zone":
		return &schema.TimeType{T: t}, nil
	case "real", "float", "float4", "float8", "double", "double precision":
		return &schema.FloatType{T: t}, nil
	case "decimal", "numeric":
		return &schema.DecimalType{T: t, Precision: c.Precision, Scale: c.Scale}, nil
	case "uuid", "uniqueidentifier":
		return &schema.UUIDType{T: t}, nil
	case "json", "jsonb":
		return &schema.JSONType{T: t}, nil
	case "bytea", "blob", "binary", "varbinary":
		return &schema.BinaryType{T: t}, nil
	}
	return &schema.UnsupportedType{T: t}, nil
}

func literal(v any) schema.Expr {
	if s, ok := v.(string); ok {
		return &schema.Literal{V: "'" + strings.ReplaceAll(s, "'", "''") + "'"}
	}
	return &schema.Literal{V: fmt.Sprint(v)}
}
