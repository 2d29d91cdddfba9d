package gen

import (
	"context"
	"fmt"
	"go/token"
	"path"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/schemagraph/compiler/metadata"
	"github.com/syssam/schemagraph/naming"
)

// File is a rendered Go file and its path relative to the target directory.
type File struct {
	Path string
	*jen.File
}

// Generate renders the constant packages of g and writes them under the
// configured target directory.
func Generate(ctx context.Context, g *metadata.Graph, cfg *Config) error {
	if cfg == nil || cfg.Target == "" || cfg.Package == "" {
		return NewConfigError("Target", nil, "missing target directory or package in config")
	}
	files, err := Files(g, cfg)
	if err != nil {
		return err
	}
	return NewWriter(cfg.Target).WithWorkers(cfg.Workers).Write(ctx, files)
}

// Files renders one constant package per table of g and the root package
// listing them. Files are ordered by table registration.
func Files(g *metadata.Graph, cfg *Config) ([]*File, error) {
	if cfg == nil || cfg.Package == "" {
		return nil, NewConfigError("Package", nil, "missing package path in config")
	}
	var (
		tables = g.Tables()
		files  = make([]*File, 0, len(tables)+1)
		dirs   = make(map[string]string, len(tables))
	)
	for _, e := range tables {
		dir := packageDir(e.Name)
		if dir == "" {
			return nil, NewGenerationError(PhaseRender, "", fmt.Sprintf("entity %q has no valid package name", e.Name), nil)
		}
		if prev, ok := dirs[dir]; ok {
			return nil, NewGenerationError(PhaseRender, dir, fmt.Sprintf("entities %q and %q map to the same package", prev, e.Name), nil)
		}
		dirs[dir] = e.Name
		f, err := genPackage(cfg, g, e, dir)
		if err != nil {
			return nil, err
		}
		files = append(files, &File{Path: path.Join(dir, dir+".go"), File: f})
	}
	files = append(files, &File{Path: "tables.go", File: genTables(cfg, tables)})
	return files, nil
}

func newFile(cfg *Config, name string) *jen.File {
	f := jen.NewFile(name)
	if cfg.Header != "" {
		f.HeaderComment(cfg.Header)
	}
	return f
}

// genTables generates the root package listing every table.
func genTables(cfg *Config, tables []*metadata.EntityMetadata) *jen.File {
	f := newFile(cfg, packageName(cfg.Package))
	f.Comment("Tables holds the names of all tables in registration order.")
	f.Var().Id("Tables").Op("=").Index().String().ValuesFunc(func(vals *jen.Group) {
		for _, e := range tables {
			vals.Qual(path.Join(cfg.Package, packageDir(e.Name)), "Table")
		}
	})
	f.Comment("Junctions holds the names of the synthesized junction and closure tables.")
	f.Var().Id("Junctions").Op("=").Index().String().ValuesFunc(func(vals *jen.Group) {
		for _, e := range tables {
			if e.IsJunction() {
				vals.Lit(e.TableName)
			}
		}
	})
	return f
}

// genPackage generates the constant package of a single table.
func genPackage(cfg *Config, g *metadata.Graph, e *metadata.EntityMetadata, dir string) (*jen.File, error) {
	f := newFile(cfg, dir)
	columns := g.ColumnsOf(e.Columns)
	fields := make([]string, len(columns))
	seen := make(map[string]string)
	claim := func(id, owner string) error {
		if prev, ok := seen[id]; ok {
			return NewGenerationError(PhaseRender, dir, fmt.Sprintf("constant %s is derived from both %q and %q", id, prev, owner), nil)
		}
		seen[id] = owner
		return nil
	}
	for _, id := range []string{"Label", "Table", "Columns", "PrimaryKey", "ValidColumn"} {
		seen[id] = id
	}
	for i, c := range columns {
		fields[i] = "Field" + naming.Pascal(c.DatabaseName)
		if err := claim(fields[i], c.DatabaseName); err != nil {
			return nil, err
		}
	}
	relations := g.RelationsOf(e.Relations)
	for _, rel := range relations {
		if err := claim(edgeConstant(rel), rel.PropertyPath); err != nil {
			return nil, err
		}
	}

	f.Const().DefsFunc(func(defs *jen.Group) {
		defs.Commentf("Label holds the string label denoting the %s type in the database.", e.Name)
		defs.Id("Label").Op("=").Lit(e.Name)
		for i, c := range columns {
			defs.Commentf("%s holds the string denoting the %s column in the database.", fields[i], c.PropertyPath)
			defs.Id(fields[i]).Op("=").Lit(c.DatabaseName)
		}
		for _, rel := range relations {
			defs.Commentf("%s holds the string denoting the %s relation.", edgeConstant(rel), rel.PropertyPath)
			defs.Id(edgeConstant(rel)).Op("=").Lit(rel.PropertyPath)
		}
		defs.Commentf("Table holds the table name of the %s in the database.", e.Name)
		defs.Id("Table").Op("=").Lit(e.TableName)
		for _, rel := range relations {
			genRelationConstants(defs, g, e, rel)
		}
		if e.DiscriminatorColumn != 0 {
			for _, child := range e.Children {
				c := g.Entity(child)
				defs.Commentf("%s is the discriminator value of the %s type.", "Type"+naming.Pascal(c.Name), c.Name)
				defs.Id("Type" + naming.Pascal(c.Name)).Op("=").Lit(c.DiscriminatorValue)
			}
		}
	})

	f.Commentf("Columns holds all SQL columns for %s.", e.Name)
	f.Var().Id("Columns").Op("=").Index().String().ValuesFunc(func(vals *jen.Group) {
		for _, id := range fields {
			vals.Id(id)
		}
	})
	if len(e.PrimaryColumns) > 0 {
		f.Comment("PrimaryKey holds the primary key columns of the table.")
		f.Var().Id("PrimaryKey").Op("=").Index().String().ValuesFunc(func(vals *jen.Group) {
			for _, name := range g.ColumnNames(e.PrimaryColumns) {
				vals.Lit(name)
			}
		})
	}
	var junctions []*metadata.RelationMetadata
	for _, rel := range relations {
		if rel.Junction != 0 {
			junctions = append(junctions, rel)
		}
	}
	if len(junctions) > 0 {
		f.Var().DefsFunc(func(defs *jen.Group) {
			for _, rel := range junctions {
				name := naming.Pascal(rel.PropertyPath) + "PrimaryKey"
				defs.Commentf("%s holds the primary key columns of the %s junction table.", name, rel.PropertyPath)
				defs.Id(name).Op("=").Index().String().ValuesFunc(func(vals *jen.Group) {
					for _, c := range g.ColumnNames(g.Entity(rel.Junction).PrimaryColumns) {
						vals.Lit(c)
					}
				})
			}
		})
	}

	f.Comment("ValidColumn reports if the column name is valid (part of the table columns).")
	f.Func().Id("ValidColumn").Params(jen.Id("column").String()).Bool().Block(
		jen.For(jen.Id("i").Op(":=").Range().Id("Columns")).Block(
			jen.If(jen.Id("column").Op("==").Id("Columns").Index(jen.Id("i"))).Block(
				jen.Return(jen.True()),
			),
		),
		jen.Return(jen.False()),
	)
	return f, nil
}

// genRelationConstants emits the table and column holding a relation.
func genRelationConstants(defs *jen.Group, g *metadata.Graph, e *metadata.EntityMetadata, rel *metadata.RelationMetadata) {
	name := naming.Pascal(rel.PropertyPath)
	target := g.Entity(rel.InverseEntity)
	if target == nil {
		return
	}
	if j := g.Entity(rel.Junction); j != nil {
		defs.Commentf("%sTable is the table that holds the %s relation. The primary key declared below.", name, rel.PropertyPath)
		defs.Id(name + "Table").Op("=").Lit(j.TableName)
	} else {
		holder := e
		if len(rel.JoinColumns) == 0 {
			holder = target
		}
		defs.Commentf("%sTable is the table that holds the %s relation.", name, rel.PropertyPath)
		defs.Id(name + "Table").Op("=").Lit(rootTable(g, holder))
		if cols := joinColumns(g, rel); len(cols) == 1 {
			defs.Commentf("%sColumn is the table column denoting the %s relation.", name, rel.PropertyPath)
			defs.Id(name + "Column").Op("=").Lit(cols[0])
		}
	}
	if target.ID != e.ID {
		defs.Commentf("%sInverseTable is the table name for the %s entity.", name, target.Name)
		defs.Id(name + "InverseTable").Op("=").Lit(rootTable(g, target))
	}
}

// joinColumns returns the foreign key columns of a non junction relation,
// looking at the inverse side when rel does not own them.
func joinColumns(g *metadata.Graph, rel *metadata.RelationMetadata) []string {
	if len(rel.JoinColumns) > 0 {
		return g.ColumnNames(rel.JoinColumns)
	}
	if inv := g.Relation(rel.InverseRelation); inv != nil && inv.Junction == 0 {
		return g.ColumnNames(inv.JoinColumns)
	}
	return nil
}

func rootTable(g *metadata.Graph, e *metadata.EntityMetadata) string {
	for e.Parent != 0 {
		e = g.Entity(e.Parent)
	}
	return e.TableName
}

func edgeConstant(rel *metadata.RelationMetadata) string {
	return "Edge" + naming.Pascal(rel.PropertyPath)
}

// packageDir returns the lowercase package name of an entity.
func packageDir(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	s := b.String()
	switch {
	case s == "":
	case unicode.IsDigit(rune(s[0])):
		s = "t" + s
	case token.IsKeyword(s):
		s += "table"
	}
	return s
}

// packageName returns the last element of an import path.
func packageName(pkg string) string {
	return path.Base(strings.TrimSuffix(pkg, "/"))
}
