package metadata

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Describe writes a line-oriented description of the graph to w, one
// block per entity in node order. The output is stable for a given graph.
func (g *Graph) Describe(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for i, e := range g.Entities {
		if i > 0 {
			bw.WriteString("\n")
		}
		g.describeEntity(bw, e)
	}
	return bw.Flush()
}

// String returns the description of the graph.
func (g *Graph) String() string {
	var b strings.Builder
	_ = g.Describe(&b)
	return b.String()
}

func (g *Graph) describeEntity(w *bufio.Writer, e *EntityMetadata) {
	head := []string{"entity", e.Name, "table=" + e.TableName, "kind=" + string(e.TableKind)}
	if p := g.Entity(e.Parent); p != nil {
		head = append(head, "parent="+p.Name)
	}
	if e.InheritancePattern != "" {
		head = append(head, "inheritance="+string(e.InheritancePattern))
	}
	if e.InheritancePattern != "" || e.Parent != 0 {
		head = append(head, "discriminator="+e.DiscriminatorValue)
	}
	if e.TreeKind != "" {
		head = append(head, "tree="+string(e.TreeKind))
	}
	if c := g.Entity(e.ClosureJunction); c != nil {
		head = append(head, "closure="+c.TableName)
	}
	fmt.Fprintln(w, strings.Join(head, " "))
	for _, c := range g.ColumnsOf(e.Columns) {
		fmt.Fprintf(w, "  column %s %s %s%s\n", c.PropertyPath, c.DatabaseName, columnType(c), g.columnFlags(c))
	}
	for _, r := range g.RelationsOf(e.Relations) {
		fmt.Fprintf(w, "  relation %s %s %s%s\n", r.PropertyPath, r.Kind, r.Type, g.relationFlags(r))
	}
	for _, ref := range e.Indices {
		idx := g.Index(ref)
		line := fmt.Sprintf("  index %s (%s)", idx.Name, strings.Join(g.ColumnNames(idx.Columns), ", "))
		if idx.Unique {
			line += " unique"
		}
		if idx.Spatial {
			line += " spatial"
		}
		if idx.Fulltext {
			line += " fulltext"
		}
		if idx.Where != "" {
			line += " where " + idx.Where
		}
		fmt.Fprintln(w, line)
	}
	for _, ref := range e.Uniques {
		u := g.Unique(ref)
		fmt.Fprintf(w, "  unique %s (%s)\n", u.Name, strings.Join(g.ColumnNames(u.Columns), ", "))
	}
	for _, ref := range e.ForeignKeys {
		fk := g.ForeignKey(ref)
		line := fmt.Sprintf("  foreign key %s (%s) -> %s(%s)", fk.Name,
			strings.Join(g.ColumnNames(fk.Columns), ", "),
			g.Entity(fk.ReferencedEntity).TableName,
			strings.Join(g.ColumnNames(fk.ReferencedColumns), ", "))
		if fk.OnDelete != "" {
			line += " on delete " + fk.OnDelete
		}
		if fk.OnUpdate != "" {
			line += " on update " + fk.OnUpdate
		}
		fmt.Fprintln(w, line)
	}
	for _, ref := range e.Checks {
		c := g.Check(ref)
		fmt.Fprintf(w, "  check %s %s\n", c.Name, c.Expression)
	}
	for _, ref := range e.Exclusions {
		x := g.Exclusion(ref)
		fmt.Fprintf(w, "  exclusion %s %s\n", x.Name, x.Expression)
	}
	for _, ref := range e.Listeners {
		l := g.Listener(ref)
		fmt.Fprintf(w, "  listener %s %s\n", l.Kind, l.Method)
	}
}

func columnType(c *ColumnMetadata) string {
	t := c.Type
	if t == "" {
		t = "-"
	}
	if c.Length > 0 {
		t += fmt.Sprintf("(%d)", c.Length)
	}
	return t
}

func (g *Graph) columnFlags(c *ColumnMetadata) string {
	var flags []string
	add := func(ok bool, s string) {
		if ok {
			flags = append(flags, s)
		}
	}
	add(c.Primary, "primary")
	add(c.Nullable, "nullable")
	add(c.Generated, "generated="+string(c.GenerationStrategy))
	add(c.Virtual, "virtual")
	add(c.Discriminator, "discriminator")
	add(c.Version, "version")
	add(c.CreateDate, "create-date")
	add(c.UpdateDate, "update-date")
	add(c.DeleteDate, "delete-date")
	add(c.TreeLevel, "tree-level")
	add(c.NestedSetLeft, "nested-set-left")
	add(c.NestedSetRight, "nested-set-right")
	add(c.MaterializedPath, "materialized-path")
	add(c.ClosureType != "", string(c.ClosureType))
	if ref := g.Column(c.ReferencedColumn); ref != nil {
		flags = append(flags, "references="+g.Entity(ref.Entity).TableName+"."+ref.DatabaseName)
	}
	if len(flags) == 0 {
		return ""
	}
	return " " + strings.Join(flags, " ")
}

func (g *Graph) relationFlags(r *RelationMetadata) string {
	var flags []string
	if r.InverseSidePropertyPath != "" {
		flags = append(flags, "inverse="+r.InverseSidePropertyPath)
	}
	if r.Owning {
		flags = append(flags, "owning")
	}
	if r.Nullable {
		flags = append(flags, "nullable")
	}
	if r.Lazy {
		flags = append(flags, "lazy")
	}
	if r.Eager {
		flags = append(flags, "eager")
	}
	if len(r.JoinColumns) > 0 {
		flags = append(flags, "join=("+strings.Join(g.ColumnNames(r.JoinColumns), ", ")+")")
	}
	if j := g.Entity(r.Junction); j != nil {
		flags = append(flags, "junction="+j.TableName)
	}
	if len(flags) == 0 {
		return ""
	}
	return " " + strings.Join(flags, " ")
}
