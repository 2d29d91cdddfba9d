package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/syssam/schemagraph/compiler/metadata"
	"github.com/syssam/schemagraph/internal/cli/config"
)

func (a *app) newDescribeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe [declaration files...]",
		Short: "Print the resolved schema graph",
		Long: `Print the resolved schema graph as text, YAML or JSON.

Examples:
  schemagraph describe schema.yaml
  schemagraph describe -o yaml --out graph.yaml schema.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.override(cmd, "format", &a.cfg.Output.Format)
			a.override(cmd, "out", &a.cfg.Output.Path)
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			files, err := a.declarations(args)
			if err != nil {
				return err
			}
			g, err := a.build(cmd.Context(), files)
			if err != nil {
				return err
			}
			w, closeOutput, err := a.output(cmd)
			if err != nil {
				return err
			}
			if err := describe(w, g, a.cfg.Output.Format); err != nil {
				_ = closeOutput()
				return err
			}
			return closeOutput()
		},
	}
	cmd.Flags().StringP("format", "o", "", "output format: text, yaml or json")
	cmd.Flags().String("out", "", "write the description to a file")
	return cmd
}

func describe(w io.Writer, g *metadata.Graph, format string) error {
	switch format {
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(summarize(g)); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summarize(g)); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	default:
		return g.Describe(w)
	}
}

type graphSummary struct {
	Dialect  string          `json:"dialect" yaml:"dialect"`
	Entities []entitySummary `json:"entities" yaml:"entities"`
}

type entitySummary struct {
	Name          string              `json:"name" yaml:"name"`
	Table         string              `json:"table" yaml:"table"`
	Kind          string              `json:"kind" yaml:"kind"`
	Parent        string              `json:"parent,omitempty" yaml:"parent,omitempty"`
	Discriminator string              `json:"discriminator,omitempty" yaml:"discriminator,omitempty"`
	Columns       []columnSummary     `json:"columns" yaml:"columns"`
	Relations     []relationSummary   `json:"relations,omitempty" yaml:"relations,omitempty"`
	Indices       []indexSummary      `json:"indices,omitempty" yaml:"indices,omitempty"`
	Uniques       []indexSummary      `json:"uniques,omitempty" yaml:"uniques,omitempty"`
	Checks        []checkSummary      `json:"checks,omitempty" yaml:"checks,omitempty"`
	ForeignKeys   []foreignKeySummary `json:"foreign_keys,omitempty" yaml:"foreign_keys,omitempty"`
}

type columnSummary struct {
	Property  string `json:"property" yaml:"property"`
	Name      string `json:"name" yaml:"name"`
	Type      string `json:"type" yaml:"type"`
	Primary   bool   `json:"primary,omitempty" yaml:"primary,omitempty"`
	Nullable  bool   `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Generated string `json:"generated,omitempty" yaml:"generated,omitempty"`
}

type relationSummary struct {
	Property string   `json:"property" yaml:"property"`
	Kind     string   `json:"kind" yaml:"kind"`
	Target   string   `json:"target" yaml:"target"`
	Inverse  string   `json:"inverse,omitempty" yaml:"inverse,omitempty"`
	Owning   bool     `json:"owning,omitempty" yaml:"owning,omitempty"`
	Columns  []string `json:"join_columns,omitempty" yaml:"join_columns,omitempty"`
	Junction string   `json:"junction,omitempty" yaml:"junction,omitempty"`
}

type indexSummary struct {
	Name    string   `json:"name" yaml:"name"`
	Columns []string `json:"columns" yaml:"columns"`
	Unique  bool     `json:"unique,omitempty" yaml:"unique,omitempty"`
	Where   string   `json:"where,omitempty" yaml:"where,omitempty"`
}

type checkSummary struct {
	Name       string `json:"name" yaml:"name"`
	Expression string `json:"expression" yaml:"expression"`
}

type foreignKeySummary struct {
	Name       string   `json:"name" yaml:"name"`
	Columns    []string `json:"columns" yaml:"columns"`
	References string   `json:"references" yaml:"references"`
	RefColumns []string `json:"referenced_columns" yaml:"referenced_columns"`
	OnDelete   string   `json:"on_delete,omitempty" yaml:"on_delete,omitempty"`
	OnUpdate   string   `json:"on_update,omitempty" yaml:"on_update,omitempty"`
}

// summarize flattens g into a document keyed by names instead of ids.
func summarize(g *metadata.Graph) *graphSummary {
	s := &graphSummary{Dialect: g.Dialect}
	for _, e := range g.Entities {
		es := entitySummary{
			Name:          e.Name,
			Table:         e.TableName,
			Kind:          string(e.TableKind),
			Discriminator: e.DiscriminatorValue,
		}
		if p := g.Entity(e.Parent); p != nil {
			es.Parent = p.Name
		}
		for _, c := range g.ColumnsOf(e.Columns) {
			es.Columns = append(es.Columns, columnSummary{
				Property:  c.PropertyPath,
				Name:      c.DatabaseName,
				Type:      c.Type,
				Primary:   c.Primary,
				Nullable:  c.Nullable,
				Generated: string(c.GenerationStrategy),
			})
		}
		for _, r := range g.RelationsOf(e.Relations) {
			rs := relationSummary{
				Property: r.PropertyPath,
				Kind:     string(r.Kind),
				Target:   r.Type,
				Inverse:  r.InverseSidePropertyPath,
				Owning:   r.Owning,
				Columns:  g.ColumnNames(r.JoinColumns),
			}
			if j := g.Entity(r.Junction); j != nil {
				rs.Junction = j.TableName
			}
			es.Relations = append(es.Relations, rs)
		}
		for _, ref := range e.Indices {
			idx := g.Index(ref)
			es.Indices = append(es.Indices, indexSummary{Name: idx.Name, Columns: g.ColumnNames(idx.Columns), Unique: idx.Unique, Where: idx.Where})
		}
		for _, ref := range e.Uniques {
			u := g.Unique(ref)
			es.Uniques = append(es.Uniques, indexSummary{Name: u.Name, Columns: g.ColumnNames(u.Columns), Unique: true})
		}
		for _, ref := range e.Checks {
			c := g.Check(ref)
			es.Checks = append(es.Checks, checkSummary{Name: c.Name, Expression: c.Expression})
		}
		for _, ref := range e.ForeignKeys {
			fk := g.ForeignKey(ref)
			fs := foreignKeySummary{
				Name:       fk.Name,
				Columns:    g.ColumnNames(fk.Columns),
				RefColumns: g.ColumnNames(fk.ReferencedColumns),
				OnDelete:   fk.OnDelete,
				OnUpdate:   fk.OnUpdate,
			}
			if ref := g.Entity(fk.ReferencedEntity); ref != nil {
				fs.References = ref.TableName
			}
			es.ForeignKeys = append(es.ForeignKeys, fs)
		}
		s.Entities = append(s.Entities, es)
	}
	return s
}
