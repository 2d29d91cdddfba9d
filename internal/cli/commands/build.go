package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syssam/schemagraph/compiler/metadata"
	"github.com/syssam/schemagraph/dialect/sql/schema"
)

func (a *app) newBuildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "build [declaration files...]",
		Short: "Resolve and validate the schema graph",
		Long: `Resolve the declarations into the schema graph, export it to tables and
validate them. The command fails on declaration or validation errors.

Examples:
  schemagraph build users.yaml posts.yaml
  schemagraph build --dialect mysql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := a.declarations(args)
			if err != nil {
				return err
			}
			g, err := a.build(cmd.Context(), files)
			if err != nil {
				return err
			}
			result, err := a.validate(g)
			if err != nil {
				return err
			}
			report(cmd.OutOrStdout(), g, result)
			if result.HasErrors() {
				return fmt.Errorf("schema validation failed with %d error(s)", len(result.Errors))
			}
			return nil
		},
	}
}

// validate exports g and validates the resulting tables.
func (a *app) validate(g *metadata.Graph) (*schema.ValidationResult, error) {
	s, err := schema.Export(g, a.cfg.Schema)
	if err != nil {
		return nil, err
	}
	return schema.ValidateSchema(s), nil
}

// report prints the graph statistics and the validation result.
func report(w io.Writer, g *metadata.Graph, result *schema.ValidationResult) {
	var junctions int
	tables := g.Tables()
	for _, e := range tables {
		if e.IsJunction() {
			junctions++
		}
	}
	color.New(color.FgGreen).Fprintf(w, "Resolved %d entities into %d tables (%d junction) for %s\n",
		len(g.Entities), len(tables), junctions, g.Dialect)
	fmt.Fprintf(w, "  %d columns, %d relations, %d indices, %d uniques, %d foreign keys\n",
		len(g.Columns), len(g.Relations), len(g.Indices), len(g.Uniques), len(g.ForeignKeys))
	printResult(w, result)
}

func printResult(w io.Writer, result *schema.ValidationResult) {
	for _, e := range result.Errors {
		color.New(color.FgRed).Fprintf(w, "error: %s\n", e)
	}
	for _, e := range result.Warnings {
		color.New(color.FgYellow).Fprintf(w, "warning: %s\n", e)
	}
}
