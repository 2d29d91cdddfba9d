package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/schemagraph/dialect/sql/schema"
)

func (a *app) newDiffCommand() *cobra.Command {
	var (
		snapshot string
		plan     bool
		allow    allowFlags
	)
	cmd := &cobra.Command{
		Use:   "diff [declaration files...]",
		Short: "Compare the declarations with a snapshot",
		Long: `Resolve the declarations and compare the resulting tables with a graph
snapshot. Breaking changes fail the command unless allowed by a flag.

Examples:
  schemagraph diff --snapshot schemagraph.snapshot schema.yaml
  schemagraph diff --snapshot schemagraph.snapshot --plan --allow-drop-column`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prev, err := readSnapshot(snapshot)
			if err != nil {
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
			if prev.Dialect != g.Dialect {
				return fmt.Errorf("snapshot was resolved for %s, declarations for %s", prev.Dialect, g.Dialect)
			}
			current, err := schema.Export(prev, a.cfg.Schema)
			if err != nil {
				return err
			}
			desired, err := schema.Export(g, a.cfg.Schema)
			if err != nil {
				return err
			}
			result := schema.ValidateDiff(current, desired, allow.options()...)
			w := cmd.OutOrStdout()
			printResult(w, result)
			if plan {
				p, err := schema.Plan(cmd.Context(), g.Dialect, "diff", current, desired)
				switch {
				case errors.Is(err, schema.ErrNoPlan):
					fmt.Fprintln(w, "No schema changes")
				case err != nil:
					return err
				default:
					for _, c := range p.Changes {
						fmt.Fprintf(w, "%s;\n", c.Cmd)
					}
				}
			}
			if result.HasErrors() {
				return fmt.Errorf("diff found %d breaking change(s)", len(result.Errors))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&snapshot, "snapshot", DefaultSnapshot, "snapshot to compare with")
	cmd.Flags().BoolVar(&plan, "plan", false, "print the statements migrating the snapshot schema")
	allow.register(cmd)
	return cmd
}

// allowFlags turns breaking changes into warnings.
type allowFlags struct {
	dropColumn, dropTable, dropIndex, nullToNotNull bool
}

func (f *allowFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.dropColumn, "allow-drop-column", false, "report dropped columns as warnings")
	cmd.Flags().BoolVar(&f.dropTable, "allow-drop-table", false, "report dropped tables as warnings")
	cmd.Flags().BoolVar(&f.dropIndex, "allow-drop-index", false, "report dropped indices as warnings")
	cmd.Flags().BoolVar(&f.nullToNotNull, "allow-null-to-not-null", false, "report columns becoming NOT NULL as warnings")
}

func (f *allowFlags) options() []schema.ValidateOption {
	var opts []schema.ValidateOption
	if f.dropColumn {
		opts = append(opts, schema.AllowDropColumn())
	}
	if f.dropTable {
		opts = append(opts, schema.AllowDropTable())
	}
	if f.dropIndex {
		opts = append(opts, schema.AllowDropIndex())
	}
	if f.nullToNotNull {
		opts = append(opts, schema.AllowNullToNotNull())
	}
	return opts
}
