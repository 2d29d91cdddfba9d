package commands

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syssam/schemagraph/dialect"
	dsql "github.com/syssam/schemagraph/dialect/sql"
	"github.com/syssam/schemagraph/dialect/sql/schema"
)

func (a *app) newMigrateCommand() *cobra.Command {
	var (
		dryRun bool
		allow  allowFlags
	)
	cmd := &cobra.Command{
		Use:   "migrate [declaration files...]",
		Short: "Migrate a database to the resolved tables",
		Long: `Inspect the database, compare its schema with the resolved tables and apply
the planned statements in one transaction. Breaking changes stop the
migration unless allowed by a flag.

Examples:
  schemagraph migrate --dsn "postgres://localhost/app?sslmode=disable" schema.yaml
  schemagraph migrate --dialect sqlite --dsn file:app.db --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.override(cmd, "dsn", &a.cfg.Database.DSN)
			if a.cfg.Database.DSN == "" {
				return errors.New("no database: pass --dsn or set database.dsn in the config")
			}
			files, err := a.declarations(args)
			if err != nil {
				return err
			}
			g, err := a.build(cmd.Context(), files)
			if err != nil {
				return err
			}
			drv, err := dsql.Open(g.Dialect, a.cfg.Database.DSN, dsql.WithLogger(a.log))
			if err != nil {
				return err
			}
			defer drv.Close()

			opts := []schema.MigrateOption{
				schema.WithValidateOptions(allow.options()...),
				schema.WithMigrateLogger(a.log),
			}
			if g.Dialect == dialect.Postgres || g.Dialect == dialect.Cockroach {
				opts = append(opts, schema.WithSchema(a.cfg.Schema))
			}
			if dryRun {
				opts = append(opts, schema.WithDryRun())
			}
			m, err := schema.Migrate(cmd.Context(), drv, g, opts...)
			w := cmd.OutOrStdout()
			if m != nil {
				printResult(w, m.Result)
				if m.Plan == nil {
					fmt.Fprintln(w, "No schema changes")
				} else {
					for _, c := range m.Plan.Changes {
						fmt.Fprintf(w, "%s;\n", c.Cmd)
					}
				}
				if m.Applied {
					color.New(color.FgGreen).Fprintf(w, "Applied %d changes\n", len(m.Plan.Changes))
				}
			}
			a.log.Debug(drv.Stats().String())
			return err
		},
	}
	cmd.Flags().String("dsn", "", "data source name of the database")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the statements without executing them")
	allow.register(cmd)
	return cmd
}
