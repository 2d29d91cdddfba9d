package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/syssam/schemagraph/compiler/gen"
	"github.com/syssam/schemagraph/compiler/metadata"
)

func (a *app) newGenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen [declaration files...]",
		Short: "Generate Go constants for tables and columns",
		Long: `Generate one Go package per table holding its table, column and relation
names, and a root package listing all tables.

Examples:
  schemagraph gen --package example.com/app/schema --target ./schema schema.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.override(cmd, "package", &a.cfg.Gen.Package)
			a.override(cmd, "target", &a.cfg.Gen.Target)
			files, err := a.declarations(args)
			if err != nil {
				return err
			}
			g, err := a.build(cmd.Context(), files)
			if err != nil {
				return err
			}
			return a.generate(cmd.Context(), cmd.OutOrStdout(), g)
		},
	}
	cmd.Flags().String("package", "", "import path of the generated root package")
	cmd.Flags().String("target", "", "output directory of the generated packages")
	return cmd
}

func (a *app) generate(ctx context.Context, w io.Writer, g *metadata.Graph) error {
	cfg, err := gen.NewConfig(gen.WithPackage(a.cfg.Gen.Package), gen.WithTarget(a.cfg.Gen.Target))
	if err != nil {
		return err
	}
	if err := gen.Generate(ctx, g, cfg); err != nil {
		return err
	}
	fmt.Fprintf(w, "Generated %d table packages in %s\n", len(g.Tables()), cfg.Target)
	return nil
}
