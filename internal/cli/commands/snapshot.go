package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/syssam/schemagraph/compiler/metadata"
)

// DefaultSnapshot is the snapshot file used when no output path is set.
const DefaultSnapshot = "schemagraph.snapshot"

func (a *app) newSnapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot [declaration files...]",
		Short: "Write a binary snapshot of the resolved graph",
		Long: `Resolve the declarations and write the graph as a msgpack snapshot. A
snapshot is the baseline the diff command compares new declarations with.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.override(cmd, "out", &a.cfg.Output.Path)
			files, err := a.declarations(args)
			if err != nil {
				return err
			}
			g, err := a.build(cmd.Context(), files)
			if err != nil {
				return err
			}
			data, err := g.MarshalMsgpack()
			if err != nil {
				return err
			}
			path := a.cfg.Output.Path
			if path == "" {
				path = DefaultSnapshot
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}
			a.log.Info("snapshot written", zap.String("path", path), zap.Int("bytes", len(data)))
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote snapshot of %d entities to %s\n", len(g.Entities), path)
			return nil
		},
	}
	cmd.Flags().String("out", "", "snapshot file (default is ./"+DefaultSnapshot+")")
	return cmd
}

// readSnapshot loads a graph snapshot from path.
func readSnapshot(path string) (*metadata.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return metadata.UnmarshalSnapshot(data)
}
