package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/syssam/schemagraph/internal/watch"
)

func (a *app) newWatchCommand() *cobra.Command {
	var (
		generate bool
		delay    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch [declaration files...]",
		Short: "Rebuild the graph whenever a declaration file changes",
		Long: `Watch the declaration files and rebuild and validate the whole graph on
every change. With --gen the constant packages are regenerated as well.
Press Ctrl+C to stop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := a.declarations(args)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			rebuild := func(ctx context.Context, changed []string) error {
				if len(changed) > 0 {
					a.log.Info("rebuilding", zap.Strings("changed", changed))
				}
				g, err := a.build(ctx, files)
				if err != nil {
					color.New(color.FgRed).Fprintf(w, "error: %v\n", err)
					return nil
				}
				result, err := a.validate(g)
				if err != nil {
					return err
				}
				report(w, g, result)
				if generate && !result.HasErrors() {
					return a.generate(ctx, w, g)
				}
				return nil
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := rebuild(ctx, nil); err != nil {
				return err
			}
			watcher, err := watch.New(files, delay, a.log)
			if err != nil {
				return err
			}
			color.New(color.FgYellow).Fprintln(w, "Watching for changes, press Ctrl+C to stop")
			if err := watcher.Run(ctx, rebuild); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&generate, "gen", false, "regenerate the constant packages after each build")
	cmd.Flags().DurationVar(&delay, "delay", watch.DefaultDelay, "quiet period before rebuilding")
	return cmd
}
