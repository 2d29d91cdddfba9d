// Package commands implements the schemagraph command line.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/syssam/schemagraph/compiler/load"
	"github.com/syssam/schemagraph/compiler/metadata"
	"github.com/syssam/schemagraph/internal/cli/config"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
)

// app holds the state shared by all commands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	log     *zap.Logger
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	a := &app{v: config.New()}
	root := &cobra.Command{
		Use:   "schemagraph",
		Short: "Resolve relational schema declarations into a schema graph",
		Long: `schemagraph reads table, column and relation declarations and resolves
them into the complete relational schema: inherited and embedded columns,
join columns, junction and closure tables, indices, uniques, checks and
foreign keys with their final names.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./schemagraph.yaml)")
	flags.String("dialect", "", "database dialect the graph is resolved for")
	flags.String("schema", "", "database schema name used for exports")
	flags.BoolP("verbose", "v", false, "log every build phase")
	for _, key := range []string{"dialect", "schema", "verbose"} {
		_ = a.v.BindPFlag(key, flags.Lookup(key))
	}

	root.AddCommand(
		a.newBuildCommand(),
		a.newDescribeCommand(),
		a.newSnapshotCommand(),
		a.newGenCommand(),
		a.newDiffCommand(),
		a.newMigrateCommand(),
		a.newWatchCommand(),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "schemagraph %s (commit %s, %s)\n", Version, GitCommit, runtime.Version())
		},
	}
}

func (a *app) init() error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = newLogger(cfg.Verbose)
	return nil
}

// newLogger builds a development logger at debug level when verbose and at
// warn level otherwise.
func newLogger(verbose bool) *zap.Logger {
	c := zap.NewDevelopmentConfig()
	if !verbose {
		c.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	l, err := c.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// declarations returns the declaration files named on the command line,
// or the configured ones.
func (a *app) declarations(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if len(a.cfg.Declarations) > 0 {
		return a.cfg.Declarations, nil
	}
	return nil, errors.New("no declaration files: pass them as arguments or set declarations in the config")
}

// build loads the declaration files and resolves the graph.
func (a *app) build(ctx context.Context, files []string) (*metadata.Graph, error) {
	s, err := load.ReadFiles(ctx, files...)
	if err != nil {
		return nil, err
	}
	b, err := metadata.NewBuilder(s,
		metadata.WithDialectName(a.cfg.Dialect),
		metadata.WithLogger(a.log),
	)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx)
}

// override replaces *dst by the value of a command flag set on the command
// line. Command flags are not bound to viper since several commands share
// the same config keys.
func (a *app) override(cmd *cobra.Command, flag string, dst *string) {
	if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
		*dst = f.Value.String()
	}
}

// output opens the configured output file, or returns the command output.
func (a *app) output(cmd *cobra.Command) (io.Writer, func() error, error) {
	if a.cfg.Output.Path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(a.cfg.Output.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, f.Close, nil
}
