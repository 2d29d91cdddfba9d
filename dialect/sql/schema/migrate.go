package schema

import (
	"context"
	"errors"
	"fmt"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/sqlite"
	"go.uber.org/zap"

	"github.com/syssam/schemagraph/compiler/metadata"
	"github.com/syssam/schemagraph/dialect"
	dsql "github.com/syssam/schemagraph/dialect/sql"
)

// ErrBreakingChange is returned by Migrate when the migration has breaking
// changes that were not allowed.
var ErrBreakingChange = errors.New("schema: breaking change")

// Migration describes a migration of a live database to a graph.
type Migration struct {
	// Result holds the validation of the changes.
	Result *ValidationResult
	// Plan holds the statements of the migration. It is nil when the
	// database is up to date.
	Plan *migrate.Plan
	// Applied reports if the plan was executed.
	Applied bool
}

// MigrateOption configures Migrate.
type MigrateOption func(*migrateConfig)

type migrateConfig struct {
	schema   string
	dryRun   bool
	validate []ValidateOption
	log      *zap.Logger
}

// WithSchema sets the database schema to migrate. The default is the
// schema of the connection.
func WithSchema(name string) MigrateOption {
	return func(c *migrateConfig) { c.schema = name }
}

// WithDryRun plans the migration without executing it.
func WithDryRun() MigrateOption {
	return func(c *migrateConfig) { c.dryRun = true }
}

// WithValidateOptions sets the options used to validate the changes.
func WithValidateOptions(opts ...ValidateOption) MigrateOption {
	return func(c *migrateConfig) { c.validate = append(c.validate, opts...) }
}

// WithMigrateLogger sets the logger of the migration.
func WithMigrateLogger(l *zap.Logger) MigrateOption {
	return func(c *migrateConfig) {
		if l != nil {
			c.log = l
		}
	}
}

func atlasDriver(drv *dsql.Driver) (migrate.Driver, error) {
	switch drv.Dialect() {
	case dialect.Postgres, dialect.Cockroach:
		return postgres.Open(drv)
	case dialect.MySQL, dialect.MariaDB:
		return mysql.Open(drv)
	case dialect.SQLite:
		return sqlite.Open(drv)
	}
	return nil, fmt.Errorf("schema: dialect %q cannot be migrated", drv.Dialect())
}

// Migrate inspects the database behind drv and brings its schema to the
// tables of g. The changes are validated first and nothing is executed
// when the validation has errors. The statements run in one transaction.
func Migrate(ctx context.Context, drv *dsql.Driver, g *metadata.Graph, opts ...MigrateOption) (*Migration, error) {
	cfg := &migrateConfig{log: zap.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}
	if drv.Dialect() != g.Dialect {
		return nil, fmt.Errorf("schema: graph was resolved for %s, database is %s", g.Dialect, drv.Dialect())
	}
	ad, err := atlasDriver(drv)
	if err != nil {
		return nil, err
	}
	current, err := ad.InspectSchema(ctx, cfg.schema, nil)
	if err != nil {
		return nil, fmt.Errorf("schema: inspect: %w", err)
	}
	desired, err := Export(g, current.Name)
	if err != nil {
		return nil, err
	}
	m := &Migration{Result: ValidateDiff(current, desired, cfg.validate...)}
	changes, err := ad.SchemaDiff(current, desired)
	if err != nil {
		return nil, fmt.Errorf("schema: diff: %w", err)
	}
	if len(changes) == 0 {
		cfg.log.Info("database is up to date", zap.String("schema", current.Name))
		return m, nil
	}
	if m.Plan, err = ad.PlanChanges(ctx, "migrate", changes); err != nil {
		return nil, fmt.Errorf("schema: plan changes: %w", err)
	}
	if m.Result.HasErrors() {
		return m, fmt.Errorf("%w: %d error(s)", ErrBreakingChange, len(m.Result.Errors))
	}
	if cfg.dryRun {
		return m, nil
	}
	if err := apply(ctx, drv, m.Plan); err != nil {
		return m, err
	}
	m.Applied = true
	cfg.log.Info("migration applied", zap.String("schema", current.Name), zap.Int("changes", len(m.Plan.Changes)))
	return m, nil
}

func apply(ctx context.Context, drv *dsql.Driver, plan *migrate.Plan) error {
	tx, err := drv.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, c := range plan.Changes {
		if _, err := tx.ExecContext(ctx, c.Cmd, c.Args...); err != nil {
			return errors.Join(fmt.Errorf("schema: apply %q: %w", c.Cmd, err), tx.Rollback())
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("schema: commit: %w", err)
	}
	return nil
}
