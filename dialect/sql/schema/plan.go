package schema

import (
	"context"
	"errors"
	"fmt"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/schemagraph/dialect"
)

// ErrNoPlan is returned by Plan when the schemas are equal.
var ErrNoPlan = migrate.ErrNoPlan

// differ pairs the offline diff and plan implementations of a dialect.
type differ struct {
	schema.Differ
	migrate.PlanApplier
}

func differFor(name string) (*differ, error) {
	switch name {
	case dialect.Postgres, dialect.Cockroach:
		return &differ{postgres.DefaultDiff, postgres.DefaultPlan}, nil
	case dialect.MySQL, dialect.MariaDB:
		return &differ{mysql.DefaultDiff, mysql.DefaultPlan}, nil
	case dialect.SQLite:
		return &differ{sqlite.DefaultDiff, sqlite.DefaultPlan}, nil
	}
	return nil, fmt.Errorf("schema: dialect %q has no migration planner", name)
}

// Plan computes the statements migrating from current to desired in the
// given dialect. A nil current plans the creation of desired from scratch.
func Plan(ctx context.Context, dialectName, name string, current, desired *schema.Schema) (*migrate.Plan, error) {
	d, err := dialect.Lookup(dialectName)
	if err != nil {
		return nil, fmt.Errorf("schema: plan: %w", err)
	}
	df, err := differFor(d.Name())
	if err != nil {
		return nil, err
	}
	if desired == nil {
		return nil, errors.New("schema: plan: missing desired schema")
	}
	if current == nil {
		current = schema.New(desired.Name)
	}
	changes, err := df.SchemaDiff(current, desired)
	if err != nil {
		return nil, fmt.Errorf("schema: diff: %w", err)
	}
	if len(changes) == 0 {
		return nil, ErrNoPlan
	}
	plan, err := df.PlanChanges(ctx, name, changes)
	if err != nil {
		return nil, fmt.Errorf("schema: plan changes: %w", err)
	}
	return plan, nil
}
