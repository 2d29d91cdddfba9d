package schema

import (
	"fmt"
	"sort"
	"strings"

	"ariga.io/atlas/sql/schema"
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Table   string
	Column  string
	Message string
	// Breaking indicates if this is a breaking change.
	Breaking bool
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the results of schema validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// HasBreakingChanges returns true if there are any breaking changes.
func (r *ValidationResult) HasBreakingChanges() bool {
	for _, e := range r.Errors {
		if e.Breaking {
			return true
		}
	}
	for _, w := range r.Warnings {
		if w.Breaking {
			return true
		}
	}
	return false
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	write := func(title string, errs []*ValidationError) {
		if len(errs) == 0 {
			return
		}
		sb.WriteString(title)
		sb.WriteString(":\n")
		for _, e := range errs {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			if e.Breaking {
				sb.WriteString(" [BREAKING]")
			}
			sb.WriteString("\n")
		}
	}
	write("Errors", r.Errors)
	write("Warnings", r.Warnings)
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

// ValidateOption configures schema validation.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	allowDropColumn    bool
	allowDropTable     bool
	allowDropIndex     bool
	allowNullToNotNull bool
}

// AllowDropColumn allows dropping columns without error.
func AllowDropColumn() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropColumn = true
	}
}

// AllowDropTable allows dropping tables without error.
func AllowDropTable() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropTable = true
	}
}

// AllowDropIndex allows dropping indexes without error.
func AllowDropIndex() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropIndex = true
	}
}

// AllowNullToNotNull allows changing nullable columns to not null.
func AllowNullToNotNull() ValidateOption {
	return func(c *validateConfig) {
		c.allowNullToNotNull = true
	}
}

func (r *ValidationResult) report(allowed bool, err *ValidationError) {
	if allowed {
		r.Warnings = append(r.Warnings, err)
	} else {
		r.Errors = append(r.Errors, err)
	}
}

// ValidateDiff validates the difference between the current and the
// desired schema. Breaking changes are errors unless allowed by an option,
// potentially dangerous ones are warnings.
//
//	result := schema.ValidateDiff(previous, next)
//	if result.HasBreakingChanges() {
//	    log.Fatal("Breaking changes detected:", result)
//	}
func ValidateDiff(current, desired *schema.Schema, opts ...ValidateOption) *ValidationResult {
	cfg := &validateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	result := &ValidationResult{}
	for _, t := range current.Tables {
		if _, ok := desired.Table(t.Name); !ok {
			result.report(cfg.allowDropTable, &ValidationError{
				Table:    t.Name,
				Message:  "table will be dropped",
				Breaking: true,
			})
		}
	}
	for _, t := range desired.Tables {
		if cur, ok := current.Table(t.Name); ok {
			validateTableDiff(cur, t, cfg, result)
		}
	}
	return result
}

func validateTableDiff(current, desired *schema.Table, cfg *validateConfig, result *ValidationResult) {
	for _, c := range current.Columns {
		if _, ok := desired.Column(c.Name); !ok {
			result.report(cfg.allowDropColumn, &ValidationError{
				Table:    current.Name,
				Column:   c.Name,
				Message:  "column will be dropped",
				Breaking: true,
			})
		}
	}
	for _, dc := range desired.Columns {
		cc, ok := current.Column(dc.Name)
		if !ok {
			if !dc.Type.Null && dc.Default == nil {
				result.Warnings = append(result.Warnings, &ValidationError{
					Table:   current.Name,
					Column:  dc.Name,
					Message: "new NOT NULL column without default value may fail if table has data",
				})
			}
			continue
		}
		if from, to := typeName(cc.Type.Type), typeName(dc.Type.Type); from != to {
			result.Warnings = append(result.Warnings, &ValidationError{
				Table:   current.Name,
				Column:  dc.Name,
				Message: fmt.Sprintf("column type changing from %s to %s", from, to),
			})
		}
		if cc.Type.Null && !dc.Type.Null {
			result.report(cfg.allowNullToNotNull, &ValidationError{
				Table:    current.Name,
				Column:   dc.Name,
				Message:  "column changing from NULL to NOT NULL may fail if column has NULL values",
				Breaking: true,
			})
		}
		if from, to := size(cc.Type.Type), size(dc.Type.Type); from > 0 && to > 0 && to < from {
			result.Warnings = append(result.Warnings, &ValidationError{
				Table:   current.Name,
				Column:  dc.Name,
				Message: fmt.Sprintf("column size reducing from %d to %d may truncate data", from, to),
			})
		}
		if !uniqueColumn(current, cc.Name) && uniqueColumn(desired, dc.Name) {
			result.Warnings = append(result.Warnings, &ValidationError{
				Table:   current.Name,
				Column:  dc.Name,
				Message: "adding UNIQUE constraint may fail if duplicate values exist",
			})
		}
	}
	for _, idx := range current.Indexes {
		if _, ok := desired.Index(idx.Name); !ok {
			result.report(cfg.allowDropIndex, &ValidationError{
				Table:   current.Name,
				Message: fmt.Sprintf("index %q will be dropped", idx.Name),
			})
		}
	}
}

// ValidateTable validates a single table definition.
func ValidateTable(t *schema.Table) *ValidationResult {
	result := &ValidationResult{}
	if t.PrimaryKey == nil || len(t.PrimaryKey.Parts) == 0 {
		result.Warnings = append(result.Warnings, &ValidationError{
			Table:   t.Name,
			Message: "table has no primary key",
		})
	}
	colNames := make(map[string]bool)
	for _, c := range t.Columns {
		if colNames[c.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Column:  c.Name,
				Message: "duplicate column name",
			})
		}
		colNames[c.Name] = true
		if _, ok := c.Type.Type.(*schema.UnsupportedType); ok {
			result.Warnings = append(result.Warnings, &ValidationError{
				Table:   t.Name,
				Column:  c.Name,
				Message: fmt.Sprintf("column type %q is not recognized", typeName(c.Type.Type)),
			})
		}
	}
	idxNames := make(map[string]bool)
	for _, idx := range t.Indexes {
		if idxNames[idx.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Message: fmt.Sprintf("duplicate index name: %s", idx.Name),
			})
		}
		idxNames[idx.Name] = true
		for _, p := range idx.Parts {
			if p.C != nil && !colNames[p.C.Name] {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   t.Name,
					Message: fmt.Sprintf("index %q references non-existent column %q", idx.Name, p.C.Name),
				})
			}
		}
	}
	for _, fk := range t.ForeignKeys {
		for _, col := range fk.Columns {
			if !colNames[col.Name] {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   t.Name,
					Message: fmt.Sprintf("foreign key references non-existent column %q", col.Name),
				})
			}
		}
		if len(fk.Columns) != len(fk.RefColumns) {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Message: fmt.Sprintf("foreign key %q has %d columns but references %d", fk.Symbol, len(fk.Columns), len(fk.RefColumns)),
			})
		}
	}
	return result
}

// ValidateSchema validates all tables in a schema.
func ValidateSchema(s *schema.Schema) *ValidationResult {
	result := &ValidationResult{}
	tableNames := make(map[string]bool)
	for _, t := range s.Tables {
		if tableNames[t.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Message: "duplicate table name",
			})
		}
		tableNames[t.Name] = true
		tr := ValidateTable(t)
		result.Errors = append(result.Errors, tr.Errors...)
		result.Warnings = append(result.Warnings, tr.Warnings...)
	}
	for _, t := range s.Tables {
		for _, fk := range t.ForeignKeys {
			if !contains(s, fk.RefTable) {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   t.Name,
					Message: fmt.Sprintf("foreign key %q references a table outside the schema", fk.Symbol),
				})
			}
		}
	}
	sort.SliceStable(result.Errors, func(i, j int) bool { return result.Errors[i].Table < result.Errors[j].Table })
	sort.SliceStable(result.Warnings, func(i, j int) bool { return result.Warnings[i].Table < result.Warnings[j].Table })
	return result
}

// typeName returns the declared name of an atlas type.
func typeName(t schema.Type) string {
	switch t := t.(type) {
	case *schema.IntegerType:
		return t.T
	case *schema.StringType:
		if t.Size > 0 {
			return fmt.Sprintf("%s(%d)", t.T, t.Size)
		}
		return t.T
	case *schema.BoolType:
		return t.T
	case *schema.TimeType:
		return t.T
	case *schema.FloatType:
		return t.T
	case *schema.DecimalType:
		return t.T
	case *schema.UUIDType:
		return t.T
	case *schema.JSONType:
		return t.T
	case *schema.BinaryType:
		return t.T
	case *schema.UnsupportedType:
		return t.T
	case nil:
		return ""
	}
	return fmt.Sprintf("%T", t)
}

func size(t schema.Type) int {
	if s, ok := t.(*schema.StringType); ok {
		return s.Size
	}
	return 0
}

// uniqueColumn reports if a single-column unique index covers column.
func uniqueColumn(t *schema.Table, column string) bool {
	for _, idx := range t.Indexes {
		if idx.Unique && len(idx.Parts) == 1 && idx.Parts[0].C != nil && idx.Parts[0].C.Name == column {
			return true
		}
	}
	return false
}

// contains reports if t is one of the tables of s.
func contains(s *schema.Schema, t *schema.Table) bool {
	if t == nil {
		return false
	}
	rt, ok := s.Table(t.Name)
	return ok && rt == t
}
