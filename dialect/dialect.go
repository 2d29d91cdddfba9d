package dialect

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Dialect names.
const (
	Postgres  = "postgres"
	Cockroach = "cockroachdb"
	MySQL     = "mysql"
	MariaDB   = "mariadb"
	SQLServer = "sqlserver"
	SQLite    = "sqlite3"
	Oracle    = "oracle"
)

// A Mode defines what schema behavior a dialect requires or supports.
type Mode uint

const (
	// Exclusions defines exclusion constraint support.
	Exclusions Mode = 1 << iota

	// UniquesAsIndices stores unique constraints as unique indices.
	UniquesAsIndices

	// UniqueIndicesAsConstraints stores unique indices as unique constraints.
	UniqueIndicesAsConstraints

	// FilteredUniqueIndices restricts unique indices on nullable columns
	// to rows where every indexed column is set.
	FilteredUniqueIndices

	// ForeignKeyIndices requires an explicit index covering every foreign key.
	ForeignKeyIndices

	// AutoIndexesForeignKeys means the database creates the index covering
	// a foreign key itself. It takes precedence over ForeignKeyIndices.
	AutoIndexesForeignKeys
)

// Support reports if m has all of the given mode flags.
func (m Mode) Support(mode Mode) bool { return m&mode == mode }

// Capabilities is the view of a dialect consumed by the metadata builder.
type Capabilities interface {
	// Name returns the dialect name.
	Name() string
	// Support reports if the dialect has the given mode.
	Support(Mode) bool
	// Quote quotes an identifier.
	Quote(string) string
	// NormalizeType maps a declared column type to its canonical name.
	NormalizeType(string) string
}

// Dialect is a static dialect descriptor.
type Dialect struct {
	name  string
	mode  Mode
	quote func(string) string
	types map[string]string
}

var _ Capabilities = (*Dialect)(nil)

// Name returns the dialect name.
func (d *Dialect) Name() string { return d.name }

// Mode returns the dialect mode flags.
func (d *Dialect) Mode() Mode { return d.mode }

// Support reports if the dialect has the given mode.
func (d *Dialect) Support(mode Mode) bool { return d.mode.Support(mode) }

// Quote quotes an identifier.
func (d *Dialect) Quote(ident string) string { return d.quote(ident) }

// NormalizeType maps a declared column type to its canonical lowercase name.
func (d *Dialect) NormalizeType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if n, ok := d.types[t]; ok {
		return n
	}
	return t
}

// String implements the fmt.Stringer interface.
func (d *Dialect) String() string { return d.name }

var dialects = []*Dialect{
	{
		name:  Postgres,
		mode:  Exclusions,
		quote: pq.QuoteIdentifier,
		types: map[string]string{
			"int":       "integer",
			"int4":      "integer",
			"int2":      "smallint",
			"int8":      "bigint",
			"float4":    "real",
			"float8":    "double precision",
			"bpchar":    "char",
			"bool":      "boolean",
			"timestamp": "timestamp without time zone",
		},
	},
	{
		name:  Cockroach,
		mode:  UniqueIndicesAsConstraints | ForeignKeyIndices,
		quote: pq.QuoteIdentifier,
		types: map[string]string{
			"int":     "int8",
			"integer": "int8",
			"bigint":  "int8",
			"bool":    "boolean",
			"varchar": "string",
		},
	},
	{
		name:  MySQL,
		mode:  UniquesAsIndices | AutoIndexesForeignKeys,
		quote: backtick,
		types: map[string]string{
			"integer": "int",
			"boolean": "tinyint",
			"bool":    "tinyint",
			"uuid":    "varchar",
		},
	},
	{
		name:  MariaDB,
		mode:  UniquesAsIndices | AutoIndexesForeignKeys,
		quote: backtick,
		types: map[string]string{
			"integer": "int",
			"boolean": "tinyint",
			"bool":    "tinyint",
		},
	},
	{
		name:  SQLServer,
		mode:  UniquesAsIndices | FilteredUniqueIndices,
		quote: bracket,
		types: map[string]string{
			"integer": "int",
			"boolean": "bit",
			"bool":    "bit",
			"uuid":    "uniqueidentifier",
			"varchar": "nvarchar",
		},
	},
	{
		name:  SQLite,
		quote: doubleQuote,
		types: map[string]string{
			"int":     "integer",
			"bool":    "boolean",
			"varchar": "varchar",
		},
	},
	{
		name:  Oracle,
		quote: doubleQuote,
		types: map[string]string{
			"integer": "number",
			"int":     "number",
			"varchar": "varchar2",
			"uuid":    "varchar2",
		},
	},
}

// Lookup returns the dialect registered under the given name.
// "mssql" and "postgresql" are accepted as aliases.
func Lookup(name string) (*Dialect, error) {
	switch n := strings.ToLower(name); n {
	case "mssql":
		name = SQLServer
	case "postgresql", "pg":
		name = Postgres
	case "sqlite":
		name = SQLite
	case "cockroach", "crdb":
		name = Cockroach
	default:
		name = n
	}
	for _, d := range dialects {
		if d.name == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("dialect: unknown dialect %q", name)
}

// Names returns the names of all known dialects.
func Names() []string {
	names := make([]string, len(dialects))
	for i, d := range dialects {
		names[i] = d.name
	}
	return names
}

func backtick(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

func bracket(s string) string {
	return "[" + strings.ReplaceAll(s, "]", "]]") + "]"
}

func doubleQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
