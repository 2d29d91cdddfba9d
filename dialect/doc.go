// Package dialect describes the database dialects known to schemagraph.
//
// A dialect is not a driver. It is a static descriptor answering the
// questions the metadata builder asks while resolving a schema graph:
// whether exclusion constraints exist, whether unique constraints are
// stored as unique indices, whether every foreign key needs a covering
// index, and how identifiers are quoted.
//
// # Supported Dialects
//
//	dialect.Postgres    = "postgres"
//	dialect.Cockroach   = "cockroachdb"
//	dialect.MySQL       = "mysql"
//	dialect.MariaDB     = "mariadb"
//	dialect.SQLServer   = "sqlserver"
//	dialect.SQLite      = "sqlite3"
//	dialect.Oracle      = "oracle"
//
// # Usage
//
//	d, err := dialect.Lookup("postgres")
//	if err != nil {
//	    return err
//	}
//	if d.Support(dialect.Exclusions) {
//	    // build exclusion constraints
//	}
package dialect
