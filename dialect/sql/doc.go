// Package sql connects to the databases of the supported dialects.
//
// A Driver wraps a database/sql connection pool opened with the driver
// registered for a dialect:
//
//	drv, err := sql.Open(dialect.Postgres, "postgres://localhost/app?sslmode=disable")
//	if err != nil {
//		return err
//	}
//	defer drv.Close()
//
// The driver satisfies the ExecQuerier expected by the atlas inspectors and
// records the count and duration of every statement:
//
//	fmt.Println(drv.Stats())
//
// # Drivers
//
//   - postgres and cockroachdb: github.com/lib/pq
//   - mysql and mariadb: github.com/go-sql-driver/mysql
//   - sqlite3: modernc.org/sqlite
package sql
