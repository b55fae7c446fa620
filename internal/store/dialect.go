package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type dialect struct {
	driver     string
	lockRecipe string
	params     []string
	configure  func(*sql.DB)
}

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// sqlitePragmas make every transaction BEGIN IMMEDIATE so the write lock is
// taken before the sibling count is read
var sqlitePragmas = []string{
	"_pragma=busy_timeout(5000)",
	"_pragma=foreign_keys(1)",
	"_pragma=journal_mode(WAL)",
	"_txlock=immediate",
}

// mysqlParams makes affected row counts report matched rows, not changed
var mysqlParams = []string{"clientFoundRows=true"}

const mysqlErrDuplicateEntry = 1062

var dialects = map[string]*dialect{
	DriverSQLite: {
		driver:     DriverSQLite,
		lockRecipe: `SELECT id FROM recipes WHERE id = ?`,
		params:     sqlitePragmas,
		configure: func(db *sql.DB) {
			db.SetMaxIdleConns(2)
		},
	},
	DriverMySQL: {
		driver:     DriverMySQL,
		lockRecipe: `SELECT id FROM recipes WHERE id = ? FOR UPDATE`,
		params:     mysqlParams,
		configure: func(db *sql.DB) {
			db.SetMaxOpenConns(10)
			db.SetMaxIdleConns(5)
			db.SetConnMaxLifetime(5 * time.Minute)
		},
	},
}

func dialectFor(driver string) (*dialect, error) {
	d, ok := dialects[strings.ToLower(driver)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	return d, nil
}

// prepareDSN appends each default parameter the DSN does not already set.
// Pragmas are matched by pragma name, other parameters by key
func (d *dialect) prepareDSN(dsn string) string {
	for _, p := range d.params {
		name, _, _ := strings.Cut(p, "=")
		if name == "_pragma" {
			name, _, _ = strings.Cut(p, "(")
		}
		if strings.Contains(dsn, name) {
			continue
		}
		if strings.Contains(dsn, "?") {
			dsn += "&" + p
		} else {
			dsn += "?" + p
		}
	}
	return dsn
}

func (d *dialect) isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	switch d.driver {
	case DriverMySQL:
		var me *mysql.MySQLError
		return errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry
	default:
		var se *sqlite.Error
		if !errors.As(err, &se) {
			return false
		}
		code := se.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
}
