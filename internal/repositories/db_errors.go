package repositories

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

const (
	mysqlErrDuplicateEntry = 1062
	mysqlErrNoSuchTable    = 1146
	mysqlErrForeignKey     = 1452
)

func mysqlErrorNumber(err error) uint16 {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number
	}
	return 0
}

// isDuplicateKeyError reports a UNIQUE or PRIMARY KEY violation. The message
// check covers the SQLite driver used by the repository tests.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if mysqlErrorNumber(err) == mysqlErrDuplicateEntry {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isMissingTableError(err error) bool {
	if err == nil {
		return false
	}
	if mysqlErrorNumber(err) == mysqlErrNoSuchTable {
		return true
	}
	return strings.Contains(err.Error(), "no such table")
}

// IsForeignKeyError reports a MySQL/MariaDB foreign key constraint failure.
func IsForeignKeyError(err error) bool {
	return mysqlErrorNumber(err) == mysqlErrForeignKey
}

func isAlreadyExistsError(err error) bool {
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "already exists") || strings.Contains(value, "duplicate column name")
}
