package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers the repositories translate into sentinels.
const (
	mysqlDuplicateEntry  = 1062
	mysqlNoReferencedRow = 1452
)

// mysqlErrorNumber returns the server error number carried by err, or 0.
func mysqlErrorNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

func isDuplicateEntry(err error) bool { return mysqlErrorNumber(err) == mysqlDuplicateEntry }

func isMissingParent(err error) bool { return mysqlErrorNumber(err) == mysqlNoReferencedRow }
