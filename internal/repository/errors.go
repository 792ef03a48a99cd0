// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and the layout reconciler to distinguish between different
// failure scenarios. ErrConflict signals that an operation cannot proceed
// due to existing dependent records (e.g. deleting a venue that still hosts
// events).
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as deleting a venue
// that still has events. Handlers should translate this into an
// HTTP 409 response.
var ErrConflict = errors.New("conflict")

func mysqlErrno(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// isDuplicate reports a MySQL 1062 unique-key violation.
func isDuplicate(err error) bool {
	return mysqlErrno(err) == 1062
}

// isForeignKey reports a MySQL 1451/1452 foreign-key violation.
func isForeignKey(err error) bool {
	n := mysqlErrno(err)
	return n == 1451 || n == 1452
}
