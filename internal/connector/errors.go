package connector

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrAccessDenied is returned when the database rejects a statement for
// lack of privileges.
var ErrAccessDenied = errors.New("access denied")

const (
	mysqlErrDBAccessDenied     = 1044
	mysqlErrTableAccessDenied  = 1142
	mysqlErrColumnAccessDenied = 1143
)

func classifyError(err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlErrDBAccessDenied, mysqlErrTableAccessDenied, mysqlErrColumnAccessDenied:
			return fmt.Errorf("%w: %s", ErrAccessDenied, mysqlErr.Message)
		}
	}
	return err
}
