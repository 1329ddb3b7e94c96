package iodb

import (
	"fmt"

	"github.com/gamedex/gdb/pkg/errcode"
	"github.com/gnames/gn"
)

// ConnectionError creates an error for a failed database connection.
func ConnectionError(
	host string,
	port int,
	database, user string,
	err error,
) error {
	msg := `Could not connect to PostgreSQL database

<em>Possible causes:</em>
  - PostgreSQL is not running
  - Database configuration is incorrect
  - Network connectivity issues

<em>How to fix:</em>
  1. Check if PostgreSQL is running:
     <em>pg_isready -h %s -p %d</em>
  2. Verify database exists:
     <em>psql -h %s -U %s -l</em>
  3. Review connection settings:
     Host: %s, Port: %d, Database: %s, User: %s`

	vars := []any{
		host, port,
		host, user,
		host, port, database, user,
	}

	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"failed to connect to %s:%d/%s: %w",
			host, port, database, err),
	}
}

// NotConnectedError creates an error for an operation attempted
// without a database connection.
func NotConnectedError() error {
	msg := "Database operation attempted without connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// TableCheckError creates an error for a failed table check.
func TableCheckError(table string, err error) error {
	msg := `Could not verify database state

<em>Table:</em> %s`

	vars := []any{table}

	return &gn.Error{
		Code: errcode.DBTableCheckError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to check table %s: %w", table, err),
	}
}

// DropTableError creates an error for a failed table drop.
func DropTableError(table string, err error) error {
	msg := `Could not drop table <em>%s</em>`

	vars := []any{table}

	return &gn.Error{
		Code: errcode.DBDropTableError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to drop table %s: %w", table, err),
	}
}
