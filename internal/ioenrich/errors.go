package ioenrich

import (
	"errors"
	"fmt"

	"github.com/gamedex/gdb/pkg/errcode"
	"github.com/gnames/gn"
)

// NotConnectedError creates an error for enrichment calls made before
// the database connection is established.
func NotConnectedError() error {
	msg := `No database connection

<em>How to fix:</em>
  1. Run <em>gdb create</em> to initialize the database
  2. Check the database settings in the config file`

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Vars: nil,
		Err:  errors.New("database pool is not initialized"),
	}
}

// LoadError creates an error for a failed read of pending rows.
func LoadError(table string, err error) error {
	msg := `Cannot load rows pending enrichment

<em>Table:</em> %s`

	vars := []any{table}

	return &gn.Error{
		Code: errcode.EnrichLoadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("loading pending %s failed: %w", table, err),
	}
}

// UpdateError creates an error for a failed row update.
func UpdateError(table, qid string, err error) error {
	msg := `Cannot update enriched row

<em>Table:</em> %s
<em>Entity:</em> %s

Already updated rows are preserved; re-running continues from the
remaining pending rows.`

	vars := []any{table, qid}

	return &gn.Error{
		Code: errcode.EnrichUpdateError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("updating %s row %s failed: %w", table, qid, err),
	}
}
