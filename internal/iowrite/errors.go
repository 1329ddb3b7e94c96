package iowrite

import (
	"errors"
	"fmt"

	"github.com/gamedex/gdb/pkg/errcode"
	"github.com/gnames/gn"
)

// NotConnectedError creates an error for writes attempted before the
// database connection is established.
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

// BatchError creates an error for a failed batch stage. The whole
// transaction rolled back, so no partial rows remain.
func BatchError(stage string, err error) error {
	msg := `Cannot apply normalized batch

<em>Stage:</em> %s

The transaction was rolled back; re-running normalization re-derives
and re-applies the batch.`

	vars := []any{stage}

	return &gn.Error{
		Code: errcode.WriteBatchError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("batch %s failed: %w", stage, err),
	}
}

// ConflictRetriesError creates an error for a batch that kept hitting
// transaction conflicts after all retries.
func ConflictRetriesError(attempts int, err error) error {
	msg := `Batch write kept conflicting with concurrent transactions

<em>Attempts:</em> %d

<em>How to fix:</em>
  1. Check for other processes writing to the same tables
  2. Re-run; normalization resumes at the failed batch`

	vars := []any{attempts}

	return &gn.Error{
		Code: errcode.WriteConflictRetriesError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("batch conflicted after %d attempts: %w", attempts, err),
	}
}
