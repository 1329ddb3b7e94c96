package ioreport

import (
	"fmt"

	"github.com/gamedex/gdb/pkg/errcode"
	"github.com/gnames/gn"
)

// NewNotConnectedError creates an error for a report operation
// attempted without a database connection.
func NewNotConnectedError() error {
	msg := `<title>No Database Connection</title>
<warn>Report operation attempted without database connection.</warn>

<em>How to fix:</em>
  1. Run <em>gdb create</em> to initialize the database
  2. Check the database settings in the config file
`

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Err:  fmt.Errorf("database pool is not initialized"),
	}
}

// NewScoresError creates an error for a failed score recomputation
// query.
func NewScoresError(err error) error {
	msg := `<title>Cannot Recompute Scores</title>
<warn>The score aggregation query failed.</warn>

<em>How to fix:</em>
  1. Ensure the schema is current: <em>gdb create</em>
  2. Ensure derived rows exist: <em>gdb normalize</em>
  3. Check PostgreSQL logs for query errors
`

	return &gn.Error{
		Code: errcode.ReportScoresError,
		Msg:  msg,
		Err:  fmt.Errorf("score recomputation failed: %w", err),
	}
}

// NewCoverageQueryError creates an error for a failed read of
// coverage source data.
func NewCoverageQueryError(err error) error {
	msg := `<title>Cannot Read Coverage Data</title>
<warn>Failed to query ingested rows for the coverage report.</warn>

<em>How to fix:</em>
  1. Ensure the schema is current: <em>gdb create</em>
  2. Ensure the pipeline stages have run
  3. Check PostgreSQL logs for query errors
`

	return &gn.Error{
		Code: errcode.ReportCoverageQueryError,
		Msg:  msg,
		Err:  fmt.Errorf("coverage query failed: %w", err),
	}
}

// NewExportError creates an error for a failed write of the coverage
// artifact.
func NewExportError(path string, err error) error {
	msg := `<title>Cannot Write Coverage Artifact</title>
<warn>Failed to write the SQLite coverage file.</warn>

<em>How to fix:</em>
  1. Check the output path is writable: <em>%s</em>
  2. Check free disk space
`

	return &gn.Error{
		Code: errcode.ReportExportError,
		Msg:  msg,
		Vars: []any{path},
		Err:  fmt.Errorf("coverage export to %s failed: %w", path, err),
	}
}
