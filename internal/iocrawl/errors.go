package iocrawl

import (
	"errors"
	"fmt"

	"github.com/gamedex/gdb/pkg/errcode"
	"github.com/gnames/gn"
)

// NotConnectedError creates an error for crawl calls made before the
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

// QueryError creates an error for a failed knowledge-graph query.
func QueryError(subject string, err error) error {
	msg := `Cannot query the knowledge graph

<em>Query:</em> %s

<em>How to fix:</em>
  1. Check network connectivity
  2. Re-run later; committed pages are preserved`

	vars := []any{subject}

	return &gn.Error{
		Code: errcode.CrawlQueryError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("%s query failed: %w", subject, err),
	}
}

// CommitError creates an error for a failed crawl transaction.
func CommitError(subject string, err error) error {
	msg := `Cannot commit crawl progress

<em>Target:</em> %s

The failed page was rolled back; the stored cursor still points at it
and the next run repeats the page.`

	vars := []any{subject}

	return &gn.Error{
		Code: errcode.CrawlCommitError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("commit of %s failed: %w", subject, err),
	}
}

// CancelledError creates an error for an interrupted crawl.
func CancelledError(err error) error {
	msg := `Crawl interrupted

Progress through the last committed page is preserved; re-run to
continue from the stored cursor.`

	return &gn.Error{
		Code: errcode.CrawlCancelledError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("crawl cancelled: %w", err),
	}
}

// MalformedPageError creates an error for a roster page whose bindings
// carry no usable item identifiers.
func MalformedPageError(platformQID, cursor string) error {
	msg := `Roster page for <em>%s</em> had no usable rows

The query service returned a page without item identifiers. The page
was rolled back and the cursor was not advanced; re-run later.`

	vars := []any{platformQID}

	return &gn.Error{
		Code: errcode.CrawlMalformedPageError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("no usable bindings after cursor %q", cursor),
	}
}

// UnknownPlatformError creates an error for a platform identifier that
// does not match any stored platform.
func UnknownPlatformError(qid string) error {
	msg := `Unknown platform <em>%s</em>

<em>How to fix:</em>
  1. Run <em>gdb platforms discover</em> to populate platforms
  2. Check the identifier for typos`

	vars := []any{qid}

	return &gn.Error{
		Code: errcode.CrawlUnknownPlatformError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("platform %s not found", qid),
	}
}
