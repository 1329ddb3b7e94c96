package iowapi

import (
	"encoding/json"
	"fmt"

	"github.com/gamedex/gdb/pkg/errcode"
	"github.com/gnames/gn"
)

func unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// QueryServiceError creates an error for a failed query-service call.
func QueryServiceError(err error) error {
	msg := `Query service request failed

<em>Possible causes:</em>
  - Query service is overloaded or rate limiting
  - The query timed out upstream

<em>How to fix:</em>
  1. Re-run later; crawl state resumes from the committed cursor
  2. Lower --page-size (not below the minimum) if timeouts persist`

	return &gn.Error{
		Code: errcode.QueryServiceError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("query service request failed: %w", err),
	}
}

// QueryDecodeError creates an error for an undecodable upstream
// response.
func QueryDecodeError(err error) error {
	msg := `Cannot decode upstream response

The response was not the expected JSON shape. The upstream may be
returning an HTML error page.`

	return &gn.Error{
		Code: errcode.QueryDecodeError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("cannot decode upstream response: %w", err),
	}
}

// EntityDecodeError creates an error for an undecodable entity
// document.
func EntityDecodeError(err error) error {
	msg := `Cannot decode entity document`

	return &gn.Error{
		Code: errcode.EntityDecodeError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("cannot decode entity document: %w", err),
	}
}

// PageMissingError creates an error for a wiki page that does not
// exist. Callers treat this as a permanent upstream condition: the
// item is flagged and skipped, never retried in the same run.
func PageMissingError(site, title string) error {
	msg := `Wiki page does not exist

<em>Site:</em>  %s
<em>Title:</em> %s`

	vars := []any{site, title}

	return &gn.Error{
		Code: errcode.PageMissingError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("page %s:%s is missing", site, title),
	}
}
