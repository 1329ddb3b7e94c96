package iofetch

import (
	"fmt"

	"github.com/gamedex/gdb/pkg/errcode"
	"github.com/gnames/gn"
)

const maxBodyInError = 512

// RequestError creates an error for a transport-level failure.
func RequestError(url string, err error) error {
	msg := `Upstream request failed

<em>URL:</em> %s

<em>Possible causes:</em>
  - Network connectivity issues
  - Upstream service is down
  - DNS resolution failure`

	vars := []any{url}

	return &gn.Error{
		Code: errcode.FetchRequestError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("request to %s failed: %w", url, err),
	}
}

// StatusError creates an error for a non-OK upstream status. The
// response body is captured (truncated) for diagnostics.
func StatusError(url string, status int, body []byte) error {
	excerpt := string(body)
	if len(excerpt) > maxBodyInError {
		excerpt = excerpt[:maxBodyInError] + "..."
	}

	msg := `Upstream returned status <em>%d</em>

<em>URL:</em> %s
<em>Body:</em> %s`

	vars := []any{status, url, excerpt}

	return &gn.Error{
		Code: errcode.FetchStatusError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"%s returned status %d: %s", url, status, excerpt),
	}
}

// RetriesExhaustedError creates an error for a request that failed
// after the maximum number of attempts.
func RetriesExhaustedError(url string, attempts int, last error) error {
	msg := `Upstream request failed after <em>%d</em> retries

<em>URL:</em> %s

<em>How to fix:</em>
  1. Check upstream service status
  2. Re-run later; the pipeline resumes from committed state
  3. Raise GDB_FETCH_MAX_WAIT_SEC if the service is rate limiting`

	vars := []any{attempts, url}

	return &gn.Error{
		Code: errcode.FetchRetriesExhaustedError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"request to %s failed after %d attempts: %w",
			url, attempts, last),
	}
}
