package config

import (
	"fmt"

	"github.com/gamedex/gdb/pkg/errcode"
	"github.com/gnames/gn"
)

// Validate checks invariants that must hold before any network call is
// made. It is run once at startup by every command that talks to the
// upstream services, so a misconfigured client fails fast instead of at
// its first request.
func (c *Config) Validate() error {
	if c.Fetch.UserAgent == "" {
		return UserAgentMissingError()
	}
	if c.Crawl.PageSize < MinPageSize {
		return PageSizeError(c.Crawl.PageSize)
	}
	return nil
}

// UserAgentMissingError creates an error for a missing client
// identifier header.
func UserAgentMissingError() error {
	msg := `Upstream client identifier is not configured

The Wikimedia APIs require a descriptive <em>User-Agent</em> header with
contact information. Requests without one are a programming error and
are rejected before the first call.

<em>How to fix:</em>
  1. Set GDB_FETCH_USER_AGENT, for example:
     <em>GDB_FETCH_USER_AGENT="gamedex-gdb/1.0 (ops@example.com)"</em>
  2. Or add fetch.user_agent to config.yaml`

	return &gn.Error{
		Code: errcode.ConfigUserAgentError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("fetch.user_agent is empty"),
	}
}

// PageSizeError creates an error for a roster page size below the floor.
func PageSizeError(size int) error {
	msg := `Roster page size is below the minimum

<em>Requested:</em> %d
<em>Minimum:</em>   %d

Pages this small turn the crawl into one serialized query-service
request per handful of rows.

<em>How to fix:</em>
  1. Raise --page-size or GDB_CRAWL_PAGE_SIZE to at least %d`

	vars := []any{size, MinPageSize, MinPageSize}

	return &gn.Error{
		Code: errcode.ConfigPageSizeError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"page size %d below minimum %d", size, MinPageSize),
	}
}
