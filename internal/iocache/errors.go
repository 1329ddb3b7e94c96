package iocache

import (
	"fmt"

	"github.com/gamedex/gdb/pkg/errcode"
	"github.com/gnames/gn"
)

// ProbeError creates an error for a failed version-marker probe.
func ProbeError(err error) error {
	msg := `Cannot probe document version markers

The lightweight metadata request failed, so cached payloads cannot be
validated.

<em>How to fix:</em>
  1. Check upstream availability
  2. Re-run later; cached rows are unaffected`

	return &gn.Error{
		Code: errcode.CacheProbeError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("version probe failed: %w", err),
	}
}

// UpsertError creates an error for a failed cache row write.
func UpsertError(key string, err error) error {
	msg := `Cannot write cache row

<em>Key:</em> %s`

	vars := []any{key}

	return &gn.Error{
		Code: errcode.CacheUpsertError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cache upsert for %s failed: %w", key, err),
	}
}

// ReadError creates an error for a failed cache row read.
func ReadError(key string, err error) error {
	msg := `Cannot read cache row

<em>Key:</em> %s`

	vars := []any{key}

	return &gn.Error{
		Code: errcode.CacheReadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cache read for %s failed: %w", key, err),
	}
}
