package ionormalize

import (
	"errors"
	"fmt"

	"github.com/gamedex/gdb/pkg/errcode"
	"github.com/gnames/gn"
)

// NotConnectedError creates an error for normalization calls made
// before the database connection is established.
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

// RegistryError creates an error for an unloadable property registry.
func RegistryError(err error) error {
	msg := `Cannot load the property registry

The embedded registry data failed to parse. This is a packaging
defect, not a runtime condition.`

	return &gn.Error{
		Code: errcode.NormalizeRegistryError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("registry load failed: %w", err),
	}
}

// LoadError creates an error for a failed read of pending entities.
func LoadError(err error) error {
	msg := `Cannot load games pending normalization

<em>How to fix:</em>
  1. Run <em>gdb games enrich</em> so documents are cached
  2. Check the database connection`

	return &gn.Error{
		Code: errcode.NormalizeLoadError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("loading pending games failed: %w", err),
	}
}

// StampError creates an error for a failed normalization stamp.
func StampError(err error) error {
	msg := `Cannot stamp normalized games

The batch was applied but not stamped; the next run re-derives it,
which is safe but wasteful.`

	return &gn.Error{
		Code: errcode.NormalizeStampError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("stamping normalized games failed: %w", err),
	}
}

// CancelledError creates an error for an interrupted normalization.
func CancelledError(err error) error {
	msg := `Normalization interrupted

Applied batches are committed and stamped; re-run to continue from
the first unstamped game.`

	return &gn.Error{
		Code: errcode.CrawlCancelledError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("normalization cancelled: %w", err),
	}
}
