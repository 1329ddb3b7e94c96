// Package ioreport recomputes derived scores and exports the coverage
// artifact. Both operations read already-ingested rows only; nothing
// here talks to the upstreams.
package ioreport

import (
	"github.com/gamedex/gdb/pkg/config"
	"github.com/gamedex/gdb/pkg/db"
	"github.com/gamedex/gdb/pkg/gdb"
)

type reporter struct {
	cfg      *config.Config
	operator db.Operator
}

// New creates a Reporter.
func New(cfg *config.Config, op db.Operator) gdb.Reporter {
	return &reporter{cfg: cfg, operator: op}
}
