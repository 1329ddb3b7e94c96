package main

import (
	"context"

	"github.com/gamedex/gdb/internal/iocache"
	"github.com/gamedex/gdb/internal/iodb"
	"github.com/gamedex/gdb/internal/iofetch"
	"github.com/gamedex/gdb/internal/iowapi"
	"github.com/gamedex/gdb/pkg/db"
	"github.com/gnames/gn"
)

// connectDB creates the database operator and connects it. The caller
// owns the returned operator and must Close it.
func connectDB(ctx context.Context) (db.Operator, error) {
	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		gn.PrintErrorMessage(err)
		return nil, err
	}

	gn.Info("Connected to database: %s@%s:%d/%s",
		cfg.Database.User, cfg.Database.Host,
		cfg.Database.Port, cfg.Database.Database)
	return op, nil
}

// fetchStack bundles the upstream clients that share one rate-limited
// fetcher and one stats counter.
type fetchStack struct {
	stats *iofetch.Stats
	query *iowapi.QueryClient
	api   *iowapi.APIClient
	pages *iowapi.PageClient
}

// newFetchStack validates fetch settings and builds the shared
// upstream clients. Validation runs here so a missing User-Agent
// fails before any network call.
func newFetchStack() (*fetchStack, error) {
	if err := cfg.Validate(); err != nil {
		gn.PrintErrorMessage(err)
		return nil, err
	}

	stats := iofetch.NewStats()
	fetcher := iofetch.New(&cfg.Fetch, cfg.JobsNumber, stats)

	return &fetchStack{
		stats: stats,
		query: iowapi.NewQueryClient(fetcher, cfg.Fetch.QueryServiceURL),
		api:   iowapi.NewAPIClient(fetcher, cfg.Fetch.APIURL),
		pages: iowapi.NewPageClient(fetcher),
	}, nil
}

func (f *fetchStack) entityCache(op db.Operator) *iocache.EntityCache {
	return iocache.NewEntityCache(op.Pool(), f.api, f.stats)
}

func (f *fetchStack) pageCache(op db.Operator) *iocache.PageCache {
	return iocache.NewPageCache(op.Pool(), f.pages, f.stats)
}
