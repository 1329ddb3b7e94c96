// Package iocrawl implements platform discovery and the cursor-based
// roster crawl. This is an impure I/O package: it drives the query
// service and commits crawl progress to PostgreSQL.
package iocrawl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gamedex/gdb/internal/iofetch"
	"github.com/gamedex/gdb/internal/iowapi"
	"github.com/gamedex/gdb/pkg/config"
	"github.com/gamedex/gdb/pkg/db"
	"github.com/gamedex/gdb/pkg/gdb"
	"github.com/gamedex/gdb/pkg/registry"
	"github.com/gamedex/gdb/pkg/slug"
	"github.com/gnames/gn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// platformClasses are the knowledge-graph classes whose instances
// count as video-game platforms during discovery.
var platformClasses = []string{
	"Q8076",     // video game console
	"Q941818",   // handheld game console
	"Q1137224",  // arcade system board
	"Q25297630", // video game platform
}

// DB is the subset of pgxpool.Pool the crawler needs. Narrowing the
// dependency to an interface keeps page commits testable without a
// server.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type crawler struct {
	cfg   *config.Config
	db    DB
	query *iowapi.QueryClient
	stats *iofetch.Stats
}

// New creates a PlatformCrawler.
func New(
	cfg *config.Config,
	op db.Operator,
	query *iowapi.QueryClient,
	stats *iofetch.Stats,
) gdb.PlatformCrawler {
	c := &crawler{cfg: cfg, query: query, stats: stats}
	if pool := op.Pool(); pool != nil {
		c.db = pool
	}
	return c
}

// DiscoverPlatforms queries the knowledge graph for all platform items
// and upserts stubs. Existing rows keep their enriched fields.
func (c *crawler) DiscoverPlatforms(ctx context.Context) error {
	if c.db == nil {
		return NotConnectedError()
	}

	start := time.Now()
	slog.Info("Starting platform discovery")

	sparql := discoverQuery()
	bindings, err := c.query.Select(ctx, sparql)
	if err != nil {
		return QueryError("platform discovery", err)
	}

	var inserted int
	for _, b := range bindings {
		qid := b["item"]
		if qid == "" {
			continue
		}
		label := b["itemLabel"]
		// A label equal to the QID means the upstream had no label.
		noLabel := label == "" || label == qid

		tag, err := c.db.Exec(ctx,
			`INSERT INTO platforms (qid, name, slug, no_label, flag_reason)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (qid) DO NOTHING`,
			qid, label, slug.Make(label), noLabel, flagReason(noLabel))
		if err != nil {
			return CommitError("platforms", err)
		}
		inserted += int(tag.RowsAffected())
	}

	slog.Info("Platform discovery complete",
		"scanned", len(bindings),
		"inserted", inserted,
		"network_calls", c.stats.NetworkCalls(),
	)
	gn.Info(
		"Discovered <em>%s</em> platforms, <em>%d</em> new",
		humanize.Comma(int64(len(bindings))), inserted,
	)
	slog.Debug("Discovery duration", "elapsed", time.Since(start))
	return nil
}

// MarkMajors flags the curated major-platform subset. Platforms not on
// the list lose the flag, so the subset is exactly the seed data.
func (c *crawler) MarkMajors(ctx context.Context) error {
	if c.db == nil {
		return NotConnectedError()
	}

	majors, err := registry.MajorPlatforms()
	if err != nil {
		return QueryError("major platform seed", err)
	}

	qids := make([]string, len(majors))
	for i, m := range majors {
		qids[i] = m.QID
	}

	tx, err := c.db.Begin(ctx)
	if err != nil {
		return CommitError("platforms", err)
	}
	defer tx.Rollback(ctx)

	// Seed stubs for majors that discovery has not seen yet, and
	// apply the curated generation numbers.
	for _, m := range majors {
		_, err = tx.Exec(ctx,
			`INSERT INTO platforms (qid, name, slug)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (qid) DO NOTHING`,
			m.QID, m.Name, slug.Make(m.Name))
		if err != nil {
			return CommitError("platforms", err)
		}
		if m.Generation > 0 {
			_, err = tx.Exec(ctx,
				`UPDATE platforms SET generation = $2 WHERE qid = $1`,
				m.QID, m.Generation)
			if err != nil {
				return CommitError("platforms", err)
			}
		}
	}

	if _, err = tx.Exec(ctx,
		`UPDATE platforms SET major = false WHERE major`); err != nil {
		return CommitError("platforms", err)
	}
	tag, err := tx.Exec(ctx,
		`UPDATE platforms SET major = true WHERE qid = ANY($1)`, qids)
	if err != nil {
		return CommitError("platforms", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return CommitError("platforms", err)
	}

	slog.Info("Major platforms marked", "count", tag.RowsAffected())
	gn.Info("Marked <em>%d</em> major platforms", tag.RowsAffected())
	return nil
}

func discoverQuery() string {
	values := ""
	for _, class := range platformClasses {
		values += " wd:" + class
	}
	return fmt.Sprintf(`SELECT DISTINCT ?item ?itemLabel WHERE {
  VALUES ?class {%s }
  ?item wdt:P31/wdt:P279* ?class .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}`, values)
}

func flagReason(noLabel bool) string {
	if noLabel {
		return "no_label"
	}
	return ""
}
