package iocrawl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gamedex/gdb/internal/iowapi"
	"github.com/gamedex/gdb/pkg/parsed"
	"github.com/gamedex/gdb/pkg/slug"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
)

// rosterPlatform is the crawl state loaded per platform.
type rosterPlatform struct {
	id        uint
	qid       string
	name      string
	cursor    string // "" means start of roster
	exhausted bool
}

// CrawlRosters walks the paged roster query of every major platform.
// Within one platform, pages are strictly ordered and committed
// sequentially; a crash between pages loses at most the in-flight
// page. Across platforms no ordering is guaranteed or required.
func (c *crawler) CrawlRosters(ctx context.Context) error {
	if c.db == nil {
		return NotConnectedError()
	}

	start := time.Now()
	platforms, err := c.loadRosterPlatforms(ctx)
	if err != nil {
		return err
	}
	if len(platforms) == 0 {
		gn.Warn("No major platforms to crawl; run <em>gdb platforms major</em> first")
		return nil
	}

	var totalRows, totalPages, failed int
	remaining := c.cfg.Limit

	for i, pf := range platforms {
		select {
		case <-ctx.Done():
			return CancelledError(ctx.Err())
		default:
		}

		if pf.exhausted && !c.cfg.ProcessAll {
			slog.Debug("Skipping exhausted roster", "platform", pf.qid)
			continue
		}

		gn.Info("(%d/%d) Crawling roster of <em>%s</em>",
			i+1, len(platforms), pf.name)

		rows, pages, err := c.crawlPlatform(ctx, pf, &remaining)
		totalRows += rows
		totalPages += pages
		if err != nil {
			failed++
			// Per-platform failures never abort the run; the cursor
			// already points at the failed range for the next run.
			slog.Error("Roster crawl failed",
				"platform", pf.qid,
				"cursor", pf.cursor,
				"error", err,
			)
			continue
		}

		if c.cfg.Limit > 0 && remaining <= 0 {
			slog.Info("Run limit reached", "limit", c.cfg.Limit)
			break
		}
	}

	elapsed := time.Since(start)
	slog.Info("Roster crawl complete",
		"platforms", len(platforms),
		"pages", totalPages,
		"rows", totalRows,
		"failed", failed,
		"network_calls", c.stats.NetworkCalls(),
		"duration", gnfmt.TimeString(elapsed.Seconds()),
	)
	gn.Info(`Roster crawl complete
Pages: %d, rows: %s, failed platforms: %d
Elapsed time: <em>%s</em>`,
		totalPages,
		humanize.Comma(int64(totalRows)),
		failed,
		gnfmt.TimeString(elapsed.Seconds()),
	)
	return nil
}

// crawlPlatform pages through one platform's roster until an empty
// page, the run limit, or an error. Every page commits its rows and
// the advanced cursor in the same transaction.
func (c *crawler) crawlPlatform(
	ctx context.Context,
	pf rosterPlatform,
	remaining *int,
) (int, int, error) {
	var rows, pages int
	cursor := pf.cursor

	for {
		select {
		case <-ctx.Done():
			return rows, pages, CancelledError(ctx.Err())
		default:
		}

		pageSize := c.cfg.Crawl.PageSize
		if c.cfg.Limit > 0 && *remaining < pageSize {
			pageSize = *remaining
			if pageSize < 1 {
				return rows, pages, nil
			}
		}

		bindings, err := c.query.Select(ctx, rosterQuery(pf.qid, cursor, pageSize))
		if err != nil {
			return rows, pages, QueryError("roster page", err)
		}
		pages++

		if len(bindings) == 0 {
			if err := c.markExhausted(ctx, pf.id); err != nil {
				return rows, pages, err
			}
			slog.Info("Roster exhausted",
				"platform", pf.qid,
				"cursor", cursor,
			)
			return rows, pages, nil
		}

		newCursor, n, err := c.commitPage(ctx, pf, cursor, bindings)
		if err != nil {
			return rows, pages, err
		}
		rows += n
		cursor = newCursor
		if c.cfg.Limit > 0 {
			*remaining -= len(bindings)
		}

		slog.Info("Roster page committed",
			"platform", pf.qid,
			"rows", len(bindings),
			"cursor", cursor,
		)

		if c.cfg.Limit > 0 && *remaining <= 0 {
			return rows, pages, nil
		}
	}
}

// commitPage upserts game stubs, membership links, and the advanced
// cursor in one transaction. The cursor is the page's last identifier,
// so ordering stays strictly increasing.
func (c *crawler) commitPage(
	ctx context.Context,
	pf rosterPlatform,
	cursor string,
	bindings []iowapi.Binding,
) (string, int, error) {
	tx, err := c.db.Begin(ctx)
	if err != nil {
		return "", 0, CommitError("roster page", err)
	}
	defer tx.Rollback(ctx)

	var inserted int
	var lastQID string
	for _, b := range bindings {
		qid := b["item"]
		if qid == "" {
			continue
		}
		lastQID = qid
		label := b["itemLabel"]
		noLabel := label == "" || label == qid

		tag, err := tx.Exec(ctx,
			`INSERT INTO games (qid, name, slug, no_label, flag_reason)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (qid) DO NOTHING`,
			qid, label, slug.Make(label), noLabel, flagReason(noLabel))
		if err != nil {
			return "", 0, CommitError("games", err)
		}
		inserted += int(tag.RowsAffected())

		_, err = tx.Exec(ctx,
			`INSERT INTO game_platforms (game_id, platform_id, source)
			 SELECT g.id, $2, $3 FROM games g WHERE g.qid = $1
			 ON CONFLICT (game_id, platform_id, source) DO NOTHING`,
			qid, pf.id, parsed.SourceRoster)
		if err != nil {
			return "", 0, CommitError("game_platforms", err)
		}
	}

	if lastQID == "" {
		// A non-empty page without a single identifier cannot advance
		// the cursor; committing it would re-issue the same query
		// forever. The deferred rollback discards the page.
		return "", 0, MalformedPageError(pf.qid, cursor)
	}

	_, err = tx.Exec(ctx,
		`UPDATE platforms
		 SET roster_cursor = $2, roster_updated_at = $3
		 WHERE id = $1`,
		pf.id, lastQID, time.Now())
	if err != nil {
		return "", 0, CommitError("platforms", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", 0, CommitError("roster page", err)
	}
	return lastQID, inserted, nil
}

func (c *crawler) markExhausted(ctx context.Context, platformID uint) error {
	_, err := c.db.Exec(ctx,
		`UPDATE platforms
		 SET roster_exhausted = true, roster_updated_at = $2
		 WHERE id = $1`,
		platformID, time.Now())
	if err != nil {
		return CommitError("platforms", err)
	}
	return nil
}

// ResetCursor clears a platform's cursor and exhausted flag. This is
// the only way crawl state moves backwards; it never happens
// implicitly.
func (c *crawler) ResetCursor(
	ctx context.Context,
	platformQID string,
) error {
	if c.db == nil {
		return NotConnectedError()
	}

	tag, err := c.db.Exec(ctx,
		`UPDATE platforms
		 SET roster_cursor = NULL,
		     roster_exhausted = false,
		     roster_updated_at = $2
		 WHERE qid = $1`,
		platformQID, time.Now())
	if err != nil {
		return CommitError("platforms", err)
	}
	if tag.RowsAffected() == 0 {
		return UnknownPlatformError(platformQID)
	}

	slog.Info("Roster cursor reset", "platform", platformQID)
	gn.Info("Reset roster cursor for <em>%s</em>", platformQID)
	return nil
}

func (c *crawler) loadRosterPlatforms(
	ctx context.Context,
) ([]rosterPlatform, error) {
	query := `
		SELECT id, qid, name,
		       COALESCE(roster_cursor, ''), roster_exhausted
		FROM platforms
		WHERE major
		ORDER BY qid`
	args := []any{}
	if c.cfg.PlatformQID != "" {
		query = `
		SELECT id, qid, name,
		       COALESCE(roster_cursor, ''), roster_exhausted
		FROM platforms
		WHERE qid = $1`
		args = append(args, c.cfg.PlatformQID)
	}

	rows, err := c.db.Query(ctx, query, args...)
	if err != nil {
		return nil, QueryError("roster platforms", err)
	}
	defer rows.Close()

	var res []rosterPlatform
	for rows.Next() {
		var pf rosterPlatform
		err = rows.Scan(&pf.id, &pf.qid, &pf.name, &pf.cursor, &pf.exhausted)
		if err != nil {
			return nil, QueryError("roster platforms", err)
		}
		res = append(res, pf)
	}
	if err := rows.Err(); err != nil {
		return nil, QueryError("roster platforms", err)
	}
	if c.cfg.PlatformQID != "" && len(res) == 0 {
		return nil, UnknownPlatformError(c.cfg.PlatformQID)
	}
	return res, nil
}

// rosterQuery builds one cursor-scoped roster page query. Identifiers
// are compared lexically on the full entity URI, which gives a strict
// total order matching the stored cursor.
func rosterQuery(platformQID, cursorQID string, limit int) string {
	cursorFilter := ""
	if cursorQID != "" {
		cursorFilter = fmt.Sprintf(
			"\n  FILTER(STR(?item) > \"%s%s\")", entityPrefix, cursorQID)
	}
	return fmt.Sprintf(`SELECT ?item ?itemLabel WHERE {
  ?item wdt:P31/wdt:P279* wd:Q7889 .
  ?item wdt:P400 wd:%s .%s
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
ORDER BY ASC(STR(?item))
LIMIT %d`, platformQID, cursorFilter, limit)
}

const entityPrefix = "http://www.wikidata.org/entity/"
