// Package ioenrich hydrates platform and game rows from entity
// documents resolved through the revision-aware cache. Enrichment only
// touches scalar row fields; claim-derived relations are the
// normalizer's job.
package ioenrich

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/gamedex/gdb/internal/iocache"
	"github.com/gamedex/gdb/internal/iofetch"
	"github.com/gamedex/gdb/pkg/config"
	"github.com/gamedex/gdb/pkg/db"
	"github.com/gamedex/gdb/pkg/gdb"
	"github.com/gamedex/gdb/pkg/slug"
	"github.com/gamedex/gdb/pkg/wikidata"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"golang.org/x/sync/errgroup"
)

// Scalar claim properties applied during platform enrichment.
const (
	propPublicationDate = "P577"
	propShortName       = "P1813"
)

type enricher struct {
	cfg      *config.Config
	operator db.Operator
	cache    *iocache.EntityCache
	pages    *iocache.PageCache
	stats    *iofetch.Stats
}

// New creates an Enricher.
func New(
	cfg *config.Config,
	op db.Operator,
	cache *iocache.EntityCache,
	pages *iocache.PageCache,
	stats *iofetch.Stats,
) gdb.Enricher {
	return &enricher{
		cfg:      cfg,
		operator: op,
		cache:    cache,
		pages:    pages,
		stats:    stats,
	}
}

// EnrichPlatforms fills platform scalar fields from entity documents.
// Curated fields (major flag, generation) are never overwritten.
func (e *enricher) EnrichPlatforms(ctx context.Context) error {
	pool := e.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	start := time.Now()
	qids, err := e.pendingQIDs(ctx, "platforms")
	if err != nil {
		return err
	}
	if len(qids) == 0 {
		gn.Info("All platforms are already enriched")
		return nil
	}
	gn.Info("Enriching <em>%d</em> platforms", len(qids))

	var done, missing int
	for i := 0; i < len(qids); i += e.cfg.Crawl.BatchSize {
		end := min(i+e.cfg.Crawl.BatchSize, len(qids))
		batch, err := e.cache.GetOrFetchBatch(ctx, qids[i:end])
		if err != nil {
			return err
		}

		for _, qid := range qids[i:end] {
			ent, ok := batch[qid]
			if !ok || ent.Missing {
				missing++
				if err := e.flagMissing(ctx, "platforms", qid); err != nil {
					return err
				}
				continue
			}
			if err := e.updatePlatform(ctx, qid, ent.Entity); err != nil {
				return err
			}
			e.snapshotPage(ctx, ent.Entity)
			done++
		}
	}

	elapsed := time.Since(start)
	slog.Info("Platform enrichment complete",
		"enriched", done,
		"missing", missing,
		"network_calls", e.stats.NetworkCalls(),
		"cache_hits", e.stats.CacheHits(),
		"duration", gnfmt.TimeString(elapsed.Seconds()),
	)
	gn.Info(`Platform enrichment complete
Enriched: %d, missing upstream: %d
Elapsed time: <em>%s</em>`,
		done, missing, gnfmt.TimeString(elapsed.Seconds()))
	return nil
}

func (e *enricher) updatePlatform(
	ctx context.Context,
	qid string,
	ent *wikidata.Entity,
) error {
	label := ent.Label("en")
	noLabel := label == ""
	name := label
	if name == "" {
		name = qid
	}

	var year any
	if y, ok := releaseYear(ent.Claims); ok {
		year = y
	}
	var abbr string
	if a, ok := shortName(ent.Claims); ok {
		abbr = a
	}

	_, err := e.operator.Pool().Exec(ctx,
		`UPDATE platforms
		 SET name = $2, slug = $3, wikipedia_title = $4,
		     abbreviation = $5, release_year = $6,
		     no_label = $7, no_claims = $8, flag_reason = $9,
		     last_enriched_at = $10
		 WHERE qid = $1`,
		qid, name, slug.Make(name), ent.SitelinkTitle("enwiki"),
		abbr, year,
		noLabel, !ent.HasClaims(), rowFlag(noLabel, !ent.HasClaims()),
		time.Now())
	if err != nil {
		return UpdateError("platforms", qid, err)
	}
	return nil
}

// snapshotPage refreshes the cached wiki page behind a platform's
// sitelink. Snapshot failures are logged and skipped; page text is an
// optional extra, never a reason to fail enrichment.
func (e *enricher) snapshotPage(ctx context.Context, ent *wikidata.Entity) {
	title := ent.SitelinkTitle("enwiki")
	if title == "" {
		return
	}
	if _, err := e.pages.GetOrFetch(ctx, "enwiki", title); err != nil {
		slog.Warn("Cannot snapshot wiki page",
			"site", "enwiki", "title", title, "error", err)
	}
}

// EnrichGames batch-hydrates game entity documents and stamps row
// fields. Document API batches run on a small worker pool; the cache
// decides per batch which documents actually need network traffic.
func (e *enricher) EnrichGames(ctx context.Context) error {
	pool := e.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	start := time.Now()
	qids, err := e.pendingQIDs(ctx, "games")
	if err != nil {
		return err
	}
	if len(qids) == 0 {
		gn.Info("All games are already enriched")
		return nil
	}
	gn.Info("Enriching <em>%s</em> games", humanize.Comma(int64(len(qids))))

	bar := pb.StartNew(len(qids))
	defer bar.Finish()

	chunks := make(chan []string)
	var mu sync.Mutex
	var done, missing int

	g, ctx := errgroup.WithContext(ctx)
	for range e.cfg.JobsNumber {
		g.Go(func() error {
			for chunk := range chunks {
				batch, err := e.cache.GetOrFetchBatch(ctx, chunk)
				if err != nil {
					return err
				}
				for _, qid := range chunk {
					ent, ok := batch[qid]
					if !ok || ent.Missing {
						if err := e.flagMissing(ctx, "games", qid); err != nil {
							return err
						}
						mu.Lock()
						missing++
						mu.Unlock()
						bar.Increment()
						continue
					}
					if err := e.updateGame(ctx, qid, ent.Entity); err != nil {
						return err
					}
					mu.Lock()
					done++
					mu.Unlock()
					bar.Increment()
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(chunks)
		for i := 0; i < len(qids); i += e.cfg.Crawl.BatchSize {
			end := min(i+e.cfg.Crawl.BatchSize, len(qids))
			select {
			case chunks <- qids[i:end]:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	bar.Finish()

	elapsed := time.Since(start)
	slog.Info("Game enrichment complete",
		"enriched", done,
		"missing", missing,
		"network_calls", e.stats.NetworkCalls(),
		"cache_hits", e.stats.CacheHits(),
		"retries", e.stats.Retries(),
		"duration", gnfmt.TimeString(elapsed.Seconds()),
	)
	gn.Info(`Game enrichment complete
Enriched: %s, missing upstream: %d
Network calls: %s, cache hits: %s
Elapsed time: <em>%s</em>`,
		humanize.Comma(int64(done)), missing,
		humanize.Comma(e.stats.NetworkCalls()),
		humanize.Comma(e.stats.CacheHits()),
		gnfmt.TimeString(elapsed.Seconds()))
	return nil
}

func (e *enricher) updateGame(
	ctx context.Context,
	qid string,
	ent *wikidata.Entity,
) error {
	label := ent.Label("en")
	noLabel := label == ""
	name := label
	if name == "" {
		name = qid
	}
	noClaims := !ent.HasClaims()

	_, err := e.operator.Pool().Exec(ctx,
		`UPDATE games
		 SET name = $2, slug = $3, wikipedia_title = $4,
		     no_label = $5, no_claims = $6, flag_reason = $7,
		     last_enriched_at = $8
		 WHERE qid = $1`,
		qid, name, slug.Make(name), ent.SitelinkTitle("enwiki"),
		noLabel, noClaims, rowFlag(noLabel, noClaims),
		time.Now())
	if err != nil {
		return UpdateError("games", qid, err)
	}
	return nil
}

// pendingQIDs loads identifiers that still need enrichment, oldest
// first. ProcessAll widens the set to every row; Limit caps it.
func (e *enricher) pendingQIDs(
	ctx context.Context,
	table string,
) ([]string, error) {
	query := `SELECT qid FROM ` + table + `
		WHERE last_enriched_at IS NULL
		ORDER BY id`
	if e.cfg.ProcessAll {
		query = `SELECT qid FROM ` + table + ` ORDER BY id`
	}

	rows, err := e.operator.Pool().Query(ctx, query)
	if err != nil {
		return nil, LoadError(table, err)
	}
	defer rows.Close()

	var res []string
	for rows.Next() {
		var qid string
		if err := rows.Scan(&qid); err != nil {
			return nil, LoadError(table, err)
		}
		res = append(res, qid)
		if e.cfg.Limit > 0 && len(res) >= e.cfg.Limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, LoadError(table, err)
	}
	return res, nil
}

// flagMissing marks a row whose upstream record no longer exists. The
// row stays; downstream stages skip flagged rows.
func (e *enricher) flagMissing(
	ctx context.Context,
	table, qid string,
) error {
	_, err := e.operator.Pool().Exec(ctx,
		`UPDATE `+table+`
		 SET flag_reason = 'missing', no_claims = true,
		     last_enriched_at = $2
		 WHERE qid = $1`,
		qid, time.Now())
	if err != nil {
		return UpdateError(table, qid, err)
	}
	return nil
}

func rowFlag(noLabel, noClaims bool) string {
	switch {
	case noClaims:
		return "no_claims"
	case noLabel:
		return "no_label"
	default:
		return ""
	}
}

// releaseYear resolves the publication-date year with rank rules:
// deprecated statements never apply, preferred beats normal, first
// seen wins ties.
func releaseYear(claims wikidata.ClaimDocument) (int, bool) {
	var cands []wikidata.Candidate[int]
	for _, st := range claims.Statements(propPublicationDate) {
		if st.Value.Kind != wikidata.ValueTime || !st.Rank.Applicable() {
			continue
		}
		cands = append(cands, wikidata.Candidate[int]{
			Rank:  st.Rank,
			Value: st.Value.Time.Year,
		})
	}
	best, ok := wikidata.PickCandidate(cands)
	return best.Value, ok
}

func shortName(claims wikidata.ClaimDocument) (string, bool) {
	var cands []wikidata.Candidate[string]
	for _, st := range claims.Statements(propShortName) {
		if st.Value.Kind != wikidata.ValueString || !st.Rank.Applicable() {
			continue
		}
		cands = append(cands, wikidata.Candidate[string]{
			Rank:  st.Rank,
			Value: st.Value.Str,
		})
	}
	best, ok := wikidata.PickCandidate(cands)
	return best.Value, ok
}
