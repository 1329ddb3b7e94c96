package ionormalize

import (
	"context"
	"log/slog"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/gamedex/gdb/pkg/config"
	"github.com/gamedex/gdb/pkg/db"
	"github.com/gamedex/gdb/pkg/gdb"
	"github.com/gamedex/gdb/pkg/parsed"
	"github.com/gamedex/gdb/pkg/registry"
	"github.com/gamedex/gdb/pkg/wikidata"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
)

// BatchWriter applies one normalized batch idempotently.
type BatchWriter interface {
	Apply(ctx context.Context, b *parsed.Batch) (parsed.Counts, error)
}

type normalizer struct {
	cfg      *config.Config
	operator db.Operator
	writer   BatchWriter
}

// New creates a Normalizer.
func New(
	cfg *config.Config,
	op db.Operator,
	writer BatchWriter,
) gdb.Normalizer {
	return &normalizer{cfg: cfg, operator: op, writer: writer}
}

// Normalize re-derives all claim rows for games whose cached document
// is newer than their last normalization. Entities are processed in
// batches; each batch is applied and stamped before the next one
// starts, so an interrupted run resumes at the first unstamped entity.
func (n *normalizer) Normalize(ctx context.Context) error {
	reg, err := registry.Load(registry.LoadOptions{
		IncludeNiche: n.cfg.IncludeNiche,
	})
	if err != nil {
		return RegistryError(err)
	}
	return n.run(ctx, NewEngine(reg), "Normalization")
}

// HydrateRelations re-derives only cross-game relation rows. Running
// it after a full ingest lands relation references that dangled while
// their target games did not exist yet.
func (n *normalizer) HydrateRelations(ctx context.Context) error {
	reg, err := registry.Load(registry.LoadOptions{
		IncludeNiche: n.cfg.IncludeNiche,
	})
	if err != nil {
		return RegistryError(err)
	}
	return n.run(ctx, NewRelationEngine(reg), "Relation hydration")
}

func (n *normalizer) run(
	ctx context.Context,
	engine *Engine,
	phase string,
) error {
	pool := n.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	start := time.Now()
	qids, err := n.pendingQIDs(ctx, engine.relationsOnly)
	if err != nil {
		return err
	}
	if len(qids) == 0 {
		gn.Info("%s: nothing to do, all documents are current", phase)
		return nil
	}
	gn.Info("%s over <em>%s</em> games", phase,
		humanize.Comma(int64(len(qids))))

	bar := pb.StartNew(len(qids))
	defer bar.Finish()

	var counts parsed.Counts
	var skippedShapes, unreadable int

	for i := 0; i < len(qids); i += n.cfg.Crawl.BatchSize {
		select {
		case <-ctx.Done():
			return CancelledError(ctx.Err())
		default:
		}

		end := min(i+n.cfg.Crawl.BatchSize, len(qids))
		chunk := qids[i:end]

		batch := &parsed.Batch{}
		for _, qid := range chunk {
			ent, err := n.cachedEntity(ctx, qid)
			if err != nil {
				// A corrupt cached document skips the entity, never
				// the run. Re-enrichment replaces the row.
				slog.Warn("Unreadable cached document",
					"qid", qid, "error", err)
				unreadable++
				continue
			}
			engine.Normalize(ent, batch)
		}
		skippedShapes += batch.SkippedShapes

		c, err := n.writer.Apply(ctx, batch)
		if err != nil {
			return err
		}
		counts.Add(c)

		if err := n.stamp(ctx, batch.GameQIDs, engine.relationsOnly); err != nil {
			return err
		}
		bar.Add(len(chunk))
	}
	bar.Finish()

	elapsed := time.Since(start)
	slog.Info(phase+" complete",
		"games", len(qids),
		"deleted", counts.Deleted,
		"inserted", counts.Inserted,
		"patched", counts.Patched,
		"dropped_dangling", counts.DroppedDangling,
		"skipped_shapes", skippedShapes,
		"unreadable", unreadable,
		"duration", gnfmt.TimeString(elapsed.Seconds()),
	)
	gn.Info(`%s complete
Games: %s, inserted rows: %s, deleted rows: %s
Scalar patches: %d, dangling references dropped: %d
Shape mismatches skipped: %d
Elapsed time: <em>%s</em>`,
		phase,
		humanize.Comma(int64(len(qids))),
		humanize.Comma(int64(counts.Inserted)),
		humanize.Comma(int64(counts.Deleted)),
		counts.Patched,
		counts.DroppedDangling,
		skippedShapes,
		gnfmt.TimeString(elapsed.Seconds()),
	)
	return nil
}

// pendingQIDs selects games whose cached document is newer than their
// last normalization stamp. ProcessAll widens to every cached game.
// Rows flagged missing upstream are never normalized.
func (n *normalizer) pendingQIDs(
	ctx context.Context,
	relationsOnly bool,
) ([]string, error) {
	stampCol := "last_normalized_at"
	if relationsOnly {
		// Relation hydration is a separate pass over the same
		// documents; it always covers every cached game.
		stampCol = ""
	}

	query := `
		SELECT g.qid
		FROM games g
		JOIN entity_caches c ON c.qid = g.qid
		WHERE g.flag_reason <> 'missing'`
	if !n.cfg.ProcessAll && stampCol != "" {
		query += `
		  AND (g.` + stampCol + ` IS NULL OR g.` + stampCol + ` < c.fetched_at)`
	}
	query += `
		ORDER BY g.id`

	rows, err := n.operator.Pool().Query(ctx, query)
	if err != nil {
		return nil, LoadError(err)
	}
	defer rows.Close()

	var res []string
	for rows.Next() {
		var qid string
		if err := rows.Scan(&qid); err != nil {
			return nil, LoadError(err)
		}
		res = append(res, qid)
		if n.cfg.Limit > 0 && len(res) >= n.cfg.Limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, LoadError(err)
	}
	return res, nil
}

// cachedEntity reads one entity document from the cache table. The
// normalizer never fetches; missing cache rows cannot occur here
// because pendingQIDs joins on the cache.
func (n *normalizer) cachedEntity(
	ctx context.Context,
	qid string,
) (*wikidata.Entity, error) {
	var raw []byte
	row := n.operator.Pool().QueryRow(ctx,
		`SELECT document FROM entity_caches WHERE qid = $1`, qid)
	if err := row.Scan(&raw); err != nil {
		return nil, err
	}
	return wikidata.UnmarshalEntity(raw)
}

func (n *normalizer) stamp(
	ctx context.Context,
	qids []string,
	relationsOnly bool,
) error {
	if relationsOnly || len(qids) == 0 {
		return nil
	}
	_, err := n.operator.Pool().Exec(ctx,
		`UPDATE games SET last_normalized_at = $2 WHERE qid = ANY($1)`,
		qids, time.Now())
	if err != nil {
		return StampError(err)
	}
	return nil
}
