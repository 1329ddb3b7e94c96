// Package iowrite owns the transition from normalized batch rows to
// committed relational rows. Writes are idempotent: applying the same
// batch twice leaves the database unchanged.
package iowrite

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gamedex/gdb/pkg/config"
	"github.com/gamedex/gdb/pkg/db"
	"github.com/gamedex/gdb/pkg/parsed"
	"github.com/gamedex/gdb/pkg/schema"
	"github.com/gamedex/gdb/pkg/slug"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Serialization failure and deadlock SQLSTATEs; both are safe to
// retry because the whole batch runs in one transaction.
const (
	sqlstateSerialization = "40001"
	sqlstateDeadlock      = "40P01"
)

// conflictRetries caps transaction retries on retryable SQLSTATEs.
const conflictRetries = 3

// Writer applies normalized batches. A single-slot gate serializes
// writes, so concurrent normalization workers never interleave
// transactions.
type Writer struct {
	cfg      *config.Config
	operator db.Operator
	gate     chan struct{}
}

// New creates a batch writer.
func New(cfg *config.Config, op db.Operator) *Writer {
	return &Writer{
		cfg:      cfg,
		operator: op,
		gate:     make(chan struct{}, 1),
	}
}

// Apply replaces the derived rows of every entity in the batch inside
// one transaction: delete claim-derived rows, insert the new ones,
// patch scalars. Roster membership rows are never touched.
func (w *Writer) Apply(
	ctx context.Context,
	b *parsed.Batch,
) (parsed.Counts, error) {
	var counts parsed.Counts
	pool := w.operator.Pool()
	if pool == nil {
		return counts, NotConnectedError()
	}
	if len(b.GameQIDs) == 0 {
		return counts, nil
	}

	select {
	case w.gate <- struct{}{}:
		defer func() { <-w.gate }()
	case <-ctx.Done():
		return counts, ctx.Err()
	}

	var err error
	for attempt := 0; ; attempt++ {
		counts, err = w.applyOnce(ctx, b)
		if err == nil {
			return counts, nil
		}
		if !retryableConflict(err) || attempt >= conflictRetries {
			break
		}
		wait := time.Duration(attempt+1) * time.Second
		slog.Warn("Retrying batch after transaction conflict",
			"attempt", attempt+1, "wait", wait, "error", err)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return counts, ctx.Err()
		}
	}
	if retryableConflict(err) {
		return counts, ConflictRetriesError(conflictRetries, err)
	}
	return counts, err
}

func (w *Writer) applyOnce(
	ctx context.Context,
	b *parsed.Batch,
) (parsed.Counts, error) {
	var counts parsed.Counts
	pool := w.operator.Pool()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return counts, BatchError("begin", err)
	}
	defer tx.Rollback(ctx)

	gameIDs, err := resolveIDs(ctx, tx, "games", b.GameQIDs)
	if err != nil {
		return counts, err
	}

	deleted, err := w.deleteStale(ctx, tx, b, gameIDs)
	if err != nil {
		return counts, err
	}
	counts.Deleted = deleted

	if err := upsertDimensions(ctx, tx, b); err != nil {
		return counts, err
	}

	refs, err := w.resolveRefs(ctx, tx, b)
	if err != nil {
		return counts, err
	}

	inserted, dropped, err := w.insertRows(ctx, tx, b, gameIDs, refs)
	if err != nil {
		return counts, err
	}
	counts.Inserted = inserted
	counts.DroppedDangling = dropped

	if !b.RelationsOnly {
		patched, err := applyPatches(ctx, tx, b.Patches)
		if err != nil {
			return counts, err
		}
		counts.Patched = patched
	}

	if err := tx.Commit(ctx); err != nil {
		return counts, BatchError("commit", err)
	}
	return counts, nil
}

// deleteStale clears previously derived rows of the batch's entities.
// Only claim-derived rows go; roster membership keeps its source tag
// and survives.
func (w *Writer) deleteStale(
	ctx context.Context,
	tx pgx.Tx,
	b *parsed.Batch,
	gameIDs map[string]uint,
) (int, error) {
	ids := make([]uint, 0, len(gameIDs))
	for _, id := range gameIDs {
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	tables := schema.DerivedTables()
	if b.RelationsOnly {
		tables = []string{"game_relations"}
	}

	var deleted int
	for _, table := range tables {
		tag, err := tx.Exec(ctx,
			`DELETE FROM `+table+`
			 WHERE game_id = ANY($1) AND source = $2`,
			ids, parsed.SourceWikidata)
		if err != nil {
			return 0, BatchError("delete "+table, err)
		}
		deleted += int(tag.RowsAffected())
	}
	return deleted, nil
}

// upsertDimensions creates genre and company rows on demand. Labels
// are not known at write time; rows start with the identifier as name
// until a dimension enrichment fills them.
func upsertDimensions(ctx context.Context, tx pgx.Tx, b *parsed.Batch) error {
	genreQIDs := map[string]bool{}
	for _, g := range b.Genres {
		genreQIDs[g.GenreQID] = true
	}
	companyQIDs := map[string]bool{}
	for _, c := range b.Companies {
		companyQIDs[c.CompanyQID] = true
	}

	for qid := range genreQIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO genres (qid, name, slug) VALUES ($1, $2, $3)
			 ON CONFLICT (qid) DO NOTHING`,
			qid, qid, slug.Make(qid))
		if err != nil {
			return BatchError("genres", err)
		}
	}
	for qid := range companyQIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO companies (qid, name, slug) VALUES ($1, $2, $3)
			 ON CONFLICT (qid) DO NOTHING`,
			qid, qid, slug.Make(qid))
		if err != nil {
			return BatchError("companies", err)
		}
	}
	return nil
}

// refIDs maps upstream identifiers to resolved foreign keys for every
// referenced table.
type refIDs struct {
	platforms map[string]uint
	genres    map[string]uint
	companies map[string]uint
	related   map[string]uint
}

func (w *Writer) resolveRefs(
	ctx context.Context,
	tx pgx.Tx,
	b *parsed.Batch,
) (*refIDs, error) {
	refs := &refIDs{}

	platformQIDs := collect(len(b.Platforms), func(i int) string {
		return b.Platforms[i].PlatformQID
	})
	genreQIDs := collect(len(b.Genres), func(i int) string {
		return b.Genres[i].GenreQID
	})
	companyQIDs := collect(len(b.Companies), func(i int) string {
		return b.Companies[i].CompanyQID
	})
	relatedQIDs := collect(len(b.Relations), func(i int) string {
		return b.Relations[i].RelatedQID
	})

	var err error
	if refs.platforms, err = resolveIDs(ctx, tx, "platforms", platformQIDs); err != nil {
		return nil, err
	}
	if refs.genres, err = resolveIDs(ctx, tx, "genres", genreQIDs); err != nil {
		return nil, err
	}
	if refs.companies, err = resolveIDs(ctx, tx, "companies", companyQIDs); err != nil {
		return nil, err
	}
	if refs.related, err = resolveIDs(ctx, tx, "games", relatedQIDs); err != nil {
		return nil, err
	}
	return refs, nil
}

// insertRows writes every derived row whose references resolve. Rows
// referencing an unknown target are dropped and counted, never fatal;
// a later relation pass picks them up once targets exist.
func (w *Writer) insertRows(
	ctx context.Context,
	tx pgx.Tx,
	b *parsed.Batch,
	gameIDs map[string]uint,
	refs *refIDs,
) (int, int, error) {
	batch := &pgx.Batch{}
	var dropped int

	for _, r := range b.Platforms {
		gameID, ok1 := gameIDs[r.GameQID]
		platformID, ok2 := refs.platforms[r.PlatformQID]
		if !ok1 || !ok2 {
			dropped++
			continue
		}
		batch.Queue(
			`INSERT INTO game_platforms (game_id, platform_id, source, claim_id)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (game_id, platform_id, source) DO NOTHING`,
			gameID, platformID, parsed.SourceWikidata, r.ClaimID)
	}
	for _, r := range b.Genres {
		gameID, ok1 := gameIDs[r.GameQID]
		genreID, ok2 := refs.genres[r.GenreQID]
		if !ok1 || !ok2 {
			dropped++
			continue
		}
		batch.Queue(
			`INSERT INTO game_genres (game_id, genre_id, kind, source, claim_id)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (game_id, genre_id, kind) DO NOTHING`,
			gameID, genreID, r.Kind, parsed.SourceWikidata, r.ClaimID)
	}
	for _, r := range b.Companies {
		gameID, ok1 := gameIDs[r.GameQID]
		companyID, ok2 := refs.companies[r.CompanyQID]
		if !ok1 || !ok2 {
			dropped++
			continue
		}
		batch.Queue(
			`INSERT INTO game_companies (game_id, company_id, role, source, claim_id)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (game_id, company_id, role) DO NOTHING`,
			gameID, companyID, r.Role, parsed.SourceWikidata, r.ClaimID)
	}
	for _, r := range b.Websites {
		gameID, ok := gameIDs[r.GameQID]
		if !ok {
			dropped++
			continue
		}
		batch.Queue(
			`INSERT INTO game_websites (game_id, url, kind, source, claim_id)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (game_id, url, kind) DO NOTHING`,
			gameID, r.URL, r.Kind, parsed.SourceWikidata, r.ClaimID)
	}
	for _, r := range b.Images {
		gameID, ok := gameIDs[r.GameQID]
		if !ok {
			dropped++
			continue
		}
		batch.Queue(
			`INSERT INTO game_images (game_id, file, kind, source, claim_id)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (game_id, file, kind) DO NOTHING`,
			gameID, r.File, r.Kind, parsed.SourceWikidata, r.ClaimID)
	}
	for _, r := range b.ExternalIDs {
		gameID, ok := gameIDs[r.GameQID]
		if !ok {
			dropped++
			continue
		}
		batch.Queue(
			`INSERT INTO game_external_ids (game_id, kind, value, source, claim_id)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (game_id, kind, value) DO NOTHING`,
			gameID, r.Kind, r.Value, parsed.SourceWikidata, r.ClaimID)
	}
	for _, r := range b.AgeRatings {
		gameID, ok := gameIDs[r.GameQID]
		if !ok {
			dropped++
			continue
		}
		batch.Queue(
			`INSERT INTO game_age_ratings
			 (game_id, system, rating_qid, region_qid, source, claim_id)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (game_id, system, rating_qid) DO NOTHING`,
			gameID, r.System, r.RatingQID, r.RegionQID,
			parsed.SourceWikidata, r.ClaimID)
	}
	for _, r := range b.Relations {
		gameID, ok1 := gameIDs[r.GameQID]
		relatedID, ok2 := refs.related[r.RelatedQID]
		if !ok1 || !ok2 {
			dropped++
			continue
		}
		if gameID == relatedID {
			// Self-references happen upstream; they carry no signal.
			dropped++
			continue
		}
		batch.Queue(
			`INSERT INTO game_relations
			 (game_id, related_game_id, kind, source, claim_id)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (game_id, related_game_id, kind) DO NOTHING`,
			gameID, relatedID, r.Kind, parsed.SourceWikidata, r.ClaimID)
	}

	if batch.Len() == 0 {
		return 0, dropped, nil
	}

	res := tx.SendBatch(ctx, batch)
	var inserted int
	for range batch.Len() {
		tag, err := res.Exec()
		if err != nil {
			res.Close()
			return 0, 0, BatchError("insert", err)
		}
		inserted += int(tag.RowsAffected())
	}
	if err := res.Close(); err != nil {
		return 0, 0, BatchError("insert", err)
	}
	return inserted, dropped, nil
}

// applyPatches writes rank-resolved scalars. A patch only lands when
// the stored value actually differs, so re-derivations do not churn
// row versions.
func applyPatches(
	ctx context.Context,
	tx pgx.Tx,
	patches []parsed.ScalarPatch,
) (int, error) {
	var patched int
	for _, p := range patches {
		if p.ReleaseYear != nil {
			tag, err := tx.Exec(ctx,
				`UPDATE games
				 SET release_year = $2,
				     first_release_at = $3,
				     release_date_category = $4,
				     release_platform_qid = $5,
				     release_region_qid = $6
				 WHERE qid = $1
				   AND (release_year IS DISTINCT FROM $2
				     OR first_release_at IS DISTINCT FROM $3
				     OR release_date_category IS DISTINCT FROM $4
				     OR release_platform_qid IS DISTINCT FROM $5
				     OR release_region_qid IS DISTINCT FROM $6)`,
				p.GameQID, *p.ReleaseYear, *p.FirstReleaseAt,
				p.DateCategory, p.ReleasePlatformQID, p.ReleaseRegionQID)
			if err != nil {
				return 0, BatchError("release patch", err)
			}
			patched += int(tag.RowsAffected())
		}
		if p.CoverImage != nil {
			tag, err := tx.Exec(ctx,
				`UPDATE games SET cover_image = $2
				 WHERE qid = $1 AND cover_image IS DISTINCT FROM $2`,
				p.GameQID, *p.CoverImage)
			if err != nil {
				return 0, BatchError("cover patch", err)
			}
			patched += int(tag.RowsAffected())
		}
	}
	return patched, nil
}

// resolveIDs maps identifiers to primary keys for one table.
// Identifiers without a row are simply absent from the result.
func resolveIDs(
	ctx context.Context,
	tx pgx.Tx,
	table string,
	qids []string,
) (map[string]uint, error) {
	res := make(map[string]uint, len(qids))
	if len(qids) == 0 {
		return res, nil
	}

	rows, err := tx.Query(ctx,
		`SELECT qid, id FROM `+table+` WHERE qid = ANY($1)`, qids)
	if err != nil {
		return nil, BatchError("resolve "+table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var qid string
		var id uint
		if err := rows.Scan(&qid, &id); err != nil {
			return nil, BatchError("resolve "+table, err)
		}
		res[qid] = id
	}
	if err := rows.Err(); err != nil {
		return nil, BatchError("resolve "+table, err)
	}
	return res, nil
}

// collect gathers deduplicated identifiers from an indexed accessor.
func collect(n int, get func(i int) string) []string {
	seen := make(map[string]bool, n)
	var res []string
	for i := range n {
		qid := get(i)
		if qid == "" || seen[qid] {
			continue
		}
		seen[qid] = true
		res = append(res, qid)
	}
	return res
}

func retryableConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == sqlstateSerialization ||
		pgErr.Code == sqlstateDeadlock
}
