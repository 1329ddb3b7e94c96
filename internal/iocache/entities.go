// Package iocache implements the revision-aware caches for the two
// document kinds: knowledge-graph entities keyed by QID and wiki pages
// keyed by (site, title). Both follow the same two-step algorithm:
// probe the current version marker with a lightweight request, and
// issue the heavyweight payload fetch only when the marker changed.
// The payload can be orders of magnitude larger than the probe, so
// this is the pipeline's main cost control.
package iocache

import (
	"context"
	"log/slog"
	"time"

	"github.com/gamedex/gdb/internal/iofetch"
	"github.com/gamedex/gdb/internal/iowapi"
	"github.com/gamedex/gdb/pkg/config"
	"github.com/gamedex/gdb/pkg/wikidata"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the caches need. Narrowing the
// dependency keeps cache logic testable against a mock pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Source reports where a payload came from.
type Source int

const (
	SourceCacheHit Source = iota
	SourceFetched
)

// String implements fmt.Stringer.
func (s Source) String() string {
	if s == SourceCacheHit {
		return "cache-hit"
	}
	return "fetched"
}

// CachedEntity is one resolved entity document.
type CachedEntity struct {
	Entity     *wikidata.Entity
	Raw        []byte
	RevisionID int64
	Source     Source
	// Missing marks entities with no upstream record. They are never
	// cached; callers flag the corresponding row instead.
	Missing bool
}

// EntityCache resolves entity documents through the entity_caches
// table.
type EntityCache struct {
	pool  DB
	api   *iowapi.APIClient
	stats *iofetch.Stats
}

// NewEntityCache creates an entity cache.
func NewEntityCache(
	pool DB,
	api *iowapi.APIClient,
	stats *iofetch.Stats,
) *EntityCache {
	return &EntityCache{pool: pool, api: api, stats: stats}
}

// GetOrFetch resolves one entity document.
func (c *EntityCache) GetOrFetch(
	ctx context.Context,
	qid string,
) (*CachedEntity, error) {
	res, err := c.GetOrFetchBatch(ctx, []string{qid})
	if err != nil {
		return nil, err
	}
	ent, ok := res[qid]
	if !ok {
		return &CachedEntity{Missing: true}, nil
	}
	return ent, nil
}

// GetOrFetchBatch resolves a batch of entity documents. Revision
// probes go out in chunks of config.EntityProbeChunk ids; only the
// subset whose marker changed (or was never cached) gets the
// heavyweight fetch. Each changed entity is upserted keyed by QID, so
// at most one live row exists per identity.
func (c *EntityCache) GetOrFetchBatch(
	ctx context.Context,
	qids []string,
) (map[string]*CachedEntity, error) {
	if len(qids) == 0 {
		return map[string]*CachedEntity{}, nil
	}

	stored, err := c.storedRevisions(ctx, qids)
	if err != nil {
		return nil, err
	}

	revisions := make(map[string]int64, len(qids))
	for i := 0; i < len(qids); i += config.EntityProbeChunk {
		end := min(i+config.EntityProbeChunk, len(qids))
		chunk, err := c.api.EntityRevisions(ctx, qids[i:end])
		if err != nil {
			return nil, ProbeError(err)
		}
		for qid, rev := range chunk {
			revisions[qid] = rev
		}
	}

	res := make(map[string]*CachedEntity, len(qids))
	var stale []string
	for _, qid := range qids {
		rev, probed := revisions[qid]
		if !probed || rev == 0 {
			res[qid] = &CachedEntity{Missing: true}
			continue
		}
		if storedRev, ok := stored[qid]; ok && storedRev == rev {
			ent, err := c.readCached(ctx, qid, rev)
			if err != nil {
				return nil, err
			}
			c.stats.AddCacheHit()
			res[qid] = ent
			continue
		}
		stale = append(stale, qid)
	}

	for i := 0; i < len(stale); i += config.EntityProbeChunk {
		end := min(i+config.EntityProbeChunk, len(stale))
		docs, err := c.api.Entities(ctx, stale[i:end])
		if err != nil {
			return nil, err
		}
		for qid, doc := range docs {
			if doc.Entity.Missing {
				res[qid] = &CachedEntity{Missing: true}
				continue
			}
			rev := doc.Entity.LastRevID
			if err := c.upsert(ctx, qid, rev, doc.Raw); err != nil {
				return nil, err
			}
			res[qid] = &CachedEntity{
				Entity:     doc.Entity,
				Raw:        doc.Raw,
				RevisionID: rev,
				Source:     SourceFetched,
			}
		}
	}

	slog.Debug("Entity cache batch resolved",
		"requested", len(qids),
		"fetched", len(stale),
		"hits", len(qids)-len(stale),
	)
	return res, nil
}

// CachedDocument returns the stored document for a QID without any
// network traffic. Used by normalization, which only reads the cache.
func (c *EntityCache) CachedDocument(
	ctx context.Context,
	qid string,
) (*CachedEntity, error) {
	row := c.pool.QueryRow(ctx,
		`SELECT revision_id, document
		 FROM entity_caches WHERE qid = $1`, qid)

	var rev int64
	var raw []byte
	if err := row.Scan(&rev, &raw); err != nil {
		return nil, ReadError(qid, err)
	}
	ent, err := wikidata.UnmarshalEntity(raw)
	if err != nil {
		return nil, ReadError(qid, err)
	}
	return &CachedEntity{
		Entity:     ent,
		Raw:        raw,
		RevisionID: rev,
		Source:     SourceCacheHit,
	}, nil
}

func (c *EntityCache) storedRevisions(
	ctx context.Context,
	qids []string,
) (map[string]int64, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT qid, revision_id
		 FROM entity_caches WHERE qid = ANY($1)`, qids)
	if err != nil {
		return nil, ReadError("batch", err)
	}
	defer rows.Close()

	res := make(map[string]int64)
	for rows.Next() {
		var qid string
		var rev int64
		if err := rows.Scan(&qid, &rev); err != nil {
			return nil, ReadError(qid, err)
		}
		res[qid] = rev
	}
	return res, rows.Err()
}

func (c *EntityCache) readCached(
	ctx context.Context,
	qid string,
	rev int64,
) (*CachedEntity, error) {
	ent, err := c.CachedDocument(ctx, qid)
	if err != nil {
		return nil, err
	}
	ent.RevisionID = rev
	return ent, nil
}

func (c *EntityCache) upsert(
	ctx context.Context,
	qid string,
	rev int64,
	raw []byte,
) error {
	_, err := c.pool.Exec(ctx,
		`INSERT INTO entity_caches (qid, revision_id, fetched_at, document)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (qid) DO UPDATE
		 SET revision_id = EXCLUDED.revision_id,
		     fetched_at = EXCLUDED.fetched_at,
		     document = EXCLUDED.document`,
		qid, rev, time.Now(), raw)
	if err != nil {
		return UpsertError(qid, err)
	}
	return nil
}
