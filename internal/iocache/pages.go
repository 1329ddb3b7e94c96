package iocache

import (
	"context"
	"log/slog"
	"time"

	"github.com/gamedex/gdb/internal/iofetch"
	"github.com/gamedex/gdb/internal/iowapi"
	"github.com/jackc/pgx/v5"
)

// CachedPage is one resolved wiki page snapshot.
type CachedPage struct {
	Site       string
	Title      string
	RevisionID int64
	Content    string
	Source     Source
}

// PageCache resolves wiki page content through the wiki_page_caches
// table.
type PageCache struct {
	pool  DB
	pages *iowapi.PageClient
	stats *iofetch.Stats
}

// NewPageCache creates a wiki page cache.
func NewPageCache(
	pool DB,
	pages *iowapi.PageClient,
	stats *iofetch.Stats,
) *PageCache {
	return &PageCache{pool: pool, pages: pages, stats: stats}
}

// GetOrFetch resolves one page. The revision probe always happens;
// the content fetch only happens when the probed revision differs
// from the stored marker or no snapshot exists yet.
func (c *PageCache) GetOrFetch(
	ctx context.Context,
	site, title string,
) (*CachedPage, error) {
	rev, err := c.pages.PageRevision(ctx, site, title)
	if err != nil {
		// Includes the permanent page-missing condition; caller
		// decides whether to flag and skip.
		return nil, err
	}

	storedRev, content, found, err := c.stored(ctx, site, title)
	if err != nil {
		return nil, err
	}
	if found && storedRev == rev {
		c.stats.AddCacheHit()
		return &CachedPage{
			Site:       site,
			Title:      title,
			RevisionID: rev,
			Content:    content,
			Source:     SourceCacheHit,
		}, nil
	}

	fetchedRev, fetched, err := c.pages.PageContent(ctx, site, title)
	if err != nil {
		return nil, err
	}
	if err := c.upsert(ctx, site, title, fetchedRev, fetched); err != nil {
		return nil, err
	}

	slog.Debug("Wiki page refreshed",
		"site", site,
		"title", title,
		"revision", fetchedRev,
	)
	return &CachedPage{
		Site:       site,
		Title:      title,
		RevisionID: fetchedRev,
		Content:    fetched,
		Source:     SourceFetched,
	}, nil
}

func (c *PageCache) stored(
	ctx context.Context,
	site, title string,
) (int64, string, bool, error) {
	row := c.pool.QueryRow(ctx,
		`SELECT revision_id, content
		 FROM wiki_page_caches WHERE site = $1 AND title = $2`,
		site, title)

	var rev int64
	var content string
	err := row.Scan(&rev, &content)
	if err == pgx.ErrNoRows {
		return 0, "", false, nil
	}
	if err != nil {
		return 0, "", false, ReadError(site+":"+title, err)
	}
	return rev, content, true, nil
}

func (c *PageCache) upsert(
	ctx context.Context,
	site, title string,
	rev int64,
	content string,
) error {
	_, err := c.pool.Exec(ctx,
		`INSERT INTO wiki_page_caches
		   (site, title, revision_id, fetched_at, content)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (site, title) DO UPDATE
		 SET revision_id = EXCLUDED.revision_id,
		     fetched_at = EXCLUDED.fetched_at,
		     content = EXCLUDED.content`,
		site, title, rev, time.Now(), content)
	if err != nil {
		return UpsertError(site+":"+title, err)
	}
	return nil
}
