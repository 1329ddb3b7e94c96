// Package gdb defines the pure contracts implemented by the
// internal/io* packages. The cmd layer depends on these interfaces,
// never on implementations directly.
package gdb

import (
	"context"
)

// Version and Build are set by the linker during `make build`.
var (
	Version = "v0.3.1"
	Build   = "n/a"
)

// SchemaManager defines the interface for database schema management.
// It uses GORM AutoMigrate to handle both initial schema creation and
// migrations. Schema management is idempotent - safe to run multiple
// times.
type SchemaManager interface {
	// Create creates or updates the database schema. When drop is
	// true all existing tables are dropped first.
	Create(ctx context.Context, drop bool) error
}

// PlatformCrawler drives platform discovery and the cursor-based
// roster crawl.
type PlatformCrawler interface {
	// DiscoverPlatforms queries the knowledge graph for video-game
	// platform items and upserts platform stubs.
	DiscoverPlatforms(ctx context.Context) error

	// MarkMajors flags the curated major-platform subset used for
	// roster crawling.
	MarkMajors(ctx context.Context) error

	// CrawlRosters walks the paged roster query of every major
	// platform (or the single configured platform), advancing and
	// persisting the resume cursor after each committed page.
	CrawlRosters(ctx context.Context) error

	// ResetCursor clears a platform's cursor and exhausted flag.
	// It is explicit and never performed implicitly.
	ResetCursor(ctx context.Context, platformQID string) error
}

// Enricher hydrates platform and game rows from cached entity
// documents.
type Enricher interface {
	// EnrichPlatforms fills platform scalar fields from entity
	// documents.
	EnrichPlatforms(ctx context.Context) error

	// EnrichGames batch-hydrates game entity documents through the
	// revision-aware cache and stamps lastEnrichedAt.
	EnrichGames(ctx context.Context) error
}

// Normalizer runs the claim normalization engine over cached entity
// documents and applies the result through the batch writer.
type Normalizer interface {
	// Normalize re-derives all claim rows for games with stale
	// lastNormalizedAt (or for everything with ProcessAll).
	Normalize(ctx context.Context) error

	// HydrateRelations re-derives only cross-game relation rows, so
	// references that dangled on the first pass land once their
	// targets exist.
	HydrateRelations(ctx context.Context) error
}

// Reporter recomputes scores and exports coverage artifacts from
// already-ingested data.
type Reporter interface {
	// RecomputeScores recalculates popularity/coverage scores from
	// derived rows.
	RecomputeScores(ctx context.Context) error

	// ExportCoverage writes the coverage report artifact.
	ExportCoverage(ctx context.Context) error
}
