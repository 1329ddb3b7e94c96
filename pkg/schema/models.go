// Package schema provides database schema models for GDb.
// The normalized tables are the sole interface exposed to the web
// layer; it reads them directly and never calls pipeline internals.
package schema

import (
	"database/sql"
	"time"
)

// WikiPageCache is the latest known-good snapshot of a wiki page,
// keyed by (site, title). At most one live row exists per key; a write
// only happens when the observed revision id differs from the stored
// one. Rows are never deleted by the pipeline.
type WikiPageCache struct {
	ID uint `gorm:"primaryKey"`

	// Site is the wiki project, e.g. "enwiki".
	Site string `gorm:"size:32;not null;uniqueIndex:idx_wiki_page_key"`

	// Title is the page title within the site.
	Title string `gorm:"size:255;not null;uniqueIndex:idx_wiki_page_key"`

	// RevisionID is the monotonic version marker of the snapshot.
	RevisionID int64 `gorm:"not null"`

	// FetchedAt records when the snapshot was taken.
	FetchedAt time.Time `gorm:"not null"`

	// Content is the raw page text.
	Content string `gorm:"type:text"`
}

// EntityCache is the latest known-good snapshot of a knowledge-graph
// entity document, keyed by QID.
type EntityCache struct {
	ID uint `gorm:"primaryKey"`

	// QID is the stable entity identifier.
	QID string `gorm:"size:32;not null;uniqueIndex"`

	// RevisionID is the monotonic version marker of the document.
	RevisionID int64 `gorm:"not null"`

	// FetchedAt records when the document was fetched.
	FetchedAt time.Time `gorm:"not null"`

	// Document is the raw entity JSON (labels, claims, sitelinks).
	Document []byte `gorm:"type:jsonb"`
}

// Platform is a video-game platform. The roster cursor fields are
// mutated only by the crawler, exactly once per committed page.
type Platform struct {
	ID uint `gorm:"primaryKey"`

	// QID is the stable entity identifier.
	QID string `gorm:"size:32;not null;uniqueIndex"`

	// Name is the platform's label.
	Name string `gorm:"size:255"`

	// Slug is the URL-safe form of the name.
	Slug string `gorm:"size:255;index"`

	// WikipediaTitle is the enwiki sitelink title, when one exists.
	WikipediaTitle string `gorm:"size:255"`

	// ReleaseYear is the platform's first release year.
	ReleaseYear sql.NullInt16

	// Generation is the console generation, when asserted upstream.
	Generation sql.NullInt16

	// Abbreviation is the platform's short name, e.g. "SNES".
	Abbreviation string `gorm:"size:64"`

	// Major marks the curated subset actively crawled for rosters.
	Major bool `gorm:"not null;default:false;index"`

	// RosterCursor is the last-seen game QID of the roster crawl.
	// NULL means start of roster. Strictly increasing within the
	// platform's lexical key ordering.
	RosterCursor sql.NullString `gorm:"size:32"`

	// RosterExhausted is set when an empty roster page is seen.
	RosterExhausted bool `gorm:"not null;default:false"`

	// RosterUpdatedAt is when the cursor last advanced.
	RosterUpdatedAt sql.NullTime

	// LastEnrichedAt is when platform scalars were last hydrated.
	LastEnrichedAt sql.NullTime

	// NoLabel / NoClaims flag data-quality conditions for downstream
	// filtering. Flagged rows are never deleted.
	NoLabel    bool   `gorm:"not null;default:false"`
	NoClaims   bool   `gorm:"not null;default:false"`
	FlagReason string `gorm:"size:64"`
}

// Game is a video-game title.
type Game struct {
	ID uint `gorm:"primaryKey"`

	// QID is the stable entity identifier.
	QID string `gorm:"size:32;not null;uniqueIndex"`

	Name string `gorm:"size:255"`
	Slug string `gorm:"size:255;index"`

	// WikipediaTitle is the enwiki sitelink title, when one exists.
	WikipediaTitle string `gorm:"size:255"`

	// ReleaseYear is the rank-resolved earliest release year.
	ReleaseYear sql.NullInt16

	// FirstReleaseAt is the rank-resolved first release date.
	FirstReleaseAt sql.NullTime

	// ReleaseDateCategory is "year", "year_month" or "full",
	// classified purely from the winning statement's precision.
	ReleaseDateCategory string `gorm:"size:16"`

	// ReleasePlatformQID / ReleaseRegionQID carry qualifier scope of
	// the winning release statement as side attributes; they are not
	// folded into the primary value.
	ReleasePlatformQID string `gorm:"size:32"`
	ReleaseRegionQID   string `gorm:"size:32"`

	// CoverImage is the rank-resolved primary image file name.
	CoverImage string `gorm:"size:255"`

	// PopularityScore / CoverageScore are recomputed from derived
	// rows by the scores stage.
	PopularityScore float64 `gorm:"not null;default:0"`
	CoverageScore   float64 `gorm:"not null;default:0"`

	// LastEnrichedAt is when the entity document was last hydrated.
	LastEnrichedAt sql.NullTime `gorm:"index"`

	// LastNormalizedAt is when derived rows were last re-derived.
	LastNormalizedAt sql.NullTime `gorm:"index"`

	NoLabel    bool   `gorm:"not null;default:false"`
	NoClaims   bool   `gorm:"not null;default:false"`
	FlagReason string `gorm:"size:64"`
}

// Genre is a genre or game-mode dimension row, created on demand
// during batch writes.
type Genre struct {
	ID   uint   `gorm:"primaryKey"`
	QID  string `gorm:"size:32;not null;uniqueIndex"`
	Name string `gorm:"size:255"`
	Slug string `gorm:"size:255;index"`
}

// Company is a developer/publisher dimension row, created on demand
// during batch writes.
type Company struct {
	ID   uint   `gorm:"primaryKey"`
	QID  string `gorm:"size:32;not null;uniqueIndex"`
	Name string `gorm:"size:255"`
	Slug string `gorm:"size:255;index"`
}

// Derived relations. Every row carries Source provenance and, where
// the upstream statement has a stable identifier, ClaimID tracing the
// row to the exact statement that produced it. Uniqueness is enforced
// on the natural key so re-normalizing the same document is a no-op.

// GamePlatform links a game to a platform. Source distinguishes
// roster-crawl membership links ("roster") from claim-derived rows
// ("wikidata"); delete-then-insert only touches the latter.
type GamePlatform struct {
	ID         uint   `gorm:"primaryKey"`
	GameID     uint   `gorm:"not null;uniqueIndex:idx_game_platform_key;index"`
	PlatformID uint   `gorm:"not null;uniqueIndex:idx_game_platform_key"`
	Source     string `gorm:"size:16;not null;uniqueIndex:idx_game_platform_key;index"`
	ClaimID    string `gorm:"size:64"`
}

// GameGenre links a game to a genre or mode tag.
type GameGenre struct {
	ID      uint   `gorm:"primaryKey"`
	GameID  uint   `gorm:"not null;uniqueIndex:idx_game_genre_key;index"`
	GenreID uint   `gorm:"not null;uniqueIndex:idx_game_genre_key"`
	Kind    string `gorm:"size:16;not null;uniqueIndex:idx_game_genre_key"`
	Source  string `gorm:"size:16;not null;index"`
	ClaimID string `gorm:"size:64"`
}

// GameCompany links a game to a company in a role (developer or
// publisher).
type GameCompany struct {
	ID        uint   `gorm:"primaryKey"`
	GameID    uint   `gorm:"not null;uniqueIndex:idx_game_company_key;index"`
	CompanyID uint   `gorm:"not null;uniqueIndex:idx_game_company_key"`
	Role      string `gorm:"size:16;not null;uniqueIndex:idx_game_company_key"`
	Source    string `gorm:"size:16;not null;index"`
	ClaimID   string `gorm:"size:64"`
}

// GameWebsite is an official or store page URL.
type GameWebsite struct {
	ID      uint   `gorm:"primaryKey"`
	GameID  uint   `gorm:"not null;uniqueIndex:idx_game_website_key;index"`
	URL     string `gorm:"size:512;not null;uniqueIndex:idx_game_website_key"`
	Kind    string `gorm:"size:16;not null;uniqueIndex:idx_game_website_key"`
	Source  string `gorm:"size:16;not null;index"`
	ClaimID string `gorm:"size:64"`
}

// GameImage is a non-primary image (logo, artwork).
type GameImage struct {
	ID      uint   `gorm:"primaryKey"`
	GameID  uint   `gorm:"not null;uniqueIndex:idx_game_image_key;index"`
	File    string `gorm:"size:255;not null;uniqueIndex:idx_game_image_key"`
	Kind    string `gorm:"size:16;not null;uniqueIndex:idx_game_image_key"`
	Source  string `gorm:"size:16;not null;index"`
	ClaimID string `gorm:"size:64"`
}

// GameExternalID is a store or catalogue identifier.
type GameExternalID struct {
	ID      uint   `gorm:"primaryKey"`
	GameID  uint   `gorm:"not null;uniqueIndex:idx_game_external_id_key;index"`
	Kind    string `gorm:"size:32;not null;uniqueIndex:idx_game_external_id_key"`
	Value   string `gorm:"size:255;not null;uniqueIndex:idx_game_external_id_key"`
	Source  string `gorm:"size:16;not null;index"`
	ClaimID string `gorm:"size:64"`
}

// GameAgeRating is a rating in one rating system. RatingQID keeps the
// upstream rating item; RegionQID carries the applies-to-region
// qualifier when present.
type GameAgeRating struct {
	ID        uint   `gorm:"primaryKey"`
	GameID    uint   `gorm:"not null;uniqueIndex:idx_game_age_rating_key;index"`
	System    string `gorm:"size:16;not null;uniqueIndex:idx_game_age_rating_key"`
	RatingQID string `gorm:"size:32;not null;uniqueIndex:idx_game_age_rating_key"`
	RegionQID string `gorm:"size:32"`
	Source    string `gorm:"size:16;not null;index"`
	ClaimID   string `gorm:"size:64"`
}

// GameRelation is a cross-game relation (sequel, prequel, series
// membership, adaptation source).
type GameRelation struct {
	ID            uint   `gorm:"primaryKey"`
	GameID        uint   `gorm:"not null;uniqueIndex:idx_game_relation_key;index"`
	RelatedGameID uint   `gorm:"not null;uniqueIndex:idx_game_relation_key"`
	Kind          string `gorm:"size:16;not null;uniqueIndex:idx_game_relation_key"`
	Source        string `gorm:"size:16;not null;index"`
	ClaimID       string `gorm:"size:64"`
}
