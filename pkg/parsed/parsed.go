// Package parsed holds the in-memory output of the claim
// normalization engine: typed rows keyed by upstream identifiers,
// before foreign keys are resolved. The batch writer owns the
// transition from this form to committed relational rows.
package parsed

import (
	"time"
)

// Provenance source tags carried on every derived row.
const (
	// SourceWikidata marks rows derived from claim documents.
	SourceWikidata = "wikidata"
	// SourceRoster marks membership links written by the roster
	// crawl. The batch writer never deletes these.
	SourceRoster = "roster"
)

// PlatformLink is a claim-derived game/platform membership.
type PlatformLink struct {
	GameQID     string
	PlatformQID string
	ClaimID     string
}

// GenreTag links a game to a genre or mode item.
type GenreTag struct {
	GameQID  string
	GenreQID string
	Kind     string // "genre" or "mode"
	ClaimID  string
}

// CompanyCredit links a game to a company in a role.
type CompanyCredit struct {
	GameQID    string
	CompanyQID string
	Role       string // "developer" or "publisher"
	ClaimID    string
}

// Website is an official or store page URL.
type Website struct {
	GameQID string
	URL     string
	Kind    string
	ClaimID string
}

// Image is a non-primary image row.
type Image struct {
	GameQID string
	File    string
	Kind    string
	ClaimID string
}

// ExternalID is a store or catalogue identifier.
type ExternalID struct {
	GameQID string
	Kind    string
	Value   string
	ClaimID string
}

// AgeRating is a rating in one system, optionally region-scoped.
type AgeRating struct {
	GameQID   string
	System    string
	RatingQID string
	RegionQID string
	ClaimID   string
}

// Relation is a cross-game relation. RelatedQID may not exist yet;
// the writer drops and counts such rows instead of failing.
type Relation struct {
	GameQID    string
	RelatedQID string
	Kind       string
	ClaimID    string
}

// ScalarPatch carries rank-resolved best values for one game. Nil
// fields mean "no usable candidate"; the writer applies only fields
// that are present and only when the stored value differs.
type ScalarPatch struct {
	GameQID string

	ReleaseYear    *int
	FirstReleaseAt *time.Time
	DateCategory   string

	// Qualifier scope of the winning release statement, kept as side
	// attributes rather than folded into the value.
	ReleasePlatformQID string
	ReleaseRegionQID   string

	CoverImage *string
}

// Batch is the normalization output for a set of entities. Applying a
// batch replaces every previously derived row of those entities.
type Batch struct {
	// GameQIDs are all entities in the batch, including ones that
	// produced zero rows; their stale rows still get deleted.
	GameQIDs []string

	Platforms   []PlatformLink
	Genres      []GenreTag
	Companies   []CompanyCredit
	Websites    []Website
	Images      []Image
	ExternalIDs []ExternalID
	AgeRatings  []AgeRating
	Relations   []Relation
	Patches     []ScalarPatch

	// SkippedShapes counts statements whose value shape did not match
	// the registry expectation (including undecodable shapes).
	SkippedShapes int

	// RelationsOnly restricts the writer's delete-then-insert to
	// cross-game relation rows. Used by the relation hydration pass,
	// which must not touch other derived rows.
	RelationsOnly bool
}

// Size returns the total number of derived rows in the batch,
// excluding scalar patches.
func (b *Batch) Size() int {
	return len(b.Platforms) + len(b.Genres) + len(b.Companies) +
		len(b.Websites) + len(b.Images) + len(b.ExternalIDs) +
		len(b.AgeRatings) + len(b.Relations)
}

// Counts summarizes one applied batch for run-summary logging.
type Counts struct {
	Deleted  int
	Inserted int
	Patched  int
	// DroppedDangling counts rows whose referenced target did not
	// exist yet; they are dropped, not fatal.
	DroppedDangling int
}

// Add accumulates another batch's counts.
func (c *Counts) Add(other Counts) {
	c.Deleted += other.Deleted
	c.Inserted += other.Inserted
	c.Patched += other.Patched
	c.DroppedDangling += other.DroppedDangling
}
