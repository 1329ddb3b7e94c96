// Package ionormalize turns cached entity documents into normalized
// relational rows. The engine itself is pure: entity document plus
// property registry in, typed batch rows out. The driver around it
// owns batching, cache reads, and handing batches to the writer.
package ionormalize

import (
	"github.com/gamedex/gdb/pkg/parsed"
	"github.com/gamedex/gdb/pkg/registry"
	"github.com/gamedex/gdb/pkg/wikidata"
)

// Qualifier properties split off as side attributes instead of being
// folded into values.
const (
	qualPlatform = "P400"
	qualPlace    = "P291"
)

// Engine derives normalized rows from claim documents. All mapping
// decisions come from the registry; the engine hard-codes shapes and
// qualifier handling only.
type Engine struct {
	reg *registry.Registry

	// relationsOnly limits derivation to cross-game relation rows.
	relationsOnly bool
}

// NewEngine creates a normalization engine over an active registry.
func NewEngine(reg *registry.Registry) *Engine {
	return &Engine{reg: reg}
}

// NewRelationEngine creates an engine that derives only relation rows.
func NewRelationEngine(reg *registry.Registry) *Engine {
	return &Engine{reg: reg, relationsOnly: true}
}

// Normalize derives all rows for one entity and appends them to the
// batch. The entity's identifier always lands in GameQIDs, so the
// writer replaces its stale rows even when nothing was derived.
func (e *Engine) Normalize(ent *wikidata.Entity, b *parsed.Batch) {
	b.GameQIDs = append(b.GameQIDs, ent.ID)
	b.RelationsOnly = e.relationsOnly

	patch := parsed.ScalarPatch{GameQID: ent.ID}
	patched := false

	for _, entry := range e.reg.Active() {
		sts := ent.Claims.Statements(entry.Property)
		if len(sts) == 0 {
			continue
		}
		if e.relationsOnly && entry.Target != registry.TargetRelations {
			continue
		}

		if entry.Target.Scalar() {
			if e.scalar(ent.ID, entry, sts, &patch, b) {
				patched = true
			}
			continue
		}
		e.setValued(ent.ID, entry, sts, b)
	}

	if patched {
		b.Patches = append(b.Patches, patch)
	}
}

// setValued derives one row per usable, shape-conforming statement,
// deduplicated by natural value within the property.
func (e *Engine) setValued(
	qid string,
	entry registry.Entry,
	sts []wikidata.Statement,
	b *parsed.Batch,
) {
	seen := make(map[string]bool, len(sts))
	for _, st := range sts {
		if !st.Rank.Usable() {
			continue
		}
		if !shapeMatches(entry.Shape, st.Value.Kind) {
			b.SkippedShapes++
			continue
		}
		key := st.Value.Natural()
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		switch entry.Target {
		case registry.TargetPlatforms:
			b.Platforms = append(b.Platforms, parsed.PlatformLink{
				GameQID:     qid,
				PlatformQID: st.Value.Item,
				ClaimID:     st.GUID,
			})
		case registry.TargetGenres:
			b.Genres = append(b.Genres, parsed.GenreTag{
				GameQID:  qid,
				GenreQID: st.Value.Item,
				Kind:     entry.Role,
				ClaimID:  st.GUID,
			})
		case registry.TargetCompanies:
			b.Companies = append(b.Companies, parsed.CompanyCredit{
				GameQID:    qid,
				CompanyQID: st.Value.Item,
				Role:       entry.Role,
				ClaimID:    st.GUID,
			})
		case registry.TargetWebsites:
			b.Websites = append(b.Websites, parsed.Website{
				GameQID: qid,
				URL:     st.Value.Str,
				Kind:    entry.Role,
				ClaimID: st.GUID,
			})
		case registry.TargetImages:
			b.Images = append(b.Images, parsed.Image{
				GameQID: qid,
				File:    st.Value.Str,
				Kind:    entry.Role,
				ClaimID: st.GUID,
			})
		case registry.TargetExternalIDs:
			b.ExternalIDs = append(b.ExternalIDs, parsed.ExternalID{
				GameQID: qid,
				Kind:    entry.Role,
				Value:   st.Value.Str,
				ClaimID: st.GUID,
			})
		case registry.TargetAgeRatings:
			rating := parsed.AgeRating{
				GameQID:   qid,
				System:    entry.Role,
				RatingQID: st.Value.Item,
				ClaimID:   st.GUID,
			}
			if v, ok := st.Qualifier(qualPlace); ok && v.Kind == wikidata.ValueItem {
				rating.RegionQID = v.Item
			}
			b.AgeRatings = append(b.AgeRatings, rating)
		case registry.TargetRelations:
			b.Relations = append(b.Relations, parsed.Relation{
				GameQID:    qid,
				RelatedQID: st.Value.Item,
				Kind:       entry.Role,
				ClaimID:    st.GUID,
			})
		}
	}
}

// scalar rank-resolves one best value and folds it into the patch.
// Returns true when the patch gained a field.
func (e *Engine) scalar(
	qid string,
	entry registry.Entry,
	sts []wikidata.Statement,
	patch *parsed.ScalarPatch,
	b *parsed.Batch,
) bool {
	var cands []wikidata.Candidate[wikidata.Statement]
	for _, st := range sts {
		if !st.Rank.Usable() {
			continue
		}
		if !shapeMatches(entry.Shape, st.Value.Kind) {
			b.SkippedShapes++
			continue
		}
		cands = append(cands, wikidata.Candidate[wikidata.Statement]{
			Value: st,
			Rank:  st.Rank,
		})
	}
	var best wikidata.Candidate[wikidata.Statement]
	var ok bool
	switch entry.Target {
	case registry.TargetReleaseDate:
		best, ok = wikidata.PickCandidateWith(cands, earlierRelease)
	default:
		best, ok = wikidata.PickCandidate(cands)
	}
	if !ok || !best.Rank.Applicable() {
		return false
	}
	st := best.Value

	switch entry.Target {
	case registry.TargetReleaseDate:
		tv := st.Value.Time
		year := tv.Year
		at := tv.Time()
		patch.ReleaseYear = &year
		patch.FirstReleaseAt = &at
		patch.DateCategory = tv.Category().String()
		if v, ok := st.Qualifier(qualPlatform); ok && v.Kind == wikidata.ValueItem {
			patch.ReleasePlatformQID = v.Item
		}
		if v, ok := st.Qualifier(qualPlace); ok && v.Kind == wikidata.ValueItem {
			patch.ReleaseRegionQID = v.Item
		}
		return true
	case registry.TargetPrimaryImage:
		file := st.Value.Str
		patch.CoverImage = &file
		return true
	}
	return false
}

// earlierRelease breaks equal-rank release-date ties toward the
// earliest year, so a document that lists a later re-release first
// cannot shadow the original date.
func earlierRelease(a, b wikidata.Statement) bool {
	return a.Value.Time.Year < b.Value.Time.Year
}

func shapeMatches(shape registry.Shape, kind wikidata.ValueKind) bool {
	switch shape {
	case registry.ShapeItem:
		return kind == wikidata.ValueItem
	case registry.ShapeTime:
		return kind == wikidata.ValueTime
	case registry.ShapeString:
		return kind == wikidata.ValueString
	case registry.ShapeQuantity:
		return kind == wikidata.ValueQuantity
	default:
		return false
	}
}
