// Package registry holds the property registry: the declarative table
// mapping upstream property identifiers to normalized output targets.
//
// Entries are data, not code. Supporting a new upstream property is an
// edit to registry.yaml, never a parser change. At most one entry
// exists per property identifier.
package registry

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed registry.yaml
var registryYAML []byte

//go:embed majors.yaml
var majorsYAML []byte

// Target names the output relation (plus role) a property maps to.
type Target string

const (
	// Set-valued targets: one derived row per statement.
	TargetGenres      Target = "game_genres"
	TargetCompanies   Target = "game_companies"
	TargetPlatforms   Target = "game_platforms"
	TargetWebsites    Target = "game_websites"
	TargetImages      Target = "game_images"
	TargetExternalIDs Target = "game_external_ids"
	TargetAgeRatings  Target = "game_age_ratings"
	TargetRelations   Target = "game_relations"

	// Scalar targets: rank-resolved best value.
	TargetReleaseDate  Target = "release_date"
	TargetPrimaryImage Target = "primary_image"
)

// Scalar reports whether the target is a rank-resolved best value
// rather than a set-valued relation.
func (t Target) Scalar() bool {
	return t == TargetReleaseDate || t == TargetPrimaryImage
}

// Shape is the expected value shape for a property's statements.
type Shape string

const (
	ShapeItem     Shape = "item"
	ShapeTime     Shape = "time"
	ShapeString   Shape = "string"
	ShapeQuantity Shape = "quantity"
)

// Status classifies how actively a property is normalized.
type Status string

const (
	StatusCore    Status = "core"
	StatusCommon  Status = "common"
	StatusNiche   Status = "niche"
	StatusIgnored Status = "ignored"
)

// Entry maps one property identifier to exactly one output target.
type Entry struct {
	// Property is the upstream property identifier, e.g. "P136".
	Property string `yaml:"property"`

	// Label is the human-readable property name, for reports only.
	Label string `yaml:"label"`

	// Target is the output relation (or scalar field) rows land in.
	Target Target `yaml:"target"`

	// Role refines the target: company role, website kind, rating
	// system, relation kind, or external-id key.
	Role string `yaml:"role"`

	// Shape is the expected value shape; statements with another
	// shape are skipped and counted.
	Shape Shape `yaml:"shape"`

	// Status is core/common/niche/ignored.
	Status Status `yaml:"status"`
}

// Registry is the loaded property registry.
type Registry struct {
	// Version is bumped whenever a mapping changes meaning, so stored
	// rows can be traced to the mapping that produced them.
	Version int `yaml:"version"`

	Properties []Entry `yaml:"properties"`

	byProperty map[string]Entry
}

// LoadOptions control which entries are active.
type LoadOptions struct {
	// IncludeNiche activates niche-status entries. When false, niche
	// properties are skipped on future runs only; rows already
	// normalized from them are left in place (delete-then-insert will
	// remove them the next time their entity is re-normalized with
	// the flag off).
	IncludeNiche bool
}

// Load parses the embedded registry and returns the active entries.
// Ignored-status entries are never active.
func Load(opts LoadOptions) (*Registry, error) {
	return parse(registryYAML, opts)
}

func parse(data []byte, opts LoadOptions) (*Registry, error) {
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("cannot parse property registry: %w", err)
	}

	reg.byProperty = make(map[string]Entry, len(reg.Properties))
	active := reg.Properties[:0]
	for _, e := range reg.Properties {
		if _, ok := reg.byProperty[e.Property]; ok {
			return nil, fmt.Errorf(
				"duplicate registry entry for %s", e.Property)
		}
		if e.Status == StatusIgnored {
			continue
		}
		if e.Status == StatusNiche && !opts.IncludeNiche {
			continue
		}
		reg.byProperty[e.Property] = e
		active = append(active, e)
	}
	reg.Properties = active
	return &reg, nil
}

// Lookup returns the active entry for a property identifier. Unknown
// properties are not errors; the engine silently ignores them.
func (r *Registry) Lookup(property string) (Entry, bool) {
	e, ok := r.byProperty[property]
	return e, ok
}

// Active returns every active entry in registry order.
func (r *Registry) Active() []Entry {
	return r.Properties
}

// SetValued returns the active entries whose target is a set-valued
// relation.
func (r *Registry) SetValued() []Entry {
	var res []Entry
	for _, e := range r.Properties {
		if !e.Target.Scalar() {
			res = append(res, e)
		}
	}
	return res
}

// Scalars returns the active entries whose target is a scalar field.
func (r *Registry) Scalars() []Entry {
	var res []Entry
	for _, e := range r.Properties {
		if e.Target.Scalar() {
			res = append(res, e)
		}
	}
	return res
}

// MajorPlatform is one curated entry of the major-platform subset that
// is actively crawled for game rosters.
type MajorPlatform struct {
	QID  string `yaml:"qid"`
	Name string `yaml:"name"`

	// Generation is the curated console generation, zero for
	// platforms the notion does not apply to (PCs, mobile, arcade).
	Generation int `yaml:"generation"`
}

// MajorPlatforms returns the curated major-platform seed list.
func MajorPlatforms() ([]MajorPlatform, error) {
	var doc struct {
		Platforms []MajorPlatform `yaml:"platforms"`
	}
	if err := yaml.Unmarshal(majorsYAML, &doc); err != nil {
		return nil, fmt.Errorf("cannot parse major platforms: %w", err)
	}
	return doc.Platforms, nil
}
