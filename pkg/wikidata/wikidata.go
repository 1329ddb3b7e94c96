// Package wikidata provides typed representations of knowledge-graph
// entity documents: labels, sitelinks, and claim statements with their
// ranks, qualifiers, and tagged-union values.
//
// This is a pure package with no I/O dependencies. Decoding accepts the
// JSON shape produced by the wbgetentities API; traversal and value
// matching are done through typed accessors, never through untyped maps.
package wikidata

import (
	"encoding/json"
)

// Entity is one knowledge-graph entity document.
type Entity struct {
	// ID is the stable entity identifier (QID).
	ID string `json:"id"`

	// LastRevID is the monotonic version marker of the document.
	LastRevID int64 `json:"lastrevid"`

	// Missing is true when the upstream record does not exist
	// (deleted or never created). Missing entities carry no other data.
	Missing bool `json:"-"`

	// Labels maps language code to label text.
	Labels map[string]Term `json:"labels"`

	// Descriptions maps language code to description text.
	Descriptions map[string]Term `json:"descriptions"`

	// Claims maps property id to the ordered statements asserted
	// under that property.
	Claims ClaimDocument `json:"claims"`

	// Sitelinks maps site id (e.g. "enwiki") to page title.
	Sitelinks map[string]Sitelink `json:"sitelinks"`
}

// Term is a language-tagged label or description.
type Term struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

// Sitelink is a cross-site page reference.
type Sitelink struct {
	Site  string `json:"site"`
	Title string `json:"title"`
}

// ClaimDocument is an opaque nested map from property identifiers to
// ordered statement lists. Statements are never mutated in place;
// normalization always re-derives output rows from the full document.
type ClaimDocument map[string][]Statement

// Statements returns the statements for a property, or nil when the
// property is absent.
func (d ClaimDocument) Statements(property string) []Statement {
	return d[property]
}

// Label returns the label for a language, falling back to English,
// then to any language in map order. Returns "" when no label exists.
func (e *Entity) Label(lang string) string {
	if t, ok := e.Labels[lang]; ok {
		return t.Value
	}
	if t, ok := e.Labels["en"]; ok {
		return t.Value
	}
	for _, t := range e.Labels {
		return t.Value
	}
	return ""
}

// SitelinkTitle returns the page title for a site, or "".
func (e *Entity) SitelinkTitle(site string) string {
	return e.Sitelinks[site].Title
}

// HasClaims reports whether the document carries at least one statement.
func (e *Entity) HasClaims() bool {
	for _, sts := range e.Claims {
		if len(sts) > 0 {
			return true
		}
	}
	return false
}

// UnmarshalEntity decodes one entity document from wbgetentities JSON.
// A document with a "missing" member decodes to Entity{ID, Missing: true}.
func UnmarshalEntity(data []byte) (*Entity, error) {
	var probe struct {
		ID      string           `json:"id"`
		Title   string           `json:"title"`
		Missing *json.RawMessage `json:"missing"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if probe.Missing != nil {
		id := probe.ID
		if id == "" {
			id = probe.Title
		}
		return &Entity{ID: id, Missing: true}, nil
	}

	var ent Entity
	if err := json.Unmarshal(data, &ent); err != nil {
		return nil, err
	}
	return &ent, nil
}
