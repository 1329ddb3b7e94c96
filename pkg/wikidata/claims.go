package wikidata

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ValueKind discriminates the tagged-union Value type. Matching on it
// must be exhaustive; ValueUnknown marks shapes the decoder does not
// model, which normalization skips and counts instead of guessing.
type ValueKind int

const (
	// ValueNone marks a novalue/somevalue snak with no data.
	ValueNone ValueKind = iota
	// ValueItem is a reference to another entity (QID).
	ValueItem
	// ValueTime is a calendar timestamp with precision.
	ValueTime
	// ValueString is a plain string (URLs, external ids, file names).
	ValueString
	// ValueQuantity is a numeric amount.
	ValueQuantity
	// ValueUnknown is a datavalue type the decoder does not model.
	ValueUnknown
)

// String implements fmt.Stringer for logging.
func (k ValueKind) String() string {
	switch k {
	case ValueNone:
		return "none"
	case ValueItem:
		return "item"
	case ValueTime:
		return "time"
	case ValueString:
		return "string"
	case ValueQuantity:
		return "quantity"
	default:
		return "unknown"
	}
}

// Value is the tagged union of claim value shapes. Exactly one of the
// payload fields is meaningful, selected by Kind.
type Value struct {
	Kind     ValueKind
	Item     string    // Kind == ValueItem: target QID
	Time     TimeValue // Kind == ValueTime
	Str      string    // Kind == ValueString
	Quantity float64   // Kind == ValueQuantity
}

// Natural returns the value's natural-key form used for deduplication
// within one property. Values with equal Natural() are the same value.
func (v Value) Natural() string {
	switch v.Kind {
	case ValueItem:
		return v.Item
	case ValueTime:
		return v.Time.Human()
	case ValueString:
		return v.Str
	case ValueQuantity:
		return strconv.FormatFloat(v.Quantity, 'f', -1, 64)
	default:
		return ""
	}
}

// Statement is one property-value assertion with optional rank and
// qualifiers.
type Statement struct {
	// GUID is the stable statement identifier, carried onto derived
	// rows as claimId for provenance.
	GUID string

	// Property is the property id this statement asserts.
	Property string

	// Value is the main snak's decoded value.
	Value Value

	// Rank orders competing statements: preferred > normal > deprecated.
	Rank Rank

	// Qualifiers narrow the statement's applicability, keyed by
	// qualifier property id.
	Qualifiers map[string][]Value
}

// Qualifier returns the first qualifier value for a property and
// whether one exists.
func (s Statement) Qualifier(property string) (Value, bool) {
	vals := s.Qualifiers[property]
	if len(vals) == 0 {
		return Value{}, false
	}
	return vals[0], true
}

// wire shapes for the wbgetentities claim JSON.

type snakJSON struct {
	SnakType  string `json:"snaktype"`
	Property  string `json:"property"`
	DataValue *struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	} `json:"datavalue"`
}

type statementJSON struct {
	ID         string                `json:"id"`
	Rank       string                `json:"rank"`
	MainSnak   snakJSON              `json:"mainsnak"`
	Qualifiers map[string][]snakJSON `json:"qualifiers"`
}

// UnmarshalJSON decodes one statement from its upstream JSON form.
func (s *Statement) UnmarshalJSON(data []byte) error {
	var raw statementJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.GUID = raw.ID
	s.Property = raw.MainSnak.Property
	s.Rank = ParseRank(raw.Rank)
	s.Value = decodeSnak(raw.MainSnak)

	if len(raw.Qualifiers) > 0 {
		s.Qualifiers = make(map[string][]Value, len(raw.Qualifiers))
		for prop, snaks := range raw.Qualifiers {
			vals := make([]Value, 0, len(snaks))
			for _, snak := range snaks {
				vals = append(vals, decodeSnak(snak))
			}
			s.Qualifiers[prop] = vals
		}
	}
	return nil
}

// decodeSnak turns one snak into a tagged-union Value. Snaks without a
// datavalue (novalue/somevalue) decode to ValueNone.
func decodeSnak(snak snakJSON) Value {
	if snak.DataValue == nil {
		return Value{Kind: ValueNone}
	}

	dv := snak.DataValue
	switch dv.Type {
	case "wikibase-entityid":
		var v struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(dv.Value, &v); err != nil || v.ID == "" {
			return Value{Kind: ValueUnknown}
		}
		return Value{Kind: ValueItem, Item: v.ID}

	case "time":
		var v struct {
			Time      string `json:"time"`
			Precision int    `json:"precision"`
		}
		if err := json.Unmarshal(dv.Value, &v); err != nil {
			return Value{Kind: ValueUnknown}
		}
		tv, err := ParseTime(v.Time, v.Precision)
		if err != nil {
			return Value{Kind: ValueUnknown}
		}
		return Value{Kind: ValueTime, Time: tv}

	case "string":
		var v string
		if err := json.Unmarshal(dv.Value, &v); err != nil {
			return Value{Kind: ValueUnknown}
		}
		return Value{Kind: ValueString, Str: v}

	case "monolingualtext":
		var v struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(dv.Value, &v); err != nil {
			return Value{Kind: ValueUnknown}
		}
		return Value{Kind: ValueString, Str: v.Text}

	case "quantity":
		var v struct {
			Amount string `json:"amount"`
		}
		if err := json.Unmarshal(dv.Value, &v); err != nil {
			return Value{Kind: ValueUnknown}
		}
		amount, err := strconv.ParseFloat(
			strings.TrimPrefix(v.Amount, "+"), 64)
		if err != nil {
			return Value{Kind: ValueUnknown}
		}
		return Value{Kind: ValueQuantity, Quantity: amount}

	default:
		return Value{Kind: ValueUnknown}
	}
}
