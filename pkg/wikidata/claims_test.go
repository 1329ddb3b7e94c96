package wikidata_test

import (
	"testing"

	"github.com/gamedex/gdb/pkg/wikidata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const entityDoc = `{
  "id": "Q2182",
  "lastrevid": 2100455199,
  "labels": {
    "en": {"language": "en", "value": "Half-Life"},
    "de": {"language": "de", "value": "Half-Life"}
  },
  "descriptions": {
    "en": {"language": "en", "value": "1998 video game"}
  },
  "sitelinks": {
    "enwiki": {"site": "enwiki", "title": "Half-Life (video game)"}
  },
  "claims": {
    "P400": [
      {
        "id": "Q2182$11111111-aaaa-bbbb-cccc-000000000001",
        "rank": "normal",
        "mainsnak": {
          "snaktype": "value",
          "property": "P400",
          "datavalue": {
            "type": "wikibase-entityid",
            "value": {"entity-type": "item", "id": "Q16338"}
          }
        }
      },
      {
        "id": "Q2182$11111111-aaaa-bbbb-cccc-000000000002",
        "rank": "deprecated",
        "mainsnak": {
          "snaktype": "value",
          "property": "P400",
          "datavalue": {
            "type": "wikibase-entityid",
            "value": {"entity-type": "item", "id": "Q94"}
          }
        }
      }
    ],
    "P577": [
      {
        "id": "Q2182$22222222-aaaa-bbbb-cccc-000000000001",
        "rank": "preferred",
        "mainsnak": {
          "snaktype": "value",
          "property": "P577",
          "datavalue": {
            "type": "time",
            "value": {"time": "+1998-11-19T00:00:00Z", "precision": 11}
          }
        },
        "qualifiers": {
          "P291": [
            {
              "snaktype": "value",
              "property": "P291",
              "datavalue": {
                "type": "wikibase-entityid",
                "value": {"entity-type": "item", "id": "Q30"}
              }
            }
          ]
        }
      }
    ],
    "P856": [
      {
        "id": "Q2182$33333333-aaaa-bbbb-cccc-000000000001",
        "rank": "normal",
        "mainsnak": {
          "snaktype": "value",
          "property": "P856",
          "datavalue": {
            "type": "string",
            "value": "https://half-life.com"
          }
        }
      }
    ],
    "P1448": [
      {
        "id": "Q2182$44444444-aaaa-bbbb-cccc-000000000001",
        "rank": "normal",
        "mainsnak": {
          "snaktype": "value",
          "property": "P1448",
          "datavalue": {
            "type": "monolingualtext",
            "value": {"text": "Half-Life", "language": "en"}
          }
        }
      }
    ],
    "P2664": [
      {
        "id": "Q2182$55555555-aaaa-bbbb-cccc-000000000001",
        "rank": "normal",
        "mainsnak": {
          "snaktype": "value",
          "property": "P2664",
          "datavalue": {
            "type": "quantity",
            "value": {"amount": "+9300000", "unit": "1"}
          }
        }
      }
    ],
    "P123": [
      {
        "id": "Q2182$66666666-aaaa-bbbb-cccc-000000000001",
        "rank": "normal",
        "mainsnak": {
          "snaktype": "novalue",
          "property": "P123"
        }
      }
    ],
    "P625": [
      {
        "id": "Q2182$77777777-aaaa-bbbb-cccc-000000000001",
        "rank": "normal",
        "mainsnak": {
          "snaktype": "value",
          "property": "P625",
          "datavalue": {
            "type": "globecoordinate",
            "value": {"latitude": 0, "longitude": 0}
          }
        }
      }
    ]
  }
}`

func mustEntity(t *testing.T) *wikidata.Entity {
	t.Helper()
	ent, err := wikidata.UnmarshalEntity([]byte(entityDoc))
	require.NoError(t, err)
	return ent
}

func TestUnmarshalEntity(t *testing.T) {
	ent := mustEntity(t)

	assert.Equal(t, "Q2182", ent.ID)
	assert.Equal(t, int64(2100455199), ent.LastRevID)
	assert.False(t, ent.Missing)
	assert.Equal(t, "Half-Life", ent.Label("en"))
	assert.Equal(t, "Half-Life (video game)", ent.SitelinkTitle("enwiki"))
	assert.True(t, ent.HasClaims())
}

func TestUnmarshalEntityMissing(t *testing.T) {
	ent, err := wikidata.UnmarshalEntity(
		[]byte(`{"id": "Q99999999", "missing": ""}`))
	require.NoError(t, err)
	assert.True(t, ent.Missing)
	assert.Equal(t, "Q99999999", ent.ID)
	assert.False(t, ent.HasClaims())

	// Some API responses key missing entities by title instead of id.
	ent, err = wikidata.UnmarshalEntity(
		[]byte(`{"title": "Q88888888", "missing": ""}`))
	require.NoError(t, err)
	assert.True(t, ent.Missing)
	assert.Equal(t, "Q88888888", ent.ID)
}

func TestLabelFallback(t *testing.T) {
	ent := &wikidata.Entity{
		Labels: map[string]wikidata.Term{
			"fr": {Language: "fr", Value: "Demi-vie"},
		},
	}
	// No English label: any language serves as last resort.
	assert.Equal(t, "Demi-vie", ent.Label("en"))

	assert.Equal(t, "", (&wikidata.Entity{}).Label("en"))
}

func TestStatementDecode(t *testing.T) {
	ent := mustEntity(t)

	t.Run("item value with rank", func(t *testing.T) {
		sts := ent.Claims.Statements("P400")
		require.Len(t, sts, 2)
		assert.Equal(t,
			"Q2182$11111111-aaaa-bbbb-cccc-000000000001", sts[0].GUID)
		assert.Equal(t, "P400", sts[0].Property)
		assert.Equal(t, wikidata.RankNormal, sts[0].Rank)
		assert.Equal(t, wikidata.ValueItem, sts[0].Value.Kind)
		assert.Equal(t, "Q16338", sts[0].Value.Item)
		assert.Equal(t, wikidata.RankDeprecated, sts[1].Rank)
	})

	t.Run("time value with qualifier", func(t *testing.T) {
		sts := ent.Claims.Statements("P577")
		require.Len(t, sts, 1)
		st := sts[0]
		assert.Equal(t, wikidata.RankPreferred, st.Rank)
		require.Equal(t, wikidata.ValueTime, st.Value.Kind)
		assert.Equal(t, "1998-11-19", st.Value.Time.Human())
		assert.Equal(t, wikidata.DateFull, st.Value.Time.Category())

		q, ok := st.Qualifier("P291")
		require.True(t, ok)
		assert.Equal(t, wikidata.ValueItem, q.Kind)
		assert.Equal(t, "Q30", q.Item)

		_, ok = st.Qualifier("P400")
		assert.False(t, ok)
	})

	t.Run("string value", func(t *testing.T) {
		sts := ent.Claims.Statements("P856")
		require.Len(t, sts, 1)
		assert.Equal(t, wikidata.ValueString, sts[0].Value.Kind)
		assert.Equal(t, "https://half-life.com", sts[0].Value.Str)
	})

	t.Run("monolingualtext decodes as string", func(t *testing.T) {
		sts := ent.Claims.Statements("P1448")
		require.Len(t, sts, 1)
		assert.Equal(t, wikidata.ValueString, sts[0].Value.Kind)
		assert.Equal(t, "Half-Life", sts[0].Value.Str)
	})

	t.Run("quantity", func(t *testing.T) {
		sts := ent.Claims.Statements("P2664")
		require.Len(t, sts, 1)
		assert.Equal(t, wikidata.ValueQuantity, sts[0].Value.Kind)
		assert.Equal(t, float64(9300000), sts[0].Value.Quantity)
	})

	t.Run("novalue snak", func(t *testing.T) {
		sts := ent.Claims.Statements("P123")
		require.Len(t, sts, 1)
		assert.Equal(t, wikidata.ValueNone, sts[0].Value.Kind)
	})

	t.Run("unmodeled datavalue type", func(t *testing.T) {
		sts := ent.Claims.Statements("P625")
		require.Len(t, sts, 1)
		assert.Equal(t, wikidata.ValueUnknown, sts[0].Value.Kind)
	})

	t.Run("absent property", func(t *testing.T) {
		assert.Nil(t, ent.Claims.Statements("P9999"))
	})
}

func TestValueNatural(t *testing.T) {
	tests := []struct {
		name string
		val  wikidata.Value
		want string
	}{
		{
			name: "item",
			val:  wikidata.Value{Kind: wikidata.ValueItem, Item: "Q94"},
			want: "Q94",
		},
		{
			name: "time uses human form",
			val: wikidata.Value{
				Kind: wikidata.ValueTime,
				Time: wikidata.TimeValue{
					Year: 1998, Month: 11,
					Precision: wikidata.PrecisionMonth,
				},
			},
			want: "1998-11",
		},
		{
			name: "string",
			val:  wikidata.Value{Kind: wikidata.ValueString, Str: "abc"},
			want: "abc",
		},
		{
			name: "quantity",
			val: wikidata.Value{
				Kind: wikidata.ValueQuantity, Quantity: 9300000,
			},
			want: "9300000",
		},
		{
			name: "none",
			val:  wikidata.Value{Kind: wikidata.ValueNone},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.val.Natural())
		})
	}
}
