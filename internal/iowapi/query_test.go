package iowapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gamedex/gdb/internal/iofetch"
	"github.com/gamedex/gdb/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFetcher() *iofetch.Client {
	cfg := &config.FetchConfig{
		UserAgent:       "gamedex-gdb/test (ops@example.com)",
		QueryIntervalMs: 1,
		MaxRetries:      0,
		MaxWaitSec:      1,
		CooldownSec:     1,
	}
	return iofetch.New(cfg, 2, iofetch.NewStats())
}

func TestSelect(t *testing.T) {
	const doc = `{
	  "results": {
	    "bindings": [
	      {
	        "item": {
	          "type": "uri",
	          "value": "http://www.wikidata.org/entity/Q2182"
	        },
	        "itemLabel": {"type": "literal", "value": "Half-Life"}
	      },
	      {
	        "item": {
	          "type": "uri",
	          "value": "http://www.wikidata.org/entity/Q693267"
	        },
	        "itemLabel": {"type": "literal", "value": "Half-Life 2"}
	      }
	    ]
	  }
	}`

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			gotQuery = r.PostForm.Get("query")
			w.Write([]byte(doc))
		}))
	defer srv.Close()

	q := NewQueryClient(testFetcher(), srv.URL)
	rows, err := q.Select(context.Background(), "SELECT ?item ?itemLabel")
	require.NoError(t, err)

	assert.Equal(t, "SELECT ?item ?itemLabel", gotQuery)
	require.Len(t, rows, 2)
	assert.Equal(t, "Q2182", rows[0]["item"], "entity URI reduced to QID")
	assert.Equal(t, "Half-Life", rows[0]["itemLabel"])
	assert.Equal(t, "Q693267", rows[1]["item"])
}

func TestSelectEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"results": {"bindings": []}}`))
		}))
	defer srv.Close()

	q := NewQueryClient(testFetcher(), srv.URL)
	rows, err := q.Select(context.Background(), "SELECT ?item")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSelectDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>gateway error</html>"))
		}))
	defer srv.Close()

	q := NewQueryClient(testFetcher(), srv.URL)
	_, err := q.Select(context.Background(), "SELECT ?item")
	assert.Error(t, err)
}

func TestQIDFromURI(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"http://www.wikidata.org/entity/Q2182", "Q2182"},
		{"https://www.wikidata.org/entity/Q42", "Q42"},
		{"Q2182", "Q2182"},
		{"https://example.com/page", "https://example.com/page"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, QIDFromURI(tt.input), tt.input)
	}
}
