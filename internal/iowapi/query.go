// Package iowapi implements thin clients for the two upstreams: the
// SPARQL query service (POST, tabular bindings) and the MediaWiki
// APIs (GET, entity documents and page revisions). All traffic goes
// through the shared rate-limited fetcher.
package iowapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/gamedex/gdb/internal/iofetch"
)

// QueryClient talks to the SPARQL endpoint. Its requests are
// serialized through the fetcher's query gate.
type QueryClient struct {
	fetcher  *iofetch.Client
	endpoint string
}

// NewQueryClient creates a query-service client.
func NewQueryClient(fetcher *iofetch.Client, endpoint string) *QueryClient {
	return &QueryClient{fetcher: fetcher, endpoint: endpoint}
}

// Binding is one result row: variable name to plain value. Entity URIs
// are already reduced to bare QIDs.
type Binding map[string]string

// Select runs a SPARQL query and returns its bindings.
func (q *QueryClient) Select(
	ctx context.Context,
	sparql string,
) ([]Binding, error) {
	body := url.Values{}
	body.Set("query", sparql)
	body.Set("format", "json")

	resp, err := q.fetcher.Fetch(ctx, iofetch.Request{
		URL:    q.endpoint,
		Method: http.MethodPost,
		Body:   body,
		Gate:   iofetch.GateQuery,
	})
	if err != nil {
		return nil, QueryServiceError(err)
	}

	var raw struct {
		Results struct {
			Bindings []map[string]struct {
				Type  string `json:"type"`
				Value string `json:"value"`
			} `json:"bindings"`
		} `json:"results"`
	}
	if err := json.Unmarshal(resp.Body, &raw); err != nil {
		return nil, QueryDecodeError(err)
	}

	res := make([]Binding, 0, len(raw.Results.Bindings))
	for _, row := range raw.Results.Bindings {
		b := make(Binding, len(row))
		for name, cell := range row {
			val := cell.Value
			if cell.Type == "uri" {
				val = QIDFromURI(val)
			}
			b[name] = val
		}
		res = append(res, b)
	}
	return res, nil
}

// QIDFromURI reduces an entity URI to its bare identifier; non-entity
// URIs pass through unchanged.
func QIDFromURI(uri string) string {
	const marker = "/entity/"
	if i := strings.LastIndex(uri, marker); i >= 0 {
		return uri[i+len(marker):]
	}
	return uri
}
