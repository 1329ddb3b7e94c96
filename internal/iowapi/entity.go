package iowapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/gamedex/gdb/internal/iofetch"
	"github.com/gamedex/gdb/pkg/wikidata"
)

// APIClient talks to the MediaWiki api.php endpoints. Requests pass
// through the fetcher's concurrency-capped API gate.
type APIClient struct {
	fetcher  *iofetch.Client
	endpoint string
}

// NewAPIClient creates a document API client for the knowledge-graph
// endpoint.
func NewAPIClient(fetcher *iofetch.Client, endpoint string) *APIClient {
	return &APIClient{fetcher: fetcher, endpoint: endpoint}
}

// EntityRevisions performs the lightweight metadata probe: it returns
// the current revision id per entity without fetching claim bodies.
// Missing entities map to revision 0.
func (a *APIClient) EntityRevisions(
	ctx context.Context,
	qids []string,
) (map[string]int64, error) {
	params := url.Values{}
	params.Set("action", "wbgetentities")
	params.Set("ids", strings.Join(qids, "|"))
	params.Set("props", "info")
	params.Set("format", "json")

	resp, err := a.fetcher.Fetch(ctx, iofetch.Request{
		URL:  a.endpoint + "?" + params.Encode(),
		Gate: iofetch.GateAPI,
	})
	if err != nil {
		return nil, err
	}

	var raw struct {
		Entities map[string]struct {
			ID        string           `json:"id"`
			LastRevID int64            `json:"lastrevid"`
			Missing   *json.RawMessage `json:"missing"`
		} `json:"entities"`
	}
	if err := json.Unmarshal(resp.Body, &raw); err != nil {
		return nil, EntityDecodeError(err)
	}

	res := make(map[string]int64, len(raw.Entities))
	for key, ent := range raw.Entities {
		id := ent.ID
		if id == "" {
			id = key
		}
		if ent.Missing != nil {
			res[id] = 0
			continue
		}
		res[id] = ent.LastRevID
	}
	return res, nil
}

// EntityDocument is one full entity payload: the decoded document plus
// the raw JSON stored in the cache.
type EntityDocument struct {
	Entity *wikidata.Entity
	Raw    []byte
}

// Entities performs the heavyweight fetch: full documents (labels,
// descriptions, claims, sitelinks) for the given identifiers. Missing
// entities are returned with Entity.Missing set and nil Raw.
func (a *APIClient) Entities(
	ctx context.Context,
	qids []string,
) (map[string]EntityDocument, error) {
	params := url.Values{}
	params.Set("action", "wbgetentities")
	params.Set("ids", strings.Join(qids, "|"))
	params.Set("props", "labels|descriptions|claims|sitelinks|info")
	params.Set("format", "json")

	resp, err := a.fetcher.Fetch(ctx, iofetch.Request{
		URL:    a.endpoint,
		Method: http.MethodPost,
		Body:   params,
		Gate:   iofetch.GateAPI,
	})
	if err != nil {
		return nil, err
	}

	var raw struct {
		Entities map[string]json.RawMessage `json:"entities"`
	}
	if err := json.Unmarshal(resp.Body, &raw); err != nil {
		return nil, EntityDecodeError(err)
	}

	res := make(map[string]EntityDocument, len(raw.Entities))
	for _, doc := range raw.Entities {
		ent, err := wikidata.UnmarshalEntity(doc)
		if err != nil {
			return nil, EntityDecodeError(err)
		}
		if ent.ID == "" {
			continue
		}
		ed := EntityDocument{Entity: ent}
		if !ent.Missing {
			ed.Raw = doc
		}
		res[ent.ID] = ed
	}
	return res, nil
}
