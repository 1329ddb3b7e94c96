package iowapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gamedex/gdb/internal/iofetch"
)

// PageClient fetches wiki page revisions and content from a site's
// api.php endpoint. Page requests share the concurrency-capped API
// gate with entity requests.
type PageClient struct {
	fetcher *iofetch.Client
}

// NewPageClient creates a wiki page client.
func NewPageClient(fetcher *iofetch.Client) *PageClient {
	return &PageClient{fetcher: fetcher}
}

// siteEndpoint maps a site id like "enwiki" to its api.php URL.
func siteEndpoint(site string) string {
	lang := strings.TrimSuffix(site, "wiki")
	if lang == "" || lang == site {
		lang = "en"
	}
	return fmt.Sprintf("https://%s.wikipedia.org/w/api.php", lang)
}

type pageQueryResult struct {
	Query struct {
		Pages []struct {
			Title     string `json:"title"`
			Missing   bool   `json:"missing"`
			Revisions []struct {
				RevID int64 `json:"revid"`
				Slots struct {
					Main struct {
						Content string `json:"content"`
					} `json:"main"`
				} `json:"slots"`
			} `json:"revisions"`
		} `json:"pages"`
	} `json:"query"`
}

// PageRevision is the metadata-only probe: it returns the current
// revision id of a page without its content.
func (p *PageClient) PageRevision(
	ctx context.Context,
	site, title string,
) (int64, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "revisions")
	params.Set("rvprop", "ids")
	params.Set("titles", title)
	params.Set("formatversion", "2")
	params.Set("format", "json")

	res, err := p.query(ctx, site, params)
	if err != nil {
		return 0, err
	}
	if len(res.Query.Pages) == 0 || res.Query.Pages[0].Missing ||
		len(res.Query.Pages[0].Revisions) == 0 {
		return 0, PageMissingError(site, title)
	}
	return res.Query.Pages[0].Revisions[0].RevID, nil
}

// PageContent is the heavyweight fetch: revision id plus full page
// text.
func (p *PageClient) PageContent(
	ctx context.Context,
	site, title string,
) (int64, string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "revisions")
	params.Set("rvprop", "ids|content")
	params.Set("rvslots", "main")
	params.Set("titles", title)
	params.Set("formatversion", "2")
	params.Set("format", "json")

	res, err := p.query(ctx, site, params)
	if err != nil {
		return 0, "", err
	}
	if len(res.Query.Pages) == 0 || res.Query.Pages[0].Missing ||
		len(res.Query.Pages[0].Revisions) == 0 {
		return 0, "", PageMissingError(site, title)
	}
	rev := res.Query.Pages[0].Revisions[0]
	return rev.RevID, rev.Slots.Main.Content, nil
}

func (p *PageClient) query(
	ctx context.Context,
	site string,
	params url.Values,
) (*pageQueryResult, error) {
	resp, err := p.fetcher.Fetch(ctx, iofetch.Request{
		URL:  siteEndpoint(site) + "?" + params.Encode(),
		Gate: iofetch.GateAPI,
	})
	if err != nil {
		return nil, err
	}

	var res pageQueryResult
	if err := unmarshal(resp.Body, &res); err != nil {
		return nil, QueryDecodeError(err)
	}
	return &res, nil
}
