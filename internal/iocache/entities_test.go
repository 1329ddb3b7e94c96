package iocache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gamedex/gdb/internal/iofetch"
	"github.com/gamedex/gdb/internal/iowapi"
	"github.com/gamedex/gdb/pkg/config"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const entityRaw = `{"id":"Q2182","lastrevid":100,` +
	`"labels":{"en":{"language":"en","value":"Half-Life"}}}`

// entityServer serves both the lightweight revision probe (GET) and
// the full document fetch (POST) for one entity.
func entityServer(t *testing.T) (*httptest.Server, *int, *int) {
	t.Helper()
	var probes, fetches int
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				probes++
				assert.Equal(t, "info", r.URL.Query().Get("props"))
				w.Write([]byte(
					`{"entities":{"Q2182":{"id":"Q2182","lastrevid":100}}}`))
				return
			}
			fetches++
			w.Write([]byte(`{"entities":{"Q2182":` + entityRaw + `}}`))
		}))
	return srv, &probes, &fetches
}

func testStack(srvURL string) (*iowapi.APIClient, *iofetch.Stats) {
	cfg := &config.FetchConfig{
		UserAgent:       "gamedex-gdb/test (ops@example.com)",
		QueryIntervalMs: 1,
		MaxRetries:      0,
		MaxWaitSec:      1,
		CooldownSec:     1,
	}
	stats := iofetch.NewStats()
	fetcher := iofetch.New(cfg, 2, stats)
	return iowapi.NewAPIClient(fetcher, srvURL), stats
}

func TestEntityCacheHit(t *testing.T) {
	srv, probes, fetches := entityServer(t)
	defer srv.Close()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT qid, revision_id").
		WithArgs([]string{"Q2182"}).
		WillReturnRows(pgxmock.NewRows([]string{"qid", "revision_id"}).
			AddRow("Q2182", int64(100)))
	mock.ExpectQuery("SELECT revision_id, document").
		WithArgs("Q2182").
		WillReturnRows(pgxmock.NewRows([]string{"revision_id", "document"}).
			AddRow(int64(100), []byte(entityRaw)))

	api, stats := testStack(srv.URL)
	cache := NewEntityCache(mock, api, stats)

	got, err := cache.GetOrFetch(context.Background(), "Q2182")
	require.NoError(t, err)

	assert.Equal(t, SourceCacheHit, got.Source)
	assert.Equal(t, int64(100), got.RevisionID)
	assert.Equal(t, "Half-Life", got.Entity.Label("en"))
	assert.False(t, got.Missing)

	assert.Equal(t, 1, *probes)
	assert.Equal(t, 0, *fetches, "unchanged marker skips the payload")
	assert.Equal(t, int64(1), stats.CacheHits())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntityCacheStale(t *testing.T) {
	srv, probes, fetches := entityServer(t)
	defer srv.Close()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	// Stored marker lags the probed revision, so the payload is
	// fetched and upserted.
	mock.ExpectQuery("SELECT qid, revision_id").
		WithArgs([]string{"Q2182"}).
		WillReturnRows(pgxmock.NewRows([]string{"qid", "revision_id"}).
			AddRow("Q2182", int64(90)))
	mock.ExpectExec("INSERT INTO entity_caches").
		WithArgs("Q2182", int64(100),
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	api, stats := testStack(srv.URL)
	cache := NewEntityCache(mock, api, stats)

	got, err := cache.GetOrFetch(context.Background(), "Q2182")
	require.NoError(t, err)

	assert.Equal(t, SourceFetched, got.Source)
	assert.Equal(t, int64(100), got.RevisionID)
	assert.Equal(t, "Half-Life", got.Entity.Label("en"))
	assert.NotEmpty(t, got.Raw)

	assert.Equal(t, 1, *probes)
	assert.Equal(t, 1, *fetches)
	assert.Equal(t, int64(0), stats.CacheHits())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntityCacheNeverCached(t *testing.T) {
	srv, _, fetches := entityServer(t)
	defer srv.Close()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT qid, revision_id").
		WithArgs([]string{"Q2182"}).
		WillReturnRows(pgxmock.NewRows([]string{"qid", "revision_id"}))
	mock.ExpectExec("INSERT INTO entity_caches").
		WithArgs("Q2182", int64(100),
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	api, stats := testStack(srv.URL)
	cache := NewEntityCache(mock, api, stats)

	got, err := cache.GetOrFetch(context.Background(), "Q2182")
	require.NoError(t, err)

	assert.Equal(t, SourceFetched, got.Source)
	assert.Equal(t, 1, *fetches)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntityCacheMissingEntity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method,
				"missing entities never trigger the payload fetch")
			w.Write([]byte(
				`{"entities":{"Q99999999":` +
					`{"title":"Q99999999","missing":""}}}`))
		}))
	defer srv.Close()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT qid, revision_id").
		WithArgs([]string{"Q99999999"}).
		WillReturnRows(pgxmock.NewRows([]string{"qid", "revision_id"}))

	api, stats := testStack(srv.URL)
	cache := NewEntityCache(mock, api, stats)

	got, err := cache.GetOrFetch(context.Background(), "Q99999999")
	require.NoError(t, err)

	assert.True(t, got.Missing)
	assert.Nil(t, got.Entity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedDocument(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT revision_id, document").
		WithArgs("Q2182").
		WillReturnRows(pgxmock.NewRows([]string{"revision_id", "document"}).
			AddRow(int64(100), []byte(entityRaw)))

	cache := NewEntityCache(mock, nil, iofetch.NewStats())
	got, err := cache.CachedDocument(context.Background(), "Q2182")
	require.NoError(t, err)

	assert.Equal(t, SourceCacheHit, got.Source)
	assert.Equal(t, int64(100), got.RevisionID)
	assert.Equal(t, "Half-Life", got.Entity.Label("en"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
