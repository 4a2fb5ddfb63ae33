package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"woocommerce/migrator/internal/config"
	"woocommerce/migrator/internal/domain"
	"woocommerce/migrator/internal/proxy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedStore serves fixed pages of records for one collection path.
func pagedStore(t *testing.T, path string, pages [][]string, totalHeader string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, APIPrefix+path, r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "ck_src", user)
		assert.Equal(t, "cs_src", pass)

		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if !assert.NoError(t, err) || !assert.LessOrEqual(t, page, len(pages)) {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		if totalHeader != "" {
			w.Header().Set(TotalPagesHeader, totalHeader)
		}
		w.Header().Set("Content-Type", "application/json")

		body := "["
		for i, name := range pages[page-1] {
			if i > 0 {
				body += ","
			}
			body += fmt.Sprintf(`{"id":%d,"name":%q}`, page*100+i, name)
		}
		body += "]"
		_, _ = w.Write([]byte(body))
	}))
}

func newTestSource(serverURL string) SourceClient {
	return NewSourceClient(config.SourceConfig{
		URL:     serverURL,
		Key:     "ck_src",
		Secret:  "cs_src",
		Timeout: 5,
	}, nil)
}

func names(records []domain.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Name())
	}
	return out
}

func TestFetchAllAccumulatesPagesInOrder(t *testing.T) {
	var hits atomic.Int32
	pages := [][]string{{"a", "b", "c"}, {"d", "e"}, {"f"}}
	srv := pagedStore(t, "products/categories", pages, "3", &hits)
	defer srv.Close()

	records, err := newTestSource(srv.URL).FetchAll(context.Background(), "products/categories", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, names(records))
	assert.EqualValues(t, 3, hits.Load())
}

func TestFetchAllSinglePageIssuesOneRequest(t *testing.T) {
	var hits atomic.Int32
	srv := pagedStore(t, "products", [][]string{{"only"}}, "1", &hits)
	defer srv.Close()

	records, err := newTestSource(srv.URL).FetchAll(context.Background(), "products", nil)
	require.NoError(t, err)

	assert.Len(t, records, 1)
	assert.EqualValues(t, 1, hits.Load())
}

func TestFetchAllStopsWhenHeaderMissing(t *testing.T) {
	var hits atomic.Int32
	srv := pagedStore(t, "products", [][]string{{"a", "b"}, {"c"}}, "", &hits)
	defer srv.Close()

	records, err := newTestSource(srv.URL).FetchAll(context.Background(), "products", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, names(records))
	assert.EqualValues(t, 1, hits.Load())
}

func TestFetchAllMergesExtraParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "publish", q.Get("status"))
		assert.Equal(t, "25", q.Get("per_page"))
		assert.Equal(t, "1", q.Get("page"))
		w.Header().Set(TotalPagesHeader, "1")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewSourceClient(config.SourceConfig{URL: srv.URL, PerPage: 10, Timeout: 5}, nil)
	records, err := c.FetchAll(context.Background(), "products", url.Values{
		"status":   {"publish"},
		"per_page": {"25"},
		"page":     {"9"},
	})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetchAllAbortsOnHTTPError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("page") == "2" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":"woocommerce_rest_cannot_view","message":"Sorry, you cannot list resources.","data":{"status":401}}`))
			return
		}
		w.Header().Set(TotalPagesHeader, "3")
		_, _ = w.Write([]byte(`[{"id":1,"name":"a"}]`))
	}))
	defer srv.Close()

	records, err := newTestSource(srv.URL).FetchAll(context.Background(), "products", nil)
	require.Error(t, err)
	assert.Nil(t, records)
	assert.EqualValues(t, 2, hits.Load())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "woocommerce_rest_cannot_view", apiErr.Code)
}

func TestFetchAllReportsHTMLPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html><html><head><title>Briefly unavailable for scheduled maintenance</title></head><body></body></html>`))
	}))
	defer srv.Close()

	_, err := newTestSource(srv.URL).FetchAll(context.Background(), "products", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Briefly unavailable for scheduled maintenance")
}

func TestFetchAllHonoursCancellation(t *testing.T) {
	srv := pagedStore(t, "products", [][]string{{"a"}}, "1", new(atomic.Int32))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestSource(srv.URL).FetchAll(ctx, "products", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

// fakeProxy answers proxied requests itself, counting them.
func fakeProxy(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "store.invalid", r.Host)
		assert.Equal(t, APIPrefix+"products", r.URL.Path)

		w.Header().Set(TotalPagesHeader, "1")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"name":"Mug"}]`))
	}))
}

func TestFetchAllConcurrentRunsRotateProxies(t *testing.T) {
	var firstHits, secondHits atomic.Int32
	first := fakeProxy(t, &firstHits)
	defer first.Close()
	second := fakeProxy(t, &secondHits)
	defer second.Close()

	alwaysUp := func(context.Context, string, string) bool { return true }
	supplier := proxy.NewProxySupplier(context.Background(), []string{first.URL, second.URL}, "", alwaysUp)

	source := NewSourceClient(config.SourceConfig{
		URL:     "http://store.invalid",
		Key:     "ck_src",
		Secret:  "cs_src",
		Timeout: 5,
	}, supplier)

	const runs = 8
	var wg sync.WaitGroup
	errs := make([]error, runs)
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			records, err := source.FetchAll(context.Background(), "products", nil)
			errs[i] = err
			if err == nil {
				assert.Len(t, records, 1)
			}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(runs), firstHits.Load()+secondHits.Load())
	assert.Positive(t, firstHits.Load())
	assert.Positive(t, secondHits.Load())
}
