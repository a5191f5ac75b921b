package ozon

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dkovalev83/ozon-scrap/config"
	"github.com/dkovalev83/ozon-scrap/internal/archive"
	"github.com/dkovalev83/ozon-scrap/internal/stealth"
)

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.Retries = 0
	cfg.Timeout = 5 * time.Second

	c, err := NewClient(srv.Client(), cfg, archive.New(t.TempDir(), false))
	require.NoError(t, err)
	// Tests do not need human pacing.
	c.delay = &stealth.HumanDelay{MinDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	return c
}

func TestFetchPage(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, entrypointPath, r.URL.Path)
		q := r.URL.Query()
		gotQuery = map[string]string{
			"url":               q.Get("url"),
			"layout_container":  q.Get("layout_container"),
			"layout_page_index": q.Get("layout_page_index"),
			"page":              q.Get("page"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(listingResponse(3, 30, tileJSON("111", "Кроссовки Alpha")))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	res, err := c.FetchPage(context.Background(), "https://www.ozon.ru/seller/magazin-shoes-778899/products/", 2)
	require.NoError(t, err)

	require.Equal(t, "/seller/778899/products/", gotQuery["url"])
	require.Equal(t, "categorySearchMegapagination", gotQuery["layout_container"])
	require.Equal(t, "2", gotQuery["layout_page_index"])
	require.Equal(t, "2", gotQuery["page"])

	require.Equal(t, 2, res.Pagination.CurrentPage)
	require.Equal(t, 3, res.Pagination.TotalPages)
	require.Len(t, res.Products, 1)
	require.Equal(t, "778899", res.Metadata["seller_id"])
	require.NotEmpty(t, res.Metadata["crawl_id"])
	require.NotEmpty(t, res.Metadata["fetched_at"])
	require.Contains(t, res.Metadata["source_url"], entrypointPath)
}

func TestFetchPageBadSellerRef(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.FetchPage(context.Background(), "https://www.ozon.ru/category/obuv/", 1)
	require.ErrorIs(t, err, ErrSellerRef)
	require.Zero(t, requests, "unresolvable reference fails before any request")
}

func TestFetchAllPages(t *testing.T) {
	var requested []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		requested = append(requested, page)
		if page == "2" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(listingResponse(3, 30, tileJSON(page+"01", "Товар страницы "+page)))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	results, err := c.FetchAllPages(context.Background(), "778899")
	require.NoError(t, err, "a failing middle page is skipped, not fatal")

	require.Equal(t, []string{"1", "2", "3"}, requested, "pages requested sequentially in order")
	require.Len(t, results, 2)
	require.Equal(t, 1, results[0].Pagination.CurrentPage)
	require.Equal(t, 3, results[1].Pagination.CurrentPage)
}

func TestFetchAllPagesFirstPageFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.FetchAllPages(context.Background(), "778899")
	require.ErrorIs(t, err, ErrUpstream)
}

func TestFetchPageHTMLChallenge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body>Доступ ограничен</body></html>"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.FetchPage(context.Background(), "778899", 1)
	require.ErrorIs(t, err, ErrUpstream)
	require.ErrorContains(t, err, "HTML")
}

func TestFetchProductMergesSecondaryLayout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("layout_container") == "pdpPage2column" {
			w.Write(detailsBody(t, map[string]string{
				"webDescription-1-default-1": `{"content":[{"content":"Описание из второй раскладки."}]}`,
			}, ""))
			return
		}
		w.Write(detailsBody(t, map[string]string{
			"webProductHeading-1-default-1": `{"title":"Кроссовки Alpha"}`,
			"webPrice-1-default-1":          `{"price":"1 000 ₽"}`,
		}, ""))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	d, err := c.FetchProduct(context.Background(), "123456")
	require.NoError(t, err)
	require.Equal(t, "Кроссовки Alpha", d.Name)
	require.Equal(t, "Описание из второй раскладки.", d.Description)
}

func TestFetchProductSecondaryFailureTolerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("layout_container") == "pdpPage2column" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(detailsBody(t, map[string]string{
			"webProductHeading-1-default-1": `{"title":"Кроссовки Alpha"}`,
		}, ""))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	d, err := c.FetchProduct(context.Background(), "123456")
	require.NoError(t, err)
	require.Equal(t, "Кроссовки Alpha", d.Name)
	require.Empty(t, d.Description)
}

func TestFetchAllPagesContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(listingResponse(5, 60, tileJSON("111", "Товар")))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchAllPages(ctx, "778899")
	require.Error(t, err)
	require.True(t, errors.Is(err, context.Canceled) || errors.Is(err, ErrUpstream))
}
