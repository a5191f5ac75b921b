package ozon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dkovalev83/ozon-scrap/config"
	"github.com/dkovalev83/ozon-scrap/internal/archive"
	"github.com/dkovalev83/ozon-scrap/internal/httputil"
	"github.com/dkovalev83/ozon-scrap/internal/logx"
	"github.com/dkovalev83/ozon-scrap/internal/models"
	"github.com/dkovalev83/ozon-scrap/internal/stealth"
)

// entrypointPath is the upstream page-rendering API. It accepts a target
// path plus layout parameters and returns the widget-map envelope.
const entrypointPath = "/api/entrypoint-api.bx/page/json/v2"

var (
	// ErrSellerRef means the seller reference could not be resolved to a
	// numeric id. Reported synchronously, before any request is made.
	ErrSellerRef = errors.New("seller reference did not resolve to an id")

	// ErrUpstream covers transport-level page failures: non-200 status,
	// non-JSON body, or a dead connection.
	ErrUpstream = errors.New("upstream fetch failed")
)

// Client drives the crawl: it fetches pages from the upstream entrypoint
// API, archives raw payloads, feeds them to the extractors and paces
// successive requests. Pages are always fetched one at a time; the upstream
// does not tolerate bursts.
type Client struct {
	http    *http.Client
	cfg     *config.Config
	archive *archive.Archive
	delay   *stealth.HumanDelay
	log     zerolog.Logger
}

// NewClient validates the configuration synchronously and returns a crawl
// client owning its HTTP session.
func NewClient(httpClient *http.Client, cfg *config.Config, arc *archive.Archive) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("crawl configuration: %w", err)
	}
	return &Client{
		http:    httpClient,
		cfg:     cfg,
		archive: arc,
		delay:   stealth.NewHumanDelay(stealth.DelayProfile(cfg.DelayProfile)),
		log:     logx.New("crawler"),
	}, nil
}

// FetchPage retrieves and extracts one listing page for a seller reference
// (numeric id or storefront URL).
func (c *Client) FetchPage(ctx context.Context, sellerRef string, page int) (*models.PageResult, error) {
	sellerID := ResolveSellerRef(sellerRef)
	if sellerID == "" {
		return nil, fmt.Errorf("%w: %q", ErrSellerRef, sellerRef)
	}
	if page < 1 {
		page = 1
	}

	target := fmt.Sprintf("/seller/%s/products/", sellerID)
	params := url.Values{
		"url":               {target},
		"layout_container":  {"categorySearchMegapagination"},
		"layout_page_index": {strconv.Itoa(page)},
		"page":              {strconv.Itoa(page)},
	}

	body, sourceURL, err := c.fetch(ctx, params)
	if err != nil {
		return nil, err
	}

	pagination, products, err := ExtractPage(body, page, c.log)
	if err != nil {
		return nil, fmt.Errorf("extract page %d: %w", page, err)
	}

	c.log.Info().
		Str("seller", sellerID).
		Int("page", page).
		Int("products", len(products)).
		Int("total_pages", pagination.TotalPages).
		Msg("page extracted")

	return &models.PageResult{
		Pagination: pagination,
		Products:   products,
		Metadata: map[string]string{
			"seller_id":  sellerID,
			"source_url": sourceURL,
			"fetched_at": time.Now().UTC().Format(time.RFC3339),
			"crawl_id":   uuid.NewString(),
		},
	}, nil
}

// FetchAllPages crawls a seller's whole catalog. Page 1 teaches the total
// page count and its failure is fatal; later pages are fetched sequentially
// in order, with a pacing delay in between, and individual failures are
// skipped rather than aborting the crawl.
func (c *Client) FetchAllPages(ctx context.Context, sellerRef string) ([]*models.PageResult, error) {
	first, err := c.FetchPage(ctx, sellerRef, 1)
	if err != nil {
		return nil, fmt.Errorf("fetch page 1: %w", err)
	}

	results := []*models.PageResult{first}
	totalPages := first.Pagination.TotalPages
	reportProgress(ctx, fmt.Sprintf("Page 1/%d fetched, %d products", totalPages, len(first.Products)))

	for page := 2; page <= totalPages; page++ {
		if err := c.delay.WaitPage(ctx); err != nil {
			return results, err
		}
		res, err := c.FetchPage(ctx, sellerRef, page)
		if err != nil {
			c.log.Warn().Int("page", page).Err(err).Msg("page skipped")
			reportProgress(ctx, fmt.Sprintf("Page %d/%d failed, skipping", page, totalPages))
			continue
		}
		results = append(results, res)
		reportProgress(ctx, fmt.Sprintf("Page %d/%d fetched, %d products", page, totalPages, len(res.Products)))
	}
	return results, nil
}

// FetchProduct retrieves one product's details. The description widget is
// not reliably present in the primary layout, so a second fetch against the
// two-column layout is merged into the primary widget map before extraction.
func (c *Client) FetchProduct(ctx context.Context, id string) (*models.ProductDetails, error) {
	target := fmt.Sprintf("/product/%s/", id)

	body, _, err := c.fetch(ctx, url.Values{"url": {target}})
	if err != nil {
		return nil, err
	}
	resp, err := parseResponse(body)
	if err != nil {
		return nil, err
	}
	primary := newWidgets(resp.WidgetStates, c.log)

	if err := c.delay.Wait(ctx); err != nil {
		return nil, err
	}
	secondaryBody, _, err := c.fetch(ctx, url.Values{
		"url":               {target},
		"layout_container":  {"pdpPage2column"},
		"layout_page_index": {"2"},
	})
	if err != nil {
		c.log.Warn().Str("id", id).Err(err).Msg("secondary layout fetch failed, description may be absent")
	} else if secondary, err := parseResponse(secondaryBody); err == nil {
		primary.Merge(newWidgets(secondary.WidgetStates, c.log), descriptionKeys...)
	}

	resp.WidgetStates = primary.states
	return extractDetails(resp, id, c.log), nil
}

// fetch performs one entrypoint request. The configured anti-bot headers and
// cookies are applied explicitly per request; the stealth transport under
// c.http adds pacing, rate limiting and fingerprint fallback. Every response
// is classified and recorded to the archive.
func (c *Client) fetch(ctx context.Context, params url.Values) ([]byte, string, error) {
	requestURL := c.cfg.BaseURL + entrypointPath + "?" + params.Encode()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, requestURL, err
	}
	for k, v := range httputil.HeaderSet(c.cfg.Headers) {
		req.Header[k] = v
	}
	for name, value := range c.cfg.Cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := httputil.DoWithRetry(c.http, req, c.cfg.Retries)
	if err != nil {
		return nil, requestURL, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, requestURL, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.archive.Record(requestURL, archive.KindError, resp.StatusCode, body)
		return nil, requestURL, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	switch classify(resp.Header.Get("Content-Type"), body) {
	case archive.KindJSON:
		c.archive.Record(requestURL, archive.KindJSON, resp.StatusCode, body)
		return body, requestURL, nil
	case archive.KindHTML:
		c.archive.Record(requestURL, archive.KindHTML, resp.StatusCode, body)
		return nil, requestURL, fmt.Errorf("%w: got HTML instead of JSON (anti-bot challenge?)", ErrUpstream)
	default:
		c.archive.Record(requestURL, archive.KindRaw, resp.StatusCode, body)
		return nil, requestURL, fmt.Errorf("%w: unrecognized body", ErrUpstream)
	}
}

func classify(contentType string, body []byte) archive.Kind {
	trimmed := strings.TrimSpace(string(body))
	if strings.Contains(contentType, "application/json") || strings.HasPrefix(trimmed, "{") {
		if json.Valid([]byte(trimmed)) {
			return archive.KindJSON
		}
		return archive.KindRaw
	}
	if strings.Contains(contentType, "text/html") || strings.HasPrefix(trimmed, "<") {
		return archive.KindHTML
	}
	return archive.KindRaw
}
