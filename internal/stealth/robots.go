package stealth

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

const robotsCacheTTL = time.Hour

type robotsEntry struct {
	data    *robotstxt.RobotsData
	fetched time.Time
}

// RobotsChecker answers robots.txt queries with a per-host TTL cache. The
// crawl targets a single upstream host, so the cache holds one entry in
// practice; the checker still keys by host to stay correct behind mirrors.
type RobotsChecker struct {
	mu      sync.Mutex
	cache   map[string]robotsEntry
	client  *http.Client
	enabled bool
}

func NewRobotsChecker(client *http.Client, enabled bool) *RobotsChecker {
	return &RobotsChecker{
		cache:   make(map[string]robotsEntry),
		client:  client,
		enabled: enabled,
	}
}

// IsAllowed reports whether the URL may be fetched under the host's
// robots.txt. An unreachable robots.txt never blocks the crawl; a 404 allows
// everything per the robots exclusion standard.
func (r *RobotsChecker) IsAllowed(userAgent, rawURL string) (bool, error) {
	if !r.enabled {
		return true, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return false, err
	}

	data, err := r.rules(u.Scheme + "://" + u.Host)
	if err != nil {
		return true, nil
	}
	return data.FindGroup(userAgent).Test(u.Path), nil
}

func (r *RobotsChecker) rules(host string) (*robotstxt.RobotsData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.cache[host]; ok && time.Since(e.fetched) < robotsCacheTTL {
		return e.data, nil
	}

	resp, err := r.client.Get(host + "/robots.txt")
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read robots.txt: %w", err)
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	r.cache[host] = robotsEntry{data: data, fetched: time.Now()}
	return data, nil
}
