package stealth

import (
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// Transport is an http.RoundTripper applying the stealth pipeline around
// every upstream call: Fingerprint fallback → robots.txt → rate limiter →
// jitter delay → proxy/base transport. Configured anti-bot headers set by
// the caller always win; the fingerprint pool only fills gaps, so a pinned
// user-agent from settings is never overwritten.
type Transport struct {
	Base        http.RoundTripper
	Robots      *RobotsChecker
	Fingerprint *FingerprintPool
	Proxy       *ProxyRotator
	Delay       *HumanDelay
	RateLimiter *rate.Limiter
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Fingerprint != nil {
		fp := t.Fingerprint.Next()
		if req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", fp.UserAgent)
		}
		for key, vals := range fp.Headers {
			if req.Header.Get(key) == "" {
				for _, v := range vals {
					req.Header.Add(key, v)
				}
			}
		}
	}

	if t.Robots != nil {
		allowed, err := t.Robots.IsAllowed(req.Header.Get("User-Agent"), req.URL.String())
		if err == nil && !allowed {
			return nil, fmt.Errorf("blocked by robots.txt: %s", req.URL.Path)
		}
	}

	if t.RateLimiter != nil {
		if err := t.RateLimiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	if t.Delay != nil {
		if err := t.Delay.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("delay: %w", err)
		}
	}

	transport := t.Base
	if t.Proxy != nil {
		transport = t.Proxy.Next().Transport()
	}
	if transport == nil {
		transport = http.DefaultTransport
	}

	return transport.RoundTrip(req)
}
