package stealth

import (
	"net/http"
	"net/url"
	"sync"
)

// ProxyProvider abstracts a proxy backend.
type ProxyProvider interface {
	Transport() http.RoundTripper
	Name() string
}

// ProxyRotator cycles through multiple proxy providers.
type ProxyRotator struct {
	providers []ProxyProvider
	mu        sync.Mutex
	idx       int
}

// NewProxyRotator creates a rotator from a list of providers.
// Returns nil if no providers are given.
func NewProxyRotator(providers []ProxyProvider) *ProxyRotator {
	if len(providers) == 0 {
		return nil
	}
	return &ProxyRotator{providers: providers}
}

// Next returns the next proxy provider in round-robin order.
func (p *ProxyRotator) Next() ProxyProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	provider := p.providers[p.idx%len(p.providers)]
	p.idx++
	return provider
}

// StaticProvider routes traffic through one fixed forward proxy URL.
type StaticProvider struct {
	ProxyURL  *url.URL
	transport http.RoundTripper
	once      sync.Once
}

func (s *StaticProvider) Transport() http.RoundTripper {
	s.once.Do(func() {
		s.transport = &http.Transport{
			Proxy:               http.ProxyURL(s.ProxyURL),
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
		}
	})
	return s.transport
}

func (s *StaticProvider) Name() string { return "static" }
