package stealth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRobotsChecker(t *testing.T) {
	fetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/robots.txt", r.URL.Path)
		fetches++
		w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
	}))
	defer srv.Close()

	rc := NewRobotsChecker(srv.Client(), true)

	allowed, err := rc.IsAllowed("test-agent", srv.URL+"/products/")
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = rc.IsAllowed("test-agent", srv.URL+"/private/page")
	require.NoError(t, err)
	require.False(t, allowed)

	require.Equal(t, 1, fetches, "rules are cached per host")
}

func TestRobotsCheckerDisabled(t *testing.T) {
	rc := NewRobotsChecker(http.DefaultClient, false)

	allowed, err := rc.IsAllowed("test-agent", "https://unreachable.invalid/private/")
	require.NoError(t, err)
	require.True(t, allowed, "disabled checker never blocks and never fetches")
}

func TestRobotsCheckerNotFoundAllowsAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	rc := NewRobotsChecker(srv.Client(), true)
	allowed, err := rc.IsAllowed("test-agent", srv.URL+"/anything")
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestRobotsCheckerUnreachableDoesNotBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	rc := NewRobotsChecker(http.DefaultClient, true)
	allowed, err := rc.IsAllowed("test-agent", srv.URL+"/anything")
	require.NoError(t, err)
	require.True(t, allowed)
}
