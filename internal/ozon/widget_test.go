package ozon

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func testWidgets(states map[string]json.RawMessage) *Widgets {
	return newWidgets(states, zerolog.Nop())
}

func TestLocateStringEncodedAndInline(t *testing.T) {
	w := testWidgets(map[string]json.RawMessage{
		"webPrice-3121879-default-1":   json.RawMessage(`"{\"price\":\"100 ₽\"}"`),
		"webGallery-3076677-default-1": json.RawMessage(`{"images":[]}`),
	})

	raw, ok := w.Locate("webPrice")
	require.True(t, ok)
	require.JSONEq(t, `{"price":"100 ₽"}`, string(raw))

	raw, ok = w.Locate("webGallery")
	require.True(t, ok)
	require.JSONEq(t, `{"images":[]}`, string(raw))
}

func TestLocateCandidatePriority(t *testing.T) {
	w := testWidgets(map[string]json.RawMessage{
		"searchResultsV3-100": json.RawMessage(`{"v":3}`),
		"searchResultsV2-200": json.RawMessage(`{"v":2}`),
	})

	// Candidate order encodes priority, not key order.
	raw, ok := w.Locate("searchResultsV2", "searchResultsV3")
	require.True(t, ok)
	require.JSONEq(t, `{"v":2}`, string(raw))

	raw, ok = w.Locate("searchResultsV3", "searchResultsV2")
	require.True(t, ok)
	require.JSONEq(t, `{"v":3}`, string(raw))
}

func TestLocateDeterministicAcrossVersionSuffixes(t *testing.T) {
	w := testWidgets(map[string]json.RawMessage{
		"webPrice-9999-default-2": json.RawMessage(`{"which":"second"}`),
		"webPrice-1111-default-1": json.RawMessage(`{"which":"first"}`),
	})

	// The lexicographically smallest matching key wins every time.
	for range 20 {
		raw, ok := w.Locate("webPrice")
		require.True(t, ok)
		require.JSONEq(t, `{"which":"first"}`, string(raw))
	}
}

func TestLocateMalformedFallsThrough(t *testing.T) {
	w := testWidgets(map[string]json.RawMessage{
		"webDescription-1": json.RawMessage(`"{broken json"`),
		"webDescription-2": json.RawMessage(`"{\"ok\":true}"`),
	})

	raw, ok := w.Locate("webDescription")
	require.True(t, ok)
	require.JSONEq(t, `{"ok":true}`, string(raw))
}

func TestLocateAbsent(t *testing.T) {
	w := testWidgets(map[string]json.RawMessage{
		"webGallery-1": json.RawMessage(`{}`),
	})

	_, ok := w.Locate("webPrice")
	require.False(t, ok)

	_, ok = testWidgets(nil).Locate("anything")
	require.False(t, ok)
}

func TestLocateInto(t *testing.T) {
	w := testWidgets(map[string]json.RawMessage{
		"webCurrentSeller-1": json.RawMessage(`{"name":"Shoes Store"}`),
	})

	var seller struct {
		Name string `json:"name"`
	}
	require.True(t, w.LocateInto(&seller, "webCurrentSeller"))
	require.Equal(t, "Shoes Store", seller.Name)

	// Shape mismatch is absent, not an error.
	var wrong []int
	require.False(t, w.LocateInto(&wrong, "webCurrentSeller"))
}

func TestMergeCopiesOnlyMatchingKeys(t *testing.T) {
	primary := testWidgets(map[string]json.RawMessage{
		"webPrice-1": json.RawMessage(`{}`),
	})
	secondary := testWidgets(map[string]json.RawMessage{
		"webDescription-7654-pdp-1": json.RawMessage(`{"richAnnotation":"<p>text</p>"}`),
		"webGallery-1":              json.RawMessage(`{}`),
	})

	primary.Merge(secondary, "webDescription")

	_, ok := primary.Locate("webDescription")
	require.True(t, ok)
	_, ok = primary.Locate("webGallery")
	require.False(t, ok)
}

func TestDecodeFragment(t *testing.T) {
	cases := []struct {
		name string
		in   string
		ok   bool
	}{
		{"encoded object", `"{\"a\":1}"`, true},
		{"inline object", `{"a":1}`, true},
		{"inline array", `[1,2]`, true},
		{"encoded garbage", `"not json"`, false},
		{"raw garbage", `not json`, false},
		{"empty", ``, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := decodeFragment(json.RawMessage(tc.in))
			require.Equal(t, tc.ok, ok)
		})
	}
}
