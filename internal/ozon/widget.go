package ozon

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// response is the upstream page-rendering envelope. Every UI region arrives
// as an independently serialized widget keyed by a semantic name plus an
// opaque version/hash suffix (e.g. "searchResultsV2-3831928-default-2").
type response struct {
	WidgetStates map[string]json.RawMessage `json:"widgetStates"`
	Shared       json.RawMessage            `json:"shared"`
	SEO          json.RawMessage            `json:"seo"`
	NextPage     string                     `json:"nextPage,omitempty"`
}

func parseResponse(data []byte) (*response, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty response body")
	}
	var resp response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse page envelope: %w", err)
	}
	return &resp, nil
}

// Widgets wraps a widget map and resolves concerns against it by prioritized
// key-substring lookup.
type Widgets struct {
	states map[string]json.RawMessage
	log    zerolog.Logger
}

func newWidgets(states map[string]json.RawMessage, log zerolog.Logger) *Widgets {
	if states == nil {
		states = map[string]json.RawMessage{}
	}
	return &Widgets{states: states, log: log}
}

// Locate returns the decoded widget whose key contains one of the candidate
// substrings. Candidate order encodes priority. Among keys matching the same
// candidate the lexicographically smallest wins, so a fixed input resolves to
// a fixed widget no matter how the map iterates. A malformed widget body is
// logged and treated as absent.
func (w *Widgets) Locate(candidates ...string) (json.RawMessage, bool) {
	keys := make([]string, 0, len(w.states))
	for k := range w.states {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, candidate := range candidates {
		for _, key := range keys {
			if !strings.Contains(key, candidate) {
				continue
			}
			decoded, ok := decodeFragment(w.states[key])
			if !ok {
				w.log.Warn().Str("widget", key).Msg("malformed widget body, treating as absent")
				continue
			}
			return decoded, true
		}
	}
	return nil, false
}

// LocateInto decodes the widget for the given candidates into v. Returns
// false when no widget matches or the match does not fit v's shape.
func (w *Widgets) LocateInto(v any, candidates ...string) bool {
	raw, ok := w.Locate(candidates...)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		w.log.Warn().Err(err).Strs("candidates", candidates).Msg("widget shape mismatch")
		return false
	}
	return true
}

// Merge copies entries matching the candidate substrings from other into w.
// Used to graft the second-layout description widget onto the primary map.
func (w *Widgets) Merge(other *Widgets, candidates ...string) {
	if other == nil {
		return
	}
	for key, raw := range other.states {
		for _, candidate := range candidates {
			if strings.Contains(key, candidate) {
				w.states[key] = raw
				break
			}
		}
	}
}

// decodeFragment normalizes a widget value: the upstream serializes most
// widgets as JSON-encoded strings but ships some already decoded. Returns
// the inner JSON either way, or false when neither form is valid.
func decodeFragment(raw json.RawMessage) (json.RawMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, false
		}
		decoded := json.RawMessage(inner)
		if !json.Valid(decoded) {
			return nil, false
		}
		return decoded, true
	}
	if !json.Valid(raw) {
		return nil, false
	}
	return raw, true
}
