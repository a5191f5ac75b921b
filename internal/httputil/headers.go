package httputil

import "net/http"

// HeaderSet converts a configured header map into http.Header form,
// preserving canonical key handling.
func HeaderSet(headers map[string]string) http.Header {
	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}
	return h
}
