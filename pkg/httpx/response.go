package httpx

import (
	"encoding/json"
	"net/http"
	"net/url"
)

// WriteJSON writes a JSON response with the given status code.
// Every broker response carries session state, so caching is always disabled.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// RedirectWithQuery issues a 302 to base with the given query parameters merged
// into any query base already carries.
func RedirectWithQuery(w http.ResponseWriter, r *http.Request, base string, params url.Values) error {
	u, err := url.Parse(base)
	if err != nil {
		return err
	}

	q := u.Query()
	for key, values := range params {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	u.RawQuery = q.Encode()

	NoCache(w)
	http.Redirect(w, r, u.String(), http.StatusFound)
	return nil
}
