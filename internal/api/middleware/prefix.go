package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

// StripPrefix removes the first matching deployment prefix from the request
// path before routing. Paths without a known prefix pass through unchanged.
func StripPrefix(prefixes []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path, ok := trimPrefix(r.URL.Path, prefixes)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			r2 := new(http.Request)
			*r2 = *r
			r2.URL = new(url.URL)
			*r2.URL = *r.URL
			r2.URL.Path = path
			r2.URL.RawPath = ""
			next.ServeHTTP(w, r2)
		})
	}
}

func trimPrefix(path string, prefixes []string) (string, bool) {
	for _, p := range prefixes {
		if path == p {
			return "/", true
		}
		if strings.HasPrefix(path, p+"/") {
			return path[len(p):], true
		}
	}
	return path, false
}
