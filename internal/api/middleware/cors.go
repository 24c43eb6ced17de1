package middleware

import "net/http"

const (
	corsAllowHeaders = "authorization, x-client-info, apikey, content-type, x-api-key"
	corsAllowMethods = "GET, OPTIONS"
)

// CORS allows any origin. Preflight requests are answered with the headers only.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		h.Set("Access-Control-Allow-Methods", corsAllowMethods)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
