package server

import "net/http"

// RequireAPIKey checks the configured header against the set of valid keys.
// Missing header responds 401 with a WWW-Authenticate challenge; an unknown
// key responds 403.
func RequireAPIKey(header string, keys map[string]struct{}) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(header)
			if key == "" {
				w.Header().Set("WWW-Authenticate", "ApiKey")
				respondWithError(w, http.StatusUnauthorized, "API key is missing")
				return
			}
			if _, ok := keys[key]; !ok {
				respondWithError(w, http.StatusForbidden, "Invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
