package middleware

import (
	"fmt"
	"net/http"
)

// QueryLengthLimit rejects requests whose raw query string exceeds maxBytes,
// before any parsing happens. Oversized queries get a 414 with a JSON body.
func QueryLengthLimit(maxBytes int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.URL.RawQuery) > maxBytes {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestURITooLong)
				fmt.Fprintf(w, `{"error":"query string too long (max %d chars)"}`, maxBytes)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
