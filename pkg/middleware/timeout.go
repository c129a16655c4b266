package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Timeout bounds handler execution. When the deadline fires before the
// handler writes anything, the client gets a 504 and any late writes from
// the handler are discarded.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			tw := &timeoutWriter{ResponseWriter: w}
			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(tw, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				if tw.abandon() {
					slog.Warn("request timed out",
						"method", r.Method, "path", r.URL.Path, "timeout", timeout)
					http.Error(w, `{"error":"request timeout"}`, http.StatusGatewayTimeout)
				}
			}
		})
	}
}

// timeoutWriter serializes access so the handler goroutine and the timeout
// path never write the same response concurrently.
type timeoutWriter struct {
	http.ResponseWriter
	mu        sync.Mutex
	wrote     bool
	abandoned bool
}

// abandon marks the response as taken over by the timeout path. It reports
// whether the handler had not yet written anything.
func (tw *timeoutWriter) abandon() bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.wrote {
		return false
	}
	tw.abandoned = true
	return true
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.abandoned {
		return
	}
	tw.wrote = true
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.abandoned {
		return len(b), nil
	}
	tw.wrote = true
	return tw.ResponseWriter.Write(b)
}
