package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	apperrors "skybridge/pkg/errors"
)

// timeoutWriter drops writes once the deadline has fired and the timeout
// response has been sent.
type timeoutWriter struct {
	http.ResponseWriter
	mu       sync.Mutex
	timedOut bool
	written  bool
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.timedOut || tw.written {
		return
	}
	tw.written = true
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	tw.written = true
	return tw.ResponseWriter.Write(b)
}

func (tw *timeoutWriter) timeout(w http.ResponseWriter, body []byte) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	tw.timedOut = true
	if tw.written {
		return
	}
	tw.written = true
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusGatewayTimeout)
	_, _ = w.Write(body)
}

// RequestTimeout bounds the request context. Repositories derive their
// per-call deadlines from it, so a slow Mongo call is cancelled rather than
// left running after the client has been answered.
func RequestTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	body := apperrors.Timeout("Request timeout").ToJSON()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			r = r.WithContext(ctx)
			tw := &timeoutWriter{ResponseWriter: w}

			done := make(chan struct{})
			panicked := make(chan any, 1)
			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicked <- p
					}
				}()
				next.ServeHTTP(tw, r)
				close(done)
			}()

			select {
			case <-done:
				if ctx.Err() == context.DeadlineExceeded {
					tw.timeout(w, body)
				}
			case p := <-panicked:
				// re-raise on the serving goroutine so Recovery sees it
				panic(p)
			case <-ctx.Done():
				tw.timeout(w, body)
			}
		})
	}
}
