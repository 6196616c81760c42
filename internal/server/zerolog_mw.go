package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zerologMiddleware logs one line per request, tagged with the chi request
// id and, for dispatched requests, the target device.
func zerologMiddleware(logger *zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: 200}
			next.ServeHTTP(ww, r)
			ev := logger.Info().
				Str("reqId", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.status).
				Dur("duration", time.Since(start))
			if id := dispatchTarget(r.URL.Path); id != "" {
				ev = ev.Str("device", id)
			}
			ev.Msg("http")
		})
	}
}

// dispatchTarget extracts the device id from /api/d/{deviceID}/... paths.
func dispatchTarget(p string) string {
	rest, ok := strings.CutPrefix(p, "/api/d/")
	if !ok {
		return ""
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
