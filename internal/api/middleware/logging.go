package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// probePaths are polled by supervisors and scrapers; logging them at info
// would drown out relay traffic.
var probePaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// Logger emits one line per completed request. Probe endpoints log at
// debug so production logs stay readable.
func Logger(logger zerolog.Logger) func(http.Handler) http.Handler {
	log := logger.With().Str("component", "http").Logger()

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			evt := log.Info()
			if probePaths[r.URL.Path] {
				evt = log.Debug()
			}
			evt.
				Str("request_id", chimw.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("latency", time.Since(start)).
				Str("remote", r.RemoteAddr).
				Msg("request")
		}
		return http.HandlerFunc(fn)
	}
}
