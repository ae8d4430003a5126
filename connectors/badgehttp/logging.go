package badgehttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

func (service *httpService) withLogging(h http.Handler) http.Handler {
	logFn := func(rw http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(rw, r.ProtoMajor)

		h.ServeHTTP(ww, r)

		// path only: the override secret travels in the query string
		service.log.Info().
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	}
	return http.HandlerFunc(logFn)
}
