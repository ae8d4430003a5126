package badgehttp

import (
	"io/fs"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/weegigs/wee-counter-go/badge"
	"github.com/weegigs/wee-counter-go/connectors"
	"github.com/weegigs/wee-counter-go/counter"
)

type HandlerOption func(service *httpService)

func Logger(log *zerolog.Logger) HandlerOption {
	return func(service *httpService) {
		service.log = log
	}
}

// Origin fixes the public origin used for sprite URLs instead of deriving it per request.
func Origin(origin string) HandlerOption {
	return func(service *httpService) {
		service.origin = strings.TrimSuffix(origin, "/")
	}
}

// Sprites serves digit sprites from fsys under /theme/{themeDir}/.
func Sprites(fsys fs.FS, themeDir string) HandlerOption {
	return func(service *httpService) {
		service.sprites = fsys
		service.themeDir = themeDir
	}
}

func NewHandler(counters *counter.Service, options ...HandlerOption) http.Handler {
	service := &httpService{counters: counters}
	for _, option := range options {
		option(service)
	}
	if service.log == nil {
		service.log = &log.Logger
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(service.withLogging)
	r.Use(middleware.Recoverer)
	r.Use(nameSpan)

	r.Method("GET", "/api/counter", service.getBadge())
	r.Method("GET", "/api/counter/", service.getBadge())
	r.Method("GET", "/api/counter/{name}", service.getBadge())
	r.Method("GET", "/api/counter/{name}/value", service.getCount())
	r.Method("GET", "/api/cheat", service.overrideCounter())

	if service.sprites != nil {
		prefix := "/theme/" + service.themeDir + "/"
		r.Method("GET", prefix+"*", http.StripPrefix(prefix, http.FileServer(http.FS(service.sprites))))
	}

	return WithTelemetry(r, "badge-http")
}

type httpService struct {
	log      *zerolog.Logger
	counters *counter.Service
	origin   string
	sprites  fs.FS
	themeDir string
}

func (service *httpService) getBadge() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := counterName(r)
		theme := badge.ParseTheme(r.URL.Query().Get("theme"))

		hit, err := service.counters.Hit(r.Context(), name, theme, service.originFor(r))
		if err != nil {
			service.log.Error().Err(err).Str("name", name).Msg("failed to count hit")

			status, message := connectors.Failure(err)
			svg, renderErr := service.counters.Unavailable(name)
			if renderErr != nil {
				http.Error(w, message, status)
				return
			}

			writeBadge(w, status, svg)
			return
		}

		writeBadge(w, http.StatusOK, hit.SVG)
	}
}

func (service *httpService) getCount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := counterName(r)

		count, err := service.counters.Peek(r.Context(), name)
		if err != nil {
			service.log.Error().Err(err).Str("name", name).Msg("failed to read counter")
			status, message := connectors.Failure(err)
			http.Error(w, message, status)
			return
		}

		body, err := json.MarshalContext(r.Context(), count)
		if err != nil {
			http.Error(w, "failed to encode counter", http.StatusInternalServerError)
			return
		}

		noCache(w)
		w.Header().Set("Content-Type", connectors.ContentTypeJSON)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}

func (service *httpService) overrideCounter() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		noCache(w)

		override, err := service.counters.Override(r.Context(), query.Get("secret"), query.Get("value"))
		if err != nil {
			status, message := connectors.Failure(err)
			if status >= http.StatusInternalServerError {
				service.log.Error().Err(err).Msg("failed to override counter")
			} else {
				service.log.Warn().Int("status", status).Msg("rejected counter override")
			}

			render.Status(r, status)
			render.PlainText(w, r, message)
			return
		}

		service.log.Info().Str("name", override.Name).Int64("value", override.Value).Msg("counter overridden")

		render.Status(r, http.StatusOK)
		render.PlainText(w, r, override.Message())
	}
}

func (service *httpService) originFor(r *http.Request) string {
	if service.origin != "" {
		return service.origin
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	host := r.Host
	if forwarded := r.Header.Get("X-Forwarded-Host"); forwarded != "" {
		host = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	return scheme + "://" + host
}

// counterName is the decoded {name} segment, or "" on the fixed route. chi
// matches against RawPath when it is set and against the decoded Path otherwise.
func counterName(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name
	}

	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}

	return name
}

func noCache(w http.ResponseWriter) {
	for header, value := range connectors.NoCacheHeaders() {
		w.Header().Set(header, value)
	}
}

func writeBadge(w http.ResponseWriter, status int, svg []byte) {
	noCache(w)
	w.Header().Set("Content-Type", connectors.ContentTypeSVG)
	w.WriteHeader(status)
	_, _ = w.Write(svg)
}
