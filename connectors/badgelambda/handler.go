package badgelambda

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/weegigs/wee-counter-go/badge"
	"github.com/weegigs/wee-counter-go/connectors"
	"github.com/weegigs/wee-counter-go/counter"
)

type GatewayHandler = func(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

type HandlerOption func(handler *gatewayHandler)

func Logger(log *zerolog.Logger) HandlerOption {
	return func(handler *gatewayHandler) {
		handler.log = log
	}
}

func Origin(origin string) HandlerOption {
	return func(handler *gatewayHandler) {
		handler.origin = strings.TrimSuffix(origin, "/")
	}
}

// NewHandler serves the badge routes from an API Gateway HTTP API ($default route).
// Sprite URLs are built from the Origin option since the function serves no sprite files.
func NewHandler(counters *counter.Service, options ...HandlerOption) GatewayHandler {
	handler := &gatewayHandler{counters: counters}
	for _, option := range options {
		option(handler)
	}
	if handler.log == nil {
		handler.log = &log.Logger
	}

	return handler.handle
}

type gatewayHandler struct {
	log      *zerolog.Logger
	counters *counter.Service
	origin   string
}

const counterPrefix = "/api/counter"

func (h *gatewayHandler) handle(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if method := event.RequestContext.HTTP.Method; method != "" && method != http.MethodGet {
		return text(http.StatusMethodNotAllowed, "Method Not Allowed"), nil
	}

	path := event.RawPath
	switch {
	case path == "/api/cheat":
		return h.override(ctx, event), nil
	case path == counterPrefix || path == counterPrefix+"/":
		return h.badge(ctx, event, ""), nil
	case strings.HasPrefix(path, counterPrefix+"/"):
		segments := strings.Split(strings.TrimPrefix(path, counterPrefix+"/"), "/")
		switch {
		case len(segments) == 1:
			return h.badge(ctx, event, unescape(segments[0])), nil
		case len(segments) == 2 && segments[1] == "value":
			return h.peek(ctx, unescape(segments[0])), nil
		}
	}

	return text(http.StatusNotFound, "Not Found"), nil
}

func (h *gatewayHandler) badge(ctx context.Context, event events.APIGatewayV2HTTPRequest, name string) events.APIGatewayV2HTTPResponse {
	theme := badge.ParseTheme(event.QueryStringParameters["theme"])

	hit, err := h.counters.Hit(ctx, name, theme, h.origin)
	if err != nil {
		h.log.Error().Err(err).Str("name", name).Msg("failed to count hit")

		status, message := connectors.Failure(err)
		svg, renderErr := h.counters.Unavailable(name)
		if renderErr != nil {
			return text(status, message)
		}
		return svgResponse(status, svg)
	}

	return svgResponse(http.StatusOK, hit.SVG)
}

func (h *gatewayHandler) peek(ctx context.Context, name string) events.APIGatewayV2HTTPResponse {
	count, err := h.counters.Peek(ctx, name)
	if err != nil {
		h.log.Error().Err(err).Str("name", name).Msg("failed to read counter")
		return text(connectors.Failure(err))
	}

	body, err := json.MarshalContext(ctx, count)
	if err != nil {
		return text(http.StatusInternalServerError, "failed to encode counter")
	}

	return response(http.StatusOK, connectors.ContentTypeJSON, string(body))
}

func (h *gatewayHandler) override(ctx context.Context, event events.APIGatewayV2HTTPRequest) events.APIGatewayV2HTTPResponse {
	query := event.QueryStringParameters

	override, err := h.counters.Override(ctx, query["secret"], query["value"])
	if err != nil {
		status, message := connectors.Failure(err)
		if status >= http.StatusInternalServerError {
			h.log.Error().Err(err).Msg("failed to override counter")
		} else {
			h.log.Warn().Int("status", status).Msg("rejected counter override")
		}
		return text(status, message)
	}

	h.log.Info().Str("name", override.Name).Int64("value", override.Value).Msg("counter overridden")
	return text(http.StatusOK, override.Message())
}

func unescape(segment string) string {
	if decoded, err := url.PathUnescape(segment); err == nil {
		return decoded
	}

	return segment
}

func svgResponse(status int, svg []byte) events.APIGatewayV2HTTPResponse {
	return response(status, connectors.ContentTypeSVG, string(svg))
}

func text(status int, message string) events.APIGatewayV2HTTPResponse {
	return response(status, connectors.ContentTypeText, message)
}

func response(status int, contentType string, body string) events.APIGatewayV2HTTPResponse {
	headers := connectors.NoCacheHeaders()
	headers["Content-Type"] = contentType

	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       body,
	}
}
