package badgelambda

import (
	"context"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weegigs/wee-counter-go/badge"
	"github.com/weegigs/wee-counter-go/counter"
	"github.com/weegigs/wee-counter-go/kv"
	"github.com/weegigs/wee-counter-go/stores/memory"
)

func request(path string, query map[string]string) events.APIGatewayV2HTTPRequest {
	event := events.APIGatewayV2HTTPRequest{
		RawPath:               path,
		QueryStringParameters: query,
	}
	event.RequestContext.HTTP.Method = "GET"
	return event
}

func newHandler(store kv.Store) GatewayHandler {
	service := counter.NewService(store, badge.NewRenderer(), counter.Settings{FixedName: "fixed", Secret: "right"})
	logger := zerolog.Nop()
	return NewHandler(service, Logger(&logger), Origin("https://badges.example/"))
}

func TestGatewayHandler(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	handle := newHandler(store)

	t.Run("serves incrementing badges", func(t *testing.T) {
		first, err := handle(ctx, request("/api/counter/demo", nil))
		require.Nil(t, err)
		assert.Equal(t, 200, first.StatusCode)
		assert.Equal(t, "image/svg+xml; charset=utf-8", first.Headers["Content-Type"])
		assert.Equal(t, "no-store, no-cache, must-revalidate, max-age=0", first.Headers["Cache-Control"])
		assert.Contains(t, first.Body, ">1</text>")

		second, err := handle(ctx, request("/api/counter/demo", nil))
		require.Nil(t, err)
		assert.Contains(t, second.Body, ">2</text>")
	})

	t.Run("serves the fixed counter with sprites from the configured origin", func(t *testing.T) {
		response, err := handle(ctx, request("/api/counter", map[string]string{"theme": "3d-num"}))
		require.Nil(t, err)
		assert.Equal(t, 200, response.StatusCode)
		assert.Contains(t, response.Body, `href="https://badges.example/theme/3d-num/1.gif"`)
	})

	t.Run("decodes names", func(t *testing.T) {
		_, err := handle(ctx, request("/api/counter/hello%20world", nil))
		require.Nil(t, err)

		value, err := store.Get(ctx, counter.Key("hello world"))
		require.Nil(t, err)
		assert.Equal(t, int64(1), value)

		_, err = handle(ctx, request("/api/counter/a%2541", nil))
		require.Nil(t, err)

		value, err = store.Get(ctx, counter.Key("a%41"))
		require.Nil(t, err)
		assert.Equal(t, int64(1), value)
	})

	t.Run("overrides the fixed counter", func(t *testing.T) {
		response, err := handle(ctx, request("/api/cheat", map[string]string{"secret": "right", "value": "42"}))
		require.Nil(t, err)
		assert.Equal(t, 200, response.StatusCode)
		assert.Equal(t, `Counter for "fixed" set to 42`, response.Body)

		next, err := handle(ctx, request("/api/counter", nil))
		require.Nil(t, err)
		assert.Contains(t, next.Body, ">43</text>")
	})

	t.Run("forbids wrong secrets", func(t *testing.T) {
		response, err := handle(ctx, request("/api/cheat", map[string]string{"secret": "wrong", "value": "1"}))
		require.Nil(t, err)
		assert.Equal(t, 403, response.StatusCode)
		assert.Equal(t, "Forbidden", response.Body)
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		response, err := handle(ctx, request("/api/cheat", map[string]string{"secret": "right", "value": "-5"}))
		require.Nil(t, err)
		assert.Equal(t, 400, response.StatusCode)
		assert.Equal(t, "Invalid value", response.Body)
	})

	t.Run("peeks at counters", func(t *testing.T) {
		response, err := handle(ctx, request("/api/counter/demo/value", nil))
		require.Nil(t, err)
		assert.Equal(t, 200, response.StatusCode)
		assert.JSONEq(t, `{"name":"demo","count":2}`, response.Body)
	})

	t.Run("reports unknown routes", func(t *testing.T) {
		response, err := handle(ctx, request("/api/unknown", nil))
		require.Nil(t, err)
		assert.Equal(t, 404, response.StatusCode)

		response, err = handle(ctx, request("/api/counter/a/b/c", nil))
		require.Nil(t, err)
		assert.Equal(t, 404, response.StatusCode)
	})

	t.Run("only answers gets", func(t *testing.T) {
		event := request("/api/cheat", map[string]string{"secret": "right", "value": "1"})
		event.RequestContext.HTTP.Method = "POST"

		response, err := handle(ctx, event)
		require.Nil(t, err)
		assert.Equal(t, 405, response.StatusCode)
	})
}
