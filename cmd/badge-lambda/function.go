package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"

	"github.com/weegigs/wee-counter-go/connectors/badgelambda"
	"github.com/weegigs/wee-counter-go/support"
)

type function struct {
	config  support.Config
	log     *zerolog.Logger
	handler badgelambda.GatewayHandler
}

func newFunction(config support.Config, log *zerolog.Logger, handler badgelambda.GatewayHandler) *function {
	return &function{config: config, log: log, handler: handler}
}

// handle runs one invocation and exports its spans before the runtime freezes the sandbox.
func (f *function) handle(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	response, err := f.handler(ctx, event)

	if flushErr := support.FlushTracing(ctx); flushErr != nil {
		f.log.Warn().Err(flushErr).Msg("failed to flush spans")
	}

	return response, err
}
