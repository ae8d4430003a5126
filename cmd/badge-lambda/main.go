package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/weegigs/wee-counter-go/support"
)

func main() {
	ctx := context.Background()

	fn, cleanup, err := live(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to configure badge handler")
		os.Exit(1)
	}
	defer cleanup()

	shutdownTracing, err := support.Tracing(ctx, fn.config)
	if err != nil {
		fn.log.Error().Err(err).Msg("failed to configure tracing")
		os.Exit(1)
	}
	defer func() {
		_ = shutdownTracing(ctx)
	}()

	lambda.Start(fn.handle)
}
