package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/weegigs/wee-counter-go/support"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := live(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	shutdownTracing, err := support.Tracing(ctx, app.config)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              app.config.ListenAddress,
		Handler:           app.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		app.log.Info().Str("address", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		app.log.Info().Msg("shutting down")

		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdown); err != nil {
			return err
		}
		return shutdownTracing(shutdown)
	})

	return eg.Wait()
}

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("badge server failed")
		os.Exit(1)
	}
}
