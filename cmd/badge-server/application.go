package main

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/weegigs/wee-counter-go/support"
)

type application struct {
	config  support.Config
	log     *zerolog.Logger
	handler http.Handler
}

func newApplication(config support.Config, log *zerolog.Logger, handler http.Handler) *application {
	return &application{config: config, log: log, handler: handler}
}
