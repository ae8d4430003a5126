//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/weegigs/wee-counter-go/support"
)

func live(ctx context.Context) (*application, func(), error) {
	panic(wire.Build(support.Server, newApplication))
}
