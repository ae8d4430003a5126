package support

import (
	"context"
	"net/http"
	"os"

	"github.com/google/wire"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/weegigs/wee-counter-go/badge"
	"github.com/weegigs/wee-counter-go/connectors/badgehttp"
	"github.com/weegigs/wee-counter-go/connectors/badgelambda"
	"github.com/weegigs/wee-counter-go/counter"
	"github.com/weegigs/wee-counter-go/kv"
	"github.com/weegigs/wee-counter-go/stores/ds"
	"github.com/weegigs/wee-counter-go/stores/memory"
	"github.com/weegigs/wee-counter-go/stores/pg"
	"github.com/weegigs/wee-counter-go/stores/redis"
)

var Counters = wire.NewSet(
	LoadConfig,
	Logger,
	OpenStore,
	Renderer,
	CounterSettings,
	counter.NewService,
)

var Server = wire.NewSet(Counters, HTTPHandler)

var Serverless = wire.NewSet(Counters, GatewayHandler)

// OpenStore connects to the configured backend. The returned cleanup releases its connections.
func OpenStore(ctx context.Context, cfg Config, log *zerolog.Logger) (kv.Store, func(), error) {
	var store kv.Store
	cleanup := func() {}

	switch cfg.Store {
	case StoreMemory:
		log.Warn().Msg("counters are kept in memory and will not survive a restart")
		store = memory.NewStore()
	case StoreRedis:
		client, err := redis.Client(cfg.RedisURL, cfg.RedisToken)
		if err != nil {
			return nil, nil, err
		}
		s := redis.NewStore(client)
		store, cleanup = s, closer(s.Close, log)
	case StoreDynamo:
		var s *ds.CounterStore
		var err error
		if cfg.DynamoEndpoint != "" {
			s, err = ds.EndpointStore(ctx, cfg.DynamoEndpoint, cfg.DynamoTable)
		} else {
			s, err = ds.LiveStore(ctx, cfg.DynamoTable)
		}
		if err != nil {
			return nil, nil, err
		}
		store = s
	case StorePostgres:
		s, err := pg.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		store, cleanup = s, closer(s.Close, log)
	default:
		return nil, nil, errors.Errorf("unsupported store %q", cfg.Store)
	}

	log.Info().Str("store", string(cfg.Store)).Uint("retries", cfg.StoreRetries).Msg("counter store ready")

	return kv.WithRetry(store, kv.Attempts(cfg.StoreRetries)), cleanup, nil
}

func closer(close func() error, log *zerolog.Logger) func() {
	return func() {
		if err := close(); err != nil {
			log.Warn().Err(err).Msg("failed to close counter store")
		}
	}
}

func Renderer(cfg Config) (*badge.Renderer, error) {
	if cfg.Sprites == SpritesEmbedded {
		sprites, err := badge.LoadSprites(os.DirFS(cfg.SpriteDir))
		if err != nil {
			return nil, err
		}
		return badge.NewRenderer(badge.WithSprites(sprites)), nil
	}

	return badge.NewRenderer(badge.WithSprites(badge.URLSprites{ThemeDir: cfg.SpriteTheme})), nil
}

func CounterSettings(cfg Config) counter.Settings {
	return counter.Settings{
		FixedName:     cfg.CounterName,
		MaxNameLength: cfg.MaxNameLength,
		Secret:        cfg.Secret,
	}
}

func HTTPHandler(counters *counter.Service, cfg Config, log *zerolog.Logger) http.Handler {
	options := []badgehttp.HandlerOption{badgehttp.Logger(log)}
	if cfg.Origin != "" {
		options = append(options, badgehttp.Origin(cfg.Origin))
	}
	if cfg.SpriteDir != "" {
		options = append(options, badgehttp.Sprites(os.DirFS(cfg.SpriteDir), cfg.SpriteTheme))
	}

	return badgehttp.NewHandler(counters, options...)
}

// GatewayHandler serves the badge routes from Lambda. The function cannot serve
// sprite files, so url sprites must come from BADGE_ORIGIN.
func GatewayHandler(counters *counter.Service, cfg Config, log *zerolog.Logger) (badgelambda.GatewayHandler, error) {
	options := []badgelambda.HandlerOption{badgelambda.Logger(log)}
	if cfg.Origin != "" {
		options = append(options, badgelambda.Origin(cfg.Origin))
	} else if cfg.Sprites == SpritesURL {
		return nil, errors.New("BADGE_ORIGIN is required for url sprites in lambda")
	}

	return badgelambda.NewHandler(counters, options...), nil
}
