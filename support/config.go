package support

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/weegigs/wee-counter-go/counter"
)

type StoreKind string

const (
	StoreRedis    StoreKind = "redis"
	StoreDynamo   StoreKind = "dynamodb"
	StorePostgres StoreKind = "postgres"
	StoreMemory   StoreKind = "memory"
)

var storeKinds = []StoreKind{StoreRedis, StoreDynamo, StorePostgres, StoreMemory}

type SpriteMode string

const (
	SpritesURL      SpriteMode = "url"
	SpritesEmbedded SpriteMode = "embedded"
)

var spriteModes = []SpriteMode{SpritesURL, SpritesEmbedded}

type TracesExporter string

const (
	TracesNone      TracesExporter = "none"
	TracesConsole   TracesExporter = "console"
	TracesOTLP      TracesExporter = "otlp"
	TracesHoneycomb TracesExporter = "honeycomb"
	TracesJaeger    TracesExporter = "jaeger"
)

var tracesExporters = []TracesExporter{TracesNone, TracesConsole, TracesOTLP, TracesHoneycomb, TracesJaeger}

// Config is read once at start up and never changed afterwards.
type Config struct {
	ListenAddress string
	LogLevel      zerolog.Level
	LogFormat     string

	Secret        string
	CounterName   string
	MaxNameLength int

	Store          StoreKind
	StoreRetries   uint
	RedisURL       string
	RedisToken     string
	DynamoTable    string
	DynamoEndpoint string
	PostgresDSN    string

	Sprites     SpriteMode
	SpriteDir   string
	SpriteTheme string
	Origin      string

	Traces           TracesExporter
	OTLPEndpoint     string
	HoneycombKey     string
	HoneycombDataset string
	JaegerEndpoint   string
}

// Lookup reads a single environment variable.
type Lookup func(key string) (string, bool)

func (lookup Lookup) get(fallback string, names ...string) string {
	for _, name := range names {
		if value, ok := lookup(name); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}

	return fallback
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	return ConfigFrom(os.LookupEnv)
}

func ConfigFrom(lookup Lookup) (Config, error) {
	cfg := Config{
		ListenAddress: lookup.get(":9080", "LISTEN_ADDRESS"),
		LogFormat:     lookup.get("json", "LOG_FORMAT"),

		Secret:      lookup.get("", "CHEAT_SECRET"),
		CounterName: lookup.get(counter.DefaultFixedName, "COUNTER_NAME"),

		Store:          StoreKind(strings.ToLower(lookup.get(string(StoreRedis), "COUNTER_STORE"))),
		RedisURL:       lookup.get("", "REDIS_URL", "UPSTASH_REDIS_REST_URL"),
		RedisToken:     lookup.get("", "REDIS_TOKEN", "UPSTASH_REDIS_REST_TOKEN"),
		DynamoTable:    lookup.get("", "DYNAMODB_COUNTERS_TABLE_NAME"),
		DynamoEndpoint: lookup.get("", "DYNAMODB_ENDPOINT"),
		PostgresDSN:    lookup.get("", "DATABASE_URL"),

		Sprites:     SpriteMode(strings.ToLower(lookup.get(string(SpritesURL), "BADGE_SPRITES"))),
		SpriteDir:   lookup.get("", "BADGE_SPRITE_DIR"),
		SpriteTheme: lookup.get("3d-num", "BADGE_SPRITE_THEME"),
		Origin:      lookup.get("", "BADGE_ORIGIN"),

		Traces:           TracesExporter(strings.ToLower(lookup.get(string(TracesNone), "OTEL_TRACES_EXPORTER"))),
		OTLPEndpoint:     lookup.get("", "OTEL_EXPORTER_OTLP_ENDPOINT"),
		HoneycombKey:     lookup.get("", "HONEYCOMB_API_KEY"),
		HoneycombDataset: lookup.get("wee-counter", "HONEYCOMB_DATASET"),
		JaegerEndpoint:   lookup.get("http://localhost:14268/api/traces", "JAEGER_ENDPOINT"),
	}

	level, err := zerolog.ParseLevel(strings.ToLower(lookup.get("info", "LOG_LEVEL")))
	if err != nil {
		return Config{}, errors.Wrap(err, "invalid LOG_LEVEL")
	}
	cfg.LogLevel = level

	length, err := strconv.Atoi(lookup.get(strconv.Itoa(counter.DefaultMaxNameLength), "COUNTER_MAX_NAME_LENGTH"))
	if err != nil || length <= 0 {
		return Config{}, errors.New("COUNTER_MAX_NAME_LENGTH must be a positive integer")
	}
	cfg.MaxNameLength = length

	retries, err := strconv.ParseUint(lookup.get("3", "COUNTER_STORE_RETRIES"), 10, 32)
	if err != nil {
		return Config{}, errors.New("COUNTER_STORE_RETRIES must be a non-negative integer")
	}
	cfg.StoreRetries = uint(retries)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (cfg Config) validate() error {
	if !lo.Contains(storeKinds, cfg.Store) {
		return errors.Errorf("unsupported COUNTER_STORE %q", cfg.Store)
	}

	switch cfg.Store {
	case StoreRedis:
		if cfg.RedisURL == "" {
			return errors.New("REDIS_URL is not set")
		}
	case StoreDynamo:
		if cfg.DynamoTable == "" {
			return errors.New("DYNAMODB_COUNTERS_TABLE_NAME is not set")
		}
	case StorePostgres:
		if cfg.PostgresDSN == "" {
			return errors.New("DATABASE_URL is not set")
		}
	}

	if !lo.Contains(spriteModes, cfg.Sprites) {
		return errors.Errorf("unsupported BADGE_SPRITES %q", cfg.Sprites)
	}

	if cfg.Sprites == SpritesEmbedded && cfg.SpriteDir == "" {
		return errors.New("BADGE_SPRITE_DIR is required for embedded sprites")
	}

	// url sprites need someone to serve them: this process (BADGE_SPRITE_DIR) or another host (BADGE_ORIGIN)
	if cfg.Sprites == SpritesURL && cfg.SpriteDir == "" && cfg.Origin == "" {
		return errors.New("BADGE_ORIGIN or BADGE_SPRITE_DIR is required for url sprites")
	}

	if !lo.Contains(tracesExporters, cfg.Traces) {
		return errors.Errorf("unsupported OTEL_TRACES_EXPORTER %q", cfg.Traces)
	}

	if cfg.Traces == TracesHoneycomb && cfg.HoneycombKey == "" {
		return errors.New("HONEYCOMB_API_KEY is not set")
	}

	return nil
}
