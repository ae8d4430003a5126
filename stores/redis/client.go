package redis

import (
	"net/url"
	"time"

	"github.com/pkg/errors"
	rdb "github.com/redis/go-redis/v9"
)

const upstashPort = "6379"

// Options builds client options from a connection URL and an optional token.
//
// Plain redis:// and rediss:// URLs are used as given. An https:// URL is taken to be
// an Upstash REST endpoint and is mapped onto the TLS redis endpoint of the same host,
// which accepts the REST token as the password of the "default" user.
func Options(address string, token string) (*rdb.Options, error) {
	if address == "" {
		return nil, errors.New("redis url is not set")
	}

	parsed, err := url.Parse(address)
	if err != nil {
		return nil, errors.Wrap(err, "invalid redis url")
	}

	if parsed.Scheme == "https" {
		parsed = &url.URL{
			Scheme: "rediss",
			User:   url.User("default"),
			Host:   parsed.Hostname() + ":" + upstashPort,
		}
	}

	options, err := rdb.ParseURL(parsed.String())
	if err != nil {
		return nil, errors.Wrap(err, "invalid redis url")
	}

	if token != "" {
		options.Password = token
	}

	options.DialTimeout = 2 * time.Second
	options.ReadTimeout = 2 * time.Second
	options.WriteTimeout = 2 * time.Second
	options.PoolTimeout = 5 * time.Second

	return options, nil
}

func Client(address string, token string) (rdb.UniversalClient, error) {
	options, err := Options(address, token)
	if err != nil {
		return nil, err
	}

	return rdb.NewClient(options), nil
}
