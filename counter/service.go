package counter

import (
	"context"
	"crypto/subtle"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/weegigs/wee-counter-go/badge"
	"github.com/weegigs/wee-counter-go/kv"
)

const tracerName = "counter-service"

// Settings is the read-only configuration of a Service.
type Settings struct {
	// FixedName is the counter served without a name and the only counter overrides can touch.
	FixedName     string
	MaxNameLength int
	Secret        string
}

type Service struct {
	store    kv.Store
	renderer *badge.Renderer
	settings Settings
}

func NewService(store kv.Store, renderer *badge.Renderer, settings Settings) *Service {
	if settings.FixedName == "" {
		settings.FixedName = DefaultFixedName
	}

	if settings.MaxNameLength <= 0 {
		settings.MaxNameLength = DefaultMaxNameLength
	}

	return &Service{store: store, renderer: renderer, settings: settings}
}

func (s *Service) FixedName() string {
	return s.settings.FixedName
}

// ResolveName maps a requested name onto the counter it addresses.
func (s *Service) ResolveName(requested string) string {
	if requested == "" {
		return s.settings.FixedName
	}

	return truncate(requested, s.settings.MaxNameLength)
}

type Hit struct {
	Name  string
	Count int64
	Theme badge.Theme
	SVG   []byte
}

// Hit counts one visit to the named counter and renders the resulting badge.
func (s *Service) Hit(ctx context.Context, name string, theme badge.Theme, origin string) (*Hit, error) {
	name = s.ResolveName(name)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "hit counter", trace.WithAttributes(
		attribute.String("counter.name", name),
		attribute.String("badge.theme", theme.String()),
	))
	defer span.End()

	key := Key(name)
	count, err := s.store.Incr(ctx, key)
	if err != nil {
		return nil, failed(span, &StoreError{Op: "incr", Key: key, Err: err})
	}

	svg, err := s.renderer.Render(badge.Request{Name: name, Count: count, Theme: theme, Origin: origin})
	if err != nil {
		return nil, failed(span, err)
	}

	span.SetAttributes(attribute.Int64("counter.count", count))

	return &Hit{Name: name, Count: count, Theme: theme, SVG: svg}, nil
}

// Unavailable renders the placeholder badge used when the store cannot be reached.
func (s *Service) Unavailable(name string) ([]byte, error) {
	return s.renderer.Unavailable(s.ResolveName(name))
}

type Count struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Peek reads a counter without counting a visit. Counters that were never hit read as zero.
func (s *Service) Peek(ctx context.Context, name string) (*Count, error) {
	name = s.ResolveName(name)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "peek counter", trace.WithAttributes(
		attribute.String("counter.name", name),
	))
	defer span.End()

	key := Key(name)
	count, err := s.store.Get(ctx, key)
	if err != nil && !kv.IsNotFound(err) {
		return nil, failed(span, &StoreError{Op: "get", Key: key, Err: err})
	}

	return &Count{Name: name, Count: count}, nil
}

type Override struct {
	Name  string
	Value int64
}

func (o Override) Message() string {
	return fmt.Sprintf("Counter for \"%s\" set to %d", o.Name, o.Value)
}

// Override sets the fixed counter to an absolute value. Nothing is written unless the
// secret matches and the value is a non-negative integer.
func (s *Service) Override(ctx context.Context, secret string, value string) (*Override, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "override counter", trace.WithAttributes(
		attribute.String("counter.name", s.settings.FixedName),
	))
	defer span.End()

	if !s.authorized(secret) {
		span.SetStatus(codes.Error, ErrForbidden.Error())
		return nil, ErrForbidden
	}

	parsed, err := ParseValue(value)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	key := Key(s.settings.FixedName)
	if err := s.store.Set(ctx, key, parsed); err != nil {
		return nil, failed(span, &StoreError{Op: "set", Key: key, Err: err})
	}

	return &Override{Name: s.settings.FixedName, Value: parsed}, nil
}

func (s *Service) authorized(secret string) bool {
	if secret == "" || s.settings.Secret == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(secret), []byte(s.settings.Secret)) == 1
}

func failed(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
