package share

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"trophyangler/internal/cache"
	"trophyangler/internal/domain"
	"trophyangler/internal/metrics"
	"trophyangler/internal/pkg/logctx"
	sharemeta "trophyangler/internal/share"
)

// TrophyReader is the catalog read path. It returns ErrForbidden for
// trophies the caller may not see.
type TrophyReader interface {
	Get(ctx context.Context, caller domain.Caller, id string) (*domain.Trophy, error)
}

type Service struct {
	trophies  TrophyReader
	generator *sharemeta.Generator
	cache     cache.Cache
	ttl       time.Duration
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.ttl = ttl
	}
}

func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

func NewService(trophies TrophyReader, generator *sharemeta.Generator, opts ...Option) *Service {
	s := &Service{trophies: trophies, generator: generator, cache: cache.Noop{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Metadata returns the encoded share bundle of a readable trophy. Bundles
// are cached per trophy revision, so an update never serves a stale entry.
func (s *Service) Metadata(ctx context.Context, caller domain.Caller, id string) (json.RawMessage, error) {
	t, err := s.trophies.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	key := cacheKey(t)
	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		s.count("error")
		logctx.From(ctx).Warn("share cache read failed", "trophy_id", id, "error", err)
	} else if ok {
		s.count("hit")
		return raw, nil
	}
	s.count("miss")

	raw, err := s.generator.Generate(t).JSON()
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		logctx.From(ctx).Warn("share cache write failed", "trophy_id", id, "error", err)
	}
	return raw, nil
}

// HTMLHead renders the crawler head fragment. It is cheap enough to skip the cache.
func (s *Service) HTMLHead(ctx context.Context, caller domain.Caller, id string) ([]byte, error) {
	t, err := s.trophies.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return s.generator.Generate(t).HTMLHead()
}

func (s *Service) count(result string) {
	if s.metrics != nil {
		s.metrics.ShareCache.WithLabelValues(result).Inc()
	}
}

func cacheKey(t *domain.Trophy) string {
	return fmt.Sprintf("share:%s:%d", t.ID, t.UpdatedAt.UnixMicro())
}
