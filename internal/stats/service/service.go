package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"liaison/internal/platform/metrics"
	"liaison/internal/platform/redis"
	dErrors "liaison/pkg/domain-errors"
)

const cacheKey = "liaison:stats"

// defaultCacheTTL keeps the aggregate counts slightly stale rather than
// hammering three COUNT queries on every landing-page load.
const defaultCacheTTL = 30 * time.Second

// ParticipantCounter counts owners with recorded activity.
type ParticipantCounter interface {
	Count(ctx context.Context) (int64, error)
}

// DeclarationCounter counts active declarations.
type DeclarationCounter interface {
	CountActive(ctx context.Context) (int64, error)
}

// MatchCounter counts matches ever created.
type MatchCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Stats is the public aggregate snapshot. It contains only counts; nothing
// here can be traced back to an owner or a declared person.
type Stats struct {
	Participants       int64     `json:"participants"`
	ActiveDeclarations int64     `json:"active_declarations"`
	TotalMatches       int64     `json:"total_matches"`
	GeneratedAt        time.Time `json:"generated_at"`
}

type Option func(*Service)

// Service aggregates the public counters, with an optional Redis cache in
// front. Cache failures degrade to direct reads; they are never surfaced.
type Service struct {
	profiles     ParticipantCounter
	declarations DeclarationCounter
	matches      MatchCounter
	cache        *redis.Client
	ttl          time.Duration
	logger       *slog.Logger
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewService(profiles ParticipantCounter, declarations DeclarationCounter, matches MatchCounter, opts ...Option) *Service {
	svc := &Service{
		profiles:     profiles,
		declarations: declarations,
		matches:      matches,
		ttl:          defaultCacheTTL,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.ttl <= 0 {
		svc.ttl = defaultCacheTTL
	}
	return svc
}

// WithCache sets the Redis cache. A nil client disables caching.
func WithCache(cache *redis.Client, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLogger sets the logger instance for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Get returns the current aggregate snapshot, served from cache when fresh.
// The three counts are read concurrently; they may straddle concurrent
// writes, which is acceptable for a display-only aggregate.
func (s *Service) Get(ctx context.Context) (*Stats, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	var stats Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := s.profiles.Count(gctx)
		stats.Participants = count
		return err
	})
	g.Go(func() error {
		count, err := s.declarations.CountActive(gctx)
		stats.ActiveDeclarations = count
		return err
	})
	g.Go(func() error {
		count, err := s.matches.Count(gctx)
		stats.TotalMatches = count
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to aggregate stats", err)
	}
	stats.GeneratedAt = s.now().UTC()

	s.toCache(ctx, &stats)
	return &stats, nil
}

func (s *Service) fromCache(ctx context.Context) *Stats {
	if s.cache == nil {
		return nil
	}
	payload, err := s.cache.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) && s.logger != nil {
			s.logger.WarnContext(ctx, "stats cache read failed", "error", err)
		}
		s.miss()
		return nil
	}
	var stats Stats
	if err := json.Unmarshal(payload, &stats); err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "stats cache entry corrupt", "error", err)
		}
		s.miss()
		return nil
	}
	if s.metrics != nil {
		s.metrics.StatsCacheHits.Inc()
	}
	return &stats
}

func (s *Service) toCache(ctx context.Context, stats *Stats) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey, payload, s.ttl).Err(); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "stats cache write failed", "error", err)
	}
}

func (s *Service) miss() {
	if s.metrics != nil {
		s.metrics.StatsCacheMisses.Inc()
	}
}
