package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	DeclarationsCreated  prometheus.Counter
	DuplicatesRejected   prometheus.Counter
	DeclarationsRetired  prometheus.Counter
	MatchesCreated       prometheus.Counter
	MatchesSeen          prometheus.Counter
	MatchEventsPublished prometheus.Counter
	MatchEventsFailed    prometheus.Counter
	StatsCacheHits       prometheus.Counter
	StatsCacheMisses     prometheus.Counter
	EndpointLatency      *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		DeclarationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "liaison_declarations_created_total",
			Help: "Total number of declarations created",
		}),
		DuplicatesRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "liaison_declarations_duplicate_rejected_total",
			Help: "Total number of submissions rejected as owner duplicates",
		}),
		DeclarationsRetired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "liaison_declarations_deactivated_total",
			Help: "Total number of declarations soft-deactivated",
		}),
		MatchesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "liaison_matches_created_total",
			Help: "Total number of cross-owner matches created",
		}),
		MatchesSeen: promauto.NewCounter(prometheus.CounterOpts{
			Name: "liaison_matches_seen_total",
			Help: "Total number of match sides marked as seen",
		}),
		MatchEventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "liaison_match_events_published_total",
			Help: "Total number of match-created events handed to the broker",
		}),
		MatchEventsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "liaison_match_events_failed_total",
			Help: "Total number of match-created events that failed delivery",
		}),
		StatsCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "liaison_stats_cache_hits_total",
			Help: "Global stats served from cache",
		}),
		StatsCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "liaison_stats_cache_misses_total",
			Help: "Global stats recomputed from storage",
		}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "liaison_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}
