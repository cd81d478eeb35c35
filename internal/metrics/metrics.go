// Package metrics holds the domain Prometheus collectors. HTTP request
// metrics come from the fiberprometheus middleware; these count what the
// requests did.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecommendationsServed counts recommendation responses by outcome
	// (ok, empty, no_preference, error).
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carmart_recommendations_served_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	// RecommendationScore observes the score of every returned match
	RecommendationScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "carmart_recommendation_score",
			Help:    "Scores of returned recommendations",
			Buckets: []float64{20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	// RecommendDuration tracks load, score and ledger write time
	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "carmart_recommend_duration_seconds",
			Help:    "Duration of recommendation computation in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// LedgerInserts counts new ledger rows; conflicts are not counted
	LedgerInserts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carmart_ledger_inserts_total",
			Help: "Total number of recommendation ledger rows created",
		},
	)

	// LedgerEvents counts viewed/clicked/rated updates
	LedgerEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carmart_ledger_events_total",
			Help: "Total number of recommendation feedback events",
		},
		[]string{"event"},
	)

	// PreferenceSaves counts preference upserts
	PreferenceSaves = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carmart_preference_saves_total",
			Help: "Total number of preference saves",
		},
	)

	// ListingTransitions counts listing status changes by target status
	ListingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carmart_listing_transitions_total",
			Help: "Total number of listing status transitions",
		},
		[]string{"to"},
	)

	// FavoriteToggles counts favorite changes by action (added, removed)
	FavoriteToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carmart_favorite_toggles_total",
			Help: "Total number of favorite toggles",
		},
		[]string{"action"},
	)

	// AuthorizerBreakerState is 0 closed, 1 half-open, 2 open
	AuthorizerBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "carmart_authorizer_breaker_state",
			Help: "Authorizer circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
	)
)

// ObserveRecommend records one recommendation computation
func ObserveRecommend(outcome string, scores []int, elapsed time.Duration) {
	RecommendationsServed.WithLabelValues(outcome).Inc()
	RecommendDuration.Observe(elapsed.Seconds())
	for _, s := range scores {
		RecommendationScore.Observe(float64(s))
	}
}
