package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TurnDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scheme_mitra_turn_duration_seconds",
			Help:    "Chat turn processing duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"transport"},
	)

	TurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheme_mitra_turns_total",
			Help: "Total chat turns processed",
		},
		[]string{"status"},
	)

	FormatChosen = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheme_mitra_format_chosen_total",
			Help: "Context format selected per turn",
		},
		[]string{"format"},
	)

	EntitiesSelected = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scheme_mitra_entities_selected",
			Help:    "Entities included in the prompt per turn",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheme_mitra_active_sessions",
			Help: "Sessions currently held in memory",
		},
	)

	SessionsEvicted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scheme_mitra_sessions_evicted_total",
			Help: "Sessions removed by the idle sweep",
		},
	)

	CatalogEntities = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheme_mitra_catalog_entities",
			Help: "Entities in the processed catalog table",
		},
	)

	CatalogRefreshes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scheme_mitra_catalog_refreshes_total",
			Help: "Wholesale catalog rebuilds",
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheme_mitra_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheme_mitra_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheme_mitra_llm_tokens_used",
			Help: "Total LLM tokens used",
		},
		[]string{"model", "type"},
	)
)

func Init() {
	prometheus.MustRegister(TurnDuration)
	prometheus.MustRegister(TurnsTotal)
	prometheus.MustRegister(FormatChosen)
	prometheus.MustRegister(EntitiesSelected)
	prometheus.MustRegister(ActiveSessions)
	prometheus.MustRegister(SessionsEvicted)
	prometheus.MustRegister(CatalogEntities)
	prometheus.MustRegister(CatalogRefreshes)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(LLMTokensUsed)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
