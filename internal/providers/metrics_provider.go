package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"tripsync/internal/models"
	"tripsync/internal/services"
	"tripsync/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncPropagations(target string)
	IncPropagationsBlocked(target string)
	IncProtectedSkips(count int)
	IncTargetingMisses()
	ObservePersistenceDuration(duration time.Duration)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	propagations        *prometheus.CounterVec
	propagationsBlocked *prometheus.CounterVec
	protectedSkips      prometheus.Counter
	targetingMisses     prometheus.Counter
	persistenceDuration prometheus.Histogram
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncPropagations(target string) {
	m.propagations.WithLabelValues(target).Inc()
}

func (m *MetricsProvider) IncPropagationsBlocked(target string) {
	m.propagationsBlocked.WithLabelValues(target).Inc()
}

func (m *MetricsProvider) IncProtectedSkips(count int) {
	if count > 0 {
		m.protectedSkips.Add(float64(count))
	}
}

func (m *MetricsProvider) IncTargetingMisses() {
	m.targetingMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, service services.TripServiceInterface) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tripsync_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tripsync_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tripsync_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tripsync_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		propagations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tripsync_propagations_total",
			Help: "Destination propagations delivered, by target store",
		}, []string{"target"}),

		propagationsBlocked: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tripsync_propagations_blocked_total",
			Help: "Destination propagations rejected by user overrides, by target store",
		}, []string{"target"}),

		protectedSkips: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tripsync_protected_field_skips_total",
			Help: "Automated field writes skipped because the field was user-protected",
		}),

		targetingMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tripsync_targeting_misses_total",
			Help: "Chat instructions naming a city with no matching entry",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tripsync_persistence_duration_seconds",
			Help:    "Duration of persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "tripsync_accommodation_entries",
		Help: "Current number of accommodation entries",
	}, func() float64 {
		return float64(service.EntryCount(models.SourceAccommodation))
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "tripsync_activity_entries",
		Help: "Current number of activity entries",
	}, func() float64 {
		return float64(service.EntryCount(models.SourceActivity))
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "tripsync_flight_legs",
		Help: "Current number of flight legs",
	}, func() float64 {
		return float64(service.EntryCount(models.SourceFlight))
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncPropagations(_ string)                         {}
func (n *noopMetrics) IncPropagationsBlocked(_ string)                  {}
func (n *noopMetrics) IncProtectedSkips(_ int)                          {}
func (n *noopMetrics) IncTargetingMisses()                              {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
