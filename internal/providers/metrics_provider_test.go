package providers

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"tripsync/internal/models"
	"tripsync/internal/services"
	"tripsync/internal/structures"
)

// --- minimal mock for TripServiceInterface ---

type metricsTestService struct{}

func (m *metricsTestService) FinalizeFlight(_ models.FlightLeg, _ bool) services.SyncOutcome {
	return services.SyncOutcome{}
}
func (m *metricsTestService) ApplyInstruction(_ services.Instruction) services.TargetOutcome {
	return services.TargetOutcome{}
}
func (m *metricsTestService) DirectEdit(_ models.Source, _ string, _ models.EntryFields) (models.ApplyResult, bool) {
	return models.ApplyResult{}, false
}
func (m *metricsTestService) ClearProtection(_ models.Source, _ string, _, _ bool) bool {
	return false
}
func (m *metricsTestService) BlockSync(_ models.Source, _ string)   {}
func (m *metricsTestService) UnblockSync(_ models.Source, _ string) {}
func (m *metricsTestService) SyncStatus(_ models.Source, _ string) services.SyncStatus {
	return services.SyncStatus{}
}
func (m *metricsTestService) SetTopology(_ models.TripType, _ []models.FlightLeg) services.ReconcileOutcome {
	return services.ReconcileOutcome{}
}
func (m *metricsTestService) UpdateTravelers(_ models.TravelerFields) models.TravelerGroup {
	return models.TravelerGroup{}
}
func (m *metricsTestService) LogInteraction(it models.WidgetInteraction) models.WidgetInteraction {
	return it
}
func (m *metricsTestService) RecentInteractions(_ int) []models.WidgetInteraction { return nil }
func (m *metricsTestService) State(_ models.Source) (any, bool)                   { return nil, false }
func (m *metricsTestService) States() map[string]any                              { return nil }
func (m *metricsTestService) EntryCount(_ models.Source) int                      { return 3 }
func (m *metricsTestService) TripType() models.TripType                           { return models.TripRoundTrip }
func (m *metricsTestService) GetSnapshot() *models.Snapshot                       { return nil }
func (m *metricsTestService) PutSnapshot(_ *models.Snapshot)                      {}

func TestNoopMetrics_WhenDisabled(t *testing.T) {
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: false},
	}
	m := NewMetricsProvider(conf, &metricsTestService{})
	_, ok := m.(*noopMetrics)
	assert.True(t, ok, "should return noopMetrics when disabled")

	// Ensure no-op methods don't panic
	m.IncRequestsTotal("/state", 200)
	m.ObserveRequestDuration("/state", time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.IncPropagations("accommodation")
	m.IncPropagationsBlocked("activity")
	m.IncProtectedSkips(2)
	m.IncTargetingMisses()
	m.ObservePersistenceDuration(time.Millisecond)
}

func TestMetricsProvider_WhenEnabled(t *testing.T) {
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	defer func() {
		prometheus.DefaultRegisterer = prometheus.NewRegistry()
		prometheus.DefaultGatherer = prometheus.DefaultRegisterer.(prometheus.Gatherer)
	}()

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf, &metricsTestService{})
	_, ok := m.(*MetricsProvider)
	assert.True(t, ok, "should return MetricsProvider when enabled")
}

func TestMetricsProvider_IncrementCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	defer func() {
		prometheus.DefaultRegisterer = prometheus.NewRegistry()
		prometheus.DefaultGatherer = prometheus.DefaultRegisterer.(prometheus.Gatherer)
	}()

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf, &metricsTestService{})

	// These should not panic
	m.IncRequestsTotal("/state", 200)
	m.IncRequestsTotal("/state", 404)
	m.ObserveRequestDuration("/state", 5*time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.IncPropagations("accommodation")
	m.IncPropagationsBlocked("accommodation")
	m.IncProtectedSkips(3)
	m.IncProtectedSkips(0)
	m.IncTargetingMisses()
	m.ObservePersistenceDuration(100 * time.Millisecond)
}
