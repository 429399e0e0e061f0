package testutil

import (
	"sync"
	"time"

	"tripsync/internal/models"
	"tripsync/internal/providers"
	"tripsync/internal/services"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// MockTripService implements services.TripServiceInterface. Responses
// are injectable; calls are recorded for assertion.
type MockTripService struct {
	mu sync.Mutex

	FinalizeCalls     []models.FlightLeg
	InstructionCalls  []services.Instruction
	DirectEditCalls   []DirectEditCall
	ClearCalls        []ClearProtectionCall
	BlockCalls        []SyncToggleCall
	UnblockCalls      []SyncToggleCall
	TopologyCalls     []TopologyCall
	TravelerCalls     []models.TravelerFields
	LoggedInteraction []models.WidgetInteraction
	PutSnapshotCalls  []*models.Snapshot

	FinalizeResult    services.SyncOutcome
	InstructionResult services.TargetOutcome
	DirectEditResult  models.ApplyResult
	DirectEditOK      bool
	ClearOK           bool
	SyncStatusResult  services.SyncStatus
	TopologyResult    services.ReconcileOutcome
	TravelerResult    models.TravelerGroup
	Interactions      []models.WidgetInteraction
	StateData         map[models.Source]any
	Counts            map[models.Source]int
	TripTypeValue     models.TripType
	SnapshotResult    *models.Snapshot
}

type DirectEditCall struct {
	Store  models.Source
	City   string
	Fields models.EntryFields
}

type ClearProtectionCall struct {
	Store  models.Source
	City   string
	Dates  bool
	Budget bool
}

type SyncToggleCall struct {
	Target        models.Source
	DestinationID string
}

type TopologyCall struct {
	TripType models.TripType
	Legs     []models.FlightLeg
}

func (m *MockTripService) FinalizeFlight(leg models.FlightLeg, isMultiCity bool) services.SyncOutcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FinalizeCalls = append(m.FinalizeCalls, leg)
	return m.FinalizeResult
}

func (m *MockTripService) ApplyInstruction(inst services.Instruction) services.TargetOutcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InstructionCalls = append(m.InstructionCalls, inst)
	return m.InstructionResult
}

func (m *MockTripService) DirectEdit(store models.Source, city string, fields models.EntryFields) (models.ApplyResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DirectEditCalls = append(m.DirectEditCalls, DirectEditCall{Store: store, City: city, Fields: fields})
	return m.DirectEditResult, m.DirectEditOK
}

func (m *MockTripService) ClearProtection(store models.Source, city string, dates, budget bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls = append(m.ClearCalls, ClearProtectionCall{Store: store, City: city, Dates: dates, Budget: budget})
	return m.ClearOK
}

func (m *MockTripService) BlockSync(target models.Source, destinationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BlockCalls = append(m.BlockCalls, SyncToggleCall{Target: target, DestinationID: destinationID})
}

func (m *MockTripService) UnblockSync(target models.Source, destinationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UnblockCalls = append(m.UnblockCalls, SyncToggleCall{Target: target, DestinationID: destinationID})
}

func (m *MockTripService) SyncStatus(target models.Source, destinationID string) services.SyncStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SyncStatusResult
}

func (m *MockTripService) SetTopology(t models.TripType, legs []models.FlightLeg) services.ReconcileOutcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TopologyCalls = append(m.TopologyCalls, TopologyCall{TripType: t, Legs: legs})
	return m.TopologyResult
}

func (m *MockTripService) UpdateTravelers(fields models.TravelerFields) models.TravelerGroup {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TravelerCalls = append(m.TravelerCalls, fields)
	return m.TravelerResult
}

func (m *MockTripService) LogInteraction(it models.WidgetInteraction) models.WidgetInteraction {
	m.mu.Lock()
	defer m.mu.Unlock()
	if it.ID == "" {
		it.ID = "mock-interaction"
	}
	if it.Timestamp.IsZero() {
		it.Timestamp = time.Now()
	}
	m.LoggedInteraction = append(m.LoggedInteraction, it)
	return it
}

func (m *MockTripService) RecentInteractions(n int) []models.WidgetInteraction {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n <= 0 || n > len(m.Interactions) {
		return m.Interactions
	}
	return m.Interactions[:n]
}

func (m *MockTripService) State(store models.Source) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StateData == nil {
		return nil, false
	}
	state, ok := m.StateData[store]
	return state, ok
}

func (m *MockTripService) States() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]any, len(m.StateData))
	for source, state := range m.StateData {
		out[string(source)] = state
	}
	return out
}

func (m *MockTripService) EntryCount(store models.Source) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Counts[store]
}

func (m *MockTripService) TripType() models.TripType {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TripTypeValue == "" {
		return models.TripRoundTrip
	}
	return m.TripTypeValue
}

func (m *MockTripService) GetSnapshot() *models.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SnapshotResult != nil {
		return m.SnapshotResult
	}
	return &models.Snapshot{Version: models.SnapshotVersion}
}

func (m *MockTripService) PutSnapshot(snap *models.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutSnapshotCalls = append(m.PutSnapshotCalls, snap)
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu                  sync.Mutex
	Requests            int
	CacheHits           int
	CacheMisses         int
	Propagations        map[string]int
	PropagationsBlocked map[string]int
	ProtectedSkips      int
	TargetingMisses     int
	PersistenceObserved int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Propagations:        make(map[string]int),
		PropagationsBlocked: make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) IncPropagations(target string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Propagations[target]++
}

func (m *MockMetrics) IncPropagationsBlocked(target string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PropagationsBlocked[target]++
}

func (m *MockMetrics) IncProtectedSkips(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProtectedSkips += count
}

func (m *MockMetrics) IncTargetingMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TargetingMisses++
}

func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistenceObserved++
}
