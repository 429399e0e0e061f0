package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripsync/internal/models"
	"tripsync/internal/providers"
	"tripsync/internal/services"
)

// --- local mocks (scoped to controller tests) ---

type mockLogger struct {
	infoCalls int
}

func (m *mockLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *mockLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  { m.infoCalls++ }
func (m *mockLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Close()                                                  {}

type finalizeCall struct {
	leg         models.FlightLeg
	isMultiCity bool
}

type directEditCall struct {
	store  models.Source
	city   string
	fields models.EntryFields
}

type syncToggleCall struct {
	target models.Source
	destID string
}

type mockService struct {
	finalizeCalls     []finalizeCall
	finalizeResult    services.SyncOutcome
	instructionCalls  []services.Instruction
	instructionResult services.TargetOutcome
	editCalls         []directEditCall
	editResult        models.ApplyResult
	editOK            bool
	clearOK           bool
	blockCalls        []syncToggleCall
	unblockCalls      []syncToggleCall
	statusCalls       []syncToggleCall
	statusResult      services.SyncStatus
	topologyType      models.TripType
	topologyLegs      []models.FlightLeg
	topologyResult    services.ReconcileOutcome
	travelerResult    models.TravelerGroup
	logged            []models.WidgetInteraction
	interactions      []models.WidgetInteraction
	recentN           int
	states            map[string]any
	stateData         any
	stateOK           bool
	stateStore        models.Source
}

func (m *mockService) FinalizeFlight(leg models.FlightLeg, isMultiCity bool) services.SyncOutcome {
	m.finalizeCalls = append(m.finalizeCalls, finalizeCall{leg: leg, isMultiCity: isMultiCity})
	return m.finalizeResult
}

func (m *mockService) ApplyInstruction(inst services.Instruction) services.TargetOutcome {
	m.instructionCalls = append(m.instructionCalls, inst)
	return m.instructionResult
}

func (m *mockService) DirectEdit(store models.Source, city string, fields models.EntryFields) (models.ApplyResult, bool) {
	m.editCalls = append(m.editCalls, directEditCall{store: store, city: city, fields: fields})
	return m.editResult, m.editOK
}

func (m *mockService) ClearProtection(_ models.Source, _ string, _, _ bool) bool { return m.clearOK }

func (m *mockService) BlockSync(target models.Source, destinationID string) {
	m.blockCalls = append(m.blockCalls, syncToggleCall{target: target, destID: destinationID})
}

func (m *mockService) UnblockSync(target models.Source, destinationID string) {
	m.unblockCalls = append(m.unblockCalls, syncToggleCall{target: target, destID: destinationID})
}

func (m *mockService) SyncStatus(target models.Source, destinationID string) services.SyncStatus {
	m.statusCalls = append(m.statusCalls, syncToggleCall{target: target, destID: destinationID})
	return m.statusResult
}

func (m *mockService) SetTopology(t models.TripType, legs []models.FlightLeg) services.ReconcileOutcome {
	m.topologyType = t
	m.topologyLegs = legs
	return m.topologyResult
}

func (m *mockService) UpdateTravelers(_ models.TravelerFields) models.TravelerGroup {
	return m.travelerResult
}

func (m *mockService) LogInteraction(it models.WidgetInteraction) models.WidgetInteraction {
	m.logged = append(m.logged, it)
	return it
}

func (m *mockService) RecentInteractions(n int) []models.WidgetInteraction {
	m.recentN = n
	return m.interactions
}

func (m *mockService) State(store models.Source) (any, bool) {
	m.stateStore = store
	return m.stateData, m.stateOK
}

func (m *mockService) States() map[string]any         { return m.states }
func (m *mockService) EntryCount(_ models.Source) int { return 0 }
func (m *mockService) TripType() models.TripType      { return models.TripRoundTrip }
func (m *mockService) GetSnapshot() *models.Snapshot  { return &models.Snapshot{} }
func (m *mockService) PutSnapshot(_ *models.Snapshot) {}

type mockCache struct {
	data map[string][]byte
}

func newMockCache() *mockCache                     { return &mockCache{data: make(map[string][]byte)} }
func (m *mockCache) Get(key string) ([]byte, bool) { v, ok := m.data[key]; return v, ok }
func (m *mockCache) Set(key string, value []byte)  { m.data[key] = value }
func (m *mockCache) Del(key string)                { delete(m.data, key) }

type controllerMetrics struct {
	propagations  map[string]int
	blocked       map[string]int
	protectedSkip int
	misses        int
}

func newControllerMetrics() *controllerMetrics {
	return &controllerMetrics{propagations: make(map[string]int), blocked: make(map[string]int)}
}

func (m *controllerMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *controllerMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *controllerMetrics) IncCacheHits()                                    {}
func (m *controllerMetrics) IncCacheMisses()                                  {}
func (m *controllerMetrics) IncPropagations(target string)                    { m.propagations[target]++ }
func (m *controllerMetrics) IncPropagationsBlocked(target string)             { m.blocked[target]++ }
func (m *controllerMetrics) IncProtectedSkips(n int)                          { m.protectedSkip += n }
func (m *controllerMetrics) IncTargetingMisses()                              { m.misses++ }
func (m *controllerMetrics) ObservePersistenceDuration(_ time.Duration)       {}

// --- helpers ---

func newTestController(svc *mockService, cache *mockCache, metrics *controllerMetrics) *ApiController {
	return NewApiController(&mockLogger{}, svc, cache, metrics)
}

// --- FinalizeFlight tests ---

func TestFinalizeFlight_ValidPayload(t *testing.T) {
	svc := &mockService{
		finalizeResult: services.SyncOutcome{
			Propagated: []models.Source{models.SourceAccommodation, models.SourceActivity},
		},
	}
	metrics := newControllerMetrics()
	ac := newTestController(svc, newMockCache(), metrics)

	payload := `{"origin":{"city":"Berlin"},"arrival":{"city":"Tokyo"},"departDate":"2026-09-01","returnDate":"2026-09-10","isMultiCity":false}`
	req := httptest.NewRequest(http.MethodPost, "/flight/finalize", strings.NewReader(payload))
	rr := httptest.NewRecorder()

	ac.FinalizeFlight(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, svc.finalizeCalls, 1)
	assert.Equal(t, "Tokyo", svc.finalizeCalls[0].leg.Arrival.City)
	assert.False(t, svc.finalizeCalls[0].isMultiCity)
	assert.Equal(t, 1, metrics.propagations["accommodation"])
	assert.Equal(t, 1, metrics.propagations["activity"])
}

func TestFinalizeFlight_BlockedTargetsCounted(t *testing.T) {
	svc := &mockService{
		finalizeResult: services.SyncOutcome{
			Propagated: []models.Source{models.SourceActivity},
			Blocked:    []models.Source{models.SourceAccommodation},
		},
	}
	metrics := newControllerMetrics()
	ac := newTestController(svc, newMockCache(), metrics)

	payload := `{"arrival":{"city":"Osaka"},"departDate":"2026-09-01"}`
	req := httptest.NewRequest(http.MethodPost, "/flight/finalize", strings.NewReader(payload))
	rr := httptest.NewRecorder()

	ac.FinalizeFlight(rr, req)

	assert.Equal(t, 1, metrics.blocked["accommodation"])
	assert.Equal(t, 1, metrics.propagations["activity"])
}

func TestFinalizeFlight_InvalidJSON(t *testing.T) {
	svc := &mockService{}
	ac := newTestController(svc, newMockCache(), newControllerMetrics())

	req := httptest.NewRequest(http.MethodPost, "/flight/finalize", strings.NewReader("not json"))
	rr := httptest.NewRecorder()

	ac.FinalizeFlight(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, svc.finalizeCalls)
}

func TestFinalizeFlight_MissingArrivalCity(t *testing.T) {
	svc := &mockService{}
	ac := newTestController(svc, newMockCache(), newControllerMetrics())

	req := httptest.NewRequest(http.MethodPost, "/flight/finalize", strings.NewReader(`{"departDate":"2026-09-01"}`))
	rr := httptest.NewRecorder()

	ac.FinalizeFlight(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, svc.finalizeCalls)
}

func TestFinalizeFlight_OversizedBody(t *testing.T) {
	svc := &mockService{}
	ac := newTestController(svc, newMockCache(), newControllerMetrics())

	big := strings.Repeat("x", maxRequestBodySize+1)
	req := httptest.NewRequest(http.MethodPost, "/flight/finalize", strings.NewReader(big))
	rr := httptest.NewRecorder()

	ac.FinalizeFlight(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// --- ApplyInstruction tests ---

func TestApplyInstruction_DefaultsToAccommodation(t *testing.T) {
	svc := &mockService{
		instructionResult: services.TargetOutcome{Store: models.SourceAccommodation, Applied: []string{"dateFrom"}},
	}
	ac := newTestController(svc, newMockCache(), newControllerMetrics())

	payload := `{"targetCity":"Tokyo","fields":{"dateFrom":"2026-09-02"}}`
	req := httptest.NewRequest(http.MethodPost, "/chat/instruction", strings.NewReader(payload))
	rr := httptest.NewRecorder()

	ac.ApplyInstruction(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, svc.instructionCalls, 1)
	assert.Equal(t, models.SourceAccommodation, svc.instructionCalls[0].Store)
	assert.Equal(t, "Tokyo", svc.instructionCalls[0].TargetCity)
}

func TestApplyInstruction_TargetingMissCounted(t *testing.T) {
	svc := &mockService{
		instructionResult: services.TargetOutcome{NotFound: true, AttemptedCity: "Tokio"},
	}
	metrics := newControllerMetrics()
	ac := newTestController(svc, newMockCache(), metrics)

	payload := `{"store":"activity","targetCity":"Tokio","fields":{"notes":"street food"}}`
	req := httptest.NewRequest(http.MethodPost, "/chat/instruction", strings.NewReader(payload))
	rr := httptest.NewRecorder()

	ac.ApplyInstruction(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, metrics.misses)

	var outcome services.TargetOutcome
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &outcome))
	assert.True(t, outcome.NotFound)
	assert.Equal(t, "Tokio", outcome.AttemptedCity)
}

func TestApplyInstruction_ProtectedSkipsCounted(t *testing.T) {
	svc := &mockService{
		instructionResult: services.TargetOutcome{Skipped: []string{"dateFrom", "dateTo"}},
	}
	metrics := newControllerMetrics()
	ac := newTestController(svc, newMockCache(), metrics)

	payload := `{"targetCity":"Tokyo","fields":{"dateFrom":"2026-09-02"}}`
	req := httptest.NewRequest(http.MethodPost, "/chat/instruction", strings.NewReader(payload))
	rr := httptest.NewRecorder()

	ac.ApplyInstruction(rr, req)

	assert.Equal(t, 2, metrics.protectedSkip)
}

// --- WidgetEdit tests ---

func TestWidgetEdit_AppliesFields(t *testing.T) {
	svc := &mockService{editOK: true, editResult: models.ApplyResult{Applied: []string{"budgetMin", "budgetMax"}}}
	ac := newTestController(svc, newMockCache(), newControllerMetrics())

	payload := `{"store":"activity","city":"Tokyo","fields":{"budgetMin":100,"budgetMax":400}}`
	req := httptest.NewRequest(http.MethodPost, "/widget/edit", strings.NewReader(payload))
	rr := httptest.NewRecorder()

	ac.WidgetEdit(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, svc.editCalls, 1)
	assert.Equal(t, models.SourceActivity, svc.editCalls[0].store)
	assert.Equal(t, "Tokyo", svc.editCalls[0].city)
	require.NotNil(t, svc.editCalls[0].fields.BudgetMin)
	assert.Equal(t, 100, *svc.editCalls[0].fields.BudgetMin)
}

func TestWidgetEdit_UnknownCity(t *testing.T) {
	svc := &mockService{editOK: false}
	ac := newTestController(svc, newMockCache(), newControllerMetrics())

	payload := `{"city":"Atlantis","fields":{"notes":"sights"}}`
	req := httptest.NewRequest(http.MethodPost, "/widget/edit", strings.NewReader(payload))
	rr := httptest.NewRecorder()

	ac.WidgetEdit(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	require.Len(t, svc.editCalls, 1)
	assert.Equal(t, models.SourceAccommodation, svc.editCalls[0].store)
}

// --- ClearProtection tests ---

func TestClearProtection_Found(t *testing.T) {
	svc := &mockService{clearOK: true}
	ac := newTestController(svc, newMockCache(), newControllerMetrics())

	payload := `{"city":"Tokyo","dates":true}`
	req := httptest.NewRequest(http.MethodPost, "/widget/unprotect", strings.NewReader(payload))
	rr := httptest.NewRecorder()

	ac.ClearProtection(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestClearProtection_UnknownCity(t *testing.T) {
	svc := &mockService{clearOK: false}
	ac := newTestController(svc, newMockCache(), newControllerMetrics())

	payload := `{"city":"Atlantis","dates":true}`
	req := httptest.NewRequest(http.MethodPost, "/widget/unprotect", strings.NewReader(payload))
	rr := httptest.NewRecorder()

	ac.ClearProtection(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// --- sync toggle tests ---

func TestBlockSync(t *testing.T) {
	svc := &mockService{}
	ac := newTestController(svc, newMockCache(), newControllerMetrics())

	payload := `{"target":"accommodation","destinationId":"dest-1"}`
	req := httptest.NewRequest(http.MethodPost, "/sync/block", strings.NewReader(payload))
	rr := httptest.NewRecorder()

	ac.BlockSync(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	require.Len(t, svc.blockCalls, 1)
	assert.Equal(t, models.SourceAccommodation, svc.blockCalls[0].target)
	assert.Equal(t, "dest-1", svc.blockCalls[0].destID)
}

func TestUnblockSync(t *testing.T) {
	svc := &mockService{}
	ac := newTestController(svc, newMockCache(), newControllerMetrics())

	payload := `{"target":"activity","destinationId":"dest-2"}`
	req := httptest.NewRequest(http.MethodPost, "/sync/unblock", strings.NewReader(payload))
	rr := httptest.NewRecorder()

	ac.UnblockSync(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	require.Len(t, svc.unblockCalls, 1)
	assert.Equal(t, "dest-2", svc.unblockCalls[0].destID)
}

func TestGetSyncStatus_DefaultsTarget(t *testing.T) {
	svc := &mockService{statusResult: services.SyncStatus{State: services.SyncStateSynced}}
	ac := newTestController(svc, newMockCache(), newControllerMetrics())

	req := httptest.NewRequest(http.MethodGet, "/sync/status?destinationId=dest-1", nil)
	rr := httptest.NewRecorder()

	ac.GetSyncStatus(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, svc.statusCalls, 1)
	assert.Equal(t, models.SourceAccommodation, svc.statusCalls[0].target)
	assert.Equal(t, "dest-1", svc.statusCalls[0].destID)

	var status services.SyncStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, services.SyncStateSynced, status.State)
}

// --- SetTripType tests ---

func TestSetTripType_Delegates(t *testing.T) {
	svc := &mockService{topologyResult: services.ReconcileOutcome{TripType: models.TripMulti}}
	ac := newTestController(svc, newMockCache(), newControllerMetrics())

	payload := `{"tripType":"multi","legs":[{"origin":{"city":"Berlin"},"arrival":{"city":"Tokyo"}}]}`
	req := httptest.NewRequest(http.MethodPost, "/trip/type", strings.NewReader(payload))
	rr := httptest.NewRecorder()

	ac.SetTripType(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, models.TripMulti, svc.topologyType)
	require.Len(t, svc.topologyLegs, 1)
}

func TestSetTripType_InvalidType(t *testing.T) {
	svc := &mockService{}
	ac := newTestController(svc, newMockCache(), newControllerMetrics())

	payload := `{"tripType":"cruise"}`
	req := httptest.NewRequest(http.MethodPost, "/trip/type", strings.NewReader(payload))
	rr := httptest.NewRecorder()

	ac.SetTripType(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, svc.topologyType)
}

// --- traveler and interaction tests ---

func TestUpdateTravelers(t *testing.T) {
	svc := &mockService{travelerResult: models.TravelerGroup{Adults: 2, Children: 1}}
	ac := newTestController(svc, newMockCache(), newControllerMetrics())

	payload := `{"adults":2,"children":1}`
	req := httptest.NewRequest(http.MethodPost, "/travelers", strings.NewReader(payload))
	rr := httptest.NewRecorder()

	ac.UpdateTravelers(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var group models.TravelerGroup
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &group))
	assert.Equal(t, 2, group.Adults)
	assert.Equal(t, 1, group.Children)
}

func TestLogInteraction(t *testing.T) {
	svc := &mockService{}
	ac := newTestController(svc, newMockCache(), newControllerMetrics())

	payload := `{"widgetType":"accommodation_card","interactionType":"click","summary":"opened Tokyo card"}`
	req := httptest.NewRequest(http.MethodPost, "/widget/interaction", strings.NewReader(payload))
	rr := httptest.NewRecorder()

	ac.LogInteraction(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	require.Len(t, svc.logged, 1)
	assert.Equal(t, "accommodation_card", svc.logged[0].WidgetType)
}

func TestGetInteractions_NParam(t *testing.T) {
	svc := &mockService{interactions: []models.WidgetInteraction{}}
	ac := newTestController(svc, newMockCache(), newControllerMetrics())

	req := httptest.NewRequest(http.MethodGet, "/interactions?n=5", nil)
	rr := httptest.NewRecorder()

	ac.GetInteractions(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 5, svc.recentN)
}

func TestGetInteractions_BadNFallsBackToAll(t *testing.T) {
	svc := &mockService{}
	ac := newTestController(svc, newMockCache(), newControllerMetrics())

	req := httptest.NewRequest(http.MethodGet, "/interactions?n=lots", nil)
	rr := httptest.NewRecorder()

	ac.GetInteractions(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, svc.recentN)
}

// --- GetState tests ---

func TestGetState_AllStores(t *testing.T) {
	svc := &mockService{states: map[string]any{"accommodation": "summary"}}
	cache := newMockCache()
	ac := newTestController(svc, cache, newControllerMetrics())

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	rr := httptest.NewRecorder()

	ac.GetState(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "accommodation")

	_, ok := cache.Get("state:all")
	assert.True(t, ok)
}

func TestGetState_SingleStore(t *testing.T) {
	svc := &mockService{stateData: map[string]any{"tab": "activity"}, stateOK: true}
	cache := newMockCache()
	ac := newTestController(svc, cache, newControllerMetrics())

	req := httptest.NewRequest(http.MethodGet, "/state?store=activity", nil)
	rr := httptest.NewRecorder()

	ac.GetState(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, models.SourceActivity, svc.stateStore)

	_, ok := cache.Get("state:activity")
	assert.True(t, ok)
}

func TestGetState_CacheHitSkipsService(t *testing.T) {
	svc := &mockService{}
	cache := newMockCache()
	cache.Set("state:all", []byte(`{"cached":true}`))
	ac := newTestController(svc, cache, newControllerMetrics())

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	rr := httptest.NewRecorder()

	ac.GetState(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `{"cached":true}`, rr.Body.String())
	assert.Nil(t, svc.states)
}

func seedStateCache(cache *mockCache) {
	for _, key := range stateCacheKeys {
		cache.Set(key, []byte(`{"stale":true}`))
	}
}

func TestGetState_StaleBodyDroppedAfterWidgetEdit(t *testing.T) {
	svc := &mockService{editOK: true}
	cache := newMockCache()
	seedStateCache(cache)
	ac := newTestController(svc, cache, newControllerMetrics())

	payload := `{"city":"Tokyo","fields":{"notes":"ryokan"}}`
	req := httptest.NewRequest(http.MethodPost, "/widget/edit", strings.NewReader(payload))
	ac.WidgetEdit(httptest.NewRecorder(), req)

	for _, key := range stateCacheKeys {
		_, ok := cache.Get(key)
		assert.False(t, ok, key)
	}
}

func TestGetState_StaleBodyDroppedAfterFinalize(t *testing.T) {
	svc := &mockService{}
	cache := newMockCache()
	seedStateCache(cache)
	ac := newTestController(svc, cache, newControllerMetrics())

	payload := `{"arrival":{"city":"Tokyo"},"departDate":"2026-09-01"}`
	req := httptest.NewRequest(http.MethodPost, "/flight/finalize", strings.NewReader(payload))
	ac.FinalizeFlight(httptest.NewRecorder(), req)

	_, ok := cache.Get("state:all")
	assert.False(t, ok)
}

func TestGetState_TargetingMissKeepsCache(t *testing.T) {
	svc := &mockService{instructionResult: services.TargetOutcome{NotFound: true, AttemptedCity: "Tokio"}}
	cache := newMockCache()
	seedStateCache(cache)
	ac := newTestController(svc, cache, newControllerMetrics())

	payload := `{"targetCity":"Tokio","fields":{"notes":"x"}}`
	req := httptest.NewRequest(http.MethodPost, "/chat/instruction", strings.NewReader(payload))
	ac.ApplyInstruction(httptest.NewRecorder(), req)

	// Nothing was written, so the cached bodies are still valid.
	_, ok := cache.Get("state:all")
	assert.True(t, ok)
}
