package controllers

import (
	"net/http"

	json "github.com/goccy/go-json"

	"tripsync/internal/models"
	"tripsync/internal/providers"
	"tripsync/internal/services"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger  providers.Logger
	service services.TripServiceInterface
	cache   providers.CacheProviderInterface
	metrics providers.MetricsProviderInterface
}

func NewApiController(logger providers.Logger, service services.TripServiceInterface, cache providers.CacheProviderInterface, metrics providers.MetricsProviderInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
		cache:   cache,
		metrics: metrics,
	}
}

func getStore(r *http.Request) models.Source {
	switch models.Source(r.URL.Query().Get("store")) {
	case models.SourceActivity:
		return models.SourceActivity
	case models.SourceFlight:
		return models.SourceFlight
	default:
		return models.SourceAccommodation
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

var stateCacheKeys = []string{"state:all", "state:accommodation", "state:activity", "state:flight"}

// invalidateState drops every cached state body after a mutation, so
// the next grounding read rebuilds from the stores instead of serving
// a pre-write summary for the rest of the TTL.
func (ac *ApiController) invalidateState() {
	for _, key := range stateCacheKeys {
		ac.cache.Del(key)
	}
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

type finalizeFlightRequest struct {
	models.FlightLeg
	IsMultiCity bool `json:"isMultiCity"`
}

// FinalizeFlight is the flight surface's push into the engine: the
// leg's arrival is normalized and propagated into the dependent
// stores, user overrides permitting.
func (ac *ApiController) FinalizeFlight(w http.ResponseWriter, r *http.Request) {
	var payload finalizeFlightRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	if payload.Arrival.City == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	outcome := ac.service.FinalizeFlight(payload.FlightLeg, payload.IsMultiCity)
	for _, target := range outcome.Propagated {
		ac.metrics.IncPropagations(string(target))
	}
	for _, target := range outcome.Blocked {
		ac.metrics.IncPropagationsBlocked(string(target))
	}
	ac.invalidateState()
	writeJSON(w, http.StatusOK, outcome)
}

// ApplyInstruction is the chat surface's entry point. A targeting miss
// is a non-fatal, explanatory result with zero mutation behind it.
func (ac *ApiController) ApplyInstruction(w http.ResponseWriter, r *http.Request) {
	var inst services.Instruction
	if !decodeBody(w, r, &inst) {
		return
	}
	if inst.Store == "" {
		inst.Store = models.SourceAccommodation
	}

	outcome := ac.service.ApplyInstruction(inst)
	if outcome.NotFound {
		ac.metrics.IncTargetingMisses()
		ac.logger.Infof(providers.TypePost, "Instruction targeted unknown city %q in %s", outcome.AttemptedCity, inst.Store)
	} else {
		ac.invalidateState()
	}
	ac.metrics.IncProtectedSkips(len(outcome.Skipped))
	writeJSON(w, http.StatusOK, outcome)
}

type widgetEditRequest struct {
	Store  models.Source  `json:"store"`
	City   string         `json:"city"`
	Fields map[string]any `json:"fields"`
}

// WidgetEdit applies a direct user edit from an interactive widget.
func (ac *ApiController) WidgetEdit(w http.ResponseWriter, r *http.Request) {
	var payload widgetEditRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	if payload.Store == "" {
		payload.Store = models.SourceAccommodation
	}

	res, ok := ac.service.DirectEdit(payload.Store, payload.City, services.FieldsFromMap(payload.Fields))
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	ac.invalidateState()
	writeJSON(w, http.StatusOK, res)
}

type clearProtectionRequest struct {
	Store  models.Source `json:"store"`
	City   string        `json:"city"`
	Dates  bool          `json:"dates"`
	Budget bool          `json:"budget"`
}

// ClearProtection is the explicit unprotect action; it is the only way
// a protection flag is ever cleared.
func (ac *ApiController) ClearProtection(w http.ResponseWriter, r *http.Request) {
	var payload clearProtectionRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	if payload.Store == "" {
		payload.Store = models.SourceAccommodation
	}
	if !ac.service.ClearProtection(payload.Store, payload.City, payload.Dates, payload.Budget) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type syncToggleRequest struct {
	Target        models.Source `json:"target"`
	DestinationID string        `json:"destinationId"`
}

func (ac *ApiController) BlockSync(w http.ResponseWriter, r *http.Request) {
	var payload syncToggleRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	ac.service.BlockSync(payload.Target, payload.DestinationID)
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) UnblockSync(w http.ResponseWriter, r *http.Request) {
	var payload syncToggleRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	ac.service.UnblockSync(payload.Target, payload.DestinationID)
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) GetSyncStatus(w http.ResponseWriter, r *http.Request) {
	target := models.Source(r.URL.Query().Get("target"))
	if target == "" {
		target = models.SourceAccommodation
	}
	destinationID := r.URL.Query().Get("destinationId")
	writeJSON(w, http.StatusOK, ac.service.SyncStatus(target, destinationID))
}

type tripTypeRequest struct {
	TripType models.TripType    `json:"tripType"`
	Legs     []models.FlightLeg `json:"legs"`
}

// SetTripType rewires the topology: the reconciler recomputes the
// required destination set and rewrites the entry stores.
func (ac *ApiController) SetTripType(w http.ResponseWriter, r *http.Request) {
	var payload tripTypeRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	switch payload.TripType {
	case models.TripOneWay, models.TripRoundTrip, models.TripMulti:
	default:
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	outcome := ac.service.SetTopology(payload.TripType, payload.Legs)
	ac.invalidateState()
	writeJSON(w, http.StatusOK, outcome)
}

func (ac *ApiController) UpdateTravelers(w http.ResponseWriter, r *http.Request) {
	var payload models.TravelerFields
	if !decodeBody(w, r, &payload) {
		return
	}
	group := ac.service.UpdateTravelers(payload)
	ac.invalidateState()
	writeJSON(w, http.StatusOK, group)
}

func (ac *ApiController) LogInteraction(w http.ResponseWriter, r *http.Request) {
	var payload models.WidgetInteraction
	if !decodeBody(w, r, &payload) {
		return
	}
	writeJSON(w, http.StatusCreated, ac.service.LogInteraction(payload))
}

func (ac *ApiController) GetInteractions(w http.ResponseWriter, r *http.Request) {
	n := 0
	if raw := r.URL.Query().Get("n"); raw != "" {
		// Bad values fall through to "all recent".
		var parsed int
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
			n = parsed
		}
	}
	writeJSON(w, http.StatusOK, ac.service.RecentInteractions(n))
}

// GetState serves the per-store grounding summary the assistant reads.
func (ac *ApiController) GetState(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("store") == "" {
		ac.serveFromCacheOrCompute(w, "state:all", func() (any, error) {
			return ac.service.States(), nil
		})
		return
	}
	store := getStore(r)
	ac.serveFromCacheOrCompute(w, "state:"+string(store), func() (any, error) {
		state, _ := ac.service.State(store)
		return state, nil
	})
}
