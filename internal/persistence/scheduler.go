package persistence

import (
	"sync"
	"time"

	"github.com/roylee0704/gron"
	"go.uber.org/atomic"

	"tripsync/internal/events"
	"tripsync/internal/persistence/interfaces"
	"tripsync/internal/providers"
	"tripsync/internal/structures"
)

const defaultDebounceWindow = 3 * time.Second

// Scheduler owns all persistence timing: a periodic safety-net save, a
// debounced save that coalesces rapid successive changes into one
// write, and the final flush on shutdown. Propagation itself is
// synchronous and already complete by the time any of these run; only
// the persistence timer is ever cancelled.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	fileManager *FileManager
	bus         *events.Bus
	metrics     providers.MetricsProviderInterface
	cron        *gron.Cron
	opsMu       sync.Mutex
	dirty       atomic.Bool
	timerMu     sync.Mutex
	debounce    *time.Timer
}

func NewScheduler(config *structures.Config, logger providers.Logger, fileManager *FileManager, bus *events.Bus, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		fileManager: fileManager,
		bus:         bus,
		metrics:     metrics,
	}
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	s.cron.AddFunc(gron.Every(s.config.Persistence.SaveInterval), func() {
		s.persistIfDirty()
	})
	s.cron.Start()

	s.bus.Subscribe(s.onEvent)
}

func (s *Scheduler) onEvent(e events.Event) {
	switch e.(type) {
	case events.EntryUpserted, events.EntryUpdated, events.EntryRemoved,
		events.TripTypeChanged, events.TravelersChanged,
		events.WidgetInteractionLogged, events.FlightFinalized:
		s.markDirty()
	}
}

func (s *Scheduler) markDirty() {
	s.dirty.Store(true)

	window := s.config.Persistence.DebounceWindow
	if window <= 0 {
		window = defaultDebounceWindow
	}

	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.debounce = time.AfterFunc(window, s.persistIfDirty)
}

func (s *Scheduler) persistIfDirty() {
	if !s.dirty.Swap(false) {
		return
	}
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	start := time.Now()
	err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
	if err != nil {
		s.dirty.Store(true)
		s.logger.Errorf(providers.TypeApp, "Error while persisting trip state: %s", err)
		return
	}
	s.metrics.ObservePersistenceDuration(time.Since(start))
	s.logger.Infof(providers.TypeApp, "Persisted trip state to file %s", s.config.Persistence.FilePath)
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	s.timerMu.Lock()
	if s.debounce != nil {
		s.debounce.Stop()
		s.debounce = nil
	}
	s.timerMu.Unlock()
}

func (s *Scheduler) Restore() error {
	return s.fileManager.LoadFromFile(s.config.Persistence.FilePath)
}

// Persist is the shutdown flush: unconditional final write.
func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Persisting trip state to file...")
	start := time.Now()
	err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting trip state: %s", err)
		return err
	}
	s.dirty.Store(false)
	s.metrics.ObservePersistenceDuration(time.Since(start))
	return nil
}
