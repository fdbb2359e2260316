package session

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"futuremap/application/services"
	"futuremap/domain/core/valueobjects"
	domainservices "futuremap/domain/services"
)

// Settings are the engine-wide knobs applied to every session
type Settings struct {
	Grid      valueobjects.Grid
	Placement services.PlacementPolicy
	Analytics domainservices.Policy
}

type entry struct {
	mu       sync.Mutex
	engine   *services.PathCanvasEngine
	lastUsed time.Time
	// evicted is set under mu once the entry has left the registry
	evicted bool
}

// Registry maps authenticated users to their in-memory workspace engine.
// Calls for one user run one at a time; different users proceed in parallel.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	settings Settings
	deps     services.Dependencies
	logger   *zap.Logger
	now      func() time.Time
	lookup   func(userID string) *entry
}

// NewRegistry creates an empty registry
func NewRegistry(settings Settings, deps services.Dependencies, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	deps.Logger = logger
	r := &Registry{
		sessions: make(map[string]*entry),
		settings: settings,
		deps:     deps,
		logger:   logger,
		now:      time.Now,
	}
	r.lookup = r.entryFor
	return r
}

// With runs fn against the user's engine, creating the workspace on first use
func (r *Registry) With(userID string, fn func(*services.PathCanvasEngine) error) error {
	for {
		// an entry evicted between lookup and lock is retried with a fresh one
		if ran, err := r.run(r.lookup(userID), fn); ran {
			return err
		}
	}
}

func (r *Registry) run(e *entry, fn func(*services.PathCanvasEngine) error) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.evicted {
		return false, nil
	}
	e.lastUsed = r.now()
	return true, fn(e.engine)
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Settings returns the settings new sessions start with
func (r *Registry) Settings() Settings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings
}

// UpdatePolicies applies new placement and analytics policies to every
// session. The grid is fixed for the life of a workspace and is only used
// for sessions created afterwards.
func (r *Registry) UpdatePolicies(settings Settings) {
	r.mu.Lock()
	r.settings = settings
	entries := make([]*entry, 0, len(r.sessions))
	for _, e := range r.sessions {
		entries = append(entries, e)
	}
	r.mu.Unlock()

	for _, e := range entries {
		e.mu.Lock()
		e.engine.SetPlacementPolicy(settings.Placement)
		e.engine.SetAnalyticsPolicy(settings.Analytics)
		e.mu.Unlock()
	}

	r.logger.Info("Session policies updated",
		zap.Int("sessions", len(entries)),
		zap.Bool("autoConnect", settings.Placement.AutoConnect),
		zap.Int("proximityThreshold", settings.Placement.ProximityThreshold),
	)
}

// Evict drops sessions idle for longer than maxIdle and returns how many were removed
func (r *Registry) Evict(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for userID, e := range r.sessions {
		if !e.mu.TryLock() {
			continue
		}
		if e.lastUsed.Before(cutoff) {
			e.evicted = true
			delete(r.sessions, userID)
			removed++
		}
		e.mu.Unlock()
	}
	if removed > 0 {
		r.logger.Debug("Evicted idle sessions", zap.Int("count", removed))
	}
	return removed
}

func (r *Registry) entryFor(userID string) *entry {
	r.mu.RLock()
	e, ok := r.sessions[userID]
	r.mu.RUnlock()
	if ok {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[userID]; ok {
		return e
	}
	e = &entry{
		engine:   services.NewPathCanvasEngine(r.settings.Grid, r.settings.Placement, r.settings.Analytics, r.deps),
		lastUsed: r.now(),
	}
	r.sessions[userID] = e
	r.logger.Debug("Session workspace created", zap.String("userID", userID))
	return e
}
