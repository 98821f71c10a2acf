package robot

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry provides robot lookups with caching and thread safety.
// It wraps a Repository and adds an in-memory cache so the command path
// never waits on the database.
//
// State snapshots in the cache follow a single-writer discipline: only the
// status ingest calls UpdateState, and every read returns a clone. All
// public methods are thread-safe.
type Registry struct {
	repo    Repository
	cache   map[string]*Robot // Cached robots by serial
	cacheMu sync.RWMutex      // Protects cache
	logger  Logger
}

// NewRegistry creates a new robot registry.
// The repository is used for persistence; the registry adds caching.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:   repo,
		cache:  make(map[string]*Robot),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// RefreshCache reloads all robots from the repository into the cache.
// This should be called on application startup.
func (r *Registry) RefreshCache(ctx context.Context) error {
	robots, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading robots: %w", err)
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	r.cache = make(map[string]*Robot, len(robots))
	for i := range robots {
		bot := robots[i]
		r.cache[bot.Serial] = bot.Clone()
	}

	r.logger.Info("robot cache refreshed", "count", len(robots))
	return nil
}

// Get retrieves a robot by serial.
// Returns ErrNotFound if the robot does not exist.
// The returned robot is a clone; callers can safely modify it.
func (r *Registry) Get(ctx context.Context, serial string) (*Robot, error) {
	r.cacheMu.RLock()
	cached, ok := r.cache[serial]
	r.cacheMu.RUnlock()

	if ok {
		return cached.Clone(), nil
	}

	// Fall back to repository (might be a new robot not yet cached)
	bot, err := r.repo.GetBySerial(ctx, serial)
	if err != nil {
		return nil, err
	}

	r.cacheMu.Lock()
	r.cache[serial] = bot.Clone()
	r.cacheMu.Unlock()

	return bot, nil
}

// List retrieves all robots.
// The returned robots are clones; callers can safely modify them.
func (r *Registry) List(ctx context.Context) ([]Robot, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	if len(r.cache) > 0 {
		robots := make([]Robot, 0, len(r.cache))
		for _, bot := range r.cache {
			robots = append(robots, *bot.Clone())
		}
		return robots, nil
	}

	return r.repo.List(ctx)
}

// Create inserts a new robot and caches it.
func (r *Registry) Create(ctx context.Context, bot *Robot) error {
	if err := r.repo.Create(ctx, bot); err != nil {
		return err
	}

	r.cacheMu.Lock()
	r.cache[bot.Serial] = bot.Clone()
	r.cacheMu.Unlock()

	r.logger.Info("robot created", "serial", bot.Serial, "name", bot.Name)
	return nil
}

// UpdateState replaces a robot's state snapshot and persists it.
//
// This is the single write path for state: it is called only from the
// status ingest goroutine, so no two state writes for the same robot race.
// Returns ErrNotFound for serials not in the registry - robots may be
// deprovisioned while their hardware is still transmitting.
func (r *Registry) UpdateState(ctx context.Context, serial string, state State) error {
	r.cacheMu.Lock()
	cached, ok := r.cache[serial]
	if !ok {
		r.cacheMu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, serial)
	}
	cached.State = state.Clone()
	cached.UpdatedAt = time.Now().UTC()
	r.cacheMu.Unlock()

	if err := r.repo.UpdateState(ctx, serial, state); err != nil {
		return fmt.Errorf("persisting state for %s: %w", serial, err)
	}
	return nil
}

// Snapshot returns a copy of a robot's current state.
// Returns ErrNotFound if the robot does not exist.
func (r *Registry) Snapshot(serial string) (State, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	cached, ok := r.cache[serial]
	if !ok {
		return State{}, fmt.Errorf("%w: %s", ErrNotFound, serial)
	}
	return cached.State.Clone(), nil
}

// Count returns the number of cached robots.
func (r *Registry) Count() int {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	return len(r.cache)
}
