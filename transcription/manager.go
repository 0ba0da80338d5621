package transcription

import (
	"context"
	"sync"

	"github.com/skillsenselab/lyricsync/errors"
	"github.com/skillsenselab/lyricsync/logger"
)

// Factory constructs a ready-to-use transcription provider. It carries the
// expensive part of model setup (loading weights into the serving process),
// so it runs at most once per process under normal operation.
type Factory func(ctx context.Context) (Provider, error)

// Manager caches one transcription provider process-wide with single-flight
// lazy initialization. Model loading takes seconds to minutes and must not
// be repeated per request; concurrent first callers block on the in-flight
// construction and all receive the same instance. A failed construction
// releases the guard so a later call can retry.
//
// The instance is shared read-only after construction and lives for the
// process lifetime; there is no teardown.
type Manager struct {
	mu       sync.RWMutex
	factory  Factory
	instance Provider
	log      *logger.Logger
}

// NewManager creates a Manager around the given factory.
func NewManager(factory Factory, log *logger.Logger) *Manager {
	return &Manager{
		factory: factory,
		log:     log.WithComponent("model-manager"),
	}
}

// Acquire returns the cached provider, constructing it on first use.
// Construction failures surface as a model-initialization AppError.
func (m *Manager) Acquire(ctx context.Context) (Provider, error) {
	m.mu.RLock()
	if m.instance != nil {
		defer m.mu.RUnlock()
		return m.instance, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another caller may have finished construction while we waited.
	if m.instance != nil {
		return m.instance, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.ModelInitialization(err)
	}

	m.log.Info("loading transcription model")
	inst, err := m.factory(ctx)
	if err != nil {
		m.log.Error("model load failed", logger.ErrorFields("load", err))
		return nil, errors.ModelInitialization(err)
	}

	m.instance = inst
	m.log.Info("transcription model ready", logger.Fields(logger.FieldModel, inst.Name()))
	return inst, nil
}

// IsLoaded reports whether the provider has been constructed. Used by the
// health endpoint; never triggers construction.
func (m *Manager) IsLoaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.instance != nil
}
