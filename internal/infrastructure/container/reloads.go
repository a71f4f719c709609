package container

import (
	"sync"

	"github.com/alchemorsel/pantry/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ConfigReloads fans config file changes out to subscribers. Changes that
// arrive before a logger is attached are still delivered; errors are dropped.
type ConfigReloads struct {
	mu          sync.Mutex
	subscribers []func(*config.Config)
	logger      *zap.Logger
}

// NewConfigReloads creates an empty reload hub
func NewConfigReloads() *ConfigReloads {
	return &ConfigReloads{}
}

// Subscribe registers fn for every successful reload
func (r *ConfigReloads) Subscribe(fn func(*config.Config)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers = append(r.subscribers, fn)
}

func (r *ConfigReloads) attach(logger *zap.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger.Named("config")
}

func (r *ConfigReloads) publish(cfg *config.Config) {
	r.mu.Lock()
	subscribers := append([]func(*config.Config){}, r.subscribers...)
	logger := r.logger
	r.mu.Unlock()

	if logger != nil {
		logger.Info("Configuration reloaded")
	}
	for _, fn := range subscribers {
		fn(cfg)
	}
}

func (r *ConfigReloads) fail(err error) {
	r.mu.Lock()
	logger := r.logger
	r.mu.Unlock()

	if logger != nil {
		logger.Warn("Ignoring invalid configuration change", zap.Error(err))
	}
}
