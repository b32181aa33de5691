// Package provider implements LLM backends behind the domain.Provider
// interface, plus a factory that builds them from config.
package provider

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sshroot23cs/SupportSenseAI/internal/config"
	"github.com/sshroot23cs/SupportSenseAI/internal/domain"
)

// Constructor creates a provider from a config entry.
type Constructor func(pc config.ProviderConfig, logger *slog.Logger) domain.Provider

// Factory creates and caches providers from config. The same instance is
// reused across calls so connection pools and detected models persist.
type Factory struct {
	cfg          *config.Config
	logger       *slog.Logger
	constructors map[string]Constructor
	cache        map[string]domain.Provider
	mu           sync.RWMutex
}

func NewFactory(cfg *config.Config, logger *slog.Logger) *Factory {
	f := &Factory{
		cfg:          cfg,
		logger:       logger,
		constructors: make(map[string]Constructor),
		cache:        make(map[string]domain.Provider),
	}
	f.registerDefaults()
	return f
}

// Register adds (or replaces) a provider constructor by name.
func (f *Factory) Register(name string, ctor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.constructors[name] = ctor
}

func timeoutFrom(pc config.ProviderConfig) time.Duration {
	if pc.TimeoutSeconds > 0 {
		return time.Duration(pc.TimeoutSeconds) * time.Second
	}
	return 0
}

func (f *Factory) registerDefaults() {
	f.constructors["ollama"] = func(pc config.ProviderConfig, logger *slog.Logger) domain.Provider {
		return NewOllama(OllamaConfig{
			APIBase: pc.APIBase,
			Model:   pc.DefaultModel,
			Timeout: timeoutFrom(pc),
			Logger:  logger,
		})
	}

	f.constructors["openai"] = func(pc config.ProviderConfig, logger *slog.Logger) domain.Provider {
		return NewOpenAI(OpenAIConfig{
			APIKey:  pc.APIKey,
			APIBase: pc.APIBase,
			Model:   pc.DefaultModel,
			Timeout: timeoutFrom(pc),
			Logger:  logger,
		})
	}

	f.constructors["azure"] = func(pc config.ProviderConfig, logger *slog.Logger) domain.Provider {
		return NewOpenAI(OpenAIConfig{
			APIKey:     pc.APIKey,
			APIBase:    pc.APIBase,
			APIVersion: pc.APIVersion,
			Model:      pc.DefaultModel,
			Timeout:    timeoutFrom(pc),
			Logger:     logger,
		})
	}
}

// Get returns the provider with the given name, or the default if name is
// empty. Uses double-check locking to avoid TOCTOU races on the cache.
func (f *Factory) Get(name string) (domain.Provider, error) {
	if name == "" {
		name = f.cfg.General.DefaultProvider
	}

	f.mu.RLock()
	if cached, ok := f.cache[name]; ok {
		f.mu.RUnlock()
		return cached, nil
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	if cached, ok := f.cache[name]; ok {
		return cached, nil
	}

	pc, ok := f.cfg.Providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
	if !pc.Enabled {
		return nil, fmt.Errorf("provider %s is disabled", name)
	}

	ctor, found := f.constructors[name]

	var p domain.Provider
	switch {
	case found:
		p = ctor(pc, f.logger)
	case pc.APIBase != "" && pc.APIKey != "":
		// Unknown names with credentials are treated as OpenAI-compatible.
		p = NewOpenAI(OpenAIConfig{
			APIKey:  pc.APIKey,
			APIBase: pc.APIBase,
			Model:   pc.DefaultModel,
			Timeout: timeoutFrom(pc),
			Logger:  f.logger,
		})
	default:
		return nil, fmt.Errorf("provider %s: no constructor registered and no API base/key configured", name)
	}

	f.cache[name] = p
	return p, nil
}

// DefaultProvider returns the configured default provider.
func (f *Factory) DefaultProvider() (domain.Provider, error) {
	return f.Get("")
}

// HealthyProvider returns the first enabled provider that passes a health
// check, preferring the default. Returns nil when none respond.
func (f *Factory) HealthyProvider(ctx context.Context) domain.Provider {
	if p, err := f.DefaultProvider(); err == nil && p.Healthy(ctx) == nil {
		return p
	}
	for name, pc := range f.cfg.Providers {
		if !pc.Enabled || name == f.cfg.General.DefaultProvider {
			continue
		}
		p, err := f.Get(name)
		if err != nil {
			continue
		}
		if p.Healthy(ctx) == nil {
			return p
		}
	}
	return nil
}
