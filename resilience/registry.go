package resilience

import (
	"sync"

	"go.uber.org/zap"
)

// Registry holds one circuit breaker per logical component name. Breakers
// are created lazily on first use and live for the process lifetime.
type Registry struct {
	config CircuitBreakerConfig
	logger *zap.Logger

	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
}

// NewRegistry creates a registry that stamps out breakers with the given
// configuration.
func NewRegistry(config CircuitBreakerConfig, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		config:   config,
		logger:   logger,
		breakers: make(map[string]*CircuitBreaker),
	}
}

// Get returns the breaker for a component name, creating it on first use.
func (r *Registry) Get(component string) *CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[component]; ok {
		return cb
	}

	cfg := r.config
	logger := r.logger
	userHook := cfg.OnStateChange
	cfg.OnStateChange = func(from, to State) {
		logger.Warn("circuit breaker state change",
			zap.String("component", component),
			zap.String("from", from.String()),
			zap.String("to", to.String()))
		if userHook != nil {
			userHook(from, to)
		}
	}

	cb := NewCircuitBreaker(cfg)
	r.breakers[component] = cb
	return cb
}

// Reset resets the named breaker. Unknown names are a no-op.
func (r *Registry) Reset(component string) {
	r.mu.Lock()
	cb, ok := r.breakers[component]
	r.mu.Unlock()

	if ok {
		cb.Reset()
	}
}

// ResetAll resets every breaker in the registry.
func (r *Registry) ResetAll() {
	r.mu.Lock()
	breakers := make([]*CircuitBreaker, 0, len(r.breakers))
	for _, cb := range r.breakers {
		breakers = append(breakers, cb)
	}
	r.mu.Unlock()

	for _, cb := range breakers {
		cb.Reset()
	}
}

// States returns the current state of every breaker by component name.
func (r *Registry) States() map[string]State {
	r.mu.Lock()
	defer r.mu.Unlock()

	states := make(map[string]State, len(r.breakers))
	for name, cb := range r.breakers {
		states[name] = cb.State()
	}
	return states
}
