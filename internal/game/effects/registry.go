package effects

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Kind is the registry key of a scripted effect. Card definitions
// reference effects by kind so that card data stays plain data.
type Kind string

// Effect is a scripted behavior attached to an attack, trainer card,
// or trigger. Apply mutates the game only through the context's State.
type Effect struct {
	Kind        Kind
	Description string
	Apply       func(ctx *Context) error
}

// Registry maps effect kinds to their implementations. New kinds can
// be registered at any time; resolving an unregistered kind is a
// logged no-op so that unknown card scripts never break a game.
type Registry struct {
	mu      sync.RWMutex
	effects map[Kind]Effect
	logger  *zap.Logger
}

// NewRegistry creates an empty effect registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		effects: make(map[Kind]Effect),
		logger:  logger,
	}
}

// Register adds or replaces the implementation for a kind.
func (r *Registry) Register(effect Effect) error {
	if effect.Kind == "" {
		return fmt.Errorf("effect kind must not be empty")
	}
	if effect.Apply == nil {
		return fmt.Errorf("effect %s has no apply function", effect.Kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.effects[effect.Kind] = effect
	return nil
}

// Lookup returns the effect registered for the kind.
func (r *Registry) Lookup(kind Kind) (Effect, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	effect, ok := r.effects[kind]
	return effect, ok
}

// Kinds returns all registered kinds.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]Kind, 0, len(r.effects))
	for k := range r.effects {
		kinds = append(kinds, k)
	}
	return kinds
}

// Apply resolves the effect registered under kind against the context.
// Unknown kinds are skipped.
func (r *Registry) Apply(kind Kind, ctx *Context) error {
	if kind == "" {
		return nil
	}
	effect, ok := r.Lookup(kind)
	if !ok {
		if r.logger != nil {
			r.logger.Debug("Skipping unknown effect kind",
				zap.String("kind", string(kind)),
				zap.String("source", ctx.SourceID))
		}
		return nil
	}
	return effect.Apply(ctx)
}
