package scenario

import "sort"

// Registry resolves regime keys to strategies. A Registry is read-only once
// built and safe for concurrent use.
type Registry struct {
	strategies map[string]Strategy
}

// RegistryBuilder collects strategies before the Registry is frozen.
type RegistryBuilder struct {
	strategies map[string]Strategy
}

// NewRegistryBuilder returns a builder with the default strategy registered.
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{
		strategies: map[string]Strategy{
			DefaultKey: DefaultStrategy,
		},
	}
}

// Register adds a strategy under key. The last registration for a key wins.
// A nil strategy is ignored.
func (b *RegistryBuilder) Register(key string, fn Strategy) *RegistryBuilder {
	if fn == nil {
		return b
	}
	b.strategies[key] = fn
	return b
}

// Build freezes the registered strategies. Later calls to Register on the
// builder do not affect the returned Registry.
func (b *RegistryBuilder) Build() *Registry {
	frozen := make(map[string]Strategy, len(b.strategies))
	for k, fn := range b.strategies {
		frozen[k] = fn
	}
	return &Registry{strategies: frozen}
}

// NewDefaultRegistry returns a registry holding only the default strategy.
func NewDefaultRegistry() *Registry {
	return NewRegistryBuilder().Build()
}

// Lookup resolves key, then DefaultKey, then the built-in DefaultStrategy.
func (r *Registry) Lookup(key string) Strategy {
	if r != nil {
		if fn, ok := r.strategies[key]; ok {
			return fn
		}
		if fn, ok := r.strategies[DefaultKey]; ok {
			return fn
		}
	}
	return DefaultStrategy
}

// Calculate runs the strategy registered for regimeKey.
func (r *Registry) Calculate(regimeKey string, in Input) Result {
	return r.Lookup(regimeKey)(in)
}

// Keys lists registered regime keys in sorted order.
func (r *Registry) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, 0, len(r.strategies))
	for k := range r.strategies {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
