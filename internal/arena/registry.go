package arena

import (
	"fmt"
	"sort"
)

// ActorConfig carries the knobs a registered actor constructor may need.
type ActorConfig struct {
	Metric  Metric
	Mapping AttackMapping
	Stacked bool
}

// ComponentRegistry is a string-key -> constructor-closure table used for
// declarative assembly, e.g. from scenario files. Populated at startup; no
// reflection involved.
type ComponentRegistry struct {
	actors    map[string]func(ActorConfig) SimOption
	observers map[string]func() SimOption
	wrappers  map[string]func(key string) SimOption
}

// NewComponentRegistry returns a registry preloaded with the built-in
// components.
func NewComponentRegistry() *ComponentRegistry {
	r := &ComponentRegistry{
		actors:    map[string]func(ActorConfig) SimOption{},
		observers: map[string]func() SimOption{},
		wrappers:  map[string]func(string) SimOption{},
	}
	r.RegisterActor("move", func(cfg ActorConfig) SimOption { return WithMoveActor(cfg.Metric) })
	r.RegisterActor("cross_move", func(ActorConfig) SimOption { return WithCrossMoveActor() })
	r.RegisterActor("binary_attack", func(cfg ActorConfig) SimOption {
		return WithAttackActor(AttackBinary, cfg.Mapping, cfg.Stacked)
	})
	r.RegisterActor("encoding_attack", func(cfg ActorConfig) SimOption {
		return WithAttackActor(AttackEncodingBased, cfg.Mapping, cfg.Stacked)
	})
	r.RegisterActor("selective_attack", func(cfg ActorConfig) SimOption {
		return WithAttackActor(AttackSelective, cfg.Mapping, cfg.Stacked)
	})
	r.RegisterActor("restricted_selective_attack", func(cfg ActorConfig) SimOption {
		return WithAttackActor(AttackRestrictedSelective, cfg.Mapping, cfg.Stacked)
	})
	r.RegisterObserver("grid", WithPositionCenteredObserver)
	r.RegisterObserver("absolute_grid", WithAbsoluteObserver)
	r.RegisterObserver("stacked_grid", WithStackedObserver)
	r.RegisterWrapper("ravel", WithRavelledActions)
	r.RegisterWrapper("exclusive_channel", WithExclusiveChannelActions)
	return r
}

// RegisterActor adds or replaces an actor constructor under name.
func (r *ComponentRegistry) RegisterActor(name string, fn func(ActorConfig) SimOption) {
	r.actors[name] = fn
}

// RegisterObserver adds or replaces an observer constructor under name.
func (r *ComponentRegistry) RegisterObserver(name string, fn func() SimOption) {
	r.observers[name] = fn
}

// RegisterWrapper adds or replaces a wrapper constructor under name.
func (r *ComponentRegistry) RegisterWrapper(name string, fn func(key string) SimOption) {
	r.wrappers[name] = fn
}

// Actor looks up an actor constructor and applies the config.
func (r *ComponentRegistry) Actor(name string, cfg ActorConfig) (SimOption, error) {
	fn, ok := r.actors[name]
	if !ok {
		return SimOption{}, fmt.Errorf("unknown actor %q (have %v)", name, sortedKeys(r.actors))
	}
	return fn(cfg), nil
}

// Observer looks up an observer constructor.
func (r *ComponentRegistry) Observer(name string) (SimOption, error) {
	fn, ok := r.observers[name]
	if !ok {
		return SimOption{}, fmt.Errorf("unknown observer %q (have %v)", name, sortedKeys(r.observers))
	}
	return fn(), nil
}

// Wrapper looks up a wrapper constructor for the given action channel.
func (r *ComponentRegistry) Wrapper(name, key string) (SimOption, error) {
	fn, ok := r.wrappers[name]
	if !ok {
		return SimOption{}, fmt.Errorf("unknown wrapper %q (have %v)", name, sortedKeys(r.wrappers))
	}
	return fn(key), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
