package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/relaygrid/scriptengine/internal/errz"
)

// EnvironmentTag selects which backing registry an Environment dispatches
// to.
type EnvironmentTag string

const (
	EnvDevelopment EnvironmentTag = "development"
	EnvStaging     EnvironmentTag = "staging"
	EnvProduction  EnvironmentTag = "production"
	EnvDefault     EnvironmentTag = "default"
)

// Environment picks one of a fixed set of backing registries by tag,
// switchable at runtime.
type Environment struct {
	mu         sync.RWMutex
	registries map[EnvironmentTag]Registry
	current    EnvironmentTag
}

func NewEnvironment(current EnvironmentTag, registries map[EnvironmentTag]Registry) *Environment {
	return &Environment{registries: registries, current: current}
}

// SetCurrent switches the active tag.
func (e *Environment) SetCurrent(tag EnvironmentTag) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = tag
}

func (e *Environment) Resolve(ctx context.Context, id string) (string, error) {
	e.mu.RLock()
	reg, ok := e.registries[e.current]
	if !ok {
		reg, ok = e.registries[EnvDefault]
	}
	e.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: no registry configured for environment %q", errz.ErrRegistryFetchFailed, e.current)
	}
	return reg.Resolve(ctx, id)
}
