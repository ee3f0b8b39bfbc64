package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/relaygrid/scriptengine/internal/errz"
)

// Memory is an in-process id→text registry.
type Memory struct {
	mu    sync.RWMutex
	store map[string]string
}

func NewMemory() *Memory {
	return &Memory{store: map[string]string{}}
}

func (m *Memory) Register(id, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[id] = text
}

func (m *Memory) Unregister(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, id)
}

func (m *Memory) Has(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.store[id]
	return ok
}

func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = map[string]string{}
}

func (m *Memory) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.store))
	for id := range m.store {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *Memory) Resolve(_ context.Context, id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	text, ok := m.store[id]
	if !ok {
		return "", fmt.Errorf("%w: %q", errz.ErrScriptNotFound, id)
	}
	return text, nil
}
