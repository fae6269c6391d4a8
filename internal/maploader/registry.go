package maploader

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds loaded maps by name. It is the lookup the loader layer
// provides; renderers take a resolved *Map.
type Registry struct {
	mu   sync.RWMutex
	maps map[string]*Map
}

// NewRegistry creates an empty map registry
func NewRegistry() *Registry {
	return &Registry{
		maps: make(map[string]*Map),
	}
}

// LoadFile loads a map from a Tiled JSON export and registers it
func (r *Registry) LoadFile(mapPath string) (*Map, error) {
	m, err := LoadMap(mapPath)
	if err != nil {
		return nil, err
	}

	if err := r.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Register adds a loaded map under its name
func (r *Registry) Register(m *Map) error {
	if m.Name == "" {
		return fmt.Errorf("map name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.maps[m.Name]; exists {
		return fmt.Errorf("map %s is already registered", m.Name)
	}
	r.maps[m.Name] = m
	return nil
}

// Lookup returns the map registered under name
func (r *Registry) Lookup(name string) (*Map, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.maps[name]
	if !ok {
		return nil, fmt.Errorf("%w: no tiled map named %q", ErrMapNotFound, name)
	}
	return m, nil
}

// Names returns all registered map names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.maps))
	for name := range r.maps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
