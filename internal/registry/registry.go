// Package registry provides a global registry for simulation engine factories.
// Engines register themselves in init() functions, allowing the host to
// construct one without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/recwars/internal/config"
	"github.com/vovakirdan/recwars/internal/core"
	"github.com/vovakirdan/recwars/internal/input"
)

// Engine is the per-frame contract of a simulation engine.
// It owns physics, entities and drawing; the host only feeds it time and input.
type Engine interface {
	// Update advances the world to scaled time t (seconds).
	// Call intervals are irregular; t never decreases.
	Update(t float64, in input.ActionState, cvars *config.Cvars) error

	// Draw renders the world into the target it was constructed with.
	Draw(cvars *config.Cvars) error
}

// Setup is everything an engine is constructed with, once per session.
type Setup struct {
	Cvars    *config.Cvars
	Target   *core.Screen
	Width    int
	Height   int
	MapPath  string
	Manifest string // texture manifest text, opaque to the host
	Level    string // level text, opaque to the host
}

// EngineInfo contains metadata about a registered engine.
type EngineInfo struct {
	ID    string
	Title string
}

// Factory constructs an engine from the startup resources.
type Factory func(Setup) (Engine, error)

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds an engine factory to the registry.
// Typically called from an engine's init() function.
// Panics if an engine with the same ID is already registered.
func Register(id, title string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: engine %q already registered", id))
	}

	factories[id] = f
	titles[id] = title
}

// List returns information about all registered engines, sorted by ID.
func List() []EngineInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]EngineInfo, 0, len(factories))
	for id := range factories {
		result = append(result, EngineInfo{
			ID:    id,
			Title: titles[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create constructs an engine by its ID.
// Returns an error if the ID is not registered or construction fails.
func Create(id string, s Setup) (Engine, error) {
	mu.RLock()
	f, ok := factories[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown engine %q", id)
	}

	e, err := f(s)
	if err != nil {
		return nil, fmt.Errorf("registry: construct %s: %w", id, err)
	}
	return e, nil
}

// Exists checks if an engine with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
