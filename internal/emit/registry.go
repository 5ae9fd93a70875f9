package emit

import (
	"fmt"
	"sort"
	"sync"
)

// Artifact is one named output file. Path is slash-separated and relative to
// the backend's output directory.
type Artifact struct {
	Path    string
	Content []byte
}

// Emitter renders a model into artifacts. Emitters hold no state beyond
// their options; Emit must not mutate the model.
type Emitter interface {
	Name() string
	Description() string
	Emit(m *Model) ([]Artifact, error)
}

// Options configures emitters. Each backend reads the fields it cares about.
type Options struct {
	// BaseURL is the server address the smoke test targets.
	BaseURL string
	// FastAPILayout selects the FastAPI file layout: "single" or "package".
	FastAPILayout string
}

// Factory builds an emitter from options.
type Factory func(Options) (Emitter, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds an emitter factory to the registry.
// Called by backend packages in their init() functions.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Get retrieves an emitter factory by name.
func Get(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// New creates the named emitter.
func New(name string, opts Options) (Emitter, error) {
	factory, ok := Get(name)
	if !ok {
		return nil, &UnknownBackendError{Name: name, Available: Names()}
	}
	e, err := factory(opts)
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", name, err)
	}
	return e, nil
}

// Names returns all registered backend names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend name is registered.
func IsRegistered(name string) bool {
	_, ok := Get(name)
	return ok
}

// UnknownBackendError is returned when an unregistered backend is requested.
type UnknownBackendError struct {
	Name      string
	Available []string
}

func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("unknown backend %q\nAvailable backends: %v\nHint: check backends in leapgen.yaml or the --backend flag", e.Name, e.Available)
}
