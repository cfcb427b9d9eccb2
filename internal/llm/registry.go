package llm

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/promptbench/promptbench/internal/logger"
	"github.com/promptbench/promptbench/internal/models"
)

// Factory builds a connector from a registered model spec. It returns a
// *models.ValidationError for malformed specs.
type Factory func(spec *models.ModelSpec) (Connector, error)

// Registry holds configured connectors keyed by model id, plus each
// backend's last-known connectivity. Reads are concurrent; registration
// and probe refreshes are serialized against them.
type Registry struct {
	mu         sync.RWMutex
	factory    Factory
	connectors map[string]Connector
	connected  map[string]bool
}

// NewRegistry creates an empty registry using factory for runtime
// registration
func NewRegistry(factory Factory) *Registry {
	return &Registry{
		factory:    factory,
		connectors: make(map[string]Connector),
		connected:  make(map[string]bool),
	}
}

// Add installs a pre-built connector under the given id, overwriting any
// previous entry
func (r *Registry) Add(id string, c Connector, connected bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectors[id] = c
	r.connected[id] = connected
}

// Get returns the connector for a model id
func (r *Registry) Get(id string) (Connector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.connectors[id]
	return c, ok
}

// List returns all descriptors with current connectivity, ordered by id
func (r *Registry) List() []models.ModelDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptors := make([]models.ModelDescriptor, 0, len(r.connectors))
	for id, c := range r.connectors {
		d := c.Describe()
		d.ID = id
		d.Connected = r.connected[id]
		descriptors = append(descriptors, d)
	}

	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].ID < descriptors[j].ID
	})
	return descriptors
}

// Register validates the spec, builds a connector, probes connectivity
// once and installs the connector under its assigned id. Registration is
// effective for subsequent runs without restart. A name collision or
// malformed credential yields a *models.ValidationError.
func (r *Registry) Register(ctx context.Context, spec *models.ModelSpec) (string, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return "", models.NewValidationError("name", "name is required")
	}

	id := AssignID(spec.Provider, spec.Name)

	r.mu.Lock()
	if _, exists := r.connectors[id]; exists {
		r.mu.Unlock()
		return "", models.NewValidationError("name", "model %q is already registered", spec.Name)
	}
	r.mu.Unlock()

	connector, err := r.factory(spec)
	if err != nil {
		return "", err
	}

	connected := true
	if err := connector.Probe(ctx); err != nil {
		logger.Warning("Connectivity probe failed for %s: %v", id, err)
		connected = false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.connectors[id]; exists {
		return "", models.NewValidationError("name", "model %q is already registered", spec.Name)
	}
	r.connectors[id] = connector
	r.connected[id] = connected

	return id, nil
}

// RefreshConnectivity re-probes one backend and updates its flag
func (r *Registry) RefreshConnectivity(ctx context.Context, id string) (bool, error) {
	r.mu.RLock()
	c, ok := r.connectors[id]
	r.mu.RUnlock()
	if !ok {
		return false, models.NewValidationError("model_id", "unknown model id: %s", id)
	}

	connected := c.Probe(ctx) == nil

	r.mu.Lock()
	r.connected[id] = connected
	r.mu.Unlock()

	return connected, nil
}

// AssignID derives the registry id for a provider/name pair
func AssignID(provider, name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "-")
	return provider + "_" + slug
}
