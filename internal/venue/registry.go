// Package venue implements the gateway connectors for supported trading
// venues and the static registry through which the core resolves them. Each
// venue is a concrete VenueGateway variant; nothing is looked up by runtime
// reflection.
package venue

import (
	"fmt"
	"sort"
	"sync"

	"github.com/alanyoungcy/arbsim/internal/domain"
)

// Registry holds the gateways of all supported venues.
type Registry struct {
	gateways map[string]domain.VenueGateway
	mu       sync.RWMutex
}

// NewRegistry returns an empty registry. Call Register to add gateways.
func NewRegistry() *Registry {
	return &Registry{gateways: make(map[string]domain.VenueGateway)}
}

// Register adds a gateway under its own name.
func (r *Registry) Register(gw domain.VenueGateway) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gateways[gw.Name()] = gw
}

// Get returns the gateway for name, or ErrUnknownVenue.
func (r *Registry) Get(name string) (domain.VenueGateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gw, ok := r.gateways[name]
	if !ok {
		return nil, fmt.Errorf("venue: %q: %w", name, domain.ErrUnknownVenue)
	}
	return gw, nil
}

// Names returns all registered venue names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.gateways))
	for n := range r.gateways {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// All returns the registered gateways ordered by venue name.
func (r *Registry) All() []domain.VenueGateway {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.gateways))
	for n := range r.gateways {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]domain.VenueGateway, 0, len(names))
	for _, n := range names {
		out = append(out, r.gateways[n])
	}
	return out
}
