package ontology

import "sync"

// Registry holds the ontology for a session. It replaces a process-wide
// cache with an explicitly constructed value that callers pass around.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu  sync.RWMutex
	ont *Ontology
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry { return &Registry{} }

// Load reads the ontology at path and makes it current. On failure the
// previous ontology is kept.
func (r *Registry) Load(path string) (*Ontology, error) {
	o, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	r.Set(o)
	return o, nil
}

// Set replaces the current ontology.
func (r *Registry) Set(o *Ontology) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ont = o
}

// Get returns the current ontology, if one is loaded.
func (r *Registry) Get() (*Ontology, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ont, r.ont != nil
}

// Clear drops the current ontology.
func (r *Registry) Clear() {
	r.Set(nil)
}
