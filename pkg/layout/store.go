package layout

import (
	"maps"
	"sync"
)

// Store holds the selected algorithm and per-algorithm parameter overrides.
// Defaults come from the dispatcher's engines; overrides are merged over
// them on read.
type Store struct {
	mu         sync.RWMutex
	dispatcher *Dispatcher
	initial    Algorithm
	algorithm  Algorithm
	overrides  map[Algorithm]Params
}

// NewStore returns a store selecting alg. A nil dispatcher uses Default();
// an empty alg selects DefaultAlgorithm.
func NewStore(d *Dispatcher, alg Algorithm) (*Store, error) {
	if d == nil {
		d = Default()
	}
	if alg == "" {
		alg = DefaultAlgorithm
	}
	if _, err := d.Engine(alg); err != nil {
		return nil, err
	}
	return &Store{
		dispatcher: d,
		initial:    alg,
		algorithm:  alg,
		overrides:  make(map[Algorithm]Params),
	}, nil
}

// Algorithm returns the selected algorithm.
func (s *Store) Algorithm() Algorithm {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.algorithm
}

// SetAlgorithm selects alg. Unknown algorithms are rejected and leave the
// selection unchanged.
func (s *Store) SetAlgorithm(alg Algorithm) error {
	if _, err := s.dispatcher.Engine(alg); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.algorithm = alg
	return nil
}

// Checker is implemented by engines that can validate params without
// running a layout.
type Checker interface {
	Check(p Params) error
}

// SetParams merges partial over the existing overrides for alg. Engines
// implementing Checker reject invalid values here, leaving the overrides
// unchanged.
func (s *Store) SetParams(alg Algorithm, partial Params) error {
	e, err := s.dispatcher.Engine(alg)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := Merge(s.overrides[alg], partial)
	if c, ok := e.(Checker); ok {
		if err := c.Check(Merge(e.Defaults(), merged)); err != nil {
			return err
		}
	}
	s.overrides[alg] = merged
	return nil
}

// Params returns the effective parameters for alg: defaults with overrides
// applied. The returned map is a copy.
func (s *Store) Params(alg Algorithm) (Params, error) {
	defaults, err := s.dispatcher.Defaults(alg)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Merge(defaults, s.overrides[alg]), nil
}

// Overrides returns a copy of the caller-set parameters for alg.
func (s *Store) Overrides(alg Algorithm) Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.overrides[alg])
}

// Config returns the selected algorithm with its effective parameters.
func (s *Store) Config() Config {
	alg := s.Algorithm()
	p, err := s.Params(alg)
	if err != nil {
		p = Params{}
	}
	return Config{Algorithm: alg, Params: p}
}

// ResetParams drops the overrides for alg.
func (s *Store) ResetParams(alg Algorithm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides, alg)
}

// Reset restores the initial algorithm and drops every override.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.algorithm = s.initial
	s.overrides = make(map[Algorithm]Params)
}
