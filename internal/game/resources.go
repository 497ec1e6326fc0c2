/*
Package game
File: resources.go
Description:
    Resource pool bookkeeping for containers.
    Housed parts' pools are merged additively into the container's own pools;
    removal takes back a proportional share of the current fill level.
*/

package game

import "slices"

// ResourceSet is an ordered collection of named pools. Names are unique.
type ResourceSet struct {
	pools []ResourcePool
}

// NewResourceSet seeds a set with the given pools (e.g. the host part's own tanks).
func NewResourceSet(pools []ResourcePool) *ResourceSet {
	return &ResourceSet{pools: slices.Clone(pools)}
}

// Get returns a copy of the named pool.
func (s *ResourceSet) Get(name string) (ResourcePool, bool) {
	if i := s.index(name); i >= 0 {
		return s.pools[i], true
	}
	return ResourcePool{}, false
}

// Pools returns a snapshot of every pool in insertion order.
func (s *ResourceSet) Pools() []ResourcePool {
	return slices.Clone(s.pools)
}

// Len returns the number of pools.
func (s *ResourceSet) Len() int {
	return len(s.pools)
}

func (s *ResourceSet) index(name string) int {
	return slices.IndexFunc(s.pools, func(p ResourcePool) bool { return p.Name == name })
}

// Merge adds a housed part's pool: amounts and capacities are summed,
// and an unknown resource gets a new pool initialized from the part's.
func (s *ResourceSet) Merge(r ResourcePool) {
	if i := s.index(r.Name); i >= 0 {
		s.pools[i].Amount += r.Amount
		s.pools[i].MaxAmount += r.MaxAmount
		return
	}
	s.pools = append(s.pools, r)
}

// Split removes a housed part's share of a merged pool.
// The share of the current amount is partMax/poolMax, which keeps the fill ratio
// of the remaining capacity. A pool left with no capacity is deleted.
func (s *ResourceSet) Split(name string, partMax float64) {
	i := s.index(name)
	if i < 0 {
		return
	}
	p := &s.pools[i]

	// Zero capacity: nothing to divide by, and the pool must not linger.
	if p.MaxAmount <= 0 {
		s.pools = slices.Delete(s.pools, i, i+1)
		return
	}

	remove := p.Amount * (partMax / p.MaxAmount)
	p.Amount -= remove
	p.MaxAmount -= partMax
	if p.MaxAmount <= 0 {
		s.pools = slices.Delete(s.pools, i, i+1)
		return
	}
	if p.Amount < 0 {
		p.Amount = 0
	}
}
