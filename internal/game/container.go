/*
Package game
File: container.go
Description:
    The Container Ledger.
    A container part holds other parts inside an authored internal volume.
    Equip admits a candidate if it fits in the free volume and merges its
    resource pools into the host part's; Unequip evicts a housed part and
    takes back its proportional share of every merged pool.

    The ledger takes no locks: the host serializes every call (see Workshop.Lock).
*/

package game

import (
	"fmt"
	"math"
	"slices"

	"go.uber.org/zap"
)

// Module is the lifecycle surface the host drives. It replaces name-based callback dispatch.
type Module interface {
	OnLoad(node *ContainerNode) error
	OnSave() *ContainerNode
	OnStart()
	Equip(candidate *PartInstance) error
	Unequip(part *PartInstance) error
	List() []*PartInstance
}

var _ Module = (*Container)(nil)

// microlitersPerLiter is the resolution the ledger keeps volumes at.
// Without it 0.3 - 0.1 leaves 0.19999999999999998 L free and a 0.2 L part is refused.
const microlitersPerLiter = 1e6

func roundVolume(v float64) float64 {
	return math.Round(v*microlitersPerLiter) / microlitersPerLiter
}

// housedPart pairs a housed part with the volume it was admitted at,
// so occupied volume never drifts if its geometry is re-measured later.
type housedPart struct {
	part   *PartInstance
	volume float64
}

// Container is the ledger for one container part instance.
type Container struct {
	host        *PartInstance
	totalVolume float64
	contents    []housedPart // Insertion order = equip order
	resources   *ResourceSet
	estimator   *Estimator
	unlocked    func(*PartDefinition) bool
	log         *zap.Logger
}

// NewContainer wraps a container part. The host's own resource pools seed the merged pools.
func NewContainer(host *PartInstance, est *Estimator, log *zap.Logger) (*Container, error) {
	if host == nil || host.Def == nil {
		return nil, fmt.Errorf("%w: nil host part", ErrUnknownPart)
	}
	if host.Def.ContainerVolume <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotContainer, host.Def.Key)
	}
	if log == nil {
		log = zap.NewNop()
	}
	if est == nil {
		est = NewEstimator(nil, log)
	}
	return &Container{
		host:        host,
		totalVolume: host.Def.ContainerVolume,
		resources:   NewResourceSet(host.Resources),
		estimator:   est,
		log:         log.With(zap.String("container", host.ID)),
	}, nil
}

// SetUnlockCheck installs the tech-tree test applied before admission. Nil admits everything.
func (c *Container) SetUnlockCheck(fn func(*PartDefinition) bool) {
	c.unlocked = fn
}

// ID returns the host part's instance ID.
func (c *Container) ID() string { return c.host.ID }

// Host returns the container's host part.
func (c *Container) Host() *PartInstance { return c.host }

// TotalVolume is the authored capacity in liters.
func (c *Container) TotalVolume() float64 { return c.totalVolume }

// OccupiedVolume is the sum of the housed parts' admitted volumes.
func (c *Container) OccupiedVolume() float64 {
	var sum float64
	for _, h := range c.contents {
		sum += h.volume
	}
	return roundVolume(sum)
}

// FreeVolume is TotalVolume - OccupiedVolume, never below zero.
func (c *Container) FreeVolume() float64 {
	return max(0, roundVolume(c.totalVolume-c.OccupiedVolume()))
}

// Len returns the number of housed parts.
func (c *Container) Len() int { return len(c.contents) }

// List returns the housed parts in equip order.
// The slice is fresh but the parts are the live instances.
func (c *Container) List() []*PartInstance {
	out := make([]*PartInstance, len(c.contents))
	for i, h := range c.contents {
		out[i] = h.part
	}
	return out
}

// Find returns the housed part with the given instance ID.
func (c *Container) Find(id string) *PartInstance {
	for _, h := range c.contents {
		if h.part.ID == id {
			return h.part
		}
	}
	return nil
}

// HousedVolume returns the volume a housed part was admitted at.
func (c *Container) HousedVolume(p *PartInstance) (float64, bool) {
	if i := c.indexOf(p); i >= 0 {
		return c.contents[i].volume, true
	}
	return 0, false
}

// Resources returns a snapshot of the merged pools.
func (c *Container) Resources() []ResourcePool {
	return c.resources.Pools()
}

// Resource returns a copy of one merged pool.
func (c *Container) Resource(name string) (ResourcePool, bool) {
	return c.resources.Get(name)
}

func (c *Container) indexOf(p *PartInstance) int {
	return slices.IndexFunc(c.contents, func(h housedPart) bool { return h.part == p })
}

// CheckAdmission reports the candidate's volume and whether Equip would accept it,
// without changing any state.
func (c *Container) CheckAdmission(candidate *PartInstance) (float64, error) {
	if candidate == nil || candidate.Def == nil {
		return 0, fmt.Errorf("%w: nil candidate", ErrUnknownPart)
	}
	if candidate == c.host || c.indexOf(candidate) >= 0 {
		return 0, fmt.Errorf("%w: %s", ErrAlreadyHoused, candidate.ID)
	}
	if !IsEquippable(candidate.Def) {
		return 0, fmt.Errorf("%w: %s", ErrNotEquippable, candidate.Def.Key)
	}
	if c.unlocked != nil && !c.unlocked(candidate.Def) {
		return 0, fmt.Errorf("%w: %s requires %s", ErrTechLocked, candidate.Def.Key, candidate.Def.TechRequired)
	}

	vol := roundVolume(c.estimator.EstimateInstance(candidate))
	if free := c.FreeVolume(); vol > free {
		return vol, &InsufficientVolumeError{Part: candidate.Def.Key, Required: vol, Available: free}
	}
	return vol, nil
}

// Equip admits the candidate and merges its resource pools. On any error nothing changes.
func (c *Container) Equip(candidate *PartInstance) error {
	vol, err := c.CheckAdmission(candidate)
	if err != nil {
		return err
	}

	c.contents = append(c.contents, housedPart{part: candidate, volume: vol})
	for _, r := range candidate.Resources {
		c.resources.Merge(r)
	}
	c.syncHost()

	c.log.Info("part equipped",
		zap.String("part", candidate.Def.Key),
		zap.Float64("volume", vol),
		zap.Float64("free", c.FreeVolume()))
	return nil
}

// Unequip evicts a housed part (matched by identity) and splits its resources back out.
func (c *Container) Unequip(part *PartInstance) error {
	i := c.indexOf(part)
	if i < 0 {
		id := "<nil>"
		if part != nil {
			id = part.ID
		}
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	for _, r := range part.Resources {
		c.resources.Split(r.Name, r.MaxAmount)
	}
	c.contents = slices.Delete(c.contents, i, i+1)
	c.syncHost()

	c.log.Info("part unequipped",
		zap.String("part", part.Def.Key),
		zap.Float64("free", c.FreeVolume()))
	return nil
}

// RemoveLast unequips the most recently equipped part. It is a no-op on an empty container.
func (c *Container) RemoveLast() (*PartInstance, bool) {
	if len(c.contents) == 0 {
		return nil, false
	}
	last := c.contents[len(c.contents)-1].part
	if err := c.Unequip(last); err != nil {
		// Unreachable while the ledger is the sole mutator.
		c.log.Error("remove last failed", zap.Error(err))
		return nil, false
	}
	return last, true
}

// ModuleCost is the cost modifier reported to the costing pipeline.
func (c *Container) ModuleCost() float64 {
	var sum float64
	for _, h := range c.contents {
		sum += h.part.Def.Cost
	}
	return sum
}

// ModuleMass is the mass modifier reported to the costing pipeline.
func (c *Container) ModuleMass() float64 {
	var sum float64
	for _, h := range c.contents {
		sum += h.part.Def.Mass
	}
	return sum
}

// ModifierChangeWhen is always Constantly: contents can change between queries.
func (c *Container) ModifierChangeWhen() ModifierChangeWhen {
	return Constantly
}

// Status is the equipped-count line shown on the part's context menu.
func (c *Container) Status() string {
	return fmt.Sprintf("%d equipped, %.1f / %.1f L free", len(c.contents), c.FreeVolume(), c.totalVolume)
}

// OnStart runs once the container is live in the scene.
func (c *Container) OnStart() {
	c.syncHost()
	c.log.Debug("container started", zap.String("part", c.host.Def.Key), zap.String("status", c.Status()))
}

// syncHost mirrors the merged pools onto the host part, which owns them.
func (c *Container) syncHost() {
	c.host.Resources = c.resources.Pools()
}
