/*
Package game
File: state.go
Description:
    Manages the runtime state of the workshop.
    The Workshop holds the part catalog loaded from YAML, the volume estimator,
    and every live container keyed by its instance ID.

    It also handles the initialization (LoadCatalog) logic.
*/

package game

import (
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Workshop is the host registry for containers.
// Lock serializes every lifecycle and UI callback; nothing below it takes a lock of its own.
type Workshop struct {
	// Lock protects every field below from concurrent read/write issues.
	// Any API handler reading or writing the workshop MUST hold this lock.
	Lock sync.RWMutex

	Catalog    Catalog
	Estimator  *Estimator
	Containers map[string]*Container
	order      []string // Container IDs in creation order

	parts map[string]*PartDefinition
	tech  map[string]bool
	log   *zap.Logger
}

// NewWorkshop creates an empty workshop around the given catalog.
func NewWorkshop(cat Catalog, log *zap.Logger) *Workshop {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Workshop{
		Containers: make(map[string]*Container),
		log:        log,
	}
	w.Estimator = NewEstimator(w.Part, log)
	w.setCatalog(cat)
	return w
}

// LoadCatalog reads a catalog file such as 'parts.yaml' and validates it.
func LoadCatalog(path string) (Catalog, error) {
	// 1. Read the YAML file
	f, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, err
	}

	// 2. Unmarshal into the Catalog struct
	var cat Catalog
	if err := yaml.Unmarshal(f, &cat); err != nil {
		return Catalog{}, fmt.Errorf("parse %s: %w", path, err)
	}

	// 3. Validate
	if err := cat.Validate(); err != nil {
		return Catalog{}, fmt.Errorf("validate %s: %w", path, err)
	}
	return cat, nil
}

// Validate rejects catalogs with missing or duplicate keys and negative volumes.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Parts))
	for _, p := range c.Parts {
		if p.Key == "" {
			return fmt.Errorf("part %q has no key", p.Title)
		}
		if seen[p.Key] {
			return fmt.Errorf("duplicate part key %q", p.Key)
		}
		seen[p.Key] = true
		if p.Volume < 0 || p.ContainerVolume < 0 {
			return fmt.Errorf("part %q has a negative volume", p.Key)
		}
	}
	return nil
}

// ReloadCatalog swaps the catalog in place (SIGHUP hot-reload).
// Housed parts keep the definitions they were created from; the volume cache is dropped.
// Caller must hold Lock.
func (w *Workshop) ReloadCatalog(cat Catalog) {
	w.setCatalog(cat)
	w.Estimator.Reset()
	w.log.Info("catalog reloaded", zap.Int("parts", len(cat.Parts)))
}

func (w *Workshop) setCatalog(cat Catalog) {
	w.Catalog = cat
	w.parts = make(map[string]*PartDefinition, len(cat.Parts))
	for i := range w.Catalog.Parts {
		p := &w.Catalog.Parts[i]
		w.parts[p.Key] = p
	}
	w.tech = make(map[string]bool, len(cat.TechUnlocked))
	for _, t := range cat.TechUnlocked {
		w.tech[t] = true
	}
}

// Part is the host-provided lookup from a part identifier to its definition.
// Returns nil if not found.
func (w *Workshop) Part(key string) *PartDefinition {
	return w.parts[key]
}

// IsUnlocked reports whether the part's tech node has been researched.
// Parts without a tech requirement are always unlocked.
func (w *Workshop) IsUnlocked(def *PartDefinition) bool {
	return def.TechRequired == "" || w.tech[def.TechRequired]
}

// NewPart instantiates a catalog part with fresh resource pools.
func (w *Workshop) NewPart(key, variant string) (*PartInstance, error) {
	def := w.Part(key)
	if def == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPart, key)
	}
	return NewPartInstance(def, variant), nil
}

// NewPartInstance creates a live part from its definition.
func NewPartInstance(def *PartDefinition, variant string) *PartInstance {
	p := &PartInstance{
		ID:        uuid.NewString(),
		Def:       def,
		Variant:   variant,
		Resources: make([]ResourcePool, 0, len(def.Resources)),
	}
	for _, r := range def.Resources {
		p.Resources = append(p.Resources, ResourcePool{Name: r.Name, Amount: r.Amount, MaxAmount: r.MaxAmount})
	}
	return p
}

// CreateContainer instantiates a container part and registers it with the workshop.
// Caller must hold Lock.
func (w *Workshop) CreateContainer(key string) (*Container, error) {
	host, err := w.NewPart(key, "")
	if err != nil {
		return nil, err
	}
	c, err := NewContainer(host, w.Estimator, w.log)
	if err != nil {
		return nil, err
	}
	c.SetUnlockCheck(w.IsUnlocked)
	c.OnStart()
	w.register(c)
	return c, nil
}

func (w *Workshop) register(c *Container) {
	if _, exists := w.Containers[c.ID()]; !exists {
		w.order = append(w.order, c.ID())
	}
	w.Containers[c.ID()] = c
}

// ContainerList returns containers in creation order.
func (w *Workshop) ContainerList() []*Container {
	out := make([]*Container, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.Containers[id])
	}
	return out
}

// RemoveContainer tears a container down, releasing its contents.
func (w *Workshop) RemoveContainer(id string) bool {
	if _, ok := w.Containers[id]; !ok {
		return false
	}
	delete(w.Containers, id)
	w.order = slices.DeleteFunc(w.order, func(s string) bool { return s == id })
	return true
}

// EquippableParts lists every catalog part carrying the equipment tag, in catalog order.
func (w *Workshop) EquippableParts() []*PartDefinition {
	var out []*PartDefinition
	for i := range w.Catalog.Parts {
		p := &w.Catalog.Parts[i]
		if IsEquippable(p) {
			out = append(out, p)
		}
	}
	return out
}

// IsEquippable reports whether the definition carries the equipment capability tag.
func IsEquippable(def *PartDefinition) bool {
	return slices.Contains(def.Tags, EquipmentTag)
}
