/*
Package game
File: persist.go
Description:
    Save/load of container state as a YAML node tree.

    Each container node lists its housed parts by part identifier (plus the
    selected variant). Resource pools are NOT persisted per housed part: on
    load they are rebuilt by re-equipping every listed part, which re-merges
    the part's resource template.
*/

package game

import (
	"errors"
	"fmt"
	"math"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ItemNode is one housed part in a saved container.
type ItemNode struct {
	Part    string `yaml:"part"`
	Variant string `yaml:"variant,omitempty"`
}

// ContainerNode is the saved state of one container.
type ContainerNode struct {
	ID          string     `yaml:"id"`
	Part        string     `yaml:"part"`
	TotalVolume float64    `yaml:"total_volume"`
	Items       []ItemNode `yaml:"items,omitempty"`
}

// WorkshopNode is the root of a save file such as 'workshop.yaml'.
type WorkshopNode struct {
	Containers []*ContainerNode `yaml:"containers"`
}

// OnSave captures the housed part identifiers in equip order.
func (c *Container) OnSave() *ContainerNode {
	node := &ContainerNode{
		ID:          c.host.ID,
		Part:        c.host.Def.Key,
		TotalVolume: c.totalVolume,
		Items:       make([]ItemNode, 0, len(c.contents)),
	}
	for _, h := range c.contents {
		node.Items = append(node.Items, ItemNode{Part: h.part.Def.Key, Variant: h.part.Variant})
	}
	return node
}

// OnLoad replaces the container's contents with the saved ones.
// Entries that cannot be restored are logged and skipped; the returned error
// joins every skipped entry (each wrapping ErrMalformedModuleState) and is nil
// when everything loaded.
func (c *Container) OnLoad(node *ContainerNode) error {
	if node == nil {
		return fmt.Errorf("%w: nil container node", ErrMalformedModuleState)
	}

	// 1. Start from the host part's own template pools
	c.contents = nil
	c.resources = NewResourceSet(NewPartInstance(c.host.Def, c.host.Variant).Resources)

	var problems []error
	if math.IsNaN(node.TotalVolume) || node.TotalVolume < 0 {
		problems = append(problems, c.malformed("total_volume", fmt.Sprint(node.TotalVolume),
			fmt.Errorf("invalid value; using authored %.1f L", c.totalVolume)))
	}

	// 2. Re-admit each listed part
	for i, item := range node.Items {
		def := c.estimator.Part(item.Part)
		if def == nil {
			problems = append(problems, c.malformed(fmt.Sprintf("items[%d]", i), item.Part, ErrUnknownPart))
			continue
		}
		if err := c.Equip(NewPartInstance(def, item.Variant)); err != nil {
			problems = append(problems, c.malformed(fmt.Sprintf("items[%d]", i), item.Part, err))
		}
	}
	c.syncHost()
	return errors.Join(problems...)
}

func (c *Container) malformed(field, value string, cause error) error {
	c.log.Warn("skipping malformed module state",
		zap.String("field", field),
		zap.String("value", value),
		zap.Error(cause))
	return fmt.Errorf("%w: %s=%q: %w", ErrMalformedModuleState, field, value, cause)
}

// Encode serializes every container in creation order.
// Caller must hold Lock (read).
func (w *Workshop) Encode() ([]byte, error) {
	root := WorkshopNode{Containers: []*ContainerNode{}}
	for _, c := range w.ContainerList() {
		root.Containers = append(root.Containers, c.OnSave())
	}
	return yaml.Marshal(&root)
}

// Decode replaces the workshop's containers with the saved ones.
// Containers whose part is unknown are skipped; partial problems are logged, not returned.
// Caller must hold Lock.
func (w *Workshop) Decode(data []byte) error {
	var root WorkshopNode
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedModuleState, err)
	}

	w.Containers = make(map[string]*Container, len(root.Containers))
	w.order = nil

	for _, node := range root.Containers {
		if node == nil {
			continue
		}
		def := w.Part(node.Part)
		if def == nil {
			w.log.Warn("skipping container with unknown part",
				zap.String("id", node.ID), zap.String("part", node.Part))
			continue
		}
		host := NewPartInstance(def, "")
		if node.ID != "" {
			host.ID = node.ID
		}
		c, err := NewContainer(host, w.Estimator, w.log)
		if err != nil {
			w.log.Warn("skipping saved container", zap.String("id", node.ID), zap.Error(err))
			continue
		}
		// Saved contents were admitted under the tech tree of their day; don't re-check it.
		if err := c.OnLoad(node); err != nil {
			w.log.Warn("container loaded with problems", zap.String("id", host.ID), zap.Error(err))
		}
		c.SetUnlockCheck(w.IsUnlocked)
		c.OnStart()
		w.register(c)
	}
	return nil
}

// Save writes the workshop to a YAML file.
func (w *Workshop) Save(path string) error {
	data, err := w.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a save file written by Save. A missing file is not an error.
func (w *Workshop) Load(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return w.Decode(data)
}
