/*
Package game
File: volume.go
Description:
    The Volume Estimator.
    Derives a part's volume in liters from the union bounding box of every
    renderable mesh reachable from its model root (and from any attached
    child parts), under the selected variant. An authored volume override
    always wins and skips the geometry scan entirely.

    Scans are expensive, so results are cached per (part, variant).
*/

package game

import (
	"fmt"

	"cogentcore.org/core/math32"
	"go.uber.org/zap"
)

// LitersPerCubicMeter converts bounding-box volume (m^3) into liters.
const LitersPerCubicMeter = 1000

// PartLookup resolves a part identifier to its definition. Returns nil if not found.
type PartLookup func(key string) *PartDefinition

type volumeKey struct {
	part    string
	variant string
}

// Estimator computes and caches part volumes.
type Estimator struct {
	lookup PartLookup
	cache  map[volumeKey]float64
	log    *zap.Logger
}

// NewEstimator creates an estimator. The lookup resolves attached child parts.
func NewEstimator(lookup PartLookup, log *zap.Logger) *Estimator {
	if log == nil {
		log = zap.NewNop()
	}
	if lookup == nil {
		lookup = func(string) *PartDefinition { return nil }
	}
	return &Estimator{
		lookup: lookup,
		cache:  make(map[volumeKey]float64),
		log:    log,
	}
}

// Part resolves a part identifier through the estimator's lookup.
func (e *Estimator) Part(key string) *PartDefinition {
	return e.lookup(key)
}

// Reset drops every cached volume.
func (e *Estimator) Reset() {
	clear(e.cache)
}

// EstimateInstance measures a live part under its own selected variant.
func (e *Estimator) EstimateInstance(p *PartInstance) float64 {
	return e.EstimateVolume(p.Def, p.Variant)
}

// EstimateVolume returns the part's volume in liters.
// An empty variant name resolves to the part's first declared variant.
// Scan failures are logged and degrade to 0; they are never returned.
func (e *Estimator) EstimateVolume(def *PartDefinition, variant string) float64 {
	if def == nil {
		return 0
	}
	// 1. Authored override: no geometry is touched
	if def.Volume > 0 {
		return def.Volume
	}

	// 2. Cache lookup by the resolved variant
	v := ResolveVariant(def, variant)
	key := volumeKey{part: def.Key}
	if v != nil {
		key.variant = v.Name
	}
	if vol, ok := e.cache[key]; ok {
		return vol
	}

	// 3. Scan
	vol, err := e.Measure(def, v)
	if err != nil {
		e.log.Warn("volume estimate degraded to zero",
			zap.String("part", def.Key),
			zap.String("variant", key.variant),
			zap.Error(err))
		return 0
	}
	e.cache[key] = vol
	return vol
}

// Measure scans the part's geometry under the given variant without consulting
// the override or the cache. A panic anywhere in the scan is recovered and
// reported as ErrGeometryScanFailure.
func (e *Estimator) Measure(def *PartDefinition, v *Variant) (vol float64, err error) {
	if def == nil {
		return 0, fmt.Errorf("%w: nil part definition", ErrGeometryScanFailure)
	}
	key := def.Key
	defer func() {
		if r := recover(); r != nil {
			vol = 0
			err = fmt.Errorf("%w: %s: %v", ErrGeometryScanFailure, key, r)
		}
	}()

	box := math32.B3Empty()
	visiting := map[string]bool{}
	if err := e.scanPart(def, v, math32.Identity4(), &box, 0, visiting); err != nil {
		return 0, err
	}
	return BoxVolume(box), nil
}

// scanPart expands box by every renderable mesh of def (and its attached parts),
// with parent placing the part's root transform in world space.
func (e *Estimator) scanPart(def *PartDefinition, v *Variant, parent *math32.Matrix4, box *math32.Box3, depth int, visiting map[string]bool) error {
	if depth > maxAttachDepth {
		return fmt.Errorf("%w: attachment depth exceeds %d at %s", ErrGeometryScanFailure, maxAttachDepth, def.Key)
	}
	if visiting[def.Key] {
		return fmt.Errorf("%w: attachment cycle through %s", ErrGeometryScanFailure, def.Key)
	}
	visiting[def.Key] = true
	defer delete(visiting, def.Key)

	wc, err := newWorkingCopy(def, v)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGeometryScanFailure, err)
	}
	if wc.root == nil {
		return fmt.Errorf("%w: %s has no root transform", ErrGeometryScanFailure, def.Key)
	}

	// Meshes outside the model root are not part of the visual body (colliders, FX anchors).
	inModel := false
	if findNode(wc.root, ModelRootName) == nil {
		e.log.Warn("no model root; measuring from the part root transform", zap.String("part", def.Key))
		inModel = true
	}
	e.collect(wc.root, parent, inModel, box)

	partFrame := worldMatrix(parent, wc.root)
	for _, a := range def.Attached {
		child := e.lookup(a.Part)
		if child == nil {
			e.log.Warn("attached part not in catalog", zap.String("part", def.Key), zap.String("attached", a.Part))
			continue
		}
		an, ok := wc.attachNodes[a.Node]
		if !ok {
			e.log.Warn("attach node missing; mounting at part origin",
				zap.String("part", def.Key), zap.String("node", a.Node))
		}
		at := translated(partFrame, an.Position)
		if err := e.scanPart(child, ResolveVariant(child, a.Variant), at, box, depth+1, visiting); err != nil {
			return err
		}
	}
	return nil
}

// collect walks the working copy, accumulating world transforms and expanding box.
// Disabled nodes hide their whole subtree.
func (e *Estimator) collect(n *SceneNode, parent *math32.Matrix4, inModel bool, box *math32.Box3) {
	if n == nil || n.Disabled {
		return
	}
	world := worldMatrix(parent, n)
	if n.Name == ModelRootName {
		inModel = true
	}
	if inModel {
		if mb, ok := meshBox(n.Mesh); ok {
			box.ExpandByBox(mb.MulMatrix4(world))
		}
	}
	for _, c := range n.Children {
		e.collect(c, world, inModel, box)
	}
}

// BoxVolume converts a bounding box in meters to liters. Empty or degenerate boxes are 0.
func BoxVolume(b math32.Box3) float64 {
	if b.IsEmpty() {
		return 0
	}
	s := b.Size()
	vol := float64(s.X) * float64(s.Y) * float64(s.Z) * LitersPerCubicMeter
	if vol < 0 {
		return 0
	}
	return vol
}
