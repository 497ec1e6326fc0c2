/*
Package game
File: mechanics.go
Description:
    Contains the helper functions behind the container UI actions.
    This includes building the "Add Equipment" candidate list and the
    "Show Equipment" report with its per-part diagnostic dump.
*/

package game

import (
	"fmt"
	"strings"
)

// Candidate is one row of the "Add Equipment" list.
type Candidate struct {
	Key    string  `json:"key"`
	Title  string  `json:"title"`
	Volume float64 `json:"volume"` // Estimated volume (liters)
	Mass   float64 `json:"mass"`
	Cost   float64 `json:"cost"`
	Fits   bool    `json:"fits"` // False rows are shown disabled
}

// Candidates lists every equippable, tech-unlocked catalog part annotated with its volume.
// Parts that would not fit in the container's free volume are flagged, not hidden.
// Caller must hold Lock.
func (w *Workshop) Candidates(c *Container) []Candidate {
	free := c.FreeVolume()
	out := []Candidate{}
	for _, def := range w.EquippableParts() {
		if !w.IsUnlocked(def) {
			continue
		}
		vol := w.Estimator.EstimateVolume(def, "")
		out = append(out, Candidate{
			Key:    def.Key,
			Title:  def.Title,
			Volume: vol,
			Mass:   def.Mass,
			Cost:   def.Cost,
			Fits:   vol <= free,
		})
	}
	return out
}

// Report renders the "Show Equipment" listing: the housed parts, the merged pools,
// and a debug dump of every known equippable part's mass/resource/volume profile.
// Caller must hold Lock.
func (w *Workshop) Report(c *Container) string {
	var b strings.Builder

	// 1. Summary
	fmt.Fprintf(&b, "%s [%s]\n", c.Host().Def.Title, c.ID())
	fmt.Fprintf(&b, "Volume: %.1f / %.1f L used, %.1f L free\n", c.OccupiedVolume(), c.TotalVolume(), c.FreeVolume())
	fmt.Fprintf(&b, "Cost +%.0f, Mass +%.3f t\n", c.ModuleCost(), c.ModuleMass())

	// 2. Housed parts
	parts := c.List()
	fmt.Fprintf(&b, "\nEquipment (%d):\n", len(parts))
	if len(parts) == 0 {
		b.WriteString("  (empty)\n")
	}
	for i, p := range parts {
		vol, _ := c.HousedVolume(p)
		fmt.Fprintf(&b, "  %d. %s (%s) %.1f L\n", i+1, p.Def.Title, p.Def.Key, vol)
	}

	// 3. Merged pools
	if pools := c.Resources(); len(pools) > 0 {
		b.WriteString("\nResources:\n")
		for _, r := range pools {
			fmt.Fprintf(&b, "  %s: %.3f / %.3f\n", r.Name, r.Amount, r.MaxAmount)
		}
	}

	// 4. Diagnostic dump
	b.WriteString("\nKnown equipment:\n")
	for _, def := range w.EquippableParts() {
		fmt.Fprintf(&b, "  %s: mass=%.3f cost=%.0f volume=%.1f", def.Key, def.Mass, def.Cost, w.Estimator.EstimateVolume(def, ""))
		if def.Volume > 0 {
			b.WriteString(" (authored)")
		}
		if !w.IsUnlocked(def) {
			fmt.Fprintf(&b, " locked:%s", def.TechRequired)
		}
		for _, r := range def.Resources {
			fmt.Fprintf(&b, " %s=%.1f/%.1f", r.Name, r.Amount, r.MaxAmount)
		}
		b.WriteString("\n")
	}
	return b.String()
}
