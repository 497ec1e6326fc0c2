package game

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogYAML = `
tech_unlocked: [basicScience]
parts:
  - key: bay
    title: Cargo Bay
    mass: 1.5
    cost: 800
    container_volume: 250
  - key: fuelCell
    title: Fuel Cell
    mass: 0.05
    cost: 120
    tags: [equipment]
    resources:
      - {name: ElectricCharge, amount: 50, max_amount: 50}
    root:
      name: fuelCell
      children:
        - name: model
          children:
            - name: body
              mesh:
                bounds: {min: [-0.1, -0.1, -0.1], max: [0.1, 0.1, 0.1]}
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadCatalog(t *testing.T) {
	cat, err := LoadCatalog(writeFile(t, "parts.yaml", catalogYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"basicScience"}, cat.TechUnlocked)
	require.Len(t, cat.Parts, 2)
	assert.Equal(t, 250.0, cat.Parts[0].ContainerVolume)

	ws := testWorkshop(cat.TechUnlocked, cat.Parts...)
	cell := ws.Part("fuelCell")
	require.NotNil(t, cell)
	assert.True(t, IsEquippable(cell))
	assert.InDelta(t, 8.0, ws.Estimator.EstimateVolume(cell, ""), 0.01)
}

func TestLoadCatalog_Shipped(t *testing.T) {
	cat, err := LoadCatalog(filepath.Join("..", "..", "parts.yaml"))
	require.NoError(t, err)

	ws := testWorkshop(cat.TechUnlocked, cat.Parts...)
	for _, def := range ws.EquippableParts() {
		assert.Greater(t, ws.Estimator.EstimateVolume(def, ""), 0.0, def.Key)
	}
	assert.Equal(t, 180.0, ws.Estimator.EstimateVolume(ws.Part("inflatable.habitat"), ""))
}

func TestLoadCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing key", "parts:\n  - title: Nameless\n"},
		{"duplicate key", "parts:\n  - key: a\n  - key: a\n"},
		{"negative volume", "parts:\n  - key: a\n    volume: -3\n"},
		{"not yaml", "parts: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCatalog(writeFile(t, "parts.yaml", tt.body))
			assert.Error(t, err)
		})
	}

	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWorkshopContainers(t *testing.T) {
	ws := testWorkshop(nil, bay())
	a := newBay(t, ws)
	b := newBay(t, ws)

	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, []*Container{a, b}, ws.ContainerList())

	assert.True(t, ws.RemoveContainer(a.ID()))
	assert.False(t, ws.RemoveContainer(a.ID()))
	assert.Equal(t, []*Container{b}, ws.ContainerList())
}

func TestWorkshopReloadCatalog(t *testing.T) {
	ws := testWorkshop(nil, bay(), item("A", 10))
	c := newBay(t, ws)
	equip(t, ws, c, "A")

	bigger := item("A", 30)
	ws.ReloadCatalog(Catalog{Parts: []PartDefinition{bay(), bigger}})

	// Housed parts keep their admission volume; new estimates see the new catalog.
	assert.Equal(t, 90.0, c.FreeVolume())
	assert.Equal(t, 30.0, ws.Estimator.EstimateVolume(ws.Part("A"), ""))
}

func TestWorkshopCandidates(t *testing.T) {
	small := item("small", 20)
	large := item("large", 80)
	locked := item("locked", 5)
	locked.TechRequired = "advScience"
	plain := item("plain", 5)
	plain.Tags = nil

	ws := testWorkshop(nil, bay(), small, large, locked, plain)
	c := newBay(t, ws)
	equip(t, ws, c, "small")

	got := ws.Candidates(c)
	require.Len(t, got, 2)
	assert.Equal(t, Candidate{Key: "small", Title: "small", Volume: 20, Mass: 0.1, Cost: 100, Fits: true}, got[0])
	assert.Equal(t, "large", got[1].Key)
	assert.True(t, got[1].Fits, "80 L fits exactly into the 80 L left")

	equip(t, ws, c, "small")
	got = ws.Candidates(c)
	assert.True(t, got[0].Fits)
	assert.False(t, got[1].Fits)
}

func TestWorkshopReport(t *testing.T) {
	locked := item("locked", 5)
	locked.TechRequired = "advScience"
	ws := testWorkshop(nil, bay(), item("A", 40, fuel(10, 20)), locked)
	c := newBay(t, ws)

	empty := ws.Report(c)
	assert.Contains(t, empty, "Equipment (0):\n  (empty)")
	assert.NotContains(t, empty, "Resources:")

	equip(t, ws, c, "A")
	report := ws.Report(c)

	assert.True(t, strings.HasPrefix(report, "Cargo Bay ["+c.ID()+"]\n"))
	assert.Contains(t, report, "Volume: 40.0 / 100.0 L used, 60.0 L free")
	assert.Contains(t, report, "Cost +100, Mass +0.100 t")
	assert.Contains(t, report, "  1. A (A) 40.0 L\n")
	assert.Contains(t, report, "  Fuel: 10.000 / 20.000\n")
	assert.Contains(t, report, "  A: mass=0.100 cost=100 volume=40.0 (authored) Fuel=10.0/20.0\n")
	assert.Contains(t, report, "  locked: mass=0.100 cost=100 volume=5.0 (authored) locked:advScience\n")
}
