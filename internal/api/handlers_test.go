package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/everforgeworks/partcontainer/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testCatalog() game.Catalog {
	equipment := []string{game.EquipmentTag}
	return game.Catalog{
		TechUnlocked: []string{"basicScience"},
		Parts: []game.PartDefinition{
			{Key: "bay", Title: "Cargo Bay", Mass: 1, Cost: 500, ContainerVolume: 100},
			{Key: "A", Title: "Battery", Mass: 0.1, Cost: 100, Volume: 40, Tags: equipment,
				Resources: []game.ResourceTemplate{{Name: "Fuel", Amount: 10, MaxAmount: 20}}},
			{Key: "B", Title: "Drill", Mass: 0.5, Cost: 900, Volume: 70, Tags: equipment},
			{Key: "lab", Title: "Lab", Volume: 5, Tags: equipment, TechRequired: "advScience"},
			{Key: "strut", Title: "Strut", Volume: 1},
		},
	}
}

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	ws := game.NewWorkshop(testCatalog(), zap.NewNop())
	s := NewServer(ws, nil, "", zap.NewNop())
	return s, s.Routes()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func createBay(t *testing.T, h http.Handler) ContainerView {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/containers", CreateContainerRequest{PartKey: "bay"})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[ContainerView](t, rec)
}

func TestHandleCreateContainer(t *testing.T) {
	_, h := newTestServer(t)

	view := createBay(t, h)
	assert.NotEmpty(t, view.ID)
	assert.Equal(t, "bay", view.PartKey)
	assert.Equal(t, 100.0, view.FreeVolume)
	assert.Equal(t, "CONSTANTLY", view.ChangeWhen)
	assert.Empty(t, view.Items)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"unknown part", CreateContainerRequest{PartKey: "nope"}, http.StatusNotFound},
		{"part without capacity", CreateContainerRequest{PartKey: "strut"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, do(t, h, http.MethodPost, "/api/containers", tt.body).Code)
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/containers", strings.NewReader("{")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleEquip(t *testing.T) {
	_, h := newTestServer(t)
	bay := createBay(t, h)
	path := "/api/containers/" + bay.ID + "/equip"

	rec := do(t, h, http.MethodPost, path, EquipRequest{PartKey: "A"})
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[ContainerView](t, rec)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "A", view.Items[0].Key)
	assert.Equal(t, 40.0, view.Items[0].Volume)
	assert.Equal(t, 60.0, view.FreeVolume)
	assert.Equal(t, []game.ResourcePool{{Name: "Fuel", Amount: 10, MaxAmount: 20}}, view.Resources)

	t.Run("insufficient volume", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, path, EquipRequest{PartKey: "B"})
		require.Equal(t, http.StatusConflict, rec.Code)
		body := decode[ErrorResponse](t, rec)
		assert.Equal(t, "Insufficient Volume", body.Error)
		assert.Equal(t, 70.0, body.Required)
		assert.Equal(t, 60.0, body.Available)
	})

	tests := []struct {
		name string
		path string
		key  string
		want int
	}{
		{"tech locked", path, "lab", http.StatusForbidden},
		{"not equipment", path, "strut", http.StatusBadRequest},
		{"unknown part", path, "nope", http.StatusNotFound},
		{"unknown container", "/api/containers/nope/equip", "A", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, do(t, h, http.MethodPost, tt.path, EquipRequest{PartKey: tt.key}).Code)
		})
	}

	// Rejections leave the ledger untouched.
	rec = do(t, h, http.MethodGet, "/api/containers/"+bay.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[ContainerView](t, rec).Items, 1)
}

func TestHandleUnequipAndRemoveLast(t *testing.T) {
	_, h := newTestServer(t)
	bay := createBay(t, h)
	base := "/api/containers/" + bay.ID

	t.Run("remove last on empty container", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, base+"/remove-last", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decode[ContainerView](t, rec).Items)
	})

	rec := do(t, h, http.MethodPost, base+"/equip", EquipRequest{PartKey: "A"})
	require.Equal(t, http.StatusOK, rec.Code)
	id := decode[ContainerView](t, rec).Items[0].ID

	t.Run("unknown item", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, base+"/unequip", UnequipRequest{ItemID: "nope"}).Code)
	})

	rec = do(t, h, http.MethodPost, base+"/unequip", UnequipRequest{ItemID: id})
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[ContainerView](t, rec)
	assert.Empty(t, view.Items)
	assert.Empty(t, view.Resources)
	assert.Equal(t, 100.0, view.FreeVolume)

	do(t, h, http.MethodPost, base+"/equip", EquipRequest{PartKey: "A"})
	rec = do(t, h, http.MethodPost, base+"/remove-last", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[ContainerView](t, rec).Items)
}

func TestHandleReadEndpoints(t *testing.T) {
	_, h := newTestServer(t)
	bay := createBay(t, h)
	do(t, h, http.MethodPost, "/api/containers/"+bay.ID+"/equip", EquipRequest{PartKey: "A"})

	t.Run("parts", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/parts", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		parts := decode[[]PartView](t, rec)
		require.Len(t, parts, 5)
		assert.Equal(t, "bay", parts[0].Key)
		assert.False(t, parts[0].Equippable)
		assert.True(t, parts[1].Equippable)
		assert.False(t, parts[3].Unlocked)
	})

	t.Run("containers", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/containers", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]ContainerView](t, rec), 1)
	})

	t.Run("candidates", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/containers/"+bay.ID+"/candidates", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decode[[]game.Candidate](t, rec)
		require.Len(t, got, 2) // lab is locked, strut is not equipment
		assert.Equal(t, "A", got[0].Key)
		assert.True(t, got[0].Fits)
		assert.Equal(t, "B", got[1].Key)
		assert.False(t, got[1].Fits)
	})

	t.Run("report", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/containers/"+bay.ID+"/report", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "1. Battery (A) 40.0 L")
	})

	t.Run("unknown container", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/containers/nope", nil).Code)
		assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/containers/nope/report", nil).Code)
	})
}

func TestHandleDeleteContainer(t *testing.T) {
	_, h := newTestServer(t)
	bay := createBay(t, h)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/containers/"+bay.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/api/containers/"+bay.ID, nil).Code)
}

func TestAutosave(t *testing.T) {
	s, h := newTestServer(t)
	s.SavePath = filepath.Join(t.TempDir(), "workshop.yaml")

	bay := createBay(t, h)
	do(t, h, http.MethodPost, "/api/containers/"+bay.ID+"/equip", EquipRequest{PartKey: "A"})

	restored := game.NewWorkshop(testCatalog(), zap.NewNop())
	require.NoError(t, restored.Load(s.SavePath))
	require.Contains(t, restored.Containers, bay.ID)
	assert.Equal(t, 1, restored.Containers[bay.ID].Len())
}

func TestMiddleware(t *testing.T) {
	s, h := newTestServer(t)

	t.Run("preflight", func(t *testing.T) {
		rec := do(t, h, http.MethodOptions, "/api/containers", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("panic becomes 500", func(t *testing.T) {
		boom := s.recoverMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))
		rec := httptest.NewRecorder()
		boom.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
