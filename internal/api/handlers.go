/*
Package api
File: handlers.go
Description:
    Contains the HTTP handlers for the REST API.
    These functions process incoming JSON requests, validate them,
    drive the container ledger (imported from internal/game), and return JSON responses.

    Key Responsibilities:
    - Input Validation (Is the JSON valid? Does the part/container exist?)
    - State Modification (Equip, Unequip, Remove Last)
    - Thread Safety (Every handler holds Workshop.Lock, so the ledger sees serialized calls)
    - Failure Containment (No panic or ledger error escapes as anything but a status code)
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/everforgeworks/partcontainer/internal/game"
	"go.uber.org/zap"
)

// Request DTOs (Data Transfer Objects)
// These structs define exactly what we expect the client to send us.

type CreateContainerRequest struct {
	PartKey string `json:"part_key"`
}

type EquipRequest struct {
	PartKey string `json:"part_key"`
	Variant string `json:"variant"`
}

type UnequipRequest struct {
	ItemID string `json:"item_id"`
}

// PartView is one catalog row.
type PartView struct {
	Key             string   `json:"key"`
	Title           string   `json:"title"`
	Mass            float64  `json:"mass"`
	Cost            float64  `json:"cost"`
	Volume          float64  `json:"volume"`
	ContainerVolume float64  `json:"container_volume,omitempty"`
	Equippable      bool     `json:"equippable"`
	Unlocked        bool     `json:"unlocked"`
	Variants        []string `json:"variants,omitempty"`
}

// ItemView is one housed part.
type ItemView struct {
	ID      string  `json:"id"`
	Key     string  `json:"key"`
	Title   string  `json:"title"`
	Variant string  `json:"variant,omitempty"`
	Volume  float64 `json:"volume"`
}

// ContainerView is the full state of one container.
type ContainerView struct {
	ID             string              `json:"id"`
	PartKey        string              `json:"part_key"`
	Title          string              `json:"title"`
	TotalVolume    float64             `json:"total_volume"`
	OccupiedVolume float64             `json:"occupied_volume"`
	FreeVolume     float64             `json:"free_volume"`
	ModuleCost     float64             `json:"module_cost"`
	ModuleMass     float64             `json:"module_mass"`
	ChangeWhen     string              `json:"change_when"`
	Status         string              `json:"status"`
	Items          []ItemView          `json:"items"`
	Resources      []game.ResourcePool `json:"resources"`
}

// ErrorResponse is the JSON body of every non-2xx reply.
type ErrorResponse struct {
	Error     string  `json:"error"`
	Required  float64 `json:"required,omitempty"`
	Available float64 `json:"available,omitempty"`
}

// Server is the host adapter: it owns the workshop and dispatches UI actions into it.
type Server struct {
	Workshop *game.Workshop
	Hub      *Hub
	SavePath string // Autosave target; empty disables autosave
	log      *zap.Logger
}

// NewServer wires a server around a workshop.
func NewServer(ws *game.Workshop, hub *Hub, savePath string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if hub == nil {
		hub = NewHub(log)
	}
	return &Server{Workshop: ws, Hub: hub, SavePath: savePath, log: log}
}

// Routes builds the router with every endpoint wrapped in the recovery and CORS middleware.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// Catalog & Information Endpoints
	mux.HandleFunc("GET /api/parts", s.HandleGetParts)
	mux.HandleFunc("GET /api/containers", s.HandleListContainers)
	mux.HandleFunc("GET /api/containers/{id}", s.HandleGetContainer)
	mux.HandleFunc("GET /api/containers/{id}/candidates", s.HandleCandidates)
	mux.HandleFunc("GET /api/containers/{id}/report", s.HandleReport)

	// Action Endpoints
	mux.HandleFunc("POST /api/containers", s.HandleCreateContainer)
	mux.HandleFunc("POST /api/containers/{id}/equip", s.HandleEquip)
	mux.HandleFunc("POST /api/containers/{id}/unequip", s.HandleUnequip)
	mux.HandleFunc("POST /api/containers/{id}/remove-last", s.HandleRemoveLast)
	mux.HandleFunc("DELETE /api/containers/{id}", s.HandleDeleteContainer)

	// Real-Time WebSocket Endpoint
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ServeWs(s.Hub, w, r)
	})

	return corsMiddleware(s.recoverMiddleware(mux))
}

// HandleGetParts returns the catalog with estimated volumes.
func (s *Server) HandleGetParts(w http.ResponseWriter, r *http.Request) {
	ws := s.Workshop
	ws.Lock.Lock() // Estimates fill the volume cache, so this is a write
	defer ws.Lock.Unlock()

	out := make([]PartView, 0, len(ws.Catalog.Parts))
	for i := range ws.Catalog.Parts {
		def := &ws.Catalog.Parts[i]
		pv := PartView{
			Key:             def.Key,
			Title:           def.Title,
			Mass:            def.Mass,
			Cost:            def.Cost,
			Volume:          ws.Estimator.EstimateVolume(def, ""),
			ContainerVolume: def.ContainerVolume,
			Equippable:      game.IsEquippable(def),
			Unlocked:        ws.IsUnlocked(def),
		}
		for _, v := range def.Variants {
			pv.Variants = append(pv.Variants, v.Name)
		}
		out = append(out, pv)
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleListContainers returns every container in creation order.
func (s *Server) HandleListContainers(w http.ResponseWriter, r *http.Request) {
	s.Workshop.Lock.RLock()
	defer s.Workshop.Lock.RUnlock()

	out := []ContainerView{}
	for _, c := range s.Workshop.ContainerList() {
		out = append(out, viewOf(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGetContainer returns one container's state.
func (s *Server) HandleGetContainer(w http.ResponseWriter, r *http.Request) {
	s.Workshop.Lock.RLock()
	defer s.Workshop.Lock.RUnlock()

	c := s.container(w, r)
	if c == nil {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(c))
}

// HandleCreateContainer instantiates a container part.
func (s *Server) HandleCreateContainer(w http.ResponseWriter, r *http.Request) {
	var req CreateContainerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}

	s.Workshop.Lock.Lock()
	defer s.Workshop.Lock.Unlock()

	c, err := s.Workshop.CreateContainer(req.PartKey)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	s.changed("container_created", c)
	writeJSON(w, http.StatusCreated, viewOf(c))
}

// HandleDeleteContainer tears a container down.
func (s *Server) HandleDeleteContainer(w http.ResponseWriter, r *http.Request) {
	s.Workshop.Lock.Lock()
	defer s.Workshop.Lock.Unlock()

	id := r.PathValue("id")
	if !s.Workshop.RemoveContainer(id) {
		writeError(w, http.StatusNotFound, "Container not found")
		return
	}
	s.Hub.Publish("container_removed", map[string]string{"id": id})
	s.autosave()
	w.WriteHeader(http.StatusNoContent)
}

// HandleCandidates is the "Add Equipment" list: every admissible part with its volume.
// Rows that would not fit are flagged so the UI can disable them.
func (s *Server) HandleCandidates(w http.ResponseWriter, r *http.Request) {
	s.Workshop.Lock.Lock()
	defer s.Workshop.Lock.Unlock()

	c := s.container(w, r)
	if c == nil {
		return
	}
	writeJSON(w, http.StatusOK, s.Workshop.Candidates(c))
}

// HandleEquip admits a new instance of a catalog part.
func (s *Server) HandleEquip(w http.ResponseWriter, r *http.Request) {
	var req EquipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}

	s.Workshop.Lock.Lock()
	defer s.Workshop.Lock.Unlock()

	c := s.container(w, r)
	if c == nil {
		return
	}

	// 1. Instantiate the candidate
	part, err := s.Workshop.NewPart(req.PartKey, req.Variant)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}

	// 2. Admission control + resource merge
	if err := c.Equip(part); err != nil {
		s.writeLedgerError(w, err)
		return
	}

	s.changed("container_update", c)
	writeJSON(w, http.StatusOK, viewOf(c))
}

// HandleUnequip evicts a housed part by its instance ID.
func (s *Server) HandleUnequip(w http.ResponseWriter, r *http.Request) {
	var req UnequipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}

	s.Workshop.Lock.Lock()
	defer s.Workshop.Lock.Unlock()

	c := s.container(w, r)
	if c == nil {
		return
	}

	part := c.Find(req.ItemID)
	if part == nil {
		writeError(w, http.StatusNotFound, "Part not found in container")
		return
	}
	if err := c.Unequip(part); err != nil {
		s.writeLedgerError(w, err)
		return
	}

	s.changed("container_update", c)
	writeJSON(w, http.StatusOK, viewOf(c))
}

// HandleRemoveLast is the "Remove Equipment" action. An empty container is left untouched.
func (s *Server) HandleRemoveLast(w http.ResponseWriter, r *http.Request) {
	s.Workshop.Lock.Lock()
	defer s.Workshop.Lock.Unlock()

	c := s.container(w, r)
	if c == nil {
		return
	}
	if _, removed := c.RemoveLast(); removed {
		s.changed("container_update", c)
	}
	writeJSON(w, http.StatusOK, viewOf(c))
}

// HandleReport is the "Show Equipment" action: a plain-text listing.
func (s *Server) HandleReport(w http.ResponseWriter, r *http.Request) {
	s.Workshop.Lock.Lock()
	defer s.Workshop.Lock.Unlock()

	c := s.container(w, r)
	if c == nil {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(s.Workshop.Report(c)))
}

// container resolves the {id} path value, writing a 404 when it is unknown.
// Caller must hold the workshop lock.
func (s *Server) container(w http.ResponseWriter, r *http.Request) *game.Container {
	c := s.Workshop.Containers[r.PathValue("id")]
	if c == nil {
		writeError(w, http.StatusNotFound, "Container not found")
	}
	return c
}

// changed broadcasts the new container state and autosaves.
// Caller must hold the workshop lock.
func (s *Server) changed(event string, c *game.Container) {
	s.Hub.Publish(event, viewOf(c))
	s.autosave()
}

func (s *Server) autosave() {
	if s.SavePath == "" {
		return
	}
	if err := s.Workshop.Save(s.SavePath); err != nil {
		s.log.Error("autosave failed", zap.String("path", s.SavePath), zap.Error(err))
	}
}

// writeLedgerError maps ledger failures to status codes.
func (s *Server) writeLedgerError(w http.ResponseWriter, err error) {
	var short *game.InsufficientVolumeError
	switch {
	case errors.As(err, &short):
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error:     "Insufficient Volume",
			Required:  short.Required,
			Available: short.Available,
		})
	case errors.Is(err, game.ErrUnknownPart):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrTechLocked):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, game.ErrNotEquippable),
		errors.Is(err, game.ErrNotContainer),
		errors.Is(err, game.ErrAlreadyHoused):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error("unexpected ledger error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal Error")
	}
}

func viewOf(c *game.Container) ContainerView {
	host := c.Host()
	v := ContainerView{
		ID:             c.ID(),
		PartKey:        host.Def.Key,
		Title:          host.Def.Title,
		TotalVolume:    c.TotalVolume(),
		OccupiedVolume: c.OccupiedVolume(),
		FreeVolume:     c.FreeVolume(),
		ModuleCost:     c.ModuleCost(),
		ModuleMass:     c.ModuleMass(),
		ChangeWhen:     string(c.ModifierChangeWhen()),
		Status:         c.Status(),
		Items:          []ItemView{},
		Resources:      c.Resources(),
	}
	for _, p := range c.List() {
		vol, _ := c.HousedVolume(p)
		v.Items = append(v.Items, ItemView{
			ID:      p.ID,
			Key:     p.Def.Key,
			Title:   p.Def.Title,
			Variant: p.Variant,
			Volume:  vol,
		})
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// recoverMiddleware keeps a faulting handler from taking the host down:
// the panic is logged and the client gets a 500.
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("handler panic",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Any("panic", rec))
				writeError(w, http.StatusInternalServerError, "Internal Error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware lets the editor UI talk to the service across origins.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
