package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"nav-planner/internal/geom"
	"nav-planner/internal/navmesh"
	"nav-planner/internal/obstacle"
	"nav-planner/internal/observe"
	"nav-planner/internal/pathfind"
)

type RouteRequest struct {
	Mesh        string    `json:"mesh,omitempty"`
	Origin      geom.Vec3 `json:"origin"`
	Destination geom.Vec3 `json:"destination"`
	Agent       string    `json:"agent,omitempty"` // Requesting agent, never an obstacle to itself
}

type RouteResponse struct {
	RequestID string      `json:"requestId"`
	Path      []geom.Vec3 `json:"path"`
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Distance  float64     `json:"distance"`
}

// POST /route - Plan a path between two world points
func (s *Server) routeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	requestID := uuid.NewString()
	log := observe.Logger(r.Context()).With("request_id", requestID)

	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("invalid route request", "err", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mesh, err := s.catalog.Get(req.Mesh)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	log.Info("route request", "mesh", mesh.Name(), "agent", req.Agent,
		"origin", req.Origin.XY(), "destination", req.Destination.XY())

	res := s.planner(mesh).Plan(r.Context(), req.Origin, req.Destination, req.Agent)

	resp := RouteResponse{
		RequestID: requestID,
		Path:      res.Waypoints,
		Success:   true,
		Distance:  pathfind.PathLength(req.Origin, res.Waypoints),
	}
	switch res.Outcome {
	case observe.OutcomeNoPath:
		resp.Success = false
		resp.Message = "no path found, heading straight for the destination"
	case observe.OutcomeNodeCap:
		resp.Success = false
		resp.Message = "region too large to plan, heading straight for the destination"
	}

	log.Info("route planned", "outcome", res.Outcome, "waypoints", len(res.Waypoints),
		"nodes", res.Nodes, "distance", resp.Distance)
	writeJSON(w, http.StatusOK, resp)
}

type meshHealth struct {
	Name        string `json:"name"`
	Vertices    int    `json:"vertices"`
	Holes       int    `json:"holes"`
	Active      bool   `json:"active"`
	StaticHoles []hole `json:"staticHoles"`
}

// GET /health - Health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	names := s.catalog.Names()
	active := s.catalog.Active()

	meshes := make([]meshHealth, 0, len(names))
	for _, name := range names {
		m, err := s.catalog.Get(name)
		if err != nil {
			continue
		}
		region := m.Snapshot()
		meshes = append(meshes, meshHealth{
			Name:        name,
			Vertices:    len(region.Vertices()),
			Holes:       region.HoleCount(),
			Active:      name == active,
			StaticHoles: holeList(m),
		})
	}

	status := "ready"
	code := http.StatusOK
	if len(meshes) == 0 {
		status = "no meshes loaded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status": status,
		"meshes": meshes,
		"agents": s.agents.Len(),
	})
}

type HolesRequest struct {
	Mesh   string `json:"mesh,omitempty"`
	Add    string `json:"add,omitempty"`
	Remove string `json:"remove,omitempty"`
}

type hole struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

func holeList(m *navmesh.NavMesh) []hole {
	states := m.HoleStates()
	out := make([]hole, 0, len(states))
	for _, h := range states {
		out = append(out, hole{Name: h.Name, Enabled: h.Enabled})
	}
	return out
}

// POST /holes - Enable and/or disable named static holes
func (s *Server) holesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req HolesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Add == "" && req.Remove == "" {
		writeError(w, http.StatusBadRequest, "add or remove is required")
		return
	}

	mesh, err := s.catalog.Get(req.Mesh)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	if err := mesh.ReplaceHole(req.Add, req.Remove); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, navmesh.ErrUnknownHole) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"mesh":    mesh.Name(),
		"holes":   holeList(mesh),
	})
}

type AgentRequest struct {
	ID      string   `json:"id"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	ScaleX  float64  `json:"scaleX,omitempty"`
	ScaleY  float64  `json:"scaleY,omitempty"`
	State   string   `json:"state,omitempty"`
	Radius  *float64 `json:"radius,omitempty"` // Omitted for agents without a collider
	OffsetX float64  `json:"offsetX,omitempty"`
	OffsetY float64  `json:"offsetY,omitempty"`
}

func (a AgentRequest) character() (obstacle.Character, error) {
	c := obstacle.Character{
		Name:       a.ID,
		Pos:        geom.Point{X: a.X, Y: a.Y},
		LocalScale: geom.Point{X: a.ScaleX, Y: a.ScaleY},
	}
	if a.State != "" {
		st, err := obstacle.ParseState(a.State)
		if err != nil {
			return c, err
		}
		c.Movement = st
	}
	if a.Radius != nil {
		c.Collider = &obstacle.Footprint{
			Offset: geom.Point{X: a.OffsetX, Y: a.OffsetY},
			Radius: *a.Radius,
		}
	}
	return c, nil
}

type agentView struct {
	ID     string         `json:"id"`
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
	State  obstacle.State `json:"state"`
	Radius float64        `json:"radius,omitempty"`
}

// /agents - GET lists, POST upserts, PATCH changes the state, DELETE ?id= removes an agent
func (s *Server) agentsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		agents := s.agents.Agents()
		out := make([]agentView, 0, len(agents))
		for _, a := range agents {
			v := agentView{ID: a.ID(), X: a.Position().X, Y: a.Position().Y, State: a.State()}
			if fp, ok := a.Footprint(); ok {
				v.Radius = fp.Radius
			}
			out = append(out, v)
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "agents": out})

	case http.MethodPost:
		var req AgentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		c, err := req.character()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.agents.Upsert(c); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": c.Name})

	case http.MethodPatch:
		var req struct {
			ID    string `json:"id"`
			State string `json:"state"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		st, err := obstacle.ParseState(req.State)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.agents.SetState(req.ID, st); err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, obstacle.ErrUnknownAgent) {
				status = http.StatusNotFound
			}
			writeError(w, status, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": req.ID, "state": st})

	case http.MethodDelete:
		id := r.URL.Query().Get("id")
		if err := s.agents.Remove(id); err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, obstacle.ErrUnknownAgent) {
				status = http.StatusNotFound
			}
			writeError(w, status, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// POST /activeMesh - Switch the mesh used when requests name none
func (s *Server) activeMeshHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Mesh string `json:"mesh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.catalog.SetActive(req.Mesh); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	observe.Logger(r.Context()).Info("active mesh changed", "mesh", req.Mesh)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "active": req.Mesh})
}

// GET /graphLines - Get visibility graph edges as line strings for visualization
func (s *Server) graphLinesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	mesh, err := s.catalog.Get(r.URL.Query().Get("mesh"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	graph := s.planner(mesh).StaticGraph()
	lines := graph.Lines()

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"mesh":     mesh.Name(),
		"lines":    lines,
		"numNodes": graph.Len(),
		"numEdges": len(lines),
	})
}

// GET /region - Current static region as GeoJSON
func (s *Server) regionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	mesh, err := s.catalog.Get(r.URL.Query().Get("mesh"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := navmesh.WriteGeoJSON(&buf, mesh); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(buf.Bytes())
}
