package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"mime"
	"net/http"

	"gonum.org/v1/gonum/spatial/r3"

	"isoremesh/pkg/remesh"
	"isoremesh/pkg/trimesh"
)

// maxBodyBytes bounds the request body; a vertex costs about 60 bytes of JSON.
const maxBodyBytes = 256 << 20

// Remesher remeshes a triangle soup. *remesh.Engine implements it.
type Remesher interface {
	Remesh(ctx context.Context, soup *trimesh.Soup, p remesh.Params) (*trimesh.Soup, *remesh.Report, error)
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	remesher    Remesher
	stats       *Stats
	maxVertices int
}

// NewHandlers creates handlers backed by remesher. Requests with more than
// maxVertices vertices are refused; 0 means no limit.
func NewHandlers(remesher Remesher, maxVertices int) *Handlers {
	return &Handlers{
		remesher:    remesher,
		stats:       NewStats(),
		maxVertices: maxVertices,
	}
}

// HandleRemesh handles POST /api/v1/remesh.
func (h *Handlers) HandleRemesh(w http.ResponseWriter, r *http.Request) {
	h.stats.requests.Add(1)

	// Enforce Content-Type.
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		h.fail(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_request"})
		return
	}

	var req RemeshRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "request_too_large"})
			return
		}
		h.fail(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_request"})
		return
	}

	if len(req.Mesh.Faces) == 0 {
		h.fail(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "invalid_mesh", Field: "mesh.faces"})
		return
	}
	if h.maxVertices > 0 && len(req.Mesh.Vertices) > h.maxVertices {
		h.fail(w, http.StatusRequestEntityTooLarge, ErrorResponse{
			Error:  "mesh_too_large",
			Field:  "mesh.vertices",
			Detail: fmt.Sprintf("%d vertices, limit %d", len(req.Mesh.Vertices), h.maxVertices),
		})
		return
	}
	if len(req.Mesh.Locked) != 0 && len(req.Mesh.Locked) != len(req.Mesh.Vertices) {
		h.fail(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Field: "mesh.locked"})
		return
	}
	for _, p := range req.Pins {
		if !finite(p[0]) || !finite(p[1]) || !finite(p[2]) {
			h.fail(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Field: "pins"})
			return
		}
	}

	soup := req.Mesh.toSoup()
	out, report, err := h.remesher.Remesh(r.Context(), soup, req.params())
	if err != nil {
		switch {
		case errors.Is(err, remesh.ErrInvalidParams):
			h.fail(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "invalid_parameters", Detail: err.Error()})
		case errors.Is(err, remesh.ErrInvalidMesh):
			h.fail(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "invalid_mesh", Field: "mesh", Detail: err.Error()})
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			h.fail(w, http.StatusServiceUnavailable, ErrorResponse{Error: "request_timeout"})
		case errors.Is(err, remesh.ErrCorruptMesh):
			h.fail(w, http.StatusInternalServerError, ErrorResponse{Error: "mesh_corrupted"})
		default:
			h.fail(w, http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
		}
		return
	}

	h.stats.verticesIn.Add(uint64(len(soup.Positions)))
	h.stats.verticesOut.Add(uint64(len(out.Positions)))

	resp := RemeshResponse{
		Mesh: meshFromSoup(out),
		Report: ReportJSON{
			MeanEdgeLength:     report.Stats.Mean,
			EdgeLengthVariance: report.Stats.Variance,
			PinnedVertices:     report.PreLocked,
			LockedVertices:     report.Locked,
			Iterations:         make([]IterationJSON, 0, len(report.Iterations)),
		},
	}
	for _, it := range report.Iterations {
		resp.Report.Iterations = append(resp.Report.Iterations, IterationJSON{
			Splits:    it.Split.Applied,
			Collapses: it.Collapse.Applied,
			Flips:     it.Flip.Applied,
			Vertices:  it.Vertices,
			Faces:     it.Faces,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.stats.Snapshot())
}

func (h *Handlers) fail(w http.ResponseWriter, status int, resp ErrorResponse) {
	h.stats.failures.Add(1)
	writeError(w, status, resp)
}

// params converts the request into engine parameters, filling defaults.
func (req *RemeshRequest) params() remesh.Params {
	p := remesh.ParamsFromOptions(remesh.DefaultOptions())
	if req.ShortLength != nil {
		p.ShortLength = *req.ShortLength
	}
	if req.LongLength != nil {
		p.LongLength = *req.LongLength
	}
	if req.KeepAngleDeg != nil {
		p.KeepAngleLessThan = *req.KeepAngleDeg * math.Pi / 180
	}
	if req.Iterations != nil {
		p.Iterations = *req.Iterations
	}
	p.Seed = req.Seed
	p.PinTolerance = req.PinTolerance
	p.LargestComponent = req.LargestComponent
	for _, pin := range req.Pins {
		p.Pins = append(p.Pins, r3.Vec{X: pin[0], Y: pin[1], Z: pin[2]})
	}
	return p
}

func (m MeshJSON) toSoup() *trimesh.Soup {
	s := &trimesh.Soup{
		Positions: make([]r3.Vec, len(m.Vertices)),
		Triangles: m.Faces,
	}
	for i, v := range m.Vertices {
		s.Positions[i] = r3.Vec{X: v[0], Y: v[1], Z: v[2]}
	}
	if len(m.Locked) > 0 {
		s.Locked = m.Locked
	}
	return s
}

func meshFromSoup(s *trimesh.Soup) MeshJSON {
	m := MeshJSON{
		Vertices: make([][3]float64, len(s.Positions)),
		Faces:    s.Triangles,
		Locked:   s.Locked,
	}
	for i, p := range s.Positions {
		m.Vertices[i] = [3]float64{p.X, p.Y, p.Z}
	}
	return m
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func writeError(w http.ResponseWriter, status int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
