package api

import (
	"sync/atomic"
	"time"
)

// RemeshRequest is the JSON body for POST /api/v1/remesh. Omitted
// parameters take the remesh package defaults.
type RemeshRequest struct {
	Mesh             MeshJSON     `json:"mesh"`
	ShortLength      *float64     `json:"short_length,omitempty"`
	LongLength       *float64     `json:"long_length,omitempty"`
	KeepAngleDeg     *float64     `json:"keep_angle_deg,omitempty"`
	Iterations       *int         `json:"iterations,omitempty"`
	Seed             uint64       `json:"seed"`
	Pins             [][3]float64 `json:"pins,omitempty"`
	PinTolerance     float64      `json:"pin_tolerance,omitempty"`
	LargestComponent bool         `json:"largest_component,omitempty"`
}

// MeshJSON is an indexed triangle mesh.
type MeshJSON struct {
	Vertices [][3]float64 `json:"vertices"`
	Faces    [][3]uint32  `json:"faces"`
	Locked   []bool       `json:"locked,omitempty"`
}

// RemeshResponse is the JSON response for a successful remesh.
type RemeshResponse struct {
	Mesh   MeshJSON   `json:"mesh"`
	Report ReportJSON `json:"report"`
}

// ReportJSON summarizes the remesh run.
type ReportJSON struct {
	MeanEdgeLength     float64         `json:"mean_edge_length"`
	EdgeLengthVariance float64         `json:"edge_length_variance"`
	PinnedVertices     int             `json:"pinned_vertices"`
	LockedVertices     int             `json:"locked_vertices"`
	Iterations         []IterationJSON `json:"iterations"`
}

// IterationJSON holds the edit counts of one iteration.
type IterationJSON struct {
	Splits    int `json:"splits"`
	Collapses int `json:"collapses"`
	Flips     int `json:"flips"`
	Vertices  int `json:"vertices"`
	Faces     int `json:"faces"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	Requests      uint64  `json:"requests"`
	Failures      uint64  `json:"failures"`
	VerticesIn    uint64  `json:"vertices_in"`
	VerticesOut   uint64  `json:"vertices_out"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}

// Stats counts served remesh requests. It is safe for concurrent use.
type Stats struct {
	started     time.Time
	requests    atomic.Uint64
	failures    atomic.Uint64
	verticesIn  atomic.Uint64
	verticesOut atomic.Uint64
}

// NewStats starts the uptime clock.
func NewStats() *Stats {
	return &Stats{started: time.Now()}
}

// Snapshot returns the current counters.
func (s *Stats) Snapshot() StatsResponse {
	return StatsResponse{
		Requests:      s.requests.Load(),
		Failures:      s.failures.Load(),
		VerticesIn:    s.verticesIn.Load(),
		VerticesOut:   s.verticesOut.Load(),
		UptimeSeconds: time.Since(s.started).Seconds(),
	}
}
