// Package smooth moves mesh vertices without changing connectivity.
package smooth

import (
	"gonum.org/v1/gonum/spatial/r3"

	"isoremesh/pkg/halfedge"
)

// Taubin alternates a shrinking Laplacian step (Lambda > 0) with an
// inflating one (Mu < 0), which smooths without the volume loss of plain
// Laplacian smoothing.
type Taubin struct {
	Lambda float64
	Mu     float64
	Steps  int
}

// DefaultTaubin returns the smoother used between remeshing iterations.
func DefaultTaubin() Taubin {
	return Taubin{Lambda: 0.5, Mu: -0.53, Steps: 3}
}

// Smooth applies Steps shrink/inflate pairs.
func (t Taubin) Smooth(m *halfedge.Mesh) {
	buf := make([]r3.Vec, m.VertexCap())
	for range t.Steps {
		laplacianStep(m, t.Lambda, buf)
		laplacianStep(m, t.Mu, buf)
	}
}

// Laplacian is plain uniform-weight Laplacian smoothing.
type Laplacian struct {
	Lambda float64
	Steps  int
}

// Smooth applies Steps Laplacian steps.
func (l Laplacian) Smooth(m *halfedge.Mesh) {
	buf := make([]r3.Vec, m.VertexCap())
	for range l.Steps {
		laplacianStep(m, l.Lambda, buf)
	}
}

// Off leaves the mesh untouched.
type Off struct{}

func (Off) Smooth(*halfedge.Mesh) {}

// laplacianStep moves every free vertex by w times the offset from its
// position to the centroid of its one-ring. All offsets are computed from
// the positions before the step. Locked and boundary vertices stay put.
func laplacianStep(m *halfedge.Mesh, w float64, target []r3.Vec) {
	n := uint32(m.VertexCap())
	for v := range n {
		if !m.VertexAlive(v) {
			continue
		}
		p := m.Pos(v)
		target[v] = p
		if m.IsLocked(v) || m.IsBoundaryVertex(v) {
			continue
		}
		var sum r3.Vec
		k := 0
		for u := range m.Neighbors(v) {
			sum = r3.Add(sum, m.Pos(u))
			k++
		}
		if k == 0 {
			continue
		}
		centroid := r3.Scale(1/float64(k), sum)
		target[v] = r3.Add(p, r3.Scale(w, r3.Sub(centroid, p)))
	}
	for v := range n {
		if m.VertexAlive(v) {
			m.SetPos(v, target[v])
		}
	}
}
