package remesh

import (
	"math"

	"isoremesh/pkg/geom"
	"isoremesh/pkg/halfedge"
)

// LockFeatures locks every vertex whose one-ring contains a dihedral angle
// below keepAngle (radians) and returns how many vertices it locked.
// Vertices that are already locked are left alone and not counted.
func LockFeatures(m *halfedge.Mesh, keepAngle float64) int {
	locked := 0
	var ring []uint32
	for v := range uint32(m.VertexCap()) {
		if !m.VertexAlive(v) || m.IsLocked(v) {
			continue
		}
		ring = ring[:0]
		for h := range m.Outgoing(v) {
			ring = append(ring, h)
		}
		if minDihedral(m, v, ring) < keepAngle {
			m.Lock(v)
			locked++
		}
	}
	return locked
}

// minDihedral returns the smallest dihedral angle along the edges from v to
// its neighbors. out holds v's outgoing halfedges in rotational order, so
// the triangles on either side of out[j] have their third corners at the
// previous and next neighbor. Boundary edges have a single triangle and
// are ignored; a vertex with no interior edge reports π.
func minDihedral(m *halfedge.Mesh, v uint32, out []uint32) float64 {
	nn := len(out)
	center := m.Pos(v)
	minAngle := math.Pi
	for j, h := range out {
		if m.IsBoundaryEdge(h) {
			continue
		}
		cur := m.Pos(m.Dst(h))
		next := m.Pos(m.Dst(out[(j+1)%nn]))
		prev := m.Pos(m.Dst(out[(j-1+nn)%nn]))
		minAngle = math.Min(minAngle, geom.Dihedral(next, center, cur, prev))
	}
	return minAngle
}
