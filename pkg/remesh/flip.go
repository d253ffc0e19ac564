package remesh

import "isoremesh/pkg/halfedge"

// valenceSnapshot records degree and boundary flag per vertex handle.
type valenceSnapshot struct {
	degree   []int
	boundary []bool
}

func takeValenceSnapshot(m *halfedge.Mesh) valenceSnapshot {
	n := m.VertexCap()
	s := valenceSnapshot{degree: make([]int, n), boundary: make([]bool, n)}
	forEachChunk(n, func(_, lo, hi int) {
		for v := lo; v < hi; v++ {
			if !m.VertexAlive(uint32(v)) {
				continue
			}
			s.degree[v] = m.Degree(uint32(v))
			s.boundary[v] = m.IsBoundaryVertex(uint32(v))
		}
	})
	return s
}

func (s valenceSnapshot) target(v uint32) int {
	if s.boundary[v] {
		return 4
	}
	return 6
}

// flipScores returns the valence deviation of the quad v0..v3 before and
// after replacing diagonal v0-v1 with v2-v3.
func (s valenceSnapshot) flipScores(quad [4]uint32) (score, after int) {
	for i, v := range quad {
		d, t := s.degree[v], s.target(v)
		score += abs(d - t)
		if i < 2 {
			after += abs(d - 1 - t)
		} else {
			after += abs(d + 1 - t)
		}
	}
	return score, after
}

// flipPass visits halfedges in handle order and flips interior, unlocked
// edges when that strictly lowers the valence deviation of their quad.
// Degrees come from a snapshot taken before the first flip and are not
// updated as flips are applied.
func (r *remesher) flipPass() PassStats {
	m := r.m
	snap := takeValenceSnapshot(m)
	var ps PassStats
	for h := range uint32(m.HalfedgeCap()) {
		if !m.HalfedgeAlive(h) {
			continue
		}
		f1, f2 := m.Face(h), m.Face(m.Rev(h))
		if m.FaceIsBoundary(f1) || m.FaceIsBoundary(f2) {
			continue
		}
		if m.FaceIsLocked(f1) || m.FaceIsLocked(f2) {
			continue
		}
		quad := r.edgeQuad(h)
		if m.IsLocked(quad[0]) || m.IsLocked(quad[1]) {
			continue
		}
		ps.Examined++

		score, after := snap.flipScores(quad)
		if after >= score {
			continue
		}
		if err := m.FlipEdge(h); err != nil {
			ps.Rejected++
			continue
		}
		ps.Applied++
		if r.hooks.flipped != nil {
			r.hooks.flipped(quad)
		}
	}
	return ps
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
