package remesh

import (
	"isoremesh/pkg/geom"
	"isoremesh/pkg/halfedge"
)

// collapsePass collapses short halfedges in random order. An edge touching
// a locked face or vertex is skipped. A collapse is rejected if some
// neighbor of the removed vertex would end up at least the long threshold
// away from the surviving vertex, or if the topology does not allow it.
func (r *remesher) collapsePass() PassStats {
	m := r.m
	var ps PassStats
	for _, h := range r.shuffledHalfedges() {
		if !m.HalfedgeAlive(h) {
			continue
		}
		rev := m.Rev(h)
		if m.FaceIsLocked(m.Face(h)) || m.FaceIsLocked(m.Face(rev)) {
			continue
		}
		a, b := m.Src(h), m.Dst(h)
		if m.IsLocked(a) || m.IsLocked(b) {
			continue
		}
		ps.Examined++
		if m.Length2(h) > r.short2 {
			continue
		}

		if !r.collapseKeepsEdgesShort(a, b) {
			ps.Rejected++
			continue
		}
		quad := r.edgeQuad(h)
		if err := m.CollapseEdge(h); err != nil {
			ps.Rejected++
			continue
		}
		ps.Applied++
		if r.hooks.collapsed != nil {
			r.hooks.collapsed(quad, r.ring)
		}
	}
	return ps
}

// collapseKeepsEdgesShort reports whether every neighbor of b is closer to
// a than the long threshold. It leaves b's ring in r.ring.
func (r *remesher) collapseKeepsEdgesShort(a, b uint32) bool {
	pa := r.m.Pos(a)
	r.ring = r.ring[:0]
	for n := range r.m.Neighbors(b) {
		if geom.Dist2(pa, r.m.Pos(n)) >= r.long2 {
			return false
		}
		r.ring = append(r.ring, n)
	}
	return true
}

// edgeQuad returns the source, destination and the two apexes of h. An apex
// on a boundary side is halfedge.None.
func (r *remesher) edgeQuad(h uint32) [4]uint32 {
	m := r.m
	quad := [4]uint32{m.Src(h), m.Dst(h), halfedge.None, halfedge.None}
	if !m.FaceIsBoundary(m.Face(h)) {
		quad[2] = m.Dst(m.Next(h))
	}
	rev := m.Rev(h)
	if !m.FaceIsBoundary(m.Face(rev)) {
		quad[3] = m.Dst(m.Next(rev))
	}
	return quad
}
