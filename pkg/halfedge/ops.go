package halfedge

import (
	"fmt"
	"slices"

	"isoremesh/pkg/geom"
)

// SplitEdge inserts a vertex at the midpoint of h and connects it to the
// opposite corner of each adjacent triangle. It returns the new vertex.
//
// Splitting an interior edge adds one vertex and two triangles; splitting a
// boundary edge adds one vertex and one triangle. The halfedge h keeps its
// source and ends at the new vertex.
func (m *Mesh) SplitEdge(h uint32) uint32 {
	r := m.hes[h].rev
	a, b := m.hes[h].src, m.hes[r].src
	f1, f2 := m.hes[h].face, m.hes[r].face

	mid := m.newVertex(geom.Midpoint(m.verts[a].pos, m.verts[b].pos))
	p := m.Prev(r)

	// Cut the edge: a->mid->b on f1's side, b->mid->a on f2's side.
	h2 := m.newHalfedge()
	r2 := m.newHalfedge()
	m.hes[h2].src = mid
	m.hes[h2].next = m.hes[h].next
	m.hes[h2].face = f1
	m.hes[h].next = h2

	m.hes[r2].src = b
	m.hes[r2].next = r
	m.hes[r2].face = f2
	m.hes[r].src = mid
	m.hes[p].next = r2

	m.pair(h, r)
	m.pair(h2, r2)
	if m.verts[b].he == r {
		m.verts[b].he = r2
	}
	m.verts[mid].he = h2

	if !m.faces[f1].boundary {
		// f1 is the quad a, mid, b, c.
		x := m.hes[h2].next // b->c
		y := m.hes[x].next  // c->a
		c := m.hes[y].src
		d1, d2 := m.newHalfedge(), m.newHalfedge()
		f3 := m.newFace(false)
		m.pair(d1, d2)

		m.hes[d1].src = mid
		m.hes[d1].next = y
		m.hes[d1].face = f1
		m.hes[h].next = d1

		m.hes[d2].src = c
		m.hes[d2].next = h2
		m.hes[x].next = d2
		for _, e := range [3]uint32{h2, x, d2} {
			m.hes[e].face = f3
		}
		m.faces[f1].he = h
		m.faces[f3].he = h2
		m.faces[f3].locked = m.faces[f1].locked
	}

	if !m.faces[f2].boundary {
		// f2 is the quad b, mid, a, d.
		u := m.hes[r].next // a->d
		w := m.hes[u].next // d->b
		d := m.hes[w].src
		e1, e2 := m.newHalfedge(), m.newHalfedge()
		f4 := m.newFace(false)
		m.pair(e1, e2)

		m.hes[e1].src = mid
		m.hes[e1].next = w
		m.hes[e1].face = f2
		m.hes[r2].next = e1

		m.hes[e2].src = d
		m.hes[e2].next = r
		m.hes[u].next = e2
		for _, e := range [3]uint32{r, u, e2} {
			m.hes[e].face = f4
		}
		m.faces[f2].he = r2
		m.faces[f4].he = r
		m.faces[f4].locked = m.faces[f2].locked
	}

	return mid
}

// CollapseEdge merges the destination of h into its source. The source keeps
// its position; the destination, the edge and its adjacent triangles are
// removed, and every other edge of the destination is reattached to the
// source.
//
// It returns ErrNotCollapsible, leaving the mesh untouched, when the result
// would not be a manifold: the endpoints share a neighbor other than the
// apexes of the adjacent triangles, an interior edge joins two boundary
// vertices, an apex would drop below the minimum valence, or a boundary loop
// would degenerate.
func (m *Mesh) CollapseEdge(h uint32) error {
	if err := m.checkCollapse(h); err != nil {
		return err
	}

	r := m.hes[h].rev
	a, b := m.hes[h].src, m.hes[r].src
	f1, f2 := m.hes[h].face, m.hes[r].face

	var fromB []uint32
	for e := range m.Outgoing(b) {
		fromB = append(fromB, e)
	}

	var keep uint32 // a surviving halfedge leaving a
	if m.faces[f1].boundary {
		p := m.Prev(h)
		n := m.hes[h].next
		m.hes[p].next = n
		if m.faces[f1].he == h {
			m.faces[f1].he = n
		}
		keep = n
	} else {
		h1 := m.hes[h].next // b->c
		h2 := m.hes[h1].next
		c := m.hes[h2].src
		o1, o2 := m.hes[h1].rev, m.hes[h2].rev
		m.pair(o1, o2)
		if m.verts[c].he == h2 {
			m.verts[c].he = o1
		}
		m.killHalfedge(h1)
		m.killHalfedge(h2)
		m.killFace(f1)
		keep = o2
	}

	if m.faces[f2].boundary {
		p := m.Prev(r)
		n := m.hes[r].next
		m.hes[p].next = n
		if m.faces[f2].he == r {
			m.faces[f2].he = n
		}
	} else {
		r1 := m.hes[r].next // a->d
		r2 := m.hes[r1].next
		d := m.hes[r2].src
		o3, o4 := m.hes[r1].rev, m.hes[r2].rev
		m.pair(o3, o4)
		if m.verts[d].he == r2 {
			m.verts[d].he = o3
		}
		m.killHalfedge(r1)
		m.killHalfedge(r2)
		m.killFace(f2)
	}

	m.killHalfedge(h)
	m.killHalfedge(r)
	for _, e := range fromB {
		if !m.hes[e].dead {
			m.hes[e].src = a
		}
	}
	m.verts[a].he = keep
	m.killVertex(b)
	return nil
}

func (m *Mesh) checkCollapse(h uint32) error {
	if !m.HalfedgeAlive(h) {
		return fmt.Errorf("%w: halfedge %d is dead", ErrNotCollapsible, h)
	}
	r := m.hes[h].rev
	a, b := m.hes[h].src, m.hes[r].src
	f1, f2 := m.hes[h].face, m.hes[r].face
	if m.faces[f1].boundary && m.faces[f2].boundary {
		return fmt.Errorf("%w: edge %d-%d has no triangle", ErrNotCollapsible, a, b)
	}

	var apexes []uint32
	for _, f := range [2]uint32{f1, f2} {
		if m.faces[f].boundary {
			if m.faceLen(f) <= 3 {
				return fmt.Errorf("%w: boundary loop of face %d would degenerate", ErrNotCollapsible, f)
			}
			continue
		}
		var apex uint32
		if f == f1 {
			apex = m.hes[m.hes[m.hes[h].next].next].src
		} else {
			apex = m.hes[m.hes[m.hes[r].next].next].src
		}
		minDeg := 4
		if m.IsBoundaryVertex(apex) {
			minDeg = 3
		}
		if m.Degree(apex) < minDeg {
			return fmt.Errorf("%w: apex %d has valence %d", ErrNotCollapsible, apex, m.Degree(apex))
		}
		apexes = append(apexes, apex)
	}
	if len(apexes) == 2 && apexes[0] == apexes[1] {
		return fmt.Errorf("%w: both triangles of edge %d-%d share apex %d", ErrNotCollapsible, a, b, apexes[0])
	}

	if !m.IsBoundaryEdge(h) && m.IsBoundaryVertex(a) && m.IsBoundaryVertex(b) {
		return fmt.Errorf("%w: interior edge %d-%d joins two boundary vertices", ErrNotCollapsible, a, b)
	}

	// Link condition: the only common neighbors are the apexes.
	var ringA []uint32
	for n := range m.Neighbors(a) {
		ringA = append(ringA, n)
	}
	common := 0
	for n := range m.Neighbors(b) {
		if slices.Contains(ringA, n) {
			common++
		}
	}
	if common != len(apexes) {
		return fmt.Errorf("%w: endpoints %d and %d share %d neighbors, want %d", ErrNotCollapsible, a, b, common, len(apexes))
	}
	return nil
}

// FlipEdge replaces the diagonal of the quad formed by the two triangles of
// h with the opposite diagonal. The halfedge h and its reverse are reused
// for the new edge: afterwards h runs from the apex of Rev(h)'s old
// triangle to the apex of h's old triangle.
//
// It returns ErrNotFlippable, leaving the mesh untouched, when h is on the
// boundary, the new edge already exists, or an endpoint of h would drop
// below the minimum valence.
func (m *Mesh) FlipEdge(h uint32) error {
	if !m.HalfedgeAlive(h) {
		return fmt.Errorf("%w: halfedge %d is dead", ErrNotFlippable, h)
	}
	r := m.hes[h].rev
	f1, f2 := m.hes[h].face, m.hes[r].face
	if m.faces[f1].boundary || m.faces[f2].boundary {
		return fmt.Errorf("%w: halfedge %d is on the boundary", ErrNotFlippable, h)
	}

	h1 := m.hes[h].next // v1->v2
	h2 := m.hes[h1].next
	r1 := m.hes[r].next // v0->v3
	r2 := m.hes[r1].next
	v0, v1 := m.hes[h].src, m.hes[r].src
	v2, v3 := m.hes[h2].src, m.hes[r2].src

	if v2 == v3 {
		return fmt.Errorf("%w: both triangles of %d-%d share apex %d", ErrNotFlippable, v0, v1, v2)
	}
	if m.HalfedgeOf(v2, v3) != None {
		return fmt.Errorf("%w: %d and %d are already adjacent", ErrNotFlippable, v2, v3)
	}
	for _, v := range [2]uint32{v0, v1} {
		minDeg := 4
		if m.IsBoundaryVertex(v) {
			minDeg = 3
		}
		if m.Degree(v) <= minDeg-1 {
			return fmt.Errorf("%w: vertex %d has valence %d", ErrNotFlippable, v, m.Degree(v))
		}
	}

	m.hes[h].src = v3
	m.hes[r].src = v2

	m.hes[h].next = h2
	m.hes[h2].next = r1
	m.hes[r1].next = h
	m.hes[r1].face = f1

	m.hes[r].next = r2
	m.hes[r2].next = h1
	m.hes[h1].next = r
	m.hes[h1].face = f2

	m.faces[f1].he = h
	m.faces[f2].he = r
	m.verts[v0].he = r1
	m.verts[v1].he = h1
	return nil
}

// faceLen returns the number of halfedges in the cycle of f.
func (m *Mesh) faceLen(f uint32) int {
	start := m.faces[f].he
	n := 0
	for h := start; ; {
		n++
		h = m.hes[h].next
		if h == start || n > len(m.hes) {
			return n
		}
	}
}
