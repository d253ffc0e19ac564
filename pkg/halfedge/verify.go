package halfedge

import "fmt"

// Verify checks the structural invariants of the mesh and returns an error
// wrapping ErrCorrupt that names the first violation found. A mesh that
// passes is a consistently oriented 2-manifold with boundary made of
// triangles.
func (m *Mesh) Verify() error {
	liveV, liveH, liveF, liveL := 0, 0, 0, 0
	outgoing := make([]int, len(m.verts))
	seen := make(map[edgeKey]bool, m.numHes)

	for h := range uint32(len(m.hes)) {
		he := &m.hes[h]
		if he.dead {
			continue
		}
		liveH++
		if !m.VertexAlive(he.src) {
			return fmt.Errorf("%w: halfedge %d has dead source %d", ErrCorrupt, h, he.src)
		}
		if !m.HalfedgeAlive(he.rev) || he.rev == h || m.hes[he.rev].rev != h {
			return fmt.Errorf("%w: halfedge %d has bad reverse %d", ErrCorrupt, h, he.rev)
		}
		if !m.HalfedgeAlive(he.next) {
			return fmt.Errorf("%w: halfedge %d has dead next %d", ErrCorrupt, h, he.next)
		}
		if !m.FaceAlive(he.face) || m.hes[he.next].face != he.face {
			return fmt.Errorf("%w: halfedge %d and its next disagree on face", ErrCorrupt, h)
		}
		dst := m.hes[he.rev].src
		if m.hes[he.next].src != dst {
			return fmt.Errorf("%w: halfedge %d ends at %d but next starts at %d", ErrCorrupt, h, dst, m.hes[he.next].src)
		}
		if dst == he.src {
			return fmt.Errorf("%w: halfedge %d is a loop at vertex %d", ErrCorrupt, h, dst)
		}
		key := edgeKey{he.src, dst}
		if seen[key] {
			return fmt.Errorf("%w: duplicate edge %d->%d", ErrCorrupt, he.src, dst)
		}
		seen[key] = true
		outgoing[he.src]++
	}

	walked := 0
	for f := range uint32(len(m.faces)) {
		fc := &m.faces[f]
		if fc.dead {
			continue
		}
		if fc.boundary {
			liveL++
		} else {
			liveF++
		}
		if !m.HalfedgeAlive(fc.he) || m.hes[fc.he].face != f {
			return fmt.Errorf("%w: face %d has bad halfedge %d", ErrCorrupt, f, fc.he)
		}
		n := m.faceLen(f)
		if n > m.numHes {
			return fmt.Errorf("%w: face %d cycle does not close", ErrCorrupt, f)
		}
		if !fc.boundary && n != 3 {
			return fmt.Errorf("%w: face %d has %d sides", ErrCorrupt, f, n)
		}
		if fc.boundary && n < 3 {
			return fmt.Errorf("%w: boundary loop %d has %d sides", ErrCorrupt, f, n)
		}
		walked += n
	}
	if walked != liveH {
		return fmt.Errorf("%w: face cycles cover %d of %d halfedges", ErrCorrupt, walked, liveH)
	}

	for v := range uint32(len(m.verts)) {
		vx := &m.verts[v]
		if vx.dead {
			continue
		}
		liveV++
		if !m.HalfedgeAlive(vx.he) || m.hes[vx.he].src != v {
			return fmt.Errorf("%w: vertex %d has bad halfedge %d", ErrCorrupt, v, vx.he)
		}
		if d := m.Degree(v); d != outgoing[v] {
			return fmt.Errorf("%w: vertex %d fan reaches %d of %d edges", ErrCorrupt, v, d, outgoing[v])
		}
		boundary := 0
		for h := range m.Outgoing(v) {
			if m.faces[m.hes[h].face].boundary {
				boundary++
			}
		}
		if boundary > 1 {
			return fmt.Errorf("%w: vertex %d is on %d boundary edges leaving it", ErrCorrupt, v, boundary)
		}
	}

	if liveV != m.numVerts || liveH != m.numHes || liveF != m.numFaces || liveL != m.numLoops {
		return fmt.Errorf("%w: live counts %d/%d/%d/%d disagree with %d/%d/%d/%d", ErrCorrupt,
			liveV, liveH, liveF, liveL, m.numVerts, m.numHes, m.numFaces, m.numLoops)
	}
	return nil
}
