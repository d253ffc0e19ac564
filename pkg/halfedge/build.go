package halfedge

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"isoremesh/pkg/trimesh"
)

type edgeKey struct{ src, dst uint32 }

// FromSoup builds a half-edge mesh from an indexed triangle soup. Vertex
// handles equal soup indices and the soup's lock flags are carried over.
//
// The soup must describe a consistently oriented manifold: every directed
// edge used at most once, every vertex with a single fan of triangles, and
// no unreferenced vertices.
func FromSoup(s *trimesh.Soup) (*Mesh, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	m := &Mesh{
		verts: make([]vertex, 0, len(s.Positions)),
		hes:   make([]halfedge, 0, 6*len(s.Triangles)+6),
		faces: make([]face, 0, len(s.Triangles)+1),
	}
	for i, p := range s.Positions {
		v := m.newVertex(p)
		m.verts[v].locked = s.IsLocked(i)
	}

	// Interior halfedges, three per triangle.
	edges := make(map[edgeKey]uint32, 3*len(s.Triangles))
	for ti, tri := range s.Triangles {
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[2] == tri[0] {
			return nil, fmt.Errorf("%w: triangle %d has repeated corner %v", ErrNonManifold, ti, tri)
		}
		f := m.newFace(false)
		var hs [3]uint32
		for k := range 3 {
			hs[k] = m.newHalfedge()
		}
		for k := range 3 {
			h := hs[k]
			src, dst := tri[k], tri[(k+1)%3]
			key := edgeKey{src, dst}
			if _, dup := edges[key]; dup {
				return nil, fmt.Errorf("%w: directed edge %d->%d used twice (triangle %d)", ErrNonManifold, src, dst, ti)
			}
			edges[key] = h
			m.hes[h].src = src
			m.hes[h].next = hs[(k+1)%3]
			m.hes[h].face = f
			m.verts[src].he = h
		}
		m.faces[f].he = hs[0]
	}

	// Pair reverse partners; unpaired edges get a boundary twin.
	numInterior := len(m.hes)
	boundaryFrom := make(map[uint32]uint32) // vertex -> boundary halfedge leaving it
	for h := range uint32(numInterior) {
		if m.hes[h].rev != None {
			continue
		}
		src := m.hes[h].src
		dst := m.hes[m.hes[h].next].src
		if r, ok := edges[edgeKey{dst, src}]; ok {
			m.pair(h, r)
			continue
		}
		b := m.newHalfedge()
		m.hes[b].src = dst
		m.pair(h, b)
		if _, dup := boundaryFrom[dst]; dup {
			return nil, fmt.Errorf("%w: vertex %d touches the boundary more than once", ErrNonManifold, dst)
		}
		boundaryFrom[dst] = b
	}

	// Chain boundary twins into loops and give each loop a face.
	for b := uint32(numInterior); b < uint32(len(m.hes)); b++ {
		next, ok := boundaryFrom[m.Dst(b)]
		if !ok {
			return nil, fmt.Errorf("%w: open boundary at vertex %d", ErrNonManifold, m.Dst(b))
		}
		m.hes[b].next = next
	}
	for b := uint32(numInterior); b < uint32(len(m.hes)); b++ {
		if m.hes[b].face != None {
			continue
		}
		f := m.newFace(true)
		m.faces[f].he = b
		h := b
		for {
			m.hes[h].face = f
			h = m.hes[h].next
			if h == b {
				break
			}
		}
	}

	for v := range m.verts {
		if m.verts[v].he == None {
			return nil, fmt.Errorf("%w: vertex %d is not referenced by any triangle", ErrNonManifold, v)
		}
	}

	// A vertex whose rotation misses some of its outgoing halfedges has
	// more than one fan.
	outgoing := make([]int, len(m.verts))
	for h := range m.hes {
		outgoing[m.hes[h].src]++
	}
	for v := range uint32(len(m.verts)) {
		if d := m.Degree(v); d != outgoing[v] {
			return nil, fmt.Errorf("%w: vertex %d has %d edges but its fan reaches %d", ErrNonManifold, v, outgoing[v], d)
		}
	}

	return m, nil
}

// ToSoup exports the live triangles. Vertices are renumbered densely in
// handle order; lock flags are carried over.
func (m *Mesh) ToSoup() *trimesh.Soup {
	remap := make([]uint32, len(m.verts))
	s := &trimesh.Soup{
		Positions: make([]r3.Vec, 0, m.numVerts),
		Triangles: make([][3]uint32, 0, m.numFaces),
		Locked:    make([]bool, 0, m.numVerts),
	}
	for v := range m.verts {
		if m.verts[v].dead {
			remap[v] = None
			continue
		}
		remap[v] = uint32(len(s.Positions))
		s.Positions = append(s.Positions, m.verts[v].pos)
		s.Locked = append(s.Locked, m.verts[v].locked)
	}
	for f := range uint32(len(m.faces)) {
		fc := m.faces[f]
		if fc.dead || fc.boundary {
			continue
		}
		vs := m.FaceVertices(f)
		s.Triangles = append(s.Triangles, [3]uint32{remap[vs[0]], remap[vs[1]], remap[vs[2]]})
	}
	return s
}

// Compact drops dead records and renumbers all handles densely, preserving
// the relative order of live elements. Handles held by the caller are
// invalidated.
func (m *Mesh) Compact() {
	vmap := make([]uint32, len(m.verts))
	hmap := make([]uint32, len(m.hes))
	fmap := make([]uint32, len(m.faces))
	renumber := func(n int, dead func(int) bool, out []uint32) int {
		next := 0
		for i := range n {
			if dead(i) {
				out[i] = None
				continue
			}
			out[i] = uint32(next)
			next++
		}
		return next
	}
	nv := renumber(len(m.verts), func(i int) bool { return m.verts[i].dead }, vmap)
	nh := renumber(len(m.hes), func(i int) bool { return m.hes[i].dead }, hmap)
	nf := renumber(len(m.faces), func(i int) bool { return m.faces[i].dead }, fmap)

	verts := make([]vertex, 0, nv)
	for _, v := range m.verts {
		if v.dead {
			continue
		}
		v.he = hmap[v.he]
		verts = append(verts, v)
	}
	hes := make([]halfedge, 0, nh)
	for _, h := range m.hes {
		if h.dead {
			continue
		}
		h.src = vmap[h.src]
		h.next = hmap[h.next]
		h.rev = hmap[h.rev]
		h.face = fmap[h.face]
		hes = append(hes, h)
	}
	faces := make([]face, 0, nf)
	for _, f := range m.faces {
		if f.dead {
			continue
		}
		f.he = hmap[f.he]
		faces = append(faces, f)
	}
	m.verts, m.hes, m.faces = verts, hes, faces
}
