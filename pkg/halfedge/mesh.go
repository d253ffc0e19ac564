// Package halfedge implements an arena-backed half-edge triangle mesh.
//
// Vertices, halfedges and faces live in growable slices and are addressed by
// uint32 handles. Removing an element only marks it dead, so handles taken
// before a mutation stay meaningful: a caller iterating a snapshot of handles
// checks HalfedgeAlive and moves on. Compact renumbers the arenas once no
// snapshot is outstanding.
//
// Every halfedge has a reverse partner and a face. Holes in the surface are
// closed by boundary faces, one per boundary loop, whose next-cycles run
// opposite to the triangles around them.
package halfedge

import (
	"errors"
	"iter"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"isoremesh/pkg/geom"
)

// None is the invalid handle.
const None = math.MaxUint32

var (
	// ErrCorrupt is returned by Verify when a structural invariant is broken.
	ErrCorrupt = errors.New("corrupt half-edge mesh")
	// ErrNonManifold is returned when a soup cannot be represented as an
	// oriented 2-manifold with boundary.
	ErrNonManifold = errors.New("non-manifold mesh")
	// ErrNotCollapsible is returned when collapsing an edge would break
	// the manifold property.
	ErrNotCollapsible = errors.New("edge not collapsible")
	// ErrNotFlippable is returned when flipping an edge would create a
	// duplicate edge or a vertex of too low valence.
	ErrNotFlippable = errors.New("edge not flippable")
)

type vertex struct {
	pos    r3.Vec
	he     uint32 // any outgoing halfedge
	locked bool
	dead   bool
}

type halfedge struct {
	src  uint32
	next uint32
	rev  uint32
	face uint32
	dead bool
}

type face struct {
	he       uint32
	boundary bool
	locked   bool
	dead     bool
}

// Mesh is a manifold triangle mesh with boundary.
type Mesh struct {
	verts []vertex
	hes   []halfedge
	faces []face

	numVerts int
	numHes   int
	numFaces int // triangles only
	numLoops int // boundary faces
}

// NumVertices returns the number of live vertices.
func (m *Mesh) NumVertices() int { return m.numVerts }

// NumHalfedges returns the number of live halfedges.
func (m *Mesh) NumHalfedges() int { return m.numHes }

// NumFaces returns the number of live triangles. Boundary faces are not
// counted.
func (m *Mesh) NumFaces() int { return m.numFaces }

// NumBoundaryLoops returns the number of live boundary faces.
func (m *Mesh) NumBoundaryLoops() int { return m.numLoops }

// VertexCap returns the size of the vertex arena, dead records included.
// Every vertex handle is below it.
func (m *Mesh) VertexCap() int { return len(m.verts) }

// HalfedgeCap returns the size of the halfedge arena.
func (m *Mesh) HalfedgeCap() int { return len(m.hes) }

// FaceCap returns the size of the face arena.
func (m *Mesh) FaceCap() int { return len(m.faces) }

// VertexAlive reports whether v is a live vertex handle.
func (m *Mesh) VertexAlive(v uint32) bool { return int(v) < len(m.verts) && !m.verts[v].dead }

// HalfedgeAlive reports whether h is a live halfedge handle.
func (m *Mesh) HalfedgeAlive(h uint32) bool { return int(h) < len(m.hes) && !m.hes[h].dead }

// FaceAlive reports whether f is a live face handle.
func (m *Mesh) FaceAlive(f uint32) bool { return int(f) < len(m.faces) && !m.faces[f].dead }

// Pos returns the position of vertex v.
func (m *Mesh) Pos(v uint32) r3.Vec { return m.verts[v].pos }

// SetPos moves vertex v.
func (m *Mesh) SetPos(v uint32, p r3.Vec) { m.verts[v].pos = p }

// Src returns the vertex halfedge h leaves.
func (m *Mesh) Src(h uint32) uint32 { return m.hes[h].src }

// Dst returns the vertex halfedge h points to.
func (m *Mesh) Dst(h uint32) uint32 { return m.hes[m.hes[h].rev].src }

// Next returns the halfedge following h around its face.
func (m *Mesh) Next(h uint32) uint32 { return m.hes[h].next }

// Rev returns the opposite halfedge of h.
func (m *Mesh) Rev(h uint32) uint32 { return m.hes[h].rev }

// Face returns the face on the left of h, a boundary face on open edges.
func (m *Mesh) Face(h uint32) uint32 { return m.hes[h].face }

// Prev returns the halfedge whose next is h. It walks the face cycle, so it
// is O(1) for triangles and O(loop length) on boundary faces.
func (m *Mesh) Prev(h uint32) uint32 {
	p := h
	for m.hes[p].next != h {
		p = m.hes[p].next
	}
	return p
}

// Length2 returns the squared length of halfedge h.
func (m *Mesh) Length2(h uint32) float64 {
	return geom.Dist2(m.verts[m.Src(h)].pos, m.verts[m.Dst(h)].pos)
}

// Length returns the length of halfedge h.
func (m *Mesh) Length(h uint32) float64 {
	return math.Sqrt(m.Length2(h))
}

// IsBoundaryEdge reports whether either side of h is a boundary face.
func (m *Mesh) IsBoundaryEdge(h uint32) bool {
	return m.faces[m.hes[h].face].boundary || m.faces[m.hes[m.hes[h].rev].face].boundary
}

// HalfedgeOf returns the halfedge from u to v, or None if u and v are not
// adjacent.
func (m *Mesh) HalfedgeOf(u, v uint32) uint32 {
	for h := range m.Outgoing(u) {
		if m.Dst(h) == v {
			return h
		}
	}
	return None
}

// Vertex queries.

// Outgoing iterates the halfedges leaving v in rotational order. Each step
// goes h -> Next(Rev(h)), so consecutive halfedges bound a common face.
func (m *Mesh) Outgoing(v uint32) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		start := m.verts[v].he
		h := start
		for range len(m.hes) {
			if !yield(h) {
				return
			}
			h = m.hes[m.hes[h].rev].next
			if h == start {
				return
			}
		}
	}
}

// Neighbors iterates the one-ring of v in the same order as Outgoing.
func (m *Mesh) Neighbors(v uint32) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		for h := range m.Outgoing(v) {
			if !yield(m.Dst(h)) {
				return
			}
		}
	}
}

// Degree returns the number of edges incident to v.
func (m *Mesh) Degree(v uint32) int {
	n := 0
	for range m.Outgoing(v) {
		n++
	}
	return n
}

// IsBoundaryVertex reports whether v lies on a boundary loop.
func (m *Mesh) IsBoundaryVertex(v uint32) bool {
	for h := range m.Outgoing(v) {
		if m.faces[m.hes[h].face].boundary {
			return true
		}
	}
	return false
}

// IsLocked reports whether v is a locked feature vertex.
func (m *Mesh) IsLocked(v uint32) bool { return m.verts[v].locked }

// Lock marks v as a feature vertex. Locks are never cleared.
func (m *Mesh) Lock(v uint32) { m.verts[v].locked = true }

// Face queries.

// FaceIsBoundary reports whether f is a boundary loop rather than a triangle.
func (m *Mesh) FaceIsBoundary(f uint32) bool { return m.faces[f].boundary }

// LockFace marks triangle f locked regardless of its vertices.
func (m *Mesh) LockFace(f uint32) { m.faces[f].locked = true }

// FaceIsLocked reports whether triangle f was locked explicitly or has a
// locked corner. Boundary faces are never locked; the edges on them are
// protected through their endpoints instead.
func (m *Mesh) FaceIsLocked(f uint32) bool {
	fc := &m.faces[f]
	if fc.boundary {
		return false
	}
	if fc.locked {
		return true
	}
	h := fc.he
	for range 3 {
		if m.verts[m.hes[h].src].locked {
			return true
		}
		h = m.hes[h].next
	}
	return false
}

// FaceHalfedge returns one halfedge of f.
func (m *Mesh) FaceHalfedge(f uint32) uint32 { return m.faces[f].he }

// FaceVertices returns the corners of triangle f in cycle order.
func (m *Mesh) FaceVertices(f uint32) [3]uint32 {
	h0 := m.faces[f].he
	h1 := m.hes[h0].next
	h2 := m.hes[h1].next
	return [3]uint32{m.hes[h0].src, m.hes[h1].src, m.hes[h2].src}
}

// Arena allocation.

func (m *Mesh) newVertex(p r3.Vec) uint32 {
	m.verts = append(m.verts, vertex{pos: p, he: None})
	m.numVerts++
	return uint32(len(m.verts) - 1)
}

func (m *Mesh) newHalfedge() uint32 {
	m.hes = append(m.hes, halfedge{src: None, next: None, rev: None, face: None})
	m.numHes++
	return uint32(len(m.hes) - 1)
}

func (m *Mesh) newFace(boundary bool) uint32 {
	m.faces = append(m.faces, face{he: None, boundary: boundary})
	if boundary {
		m.numLoops++
	} else {
		m.numFaces++
	}
	return uint32(len(m.faces) - 1)
}

func (m *Mesh) killVertex(v uint32) {
	m.verts[v].dead = true
	m.numVerts--
}

func (m *Mesh) killHalfedge(h uint32) {
	m.hes[h].dead = true
	m.numHes--
}

func (m *Mesh) killFace(f uint32) {
	m.faces[f].dead = true
	if m.faces[f].boundary {
		m.numLoops--
	} else {
		m.numFaces--
	}
}

// pair links a and b as reverse partners.
func (m *Mesh) pair(a, b uint32) {
	m.hes[a].rev = b
	m.hes[b].rev = a
}
