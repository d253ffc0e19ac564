package trimesh

import "gonum.org/v1/gonum/spatial/r3"

// UnionFind implements a disjoint-set data structure with path compression
// and union by rank.
type UnionFind struct {
	parent []uint32
	rank   []byte // byte is sufficient — max rank ~30 for realistic meshes
	size   []uint32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n uint32) *UnionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := range n {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return false
	}

	// Union by rank.
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// Size returns the number of elements in the set containing x.
func (uf *UnionFind) Size(x uint32) uint32 {
	return uf.size[uf.Find(x)]
}

// LargestComponent returns the vertex indices belonging to the largest
// connected component, where two vertices are connected when they share a
// triangle. Unreferenced vertices form singleton components.
func LargestComponent(s *Soup) []uint32 {
	n := uint32(len(s.Positions))
	if n == 0 {
		return nil
	}

	uf := NewUnionFind(n)
	for _, tri := range s.Triangles {
		if tri[0] >= n || tri[1] >= n || tri[2] >= n {
			continue
		}
		uf.Union(tri[0], tri[1])
		uf.Union(tri[1], tri[2])
	}

	// Find the representative with the largest size.
	bestRoot := uint32(0)
	bestSize := uint32(0)
	for i := range n {
		root := uf.Find(i)
		if uf.size[root] > bestSize {
			bestRoot = root
			bestSize = uf.size[root]
		}
	}

	verts := make([]uint32, 0, bestSize)
	for i := range n {
		if uf.Find(i) == bestRoot {
			verts = append(verts, i)
		}
	}
	return verts
}

// CountComponents returns the number of connected components that contain
// at least one triangle.
func CountComponents(s *Soup) int {
	n := uint32(len(s.Positions))
	if n == 0 {
		return 0
	}
	uf := NewUnionFind(n)
	for _, tri := range s.Triangles {
		if tri[0] >= n || tri[1] >= n || tri[2] >= n {
			continue
		}
		uf.Union(tri[0], tri[1])
		uf.Union(tri[1], tri[2])
	}
	roots := make(map[uint32]struct{})
	for _, tri := range s.Triangles {
		if tri[0] < n {
			roots[uf.Find(tri[0])] = struct{}{}
		}
	}
	return len(roots)
}

// FilterToComponent creates a new soup containing only the given vertices
// (in the given order) and the triangles whose three corners are all kept.
func FilterToComponent(s *Soup, verts []uint32) *Soup {
	if len(verts) == 0 {
		return &Soup{}
	}

	// Build old→new vertex index mapping.
	oldToNew := make(map[uint32]uint32, len(verts))
	for newIdx, oldIdx := range verts {
		oldToNew[oldIdx] = uint32(newIdx)
	}

	out := &Soup{Positions: make([]r3.Vec, len(verts))}
	for newIdx, oldIdx := range verts {
		out.Positions[newIdx] = s.Positions[oldIdx]
	}
	if s.Locked != nil {
		out.Locked = make([]bool, len(verts))
		for newIdx, oldIdx := range verts {
			out.Locked[newIdx] = s.Locked[oldIdx]
		}
	}

	for _, tri := range s.Triangles {
		a, okA := oldToNew[tri[0]]
		b, okB := oldToNew[tri[1]]
		c, okC := oldToNew[tri[2]]
		if okA && okB && okC {
			out.Triangles = append(out.Triangles, [3]uint32{a, b, c})
		}
	}
	return out
}
