package trimesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// PinIndex answers nearest-vertex queries. It is used to turn user-supplied
// pin coordinates into the vertex indices that get locked before remeshing.
type PinIndex struct {
	tree *kdtree.Tree
	n    int
}

// NewPinIndex builds a k-d tree over the given positions.
func NewPinIndex(positions []r3.Vec) *PinIndex {
	pts := make(pinPoints, len(positions))
	for i, p := range positions {
		pts[i] = pinPoint{pos: p, idx: i}
	}
	if len(pts) == 0 {
		return &PinIndex{}
	}
	return &PinIndex{tree: kdtree.New(pts, false), n: len(pts)}
}

// Nearest returns the index of the position closest to p and the squared
// distance to it. It returns -1 and +Inf for an empty index.
func (pi *PinIndex) Nearest(p r3.Vec) (int, float64) {
	if pi.n == 0 {
		return -1, math.Inf(1)
	}
	c, d := pi.tree.Nearest(pinPoint{pos: p, idx: -1})
	if c == nil {
		return -1, math.Inf(1)
	}
	return c.(pinPoint).idx, d
}

// ResolvePins maps each pin to its nearest vertex, skipping pins farther
// than maxDist (maxDist <= 0 disables the limit). Duplicates are removed.
func ResolvePins(s *Soup, pins []r3.Vec, maxDist float64) []uint32 {
	if len(pins) == 0 {
		return nil
	}
	idx := NewPinIndex(s.Positions)
	seen := make(map[int]bool, len(pins))
	var out []uint32
	for _, p := range pins {
		i, d2 := idx.Nearest(p)
		if i < 0 || seen[i] {
			continue
		}
		if maxDist > 0 && d2 > maxDist*maxDist {
			continue
		}
		seen[i] = true
		out = append(out, uint32(i))
	}
	return out
}

// pinPoint is a position tagged with its vertex index.
type pinPoint struct {
	pos r3.Vec
	idx int
}

func (p pinPoint) coord(d kdtree.Dim) float64 {
	switch d {
	case 0:
		return p.pos.X
	case 1:
		return p.pos.Y
	default:
		return p.pos.Z
	}
}

func (p pinPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.coord(d) - c.(pinPoint).coord(d)
}

func (p pinPoint) Dims() int { return 3 }

func (p pinPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(pinPoint).pos
	return r3.Norm2(r3.Sub(p.pos, q))
}

// pinPoints implements kdtree.Interface.
type pinPoints []pinPoint

func (p pinPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p pinPoints) Len() int                              { return len(p) }
func (p pinPoints) Pivot(d kdtree.Dim) int                { return pinPlane{pinPoints: p, Dim: d}.Pivot() }
func (p pinPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// pinPlane sorts pinPoints along one dimension for median partitioning.
type pinPlane struct {
	kdtree.Dim
	pinPoints
}

func (p pinPlane) Less(i, j int) bool {
	return p.pinPoints[i].coord(p.Dim) < p.pinPoints[j].coord(p.Dim)
}
func (p pinPlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p pinPlane) Slice(start, end int) kdtree.SortSlicer {
	p.pinPoints = p.pinPoints[start:end]
	return p
}
func (p pinPlane) Swap(i, j int) {
	p.pinPoints[i], p.pinPoints[j] = p.pinPoints[j], p.pinPoints[i]
}
