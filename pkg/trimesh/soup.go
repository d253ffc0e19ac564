package trimesh

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"isoremesh/pkg/geom"
)

// ErrInvalidSoup is returned when a soup references vertices that do not
// exist or holds non-finite coordinates.
var ErrInvalidSoup = errors.New("invalid triangle soup")

// Soup is an indexed triangle mesh: shared vertex positions plus triangles
// referencing them by index. It is the exchange format between file I/O,
// the half-edge mesh and the HTTP API.
type Soup struct {
	Positions []r3.Vec
	Triangles [][3]uint32

	// Locked is either nil or has one entry per position. Locked vertices
	// are feature vertices that remeshing must not remove or move.
	Locked []bool
}

// NumVertices returns the number of vertex positions.
func (s *Soup) NumVertices() int { return len(s.Positions) }

// NumTriangles returns the number of triangles.
func (s *Soup) NumTriangles() int { return len(s.Triangles) }

// Validate checks index ranges, coordinate finiteness and the Locked length.
func (s *Soup) Validate() error {
	n := uint32(len(s.Positions))
	for i, p := range s.Positions {
		if !finite(p.X) || !finite(p.Y) || !finite(p.Z) {
			return fmt.Errorf("%w: vertex %d has non-finite coordinates", ErrInvalidSoup, i)
		}
	}
	for i, tri := range s.Triangles {
		for _, idx := range tri {
			if idx >= n {
				return fmt.Errorf("%w: triangle %d references vertex %d of %d", ErrInvalidSoup, i, idx, n)
			}
		}
	}
	if s.Locked != nil && len(s.Locked) != len(s.Positions) {
		return fmt.Errorf("%w: %d lock flags for %d vertices", ErrInvalidSoup, len(s.Locked), len(s.Positions))
	}
	return nil
}

// DropUnreferenced removes vertices that no triangle references and
// renumbers the triangles. It returns the number of vertices removed.
func (s *Soup) DropUnreferenced() int {
	used := make([]bool, len(s.Positions))
	for _, tri := range s.Triangles {
		for _, idx := range tri {
			if int(idx) < len(used) {
				used[idx] = true
			}
		}
	}

	var keep []uint32
	for i, u := range used {
		if u {
			keep = append(keep, uint32(i))
		}
	}
	removed := len(s.Positions) - len(keep)
	if removed == 0 {
		return 0
	}

	*s = *FilterToComponent(s, keep)
	return removed
}

// Bounds returns the axis-aligned bounding box of all positions.
func (s *Soup) Bounds() (lo, hi r3.Vec) {
	return geom.Bounds(s.Positions)
}

// IsLocked reports whether vertex i carries a lock flag.
func (s *Soup) IsLocked(i int) bool {
	return s.Locked != nil && s.Locked[i]
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
