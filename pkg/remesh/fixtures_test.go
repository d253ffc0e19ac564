package remesh

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"isoremesh/pkg/halfedge"
	"isoremesh/pkg/trimesh"
)

// gridSoup is an nx x ny grid of dx x dy cells, each cut along the diagonal
// from its lower-left to its upper-right corner.
func gridSoup(nx, ny int, dx, dy float64) *trimesh.Soup {
	s := &trimesh.Soup{}
	for y := 0; y <= ny; y++ {
		for x := 0; x <= nx; x++ {
			s.Positions = append(s.Positions, r3.Vec{X: float64(x) * dx, Y: float64(y) * dy})
		}
	}
	idx := func(x, y int) uint32 { return uint32(y*(nx+1) + x) }
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			s.Triangles = append(s.Triangles,
				[3]uint32{idx(x, y), idx(x+1, y), idx(x+1, y+1)},
				[3]uint32{idx(x, y), idx(x+1, y+1), idx(x, y+1)},
			)
		}
	}
	return s
}

// cubeSoup is the surface of the unit cube; vertex i sits at
// (i&1, i>>1&1, i>>2&1).
func cubeSoup() *trimesh.Soup {
	s := &trimesh.Soup{}
	for i := range 8 {
		s.Positions = append(s.Positions, r3.Vec{X: float64(i & 1), Y: float64(i >> 1 & 1), Z: float64(i >> 2 & 1)})
	}
	s.Triangles = [][3]uint32{
		{0, 2, 3}, {0, 3, 1}, // z = 0
		{4, 5, 7}, {4, 7, 6}, // z = 1
		{0, 1, 5}, {0, 5, 4}, // y = 0
		{2, 6, 7}, {2, 7, 3}, // y = 1
		{0, 4, 6}, {0, 6, 2}, // x = 0
		{1, 3, 7}, {1, 7, 5}, // x = 1
	}
	return s
}

// wavySoup is a grid with a gentle height field, so that smoothing and
// flips have something to do without creating sharp creases.
func wavySoup(n int) *trimesh.Soup {
	s := gridSoup(n, n, 1, 1)
	for i, p := range s.Positions {
		s.Positions[i].Z = 0.15 * math.Sin(p.X*0.9) * math.Cos(p.Y*0.7)
		s.Positions[i].X += 0.2 * math.Sin(p.Y*1.3)
	}
	return s
}

func buildMesh(t *testing.T, s *trimesh.Soup) *halfedge.Mesh {
	t.Helper()
	m, err := halfedge.FromSoup(s)
	if err != nil {
		t.Fatalf("FromSoup: %v", err)
	}
	return m
}

// gridIndex returns the vertex index of (x, y) in a grid with nx columns of
// cells.
func gridIndex(nx, x, y int) uint32 {
	return uint32(y*(nx+1) + x)
}
