package trimesh

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestUnionFind(t *testing.T) {
	uf := NewUnionFind(5)

	// Initially all separate.
	for i := range uint32(5) {
		if uf.Find(i) != i {
			t.Errorf("Find(%d) = %d, want %d", i, uf.Find(i), i)
		}
	}

	uf.Union(0, 1)
	if uf.Find(0) != uf.Find(1) {
		t.Error("0 and 1 should be in same set")
	}

	uf.Union(2, 3)
	if uf.Find(2) != uf.Find(3) {
		t.Error("2 and 3 should be in same set")
	}

	if uf.Find(0) == uf.Find(2) {
		t.Error("0 and 2 should be in different sets")
	}

	// Union the two groups.
	if !uf.Union(1, 3) {
		t.Error("Union(1, 3) = false, want true for disjoint sets")
	}
	if uf.Find(0) != uf.Find(3) {
		t.Error("0 and 3 should now be in same set")
	}
	if uf.Union(0, 2) {
		t.Error("Union(0, 2) = true, want false for same set")
	}
	if got := uf.Size(2); got != 4 {
		t.Errorf("Size(2) = %d, want 4", got)
	}
}

// twoIslands returns a quad (4 vertices, 2 triangles), a lone triangle and
// one unreferenced vertex.
func twoIslands() *Soup {
	return &Soup{
		Positions: []r3.Vec{
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, // quad
			{X: 5, Y: 0}, {X: 6, Y: 0}, {X: 5, Y: 1}, // triangle
			{X: 9, Y: 9}, // isolated
		},
		Triangles: [][3]uint32{
			{0, 1, 2}, {0, 2, 3},
			{4, 5, 6},
		},
		Locked: []bool{false, true, false, false, false, false, false, true},
	}
}

func TestLargestComponent(t *testing.T) {
	s := twoIslands()
	verts := LargestComponent(s)

	if len(verts) != 4 {
		t.Fatalf("LargestComponent has %d vertices, want 4", len(verts))
	}
	for i, v := range verts {
		if v != uint32(i) {
			t.Errorf("verts[%d] = %d, want %d", i, v, i)
		}
	}
	if got := CountComponents(s); got != 2 {
		t.Errorf("CountComponents = %d, want 2", got)
	}
}

func TestFilterToComponent(t *testing.T) {
	s := twoIslands()
	filtered := FilterToComponent(s, LargestComponent(s))

	if filtered.NumVertices() != 4 {
		t.Fatalf("filtered NumVertices = %d, want 4", filtered.NumVertices())
	}
	if filtered.NumTriangles() != 2 {
		t.Fatalf("filtered NumTriangles = %d, want 2", filtered.NumTriangles())
	}
	if !filtered.IsLocked(1) || filtered.IsLocked(0) {
		t.Errorf("lock flags not carried over: %v", filtered.Locked)
	}
	if err := filtered.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestFilterToComponentEmpty(t *testing.T) {
	s := &Soup{}
	verts := LargestComponent(s)
	if verts != nil {
		t.Errorf("expected nil for empty soup, got %v", verts)
	}

	filtered := FilterToComponent(s, nil)
	if filtered.NumVertices() != 0 || filtered.NumTriangles() != 0 {
		t.Errorf("expected empty soup, got %d vertices, %d triangles", filtered.NumVertices(), filtered.NumTriangles())
	}
}

func TestDropUnreferenced(t *testing.T) {
	s := twoIslands()
	if removed := s.DropUnreferenced(); removed != 1 {
		t.Fatalf("DropUnreferenced removed %d, want 1", removed)
	}
	if s.NumVertices() != 7 || s.NumTriangles() != 3 {
		t.Errorf("got %d vertices, %d triangles, want 7, 3", s.NumVertices(), s.NumTriangles())
	}
	if s.Triangles[2] != [3]uint32{4, 5, 6} {
		t.Errorf("Triangles[2] = %v, want [4 5 6]", s.Triangles[2])
	}
	if removed := s.DropUnreferenced(); removed != 0 {
		t.Errorf("second DropUnreferenced removed %d, want 0", removed)
	}
}

func TestComponentsIgnoreOutOfRange(t *testing.T) {
	s := &Soup{
		Positions: []r3.Vec{{}, {X: 1}, {Y: 1}},
		Triangles: [][3]uint32{{0, 1, 2}, {0, 1, 7}},
	}
	if got := CountComponents(s); got != 1 {
		t.Errorf("CountComponents = %d, want 1", got)
	}
	if got := LargestComponent(s); len(got) != 3 {
		t.Errorf("LargestComponent = %v, want 3 vertices", got)
	}
	if removed := s.DropUnreferenced(); removed != 0 {
		t.Errorf("DropUnreferenced removed %d, want 0", removed)
	}
}

func TestValidate(t *testing.T) {
	s := twoIslands()
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	s.Triangles = append(s.Triangles, [3]uint32{0, 1, 42})
	if err := s.Validate(); err == nil {
		t.Error("expected error for out-of-range index")
	}

	s = twoIslands()
	s.Locked = s.Locked[:3]
	if err := s.Validate(); err == nil {
		t.Error("expected error for short Locked slice")
	}
}
