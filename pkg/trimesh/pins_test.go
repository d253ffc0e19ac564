package trimesh

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestPinIndexNearest(t *testing.T) {
	var positions []r3.Vec
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			positions = append(positions, r3.Vec{X: float64(x), Y: float64(y), Z: float64(x * y % 3)})
		}
	}
	idx := NewPinIndex(positions)

	queries := []r3.Vec{
		{X: 0.1, Y: 0.1},
		{X: 4.4, Y: 7.6, Z: 1},
		{X: 9.9, Y: -3},
		{X: 5, Y: 5, Z: 1},
	}
	for _, q := range queries {
		// Brute force reference.
		want, wantD := -1, math.Inf(1)
		for i, p := range positions {
			if d := r3.Norm2(r3.Sub(p, q)); d < wantD {
				want, wantD = i, d
			}
		}
		got, gotD := idx.Nearest(q)
		if gotD != wantD {
			t.Errorf("Nearest(%v) distance = %v, want %v", q, gotD, wantD)
		}
		if got != want && r3.Norm2(r3.Sub(positions[got], q)) != wantD {
			t.Errorf("Nearest(%v) = %d, want %d", q, got, want)
		}
	}
}

func TestPinIndexEmpty(t *testing.T) {
	idx := NewPinIndex(nil)
	i, d := idx.Nearest(r3.Vec{})
	if i != -1 || !math.IsInf(d, 1) {
		t.Errorf("Nearest on empty index = (%d, %v), want (-1, +Inf)", i, d)
	}
}

func TestResolvePins(t *testing.T) {
	s := quadSoup()
	pins := []r3.Vec{
		{X: 0.01, Y: 0.02},    // vertex 0
		{X: 0.99, Y: 1.01},    // vertex 2
		{X: 0, Y: 0},          // vertex 0 again
		{X: 50, Y: 50, Z: 50}, // too far
	}
	got := ResolvePins(s, pins, 0.5)
	want := []uint32{0, 2}
	if len(got) != len(want) {
		t.Fatalf("ResolvePins = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ResolvePins[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	if got := ResolvePins(s, pins[3:], 0); len(got) != 1 || got[0] != 2 {
		t.Errorf("ResolvePins without limit = %v, want [2]", got)
	}
}
