package remesh

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestLockFeaturesFlat(t *testing.T) {
	m := buildMesh(t, gridSoup(5, 5, 1, 1))
	if got := LockFeatures(m, math.Pi); got != 0 {
		t.Errorf("LockFeatures(flat, pi) = %d, want 0", got)
	}
}

func TestLockFeaturesTiltedPlane(t *testing.T) {
	s := gridSoup(5, 5, 0.7, 1.3)
	sin, cos := math.Sincos(0.4)
	for i, p := range s.Positions {
		s.Positions[i] = r3.Vec{X: p.X, Y: p.Y * cos, Z: p.Y * sin}
	}
	m := buildMesh(t, s)
	if got := LockFeatures(m, math.Pi-1e-6); got != 0 {
		t.Errorf("LockFeatures(tilted plane) = %d, want 0", got)
	}
}

func TestLockFeaturesCube(t *testing.T) {
	tests := []struct {
		name      string
		keepAngle float64
		want      int
	}{
		{"sharper than 100 degrees", 100 * math.Pi / 180, 8},
		{"sharper than 80 degrees", 80 * math.Pi / 180, 0},
		{"right angle is not below itself", math.Pi / 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := buildMesh(t, cubeSoup())
			if got := LockFeatures(m, tt.keepAngle); got != tt.want {
				t.Fatalf("LockFeatures = %d, want %d", got, tt.want)
			}
			for v := range uint32(8) {
				if m.IsLocked(v) != (tt.want == 8) {
					t.Errorf("IsLocked(%d) = %v", v, m.IsLocked(v))
				}
			}
		})
	}
}

func TestLockFeaturesSkipsLocked(t *testing.T) {
	m := buildMesh(t, cubeSoup())
	m.Lock(0)
	if got := LockFeatures(m, 100*math.Pi/180); got != 7 {
		t.Errorf("LockFeatures = %d, want 7", got)
	}
}

func TestLockFeaturesCrease(t *testing.T) {
	// Two 2x2 grids folded at x = 2 by 90 degrees.
	s := gridSoup(4, 2, 1, 1)
	for i, p := range s.Positions {
		if p.X > 2 {
			s.Positions[i] = r3.Vec{X: 2, Y: p.Y, Z: p.X - 2}
		}
	}
	m := buildMesh(t, s)

	if got := LockFeatures(m, math.Pi/2+0.1); got != 3 {
		t.Fatalf("LockFeatures = %d, want 3", got)
	}
	for y := range 3 {
		for x := range 5 {
			v := gridIndex(4, x, y)
			if want := x == 2; m.IsLocked(v) != want {
				t.Errorf("IsLocked(%d,%d) = %v, want %v", x, y, m.IsLocked(v), want)
			}
		}
	}
}
