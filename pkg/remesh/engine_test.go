package remesh

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"isoremesh/pkg/halfedge"
	"isoremesh/pkg/trimesh"
)

func TestEngineRemesh(t *testing.T) {
	in := wavySoup(6)
	orig := slices.Clone(in.Positions)

	p := ParamsFromOptions(DefaultOptions())
	p.Seed = 3
	out, report, err := NewEngine().Remesh(context.Background(), in, p)
	if err != nil {
		t.Fatalf("Remesh: %v", err)
	}
	if len(report.Iterations) != 5 {
		t.Errorf("len(Iterations) = %d, want 5", len(report.Iterations))
	}
	if !reflect.DeepEqual(in.Positions, orig) {
		t.Error("input soup modified")
	}
	if len(out.Locked) != len(out.Positions) {
		t.Errorf("len(Locked) = %d, want %d", len(out.Locked), len(out.Positions))
	}

	m, err := halfedge.FromSoup(out)
	if err != nil {
		t.Fatalf("output is not a valid mesh: %v", err)
	}
	if err := m.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestEnginePins(t *testing.T) {
	in := gridSoup(6, 6, 1, 1)
	pin := r3.Vec{X: 3, Y: 3}

	p := ParamsFromOptions(DefaultOptions())
	p.Pins = []r3.Vec{{X: 3.1, Y: 2.95}, {X: 50, Y: 50}}
	p.PinTolerance = 0.5
	out, report, err := NewEngine().Remesh(context.Background(), in, p)
	if err != nil {
		t.Fatalf("Remesh: %v", err)
	}
	if report.PreLocked != 1 {
		t.Errorf("PreLocked = %d, want 1", report.PreLocked)
	}

	i := slices.Index(out.Positions, pin)
	if i < 0 {
		t.Fatalf("pinned vertex %v missing from output", pin)
	}
	if !out.Locked[i] {
		t.Errorf("pinned vertex %d not locked in output", i)
	}
}

func TestEngineLargestComponent(t *testing.T) {
	in := gridSoup(4, 4, 1, 1)
	base := uint32(len(in.Positions))
	in.Positions = append(in.Positions, r3.Vec{X: 100}, r3.Vec{X: 101}, r3.Vec{X: 100, Y: 1})
	in.Triangles = append(in.Triangles, [3]uint32{base, base + 1, base + 2})

	tests := []struct {
		name    string
		largest bool
		wantFar bool
	}{
		{"keep all", false, true},
		{"largest only", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParamsFromOptions(DefaultOptions())
			p.LargestComponent = tt.largest
			out, _, err := NewEngine().Remesh(context.Background(), in, p)
			if err != nil {
				t.Fatalf("Remesh: %v", err)
			}
			_, hi := out.Bounds()
			if far := hi.X > 50; far != tt.wantFar {
				t.Errorf("island present = %v, want %v", far, tt.wantFar)
			}
		})
	}
}

func TestEngineErrors(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	nonManifold := &trimesh.Soup{
		Positions: []r3.Vec{{}, {X: 1}, {Y: 1}, {Y: -1}, {Z: 1}},
		Triangles: [][3]uint32{{0, 1, 2}, {1, 0, 3}, {0, 1, 4}},
	}
	badParams := ParamsFromOptions(DefaultOptions())
	badParams.ShortLength = 0
	outOfRange := &trimesh.Soup{
		Positions: []r3.Vec{{}, {X: 1}, {Y: 1}},
		Triangles: [][3]uint32{{0, 1, 7}},
	}
	badLocks := gridSoup(2, 2, 1, 1)
	badLocks.Locked = []bool{true}
	largest := ParamsFromOptions(DefaultOptions())
	largest.LargestComponent = true

	tests := []struct {
		name    string
		ctx     context.Context
		soup    *trimesh.Soup
		params  Params
		wantErr error
	}{
		{"cancelled", cancelled, gridSoup(2, 2, 1, 1), ParamsFromOptions(DefaultOptions()), context.Canceled},
		{"non-manifold", context.Background(), nonManifold, ParamsFromOptions(DefaultOptions()), ErrInvalidMesh},
		{"empty", context.Background(), &trimesh.Soup{}, ParamsFromOptions(DefaultOptions()), ErrInvalidMesh},
		{"face index out of range", context.Background(), outOfRange, ParamsFromOptions(DefaultOptions()), ErrInvalidMesh},
		{"face index out of range largest", context.Background(), outOfRange, largest, ErrInvalidMesh},
		{"lock flags length", context.Background(), badLocks, largest, ErrInvalidMesh},
		{"bad params", context.Background(), gridSoup(2, 2, 1, 1), badParams, ErrInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewEngine().Remesh(tt.ctx, tt.soup, tt.params)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Remesh() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
