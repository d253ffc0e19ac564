package trimesh_test

import (
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"isoremesh/pkg/trimesh"
)

func buildTestSoup(t *testing.T) *trimesh.Soup {
	t.Helper()
	return &trimesh.Soup{
		Positions: []r3.Vec{
			{X: 0, Y: 0, Z: 0},
			{X: 1.5, Y: 0, Z: 0.25},
			{X: 1, Y: 1, Z: -0.5},
			{X: 0, Y: 1, Z: 1e-9},
		},
		Triangles: [][3]uint32{{0, 1, 2}, {0, 2, 3}},
		Locked:    []bool{false, true, false, true},
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	original := buildTestSoup(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "test.irm")

	if err := trimesh.WriteBinary(path, original); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}

	loaded, err := trimesh.ReadBinary(path)
	if err != nil {
		t.Fatalf("ReadBinary: %v", err)
	}

	if loaded.NumVertices() != original.NumVertices() {
		t.Fatalf("NumVertices: got %d, want %d", loaded.NumVertices(), original.NumVertices())
	}
	for i := range original.Positions {
		if loaded.Positions[i] != original.Positions[i] {
			t.Errorf("Positions[%d]: got %v, want %v", i, loaded.Positions[i], original.Positions[i])
		}
		if loaded.IsLocked(i) != original.IsLocked(i) {
			t.Errorf("Locked[%d]: got %v, want %v", i, loaded.IsLocked(i), original.IsLocked(i))
		}
	}

	if len(loaded.Triangles) != len(original.Triangles) {
		t.Fatalf("Triangles length: got %d, want %d", len(loaded.Triangles), len(original.Triangles))
	}
	for i := range original.Triangles {
		if loaded.Triangles[i] != original.Triangles[i] {
			t.Errorf("Triangles[%d]: got %v, want %v", i, loaded.Triangles[i], original.Triangles[i])
		}
	}
}

func TestBinaryWithoutLocks(t *testing.T) {
	original := buildTestSoup(t)
	original.Locked = nil

	path := filepath.Join(t.TempDir(), "nolocks.irm")
	if err := trimesh.WriteBinary(path, original); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}
	loaded, err := trimesh.ReadBinary(path)
	if err != nil {
		t.Fatalf("ReadBinary: %v", err)
	}
	if loaded.Locked != nil {
		t.Errorf("Locked = %v, want nil", loaded.Locked)
	}
}

func TestBinaryInvalidMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.irm")
	os.WriteFile(path, []byte("NOT_ISOREMSH_HEADER_BLAH_BLAH_BLAH_MORE_DATA"), 0644)

	_, err := trimesh.ReadBinary(path)
	if err == nil {
		t.Fatal("expected error for invalid magic bytes")
	}
}

func TestBinaryTruncatedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "truncated.irm")
	os.WriteFile(path, []byte("ISOREMSH"), 0644)

	_, err := trimesh.ReadBinary(path)
	if err == nil {
		t.Fatal("expected error for truncated file")
	}
}

func TestBinaryCorruptedPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.irm")
	if err := trimesh.WriteBinary(path, buildTestSoup(t)); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// Flip a bit inside the first position, past the 24-byte header.
	data[30] ^= 0x01
	os.WriteFile(path, data, 0644)

	if _, err := trimesh.ReadBinary(path); err == nil {
		t.Fatal("expected CRC32 mismatch error")
	}
}
