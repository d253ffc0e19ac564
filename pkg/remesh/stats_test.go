package remesh

import (
	"math"
	"testing"

	"isoremesh/pkg/trimesh"
)

func TestComputeEdgeStatsSquare(t *testing.T) {
	m := buildMesh(t, gridSoup(1, 1, 1, 1))

	st := ComputeEdgeStats(m)
	if st.Count != 10 {
		t.Fatalf("Count = %d, want 10", st.Count)
	}
	wantMean := (8 + 2*math.Sqrt2) / 10
	if math.Abs(st.Mean-wantMean) > 1e-12 {
		t.Errorf("Mean = %v, want %v", st.Mean, wantMean)
	}
	wantVar := 12.0/10 - wantMean*wantMean
	if math.Abs(st.Variance-wantVar) > 1e-12 {
		t.Errorf("Variance = %v, want %v", st.Variance, wantVar)
	}
}

func TestComputeEdgeStatsEmpty(t *testing.T) {
	m := buildMesh(t, &trimesh.Soup{})
	st := ComputeEdgeStats(m)
	if st.Count != 0 || !math.IsNaN(st.Mean) {
		t.Errorf("stats = %+v, want zero count and NaN mean", st)
	}
}

func TestComputeEdgeStatsParallel(t *testing.T) {
	// 120x120 cells give 86880 halfedges, enough for the concurrent path.
	m := buildMesh(t, gridSoup(120, 120, 1, 1))
	if m.HalfedgeCap() < parallelThreshold {
		t.Fatalf("HalfedgeCap = %d, want at least %d", m.HalfedgeCap(), parallelThreshold)
	}

	st := ComputeEdgeStats(m)
	if st.Count != 86880 {
		t.Fatalf("Count = %d, want 86880", st.Count)
	}
	// 2*120*121 unit edges and 120*120 diagonals.
	wantMean := (29040 + 14400*math.Sqrt2) / 43440
	if math.Abs(st.Mean-wantMean) > 1e-9 {
		t.Errorf("Mean = %v, want %v", st.Mean, wantMean)
	}

	for range 5 {
		if again := ComputeEdgeStats(m); again != st {
			t.Fatalf("ComputeEdgeStats not deterministic: %+v vs %+v", again, st)
		}
	}
}

func TestForEachChunkCoversRange(t *testing.T) {
	tests := []struct {
		name string
		n    int
	}{
		{"empty", 0},
		{"single", 1},
		{"sequential", chunkSize + 3},
		{"parallel", parallelThreshold + 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen := make([]int, tt.n)
			chunks := make([]int, numChunks(tt.n))
			forEachChunk(tt.n, func(c, lo, hi int) {
				chunks[c]++
				for i := lo; i < hi; i++ {
					seen[i]++
				}
			})
			for i, s := range seen {
				if s != 1 {
					t.Fatalf("index %d visited %d times", i, s)
				}
			}
			for c, k := range chunks {
				if k != 1 {
					t.Fatalf("chunk %d called %d times", c, k)
				}
			}
		})
	}
}
