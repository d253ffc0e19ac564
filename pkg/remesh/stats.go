package remesh

import (
	"sync"

	"isoremesh/pkg/halfedge"
)

const (
	chunkSize = 1 << 14
	// Scans over fewer handles than this stay on the calling goroutine.
	parallelThreshold = 4 * chunkSize
)

// EdgeStats summarizes halfedge lengths.
type EdgeStats struct {
	Count    int     // live halfedges measured
	Mean     float64 // mean length
	Variance float64 // diagnostic only
}

// ComputeEdgeStats measures every live halfedge once. Each edge is seen
// twice, once per direction, which leaves the mean unchanged. The result is
// NaN for a mesh without halfedges.
func ComputeEdgeStats(m *halfedge.Mesh) EdgeStats {
	type partial struct {
		sum, sumSq float64
		n          int
	}
	n := m.HalfedgeCap()
	parts := make([]partial, numChunks(n))
	forEachChunk(n, func(c, lo, hi int) {
		var p partial
		for h := lo; h < hi; h++ {
			if !m.HalfedgeAlive(uint32(h)) {
				continue
			}
			l := m.Length(uint32(h))
			p.sum += l
			p.sumSq += l * l
			p.n++
		}
		parts[c] = p
	})

	// Combine in chunk order so the sums do not depend on scheduling.
	var total partial
	for _, p := range parts {
		total.sum += p.sum
		total.sumSq += p.sumSq
		total.n += p.n
	}
	count := float64(total.n)
	mean := total.sum / count
	return EdgeStats{
		Count:    total.n,
		Mean:     mean,
		Variance: total.sumSq/count - mean*mean,
	}
}

func numChunks(n int) int {
	return (n + chunkSize - 1) / chunkSize
}

// forEachChunk calls fn for consecutive ranges [lo, hi) covering [0, n).
// Large ranges are processed concurrently, one goroutine per chunk; fn must
// only write to state owned by its chunk.
func forEachChunk(n int, fn func(chunk, lo, hi int)) {
	k := numChunks(n)
	if n < parallelThreshold {
		for c := range k {
			fn(c, c*chunkSize, min((c+1)*chunkSize, n))
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(k)
	for c := range k {
		go func() {
			defer wg.Done()
			fn(c, c*chunkSize, min((c+1)*chunkSize, n))
		}()
	}
	wg.Wait()
}
