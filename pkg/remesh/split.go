package remesh

// PassStats counts the work done by one topology pass.
type PassStats struct {
	Examined int // live halfedges that reached the length test
	Applied  int // edits performed
	Rejected int // edits that qualified but were refused by a guard
}

// shuffledHalfedges snapshots the live halfedge handles in random order.
// Handles created while the snapshot is consumed are not in it.
func (r *remesher) shuffledHalfedges() []uint32 {
	r.order = r.order[:0]
	for h := range uint32(r.m.HalfedgeCap()) {
		if r.m.HalfedgeAlive(h) {
			r.order = append(r.order, h)
		}
	}
	r.rng.Shuffle(len(r.order), func(i, j int) {
		r.order[i], r.order[j] = r.order[j], r.order[i]
	})
	return r.order
}

// splitPass splits every snapshot halfedge at least as long as the long
// threshold. Locks do not prevent splitting. Both directions of an edge are
// in the snapshot; the second is measured again when its turn comes.
func (r *remesher) splitPass() PassStats {
	var ps PassStats
	for _, h := range r.shuffledHalfedges() {
		if !r.m.HalfedgeAlive(h) {
			continue
		}
		ps.Examined++
		if r.m.Length2(h) >= r.long2 {
			r.m.SplitEdge(h)
			ps.Applied++
		}
	}
	return ps
}
