// Package remesh implements isotropic remeshing of triangle meshes.
//
// Each iteration splits long edges, collapses short ones, flips edges
// toward regular valence and then smooths the surface. Edge length targets
// are relative to the mean edge length of the input, measured once.
// Vertices on sharp creases are locked before the first iteration and are
// never removed, moved or re-triangulated around.
package remesh

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand/v2"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"isoremesh/pkg/halfedge"
	"isoremesh/pkg/smooth"
)

var (
	// ErrInvalidParams is returned when Options are out of range.
	ErrInvalidParams = errors.New("invalid remesh parameters")
	// ErrInvalidMesh is returned when the input mesh fails verification or
	// has no edges. The mesh has not been modified.
	ErrInvalidMesh = errors.New("invalid input mesh")
	// ErrCorruptMesh is returned when the mesh fails verification after a
	// split pass. The mesh is left as it was at that point and must not be
	// used further.
	ErrCorruptMesh = errors.New("mesh corrupted during remeshing")
)

// DefaultSeed seeds the shuffle when Options.Rand is nil.
const DefaultSeed uint64 = 0x5eed

// Smoother moves vertices after the topology passes of each iteration.
type Smoother interface {
	Smooth(m *halfedge.Mesh)
}

// Options configures Remesh. Lengths are multiples of the mean edge length
// of the input mesh.
type Options struct {
	ShortLength       float64 // edges at most this long are collapsed
	LongLength        float64 // edges at least this long are split
	KeepAngleLessThan float64 // radians; vertices with a sharper dihedral are locked
	Iterations        int
	Verbose           bool

	// Rand drives the edge shuffles. Nil means a PCG source seeded with
	// DefaultSeed.
	Rand *rand.Rand
	// Smoother defaults to smooth.DefaultTaubin().
	Smoother Smoother
	// Logger receives the verbose counters. Nil means log.Default().
	Logger *log.Logger
}

// DefaultOptions returns the usual settings: collapse below 0.8 and split
// above 1.333 times the mean edge length, lock creases sharper than 30
// degrees, five iterations.
func DefaultOptions() Options {
	return Options{
		ShortLength:       0.8,
		LongLength:        1.333,
		KeepAngleLessThan: math.Pi / 6,
		Iterations:        5,
	}
}

// Validate checks the parameter ranges.
func (o Options) Validate() error {
	for _, f := range []float64{o.ShortLength, o.LongLength, o.KeepAngleLessThan} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: lengths and angle must be finite", ErrInvalidParams)
		}
	}
	if o.ShortLength <= 0 {
		return fmt.Errorf("%w: short length %g must be positive", ErrInvalidParams, o.ShortLength)
	}
	if o.ShortLength >= o.LongLength {
		return fmt.Errorf("%w: short length %g must be below long length %g", ErrInvalidParams, o.ShortLength, o.LongLength)
	}
	if o.Iterations < 0 {
		return fmt.Errorf("%w: iterations %d is negative", ErrInvalidParams, o.Iterations)
	}
	if o.KeepAngleLessThan < 0 || o.KeepAngleLessThan > math.Pi {
		return fmt.Errorf("%w: keep angle %g outside [0, pi]", ErrInvalidParams, o.KeepAngleLessThan)
	}
	return nil
}

// IterationReport describes one iteration.
type IterationReport struct {
	Split    PassStats
	Collapse PassStats
	Flip     PassStats
	Vertices int // after smoothing
	Faces    int
}

// Report summarizes a Remesh call.
type Report struct {
	Stats      EdgeStats
	PreLocked  int // vertices already locked by the caller
	Locked     int // vertices locked by feature detection
	Iterations []IterationReport
}

type state int

const (
	stateInit state = iota
	stateIterating
	stateDone
)

func (s state) String() string {
	switch s {
	case stateInit:
		return "init"
	case stateIterating:
		return "iterating"
	case stateDone:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// editHooks observe individual edits.
type editHooks struct {
	// collapsed receives the endpoints and apexes of a collapsed edge
	// (see edgeQuad) and the former ring of the removed vertex.
	collapsed func(quad [4]uint32, ring []uint32)
	// flipped receives v0..v3 of a flipped edge as they were before the flip.
	flipped func(quad [4]uint32)
}

// remesher holds the per-call state shared by the passes.
type remesher struct {
	m      *halfedge.Mesh
	rng    *rand.Rand
	short2 float64
	long2  float64
	hooks  editHooks
	logger *log.Logger

	order []uint32 // halfedge snapshot, reused across passes
	ring  []uint32
}

// Remesh rewrites m in place so that edge lengths approach the requested
// range around the mean input edge length and vertex valences approach 6
// (4 on the boundary).
//
// Invalid options or an invalid mesh are reported before anything is
// modified. Vertex handles stay valid for the whole call: removed elements
// are only marked dead. Call m.Compact afterwards to reclaim them.
//
// ctx only parents the trace spans; a started call runs to completion.
func Remesh(ctx context.Context, m *halfedge.Mesh, opts Options) (*Report, error) {
	return run(ctx, m, opts, editHooks{})
}

func run(ctx context.Context, m *halfedge.Mesh, opts Options, hooks editHooks) (*Report, error) {
	tracer := otel.Tracer("isoremesh/remesh")
	ctx, span := tracer.Start(ctx, "remesh.Remesh",
		trace.WithAttributes(
			attribute.Int("mesh.vertices", m.NumVertices()),
			attribute.Int("mesh.faces", m.NumFaces()),
			attribute.Int("remesh.iterations", opts.Iterations),
		))
	defer span.End()

	st := stateInit
	fail := func(err error) (*Report, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, st.String())
		return nil, err
	}

	if err := opts.Validate(); err != nil {
		return fail(err)
	}
	if err := m.Verify(); err != nil {
		return fail(fmt.Errorf("%w: %w", ErrInvalidMesh, err))
	}
	if m.NumHalfedges() == 0 {
		return fail(fmt.Errorf("%w: mesh has no edges", ErrInvalidMesh))
	}

	r := &remesher{m: m, rng: opts.Rand, hooks: hooks, logger: opts.Logger}
	if r.rng == nil {
		r.rng = rand.New(rand.NewPCG(DefaultSeed, DefaultSeed))
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	smoother := opts.Smoother
	if smoother == nil {
		smoother = smooth.DefaultTaubin()
	}

	report := &Report{Stats: ComputeEdgeStats(m)}
	for v := range uint32(m.VertexCap()) {
		if m.VertexAlive(v) && m.IsLocked(v) {
			report.PreLocked++
		}
	}
	report.Locked = LockFeatures(m, opts.KeepAngleLessThan)
	mean := report.Stats.Mean
	r.short2 = mean * mean * opts.ShortLength * opts.ShortLength
	r.long2 = mean * mean * opts.LongLength * opts.LongLength
	span.SetAttributes(
		attribute.Float64("edges.mean", mean),
		attribute.Int("vertices.locked", report.Locked),
	)
	if opts.Verbose {
		r.logger.Printf("Mean edge length %.6g (variance %.6g), %d vertices locked",
			mean, report.Stats.Variance, report.Locked)
	}

	st = stateIterating
	for k := range opts.Iterations {
		_, iterSpan := tracer.Start(ctx, "remesh.iteration",
			trace.WithAttributes(attribute.Int("iteration", k+1)))
		if opts.Verbose {
			r.logCounts(fmt.Sprintf("Iteration %d/%d", k+1, opts.Iterations))
		}

		var it IterationReport
		it.Split = r.splitPass()
		if opts.Verbose {
			r.logCounts("After split")
		}
		if err := m.Verify(); err != nil {
			err = fmt.Errorf("%w: iteration %d: %w", ErrCorruptMesh, k+1, err)
			iterSpan.RecordError(err)
			iterSpan.End()
			return fail(err)
		}

		it.Collapse = r.collapsePass()
		if opts.Verbose {
			r.logCounts("After collapse")
		}

		it.Flip = r.flipPass()
		if opts.Verbose {
			r.logCounts("After flip")
		}

		smoother.Smooth(m)

		it.Vertices, it.Faces = m.NumVertices(), m.NumFaces()
		report.Iterations = append(report.Iterations, it)
		iterSpan.SetAttributes(
			attribute.Int("splits", it.Split.Applied),
			attribute.Int("collapses", it.Collapse.Applied),
			attribute.Int("flips", it.Flip.Applied),
			attribute.Int("mesh.vertices", it.Vertices),
			attribute.Int("mesh.faces", it.Faces),
		)
		iterSpan.End()
	}

	st = stateDone
	span.SetAttributes(
		attribute.Int("mesh.vertices.out", m.NumVertices()),
		attribute.Int("mesh.faces.out", m.NumFaces()),
		attribute.String("remesh.state", st.String()),
	)
	return report, nil
}

func (r *remesher) logCounts(stage string) {
	r.logger.Printf("%s: %d vertices, %d faces", stage, r.m.NumVertices(), r.m.NumFaces())
}
