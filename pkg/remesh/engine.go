package remesh

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"

	"isoremesh/pkg/halfedge"
	"isoremesh/pkg/trimesh"
)

// Params are the per-request settings of Engine.Remesh.
type Params struct {
	ShortLength       float64
	LongLength        float64
	KeepAngleLessThan float64 // radians
	Iterations        int
	Seed              uint64
	Verbose           bool

	// Pins are locked before remeshing: each is resolved to its nearest
	// vertex, ignoring pins farther than PinTolerance (0 means no limit).
	Pins         []r3.Vec
	PinTolerance float64

	// LargestComponent drops every connected piece but the largest.
	LargestComponent bool
}

// ParamsFromOptions copies the shared settings of o into Params.
func ParamsFromOptions(o Options) Params {
	return Params{
		ShortLength:       o.ShortLength,
		LongLength:        o.LongLength,
		KeepAngleLessThan: o.KeepAngleLessThan,
		Iterations:        o.Iterations,
		Verbose:           o.Verbose,
	}
}

// Engine remeshes indexed triangle soups. It is safe for concurrent use as
// long as its Smoother is.
type Engine struct {
	Smoother Smoother    // nil means smooth.DefaultTaubin()
	Logger   *log.Logger // nil means log.Default()
}

// NewEngine creates an engine with the default smoother and logger.
func NewEngine() *Engine {
	return &Engine{}
}

// Remesh builds a half-edge mesh from soup, applies p and returns the
// result as a new, densely indexed soup. The input soup is not modified.
// Unreferenced vertices are dropped before building the mesh.
func (e *Engine) Remesh(ctx context.Context, soup *trimesh.Soup, p Params) (*trimesh.Soup, *Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if err := soup.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidMesh, err)
	}

	s := *soup
	if p.LargestComponent {
		s = *trimesh.FilterToComponent(&s, trimesh.LargestComponent(&s))
	}
	s.DropUnreferenced()

	m, err := halfedge.FromSoup(&s)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidMesh, err)
	}
	for _, v := range trimesh.ResolvePins(&s, p.Pins, p.PinTolerance) {
		m.Lock(v)
	}

	report, err := Remesh(ctx, m, Options{
		ShortLength:       p.ShortLength,
		LongLength:        p.LongLength,
		KeepAngleLessThan: p.KeepAngleLessThan,
		Iterations:        p.Iterations,
		Verbose:           p.Verbose,
		Rand:              rand.New(rand.NewPCG(p.Seed, p.Seed)),
		Smoother:          e.Smoother,
		Logger:            e.Logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return m.ToSoup(), report, nil
}
