package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"gonum.org/v1/gonum/spatial/r3"

	"isoremesh/pkg/remesh"
	"isoremesh/pkg/trimesh"
)

// pinList collects repeated -pin x,y,z flags.
type pinList []r3.Vec

func (p *pinList) String() string {
	parts := make([]string, len(*p))
	for i, v := range *p {
		parts[i] = fmt.Sprintf("%g,%g,%g", v.X, v.Y, v.Z)
	}
	return strings.Join(parts, " ")
}

func (p *pinList) Set(s string) error {
	var v r3.Vec
	if _, err := fmt.Sscanf(s, "%g,%g,%g", &v.X, &v.Y, &v.Z); err != nil {
		return fmt.Errorf("expected x,y,z: %w", err)
	}
	*p = append(*p, v)
	return nil
}

func main() {
	defaults := remesh.DefaultOptions()

	input := flag.String("input", "", "Input mesh (.obj, .stl or .irm)")
	output := flag.String("output", "", "Output mesh (.obj, .stl or .irm)")
	short := flag.Float64("short", defaults.ShortLength, "Collapse edges shorter than this multiple of the mean edge length")
	long := flag.Float64("long", defaults.LongLength, "Split edges longer than this multiple of the mean edge length")
	keepAngle := flag.Float64("keep-angle", defaults.KeepAngleLessThan*180/math.Pi, "Lock vertices on creases sharper than this many degrees")
	iterations := flag.Int("iterations", defaults.Iterations, "Number of remeshing iterations")
	seed := flag.Uint64("seed", remesh.DefaultSeed, "Seed for the random edge order")
	largest := flag.Bool("largest-component", false, "Keep only the largest connected component")
	weld := flag.Float64("weld", 0, "Weld STL corners closer than this distance (0 = exact matches only)")
	pinTol := flag.Float64("pin-tolerance", 0, "Ignore pins farther than this from every vertex (0 = no limit)")
	verbose := flag.Bool("verbose", false, "Log vertex and face counts after every pass")
	var pins pinList
	flag.Var(&pins, "pin", "Lock the vertex nearest to x,y,z (repeatable)")
	flag.Parse()

	if *input == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "Usage: remesh --input <mesh.obj|stl|irm> --output <mesh.obj|stl|irm> [--short 0.8] [--long 1.333] [--keep-angle 30] [--iterations 5] [--pin x,y,z ...]")
		os.Exit(1)
	}

	red := color.New(color.FgRed).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	start := time.Now()

	// Step 1: Read the mesh.
	log.Printf("Reading %s...", *input)
	soup, err := trimesh.ReadFile(*input, trimesh.ReadOptions{WeldTolerance: *weld})
	if err != nil {
		log.Fatalf("%s %v", red("Failed to read mesh:"), err)
	}
	lo, hi := soup.Bounds()
	log.Printf("Read %d vertices, %d triangles, %d components, bounds %v - %v",
		len(soup.Positions), len(soup.Triangles), trimesh.CountComponents(soup), lo, hi)

	// Step 2: Remesh.
	params := remesh.Params{
		ShortLength:       *short,
		LongLength:        *long,
		KeepAngleLessThan: *keepAngle * math.Pi / 180,
		Iterations:        *iterations,
		Seed:              *seed,
		Verbose:           *verbose,
		Pins:              pins,
		PinTolerance:      *pinTol,
		LargestComponent:  *largest,
	}
	log.Printf("Remeshing: short %g, long %g, keep angle %g deg, %d iterations",
		*short, *long, *keepAngle, *iterations)
	out, report, err := remesh.NewEngine().Remesh(context.Background(), soup, params)
	if err != nil {
		log.Fatalf("%s %v", red("Remeshing failed:"), err)
	}
	log.Printf("Mean input edge length %.6g, %d pinned, %d locked on features",
		report.Stats.Mean, report.PreLocked, report.Locked)
	for i, it := range report.Iterations {
		log.Printf("Iteration %d: %d splits, %d collapses (%d rejected), %d flips -> %d vertices, %d faces",
			i+1, it.Split.Applied, it.Collapse.Applied, it.Collapse.Rejected, it.Flip.Applied, it.Vertices, it.Faces)
	}

	// Step 3: Write the result.
	log.Printf("Writing %s...", *output)
	if err := trimesh.WriteFile(*output, out); err != nil {
		log.Fatalf("%s %v", red("Failed to write mesh:"), err)
	}

	log.Printf("%s %d vertices, %d triangles in %s", green("Done:"),
		len(out.Positions), len(out.Triangles), time.Since(start).Round(time.Millisecond))
}
