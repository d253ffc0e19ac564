package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"isoremesh/pkg/halfedge"
	"isoremesh/pkg/remesh"
	"isoremesh/pkg/trimesh"
)

func main() {
	input := flag.String("input", "", "Path to .obj or .stl mesh")
	output := flag.String("output", "mesh.irm", "Output binary mesh snapshot path")
	weld := flag.Float64("weld", 1e-6, "Weld STL corners closer than this distance")
	largest := flag.Bool("largest-component", true, "Keep only the largest connected component")
	featureDeg := flag.Float64("features", 0, "Pre-lock vertices on creases sharper than this many degrees (0 = off)")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: preprocess --input <mesh.obj|stl> [--output mesh.irm] [--weld 1e-6] [--largest-component] [--features 30]")
		os.Exit(1)
	}

	start := time.Now()

	// Step 1: Read the mesh.
	log.Printf("Reading %s...", *input)
	soup, err := trimesh.ReadFile(*input, trimesh.ReadOptions{WeldTolerance: *weld})
	if err != nil {
		log.Fatalf("Failed to read mesh: %v", err)
	}
	log.Printf("Read %d vertices, %d triangles", len(soup.Positions), len(soup.Triangles))

	// Step 2: Extract largest connected component.
	if *largest {
		n := trimesh.CountComponents(soup)
		comp := trimesh.LargestComponent(soup)
		log.Printf("Largest of %d components: %d vertices (%.1f%%)",
			n, len(comp), float64(len(comp))/float64(len(soup.Positions))*100)
		soup = trimesh.FilterToComponent(soup, comp)
	}
	if dropped := soup.DropUnreferenced(); dropped > 0 {
		log.Printf("Dropped %d unreferenced vertices", dropped)
	}

	// Step 3: Check that the surface is a manifold and optionally lock features.
	log.Println("Building half-edge mesh...")
	m, err := halfedge.FromSoup(soup)
	if err != nil {
		log.Fatalf("Mesh is not usable for remeshing: %v", err)
	}
	log.Printf("Mesh: %d vertices, %d faces, %d boundary loops",
		m.NumVertices(), m.NumFaces(), m.NumBoundaryLoops())
	if *featureDeg > 0 {
		n := remesh.LockFeatures(m, *featureDeg*math.Pi/180)
		log.Printf("Locked %d feature vertices", n)
		soup = m.ToSoup()
	}

	// Step 4: Serialize to binary.
	log.Printf("Writing binary to %s...", *output)
	if err := trimesh.WriteBinary(*output, soup); err != nil {
		log.Fatalf("Failed to write binary: %v", err)
	}

	info, _ := os.Stat(*output)
	elapsed := time.Since(start)
	log.Printf("Done in %s. Output: %s (%.1f MB)", elapsed.Round(time.Millisecond), *output, float64(info.Size())/(1024*1024))
}
