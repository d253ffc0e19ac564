package trimesh

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/rtree"
	"gonum.org/v1/gonum/spatial/r3"

	"isoremesh/pkg/geom"
)

const (
	stlHeaderSize = 80
	stlFacetSize  = 50 // normal + 3 vertices (12 float32) + attribute uint16
	maxSTLFacets  = 50_000_000
)

// ReadSTL parses binary or ASCII STL. STL stores every facet with its own
// copies of the corner positions, so corners closer than weldTol are merged
// into shared vertices; weldTol == 0 merges only bit-identical corners.
func ReadSTL(r io.Reader, weldTol float64) (*Soup, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var corners []r3.Vec
	if isASCIISTL(data) {
		corners, err = parseASCIISTL(data)
	} else {
		corners, err = parseBinarySTL(data)
	}
	if err != nil {
		return nil, err
	}

	s := weldCorners(corners, weldTol)
	s.DropUnreferenced()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// isASCIISTL reports whether data looks like ASCII STL. Some binary files
// also start with "solid", so the binary size formula takes precedence.
func isASCIISTL(data []byte) bool {
	if !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		return false
	}
	if len(data) >= stlHeaderSize+4 {
		n := binary.LittleEndian.Uint32(data[stlHeaderSize:])
		if uint64(len(data)) == stlHeaderSize+4+uint64(n)*stlFacetSize {
			return false
		}
	}
	return true
}

func parseBinarySTL(data []byte) ([]r3.Vec, error) {
	if len(data) < stlHeaderSize+4 {
		return nil, fmt.Errorf("binary STL truncated: %d bytes", len(data))
	}
	n := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	if n > maxSTLFacets {
		return nil, fmt.Errorf("facet count %d exceeds limit %d", n, maxSTLFacets)
	}
	body := data[stlHeaderSize+4:]
	if uint64(len(body)) < uint64(n)*stlFacetSize {
		return nil, fmt.Errorf("binary STL truncated: %d facets declared, %d bytes of facet data", n, len(body))
	}

	corners := make([]r3.Vec, 0, 3*int(n))
	for i := 0; i < int(n); i++ {
		facet := body[i*stlFacetSize:]
		// Skip the stored normal; it is recomputed on write.
		for j := 0; j < 3; j++ {
			off := 12 + 12*j
			corners = append(corners, r3.Vec{
				X: float64(math.Float32frombits(binary.LittleEndian.Uint32(facet[off:]))),
				Y: float64(math.Float32frombits(binary.LittleEndian.Uint32(facet[off+4:]))),
				Z: float64(math.Float32frombits(binary.LittleEndian.Uint32(facet[off+8:]))),
			})
		}
	}
	return corners, nil
}

func parseASCIISTL(data []byte) ([]r3.Vec, error) {
	var corners []r3.Vec
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	inFacet := 0
	for scanner.Scan() {
		lineNo++
		words := strings.Fields(scanner.Text())
		if len(words) == 0 {
			continue
		}
		switch words[0] {
		case "facet":
			inFacet = 0
		case "vertex":
			if len(words) != 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", lineNo)
			}
			var p [3]float64
			for i := range p {
				f, err := strconv.ParseFloat(words[i+1], 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: parse coordinate: %w", lineNo, err)
				}
				p[i] = f
			}
			corners = append(corners, r3.Vec{X: p[0], Y: p[1], Z: p[2]})
			inFacet++
		case "endfacet":
			if inFacet != 3 {
				return nil, fmt.Errorf("line %d: facet has %d vertices, want 3", lineNo, inFacet)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(corners)%3 != 0 {
		return nil, fmt.Errorf("ASCII STL has %d corners, not a multiple of 3", len(corners))
	}
	return corners, nil
}

// weldCorners turns a flat corner list (3 per facet) into an indexed soup.
// Candidates are found with an R-tree over the XY projection; the Z and full
// 3D distance checks happen in the search callback.
func weldCorners(corners []r3.Vec, tol float64) *Soup {
	s := &Soup{Triangles: make([][3]uint32, 0, len(corners)/3)}

	exact := make(map[r3.Vec]uint32)
	var tr rtree.RTreeG[uint32]
	tol2 := tol * tol

	lookup := func(p r3.Vec) uint32 {
		if idx, ok := exact[p]; ok {
			return idx
		}
		if tol > 0 {
			found := false
			var best uint32
			bestDist := math.Inf(1)
			tr.Search(
				[2]float64{p.X - tol, p.Y - tol},
				[2]float64{p.X + tol, p.Y + tol},
				func(_, _ [2]float64, idx uint32) bool {
					q := s.Positions[idx]
					if math.Abs(q.Z-p.Z) > tol {
						return true
					}
					if d := geom.Dist2(p, q); d <= tol2 && d < bestDist {
						best, bestDist, found = idx, d, true
					}
					return true
				},
			)
			if found {
				exact[p] = best
				return best
			}
		}
		idx := uint32(len(s.Positions))
		s.Positions = append(s.Positions, p)
		exact[p] = idx
		if tol > 0 {
			pt := [2]float64{p.X, p.Y}
			tr.Insert(pt, pt, idx)
		}
		return idx
	}

	for i := 0; i+2 < len(corners); i += 3 {
		tri := [3]uint32{lookup(corners[i]), lookup(corners[i+1]), lookup(corners[i+2])}
		// Facets collapsed by welding carry no area.
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[2] == tri[0] {
			continue
		}
		s.Triangles = append(s.Triangles, tri)
	}
	return s
}

// WriteSTL writes s as binary STL with recomputed facet normals.
func WriteSTL(w io.Writer, s *Soup) error {
	bw := bufio.NewWriter(w)

	var header [stlHeaderSize]byte
	copy(header[:], "isoremesh binary STL")
	if _, err := bw.Write(header[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(s.Triangles))); err != nil {
		return err
	}

	var facet [stlFacetSize]byte
	put := func(off int, v r3.Vec) {
		binary.LittleEndian.PutUint32(facet[off:], math.Float32bits(float32(v.X)))
		binary.LittleEndian.PutUint32(facet[off+4:], math.Float32bits(float32(v.Y)))
		binary.LittleEndian.PutUint32(facet[off+8:], math.Float32bits(float32(v.Z)))
	}
	for _, tri := range s.Triangles {
		a, b, c := s.Positions[tri[0]], s.Positions[tri[1]], s.Positions[tri[2]]
		n := geom.TriangleNormal(a, b, c)
		if l := r3.Norm(n); l > 0 {
			n = r3.Scale(1/l, n)
		}
		put(0, n)
		put(12, a)
		put(24, b)
		put(36, c)
		if _, err := bw.Write(facet[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}
