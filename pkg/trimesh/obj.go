package trimesh

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// ReadOBJ parses Wavefront OBJ geometry. Only "v" and "f" records are used;
// faces with more than three corners are fan triangulated, and the
// "v/vt/vn" corner forms as well as negative (relative) indices are accepted.
// Positive indices may refer to vertices declared later in the file.
func ReadOBJ(r io.Reader) (*Soup, error) {
	s := &Soup{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		words := strings.Fields(scanner.Text())
		if len(words) == 0 {
			continue
		}

		switch words[0] {
		case "v":
			if len(words) < 4 {
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
			s.Positions = append(s.Positions, r3.Vec{X: p[0], Y: p[1], Z: p[2]})

		case "f":
			if len(words) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 corners", lineNo)
			}
			corners := make([]uint32, 0, len(words)-1)
			for _, word := range words[1:] {
				idx, err := parseOBJIndex(word, len(s.Positions))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				corners = append(corners, idx)
			}
			for i := 1; i+1 < len(corners); i++ {
				s.Triangles = append(s.Triangles, [3]uint32{corners[0], corners[i], corners[i+1]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// parseOBJIndex resolves one face corner token to a 0-based vertex index.
// Relative indices are resolved against the numVerts vertices read so far;
// positive ones are range checked once the whole file is read.
func parseOBJIndex(word string, numVerts int) (uint32, error) {
	if slash := strings.IndexByte(word, '/'); slash >= 0 {
		word = word[:slash]
	}
	v, err := strconv.Atoi(word)
	if err != nil {
		return 0, fmt.Errorf("parse face index %q: %w", word, err)
	}
	switch {
	case v > 0:
		return uint32(v - 1), nil
	case v < 0 && -v <= numVerts:
		return uint32(numVerts + v), nil
	default:
		return 0, fmt.Errorf("face index %d out of range (%d vertices)", v, numVerts)
	}
}

// WriteOBJ writes s as Wavefront OBJ with 1-based face indices.
func WriteOBJ(w io.Writer, s *Soup) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# %d vertices, %d faces\n", len(s.Positions), len(s.Triangles))
	for _, p := range s.Positions {
		if _, err := fmt.Fprintf(bw, "v %s %s %s\n", formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z)); err != nil {
			return err
		}
	}
	for _, tri := range s.Triangles {
		// One has to be added to every triangle index.
		if _, err := fmt.Fprintf(bw, "f %d %d %d\n", tri[0]+1, tri[1]+1, tri[2]+1); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
