package trimesh

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for file extensions with no reader/writer.
var ErrUnsupportedFormat = errors.New("unsupported mesh format")

// ReadOptions controls file loading.
type ReadOptions struct {
	// WeldTolerance merges STL corners closer than this distance.
	WeldTolerance float64
}

// ReadFile loads a mesh, choosing the parser from the file extension
// (.obj, .stl or .irm).
func ReadFile(path string, opts ReadOptions) (*Soup, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".irm" {
		return ReadBinary(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	switch ext {
	case ".obj":
		return ReadOBJ(f)
	case ".stl":
		return ReadSTL(f, opts.WeldTolerance)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// WriteFile stores a mesh, choosing the writer from the file extension.
func WriteFile(path string, s *Soup) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".irm":
		return WriteBinary(path, s)
	case ".obj", ".stl":
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	if ext == ".obj" {
		err = WriteOBJ(f, s)
	} else {
		err = WriteSTL(f, s)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", ext, err)
	}
	return f.Close()
}
