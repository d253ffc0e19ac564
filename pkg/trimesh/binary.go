package trimesh

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"unsafe"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	magicBytes   = "ISOREMSH"
	version      = uint32(1)
	maxVertices  = 50_000_000
	maxTriangles = 100_000_000
)

// fileHeader is the binary header.
type fileHeader struct {
	Magic        [8]byte
	Version      uint32
	NumVertices  uint32
	NumTriangles uint32
	HasLocks     uint32 // 1 if a lock byte per vertex follows the triangles
}

// WriteBinary serializes a soup to a binary snapshot file.
// Uses unsafe.Slice for fast zero-copy I/O.
func WriteBinary(path string, s *Soup) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // clean up on error
	}()

	crcWriter := crc32Writer{w: f, hash: crc32.NewIEEE()}
	w := &crcWriter

	hdr := fileHeader{
		Version:      version,
		NumVertices:  uint32(len(s.Positions)),
		NumTriangles: uint32(len(s.Triangles)),
	}
	if s.Locked != nil {
		hdr.HasLocks = 1
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if err := writeFloat64Slice(w, positionsAsFloats(s.Positions)); err != nil {
		return fmt.Errorf("write Positions: %w", err)
	}
	if err := writeUint32Slice(w, trianglesAsUint32s(s.Triangles)); err != nil {
		return fmt.Errorf("write Triangles: %w", err)
	}
	if s.Locked != nil {
		locks := make([]byte, len(s.Locked))
		for i, l := range s.Locked {
			if l {
				locks[i] = 1
			}
		}
		if _, err := w.Write(locks); err != nil {
			return fmt.Errorf("write Locked: %w", err)
		}
	}

	// Write CRC32 trailer.
	checksum := crcWriter.hash.Sum32()
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Atomic rename.
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

// ReadBinary deserializes a soup from a binary snapshot file.
func ReadBinary(path string) (*Soup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	crcReader := crc32Reader{r: f, hash: crc32.NewIEEE()}
	r := &crcReader

	// Read and validate header.
	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("invalid magic bytes: %q", hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("unsupported version: %d", hdr.Version)
	}
	if hdr.NumVertices > maxVertices {
		return nil, fmt.Errorf("NumVertices %d exceeds limit %d", hdr.NumVertices, maxVertices)
	}
	if hdr.NumTriangles > maxTriangles {
		return nil, fmt.Errorf("NumTriangles %d exceeds limit %d", hdr.NumTriangles, maxTriangles)
	}

	s := &Soup{}
	if s.Positions, err = readPositions(r, int(hdr.NumVertices)); err != nil {
		return nil, fmt.Errorf("read Positions: %w", err)
	}
	if s.Triangles, err = readTriangles(r, int(hdr.NumTriangles)); err != nil {
		return nil, fmt.Errorf("read Triangles: %w", err)
	}
	if hdr.HasLocks == 1 {
		locks := make([]byte, hdr.NumVertices)
		if _, err := io.ReadFull(r, locks); err != nil {
			return nil, fmt.Errorf("read Locked: %w", err)
		}
		s.Locked = make([]bool, hdr.NumVertices)
		for i, l := range locks {
			s.Locked[i] = l != 0
		}
	}

	// Read and validate CRC32.
	expectedCRC := crcReader.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(f, binary.LittleEndian, &storedCRC); err != nil {
		return nil, fmt.Errorf("read CRC32: %w", err)
	}
	if storedCRC != expectedCRC {
		return nil, fmt.Errorf("CRC32 mismatch: stored=%08x computed=%08x", storedCRC, expectedCRC)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Zero-copy views. r3.Vec is three contiguous float64 and [3]uint32 is
// three contiguous uint32, so both flatten without copying.

func positionsAsFloats(p []r3.Vec) []float64 {
	if len(p) == 0 {
		return nil
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(&p[0])), len(p)*3)
}

func trianglesAsUint32s(t [][3]uint32) []uint32 {
	if len(t) == 0 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&t[0])), len(t)*3)
}

func readPositions(r io.Reader, n int) ([]r3.Vec, error) {
	if n == 0 {
		return nil, nil
	}
	p := make([]r3.Vec, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&p[0])), n*24)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return p, nil
}

func readTriangles(r io.Reader, n int) ([][3]uint32, error) {
	if n == 0 {
		return nil, nil
	}
	t := make([][3]uint32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&t[0])), n*12)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return t, nil
}

func writeUint32Slice(w io.Writer, s []uint32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func writeFloat64Slice(w io.Writer, s []float64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := w.Write(b)
	return err
}

// CRC32 wrapping writers/readers.

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash crc32Hash
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
