package stl

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"

	"GPU_cylinder_mesh/model"
	vm "GPU_cylinder_mesh/vector_math"
)

// Binary STL: an 80 byte header, a little endian uint32 triangle count and one 50 byte record per triangle made
// of the face normal, the three corners (12 float32 in total) and a 2 byte attribute count.
const (
	headerSize = 80
	countSize  = 4
	stride     = 50
)

var ErrTruncated = errors.New("stl data is truncated")

// Write encodes every triangle of m with its face normal. Vertex normals and colors are not part of the format.
func Write(w io.Writer, m *model.Mesh, header string) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("cannot write invalid mesh: %w", err)
	}
	bw := bufio.NewWriter(w)
	h := make([]byte, headerSize)
	copy(h, header)
	if _, err := bw.Write(h); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(m.TriangleCount())); err != nil {
		return err
	}
	record := make([]byte, stride)
	for t := 0; t < m.TriangleCount(); t++ {
		a, b, c := m.Triangle(t)
		normal := b.Sub(a).Crossed(c.Sub(a)).Normalized()
		putVec3(record[0:12], normal)
		putVec3(record[12:24], a)
		putVec3(record[24:36], b)
		putVec3(record[36:48], c)
		binary.LittleEndian.PutUint16(record[48:50], 0)
		if _, err := bw.Write(record); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func WriteFile(path string, m *model.Mesh, header string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, m, header); err != nil {
		f.Close()
		return err
	}
	log.Printf("Wrote stl file %s, Triangle Count: %d", path, m.TriangleCount())
	return f.Close()
}

// Read decodes binary STL into an unindexed mesh: every triangle gets three vertices of its own, all carrying the
// face normal. Colors are set to opaque white.
func Read(r io.Reader) (*model.Mesh, string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, "", err
	}
	if len(b) < headerSize+countSize {
		return nil, "", ErrTruncated
	}
	header := string(trimZeros(b[:headerSize]))
	tCnt := binary.LittleEndian.Uint32(b[headerSize : headerSize+countSize])
	body := b[headerSize+countSize:]
	if uint64(len(body)) < uint64(tCnt)*stride {
		return nil, "", fmt.Errorf("%w: header announces %d triangles, found %d bytes", ErrTruncated, tCnt, len(body))
	}
	return toMesh(body, tCnt), header, nil
}

func ReadFile(path string) (*model.Mesh, string, error) {
	log.Printf("Reading stl file %s", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	m, header, err := Read(f)
	if err != nil {
		return nil, "", err
	}
	log.Printf("Successfully read stl file, Header: '%s', Triangle Count: %d", header, m.TriangleCount())
	return m, header, nil
}

func toMesh(bytes []byte, triangleCnt uint32) *model.Mesh {
	n := int(triangleCnt) * 3
	m := &model.Mesh{
		Positions: make([]vm.Vector, 0, n),
		Normals:   make([]vm.Vector, 0, n),
		Colors:    make([]vm.Vector, 0, n),
		Indices:   make([]uint32, 0, n),
	}
	white := vm.NewColor(1, 1, 1, 1)
	for t := 0; t < int(triangleCnt); t++ {
		rec := bytes[t*stride : (t+1)*stride]
		normal := toVec3(rec[0:12])
		normal[vm.W] = 0
		for corner := 0; corner < 3; corner++ {
			off := 12 + corner*12
			m.Indices = append(m.Indices, uint32(len(m.Positions)))
			m.Positions = append(m.Positions, toVec3(rec[off:off+12]))
			m.Normals = append(m.Normals, normal)
			m.Colors = append(m.Colors, white)
		}
	}
	return m
}

func putVec3(b []byte, v vm.Vector) {
	binary.LittleEndian.PutUint32(b[0:4], math.Float32bits(v[vm.X]))
	binary.LittleEndian.PutUint32(b[4:8], math.Float32bits(v[vm.Y]))
	binary.LittleEndian.PutUint32(b[8:12], math.Float32bits(v[vm.Z]))
}

// toVec3 reads 3 floats as a point.
func toVec3(bytes []byte) vm.Vector {
	return vm.Point(
		toFloat32(bytes[:4]),
		toFloat32(bytes[4:8]),
		toFloat32(bytes[8:12]),
	)
}

func toFloat32(bytes []byte) float32 {
	bits := binary.LittleEndian.Uint32(bytes)
	return math.Float32frombits(bits)
}

func trimZeros(b []byte) []byte {
	for i, c := range b {
		if c == 0 {
			return b[:i]
		}
	}
	return b
}
