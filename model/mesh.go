package model

import (
	"encoding/binary"
	"fmt"

	vm "GPU_cylinder_mesh/vector_math"
)

// Mesh holds the four parallel buffers of an indexed triangle mesh. Positions, Normals and Colors are index
// aligned, vertex i is made of Positions[i], Normals[i] and Colors[i]. Every 3 consecutive Indices name one
// triangle.
type Mesh struct {
	Positions []vm.Vector
	Normals   []vm.Vector
	Colors    []vm.Vector
	Indices   []uint32
}

func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

func (m *Mesh) IsEmpty() bool {
	return len(m.Positions) == 0
}

// Triangle returns the three positions of triangle t.
func (m *Mesh) Triangle(t int) (vm.Vector, vm.Vector, vm.Vector) {
	i := t * 3
	return m.Positions[m.Indices[i]], m.Positions[m.Indices[i+1]], m.Positions[m.Indices[i+2]]
}

// Validate checks that the buffers can be handed to a renderer as they are: equally long vertex streams, whole
// triangles only and no index pointing past the last vertex.
func (m *Mesh) Validate() error {
	n := len(m.Positions)
	if len(m.Normals) != n || len(m.Colors) != n {
		return fmt.Errorf("vertex streams differ in length: %d positions, %d normals, %d colors",
			n, len(m.Normals), len(m.Colors))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("index %d at position %d is out of range for %d vertices", idx, i, n)
		}
	}
	return nil
}

// GetPositionBytes returns the raw bytes of all positions, mainly used to copy them into device memory.
func (m *Mesh) GetPositionBytes() []byte {
	return vm.Bytes(m.Positions)
}

func (m *Mesh) GetNormalBytes() []byte {
	return vm.Bytes(m.Normals)
}

func (m *Mesh) GetColorBytes() []byte {
	return vm.Bytes(m.Colors)
}

// GetVBufferSize returns the size in bytes of one vertex stream (all three streams have the same size).
func (m *Mesh) GetVBufferSize() int {
	return len(m.Positions) * vm.VectorByteSize
}

// GetIdxBufferBytes returns the indices as little endian uint32.
func (m *Mesh) GetIdxBufferBytes() []byte {
	b := make([]byte, len(m.Indices)*4)
	for i, idx := range m.Indices {
		binary.LittleEndian.PutUint32(b[i*4:], idx)
	}
	return b
}

func (m *Mesh) GetIdxBufferSize() int {
	return len(m.Indices) * 4
}
