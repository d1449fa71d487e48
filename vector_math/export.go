package vector_math

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"
)

// Bulk conversion between []Vector and the flat buffers handed to a graphics API. All of these copy, none of
// them alias the source slice.

// VectorByteSize is the size of a single Vector in memory and in every exported buffer.
const VectorByteSize = int(unsafe.Sizeof(Vector{}))

// Flatten unrolls vs into 4 floats per vector in slot order.
func Flatten(vs []Vector) []float32 {
	f := make([]float32, 0, len(vs)*4)
	for _, v := range vs {
		f = append(f, v[0], v[1], v[2], v[3])
	}
	return f
}

// Unflatten is the inverse of Flatten.
func Unflatten(f []float32) ([]Vector, error) {
	if len(f)%4 != 0 {
		return nil, fmt.Errorf("cannot unflatten %d floats: %w", len(f), errNotAligned)
	}
	vs := make([]Vector, len(f)/4)
	for i := range vs {
		copy(vs[i][:], f[i*4:i*4+4])
	}
	return vs, nil
}

// Bytes writes vs as little endian float32s, VectorByteSize bytes per vector. Mainly used to move a vertex
// stream into device memory.
func Bytes(vs []Vector) []byte {
	b := make([]byte, len(vs)*VectorByteSize)
	for i, v := range vs {
		for j := range v {
			binary.LittleEndian.PutUint32(b[i*VectorByteSize+j*4:], math.Float32bits(v[j]))
		}
	}
	return b
}

// FromBytes is the inverse of Bytes.
func FromBytes(b []byte) ([]Vector, error) {
	if len(b)%VectorByteSize != 0 {
		return nil, fmt.Errorf("cannot read vectors from %d bytes: %w", len(b), errNotAligned)
	}
	vs := make([]Vector, len(b)/VectorByteSize)
	for i := range vs {
		for j := range vs[i] {
			bits := binary.LittleEndian.Uint32(b[i*VectorByteSize+j*4:])
			vs[i][j] = math.Float32frombits(bits)
		}
	}
	return vs, nil
}
