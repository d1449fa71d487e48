package model

import (
	"encoding/binary"
	"testing"

	vm "GPU_cylinder_mesh/vector_math"
)

func TestMeshCounts(t *testing.T) {
	tests := []struct {
		name      string
		mesh      Mesh
		vertices  int
		triangles int
		empty     bool
	}{
		{"empty", Mesh{}, 0, 0, true},
		{"one triangle", Mesh{
			Positions: []vm.Vector{vm.Point(0, 0, 0), vm.Point(1, 0, 0), vm.Point(0, 1, 0)},
			Indices:   []uint32{0, 1, 2},
		}, 3, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mesh.VertexCount(); got != tt.vertices {
				t.Errorf("VertexCount() = %d, want %d", got, tt.vertices)
			}
			if got := tt.mesh.TriangleCount(); got != tt.triangles {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.triangles)
			}
			if got := tt.mesh.IsEmpty(); got != tt.empty {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.empty)
			}
		})
	}
}

func TestMeshValidate(t *testing.T) {
	three := []vm.Vector{vm.Point(0, 0, 0), vm.Point(1, 0, 0), vm.Point(0, 1, 0)}
	tests := []struct {
		name    string
		mesh    Mesh
		wantErr bool
	}{
		{"valid", Mesh{Positions: three, Normals: three, Colors: three, Indices: []uint32{0, 1, 2}}, false},
		{"missing normals", Mesh{Positions: three, Normals: three[:2], Colors: three, Indices: []uint32{0, 1, 2}}, true},
		{"missing colors", Mesh{Positions: three, Normals: three, Colors: nil, Indices: []uint32{0, 1, 2}}, true},
		{"partial triangle", Mesh{Positions: three, Normals: three, Colors: three, Indices: []uint32{0, 1}}, true},
		{"index out of range", Mesh{Positions: three, Normals: three, Colors: three, Indices: []uint32{0, 1, 3}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mesh.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMeshBufferBytes(t *testing.T) {
	m, err := BuildCylinder(testParams())
	if err != nil {
		t.Fatal(err)
	}
	if got := len(m.GetPositionBytes()); got != m.GetVBufferSize() {
		t.Errorf("position bytes %d, want %d", got, m.GetVBufferSize())
	}
	if got := len(m.GetNormalBytes()); got != m.GetVBufferSize() {
		t.Errorf("normal bytes %d, want %d", got, m.GetVBufferSize())
	}
	if got := len(m.GetColorBytes()); got != m.GetVBufferSize() {
		t.Errorf("color bytes %d, want %d", got, m.GetVBufferSize())
	}
	idx := m.GetIdxBufferBytes()
	if len(idx) != m.GetIdxBufferSize() {
		t.Fatalf("index bytes %d, want %d", len(idx), m.GetIdxBufferSize())
	}
	for i, want := range m.Indices {
		if got := binary.LittleEndian.Uint32(idx[i*4:]); got != want {
			t.Fatalf("index %d encoded as %d, want %d", i, got, want)
		}
	}
	positions, err := vm.FromBytes(m.GetPositionBytes())
	if err != nil {
		t.Fatal(err)
	}
	for i := range positions {
		if positions[i] != m.Positions[i] {
			t.Fatalf("position %d does not survive the byte export", i)
		}
	}
}
