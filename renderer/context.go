package renderer

import (
	vm "GPU_cylinder_mesh/vector_math"
)

// This file describes the boundary between mesh entities and whatever owns the graphics API. Entities build
// their geometry on the CPU and hand raw buffers to a Context, the Context owns device memory and draw calls.

type BufferKind int

const (
	POSITION_BUFFER BufferKind = iota
	NORMAL_BUFFER
	COLOR_BUFFER
	INDEX_BUFFER

	MAX_BUFFERS
)

func (k BufferKind) String() string {
	switch k {
	case POSITION_BUFFER:
		return "position"
	case NORMAL_BUFFER:
		return "normal"
	case COLOR_BUFFER:
		return "color"
	case INDEX_BUFFER:
		return "index"
	default:
		return "unknown"
	}
}

// Buffer is an opaque handle to a buffer owned by a Context. The zero value is never handed out.
type Buffer uint32

// RenderState is a read-only copy of an entity's shape and colors that can travel with a draw call. Passes that
// need to know the radius or the boundary colors read them from here instead of re-deriving them from the
// vertex data. It is a plain value, changing it has no effect on the entity.
type RenderState struct {
	Radius    float32
	Length    float32
	ColorFrom vm.Vector
	ColorTo   vm.Vector
}

// DrawCall names everything a Context needs to issue one indexed draw.
type DrawCall struct {
	Positions Buffer
	Normals   Buffer
	Colors    Buffer
	Indices   Buffer

	IndexCount uint32

	// State is only meaningful when HasState is set.
	State    RenderState
	HasState bool
}

// Context is implemented by the renderer that owns the device. Buffers are sized once at allocation, Upload
// always replaces the whole buffer.
type Context interface {
	AllocateBuffer(kind BufferKind, size int) (Buffer, error)
	Upload(buf Buffer, payload []byte) error
	DrawIndexed(pass int, call DrawCall) error
	ReleaseBuffer(buf Buffer)
}

// Entity is a drawable member of a Scene.
//
// Initialize is called exactly once when the entity enters a scene and must either leave the entity fully
// uploaded or return an error without holding any buffers. RenderPass is called once per pass and frame and
// must not rebuild geometry.
type Entity interface {
	Name() string
	Initialize(ctx Context) error
	RenderPass(pass int) error
	Release()
}
