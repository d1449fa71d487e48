package model

import (
	"errors"
	"fmt"
	"log"

	"GPU_cylinder_mesh/renderer"
	vm "GPU_cylinder_mesh/vector_math"
)

// Cylinder is a scene entity drawing the tube described by its CylinderParams. The mesh is built once in
// Initialize, after that only SetColors and SetShape change it and they only touch the buffers they affect.
//
// A Cylinder is owned by the goroutine rendering it, none of its methods are synchronized.
type Cylinder struct {
	name   string
	params CylinderParams

	mesh    *Mesh
	ctx     renderer.Context
	buffers [renderer.MAX_BUFFERS]renderer.Buffer
	dirty   [renderer.MAX_BUFFERS]bool

	// AttachRenderState makes every draw call carry a RenderState snapshot.
	AttachRenderState bool
}

var _ renderer.Entity = (*Cylinder)(nil)

func NewCylinder(name string, p CylinderParams) *Cylinder {
	return &Cylinder{
		name:   name,
		params: p,
	}
}

func (c *Cylinder) Name() string {
	return c.name
}

// Params returns a copy of the current parameters.
func (c *Cylinder) Params() CylinderParams {
	return c.params
}

// Mesh returns the built mesh or nil before a successful Initialize. It must be treated as read-only.
func (c *Cylinder) Mesh() *Mesh {
	return c.mesh
}

func (c *Cylinder) Initialized() bool {
	return c.ctx != nil
}

// RenderState returns a snapshot of shape and colors. Later changes to the cylinder are not reflected in it.
func (c *Cylinder) RenderState() renderer.RenderState {
	return renderer.RenderState{
		Radius:    c.params.Radius,
		Length:    c.params.Length,
		ColorFrom: c.params.ColorFrom,
		ColorTo:   c.params.ColorTo,
	}
}

// Initialize builds the mesh and uploads all four buffers. On any error the cylinder holds neither a mesh nor
// buffers and can be initialized again later.
func (c *Cylinder) Initialize(ctx renderer.Context) error {
	if c.ctx != nil {
		return fmt.Errorf("cylinder '%s' is already initialized", c.name)
	}
	mesh, err := BuildCylinder(c.params)
	if err != nil {
		return err
	}

	payloads := [renderer.MAX_BUFFERS][]byte{
		renderer.POSITION_BUFFER: mesh.GetPositionBytes(),
		renderer.NORMAL_BUFFER:   mesh.GetNormalBytes(),
		renderer.COLOR_BUFFER:    mesh.GetColorBytes(),
		renderer.INDEX_BUFFER:    mesh.GetIdxBufferBytes(),
	}
	var buffers [renderer.MAX_BUFFERS]renderer.Buffer
	allocated := 0
	release := func() {
		for i := 0; i < allocated; i++ {
			ctx.ReleaseBuffer(buffers[i])
		}
	}
	for kind := renderer.POSITION_BUFFER; kind < renderer.MAX_BUFFERS; kind++ {
		buf, err := ctx.AllocateBuffer(kind, len(payloads[kind]))
		if err != nil {
			release()
			return fmt.Errorf("allocate %s buffer for '%s': %w", kind, c.name, err)
		}
		buffers[kind] = buf
		allocated++
		if err := ctx.Upload(buf, payloads[kind]); err != nil {
			release()
			return fmt.Errorf("upload %s buffer for '%s': %w", kind, c.name, err)
		}
	}

	c.mesh = mesh
	c.ctx = ctx
	c.buffers = buffers
	c.dirty = [renderer.MAX_BUFFERS]bool{}
	log.Printf("Successfully initialized cylinder '%s' (%d vertices, %d indices)",
		c.name, mesh.VertexCount(), len(mesh.Indices))
	return nil
}

// RenderPass flushes pending color or shape changes and issues the draw call for this pass.
func (c *Cylinder) RenderPass(pass int) error {
	if c.ctx == nil {
		return errors.New("cylinder '" + c.name + "' is not initialized")
	}
	if err := c.flush(); err != nil {
		return err
	}
	call := renderer.DrawCall{
		Positions:  c.buffers[renderer.POSITION_BUFFER],
		Normals:    c.buffers[renderer.NORMAL_BUFFER],
		Colors:     c.buffers[renderer.COLOR_BUFFER],
		Indices:    c.buffers[renderer.INDEX_BUFFER],
		IndexCount: uint32(len(c.mesh.Indices)),
	}
	if c.AttachRenderState {
		call.State = c.RenderState()
		call.HasState = true
	}
	return c.ctx.DrawIndexed(pass, call)
}

func (c *Cylinder) flush() error {
	for kind, dirty := range c.dirty {
		if !dirty {
			continue
		}
		var payload []byte
		switch renderer.BufferKind(kind) {
		case renderer.POSITION_BUFFER:
			payload = c.mesh.GetPositionBytes()
		case renderer.COLOR_BUFFER:
			payload = c.mesh.GetColorBytes()
		default:
			return fmt.Errorf("no rebuild path for %s buffer", renderer.BufferKind(kind))
		}
		if err := c.ctx.Upload(c.buffers[kind], payload); err != nil {
			return fmt.Errorf("re-upload %s buffer for '%s': %w", renderer.BufferKind(kind), c.name, err)
		}
		c.dirty[kind] = false
	}
	return nil
}

// SetColors replaces the boundary colors. Once initialized, only the color stream is rebuilt and it is uploaded
// at the start of the next render pass.
func (c *Cylinder) SetColors(colorFrom vm.Vector, colorTo vm.Vector) {
	c.params.ColorFrom = colorFrom
	c.params.ColorTo = colorTo
	if c.mesh == nil {
		return
	}
	c.mesh.Colors = BuildColors(c.params)
	c.dirty[renderer.COLOR_BUFFER] = true
}

// SetShape changes length and radius. Invalid values are rejected and leave the cylinder as it was. The
// tessellation does not change, so normals and indices stay valid and only the positions are re-uploaded.
func (c *Cylinder) SetShape(length float32, radius float32) error {
	p := c.params
	p.Length = length
	p.Radius = radius
	if err := p.Validate(); err != nil {
		return err
	}
	c.params = p
	if c.mesh == nil {
		return nil
	}
	c.mesh.Positions = buildPositions(p)
	c.dirty[renderer.POSITION_BUFFER] = true
	return nil
}

// Release hands all buffers back to the context. The cylinder can be initialized again afterwards.
func (c *Cylinder) Release() {
	if c.ctx == nil {
		return
	}
	for _, b := range c.buffers {
		c.ctx.ReleaseBuffer(b)
	}
	c.ctx = nil
	c.mesh = nil
	c.buffers = [renderer.MAX_BUFFERS]renderer.Buffer{}
	c.dirty = [renderer.MAX_BUFFERS]bool{}
}
