// Package preview draws entities into an SDL window without a GPU pipeline. Uploaded buffers are kept on the CPU,
// each draw call is transformed with an MVP matrix, back faces are culled and the remaining triangles are
// rasterized by the SDL renderer.
package preview

import (
	"encoding/binary"
	"fmt"
	"sort"

	"GPU_cylinder_mesh/renderer"
	vm "GPU_cylinder_mesh/vector_math"

	"github.com/chewxy/math32"
	"github.com/veandco/go-sdl2/sdl"
	lin "github.com/xlab/linmath"
)

const (
	Z_NEAR  = 0.05
	Z_FAR   = 100
	AMBIENT = 0.25
)

type buffer struct {
	kind    renderer.BufferKind
	size    int
	vectors []vm.Vector
	indices []uint32
}

// triangle is a front facing triangle ready for SDL, depth is used to draw far triangles first.
type triangle struct {
	v     [3]sdl.Vertex
	depth float32
}

type Context struct {
	buffers map[renderer.Buffer]*buffer
	next    renderer.Buffer

	width, height float32
	fov           float32
	projection    lin.Mat4x4
	view          lin.Mat4x4
	model         lin.Mat4x4
	eye           lin.Vec3

	// Light is the direction the light travels in world space
	Light vm.Vector

	frame []triangle
	// Culled counts the triangles dropped in the current frame
	Culled int
}

var _ renderer.Context = (*Context)(nil)

func NewContext(width, height int32, fovDeg float32) *Context {
	c := &Context{
		buffers: make(map[renderer.Buffer]*buffer),
		next:    1,
		fov:     fovDeg,
		Light:   vm.Direction(-0.3, 1, -0.6).Normalized(),
	}
	c.model.Identity()
	c.LookAt(lin.Vec3{0, -3, 1}, lin.Vec3{0, 0, 0})
	c.SetViewport(width, height)
	return c
}

func (c *Context) SetViewport(width, height int32) {
	c.width = float32(width)
	c.height = float32(height)
	aspect := c.width / c.height
	c.projection.Perspective(lin.DegreesToRadians(c.fov), aspect, Z_NEAR, Z_FAR)
}

// LookAt places the camera at eye looking at center, with Z pointing up.
func (c *Context) LookAt(eye lin.Vec3, center lin.Vec3) {
	up := lin.Vec3{0, 0, 1}
	c.eye = eye
	c.view.LookAt(&eye, &center, &up)
}

// FrameCylinder moves the camera so a tube of the given size, centered by SetModel, fills the view.
func (c *Context) FrameCylinder(length float32, radius float32) {
	extent := math32.Sqrt(length*length/4 + radius*radius)
	dist := 1.2 * extent / math32.Sin(lin.DegreesToRadians(c.fov)/2)
	c.LookAt(lin.Vec3{0, -dist, dist * 0.4}, lin.Vec3{0, 0, 0})
}

// SetModel tilts the model by angleDeg around the X axis after shifting it by -offset along Z, so a tube of
// length 2*offset tumbles around its center.
func (c *Context) SetModel(angleDeg float32, offset float32) {
	var identity, rot, shift lin.Mat4x4
	identity.Identity()
	rot.Rotate(&identity, 1, 0, 0, lin.DegreesToRadians(angleDeg))
	shift.Translate(0, 0, -offset)
	c.model.Mult(&rot, &shift)
}

func (c *Context) AllocateBuffer(kind renderer.BufferKind, size int) (renderer.Buffer, error) {
	if size <= 0 {
		return 0, fmt.Errorf("cannot allocate %s buffer of %d bytes", kind, size)
	}
	buf := c.next
	c.next++
	c.buffers[buf] = &buffer{kind: kind, size: size}
	return buf, nil
}

func (c *Context) Upload(buf renderer.Buffer, payload []byte) error {
	b, ok := c.buffers[buf]
	if !ok {
		return fmt.Errorf("upload to unknown buffer %d", buf)
	}
	if len(payload) != b.size {
		return fmt.Errorf("%s buffer %d holds %d bytes, got %d", b.kind, buf, b.size, len(payload))
	}
	if b.kind == renderer.INDEX_BUFFER {
		if len(payload)%4 != 0 {
			return fmt.Errorf("index payload of %d bytes is not made of uint32", len(payload))
		}
		b.indices = make([]uint32, len(payload)/4)
		for i := range b.indices {
			b.indices[i] = binary.LittleEndian.Uint32(payload[i*4:])
		}
		return nil
	}
	vs, err := vm.FromBytes(payload)
	if err != nil {
		return err
	}
	b.vectors = vs
	return nil
}

func (c *Context) ReleaseBuffer(buf renderer.Buffer) {
	delete(c.buffers, buf)
}

func (c *Context) lookup(buf renderer.Buffer, kind renderer.BufferKind) (*buffer, error) {
	b, ok := c.buffers[buf]
	if !ok {
		return nil, fmt.Errorf("draw references unknown buffer %d", buf)
	}
	if b.kind != kind {
		return nil, fmt.Errorf("buffer %d is a %s buffer, expected %s", buf, b.kind, kind)
	}
	return b, nil
}

// DrawIndexed transforms and shades the referenced triangles and queues the front facing ones for the frame.
func (c *Context) DrawIndexed(pass int, call renderer.DrawCall) error {
	pos, err := c.lookup(call.Positions, renderer.POSITION_BUFFER)
	if err != nil {
		return err
	}
	nrm, err := c.lookup(call.Normals, renderer.NORMAL_BUFFER)
	if err != nil {
		return err
	}
	col, err := c.lookup(call.Colors, renderer.COLOR_BUFFER)
	if err != nil {
		return err
	}
	idx, err := c.lookup(call.Indices, renderer.INDEX_BUFFER)
	if err != nil {
		return err
	}
	if int(call.IndexCount) > len(idx.indices) || call.IndexCount%3 != 0 {
		return fmt.Errorf("cannot draw %d indices from a buffer of %d", call.IndexCount, len(idx.indices))
	}
	if len(nrm.vectors) != len(pos.vectors) || len(col.vectors) != len(pos.vectors) {
		return fmt.Errorf("vertex streams differ in length: %d/%d/%d",
			len(pos.vectors), len(nrm.vectors), len(col.vectors))
	}

	var pv, mvp lin.Mat4x4
	pv.Mult(&c.projection, &c.view)
	mvp.Mult(&pv, &c.model)

	for t := 0; t < int(call.IndexCount); t += 3 {
		var clip [3]vm.Vector
		var world [3]vm.Vector
		visible := true
		for k := 0; k < 3; k++ {
			i := idx.indices[t+k]
			if int(i) >= len(pos.vectors) {
				return fmt.Errorf("index %d out of range for %d vertices", i, len(pos.vectors))
			}
			clip[k] = transform(&mvp, pos.vectors[i])
			world[k] = transform(&c.model, pos.vectors[i])
			// no near plane clipping, anything behind the camera is dropped
			if clip[k][vm.W] <= 0 {
				visible = false
			}
		}
		if !visible || !frontFacing(clip) {
			c.Culled++
			continue
		}
		var tri triangle
		for k := 0; k < 3; k++ {
			i := idx.indices[t+k]
			n := transform(&c.model, nrm.vectors[i])
			tri.v[k] = sdl.Vertex{
				Position: c.toScreen(clip[k]),
				Color:    toColor(shade(col.vectors[i], n, c.Light)),
			}
			tri.depth += distance(world[k], c.eye)
		}
		c.frame = append(c.frame, tri)
	}
	return nil
}

// Geometry returns the queued triangles back to front, ready for sdl.Renderer.RenderGeometry.
func (c *Context) Geometry() ([]sdl.Vertex, []int32) {
	sort.SliceStable(c.frame, func(i, j int) bool {
		return c.frame[i].depth > c.frame[j].depth
	})
	verts := make([]sdl.Vertex, 0, len(c.frame)*3)
	for _, t := range c.frame {
		verts = append(verts, t.v[:]...)
	}
	indices := make([]int32, len(verts))
	for i := range indices {
		indices[i] = int32(i)
	}
	return verts, indices
}

// Triangles is the number of triangles queued since the last ResetFrame.
func (c *Context) Triangles() int {
	return len(c.frame)
}

func (c *Context) ResetFrame() {
	c.frame = c.frame[:0]
	c.Culled = 0
}

// transform multiplies the column major matrix m with v.
func transform(m *lin.Mat4x4, v vm.Vector) vm.Vector {
	var out vm.Vector
	for r := 0; r < 4; r++ {
		for k := 0; k < 4; k++ {
			out[r] += m[k][r] * v[k]
		}
	}
	return out
}

// frontFacing reports whether the triangle is wound counter-clockwise in normalized device coordinates.
func frontFacing(clip [3]vm.Vector) bool {
	var ndc [3]vm.Vector
	for k := range clip {
		ndc[k] = clip[k].ScalarMul(1 / clip[k][vm.W])
	}
	ax, ay := ndc[1][vm.X]-ndc[0][vm.X], ndc[1][vm.Y]-ndc[0][vm.Y]
	bx, by := ndc[2][vm.X]-ndc[0][vm.X], ndc[2][vm.Y]-ndc[0][vm.Y]
	return ax*by-ay*bx > 0
}

// toScreen maps clip space to pixels, SDL has its origin in the top left corner.
func (c *Context) toScreen(v vm.Vector) sdl.FPoint {
	x := v[vm.X] / v[vm.W]
	y := v[vm.Y] / v[vm.W]
	return sdl.FPoint{
		X: (x + 1) / 2 * c.width,
		Y: (1 - y) / 2 * c.height,
	}
}

// shade scales the rgb channels by an ambient plus diffuse term, alpha is kept.
func shade(color vm.Vector, normal vm.Vector, light vm.Vector) vm.Vector {
	n := normal
	n[vm.W] = 0
	n.Normalize()
	diffuse := math32.Max(0, -n.Dot(light))
	f := AMBIENT + (1-AMBIENT)*diffuse
	out := color
	out[vm.R] *= f
	out[vm.G] *= f
	out[vm.B] *= f
	return out.Clamped()
}

func toColor(c vm.Vector) sdl.Color {
	c = c.Clamped()
	return sdl.Color{
		R: uint8(math32.Round(c[vm.R] * 255)),
		G: uint8(math32.Round(c[vm.G] * 255)),
		B: uint8(math32.Round(c[vm.B] * 255)),
		A: uint8(math32.Round(c[vm.A] * 255)),
	}
}

func distance(p vm.Vector, eye lin.Vec3) float32 {
	d := vm.Direction(p[vm.X]-eye[0], p[vm.Y]-eye[1], p[vm.Z]-eye[2])
	return d.Magnitude()
}
