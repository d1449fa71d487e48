package model

import (
	"errors"
	"fmt"
	"log"

	vm "GPU_cylinder_mesh/vector_math"

	"github.com/chewxy/math32"
)

// ErrInvalidConfig is wrapped by every error caused by shape parameters that cannot produce a proper mesh.
var ErrInvalidConfig = errors.New("invalid cylinder configuration")

const (
	MIN_MERIDIANS = 3
	MIN_PARALLELS = 1
)

// CylinderParams describe an open tube along the Z axis, starting at z=0 and ending at z=Length.
//
// Meridians is the number of samples around the circumference, Parallels the number of segments along the axis,
// so Parallels+1 rings are generated. The color is interpolated from ColorFrom on the first ring to ColorTo on
// the last one.
type CylinderParams struct {
	Length    float32
	Radius    float32
	Meridians int
	Parallels int
	ColorFrom vm.Vector
	ColorTo   vm.Vector
}

func DefaultCylinderParams() CylinderParams {
	return CylinderParams{
		Length:    1,
		Radius:    0.5,
		Meridians: 24,
		Parallels: 4,
		ColorFrom: vm.NewColor(1, 1, 0, 1),
		ColorTo:   vm.NewColor(0, 1, 1, 1),
	}
}

// Validate reports the first shape parameter that rules out a non degenerate mesh. Colors are not checked.
func (p CylinderParams) Validate() error {
	// written as !(x > 0) so NaN is rejected as well
	if !(p.Length > 0) || math32.IsInf(p.Length, 0) {
		return fmt.Errorf("%w: length must be a positive finite number, got %g", ErrInvalidConfig, p.Length)
	}
	if !(p.Radius > 0) || math32.IsInf(p.Radius, 0) {
		return fmt.Errorf("%w: radius must be a positive finite number, got %g", ErrInvalidConfig, p.Radius)
	}
	if p.Meridians < MIN_MERIDIANS {
		return fmt.Errorf("%w: need at least %d meridians, got %d", ErrInvalidConfig, MIN_MERIDIANS, p.Meridians)
	}
	if p.Parallels < MIN_PARALLELS {
		return fmt.Errorf("%w: need at least %d parallel, got %d", ErrInvalidConfig, MIN_PARALLELS, p.Parallels)
	}
	return nil
}

func (p CylinderParams) ringCount() int {
	return p.Parallels + 1
}

func (p CylinderParams) vertexCount() int {
	return p.ringCount() * p.Meridians
}

// BuildCylinder tessellates the lateral surface of the cylinder described by p. Caps are not generated, the
// result is an open tube. On invalid parameters no mesh is returned at all.
//
// Vertex r*Meridians+i sits on ring r at angle 2*pi*i/Meridians. Its normal is the outward radial direction and
// its color depends on the ring only. Triangles are wound counter-clockwise when looked at from outside.
func BuildCylinder(p CylinderParams) (*Mesh, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	m := &Mesh{
		Positions: buildPositions(p),
		Normals:   buildNormals(p),
		Colors:    BuildColors(p),
		Indices:   buildIndices(p),
	}
	log.Printf("Built cylinder mesh: %d meridians, %d parallels -> %d vertices, %d triangles",
		p.Meridians, p.Parallels, m.VertexCount(), m.TriangleCount())
	return m, nil
}

// ringParam returns the normalized axial position t in [0,1] of ring r. The last ring is exactly 1.
func ringParam(r int, parallels int) float32 {
	return float32(r) / float32(parallels)
}

// meridianAngle returns the sine and cosine of the angle of meridian i.
func meridianAngle(i int, meridians int) (float32, float32) {
	theta := 2 * math32.Pi * float32(i) / float32(meridians)
	return math32.Sincos(theta)
}

func buildPositions(p CylinderParams) []vm.Vector {
	positions := make([]vm.Vector, 0, p.vertexCount())
	for r := 0; r < p.ringCount(); r++ {
		z := p.Length * ringParam(r, p.Parallels)
		for i := 0; i < p.Meridians; i++ {
			sin, cos := meridianAngle(i, p.Meridians)
			positions = append(positions, vm.Point(p.Radius*cos, p.Radius*sin, z))
		}
	}
	return positions
}

// buildNormals repeats the same ring of radial directions on every ring, the lateral surface has no axial slope.
func buildNormals(p CylinderParams) []vm.Vector {
	ring := make([]vm.Vector, p.Meridians)
	for i := range ring {
		sin, cos := meridianAngle(i, p.Meridians)
		ring[i] = vm.Direction(cos, sin, 0).Normalized()
	}
	normals := make([]vm.Vector, 0, p.vertexCount())
	for r := 0; r < p.ringCount(); r++ {
		normals = append(normals, ring...)
	}
	return normals
}

// BuildColors builds only the color stream for p. Boundary colors are used as given, channels outside [0,1] are
// not clamped here. It does not validate p, callers rebuilding the colors of an existing mesh have done so
// already.
func BuildColors(p CylinderParams) []vm.Vector {
	from := p.ColorFrom
	to := p.ColorTo
	colors := make([]vm.Vector, 0, p.vertexCount())
	for r := 0; r < p.ringCount(); r++ {
		c := vm.Lerp(from, to, ringParam(r, p.Parallels))
		for i := 0; i < p.Meridians; i++ {
			colors = append(colors, c)
		}
	}
	return colors
}

// buildIndices emits two triangles per quad between neighbouring rings, the last meridian wraps around to the
// first one. For the quad with corners a (ring r, meridian i), b (ring r, meridian i+1), c (ring r+1, meridian
// i+1) and d (ring r+1, meridian i) the triangles are (a, b, c) and (a, c, d).
func buildIndices(p CylinderParams) []uint32 {
	m := p.Meridians
	indices := make([]uint32, 0, 6*m*p.Parallels)
	for r := 0; r < p.Parallels; r++ {
		for i := 0; i < m; i++ {
			j := (i + 1) % m
			a := uint32(r*m + i)
			b := uint32(r*m + j)
			c := uint32((r+1)*m + j)
			d := uint32((r+1)*m + i)
			indices = append(indices, a, b, c, a, c, d)
		}
	}
	return indices
}
