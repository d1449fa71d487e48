// Package inspect measures how far a tessellated tube strays from the ideal cylinder surface.
package inspect

import (
	"fmt"
	"log"
	"math"

	"GPU_cylinder_mesh/model"
	vm "GPU_cylinder_mesh/vector_math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

type Report struct {
	// largest |distance| of a vertex to the surface, ideally zero up to float32 rounding
	MaxVertexDeviation float64
	// largest |distance| of a triangle centroid, grows with coarser tessellation
	MaxCentroidDeviation float64
	Vertices             int
	Triangles            int
}

func (r Report) String() string {
	return fmt.Sprintf("vertices: %d, triangles: %d, max vertex deviation: %g, max centroid deviation: %g",
		r.Vertices, r.Triangles, r.MaxVertexDeviation, r.MaxCentroidDeviation)
}

// surface is the solid cylinder between z=0 and z=length. Its SDF is zero on the lateral surface, including the
// rim where the first and last ring sit.
func surface(length, radius float32) (sdf.SDF3, error) {
	s, err := sdf.Cylinder3D(float64(length), float64(radius), 0)
	if err != nil {
		return nil, err
	}
	// sdfx centers the cylinder at the origin
	m := sdf.Translate3d(v3.Vec{Z: float64(length) / 2})
	return sdf.Transform3D(s, m), nil
}

func toVec(v vm.Vector) v3.Vec {
	return v3.Vec{X: float64(v[vm.X]), Y: float64(v[vm.Y]), Z: float64(v[vm.Z])}
}

// Inspect evaluates the distance field of the ideal cylinder at every vertex and every triangle centroid of m.
func Inspect(m *model.Mesh, length, radius float32) (Report, error) {
	if err := m.Validate(); err != nil {
		return Report{}, err
	}
	s, err := surface(length, radius)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %v", model.ErrInvalidConfig, err)
	}
	r := Report{Vertices: m.VertexCount(), Triangles: m.TriangleCount()}
	for _, p := range m.Positions {
		r.MaxVertexDeviation = math.Max(r.MaxVertexDeviation, math.Abs(s.Evaluate(toVec(p))))
	}
	for t := 0; t < m.TriangleCount(); t++ {
		a, b, c := m.Triangle(t)
		centroid := a.Add(b).Add(c).ScalarMul(1.0 / 3)
		r.MaxCentroidDeviation = math.Max(r.MaxCentroidDeviation, math.Abs(s.Evaluate(toVec(centroid))))
	}
	return r, nil
}

// MaxSurfaceDeviation returns the largest vertex distance to the surface of the cylinder with the given
// length and radius.
func MaxSurfaceDeviation(m *model.Mesh, length, radius float32) (float64, error) {
	r, err := Inspect(m, length, radius)
	if err != nil {
		return 0, err
	}
	return r.MaxVertexDeviation, nil
}

// Check builds the mesh for p and fails when a vertex lies further than tolerance from the surface.
func Check(p model.CylinderParams, tolerance float64) (Report, error) {
	m, err := model.BuildCylinder(p)
	if err != nil {
		return Report{}, err
	}
	r, err := Inspect(m, p.Length, p.Radius)
	if err != nil {
		return Report{}, err
	}
	log.Printf("Inspected cylinder, %s", r)
	if r.MaxVertexDeviation > tolerance {
		return r, fmt.Errorf("vertex deviation %g exceeds tolerance %g", r.MaxVertexDeviation, tolerance)
	}
	return r, nil
}
