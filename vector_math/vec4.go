package vector_math

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

// Slot indices of a Vector. The positional names (X, Y, Z, W), the color names (R, G, B, A) and the texture
// coordinate names (U, V, S, T) address the same four floats, pick whichever reads better at the call site.
const (
	X = 0
	Y = 1
	Z = 2
	W = 3

	R = 0
	G = 1
	B = 2
	A = 3

	U = 0
	V = 1
	S = 2
	T = 3
)

// Vector is the 4 float value type used for points, directions and RGBA colors alike. It is declared as a plain
// array so a []Vector is laid out exactly like a flat []float32 with 4 floats per element (16 Byte, no padding,
// no pointers) and can be handed to a GPU upload without conversion. Every value method returns a copy, every
// method ending in Assign mutates the receiver in place.
type Vector [4]float32

// NewVector returns the origin as a point (0,0,0,1).
func NewVector() Vector {
	return Vector{0, 0, 0, 1}
}

// Point returns a position, W is set to 1.
func Point(x, y, z float32) Vector {
	return Vector{x, y, z, 1}
}

// Direction returns a direction, W is set to 0.
func Direction(x, y, z float32) Vector {
	return Vector{x, y, z, 0}
}

func NewVec4(x, y, z, w float32) Vector {
	return Vector{x, y, z, w}
}

// NewColor returns an RGBA color. The channels are stored as given, see ClampTop and ClampBottom.
func NewColor(r, g, b, a float32) Vector {
	return Vector{r, g, b, a}
}

func FromArray(f [4]float32) Vector {
	return Vector(f)
}

// FromFloats copies the first 4 floats of f into a new Vector.
func FromFloats(f []float32) (Vector, error) {
	if len(f) < 4 {
		return Vector{}, fmt.Errorf("cannot construct vector from %d floats, need 4", len(f))
	}
	return Vector{f[0], f[1], f[2], f[3]}, nil
}

// Positional view

func (v Vector) X() float32 { return v[X] }
func (v Vector) Y() float32 { return v[Y] }
func (v Vector) Z() float32 { return v[Z] }
func (v Vector) W() float32 { return v[W] }

func (v Vector) XYZW() (float32, float32, float32, float32) {
	return v[X], v[Y], v[Z], v[W]
}

// Color view

func (v Vector) R() float32 { return v[R] }
func (v Vector) G() float32 { return v[G] }
func (v Vector) B() float32 { return v[B] }
func (v Vector) A() float32 { return v[A] }

func (v Vector) RGBA() (float32, float32, float32, float32) {
	return v[R], v[G], v[B], v[A]
}

// Texture coordinate view

func (v Vector) U() float32 { return v[U] }
func (v Vector) V() float32 { return v[V] }
func (v Vector) S() float32 { return v[S] }
func (v Vector) T() float32 { return v[T] }

func (v Vector) UVST() (float32, float32, float32, float32) {
	return v[U], v[V], v[S], v[T]
}

// Component wise arithmetic. W takes part in all of these, they are 4 float operations and not 3D ones.

func (v *Vector) AddAssign(w Vector) {
	v[0] += w[0]
	v[1] += w[1]
	v[2] += w[2]
	v[3] += w[3]
}

func (v *Vector) SubAssign(w Vector) {
	v[0] -= w[0]
	v[1] -= w[1]
	v[2] -= w[2]
	v[3] -= w[3]
}

func (v *Vector) MulAssign(w Vector) {
	v[0] *= w[0]
	v[1] *= w[1]
	v[2] *= w[2]
	v[3] *= w[3]
}

func (v *Vector) ScalarAddAssign(s float32) {
	v[0] += s
	v[1] += s
	v[2] += s
	v[3] += s
}

func (v *Vector) ScalarSubAssign(s float32) {
	v[0] -= s
	v[1] -= s
	v[2] -= s
	v[3] -= s
}

func (v *Vector) ScalarMulAssign(s float32) {
	v[0] *= s
	v[1] *= s
	v[2] *= s
	v[3] *= s
}

func (v Vector) Add(w Vector) Vector {
	v.AddAssign(w)
	return v
}

func (v Vector) Sub(w Vector) Vector {
	v.SubAssign(w)
	return v
}

func (v Vector) Mul(w Vector) Vector {
	v.MulAssign(w)
	return v
}

func (v Vector) ScalarAdd(s float32) Vector {
	v.ScalarAddAssign(s)
	return v
}

func (v Vector) ScalarSub(s float32) Vector {
	v.ScalarSubAssign(s)
	return v
}

func (v Vector) ScalarMul(s float32) Vector {
	v.ScalarMulAssign(s)
	return v
}

// Geometry. Only X, Y and Z are considered.

// Magnitude is the euclidean length of (X,Y,Z), W is ignored. It is never negative.
func (v Vector) Magnitude() float32 {
	return math32.Sqrt(v[X]*v[X] + v[Y]*v[Y] + v[Z]*v[Z])
}

func (v Vector) Dot(w Vector) float32 {
	return v[X]*w[X] + v[Y]*w[Y] + v[Z]*w[Z]
}

// Cross replaces v with v x w. The result is a direction, so W is always set to 0.
func (v *Vector) Cross(w Vector) {
	x := v[Y]*w[Z] - v[Z]*w[Y]
	y := v[Z]*w[X] - v[X]*w[Z]
	z := v[X]*w[Y] - v[Y]*w[X]
	v[X], v[Y], v[Z], v[W] = x, y, z, 0
}

func (v Vector) Crossed(w Vector) Vector {
	v.Cross(w)
	return v
}

// Normalize divides all four components by Magnitude(). A vector of zero magnitude is left as it is, callers
// that need a unit vector afterwards have to check the magnitude themselves.
func (v *Vector) Normalize() {
	l := v.Magnitude()
	if l > 0 {
		v.ScalarMulAssign(1 / l)
	}
}

func (v Vector) Normalized() Vector {
	v.Normalize()
	return v
}

// Color clamping, for RGBA values only.

// ClampTop caps every channel at 1.
func (v *Vector) ClampTop() {
	for i := range v {
		if v[i] > 1 {
			v[i] = 1
		}
	}
}

// ClampBottom raises every channel to at least 0.
func (v *Vector) ClampBottom() {
	for i := range v {
		if v[i] < 0 {
			v[i] = 0
		}
	}
}

// Clamped returns a copy with every channel in [0,1].
func (v Vector) Clamped() Vector {
	v.ClampTop()
	v.ClampBottom()
	return v
}

// Lerp interpolates between a and b. It is written as a*(1-t) + b*t instead of a + (b-a)*t so t=0 and t=1
// reproduce a and b bit for bit.
func Lerp(a Vector, b Vector, t float32) Vector {
	return a.ScalarMul(1 - t).Add(b.ScalarMul(t))
}

func (v Vector) ApproxEquals(w Vector, eps float32) bool {
	for i := range v {
		if math32.Abs(v[i]-w[i]) > eps {
			return false
		}
	}
	return true
}

func (v Vector) String() string {
	return fmt.Sprintf("[%g %g %g %g]", v[0], v[1], v[2], v[3])
}

var errNotAligned = errors.New("length is not a multiple of 4 floats")
