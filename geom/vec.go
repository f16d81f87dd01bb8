/*package geom contains the fixed-dimension vector types and the periodic
boundary helper used by the spatial tree.

The simulation is generic over spatial dimension, but only dimensions 1,
2, and 3 exist. Code written against the Vector constraint is instantiated
once per concrete vector type, so the per-component loops below compile
with constant bounds and no interface dispatch.
*/
package geom

import (
	"math"
)

// Vec1, Vec2, and Vec3 are real-valued position/velocity tuples. They are
// immutable value types; every operation returns a new vector.
type Vec1 [1]float64
type Vec2 [2]float64
type Vec3 [3]float64

// Vector is the constraint satisfied by Vec1, Vec2, and Vec3. It is the
// closed set of supported dimensions: there is deliberately no way to
// instantiate the tree at any other dimension.
type Vector[V any] interface {
	Vec1 | Vec2 | Vec3

	Dim() int
	At(i int) float64
	// With returns a copy of the vector with component i replaced by x.
	With(i int, x float64) V
	Add(u V) V
	Sub(u V) V
	Scale(s float64) V
	Dot(u V) float64
}

func (v Vec1) Dim() int         { return 1 }
func (v Vec1) At(i int) float64 { return v[i] }

func (v Vec1) With(i int, x float64) Vec1 {
	v[i] = x
	return v
}

func (v Vec1) Add(u Vec1) Vec1 {
	for i := range v {
		v[i] += u[i]
	}
	return v
}

func (v Vec1) Sub(u Vec1) Vec1 {
	for i := range v {
		v[i] -= u[i]
	}
	return v
}

func (v Vec1) Scale(s float64) Vec1 {
	for i := range v {
		v[i] *= s
	}
	return v
}

func (v Vec1) Dot(u Vec1) float64 {
	sum := 0.0
	for i := range v {
		sum += v[i] * u[i]
	}
	return sum
}

func (v Vec2) Dim() int         { return 2 }
func (v Vec2) At(i int) float64 { return v[i] }

func (v Vec2) With(i int, x float64) Vec2 {
	v[i] = x
	return v
}

func (v Vec2) Add(u Vec2) Vec2 {
	for i := range v {
		v[i] += u[i]
	}
	return v
}

func (v Vec2) Sub(u Vec2) Vec2 {
	for i := range v {
		v[i] -= u[i]
	}
	return v
}

func (v Vec2) Scale(s float64) Vec2 {
	for i := range v {
		v[i] *= s
	}
	return v
}

func (v Vec2) Dot(u Vec2) float64 {
	sum := 0.0
	for i := range v {
		sum += v[i] * u[i]
	}
	return sum
}

func (v Vec3) Dim() int         { return 3 }
func (v Vec3) At(i int) float64 { return v[i] }

func (v Vec3) With(i int, x float64) Vec3 {
	v[i] = x
	return v
}

func (v Vec3) Add(u Vec3) Vec3 {
	for i := range v {
		v[i] += u[i]
	}
	return v
}

func (v Vec3) Sub(u Vec3) Vec3 {
	for i := range v {
		v[i] -= u[i]
	}
	return v
}

func (v Vec3) Scale(s float64) Vec3 {
	for i := range v {
		v[i] *= s
	}
	return v
}

func (v Vec3) Dot(u Vec3) float64 {
	sum := 0.0
	for i := range v {
		sum += v[i] * u[i]
	}
	return sum
}

// Norm returns the Euclidean length of v.
func Norm[V Vector[V]](v V) float64 {
	return math.Sqrt(v.Dot(v))
}

// Dist returns the Euclidean distance between a and b. It does not account
// for periodic wrapping; use Periodic.Distance for that.
func Dist[V Vector[V]](a, b V) float64 {
	return Norm(a.Sub(b))
}
