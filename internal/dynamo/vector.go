package dynamo

import (
	"fmt"
	"math"
)

// Vector3 is a 3-component real vector. Value methods return new vectors;
// the *Assign methods mutate the receiver so fields embedded in particles
// can be updated without copies.
type Vector3 struct {
	X, Y, Z float64
}

func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vector3) Mul(s float64) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vector3) Div(s float64) Vector3 {
	return Vector3{v.X / s, v.Y / s, v.Z / s}
}

// MulElem multiplies componentwise.
func (v Vector3) MulElem(o Vector3) Vector3 {
	return Vector3{v.X * o.X, v.Y * o.Y, v.Z * o.Z}
}

// DivElem divides componentwise.
func (v Vector3) DivElem(o Vector3) Vector3 {
	return Vector3{v.X / o.X, v.Y / o.Y, v.Z / o.Z}
}

func (v Vector3) NormSquared() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func (v Vector3) Norm() float64 {
	return math.Sqrt(v.NormSquared())
}

// Normalize returns the unit vector along v, or the zero vector for v == 0.
func (v Vector3) Normalize() Vector3 {
	n := v.Norm()
	if n == 0 {
		return Vector3{}
	}
	return v.Mul(1 / n)
}

func (v *Vector3) AddAssign(o Vector3) {
	v.X += o.X
	v.Y += o.Y
	v.Z += o.Z
}

func (v *Vector3) SubAssign(o Vector3) {
	v.X -= o.X
	v.Y -= o.Y
	v.Z -= o.Z
}

func (v *Vector3) MulAssign(s float64) {
	v.X *= s
	v.Y *= s
	v.Z *= s
}

func (v *Vector3) DivAssign(s float64) {
	v.X /= s
	v.Y /= s
	v.Z /= s
}

// AddScaled adds o*s to v in place.
func (v *Vector3) AddScaled(o Vector3, s float64) {
	v.X += o.X * s
	v.Y += o.Y * s
	v.Z += o.Z * s
}

// At returns component i. It panics unless 0 <= i < 3.
func (v Vector3) At(i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	case 2:
		return v.Z
	}
	panic(fmt.Sprintf("dynamo: vector component index %d out of range [0,3)", i))
}

// Set assigns component i. It panics unless 0 <= i < 3.
func (v *Vector3) Set(i int, val float64) {
	switch i {
	case 0:
		v.X = val
	case 1:
		v.Y = val
	case 2:
		v.Z = val
	default:
		panic(fmt.Sprintf("dynamo: vector component index %d out of range [0,3)", i))
	}
}

func (v Vector3) IsValid() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func (v Vector3) String() string {
	return fmt.Sprintf("(%.4g, %.4g, %.4g)", v.X, v.Y, v.Z)
}

// Dims is an integer triple, used for grid resolution.
type Dims struct {
	X, Y, Z int
}

// Volume is the product of the three extents.
func (d Dims) Volume() int {
	return d.X * d.Y * d.Z
}

// At returns component i. It panics unless 0 <= i < 3.
func (d Dims) At(i int) int {
	switch i {
	case 0:
		return d.X
	case 1:
		return d.Y
	case 2:
		return d.Z
	}
	panic(fmt.Sprintf("dynamo: dims component index %d out of range [0,3)", i))
}

// Float converts to a Vector3.
func (d Dims) Float() Vector3 {
	return Vector3{float64(d.X), float64(d.Y), float64(d.Z)}
}
