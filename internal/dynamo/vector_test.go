package dynamo

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVector3_Arithmetic(t *testing.T) {
	a := Vector3{1, 2, 3}
	b := Vector3{4, 5, 6}

	assert.Equal(t, Vector3{5, 7, 9}, a.Add(b))
	assert.Equal(t, Vector3{3, 3, 3}, b.Sub(a))
	assert.Equal(t, Vector3{2, 4, 6}, a.Mul(2))
	assert.Equal(t, Vector3{2, 2.5, 3}, b.Div(2))
	assert.Equal(t, Vector3{4, 10, 18}, a.MulElem(b))
}

func TestVector3_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 200; i++ {
		a := Vector3{rng.NormFloat64() * 100, rng.NormFloat64() * 100, rng.NormFloat64() * 100}
		b := Vector3{rng.NormFloat64() * 100, rng.NormFloat64() * 100, rng.NormFloat64() * 100}
		s := rng.Float64()*10 + 0.1

		got := a.Add(b).Sub(b)
		assert.InDelta(t, a.X, got.X, 1e-9)
		assert.InDelta(t, a.Y, got.Y, 1e-9)
		assert.InDelta(t, a.Z, got.Z, 1e-9)

		got = a.Mul(s).Div(s)
		assert.InDelta(t, a.X, got.X, 1e-9)
		assert.InDelta(t, a.Y, got.Y, 1e-9)
		assert.InDelta(t, a.Z, got.Z, 1e-9)
	}
}

func TestVector3_Norm(t *testing.T) {
	assert.Equal(t, 5.0, Vector3{3, 4, 0}.Norm())
	assert.Equal(t, 0.0, Vector3{}.Norm())

	v := Vector3{1.5, -2.25, 7}
	assert.InDelta(t, v.Norm()*v.Norm(), v.NormSquared(), 1e-12)
}

func TestVector3_InPlace(t *testing.T) {
	v := Vector3{1, 1, 1}
	v.AddAssign(Vector3{1, 2, 3})
	assert.Equal(t, Vector3{2, 3, 4}, v)

	v.SubAssign(Vector3{1, 1, 1})
	assert.Equal(t, Vector3{1, 2, 3}, v)

	v.MulAssign(3)
	assert.Equal(t, Vector3{3, 6, 9}, v)

	v.DivAssign(3)
	assert.Equal(t, Vector3{1, 2, 3}, v)

	v.AddScaled(Vector3{1, 0, -1}, 2)
	assert.Equal(t, Vector3{3, 2, 1}, v)
}

func TestVector3_Normalize(t *testing.T) {
	n := Vector3{0, 3, 4}.Normalize()
	assert.InDelta(t, 1.0, n.Norm(), 1e-12)
	assert.Equal(t, Vector3{}, Vector3{}.Normalize())
}

func TestVector3_Index(t *testing.T) {
	v := Vector3{1, 2, 3}
	for i, want := range []float64{1, 2, 3} {
		assert.Equal(t, want, v.At(i))
	}
	v.Set(2, 9)
	assert.Equal(t, 9.0, v.Z)

	assert.Panics(t, func() { v.At(3) })
	assert.Panics(t, func() { v.At(-1) })
	assert.Panics(t, func() { v.Set(3, 0) })
	assert.Panics(t, func() { Dims{1, 2, 3}.At(5) })
}

func TestVector3_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		v     Vector3
		valid bool
	}{
		{"zero", Vector3{}, true},
		{"normal", Vector3{1, -2, 3}, true},
		{"nan", Vector3{math.NaN(), 0, 0}, false},
		{"+inf", Vector3{0, math.Inf(1), 0}, false},
		{"-inf", Vector3{0, 0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.v.IsValid())
		})
	}
}
