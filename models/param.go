package models

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Param is a scalar that is either constant or a function of the normalized
// growth progress n in [0, 1].
type Param struct {
	constant float64
	fn       func(n float64) float64
}

func Constant(v float64) Param {
	return Param{constant: v}
}

func Func(fn func(n float64) float64) Param {
	return Param{fn: fn}
}

// Taper returns a param interpolating linearly from "from" at n=0 to "to" at
// n=1.
func Taper(from, to float64) Param {
	return Func(func(n float64) float64 {
		return from + (to-from)*n
	})
}

func (p Param) IsFunc() bool {
	return p.fn != nil
}

func (p Param) At(n float64) float64 {
	if p.fn != nil {
		return p.fn(n)
	}
	return p.constant
}

// VecParam is a per-axis weight that is either constant or a function of the
// normalized growth progress n in [0, 1].
type VecParam struct {
	constant r3.Vec
	fn       func(n float64) r3.Vec
}

func ConstantVec(v r3.Vec) VecParam {
	return VecParam{constant: v}
}

// UniformVec weights every axis with v.
func UniformVec(v float64) VecParam {
	return ConstantVec(r3.Vec{X: v, Y: v, Z: v})
}

func VecFunc(fn func(n float64) r3.Vec) VecParam {
	return VecParam{fn: fn}
}

// TaperVec interpolates each axis linearly from "from" at n=0 to "to" at n=1.
func TaperVec(from, to r3.Vec) VecParam {
	return VecFunc(func(n float64) r3.Vec {
		return r3.Add(from, r3.Scale(n, r3.Sub(to, from)))
	})
}

func (p VecParam) IsFunc() bool {
	return p.fn != nil
}

func (p VecParam) At(n float64) r3.Vec {
	if p.fn != nil {
		return p.fn(n)
	}
	return p.constant
}

// Profile maps a normalized coordinate in [0, 1] to a shape multiplier.
type Profile func(t float64) float64

func ConstantProfile(v float64) Profile {
	return func(float64) float64 {
		return v
	}
}

func LinearProfile(t float64) float64 {
	return t
}

func PowerProfile(exponent float64) Profile {
	return func(t float64) float64 {
		return math.Pow(t, exponent)
	}
}

// SineProfile is 0 at both ends and 1 in the middle.
func SineProfile(t float64) float64 {
	return math.Sin(t * math.Pi)
}
