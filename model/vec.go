package model

import "math"

// Vec is a D-dimensional position or velocity vector. All arithmetic helpers
// assume both operands have the same dimensionality; spaces validate
// dimensions at their boundaries so the helpers do not re-check.
type Vec []float64

// NewVec builds a vector from its components.
func NewVec(vals ...float64) Vec {
	v := make(Vec, len(vals))
	copy(v, vals)
	return v
}

// Clone returns an independent copy of the vector.
func (v Vec) Clone() Vec {
	out := make(Vec, len(v))
	copy(out, v)
	return out
}

// Add returns v + other.
func (v Vec) Add(other Vec) Vec {
	out := make(Vec, len(v))
	for i := range v {
		out[i] = v[i] + other[i]
	}
	return out
}

// Sub returns v - other.
func (v Vec) Sub(other Vec) Vec {
	out := make(Vec, len(v))
	for i := range v {
		out[i] = v[i] - other[i]
	}
	return out
}

// Scale returns v multiplied by a scalar.
func (v Vec) Scale(s float64) Vec {
	out := make(Vec, len(v))
	for i := range v {
		out[i] = v[i] * s
	}
	return out
}

// Dot returns the dot product of two vectors.
func (v Vec) Dot(other Vec) float64 {
	sum := 0.0
	for i := range v {
		sum += v[i] * other[i]
	}
	return sum
}

// Norm returns the Euclidean norm of the vector.
func (v Vec) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// DistanceTo returns the straight-line distance between two points.
func (v Vec) DistanceTo(other Vec) float64 {
	sum := 0.0
	for i := range v {
		d := v[i] - other[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// IsZero reports whether every component is exactly zero.
func (v Vec) IsZero() bool {
	for i := range v {
		if v[i] != 0 {
			return false
		}
	}
	return true
}
