package core

import (
	"fmt"

	"github.com/signalsfoundry/agentspace/model"
)

// SpatialField maps a continuous coordinate to a property value. Fields are
// supplied by the simulation and only read by the engine; they may be
// discretized arrays of lower dimensionality than the space, or plain
// functions of position.
type SpatialField[T any] interface {
	ValueAt(pos model.Vec, s *ContinuousSpace) (T, error)
}

// ArrayField is a discretized field: a row-major value array over Dims
// cells, covering the leading len(Dims) axes of the space extent.
type ArrayField[T any] struct {
	values  []T
	dims    []int
	strides []int
}

// NewArrayField validates that the value count matches the grid dimensions.
func NewArrayField[T any](values []T, dims []int) (*ArrayField[T], error) {
	n := 1
	strides := make([]int, len(dims))
	for i, d := range dims {
		if d < 1 {
			return nil, fmt.Errorf("%w: field dimension %d", ErrBadExtent, d)
		}
		strides[i] = n
		n *= d
	}
	if len(values) != n {
		return nil, fmt.Errorf("%w: %d values for %v grid", ErrDimensionMismatch, len(values), dims)
	}
	return &ArrayField[T]{values: values, dims: dims, strides: strides}, nil
}

// Dims returns the field's grid dimensions.
func (f *ArrayField[T]) Dims() []int { return append([]int(nil), f.dims...) }

// At returns the value stored at a 1-based field index.
func (f *ArrayField[T]) At(idx []int) T {
	lin := 0
	for i, c := range idx {
		lin += (c - 1) * f.strides[i]
	}
	return f.values[lin]
}

// ValueAt resolves the field cell containing pos. Implements SpatialField.
func (f *ArrayField[T]) ValueAt(pos model.Vec, s *ContinuousSpace) (T, error) {
	idx, err := GetSpatialIndex(pos, f.dims, s)
	if err != nil {
		var zero T
		return zero, err
	}
	return f.At(idx), nil
}

// FieldFunc adapts a plain function of position into a SpatialField.
type FieldFunc[T any] func(pos model.Vec) T

// ValueAt invokes the function directly. Implements SpatialField.
func (f FieldFunc[T]) ValueAt(pos model.Vec, _ *ContinuousSpace) (T, error) {
	return f(pos), nil
}

// GetSpatialIndex maps a coordinate to the 1-based index of the field cell
// containing it, for a discretized field of the given dimensions. The field
// covers the leading len(dims) axes of the space: each axis is split into
// dims[i] cells of width extent[i]/dims[i], and the index along it is
// floor(coord/width)+1.
func GetSpatialIndex(pos model.Vec, dims []int, s *ContinuousSpace) ([]int, error) {
	if len(dims) > len(s.extent) || len(pos) != len(s.extent) {
		return nil, fmt.Errorf("%w: field has %d axes, space has %d", ErrDimensionMismatch, len(dims), len(s.extent))
	}
	idx := make([]int, len(dims))
	for i, d := range dims {
		width := s.extent[i] / float64(d)
		c := int(pos[i]/width) + 1
		if c > d {
			c = d
		}
		if c < 1 {
			c = 1
		}
		idx[i] = c
	}
	return idx, nil
}

// GetSpatialProperty evaluates a field at a coordinate.
func GetSpatialProperty[T any](pos model.Vec, field SpatialField[T], s *ContinuousSpace) (T, error) {
	return field.ValueAt(pos, s)
}
