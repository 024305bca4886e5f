/*
Copyright © 2018 the InMAP authors.
This file is part of mfinput.

mfinput is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

mfinput is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with mfinput.  If not, see <http://www.gnu.org/licenses/>.
*/

package mfinput

import (
	"fmt"
	"math"

	"github.com/ctessum/sparse"
	"github.com/spatialmodel/mfinput/internal/hash"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DType is the element type of a GridArray.
type DType int

const (
	// Float arrays hold single-precision physical quantities.
	Float DType = iota
	// Int arrays hold indicator values such as layer numbers.
	Int
)

func (d DType) String() string {
	switch d {
	case Float:
		return "float"
	case Int:
		return "int"
	default:
		return fmt.Sprintf("DType(%d)", int(d))
	}
}

// GridArray is a dense two-dimensional array over the model grid.
// GridArrays are never modified after they are created, so several
// stress periods can share one array.
type GridArray struct {
	dtype DType
	data  *sparse.DenseArray
}

// NewGridArray returns a rows x cols array holding vals in row-major
// order. Float values are rounded to single precision; Int values must
// be integral and fit in 32 bits.
func NewGridArray(dtype DType, rows, cols int, vals []float64) (*GridArray, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("mfinput: invalid array shape %dx%d: %w", rows, cols, ErrShapeMismatch)
	}
	if len(vals) != rows*cols {
		return nil, fmt.Errorf("mfinput: %d values for a %dx%d array: %w", len(vals), rows, cols, ErrShapeMismatch)
	}
	a := &GridArray{dtype: dtype, data: sparse.ZerosDense(rows, cols)}
	for i, v := range vals {
		nv, err := normalize(dtype, v)
		if err != nil {
			return nil, err
		}
		a.data.Elements[i] = nv
	}
	return a, nil
}

// ConstantArray returns a rows x cols array with every cell set to v.
func ConstantArray(dtype DType, rows, cols int, v float64) (*GridArray, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("mfinput: invalid array shape %dx%d: %w", rows, cols, ErrShapeMismatch)
	}
	nv, err := normalize(dtype, v)
	if err != nil {
		return nil, err
	}
	a := &GridArray{dtype: dtype, data: sparse.ZerosDense(rows, cols)}
	for i := range a.data.Elements {
		a.data.Elements[i] = nv
	}
	return a, nil
}

func normalize(dtype DType, v float64) (float64, error) {
	switch dtype {
	case Float:
		return float64(float32(v)), nil
	case Int:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("mfinput: %g is not an integer: %w", v, ErrTypeMismatch)
		}
		if v < math.MinInt32 || v > math.MaxInt32 {
			return 0, fmt.Errorf("mfinput: %g is outside the 32-bit integer range: %w", v, ErrTypeMismatch)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("mfinput: invalid element type %v: %w", dtype, ErrTypeMismatch)
	}
}

// DType returns the element type of the array.
func (a *GridArray) DType() DType { return a.dtype }

// Dims returns the number of rows and columns in the array.
func (a *GridArray) Dims() (rows, cols int) {
	return a.data.Shape[0], a.data.Shape[1]
}

// At returns the value at row i, column j (both zero-based).
func (a *GridArray) At(i, j int) float64 {
	return a.data.Get(i, j)
}

// Int returns the value at row i, column j as an integer.
func (a *GridArray) Int(i, j int) int {
	return int(a.data.Get(i, j))
}

// Values returns a copy of the array values in row-major order.
func (a *GridArray) Values() []float64 {
	o := make([]float64, len(a.data.Elements))
	copy(o, a.data.Elements)
	return o
}

// Uniform returns the value of every cell and true if all cells
// hold the same value.
func (a *GridArray) Uniform() (float64, bool) {
	e := a.data.Elements
	for _, v := range e[1:] {
		if v != e[0] {
			return 0, false
		}
	}
	return e[0], true
}

// Equal returns whether b has the same type, shape and values as a.
func (a *GridArray) Equal(b *GridArray) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.dtype != b.dtype {
		return false
	}
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return false
	}
	return floats.Equal(a.data.Elements, b.data.Elements)
}

// Mat returns a copy of the array as a gonum matrix.
func (a *GridArray) Mat() *mat.Dense {
	rows, cols := a.Dims()
	return mat.NewDense(rows, cols, a.Values())
}

// Fingerprint returns a hash of the array type, shape and values.
// Equal arrays have equal fingerprints.
func (a *GridArray) Fingerprint() string {
	rows, cols := a.Dims()
	return hash.Hash(struct {
		DType      int
		Rows, Cols int
		Values     []float64
	}{int(a.dtype), rows, cols, a.data.Elements})
}

func (a *GridArray) String() string {
	rows, cols := a.Dims()
	return fmt.Sprintf("%v[%dx%d]", a.dtype, rows, cols)
}
