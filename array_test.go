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
	"errors"
	"math"
	"testing"

	"github.com/kr/pretty"
)

func TestNewGridArray(t *testing.T) {
	a, err := NewGridArray(Float, 2, 3, []float64{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatal(err)
	}
	if r, c := a.Dims(); r != 2 || c != 3 {
		t.Errorf("dims = %dx%d", r, c)
	}
	if a.At(1, 2) != 6 {
		t.Errorf("At(1,2) = %g", a.At(1, 2))
	}
	if s := a.String(); s != "float[2x3]" {
		t.Errorf("String() = %s", s)
	}
	if _, err := NewGridArray(Float, 2, 3, []float64{1, 2}); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("short data: have %v, want ErrShapeMismatch", err)
	}
	if _, err := NewGridArray(Int, 1, 2, []float64{1, 2.5}); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("fractional int: have %v, want ErrTypeMismatch", err)
	}
	if _, err := NewGridArray(Int, 1, 2, []float64{1e19, 1}); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("int beyond 64 bits: have %v, want ErrTypeMismatch", err)
	}
	if _, err := ConstantArray(Int, 1, 2, math.MaxInt32+1); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("int beyond 32 bits: have %v, want ErrTypeMismatch", err)
	}
	if _, err := NewGridArray(Int, 1, 2, []float64{math.MinInt32, math.MaxInt32}); err != nil {
		t.Errorf("32-bit limits: %v", err)
	}
	if _, err := ConstantArray(Float, 0, 3, 1); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("empty shape: have %v, want ErrShapeMismatch", err)
	}
}

func TestSinglePrecision(t *testing.T) {
	a, err := NewGridArray(Float, 1, 1, []float64{0.1})
	if err != nil {
		t.Fatal(err)
	}
	if v := a.At(0, 0); v != float64(float32(0.1)) {
		t.Errorf("have %v, want single precision 0.1", v)
	}
}

func TestGridArrayValues(t *testing.T) {
	a, err := NewGridArray(Int, 2, 2, []float64{1, 2, 2, 1})
	if err != nil {
		t.Fatal(err)
	}
	v := a.Values()
	v[0] = 100
	if a.At(0, 0) != 1 {
		t.Error("Values must return a copy")
	}
	if a.Int(1, 0) != 2 {
		t.Errorf("Int(1,0) = %d", a.Int(1, 0))
	}
	if _, ok := a.Uniform(); ok {
		t.Error("array should not be uniform")
	}
	m := a.Mat()
	if m.At(0, 1) != 2 {
		t.Errorf("Mat().At(0,1) = %g", m.At(0, 1))
	}
}

func TestGridArrayEqual(t *testing.T) {
	a, _ := ConstantArray(Float, 2, 2, 3)
	b, _ := NewGridArray(Float, 2, 2, []float64{3, 3, 3, 3})
	c, _ := ConstantArray(Int, 2, 2, 3)
	d, _ := ConstantArray(Float, 1, 4, 3)
	if !a.Equal(b) {
		t.Error("a and b should be equal")
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("equal arrays should have equal fingerprints")
	}
	for i, o := range []*GridArray{c, d, nil} {
		if a.Equal(o) {
			t.Errorf("%d: arrays should differ", i)
		}
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("arrays of different types should have different fingerprints")
	}
	if v, ok := a.Uniform(); !ok || v != 3 {
		t.Errorf("Uniform() = %v, %v", v, ok)
	}
	if diff := pretty.Diff(a.Values(), b.Values()); len(diff) > 0 {
		t.Error(diff)
	}
}
