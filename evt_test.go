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
	"bytes"
	"errors"
	"strings"
	"testing"
)

func testEVT(t *testing.T) (*EVT, Dis) {
	g := Dis{Nrow: 2, Ncol: 3, Nlay: 2, Nper: 3}
	s1, _ := NewGridArray(Float, 2, 3, []float64{10, 10.5, 11, 11.25, 12, 100.125})
	s2, _ := NewGridArray(Float, 2, 3, []float64{9, 9, 9, 8, 8, 8})
	surf, err := FromSeries(EVTSurface, []*GridArray{s1, s1, s2})
	if err != nil {
		t.Fatal(err)
	}
	evtr, err := Uniform(EVTRate, g, 0.001)
	if err != nil {
		t.Fatal(err)
	}
	exdp, err := Uniform(EVTExtinctionDepth, g, 2)
	if err != nil {
		t.Fatal(err)
	}
	i1, _ := ConstantArray(Int, 2, 3, 1)
	i2, _ := NewGridArray(Int, 2, 3, []float64{1, 1, 2, 2, 1, 1})
	ievt, err := FromSeries(EVTLayer, []*GridArray{i1, i1, i2})
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewEVT(g, 2, 50, surf, evtr, exdp, ievt, nil)
	if err != nil {
		t.Fatal(err)
	}
	return e, g
}

func TestEVTRoundTrip(t *testing.T) {
	e, g := testEVT(t)
	var b bytes.Buffer
	if err := e.Write(&b, nil); err != nil {
		t.Fatal(err)
	}
	e2, err := LoadEVT(&b, g, nil)
	if err != nil {
		t.Fatal(err)
	}
	if e2.NEVTOP() != 2 || e2.IEVTCB() != 50 {
		t.Errorf("header = %d %d", e2.NEVTOP(), e2.IEVTCB())
	}
	for _, q := range EVTSpec.Quantities {
		t1, t2 := e.Timeline(q.Name), e2.Timeline(q.Name)
		for step := 0; step < g.Nper; step++ {
			if t1.Code(step) != t2.Code(step) {
				t.Errorf("%s period %d: code %d, want %d", q.Name, step+1, t2.Code(step), t1.Code(step))
			}
			a1, err := t1.Resolved(step)
			if err != nil {
				t.Fatal(err)
			}
			a2, err := t2.Resolved(step)
			if err != nil {
				t.Fatal(err)
			}
			if !a1.Equal(a2) {
				t.Errorf("%s period %d: have %v, want %v", q.Name, step+1, a2.Values(), a1.Values())
			}
		}
	}
	a1, _ := e2.ResolvedArray("surf", 0)
	a2, _ := e2.ResolvedArray("SURF", 1)
	if a1 != a2 {
		t.Error("reused period should share its array")
	}

	units := NewMemUnits()
	if err := e2.RegisterOutputs(units, "model"); err != nil {
		t.Fatal(err)
	}
	if f, ok := units.Output(50); !ok || f != "model.cbc" {
		t.Errorf("budget output = %q, %v", f, ok)
	}
}

func TestEVTGatedLayer(t *testing.T) {
	g := Dis{Nrow: 1, Ncol: 2, Nlay: 1, Nper: 2}
	const input = `# written by another program
         1         0
         1         1         1 # period 1
CONSTANT 10.0
CONSTANT 0.001
CONSTANT 2.0
        -1        -1        -1
`
	e, err := LoadEVT(strings.NewReader(input), g, nil)
	if err != nil {
		t.Fatal(err)
	}
	if e.Active("ievt") {
		t.Error("ievt should not be active")
	}
	if e.Timeline("ievt") != nil {
		t.Error("ievt should have no timeline")
	}
	if _, err := e.ResolvedArray("ievt", 0); err == nil {
		t.Error("resolving an inactive quantity should fail")
	}
	a, err := e.ResolvedArray("exdp", 1)
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := a.Uniform(); !ok || v != 2 {
		t.Errorf("exdp = %v", a.Values())
	}

	var b bytes.Buffer
	if err := e.Write(&b, nil); err != nil {
		t.Fatal(err)
	}
	want := EncodeControl([]int{-1, -1, -1, -1}, "Evapotranspiration dataset 5 for stress period 2")
	lines := strings.Split(b.String(), "\n")
	if lines[len(lines)-2] != want {
		t.Errorf("last control record = %q, want %q", lines[len(lines)-2], want)
	}
	if !strings.HasPrefix(lines[2], EncodeControl([]int{1, 1, 1, -1}, "")) {
		t.Errorf("first control record = %q", lines[2])
	}
}

func TestEVTGatedLayerCode(t *testing.T) {
	g := Dis{Nrow: 1, Ncol: 2, Nlay: 1, Nper: 2}
	const input = `         1         0
         1         1         1         1
CONSTANT 10.0
CONSTANT 0.001
CONSTANT 2.0
        -1         1        -1         5
CONSTANT 0.002
`
	e, err := LoadEVT(strings.NewReader(input), g, nil)
	if err != nil {
		t.Fatal(err)
	}
	if e.Active("ievt") {
		t.Error("ievt should not be active")
	}
	surf, err := e.ResolvedArray("surf", 1)
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := surf.Uniform(); !ok || v != 10 {
		t.Errorf("surf = %v", surf.Values())
	}
	evtr, err := e.ResolvedArray("evtr", 1)
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := evtr.Uniform(); !ok || v != float64(float32(0.002)) {
		t.Errorf("evtr = %v", evtr.Values())
	}
	if code := e.Timeline("evtr").Code(1); code != 1 {
		t.Errorf("evtr code in period 2 = %d, want 1", code)
	}
}

func TestLoadEVTErrors(t *testing.T) {
	g := Dis{Nrow: 1, Ncol: 2, Nlay: 1, Nper: 2}
	tests := []struct {
		name, input string
		err         error
	}{
		{
			name:  "reuse in first period",
			input: "1 0\n-1 1 1\nCONSTANT 1\nCONSTANT 1\n-1 -1 -1\n",
			err:   ErrNoPriorArray,
		},
		{
			name:  "short control record",
			input: "1 0\n1 1\nCONSTANT 1\nCONSTANT 1\n",
			err:   ErrMalformedControlLine,
		},
		{
			name:  "missing period",
			input: "1 0\n0 0 0\nCONSTANT 1\nCONSTANT 1\nCONSTANT 1\n",
			err:   ErrStepCountMismatch,
		},
		{
			name:  "empty file",
			input: "# nothing here\n",
			err:   ErrMalformedControlLine,
		},
		{
			name:  "wrong constant count",
			input: "1 0\n1 1 1\nCONSTANT 1 3\n",
			err:   ErrShapeMismatch,
		},
		{
			name:  "truncated array",
			input: "1 0\n1 1 1\nINTERNAL 1.0 (FREE) -1\n1\n",
			err:   ErrShapeMismatch,
		},
		{
			name:  "layer array with a fraction",
			input: "2 0\n1 1 1 1\nCONSTANT 1\nCONSTANT 1\nCONSTANT 1\nINTERNAL 1 (FREE) -1\n1 1.5\n",
			err:   ErrTypeMismatch,
		},
		{
			name:  "unresolved unit",
			input: "1 0\n1 1 1\nEXTERNAL 40 1.0 (FREE) -1\n",
			err:   ErrUnresolvedUnit,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			e, err := LoadEVT(strings.NewReader(test.input), g, nil)
			if !errors.Is(err, test.err) {
				t.Errorf("have error %v, want %v", err, test.err)
			}
			if e != nil {
				t.Error("a failed load should return no package")
			}
		})
	}
}

func TestNewEVTErrors(t *testing.T) {
	g := Dis{Nrow: 1, Ncol: 2, Nlay: 1, Nper: 2}
	surf, _ := Uniform(EVTSurface, g, 10)
	evtr, _ := Uniform(EVTRate, g, 0.001)
	exdp, _ := Uniform(EVTExtinctionDepth, g, 2)
	if _, err := NewEVT(g, 2, 0, surf, evtr, exdp, nil, nil); err == nil {
		t.Error("NEVTOP 2 without a layer array should fail")
	}
	if _, err := NewEVT(g, 1, 0, surf, evtr, exdp, nil, nil); err != nil {
		t.Errorf("NEVTOP 1 without a layer array: %v", err)
	}
	late := NewTimeline(EVTSurface, 2)
	a, _ := ConstantArray(Float, 1, 2, 10)
	late.Supply(1, a)
	if _, err := NewEVT(g, 1, 0, late, evtr, exdp, nil, nil); !errors.Is(err, ErrNoPriorArray) {
		t.Errorf("have %v, want ErrNoPriorArray", err)
	}
	short, _ := Uniform(EVTExtinctionDepth, Dis{Nrow: 1, Ncol: 2, Nlay: 1, Nper: 1}, 2)
	if _, err := NewEVT(g, 1, 0, surf, evtr, short, nil, nil); !errors.Is(err, ErrStepCountMismatch) {
		t.Errorf("have %v, want ErrStepCountMismatch", err)
	}
}
