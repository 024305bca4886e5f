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

	"github.com/kr/pretty"
	"gonum.org/v1/gonum/floats"
)

func TestRCHWrite(t *testing.T) {
	g := Dis{Nrow: 1, Ncol: 2, Nlay: 1, Nper: 2}
	rech, err := Uniform(RCHRate, g, 0.001)
	if err != nil {
		t.Fatal(err)
	}
	r, err := NewRCH(g, 3, 50, rech, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	if err := r.Write(&b, nil); err != nil {
		t.Fatal(err)
	}
	want := `# RCH package for MODFLOW-2005, generated by mfinput.
         3        50
         1        -1 # Recharge array for stress period 1
CONSTANT     0.001         2
        -1        -1 # Recharge array for stress period 2
`
	if b.String() != want {
		t.Errorf("have\n%s\nwant\n%s", b.String(), want)
	}
	if r.NRCHOP() != 3 || r.IRCHCB() != 50 {
		t.Errorf("header = %d %d", r.NRCHOP(), r.IRCHCB())
	}
}

const testRCHParams = `# RCH with parameters
PARAMETER  2
         3         0
RECH_A     RCH  0.001 1
NONE       ALL
RECH_B     RCH  0.002 1 INSTANCES 2
wet
NONE       zones      1
dry
NONE       zones      2
         2 # period 1
RECH_A
RECH_B wet
        -1 # period 2
         1 # period 3
RECH_B dry
`

func TestRCHParameters(t *testing.T) {
	g := Dis{Nrow: 2, Ncol: 2, Nlay: 1, Nper: 3}
	zm := testZones(t)
	r, err := LoadRCH(strings.NewReader(testRCHParams), g, nil, WithZoneMult(zm))
	if err != nil {
		t.Fatal(err)
	}
	if r.Parameters().Len() != 2 {
		t.Fatalf("%d parameters, want 2", r.Parameters().Len())
	}
	wants := [][]float64{
		{0.003, 0.001, 0.001, 0.003},
		{0.003, 0.001, 0.001, 0.003},
		{0, 0.002, 0.002, 0},
	}
	for i, want := range wants {
		a, err := r.ResolvedArray("rech", i)
		if err != nil {
			t.Fatal(err)
		}
		if !floats.EqualApprox(a.Values(), want, 1e-9) {
			t.Errorf("period %d: have %v, want %v", i+1, a.Values(), want)
		}
	}
	tl := r.Timeline("rech")
	if diff := pretty.Diff(tl.Supplied(0).Params, []ParamRef{{Name: "RECH_A"}, {Name: "RECH_B", Instance: "wet"}}); len(diff) > 0 {
		t.Error(diff)
	}

	var b bytes.Buffer
	if err := r.Write(&b, nil); err != nil {
		t.Fatal(err)
	}
	r2, err := LoadRCH(&b, g, nil, WithZoneMult(zm))
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(r2.Parameters().Parameters(), r.Parameters().Parameters()); len(diff) > 0 {
		t.Error(diff)
	}
	tl2 := r2.Timeline("rech")
	for i := 0; i < 3; i++ {
		if tl.Code(i) != tl2.Code(i) {
			t.Errorf("period %d: code %d, want %d", i+1, tl2.Code(i), tl.Code(i))
		}
		if diff := pretty.Diff(tl2.Supplied(i), tl.Supplied(i)); len(diff) > 0 {
			t.Errorf("period %d: %v", i+1, diff)
		}
	}
}

func TestRCHParameterErrors(t *testing.T) {
	g := Dis{Nrow: 2, Ncol: 2, Nlay: 1, Nper: 3}
	zm := testZones(t)
	unknown := strings.Replace(testRCHParams, "RECH_B dry", "RECH_C", 1)
	if _, err := LoadRCH(strings.NewReader(unknown), g, nil, WithZoneMult(zm)); !errors.Is(err, ErrUnknownParameter) {
		t.Errorf("unknown parameter: have %v, want ErrUnknownParameter", err)
	}
	short := strings.Replace(testRCHParams, "         1 # period 3\nRECH_B dry\n", "         2 # period 3\nRECH_B dry\n", 1)
	if _, err := LoadRCH(strings.NewReader(short), g, nil, WithZoneMult(zm)); !errors.Is(err, ErrParameterCountMismatch) {
		t.Errorf("missing parameter record: have %v, want ErrParameterCountMismatch", err)
	}
	fewer := strings.Replace(testRCHParams, "PARAMETER  2", "PARAMETER  3", 1)
	if _, err := LoadRCH(strings.NewReader(fewer), g, nil, WithZoneMult(zm)); err == nil {
		t.Error("declaring more parameters than defined should fail")
	}

	table, err := LoadParameters(strings.NewReader(testParams), 2, zm)
	if err != nil {
		t.Fatal(err)
	}
	rech, _ := Uniform(RCHRate, g, 0.001)
	if _, err := NewRCH(g, 3, 0, rech, nil, table); !errors.Is(err, ErrParameterCountMismatch) {
		t.Errorf("array in parameter mode: have %v, want ErrParameterCountMismatch", err)
	}
	pt := NewTimeline(RCHRate, 3)
	if err := pt.SupplyParameters(0, table, 2, 2, ParamRef{Name: "RECH_A"}); err != nil {
		t.Fatal(err)
	}
	if _, err := NewRCH(g, 3, 0, pt, nil, table); err != nil {
		t.Error(err)
	}
	if err := pt.SupplyParameters(1, table, 2, 2, ParamRef{Name: "nope"}); !errors.Is(err, ErrUnknownParameter) {
		t.Errorf("have %v, want ErrUnknownParameter", err)
	}
	irch := NewTimeline(RCHLayer, 3)
	if err := irch.SupplyParameters(0, table, 2, 2, ParamRef{Name: "RECH_A"}); err == nil {
		t.Error("irch cannot be defined by parameters")
	}
}

func TestRCHExternal(t *testing.T) {
	g := Dis{Nrow: 2, Ncol: 2, Nlay: 1, Nper: 3}
	a, _ := NewGridArray(Float, 2, 2, []float64{0.001, 0.002, 0.003, 0.004})
	b, _ := NewGridArray(Float, 2, 2, []float64{0.005, 0.006, 0.007, 0.008})
	ref := ExternalRef{Unit: 60, Filename: "rech.dat"}
	rech := NewTimeline(RCHRate, 3)
	if err := rech.SupplyExternal(0, a, ref); err != nil {
		t.Fatal(err)
	}
	if err := rech.SupplyExternal(2, b, ref); err != nil {
		t.Fatal(err)
	}
	layer, _ := Uniform(RCHLayer, g, 1)
	r, err := NewRCH(g, 2, 0, rech, layer, nil)
	if err != nil {
		t.Fatal(err)
	}
	units := NewMemUnits()
	var buf bytes.Buffer
	if err := r.Write(&buf, units); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(buf.String(), "EXTERNAL"); n != 2 {
		t.Errorf("%d EXTERNAL records, want 2", n)
	}
	r2, err := LoadRCH(&buf, g, units)
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []*GridArray{a, a, b} {
		have, err := r2.ResolvedArray("rech", i)
		if err != nil {
			t.Fatal(err)
		}
		if !have.Equal(want) {
			t.Errorf("period %d: have %v, want %v", i+1, have.Values(), want.Values())
		}
	}
	if diff := pretty.Diff(r2.Timeline("rech").Supplied(2).External, &ref); len(diff) > 0 {
		t.Error(diff)
	}
	if err := r2.RegisterOutputs(units, "model"); err != nil {
		t.Fatal(err)
	}
	if len(units.Outputs()) != 0 {
		t.Errorf("no budget file should be registered, have %v", units.Outputs())
	}
}
