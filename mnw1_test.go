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
)

func testMNW1(t *testing.T) (*MNW1, Dis) {
	g := Dis{Nrow: 3, Ncol: 3, Nlay: 2, Nper: 3}
	h := MNW1Header{MXMNW: 5, IWL2CB: 70, NOMOITER: 1, KSPREF: 1, LossType: "skin", Prefix: "wells"}
	aux := []MNWAuxFile{
		{Filename: "wells.wl1", Kind: AuxWEL1, Unit: 71},
		{Filename: "wells.qsum", Kind: AuxQSum, Unit: 72, AllTime: true},
	}
	periods := [][]MNWNode{
		{{Layer: 1, Row: 2, Col: 2, Qdes: -100, Flag: "MN"}, {Layer: 2, Row: 2, Col: 2, Qdes: -50.5, Flag: "MULTI"}},
		nil,
		{},
	}
	m, err := NewMNW1(g, h, aux, periods)
	if err != nil {
		t.Fatal(err)
	}
	return m, g
}

func TestMNW1Write(t *testing.T) {
	m, _ := testMNW1(t)
	var b bytes.Buffer
	if err := m.Write(&b); err != nil {
		t.Fatal(err)
	}
	want := `# Multi-node well 1 (MNW1) file for MODFLOW, generated by mfinput.
         5        70         0         1 REF = 1
SKIN
FILE:wells.wl1 WEL1:        71
FILE:wells.qsum QSUM:        72 ALLTIME
         2 # stress period 1
         1         2         2      -100 MN
         2         2         2     -50.5 MULTI
        -1 # stress period 2
         0 # stress period 3
PREFIX:wells
`
	if b.String() != want {
		t.Errorf("have\n%s\nwant\n%s", b.String(), want)
	}
}

func TestMNW1RoundTrip(t *testing.T) {
	m, g := testMNW1(t)
	var b bytes.Buffer
	if err := m.Write(&b); err != nil {
		t.Fatal(err)
	}
	m2, err := LoadMNW1(&b, g)
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(m2.MNW1Header, m.MNW1Header); len(diff) > 0 {
		t.Error(diff)
	}
	if diff := pretty.Diff(m2.AuxFiles, m.AuxFiles); len(diff) > 0 {
		t.Error(diff)
	}
	for step := 0; step < g.Nper; step++ {
		n1, err := m.Nodes(step)
		if err != nil {
			t.Fatal(err)
		}
		n2, err := m2.Nodes(step)
		if err != nil {
			t.Fatal(err)
		}
		if diff := pretty.Diff(n2, n1); len(diff) > 0 {
			t.Errorf("period %d: %v", step+1, diff)
		}
	}
	if !m2.Reused(1) || m2.Reused(2) {
		t.Error("only period 2 should reuse")
	}
	if n, _ := m2.Nodes(2); len(n) != 0 {
		t.Errorf("period 3 should have no wells, has %d", len(n))
	}

	units := NewMemUnits()
	if err := m2.RegisterOutputs(units, "model"); err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(units.Outputs(), []int{70, 71, 72}); len(diff) > 0 {
		t.Error(diff)
	}
}

func TestLoadMNW1(t *testing.T) {
	g := Dis{Nrow: 2, Ncol: 2, Nlay: 1, Nper: 2}
	const input = `# MNW1 from another program
3 0 0 2 REF:2 # header
linear
FILE:q.byn BYNODE:40 ALLTIME
1
1 1 2 -10.0D0 Rw=0.1
-1
`
	m, err := LoadMNW1(strings.NewReader(input), g)
	if err != nil {
		t.Fatal(err)
	}
	wantHeader := MNW1Header{MXMNW: 3, NOMOITER: 2, KSPREF: 2, LossType: LossLinear}
	if diff := pretty.Diff(m.MNW1Header, wantHeader); len(diff) > 0 {
		t.Error(diff)
	}
	if diff := pretty.Diff(m.AuxFiles, []MNWAuxFile{{Filename: "q.byn", Kind: AuxByNode, Unit: 40, AllTime: true}}); len(diff) > 0 {
		t.Error(diff)
	}
	n, _ := m.Nodes(1)
	if diff := pretty.Diff(n, []MNWNode{{Layer: 1, Row: 1, Col: 2, Qdes: -10}}); len(diff) > 0 {
		t.Error(diff)
	}

	tests := []struct {
		name, input string
		err         error
	}{
		{name: "reuse in first period", input: "3 0 0 1\nSKIN\n-1\n1\n1 1 1 1\n", err: ErrNoPriorArray},
		{name: "missing period", input: "3 0 0 1\nSKIN\n1\n1 1 1 1\n", err: ErrStepCountMismatch},
		{name: "outside grid", input: "3 0 0 1\nSKIN\n1\n1 3 1 1\n-1\n", err: ErrShapeMismatch},
		{name: "short node list", input: "3 0 0 1\nSKIN\n2\n1 1 1 1\n", err: ErrShapeMismatch},
		{name: "short header", input: "3 0\nSKIN\n", err: ErrMalformedControlLine},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := LoadMNW1(strings.NewReader(test.input), g); !errors.Is(err, test.err) {
				t.Errorf("have error %v, want %v", err, test.err)
			}
		})
	}
	if _, err := LoadMNW1(strings.NewReader("1 0 0 1\nSKIN\n2\n1 1 1 1\n1 1 2 1\n-1\n"), g); err == nil {
		t.Error("more nodes than MXMNW should fail")
	}
	if _, err := LoadMNW1(strings.NewReader("1 0 0 1\nTHICK\n0\n-1\n"), g); err == nil {
		t.Error("unknown loss type should fail")
	}
}

func TestMNW1SinglePrecision(t *testing.T) {
	g := Dis{Nrow: 1, Ncol: 1, Nlay: 1, Nper: 1}
	m, err := NewMNW1(g, MNW1Header{MXMNW: 1}, nil, [][]MNWNode{{{Layer: 1, Row: 1, Col: 1, Qdes: -0.1}}})
	if err != nil {
		t.Fatal(err)
	}
	n, _ := m.Nodes(0)
	if n[0].Qdes != float64(float32(-0.1)) {
		t.Errorf("Qdes = %v, want single precision -0.1", n[0].Qdes)
	}
	var b bytes.Buffer
	if err := m.Write(&b); err != nil {
		t.Fatal(err)
	}
	m2, err := LoadMNW1(&b, g)
	if err != nil {
		t.Fatal(err)
	}
	n2, _ := m2.Nodes(0)
	if diff := pretty.Diff(n2, n); len(diff) > 0 {
		t.Error(diff)
	}
}
