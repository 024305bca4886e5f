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
	"io"

	"github.com/ctessum/unit"
)

// Quantities of the evapotranspiration (EVT) package.
var (
	// EVTSurface is the ET surface elevation (SURF).
	EVTSurface = Quantity{Name: "surf", DType: Float, Dims: unit.Dimensions{unit.LengthDim: 1}}

	// EVTRate is the maximum ET flux (EVTR). It may be defined by
	// parameters.
	EVTRate = Quantity{Name: "evtr", DType: Float, Parametric: true,
		Dims: unit.Dimensions{unit.LengthDim: 1, unit.TimeDim: -1}}

	// EVTExtinctionDepth is the ET extinction depth (EXDP).
	EVTExtinctionDepth = Quantity{Name: "exdp", DType: Float, Dims: unit.Dimensions{unit.LengthDim: 1}}

	// EVTLayer is the layer indicator (IEVT), only used when NEVTOP is 2.
	EVTLayer = Quantity{Name: "ievt", DType: Int, Active: func(h []int) bool { return h[0] == 2 }}
)

// EVTSpec is the layout of an EVT package file.
var EVTSpec = &PackageSpec{
	Ftype:       "EVT",
	Heading:     "# EVT package for MODFLOW-2005, generated by mfinput.",
	DefaultUnit: 22,
	Header:      []string{"NEVTOP", "IEVTCB"},
	CBC:         1,
	Quantities:  []Quantity{EVTSurface, EVTRate, EVTExtinctionDepth, EVTLayer},
	Comment:     "Evapotranspiration dataset 5 for stress period %d",
}

// EVT is an evapotranspiration package.
type EVT struct {
	*ArrayPackage
}

// NewEVT creates an EVT package. nevtop is the ET option: 1 for the top
// grid layer only, 2 for the layer given by ievt, 3 for the highest
// active cell. ievt may be nil unless nevtop is 2, and params may be
// nil if evtr is not defined by parameters.
func NewEVT(g Geometry, nevtop, ievtcb int, surf, evtr, exdp, ievt *Timeline, params *ParameterTable) (*EVT, error) {
	p, err := NewArrayPackage(EVTSpec, g, []int{nevtop, ievtcb}, params, surf, evtr, exdp, ievt)
	if err != nil {
		return nil, err
	}
	return &EVT{p}, nil
}

// LoadEVT reads an EVT package file.
func LoadEVT(r io.Reader, g Geometry, units UnitResolver, opts ...Option) (*EVT, error) {
	p, err := LoadArrayPackage(r, EVTSpec, g, units, opts...)
	if err != nil {
		return nil, err
	}
	return &EVT{p}, nil
}

// NEVTOP returns the ET option code.
func (e *EVT) NEVTOP() int { return e.header[0] }

// IEVTCB returns the cell-by-cell budget unit, or 0 if budgets are not
// saved.
func (e *EVT) IEVTCB() int { return e.header[1] }
