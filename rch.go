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

// Quantities of the recharge (RCH) package.
var (
	// RCHRate is the recharge flux (RECH). It may be defined by
	// parameters.
	RCHRate = Quantity{Name: "rech", DType: Float, Parametric: true,
		Dims: unit.Dimensions{unit.LengthDim: 1, unit.TimeDim: -1}}

	// RCHLayer is the layer indicator (IRCH), only used when NRCHOP is 2.
	RCHLayer = Quantity{Name: "irch", DType: Int, Active: func(h []int) bool { return h[0] == 2 }}
)

// RCHSpec is the layout of an RCH package file.
var RCHSpec = &PackageSpec{
	Ftype:       "RCH",
	Heading:     "# RCH package for MODFLOW-2005, generated by mfinput.",
	DefaultUnit: 19,
	Header:      []string{"NRCHOP", "IRCHCB"},
	CBC:         1,
	Quantities:  []Quantity{RCHRate, RCHLayer},
	Comment:     "Recharge array for stress period %d",
}

// RCH is a recharge package.
type RCH struct {
	*ArrayPackage
}

// NewRCH creates an RCH package. nrchop is the recharge option: 1 for
// the top grid layer only, 2 for the layer given by irch, 3 for the
// highest active cell. irch may be nil unless nrchop is 2.
func NewRCH(g Geometry, nrchop, irchcb int, rech, irch *Timeline, params *ParameterTable) (*RCH, error) {
	p, err := NewArrayPackage(RCHSpec, g, []int{nrchop, irchcb}, params, rech, irch)
	if err != nil {
		return nil, err
	}
	return &RCH{p}, nil
}

// LoadRCH reads an RCH package file.
func LoadRCH(r io.Reader, g Geometry, units UnitResolver, opts ...Option) (*RCH, error) {
	p, err := LoadArrayPackage(r, RCHSpec, g, units, opts...)
	if err != nil {
		return nil, err
	}
	return &RCH{p}, nil
}

// NRCHOP returns the recharge option code.
func (r *RCH) NRCHOP() int { return r.header[0] }

// IRCHCB returns the cell-by-cell budget unit, or 0 if budgets are not
// saved.
func (r *RCH) IRCHCB() int { return r.header[1] }
