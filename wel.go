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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WELFtype is the name file type of the well package.
const WELFtype = "WEL"

// WELDefaultUnit is the file unit conventionally used for the well
// package.
const WELDefaultUnit = 20

const welHeading = "# WEL package for MODFLOW-2005, generated by mfinput."

// Well is one well cell in a stress period. Layer, Row and Col are
// one-based.
type Well struct {
	Layer, Row, Col int

	// Flux is the volumetric rate into the cell; pumping is negative.
	Flux float64

	// Aux holds one value for each auxiliary variable of the package.
	Aux []float64
}

// WELHeader holds the settings of a WEL package.
type WELHeader struct {
	// IWELCB is the cell-by-cell budget unit.
	IWELCB int

	// Aux names the auxiliary variables given for each well.
	Aux []string

	// NoPrint suppresses the listing of wells.
	NoPrint bool

	// Specify enables the reduction of pumping in drying cells, with
	// fraction PhiRamp. Reduced rates are written to PhiRampUnit.
	Specify     bool
	PhiRamp     float64
	PhiRampUnit int
}

// WEL is a well package. A stress period without a well list reuses the
// previous period's list.
type WEL struct {
	WELHeader

	periods *stressList[Well]
}

// NewWEL creates a WEL package. periods holds the well list for each
// stress period; a nil entry reuses the previous list. Rates, auxiliary
// values and PhiRamp are held in single precision.
func NewWEL(g Geometry, h WELHeader, periods [][]Well) (*WEL, error) {
	_, _, _, nper := g.Dims()
	h.Aux = append([]string(nil), h.Aux...)
	h.PhiRamp = float64(float32(h.PhiRamp))
	narrowed := make([][]Well, len(periods))
	for i, wells := range periods {
		if wells == nil {
			continue
		}
		narrowed[i] = make([]Well, len(wells))
		for j, w := range wells {
			w.Flux = float64(float32(w.Flux))
			if len(w.Aux) > 0 {
				aux := make([]float64, len(w.Aux))
				for k, v := range w.Aux {
					aux[k] = float64(float32(v))
				}
				w.Aux = aux
			}
			narrowed[i][j] = w
		}
	}
	l, err := newStressList(WELFtype, nper, narrowed, func(step int, wells []Well) error {
		for _, w := range wells {
			if err := checkCell(g, WELFtype, step, w.Layer, w.Row, w.Col); err != nil {
				return err
			}
			if len(w.Aux) != len(h.Aux) {
				return fmt.Errorf("mfinput: WEL stress period %d: well (%d,%d,%d) has %d auxiliary values, want %d: %w",
					step+1, w.Layer, w.Row, w.Col, len(w.Aux), len(h.Aux), ErrShapeMismatch)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &WEL{WELHeader: h, periods: l}, nil
}

// MXACT returns the largest number of wells in any stress period.
func (w *WEL) MXACT() int { return w.periods.maxLen() }

// NSteps returns the number of stress periods.
func (w *WEL) NSteps() int { return w.periods.nsteps() }

// Wells returns the well list in effect during a zero-based stress
// period. The returned slice must not be modified.
func (w *WEL) Wells(step int) ([]Well, error) { return w.periods.at(step) }

// Reused reports whether a stress period reuses the previous well list.
func (w *WEL) Reused(step int) bool { return w.periods.reused(step) }

// RegisterOutputs registers the budget file as base + ".cbc".
func (w *WEL) RegisterOutputs(reg OutputRegistry, base string) error {
	if w.IWELCB > 0 {
		return reg.RegisterOutput(w.IWELCB, base+".cbc")
	}
	return nil
}

// Write writes the package file.
func (w *WEL) Write(wr io.Writer) error {
	bw := bufio.NewWriter(wr)
	fmt.Fprintln(bw, welHeading)
	header := EncodeControl([]int{w.MXACT(), w.IWELCB}, "")
	for _, a := range w.Aux {
		header += " AUX " + a
	}
	if w.NoPrint {
		header += " NOPRINT"
	}
	fmt.Fprintln(bw, header)
	if w.Specify {
		fmt.Fprintf(bw, "SPECIFY%s%10d\n", formatField(Float, w.PhiRamp), w.PhiRampUnit)
	}
	for i := 0; i < w.periods.nsteps(); i++ {
		fmt.Fprintln(bw, EncodeControl([]int{w.periods.itmp(i), 0}, fmt.Sprintf("stress period %d", i+1)))
		if w.periods.reused(i) {
			continue
		}
		for _, well := range w.periods.supplied[i] {
			line := fmt.Sprintf("%10d%10d%10d%s", well.Layer, well.Row, well.Col, formatField(Float, well.Flux))
			for _, v := range well.Aux {
				line += formatField(Float, v)
			}
			fmt.Fprintln(bw, line)
		}
	}
	return bw.Flush()
}

// LoadWEL reads a WEL package file. Parameters are not supported.
func LoadWEL(r io.Reader, g Geometry, opts ...Option) (*WEL, error) {
	o := newOptions(opts)
	log := o.log.WithField("package", WELFtype)
	lr := newLineReader(r, o.name)
	for lr.peekComment() {
		if _, err := lr.next(); err != nil {
			return nil, err
		}
	}
	line, err := lr.next()
	if err != nil {
		return nil, fmt.Errorf("mfinput: WEL: missing header record: %w", ErrMalformedControlLine)
	}
	if tok := fields(stripComment(line)); len(tok) > 1 && strings.EqualFold(tok[0], "PARAMETER") {
		if np, err := strconv.Atoi(tok[1]); err != nil || np != 0 {
			return nil, fmt.Errorf("mfinput: %s: WEL parameters are not supported: %w", lr.where(), ErrParameterCountMismatch)
		}
		if line, err = lr.next(); err != nil {
			return nil, fmt.Errorf("mfinput: WEL: missing header record: %w", ErrMalformedControlLine)
		}
	}
	hv, err := DecodeControl(line, 2)
	if err != nil {
		return nil, fmt.Errorf("mfinput: WEL header: %w", err)
	}
	mxact := hv[0]
	h := WELHeader{IWELCB: hv[1]}
	if err := parseWELOptions(&h, fields(stripComment(line))[len(hv):]); err != nil {
		return nil, fmt.Errorf("mfinput: %s: %v", lr.where(), err)
	}

	line, err = lr.next()
	if err == nil {
		if tok := fields(stripComment(line)); len(tok) > 0 && strings.EqualFold(tok[0], "SPECIFY") {
			if err := parseWELOptions(&h, tok); err != nil {
				return nil, fmt.Errorf("mfinput: %s: %v", lr.where(), err)
			}
		} else {
			lr.unread(line)
		}
	}

	_, _, _, nper := g.Dims()
	naux := len(h.Aux)
	periods, err := readStressLists(lr, WELFtype, nper, log, func(line string) (Well, error) {
		return parseWell(line, naux)
	})
	if err != nil {
		return nil, err
	}
	for i, wells := range periods {
		if len(wells) > mxact {
			return nil, fmt.Errorf("mfinput: WEL stress period %d: %d wells exceeds MXACT %d", i+1, len(wells), mxact)
		}
	}
	return NewWEL(g, h, periods)
}

// parseWELOptions parses the option keywords of the header record and
// the SPECIFY record.
func parseWELOptions(h *WELHeader, tok []string) error {
	for i := 0; i < len(tok); i++ {
		switch strings.ToUpper(tok[i]) {
		case "AUX", "AUXILIARY":
			if i+1 >= len(tok) {
				return fmt.Errorf("AUXILIARY option without a name")
			}
			h.Aux = append(h.Aux, tok[i+1])
			i++
		case "NOPRINT":
			h.NoPrint = true
		case "SPECIFY":
			if i+2 >= len(tok) {
				return fmt.Errorf("SPECIFY option needs PHIRAMP and IUNITRAMP")
			}
			v, err := parseValue(tok[i+1], Float)
			if err != nil {
				return err
			}
			u, err := strconv.Atoi(tok[i+2])
			if err != nil {
				return fmt.Errorf("invalid IUNITRAMP %q", tok[i+2])
			}
			h.Specify, h.PhiRamp, h.PhiRampUnit = true, float64(float32(v)), u
			i += 2
		}
	}
	return nil
}

// parseWell parses "Layer Row Column Q [aux...]".
func parseWell(line string, naux int) (Well, error) {
	var w Well
	tok := fields(stripComment(line))
	if len(tok) < 4+naux {
		return w, fmt.Errorf("mfinput: well record %q needs Layer Row Column Q and %d auxiliary values: %w",
			strings.TrimSpace(line), naux, ErrShapeMismatch)
	}
	ids := make([]int, 3)
	for i := range ids {
		v, err := strconv.Atoi(tok[i])
		if err != nil {
			return w, fmt.Errorf("mfinput: well index %q: %w", tok[i], ErrTypeMismatch)
		}
		ids[i] = v
	}
	w.Layer, w.Row, w.Col = ids[0], ids[1], ids[2]
	q, err := parseValue(tok[3], Float)
	if err != nil {
		return w, err
	}
	w.Flux = q
	if naux > 0 {
		w.Aux = make([]float64, naux)
		for i := range w.Aux {
			if w.Aux[i], err = parseValue(tok[4+i], Float); err != nil {
				return w, err
			}
		}
	}
	return w, nil
}
