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
	"io/ioutil"
	"strconv"
	"strings"

	"github.com/ctessum/unit"
	"github.com/sirupsen/logrus"
)

// Geometry provides the dimensions of the model grid and the number of
// stress periods.
type Geometry interface {
	Dims() (nrow, ncol, nlay, nper int)
}

// Dis is a Geometry with fixed dimensions.
type Dis struct {
	Nrow, Ncol, Nlay, Nper int
}

// Dims implements Geometry.
func (d Dis) Dims() (nrow, ncol, nlay, nper int) {
	return d.Nrow, d.Ncol, d.Nlay, d.Nper
}

// Quantity describes one array-valued input of a package.
type Quantity struct {
	// Name is the short name of the quantity, e.g. "surf".
	Name string

	// DType is the element type of the quantity's arrays.
	DType DType

	// Parametric is true if the quantity may be defined by parameters
	// when the package declares any.
	Parametric bool

	// Dims holds the physical dimensions of the quantity.
	Dims unit.Dimensions

	// Active reports whether the quantity is read and written for the
	// given package header values. A nil Active means always.
	Active func(header []int) bool
}

func (q Quantity) active(header []int) bool {
	return q.Active == nil || q.Active(header)
}

// PackageSpec declares the layout of an array-based package file.
type PackageSpec struct {
	// Ftype is the file type used in name files, e.g. "EVT".
	Ftype string

	// Heading is the comment line written at the top of the file.
	Heading string

	// DefaultUnit is the file unit conventionally used for the package.
	DefaultUnit int

	// Header names the integer fields of the header record.
	Header []string

	// CBC is the index in Header of the cell-by-cell budget unit
	// field, or -1.
	CBC int

	// Quantities lists the package's quantities in control record
	// order.
	Quantities []Quantity

	// Comment is a format string, taking the one-based stress period,
	// for the comment appended to each control record.
	Comment string
}

// required returns the number of control codes needed for header: up to
// and including the last active quantity.
func (s *PackageSpec) required(header []int) int {
	n := 0
	for i, q := range s.Quantities {
		if q.active(header) {
			n = i + 1
		}
	}
	return n
}

func (s *PackageSpec) quantity(name string) (Quantity, bool) {
	for _, q := range s.Quantities {
		if strings.EqualFold(q.Name, name) {
			return q, true
		}
	}
	return Quantity{}, false
}

// Option configures how a package is read.
type Option func(*options)

type options struct {
	log  logrus.FieldLogger
	unit int
	name string
	zm   ZoneMultSource
}

func newOptions(opts []Option) *options {
	l := logrus.New()
	l.Out = ioutil.Discard
	o := &options{log: l}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sends progress messages to l.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.log = l }
}

// WithUnit sets the unit number of the file being read. Old-style array
// control records referring to this unit are read inline.
func WithUnit(unit int) Option {
	return func(o *options) { o.unit = unit }
}

// WithName sets the file name used in error messages.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithZoneMult sets the source of the zone and multiplier arrays used by
// parameter definitions.
func WithZoneMult(zm ZoneMultSource) Option {
	return func(o *options) { o.zm = zm }
}

// ArrayPackage is a package whose stress-period data are arrays, such as
// EVT and RCH.
type ArrayPackage struct {
	spec      *PackageSpec
	header    []int
	params    *ParameterTable
	timelines map[string]*Timeline
	rows      int
	cols      int
	nsteps    int
}

// NewArrayPackage returns a package laid out according to spec. There
// must be a timeline for every quantity that is active for header.
// params may be nil.
func NewArrayPackage(spec *PackageSpec, g Geometry, header []int, params *ParameterTable, timelines ...*Timeline) (*ArrayPackage, error) {
	if len(header) != len(spec.Header) {
		return nil, fmt.Errorf("mfinput: %s: %d header values for fields %v", spec.Ftype, len(header), spec.Header)
	}
	nrow, ncol, _, nper := g.Dims()
	p := &ArrayPackage{
		spec:      spec,
		header:    append([]int(nil), header...),
		params:    params,
		timelines: make(map[string]*Timeline),
		rows:      nrow,
		cols:      ncol,
		nsteps:    nper,
	}
	for _, t := range timelines {
		if t == nil {
			continue
		}
		q, ok := spec.quantity(t.Quantity().Name)
		if !ok {
			return nil, fmt.Errorf("mfinput: %s has no quantity %q", spec.Ftype, t.Quantity().Name)
		}
		if q.DType != t.Quantity().DType {
			return nil, fmt.Errorf("mfinput: %s %s: %v timeline for %v quantity: %w",
				spec.Ftype, q.Name, t.Quantity().DType, q.DType, ErrTypeMismatch)
		}
		p.timelines[q.Name] = t
	}
	for _, q := range spec.Quantities {
		if !q.active(header) {
			continue
		}
		t, ok := p.timelines[q.Name]
		if !ok {
			return nil, fmt.Errorf("mfinput: %s: no data for %s", spec.Ftype, q.Name)
		}
		if err := t.validate(g); err != nil {
			return nil, fmt.Errorf("mfinput: %s: %w", spec.Ftype, err)
		}
		if p.parameterMode(q) {
			for i := 0; i < t.Len(); i++ {
				if s := t.Supplied(i); s != nil && len(s.Params) == 0 {
					return nil, fmt.Errorf("mfinput: %s %s stress period %d: package declares parameters but the period supplies an array: %w",
						spec.Ftype, q.Name, i+1, ErrParameterCountMismatch)
				}
			}
		}
	}
	return p, nil
}

// parameterMode reports whether q is defined by parameters.
func (p *ArrayPackage) parameterMode(q Quantity) bool {
	return q.Parametric && p.params.Len() > 0
}

// Spec returns the package layout.
func (p *ArrayPackage) Spec() *PackageSpec { return p.spec }

// Header returns the value of the named header field.
func (p *ArrayPackage) Header(field string) (int, bool) {
	for i, f := range p.spec.Header {
		if strings.EqualFold(f, field) {
			return p.header[i], true
		}
	}
	return 0, false
}

// Parameters returns the parameter table, which may be nil.
func (p *ArrayPackage) Parameters() *ParameterTable { return p.params }

// NSteps returns the number of stress periods.
func (p *ArrayPackage) NSteps() int { return p.nsteps }

// Active returns whether a quantity is read and written under the
// current header values.
func (p *ArrayPackage) Active(quantity string) bool {
	q, ok := p.spec.quantity(quantity)
	return ok && q.active(p.header)
}

// Timeline returns the timeline of a quantity, or nil if the package has
// none.
func (p *ArrayPackage) Timeline(quantity string) *Timeline {
	q, ok := p.spec.quantity(quantity)
	if !ok {
		return nil
	}
	return p.timelines[q.Name]
}

// ResolvedArray returns the array of a quantity in effect during a
// zero-based stress period.
func (p *ArrayPackage) ResolvedArray(quantity string, step int) (*GridArray, error) {
	q, ok := p.spec.quantity(quantity)
	if !ok {
		return nil, fmt.Errorf("mfinput: %s has no quantity %q", p.spec.Ftype, quantity)
	}
	if !q.active(p.header) {
		return nil, fmt.Errorf("mfinput: %s %s is not active for header %v", p.spec.Ftype, q.Name, p.header)
	}
	return p.timelines[q.Name].Resolved(step)
}

// controlCode returns the code written for q in a stress period.
func (p *ArrayPackage) controlCode(q Quantity, step int) int {
	if !q.active(p.header) {
		return -1
	}
	s := p.timelines[q.Name].Supplied(step)
	switch {
	case s == nil:
		return -1
	case p.parameterMode(q):
		return len(s.Params)
	default:
		return 1
	}
}

// RegisterOutputs registers the cell-by-cell budget file, if the package
// saves one, as base + ".cbc".
func (p *ArrayPackage) RegisterOutputs(reg OutputRegistry, base string) error {
	if p.spec.CBC < 0 || p.header[p.spec.CBC] <= 0 {
		return nil
	}
	return reg.RegisterOutput(p.header[p.spec.CBC], base+".cbc")
}

// Write writes the package file to w. Arrays stored externally are
// written to the units created by units, which may be nil if there are
// none. If Write fails, the contents of w are incomplete.
func (p *ArrayPackage) Write(w io.Writer, units UnitCreator) error {
	bw := bufio.NewWriter(w)
	aw := newArrayWriter(units)
	err := p.write(bw, aw)
	if cerr := aw.Close(); err == nil {
		err = cerr
	}
	if ferr := bw.Flush(); err == nil {
		err = ferr
	}
	return err
}

func (p *ArrayPackage) write(w *bufio.Writer, aw *arrayWriter) error {
	fmt.Fprintf(w, "%s\n", p.spec.Heading)
	if p.params.Len() > 0 {
		fmt.Fprintf(w, "PARAMETER %9d\n", p.params.Len())
	}
	fmt.Fprintln(w, EncodeControl(p.header, ""))
	if p.params.Len() > 0 {
		if err := p.params.Write(w); err != nil {
			return err
		}
	}
	codes := make([]int, len(p.spec.Quantities))
	for step := 0; step < p.nsteps; step++ {
		for i, q := range p.spec.Quantities {
			codes[i] = p.controlCode(q, step)
		}
		fmt.Fprintln(w, EncodeControl(codes, fmt.Sprintf(p.spec.Comment, step+1)))
		for i, q := range p.spec.Quantities {
			if codes[i] < 0 {
				continue
			}
			s := p.timelines[q.Name].Supplied(step)
			var err error
			if p.parameterMode(q) {
				err = writeParamRefs(w, s.Params)
			} else {
				err = aw.write(w, s.Array, s.External)
			}
			if err != nil {
				return fmt.Errorf("mfinput: %s %s stress period %d: %w", p.spec.Ftype, q.Name, step+1, err)
			}
		}
	}
	return nil
}

// LoadArrayPackage reads a package laid out according to spec from r.
// units resolves external arrays and may be nil if there are none. Any
// error leaves no package.
func LoadArrayPackage(r io.Reader, spec *PackageSpec, g Geometry, units UnitResolver, opts ...Option) (*ArrayPackage, error) {
	o := newOptions(opts)
	lr := newLineReader(r, o.name)
	log := o.log.WithField("package", spec.Ftype)
	log.Debug("loading package file")

	for lr.peekComment() {
		if _, err := lr.next(); err != nil {
			return nil, err
		}
	}
	line, err := lr.next()
	if err == io.EOF {
		return nil, fmt.Errorf("mfinput: %s: missing header record: %w", spec.Ftype, ErrMalformedControlLine)
	} else if err != nil {
		return nil, err
	}
	npar := 0
	if tok := fields(line); len(tok) > 0 && strings.EqualFold(tok[0], "PARAMETER") {
		if len(tok) < 2 {
			return nil, fmt.Errorf("mfinput: %s: PARAMETER record without a count: %w", lr.where(), ErrParameterCountMismatch)
		}
		if npar, err = strconv.Atoi(tok[1]); err != nil || npar < 0 {
			return nil, fmt.Errorf("mfinput: %s: invalid parameter count %q: %w", lr.where(), tok[1], ErrParameterCountMismatch)
		}
		log.WithField("parameters", npar).Debug("parameters detected")
		if line, err = lr.next(); err != nil {
			return nil, fmt.Errorf("mfinput: %s: missing header record: %w", spec.Ftype, ErrMalformedControlLine)
		}
	}
	header, err := DecodeControl(line, len(spec.Header))
	if err != nil {
		return nil, fmt.Errorf("mfinput: %s header: %w", spec.Ftype, err)
	}
	header = header[:len(spec.Header)]

	var params *ParameterTable
	if npar > 0 {
		if params, err = loadParameters(lr, npar, o.zm); err != nil {
			return nil, fmt.Errorf("mfinput: %s: %w", spec.Ftype, err)
		}
	}

	nrow, ncol, _, nper := g.Dims()
	p := &ArrayPackage{
		spec:      spec,
		header:    header,
		params:    params,
		timelines: make(map[string]*Timeline),
		rows:      nrow,
		cols:      ncol,
		nsteps:    nper,
	}
	for _, q := range spec.Quantities {
		if q.active(header) {
			p.timelines[q.Name] = NewTimeline(q, nper)
		}
	}

	ar := newArrayReader(units, o.unit)
	defer ar.Close()
	want := spec.required(header)
	for step := 0; step < nper; step++ {
		line, err := lr.next()
		if err == io.EOF {
			return nil, fmt.Errorf("mfinput: %s: found %d of %d stress periods: %w", spec.Ftype, step, nper, ErrStepCountMismatch)
		} else if err != nil {
			return nil, err
		}
		codes, err := DecodeControl(line, want)
		if err != nil {
			return nil, fmt.Errorf("mfinput: %s stress period %d at %s: %w", spec.Ftype, step+1, lr.where(), err)
		}
		for i, q := range spec.Quantities {
			if !q.active(header) {
				continue
			}
			code := codes[i]
			log.WithFields(logrus.Fields{
				"quantity": q.Name,
				"period":   step + 1,
				"code":     code,
			}).Debug("stress period data")
			err := p.timelines[q.Name].advance(step, code, func() (*Supply, error) {
				if p.parameterMode(q) {
					refs, err := readParamRefs(lr, code)
					if err != nil {
						return nil, err
					}
					a, err := params.Combine(refs, nrow, ncol)
					if err != nil {
						return nil, err
					}
					return &Supply{Array: a, Params: refs}, nil
				}
				a, ext, err := ar.read(lr, nrow, ncol, q.DType)
				if err != nil {
					return nil, err
				}
				return &Supply{Array: a, External: ext}, nil
			})
			if err != nil {
				return nil, fmt.Errorf("mfinput: %s %s stress period %d: %w", spec.Ftype, q.Name, step+1, err)
			}
		}
	}
	return p, nil
}
