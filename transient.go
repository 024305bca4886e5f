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

import "fmt"

// Supply is the data supplied for a quantity in one stress period.
type Supply struct {
	// Array is the resolved array for the period.
	Array *GridArray

	// Params lists the parameters the array was built from. It is
	// empty for arrays given directly.
	Params []ParamRef

	// External, if not nil, stores the array in a separate file.
	External *ExternalRef
}

// Timeline holds the arrays of one quantity over every stress period.
// Periods without a Supply reuse the array of the most recent period
// that has one; the reused array is shared, not copied.
type Timeline struct {
	q        Quantity
	supplied []*Supply
	resolved []*GridArray
}

// NewTimeline returns a timeline for q with nsteps stress periods and
// nothing supplied.
func NewTimeline(q Quantity, nsteps int) *Timeline {
	return &Timeline{
		q:        q,
		supplied: make([]*Supply, nsteps),
		resolved: make([]*GridArray, nsteps),
	}
}

// Uniform returns a timeline that supplies a constant array in the first
// stress period and reuses it afterwards.
func Uniform(q Quantity, g Geometry, v float64) (*Timeline, error) {
	nrow, ncol, _, nper := g.Dims()
	a, err := ConstantArray(q.DType, nrow, ncol, v)
	if err != nil {
		return nil, err
	}
	t := NewTimeline(q, nper)
	if err := t.Supply(0, a); err != nil {
		return nil, err
	}
	return t, nil
}

// FromSeries returns a timeline holding one array per stress period.
// Periods whose array equals that of the previous period are stored as
// reuse.
func FromSeries(q Quantity, arrays []*GridArray) (*Timeline, error) {
	t := NewTimeline(q, len(arrays))
	prev := ""
	for i, a := range arrays {
		if a == nil {
			continue
		}
		h := a.Fingerprint()
		if i > 0 && h == prev && a.Equal(t.resolved[i-1]) {
			continue
		}
		if err := t.Supply(i, a); err != nil {
			return nil, err
		}
		prev = h
	}
	return t, nil
}

// Quantity returns the quantity the timeline describes.
func (t *Timeline) Quantity() Quantity { return t.q }

// Len returns the number of stress periods.
func (t *Timeline) Len() int { return len(t.supplied) }

func (t *Timeline) checkStep(step int) error {
	if step < 0 || step >= len(t.supplied) {
		return fmt.Errorf("mfinput: %s: stress period %d out of range [0,%d): %w",
			t.q.Name, step, len(t.supplied), ErrStepCountMismatch)
	}
	return nil
}

// Supply sets the array for a stress period.
func (t *Timeline) Supply(step int, a *GridArray) error {
	return t.set(step, &Supply{Array: a})
}

// SupplyExternal sets the array for a stress period, to be written to
// the file identified by ref.
func (t *Timeline) SupplyExternal(step int, a *GridArray, ref ExternalRef) error {
	return t.set(step, &Supply{Array: a, External: &ref})
}

// SupplyParameters sets the array for a stress period to the sum of the
// referenced parameters in table.
func (t *Timeline) SupplyParameters(step int, table *ParameterTable, rows, cols int, refs ...ParamRef) error {
	if !t.q.Parametric {
		return fmt.Errorf("mfinput: %s cannot be defined by parameters", t.q.Name)
	}
	if table == nil {
		return fmt.Errorf("mfinput: %s: no parameter table: %w", t.q.Name, ErrUnknownParameter)
	}
	a, err := table.Combine(refs, rows, cols)
	if err != nil {
		return fmt.Errorf("mfinput: %s stress period %d: %w", t.q.Name, step+1, err)
	}
	return t.set(step, &Supply{Array: a, Params: append([]ParamRef(nil), refs...)})
}

func (t *Timeline) set(step int, s *Supply) error {
	if err := t.checkStep(step); err != nil {
		return err
	}
	if s.Array == nil {
		return fmt.Errorf("mfinput: %s stress period %d: nil array", t.q.Name, step+1)
	}
	if s.Array.DType() != t.q.DType {
		return fmt.Errorf("mfinput: %s stress period %d: %v array for %v quantity: %w",
			t.q.Name, step+1, s.Array.DType(), t.q.DType, ErrTypeMismatch)
	}
	t.supplied[step] = s
	t.fold()
	return nil
}

// fold recomputes the resolved arrays in one pass over the periods.
func (t *Timeline) fold() {
	var cur *GridArray
	for i, s := range t.supplied {
		if s != nil {
			cur = s.Array
		}
		t.resolved[i] = cur
	}
}

// advance applies one control code while reading: a negative code
// reuses the current array and any other code stores the supply
// returned by read.
func (t *Timeline) advance(step, code int, read func() (*Supply, error)) error {
	if code < 0 {
		if step == 0 || t.resolved[step-1] == nil {
			return ErrNoPriorArray
		}
		t.resolved[step] = t.resolved[step-1]
		return nil
	}
	s, err := read()
	if err != nil {
		return err
	}
	t.supplied[step] = s
	t.resolved[step] = s.Array
	return nil
}

// validate checks that every stress period has an array.
func (t *Timeline) validate(g Geometry) error {
	nrow, ncol, _, nper := g.Dims()
	if len(t.supplied) != nper {
		return fmt.Errorf("mfinput: %s has %d stress periods, model has %d: %w",
			t.q.Name, len(t.supplied), nper, ErrStepCountMismatch)
	}
	if nper > 0 && t.supplied[0] == nil {
		return fmt.Errorf("mfinput: %s stress period 1: %w", t.q.Name, ErrNoPriorArray)
	}
	for i, s := range t.supplied {
		if s == nil {
			continue
		}
		if r, c := s.Array.Dims(); r != nrow || c != ncol {
			return fmt.Errorf("mfinput: %s stress period %d: array is %dx%d, grid is %dx%d: %w",
				t.q.Name, i+1, r, c, nrow, ncol, ErrShapeMismatch)
		}
	}
	return nil
}

// Resolved returns the array in effect during a stress period.
func (t *Timeline) Resolved(step int) (*GridArray, error) {
	if err := t.checkStep(step); err != nil {
		return nil, err
	}
	if t.resolved[step] == nil {
		return nil, fmt.Errorf("mfinput: %s stress period %d: %w", t.q.Name, step+1, ErrNoPriorArray)
	}
	return t.resolved[step], nil
}

// Supplied returns the data supplied in a stress period, or nil if the
// period reuses an earlier array.
func (t *Timeline) Supplied(step int) *Supply {
	if step < 0 || step >= len(t.supplied) {
		return nil
	}
	return t.supplied[step]
}

// Code returns the control code written for a stress period: -1 for
// reuse, the number of parameters for a parameter-defined array, and 1
// otherwise.
func (t *Timeline) Code(step int) int {
	s := t.Supplied(step)
	switch {
	case s == nil:
		return -1
	case len(s.Params) > 0:
		return len(s.Params)
	default:
		return 1
	}
}
