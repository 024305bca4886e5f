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
	"io"

	"github.com/sirupsen/logrus"
)

// stressList holds the record lists of a list-based package over every
// stress period. A period without a list reuses the list of the period
// before it; the reused list is shared, not copied.
type stressList[T any] struct {
	ftype    string
	supplied [][]T
	resolved [][]T
}

// newStressList folds periods into a stressList. A nil entry reuses the
// previous list and an empty, non-nil entry holds no records. check,
// if not nil, is called for each supplied list.
func newStressList[T any](ftype string, nper int, periods [][]T, check func(step int, items []T) error) (*stressList[T], error) {
	if len(periods) != nper {
		return nil, fmt.Errorf("mfinput: %s has %d stress periods, model has %d: %w",
			ftype, len(periods), nper, ErrStepCountMismatch)
	}
	l := &stressList[T]{
		ftype:    ftype,
		supplied: make([][]T, nper),
		resolved: make([][]T, nper),
	}
	for i, items := range periods {
		if items == nil {
			if i == 0 {
				return nil, fmt.Errorf("mfinput: %s stress period 1: %w", ftype, ErrNoPriorArray)
			}
			l.resolved[i] = l.resolved[i-1]
			continue
		}
		if check != nil {
			if err := check(i, items); err != nil {
				return nil, err
			}
		}
		l.supplied[i] = append([]T{}, items...)
		l.resolved[i] = l.supplied[i]
	}
	return l, nil
}

func (l *stressList[T]) nsteps() int { return len(l.resolved) }

func (l *stressList[T]) at(step int) ([]T, error) {
	if step < 0 || step >= len(l.resolved) {
		return nil, fmt.Errorf("mfinput: %s stress period %d out of range: %w", l.ftype, step, ErrStepCountMismatch)
	}
	return l.resolved[step], nil
}

func (l *stressList[T]) reused(step int) bool {
	return step > 0 && step < len(l.supplied) && l.supplied[step] == nil
}

// itmp returns the record count written for a period, or -1 if the
// period reuses the previous list.
func (l *stressList[T]) itmp(step int) int {
	if l.reused(step) {
		return -1
	}
	return len(l.supplied[step])
}

// maxLen returns the length of the longest list.
func (l *stressList[T]) maxLen() int {
	n := 0
	for _, items := range l.supplied {
		if len(items) > n {
			n = len(items)
		}
	}
	return n
}

// readStressLists reads nper periods, each an ITMP record followed by
// ITMP records parsed by parse. Periods with a negative ITMP are
// returned as nil.
func readStressLists[T any](lr *lineReader, ftype string, nper int, log logrus.FieldLogger, parse func(line string) (T, error)) ([][]T, error) {
	periods := make([][]T, nper)
	for step := 0; step < nper; step++ {
		line, err := lr.next()
		if err == io.EOF {
			return nil, fmt.Errorf("mfinput: %s: found %d of %d stress periods: %w", ftype, step, nper, ErrStepCountMismatch)
		} else if err != nil {
			return nil, err
		}
		c, err := DecodeControl(line, 1)
		if err != nil {
			return nil, fmt.Errorf("mfinput: %s stress period %d at %s: %w", ftype, step+1, lr.where(), err)
		}
		itmp := c[0]
		log.WithFields(logrus.Fields{"period": step + 1, "itmp": itmp}).Debug("stress period data")
		if itmp < 0 {
			if step == 0 {
				return nil, fmt.Errorf("mfinput: %s stress period 1: %w", ftype, ErrNoPriorArray)
			}
			continue
		}
		items := make([]T, itmp)
		for i := range items {
			line, err := lr.next()
			if err == io.EOF {
				return nil, fmt.Errorf("mfinput: %s stress period %d: read %d of %d records: %w",
					ftype, step+1, i, itmp, ErrShapeMismatch)
			} else if err != nil {
				return nil, err
			}
			if items[i], err = parse(line); err != nil {
				return nil, fmt.Errorf("mfinput: %s: %w", lr.where(), err)
			}
		}
		periods[step] = items
	}
	return periods, nil
}

// checkCell reports an error if the one-based cell lies outside the grid.
func checkCell(g Geometry, ftype string, step, lay, row, col int) error {
	nrow, ncol, nlay, _ := g.Dims()
	if lay < 1 || lay > nlay || row < 1 || row > nrow || col < 1 || col > ncol {
		return fmt.Errorf("mfinput: %s stress period %d: cell (%d,%d,%d) outside %dx%dx%d grid: %w",
			ftype, step+1, lay, row, col, nlay, nrow, ncol, ErrShapeMismatch)
	}
	return nil
}
