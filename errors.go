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

import "errors"

// Errors returned while reading or writing package files. They are
// wrapped with context about the package, quantity and stress period,
// so callers should compare them using errors.Is.
var (
	// ErrMalformedControlLine is returned when a control record holds
	// fewer integer codes than the package mode requires.
	ErrMalformedControlLine = errors.New("malformed control line")

	// ErrShapeMismatch is returned when an array block ends before
	// rows*cols values have been read, or when a constant record
	// declares a different cell count than the grid.
	ErrShapeMismatch = errors.New("array shape mismatch")

	// ErrTypeMismatch is returned when a value cannot be parsed as, or
	// stored in, the requested element type.
	ErrTypeMismatch = errors.New("array type mismatch")

	// ErrUnresolvedUnit is returned when an array refers to a file unit
	// that the unit registry does not know about.
	ErrUnresolvedUnit = errors.New("unresolved file unit")

	// ErrUnknownParameter is returned when a stress period names a
	// parameter that is not in the parameter table.
	ErrUnknownParameter = errors.New("unknown parameter")

	// ErrParameterCountMismatch is returned when fewer parameter records
	// are available than declared.
	ErrParameterCountMismatch = errors.New("parameter count mismatch")

	// ErrNoPriorArray is returned when a quantity is reused before any
	// array has been supplied for it.
	ErrNoPriorArray = errors.New("no prior array to reuse")

	// ErrStepCountMismatch is returned when a file holds fewer stress
	// periods than the model geometry.
	ErrStepCountMismatch = errors.New("stress period count mismatch")
)
