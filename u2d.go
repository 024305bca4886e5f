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

const (
	// fieldWidth is the column width of one value in an array or
	// control record.
	fieldWidth = 10
	// valuesPerLine is the maximum number of array values written
	// on one line.
	valuesPerLine = 10
)

// ExternalRef points to an array that is stored in a separate file
// identified by its unit number.
type ExternalRef struct {
	Unit     int
	Filename string
}

// formatField formats v as a right-justified field at least fieldWidth
// characters wide. Values whose shortest representation does not fit
// get one leading blank instead, so that fields remain separable.
func formatField(dtype DType, v float64) string {
	var s string
	if dtype == Int {
		s = strconv.FormatInt(int64(v), 10)
	} else {
		s = strconv.FormatFloat(v, 'G', -1, 32)
	}
	if len(s) < fieldWidth {
		return strings.Repeat(" ", fieldWidth-len(s)) + s
	}
	return " " + s
}

// writeValues writes the array data, starting each row on a new line.
func writeValues(w io.Writer, a *GridArray) error {
	rows, cols := a.Dims()
	var b strings.Builder
	for i := 0; i < rows; i++ {
		b.Reset()
		for j := 0; j < cols; j++ {
			if j > 0 && j%valuesPerLine == 0 {
				b.WriteByte('\n')
			}
			b.WriteString(formatField(a.dtype, a.At(i, j)))
		}
		b.WriteByte('\n')
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

func multiplier(dtype DType) string {
	if dtype == Int {
		return "1"
	}
	return "1.0"
}

// WriteArray writes a as an array block: a CONSTANT record if all of
// its values are equal, and an INTERNAL record followed by the values
// otherwise.
func WriteArray(w io.Writer, a *GridArray) error {
	rows, cols := a.Dims()
	if v, ok := a.Uniform(); ok {
		_, err := fmt.Fprintf(w, "CONSTANT%s%10d\n", formatField(a.dtype, v), rows*cols)
		return err
	}
	if _, err := fmt.Fprintf(w, "INTERNAL %10s    (FREE) %9d\n", multiplier(a.dtype), -1); err != nil {
		return err
	}
	return writeValues(w, a)
}

// ReadArray reads one array block of the given shape and type from r.
// units is used to resolve EXTERNAL records and may be nil if the
// block is known to be internal.
func ReadArray(r io.Reader, rows, cols int, dtype DType, units UnitResolver) (*GridArray, error) {
	ar := newArrayReader(units, 0)
	defer ar.Close()
	a, _, err := ar.read(newLineReader(r, ""), rows, cols, dtype)
	return a, err
}

// arrayWriter writes array blocks, sending externally stored arrays to
// the streams created by units. Streams are opened the first time a
// unit is used and closed by Close.
type arrayWriter struct {
	units UnitCreator
	open  map[int]*bufio.Writer
	files []io.WriteCloser
}

func newArrayWriter(units UnitCreator) *arrayWriter {
	return &arrayWriter{units: units, open: make(map[int]*bufio.Writer)}
}

func (aw *arrayWriter) write(w io.Writer, a *GridArray, ext *ExternalRef) error {
	if ext == nil {
		return WriteArray(w, a)
	}
	uw, ok := aw.open[ext.Unit]
	if !ok {
		if aw.units == nil {
			return fmt.Errorf("mfinput: no unit creator for external unit %d: %w", ext.Unit, ErrUnresolvedUnit)
		}
		f, err := aw.units.CreateUnit(ext.Unit, ext.Filename)
		if err != nil {
			return err
		}
		aw.files = append(aw.files, f)
		uw = bufio.NewWriter(f)
		aw.open[ext.Unit] = uw
	}
	if _, err := fmt.Fprintf(w, "EXTERNAL %10d %10s    (FREE) %9d\n", ext.Unit, multiplier(a.dtype), -1); err != nil {
		return err
	}
	return writeValues(uw, a)
}

// Close flushes and closes every external stream.
func (aw *arrayWriter) Close() error {
	var first error
	for _, uw := range aw.open {
		if err := uw.Flush(); err != nil && first == nil {
			first = err
		}
	}
	for _, f := range aw.files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	aw.open, aw.files = nil, nil
	return first
}

// arrayReader reads array blocks. External units are opened on first
// use and read sequentially, so several arrays may share one unit.
type arrayReader struct {
	units   UnitResolver
	own     int
	open    map[int]*lineReader
	closers []io.Closer
}

// newArrayReader returns a reader resolving units through units. own is
// the unit number of the file being read, or 0 if unknown; old-style
// control records that refer to it are read inline.
func newArrayReader(units UnitResolver, own int) *arrayReader {
	return &arrayReader{units: units, own: own, open: make(map[int]*lineReader)}
}

// Close closes every stream opened by the reader.
func (ar *arrayReader) Close() error {
	var first error
	for _, c := range ar.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	ar.open, ar.closers = nil, nil
	return first
}

func (ar *arrayReader) unit(unit int) (*lineReader, error) {
	if lr, ok := ar.open[unit]; ok {
		return lr, nil
	}
	if ar.units == nil {
		return nil, fmt.Errorf("mfinput: no unit registry for unit %d: %w", unit, ErrUnresolvedUnit)
	}
	rc, err := ar.units.ResolveUnit(unit)
	if err != nil {
		return nil, err
	}
	ar.closers = append(ar.closers, rc)
	lr := newLineReader(rc, fmt.Sprintf("unit %d", unit))
	ar.open[unit] = lr
	return lr, nil
}

func (ar *arrayReader) externalRef(unit int) *ExternalRef {
	ref := &ExternalRef{Unit: unit}
	if n, ok := ar.units.(unitNamer); ok {
		ref.Filename, _ = n.UnitFilename(unit)
	}
	return ref
}

// read reads one array block from lr. If the data came from an
// external unit, the returned reference describes it.
func (ar *arrayReader) read(lr *lineReader, rows, cols int, dtype DType) (*GridArray, *ExternalRef, error) {
	line, err := lr.next()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("mfinput: %s: missing array control record: %w", lr.where(), ErrShapeMismatch)
	} else if err != nil {
		return nil, nil, err
	}
	tok := fields(line)
	if len(tok) == 0 {
		return nil, nil, fmt.Errorf("mfinput: %s: blank array control record", lr.where())
	}
	n := rows * cols
	switch strings.ToUpper(tok[0]) {
	case "CONSTANT":
		if len(tok) < 2 {
			return nil, nil, fmt.Errorf("mfinput: %s: CONSTANT record without a value: %w", lr.where(), ErrShapeMismatch)
		}
		if len(tok) > 2 {
			if count, err := strconv.Atoi(tok[2]); err == nil && count != n {
				return nil, nil, fmt.Errorf("mfinput: %s: constant count %d for %dx%d grid: %w",
					lr.where(), count, rows, cols, ErrShapeMismatch)
			}
		}
		v, err := parseValue(tok[1], dtype)
		if err != nil {
			return nil, nil, fmt.Errorf("%w at %s", err, lr.where())
		}
		a, err := ConstantArray(dtype, rows, cols, v)
		return a, nil, err
	case "INTERNAL":
		cnstnt, err := optMultiplier(tok, 1, lr)
		if err != nil {
			return nil, nil, err
		}
		a, err := readGrid(lr, rows, cols, dtype, cnstnt)
		return a, nil, err
	case "EXTERNAL":
		if len(tok) < 2 {
			return nil, nil, fmt.Errorf("mfinput: %s: EXTERNAL record without a unit: %w", lr.where(), ErrUnresolvedUnit)
		}
		unit, err := strconv.Atoi(tok[1])
		if err != nil {
			return nil, nil, fmt.Errorf("mfinput: %s: invalid unit %q: %w", lr.where(), tok[1], ErrUnresolvedUnit)
		}
		cnstnt, err := optMultiplier(tok, 2, lr)
		if err != nil {
			return nil, nil, err
		}
		ulr, err := ar.unit(unit)
		if err != nil {
			return nil, nil, fmt.Errorf("mfinput: %s: %w", lr.where(), err)
		}
		a, err := readGrid(ulr, rows, cols, dtype, cnstnt)
		if err != nil {
			return nil, nil, err
		}
		return a, ar.externalRef(unit), nil
	case "OPEN/CLOSE":
		return ar.openClose(lr, tok, rows, cols, dtype)
	}
	return ar.readFixed(lr, line, tok, rows, cols, dtype)
}

func (ar *arrayReader) openClose(lr *lineReader, tok []string, rows, cols int, dtype DType) (*GridArray, *ExternalRef, error) {
	if len(tok) < 2 {
		return nil, nil, fmt.Errorf("mfinput: %s: OPEN/CLOSE record without a file name: %w", lr.where(), ErrUnresolvedUnit)
	}
	fo, ok := ar.units.(FileOpener)
	if !ok {
		return nil, nil, fmt.Errorf("mfinput: %s: cannot open %s: %w", lr.where(), tok[1], ErrUnresolvedUnit)
	}
	cnstnt, err := optMultiplier(tok, 2, lr)
	if err != nil {
		return nil, nil, err
	}
	f, err := fo.OpenFile(strings.Trim(tok[1], `'"`))
	if err != nil {
		return nil, nil, fmt.Errorf("mfinput: %s: %w", lr.where(), err)
	}
	defer f.Close()
	a, err := readGrid(newLineReader(f, tok[1]), rows, cols, dtype, cnstnt)
	return a, nil, err
}

// readFixed reads an old-style control record: LOCAT CNSTNT FMTIN IPRN.
// LOCAT and CNSTNT are taken from their ten-column fields when those
// parse, and from the blank-separated tokens otherwise.
func (ar *arrayReader) readFixed(lr *lineReader, line string, tok []string, rows, cols int, dtype DType) (*GridArray, *ExternalRef, error) {
	locat, cnstnt, ok := fixedFields(line)
	if !ok {
		var err error
		if locat, err = strconv.Atoi(tok[0]); err != nil {
			return nil, nil, fmt.Errorf("mfinput: %s: unrecognized array control record %q", lr.where(), strings.TrimSpace(line))
		}
		if cnstnt, err = optMultiplier(tok, 1, lr); err != nil {
			return nil, nil, err
		}
	}
	switch {
	case locat == 0:
		a, err := ConstantArray(dtype, rows, cols, cnstnt)
		return a, nil, err
	case locat < 0:
		return nil, nil, fmt.Errorf("mfinput: %s: binary array input (LOCAT=%d) is not supported", lr.where(), locat)
	case locat == ar.own:
		a, err := readGrid(lr, rows, cols, dtype, cnstnt)
		return a, nil, err
	}
	ulr, err := ar.unit(locat)
	if err != nil {
		return nil, nil, fmt.Errorf("mfinput: %s: %w", lr.where(), err)
	}
	a, err := readGrid(ulr, rows, cols, dtype, cnstnt)
	if err != nil {
		return nil, nil, err
	}
	return a, ar.externalRef(locat), nil
}

// fixedFields parses LOCAT and CNSTNT from columns 1-10 and 11-20.
func fixedFields(line string) (locat int, cnstnt float64, ok bool) {
	if len(line) < 2*fieldWidth {
		return 0, 0, false
	}
	locat, err := strconv.Atoi(strings.TrimSpace(line[:fieldWidth]))
	if err != nil {
		return 0, 0, false
	}
	cnstnt, err = parseValue(strings.TrimSpace(line[fieldWidth:2*fieldWidth]), Float)
	if err != nil {
		return 0, 0, false
	}
	return locat, cnstnt, true
}

// optMultiplier parses the CNSTNT field at position i, which defaults
// to 1 when absent.
func optMultiplier(tok []string, i int, lr *lineReader) (float64, error) {
	if len(tok) <= i {
		return 1, nil
	}
	v, err := parseValue(tok[i], Float)
	if err != nil {
		return 0, fmt.Errorf("mfinput: %s: invalid multiplier: %w", lr.where(), err)
	}
	return v, nil
}

// readGrid reads rows*cols values and scales them by cnstnt unless it
// is zero.
func readGrid(lr *lineReader, rows, cols int, dtype DType, cnstnt float64) (*GridArray, error) {
	vals, err := readValues(lr, rows*cols, dtype)
	if err != nil {
		return nil, err
	}
	if cnstnt != 0 && cnstnt != 1 {
		for i := range vals {
			vals[i] *= cnstnt
		}
	}
	return NewGridArray(dtype, rows, cols, vals)
}
