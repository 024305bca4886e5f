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

// lineReader reads a package file one record at a time and keeps
// track of the current line number for error messages.
type lineReader struct {
	r       *bufio.Reader
	name    string
	line    int
	pending *string
}

func newLineReader(r io.Reader, name string) *lineReader {
	if br, ok := r.(*bufio.Reader); ok {
		return &lineReader{r: br, name: name}
	}
	return &lineReader{r: bufio.NewReader(r), name: name}
}

// next returns the next line without its line terminator. It returns
// io.EOF only when no more data is available.
func (lr *lineReader) next() (string, error) {
	if lr.pending != nil {
		s := *lr.pending
		lr.pending = nil
		lr.line++
		return s, nil
	}
	s, err := lr.r.ReadString('\n')
	if err == io.EOF {
		if s == "" {
			return "", io.EOF
		}
	} else if err != nil {
		return "", err
	}
	lr.line++
	return strings.TrimRight(s, "\r\n"), nil
}

// unread pushes back a line returned by next, so that the following
// call to next returns it again.
func (lr *lineReader) unread(s string) {
	lr.pending = &s
	lr.line--
}

// peekComment reports whether the next line starts with '#', without
// consuming it.
func (lr *lineReader) peekComment() bool {
	if lr.pending != nil {
		return strings.HasPrefix(*lr.pending, "#")
	}
	b, err := lr.r.Peek(1)
	return err == nil && b[0] == '#'
}

func (lr *lineReader) where() string {
	if lr.name == "" {
		return fmt.Sprintf("line %d", lr.line)
	}
	return fmt.Sprintf("%s:%d", lr.name, lr.line)
}

// fields splits a free-format record on blanks and commas.
func fields(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}

// stripComment removes a trailing '#' comment.
func stripComment(s string) string {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		return s[:i]
	}
	return s
}

// parseValue parses a single numeric token as dtype. Fortran 'D'
// exponents are accepted for floats.
func parseValue(tok string, dtype DType) (float64, error) {
	switch dtype {
	case Int:
		v, err := strconv.Atoi(tok)
		if err != nil {
			return 0, fmt.Errorf("mfinput: %q is not an integer: %w", tok, ErrTypeMismatch)
		}
		return float64(v), nil
	default:
		v, err := strconv.ParseFloat(strings.NewReplacer("D", "E", "d", "e").Replace(tok), 64)
		if err != nil {
			return 0, fmt.Errorf("mfinput: %q is not a number: %w", tok, ErrTypeMismatch)
		}
		return v, nil
	}
}

// readValues reads n free-format values of type dtype, which may span
// several lines. Repeat tokens of the form count*value are expanded.
// Values left on the last line read are discarded.
func readValues(lr *lineReader, n int, dtype DType) ([]float64, error) {
	o := make([]float64, 0, n)
	for len(o) < n {
		line, err := lr.next()
		if err == io.EOF {
			return nil, fmt.Errorf("mfinput: %s: read %d of %d values before end of file: %w",
				lr.where(), len(o), n, ErrShapeMismatch)
		} else if err != nil {
			return nil, err
		}
		for _, tok := range fields(line) {
			if len(o) == n {
				break
			}
			count := 1
			if i := strings.IndexByte(tok, '*'); i > 0 {
				c, err := strconv.Atoi(tok[:i])
				if err != nil || c < 1 {
					return nil, fmt.Errorf("mfinput: %s: invalid repeat count in %q: %w", lr.where(), tok, ErrTypeMismatch)
				}
				count, tok = c, tok[i+1:]
			}
			v, err := parseValue(tok, dtype)
			if err != nil {
				return nil, fmt.Errorf("%w at %s", err, lr.where())
			}
			if count > n-len(o) {
				return nil, fmt.Errorf("mfinput: %s: repeat %d*%s overruns %d values: %w",
					lr.where(), count, tok, n, ErrShapeMismatch)
			}
			for i := 0; i < count; i++ {
				o = append(o, v)
			}
		}
	}
	return o, nil
}
