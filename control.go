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
	"strconv"
	"strings"
)

// EncodeControl formats a control record: one right-justified
// ten-character field per code, followed by comment, if any, after a
// '#'. The returned line has no terminator.
func EncodeControl(codes []int, comment string) string {
	var b strings.Builder
	for _, c := range codes {
		fmt.Fprintf(&b, "%10d", c)
	}
	if comment != "" {
		b.WriteString(" # ")
		b.WriteString(comment)
	}
	return b.String()
}

// DecodeControl parses the leading integer codes of a control record,
// ignoring any '#' comment. It returns every leading integer field, and
// fails with ErrMalformedControlLine if there are fewer than want.
func DecodeControl(line string, want int) ([]int, error) {
	var codes []int
	for _, tok := range fields(stripComment(line)) {
		c, err := strconv.Atoi(tok)
		if err != nil {
			break
		}
		codes = append(codes, c)
	}
	if len(codes) < want {
		return nil, fmt.Errorf("mfinput: control record %q has %d codes, need %d: %w",
			strings.TrimSpace(line), len(codes), want, ErrMalformedControlLine)
	}
	return codes, nil
}
