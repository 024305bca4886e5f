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

// LMTFtype is the name file type of the link-MT3D package.
const LMTFtype = "LMT6"

const lmtHeading = "# Lmt input file for MODFLOW, generated by mfinput."

// LMT configures the flow-transport link file that the simulation
// engine writes for a transport model.
type LMT struct {
	OutputFileName   string
	OutputFileUnit   int
	OutputFileHeader string // "standard" or "extended"
	OutputFileFormat string // "formatted" or "unformatted"
}

// DefaultLMT returns the default link settings.
func DefaultLMT() *LMT {
	return &LMT{
		OutputFileName:   "mt3d_link.ftl",
		OutputFileUnit:   54,
		OutputFileHeader: "extended",
		OutputFileFormat: "unformatted",
	}
}

// NewLMT returns link settings after checking their values. Keyword
// values are stored in lower case.
func NewLMT(name string, unit int, header, format string) (*LMT, error) {
	l := &LMT{
		OutputFileName:   name,
		OutputFileUnit:   unit,
		OutputFileHeader: strings.ToLower(header),
		OutputFileFormat: strings.ToLower(format),
	}
	if err := l.validate(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *LMT) validate() error {
	if l.OutputFileName == "" {
		return fmt.Errorf("mfinput: LMT: missing OUTPUT_FILE_NAME")
	}
	if l.OutputFileUnit <= 0 {
		return fmt.Errorf("mfinput: LMT: invalid OUTPUT_FILE_UNIT %d", l.OutputFileUnit)
	}
	if l.OutputFileHeader != "standard" && l.OutputFileHeader != "extended" {
		return fmt.Errorf("mfinput: LMT: OUTPUT_FILE_HEADER %q must be standard or extended", l.OutputFileHeader)
	}
	if l.OutputFileFormat != "formatted" && l.OutputFileFormat != "unformatted" {
		return fmt.Errorf("mfinput: LMT: OUTPUT_FILE_FORMAT %q must be formatted or unformatted", l.OutputFileFormat)
	}
	return nil
}

// RegisterOutputs registers the link file.
func (l *LMT) RegisterOutputs(reg OutputRegistry) error {
	return reg.RegisterOutput(l.OutputFileUnit, l.OutputFileName)
}

// Write writes the package file.
func (l *LMT) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, lmtHeading)
	fmt.Fprintf(bw, "OUTPUT_FILE_NAME %s\n", l.OutputFileName)
	fmt.Fprintf(bw, "OUTPUT_FILE_UNIT %10d\n", l.OutputFileUnit)
	fmt.Fprintf(bw, "OUTPUT_FILE_HEADER %s\n", l.OutputFileHeader)
	fmt.Fprintf(bw, "OUTPUT_FILE_FORMAT %s\n", l.OutputFileFormat)
	return bw.Flush()
}

// LoadLMT reads a link package file. Keywords that are missing keep
// their default values.
func LoadLMT(r io.Reader, opts ...Option) (*LMT, error) {
	o := newOptions(opts)
	lr := newLineReader(r, o.name)
	l := DefaultLMT()
	for {
		line, err := lr.next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		tok := strings.Fields(stripComment(line))
		if len(tok) < 2 {
			continue
		}
		switch strings.ToUpper(tok[0]) {
		case "OUTPUT_FILE_NAME":
			l.OutputFileName = tok[1]
		case "OUTPUT_FILE_UNIT":
			u, err := strconv.Atoi(tok[1])
			if err != nil {
				return nil, fmt.Errorf("mfinput: LMT %s: invalid unit %q", lr.where(), tok[1])
			}
			l.OutputFileUnit = u
		case "OUTPUT_FILE_HEADER":
			l.OutputFileHeader = strings.ToLower(tok[1])
		case "OUTPUT_FILE_FORMAT":
			l.OutputFileFormat = strings.ToLower(tok[1])
		default:
			o.log.WithField("package", LMTFtype).Debugf("ignoring keyword %s", tok[0])
		}
	}
	if err := l.validate(); err != nil {
		return nil, err
	}
	return l, nil
}
