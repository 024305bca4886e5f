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
	"bytes"
	"strings"
	"testing"

	"github.com/kr/pretty"
)

func TestLMTWrite(t *testing.T) {
	var b bytes.Buffer
	if err := DefaultLMT().Write(&b); err != nil {
		t.Fatal(err)
	}
	want := `# Lmt input file for MODFLOW, generated by mfinput.
OUTPUT_FILE_NAME mt3d_link.ftl
OUTPUT_FILE_UNIT         54
OUTPUT_FILE_HEADER extended
OUTPUT_FILE_FORMAT unformatted
`
	if b.String() != want {
		t.Errorf("have\n%s\nwant\n%s", b.String(), want)
	}
	l, err := LoadLMT(&b)
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(l, DefaultLMT()); len(diff) > 0 {
		t.Error(diff)
	}
}

func TestLoadLMT(t *testing.T) {
	const input = `# link file
output_file_name  model.ftl # comment
Output_File_Unit 33
OUTPUT_FILE_FORMAT FORMATTED
PACKAGE_FLOWS all
`
	l, err := LoadLMT(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	want := &LMT{
		OutputFileName:   "model.ftl",
		OutputFileUnit:   33,
		OutputFileHeader: "extended",
		OutputFileFormat: "formatted",
	}
	if diff := pretty.Diff(l, want); len(diff) > 0 {
		t.Error(diff)
	}
	units := NewMemUnits()
	if err := l.RegisterOutputs(units); err != nil {
		t.Fatal(err)
	}
	if f, _ := units.Output(33); f != "model.ftl" {
		t.Errorf("output 33 = %q", f)
	}

	if _, err := LoadLMT(strings.NewReader("OUTPUT_FILE_HEADER long\n")); err == nil {
		t.Error("invalid header option should fail")
	}
	if _, err := LoadLMT(strings.NewReader("OUTPUT_FILE_UNIT x\n")); err == nil {
		t.Error("invalid unit should fail")
	}
	if _, err := NewLMT("a.ftl", 0, "standard", "formatted"); err == nil {
		t.Error("unit 0 should fail")
	}
	if _, err := NewLMT("a.ftl", 30, "Standard", "Formatted"); err != nil {
		t.Error(err)
	}
}
