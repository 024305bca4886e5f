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

package nam

import (
	"bytes"
	"context"
	"errors"
	"io/ioutil"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/spatialmodel/mfinput"
	"gocloud.dev/blob/memblob"
)

const testNam = `# Name file for a small model
LIST            2  model.list
DIS            11  model.dis
EVT            22  model.evt
DATA           40  'surf.dat'
`

func TestParse(t *testing.T) {
	f, err := Parse(strings.NewReader(testNam))
	if err != nil {
		t.Fatal(err)
	}
	want := &File{
		Heading: "# Name file for a small model",
		Entries: []Entry{
			{Ftype: "LIST", Unit: 2, Filename: "model.list"},
			{Ftype: "DIS", Unit: 11, Filename: "model.dis"},
			{Ftype: "EVT", Unit: 22, Filename: "model.evt"},
			{Ftype: "DATA", Unit: 40, Filename: "surf.dat"},
		},
	}
	if diff := pretty.Diff(f, want); len(diff) > 0 {
		t.Error(diff)
	}
	e, ok := f.Ftype("evt")
	if !ok || e.Unit != 22 {
		t.Errorf("Ftype(evt) = %v, %v", e, ok)
	}

	var b bytes.Buffer
	if err := f.Write(&b); err != nil {
		t.Fatal(err)
	}
	f2, err := Parse(&b)
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(f2, want); len(diff) > 0 {
		t.Error(diff)
	}
}

func TestParseErrors(t *testing.T) {
	for _, s := range []string{"EVT 22\n", "EVT x model.evt\n", "EVT 0 model.evt\n"} {
		if _, err := Parse(strings.NewReader(s)); err == nil {
			t.Errorf("%q should fail", s)
		}
	}
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()
	if err := bucket.WriteAll(ctx, "run/model.nam", []byte(testNam), nil); err != nil {
		t.Fatal(err)
	}
	if err := bucket.WriteAll(ctx, "run/surf.dat", []byte("1 2 3 4\n"), nil); err != nil {
		t.Fatal(err)
	}
	r, err := Load(ctx, bucket, "run/model.nam", nil)
	if err != nil {
		t.Fatal(err)
	}

	rc, err := r.ResolveUnit(40)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ioutil.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "1 2 3 4\n" {
		t.Errorf("unit 40 = %q", b)
	}
	if _, err := r.ResolveUnit(41); !errors.Is(err, mfinput.ErrUnresolvedUnit) {
		t.Errorf("unknown unit: have %v, want ErrUnresolvedUnit", err)
	}

	a, err := mfinput.ReadArray(strings.NewReader("EXTERNAL 40 1.0 (FREE) -1\n"), 2, 2, mfinput.Float, r)
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(a.Values(), []float64{1, 2, 3, 4}); len(diff) > 0 {
		t.Error(diff)
	}

	w, err := r.CreateUnit(50, "rech.dat")
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte("CONSTANT 1\n"))
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := r.CreateUnit(50, "other.dat"); err == nil {
		t.Error("reusing unit 50 for another file should fail")
	}
	if err := r.RegisterOutput(60, "model.cbc"); err != nil {
		t.Fatal(err)
	}
	if err := r.RegisterOutput(60, "model.cbc"); err != nil {
		t.Errorf("registering the same output twice: %v", err)
	}
	if err := r.RegisterOutput(60, "other.cbc"); err == nil {
		t.Error("conflicting output registration should fail")
	}
	if diff := pretty.Diff(r.Outputs(), []int{60}); len(diff) > 0 {
		t.Error(diff)
	}

	if err := r.Save("run/new.nam"); err != nil {
		t.Fatal(err)
	}
	saved, err := bucket.ReadAll(ctx, "run/new.nam")
	if err != nil {
		t.Fatal(err)
	}
	f, err := Parse(bytes.NewReader(saved))
	if err != nil {
		t.Fatal(err)
	}
	if e, ok := f.Unit(50); !ok || e.Ftype != Data || e.Filename != "rech.dat" {
		t.Errorf("unit 50 entry = %+v, %v", e, ok)
	}
	if e, ok := f.Unit(60); !ok || e.Ftype != DataBinary {
		t.Errorf("unit 60 entry = %+v, %v", e, ok)
	}
	data, err := bucket.ReadAll(ctx, "run/rech.dat")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "CONSTANT 1\n" {
		t.Errorf("rech.dat = %q", data)
	}
}
