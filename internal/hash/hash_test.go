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

package hash

import "testing"

type grid struct {
	Rows, Cols int
	Values     []float64
}

type private struct {
	n int
}

func TestHash(t *testing.T) {
	a := Hash(grid{Rows: 1, Cols: 2, Values: []float64{1, 2}})
	b := Hash(grid{Rows: 1, Cols: 2, Values: []float64{1, 2}})
	c := Hash(grid{Rows: 2, Cols: 1, Values: []float64{1, 2}})
	if a != b {
		t.Error("equal objects should have equal hashes")
	}
	if a == c {
		t.Error("different objects should have different hashes")
	}
	if len(a) != 32 {
		t.Errorf("hash %s has %d characters, want 32", a, len(a))
	}
	if Hash(private{1}) == Hash(private{2}) {
		t.Error("objects without exported fields should still be distinguished")
	}
}
