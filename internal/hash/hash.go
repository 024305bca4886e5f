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

// Package hash computes content fingerprints for grid data.
package hash

import (
	"encoding/gob"
	"fmt"
	"hash/fnv"

	"github.com/davecgh/go-spew/spew"
)

// Hash returns a hexadecimal fingerprint of object, which should be a
// value with exported fields only. Objects with the same contents have
// the same fingerprint.
func Hash(object interface{}) string {
	h := fnv.New128a()
	if err := gob.NewEncoder(h).Encode(object); err != nil {
		// gob rejects some values, such as structs without exported
		// fields; hash a deterministic dump of them instead.
		h.Reset()
		printer := spew.ConfigState{
			Indent:                  " ",
			SortKeys:                true,
			DisableMethods:          true,
			SpewKeys:                true,
			DisablePointerAddresses: true,
			DisableCapacities:       true,
		}
		printer.Fprintf(h, "%#v", object)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
