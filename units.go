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
	"fmt"
	"io"
	"io/ioutil"
	"sort"
)

// UnitResolver looks up the data stream that belongs to a file unit
// number. Implementations should return an error wrapping
// ErrUnresolvedUnit when the unit is not known.
type UnitResolver interface {
	ResolveUnit(unit int) (io.ReadCloser, error)
}

// OutputRegistry records that a package will cause the simulation
// engine to write to unit, using the given file name.
type OutputRegistry interface {
	RegisterOutput(unit int, filename string) error
}

// UnitCreator creates the file that backs an external array unit.
type UnitCreator interface {
	CreateUnit(unit int, filename string) (io.WriteCloser, error)
}

// FileOpener opens files referred to by name in OPEN/CLOSE array
// control records.
type FileOpener interface {
	OpenFile(name string) (io.ReadCloser, error)
}

// unitNamer is implemented by registries that know the file name
// associated with a unit.
type unitNamer interface {
	UnitFilename(unit int) (string, bool)
}

// MemUnits is an in-memory unit registry, mainly for testing.
// The zero value is not usable; create one with NewMemUnits.
type MemUnits struct {
	names   map[int]string
	data    map[int]*bytes.Buffer
	outputs map[int]string
}

// NewMemUnits returns an empty in-memory unit registry.
func NewMemUnits() *MemUnits {
	return &MemUnits{
		names:   make(map[int]string),
		data:    make(map[int]*bytes.Buffer),
		outputs: make(map[int]string),
	}
}

// Add stores the contents of a unit.
func (m *MemUnits) Add(unit int, filename string, contents []byte) {
	m.names[unit] = filename
	m.data[unit] = bytes.NewBuffer(contents)
}

// ResolveUnit implements UnitResolver.
func (m *MemUnits) ResolveUnit(unit int) (io.ReadCloser, error) {
	b, ok := m.data[unit]
	if !ok {
		return nil, fmt.Errorf("mfinput: unit %d: %w", unit, ErrUnresolvedUnit)
	}
	return ioutil.NopCloser(bytes.NewReader(b.Bytes())), nil
}

// OpenFile implements FileOpener by matching name against the file
// names of the stored units.
func (m *MemUnits) OpenFile(name string) (io.ReadCloser, error) {
	for u, n := range m.names {
		if n == name {
			return m.ResolveUnit(u)
		}
	}
	return nil, fmt.Errorf("mfinput: file %q: %w", name, ErrUnresolvedUnit)
}

// UnitFilename returns the file name stored for unit.
func (m *MemUnits) UnitFilename(unit int) (string, bool) {
	n, ok := m.names[unit]
	return n, ok
}

// CreateUnit implements UnitCreator. Any existing contents of the unit
// are replaced.
func (m *MemUnits) CreateUnit(unit int, filename string) (io.WriteCloser, error) {
	b := new(bytes.Buffer)
	m.names[unit] = filename
	m.data[unit] = b
	return nopWriteCloser{b}, nil
}

// RegisterOutput implements OutputRegistry.
func (m *MemUnits) RegisterOutput(unit int, filename string) error {
	if f, ok := m.outputs[unit]; ok && f != filename {
		return fmt.Errorf("mfinput: output unit %d already registered for %s", unit, f)
	}
	m.outputs[unit] = filename
	return nil
}

// Outputs returns the registered output units in increasing order.
func (m *MemUnits) Outputs() []int {
	o := make([]int, 0, len(m.outputs))
	for u := range m.outputs {
		o = append(o, u)
	}
	sort.Ints(o)
	return o
}

// Output returns the file name registered for an output unit.
func (m *MemUnits) Output(unit int) (string, bool) {
	f, ok := m.outputs[unit]
	return f, ok
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
