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
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// StaticInstance is the instance used for parameters that are not time
// varying, and the fallback when a stress period names an instance a
// parameter does not have.
const StaticInstance = "static"

// paramKeyLen is the number of leading characters that identify a
// parameter or instance name.
const paramKeyLen = 10

// ParamKey returns the lookup key for a parameter name: its first ten
// characters in lower case. Names that agree in those
// characters refer to the same parameter.
func ParamKey(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) > paramKeyLen {
		name = name[:paramKeyLen]
	}
	return name
}

// Cluster is one multiplier/zone contribution to a parameter.
type Cluster struct {
	// Mult is the name of a multiplier array, or "NONE".
	Mult string
	// Zone is the name of a zone array, or "ALL".
	Zone string
	// IZ lists the zone values of the cells the cluster applies to.
	// If empty, every cell with a nonzero zone value is included.
	IZ []int
}

// Instance is a named set of clusters of a time-varying parameter.
type Instance struct {
	Name     string
	Clusters []Cluster
}

// Parameter is a named, reusable array contribution. Parameters that are
// not time varying have one instance named StaticInstance.
type Parameter struct {
	Name  string
	Type  string
	Value float64

	// Instances holds the parameter's clusters by instance.
	Instances []Instance

	// TimeVarying is true if the parameter was defined with the
	// INSTANCES keyword.
	TimeVarying bool
}

// instance returns the clusters for the named instance. Instance names
// are compared in full, ignoring case.
func (p *Parameter) instance(name string) ([]Cluster, bool) {
	name = strings.TrimSpace(name)
	for _, in := range p.Instances {
		if strings.EqualFold(in.Name, name) {
			return in.Clusters, true
		}
	}
	return nil, false
}

// ParamRef selects a parameter, and optionally one of its instances,
// for one stress period.
type ParamRef struct {
	Name     string
	Instance string
}

// ZoneMultSource provides the named zone and multiplier arrays that
// parameter clusters refer to.
type ZoneMultSource interface {
	Multiplier(name string) (*GridArray, bool)
	Zone(name string) (*GridArray, bool)
}

// ZoneMultArrays is a ZoneMultSource backed by maps keyed by lower-case
// array name.
type ZoneMultArrays struct {
	Mults map[string]*GridArray
	Zones map[string]*GridArray
}

// Multiplier implements ZoneMultSource.
func (z ZoneMultArrays) Multiplier(name string) (*GridArray, bool) {
	a, ok := z.Mults[strings.ToLower(name)]
	return a, ok
}

// Zone implements ZoneMultSource.
func (z ZoneMultArrays) Zone(name string) (*GridArray, bool) {
	a, ok := z.Zones[strings.ToLower(name)]
	return a, ok
}

// ParameterTable holds the parameters defined in a package file.
type ParameterTable struct {
	params []*Parameter
	index  map[string]*Parameter
	zm     ZoneMultSource
}

// NewParameterTable returns a table holding params. zm may be nil if no
// cluster refers to a named zone or multiplier array. When two names
// share a key (see ParamKey), the later parameter is the one found by
// lookups.
func NewParameterTable(zm ZoneMultSource, params ...*Parameter) *ParameterTable {
	t := &ParameterTable{index: make(map[string]*Parameter), zm: zm}
	for _, p := range params {
		t.add(p)
	}
	return t
}

func (t *ParameterTable) add(p *Parameter) {
	t.params = append(t.params, p)
	t.index[ParamKey(p.Name)] = p
}

// Len returns the number of parameter definitions in the table.
func (t *ParameterTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.params)
}

// Parameters returns the parameter definitions in file order.
func (t *ParameterTable) Parameters() []*Parameter {
	return append([]*Parameter(nil), t.params...)
}

// Lookup returns the parameter with the given name.
func (t *ParameterTable) Lookup(name string) (*Parameter, bool) {
	p, ok := t.index[ParamKey(name)]
	return p, ok
}

// Resolve returns the array for one instance of a parameter. If the
// parameter has no instance with that name, its static instance is
// used.
func (t *ParameterTable) Resolve(name, instance string, rows, cols int) (*GridArray, error) {
	vals, err := t.resolve(name, instance, rows, cols)
	if err != nil {
		return nil, err
	}
	return NewGridArray(Float, rows, cols, vals)
}

func (t *ParameterTable) resolve(name, instance string, rows, cols int) ([]float64, error) {
	p, ok := t.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("mfinput: parameter %q: %w", name, ErrUnknownParameter)
	}
	clusters, ok := p.instance(instance)
	if !ok {
		clusters, ok = p.instance(StaticInstance)
	}
	if !ok {
		return nil, fmt.Errorf("mfinput: parameter %q has no instance %q and no static instance: %w",
			name, instance, ErrUnknownParameter)
	}
	n := rows * cols
	vals := make([]float64, n)
	for _, c := range clusters {
		mult, err := t.multiplier(c.Mult, rows, cols)
		if err != nil {
			return nil, err
		}
		in, err := t.zone(c, rows, cols)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			if in == nil || in[i] {
				vals[i] += p.Value * mult[i]
			}
		}
	}
	return vals, nil
}

func (t *ParameterTable) multiplier(name string, rows, cols int) ([]float64, error) {
	if strings.EqualFold(name, "NONE") || name == "" {
		o := make([]float64, rows*cols)
		for i := range o {
			o[i] = 1
		}
		return o, nil
	}
	var a *GridArray
	ok := false
	if t.zm != nil {
		a, ok = t.zm.Multiplier(name)
	}
	if !ok {
		return nil, fmt.Errorf("mfinput: multiplier array %q: %w", name, ErrUnknownParameter)
	}
	if r, c := a.Dims(); r != rows || c != cols {
		return nil, fmt.Errorf("mfinput: multiplier array %q is %dx%d, grid is %dx%d: %w",
			name, r, c, rows, cols, ErrShapeMismatch)
	}
	return a.Values(), nil
}

// zone returns the cells a cluster applies to, or nil for all cells.
func (t *ParameterTable) zone(c Cluster, rows, cols int) ([]bool, error) {
	if strings.EqualFold(c.Zone, "ALL") || c.Zone == "" {
		return nil, nil
	}
	var a *GridArray
	ok := false
	if t.zm != nil {
		a, ok = t.zm.Zone(c.Zone)
	}
	if !ok {
		return nil, fmt.Errorf("mfinput: zone array %q: %w", c.Zone, ErrUnknownParameter)
	}
	if r, cc := a.Dims(); r != rows || cc != cols {
		return nil, fmt.Errorf("mfinput: zone array %q is %dx%d, grid is %dx%d: %w",
			c.Zone, r, cc, rows, cols, ErrShapeMismatch)
	}
	in := make([]bool, rows*cols)
	for i, z := range a.Values() {
		if len(c.IZ) == 0 {
			in[i] = z != 0
			continue
		}
		for _, iz := range c.IZ {
			if int(z) == iz {
				in[i] = true
				break
			}
		}
	}
	return in, nil
}

// Combine resolves every referenced parameter and sums the results. A
// parameter named more than once contributes once, using the instance
// given last.
func (t *ParameterTable) Combine(refs []ParamRef, rows, cols int) (*GridArray, error) {
	sum := make([]float64, rows*cols)
	for _, r := range uniqueRefs(refs) {
		v, err := t.resolve(r.Name, r.Instance, rows, cols)
		if err != nil {
			return nil, err
		}
		floats.Add(sum, v)
	}
	return NewGridArray(Float, rows, cols, sum)
}

// uniqueRefs returns refs with one entry per parameter key, in order of
// first appearance, each holding the last instance named for it.
func uniqueRefs(refs []ParamRef) []ParamRef {
	pos := make(map[string]int, len(refs))
	var o []ParamRef
	for _, r := range refs {
		k := ParamKey(r.Name)
		if i, ok := pos[k]; ok {
			o[i].Instance = r.Instance
			continue
		}
		pos[k] = len(o)
		o = append(o, r)
	}
	return o
}

// Write writes the parameter definitions.
func (t *ParameterTable) Write(w io.Writer) error {
	for _, p := range t.params {
		nclu := 0
		if len(p.Instances) > 0 {
			nclu = len(p.Instances[0].Clusters)
		}
		line := fmt.Sprintf("%-10s %-4s %s %d", p.Name, p.Type, strconv.FormatFloat(p.Value, 'G', -1, 64), nclu)
		if p.TimeVarying {
			line += fmt.Sprintf(" INSTANCES %d", len(p.Instances))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		for _, in := range p.Instances {
			if len(in.Clusters) != nclu {
				return fmt.Errorf("mfinput: parameter %s instance %s has %d clusters, want %d",
					p.Name, in.Name, len(in.Clusters), nclu)
			}
			if p.TimeVarying {
				if _, err := fmt.Fprintln(w, in.Name); err != nil {
					return err
				}
			}
			for _, c := range in.Clusters {
				if err := writeCluster(w, c); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func writeCluster(w io.Writer, c Cluster) error {
	mult, zone := c.Mult, c.Zone
	if mult == "" {
		mult = "NONE"
	}
	if zone == "" {
		zone = "ALL"
	}
	line := fmt.Sprintf("%-10s %-10s", mult, zone)
	for _, iz := range c.IZ {
		line += fmt.Sprintf(" %d", iz)
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

// LoadParameters reads count parameter definitions from r.
func LoadParameters(r io.Reader, count int, zm ZoneMultSource) (*ParameterTable, error) {
	return loadParameters(newLineReader(r, ""), count, zm)
}

func loadParameters(lr *lineReader, count int, zm ZoneMultSource) (*ParameterTable, error) {
	t := NewParameterTable(zm)
	for i := 0; i < count; i++ {
		p, err := loadParameter(lr)
		if err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("mfinput: %s: read %d of %d parameter definitions: %w",
					lr.where(), i, count, ErrParameterCountMismatch)
			}
			return nil, err
		}
		t.add(p)
	}
	return t, nil
}

// loadParameter reads one definition:
// PARNAM PARTYP Parval NCLU [INSTANCES NUMINST], followed by the
// clusters of each instance.
func loadParameter(lr *lineReader) (*Parameter, error) {
	line, err := lr.next()
	if err != nil {
		return nil, err
	}
	tok := fields(stripComment(line))
	if len(tok) < 4 {
		return nil, fmt.Errorf("mfinput: %s: parameter definition %q needs PARNAM PARTYP Parval NCLU",
			lr.where(), strings.TrimSpace(line))
	}
	p := &Parameter{Name: tok[0], Type: strings.ToUpper(tok[1])}
	if p.Value, err = parseValue(tok[2], Float); err != nil {
		return nil, fmt.Errorf("mfinput: %s: parameter %s value: %w", lr.where(), p.Name, err)
	}
	nclu, err := strconv.Atoi(tok[3])
	if err != nil || nclu < 1 {
		return nil, fmt.Errorf("mfinput: %s: parameter %s: invalid cluster count %q", lr.where(), p.Name, tok[3])
	}
	ninst := 0
	if len(tok) >= 6 && strings.EqualFold(tok[4], "INSTANCES") {
		if ninst, err = strconv.Atoi(tok[5]); err != nil || ninst < 1 {
			return nil, fmt.Errorf("mfinput: %s: parameter %s: invalid instance count %q", lr.where(), p.Name, tok[5])
		}
		p.TimeVarying = true
	}
	if !p.TimeVarying {
		clusters, err := loadClusters(lr, nclu)
		if err != nil {
			return nil, err
		}
		p.Instances = []Instance{{Name: StaticInstance, Clusters: clusters}}
		return p, nil
	}
	for i := 0; i < ninst; i++ {
		line, err := lr.next()
		if err != nil {
			return nil, err
		}
		tok := fields(stripComment(line))
		if len(tok) == 0 {
			return nil, fmt.Errorf("mfinput: %s: parameter %s: missing instance name", lr.where(), p.Name)
		}
		clusters, err := loadClusters(lr, nclu)
		if err != nil {
			return nil, err
		}
		p.Instances = append(p.Instances, Instance{Name: tok[0], Clusters: clusters})
	}
	return p, nil
}

func loadClusters(lr *lineReader, n int) ([]Cluster, error) {
	o := make([]Cluster, n)
	for i := range o {
		line, err := lr.next()
		if err != nil {
			return nil, err
		}
		tok := fields(stripComment(line))
		if len(tok) < 2 {
			return nil, fmt.Errorf("mfinput: %s: cluster %q needs Mltarr Zonarr", lr.where(), strings.TrimSpace(line))
		}
		o[i] = Cluster{Mult: tok[0], Zone: tok[1]}
		for _, t := range tok[2:] {
			iz, err := strconv.Atoi(t)
			if err != nil {
				break
			}
			o[i].IZ = append(o[i].IZ, iz)
		}
	}
	return o, nil
}

// readParamRefs reads n stress-period parameter records: Pname [Iname].
func readParamRefs(lr *lineReader, n int) ([]ParamRef, error) {
	refs := make([]ParamRef, 0, n)
	for i := 0; i < n; i++ {
		line, err := lr.next()
		if err == io.EOF {
			return nil, fmt.Errorf("mfinput: %s: read %d of %d parameter names: %w",
				lr.where(), i, n, ErrParameterCountMismatch)
		} else if err != nil {
			return nil, err
		}
		tok := fields(stripComment(line))
		if len(tok) == 0 {
			return nil, fmt.Errorf("mfinput: %s: blank parameter record, %d of %d read: %w",
				lr.where(), i, n, ErrParameterCountMismatch)
		}
		ref := ParamRef{Name: tok[0]}
		if len(tok) > 1 {
			ref.Instance = tok[1]
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func writeParamRefs(w io.Writer, refs []ParamRef) error {
	for _, r := range refs {
		line := r.Name
		if r.Instance != "" {
			line += " " + r.Instance
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
