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

package mfinpututil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/mfinput"
	"github.com/spatialmodel/mfinput/cloud"
)

// GenerateSpec describes a package to be generated. It is read from a
// TOML file such as:
//
//	Package = "RCH"
//	Nrow = 2
//	Ncol = 3
//	Nper = 3
//	Option = 3
//	CBC = 50
//
//	[Quantities.rech]
//	Uniform = [0.001, 0.002]
type GenerateSpec struct {
	// Package is the package type, EVT or RCH.
	Package string

	// Nrow, Ncol, Nlay and Nper give the grid dimensions and the number
	// of stress periods. Nlay defaults to 1.
	Nrow, Ncol, Nlay, Nper int

	// Option is the first header value: NEVTOP or NRCHOP.
	Option int

	// CBC is the cell-by-cell budget unit, or 0.
	CBC int

	// Quantities holds the data of each active quantity, keyed by
	// quantity name.
	Quantities map[string]QuantitySpec
}

// QuantitySpec holds the data of one quantity. Exactly one of its fields
// should be set. Stress periods after the last value given reuse the
// last value, and consecutive equal values are written as reuse.
type QuantitySpec struct {
	// Uniform gives the value of every cell, one per stress period.
	Uniform []float64

	// Arrays gives the cell values in row-major order, one array per
	// stress period.
	Arrays [][]float64
}

// ReadGenerateSpec reads a TOML package description. File locations
// within it may contain environment variables.
func ReadGenerateSpec(ctx context.Context, location string) (*GenerateSpec, error) {
	b, err := cloud.ReadFile(ctx, os.ExpandEnv(location))
	if err != nil {
		return nil, err
	}
	s := new(GenerateSpec)
	if _, err := toml.Decode(string(b), s); err != nil {
		return nil, fmt.Errorf("mfinput: problem reading package description %s: %v", location, err)
	}
	return s, nil
}

// Build creates the package described by s.
func (s *GenerateSpec) Build() (*mfinput.ArrayPackage, error) {
	spec, ok := arraySpec(s.Package)
	if !ok {
		return nil, fmt.Errorf("mfinput: cannot generate package type %q", s.Package)
	}
	g := mfinput.Dis{Nrow: s.Nrow, Ncol: s.Ncol, Nlay: s.Nlay, Nper: s.Nper}
	if g.Nlay == 0 {
		g.Nlay = 1
	}
	if g.Nper <= 0 {
		return nil, fmt.Errorf("mfinput: package description has %d stress periods", g.Nper)
	}
	header := []int{s.Option, s.CBC}
	var timelines []*mfinput.Timeline
	for _, q := range spec.Quantities {
		if q.Active != nil && !q.Active(header) {
			continue
		}
		qs, ok := s.quantity(q.Name)
		if !ok {
			return nil, fmt.Errorf("mfinput: package description has no data for %s", q.Name)
		}
		arrays, err := qs.series(q.DType, g)
		if err != nil {
			return nil, fmt.Errorf("mfinput: %s: %w", q.Name, err)
		}
		t, err := mfinput.FromSeries(q, arrays)
		if err != nil {
			return nil, err
		}
		timelines = append(timelines, t)
	}
	return mfinput.NewArrayPackage(spec, g, header, nil, timelines...)
}

func (s *GenerateSpec) quantity(name string) (QuantitySpec, bool) {
	for k, v := range s.Quantities {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return QuantitySpec{}, false
}

// series returns one array for each stress period.
func (qs QuantitySpec) series(dtype mfinput.DType, g mfinput.Dis) ([]*mfinput.GridArray, error) {
	n := len(qs.Uniform)
	if len(qs.Arrays) > 0 {
		if n > 0 {
			return nil, fmt.Errorf("both Uniform and Arrays are set")
		}
		n = len(qs.Arrays)
	}
	if n == 0 {
		return nil, fmt.Errorf("no values")
	}
	if n > g.Nper {
		return nil, fmt.Errorf("%d values for %d stress periods: %w", n, g.Nper, mfinput.ErrStepCountMismatch)
	}
	o := make([]*mfinput.GridArray, g.Nper)
	for i := range o {
		if i >= n {
			o[i] = o[n-1]
			continue
		}
		var err error
		if len(qs.Uniform) > 0 {
			o[i], err = mfinput.ConstantArray(dtype, g.Nrow, g.Ncol, qs.Uniform[i])
		} else {
			o[i], err = mfinput.NewGridArray(dtype, g.Nrow, g.Ncol, qs.Arrays[i])
		}
		if err != nil {
			return nil, fmt.Errorf("stress period %d: %w", i+1, err)
		}
	}
	return o, nil
}

// generate builds the package described by --spec and writes it to
// --output.
func (cfg *Cfg) generate(ctx context.Context) error {
	output := os.ExpandEnv(cfg.GetString("output"))
	if output == "" {
		return fmt.Errorf("mfinput: no output file specified")
	}
	s, err := ReadGenerateSpec(ctx, cfg.GetString("spec"))
	if err != nil {
		return err
	}
	p, err := s.Build()
	if err != nil {
		return err
	}
	var b bytes.Buffer
	if err := p.Write(&b, nil); err != nil {
		return err
	}
	cfg.log.WithField("file", output).Info("writing package")
	return cloud.WriteFile(ctx, output, b.Bytes())
}
