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
	"io"
	"os"
	"path"
	"strings"

	"github.com/spatialmodel/mfinput"
	"github.com/spatialmodel/mfinput/cloud"
	"github.com/spatialmodel/mfinput/nam"
	"github.com/spf13/cast"
)

// pkg is a package read from a file.
type pkg interface {
	// write writes the package file, creating external units with
	// units.
	write(w io.Writer, units mfinput.UnitCreator) error
	// registerOutputs registers the output files of the package.
	registerOutputs(reg mfinput.OutputRegistry, base string) error
}

type arrayPkg struct{ *mfinput.ArrayPackage }

func (p arrayPkg) write(w io.Writer, units mfinput.UnitCreator) error { return p.Write(w, units) }
func (p arrayPkg) registerOutputs(reg mfinput.OutputRegistry, base string) error {
	return p.RegisterOutputs(reg, base)
}

type mnw1Pkg struct{ *mfinput.MNW1 }

func (p mnw1Pkg) write(w io.Writer, _ mfinput.UnitCreator) error { return p.Write(w) }
func (p mnw1Pkg) registerOutputs(reg mfinput.OutputRegistry, base string) error {
	return p.RegisterOutputs(reg, base)
}

type welPkg struct{ *mfinput.WEL }

func (p welPkg) write(w io.Writer, _ mfinput.UnitCreator) error { return p.Write(w) }
func (p welPkg) registerOutputs(reg mfinput.OutputRegistry, base string) error {
	return p.RegisterOutputs(reg, base)
}

type lmtPkg struct{ *mfinput.LMT }

func (p lmtPkg) write(w io.Writer, _ mfinput.UnitCreator) error { return p.Write(w) }
func (p lmtPkg) registerOutputs(reg mfinput.OutputRegistry, _ string) error {
	return p.RegisterOutputs(reg)
}

// arraySpec returns the layout of an array package type.
func arraySpec(ftype string) (*mfinput.PackageSpec, bool) {
	switch strings.ToUpper(ftype) {
	case mfinput.EVTSpec.Ftype:
		return mfinput.EVTSpec, true
	case mfinput.RCHSpec.Ftype:
		return mfinput.RCHSpec, true
	}
	return nil, false
}

// geometry returns the grid dimensions from the configuration.
func (cfg *Cfg) geometry() (mfinput.Dis, error) {
	g := mfinput.Dis{
		Nrow: cast.ToInt(cfg.Get("Grid.Nrow")),
		Ncol: cast.ToInt(cfg.Get("Grid.Ncol")),
		Nlay: cast.ToInt(cfg.Get("Grid.Nlay")),
		Nper: cast.ToInt(cfg.Get("Grid.Nper")),
	}
	if g.Nrow <= 0 || g.Ncol <= 0 || g.Nlay <= 0 || g.Nper <= 0 {
		return g, fmt.Errorf("mfinput: invalid grid dimensions %+v", g)
	}
	return g, nil
}

// units returns a unit registry. If --nam is set, it is loaded from the
// name file; otherwise it is empty and resolves files relative to the
// directory of the input file.
func (cfg *Cfg) units(ctx context.Context) (*nam.Registry, error) {
	namLoc := os.ExpandEnv(cfg.GetString("nam"))
	if namLoc == "" {
		bucketName, key, err := cloud.SplitPath(os.ExpandEnv(cfg.GetString("input")))
		if err != nil {
			return nil, err
		}
		bucket, err := cloud.OpenBucket(ctx, bucketName)
		if err != nil {
			return nil, err
		}
		prefix := ""
		if d := path.Dir(key); d != "." {
			prefix = d + "/"
		}
		return nam.NewRegistry(ctx, bucket, prefix, nil, cfg.log), nil
	}
	bucketName, key, err := cloud.SplitPath(namLoc)
	if err != nil {
		return nil, err
	}
	bucket, err := cloud.OpenBucket(ctx, bucketName)
	if err != nil {
		return nil, err
	}
	return nam.Load(ctx, bucket, key, cfg.log)
}

// load reads the package given by --package and --input.
func (cfg *Cfg) load(ctx context.Context, units *nam.Registry) (pkg, error) {
	ftype := strings.ToUpper(cfg.GetString("package"))
	input := os.ExpandEnv(cfg.GetString("input"))
	if input == "" {
		return nil, fmt.Errorf("mfinput: no input file specified")
	}
	b, err := cloud.ReadFile(ctx, input)
	if err != nil {
		return nil, err
	}
	g, err := cfg.geometry()
	if err != nil {
		return nil, err
	}
	opts := []mfinput.Option{
		mfinput.WithLogger(cfg.log),
		mfinput.WithName(input),
	}
	log := cfg.log.WithField("package", ftype)
	log.WithField("file", input).Info("reading package")

	switch ftype {
	case mfinput.MNW1Ftype:
		p, err := mfinput.LoadMNW1(bytes.NewReader(b), g, opts...)
		if err != nil {
			return nil, err
		}
		return mnw1Pkg{p}, nil
	case mfinput.WELFtype:
		p, err := mfinput.LoadWEL(bytes.NewReader(b), g, opts...)
		if err != nil {
			return nil, err
		}
		return welPkg{p}, nil
	case mfinput.LMTFtype, "LMT":
		p, err := mfinput.LoadLMT(bytes.NewReader(b), opts...)
		if err != nil {
			return nil, err
		}
		return lmtPkg{p}, nil
	}
	spec, ok := arraySpec(ftype)
	if !ok {
		return nil, fmt.Errorf("mfinput: unsupported package type %q", ftype)
	}
	unit := cast.ToInt(cfg.Get("unit"))
	if unit == 0 {
		unit = spec.DefaultUnit
		if units != nil {
			if e, ok := units.File().Ftype(spec.Ftype); ok {
				unit = e.Unit
			}
		}
	}
	opts = append(opts, mfinput.WithUnit(unit))
	p, err := mfinput.LoadArrayPackage(bytes.NewReader(b), spec, g, units, opts...)
	if err != nil {
		return nil, err
	}
	return arrayPkg{p}, nil
}

// loadArray reads an EVT or RCH package.
func (cfg *Cfg) loadArray(ctx context.Context) (*mfinput.ArrayPackage, error) {
	if _, ok := arraySpec(cfg.GetString("package")); !ok {
		return nil, fmt.Errorf("mfinput: package type %q does not hold arrays", cfg.GetString("package"))
	}
	units, err := cfg.units(ctx)
	if err != nil {
		return nil, err
	}
	p, err := cfg.load(ctx, units)
	if err != nil {
		return nil, err
	}
	return p.(arrayPkg).ArrayPackage, nil
}

// outputBase returns the location of the output file without its
// extension, which is used to name budget files.
func outputBase(output string) string {
	base := path.Base(output)
	if ext := path.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	return base
}
