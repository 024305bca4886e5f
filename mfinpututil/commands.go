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
	"text/tabwriter"

	"github.com/spatialmodel/mfinput"
	"github.com/spatialmodel/mfinput/cloud"
	"github.com/spf13/cast"
	"gonum.org/v1/gonum/mat"
)

// convert reads a package file and writes it to the output location.
func (cfg *Cfg) convert(ctx context.Context) error {
	output := os.ExpandEnv(cfg.GetString("output"))
	if output == "" {
		return fmt.Errorf("mfinput: no output file specified")
	}
	units, err := cfg.units(ctx)
	if err != nil {
		return err
	}
	p, err := cfg.load(ctx, units)
	if err != nil {
		return err
	}
	var b bytes.Buffer
	if err := p.write(&b, units); err != nil {
		return err
	}
	if err := p.registerOutputs(units, outputBase(output)); err != nil {
		return err
	}
	cfg.log.WithField("file", output).Info("writing package")
	if err := cloud.WriteFile(ctx, output, b.Bytes()); err != nil {
		return err
	}
	if namout := os.ExpandEnv(cfg.GetString("namout")); namout != "" {
		var nb bytes.Buffer
		if err := units.File().Write(&nb); err != nil {
			return err
		}
		cfg.log.WithField("file", namout).Info("writing name file")
		return cloud.WriteFile(ctx, namout, nb.Bytes())
	}
	return nil
}

// show prints one resolved array.
func (cfg *Cfg) show(ctx context.Context, w io.Writer) error {
	p, err := cfg.loadArray(ctx)
	if err != nil {
		return err
	}
	name := cfg.GetString("quantity")
	t := p.Timeline(name)
	if t == nil {
		return fmt.Errorf("mfinput: %s has no data for quantity %q", p.Spec().Ftype, name)
	}
	period := cast.ToInt(cfg.Get("period"))
	a, err := p.ResolvedArray(name, period-1)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s stress period %d [%s] %v\n", p.Spec().Ftype, t.Quantity().Name, period, dimString(t.Quantity()), a)
	fmt.Fprintf(w, "%v\n", mat.Formatted(a.Mat(), mat.Squeeze()))
	return nil
}

// summary prints the stress-period table of a package.
func (cfg *Cfg) summary(ctx context.Context, w io.Writer) error {
	p, err := cfg.loadArray(ctx)
	if err != nil {
		return err
	}
	spec := p.Spec()
	fmt.Fprintf(w, "%s: %d stress periods, %d parameters\n", spec.Ftype, p.NSteps(), p.Parameters().Len())
	for _, f := range spec.Header {
		v, _ := p.Header(f)
		fmt.Fprintf(w, "%s = %d\n", f, v)
	}
	names := cast.ToStringSlice(cfg.Get("quantities"))
	if len(names) == 0 {
		for _, q := range spec.Quantities {
			if p.Active(q.Name) {
				names = append(names, q.Name)
			}
		}
	}
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "quantity\tunits\tperiod\tcode\tarray\tfingerprint")
	for _, name := range names {
		t := p.Timeline(name)
		if t == nil {
			return fmt.Errorf("mfinput: %s has no data for quantity %q", spec.Ftype, name)
		}
		for step := 0; step < t.Len(); step++ {
			a, err := t.Resolved(step)
			if err != nil {
				return err
			}
			code := "reuse"
			if s := t.Supplied(step); s != nil {
				code = fmt.Sprintf("%d", t.Code(step))
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%v\t%s\n", t.Quantity().Name, dimString(t.Quantity()),
				step+1, code, a, a.Fingerprint()[:12])
		}
	}
	return tw.Flush()
}

// dimString returns the physical dimensions of q.
func dimString(q mfinput.Quantity) string {
	if s := q.Dims.String(); s != "" {
		return s
	}
	return "1"
}
