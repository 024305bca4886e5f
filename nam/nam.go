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

// Package nam reads and writes model name files, which associate file
// units with file types and names, and resolves units to files held in
// blob storage.
package nam

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/mfinput"
	"gocloud.dev/blob"
)

// Output file types.
const (
	DataBinary = "DATA(BINARY)"
	Data       = "DATA"
)

// Entry is one record of a name file.
type Entry struct {
	Ftype    string
	Unit     int
	Filename string
}

// File is the contents of a name file.
type File struct {
	Heading string
	Entries []Entry
}

// Parse reads a name file. Blank lines and lines starting with '#' are
// skipped; the first comment line is kept as the heading.
func Parse(r io.Reader) (*File, error) {
	f := new(File)
	s := bufio.NewScanner(r)
	line := 0
	for s.Scan() {
		line++
		t := strings.TrimSpace(s.Text())
		if t == "" {
			continue
		}
		if strings.HasPrefix(t, "#") {
			if f.Heading == "" {
				f.Heading = t
			}
			continue
		}
		tok := strings.Fields(t)
		if len(tok) < 3 {
			return nil, fmt.Errorf("nam: line %d: record %q needs FTYPE UNIT FNAME", line, t)
		}
		u, err := strconv.Atoi(tok[1])
		if err != nil || u <= 0 {
			return nil, fmt.Errorf("nam: line %d: invalid unit %q", line, tok[1])
		}
		f.Entries = append(f.Entries, Entry{
			Ftype:    strings.ToUpper(tok[0]),
			Unit:     u,
			Filename: strings.Trim(tok[2], `'"`),
		})
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("nam: %v", err)
	}
	return f, nil
}

// Write writes the name file.
func (f *File) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if f.Heading != "" {
		fmt.Fprintln(bw, f.Heading)
	}
	for _, e := range f.Entries {
		fmt.Fprintf(bw, "%-14s %5d  %s\n", e.Ftype, e.Unit, e.Filename)
	}
	return bw.Flush()
}

// Unit returns the entry for a unit.
func (f *File) Unit(unit int) (Entry, bool) {
	for _, e := range f.Entries {
		if e.Unit == unit {
			return e, true
		}
	}
	return Entry{}, false
}

// Ftype returns the first entry with the given file type.
func (f *File) Ftype(ftype string) (Entry, bool) {
	for _, e := range f.Entries {
		if strings.EqualFold(e.Ftype, ftype) {
			return e, true
		}
	}
	return Entry{}, false
}

// Registry resolves file units to blobs in a bucket using the entries
// of a name file. It implements the unit interfaces of package mfinput.
// Registry is safe for concurrent use.
type Registry struct {
	ctx    context.Context
	bucket *blob.Bucket
	prefix string
	log    logrus.FieldLogger

	mu      sync.Mutex
	file    *File
	outputs map[int]string
}

// NewRegistry returns a registry for the entries of f. Blob keys are
// prefix followed by the file name. ctx is used for all blob
// operations.
func NewRegistry(ctx context.Context, bucket *blob.Bucket, prefix string, f *File, log logrus.FieldLogger) *Registry {
	if f == nil {
		f = new(File)
	}
	if log == nil {
		l := logrus.New()
		l.Out = ioutil.Discard
		log = l
	}
	return &Registry{
		ctx:     ctx,
		bucket:  bucket,
		prefix:  prefix,
		log:     log,
		file:    f,
		outputs: make(map[int]string),
	}
}

// Load reads the name file stored under key in bucket and returns a
// registry for it. Blob keys are resolved relative to the directory of
// key.
func Load(ctx context.Context, bucket *blob.Bucket, key string, log logrus.FieldLogger) (*Registry, error) {
	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		return nil, fmt.Errorf("nam: opening name file %s: %v", key, err)
	}
	defer r.Close()
	f, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("nam: %s: %v", key, err)
	}
	prefix := ""
	if i := strings.LastIndex(key, "/"); i >= 0 {
		prefix = key[:i+1]
	}
	return NewRegistry(ctx, bucket, prefix, f, log), nil
}

// File returns the name file, including entries added by CreateUnit
// and RegisterOutput.
func (r *Registry) File() *File {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := &File{Heading: r.file.Heading, Entries: append([]Entry(nil), r.file.Entries...)}
	return o
}

// UnitFilename returns the file name of unit.
func (r *Registry) UnitFilename(unit int) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.file.Unit(unit)
	return e.Filename, ok
}

// ResolveUnit implements mfinput.UnitResolver.
func (r *Registry) ResolveUnit(unit int) (io.ReadCloser, error) {
	name, ok := r.UnitFilename(unit)
	if !ok {
		return nil, fmt.Errorf("nam: unit %d is not in the name file: %w", unit, mfinput.ErrUnresolvedUnit)
	}
	r.log.WithFields(logrus.Fields{"unit": unit, "file": name}).Debug("resolving unit")
	return r.OpenFile(name)
}

// OpenFile implements mfinput.FileOpener.
func (r *Registry) OpenFile(name string) (io.ReadCloser, error) {
	rc, err := r.bucket.NewReader(r.ctx, r.prefix+name, nil)
	if err != nil {
		return nil, fmt.Errorf("nam: opening %s: %v: %w", name, err, mfinput.ErrUnresolvedUnit)
	}
	return rc, nil
}

// CreateUnit implements mfinput.UnitCreator. The unit is added to the
// name file as a DATA entry if it is not already present.
func (r *Registry) CreateUnit(unit int, filename string) (io.WriteCloser, error) {
	r.mu.Lock()
	e, ok := r.file.Unit(unit)
	if ok && e.Filename != filename {
		r.mu.Unlock()
		return nil, fmt.Errorf("nam: unit %d already belongs to %s", unit, e.Filename)
	}
	if !ok {
		r.file.Entries = append(r.file.Entries, Entry{Ftype: Data, Unit: unit, Filename: filename})
	}
	r.mu.Unlock()
	w, err := r.bucket.NewWriter(r.ctx, r.prefix+filename, nil)
	if err != nil {
		return nil, fmt.Errorf("nam: creating %s: %v", filename, err)
	}
	return w, nil
}

// RegisterOutput implements mfinput.OutputRegistry. The unit is added
// to the name file as a DATA(BINARY) entry.
func (r *Registry) RegisterOutput(unit int, filename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.outputs[unit]; ok {
		if f != filename {
			return fmt.Errorf("nam: output unit %d already registered for %s", unit, f)
		}
		return nil
	}
	if e, ok := r.file.Unit(unit); ok && e.Filename != filename {
		return fmt.Errorf("nam: output unit %d already belongs to %s", unit, e.Filename)
	} else if !ok {
		r.file.Entries = append(r.file.Entries, Entry{Ftype: DataBinary, Unit: unit, Filename: filename})
	}
	r.outputs[unit] = filename
	return nil
}

// Outputs returns the registered output units in increasing order.
func (r *Registry) Outputs() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := make([]int, 0, len(r.outputs))
	for u := range r.outputs {
		o = append(o, u)
	}
	sort.Ints(o)
	return o
}

// Save writes the name file to key in the bucket.
func (r *Registry) Save(key string) error {
	w, err := r.bucket.NewWriter(r.ctx, key, nil)
	if err != nil {
		return fmt.Errorf("nam: creating %s: %v", key, err)
	}
	if err := r.File().Write(w); err != nil {
		w.Close()
		return fmt.Errorf("nam: writing %s: %v", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("nam: writing %s: %v", key, err)
	}
	return nil
}
