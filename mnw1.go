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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MNW1 loss types.
const (
	LossSkin   = "SKIN"
	LossLinear = "LINEAR"
)

// MNW1 auxiliary output kinds.
const (
	AuxWEL1   = "WEL1"
	AuxByNode = "BYNODE"
	AuxQSum   = "QSUM"
)

// MNWNode is one node of a multi-node well in a stress period. Layer,
// Row and Col are one-based.
type MNWNode struct {
	Layer, Row, Col int

	// Qdes is the desired flow rate, held in single precision.
	Qdes float64

	// Flag is "MN" to start or continue a multi-node well, "MULTI" to
	// continue one, or empty for a single-node well.
	Flag string
}

// MNWAuxFile is an auxiliary output file written by the MNW1 package.
type MNWAuxFile struct {
	Filename string
	Kind     string
	Unit     int
	AllTime  bool
}

// MNW1Header holds the scalar settings of an MNW1 package.
type MNW1Header struct {
	// MXMNW is the maximum number of wells simulated.
	MXMNW int
	// IWL2CB is the cell-by-cell budget unit.
	IWL2CB int
	// IWELPT controls printing of well information.
	IWELPT int
	// NOMOITER is the number of iterations in which well flows are
	// calculated.
	NOMOITER int
	// KSPREF selects the water levels used as drawdown reference.
	KSPREF int
	// LossType is LossSkin or LossLinear.
	LossType string
	// Prefix, if set, names the time series output files.
	Prefix string
}

// MNW1Ftype is the name file type of the MNW1 package.
const MNW1Ftype = "MNW1"

const mnw1Heading = "# Multi-node well 1 (MNW1) file for MODFLOW, generated by mfinput."

// MNW1 is a multi-node well package. Its stress-period data are node
// lists; a period without a list reuses the previous period's list.
type MNW1 struct {
	MNW1Header
	AuxFiles []MNWAuxFile

	periods *stressList[MNWNode]
}

// NewMNW1 creates an MNW1 package. periods holds the node list for each
// stress period; a nil entry reuses the previous list and an empty,
// non-nil entry simulates no wells.
func NewMNW1(g Geometry, h MNW1Header, aux []MNWAuxFile, periods [][]MNWNode) (*MNW1, error) {
	_, _, _, nper := g.Dims()
	if h.LossType == "" {
		h.LossType = LossSkin
	}
	h.LossType = strings.ToUpper(h.LossType)
	if h.LossType != LossSkin && h.LossType != LossLinear {
		return nil, fmt.Errorf("mfinput: MNW1 LOSSTYPE %q must be %s or %s", h.LossType, LossSkin, LossLinear)
	}
	for _, a := range aux {
		switch a.Kind {
		case AuxWEL1, AuxByNode, AuxQSum:
		default:
			return nil, fmt.Errorf("mfinput: MNW1 auxiliary file %s: kind %q must be %s, %s or %s",
				a.Filename, a.Kind, AuxWEL1, AuxByNode, AuxQSum)
		}
	}
	narrowed := make([][]MNWNode, len(periods))
	for i, nodes := range periods {
		if nodes == nil {
			continue
		}
		narrowed[i] = make([]MNWNode, len(nodes))
		for j, n := range nodes {
			n.Qdes = float64(float32(n.Qdes))
			narrowed[i][j] = n
		}
	}
	l, err := newStressList(MNW1Ftype, nper, narrowed, func(step int, nodes []MNWNode) error {
		if len(nodes) > h.MXMNW {
			return fmt.Errorf("mfinput: MNW1 stress period %d: %d nodes exceeds MXMNW %d", step+1, len(nodes), h.MXMNW)
		}
		for _, n := range nodes {
			if err := checkCell(g, MNW1Ftype, step, n.Layer, n.Row, n.Col); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &MNW1{
		MNW1Header: h,
		AuxFiles:   append([]MNWAuxFile(nil), aux...),
		periods:    l,
	}, nil
}

// NSteps returns the number of stress periods.
func (m *MNW1) NSteps() int { return m.periods.nsteps() }

// Nodes returns the node list in effect during a zero-based stress
// period. The returned slice must not be modified.
func (m *MNW1) Nodes(step int) ([]MNWNode, error) { return m.periods.at(step) }

// Reused reports whether a stress period reuses the previous node list.
func (m *MNW1) Reused(step int) bool { return m.periods.reused(step) }

// RegisterOutputs registers the budget file, as base + ".cbc", and the
// auxiliary output files.
func (m *MNW1) RegisterOutputs(reg OutputRegistry, base string) error {
	if m.IWL2CB > 0 {
		if err := reg.RegisterOutput(m.IWL2CB, base+".cbc"); err != nil {
			return err
		}
	}
	for _, a := range m.AuxFiles {
		if err := reg.RegisterOutput(a.Unit, a.Filename); err != nil {
			return err
		}
	}
	return nil
}

// Write writes the package file. The ADD option and the water-quality,
// water-level limit and pumping limit fields are not written.
func (m *MNW1) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, mnw1Heading)
	fmt.Fprintf(bw, "%s REF = %d\n", EncodeControl([]int{m.MXMNW, m.IWL2CB, m.IWELPT, m.NOMOITER}, ""), m.KSPREF)
	fmt.Fprintln(bw, m.LossType)
	for _, kind := range []string{AuxWEL1, AuxByNode, AuxQSum} {
		for _, a := range m.AuxFiles {
			if a.Kind != kind {
				continue
			}
			line := fmt.Sprintf("FILE:%s %s:%10d", a.Filename, a.Kind, a.Unit)
			if a.AllTime && kind != AuxWEL1 {
				line += " ALLTIME"
			}
			fmt.Fprintln(bw, line)
		}
	}
	for i := 0; i < m.periods.nsteps(); i++ {
		fmt.Fprintf(bw, "%10d # stress period %d\n", m.periods.itmp(i), i+1)
		if m.periods.reused(i) {
			continue
		}
		for _, n := range m.periods.supplied[i] {
			line := fmt.Sprintf("%10d%10d%10d%s", n.Layer, n.Row, n.Col, formatField(Float, n.Qdes))
			if n.Flag != "" {
				line += " " + n.Flag
			}
			fmt.Fprintln(bw, line)
		}
	}
	if m.Prefix != "" {
		fmt.Fprintf(bw, "PREFIX:%s\n", m.Prefix)
	}
	return bw.Flush()
}

// LoadMNW1 reads an MNW1 package file.
func LoadMNW1(r io.Reader, g Geometry, opts ...Option) (*MNW1, error) {
	o := newOptions(opts)
	log := o.log.WithField("package", MNW1Ftype)
	lr := newLineReader(r, o.name)
	for lr.peekComment() {
		if _, err := lr.next(); err != nil {
			return nil, err
		}
	}

	var h MNW1Header
	line, err := lr.next()
	if err != nil {
		return nil, fmt.Errorf("mfinput: MNW1: missing header record: %w", ErrMalformedControlLine)
	}
	hv, err := DecodeControl(line, 4)
	if err != nil {
		return nil, fmt.Errorf("mfinput: MNW1 header: %w", err)
	}
	h.MXMNW, h.IWL2CB, h.IWELPT, h.NOMOITER = hv[0], hv[1], hv[2], hv[3]
	if h.KSPREF, err = parseREF(line); err != nil {
		return nil, fmt.Errorf("mfinput: %s: %v", lr.where(), err)
	}

	if line, err = lr.next(); err != nil {
		return nil, fmt.Errorf("mfinput: MNW1: missing LOSSTYPE record: %w", ErrMalformedControlLine)
	}
	if tok := fields(stripComment(line)); len(tok) > 0 {
		h.LossType = strings.ToUpper(tok[0])
	}

	var aux []MNWAuxFile
	for {
		line, err := lr.next()
		if err != nil {
			return nil, fmt.Errorf("mfinput: MNW1: missing stress period data: %w", ErrStepCountMismatch)
		}
		if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(line)), "FILE:") {
			lr.unread(line)
			break
		}
		a, err := parseAuxFile(line)
		if err != nil {
			return nil, fmt.Errorf("mfinput: %s: %v", lr.where(), err)
		}
		aux = append(aux, a)
	}

	_, _, _, nper := g.Dims()
	periods, err := readStressLists(lr, MNW1Ftype, nper, log, parseNode)
	if err != nil {
		return nil, err
	}

	for {
		line, err := lr.next()
		if err != nil {
			break
		}
		t := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToUpper(t), "PREFIX:") {
			h.Prefix = strings.TrimSpace(t[len("PREFIX:"):])
			break
		}
	}
	return NewMNW1(g, h, aux, periods)
}

// parseREF extracts kspref from the REF option of the header record,
// written as "REF:n" or "REF = n". It defaults to 1.
func parseREF(line string) (int, error) {
	up := strings.ToUpper(stripComment(line))
	i := strings.Index(up, "REF")
	if i < 0 {
		return 1, nil
	}
	rest := strings.TrimLeft(up[i+3:], " \t:=")
	tok := fields(rest)
	if len(tok) == 0 {
		return 1, nil
	}
	v, err := strconv.Atoi(tok[0])
	if err != nil {
		return 0, fmt.Errorf("invalid REF value %q", tok[0])
	}
	return v, nil
}

// parseAuxFile parses "FILE:name KIND:unit [ALLTIME]".
func parseAuxFile(line string) (MNWAuxFile, error) {
	var a MNWAuxFile
	tok := strings.Fields(line)
	if len(tok) < 2 {
		return a, fmt.Errorf("invalid auxiliary file record %q", strings.TrimSpace(line))
	}
	a.Filename = tok[0][len("FILE:"):]
	kind := tok[1]
	unitText := ""
	if i := strings.IndexByte(kind, ':'); i >= 0 {
		kind, unitText = kind[:i], kind[i+1:]
	}
	next := 2
	if unitText == "" && len(tok) > 2 {
		unitText, next = tok[2], 3
	}
	a.Kind = strings.ToUpper(kind)
	u, err := strconv.Atoi(unitText)
	if err != nil {
		return a, fmt.Errorf("invalid unit in auxiliary file record %q", strings.TrimSpace(line))
	}
	a.Unit = u
	for _, t := range tok[next:] {
		if strings.EqualFold(t, "ALLTIME") {
			a.AllTime = true
		}
	}
	return a, nil
}

// parseNode parses "Lay Row Col Qdes [MN|MULTI] ...".
func parseNode(line string) (MNWNode, error) {
	var n MNWNode
	tok := fields(stripComment(line))
	if len(tok) < 4 {
		return n, fmt.Errorf("mfinput: node record %q needs Lay Row Col Qdes: %w", strings.TrimSpace(line), ErrShapeMismatch)
	}
	ids := make([]int, 3)
	for i := range ids {
		v, err := strconv.Atoi(tok[i])
		if err != nil {
			return n, fmt.Errorf("mfinput: node index %q: %w", tok[i], ErrTypeMismatch)
		}
		ids[i] = v
	}
	n.Layer, n.Row, n.Col = ids[0], ids[1], ids[2]
	q, err := parseValue(tok[3], Float)
	if err != nil {
		return n, err
	}
	n.Qdes = q
	for _, t := range tok[4:] {
		if u := strings.ToUpper(t); u == "MN" || u == "MULTI" {
			n.Flag = u
			break
		}
	}
	return n, nil
}
