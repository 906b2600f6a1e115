/*
 * layout.go, part of gocamcasp.
 *
 *
 * Copyright 2024 Raul Mera <rmera{at}usachDOTcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

package basis

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rmera/gocamcasp/clt"
)

//action says what to do with the lines of a region of the template
//when writing one file.
type action int

const (
	drop     action = iota
	own             //written in place
	ghost           //full basis, zero charge, appended at the end
	farGhost        //s and p functions only, placeholder charges, appended at the end
	inPlace         //written in place, but with zero charge (midbond in the dimer)
)

type region int

const (
	preamble region = iota //before the first marker
	regionA
	regionB
	regionMid
)

//layout describes how one file is built from the template.
type layout struct {
	frag    string
	actions [4]action
	//header returns the atom type count and total charge for the file, from
	//the per-molecule ones in the template. nil leaves the header as is.
	header func(nA, nB, qA, qB int) (int, int)
}

func monomer() layout {
	return layout{frag: clt.FragA, actions: [4]action{own, own, drop, drop}}
}

func monomerCentered(plus, mb bool) []layout {
	other, mid := drop, drop
	if plus {
		other = farGhost
		if mb {
			mid = ghost
		}
	}
	count := func(self, nA, nB int) int {
		if !plus {
			return self
		}
		return nA + nB + boolInt(mb)
	}
	return []layout{
		{frag: clt.FragA, actions: [4]action{own, own, other, mid},
			header: func(nA, nB, qA, qB int) (int, int) { return count(nA, nA, nB), qA }},
		{frag: clt.FragB, actions: [4]action{own, other, own, mid},
			header: func(nA, nB, qA, qB int) (int, int) { return count(nB, nA, nB), qB }},
	}
}

func dimerCentered(mb bool) []layout {
	mid := drop
	if mb {
		mid = ghost
	}
	n := func(nA, nB int) int { return nA + nB + boolInt(mb) }
	return []layout{
		{frag: clt.FragA, actions: [4]action{own, own, ghost, mid},
			header: func(nA, nB, qA, qB int) (int, int) { return n(nA, nB), qA }},
		{frag: clt.FragB, actions: [4]action{own, ghost, own, mid},
			header: func(nA, nB, qA, qB int) (int, int) { return n(nA, nB), qB }},
	}
}

func dimerAB(mb bool) layout {
	mid := drop
	if mb {
		mid = inPlace
	}
	return layout{frag: clt.FragAB, actions: [4]action{own, own, own, mid},
		header: func(nA, nB, qA, qB int) (int, int) { return nA + nB + boolInt(mb), qA + qB }}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var (
	reMarkerA   = regexp.MustCompile(`^#molecule A`)
	reMarkerB   = regexp.MustCompile(`^#molecule B`)
	reMarkerMid = regexp.MustCompile(`^#midbond`)
	reInclude   = regexp.MustCompile(`^#include +(.+)$`)
	reAtomtypes = regexp.MustCompile(`Atomtypes=\s*(\d+)\s+\+\s+(\d+)`)
	reHeaderQ   = regexp.MustCompile(`Charge=\s*(-?\d+)\s+\+\s+(-?\d+)`)
	reAtomQ     = regexp.MustCompile(`^Charge=\s*(\d+\.\d+)`)
	reAtoms     = regexp.MustCompile(`Atoms=\s*(\d+)`)
	reZeroQ     = regexp.MustCompile(`=\s*\d+\.`)
)

//lineKind is the classification of a template line.
type lineKind int

const (
	other lineKind = iota
	header
	markerA
	markerB
	markerMid
	include
	charge
)

func classify(line string) lineKind {
	switch {
	case strings.Contains(line, "Atomtypes="):
		return header
	case reMarkerA.MatchString(line):
		return markerA
	case reMarkerB.MatchString(line):
		return markerB
	case reMarkerMid.MatchString(line):
		return markerMid
	case reInclude.MatchString(line):
		return include
	case strings.HasPrefix(line, "Charge"):
		return charge
	}
	return other
}

//ghostBlock collects the ghost atoms of one file. They have to go
//after all the real atoms.
type ghostBlock struct {
	b strings.Builder
}

func (g *ghostBlock) line(s string) {
	g.b.WriteString(s)
	g.b.WriteByte('\n')
}

func (g *ghostBlock) block(s string) {
	writeBlock(&g.b, s)
}

func (g *ghostBlock) flush(out *strings.Builder) {
	out.WriteString(g.b.String())
	g.b.Reset()
}

func writeBlock(b *strings.Builder, s string) {
	b.WriteString(s)
	if s != "" && !strings.HasSuffix(s, "\n") {
		b.WriteByte('\n')
	}
}

//zeroCharge sets the nuclear charge of an atom line to 0.
func zeroCharge(line string) string {
	return reZeroQ.ReplaceAllString(line, "=0.")
}

//placeholder returns the ghost charge line that stands for an atom line
//when only s and p functions are kept. Hydrogens (charge 1.0) have only
//an s block.
func placeholder(line string) string {
	atoms := "1"
	if m := reAtoms.FindStringSubmatch(line); m != nil {
		atoms = m[1]
	}
	if m := reAtomQ.FindStringSubmatch(line); m != nil {
		if q, err := strconv.ParseFloat(m[1], 64); err == nil && q == 1.0 {
			return "Charge=0.0 Atoms=" + atoms + " Blocks=1 1"
		}
	}
	return "Charge=0.0 Atoms=" + atoms + " Blocks=2 1 1"
}

//rewriteHeader applies the atom type count and charge of the file
//to the header line. A header without the dual form is left alone.
func (l layout) rewriteHeader(line string) string {
	if l.header == nil {
		return line
	}
	m := reAtomtypes.FindStringSubmatch(line)
	if m == nil {
		return line
	}
	nA, _ := strconv.Atoi(m[1])
	nB, _ := strconv.Atoi(m[2])
	var qA, qB int
	q := reHeaderQ.FindStringSubmatch(line)
	if q != nil {
		qA, _ = strconv.Atoi(q[1])
		qB, _ = strconv.Atoi(q[2])
	}
	n, charge := l.header(nA, nB, qA, qB)
	line = reAtomtypes.ReplaceAllString(line, "Atomtypes="+strconv.Itoa(n))
	if q != nil {
		line = reHeaderQ.ReplaceAllString(line, "Charge="+strconv.Itoa(charge))
	}
	return line
}

//compile builds the file for the layout.
func (l layout) compile(lines []string, lib Library) (string, error) {
	var out strings.Builder
	var g ghostBlock
	reg := preamble
	for _, line := range lines {
		kind := classify(line)
		switch kind {
		case header:
			out.WriteString(l.rewriteHeader(line))
			out.WriteByte('\n')
			continue
		case markerA:
			reg = regionA
			continue
		case markerB:
			reg = regionB
			continue
		case markerMid:
			reg = regionMid
			continue
		}
		act := l.actions[reg]
		if act == drop {
			continue
		}
		switch kind {
		case include:
			name := strings.TrimSpace(reInclude.FindStringSubmatch(line)[1])
			var block string
			var err error
			if act == farGhost {
				block, err = lib.SP(name)
			} else {
				block, err = lib.Full(name)
			}
			if err != nil {
				return "", err
			}
			switch act {
			case own, inPlace:
				writeBlock(&out, block)
			default:
				g.block(block)
			}
		case charge:
			switch act {
			case own:
				out.WriteString(line + "\n")
			case inPlace:
				out.WriteString(zeroCharge(line) + "\n")
			case ghost:
				g.line(zeroCharge(line))
			case farGhost:
				g.line(placeholder(line))
			}
		default:
			switch act {
			case own, inPlace:
				out.WriteString(line + "\n")
			default:
				g.line(line)
			}
		}
	}
	g.flush(&out)
	return out.String(), nil
}
