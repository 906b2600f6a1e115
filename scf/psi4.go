/*
 * psi4.go, part of gocamcasp.
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

package scf

import (
	"bufio"
	"context"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rmera/gocamcasp/clt"
	"github.com/rmera/gocamcasp/movecs"
)

type Psi4Handle struct {
	base
}

func NewPsi4Handle(env Env) *Psi4Handle {
	return &Psi4Handle{base: newBase("psi4", env)}
}

//Check fails if Psi4 is marked as missing, or if there is neither
//a wrapper script nor a PSI4_HOME.
func (P *Psi4Handle) Check() error {
	if err := P.installed(); err != nil {
		return err
	}
	if P.wrapper() == "" && P.env.Psi4Home == "" {
		return configError("", "PSI4_HOME is not set, can't run psi4 calculations")
	}
	return nil
}

//BuildInput fills in the <job>.psi4 template, if there is one, to produce
//the input for the dimer.
func (P *Psi4Handle) BuildInput(J *clt.Job, frag string) error {
	if frag != clt.FragAB {
		return nil
	}
	tmpl := P.path(P.name + ".psi4")
	if _, err := os.Stat(tmpl); err != nil {
		return nil
	}
	in, err := os.Open(tmpl)
	if err != nil {
		return configError(frag, "can't read %s: %s", tmpl, err.Error())
	}
	defer in.Close()
	subst, err := psi4Substitutions(J)
	if err != nil {
		return err
	}
	out, err := os.Create(P.path(P.jobM(frag) + ".in"))
	if err != nil {
		return configError(frag, "can't write Psi4 input: %s", err.Error())
	}
	w := bufio.NewWriter(out)
	s := bufio.NewScanner(in)
	for s.Scan() {
		w.WriteString(fillPsi4Line(s.Text(), subst))
		w.WriteByte('\n')
	}
	if err := s.Err(); err != nil {
		out.Close()
		return configError(frag, "can't read %s: %s", tmpl, err.Error())
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return configError(frag, "can't write Psi4 input: %s", err.Error())
	}
	return out.Close()
}

type psi4Subst struct {
	key, value string
}

//The order matters: a line is only filled for the first key it contains.
func psi4Substitutions(J *clt.Job) ([]psi4Subst, error) {
	aux, ok := clt.AuxBasis(J.AuxBasis)
	if !ok {
		return nil, configError(clt.FragAB, "unknown auxiliary basis %q", J.AuxBasis)
	}
	var shiftA, shiftB float64
	if J.MolA != nil {
		shiftA = J.MolA.ACShift
	}
	if J.MolB != nil {
		shiftB = J.MolB.ACShift
	}
	return []psi4Subst{
		{"JK_BASIS", aux},
		{"RI_BASIS", aux},
		{"BASIS", clt.BasisFor(clt.Psi4, J.Basis)},
		{"FUNC", J.Functional},
		{"DO_DHF", "True"},
		{"AC_SHIFT_A", pyFloat(shiftA)},
		{"AC_SHIFT_B", pyFloat(shiftB)},
	}, nil
}

func fillPsi4Line(line string, subst []psi4Subst) string {
	for _, s := range subst {
		if strings.Contains(line, s.key) {
			return strings.ReplaceAll(line, "{"+s.key+"}", s.value)
		}
	}
	return line
}

//pyFloat formats v the way Psi4 input files usually spell floats:
//always with a decimal point, exponents only for very large or small values.
func pyFloat(v float64) string {
	a := math.Abs(v)
	if a != 0 && (a < 1e-4 || a >= 1e16) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func (P *Psi4Handle) Run(ctx context.Context, frag string) error {
	if err := P.Check(); err != nil {
		return err
	}
	jobM := P.jobM(frag)
	datafile, outfile := jobM+".in", jobM+".out"
	c := Command{Name: "psi4", Args: []string{datafile, outfile}}
	if w := P.wrapper(); w != "" {
		c = Command{Name: w, Args: []string{datafile, outfile, P.cores()}}
	}
	//Psi4 writes its own output file.
	return P.run(ctx, frag, c, "", false)
}

//Orbitals reads the formatted checkpoint file.
func (P *Psi4Handle) Orbitals(ctx context.Context, frag string) (*movecs.Orbitals, error) {
	return P.readOrbitals(frag, P.jobM(frag)+".fchk", movecs.ReadFchk)
}
