/*
 * molpro.go, part of gocamcasp.
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

package movecs

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

//Offsets that take each spherical component from Molpro's order to
//-l, ..., 0, ..., +l. Molpro uses
//  d0,d2-,d1+,d2+,d1-
//  f1+,f1-,f0,f3+,f2-,f3-,f2+
//  g0,g2-,g1+,g4+,g1-,g2+,g4-,g3+,g3-
//  h1+,h1-,h2+,h3+,h4-,h3-,h4+,h5-,h0,h5+,h2-
var molproShift = []struct {
	label string
	shift int
}{
	{"d0", 2}, {"d2-", -1}, {"d1+", 1}, {"d2+", 1}, {"d1-", -3},
	{"f1+", 4}, {"f1-", 1}, {"f0", 1}, {"f3+", 3}, {"f2-", -3}, {"f3-", -5}, {"f2+", -1},
	{"g0", 4}, {"g2-", 1}, {"g1+", 3}, {"g4+", 5}, {"g1-", -1}, {"g2+", 1}, {"g4-", -6}, {"g3+", 0}, {"g3-", -7},
	{"h1+", 6}, {"h1-", 3}, {"h2+", 5}, {"h3+", 5}, {"h4-", -3}, {"h3-", -3}, {"h4+", 3}, {"h5-", -7}, {"h0", -3}, {"h5+", 1}, {"h2-", -7},
}

//MolproOrder returns, for the given AO labels, the reordering that puts the
//spherical components in the CamCASP order.
func MolproOrder(aos []string) ([]int, error) {
	n := len(aos)
	inv := make([]int, n)
	for i := range inv {
		inv[i] = -1
	}
	for i, ao := range aos {
		target := -1
		if strings.ContainsAny(ao, "sp") {
			target = i
		} else {
			for _, s := range molproShift {
				if strings.Contains(ao, s.label) {
					target = i + s.shift
					break
				}
			}
		}
		if target == -1 {
			return nil, newError("", "AO type %s not implemented", ao)
		}
		if target < 0 || target >= n || inv[target] != -1 {
			return nil, newError("", "incomplete shell at AO %d (%s)", i+1, ao)
		}
		inv[target] = i
	}
	return inv, nil
}

//molproValues reads the comma-separated numbers that follow a section
//header in a Molpro wavefunction dump, until n have been read.
func molproValues(s *bufio.Scanner, n int) ([]float64, error) {
	ret := make([]float64, 0, n)
	for len(ret) < n && s.Scan() {
		fields := strings.Split(strings.TrimSpace(s.Text()), ",")
		//lines end with a comma
		if len(fields) > 0 && fields[len(fields)-1] == "" {
			fields = fields[:len(fields)-1]
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(f), "D", "E", 1), 64)
			if err != nil {
				return nil, newError("", "%s", err.Error())
			}
			ret = append(ret, v)
		}
	}
	if len(ret) != n {
		return nil, newError("", "read %d of %d values", len(ret), n)
	}
	return ret, nil
}

//ReadMolproAOs reads the labels of the basis functions from the BASIS DATA
//section of a Molpro output, and the number of contractions declared there.
func ReadMolproAOs(r io.Reader) ([]string, int, error) {
	s := bufio.NewScanner(r)
	inBasis := false
	n := 0
	var aos []string
	for s.Scan() {
		line := s.Text()
		switch {
		case strings.Contains(line, "BASIS DATA"):
			inBasis = true
			continue
		case strings.Contains(line, "NUMBER OF CONTRACTIONS"):
			f := strings.Fields(line)
			if len(f) < 4 {
				return nil, 0, newError("", "can't read the number of contractions from %q", line)
			}
			var err error
			if n, err = strconv.Atoi(f[3]); err != nil {
				return nil, 0, newError("", "%s", err.Error())
			}
			continue
		case !inBasis || strings.Contains(line, "Nr Sym  Nuc"):
			continue
		case strings.Contains(line, "NUCLEAR CHARGE"):
			inBasis = false
			continue
		}
		f := strings.Fields(line)
		if len(f) < 4 {
			continue
		}
		if strings.ContainsAny(f[3], "spdfgh") {
			aos = append(aos, f[3])
		} else if f[1] == "A" && len(aos) > 0 {
			//another contraction of the same type
			aos = append(aos, aos[len(aos)-1])
		}
	}
	if err := s.Err(); err != nil {
		return nil, 0, newError("", "%s", err.Error())
	}
	if len(aos) != n {
		return nil, 0, newError("", "read %d basis functions, expected %d", len(aos), n)
	}
	return aos, n, nil
}

//ReadMolpro reads the canonical orbitals from a Molpro wavefunction dump
//and the matching output, which gives the basis function labels.
func ReadMolpro(wfu, out io.Reader) (*Orbitals, error) {
	aos, n, err := ReadMolproAOs(out)
	if err != nil {
		return nil, decorate(err, "", "ReadMolpro")
	}
	s := bufio.NewScanner(wfu)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	//the number of orbitals is the first field of the second line.
	nmo := 0
	for i := 0; i < 2 && s.Scan(); i++ {
		if i == 1 {
			f := strings.Fields(s.Text())
			if len(f) > 0 {
				nmo, _ = strconv.Atoi(f[0])
			}
		}
	}
	if nmo <= 0 {
		return nil, newError("", "can't read the number of orbitals")
	}
	if nmo != n {
		return nil, newError("", "number of MOs in output (%d) and wavefunction file (%d) differ", n, nmo)
	}
	var energies, coeffs []float64
	for (energies == nil || coeffs == nil) && s.Scan() {
		l := s.Text()
		if !strings.Contains(l, "CANONICAL") {
			continue
		}
		switch {
		case strings.Contains(l, "EIG") && energies == nil:
			energies, err = molproValues(s, nmo)
		case strings.Contains(l, "ORBITALS") && coeffs == nil:
			coeffs, err = molproValues(s, nmo*nmo)
		}
		if err != nil {
			return nil, decorate(err, "", "ReadMolpro")
		}
	}
	if energies == nil || coeffs == nil {
		return nil, newError("", "canonical orbitals or energies missing from wavefunction file")
	}
	O, err := New("Molpro", energies, coeffs)
	if err != nil {
		return nil, err
	}
	order, err := MolproOrder(aos)
	if err != nil {
		return nil, decorate(err, "", "ReadMolpro")
	}
	if err := O.ReorderBasis(order); err != nil {
		return nil, err
	}
	return O, nil
}
