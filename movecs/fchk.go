/*
 * fchk.go, part of gocamcasp.
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
	"io"
	"strconv"
	"strings"
)

//ReadFchk reads the alpha orbitals from a formatted checkpoint file, as
//written by Psi4. Spherical shells are reordered from the -m..+m order of
//the checkpoint file (0, +1, -1, +2, -2...) to the one CamCASP expects
//(-l, ..., 0, ..., +l).
func ReadFchk(r io.Reader) (*Orbitals, error) {
	F := newFieldReader(r)
	var nbf int
	var shells, energies, coeffs []float64
	for {
		l, ok := F.nextLine()
		if !ok {
			break
		}
		var err error
		switch {
		case strings.HasPrefix(l, "Number of basis functions"):
			f := strings.Fields(l)
			nbf, err = strconv.Atoi(f[len(f)-1])
		case strings.HasPrefix(l, "Shell types"):
			shells, err = fchkArray(F, l)
		case strings.HasPrefix(l, "Alpha Orbital Energies"):
			energies, err = fchkArray(F, l)
		case strings.HasPrefix(l, "Alpha MO coefficients"):
			coeffs, err = fchkArray(F, l)
		}
		if err != nil {
			return nil, decorate(err, "", "ReadFchk")
		}
	}
	if nbf == 0 || energies == nil || coeffs == nil {
		return nil, newError("", "basis size, orbital energies or MO coefficients missing from checkpoint file")
	}
	O, err := New("Psi4", energies, coeffs)
	if err != nil {
		return nil, decorate(err, "", "ReadFchk")
	}
	if O.NBF() != nbf {
		return nil, newError("", "%d coefficients per orbital for %d basis functions", O.NBF(), nbf)
	}
	if shells == nil {
		return O, nil
	}
	types := make([]int, len(shells))
	for i, v := range shells {
		types[i] = int(v)
	}
	order, err := fchkOrder(types)
	if err != nil {
		return nil, decorate(err, "", "ReadFchk")
	}
	if err := O.ReorderBasis(order); err != nil {
		return nil, decorate(err, "", "ReadFchk")
	}
	return O, nil
}

//fchkArray reads the array announced by the header line l (... N= n).
func fchkArray(F *fieldReader, l string) ([]float64, error) {
	i := strings.Index(l, "N=")
	if i < 0 {
		return nil, newError("", "line %d: no array size", F.line)
	}
	n, err := strconv.Atoi(strings.TrimSpace(l[i+2:]))
	if err != nil {
		return nil, newError("", "line %d: %s", F.line, err.Error())
	}
	return F.floats(n)
}

//shellSize returns the number of functions in a shell of the given type.
//Negative types are spherical, except -1, which is an sp shell.
func shellSize(t int) int {
	switch {
	case t == -1:
		return 4
	case t < 0:
		return -2*t + 1
	}
	return (t + 1) * (t + 2) / 2
}

//fchkOrder returns the reordering for the basis described by the shell
//types. Only spherical shells with l>1 change.
func fchkOrder(types []int) ([]int, error) {
	var order []int
	for _, t := range types {
		offset := len(order)
		if t >= -1 {
			for i := 0; i < shellSize(t); i++ {
				order = append(order, offset+i)
			}
			continue
		}
		l := -t
		if l > 7 {
			return nil, newError("", "shell type %d not supported", t)
		}
		for m := -l; m <= l; m++ {
			pos := 0 //position of m in the checkpoint order
			if m > 0 {
				pos = 2*m - 1
			} else if m < 0 {
				pos = -2 * m
			}
			order = append(order, offset+pos)
		}
	}
	return order, nil
}
