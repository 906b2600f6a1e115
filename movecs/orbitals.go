/*
 * orbitals.go, part of gocamcasp.
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

//Package movecs reads and writes molecular orbitals in the plain-text
//format CamCASP takes as input, and converts the native orbital files
//of the supported SCF codes into it.
package movecs

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

//Orbitals is a set of molecular orbitals. Row i of Coeffs holds the
//coefficients of MO i over the basis functions.
type Orbitals struct {
	Source   string
	Title    string
	Code     string //the program that produced the orbitals
	Energies *mat.VecDense
	Coeffs   *mat.Dense
}

//New returns a set of orbitals for the given energies and coefficients. coeffs
//has the coefficients of each MO, one after the other, so its length must be
//len(energies) times the number of basis functions.
func New(code string, energies, coeffs []float64) (*Orbitals, error) {
	nmo := len(energies)
	if nmo == 0 || len(coeffs)%nmo != 0 {
		return nil, newError("", "%d coefficients can't be split among %d orbitals", len(coeffs), nmo)
	}
	nbf := len(coeffs) / nmo
	return &Orbitals{
		Code:     code,
		Energies: mat.NewVecDense(nmo, energies),
		Coeffs:   mat.NewDense(nmo, nbf, coeffs),
	}, nil
}

//NMO is the number of molecular orbitals
func (O *Orbitals) NMO() int {
	return O.Energies.Len()
}

//NBF is the number of basis functions
func (O *Orbitals) NBF() int {
	_, c := O.Coeffs.Dims()
	return c
}

//ReorderBasis moves the coefficient of basis function order[i] to position i, for every MO.
func (O *Orbitals) ReorderBasis(order []int) error {
	nmo, nbf := O.Coeffs.Dims()
	if len(order) != nbf {
		return newError("", "reordering %d basis functions with a %d-element permutation", nbf, len(order))
	}
	ret := mat.NewDense(nmo, nbf, nil)
	for i, j := range order {
		ret.SetCol(i, mat.Col(nil, j, O.Coeffs))
	}
	O.Coeffs = ret
	return nil
}

const perLine = 5

func writeFloats(w *bufio.Writer, v []float64) {
	for i, f := range v {
		fmt.Fprintf(w, "%24.15E", f)
		if (i+1)%perLine == 0 {
			w.WriteByte('\n')
		}
	}
	if len(v)%perLine != 0 {
		w.WriteByte('\n')
	}
}

//Write writes the orbitals in the CamCASP format.
func (O *Orbitals) Write(out io.Writer) error {
	w := bufio.NewWriter(out)
	fmt.Fprintf(w, "Source %s\n", O.Source)
	fmt.Fprintf(w, "Title %s\n", O.Title)
	fmt.Fprintf(w, "Code      %s\n", O.Code)
	fmt.Fprintf(w, "BFNS      %d\n", O.NBF())
	fmt.Fprintf(w, "NMOS      %d\n", O.NMO())
	fmt.Fprintf(w, "Energies  %d\n", O.NMO())
	en := make([]float64, O.NMO())
	for i := range en {
		en[i] = O.Energies.AtVec(i)
	}
	writeFloats(w, en)
	row := make([]float64, O.NBF())
	for i := 0; i < O.NMO(); i++ {
		fmt.Fprintf(w, "MO %d   Energy %24.15E\n", i+1, O.Energies.AtVec(i))
		writeFloats(w, mat.Row(row, i, O.Coeffs))
	}
	w.WriteString("END\n")
	return w.Flush()
}

//WriteFile writes the orbitals to name. The data goes first to a temporary
//file in the same directory, which is synced and renamed, so name is never
//left half-written.
func (O *Orbitals) WriteFile(name string) error {
	tmp, err := os.CreateTemp(filepath.Dir(name), filepath.Base(name)+".tmp*")
	if err != nil {
		return newError(name, "%s", err.Error())
	}
	defer os.Remove(tmp.Name()) //fails harmlessly after the rename
	if err := O.Write(tmp); err != nil {
		tmp.Close()
		return newError(name, "%s", err.Error())
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return newError(name, "%s", err.Error())
	}
	if err := tmp.Close(); err != nil {
		return newError(name, "%s", err.Error())
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return newError(name, "%s", err.Error())
	}
	if err := os.Rename(tmp.Name(), name); err != nil {
		return newError(name, "%s", err.Error())
	}
	return nil
}

//fieldReader returns the whitespace-separated fields of a text, line by line.
type fieldReader struct {
	s      *bufio.Scanner
	fields []string
	line   int
}

func newFieldReader(r io.Reader) *fieldReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	return &fieldReader{s: s}
}

//nextLine returns the next non-empty line, or false at the end of the input.
func (F *fieldReader) nextLine() (string, bool) {
	for F.s.Scan() {
		F.line++
		l := strings.TrimSpace(F.s.Text())
		if l != "" {
			return l, true
		}
	}
	return "", false
}

//floats reads n numbers, which may span several lines.
func (F *fieldReader) floats(n int) ([]float64, error) {
	ret := make([]float64, 0, n)
	for len(ret) < n {
		if len(F.fields) == 0 {
			l, ok := F.nextLine()
			if !ok {
				return nil, newError("", "file ended after %d of %d values", len(ret), n)
			}
			F.fields = strings.Fields(l)
		}
		v, err := strconv.ParseFloat(strings.Replace(F.fields[0], "D", "E", 1), 64)
		if err != nil {
			return nil, newError("", "line %d: %s", F.line, err.Error())
		}
		ret = append(ret, v)
		F.fields = F.fields[1:]
	}
	if len(F.fields) != 0 {
		return nil, newError("", "line %d: %d unexpected values", F.line, len(F.fields))
	}
	return ret, nil
}

//Read reads orbitals in the CamCASP format. The whole set must be
//present, including the final END line.
func Read(r io.Reader) (*Orbitals, error) {
	F := newFieldReader(r)
	O := new(Orbitals)
	var nbf, nmo, nen int
	for nen == 0 {
		l, ok := F.nextLine()
		if !ok {
			return nil, newError("", "incomplete header")
		}
		key, val, _ := strings.Cut(l, " ")
		val = strings.TrimSpace(val)
		var err error
		switch key {
		case "Source":
			O.Source = val
		case "Title":
			O.Title = val
		case "Code":
			O.Code = val
		case "BFNS":
			nbf, err = strconv.Atoi(val)
		case "NMOS":
			nmo, err = strconv.Atoi(val)
		case "Energies":
			nen, err = strconv.Atoi(val)
			if err == nil && nen <= 0 {
				err = fmt.Errorf("no energies")
			}
		default:
			err = fmt.Errorf("unexpected header line %q", l)
		}
		if err != nil {
			return nil, newError("", "line %d: %s", F.line, err.Error())
		}
	}
	if nbf <= 0 || nmo != nen {
		return nil, newError("", "inconsistent header: %d basis functions, %d orbitals, %d energies", nbf, nmo, nen)
	}
	energies, err := F.floats(nmo)
	if err != nil {
		return nil, decorate(err, "", "Read")
	}
	coeffs := make([]float64, 0, nmo*nbf)
	for i := 1; i <= nmo; i++ {
		l, ok := F.nextLine()
		if !ok {
			return nil, newError("", "file ended after %d of %d orbitals", i-1, nmo)
		}
		f := strings.Fields(l)
		if len(f) != 4 || f[0] != "MO" || f[1] != strconv.Itoa(i) || f[2] != "Energy" {
			return nil, newError("", "line %d: expected header for MO %d", F.line, i)
		}
		c, err := F.floats(nbf)
		if err != nil {
			return nil, decorate(err, "", "Read")
		}
		coeffs = append(coeffs, c...)
	}
	if l, ok := F.nextLine(); !ok || l != "END" {
		return nil, newError("", "missing END line")
	}
	if err := F.s.Err(); err != nil {
		return nil, newError("", "%s", err.Error())
	}
	O.Energies = mat.NewVecDense(nmo, energies)
	O.Coeffs = mat.NewDense(nmo, nbf, coeffs)
	return O, nil
}

//ReadFile reads a CamCASP orbital file.
func ReadFile(name string) (*Orbitals, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, newError(name, "%s", err.Error())
	}
	defer f.Close()
	O, err := Read(f)
	return O, decorate(err, name, "ReadFile")
}
