/*
 * nwchem.go, part of gocamcasp.
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
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"strings"
)

//fortranReader reads the records of a Fortran unformatted sequential file.
//Each record is enclosed between two 4-byte markers with its length.
type fortranReader struct {
	r      io.Reader
	endian binary.ByteOrder
}

//newFortranReader guesses the byte order from the first record marker.
func newFortranReader(r io.Reader) (*fortranReader, error) {
	var first [4]byte
	if _, err := io.ReadFull(r, first[:]); err != nil {
		return nil, newError("", "can't read first record: %s", err.Error())
	}
	F := &fortranReader{endian: binary.LittleEndian}
	//no header is anywhere near 16 MB, so a huge length means the other byte order.
	if binary.LittleEndian.Uint32(first[:]) > 1<<24 {
		F.endian = binary.BigEndian
	}
	F.r = io.MultiReader(bytes.NewReader(first[:]), r)
	return F, nil
}

//record returns the contents of the next record, checking the trailing marker.
func (F *fortranReader) record() ([]byte, error) {
	var size, check int32
	if err := binary.Read(F.r, F.endian, &size); err != nil {
		return nil, newError("", "truncated file: %s", err.Error())
	}
	if size < 0 {
		return nil, newError("", "invalid record length %d", size)
	}
	block := make([]byte, size)
	if _, err := io.ReadFull(F.r, block); err != nil {
		return nil, newError("", "truncated record: %s", err.Error())
	}
	if err := binary.Read(F.r, F.endian, &check); err != nil {
		return nil, newError("", "truncated record: %s", err.Error())
	}
	if check != size {
		return nil, newError("", "record markers don't match (%d, %d)", size, check)
	}
	return block, nil
}

//ints reads a record of integers. NWChem may be built with 4- or 8-byte
//integers, the size is deduced from the record length.
func (F *fortranReader) ints(n int) ([]int, error) {
	b, err := F.record()
	if err != nil {
		return nil, err
	}
	ret := make([]int, n)
	switch len(b) {
	case 4 * n:
		for i := range ret {
			ret[i] = int(int32(F.endian.Uint32(b[4*i:])))
		}
	case 8 * n:
		for i := range ret {
			ret[i] = int(int64(F.endian.Uint64(b[8*i:])))
		}
	default:
		return nil, newError("", "record of %d bytes can't hold %d integers", len(b), n)
	}
	return ret, nil
}

func (F *fortranReader) integer() (int, error) {
	i, err := F.ints(1)
	if err != nil {
		return 0, err
	}
	return i[0], nil
}

func (F *fortranReader) float64s(n int) ([]float64, error) {
	b, err := F.record()
	if err != nil {
		return nil, err
	}
	if len(b) != 8*n {
		return nil, newError("", "record of %d bytes can't hold %d reals", len(b), n)
	}
	ret := make([]float64, n)
	for i := range ret {
		ret[i] = math.Float64frombits(F.endian.Uint64(b[8*i:]))
	}
	return ret, nil
}

//ReadNWChem reads the first (alpha or closed-shell) set of orbitals from
//an NWChem binary movecs file.
func ReadNWChem(r io.Reader) (*Orbitals, error) {
	F, err := newFortranReader(r)
	if err != nil {
		return nil, err
	}
	//checksums and date, then the SCF type.
	for i := 0; i < 2; i++ {
		if _, err := F.record(); err != nil {
			return nil, decorate(err, "", "ReadNWChem")
		}
	}
	text := func() (string, error) {
		if _, err := F.integer(); err != nil {
			return "", err
		}
		b, err := F.record()
		return strings.TrimSpace(string(b)), err
	}
	title, err := text()
	if err != nil {
		return nil, decorate(err, "", "ReadNWChem")
	}
	basisName, err := text()
	if err != nil {
		return nil, decorate(err, "", "ReadNWChem")
	}
	nsets, err := F.integer()
	if err != nil {
		return nil, decorate(err, "", "ReadNWChem")
	}
	nbf, err := F.integer()
	if err != nil {
		return nil, decorate(err, "", "ReadNWChem")
	}
	if nsets < 1 || nbf < 1 {
		return nil, newError("", "invalid dimensions: %d sets, %d basis functions", nsets, nbf)
	}
	nmo, err := F.ints(nsets)
	if err != nil {
		return nil, decorate(err, "", "ReadNWChem")
	}
	if nmo[0] < 1 || nmo[0] > nbf {
		return nil, newError("", "invalid number of orbitals %d", nmo[0])
	}
	if _, err := F.float64s(nbf); err != nil { //occupations
		return nil, decorate(err, "", "ReadNWChem")
	}
	evals, err := F.float64s(nbf)
	if err != nil {
		return nil, decorate(err, "", "ReadNWChem")
	}
	coeffs := make([]float64, 0, nmo[0]*nbf)
	for i := 0; i < nmo[0]; i++ {
		v, err := F.float64s(nbf)
		if err != nil {
			return nil, decorate(err, "", "ReadNWChem")
		}
		coeffs = append(coeffs, v...)
	}
	O, err := New("NWChem", evals[:nmo[0]], coeffs)
	if err != nil {
		return nil, err
	}
	O.Title = title
	O.Source = basisName
	return O, nil
}
