/*
 * movecs_test.go, part of gocamcasp.
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
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func sample(Te *testing.T) *Orbitals {
	O, err := New("Test", []float64{-20.5, -1.3, -0.7, 0.2, 0.9, 1.5},
		[]float64{
			1, 0, 0, 0, 0, 0, 0,
			0, 1, 0, 0, 0, 0, 0,
			0, 0, 1, 0, 0, 0, 0,
			0, 0, 0, 1, 0, 0, 0,
			0, 0, 0, 0, 1, 0, 0,
			0.1, 0.2, 0.3, 0.4, 0.5, 0.6, -0.7,
		})
	require.NoError(Te, err)
	return O
}

func TestWriteRead(Te *testing.T) {
	O := sample(Te)
	O.Title = "water"
	var b bytes.Buffer
	require.NoError(Te, O.Write(&b))
	text := b.String()
	assert.True(Te, strings.HasPrefix(text, "Source \nTitle water\nCode      Test\nBFNS      7\nNMOS      6\nEnergies  6\n"))
	assert.Contains(Te, text, "MO 6   Energy    1.500000000000000E+00\n")
	assert.True(Te, strings.HasSuffix(text, "END\n"))

	R, err := Read(strings.NewReader(text))
	require.NoError(Te, err)
	assert.Equal(Te, "Test", R.Code)
	assert.Equal(Te, "water", R.Title)
	assert.Equal(Te, 7, R.NBF())
	assert.Equal(Te, 6, R.NMO())
	assert.True(Te, mat.Equal(O.Coeffs, R.Coeffs))
	assert.True(Te, mat.Equal(O.Energies, R.Energies))
}

func TestReadTruncated(Te *testing.T) {
	var b bytes.Buffer
	require.NoError(Te, sample(Te).Write(&b))
	full := b.String()
	for _, cut := range []int{10, len(full) / 2, len(full) - 5} {
		_, err := Read(strings.NewReader(full[:cut]))
		assert.True(Te, errors.Is(err, ErrFormat), "cut at %d", cut)
	}
}

func TestWriteFile(Te *testing.T) {
	dir := Te.TempDir()
	name := filepath.Join(dir, "w-A-asc.movecs")
	require.NoError(Te, sample(Te).WriteFile(name))
	entries, err := os.ReadDir(dir)
	require.NoError(Te, err)
	assert.Len(Te, entries, 1, "temporary file left behind")
	R, err := ReadFile(name)
	require.NoError(Te, err)
	assert.Equal(Te, 6, R.NMO())
	_, err = ReadFile(filepath.Join(dir, "none"))
	var e *Error
	require.True(Te, errors.As(err, &e))
	assert.Equal(Te, filepath.Join(dir, "none"), e.FileName())
}

func TestFchkOrder(Te *testing.T) {
	//s, p, spherical d, cartesian d, spherical f
	order, err := fchkOrder([]int{0, 1, -2, 2, -3})
	require.NoError(Te, err)
	want := []int{0, 1, 2, 3,
		4 + 4, 4 + 2, 4 + 0, 4 + 1, 4 + 3,
		9, 10, 11, 12, 13, 14,
		15 + 6, 15 + 4, 15 + 2, 15 + 0, 15 + 1, 15 + 3, 15 + 5}
	assert.Equal(Te, want, order)
}

const fchk = `water
SP        RHF                                                         sto-3g
Number of atoms                            I                3
Number of basis functions                  I                7
Shell types                                I   N=           3
           0           0          -2
Alpha Orbital Energies                     R   N=           2
 -2.05000000E+01 -1.30000000E+00
Alpha MO coefficients                      R   N=          14
  1.00000000E+00  2.00000000E+00  3.00000000E+00  4.00000000E+00  5.00000000E+00
  6.00000000E+00  7.00000000E+00  1.00000000E+01  2.00000000E+01  3.00000000E+01
  4.00000000E+01  5.00000000E+01  6.00000000E+01  7.00000000E+01
Total Energy                               R     -7.49659011E+01
`

func TestReadFchk(Te *testing.T) {
	O, err := ReadFchk(strings.NewReader(fchk))
	require.NoError(Te, err)
	assert.Equal(Te, "Psi4", O.Code)
	assert.Equal(Te, 2, O.NMO())
	assert.Equal(Te, 7, O.NBF())
	assert.Equal(Te, -20.5, O.Energies.AtVec(0))
	//d0,d1+,d1-,d2+,d2- become d2-,d1-,d0,d1+,d2+
	assert.Equal(Te, []float64{1, 2, 7, 5, 3, 4, 6}, mat.Row(nil, 0, O.Coeffs))
	_, err = ReadFchk(strings.NewReader(fchk[:len(fchk)/2]))
	assert.Error(Te, err)
}

type fortranWriter struct {
	b bytes.Buffer
}

func (F *fortranWriter) record(data interface{}) {
	var payload bytes.Buffer
	binary.Write(&payload, binary.LittleEndian, data)
	binary.Write(&F.b, binary.LittleEndian, int32(payload.Len()))
	F.b.Write(payload.Bytes())
	binary.Write(&F.b, binary.LittleEndian, int32(payload.Len()))
}

func nwchemFile(intsize int) []byte {
	F := new(fortranWriter)
	in := func(v ...int) {
		if intsize == 8 {
			w := make([]int64, len(v))
			for i := range v {
				w[i] = int64(v[i])
			}
			F.record(w)
			return
		}
		w := make([]int32, len(v))
		for i := range v {
			w[i] = int32(v[i])
		}
		F.record(w)
	}
	F.record([]byte(strings.Repeat(" ", 142)))
	F.record([]byte("dft                 "))
	in(5)
	F.record([]byte("water"))
	in(6)
	F.record([]byte("sto-3g"))
	in(1)
	in(3)
	in(2)
	F.record([]float64{2, 0, 0})
	F.record([]float64{-1, 0.5, 2})
	F.record([]float64{1, 2, 3})
	F.record([]float64{4, 5, 6})
	F.record([]float64{7, 8, 9}) //a third orbital, not in use
	return F.b.Bytes()
}

func TestReadNWChem(Te *testing.T) {
	for _, size := range []int{4, 8} {
		O, err := ReadNWChem(bytes.NewReader(nwchemFile(size)))
		require.NoError(Te, err)
		assert.Equal(Te, "NWChem", O.Code)
		assert.Equal(Te, "water", O.Title)
		assert.Equal(Te, 2, O.NMO())
		assert.Equal(Te, 3, O.NBF())
		assert.Equal(Te, 0.5, O.Energies.AtVec(1))
		assert.Equal(Te, []float64{4, 5, 6}, mat.Row(nil, 1, O.Coeffs))
	}
	f := nwchemFile(8)
	_, err := ReadNWChem(bytes.NewReader(f[:len(f)-40]))
	assert.True(Te, errors.Is(err, ErrFormat))
	f[len(f)-1] = 9 //corrupt the last marker
	_, err = ReadNWChem(bytes.NewReader(f))
	assert.NoError(Te, err, "records after the ones in use are not read")
}

const molproOut = ` BASIS DATA

   Nr Sym  Nuc  Type         Exponents   Contraction coefficients

   1.1 A     O1    1s          5.0000      1.000000
   2.1 A                       1.0000      1.000000
   3.1 A     O1    3d0         1.0000      1.000000
   4.1 A     O1    3d2-
   5.1 A     O1    3d1+
   6.1 A     O1    3d2+
   7.1 A     O1    3d1-

 NUCLEAR CHARGE:                    8
 NUMBER OF CONTRACTIONS:            7   (   7A   )
`

func molproWfu() string {
	var b strings.Builder
	b.WriteString("header\n7 more\n")
	b.WriteString("EIG 2100.2 CANONICAL\n")
	b.WriteString("-2.0D1,-1.0D0,-5.0D-1,1.0D-1,2.0D-1,\n3.0D-1,4.0D-1,\n")
	b.WriteString("ORBITALS 2100.2 CANONICAL\n")
	for i := 0; i < 7; i++ {
		for j := 0; j < 7; j++ {
			fmt.Fprintf(&b, "0.%d,", j)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func TestReadMolpro(Te *testing.T) {
	aos, n, err := ReadMolproAOs(strings.NewReader(molproOut))
	require.NoError(Te, err)
	assert.Equal(Te, 7, n)
	assert.Equal(Te, []string{"1s", "1s", "3d0", "3d2-", "3d1+", "3d2+", "3d1-"}, aos)
	O, err := ReadMolpro(strings.NewReader(molproWfu()), strings.NewReader(molproOut))
	require.NoError(Te, err)
	assert.Equal(Te, "Molpro", O.Code)
	assert.Equal(Te, 7, O.NMO())
	assert.InDelta(Te, -0.5, O.Energies.AtVec(2), 1e-12)
	row := mat.Row(nil, 0, O.Coeffs)
	want := []float64{0, 0.1, 0.3, 0.6, 0.2, 0.4, 0.5}
	for i := range want {
		assert.InDelta(Te, want[i], row[i], 1e-12)
	}
}

func TestMolproOrderErrors(Te *testing.T) {
	_, err := MolproOrder([]string{"1s", "3d0"})
	assert.Error(Te, err)
	_, err = MolproOrder([]string{"5i0"})
	assert.Error(Te, err)
}

func TestLevelPlot(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "levels.png")
	require.NoError(Te, LevelPlot(sample(Te), "test", name, 1.0))
	st, err := os.Stat(name)
	require.NoError(Te, err)
	assert.Greater(Te, st.Size(), int64(0))
	assert.Error(Te, LevelPlot(sample(Te), "test", name, -math.MaxFloat64))
}
