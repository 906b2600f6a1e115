/*
 * parse_test.go, part of gocamcasp.
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

package clt

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waterDimer = `! Water dimer
MOLECULE W1
  IP 0.4638
  HOMO -0.3045
END
MOLECULE W2
  IP 12.62 eV
  HOMO -8.28 eV
END

RUN-TYPE SAPT-DFT

MOLECULES W1 AND W2
BASIS avtz TYPE dc+
AC LB94 TANH 3.0 4.0
FINISH
`

func TestParseDimer(Te *testing.T) {
	J, err := Parse(strings.NewReader(waterDimer), "h2o2", Options{})
	require.NoError(Te, err)
	assert.Equal(Te, SAPTDFT, J.RunType)
	assert.Equal(Te, DCPlus, J.BasisType)
	assert.Equal(Te, "aug-cc-pvtz", J.Basis)
	assert.Equal(Te, "aug-cc-pvtz", J.AuxBasis)
	assert.Equal(Te, Psi4, J.Backend)
	assert.Equal(Te, ACLB94, J.ACType)
	assert.Equal(Te, JoinTanh, J.ACJoin)
	assert.Equal(Te, 3.0, J.ACP1)
	assert.Equal(Te, 4.0, J.ACP2)
	require.NotNil(Te, J.MolB)
	assert.InDelta(Te, 0.4638-0.3045, J.MolA.ACShift, 1e-10)
	assert.InDelta(Te, (12.62-8.28)/Hartree2eV, J.MolB.ACShift, 1e-10)
	assert.False(Te, J.MolA.ACVariable)
	frags, err := J.Fragments()
	require.NoError(Te, err)
	assert.Equal(Te, []string{FragA, FragB, FragC}, frags)
	assert.Equal(Te, []string{"W1", "W2"}, J.Molecules.Names())
}

func TestParseDefaultRunType(Te *testing.T) {
	one := "MOLECULE A\nEND\nRUN-TYPE\nMOLECULES A\nFINISH\n"
	J, err := Parse(strings.NewReader(one), "a", Options{})
	require.NoError(Te, err)
	assert.Equal(Te, Properties, J.RunType)
	assert.Equal(Te, Mono, J.BasisType)
	frags, _ := J.Fragments()
	assert.Equal(Te, []string{FragA, FragC}, frags)

	two := "MOLECULE A\nMOLECULE B\nJOB\nMOLECULES A B\nBASIS adz TYPE mc\n"
	J, err = Parse(strings.NewReader(two), "ab", Options{})
	require.NoError(Te, err)
	assert.Equal(Te, SAPTDFT, J.RunType)
}

func TestParseErrors(Te *testing.T) {
	cases := []struct {
		name string
		text string
		kind *Error
	}{
		{"prefix", "MOLECULE A\nRUN-TYPE\nMOLECULES A\nPREFIX other\n", ErrConsistency},
		{"unknown molecule", "MOLECULE A\nRUN-TYPE\nMOLECULES C\n", ErrLookup},
		{"no molecules", "MOLECULE A\nRUN-TYPE\n", ErrConsistency},
		{"one molecule sapt", "MOLECULE A\nRUN-TYPE SAPT\nMOLECULES A\nBASIS adz TYPE dc\n", ErrConsistency},
		{"no basis type", "MOLECULE A\nMOLECULE B\nRUN-TYPE\nMOLECULES A AND B\nBASIS adz\n", ErrConsistency},
		{"bad run-type", "MOLECULE A\nRUN-TYPE shiny\nMOLECULES A\n", ErrSyntax},
		{"bad ac", "MOLECULE A\nRUN-TYPE\nMOLECULES A\nAC LB94 SIGMOID\n", ErrSyntax},
		{"bad kernel", "MOLECULE A\nRUN-TYPE\nMOLECULES A\nKERNEL RPA\n", ErrSyntax},
		{"bad basis", "MOLECULE A\nRUN-TYPE\nMOLECULES A\nBASIS sto-42g\n", ErrSyntax},
		{"stray ip", "IP 0.5\nMOLECULE A\nRUN-TYPE\nMOLECULES A\n", ErrSyntax},
		{"bad scf code", "MOLECULE A\nRUN-TYPE\nMOLECULES A\nSCFCODE gaussian\n", ErrConfiguration},
		{"integer ac parameters", "MOLECULE A\nRUN-TYPE\nMOLECULES A\nAC LB94 TANH 3 4\n", ErrSyntax},
	}
	for _, c := range cases {
		Te.Run(c.name, func(Te *testing.T) {
			_, err := Parse(strings.NewReader(c.text), "a", Options{})
			require.Error(Te, err)
			assert.True(Te, errors.Is(err, c.kind), "got %v", err)
		})
	}
	_, err := Parse(strings.NewReader(cases[0].text), "a", Options{})
	assert.True(Te, IsSpecification(err))
	_, err = Parse(strings.NewReader(cases[1].text), "a", Options{})
	assert.False(Te, IsSpecification(err))
}

func TestParsePrefixMatches(Te *testing.T) {
	_, err := Parse(strings.NewReader("MOLECULE A\nRUN-TYPE\nMOLECULES A\nFILE-PREFIX water\n"), "water", Options{})
	assert.NoError(Te, err)
}

func TestParseBackend(Te *testing.T) {
	text := "MOLECULE A\n IP 0.5\nRUN-TYPE\nMOLECULES A\nSCFCODE Dalton2013 DIRECT\n"
	J, err := Parse(strings.NewReader(text), "a", Options{})
	require.NoError(Te, err)
	assert.Equal(Te, Dalton, J.Backend)
	assert.True(Te, J.Direct)
	assert.Equal(Te, ACLB94, J.ACType)
	assert.True(Te, J.MolA.ACVariable)
	assert.Equal(Te, 0.5, J.MolA.ACShift)

	//A caller-fixed code wins over the file.
	J, err = Parse(strings.NewReader(text), "a", Options{Backend: "NWChem"})
	require.NoError(Te, err)
	assert.Equal(Te, NWChem, J.Backend)
	assert.False(Te, J.Direct)
	assert.Equal(Te, ACCS00, J.ACType)

	J, err = Parse(strings.NewReader("MOLECULE A\nRUN-TYPE\nMOLECULES A\n"), "a", Options{EnvBackend: "molpro"})
	require.NoError(Te, err)
	assert.Equal(Te, Molpro, J.Backend)
}

//Without an SCF code on the command line or in the file, the correction
//defaults to LB94/TANH even though the job then runs with Psi4 or the
//environment's code.
func TestParseACDefaultWithoutSCFCode(Te *testing.T) {
	text := "MOLECULE A\n IP 0.5\nRUN-TYPE\nMOLECULES A\n"
	for _, env := range []string{"", "nwchem"} {
		J, err := Parse(strings.NewReader(text), "a", Options{EnvBackend: env})
		require.NoError(Te, err)
		assert.Equal(Te, ACLB94, J.ACType, env)
		assert.Equal(Te, JoinTanh, J.ACJoin, env)
		assert.True(Te, J.MolA.ACVariable, env)
	}
	J, err := Parse(strings.NewReader(text+"SCFCODE psi4\n"), "a", Options{})
	require.NoError(Te, err)
	assert.Equal(Te, ACGRAC, J.ACType)
}

func TestParseACParameters(Te *testing.T) {
	J, err := Parse(strings.NewReader("MOLECULE A\n IP 0.5\nRUN-TYPE\nMOLECULES A\nAC GRAC 0.5 40.\n"), "a", Options{})
	require.NoError(Te, err)
	assert.Equal(Te, JoinGRAC, J.ACJoin)
	assert.Equal(Te, 0.5, J.ACP1)
	assert.Equal(Te, 40.0, J.ACP2)
}

func TestParseDirectives(Te *testing.T) {
	text := `MOLECULE A
MOLECULE B
JOIN A, B INTO AB
RUN-TYPE delta-hf
MOLECULES A AND B
SCF-CODE dalton-2006
MAIN-BASIS adz TYPE dc
AUX-BASIS avtz TYPE mc
ISA-BASIS set2
MIDBOND NONE
METHOD HF
FUNCTIONAL B3LYP
KERNEL ALDAX+CHF DALTON
HOMO A -0.35
IP A 0.5
AC-SHIFT B 3.0 eV
ASYMPTOTIC-CORRECTION MULTIPOLE T-H 2.0 5.0
IMPORT a.xyz b.xyz
IMPORT c.xyz
FINISH
METHOD ignored
`
	J, err := Parse(strings.NewReader(text), "dhf", Options{})
	require.NoError(Te, err)
	assert.Equal(Te, DeltaHF, J.RunType)
	assert.Equal(Te, Dalton2006, J.Backend)
	assert.Equal(Te, "aug-cc-pvdz", J.Basis)
	assert.Equal(Te, DC, J.BasisType)
	assert.Equal(Te, "avtz", J.AuxBasis)
	assert.Equal(Te, MC, J.AuxBasisType)
	assert.Equal(Te, "set2", J.ISABasis)
	assert.True(Te, J.NoMidbond)
	assert.Equal(Te, "HF", J.Method)
	assert.Equal(Te, "B3LYP", J.Functional)
	assert.Equal(Te, "ALDAX+CHF", J.Kernel)
	assert.True(Te, J.DaltonCKS)
	assert.Equal(Te, ACMultipole, J.ACType)
	assert.Equal(Te, JoinLinear, J.ACJoin)
	assert.Equal(Te, 2.0, J.ACP1)
	assert.Equal(Te, 5.0, J.ACP2)
	assert.InDelta(Te, 0.15, J.MolA.ACShift, 1e-10)
	assert.InDelta(Te, 3.0/Hartree2eV, J.MolB.ACShift, 1e-10)
	assert.Equal(Te, []string{"a.xyz", "b.xyz", "c.xyz"}, J.Imports)
	_, ok := J.Molecules.Get("AB")
	assert.True(Te, ok)
	frags, _ := J.Fragments()
	assert.Equal(Te, []string{FragA, FragB, FragAB, FragC}, frags)
}

func TestNormalizeBackend(Te *testing.T) {
	for in, want := range map[string]Backend{
		"Dalton2006":  Dalton2006,
		"dalton-2006": Dalton2006,
		"DALTON":      Dalton,
		"dalton2016":  Dalton,
		"psi4":        Psi4,
		"NWChem":      NWChem,
		"molpro2015":  Molpro,
		"orca":        Backend("orca"),
	} {
		assert.Equal(Te, want, NormalizeBackend(in), in)
	}
}

func TestStandardRunType(Te *testing.T) {
	for in, want := range map[string]RunType{
		"SAPT(DFT)":      SAPTDFT,
		"dft-sapt":       SAPTDFT,
		"sapt":           SAPT,
		"DHF":            DeltaHF,
		"property":       Properties,
		"supermolecule":  Supermol,
		"psi4-sapt(dft)": Psi4SAPTDFT,
		"camcasp":        CamCASP,
	} {
		got, ok := StandardRunType(in)
		assert.True(Te, ok, in)
		assert.Equal(Te, want, got, in)
	}
	_, ok := StandardRunType("md")
	assert.False(Te, ok)
}

func TestSummary(Te *testing.T) {
	J, err := Parse(strings.NewReader(waterDimer), "h2o2", Options{})
	require.NoError(Te, err)
	J.Cores = 4
	s := J.Summary()
	assert.Contains(Te, s, "SAPT(DFT)")
	assert.Contains(Te, s, "AC shift W1")
	assert.Contains(Te, s, "Num. cores for SCF   :  4")
}
