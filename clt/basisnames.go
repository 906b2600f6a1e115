/*
 * basisnames.go, part of gocamcasp.
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

import "strings"

//CanonicalBasis translates the abbreviations accepted in cluster files
//into the basis names used by Psi4, which we take as canonical.
var CanonicalBasis = map[string]string{
	"user-def":         "user-def",
	"sadlej":           "sadlej-pvtz",
	"adz":              "aug-cc-pvdz",
	"avdz":             "aug-cc-pvdz",
	"aug-cc-pvdz":      "aug-cc-pvdz",
	"atz":              "aug-cc-pvtz",
	"avtz":             "aug-cc-pvtz",
	"aug-cc-pvtz":      "aug-cc-pvtz",
	"aqz":              "aug-cc-pvqz",
	"avqz":             "aug-cc-pvqz",
	"aug-cc-pvqz":      "aug-cc-pvqz",
	"dz":               "cc-pvdz",
	"vdz":              "cc-pvdz",
	"cc-pvdz":          "cc-pvdz",
	"tz":               "cc-pvtz",
	"vtz":              "cc-pvtz",
	"cc-pvtz":          "cc-pvtz",
	"datz":             "d-aug-cc-pvtz",
	"davtz":            "d-aug-cc-pvtz",
	"d-aug-cc-pvtz":    "d-aug-cc-pvtz",
	"2-tzvp":           "def2-tzvp",
	"tzvp-2":           "def2-tzvp",
	"def2tzvp":         "def2-tzvp",
	"def2-tzvp":        "def2-tzvp",
	"2-tzvpp":          "def2-tzvpp",
	"tzvpp-2":          "def2-tzvpp",
	"def2tzvpp":        "def2-tzvpp",
	"def2-tzvpp":       "def2-tzvpp",
	"dz-pp":            "cc-pvdz-pp",
	"vdz-pp":           "cc-pvdz-pp",
	"cc-pvdz-pp":       "cc-pvdz-pp",
	"tz-pp":            "cc-pvtz-pp",
	"vtz-pp":           "cc-pvtz-pp",
	"cc-pvtz-pp":       "cc-pvtz-pp",
	"qz-pp":            "cc-pvqz-pp",
	"vqz-pp":           "cc-pvqz-pp",
	"cc-pvqz-pp":       "cc-pvqz-pp",
	"adz-pp":           "aug-cc-pvdz-pp",
	"avdz-pp":          "aug-cc-pvdz-pp",
	"aug-cc-pvdz-pp":   "aug-cc-pvdz-pp",
	"atz-pp":           "aug-cc-pvtz-pp",
	"avtz-pp":          "aug-cc-pvtz-pp",
	"aug-cc-pvtz-pp":   "aug-cc-pvtz-pp",
	"aqz-pp":           "aug-cc-pvqz-pp",
	"avqz-pp":          "aug-cc-pvqz-pp",
	"aug-cc-pvqz-pp":   "aug-cc-pvqz-pp",
	"aug-sadlej":       "aug-sadlej-pvtz",
	"aug-sadlej-pvtz":  "aug-sadlej-pvtz",
	"auga-sadlej":      "auga-sadlej-pvtz",
	"auga-sadlej-pvtz": "auga-sadlej-pvtz",
	"augb-sadlej":      "augb-sadlej-pvtz",
	"augb-sadlej-pvtz": "augb-sadlej-pvtz",
	"def2-qzvpp":       "def2-qzvpp",
}

//Dalton spelling of the canonical names.
var daltonBasis = map[string]string{
	"user-def":         "user-def",
	"sadlej-pvtz":      "sadlej",
	"aug-cc-pvdz":      "aug-cc-pVDZ",
	"aug-cc-pvtz":      "aug-cc-pVTZ",
	"aug-cc-pvqz":      "aug-cc-pVQZ",
	"cc-pvdz":          "cc-pVDZ",
	"cc-pvtz":          "cc-pVTZ",
	"d-aug-cc-pvtz":    "d-aug-cc-pVTZ",
	"def2-tzvp":        "def2-TZVP",
	"def2-tzvpp":       "def2-TZVPP",
	"cc-pvdz-pp":       "cc-pVDZ-PP",
	"cc-pvtz-pp":       "cc-pVTZ-PP",
	"cc-pvqz-pp":       "cc-pVQZ-PP",
	"aug-cc-pvdz-pp":   "aug-cc-pVDZ-PP",
	"aug-cc-pvtz-pp":   "aug-cc-pVTZ-PP",
	"aug-cc-pvqz-pp":   "aug-cc-pVQZ-PP",
	"aug-sadlej-pvtz":  "aug-sadlej",
	"auga-sadlej-pvtz": "augA-sadlej",
	"augb-sadlej-pvtz": "augB-sadlej",
	"def2-qzvpp":       "def2-qzvpp",
}

//NWChem spelling of the canonical names.
var nwchemBasis = map[string]string{
	"user-def":         "user-def",
	"sadlej-pvtz":      "sadlej_pVTZ",
	"aug-cc-pvdz":      "aug-cc-pVDZ",
	"aug-cc-pvtz":      "aug-cc-pVTZ",
	"aug-cc-pvqz":      "aug-cc-pVQZ",
	"cc-pvdz":          "cc-pVDZ",
	"cc-pvtz":          "cc-pVTZ",
	"d-aug-cc-pvtz":    "d-aug-cc-pVTZ",
	"def2-tzvp":        "def2-TZVP",
	"def2-tzvpp":       "def2-TZVPP",
	"cc-pvdz-pp":       "cc-pVDZ-PP",
	"cc-pvtz-pp":       "cc-pVTZ-PP",
	"cc-pvqz-pp":       "cc-pVQZ-PP",
	"aug-cc-pvdz-pp":   "aug-cc-pVDZ-PP",
	"aug-cc-pvtz-pp":   "aug-cc-pVTZ-PP",
	"aug-cc-pvqz-pp":   "aug-cc-pVQZ-PP",
	"aug-sadlej-pvtz":  "aug-sadlej_pvtz",
	"auga-sadlej-pvtz": "augA-sadlej_pvtz",
	"augb-sadlej-pvtz": "augB-sadlej_pvtz",
	"def2-qzvpp":       "def2-qzvpp",
}

//auxiliary basis sets, by their Psi4 names.
var auxBasisList = []string{
	"user-def",
	"aug-cc-pvdz",
	"aug-cc-pvtz",
	"aug-cc-pvqz",
	"cc-pvdz",
	"cc-pvtz",
	"cc-pvqz",
	"dgauss-a1-c",
	"dgauss-a1-x",
	"dgauss-a2-c",
	"dgauss-a2-x",
	"j-basis/tzvpp",
	"j-basis/svp",
	"jk-basis/tzvp-2",
	"jk-basis/tzvpp",
	"jk-basis/tzvpp-2",
	"jk-basis/qzvp-2",
	"jk-basis/qzvpp-2",
	"def2-tzvp",
	"def2-tzvpp",
	"aug-cc-pvdz-pp",
	"aug-cc-pvtz-pp",
	"aug-cc-pvqz-pp",
	"cc-pvdz-pp",
	"cc-pvtz-pp",
	"cc-pvqz-pp",
	"def-tzvpp",
	"def-qzvpp",
	"weigend-coulomb",
}

//abbreviations of auxiliary basis sets, as indexes in auxBasisList.
var auxBasisIndex = map[string]int{
	"user-def": 0,
	"adz":      1, "avdz": 1, "aug-cc-pvdz": 1,
	"sadlej": 2, "sadlej-pvtz": 2, "atz": 2, "avtz": 2, "aug-cc-pvtz": 2,
	"aug-sadlej": 2, "aug-sadlej-pvtz": 2,
	"auga-sadlej": 2, "auga-sadlej-pvtz": 2,
	"augb-sadlej": 2, "augb-sadlej-pvtz": 2,
	"aqz": 3, "avqz": 3, "aug-cc-pvqz": 3,
	"datz": 3, "davtz": 3, "d-aug-cc-pvtz": 3,
	"dz": 4, "vdz": 4, "cc-pvdz": 4,
	"tz": 5, "vtz": 5, "cc-pvtz": 5,
	"qz": 6, "vqz": 6, "cc-pvqz": 6,
	"dgauss-a1-c": 7, "a1-c": 7,
	"dgauss-a1-x": 8, "a1-x": 8,
	"dgauss-a2-c": 9, "a2-c": 9,
	"dgauss-a2-x": 10, "a2-x": 10,
	"j-tzvpp":     11,
	"j-svp":       12,
	"jk-tzvp-2":   13,
	"jk-tzvpp":    14,
	"jk-tzvpp-2":  15,
	"jk-qzvp-2":   16,
	"jk-qzvpp-2":  17,
	"def2-tzvp":   18,
	"def2-tzvpp":  19,
	"adz-pp":      20, "avdz-pp": 20, "aug-cc-pvdz-pp": 20,
	"atz-pp": 21, "avtz-pp": 21, "aug-cc-pvtz-pp": 21,
	"aqz-pp": 22, "avqz-pp": 22, "aug-cc-pvqz-pp": 22,
	"dz-pp": 23, "vdz-pp": 23, "cc-pvdz-pp": 23,
	"tz-pp": 24, "vtz-pp": 24, "cc-pvtz-pp": 24,
	"qz-pp": 25, "vqz-pp": 25, "cc-pvqz-pp": 25,
	"def-tzvpp":       26,
	"def-qzvpp":       27,
	"weigend-coulomb": 28,
}

//BasisFor returns the name of the canonical basis name in the spelling
//used by the given SCF code. Unknown names are returned unchanged.
func BasisFor(backend Backend, name string) string {
	var table map[string]string
	switch {
	case backend.IsDalton():
		table = daltonBasis
	case backend == NWChem:
		table = nwchemBasis
	case backend == Psi4:
		table = CanonicalBasis
	default:
		return name
	}
	if n, ok := table[strings.ToLower(name)]; ok {
		return n
	}
	return name
}

//AuxBasis returns the Psi4 name of an auxiliary basis set given by any
//of its accepted abbreviations.
func AuxBasis(name string) (string, bool) {
	i, ok := auxBasisIndex[strings.ToLower(name)]
	if !ok {
		return "", false
	}
	return auxBasisList[i], true
}
