/*
 * job.go, part of gocamcasp.
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
	"fmt"
	"strings"
)

//RunType is the kind of calculation requested.
type RunType string

const (
	Properties  RunType = "properties"
	SAPT        RunType = "sapt"
	SAPTDFT     RunType = "saptdft"
	DeltaHF     RunType = "deltahf"
	Supermol    RunType = "supermol"
	Psi4SAPTDFT RunType = "psi4_saptdft"
	CamCASP     RunType = "camcasp" //accepted by the parser, but there is no execution plan for it.
)

var runTypeNames = map[RunType]string{
	SAPTDFT:     "SAPT(DFT)",
	DeltaHF:     "Delta-HF",
	SAPT:        "SAPT",
	Properties:  "properties",
	Supermol:    "supermolecule",
	Psi4SAPTDFT: "Psi4-SAPT(DFT)",
	CamCASP:     "CamCASP",
}

//Long returns the human-readable name of the run type.
func (r RunType) Long() string {
	if n, ok := runTypeNames[r]; ok {
		return n
	}
	return string(r)
}

//BasisType is the counterpoise scheme used to build the fragment basis sets.
type BasisType string

const (
	Mono   BasisType = "mono"
	MC     BasisType = "mc"
	MCPlus BasisType = "mc+"
	DC     BasisType = "dc"
	DCPlus BasisType = "dc+"
)

//Plus is true for the basis types that may carry midbond functions.
func (b BasisType) Plus() bool {
	return b == MCPlus || b == DCPlus
}

//Backend is the SCF program used for the fragment calculations.
type Backend string

const (
	Dalton2006 Backend = "dalton2006"
	Dalton     Backend = "dalton" //Dalton 2013 or later
	NWChem     Backend = "nwchem"
	Psi4       Backend = "psi4"
	Molpro     Backend = "molpro"
)

//Backends lists the supported SCF codes.
var Backends = []Backend{Dalton2006, Dalton, NWChem, Psi4, Molpro}

//IsDalton is true for both Dalton flavours.
func (b Backend) IsDalton() bool {
	return b == Dalton || b == Dalton2006
}

//Valid reports whether b is a supported SCF code.
func (b Backend) Valid() bool {
	for _, v := range Backends {
		if b == v {
			return true
		}
	}
	return false
}

//ACType is the asymptotic correction model.
type ACType string

const (
	ACNone      ACType = "NONE"
	ACCS00      ACType = "CS00"
	ACLB94      ACType = "LB94"
	ACMultipole ACType = "MULTPOLE"
	ACGRAC      ACType = "GRAC" //Psi4 and Molpro use their own gradient-regulated correction
)

//ACJoin is the function used to join the bulk and asymptotic potentials.
type ACJoin string

const (
	JoinLinear ACJoin = "LINEAR" //Tozer-Handy
	JoinTanh   ACJoin = "TANH"
	JoinGRAC   ACJoin = "GRAC"
)

//Fragment names. C is the CamCASP stage that consumes the orbitals of the others.
const (
	FragA  = "A"
	FragB  = "B"
	FragAB = "AB"
	FragC  = "C"
)

//Job is the full description of a CamCASP job.
type Job struct {
	Name    string
	RunType RunType

	Molecules *Registry
	MolA      *Molecule
	MolB      *Molecule

	Basis            string
	BasisType        BasisType
	AuxBasis         string
	AuxBasisType     BasisType
	AtomAuxBasis     string
	AtomAuxBasisType BasisType
	ISABasis         string
	NoMidbond        bool

	Method     string
	Functional string
	Kernel     string
	DaltonCKS  bool

	Backend Backend
	Direct  bool

	ACType ACType
	ACJoin ACJoin
	ACP1   float64
	ACP2   float64

	Imports []string

	//Run-time information. The parser does not set these.
	Dir          string //main job directory
	Work         string //nominal scratch directory
	LogFile      string
	SpecFile     string
	Cores        int
	CoresCamCASP int
	MemoryGB     int
	Queue        string
	Debug        bool
	Restart      bool
}

//NewJob returns a job with the defaults of the cluster file format.
func NewJob(name string) *Job {
	return &Job{
		Name:       name,
		Molecules:  NewRegistry(),
		Method:     "DFT",
		Functional: "PBE0",
		Kernel:     "ALDA+CHF",
		Dir:        name,
		SpecFile:   name + ".clt",
	}
}

//MolCount is the number of molecules taking part in the calculation.
func (J *Job) MolCount() int {
	n := 0
	if J.MolA != nil {
		n++
	}
	if J.MolB != nil {
		n++
	}
	return n
}

//UseMidbond is true if midbond functions are to be added to the basis.
func (J *Job) UseMidbond() bool {
	return !J.NoMidbond && J.BasisType.Plus()
}

//MemoryMB returns the memory for the job in MB.
func (J *Job) MemoryMB() int {
	return J.MemoryGB * 1024
}

//Fragments returns the sequence of calculations needed for the job.
//C is always last, as it needs the orbitals from all the others.
func (J *Job) Fragments() ([]string, error) {
	switch J.RunType {
	case Psi4SAPTDFT:
		return []string{FragAB}, nil
	case SAPTDFT, SAPT:
		return []string{FragA, FragB, FragC}, nil
	case Properties:
		return []string{FragA, FragC}, nil
	case DeltaHF:
		return []string{FragA, FragB, FragAB, FragC}, nil
	}
	return nil, newError(KindConfiguration, "", fmt.Sprintf("unsupported run-type %s", J.RunType), "Fragments")
}

//Summary returns the run-time information for the job, one item per line.
func (J *Job) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job name             :  %s\n", J.Name)
	fmt.Fprintf(&b, "Run type             :  %s\n", J.RunType.Long())
	fmt.Fprintf(&b, "Cluster file         :  %s\n", J.SpecFile)
	fmt.Fprintf(&b, "Directory            :  %s\n", J.Dir)
	fmt.Fprintf(&b, "Work directory       :  %s\n", J.Work)
	fmt.Fprintf(&b, "SCF code             :  %s\n", J.Backend)
	fmt.Fprintf(&b, "Basis                :  %s (%s)\n", J.Basis, J.BasisType)
	fmt.Fprintf(&b, "Memory (GB)          :  %d\n", J.MemoryGB)
	fmt.Fprintf(&b, "Num. cores for SCF   :  %d\n", J.Cores)
	fmt.Fprintf(&b, "Direct integrals SCF :  %t\n", J.Direct)
	fmt.Fprintf(&b, "Num. cores for CamCASP : %d\n", J.CoresCamCASP)
	fmt.Fprintf(&b, "Restart (T/F)        :  %t\n", J.Restart)
	fmt.Fprintf(&b, "Imported files       :  %v\n", J.Imports)
	fmt.Fprintf(&b, "AC options           :  type = %s, join = %s, p1 = %3.1f, p2 = %3.1f\n", J.ACType, J.ACJoin, J.ACP1, J.ACP2)
	if J.ACType != ACNone {
		for _, m := range []*Molecule{J.MolA, J.MolB} {
			if m == nil {
				continue
			}
			kind := "fixed"
			if m.ACVariable {
				kind = "variable"
			}
			fmt.Fprintf(&b, "AC shift %-11s :  %7.4f %s\n", m.Name, m.ACShift, kind)
		}
	}
	return b.String()
}
