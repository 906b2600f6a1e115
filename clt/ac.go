/*
 * ac.go, part of gocamcasp.
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

import "github.com/rs/zerolog/log"

//ACSettings are the job-wide asymptotic correction options.
type ACSettings struct {
	Type ACType
	Join ACJoin
	P1   float64
	P2   float64
}

//ACResult is the outcome of resolving the correction for one molecule.
type ACResult struct {
	Type     ACType //ACNone if the molecule has no data to build a correction from.
	Join     ACJoin
	Shift    float64
	Variable bool
}

//DefaultAC fills in the correction type (and join) when the cluster
//file did not give one. The default depends on the SCF code.
func DefaultAC(backend Backend, explicit ACSettings) ACSettings {
	if explicit.Type != "" {
		return explicit
	}
	switch backend {
	case NWChem:
		explicit.Type = ACCS00
	case Psi4, Molpro:
		explicit.Type = ACGRAC
	default:
		explicit.Type = ACLB94
		if explicit.Join == "" {
			explicit.Join = JoinTanh
		}
	}
	return explicit
}

//ResolveAC decides the shift for mol, and whether it is fixed or variable.
//The priority is: an explicit AC-SHIFT, then IP+HOMO, then the IP alone.
//With nothing known, the result has type ACNone (CS00 excepted, which
//just gets no shift).
func ResolveAC(mol Molecule, s ACSettings) ACResult {
	r := ACResult{Type: s.Type, Join: s.Join, Shift: mol.ACShift, Variable: mol.ACVariable}
	if s.Type == ACNone {
		return r
	}
	switch {
	case mol.ACShift != 0:
		r.Variable = false
	case mol.IP != 0 && mol.HOMO != 0:
		r.Shift = mol.IP + mol.HOMO
		r.Variable = false
	case mol.IP != 0:
		if s.Type != ACCS00 {
			r.Shift = mol.IP
			r.Variable = true
		}
	case s.Type == ACCS00:
	default:
		r.Type = ACNone
	}
	return r
}

//resolveJobAC applies the defaults and resolves the shift for each molecule
//in the job. If any molecule lacks the data for a correction, the correction
//is switched off for the whole job.
func resolveJobAC(J *Job) {
	s := DefaultAC(J.Backend, ACSettings{Type: J.ACType, Join: J.ACJoin, P1: J.ACP1, P2: J.ACP2})
	J.ACType, J.ACJoin = s.Type, s.Join
	if s.Type == ACNone {
		return
	}
	for _, m := range []*Molecule{J.MolA, J.MolB} {
		if m == nil {
			continue
		}
		r := ResolveAC(*m, s)
		m.ACShift, m.ACVariable = r.Shift, r.Variable
		if r.Type == ACNone {
			log.Warn().Str("molecule", m.Name).Msg("no IP, HOMO or AC-SHIFT given, asymptotic correction switched off for the job")
			J.ACType = ACNone
		}
	}
}
