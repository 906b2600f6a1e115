/*
 * molecule.go, part of gocamcasp.
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

//Hartree2eV is the factor used to convert energies given in eV into atomic units.
const Hartree2eV = 27.21136

//Molecule holds the data needed to set up the asymptotic correction
//for one molecule. All energies are in atomic units, and a zero value
//means "not given".
type Molecule struct {
	Name       string
	IP         float64 //ionization potential
	HOMO       float64 //HOMO energy
	ACShift    float64 //asymptotic correction shift
	ACVariable bool    //Dalton only: VARSHIFT instead of FIXSHIFT
}

//Registry maps names to molecules, and remembers the declaration order.
type Registry struct {
	mols  map[string]*Molecule
	order []string
}

//NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{mols: make(map[string]*Molecule)}
}

//Declare creates a new molecule with the given name, replacing any
//previous one with the same name.
func (R *Registry) Declare(name string) *Molecule {
	if _, ok := R.mols[name]; !ok {
		R.order = append(R.order, name)
	}
	m := &Molecule{Name: name}
	R.mols[name] = m
	return m
}

//Get returns the molecule with the given name, and whether it exists.
func (R *Registry) Get(name string) (*Molecule, bool) {
	m, ok := R.mols[name]
	return m, ok
}

//Ensure returns the molecule with the given name, declaring it first if needed.
func (R *Registry) Ensure(name string) *Molecule {
	if m, ok := R.mols[name]; ok {
		return m
	}
	return R.Declare(name)
}

//Names returns the molecule names in declaration order.
func (R *Registry) Names() []string {
	ret := make([]string, len(R.order))
	copy(ret, R.order)
	return ret
}

//Len returns the number of molecules in the registry.
func (R *Registry) Len() int {
	return len(R.order)
}
