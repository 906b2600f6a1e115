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

package scf

import (
	"context"

	"github.com/rmera/gocamcasp/clt"
	"github.com/rmera/gocamcasp/movecs"
)

type NWChemHandle struct {
	base
}

func NewNWChemHandle(env Env) *NWChemHandle {
	return &NWChemHandle{base: newBase("nwchem", env)}
}

func (N *NWChemHandle) Check() error {
	return N.installed()
}

//BuildInput does nothing, the cluster program writes complete NWChem decks.
func (N *NWChemHandle) BuildInput(J *clt.Job, frag string) error {
	return nil
}

func (N *NWChemHandle) Run(ctx context.Context, frag string) error {
	if err := N.Check(); err != nil {
		return err
	}
	jobM := N.jobM(frag)
	datafile := jobM + ".nw"
	if err := N.setScratch(frag, datafile); err != nil {
		return err
	}
	c := Command{Name: "nwchem", Args: []string{datafile}}
	if w := N.wrapper(); w != "" {
		c = Command{Name: w, Args: []string{datafile, N.cores()}}
	}
	return N.run(ctx, frag, c, jobM+".out", false)
}

//Orbitals reads the first set of vectors in the binary movecs file.
func (N *NWChemHandle) Orbitals(ctx context.Context, frag string) (*movecs.Orbitals, error) {
	return N.readOrbitals(frag, N.jobM(frag)+".movecs", movecs.ReadNWChem)
}
