/*
 * molpro.go, part of gocamcasp.
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
	"os"
	"strings"

	"github.com/rmera/gocamcasp/clt"
	"github.com/rmera/gocamcasp/movecs"
)

type MolproHandle struct {
	base
}

func NewMolproHandle(env Env) *MolproHandle {
	return &MolproHandle{base: newBase("molpro", env)}
}

func (M *MolproHandle) Check() error {
	if err := M.installed(); err != nil {
		return err
	}
	if M.wrapper() == "" && M.env.MolproHome == "" {
		return configError("", "MOLPRO_HOME is not set, can't run Molpro calculations")
	}
	return nil
}

func (M *MolproHandle) BuildInput(J *clt.Job, frag string) error {
	return nil
}

func (M *MolproHandle) Run(ctx context.Context, frag string) error {
	if err := M.Check(); err != nil {
		return err
	}
	jobM := M.jobM(frag)
	datafile, outfile := jobM+".molp", jobM+".out"
	if err := M.setScratch(frag, datafile); err != nil {
		return err
	}
	c := Command{Name: "molpro", Args: []string{datafile}}
	if w := M.wrapper(); w != "" {
		c = Command{Name: w, Args: []string{datafile, outfile, M.cores()}}
	}
	return M.run(ctx, frag, c, outfile, false)
}

//Orbitals reads the orbitals Molpro writes to the lowercased movecs file,
//with the basis labels from the output.
func (M *MolproHandle) Orbitals(ctx context.Context, frag string) (*movecs.Orbitals, error) {
	jobM := M.jobM(frag)
	wfu, err := os.Open(M.path(strings.ToLower(jobM + ".movecs")))
	if err != nil {
		return nil, backendError(frag, 0, "orbital file not available: %s", err.Error())
	}
	defer wfu.Close()
	out, err := os.Open(M.path(jobM + ".out"))
	if err != nil {
		return nil, backendError(frag, 0, "Molpro output not available: %s", err.Error())
	}
	defer out.Close()
	O, err := movecs.ReadMolpro(wfu, out)
	if err != nil {
		return nil, backendError(frag, 0, "%s", err.Error())
	}
	if O.Title == "" {
		O.Title = M.name + " " + frag
	}
	return O, nil
}
