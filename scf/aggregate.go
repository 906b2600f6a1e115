/*
 * aggregate.go, part of gocamcasp.
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
	"fmt"
	"os"
	"path/filepath"

	"github.com/rmera/gocamcasp/clt"
)

//Aggregator runs the final CamCASP stage, which combines the orbitals
//of the fragments. dir must contain <job>.cks and the canonical orbital files.
type Aggregator interface {
	Aggregate(ctx context.Context, J *clt.Job, dir string) error
}

//CamCASPRunner runs the camcasp program itself.
type CamCASPRunner struct {
	Program string //defaults to "camcasp"
	Runner  Runner
}

func NewCamCASPRunner(r Runner) *CamCASPRunner {
	if r == nil {
		r = ExecRunner{}
	}
	return &CamCASPRunner{Program: "camcasp", Runner: r}
}

//Aggregate feeds <job>.cks to CamCASP, with the output in <job>.out.
func (C *CamCASPRunner) Aggregate(ctx context.Context, J *clt.Job, dir string) error {
	in, err := os.Open(filepath.Join(dir, J.Name+".cks"))
	if err != nil {
		return configError(clt.FragC, "CamCASP input not available: %s", err.Error())
	}
	defer in.Close()
	out, err := os.Create(filepath.Join(dir, J.Name+".out"))
	if err != nil {
		return backendError(clt.FragC, 0, "can't create CamCASP output: %s", err.Error())
	}
	defer out.Close()
	threads := J.CoresCamCASP
	if threads < 1 {
		threads = 1
	}
	c := Command{
		Name:   C.Program,
		Dir:    dir,
		Env:    []string{fmt.Sprintf("OMP_NUM_THREADS=%d", threads)},
		Stdin:  in,
		Stdout: out,
	}
	rc, err := C.Runner.Run(ctx, c)
	if err != nil {
		return backendError(clt.FragC, 0, "can't run CamCASP: %s", err.Error())
	}
	if rc != 0 {
		return backendError(clt.FragC, rc, "CamCASP finished with an error")
	}
	return nil
}
