/*
 * scf.go, part of gocamcasp.
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

//Package scf runs the SCF programs that produce the orbitals of each
//fragment of a CamCASP job, and CamCASP itself.
package scf

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rmera/gocamcasp/clt"
	"github.com/rmera/gocamcasp/movecs"
)

//Handle is the interface to one SCF program.
type Handle interface {
	//SetName sets the job name, which is the prefix of all the
	//input and output files.
	SetName(name string)
	//SetDir sets the directory where the program runs.
	SetDir(dir string)
	SetnCPU(cpu int)
	//SetMemory sets the memory available for the program, in MB.
	SetMemory(mb int)
	//Check verifies that the program can be run, before anything is attempted.
	Check() error
	//BuildInput writes whatever input the program needs for fragment frag,
	//beyond the files prepared by the cluster program.
	BuildInput(J *clt.Job, frag string) error
	//Run runs the calculation for fragment frag and waits for it.
	Run(ctx context.Context, frag string) error
	//Orbitals collects the orbitals produced by the last Run for frag.
	Orbitals(ctx context.Context, frag string) (*movecs.Orbitals, error)
}

//Env has the installation details that the handles need.
type Env struct {
	CamCASP    string //root of the CamCASP installation
	User       string
	Psi4Home   string
	MolproHome string
	Runner     Runner
	//Log receives the standard output of programs that don't have their
	//own output file. Discarded if nil.
	Log io.Writer
}

//NewHandle returns the handle for the given SCF code.
func NewHandle(b clt.Backend, env Env) (Handle, error) {
	switch b {
	case clt.Dalton, clt.Dalton2006:
		return NewDaltonHandle(b, env), nil
	case clt.NWChem:
		return NewNWChemHandle(env), nil
	case clt.Psi4:
		return NewPsi4Handle(env), nil
	case clt.Molpro:
		return NewMolproHandle(env), nil
	}
	return nil, configError("", "unrecognised SCF code %s. Allowed programs are Dalton2013 or later, Dalton2006, NWChem, Psi4 and Molpro", b)
}

//base has what all the handles share.
type base struct {
	program string //name used for the marker and wrapper files
	name    string
	dir     string
	nCPU    int
	memMB   int
	env     Env
}

func newBase(program string, env Env) base {
	if env.Runner == nil {
		env.Runner = ExecRunner{}
	}
	if env.Log == nil {
		env.Log = io.Discard
	}
	return base{program: program, nCPU: 1, memMB: 8 * 1024, dir: ".", env: env}
}

func (B *base) SetName(name string) { B.name = name }

func (B *base) SetDir(dir string) { B.dir = dir }

func (B *base) SetnCPU(cpu int) { B.nCPU = cpu }

func (B *base) SetMemory(mb int) { B.memMB = mb }

//jobM is the prefix for the files of fragment frag.
func (B *base) jobM(frag string) string {
	return B.name + "_" + frag
}

func (B *base) path(name string) string {
	return filepath.Join(B.dir, name)
}

func (B *base) cores() string { return strconv.Itoa(B.nCPU) }

func (B *base) memory() string { return strconv.Itoa(B.memMB) }

//wrapper returns the path of the CamCASP wrapper script for the program, or
//an empty string if there is none.
func (B *base) wrapper() string {
	if B.env.CamCASP == "" {
		return ""
	}
	w := filepath.Join(B.env.CamCASP, "bin", B.program+".sh")
	if _, err := os.Stat(w); err != nil {
		return ""
	}
	return w
}

//installed fails if the CamCASP setup marked the program as missing.
func (B *base) installed() error {
	if B.env.CamCASP == "" {
		return nil
	}
	if _, err := os.Stat(filepath.Join(B.env.CamCASP, "bin", "no_"+B.program)); err == nil {
		return configError("", "it appears that %s is not installed. If it is, please re-run the CamCASP setup", B.program)
	}
	return nil
}

//run runs c in the handle's directory, with the output going to outfile, if given.
func (B *base) run(ctx context.Context, frag string, c Command, outfile string, appendOut bool) error {
	c.Dir = B.dir
	if outfile != "" {
		flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
		if appendOut {
			flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
		}
		out, err := os.OpenFile(B.path(outfile), flags, 0644)
		if err != nil {
			return backendError(frag, 0, "can't open output file: %s", err.Error())
		}
		defer out.Close()
		c.Stdout = out
		if c.Stderr == nil {
			c.Stderr = out
		}
	}
	if c.Stdout == nil {
		c.Stdout = B.env.Log
	}
	rc, err := B.env.Runner.Run(ctx, c)
	if err != nil {
		return backendError(frag, 0, "can't run %s: %s", c.Name, err.Error())
	}
	if rc != 0 {
		return backendError(frag, rc, "%s failed", c.Name)
	}
	return nil
}

//setScratch replaces the <SCRATCHDIR> placeholder that the cluster program
//leaves in some input decks.
func (B *base) setScratch(frag, deck string) error {
	b, err := os.ReadFile(B.path(deck))
	if err != nil {
		return backendError(frag, 0, "input file not available: %s", err.Error())
	}
	s := strings.ReplaceAll(string(b), "<SCRATCHDIR>", B.dir)
	if err := os.WriteFile(B.path(deck), []byte(s), 0644); err != nil {
		return backendError(frag, 0, "can't write input file: %s", err.Error())
	}
	return nil
}

//readOrbitals opens name in the handle's directory and reads it with read.
func (B *base) readOrbitals(frag, name string, read func(io.Reader) (*movecs.Orbitals, error)) (*movecs.Orbitals, error) {
	f, err := os.Open(B.path(name))
	if err != nil {
		return nil, backendError(frag, 0, "orbital file not available: %s", err.Error())
	}
	defer f.Close()
	O, err := read(f)
	if err != nil {
		return nil, backendError(frag, 0, "%s: %s", name, err.Error())
	}
	if O.Title == "" {
		O.Title = fmt.Sprintf("%s %s", B.name, frag)
	}
	return O, nil
}

//CopyFile copies src to dst, keeping the permission bits of src.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	st, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, st.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
