/*
 * compile.go, part of gocamcasp.
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

//Package basis builds the Dalton molecule files for each fragment of a
//job from one annotated template, adding ghost atoms as required by the
//counterpoise scheme.
package basis

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rmera/gocamcasp/clt"
	"github.com/rs/zerolog/log"
)

//Options select the files to be produced.
type Options struct {
	RunType   clt.RunType
	Type      clt.BasisType
	NoMidbond bool
}

//OptionsFor returns the compiler options for a job.
func OptionsFor(J *clt.Job) Options {
	return Options{RunType: J.RunType, Type: J.BasisType, NoMidbond: J.NoMidbond}
}

func (O Options) midbond() bool {
	return !O.NoMidbond && O.Type.Plus()
}

//Set is the result of a compilation, one file per fragment.
type Set struct {
	files map[string]string
	order []string
}

func (S *Set) add(frag, content string) {
	if S.files == nil {
		S.files = make(map[string]string)
	}
	S.files[frag] = content
	S.order = append(S.order, frag)
}

//Fragments returns the fragments for which a file was produced (A, B, AB).
func (S *Set) Fragments() []string {
	return append([]string(nil), S.order...)
}

//File returns the contents of the molecule file for frag.
func (S *Set) File(frag string) (string, bool) {
	f, ok := S.files[frag]
	return f, ok
}

//WriteFiles writes <job>_<fragment>.mol files in dir.
func (S *Set) WriteFiles(dir, job string) error {
	for _, frag := range S.order {
		name := filepath.Join(dir, fmt.Sprintf("%s_%s.mol", job, frag))
		if err := os.WriteFile(name, []byte(S.files[frag]), 0644); err != nil {
			return &Error{kind: KindLookup, message: err.Error(), filename: name, deco: []string{"WriteFiles"}}
		}
	}
	return nil
}

//Lines splits a template into lines.
func Lines(r io.Reader) ([]string, error) {
	var ret []string
	s := bufio.NewScanner(r)
	for s.Scan() {
		ret = append(ret, s.Text())
	}
	return ret, s.Err()
}

//Generate compiles <dir>/<job>.DALtemplate for J and writes the
//resulting .mol files in dir.
func Generate(J *clt.Job, dir string, lib Library) (*Set, error) {
	name := filepath.Join(dir, J.Name+".DALtemplate")
	f, err := os.Open(name)
	if err != nil {
		return nil, &Error{kind: KindLookup, message: "template not available", filename: name, deco: []string{"Generate"}}
	}
	defer f.Close()
	lines, err := Lines(f)
	if err != nil {
		return nil, &Error{kind: KindLookup, message: err.Error(), filename: name, deco: []string{"Generate"}}
	}
	set, err := Compile(OptionsFor(J), lines, lib)
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.Decorate("Generate")
		}
		return nil, err
	}
	return set, set.WriteFiles(dir, J.Name)
}

//Compile produces the molecule files for the given options.
//Properties calculations always use the monomer basis. Delta-HF and
//supermolecule calculations also get the file for the dimer.
func Compile(O Options, lines []string, lib Library) (*Set, error) {
	bt := O.Type
	if O.RunType == clt.Properties {
		bt = clt.Mono
	}
	dimer := false
	switch O.RunType {
	case clt.DeltaHF:
		if bt != clt.DC && bt != clt.DCPlus {
			return nil, &Error{kind: KindConsistency, message: fmt.Sprintf("inappropriate basis type %s: use only dc or dc+ for a Delta-HF calculation", bt), deco: []string{"Compile"}}
		}
		dimer = true
	case clt.Supermol:
		dimer = true
	}
	mb := O.midbond()
	if mb {
		log.Debug().Msg("Mid-bond basis functions will be used")
	}
	var layouts []layout
	switch bt {
	case clt.Mono:
		layouts = []layout{monomer()}
	case clt.MC, clt.MCPlus:
		layouts = monomerCentered(bt == clt.MCPlus, mb)
	case clt.DC, clt.DCPlus:
		layouts = dimerCentered(mb)
	default:
		return nil, &Error{kind: KindConsistency, message: fmt.Sprintf("unknown basis type %q", bt), deco: []string{"Compile"}}
	}
	if dimer {
		layouts = append(layouts, dimerAB(mb))
	}
	set := new(Set)
	for _, l := range layouts {
		content, err := l.compile(lines, lib)
		if err != nil {
			if e, ok := err.(*Error); ok {
				e.Decorate("Compile")
			}
			return nil, err
		}
		set.add(l.frag, content)
	}
	return set, nil
}
