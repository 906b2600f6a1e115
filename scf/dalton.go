/*
 * dalton.go, part of gocamcasp.
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
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/rmera/gocamcasp/clt"
	"github.com/rmera/gocamcasp/movecs"
	"github.com/rs/zerolog/log"
)

//The files from which the Dalton interface program extracts the orbitals.
var daltonRestart = []string{"SIRIUS.RST", "SIRIFC"}

//DaltonHandle runs Dalton 2013 or later, or Dalton 2006.
type DaltonHandle struct {
	base
	version clt.Backend
}

func NewDaltonHandle(version clt.Backend, env Env) *DaltonHandle {
	return &DaltonHandle{base: newBase(string(version), env), version: version}
}

func (D *DaltonHandle) Check() error {
	return D.installed()
}

//method returns the kind of .dal file needed for frag, and the molecule
//whose asymptotic correction applies. acOff is true when no correction
//is to be used at all.
func daltonMethod(J *clt.Job, frag string) (method string, mol *clt.Molecule, acOff bool, err error) {
	mol = J.MolA
	if frag == clt.FragB {
		mol = J.MolB
	}
	hfOrDFT := func() string {
		if strings.EqualFold(J.Method, "HF") {
			return "HF"
		}
		return "DFT"
	}
	switch J.RunType {
	case clt.SAPTDFT, clt.Properties:
		return hfOrDFT(), mol, false, nil
	case clt.DeltaHF, clt.SAPT:
		return "HF", mol, false, nil
	case clt.Supermol:
		m := strings.ToUpper(J.Method)
		switch m {
		case "HF", "MP2", "CC", "DFT":
			return m, mol, true, nil
		}
		return "", nil, false, configError(frag, "method %s not available for supermolecule calculations with Dalton", J.Method)
	}
	return "", nil, false, configError(frag, "run type %s can't be done with Dalton", J.RunType)
}

//BuildInput writes the <job>_<frag>.dal file. The .mol files come from the
//basis compiler.
func (D *DaltonHandle) BuildInput(J *clt.Job, frag string) error {
	if frag == clt.FragC {
		return nil
	}
	method, mol, acOff, err := daltonMethod(J, frag)
	if err != nil {
		return err
	}
	dir := "! "
	if J.Direct {
		dir = ""
	}
	var text string
	switch method {
	case "DFT":
		text, err = D.dft(J, frag, mol, acOff, dir)
		if err != nil {
			return err
		}
	default:
		text = strings.ReplaceAll(daltonTemplates[method], "{dir}", dir)
	}
	name := D.path(D.jobM(frag) + ".dal")
	if err := os.WriteFile(name, []byte(text), 0644); err != nil {
		return configError(frag, "can't write %s: %s", name, err.Error())
	}
	log.Debug().Str("file", name).Str("method", method).Msg("Dalton input")
	return nil
}

func (D *DaltonHandle) dft(J *clt.Job, frag string, mol *clt.Molecule, acOff bool, dir string) (string, error) {
	shift := 0.0
	variable := false
	if mol != nil {
		shift, variable = mol.ACShift, mol.ACVariable
	}
	r := strings.NewReplacer("{dir}", dir, "{FUNC}", J.Functional)
	if D.version == clt.Dalton2006 {
		ac := "!"
		switch J.ACType {
		case "", clt.ACNone:
		case clt.ACMultipole:
			if acOff {
				break
			}
			ac = "! "
			if shift != 0 {
				ac = fmt.Sprintf(".DFTAC\n%6.4f %4.2f %4.2f", shift, orDefault(J.ACP1, 3.5), orDefault(J.ACP2, 4.7))
			}
		default:
			if !acOff {
				return "", configError(frag, "asymptotic correction type %s is incompatible with dalton-2006", J.ACType)
			}
		}
		cks := "! "
		if J.DaltonCKS {
			cks = ""
		}
		return strings.NewReplacer("{AC}", ac, "{CKS}", cks).Replace(r.Replace(daltonTemplates["DFT2006"])), nil
	}
	acType := J.ACType
	if acType == "" {
		acType = clt.ACMultipole
	}
	ac := "!"
	if acType != clt.ACNone && shift != 0 && !acOff {
		switch acType {
		case clt.ACMultipole, clt.ACLB94, clt.ACCS00:
		default:
			return "", configError(frag, "unrecognised asymptotic correction type %s", acType)
		}
		join := J.ACJoin
		if join == "" {
			join = clt.JoinTanh
		}
		var p1, p2 float64
		switch join {
		case clt.JoinLinear, clt.JoinTanh:
			p1, p2 = orDefault(J.ACP1, 3.5), orDefault(J.ACP2, 4.7)
		case clt.JoinGRAC:
			p1, p2 = orDefault(J.ACP1, 0.5), orDefault(J.ACP2, 40.0)
		default:
			return "", configError(frag, "unrecognised asymptotic correction connection %s", join)
		}
		kind := "FIXSHIFT"
		if variable {
			kind = "VARSHIFT"
		}
		ac = fmt.Sprintf(".DFTAC\n%s\n%s\n%s\n%8.5f %8.5f %4.1f %4.1f", acType, join, kind, shift, shift, p1, p2)
	}
	return strings.ReplaceAll(r.Replace(daltonTemplates["DFT2013"]), "{AC}", ac), nil
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func (D *DaltonHandle) Run(ctx context.Context, frag string) error {
	if err := D.Check(); err != nil {
		return err
	}
	jobM := D.jobM(frag)
	var c Command
	if w := D.wrapper(); w != "" {
		c = Command{Name: w, Args: []string{jobM, jobM, D.dir, D.cores(), D.memory()}}
	} else {
		c = Command{Name: filepath.Join(D.env.CamCASP, "bin", D.program),
			Args: []string{"-D", "-M", D.memory(), "-t", D.dir, jobM, jobM}}
	}
	return D.run(ctx, frag, c, jobM+".out", false)
}

//restartFiles puts SIRIUS.RST and SIRIFC in the work directory. Recent
//versions of Dalton leave them in <jobM>.tar.gz. Otherwise they are in
//DALTON_scratch_$USER/<jobM>* (Dalton 2013) or in <jobM>/ (Dalton 2006).
func (D *DaltonHandle) restartFiles(jobM string) error {
	archive := D.path(jobM + ".tar.gz")
	if _, err := os.Stat(archive); err == nil {
		return extractFiles(archive, D.dir, daltonRestart)
	}
	for _, name := range daltonRestart {
		os.Remove(D.path(name))
	}
	src := D.path(jobM)
	if scratch := D.path("DALTON_scratch_" + D.env.User); isDir(scratch) {
		src = filepath.Join(scratch, jobM)
		//Dalton 2013 may add the process ID to the directory name.
		if !isDir(src) {
			matches, _ := filepath.Glob(src + "*")
			if len(matches) == 0 {
				return fmt.Errorf("no Dalton scratch directory for %s", jobM)
			}
			src = matches[0]
		}
	}
	for _, name := range daltonRestart {
		if err := CopyFile(filepath.Join(src, name), D.path(name)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

//Orbitals runs the Dalton interface program on the restart files, and
//reads the orbitals it writes.
func (D *DaltonHandle) Orbitals(ctx context.Context, frag string) (*movecs.Orbitals, error) {
	jobM := D.jobM(frag)
	if err := D.restartFiles(jobM); err != nil {
		return nil, backendError(frag, 0, "can't retrieve the Dalton restart files: %s", err.Error())
	}
	for _, name := range daltonRestart {
		if _, err := os.Stat(D.path(name)); err != nil {
			return nil, backendError(frag, 0, "Dalton %s calculation appears to have failed", jobM)
		}
	}
	reader := "readDALTONmos"
	if D.version == clt.Dalton2006 {
		reader = "readDALTON2006mos"
	}
	ascii := fmt.Sprintf("%s-%s-dalton.movecs", D.name, frag)
	c := Command{Name: reader, Args: []string{"--ascii", ascii}}
	if err := D.run(ctx, frag, c, jobM+".out", true); err != nil {
		return nil, err
	}
	O, err := D.readOrbitals(frag, ascii, movecs.Read)
	if err != nil {
		return nil, err
	}
	os.Remove(D.path(ascii))
	return O, nil
}

//extractFiles copies the named members of a gzipped tar archive into dir.
func extractFiles(archive, dir string, names []string) error {
	f, err := os.Open(archive)
	if err != nil {
		return err
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	tr := tar.NewReader(gz)
	for len(want) > 0 {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		short := filepath.Base(hdr.Name)
		if hdr.Typeflag != tar.TypeReg || !want[short] {
			continue
		}
		out, err := os.Create(filepath.Join(dir, short))
		if err != nil {
			return err
		}
		_, err = io.Copy(out, tr)
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		delete(want, short)
	}
	return nil
}

func isDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}

var daltonTemplates = map[string]string{
	"DFT2006": `**DALTON INPUT
.RUN WAVE FUNCTION
{dir}.DIRECT
**INTEGRALS
.NOSUP
.PRINT
    1
**WAVE FUNCTIONS
.DFT
{FUNC}
.INTERFACE
*AUXILIARY INPUT
.NOSUPMAT
*ORBITALS
.NOSUPSYM
.AO DELETE
    1.0E-6
.CMOMAX
    1000.0
*DFT INPUT
{CKS}.CKS
.DFTELS
0.01
{AC}
.RADINT
1.0E-13
.ANGINT
35
*SCF INPUT
.THRESH
1.0D-6
*ORBITAL INPUT
*END OF INPUT
`,
	"DFT2013": `**DALTON INPUT
.RUN WAVE FUNCTION
{dir}.DIRECT
**INTEGRALS
.NOSUP
.PRINT
    1
**WAVE FUNCTIONS
.DFT
{FUNC}
.INTERFACE
*AUXILIARY INPUT
.NOSUPMAT
*ORBITALS
.AO DELETE
    1.0E-6
.CMOMAX
    1000.0
*DFT INPUT
! .CKS
.DFTELS
0.01
{AC}
.RADINT
1.0E-13
.ANGINT
35
*SCF INPUT
.THRESH
1.0D-6
*ORBITAL INPUT
*END OF INPUT
`,
	"HF": `**DALTON INPUT
.RUN WAVE FUNCTION
{dir}.DIRECT
**INTEGRALS
.NOSUP
.PRINT
    1
**WAVE FUNCTIONS
.HF
.INTERFACE
*AUXILIARY INPUT
.NOSUPMAT
.NOSUPSYM
.AO DELETE
    1.0E-6
.CMOMAX
    1000.0
*SCF INPUT
.THRESH
1.0D-6
*ORBITAL INPUT
*END OF INPUT
`,
	"MP2": `**DALTON INPUT
.RUN WAVE FUNCTION
{dir}.DIRECT
**INTEGRALS
.NOSUP
.PRINT
    1
**WAVE FUNCTIONS
.HF
.MP2
.INTERFACE
*AUXILIARY INPUT
.NOSUPMAT
*ORBITALS
*SCF INPUT
.THRESH
1.0D-6
*ORBITAL INPUT
*END OF INPUT
`,
	"CC": `**DALTON INPUT
.RUN WAVE FUNCTION
{dir}.DIRECT
**INTEGRALS
.NOSUP
.PRINT
    1
**WAVE FUNCTIONS
.CC
*CC INPUT
.CC(T)
*SCF INPUT
.THRESH
1.0D-6
*ORBITAL INPUT
*END OF INPUT
`,
}
