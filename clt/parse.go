/*
 * parse.go, part of gocamcasp.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

//Options are the settings that come from outside the cluster file.
type Options struct {
	//Backend, if not empty, fixes the SCF code, and SCFCODE lines are ignored.
	Backend string
	//EnvBackend is used when neither Backend nor the cluster file give a SCF code.
	EnvBackend string
}

//Phase 1: molecule declarations.
var (
	reComment  = regexp.MustCompile(`^\s*!`)
	reMolecule = regexp.MustCompile(`(?i)^\s*(?:MOLECULE|ATOM)\s+([\w-]+)`)
	reIP       = regexp.MustCompile(`(?i)^\s*I\.?P\.?\s+(\d*(?:\.\d+)?)\s*(ev)?`)
	reHOMO     = regexp.MustCompile(`(?i)^\s*HOMO\s+(?:energy\s+)?(-?\d*(?:\.\d+)?)\s*(ev)?`)
	reACShift  = regexp.MustCompile(`(?i)^\s*AC-SHIFT\s+(\d*(?:\.\d+)?)\s*(ev)?`)
	reJoin     = regexp.MustCompile(`(?i)^\s*JOIN\s+([\w,\s]+?)\s+INTO\s+([\w,-]+)`)
	reEndDecl  = regexp.MustCompile(`(?i)^\s*(?:RUN-?(?:TYPE|DESC|DESCRIPTION)?|JOB|FILES)(.*)$`)
)

//Phase 2: calculation directives.
var (
	reFinish    = regexp.MustCompile(`(?i)^\s*FINISH\s*$`)
	reMolecules = regexp.MustCompile(`(?i)^\s*(?:MOLECULES?|MOLS?|ATOMS?)\s+(\S+)\s*(?:(?:AND\s+)?(\S+))?`)
	reRunType   = regexp.MustCompile(`(?i)^\s*((?:PSI4-)?SAPT(?:-?DFT|\(DFT\))|DFT-?SAPT|D(?:ELTA)?.?HF|SAPT|SUPERMOL(?:ECULE)?|PROPERT(?:Y|IES)|CAMCASP)\s*$`)
	reSCFCode   = regexp.MustCompile(`(?i)^\s*SCF-?CODE\s+(\w+(?:-\d+)?)(?:\s+(DIRECT))?`)
	reBasis     = regexp.MustCompile(`(?i)^\s*(MAIN-|AUX-|ATOMAUX-|ISA-)?BASIS\s+([\w-]+)`)
	reBasisType = regexp.MustCompile(`(?i)TYPE\s+([md]c\+?|mono)`)
	reMidbond   = regexp.MustCompile(`(?i)^\s*MIDBOND\s+(\w+)`)
	reMethod    = regexp.MustCompile(`(?i)METHOD\s+(\w+)`)
	reFunc      = regexp.MustCompile(`(?i)FUNC(?:TIONAL)?\s+(\w+)`)
	reOverride  = regexp.MustCompile(`(?i)^\s*(HOMO|IP|I\.P\.|AC-SHIFT)\s+(\S+)\s+(-?\d+\.\d+)\s*(ev)?`)
	reAC        = regexp.MustCompile(`(?i)^\s*(?:AC(?:\s+|$)|ASYMP\w*(?:-|\s+|$)(?:CORR\w*(?:\s+|$))?)`)
	reKernel    = regexp.MustCompile(`(?i)^\s*KERNEL\s+(.*)$`)
	reKernelVal = regexp.MustCompile(`(?i)^(ALDAX?)?(\+\w+)?`)
	rePrefix    = regexp.MustCompile(`(?i)^\s*(?:FILE-?)?PREFIX\s+([\w.-]+)`)
	reImport    = regexp.MustCompile(`(?i)^\s*IMPORT\b`)
	reACParam   = regexp.MustCompile(`^\d+\.\d*$`)
)

//ParseFile reads the cluster file at path. See Parse.
func ParseFile(path, name string, opts Options) (*Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newError(KindLookup, path, err.Error(), "os.Open", "ParseFile")
	}
	defer f.Close()
	J, err := Parse(f, name, opts)
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.Decorate("ParseFile")
		}
		return nil, err
	}
	J.SpecFile = path
	return J, nil
}

//Parse reads a cluster file and returns the job it describes, named name.
//All errors are fatal, no partially-read job is returned.
func Parse(r io.Reader, name string, opts Options) (*Job, error) {
	J := NewJob(name)
	if opts.Backend != "" {
		J.Backend = NormalizeBackend(opts.Backend)
	}
	scanner := bufio.NewScanner(r)
	if err := scanDeclarations(scanner, J); err != nil {
		return nil, err
	}
	count, err := scanDirectives(scanner, J, opts.Backend != "")
	if err != nil {
		return nil, err
	}
	if err := scanner.Err(); err != nil {
		return nil, newError(KindSyntax, "", err.Error(), "bufio.Scanner", "Parse")
	}
	if err := finalize(J, count, opts); err != nil {
		return nil, err
	}
	return J, nil
}

//value parses an energy, converting it to atomic units if eV is given.
func value(num, unit, line string) (float64, error) {
	if num == "" {
		return 0, newError(KindSyntax, line, "missing value")
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, newError(KindSyntax, line, err.Error())
	}
	if strings.EqualFold(unit, "ev") {
		v /= Hartree2eV
	}
	return v, nil
}

//scanDeclarations reads molecule definitions until the first
//RUN-TYPE, JOB or FILES line (or the end of the input).
func scanDeclarations(scanner *bufio.Scanner, J *Job) error {
	var mol *Molecule
	setter := func(m []string, line string, target func(*Molecule) *float64, what string) error {
		if mol == nil {
			return newError(KindSyntax, line, what+" given outside a molecule definition", "scanDeclarations")
		}
		v, err := value(m[1], m[2], line)
		if err != nil {
			return err
		}
		*target(mol) = v
		log.Debug().Str("molecule", mol.Name).Float64(what, v).Msg("declaration")
		return nil
	}
	for scanner.Scan() {
		line := scanner.Text()
		if reComment.MatchString(line) {
			continue
		}
		if m := reMolecule.FindStringSubmatch(line); m != nil {
			mol = J.Molecules.Declare(m[1])
			continue
		}
		if m := reIP.FindStringSubmatch(line); m != nil {
			if err := setter(m, line, func(M *Molecule) *float64 { return &M.IP }, "IP"); err != nil {
				return err
			}
			continue
		}
		if m := reHOMO.FindStringSubmatch(line); m != nil {
			if err := setter(m, line, func(M *Molecule) *float64 { return &M.HOMO }, "HOMO"); err != nil {
				return err
			}
			continue
		}
		if m := reACShift.FindStringSubmatch(line); m != nil {
			if err := setter(m, line, func(M *Molecule) *float64 { return &M.ACShift }, "AC-SHIFT"); err != nil {
				return err
			}
			continue
		}
		//A molecule built from others. Its IP can't be known yet.
		if m := reJoin.FindStringSubmatch(line); m != nil {
			mol = J.Molecules.Declare(m[2])
			continue
		}
		if m := reEndDecl.FindStringSubmatch(line); m != nil {
			J.RunType = RunType(strings.ToLower(strings.TrimSpace(m[1])))
			return nil
		}
	}
	return nil
}

//scanDirectives reads the calculation details, until FINISH or the end
//of the input, and returns the number of molecules in the calculation.
func scanDirectives(scanner *bufio.Scanner, J *Job, backendFixed bool) (int, error) {
	count := 0
	for scanner.Scan() {
		line := scanner.Text()
		if reComment.MatchString(line) {
			continue
		}
		if reFinish.MatchString(line) {
			break
		}
		if m := reMolecules.FindStringSubmatch(line); m != nil {
			a, ok := J.Molecules.Get(m[1])
			if !ok {
				return 0, newError(KindLookup, line, fmt.Sprintf("molecule %s has not been defined", m[1]), "scanDirectives")
			}
			J.MolA, J.MolB = a, nil
			count = 1
			if m[2] != "" {
				b, ok := J.Molecules.Get(m[2])
				if !ok {
					return 0, newError(KindLookup, line, fmt.Sprintf("molecule %s has not been defined", m[2]), "scanDirectives")
				}
				J.MolB = b
				count = 2
			}
			continue
		}
		if m := reRunType.FindStringSubmatch(line); m != nil {
			J.RunType = RunType(strings.ToLower(m[1]))
			continue
		}
		if m := reSCFCode.FindStringSubmatch(line); m != nil {
			if backendFixed {
				continue
			}
			J.Backend = NormalizeBackend(m[1])
			if m[2] != "" {
				J.Direct = true
			}
			log.Debug().Str("scfcode", string(J.Backend)).Bool("direct", J.Direct).Msg("SCF code")
			continue
		}
		if m := reBasis.FindStringSubmatch(line); m != nil {
			if err := basisLine(J, m, line); err != nil {
				return 0, err
			}
			continue
		}
		//Other midbond settings are handled by the cluster program.
		if m := reMidbond.FindStringSubmatch(line); m != nil {
			if strings.EqualFold(m[1], "NONE") {
				J.NoMidbond = true
			}
			continue
		}
		if m := reMethod.FindStringSubmatch(line); m != nil {
			J.Method = m[1]
			continue
		}
		if m := reFunc.FindStringSubmatch(line); m != nil {
			J.Functional = m[1]
			continue
		}
		if m := reOverride.FindStringSubmatch(line); m != nil {
			if err := overrideLine(J, m, line); err != nil {
				return 0, err
			}
			continue
		}
		if loc := reAC.FindStringIndex(line); loc != nil {
			if err := acLine(J, line[loc[1]:], line); err != nil {
				return 0, err
			}
			continue
		}
		if m := reKernel.FindStringSubmatch(line); m != nil {
			k := reKernelVal.FindString(strings.TrimSpace(m[1]))
			if k == "" {
				return 0, newError(KindSyntax, line, "unrecognised KERNEL entry. Options: (ALDA(X)?)(+CHF)([-, ]DALTON)", "scanDirectives")
			}
			J.Kernel = strings.ToUpper(k)
			J.DaltonCKS = strings.Contains(strings.ToUpper(m[1]), "DALTON")
			continue
		}
		if m := rePrefix.FindStringSubmatch(line); m != nil {
			if m[1] != J.Name {
				return 0, newError(KindConsistency, line, fmt.Sprintf("the file prefix, if given, must be the job name %s", J.Name), "scanDirectives")
			}
			continue
		}
		if reImport.MatchString(line) {
			J.Imports = append(J.Imports, strings.Fields(line)[1:]...)
			continue
		}
	}
	return count, nil
}

func basisLine(J *Job, m []string, line string) error {
	slot := strings.ToUpper(m[1])
	name := strings.ToLower(m[2])
	var bt BasisType
	if t := reBasisType.FindStringSubmatch(line); t != nil {
		bt = BasisType(strings.ToLower(t[1]))
	}
	switch slot {
	case "MAIN-", "":
		canon, ok := CanonicalBasis[name]
		if !ok {
			return newError(KindSyntax, line, fmt.Sprintf("basis %s not recognised", name), "basisLine")
		}
		J.Basis = canon
		J.BasisType = bt
		if J.AuxBasis == "" {
			J.AuxBasis = canon
		}
	case "AUX-":
		J.AuxBasis = name
		J.AuxBasisType = bt
	case "ATOMAUX-":
		J.AtomAuxBasis = name
		J.AtomAuxBasisType = bt
	case "ISA-":
		J.ISABasis = name
	}
	log.Debug().Str("slot", slot+"BASIS").Str("basis", name).Str("type", string(bt)).Msg("basis")
	return nil
}

//overrideLine handles {HOMO|IP|AC-SHIFT} <molecule> <value> [eV]
//The molecule is created if needed (useful for molecules built with JOIN).
func overrideLine(J *Job, m []string, line string) error {
	v, err := value(m[3], m[4], line)
	if err != nil {
		return err
	}
	mol := J.Molecules.Ensure(m[2])
	switch strings.ToUpper(m[1]) {
	case "HOMO":
		mol.HOMO = v
	case "IP", "I.P.":
		mol.IP = v
	case "AC-SHIFT":
		mol.ACShift = v
	}
	return nil
}

//acLine parses [type] [join [p1 p2]]. An AC line with nothing else means LB94 with TANH.
func acLine(J *Job, rest, line string) error {
	J.ACType = ACLB94
	J.ACJoin = JoinTanh
	tokens := strings.Fields(rest)
	for i := 0; i < len(tokens); i++ {
		key := strings.ToUpper(tokens[i])
		switch key {
		case "CS00", "LB94", "MULTPOLE":
			J.ACType = ACType(key)
		case "MULTIPOLE":
			J.ACType = ACMultipole
		case "NONE", "NO", "OFF":
			J.ACType = ACNone
		case "TH", "T-H", "LINEAR", "TANH", "GRAC":
			J.ACJoin = ACJoin(key)
			if key == "TH" || key == "T-H" {
				J.ACJoin = JoinLinear
			}
			//the parameters are only read right after the join.
			if i+2 < len(tokens) && reACParam.MatchString(tokens[i+1]) && reACParam.MatchString(tokens[i+2]) {
				J.ACP1, _ = strconv.ParseFloat(tokens[i+1], 64)
				J.ACP2, _ = strconv.ParseFloat(tokens[i+2], 64)
				i += 2
			}
		default:
			return newError(KindSyntax, line, fmt.Sprintf("unknown asymptotic correction option %s", tokens[i]), "acLine")
		}
	}
	return nil
}

//NormalizeBackend maps the accepted spellings of the SCF codes to the Backend values.
//Unknown names are returned lowercased, and rejected later.
func NormalizeBackend(s string) Backend {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "dalton2006" || s == "dalton-2006":
		return Dalton2006
	case s == "dalton" || strings.HasPrefix(s, "dalton2013") || strings.HasPrefix(s, "dalton-2013") ||
		s == "dalton2015" || s == "dalton-2015" || s == "dalton2016" || s == "dalton-2016":
		return Dalton
	case strings.HasPrefix(s, "psi4"):
		return Psi4
	case strings.HasPrefix(s, "nwchem"):
		return NWChem
	case strings.HasPrefix(s, "molpro"):
		return Molpro
	}
	return Backend(s)
}

var runTypeStandard = []struct {
	re *regexp.Regexp
	rt RunType
}{
	{regexp.MustCompile(`^psi4-sapt(\(dft\)|-dft)$`), Psi4SAPTDFT},
	{regexp.MustCompile(`^(saptdft|sapt(-dft|\(dft\))|dft-?sapt)$`), SAPTDFT},
	{regexp.MustCompile(`^sapt$`), SAPT},
	{regexp.MustCompile(`^d(elta)?.?hf$`), DeltaHF},
	{regexp.MustCompile(`^propert(y|ies)$`), Properties},
	{regexp.MustCompile(`^supermol(ecule)?$`), Supermol},
	{regexp.MustCompile(`^camcasp$`), CamCASP},
	{regexp.MustCompile(`^psi4_saptdft$`), Psi4SAPTDFT},
}

//StandardRunType maps the accepted spellings of a run type to a RunType.
func StandardRunType(s string) (RunType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, v := range runTypeStandard {
		if v.re.MatchString(s) {
			return v.rt, true
		}
	}
	return "", false
}

//finalize applies the defaults and checks the consistency of the job.
func finalize(J *Job, count int, opts Options) error {
	if count == 0 {
		return newError(KindConsistency, "", "no molecules specified for calculation (MOLECULES A [and B] line omitted)", "finalize")
	}
	if J.RunType == "" {
		if count == 1 {
			J.RunType = Properties
		} else {
			J.RunType = SAPTDFT
		}
		log.Debug().Str("runtype", string(J.RunType)).Msg("run-type assumed")
	}
	rt, ok := StandardRunType(string(J.RunType))
	if !ok {
		return newError(KindSyntax, string(J.RunType), "run-type not understood", "finalize")
	}
	J.RunType = rt
	if count == 1 && J.RunType != Properties {
		return newError(KindConsistency, "", fmt.Sprintf("%s calculation was specified but only one molecule", J.RunType), "finalize")
	}
	if J.BasisType == "" {
		if J.RunType != Properties {
			return newError(KindConsistency, "", "basis set type not specified", "finalize")
		}
		J.BasisType = Mono
	}
	//The correction defaults follow the SCF code given on the command line
	//or in the file, before the environment or Psi4 default is applied.
	ac := DefaultAC(J.Backend, ACSettings{Type: J.ACType, Join: J.ACJoin})
	J.ACType, J.ACJoin = ac.Type, ac.Join
	if J.Backend == "" {
		J.Backend = Psi4
		if opts.EnvBackend != "" {
			J.Backend = NormalizeBackend(opts.EnvBackend)
		}
	}
	if !J.Backend.Valid() {
		return newError(KindConfiguration, string(J.Backend), "unrecognised SCF code. Available programs are Dalton2006, Dalton (i.e. Dalton2013 or later), NWChem, Psi4 and Molpro", "finalize")
	}
	resolveJobAC(J)
	log.Debug().Str("basis", J.Basis).Str("basistype", string(J.BasisType)).Str("runtype", string(J.RunType)).
		Str("scfcode", string(J.Backend)).Str("ac", string(J.ACType)).Str("join", string(J.ACJoin)).Msg("job read")
	return nil
}
