/*
 * config.go, part of gocamcasp.
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

//Package config collects the run-time settings of a CamCASP job from the
//command line, the environment and the camcasp.rc run-control file.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rmera/gocamcasp/clt"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

//Error is returned for unreadable or malformed run-control files.
type Error struct {
	message  string
	filename string
	line     int
	deco     []string
}

func (err *Error) Error() string {
	if err.line > 0 {
		return fmt.Sprintf("%s:%d: %s", err.filename, err.line, err.message)
	}
	return fmt.Sprintf("%s: %s", err.filename, err.message)
}

func (err *Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

func (err *Error) FileName() string { return err.filename }

func (err *Error) Critical() bool { return true }

//Run-control file names, in lookup order: the current directory, the
//home directory (hidden file) and the CamCASP installation.
const (
	RCName    = "camcasp.rc"
	RCDotName = ".camcasprc"
)

//NP keys: the per-program core counts in the run-control file.
var npKeys = []string{"np_psi4", "np_nwchem", "np_molpro", "np_dalton", "np_camcasp"}

//FindRC returns the first run-control file found in cwd, home and camcasp,
//in that order, or an empty string.
func FindRC(cwd, home, camcasp string) string {
	candidates := []string{filepath.Join(cwd, RCName)}
	if home != "" {
		candidates = append(candidates, filepath.Join(home, RCDotName))
	}
	if camcasp != "" {
		candidates = append(candidates, filepath.Join(camcasp, RCName))
	}
	for _, c := range candidates {
		if st, err := os.Stat(c); err == nil && !st.IsDir() {
			return c
		}
	}
	return ""
}

//ReadRC parses a run-control file: "key value" lines, with # comments.
//Keys are case-insensitive. nproc sets every np_ key, which later np_
//lines can override. Memory is returned in GB. Unknown keys are ignored.
func ReadRC(r io.Reader, filename string) (map[string]interface{}, error) {
	rc := map[string]interface{}{"nproc": 1}
	for _, k := range npKeys {
		rc[k] = 1
	}
	s := bufio.NewScanner(r)
	n := 0
	for s.Scan() {
		n++
		fields := strings.Fields(s.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		key := strings.ToLower(fields[0])
		if len(fields) < 2 {
			return nil, &Error{message: fmt.Sprintf("no value for %s", key), filename: filename, line: n}
		}
		val := fields[1]
		atoi := func() (int, error) {
			i, err := strconv.Atoi(val)
			if err != nil {
				return 0, &Error{message: fmt.Sprintf("%s must be an integer, not %q", key, val), filename: filename, line: n}
			}
			return i, nil
		}
		switch key {
		case "memory", "memory_gb", "memory_mb":
			i, err := atoi()
			if err != nil {
				return nil, err
			}
			if key == "memory_mb" {
				i /= 1024
			}
			rc["memory"] = i
		case "direct":
			switch strings.ToLower(val) {
			case "yes", "on", "true":
				rc["direct"] = true
			case "no", "off", "false":
				rc["direct"] = false
			}
		case "nproc":
			i, err := atoi()
			if err != nil {
				return nil, err
			}
			rc["nproc"] = i
			for _, k := range npKeys {
				rc[k] = i
			}
		case "np_psi4", "np_nwchem", "np_molpro", "np_dalton", "np_camcasp":
			i, err := atoi()
			if err != nil {
				return nil, err
			}
			rc[key] = i
		case "queue":
			rc["queue"] = strings.ToLower(val)
		default:
			log.Debug().Str("file", filename).Str("key", key).Msg("ignoring run-control key")
		}
	}
	if err := s.Err(); err != nil {
		return nil, &Error{message: err.Error(), filename: filename}
	}
	return rc, nil
}

//New returns a viper instance with the defaults and the environment
//bindings. Command-line flags are bound by the caller.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("memory", 8)
	for key, env := range map[string]string{
		"camcasp":           "CAMCASP",
		"scratch":           "SCRATCH",
		"scfcode":           "CAMCASP_SCFCODE",
		"user":              "USER",
		"home":              "HOME",
		"psi4_home":         "PSI4_HOME",
		"molpro_home":       "MOLPRO_HOME",
		"env_cores":         "CORES",
		"env_cores_camcasp": "CORES_CAMCASP",
		"env_queue":         "QUEUE",
	} {
		v.BindEnv(key, env)
	}
	return v
}

//Config is the resolved configuration.
type Config struct {
	CamCASP    string
	Scratch    string
	SCFCode    string //from CAMCASP_SCFCODE; may be empty
	User       string
	Psi4Home   string
	MolproHome string
	RCFile     string //empty if no run-control file was found
	MemoryGB   int
	Direct     bool
	Queue      string

	v *viper.Viper
}

//Load finds and merges the run-control file, and resolves the settings in v.
//cwd is the directory searched first for camcasp.rc.
func Load(v *viper.Viper, cwd string) (*Config, error) {
	C := &Config{v: v}
	C.RCFile = FindRC(cwd, v.GetString("home"), v.GetString("camcasp"))
	if C.RCFile != "" {
		f, err := os.Open(C.RCFile)
		if err != nil {
			return nil, &Error{message: err.Error(), filename: C.RCFile}
		}
		rc, err := ReadRC(f, C.RCFile)
		f.Close()
		if err != nil {
			return nil, err
		}
		if err := v.MergeConfigMap(rc); err != nil {
			return nil, &Error{message: err.Error(), filename: C.RCFile}
		}
		log.Debug().Str("file", C.RCFile).Interface("settings", rc).Msg("run-control file")
	}
	C.CamCASP = v.GetString("camcasp")
	C.Scratch = v.GetString("scratch")
	C.SCFCode = v.GetString("scfcode")
	C.User = v.GetString("user")
	C.Psi4Home = v.GetString("psi4_home")
	C.MolproHome = v.GetString("molpro_home")
	C.Direct = v.GetBool("direct")
	C.MemoryGB = v.GetInt("memory")
	if C.MemoryGB <= 0 {
		C.MemoryGB = 8
	}
	C.Queue = v.GetString("queue")
	if C.Queue == "" {
		C.Queue = v.GetString("env_queue")
	}
	if C.Queue == "" {
		C.Queue = "batch"
	}
	return C, nil
}

//npKey is the run-control key with the core count for backend b.
func npKey(b clt.Backend) string {
	if b.IsDalton() {
		return "np_dalton"
	}
	return "np_" + string(b)
}

//Cores returns the number of cores for the SCF program: the --cores flag,
//else the run-control count for the backend, else $CORES, else 2.
func (C *Config) Cores(b clt.Backend) int {
	return C.resolveCores("cores", []string{npKey(b), "nproc"}, "env_cores")
}

//CoresCamCASP is like Cores, for the CamCASP program itself.
func (C *Config) CoresCamCASP() int {
	return C.resolveCores("cores_camcasp", []string{"np_camcasp", "nproc"}, "env_cores_camcasp")
}

func (C *Config) resolveCores(flag string, rc []string, env string) int {
	if n := C.v.GetInt(flag); n > 0 {
		return n
	}
	for _, k := range rc {
		if C.v.IsSet(k) {
			if n := C.v.GetInt(k); n > 0 {
				return n
			}
		}
	}
	if n := C.v.GetInt(env); n > 0 {
		return n
	}
	return 2
}

//Apply copies the resolved settings into the job. The backend must have been
//resolved already.
func (C *Config) Apply(J *clt.Job) {
	J.MemoryGB = C.MemoryGB
	J.Direct = J.Direct || C.Direct
	J.Queue = C.Queue
	J.Cores = C.Cores(J.Backend)
	J.CoresCamCASP = C.CoresCamCASP()
}
