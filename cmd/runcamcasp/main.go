/*
 * main.go, part of gocamcasp.
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

//runcamcasp sets up and runs a CamCASP job: a properties, SAPT(DFT), SAPT,
//delta-HF or Psi4 SAPT(DFT) calculation described by a cluster file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/rmera/gocamcasp/basis"
	"github.com/rmera/gocamcasp/clt"
	"github.com/rmera/gocamcasp/config"
	"github.com/rmera/gocamcasp/engine"
	"github.com/rmera/gocamcasp/scf"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type options struct {
	clt          string
	scfcode      string
	directory    string
	ifExists     string
	imports      []string
	work         string
	restart      bool
	debug        bool
	setupOnly    bool
	logFile      string
	testEnv      bool
	verbose      int
	plotLevels   bool
	plotMaxLevel float64
}

type app struct {
	v    *viper.Viper
	opts options
	out  io.Writer
	code int
}

const long = `Set up and run a CamCASP job.

The cluster file (<job>.clt by default) describes the molecules and the
calculation. The job files are placed in the directory given with
--directory, or <job>. For a restart the directory must exist already.
Otherwise, if the directory exists, --ifexists decides what happens:
  delete   delete it and make a new one
  abort    leave it alone and cancel the job
  new, keep, save
           rename it as <dir>_001 (or the next free number) and make a new one
  ask      ask what to do (default)
For a restart, --ifexists applies to the OUT results subdirectory.

The SCF code is, from highest to lowest priority, the one given with
--scfcode, the SCFCODE entry in the cluster file, $CAMCASP_SCFCODE, or Psi4.

Exit status: 0 success, 1 SCF failure, 2 CamCASP failure, 3 configuration
error, 4 missing orbital files, 5 aborted.`

func newRootCmd() (*cobra.Command, *app) {
	A := &app{v: config.New()}
	cmd := &cobra.Command{
		Use:           "runcamcasp <job>",
		Short:         "Set up and run a CamCASP job",
		Long:          long,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			A.out = cmd.OutOrStdout()
			code, err := A.run(ctx, args[0])
			A.code = code
			return err
		},
	}
	f := cmd.Flags()
	o := &A.opts
	f.StringVar(&o.clt, "clt", "", "cluster file (default <job>.clt)")
	f.StringVarP(&o.directory, "directory", "d", "", "directory to run the job in (default <job>)")
	f.StringVar(&o.scfcode, "scfcode", "", "SCF code: dalton2006, dalton, nwchem, psi4 or molpro")
	f.StringVar(&o.ifExists, "ifexists", engine.IfExistsAsk, "action if the directory exists: "+strings.Join(engine.IfExistsChoices, ", "))
	f.StringSliceVar(&o.imports, "import", nil, "copy these files into the job directory")
	f.IntP("memory", "M", 0, "memory for the job, in GB")
	f.StringP("queue", "q", "", "queue for the job")
	f.String("scratch", "", "scratch directory (default $SCRATCH)")
	f.StringVar(&o.work, "work", "", "work subdirectory, under scratch (default <job>)")
	f.Int("cores", 0, "number of cores for the SCF program")
	f.Int("cores-camcasp", 0, "number of cores for CamCASP")
	f.Bool("direct", false, "use direct integral management")
	f.BoolVar(&o.restart, "restart", false, "restart the job in its existing directory")
	f.BoolVar(&o.debug, "debug", false, "don't delete the scratch files")
	f.BoolVar(&o.setupOnly, "setup-only", false, "set up the job files and stop")
	f.StringVar(&o.logFile, "log", "", "log file (default OUT/<job>.log)")
	f.BoolVar(&o.testEnv, "test-env", false, "check the environment and the cluster file, and stop")
	f.CountVarP(&o.verbose, "verbose", "v", "print more information (repeat for more)")
	f.BoolVar(&o.plotLevels, "plot-levels", false, "plot the orbital energy levels of each fragment")
	f.Float64Var(&o.plotMaxLevel, "plot-max-energy", 1.0, "highest orbital energy plotted, in a.u.")
	for key, flag := range map[string]string{
		"memory":        "memory",
		"queue":         "queue",
		"scratch":       "scratch",
		"cores":         "cores",
		"cores_camcasp": "cores-camcasp",
		"direct":        "direct",
	} {
		A.v.BindPFlag(key, f.Lookup(flag))
	}
	return cmd, A
}

func setupLogging(verbose int) {
	level := zerolog.InfoLevel
	if verbose > 0 {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

func (A *app) run(ctx context.Context, name string) (int, error) {
	o := A.opts
	if o.testEnv && o.verbose == 0 {
		o.verbose = 1
	}
	setupLogging(o.verbose)
	if !slices.Contains(engine.IfExistsChoices, o.ifExists) {
		return engine.ExitConfiguration, fmt.Errorf("invalid --ifexists %q, use one of %s", o.ifExists, strings.Join(engine.IfExistsChoices, ", "))
	}
	cwd, err := os.Getwd()
	if err != nil {
		return engine.ExitConfiguration, err
	}
	C, err := config.Load(A.v, cwd)
	if err != nil {
		return engine.ExitConfiguration, fmt.Errorf("reading the run-control file: %w", err)
	}
	if C.RCFile == "" {
		log.Warn().Msg("no camcasp.rc or .camcasprc found, using defaults")
	}
	if C.CamCASP == "" {
		return engine.ExitConfiguration, errors.New("environment variable CAMCASP has not been defined")
	}
	if C.Scratch == "" {
		return engine.ExitConfiguration, errors.New("no scratch directory: define SCRATCH or use --scratch")
	}

	dir := o.directory
	if dir == "" {
		dir = name
	}
	spec := o.clt
	if spec == "" {
		spec = name + ".clt"
	}
	if o.restart {
		//A restart uses the copy in the job directory.
		spec = filepath.Join(dir, filepath.Base(spec))
	}
	if _, err := os.Stat(spec); err != nil {
		return engine.ExitConfiguration, fmt.Errorf("cluster file %s not found", spec)
	}
	J, err := clt.ParseFile(spec, name, clt.Options{Backend: o.scfcode, EnvBackend: C.SCFCode})
	if err != nil {
		return engine.ExitCode(err), fmt.Errorf("reading %s: %w", spec, err)
	}
	J.Dir = dir
	J.SpecFile = spec
	//--import files come first, then the IMPORT lines of the cluster file.
	J.Imports = append(append([]string(nil), o.imports...), J.Imports...)
	J.LogFile = o.logFile
	J.Debug = o.debug
	J.Restart = o.restart
	work := o.work
	if work == "" {
		work = name
	}
	J.Work = filepath.Join(C.Scratch, work)
	C.Apply(J)
	log.Debug().Msg("job details\n" + J.Summary())
	if o.testEnv {
		fmt.Fprint(A.out, J.Summary())
		fmt.Fprintf(A.out, "Action if directory exists: %s\n", o.ifExists)
		log.Info().Msg("this is a test of the CamCASP environment, stopping here")
		return engine.ExitOK, nil
	}

	H, err := scf.NewHandle(J.Backend, scf.Env{
		CamCASP:    C.CamCASP,
		User:       C.User,
		Psi4Home:   C.Psi4Home,
		MolproHome: C.MolproHome,
		Runner:     scf.ExecRunner{},
		Log:        A.out,
	})
	if err != nil {
		return engine.ExitCode(err), err
	}
	err = engine.Prepare(ctx, J, H, engine.SetupOptions{
		IfExists: o.ifExists,
		Answers:  os.Stdin,
		Prompts:  A.out,
		Library:  basis.NewDirLibrary(C.CamCASP),
	})
	if err != nil {
		return engine.ExitCode(err), fmt.Errorf("setting up %s: %w", J.Name, err)
	}
	if o.setupOnly {
		fmt.Fprintf(A.out, "Job files set up. Use\n  runcamcasp %s --clt %s -d %s [options] --restart\nto execute the job.\n",
			J.Name, filepath.Base(J.SpecFile), J.Dir)
		return engine.ExitOK, nil
	}
	if o.restart {
		log.Info().Str("dir", J.Dir).Msg("restarting job")
	} else {
		log.Info().Str("run_type", J.RunType.Long()).Str("scfcode", string(J.Backend)).Msg("starting job")
	}
	E := engine.New(J, H, scf.NewCamCASPRunner(nil))
	E.PlotLevels = o.plotLevels
	E.MaxPlotEnergy = o.plotMaxLevel
	return E.Execute(ctx)
}

func main() {
	cmd, A := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "runcamcasp:", err)
		if A.code == engine.ExitOK {
			A.code = engine.ExitConfiguration
		}
	}
	os.Exit(A.code)
}
