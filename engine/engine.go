/*
 * engine.go, part of gocamcasp.
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

//Package engine runs a CamCASP job: it prepares the job directory, stages
//a scratch workspace, runs the SCF calculation for each fragment and then
//the CamCASP program itself, and collects the results.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rmera/gocamcasp/clt"
	"github.com/rmera/gocamcasp/movecs"
	"github.com/rmera/gocamcasp/scf"
	"github.com/rs/zerolog"
)

//Engine executes one job. The job must be fully resolved, and its
//directory set up already (see Prepare).
type Engine struct {
	Job        *clt.Job
	Handle     scf.Handle
	Aggregator scf.Aggregator
	RunID      string

	//PlotLevels requests an orbital energy diagram for each fragment,
	//with the levels up to MaxPlotEnergy (a.u.).
	PlotLevels    bool
	MaxPlotEnergy float64

	//Stderr gets a copy of the job log. os.Stderr by default.
	Stderr io.Writer

	log     zerolog.Logger
	metrics *metrics
	report  *Report
}

//New returns an Engine for the job J, which runs its fragments with H and
//the CamCASP stage with A. Each Engine gets a fresh run id.
func New(J *clt.Job, H scf.Handle, A scf.Aggregator) *Engine {
	return &Engine{
		Job:           J,
		Handle:        H,
		Aggregator:    A,
		RunID:         uuid.NewString(),
		MaxPlotEnergy: 1.0,
		Stderr:        os.Stderr,
	}
}

//Execute runs the job and returns its exit code, with the error that
//caused a nonzero code. Files already in the results directory are kept
//in every case. The scratch directory is removed only if everything
//went well and the job is not in debug mode.
func (E *Engine) Execute(ctx context.Context) (int, error) {
	J := E.Job
	results := filepath.Join(J.Dir, "OUT")
	if err := os.MkdirAll(results, 0755); err != nil {
		return ExitConfiguration, workspaceError(results, err)
	}
	logfile := J.LogFile
	if logfile == "" {
		logfile = filepath.Join(results, J.Name+".log")
	}
	lf, err := os.Create(logfile)
	if err != nil {
		return ExitConfiguration, workspaceError(logfile, err)
	}
	defer lf.Close()
	E.log = zerolog.New(zerolog.MultiLevelWriter(lf, zerolog.ConsoleWriter{Out: E.Stderr, NoColor: true})).
		With().Timestamp().Str("job", J.Name).Logger()
	E.metrics = newMetrics()
	E.report = &Report{
		RunID:   E.RunID,
		Job:     J.Name,
		RunType: string(J.RunType),
		Backend: string(J.Backend),
		Started: time.Now(),
		Info:    J.Summary(),
	}

	err = E.execute(ctx, results)
	code := ExitCode(err)

	E.report.Finished = time.Now()
	E.report.ExitCode = code
	if err != nil {
		E.report.Error = err.Error()
		E.log.Error().Err(err).Int("exit", code).Msg("job failed")
	} else {
		E.log.Info().Dur("elapsed", E.report.Finished.Sub(E.report.Started)).Msg("job finished")
	}
	if werr := E.metrics.write(filepath.Join(results, J.Name+".prom")); werr != nil {
		E.log.Warn().Err(werr).Msg("can't write metrics")
	}
	if werr := E.report.WriteFile(filepath.Join(results, J.Name+".job.yaml")); werr != nil {
		E.log.Warn().Err(werr).Msg("can't write job summary")
	}
	return code, err
}

func (E *Engine) execute(ctx context.Context, results string) error {
	J := E.Job
	parts, err := J.Fragments()
	if err != nil {
		return err
	}
	W, err := Stage(J.Dir, J.Work, results)
	if W != nil {
		E.report.Work = W.Work
	}
	if err != nil {
		return err
	}
	E.log.Info().Str("work", W.Work).Str("main", J.Dir).Str("results", results).
		Strs("parts", parts).Str("run_id", E.RunID).Msg("job starting")

	H := E.Handle
	H.SetName(J.Name)
	H.SetDir(W.Work)
	H.SetnCPU(J.Cores)
	H.SetMemory(J.MemoryMB())

	var failure error
	checked := false
	for _, M := range parts {
		if M == clt.FragC {
			failure = E.aggregate(ctx, W, parts)
			break
		}
		if Completed(filepath.Join(J.Dir, CanonicalName(J.Name, M))) {
			E.log.Info().Str("part", M).Msg("orbitals available, part skipped")
			E.metrics.skipped.Inc()
			E.report.add(M, "skipped", 0, nil)
			continue
		}
		if !checked {
			if failure = H.Check(); failure != nil {
				break
			}
			checked = true
		}
		start := time.Now()
		E.log.Info().Str("part", M).Int("cores", J.Cores).Msg("SCF calculation starting")
		failure = E.fragment(ctx, W, M)
		d := time.Since(start)
		if failure != nil {
			E.metrics.observe(M, string(J.Backend), "failed", d)
			E.report.add(M, "failed", d, failure)
			//Later parts would be pointless.
			break
		}
		E.metrics.observe(M, string(J.Backend), "done", d)
		E.report.add(M, "done", d, nil)
		E.log.Info().Str("part", M).Dur("elapsed", d).Msg("SCF calculation finished")
		if J.RunType == clt.Psi4SAPTDFT {
			//Psi4 did the whole job.
			E.cleanup(W, false)
			return nil
		}
	}
	if err := W.Collect(J.Name); err != nil {
		E.log.Warn().Err(err).Msg("can't collect all the results")
	}
	E.cleanup(W, failure != nil)
	return failure
}

func (E *Engine) cleanup(W *Workspace, crashed bool) {
	if E.Job.Debug || crashed {
		E.log.Info().Str("work", W.Work).Msg("work directory kept")
		return
	}
	if err := W.Remove(); err != nil {
		E.log.Warn().Err(err).Msg("can't remove work directory")
	}
}

//fragment runs the SCF calculation for M and stores its orbitals in
//canonical form, in the main directory for later runs, and in the CamCASP
//directory for this one.
func (E *Engine) fragment(ctx context.Context, W *Workspace, M string) error {
	J := E.Job
	jobM := fmt.Sprintf("%s_%s", J.Name, M)
	defer func() {
		if err := copyIfExists(filepath.Join(W.Work, jobM+".out"), filepath.Join(W.Results, jobM+".out")); err != nil {
			E.log.Warn().Err(err).Str("part", M).Msg("can't copy output")
		}
	}()
	if err := E.Handle.Run(ctx, M); err != nil {
		return err
	}
	if J.RunType == clt.Psi4SAPTDFT {
		return nil
	}
	O, err := E.Handle.Orbitals(ctx, M)
	if err != nil {
		return err
	}
	canon := CanonicalName(J.Name, M)
	if err := O.WriteFile(filepath.Join(W.CamCASP, canon)); err != nil {
		return workspaceError(canon, err)
	}
	kept := filepath.Join(J.Dir, canon)
	if err := O.WriteFile(kept); err != nil {
		return workspaceError(kept, err)
	}
	if err := WriteSentinel(kept, E.RunID); err != nil {
		return err
	}
	E.log.Debug().Str("part", M).Int("nbf", O.NBF()).Int("nmo", O.NMO()).Str("file", canon).Msg("orbitals stored")
	if E.PlotLevels {
		plot := filepath.Join(W.Results, fmt.Sprintf("%s-%s-levels.png", J.Name, M))
		if err := movecs.LevelPlot(O, J.Name+" "+M, plot, E.MaxPlotEnergy); err != nil {
			E.log.Warn().Err(err).Str("part", M).Msg("can't plot orbital levels")
		}
	}
	return nil
}

//CheckOrbitals fails with a precondition error unless dir has the canonical
//orbital files of every part that precedes C.
func CheckOrbitals(dir, job string, parts []string) error {
	for _, p := range parts {
		if p == clt.FragC {
			continue
		}
		name := CanonicalName(job, p)
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return &Error{kind: KindPrecondition, filename: name, message: "orbital file missing, can't run CamCASP"}
		}
	}
	return nil
}

func (E *Engine) aggregate(ctx context.Context, W *Workspace, parts []string) error {
	J := E.Job
	if err := W.Touch(); err != nil {
		return err
	}
	if err := CheckOrbitals(W.CamCASP, J.Name, parts); err != nil {
		E.report.add(clt.FragC, "failed", 0, err)
		return err
	}
	E.log.Info().Int("threads", J.CoresCamCASP).Msg("CamCASP starting")
	start := time.Now()
	err := E.Aggregator.Aggregate(ctx, J, W.CamCASP)
	d := time.Since(start)
	if err != nil {
		var se *scf.Error
		if !errors.As(err, &se) {
			err = scf.NewError(scf.KindBackend, clt.FragC, 0, err.Error())
		}
		E.metrics.observe(clt.FragC, "camcasp", "failed", d)
		E.report.add(clt.FragC, "failed", d, err)
		return err
	}
	E.metrics.observe(clt.FragC, "camcasp", "done", d)
	E.report.add(clt.FragC, "done", d, nil)
	E.log.Info().Dur("elapsed", d).Msg("CamCASP finished")
	return nil
}
