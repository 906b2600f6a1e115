/*
 * setup.go, part of gocamcasp.
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

package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rmera/gocamcasp/basis"
	"github.com/rmera/gocamcasp/clt"
	"github.com/rmera/gocamcasp/scf"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

//What to do with an existing job directory (or, for a restart, with an
//existing results directory).
const (
	IfExistsAsk    = "ask"
	IfExistsDelete = "delete"
	IfExistsNew    = "new"
	IfExistsKeep   = "keep"
	IfExistsSave   = "save"
	IfExistsAbort  = "abort"
)

var IfExistsChoices = []string{IfExistsAsk, IfExistsDelete, IfExistsNew, IfExistsKeep, IfExistsSave, IfExistsAbort}

//SetupOptions control the preparation of a job directory.
type SetupOptions struct {
	IfExists string
	//Answers and Prompts are used when IfExists is "ask".
	Answers io.Reader
	Prompts io.Writer
	Runner  scf.Runner
	Cluster string        //the cluster program. "cluster" if empty
	Library basis.Library //Dalton basis sets
}

//Prepare sets up the directory for the job. For a new job the directory is
//created, the imported files and the cluster file are copied to it, the
//cluster program is run there, and the remaining input files are
//generated. For a restart the directory must exist, and only the results
//directory is dealt with.
func Prepare(ctx context.Context, J *clt.Job, H scf.Handle, O SetupOptions) error {
	if O.Runner == nil {
		O.Runner = scf.ExecRunner{}
	}
	if O.Cluster == "" {
		O.Cluster = "cluster"
	}
	d := strings.TrimRight(J.Dir, "/")
	if J.Restart {
		return prepareRestart(J, d, O)
	}
	if _, err := os.Stat(d); err == nil {
		action := O.IfExists
		if action == "" || action == IfExistsAsk {
			action = ask(d, O)
		}
		switch action {
		case IfExistsDelete:
			if err := os.RemoveAll(d); err != nil {
				return workspaceError(d, err)
			}
			log.Info().Str("dir", d).Msg("existing directory deleted")
		case IfExistsAbort:
			return &Error{kind: KindAborted, filename: d, message: "directory exists"}
		}
	}
	if _, err := NewDir(d); err != nil {
		return err
	}
	for _, f := range J.Imports {
		if err := scf.CopyFile(f, filepath.Join(d, filepath.Base(f))); err != nil {
			return &Error{kind: KindSetup, filename: f, message: "can't import file: " + err.Error()}
		}
	}
	cltName := filepath.Base(J.SpecFile)
	if err := scf.CopyFile(J.SpecFile, filepath.Join(d, cltName)); err != nil {
		return &Error{kind: KindSetup, filename: J.SpecFile, message: err.Error()}
	}
	abs, err := filepath.Abs(d)
	if err != nil {
		return workspaceError(d, err)
	}
	J.Dir = abs
	if err := runCluster(ctx, J, cltName, O); err != nil {
		return err
	}
	return buildInputs(ctx, J, H, O)
}

//ask returns the action chosen by the user. Anything but d or a saves the
//old directory.
func ask(d string, O SetupOptions) string {
	if O.Answers == nil {
		return IfExistsSave
	}
	if O.Prompts != nil {
		fmt.Fprintf(O.Prompts, "Directory %s already exists.\nDelete it and its contents, Save it and make a new one, or Abort job? [dSa]: ", d)
	}
	s := bufio.NewScanner(O.Answers)
	if !s.Scan() {
		return IfExistsSave
	}
	switch strings.ToLower(strings.TrimSpace(s.Text())) {
	case "d":
		return IfExistsDelete
	case "a":
		return IfExistsAbort
	}
	return IfExistsSave
}

func prepareRestart(J *clt.Job, d string, O SetupOptions) error {
	st, err := os.Stat(d)
	if err != nil || !st.IsDir() {
		return &Error{kind: KindSetup, filename: d, message: "job directory not found, can't restart"}
	}
	abs, err := filepath.Abs(d)
	if err != nil {
		return workspaceError(d, err)
	}
	J.Dir = abs
	out := filepath.Join(abs, "OUT")
	if _, err := os.Stat(out); err != nil {
		return nil
	}
	switch O.IfExists {
	case IfExistsNew, IfExistsKeep, IfExistsSave:
		_, err = NewDir(out)
		return err
	case IfExistsDelete:
		if err := os.RemoveAll(out); err != nil {
			return workspaceError(out, err)
		}
		log.Info().Str("dir", out).Msg("existing OUT subdirectory deleted")
	case IfExistsAbort:
		return &Error{kind: KindAborted, filename: out, message: "subdirectory OUT exists"}
	}
	return nil
}

//runCluster runs the cluster program on the cluster file, which writes most
//of the input files for the job.
func runCluster(ctx context.Context, J *clt.Job, cltName string, O SetupOptions) error {
	in, err := os.Open(filepath.Join(J.Dir, cltName))
	if err != nil {
		return &Error{kind: KindSetup, filename: cltName, message: err.Error()}
	}
	defer in.Close()
	clout := filepath.Join(J.Dir, cltName+".clout")
	out, err := os.Create(clout)
	if err != nil {
		return workspaceError(clout, err)
	}
	defer out.Close()
	c := scf.Command{
		Name:   O.Cluster,
		Args:   []string{"--scfcode", string(J.Backend), "--job", J.Name},
		Dir:    J.Dir,
		Stdin:  in,
		Stdout: out,
		Stderr: out,
	}
	log.Info().Str("output", clout).Msg("running cluster")
	rc, err := O.Runner.Run(ctx, c)
	if err != nil {
		return &Error{kind: KindSetup, filename: O.Cluster, message: err.Error()}
	}
	if rc != 0 {
		return &Error{kind: KindSetup, filename: O.Cluster, message: fmt.Sprintf("error %d from cluster, see %s", rc, clout)}
	}
	return nil
}

//buildInputs generates the Dalton molecule files, if needed, and has the
//handle write its input for every fragment. The fragments are independent,
//so their inputs are written concurrently.
func buildInputs(ctx context.Context, J *clt.Job, H scf.Handle, O SetupOptions) error {
	parts, err := J.Fragments()
	if err != nil {
		return err
	}
	H.SetName(J.Name)
	H.SetDir(J.Dir)
	H.SetnCPU(J.Cores)
	H.SetMemory(J.MemoryMB())
	if J.Backend.IsDalton() {
		if O.Library == nil {
			return &Error{kind: KindSetup, message: "no basis set library for Dalton"}
		}
		set, err := basis.Generate(J, J.Dir, O.Library)
		if err != nil {
			return err
		}
		log.Debug().Strs("fragments", set.Fragments()).Msg("Dalton molecule files written")
	}
	g, _ := errgroup.WithContext(ctx)
	for _, M := range parts {
		if M == clt.FragC {
			continue
		}
		M := M
		g.Go(func() error {
			return H.BuildInput(J, M)
		})
	}
	return g.Wait()
}
