/*
 * errors.go, part of gocamcasp.
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
	"errors"
	"fmt"

	"github.com/rmera/gocamcasp/basis"
	"github.com/rmera/gocamcasp/clt"
	"github.com/rmera/gocamcasp/scf"
)

//Exit codes of a job.
const (
	ExitOK            = 0
	ExitBackend       = 1 //an SCF calculation failed
	ExitAggregation   = 2 //the CamCASP stage failed
	ExitConfiguration = 3 //the job can't be run as configured
	ExitPrecondition  = 4 //the CamCASP stage lacks orbital files
	ExitAborted       = 5 //the job directory exists and --ifexists said to abort
)

type Kind int

const (
	KindPrecondition Kind = iota + 1
	KindWorkspace
	KindAborted
	KindSetup
)

func (k Kind) String() string {
	switch k {
	case KindPrecondition:
		return "precondition error"
	case KindWorkspace:
		return "workspace error"
	case KindAborted:
		return "job aborted"
	case KindSetup:
		return "setup error"
	}
	return "unknown error"
}

//Error is the error type for the failures that belong to the engine
//itself, not to the cluster file or to the programs it runs.
type Error struct {
	kind     Kind
	message  string
	filename string
	deco     []string
}

var (
	ErrPrecondition = &Error{kind: KindPrecondition}
	ErrWorkspace    = &Error{kind: KindWorkspace}
	ErrAborted      = &Error{kind: KindAborted}
	ErrSetup        = &Error{kind: KindSetup}
)

func (err *Error) Error() string {
	if err.filename != "" {
		return fmt.Sprintf("%s: %s: %s", err.kind, err.filename, err.message)
	}
	return fmt.Sprintf("%s: %s", err.kind, err.message)
}

func (err *Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

func (err *Error) FileName() string { return err.filename }

func (err *Error) Critical() bool { return true }

func (err *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.kind == err.kind
}

func workspaceError(filename string, err error) *Error {
	return &Error{kind: KindWorkspace, filename: filename, message: err.Error()}
}

//ExitCode maps an error returned by this package, or by the packages it
//drives, to the exit code of the job.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var se *scf.Error
	switch {
	case errors.Is(err, ErrPrecondition):
		return ExitPrecondition
	case errors.Is(err, ErrAborted):
		return ExitAborted
	case errors.As(err, &se) && se.Kind() == scf.KindBackend:
		if se.Fragment() == clt.FragC {
			return ExitAggregation
		}
		return ExitBackend
	case errors.Is(err, scf.ErrConfiguration), errors.Is(err, ErrWorkspace):
		return ExitConfiguration
	case errors.As(err, new(*clt.Error)), errors.As(err, new(*basis.Error)):
		return ExitConfiguration
	}
	return ExitBackend
}
