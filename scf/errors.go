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

package scf

import "fmt"

//Kind classifies the errors of the SCF adapters.
type Kind int

const (
	KindConfiguration Kind = iota + 1 //the program can't be run as configured
	KindBackend                       //the program ran and failed
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration error"
	case KindBackend:
		return "backend error"
	}
	return "unknown error"
}

//Error is the error type of this package. It carries the fragment
//involved and, for failed runs, the exit code of the program.
type Error struct {
	kind     Kind
	message  string
	fragment string
	code     int
	deco     []string
}

//Sentinels for errors.Is
var (
	ErrConfiguration = &Error{kind: KindConfiguration}
	ErrBackend       = &Error{kind: KindBackend}
)

func (err *Error) Error() string {
	s := fmt.Sprintf("%s: %s", err.kind, err.message)
	if err.fragment != "" {
		s = fmt.Sprintf("part %s: %s", err.fragment, s)
	}
	if err.code != 0 {
		s = fmt.Sprintf("%s (rc = %d)", s, err.code)
	}
	return s
}

func (err *Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

func (err *Error) Critical() bool { return true }

func (err *Error) Kind() Kind { return err.kind }

//Fragment is the part of the job (A, B, AB or C) that failed.
func (err *Error) Fragment() string { return err.fragment }

//Code is the exit code of the failed program, if it ran.
func (err *Error) Code() int { return err.code }

func (err *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.kind == err.kind
}

func configError(frag, format string, args ...interface{}) *Error {
	return &Error{kind: KindConfiguration, fragment: frag, message: fmt.Sprintf(format, args...)}
}

func backendError(frag string, code int, format string, args ...interface{}) *Error {
	return &Error{kind: KindBackend, fragment: frag, code: code, message: fmt.Sprintf(format, args...)}
}

//NewError returns an error of the given kind for fragment frag, for
//Handle and Aggregator implementations outside this package.
func NewError(kind Kind, frag string, code int, message string) *Error {
	return &Error{kind: kind, fragment: frag, code: code, message: message}
}
