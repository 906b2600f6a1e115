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

package clt

import (
	"errors"
	"fmt"
	"strings"
)

//Kind classifies the errors produced while reading a cluster file.
type Kind int

const (
	KindLookup        Kind = iota + 1 //a molecule that was never declared
	KindSyntax                        //a malformed directive
	KindConsistency                   //directives that contradict each other
	KindConfiguration                 //an unusable SCF code
)

func (k Kind) String() string {
	switch k {
	case KindLookup:
		return "lookup error"
	case KindSyntax:
		return "syntax error"
	case KindConsistency:
		return "consistency error"
	case KindConfiguration:
		return "configuration error"
	}
	return "unknown error"
}

//Error is the error type returned by this package. All of them are critical:
//a cluster file with errors is never partially used.
type Error struct {
	kind    Kind
	message string
	line    string //the offending line or name, if any.
	deco    []string
}

//Sentinels for errors.Is
var (
	ErrLookup        = &Error{kind: KindLookup}
	ErrSyntax        = &Error{kind: KindSyntax}
	ErrConsistency   = &Error{kind: KindConsistency}
	ErrConfiguration = &Error{kind: KindConfiguration}
)

func newError(kind Kind, line, message string, deco ...string) *Error {
	return &Error{kind: kind, message: message, line: strings.TrimSpace(line), deco: deco}
}

func (err *Error) Error() string {
	if err.line == "" {
		return fmt.Sprintf("cluster file %s: %s", err.kind, err.message)
	}
	return fmt.Sprintf("cluster file %s: %s (%q)", err.kind, err.message, err.line)
}

//Decorate adds the name of a caller to the error and returns the trail so far.
//an empty string just returns the current trail.
func (err *Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//Critical is always true for cluster file errors.
func (err *Error) Critical() bool { return true }

//Kind returns the class of the error
func (err *Error) Kind() Kind { return err.kind }

//Is allows comparisons against the package sentinels.
func (err *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.kind == err.kind
}

//IsSpecification reports whether err is a problem with the specification itself
//(bad syntax or inconsistent directives), as opposed to a missing name or
//an unusable SCF code.
func IsSpecification(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.kind == KindSyntax || e.kind == KindConsistency
}
