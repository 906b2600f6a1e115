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

package basis

import "fmt"

//Kind classifies the errors of this package.
type Kind int

const (
	KindLookup      Kind = iota + 1 //a basis or template file that can't be read
	KindConsistency                 //a basis type that can't be used for the run type
)

//Error is the error type of the basis compiler. They are all critical.
type Error struct {
	kind     Kind
	message  string
	filename string
	deco     []string
}

//Sentinels for errors.Is
var (
	ErrLookup      = &Error{kind: KindLookup}
	ErrConsistency = &Error{kind: KindConsistency}
)

func (err *Error) Error() string {
	if err.filename == "" {
		return fmt.Sprintf("basis: %s", err.message)
	}
	return fmt.Sprintf("basis: %s: %s", err.filename, err.message)
}

//Decorate adds the name of a caller to the error and returns the trail so far.
func (err *Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

func (err *Error) Critical() bool { return true }

func (err *Error) Kind() Kind { return err.kind }

//FileName returns the file that caused the error, if any.
func (err *Error) FileName() string { return err.filename }

func (err *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.kind == err.kind
}
