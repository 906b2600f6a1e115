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

package movecs

import "fmt"

//Error is returned when an orbital file can't be read or written.
type Error struct {
	message  string
	filename string
	deco     []string
}

//ErrFormat matches, through errors.Is, every error from this package.
var ErrFormat = &Error{}

func (err *Error) Error() string {
	if err.filename == "" {
		return fmt.Sprintf("movecs: %s", err.message)
	}
	return fmt.Sprintf("movecs: %s: %s", err.filename, err.message)
}

//Decorate adds the name of a caller to the error and returns the trail so far.
func (err *Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//Critical is always true, an incomplete orbital file can't be used.
func (err *Error) Critical() bool { return true }

//FileName returns the file that caused the error, if known.
func (err *Error) FileName() string { return err.filename }

func (err *Error) Is(target error) bool {
	_, ok := target.(*Error)
	return ok
}

func newError(filename, format string, args ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, args...), filename: filename}
}

//decorate adds the caller to err if it is one of ours, and sets the file name if missing.
func decorate(err error, filename, deco string) error {
	if e, ok := err.(*Error); ok {
		e.Decorate(deco)
		if e.filename == "" {
			e.filename = filename
		}
	}
	return err
}
