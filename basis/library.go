/*
 * library.go, part of gocamcasp.
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

import (
	"os"
	"path/filepath"
)

//Library provides the basis set blocks that #include lines refer to.
type Library interface {
	//Full returns the complete basis block called name.
	Full(name string) (string, error)
	//SP returns the block called name reduced to its s and p functions.
	SP(name string) (string, error)
}

//DirLibrary reads basis blocks from a directory. The reduced
//blocks live in the sp subdirectory.
type DirLibrary struct {
	Dir string
}

//NewDirLibrary returns the Dalton basis library of a CamCASP installation.
func NewDirLibrary(camcasp string) *DirLibrary {
	return &DirLibrary{Dir: filepath.Join(camcasp, "basis", "dalton")}
}

//Full returns the complete basis block in the file name.
func (L *DirLibrary) Full(name string) (string, error) {
	return L.read(filepath.Join(L.Dir, name))
}

//SP returns the s and p functions of the basis block in the file name.
func (L *DirLibrary) SP(name string) (string, error) {
	return L.read(filepath.Join(L.Dir, "sp", name))
}

func (L *DirLibrary) read(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", &Error{kind: KindLookup, message: "basis file not available", filename: path, deco: []string{"DirLibrary.read"}}
	}
	return string(b), nil
}
