/*
 * workspace.go, part of gocamcasp.
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
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rmera/gocamcasp/scf"
	"github.com/rs/zerolog/log"
)

//NewDir creates the directory d. If d exists already, it is first renamed
//as d_001, or the first name in the series after the highest one that
//exists. It returns the new name of the old directory, if any.
//Two processes renaming the same directory at once can collide.
func NewDir(d string) (string, error) {
	d = strings.TrimRight(d, "/")
	renamed := ""
	if _, err := os.Stat(d); err == nil {
		renamed, err = nextName(d)
		if err != nil {
			return "", err
		}
		if err := os.Rename(d, renamed); err != nil {
			return "", workspaceError(d, err)
		}
		log.Info().Str("dir", d).Str("renamed", renamed).Msg("existing directory renamed")
	}
	if err := os.MkdirAll(d, 0755); err != nil {
		return "", workspaceError(d, err)
	}
	return renamed, nil
}

var reNumbered = regexp.MustCompile(`_(\d{3})$`)

func nextName(d string) (string, error) {
	matches, err := filepath.Glob(d + "_[0-9][0-9][0-9]")
	if err != nil {
		return "", workspaceError(d, err)
	}
	if len(matches) == 0 {
		return d + "_001", nil
	}
	sort.Strings(matches)
	m := reNumbered.FindStringSubmatch(matches[len(matches)-1])
	n, _ := strconv.Atoi(m[1])
	return fmt.Sprintf("%s_%03d", d, n+1), nil
}

//Files with these suffixes are never copied to the scratch directory.
var stripSuffixes = []string{".prss", ".ornt", ".DALtemplate", ".bash", ".clt", ".cltout", ".sh", "~"}

func stripped(name string) bool {
	for _, s := range stripSuffixes {
		if strings.HasSuffix(name, s) && len(name) > len(s) {
			return true
		}
	}
	return false
}

//Workspace is the set of directories used by one run of a job.
type Workspace struct {
	Main    string //job directory, persists between runs
	Work    string //scratch directory, new for every run
	CamCASP string //subdirectory of Work where the CamCASP program runs
	Results string
}

//Stage creates a fresh scratch directory, named after nominal or, if that
//exists, nominal_01, nominal_02... and copies to it the regular files of the
//main directory. The camcasp subdirectory gets links to all of them.
func Stage(main, nominal, results string) (*Workspace, error) {
	if err := os.MkdirAll(filepath.Dir(nominal), 0755); err != nil {
		return nil, workspaceError(nominal, err)
	}
	work := nominal
	for i := 1; ; i++ {
		err := os.Mkdir(work, 0755)
		if err == nil {
			break
		}
		//Existing directories may belong to a running job.
		if !os.IsExist(err) {
			return nil, workspaceError(work, err)
		}
		work = fmt.Sprintf("%s_%02d", nominal, i)
	}
	W := &Workspace{Main: main, Work: work, CamCASP: filepath.Join(work, "camcasp"), Results: results}
	entries, err := os.ReadDir(main)
	if err != nil {
		return W, workspaceError(main, err)
	}
	for _, e := range entries {
		src := filepath.Join(main, e.Name())
		st, err := os.Stat(src) //follows links
		if err != nil || !st.Mode().IsRegular() || stripped(e.Name()) {
			continue
		}
		if err := scf.CopyFile(src, filepath.Join(work, e.Name())); err != nil {
			return W, workspaceError(src, err)
		}
	}
	if err := os.Mkdir(W.CamCASP, 0755); err != nil {
		return W, workspaceError(W.CamCASP, err)
	}
	entries, err = os.ReadDir(work)
	if err != nil {
		return W, workspaceError(work, err)
	}
	for _, e := range entries {
		if e.Name() == "camcasp" {
			continue
		}
		if err := os.Symlink(filepath.Join("..", e.Name()), filepath.Join(W.CamCASP, e.Name())); err != nil {
			return W, workspaceError(e.Name(), err)
		}
	}
	return W, nil
}

func (W *Workspace) started() string { return filepath.Join(W.CamCASP, "started") }

//Touch marks the start of the CamCASP stage. Collect copies the files
//modified after it to the results directory.
func (W *Workspace) Touch() error {
	f, err := os.Create(W.started())
	if err != nil {
		return workspaceError(W.started(), err)
	}
	return f.Close()
}

//Collect copies the output of the CamCASP stage to the results directory:
//the input <job>.cks, data-summary.data as <job>-data-summary.data, and every
//file written since Touch. TMP* files are removed first.
func (W *Workspace) Collect(job string) error {
	cks := filepath.Join(W.CamCASP, job+".cks")
	if err := copyIfExists(cks, filepath.Join(W.Results, job+".cks")); err != nil {
		return workspaceError(cks, err)
	}
	summary := filepath.Join(W.CamCASP, "data-summary.data")
	if err := copyIfExists(summary, filepath.Join(W.Results, job+"-data-summary.data")); err != nil {
		return workspaceError(summary, err)
	}
	err := filepath.WalkDir(W.CamCASP, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasPrefix(d.Name(), "TMP") {
			return os.Remove(path)
		}
		return nil
	})
	if err != nil {
		return workspaceError(W.CamCASP, err)
	}
	st, err := os.Stat(W.started())
	if err != nil {
		return nil
	}
	err = filepath.WalkDir(W.CamCASP, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		//Same-tick writes count as newer, the clock may be coarse.
		if d.Name() != "started" && !info.ModTime().Before(st.ModTime()) {
			return scf.CopyFile(path, filepath.Join(W.Results, d.Name()))
		}
		return nil
	})
	if err != nil {
		return workspaceError(W.CamCASP, err)
	}
	return nil
}

//Remove deletes the scratch directory.
func (W *Workspace) Remove() error {
	if err := os.RemoveAll(W.Work); err != nil {
		return workspaceError(W.Work, err)
	}
	return nil
}

func copyIfExists(src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		return nil
	}
	return scf.CopyFile(src, dst)
}
