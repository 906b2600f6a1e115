/*
 * workspace_test.go, part of gocamcasp.
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
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rmera/gocamcasp/basis"
	"github.com/rmera/gocamcasp/clt"
	"github.com/rmera/gocamcasp/scf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDir(Te *testing.T) {
	d := filepath.Join(Te.TempDir(), "job")
	renamed, err := NewDir(d)
	require.NoError(Te, err)
	assert.Equal(Te, "", renamed)
	require.NoError(Te, os.WriteFile(filepath.Join(d, "first"), nil, 0644))

	renamed, err = NewDir(d + "/")
	require.NoError(Te, err)
	assert.Equal(Te, d+"_001", renamed)
	assert.True(Te, exists(filepath.Join(d+"_001", "first")))
	assert.False(Te, exists(filepath.Join(d, "first")))

	require.NoError(Te, os.Mkdir(d+"_007", 0755))
	renamed, err = NewDir(d)
	require.NoError(Te, err)
	assert.Equal(Te, d+"_008", renamed)
}

func names(Te *testing.T, dir string) []string {
	entries, err := os.ReadDir(dir)
	require.NoError(Te, err)
	var ret []string
	for _, e := range entries {
		ret = append(ret, e.Name())
	}
	sort.Strings(ret)
	return ret
}

func TestStage(Te *testing.T) {
	root := Te.TempDir()
	main := filepath.Join(root, "wat2")
	require.NoError(Te, os.MkdirAll(filepath.Join(main, "OUT"), 0755))
	for _, name := range []string{"wat2.cks", "wat2_A.in", "wat2.clt", "wat2.DALtemplate", "run.sh", "notes~", "wat2.ornt"} {
		require.NoError(Te, os.WriteFile(filepath.Join(main, name), []byte(name), 0644))
	}
	nominal := filepath.Join(root, "scratch", "wat2")
	require.NoError(Te, os.MkdirAll(nominal, 0755))
	require.NoError(Te, os.MkdirAll(nominal+"_01", 0755))

	W, err := Stage(main, nominal, filepath.Join(main, "OUT"))
	require.NoError(Te, err)
	assert.Equal(Te, nominal+"_02", W.Work)
	assert.Equal(Te, []string{"camcasp", "wat2.cks", "wat2_A.in"}, names(Te, W.Work))
	assert.Equal(Te, []string{"wat2.cks", "wat2_A.in"}, names(Te, W.CamCASP))
	target, err := os.Readlink(filepath.Join(W.CamCASP, "wat2.cks"))
	require.NoError(Te, err)
	assert.Equal(Te, filepath.Join("..", "wat2.cks"), target)
	b, err := os.ReadFile(filepath.Join(W.CamCASP, "wat2.cks"))
	require.NoError(Te, err)
	assert.Equal(Te, "wat2.cks", string(b))
}

func TestCollect(Te *testing.T) {
	root := Te.TempDir()
	main := filepath.Join(root, "wat2")
	results := filepath.Join(main, "OUT")
	require.NoError(Te, os.MkdirAll(results, 0755))
	require.NoError(Te, os.WriteFile(filepath.Join(main, "wat2.cks"), []byte("cks"), 0644))
	W, err := Stage(main, filepath.Join(root, "scratch", "wat2"), results)
	require.NoError(Te, err)
	old := filepath.Join(W.CamCASP, "old.dat")
	require.NoError(Te, os.WriteFile(old, nil, 0644))
	past := time.Now().Add(-time.Hour)
	require.NoError(Te, os.Chtimes(old, past, past))
	require.NoError(Te, W.Touch())
	require.NoError(Te, os.MkdirAll(filepath.Join(W.CamCASP, "sub"), 0755))
	require.NoError(Te, os.WriteFile(filepath.Join(W.CamCASP, "sub", "new.dat"), nil, 0644))
	require.NoError(Te, os.WriteFile(filepath.Join(W.CamCASP, "TMP_stuff"), nil, 0644))
	require.NoError(Te, os.WriteFile(filepath.Join(W.CamCASP, "data-summary.data"), []byte("x"), 0644))

	require.NoError(Te, W.Collect("wat2"))
	assert.Equal(Te, []string{"data-summary.data", "new.dat", "wat2-data-summary.data", "wat2.cks"}, names(Te, results))
	assert.False(Te, exists(filepath.Join(W.CamCASP, "TMP_stuff")))
	require.NoError(Te, W.Remove())
	assert.False(Te, exists(W.Work))
}

func setupJob(Te *testing.T, backend clt.Backend) *clt.Job {
	cwd := Te.TempDir()
	J := clt.NewJob("wat2")
	J.RunType = clt.SAPTDFT
	J.Backend = backend
	J.BasisType = clt.MC
	J.Dir = filepath.Join(cwd, "wat2")
	J.SpecFile = filepath.Join(cwd, "wat2.clt")
	require.NoError(Te, os.WriteFile(J.SpecFile, []byte("MOLECULES A AND B\n"), 0644))
	imp := filepath.Join(cwd, "extra.bas")
	require.NoError(Te, os.WriteFile(imp, []byte("basis"), 0644))
	J.Imports = []string{imp}
	return J
}

//clusterRunner stands in for the cluster program, writing the files it
//would write.
type clusterRunner struct {
	cmds  []scf.Command
	files map[string]string
	rc    int
}

func (R *clusterRunner) Run(ctx context.Context, c scf.Command) (int, error) {
	R.cmds = append(R.cmds, c)
	for name, content := range R.files {
		if err := os.WriteFile(filepath.Join(c.Dir, name), []byte(content), 0644); err != nil {
			return -1, err
		}
	}
	return R.rc, nil
}

func TestPrepare(Te *testing.T) {
	J := setupJob(Te, clt.Psi4)
	require.NoError(Te, os.MkdirAll(J.Dir, 0755))
	require.NoError(Te, os.WriteFile(filepath.Join(J.Dir, "old"), nil, 0644))
	R := &clusterRunner{files: map[string]string{"wat2.cks": "cks"}}
	H := &fakeHandle{}
	err := Prepare(context.Background(), J, H, SetupOptions{IfExists: IfExistsSave, Runner: R})
	require.NoError(Te, err)
	assert.True(Te, filepath.IsAbs(J.Dir))
	assert.True(Te, exists(filepath.Join(J.Dir+"_001", "old")))
	assert.Equal(Te, []string{"extra.bas", "wat2.cks", "wat2.clt", "wat2.clt.clout", "wat2_A.in", "wat2_B.in"}, names(Te, J.Dir))
	require.Len(Te, R.cmds, 1)
	assert.Equal(Te, "cluster", R.cmds[0].Name)
	assert.Equal(Te, []string{"--scfcode", "psi4", "--job", "wat2"}, R.cmds[0].Args)
	sort.Strings(H.inputs)
	assert.Equal(Te, []string{"A", "B"}, H.inputs)
}

func TestPrepareIfExists(Te *testing.T) {
	J := setupJob(Te, clt.Psi4)
	require.NoError(Te, os.MkdirAll(J.Dir, 0755))
	R := &clusterRunner{}
	err := Prepare(context.Background(), J, &fakeHandle{}, SetupOptions{IfExists: IfExistsAbort, Runner: R})
	assert.True(Te, errors.Is(err, ErrAborted))
	assert.Equal(Te, ExitAborted, ExitCode(err))
	assert.Empty(Te, R.cmds)

	var prompts strings.Builder
	err = Prepare(context.Background(), J, &fakeHandle{}, SetupOptions{Answers: strings.NewReader("d\n"), Prompts: &prompts, Runner: R})
	require.NoError(Te, err)
	assert.Contains(Te, prompts.String(), "[dSa]")
	assert.False(Te, exists(J.Dir+"_001"))

	R.rc = 2
	J.Dir = filepath.Join(filepath.Dir(J.Dir), "other")
	err = Prepare(context.Background(), J, &fakeHandle{}, SetupOptions{Runner: R})
	assert.True(Te, errors.Is(err, ErrSetup))
	assert.Equal(Te, ExitBackend, ExitCode(err))
}

func TestPrepareDalton(Te *testing.T) {
	J := setupJob(Te, clt.Dalton)
	J.RunType = clt.Properties
	J.MolA = J.Molecules.Declare("water")
	camcasp := Te.TempDir()
	lib := filepath.Join(camcasp, "basis", "dalton")
	require.NoError(Te, os.MkdirAll(lib, 0755))
	require.NoError(Te, os.WriteFile(filepath.Join(lib, "O.bas"), []byte("O-basis\n"), 0644))
	template := "BASIS\nwater\nAtomtypes= 1 + 0 Charge= 0 + 0 Angstrom\n#molecule A\nCharge=8.0 Atoms=1 Blocks=1 1\nO 0.0 0.0 0.0\n#include O.bas\n"
	R := &clusterRunner{files: map[string]string{"wat2.DALtemplate": template}}
	H := scf.NewDaltonHandle(clt.Dalton, scf.Env{})
	err := Prepare(context.Background(), J, H, SetupOptions{Runner: R, Library: basis.NewDirLibrary(camcasp)})
	require.NoError(Te, err)
	mol, err := os.ReadFile(filepath.Join(J.Dir, "wat2_A.mol"))
	require.NoError(Te, err)
	assert.Contains(Te, string(mol), "O-basis")
	assert.True(Te, exists(filepath.Join(J.Dir, "wat2_A.dal")))
	assert.False(Te, exists(filepath.Join(J.Dir, "wat2_C.dal")))

	J.Restart = true
	require.NoError(Te, os.MkdirAll(filepath.Join(J.Dir, "OUT"), 0755))
	err = Prepare(context.Background(), J, H, SetupOptions{IfExists: IfExistsNew, Runner: R})
	require.NoError(Te, err)
	assert.True(Te, exists(filepath.Join(J.Dir, "OUT_001")))
	assert.True(Te, exists(filepath.Join(J.Dir, "OUT")))

	J.Dir = filepath.Join(J.Dir, "missing")
	err = Prepare(context.Background(), J, H, SetupOptions{Runner: R})
	assert.True(Te, errors.Is(err, ErrSetup))
}
