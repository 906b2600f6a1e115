/*
 * engine_test.go, part of gocamcasp.
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
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rmera/gocamcasp/clt"
	"github.com/rmera/gocamcasp/movecs"
	"github.com/rmera/gocamcasp/scf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//fakeHandle pretends to be an SCF program. Runs for the parts in fail
//return a backend error with exit code 9.
type fakeHandle struct {
	mu       sync.Mutex
	name     string
	dir      string
	runs     []string
	inputs   []string
	fail     map[string]bool
	checkErr error
}

func (F *fakeHandle) SetName(name string) { F.name = name }
func (F *fakeHandle) SetDir(dir string)   { F.dir = dir }
func (F *fakeHandle) SetnCPU(int)         {}
func (F *fakeHandle) SetMemory(int)       {}
func (F *fakeHandle) Check() error        { return F.checkErr }

func (F *fakeHandle) BuildInput(J *clt.Job, frag string) error {
	F.mu.Lock()
	defer F.mu.Unlock()
	F.inputs = append(F.inputs, frag)
	return os.WriteFile(filepath.Join(F.dir, J.Name+"_"+frag+".in"), []byte(frag), 0644)
}

func (F *fakeHandle) Run(ctx context.Context, frag string) error {
	F.runs = append(F.runs, frag)
	out := filepath.Join(F.dir, F.name+"_"+frag+".out")
	if err := os.WriteFile(out, []byte("SCF output for "+frag+"\n"), 0644); err != nil {
		return err
	}
	if F.fail[frag] {
		return scf.NewError(scf.KindBackend, frag, 9, "fake failure")
	}
	return nil
}

func (F *fakeHandle) Orbitals(ctx context.Context, frag string) (*movecs.Orbitals, error) {
	O, err := movecs.New("Fake", []float64{-0.6, -0.2, 0.4}, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
	if err != nil {
		return nil, err
	}
	O.Title = F.name + " " + frag
	return O, nil
}

type fakeAggregator struct {
	calls int
	err   error
}

func (A *fakeAggregator) Aggregate(ctx context.Context, J *clt.Job, dir string) error {
	A.calls++
	if err := os.WriteFile(filepath.Join(dir, J.Name+".out"), []byte("CamCASP output\n"), 0644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "data-summary.data"), []byte("E1 -1.0\n"), 0644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "TMP_Memory_usage.dat"), nil, 0644); err != nil {
		return err
	}
	return A.err
}

//newJob returns a job whose directory exists and has a .cks file.
func newJob(Te *testing.T, rt clt.RunType) *clt.Job {
	root := Te.TempDir()
	J := clt.NewJob("wat2")
	J.RunType = rt
	J.Backend = clt.Psi4
	J.Dir = filepath.Join(root, "wat2")
	J.Work = filepath.Join(root, "scratch", "wat2")
	J.Cores = 2
	J.CoresCamCASP = 2
	J.MemoryGB = 1
	require.NoError(Te, os.MkdirAll(J.Dir, 0755))
	require.NoError(Te, os.WriteFile(filepath.Join(J.Dir, "wat2.cks"), []byte("ENTER SAPT\nFINISH\n"), 0644))
	require.NoError(Te, os.WriteFile(filepath.Join(J.Dir, "wat2.clt"), []byte("MOLECULE A\n"), 0644))
	return J
}

func newEngine(J *clt.Job, H scf.Handle, A scf.Aggregator) (*Engine, *bytes.Buffer) {
	E := New(J, H, A)
	var stderr bytes.Buffer
	E.Stderr = &stderr
	return E, &stderr
}

func exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

func TestExecuteSAPTDFT(Te *testing.T) {
	J := newJob(Te, clt.SAPTDFT)
	H := &fakeHandle{}
	A := &fakeAggregator{}
	E, stderr := newEngine(J, H, A)
	code, err := E.Execute(context.Background())
	require.NoError(Te, err)
	assert.Equal(Te, ExitOK, code)
	assert.Equal(Te, []string{"A", "B"}, H.runs)
	assert.Equal(Te, 1, A.calls)

	for _, M := range []string{"A", "B"} {
		canon := filepath.Join(J.Dir, CanonicalName("wat2", M))
		assert.True(Te, Completed(canon), M)
		assert.True(Te, exists(sentinelName(canon)), M)
		assert.True(Te, exists(filepath.Join(J.Dir, "OUT", "wat2_"+M+".out")), M)
	}
	out := filepath.Join(J.Dir, "OUT")
	for _, name := range []string{"wat2.cks", "wat2-data-summary.data", "wat2.out", "wat2.log", "wat2.prom", "wat2.job.yaml"} {
		assert.True(Te, exists(filepath.Join(out, name)), name)
	}
	assert.False(Te, exists(filepath.Join(out, "TMP_Memory_usage.dat")))
	assert.False(Te, exists(J.Work), "work directory should be removed")

	R, err := ReadReport(filepath.Join(out, "wat2.job.yaml"))
	require.NoError(Te, err)
	assert.Equal(Te, E.RunID, R.RunID)
	require.Len(Te, R.Fragments, 3)
	assert.Equal(Te, "done", R.Fragments[2].Status)

	prom, err := os.ReadFile(filepath.Join(out, "wat2.prom"))
	require.NoError(Te, err)
	assert.Contains(Te, string(prom), `camcasp_fragments_total{backend="psi4",fragment="A",status="done"} 1`)
	assert.Contains(Te, stderr.String(), "job finished")
}

func TestResume(Te *testing.T) {
	J := newJob(Te, clt.SAPTDFT)
	A := &fakeAggregator{}
	E, _ := newEngine(J, &fakeHandle{}, A)
	code, err := E.Execute(context.Background())
	require.NoError(Te, err)
	require.Equal(Te, ExitOK, code)

	H := &fakeHandle{}
	E, _ = newEngine(J, H, A)
	code, err = E.Execute(context.Background())
	require.NoError(Te, err)
	assert.Equal(Te, ExitOK, code)
	assert.Empty(Te, H.runs)
	assert.Equal(Te, 2, A.calls)
	prom, err := os.ReadFile(filepath.Join(J.Dir, "OUT", "wat2.prom"))
	require.NoError(Te, err)
	assert.Contains(Te, string(prom), "camcasp_skipped_total 2")
}

func TestTruncatedOrbitalsRecomputed(Te *testing.T) {
	J := newJob(Te, clt.Properties)
	canon := filepath.Join(J.Dir, CanonicalName("wat2", "A"))
	require.NoError(Te, os.WriteFile(canon, []byte("Source \nTitle wat2 A\nCode Fake\nBFNS 3\nNMOS 3\nEnergies 3\n"), 0644))
	H := &fakeHandle{}
	E, _ := newEngine(J, H, &fakeAggregator{})
	code, err := E.Execute(context.Background())
	require.NoError(Te, err)
	assert.Equal(Te, ExitOK, code)
	assert.Equal(Te, []string{"A"}, H.runs)
	_, err = movecs.ReadFile(canon)
	assert.NoError(Te, err)
}

func TestDeltaHFFailure(Te *testing.T) {
	J := newJob(Te, clt.DeltaHF)
	H := &fakeHandle{fail: map[string]bool{"AB": true}}
	A := &fakeAggregator{}
	E, _ := newEngine(J, H, A)
	code, err := E.Execute(context.Background())
	require.Error(Te, err)
	assert.Equal(Te, ExitBackend, code)
	assert.Equal(Te, []string{"A", "B", "AB"}, H.runs)
	assert.Zero(Te, A.calls)
	var se *scf.Error
	require.True(Te, errors.As(err, &se))
	assert.Equal(Te, "AB", se.Fragment())
	assert.Equal(Te, 9, se.Code())
	assert.True(Te, exists(J.Work), "work directory should be kept after a failure")
	assert.True(Te, exists(filepath.Join(J.Dir, "OUT", "wat2_AB.out")))
	assert.False(Te, exists(filepath.Join(J.Dir, CanonicalName("wat2", "AB"))))
}

func TestAggregationFailure(Te *testing.T) {
	J := newJob(Te, clt.Properties)
	A := &fakeAggregator{err: errors.New("exit status 3")}
	E, _ := newEngine(J, &fakeHandle{}, A)
	code, err := E.Execute(context.Background())
	require.Error(Te, err)
	assert.Equal(Te, ExitAggregation, code)
	assert.True(Te, exists(J.Work))
	//What CamCASP managed to write is still collected.
	assert.True(Te, exists(filepath.Join(J.Dir, "OUT", "wat2-data-summary.data")))
}

func TestConfigurationFailure(Te *testing.T) {
	J := newJob(Te, clt.SAPT)
	H := &fakeHandle{checkErr: scf.NewError(scf.KindConfiguration, "", 0, "PSI4_HOME is not set")}
	A := &fakeAggregator{}
	E, _ := newEngine(J, H, A)
	code, err := E.Execute(context.Background())
	assert.True(Te, errors.Is(err, scf.ErrConfiguration))
	assert.Equal(Te, ExitConfiguration, code)
	assert.Empty(Te, H.runs)
	assert.Zero(Te, A.calls)

	J.RunType = clt.Supermol
	code, _ = E.Execute(context.Background())
	assert.Equal(Te, ExitConfiguration, code)
}

func TestPsi4SAPTDFT(Te *testing.T) {
	J := newJob(Te, clt.Psi4SAPTDFT)
	H := &fakeHandle{}
	A := &fakeAggregator{}
	E, _ := newEngine(J, H, A)
	code, err := E.Execute(context.Background())
	require.NoError(Te, err)
	assert.Equal(Te, ExitOK, code)
	assert.Equal(Te, []string{"AB"}, H.runs)
	assert.Zero(Te, A.calls)
	assert.True(Te, exists(filepath.Join(J.Dir, "OUT", "wat2_AB.out")))
	assert.False(Te, exists(filepath.Join(J.Dir, CanonicalName("wat2", "AB"))))
	assert.False(Te, exists(J.Work))
}

func TestCheckOrbitals(Te *testing.T) {
	dir := Te.TempDir()
	parts := []string{"A", "B", "C"}
	require.NoError(Te, os.WriteFile(filepath.Join(dir, CanonicalName("wat2", "A")), nil, 0644))
	err := CheckOrbitals(dir, "wat2", parts)
	assert.True(Te, errors.Is(err, ErrPrecondition))
	assert.Equal(Te, ExitPrecondition, ExitCode(err))
	assert.True(Te, strings.Contains(err.Error(), "wat2-B-asc.movecs"))
	require.NoError(Te, os.WriteFile(filepath.Join(dir, CanonicalName("wat2", "B")), nil, 0644))
	assert.NoError(Te, CheckOrbitals(dir, "wat2", parts))
}

func TestPlotLevels(Te *testing.T) {
	J := newJob(Te, clt.Properties)
	E, _ := newEngine(J, &fakeHandle{}, &fakeAggregator{})
	E.PlotLevels = true
	code, err := E.Execute(context.Background())
	require.NoError(Te, err)
	assert.Equal(Te, ExitOK, code)
	assert.True(Te, exists(filepath.Join(J.Dir, "OUT", "wat2-A-levels.png")))
}

func TestExitCode(Te *testing.T) {
	assert.Equal(Te, ExitOK, ExitCode(nil))
	assert.Equal(Te, ExitBackend, ExitCode(scf.NewError(scf.KindBackend, "A", 1, "x")))
	assert.Equal(Te, ExitAggregation, ExitCode(scf.NewError(scf.KindBackend, "C", 1, "x")))
	assert.Equal(Te, ExitConfiguration, ExitCode(scf.NewError(scf.KindConfiguration, "", 0, "x")))
	assert.Equal(Te, ExitAborted, ExitCode(&Error{kind: KindAborted}))
	_, err := clt.Parse(strings.NewReader("! nothing\n"), "x", clt.Options{})
	require.Error(Te, err)
	assert.Equal(Te, ExitConfiguration, ExitCode(err))
}
