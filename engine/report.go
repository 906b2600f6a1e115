/*
 * report.go, part of gocamcasp.
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
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//FragmentReport is the outcome of one part of the job.
type FragmentReport struct {
	Name    string  `yaml:"name"`
	Status  string  `yaml:"status"` //done, skipped or failed
	Seconds float64 `yaml:"seconds,omitempty"`
	Error   string  `yaml:"error,omitempty"`
}

//Report summarizes a run of a job. It is written to OUT/<job>.job.yaml.
type Report struct {
	RunID     string           `yaml:"run_id"`
	Job       string           `yaml:"job"`
	RunType   string           `yaml:"run_type"`
	Backend   string           `yaml:"backend"`
	Work      string           `yaml:"work"`
	Started   time.Time        `yaml:"started"`
	Finished  time.Time        `yaml:"finished"`
	ExitCode  int              `yaml:"exit_code"`
	Error     string           `yaml:"error,omitempty"`
	Fragments []FragmentReport `yaml:"fragments"`
	Info      string           `yaml:"info"`
}

func (R *Report) add(name, status string, d time.Duration, err error) {
	F := FragmentReport{Name: name, Status: status, Seconds: d.Seconds()}
	if err != nil {
		F.Error = err.Error()
	}
	R.Fragments = append(R.Fragments, F)
}

func (R *Report) WriteFile(name string) error {
	b, err := yaml.Marshal(R)
	if err != nil {
		return err
	}
	return os.WriteFile(name, b, 0644)
}

//ReadReport reads a report written by WriteFile.
func ReadReport(name string) (*Report, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	R := new(Report)
	if err := yaml.Unmarshal(b, R); err != nil {
		return nil, err
	}
	return R, nil
}
