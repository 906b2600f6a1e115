/*
 * sentinel.go, part of gocamcasp.
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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rmera/gocamcasp/movecs"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

//Sentinel records a complete, flushed canonical orbital file. It is written
//next to the file, with the .done suffix, only after the file itself.
type Sentinel struct {
	File   string    `yaml:"file"`
	SHA256 string    `yaml:"sha256"`
	Size   int64     `yaml:"size"`
	RunID  string    `yaml:"run_id"`
	Time   time.Time `yaml:"time"`
}

func sentinelName(path string) string { return path + ".done" }

//CanonicalName is the name of the canonical orbital file for fragment frag.
func CanonicalName(job, frag string) string {
	return fmt.Sprintf("%s-%s-asc.movecs", job, frag)
}

func digest(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

//WriteSentinel writes the sentinel for the file at path.
func WriteSentinel(path, runID string) error {
	sum, size, err := digest(path)
	if err != nil {
		return workspaceError(path, err)
	}
	S := Sentinel{File: filepath.Base(path), SHA256: sum, Size: size, RunID: runID, Time: time.Now().UTC()}
	b, err := yaml.Marshal(S)
	if err != nil {
		return workspaceError(path, err)
	}
	tmp := sentinelName(path) + ".tmp"
	if err := os.WriteFile(tmp, b, 0644); err != nil {
		return workspaceError(tmp, err)
	}
	if err := os.Rename(tmp, sentinelName(path)); err != nil {
		return workspaceError(tmp, err)
	}
	return nil
}

//Completed reports whether the canonical orbital file at path can be
//reused. With a sentinel, the file must match its checksum. Files from runs
//that didn't write sentinels must at least be readable to the end.
func Completed(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	b, err := os.ReadFile(sentinelName(path))
	if err == nil {
		var S Sentinel
		if err := yaml.Unmarshal(b, &S); err != nil {
			log.Warn().Str("file", sentinelName(path)).Err(err).Msg("unreadable sentinel")
			return false
		}
		sum, size, err := digest(path)
		return err == nil && size == S.Size && sum == S.SHA256
	}
	if _, err := movecs.ReadFile(path); err != nil {
		log.Warn().Str("file", path).Err(err).Msg("incomplete orbital file will be recomputed")
		return false
	}
	return true
}
