/*
 * metrics.go, part of gocamcasp.
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
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

//metrics are kept in a registry of their own, and written as a text file
//at the end of the job, as there is no server to scrape them.
type metrics struct {
	reg       *prometheus.Registry
	fragments *prometheus.CounterVec
	seconds   *prometheus.GaugeVec
	skipped   prometheus.Counter
}

func newMetrics() *metrics {
	M := &metrics{
		reg: prometheus.NewRegistry(),
		fragments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "camcasp_fragments_total",
			Help: "Fragment calculations by outcome.",
		}, []string{"fragment", "backend", "status"}),
		seconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "camcasp_fragment_seconds",
			Help: "Wall time of each fragment calculation.",
		}, []string{"fragment", "backend"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "camcasp_skipped_total",
			Help: "Fragments skipped because their orbitals were already available.",
		}),
	}
	M.reg.MustRegister(M.fragments, M.seconds, M.skipped)
	return M
}

func (M *metrics) observe(frag, backend, status string, d time.Duration) {
	M.fragments.WithLabelValues(frag, backend, status).Inc()
	M.seconds.WithLabelValues(frag, backend).Set(d.Seconds())
}

func (M *metrics) write(filename string) error {
	return prometheus.WriteToTextfile(filename, M.reg)
}
