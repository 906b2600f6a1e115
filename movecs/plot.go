/*
 * plot.go, part of gocamcasp.
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

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//LevelPlot saves an orbital energy level diagram to filename (the format is
//taken from the extension). Levels above maxE (a.u.) are left out, as the
//virtual orbitals of a large basis would dwarf the rest.
func LevelPlot(O *Orbitals, title, filename string, maxE float64) error {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.Y.Label.Text = "Orbital energy / a.u."
	p.X.Min = 0
	p.X.Max = 1
	p.HideX()
	p.Add(plotter.NewGrid())
	lowest := math.Inf(1)
	for i := 0; i < O.NMO(); i++ {
		e := O.Energies.AtVec(i)
		if e > maxE {
			continue
		}
		lowest = math.Min(lowest, e)
		level := plotter.XYs{{X: 0.2, Y: e}, {X: 0.8, Y: e}}
		l, err := plotter.NewLine(level)
		if err != nil {
			return decorate(err, filename, "LevelPlot")
		}
		l.LineStyle.Width = vg.Points(1)
		l.LineStyle.Color = color.RGBA{B: 160, A: 255}
		if e < 0 {
			l.LineStyle.Color = color.RGBA{R: 160, A: 255}
		}
		p.Add(l)
	}
	if math.IsInf(lowest, 1) {
		return newError(filename, "no orbital energies below %g", maxE)
	}
	if err := p.Save(4*vg.Inch, 6*vg.Inch, filename); err != nil {
		return newError(filename, "%s", err.Error())
	}
	return nil
}
