/*
 * plot.go, part of hifigo
 *
 * Copyright 2019 The hifigo developers
 *
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU Lesser General Public License as published by
    the Free Software Foundation, either version 2.1 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU Lesser General Public License
    along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 *
*/

//Package hifiplot renders simulation fields: heat maps of one snapshot
//over the grid, and time series of scalar probes. Output is png.
package hifiplot

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/hifitools/hifigo/field"
)

/*FieldMap draws one field snapshot as a heat map over the separable grid
  axes and saves it to plotname.png. The palette is a diverging blue to
  red one, suited to signed fields like the flux function or the out of
  plane current. The axes must match the field: len(xx) columns and
  len(yy) rows. Fields holding non-finite values (e.g. a velocity where
  the density vanished) cannot be color mapped and are an error.*/
func FieldMap(xx, yy []float64, f *field.Matrix, title, plotname string) error {
	if f == nil {
		panic("Given nil field")
	}
	if xx == nil || yy == nil {
		return fmt.Errorf("FieldMap: need both 1D axes (non-separable grid?)")
	}
	if len(xx) != f.Cols() || len(yy) != f.Rows() {
		return fmt.Errorf("FieldMap: axes %dx%d against a %dx%d field", len(yy), len(xx), f.Rows(), f.Cols())
	}
	if i, j, ok := firstNonFinite(f); ok {
		return fmt.Errorf("FieldMap: non-finite value at row %d, column %d", i, j)
	}
	h := plotter.NewHeatMap(fieldGrid{xx, yy, f}, moreland.SmoothBlueRed().Palette(255))
	if h.Min == h.Max {
		//a flat field would collapse the color scale
		h.Min -= 0.5
		h.Max += 0.5
	}
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(h)
	filename := fmt.Sprintf("%s.png", plotname)
	if err := p.Save(15*vg.Centimeter, 12*vg.Centimeter, filename); err != nil {
		return err
	}
	return nil
}

/*TimeSeries draws the evolution of a scalar probe (one value per
  snapshot) against the timestamps and saves it to plotname.png.*/
func TimeSeries(time, values []float64, title, plotname string) error {
	if len(time) != len(values) || len(time) == 0 {
		return fmt.Errorf("TimeSeries: %d times against %d values", len(time), len(values))
	}
	pts := make(plotter.XYs, len(time))
	for i := range pts {
		pts[i].X = time[i]
		pts[i].Y = values[i]
	}
	ln, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = "t"
	p.Y.Label.Text = "value"
	p.Add(plotter.NewGrid())
	p.Add(ln)
	filename := fmt.Sprintf("%s.png", plotname)
	if err := p.Save(15*vg.Centimeter, 10*vg.Centimeter, filename); err != nil {
		return err
	}
	return nil
}
