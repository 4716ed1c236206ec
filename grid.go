/*
 * grid.go, part of hifigo.
 *
 * Copyright 2019 The hifigo developers
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

package hifi

import (
	"log"
	"os"
	"path/filepath"

	"github.com/hifitools/hifigo/field"
	"github.com/hifitools/hifigo/h5"
)

//ReadGrid reads the grid file of a run directory. It returns the 2D
//coordinate arrays x and y (datasets U01 and U02, shaped ny x nx), and,
//when the grid is a tensor product of two axes, the 1D axes themselves:
//xx of length nx and yy of length ny. For a grid that is not separable
//in that sense both 1D returns are nil and the 2D arrays are all there is.
func ReadGrid(dir string) (x, y *field.Matrix, xx, yy []float64, err error) {
	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		return nil, nil, nil, nil, CError{NotADirectory, dir, []string{"ReadGrid"}, true}
	}
	matches, err := filepath.Glob(filepath.Join(dir, "grid*.h5"))
	if err != nil || len(matches) == 0 {
		return nil, nil, nil, nil, CError{GridFileMissing, dir, []string{"ReadGrid"}, true}
	}
	//Glob returns sorted names, so with several grid files present the
	//first one wins, as in the original post-processing scripts.
	if len(matches) > 1 {
		log.Printf("hifi: %d grid files in %s, reading %s", len(matches), dir, filepath.Base(matches[0]))
	}
	f, err := h5.Open(matches[0])
	if err != nil {
		return nil, nil, nil, nil, errDecorate(err, "ReadGrid")
	}
	defer f.Close()
	x, err = readField(f, "U01")
	if err != nil {
		return nil, nil, nil, nil, errDecorate(err, "ReadGrid")
	}
	y, err = readField(f, "U02")
	if err != nil {
		return nil, nil, nil, nil, errDecorate(err, "ReadGrid")
	}
	if x.Rows() != y.Rows() || x.Cols() != y.Cols() {
		return nil, nil, nil, nil, CError{WrongGridShape, matches[0], []string{"ReadGrid"}, true}
	}
	xx, yy = separableAxes(x, y)
	return x, y, xx, yy, nil
}

//separableAxes returns the 1D coordinate axes of a tensor product grid:
//every row of x must equal the first row, and every column of y the
//first column, exactly. The coordinates are written bit-identical by
//the post-processor when the grid is a product, so there is no epsilon
//here. For any other grid both returns are nil.
func separableAxes(x, y *field.Matrix) ([]float64, []float64) {
	rows, cols := x.Rows(), x.Cols()
	xx := x.Row(0)
	for i := 1; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if x.At(i, j) != xx[j] {
				return nil, nil
			}
		}
	}
	yy := y.Col(0)
	for j := 1; j < cols; j++ {
		for i := 0; i < rows; i++ {
			if y.At(i, j) != yy[i] {
				return nil, nil
			}
		}
	}
	return xx, yy
}

//readField reads one dataset of an open file as a matrix.
func readField(f *h5.File, key string) (*field.Matrix, error) {
	ds, err := f.Dataset(key)
	if err != nil {
		return nil, err
	}
	r, c, data, err := ds.ReadMatrix()
	if err != nil {
		return nil, err
	}
	return field.New(r, c, data)
}
