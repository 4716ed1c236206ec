/*
 * plot_test.go, part of hifigo
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

package hifiplot

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/hifitools/hifigo/field"
)

//mustExist checks that name.png was written and is not empty.
func mustExist(Te *testing.T, name string) {
	st, err := os.Stat(name + ".png")
	if err != nil {
		Te.Error(err)
		return
	}
	if st.Size() == 0 {
		Te.Errorf("%s.png is empty", name)
	}
}

func TestFieldMap(Te *testing.T) {
	dir := Te.TempDir()
	ny, nx := 12, 16
	xx := make([]float64, nx)
	yy := make([]float64, ny)
	for i := range xx {
		xx[i] = float64(i) / float64(nx-1)
	}
	for i := range yy {
		yy[i] = -1 + 2*float64(i)/float64(ny-1)
	}
	data := make([]float64, ny*nx)
	for i := 0; i < ny; i++ {
		for j := 0; j < nx; j++ {
			data[i*nx+j] = math.Sin(3*xx[j]) * math.Cos(2*yy[i])
		}
	}
	f, err := field.New(ny, nx, data)
	if err != nil {
		Te.Fatal(err)
	}
	name := filepath.Join(dir, "Az")
	err = FieldMap(xx, yy, f, "flux function", name)
	if err != nil {
		Te.Error(err)
	}
	mustExist(Te, name)
	fmt.Println("heat map written to", name+".png")

	//a flat field still renders, with an expanded color range
	flat, _ := field.New(2, 2, []float64{3, 3, 3, 3})
	name = filepath.Join(dir, "flat")
	err = FieldMap([]float64{0, 1}, []float64{0, 1}, flat, "flat", name)
	if err != nil {
		Te.Error(err)
	}
	mustExist(Te, name)
}

func TestFieldMapErrors(Te *testing.T) {
	f, _ := field.New(2, 3, []float64{1, 2, 3, 4, 5, 6})
	err := FieldMap([]float64{0, 1}, []float64{0, 1}, f, "bad", "nowhere")
	if err == nil {
		Te.Error("mismatched axes must not plot")
	}
	fmt.Println("mismatched axes:", err)
	err = FieldMap(nil, []float64{0, 1}, f, "bad", "nowhere")
	if err == nil {
		Te.Error("nil axis must not plot")
	}
	inf, _ := field.New(2, 2, []float64{1, math.Inf(1), 2, 3})
	err = FieldMap([]float64{0, 1}, []float64{0, 1}, inf, "bad", "nowhere")
	if err == nil {
		Te.Error("non-finite field must not plot")
	}
	fmt.Println("non-finite field:", err)
}

func TestTimeSeries(Te *testing.T) {
	dir := Te.TempDir()
	time := make([]float64, 20)
	vals := make([]float64, 20)
	for i := range time {
		time[i] = 0.5 * float64(i)
		vals[i] = math.Exp(-0.1 * time[i])
	}
	name := filepath.Join(dir, "decay")
	err := TimeSeries(time, vals, "probe decay", name)
	if err != nil {
		Te.Error(err)
	}
	mustExist(Te, name)

	err = TimeSeries(time, vals[:10], "bad", "nowhere")
	if err == nil {
		Te.Error("mismatched series must not plot")
	}
	err = TimeSeries(nil, nil, "bad", "nowhere")
	if err == nil {
		Te.Error("empty series must not plot")
	}
}
