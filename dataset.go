/*
 * dataset.go, part of hifigo.
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
	"fmt"

	"github.com/hifitools/hifigo/field"
	"github.com/hifitools/hifigo/h5"
)

//A TableEntry maps one physical variable to the raw dataset key that
//stores it. Over, when not empty, names the species density the raw
//values are divided by on access (the files store momentum densities,
//not velocities). Negate flips the sign.
type TableEntry struct {
	Name   string
	Key    string
	Over   string
	Negate bool
}

//KeyTable is the mapping from physical variable names to the raw keys of
//the post-processed files, in presentation order: ion density, the flux
//function (stored negated), the out of plane field, ion velocities, out
//of plane current, ion pressure, then the same set for the neutral
//species. Tracking another variable is a matter of adding a row.
var KeyTable = []TableEntry{
	{Name: "ni", Key: "U01"},
	{Name: "Az", Key: "U02", Negate: true},
	{Name: "Bz", Key: "U03"},
	{Name: "Vix", Key: "U04", Over: "U01"},
	{Name: "Viy", Key: "U05", Over: "U01"},
	{Name: "Viz", Key: "U06", Over: "U01"},
	{Name: "Jz", Key: "U07"},
	{Name: "pi", Key: "U08"},
	{Name: "nn", Key: "U09"},
	{Name: "Vnx", Key: "U10", Over: "U09"},
	{Name: "Vny", Key: "U11", Over: "U09"},
	{Name: "Vnz", Key: "U12", Over: "U09"},
	{Name: "pn", Key: "U13"},
}

//entry looks a physical name up in KeyTable.
func entry(name string) (TableEntry, bool) {
	for _, e := range KeyTable {
		if e.Name == name {
			return e, true
		}
	}
	return TableEntry{}, false
}

//Dataset ties together the grid and the snapshot sequence of one run
//directory, and resolves physical variable names through KeyTable.
//Fields are read from disk on each access, so only what is asked for is
//ever in memory.
type Dataset struct {
	name   string
	dir    string
	x, y   *field.Matrix
	xx, yy []float64
	files  []*h5.File
	times  []float64
}

//NewDataset loads the grid of a run directory and opens its snapshot
//sequence. The optional argument is a label for the run, used only for
//display.
func NewDataset(dir string, id ...string) (*Dataset, error) {
	name := "no ID"
	if len(id) > 0 {
		name = id[0]
	}
	x, y, xx, yy, err := ReadGrid(dir)
	if err != nil {
		return nil, errDecorate(err, "NewDataset")
	}
	files, times, err := ReadDirectory(dir)
	if err != nil {
		return nil, errDecorate(err, "NewDataset")
	}
	return &Dataset{name: name, dir: dir, x: x, y: y, xx: xx, yy: yy, files: files, times: times}, nil
}

//Name returns the label given to the run.
func (D *Dataset) Name() string { return D.name }

//Dir returns the run directory.
func (D *Dataset) Dir() string { return D.dir }

//X returns the 1D x axis, or nil if the grid is not separable.
func (D *Dataset) X() []float64 { return D.xx }

//Y returns the 1D y axis, or nil if the grid is not separable.
func (D *Dataset) Y() []float64 { return D.yy }

//X2D returns the full 2D x coordinate array.
func (D *Dataset) X2D() *field.Matrix { return D.x }

//Y2D returns the full 2D y coordinate array.
func (D *Dataset) Y2D() *field.Matrix { return D.y }

//Times returns the timestamp of every snapshot, in snapshot order.
func (D *Dataset) Times() []float64 { return D.times }

//NSteps returns the number of snapshots.
func (D *Dataset) NSteps() int { return len(D.files) }

//Files returns the open snapshot handles, in snapshot order.
func (D *Dataset) Files() []*h5.File { return D.files }

//Names returns the physical variable names, in KeyTable order.
func (D *Dataset) Names() []string {
	out := make([]string, len(KeyTable))
	for i, e := range KeyTable {
		out[i] = e.Name
	}
	return out
}

//Field reads one physical field at one timestep, deriving it if the
//table calls for it: a velocity is its momentum density divided by the
//species density, element-wise, with IEEE division semantics, so a zero
//density shows up as Inf or NaN in the velocity rather than being
//masked. Unknown names and out of range steps are errors.
func (D *Dataset) Field(name string, step int) (*field.Matrix, error) {
	e, ok := entry(name)
	if !ok {
		return nil, CError{fmt.Sprintf("%s: %q", FieldUnknown, name), D.dir, []string{"Field"}, true}
	}
	if step < 0 || step >= len(D.files) {
		return nil, CError{fmt.Sprintf("%s: %d of %d", StepOutOfRange, step, len(D.files)), D.dir, []string{"Field"}, true}
	}
	raw, err := readField(D.files[step], e.Key)
	if err != nil {
		return nil, errDecorate(err, fmt.Sprintf("Field: %s", name))
	}
	if e.Over != "" {
		den, err := readField(D.files[step], e.Over)
		if err != nil {
			return nil, errDecorate(err, fmt.Sprintf("Field: %s", name))
		}
		if den.Rows() != raw.Rows() || den.Cols() != raw.Cols() {
			return nil, CError{fmt.Sprintf("%s: %s against %s", WrongGridShape, e.Key, e.Over), D.files[step].Name(), []string{"Field"}, true}
		}
		q := field.Zeros(raw.Rows(), raw.Cols())
		q.Div(raw, den)
		raw = q
	}
	if e.Negate {
		raw.Scale(-1, raw)
	}
	return raw, nil
}

//FieldSeries reads one physical field at every timestep, in snapshot
//order. For long runs prefer Field inside a loop, which lets each
//snapshot be dropped before the next is read.
func (D *Dataset) FieldSeries(name string) ([]*field.Matrix, error) {
	out := make([]*field.Matrix, 0, len(D.files))
	for i := range D.files {
		m, err := D.Field(name, i)
		if err != nil {
			return nil, errDecorate(err, fmt.Sprintf("FieldSeries: step %d", i))
		}
		out = append(out, m)
	}
	return out, nil
}

//Close closes every snapshot handle. The Dataset must not be used
//afterwards. The first error encountered is returned, but all handles
//are attempted.
func (D *Dataset) Close() error {
	var first error
	for _, f := range D.files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
