package hifiplot

//Some internal convenience functions.

import (
	"math"

	"gonum.org/v1/plot/plotter"

	"github.com/hifitools/hifigo/field"
)

//fieldGrid presents a field and its axes as the grid a heat map plots.
//Plot columns run along x and rows along y, while the field is stored
//row-major with the y index first, so Z swaps the indices.
type fieldGrid struct {
	xx, yy []float64
	f      *field.Matrix
}

func (g fieldGrid) Dims() (c, r int)   { return len(g.xx), len(g.yy) }
func (g fieldGrid) Z(c, r int) float64 { return g.f.At(r, c) }
func (g fieldGrid) X(c int) float64    { return g.xx[c] }
func (g fieldGrid) Y(r int) float64    { return g.yy[r] }

var _ plotter.GridXYZ = fieldGrid{}

//firstNonFinite returns the position of the first Inf or NaN in f,
//scanning rows first, and whether one was found.
func firstNonFinite(f *field.Matrix) (int, int, bool) {
	r, c := f.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := f.At(i, j)
			if math.IsInf(v, 0) || math.IsNaN(v) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}
