package hifi

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hifitools/hifigo/h5"
)

//writeGridFile writes a separable grid of ny x nx points spanning
//[0,1] x [-1,1] and returns the two axes it used.
func writeGridFile(Te *testing.T, dir string, ny, nx int) ([]float64, []float64) {
	xx := make([]float64, nx)
	for j := range xx {
		xx[j] = float64(j) / float64(nx-1)
	}
	yy := make([]float64, ny)
	for i := range yy {
		yy[i] = -1 + 2*float64(i)/float64(ny-1)
	}
	x2 := make([]float64, ny*nx)
	y2 := make([]float64, ny*nx)
	for i := 0; i < ny; i++ {
		for j := 0; j < nx; j++ {
			x2[i*nx+j] = xx[j]
			y2[i*nx+j] = yy[i]
		}
	}
	w, err := h5.Create(filepath.Join(dir, "grid_00000.h5"))
	if err != nil {
		Te.Fatal(err)
	}
	if err := w.Put("U01", ny, nx, x2); err != nil {
		Te.Fatal(err)
	}
	if err := w.Put("U02", ny, nx, y2); err != nil {
		Te.Fatal(err)
	}
	if err := w.Close(); err != nil {
		Te.Fatal(err)
	}
	return xx, yy
}

const sidecarPattern = `<?xml version="1.0" ?>
<!DOCTYPE Xdmf SYSTEM "Xdmf.dtd" []>
<Xdmf Version="2.0">
 <Domain>
  <Grid Name="mesh" GridType="Uniform">
   <Time Value="%.6e" />
   <Topology TopologyType="2DSMesh" NumberOfElements="%d %d"/>
  </Grid>
 </Domain>
</Xdmf>
`

//writeSnapshot writes one snapshot with the thirteen raw datasets plus
//its sidecar. The values are flat so the derived fields are easy to
//predict: densities 2, momentum densities 6 (velocities come out 3),
//U02 0.5 (Az comes out -0.5), the rest their key number. The marker
//goes into U03 at the first element so tests can tell snapshots apart.
func writeSnapshot(Te *testing.T, dir, base string, t float64, ny, nx int, marker float64) {
	w, err := h5.Create(filepath.Join(dir, base+".h5"))
	if err != nil {
		Te.Fatal(err)
	}
	vals := map[string]float64{
		"U01": 2, "U02": 0.5, "U03": 3, "U04": 6, "U05": 6, "U06": 6,
		"U07": 7, "U08": 8, "U09": 2, "U10": 6, "U11": 6, "U12": 6, "U13": 13,
	}
	for key, v := range vals {
		data := make([]float64, ny*nx)
		for i := range data {
			data[i] = v
		}
		if key == "U03" {
			data[0] = marker
		}
		if err := w.Put(key, ny, nx, data); err != nil {
			Te.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		Te.Fatal(err)
	}
	side := fmt.Sprintf(sidecarPattern, t, ny, nx)
	if err := os.WriteFile(filepath.Join(dir, base+".xmf"), []byte(side), 0644); err != nil {
		Te.Fatal(err)
	}
}

func TestReadGrid(Te *testing.T) {
	dir := Te.TempDir()
	xx, yy := writeGridFile(Te, dir, 5, 8)
	x, y, gx, gy, err := ReadGrid(dir)
	if err != nil {
		Te.Fatal(err)
	}
	fmt.Println("grid axes:", gx, gy)
	if x.Rows() != 5 || x.Cols() != 8 || y.Rows() != 5 || y.Cols() != 8 {
		Te.Errorf("2D coordinate arrays %dx%d and %dx%d, want 5x8", x.Rows(), x.Cols(), y.Rows(), y.Cols())
	}
	if len(gx) != 8 || len(gy) != 5 {
		Te.Fatalf("axis lengths %d and %d, want 8 and 5", len(gx), len(gy))
	}
	for j, v := range gx {
		if v != xx[j] {
			Te.Errorf("x axis element %d is %v, want %v", j, v, xx[j])
		}
	}
	for i, v := range gy {
		if v != yy[i] {
			Te.Errorf("y axis element %d is %v, want %v", i, v, yy[i])
		}
	}
	if x.At(3, 2) != xx[2] || y.At(3, 2) != yy[3] {
		Te.Error("2D coordinates do not match the axes")
	}
}

func TestReadGridNonSeparable(Te *testing.T) {
	dir := Te.TempDir()
	//a grid with one warped x coordinate is not a tensor product
	ny, nx := 4, 6
	x2 := make([]float64, ny*nx)
	y2 := make([]float64, ny*nx)
	for i := 0; i < ny; i++ {
		for j := 0; j < nx; j++ {
			x2[i*nx+j] = float64(j)
			y2[i*nx+j] = float64(i)
		}
	}
	x2[2*nx+3] += 0.01
	w, err := h5.Create(filepath.Join(dir, "grid.h5"))
	if err != nil {
		Te.Fatal(err)
	}
	if err := w.Put("U01", ny, nx, x2); err != nil {
		Te.Fatal(err)
	}
	if err := w.Put("U02", ny, nx, y2); err != nil {
		Te.Fatal(err)
	}
	if err := w.Close(); err != nil {
		Te.Fatal(err)
	}
	x, y, gx, gy, err := ReadGrid(dir)
	if err != nil {
		Te.Fatal(err)
	}
	if gx != nil || gy != nil {
		Te.Errorf("a warped grid still produced 1D axes %v and %v", gx, gy)
	}
	if x == nil || y == nil || x.At(2, 3) != 3.01 {
		Te.Error("the 2D coordinate arrays of a warped grid came back wrong")
	}
}

func TestReadGridErrors(Te *testing.T) {
	if _, _, _, _, err := ReadGrid(filepath.Join(Te.TempDir(), "nope")); err == nil {
		Te.Error("reading a missing directory did not fail")
	}
	empty := Te.TempDir()
	if _, _, _, _, err := ReadGrid(empty); err == nil {
		Te.Error("a directory with no grid file did not fail")
	}
	//grid file without the y coordinates
	partial := Te.TempDir()
	w, err := h5.Create(filepath.Join(partial, "grid.h5"))
	if err != nil {
		Te.Fatal(err)
	}
	if err := w.Put("U01", 2, 2, []float64{0, 1, 0, 1}); err != nil {
		Te.Fatal(err)
	}
	if err := w.Close(); err != nil {
		Te.Fatal(err)
	}
	if _, _, _, _, err := ReadGrid(partial); err == nil {
		Te.Error("a grid file without U02 did not fail")
	}
}
