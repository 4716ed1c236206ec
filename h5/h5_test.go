package h5

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func sample(rows, cols int) []float64 {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = math.Sin(float64(i)) * math.Pow(10, float64(i%7-3))
	}
	data[0] = 0
	if len(data) > 1 {
		data[1] = -data[1]
	}
	return data
}

func TestWriteReadContiguous(Te *testing.T) {
	fname := filepath.Join(Te.TempDir(), "plain.h5")
	w, err := Create(fname)
	if err != nil {
		Te.Fatal(err)
	}
	data := sample(6, 9)
	if err := w.Put("U01", 6, 9, data); err != nil {
		Te.Error(err)
	}
	axis := []float64{0, 0.25, 0.5, 0.75, 1}
	if err := w.Put1D("axis", axis); err != nil {
		Te.Error(err)
	}
	if err := w.Put("special", 2, 2, []float64{math.Inf(1), math.Inf(-1), math.NaN(), 0}); err != nil {
		Te.Error(err)
	}
	if err := w.Close(); err != nil {
		Te.Fatal(err)
	}
	f, err := Open(fname)
	if err != nil {
		Te.Fatal(err)
	}
	defer f.Close()
	keys := f.Keys()
	fmt.Println("keys in the test file:", keys)
	if len(keys) != 3 || keys[0] != "U01" || keys[1] != "axis" || keys[2] != "special" {
		Te.Errorf("wrong keys %v", keys)
	}
	ds, err := f.Dataset("U01")
	if err != nil {
		Te.Fatal(err)
	}
	rows, cols, got, err := ds.ReadMatrix()
	if err != nil {
		Te.Fatal(err)
	}
	if rows != 6 || cols != 9 {
		Te.Errorf("dimensions %dx%d, want 6x9", rows, cols)
	}
	for i, v := range got {
		if v != data[i] {
			Te.Errorf("element %d read back as %v, want %v", i, v, data[i])
			break
		}
	}
	ax, err := f.Dataset("axis")
	if err != nil {
		Te.Fatal(err)
	}
	if dims := ax.Dims(); len(dims) != 1 || dims[0] != 5 {
		Te.Errorf("axis dimensions %v, want [5]", dims)
	}
	back, err := ax.Read()
	if err != nil {
		Te.Fatal(err)
	}
	for i, v := range back {
		if v != axis[i] {
			Te.Errorf("axis element %d read back as %v, want %v", i, v, axis[i])
		}
	}
	if _, _, _, err := ax.ReadMatrix(); err == nil {
		Te.Error("ReadMatrix on a rank 1 dataset did not fail")
	}
	sp, err := f.Dataset("special")
	if err != nil {
		Te.Fatal(err)
	}
	sv, err := sp.Read()
	if err != nil {
		Te.Fatal(err)
	}
	if !math.IsInf(sv[0], 1) || !math.IsInf(sv[1], -1) || !math.IsNaN(sv[2]) || sv[3] != 0 {
		Te.Errorf("special values read back as %v", sv)
	}
}

func TestFilterRoundTrips(Te *testing.T) {
	combos := [][]int{
		{Deflate},
		{Shuffle, Deflate},
		{Deflate, Fletcher32},
		{Zstd},
		{Shuffle, Zstd, Fletcher32},
	}
	data := sample(17, 23)
	dir := Te.TempDir()
	for ci, combo := range combos {
		fname := filepath.Join(dir, fmt.Sprintf("filtered%d.h5", ci))
		w, err := Create(fname)
		if err != nil {
			Te.Fatal(err)
		}
		if err := w.PutCompressed("U05", 17, 23, data, combo...); err != nil {
			Te.Fatal(err)
		}
		if err := w.Close(); err != nil {
			Te.Fatal(err)
		}
		f, err := Open(fname)
		if err != nil {
			Te.Errorf("combination %v: %v", combo, err)
			continue
		}
		ds, err := f.Dataset("U05")
		if err != nil {
			Te.Errorf("combination %v: %v", combo, err)
			f.Close()
			continue
		}
		rows, cols, got, err := ds.ReadMatrix()
		if err != nil {
			Te.Errorf("combination %v: %v", combo, err)
			f.Close()
			continue
		}
		if rows != 17 || cols != 23 {
			Te.Errorf("combination %v: dimensions %dx%d", combo, rows, cols)
		}
		for i, v := range got {
			if v != data[i] {
				Te.Errorf("combination %v: element %d read back as %v, want %v", combo, i, v, data[i])
				break
			}
		}
		f.Close()
	}
}

func TestOpenErrors(Te *testing.T) {
	dir := Te.TempDir()
	if _, err := Open(filepath.Join(dir, "missing.h5")); err == nil {
		Te.Error("opening a missing file did not fail")
	}
	junk := filepath.Join(dir, "junk.h5")
	if err := os.WriteFile(junk, []byte("not an HDF5 file, not even close"), 0644); err != nil {
		Te.Fatal(err)
	}
	if _, err := Open(junk); err == nil {
		Te.Error("opening a non HDF5 file did not fail")
	}
	good := filepath.Join(dir, "good.h5")
	w, err := Create(good)
	if err != nil {
		Te.Fatal(err)
	}
	if err := w.Put("present", 2, 2, []float64{1, 2, 3, 4}); err != nil {
		Te.Fatal(err)
	}
	if err := w.Close(); err != nil {
		Te.Fatal(err)
	}
	f, err := Open(good)
	if err != nil {
		Te.Fatal(err)
	}
	defer f.Close()
	if _, err := f.Dataset("absent"); err == nil {
		Te.Error("asking for a missing key did not fail")
	}
}

func TestWriterMisuse(Te *testing.T) {
	w, err := Create(filepath.Join(Te.TempDir(), "misuse.h5"))
	if err != nil {
		Te.Fatal(err)
	}
	if err := w.Put("a", 2, 3, []float64{1}); err == nil {
		Te.Error("a size mismatch was not caught")
	}
	if err := w.Put("a", 1, 1, []float64{1}); err != nil {
		Te.Error(err)
	}
	if err := w.Put("a", 1, 1, []float64{2}); err == nil {
		Te.Error("a duplicate key was not caught")
	}
	if err := w.PutCompressed("b", 1, 1, []float64{1}, 99); err == nil {
		Te.Error("an unknown filter id was not caught")
	}
	if err := w.Close(); err != nil {
		Te.Error(err)
	}
	if err := w.Put("late", 1, 1, []float64{1}); err == nil {
		Te.Error("writing after Close did not fail")
	}
}
