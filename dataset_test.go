package hifi

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/hifitools/hifigo/h5"
)

func TestReadDirectoryOrder(Te *testing.T) {
	dir := Te.TempDir()
	//write out of numeric order, with names a lexicographic sort gets wrong
	writeSnapshot(Te, dir, "post_10", 1.0, 3, 4, 110)
	writeSnapshot(Te, dir, "post_9", 0.9, 3, 4, 109)
	writeSnapshot(Te, dir, "post_11", 1.1, 3, 4, 111)
	files, times, err := ReadDirectory(dir)
	if err != nil {
		Te.Fatal(err)
	}
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()
	fmt.Println("snapshot times:", times)
	want := []float64{0.9, 1.0, 1.1}
	if len(times) != 3 {
		Te.Fatalf("%d snapshots, want 3", len(times))
	}
	for i, t := range times {
		if t != want[i] {
			Te.Errorf("snapshot %d at time %v, want %v", i, t, want[i])
		}
	}
	//the handles must follow the same order as the times
	ds, err := files[0].Dataset("U03")
	if err != nil {
		Te.Fatal(err)
	}
	v, err := ds.Read()
	if err != nil {
		Te.Fatal(err)
	}
	if v[0] != 109 {
		Te.Errorf("first handle carries marker %v, want 109", v[0])
	}
}

func TestReadDirectoryErrors(Te *testing.T) {
	empty := Te.TempDir()
	if _, _, err := ReadDirectory(empty); err == nil {
		Te.Error("a directory with no snapshots did not fail")
	}

	noSide := Te.TempDir()
	writeSnapshot(Te, noSide, "post_1", 0.5, 3, 4, 1)
	if err := os.Remove(filepath.Join(noSide, "post_1.xmf")); err != nil {
		Te.Fatal(err)
	}
	if _, _, err := ReadDirectory(noSide); err == nil {
		Te.Error("a snapshot without its sidecar did not fail")
	}

	badTime := Te.TempDir()
	writeSnapshot(Te, badTime, "post_1", 0.5, 3, 4, 1)
	if err := os.WriteFile(filepath.Join(badTime, "post_1.xmf"), []byte("<Xdmf></Xdmf>"), 0644); err != nil {
		Te.Fatal(err)
	}
	if _, _, err := ReadDirectory(badTime); err == nil {
		Te.Error("a sidecar without a time declaration did not fail")
	}

	dup := Te.TempDir()
	writeSnapshot(Te, dup, "post_1", 0.5, 3, 4, 1)
	writeSnapshot(Te, dup, "post_2", 0.5, 3, 4, 2)
	if _, _, err := ReadDirectory(dup); err == nil {
		Te.Error("two snapshots with the same timestamp did not fail")
	}

	badName := Te.TempDir()
	writeSnapshot(Te, badName, "post_final", 0.5, 3, 4, 1)
	if _, _, err := ReadDirectory(badName); err == nil {
		Te.Error("a snapshot name without a sequence number did not fail")
	}
}

func TestSidecarQuotingStyles(Te *testing.T) {
	dir := Te.TempDir()
	writeSnapshot(Te, dir, "post_1", 0, 3, 4, 1)
	//overwrite the sidecar with the spaced, single quoted variant some
	//post-processor versions emit
	side := "<Grid>\n <Time Value = '2.500000e-01' />\n</Grid>\n"
	if err := os.WriteFile(filepath.Join(dir, "post_1.xmf"), []byte(side), 0644); err != nil {
		Te.Fatal(err)
	}
	files, times, err := ReadDirectory(dir)
	if err != nil {
		Te.Fatal(err)
	}
	for _, f := range files {
		f.Close()
	}
	if len(times) != 1 || times[0] != 0.25 {
		Te.Errorf("times %v, want [0.25]", times)
	}
}

func TestDatasetFacade(Te *testing.T) {
	dir := Te.TempDir()
	xx, yy := writeGridFile(Te, dir, 5, 8)
	writeSnapshot(Te, dir, "post_00000", 0.0, 5, 8, 100)
	writeSnapshot(Te, dir, "post_00001", 0.5, 5, 8, 101)
	writeSnapshot(Te, dir, "post_00002", 1.0, 5, 8, 102)
	D, err := NewDataset(dir, "testrun")
	if err != nil {
		Te.Fatal(err)
	}
	defer D.Close()
	if D.Name() != "testrun" {
		Te.Errorf("run label %q, want %q", D.Name(), "testrun")
	}
	if D.NSteps() != 3 {
		Te.Fatalf("%d steps, want 3", D.NSteps())
	}
	for i, t := range D.Times() {
		if t != 0.5*float64(i) {
			Te.Errorf("step %d at time %v, want %v", i, t, 0.5*float64(i))
		}
	}
	if len(D.X()) != len(xx) || len(D.Y()) != len(yy) {
		Te.Errorf("axis lengths %d and %d, want %d and %d", len(D.X()), len(D.Y()), len(xx), len(yy))
	}
	names := D.Names()
	if len(names) != 13 || names[0] != "ni" || names[12] != "pn" {
		Te.Errorf("field names %v", names)
	}

	ni, err := D.Field("ni", 0)
	if err != nil {
		Te.Fatal(err)
	}
	for i := 0; i < ni.Rows(); i++ {
		for j := 0; j < ni.Cols(); j++ {
			if ni.At(i, j) != 2 {
				Te.Fatalf("ni at %d,%d is %v, want 2", i, j, ni.At(i, j))
			}
		}
	}
	az, err := D.Field("Az", 0)
	if err != nil {
		Te.Fatal(err)
	}
	if az.At(2, 3) != -0.5 {
		Te.Errorf("Az is %v, want -0.5 (the stored value negated)", az.At(2, 3))
	}
	vix, err := D.Field("Vix", 1)
	if err != nil {
		Te.Fatal(err)
	}
	if vix.At(1, 1) != 3 {
		Te.Errorf("Vix is %v, want 3 (momentum 6 over density 2)", vix.At(1, 1))
	}
	pn, err := D.Field("pn", 2)
	if err != nil {
		Te.Fatal(err)
	}
	if pn.At(0, 1) != 13 {
		Te.Errorf("pn is %v, want 13", pn.At(0, 1))
	}
	for i := 0; i < 3; i++ {
		bz, err := D.Field("Bz", i)
		if err != nil {
			Te.Fatal(err)
		}
		if bz.At(0, 0) != float64(100+i) {
			Te.Errorf("Bz marker at step %d is %v, want %v", i, bz.At(0, 0), 100+i)
		}
	}

	if _, err := D.Field("nope", 0); err == nil {
		Te.Error("an unknown field name did not fail")
	}
	if _, err := D.Field("ni", 3); err == nil {
		Te.Error("a step past the end did not fail")
	}
	if _, err := D.Field("ni", -1); err == nil {
		Te.Error("a negative step did not fail")
	}

	series, err := D.FieldSeries("Viy")
	if err != nil {
		Te.Fatal(err)
	}
	if len(series) != 3 {
		Te.Fatalf("series of %d matrices, want 3", len(series))
	}
	for i, m := range series {
		if m.At(4, 7) != 3 {
			Te.Errorf("Viy at step %d is %v, want 3", i, m.At(4, 7))
		}
	}
}

func TestDatasetDefaults(Te *testing.T) {
	dir := Te.TempDir()
	writeGridFile(Te, dir, 4, 4)
	writeSnapshot(Te, dir, "post_0", 0, 4, 4, 1)
	D, err := NewDataset(dir)
	if err != nil {
		Te.Fatal(err)
	}
	if D.Name() != "no ID" {
		Te.Errorf("default run label %q, want %q", D.Name(), "no ID")
	}
	if err := D.Close(); err != nil {
		Te.Error(err)
	}
	if _, err := D.Field("ni", 0); err == nil {
		Te.Error("reading a field after Close did not fail")
	}
}

func TestZeroDensityPropagates(Te *testing.T) {
	dir := Te.TempDir()
	writeGridFile(Te, dir, 3, 3)
	//a snapshot where the ion density vanishes at two points: one with
	//momentum left (velocity Inf) and one without (velocity NaN)
	w, err := h5.Create(filepath.Join(dir, "post_0.h5"))
	if err != nil {
		Te.Fatal(err)
	}
	den := []float64{0, 0, 2, 2, 2, 2, 2, 2, 2}
	mom := []float64{6, 0, 6, 6, 6, 6, 6, 6, 6}
	if err := w.Put("U01", 3, 3, den); err != nil {
		Te.Fatal(err)
	}
	if err := w.Put("U04", 3, 3, mom); err != nil {
		Te.Fatal(err)
	}
	if err := w.Close(); err != nil {
		Te.Fatal(err)
	}
	side := fmt.Sprintf(sidecarPattern, 0.0, 3, 3)
	if err := os.WriteFile(filepath.Join(dir, "post_0.xmf"), []byte(side), 0644); err != nil {
		Te.Fatal(err)
	}
	D, err := NewDataset(dir)
	if err != nil {
		Te.Fatal(err)
	}
	defer D.Close()
	vix, err := D.Field("Vix", 0)
	if err != nil {
		Te.Fatal(err)
	}
	if !math.IsInf(vix.At(0, 0), 1) {
		Te.Errorf("6/0 came out as %v, want +Inf", vix.At(0, 0))
	}
	if !math.IsNaN(vix.At(0, 1)) {
		Te.Errorf("0/0 came out as %v, want NaN", vix.At(0, 1))
	}
	if vix.At(0, 2) != 3 {
		Te.Errorf("6/2 came out as %v, want 3", vix.At(0, 2))
	}
	//the density itself is readable, but a key the snapshot never stored
	//only fails when asked for
	if _, err := D.Field("pn", 0); err == nil {
		Te.Error("a field missing from the snapshot did not fail on access")
	}
}
