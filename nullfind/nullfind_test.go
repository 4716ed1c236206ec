package nullfind

import (
	"fmt"
	"math"
	"testing"
)

func TestSineRoots(Te *testing.T) {
	//sin over [0, 3pi/2 + a bit]: a null at the very first sample and one
	//bracketed at pi
	n := 101
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = 4.8 * float64(i) / float64(n-1)
		y[i] = math.Sin(x[i])
	}
	roots, err := Roots(x, y)
	if err != nil {
		Te.Fatal(err)
	}
	fmt.Println("sine nulls:", roots)
	if len(roots) != 2 {
		Te.Fatalf("%d nulls, want 2 (0 and pi)", len(roots))
	}
	if roots[0] != 0 {
		Te.Errorf("first null at %v, want exactly 0 (sample null)", roots[0])
	}
	if math.Abs(roots[1]-math.Pi) > 1e-6 {
		Te.Errorf("second null at %v, off pi by %v", roots[1], roots[1]-math.Pi)
	}
}

func TestLinearRoot(Te *testing.T) {
	n := 11
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = float64(i) / float64(n-1)
		y[i] = 2*x[i] - 1
	}
	roots, err := Roots(x, y)
	if err != nil {
		Te.Fatal(err)
	}
	if len(roots) != 1 {
		Te.Fatalf("%d nulls, want 1", len(roots))
	}
	if math.Abs(roots[0]-0.5) > 1e-9 {
		Te.Errorf("null at %v, want 0.5", roots[0])
	}
}

func TestNoRoots(Te *testing.T) {
	x := []float64{0, 1, 2, 3}
	y := []float64{1, 2, 1.5, 3}
	roots, err := Roots(x, y)
	if err != nil {
		Te.Fatal(err)
	}
	if len(roots) != 0 {
		Te.Errorf("a positive profile produced nulls at %v", roots)
	}
}

func TestTolerantSamples(Te *testing.T) {
	//with a loose tolerance the near-zero sample counts as a null itself
	x := []float64{0, 1, 2}
	y := []float64{5, 1e-9, 4}
	roots, err := Roots(x, y, 1e-8)
	if err != nil {
		Te.Fatal(err)
	}
	if len(roots) != 1 || roots[0] != 1 {
		Te.Errorf("nulls %v, want exactly [1]", roots)
	}
}

func TestBadProfiles(Te *testing.T) {
	if _, err := Roots([]float64{0, 1}, []float64{1}); err == nil {
		Te.Error("mismatched lengths did not fail")
	}
	if _, err := Roots([]float64{1}, []float64{1}); err == nil {
		Te.Error("a single sample did not fail")
	}
	if _, err := Roots([]float64{0, 2, 1}, []float64{1, -1, 1}); err == nil {
		Te.Error("non increasing abscissas did not fail")
	}
}
