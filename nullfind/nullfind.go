//Package nullfind locates the zeros of sampled 1D profiles, e.g. the
//magnetic null points of a flux profile along a grid axis.
package nullfind

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

const (
	//samples at least this close to zero are taken as exact nulls
	defaultYTol = 1e-15
	//stopping tolerances of the Brent refinement, matching the usual
	//brentq defaults: absolute 2e-12, relative 4 times the machine epsilon
	brentXTol    = 2e-12
	brentRTol    = 4 * 2.220446049250313e-16
	brentMaxIter = 100
)

/*
Roots returns the zeros of the profile sampled by x and y, in ascending
order. The abscissas must be strictly increasing and there must be at
least two samples.

A sample with |y| within ytol (default 1e-15) is reported as a null at
its own abscissa. Between consecutive samples of strictly opposite sign,
the null of the natural cubic spline through all the samples is bracketed
and refined with Brent's method. A profile with no sign structure simply
yields an empty slice, which is not an error.
*/
func Roots(x, y []float64, ytol ...float64) ([]float64, error) {
	tol := defaultYTol
	if len(ytol) > 0 {
		tol = ytol[0]
	}
	if len(x) != len(y) || len(x) < 2 {
		return nil, Error{fmt.Sprintf("%s: %d abscissas, %d values", BadProfile, len(x), len(y)), []string{"Roots"}, true}
	}
	for i := 1; i < len(x); i++ {
		if x[i] <= x[i-1] {
			return nil, Error{fmt.Sprintf("%s: position %d", NotIncreasing, i), []string{"Roots"}, true}
		}
	}
	var spline interp.NaturalCubic
	if err := spline.Fit(x, y); err != nil {
		return nil, Error{fmt.Sprintf("%s: %s", FitFailed, err.Error()), []string{"Roots"}, true}
	}
	var roots []float64
	for i := range x {
		if math.Abs(y[i]) <= tol {
			roots = append(roots, x[i])
			continue
		}
		if i == len(x)-1 || y[i]*y[i+1] >= 0 {
			continue
		}
		r, err := brent(spline.Predict, x[i], x[i+1])
		if err != nil {
			return nil, errDecorate(err, fmt.Sprintf("Roots: interval %d", i))
		}
		roots = append(roots, r)
	}
	return roots, nil
}

//brent finds the root of f bracketed by [x1, x2], combining bisection,
//secant steps and inverse quadratic interpolation.
func brent(f func(float64) float64, x1, x2 float64) (float64, error) {
	a, b, c := x1, x2, x2
	fa, fb := f(a), f(b)
	if (fa > 0 && fb > 0) || (fa < 0 && fb < 0) {
		return 0, Error{NotBracketed, []string{"brent"}, true}
	}
	fc := fb
	var d, e float64
	for i := 0; i < brentMaxIter; i++ {
		if (fb > 0 && fc > 0) || (fb < 0 && fc < 0) {
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}
		tol1 := 0.5*brentXTol + brentRTol*math.Abs(b)
		xm := 0.5 * (c - b)
		if math.Abs(xm) <= tol1 || fb == 0 {
			return b, nil
		}
		if math.Abs(e) >= tol1 && math.Abs(fa) > math.Abs(fb) {
			//try an interpolation step
			s := fb / fa
			var p, q float64
			if a == c {
				p = 2 * xm * s
				q = 1 - s
			} else {
				q = fa / fc
				r := fb / fc
				p = s * (2*xm*q*(q-r) - (b-a)*(r-1))
				q = (q - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			min1 := 3*xm*q - math.Abs(tol1*q)
			min2 := math.Abs(e * q)
			if 2*p < math.Min(min1, min2) {
				e = d
				d = p / q
			} else {
				//interpolation would leave the bracket, bisect instead
				d = xm
				e = d
			}
		} else {
			d = xm
			e = d
		}
		a, fa = b, fb
		if math.Abs(d) > tol1 {
			b += d
		} else {
			b += math.Copysign(tol1, xm)
		}
		fb = f(b)
	}
	return b, Error{NoConvergence, []string{"brent"}, true}
}

//Error is the nullfind error type.
type Error struct {
	message  string
	deco     []string
	critical bool
}

func (err Error) Error() string { return err.message }

//Decorate adds new information to the error
func (E Error) Decorate(deco string) []string {
	//Even though this method does not use a pointer receiver and alters
	//the received, it works, since E.deco is a slice, hence a pointer itself.
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

func errDecorate(err error, caller string) error {
	err2 := err.(Error)
	err2.Decorate(caller)
	return err2
}

const (
	BadProfile    = "hifigo/nullfind: x and y must have the same length, of at least 2"
	NotIncreasing = "hifigo/nullfind: x values must be strictly increasing"
	NotBracketed  = "hifigo/nullfind: no sign change in the bracket"
	NoConvergence = "hifigo/nullfind: root refinement did not converge"
	FitFailed     = "hifigo/nullfind: could not fit a spline through the samples"
)
