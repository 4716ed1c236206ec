/*
 * field.go, part of hifigo.
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
 */

//Package field implements the 2D scalar fields tracked by the HiFi
//post-processor as thin wrappers over gonum dense matrices. Within the
//package it is understood that a field is sampled on the simulation mesh
//with the row index following y and the column index following x, so a
//field over an ny x nx mesh is an ny x nx matrix.
package field

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

//The main container, must be able to implement any
//gonum interface. Matrix is one scalar field sampled over the mesh.
type Matrix struct {
	*mat.Dense
}

func Matrix2Dense(A *Matrix) *mat.Dense {
	return A.Dense
}

func Dense2Matrix(A *mat.Dense) *Matrix {
	return &Matrix{A}
}

//New generates and returns a Matrix with r rows and c columns backed by data,
//which is read in row-major order.
func New(r, c int, data []float64) (*Matrix, error) {
	if r <= 0 || c <= 0 {
		return nil, Error{fmt.Sprintf("Invalid field dimensions %dx%d", r, c), []string{"New"}, true}
	}
	if len(data) != r*c {
		return nil, Error{fmt.Sprintf("Data length %d does not fill a %dx%d field", len(data), r, c), []string{"New"}, true}
	}
	return &Matrix{mat.NewDense(r, c, data)}, nil
}

//Zeros returns a zero-filled Matrix with r rows and c columns.
func Zeros(r, c int) *Matrix {
	if r <= 0 || c <= 0 {
		panic(ErrShape)
	}
	return &Matrix{mat.NewDense(r, c, make([]float64, r*c))}
}

//Rows returns the number of rows (the y extent) of the receiver.
func (F *Matrix) Rows() int {
	r, _ := F.Dims()
	return r
}

//Cols returns the number of columns (the x extent) of the receiver.
func (F *Matrix) Cols() int {
	_, c := F.Dims()
	return c
}

//Row returns a copy of the ith row of the receiver, i.e. the field values
//along x at the ith y node.
func (F *Matrix) Row(i int) []float64 {
	r, c := F.Dims()
	if i < 0 || i >= r {
		panic(ErrIndexOutOfRange)
	}
	ret := make([]float64, c)
	mat.Row(ret, i, F.Dense)
	return ret
}

//Col returns a copy of the jth column of the receiver, i.e. the field values
//along y at the jth x node.
func (F *Matrix) Col(j int) []float64 {
	r, c := F.Dims()
	if j < 0 || j >= c {
		panic(ErrIndexOutOfRange)
	}
	ret := make([]float64, r)
	mat.Col(ret, j, F.Dense)
	return ret
}

//View returns a view of F starting from i,j and spanning r rows and
//c columns. Changes in the view are reflected in F and vice-versa.
func (F *Matrix) View(i, j, r, c int) *Matrix {
	ret := F.Dense.Slice(i, j, i+r, j+c).(*mat.Dense)
	return &Matrix{ret}
}

//Copy returns a new Matrix with a copy of the data in the receiver.
func (F *Matrix) Copy() *Matrix {
	r, c := F.Dims()
	ret := mat.NewDense(r, c, nil)
	ret.Copy(F.Dense)
	return &Matrix{ret}
}

//Div puts the elementwise quotient num/den in the receiver. Division by
//zero is left to IEEE arithmetic, so quotients at zero-valued den nodes
//come out as +/-Inf or NaN and are never silently replaced.
func (F *Matrix) Div(num, den *Matrix) {
	nr, nc := num.Dims()
	dr, dc := den.Dims()
	fr, fc := F.Dims()
	if nr != dr || nc != dc || nr != fr || nc != fc {
		panic(ErrShape)
	}
	F.Dense.DivElem(num.Dense, den.Dense)
}

//Scale multiplies every element of A by k and puts the result in the
//receiver. F and A may be the same matrix.
func (F *Matrix) Scale(k float64, A *Matrix) {
	ar, ac := A.Dims()
	fr, fc := F.Dims()
	if ar != fr || ac != fc {
		panic(ErrShape)
	}
	F.Dense.Scale(k, A.Dense)
}

//Equal tells whether F and A have the same dimensions and exactly the
//same elements. NaNs compare unequal, as usual.
func (F *Matrix) Equal(A *Matrix) bool {
	if A == nil || F == nil {
		return false
	}
	return mat.Equal(F.Dense, A.Dense)
}

//String returns a printable representation of the receiver.
func (F *Matrix) String() string {
	return fmt.Sprintf("%v", mat.Formatted(F.Dense, mat.Squeeze()))
}

//Error is the general structure for field errors. It fulfills the error
//interfaces of the parent package without importing it.
type Error struct {
	message  string
	deco     []string
	critical bool
}

//Error returns a string with an error message.
func (err Error) Error() string {
	return err.message
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	err.deco = append(err.deco, dec)
	return err.deco
}

//Critical returns whether the error is critical or it can be ignored.
func (err Error) Critical() bool { return err.critical }

//PanicMsg is a message used for panics on programming errors, even though
//it does satisfy the error interface. For recoverable conditions use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrShape           = PanicMsg("hifigo/field: Dimension mismatch")
	ErrIndexOutOfRange = PanicMsg("hifigo/field: index out of range")
)
