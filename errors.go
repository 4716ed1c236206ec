/*
 * errors.go, part of hifigo.
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

import "fmt"

//Error is the interface for hifigo errors. Decorate allows adding
//information to an error as it is passed up the calling stack, and
//returns the current decoration slice. Each element should be the name
//of a function in the stack, possibly followed by extra information in
//the format "FunctionName: Extra info". When passed an empty string,
//Decorate returns the current slice without adding anything.
type Error interface {
	Error() string
	Decorate(string) []string
}

//FileError is the interface for errors tied to one of the files of a
//run directory. It is satisfied by the error types of the subpackages
//that read files, so a caller can recover the offending file name from
//an error that crossed several layers.
type FileError interface {
	Error
	Critical() bool
	FileName() string
	Format() string
}

//errDecorate asserts that err implements Error and decorates it with
//the caller's name before returning it. Used with an error that does
//not implement Error, it panics.
func errDecorate(err error, caller string) error {
	err2 := err.(Error)
	err2.Decorate(caller)
	return err2
}

//CError is the concrete error type of the main package. It fulfills
//Error and FileError.
type CError struct {
	message  string
	filename string //the file or directory with problems, or empty if none
	deco     []string
	critical bool
}

func (err CError) Error() string {
	return fmt.Sprintf("hifi %s error: %s", err.filename, err.message)
}

//Decorate adds new information to the error
func (E CError) Decorate(deco string) []string {
	//Even though this method does not use a pointer receiver and alters
	//the received, it works, since E.deco is a slice, hence a pointer itself.
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

//FileName returns the file or directory associated to the error
func (err CError) FileName() string { return err.filename }

//Format returns the nominal format of the file associated to the error
func (err CError) Format() string { return "hifi" }

//Critical returns true if the error is critical, false otherwise
func (err CError) Critical() bool { return err.critical }

const (
	NotADirectory    = "Not a directory"
	GridFileMissing  = "No grid file (grid*.h5) in directory"
	DataFilesMissing = "No data files (post*.h5) in directory"
	SidecarMissing   = "Missing XDMF sidecar for data file"
	TimeUnparsable   = "Cannot read the timestamp from sidecar"
	TimeDuplicated   = "Duplicated timestamp in sidecars"
	WrongGridShape   = "Grid coordinate arrays have mismatched shapes"
	BadSequenceName  = "Data file name carries no sequence number"
	FieldUnknown     = "Unknown field name"
	StepOutOfRange   = "Timestep out of range"
)
