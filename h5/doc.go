/*
 * doc.go, part of hifigo.
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

//Package h5 reads (and, to a small extent, writes) HDF5 files as produced
//by the HiFi post-processor, without cgo or a libhdf5 installation.
//
//The reader covers the subset of the format that simulation output written
//with the classic 1.8-era library actually uses: superblock versions 0 and 1
//(plus 2 and 3, which carry a checksum), version 1 object headers with
//continuation blocks (plus the version 2 "OHDR" variant), symbol-table
//groups backed by a version 1 B-tree and a local heap, and datasets stored
//compact, contiguous, or chunked through a version 1 chunk B-tree. Chunks
//may be passed through the deflate, shuffle, Fletcher-32 and Zstandard
//filters. Numeric datasets of IEEE float and fixed-point classes are
//decoded to float64.
//
//Anything outside that subset (fractal-heap groups, later chunk indexes,
//compound or variable length datatypes) fails with an explicit error
//rather than a wrong answer.
//
//The writer emits the same classic layout the reader consumes, one root
//group of float64 datasets, so synthetic simulation directories can be
//put together for tests and tooling.
package h5
