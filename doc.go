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

/*Package hifi is the main package of the hifigo library. It reads the
post-processed output of HiFi (also known as SEL) spectral-element
extended-magnetohydrodynamics simulations: the grid file plus the numbered
snapshot files a run directory accumulates, and exposes the physical
fields under their usual names.


	**hifigo Capabilities**


    Reads the grid file (grid*.h5) of a run and recovers the 2D coordinate
	arrays, plus the 1D axes whenever the grid is a tensor product of them.

    Scans a run directory for snapshot files (post*.h5), orders them by their
	sequence number (numerically, so post_10 comes after post_9), and takes
	each timestamp from the XDMF sidecar that the post-processor writes next
	to every snapshot.

    Presents the raw U01...U13 datasets under their physical names (ni, Az,
	Bz, Vix and so on) through a Dataset type. Velocities are derived on
	access from the stored momentum densities, dividing by the corresponding
	species density. Fields are read lazily, one snapshot at a time, so a
	long run does not need to fit in memory.

    Reads the underlying HDF5 files with a pure Go reader (subpackage h5),
	so neither cgo nor a libhdf5 installation is needed. The same subpackage
	can write small files in the classic format, which is how the tests
	build their synthetic run directories.

    Finds the zeros of sampled 1D profiles (subpackage nullfind), e.g. to
	locate magnetic nulls along an axis, with a natural cubic spline plus
	Brent refinement.

    Renders heat maps of field snapshots and time series of scalar probes
	to PNG (subpackage hifiplot).



Matrices are handled by the subpackage field, a thin wrapper around
gonum's mat.Dense that adds the couple of operations the library needs.
Element-wise division follows IEEE 754: dividing by zero yields an
infinity or a NaN, which is then visible in the derived field rather
than silently replaced.*/
package hifi
