/*
 * scan.go, part of hifigo.
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

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hifitools/hifigo/h5"
)

//timeRe matches the XDMF time declaration of a sidecar, e.g.
//<Time Value="1.250000e+00" />, with either quoting style and with or
//without spaces around the equals sign.
var timeRe = regexp.MustCompile(`Time\s+Value\s*=\s*["']([^"']+)["']`)

/*
ReadDirectory opens every snapshot file (post*.h5) of a run directory, in
the order of the sequence numbers embedded in their names, and reads the
timestamp of each one from its XDMF sidecar (<base>.xmf). It returns the
open handles and the timestamps, index-aligned. The caller owns the
handles and should close them when done; Dataset does this bookkeeping.

Every snapshot must have its sidecar, every sidecar must yield a
timestamp, and no two timestamps may coincide: a run directory violating
any of this is broken, and the scan fails rather than returning a file
list and a time list that do not correspond. On failure every handle
opened so far is closed.
*/
func ReadDirectory(dir string) ([]*h5.File, []float64, error) {
	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		return nil, nil, CError{NotADirectory, dir, []string{"ReadDirectory"}, true}
	}
	matches, err := filepath.Glob(filepath.Join(dir, "post*.h5"))
	if err != nil || len(matches) == 0 {
		return nil, nil, CError{DataFilesMissing, dir, []string{"ReadDirectory"}, true}
	}
	type seqFile struct {
		n    int
		path string
	}
	seqs := make([]seqFile, 0, len(matches))
	for _, m := range matches {
		n, err := sequenceNumber(m)
		if err != nil {
			return nil, nil, errDecorate(err, "ReadDirectory")
		}
		seqs = append(seqs, seqFile{n, m})
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i].n < seqs[j].n })
	files := make([]*h5.File, 0, len(seqs))
	times := make([]float64, 0, len(seqs))
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}
	seen := make(map[float64]string, len(seqs))
	for _, s := range seqs {
		t, err := sidecarTime(s.path)
		if err != nil {
			closeAll()
			return nil, nil, errDecorate(err, "ReadDirectory")
		}
		base := filepath.Base(s.path)
		if prev, dup := seen[t]; dup {
			closeAll()
			return nil, nil, CError{fmt.Sprintf("%s: %v in %s and %s", TimeDuplicated, t, prev, base), dir, []string{"ReadDirectory"}, true}
		}
		seen[t] = base
		f, err := h5.Open(s.path)
		if err != nil {
			closeAll()
			return nil, nil, errDecorate(err, "ReadDirectory")
		}
		files = append(files, f)
		times = append(times, t)
	}
	return files, times, nil
}

//sequenceNumber extracts the integer written right before the .h5
//extension, e.g. 12 from post_00012.h5. Snapshot names with no digits
//there cannot be ordered, which is an error.
func sequenceNumber(path string) (int, error) {
	base := strings.TrimSuffix(filepath.Base(path), ".h5")
	i := len(base)
	for i > 0 && base[i-1] >= '0' && base[i-1] <= '9' {
		i--
	}
	n, err := strconv.Atoi(base[i:])
	if err != nil {
		return 0, CError{fmt.Sprintf("%s: %q", BadSequenceName, filepath.Base(path)), path, []string{"sequenceNumber"}, true}
	}
	return n, nil
}

//sidecarTime reads the sidecar next to a snapshot file and parses the
//first time declaration in it.
func sidecarTime(h5path string) (float64, error) {
	side := strings.TrimSuffix(h5path, ".h5") + ".xmf"
	raw, err := os.ReadFile(side)
	if err != nil {
		return 0, CError{fmt.Sprintf("%s: %s", SidecarMissing, filepath.Base(side)), side, []string{"sidecarTime"}, true}
	}
	m := timeRe.FindSubmatch(raw)
	if m == nil {
		return 0, CError{TimeUnparsable, side, []string{"sidecarTime"}, true}
	}
	t, err := strconv.ParseFloat(strings.TrimSpace(string(m[1])), 64)
	if err != nil {
		return 0, CError{fmt.Sprintf("%s: %q", TimeUnparsable, m[1]), side, []string{"sidecarTime"}, true}
	}
	return t, nil
}
