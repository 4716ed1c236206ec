/*
 * h5.go, part of hifigo.
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

package h5

import (
	"fmt"
	"os"
	"sort"
)

//File is an HDF5 file open for reading. The root group is scanned once
//at Open; datasets are located by name and decoded on demand.
type File struct {
	name   string
	osf    *os.File
	cur    *cursor
	sb     *superblock
	objs   map[string]uint64
	keys   []string
	closed bool
}

//Open opens an HDF5 file and indexes its root group.
func Open(name string) (*File, error) {
	osf, err := os.Open(name)
	if err != nil {
		return nil, Error{fmt.Sprintf("%s: %s", UnableToOpen, err.Error()), name, []string{"Open"}, true}
	}
	st, err := osf.Stat()
	if err != nil {
		osf.Close()
		return nil, Error{fmt.Sprintf("%s: %s", UnableToOpen, err.Error()), name, []string{"Open"}, true}
	}
	sb, err := readSuperblock(osf, st.Size(), name)
	if err != nil {
		osf.Close()
		return nil, err
	}
	f := &File{
		name: name,
		osf:  osf,
		sb:   sb,
		cur:  &cursor{r: osf, fname: name, base: sb.base, offSize: sb.offSize, lenSize: sb.lenSize},
		objs: make(map[string]uint64),
	}
	if err := f.loadRoot(); err != nil {
		osf.Close()
		return nil, err
	}
	return f, nil
}

//Name returns the path the file was opened with.
func (f *File) Name() string { return f.name }

//loadRoot fills the name to address index from the root group. Old style
//files keep the group B-tree and heap addresses cached in the superblock;
//otherwise they come from a symbol table message, or, in files written
//with the post 1.8 "latest" format, from link messages in the header.
func (f *File) loadRoot() error {
	var entries []symEntry
	if f.sb.rootCached {
		heapData, err := f.readLocalHeap(f.sb.rootHeap)
		if err != nil {
			return err
		}
		entries, err = f.readGroupBTree(f.sb.rootBTree, heapData, 0)
		if err != nil {
			return err
		}
	} else {
		oh, err := f.readObjectHeader(f.sb.rootAddr)
		if err != nil {
			return err
		}
		if stab := oh.find(msgSymbolTable); stab != nil {
			bt, hp, err := parseSymbolTable(stab, f.cur.offSize, f.name)
			if err != nil {
				return err
			}
			heapData, err := f.readLocalHeap(hp)
			if err != nil {
				return err
			}
			entries, err = f.readGroupBTree(bt, heapData, 0)
			if err != nil {
				return err
			}
		} else {
			for _, m := range oh.messages {
				if m.kind != msgLink {
					continue
				}
				name, addr, hard, err := parseLink(m.data, f.cur.offSize, f.name)
				if err != nil {
					return err
				}
				if hard {
					entries = append(entries, symEntry{name, addr})
				}
			}
			if len(entries) == 0 && denseLinks(oh.find(msgLinkInfo), f.cur.offSize) {
				return Error{UnsupportedFeature + ": dense link storage", f.name, []string{"Open"}, true}
			}
		}
	}
	for _, e := range entries {
		if _, dup := f.objs[e.name]; dup {
			continue
		}
		f.objs[e.name] = e.addr
		f.keys = append(f.keys, e.name)
	}
	sort.Strings(f.keys)
	return nil
}

//denseLinks reports whether a link info message points at a fractal heap,
//meaning the group's links live outside the object header.
func denseLinks(data []byte, offSize int) bool {
	if len(data) < 2 {
		return false
	}
	off := 2
	if data[1]&0x01 != 0 {
		off += 8 //maximum creation index
	}
	if len(data) < off+offSize {
		return false
	}
	return !undefined(leUint(data[off:], offSize), offSize)
}

//Keys returns the names of the objects in the root group, sorted.
func (f *File) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

//Dataset locates the named dataset in the root group and parses its
//metadata. The data itself is not touched until Read.
func (f *File) Dataset(key string) (*Dataset, error) {
	if f.closed {
		return nil, Error{FileClosed, f.name, []string{"Dataset"}, true}
	}
	addr, ok := f.objs[key]
	if !ok {
		return nil, Error{fmt.Sprintf("%s: %q", KeyMissing, key), f.name, []string{"Dataset"}, true}
	}
	oh, err := f.readObjectHeader(addr)
	if err != nil {
		return nil, errDecorate(err, "Dataset "+key)
	}
	sdata := oh.find(msgDataspace)
	tdata := oh.find(msgDatatype)
	ldata := oh.find(msgLayout)
	if sdata == nil || tdata == nil || ldata == nil {
		return nil, Error{fmt.Sprintf("%s: %q", NotADataset, key), f.name, []string{"Dataset"}, true}
	}
	space, err := parseDataspace(sdata, f.cur.lenSize, f.name)
	if err != nil {
		return nil, errDecorate(err, "Dataset "+key)
	}
	dtype, err := parseDatatype(tdata, f.name)
	if err != nil {
		return nil, errDecorate(err, "Dataset "+key)
	}
	layout, err := parseLayout(ldata, f.cur.offSize, f.cur.lenSize, f.name)
	if err != nil {
		return nil, errDecorate(err, "Dataset "+key)
	}
	var filters []filterEntry
	if pdata := oh.find(msgPipeline); pdata != nil {
		filters, err = parsePipeline(pdata, f.name)
		if err != nil {
			return nil, errDecorate(err, "Dataset "+key)
		}
	}
	return &Dataset{f: f, name: key, space: space, dtype: dtype, layout: layout, filters: filters}, nil
}

//Close releases the underlying file descriptor. Datasets obtained from
//the file must not be read afterwards.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.osf.Close()
}
