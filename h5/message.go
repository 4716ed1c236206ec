package h5

import (
	"encoding/binary"
)

//datatype classes as numbered by the HDF5 format.
const (
	classFixed  = 0
	classFloat  = 1
	classTime   = 2
	classString = 3
)

type dataspace struct {
	dims []uint64
}

func (ds *dataspace) elements() uint64 {
	n := uint64(1)
	for _, d := range ds.dims {
		n *= d
	}
	return n
}

/*
Dataspace message, version 1:
	version (1), dimensionality (1), flags (1), reserved (5),
	dimension sizes (lengthSize each), then max sizes if flag bit 0.
Version 2:
	version (1), dimensionality (1), flags (1), type (1),
	dimension sizes (lengthSize each).
*/
func parseDataspace(data []byte, lenSize int, fname string) (*dataspace, error) {
	bad := Error{BadDataspace, fname, []string{"parseDataspace"}, true}
	if len(data) < 4 {
		return nil, bad
	}
	rank := int(data[1])
	var off int
	switch data[0] {
	case 1:
		off = 8
	case 2:
		off = 4
	default:
		return nil, bad
	}
	if rank < 0 || len(data) < off+rank*lenSize {
		return nil, bad
	}
	ds := &dataspace{dims: make([]uint64, rank)}
	for i := 0; i < rank; i++ {
		ds.dims[i] = leUint(data[off+i*lenSize:], lenSize)
	}
	return ds, nil
}

type datatype struct {
	class     int
	size      int //element size in bytes
	bigEndian bool
	signed    bool //fixed-point only
}

/*
Datatype message: class and version (1, class in the low nibble),
24 bits of class-specific flags, size (4), then class properties.
Bit 0 of the flags is the byte order; bit 3 of the fixed-point flags
is the sign. Only the fixed-point and IEEE float classes are decoded,
everything else is reported as unsupported.
*/
func parseDatatype(data []byte, fname string) (*datatype, error) {
	if len(data) < 8 {
		return nil, Error{BadDatatype, fname, []string{"parseDatatype"}, true}
	}
	dt := &datatype{
		class:     int(data[0] & 0x0f),
		size:      int(binary.LittleEndian.Uint32(data[4:8])),
		bigEndian: data[1]&0x01 != 0,
		signed:    data[1]&0x08 != 0,
	}
	if dt.class != classFixed && dt.class != classFloat {
		return nil, Error{BadDatatype, fname, []string{"parseDatatype"}, true}
	}
	switch dt.size {
	case 1, 2, 4, 8:
	default:
		return nil, Error{BadDatatype, fname, []string{"parseDatatype"}, true}
	}
	if dt.class == classFloat && dt.size < 4 {
		return nil, Error{BadDatatype, fname, []string{"parseDatatype"}, true}
	}
	return dt, nil
}

//data layout classes.
const (
	layoutCompact    = 0
	layoutContiguous = 1
	layoutChunked    = 2
)

type layoutInfo struct {
	class    int
	dataAddr uint64 //raw data address (contiguous) or chunk B-tree address
	dataSize uint64 //contiguous only
	compact  []byte //compact only
	chunk    []uint32
	elemSize uint32 //chunked only, from the layout message
}

/*
Data layout message. Versions 1 and 2 carry the dimensionality at byte 1
and the class at byte 2, then an address for non-compact classes, the
dimension sizes (4 bytes each), the element size if chunked, and the
compact data size and bytes if compact. Version 3 carries the class at
byte 1 with per-class properties: compact is size (2) plus bytes,
contiguous is address plus length, chunked is dimensionality (1), B-tree
address, then dimensionality-1 chunk dimensions and the element size
(4 bytes each; the element size is stored as a final dimension).
*/
func parseLayout(data []byte, offSize, lenSize int, fname string) (*layoutInfo, error) {
	bad := Error{BadLayout, fname, []string{"parseLayout"}, true}
	if len(data) < 2 {
		return nil, bad
	}
	switch data[0] {
	case 1, 2:
		return parseLayoutV1(data, offSize, fname)
	case 3:
		return parseLayoutV3(data, offSize, lenSize, fname)
	}
	return nil, Error{UnsupportedFeature, fname, []string{"parseLayout"}, true}
}

func parseLayoutV1(data []byte, offSize int, fname string) (*layoutInfo, error) {
	bad := Error{BadLayout, fname, []string{"parseLayout"}, true}
	if len(data) < 8 {
		return nil, bad
	}
	rank := int(data[1])
	li := &layoutInfo{class: int(data[2])}
	off := 8 //version, rank, class, 5 reserved
	if li.class != layoutCompact {
		if len(data) < off+offSize {
			return nil, bad
		}
		li.dataAddr = leUint(data[off:], offSize)
		off += offSize
	}
	if len(data) < off+4*rank {
		return nil, bad
	}
	for i := 0; i < rank; i++ {
		li.chunk = append(li.chunk, binary.LittleEndian.Uint32(data[off:]))
		off += 4
	}
	switch li.class {
	case layoutChunked:
		if len(data) < off+4 {
			return nil, bad
		}
		li.elemSize = binary.LittleEndian.Uint32(data[off:])
	case layoutCompact:
		if len(data) < off+4 {
			return nil, bad
		}
		n := int(binary.LittleEndian.Uint32(data[off:]))
		off += 4
		if len(data) < off+n {
			return nil, bad
		}
		li.compact = data[off : off+n]
		li.chunk = nil
	case layoutContiguous:
		//v1/v2 contiguous stores dimension sizes we do not need; the
		//byte count comes from the dataspace and datatype instead.
		li.chunk = nil
	}
	return li, nil
}

func parseLayoutV3(data []byte, offSize, lenSize int, fname string) (*layoutInfo, error) {
	bad := Error{BadLayout, fname, []string{"parseLayout"}, true}
	li := &layoutInfo{class: int(data[1])}
	off := 2
	switch li.class {
	case layoutCompact:
		if len(data) < off+2 {
			return nil, bad
		}
		n := int(binary.LittleEndian.Uint16(data[off:]))
		off += 2
		if len(data) < off+n {
			return nil, bad
		}
		li.compact = data[off : off+n]
	case layoutContiguous:
		if len(data) < off+offSize+lenSize {
			return nil, bad
		}
		li.dataAddr = leUint(data[off:], offSize)
		li.dataSize = leUint(data[off+offSize:], lenSize)
	case layoutChunked:
		if len(data) < off+1 {
			return nil, bad
		}
		//the stored dimensionality counts the element size as a
		//trailing dimension
		rank := int(data[off]) - 1
		off++
		if rank < 0 || len(data) < off+offSize+4*(rank+1) {
			return nil, bad
		}
		li.dataAddr = leUint(data[off:], offSize)
		off += offSize
		for i := 0; i < rank; i++ {
			li.chunk = append(li.chunk, binary.LittleEndian.Uint32(data[off:]))
			off += 4
		}
		li.elemSize = binary.LittleEndian.Uint32(data[off:])
	default:
		return nil, Error{UnsupportedFeature, fname, []string{"parseLayout"}, true}
	}
	return li, nil
}

//registered filter identifiers.
const (
	filterDeflate    = 1
	filterShuffle    = 2
	filterFletcher32 = 3
	filterSzip       = 4
	filterNbit       = 5
	filterScale      = 6
	filterZstd       = 32015 //registered community identifier for Zstandard
)

type filterEntry struct {
	id       uint16
	flags    uint16
	cd       []uint32
	optional bool
}

/*
Filter pipeline message. Version 1: version (1), number of filters (1),
6 reserved bytes, then for each filter: id (2), name length (2),
flags (2), number of client data values (2), name padded to 8 bytes,
client data (4 each), plus 4 bytes of padding when the count is odd.
Version 2 drops the reserved bytes, the name for ids below 256, and the
padding.
*/
func parsePipeline(data []byte, fname string) ([]filterEntry, error) {
	bad := Error{BadPipeline, fname, []string{"parsePipeline"}, true}
	if len(data) < 2 {
		return nil, bad
	}
	version := data[0]
	nf := int(data[1])
	var off int
	switch version {
	case 1:
		off = 8
	case 2:
		off = 2
	default:
		return nil, bad
	}
	filters := make([]filterEntry, 0, nf)
	for i := 0; i < nf; i++ {
		if len(data) < off+8 {
			return nil, bad
		}
		var fe filterEntry
		fe.id = binary.LittleEndian.Uint16(data[off:])
		off += 2
		nameLen := 0
		if version == 1 || fe.id >= 256 {
			nameLen = int(binary.LittleEndian.Uint16(data[off:]))
			off += 2
		}
		fe.flags = binary.LittleEndian.Uint16(data[off:])
		fe.optional = fe.flags&0x01 != 0
		off += 2
		ncd := int(binary.LittleEndian.Uint16(data[off:]))
		off += 2
		if version == 1 && nameLen%8 != 0 {
			nameLen += 8 - nameLen%8
		}
		off += nameLen
		if len(data) < off+4*ncd {
			return nil, bad
		}
		for j := 0; j < ncd; j++ {
			fe.cd = append(fe.cd, binary.LittleEndian.Uint32(data[off:]))
			off += 4
		}
		if version == 1 && ncd%2 != 0 {
			off += 4
		}
		filters = append(filters, fe)
	}
	return filters, nil
}

//parseSymbolTable reads a symbol table message: the addresses of the
//group's B-tree and local heap.
func parseSymbolTable(data []byte, offSize int, fname string) (btree, heap uint64, err error) {
	if len(data) < 2*offSize {
		return 0, 0, Error{BadSymbolTable, fname, []string{"parseSymbolTable"}, true}
	}
	return leUint(data, offSize), leUint(data[offSize:], offSize), nil
}

/*
Link message, version 1: version (1), flags (1), optional link type
(flag bit 3), optional creation order (8, flag bit 2), optional name
charset (1, flag bit 4), name length (1<<(flags&3) bytes), name, then
the link information. Hard links store an object header address; every
other link type is ignored by this reader.
*/
func parseLink(data []byte, offSize int, fname string) (name string, addr uint64, hard bool, err error) {
	bad := Error{BadObjectHeader, fname, []string{"parseLink"}, true}
	if len(data) < 2 || data[0] != 1 {
		return "", 0, false, bad
	}
	flags := data[1]
	off := 2
	linkType := 0
	if flags&0x08 != 0 {
		if len(data) <= off {
			return "", 0, false, bad
		}
		linkType = int(data[off])
		off++
	}
	if flags&0x04 != 0 {
		off += 8
	}
	if flags&0x10 != 0 {
		off++
	}
	nlSize := 1 << (flags & 0x03)
	if len(data) < off+nlSize {
		return "", 0, false, bad
	}
	nameLen := int(leUint(data[off:], nlSize))
	off += nlSize
	if len(data) < off+nameLen {
		return "", 0, false, bad
	}
	name = string(data[off : off+nameLen])
	off += nameLen
	if linkType != 0 {
		return name, 0, false, nil
	}
	if len(data) < off+offSize {
		return "", 0, false, bad
	}
	return name, leUint(data[off:], offSize), true, nil
}
