package h5

import (
	"encoding/binary"
	"math"
)

//Dataset is one named array inside an open file. It holds the parsed
//metadata only; the data itself is read from disk on each Read call.
type Dataset struct {
	f       *File
	name    string
	space   *dataspace
	dtype   *datatype
	layout  *layoutInfo
	filters []filterEntry
}

//Name returns the key under which the dataset is stored.
func (d *Dataset) Name() string { return d.name }

//Dims returns the dimensions of the dataset, slowest varying first.
func (d *Dataset) Dims() []int {
	out := make([]int, len(d.space.dims))
	for i, v := range d.space.dims {
		out[i] = int(v)
	}
	return out
}

//Len returns the total number of elements in the dataset.
func (d *Dataset) Len() int {
	return int(d.space.elements())
}

//Read decodes the whole dataset into a newly allocated row-major slice,
//widening the stored numeric type to float64.
func (d *Dataset) Read() ([]float64, error) {
	raw, err := d.readRaw()
	if err != nil {
		return nil, errDecorate(err, "Read")
	}
	n := int(d.space.elements())
	out := make([]float64, n)
	es := d.dtype.size
	var order binary.ByteOrder = binary.LittleEndian
	if d.dtype.bigEndian {
		order = binary.BigEndian
	}
	if len(raw) < n*es {
		return nil, Error{TruncatedFile, d.f.name, []string{"Read"}, true}
	}
	switch {
	case d.dtype.class == classFloat && es == 8:
		for i := 0; i < n; i++ {
			out[i] = math.Float64frombits(order.Uint64(raw[i*8:]))
		}
	case d.dtype.class == classFloat && es == 4:
		for i := 0; i < n; i++ {
			out[i] = float64(math.Float32frombits(order.Uint32(raw[i*4:])))
		}
	case d.dtype.class == classFixed && d.dtype.signed:
		for i := 0; i < n; i++ {
			out[i] = float64(readInt(raw[i*es:], es, order))
		}
	case d.dtype.class == classFixed:
		for i := 0; i < n; i++ {
			out[i] = float64(readUint(raw[i*es:], es, order))
		}
	default:
		return nil, Error{BadDatatype, d.f.name, []string{"Read"}, true}
	}
	return out, nil
}

//ReadMatrix decodes a rank 2 dataset, returning its dimensions and its
//row-major data. Any other rank is an error.
func (d *Dataset) ReadMatrix() (rows, cols int, data []float64, err error) {
	if len(d.space.dims) != 2 {
		return 0, 0, nil, Error{WrongRank, d.f.name, []string{"ReadMatrix"}, true}
	}
	data, err = d.Read()
	if err != nil {
		return 0, 0, nil, errDecorate(err, "ReadMatrix")
	}
	return int(d.space.dims[0]), int(d.space.dims[1]), data, nil
}

func (d *Dataset) readRaw() ([]byte, error) {
	if d.f.closed {
		return nil, Error{FileClosed, d.f.name, []string{"Read"}, true}
	}
	es := d.dtype.size
	total := int(d.space.elements()) * es
	switch d.layout.class {
	case layoutCompact:
		if len(d.layout.compact) < total {
			return nil, Error{BadLayout, d.f.name, []string{"readRaw"}, true}
		}
		return d.layout.compact, nil
	case layoutContiguous:
		if undefined(d.layout.dataAddr, d.f.cur.offSize) {
			//never written: the default fill value is all zeros
			return make([]byte, total), nil
		}
		c := d.f.cur.at(d.layout.dataAddr)
		return c.bytes(total)
	case layoutChunked:
		return d.readChunked(total)
	}
	return nil, Error{UnsupportedFeature, d.f.name, []string{"readRaw"}, true}
}

func (d *Dataset) readChunked(total int) ([]byte, error) {
	es := d.dtype.size
	rank := len(d.space.dims)
	if len(d.layout.chunk) != rank {
		return nil, Error{BadLayout, d.f.name, []string{"readRaw"}, true}
	}
	out := make([]byte, total)
	if undefined(d.layout.dataAddr, d.f.cur.offSize) {
		return out, nil //no chunks were ever written
	}
	locs, err := d.f.readChunkBTree(d.layout.dataAddr, rank, 0)
	if err != nil {
		return nil, err
	}
	chunkElems := 1
	for _, cd := range d.layout.chunk {
		chunkElems *= int(cd)
	}
	for _, loc := range locs {
		c := d.f.cur.at(loc.addr)
		cdata, err := c.bytes(int(loc.size))
		if err != nil {
			return nil, errDecorate(err, "readRaw")
		}
		cdata, err = decodePipeline(d.filters, loc.mask, cdata, es, d.f.name)
		if err != nil {
			return nil, err
		}
		if len(cdata) < chunkElems*es {
			return nil, Error{FilterFailed, d.f.name, []string{"readRaw"}, true}
		}
		d.copyChunk(out, cdata, loc.offset)
	}
	return out, nil
}

//copyChunk places one decoded chunk into the row-major output buffer.
//Chunks are always stored whole, so a chunk that sticks out past the
//dataset bounds is clipped.
func (d *Dataset) copyChunk(dst, src []byte, off []uint64) {
	es := d.dtype.size
	rank := len(d.space.dims)
	dims := d.space.dims
	chunk := d.layout.chunk

	dstStride := make([]int, rank)
	srcStride := make([]int, rank)
	dstStride[rank-1], srcStride[rank-1] = 1, 1
	for i := rank - 2; i >= 0; i-- {
		dstStride[i] = dstStride[i+1] * int(dims[i+1])
		srcStride[i] = srcStride[i+1] * int(chunk[i+1])
	}
	dstBase := 0
	for i := 0; i < rank; i++ {
		if off[i] >= dims[i] {
			return //entirely outside, nothing to copy
		}
		dstBase += int(off[i]) * dstStride[i]
	}
	var recur func(dim, dstPos, srcPos int)
	recur = func(dim, dstPos, srcPos int) {
		extent := int(chunk[dim])
		if rem := int(dims[dim] - off[dim]); rem < extent {
			extent = rem
		}
		if dim == rank-1 {
			copy(dst[dstPos*es:(dstPos+extent)*es], src[srcPos*es:(srcPos+extent)*es])
			return
		}
		for i := 0; i < extent; i++ {
			recur(dim+1, dstPos+i*dstStride[dim], srcPos+i*srcStride[dim])
		}
	}
	recur(0, dstBase, 0)
}

func readInt(b []byte, size int, order binary.ByteOrder) int64 {
	switch size {
	case 1:
		return int64(int8(b[0]))
	case 2:
		return int64(int16(order.Uint16(b)))
	case 4:
		return int64(int32(order.Uint32(b)))
	default:
		return int64(order.Uint64(b))
	}
}

func readUint(b []byte, size int, order binary.ByteOrder) uint64 {
	switch size {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(order.Uint16(b))
	case 4:
		return uint64(order.Uint32(b))
	default:
		return order.Uint64(b)
	}
}
