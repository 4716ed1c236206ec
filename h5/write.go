package h5

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sort"
)

//Filter identifiers accepted by PutCompressed, in the order they should
//be applied. Shuffle before a compressor, Fletcher32 last.
const (
	Deflate    = filterDeflate
	Shuffle    = filterShuffle
	Fletcher32 = filterFletcher32
	Zstd       = filterZstd
)

//the group leaf K written in the superblock is 32, so one symbol node
//holds the whole root group
const maxRootEntries = 64

const undefAddr = ^uint64(0)

type wdset struct {
	name    string
	dims    []uint64
	payload []byte //after any filters
	filters []filterEntry

	//assigned during layout
	ohAddr    uint64
	ohMsgSize int
	dataAddr  uint64 //raw data, or the chunk B-tree when filtered
	chunkAddr uint64
	nameOff   uint64
}

//Writer accumulates float64 datasets and serializes them as one classic
//format HDF5 file, root group only, when Close is called.
type Writer struct {
	name   string
	osf    *os.File
	dsets  []*wdset
	byName map[string]bool
	closed bool
}

//Create opens the named file for writing. Nothing is written until Close.
func Create(name string) (*Writer, error) {
	osf, err := os.Create(name)
	if err != nil {
		return nil, Error{fmt.Sprintf("%s: %s", UnableToOpen, err.Error()), name, []string{"Create"}, true}
	}
	return &Writer{name: name, osf: osf, byName: make(map[string]bool)}, nil
}

//Put adds a rank 2 dataset of rows x cols float64 values in row-major
//order, stored contiguous and uncompressed.
func (w *Writer) Put(key string, rows, cols int, data []float64) error {
	if rows <= 0 || cols <= 0 {
		return Error{fmt.Sprintf("%s: dimensions %dx%d", WriterMisuse, rows, cols), w.name, []string{"Put"}, true}
	}
	return w.put(key, []uint64{uint64(rows), uint64(cols)}, data, nil)
}

//Put1D adds a rank 1 dataset, stored contiguous and uncompressed.
func (w *Writer) Put1D(key string, data []float64) error {
	if len(data) == 0 {
		return Error{fmt.Sprintf("%s: empty dataset", WriterMisuse), w.name, []string{"Put1D"}, true}
	}
	return w.put(key, []uint64{uint64(len(data))}, data, nil)
}

//PutCompressed adds a rank 2 dataset stored as a single chunk passed
//through the given filters in order, e.g. (Shuffle, Deflate) or
//(Deflate, Fletcher32). With no filters it behaves like Put.
func (w *Writer) PutCompressed(key string, rows, cols int, data []float64, filters ...int) error {
	if len(filters) == 0 {
		return w.Put(key, rows, cols, data)
	}
	if rows <= 0 || cols <= 0 {
		return Error{fmt.Sprintf("%s: dimensions %dx%d", WriterMisuse, rows, cols), w.name, []string{"PutCompressed"}, true}
	}
	fes := make([]filterEntry, 0, len(filters))
	for _, id := range filters {
		switch id {
		case filterDeflate, filterShuffle, filterFletcher32, filterZstd:
			fes = append(fes, filterEntry{id: uint16(id)})
		default:
			return Error{fmt.Sprintf("%s: unknown filter %d", WriterMisuse, id), w.name, []string{"PutCompressed"}, true}
		}
	}
	return w.put(key, []uint64{uint64(rows), uint64(cols)}, data, fes)
}

func (w *Writer) put(key string, dims []uint64, data []float64, filters []filterEntry) error {
	if w.closed {
		return Error{WriterMisuse + ": writer already closed", w.name, []string{"Put"}, true}
	}
	if key == "" || w.byName[key] {
		return Error{fmt.Sprintf("%s: bad or duplicate key %q", WriterMisuse, key), w.name, []string{"Put"}, true}
	}
	if len(w.dsets) >= maxRootEntries {
		return Error{fmt.Sprintf("%s: more than %d datasets", WriterMisuse, maxRootEntries), w.name, []string{"Put"}, true}
	}
	n := 1
	for _, d := range dims {
		n *= int(d)
	}
	if n != len(data) {
		return Error{fmt.Sprintf("%s: %d values for %v dataset", WriterMisuse, len(data), dims), w.name, []string{"Put"}, true}
	}
	raw := make([]byte, 8*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint64(raw[i*8:], math.Float64bits(v))
	}
	d := &wdset{name: key, dims: dims, payload: raw}
	if len(filters) > 0 {
		enc, out, err := encodePipeline(filters, raw)
		if err != nil {
			return Error{fmt.Sprintf("%s: %s", FilterFailed, err.Error()), w.name, []string{"Put"}, true}
		}
		d.filters, d.payload = enc, out
	}
	w.dsets = append(w.dsets, d)
	w.byName[key] = true
	return nil
}

//encodePipeline runs the payload through the filters in forward order
//and fills in the client data each filter records in the file.
func encodePipeline(filters []filterEntry, data []byte) ([]filterEntry, []byte, error) {
	out := data
	done := make([]filterEntry, len(filters))
	for i, fe := range filters {
		var err error
		switch fe.id {
		case filterShuffle:
			out = shuffle(out, 8)
			fe.cd = []uint32{8}
		case filterDeflate:
			out, err = deflate(out, 6)
			fe.cd = []uint32{6}
		case filterZstd:
			out, err = zstdCompress(out)
			fe.cd = []uint32{3}
		case filterFletcher32:
			sum := fletcher32(out)
			out = append(out, 0, 0, 0, 0)
			binary.LittleEndian.PutUint32(out[len(out)-4:], sum)
		}
		if err != nil {
			return nil, nil, err
		}
		done[i] = fe
	}
	return done, out, nil
}

/*
Close lays the file out and writes it:

	superblock (v0, 8 byte offsets and lengths)
	root group object header (one symbol table message)
	group B-tree node pointing at one symbol node
	symbol node with every dataset, sorted by name
	local heap with the names
	per dataset: object header, then either the contiguous data or a one
	leaf chunk B-tree followed by the filtered chunk

All addresses are known before the first byte goes out, so the file is
streamed front to back.
*/
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	sort.Slice(w.dsets, func(i, j int) bool { return w.dsets[i].name < w.dsets[j].name })

	const (
		sbSize    = 96
		rootOH    = sbSize            //96
		btreeAddr = rootOH + 40       //136
		snodAddr  = btreeAddr + 160   //296
		heapAddr  = snodAddr + 2568   //2864
		heapData  = heapAddr + 32     //2896
	)
	//heap layout: 8 reserved bytes, then each name NUL terminated and
	//padded to 8
	hoff := uint64(8)
	for _, d := range w.dsets {
		d.nameOff = hoff
		hoff += align8u(uint64(len(d.name)) + 1)
	}
	heapSize := hoff
	cur := uint64(heapData) + heapSize
	for _, d := range w.dsets {
		d.ohAddr = cur
		d.ohMsgSize = ohMessageSize(d)
		cur += 16 + uint64(d.ohMsgSize)
		d.dataAddr = cur
		if len(d.filters) > 0 {
			cur += chunkNodeSize
			d.chunkAddr = cur
		}
		cur += uint64(len(d.payload))
	}
	eof := cur

	bw := &leWriter{w: bufio.NewWriter(w.osf)}
	w.writeSuperblock(bw, eof, btreeAddr, heapAddr)
	w.writeRootHeader(bw, btreeAddr, heapAddr)
	w.writeGroupBTree(bw, snodAddr)
	w.writeSymbolNode(bw)
	w.writeHeap(bw, heapData, heapSize)
	for _, d := range w.dsets {
		w.writeDatasetHeader(bw, d)
		if len(d.filters) > 0 {
			w.writeChunkBTree(bw, d)
		}
		bw.b(d.payload)
	}
	if bw.err == nil {
		bw.err = bw.w.Flush()
	}
	cerr := w.osf.Close()
	if bw.err != nil {
		return Error{fmt.Sprintf("%s: %s", UnableToOpen, bw.err.Error()), w.name, []string{"Close"}, true}
	}
	if cerr != nil {
		return Error{fmt.Sprintf("%s: %s", UnableToOpen, cerr.Error()), w.name, []string{"Close"}, true}
	}
	return nil
}

func (w *Writer) writeSuperblock(bw *leWriter, eof, btree, heap uint64) {
	bw.b(signature)
	bw.u8(0) //superblock version
	bw.u8(0) //free space version
	bw.u8(0) //root group version
	bw.u8(0)
	bw.u8(0) //shared header version
	bw.u8(8) //offset size
	bw.u8(8) //length size
	bw.u8(0)
	bw.u16(32) //group leaf K
	bw.u16(4)  //group internal K
	bw.u32(0)  //consistency flags
	bw.u64(0)  //base address
	bw.u64(undefAddr)
	bw.u64(eof)
	bw.u64(undefAddr)
	//root symbol table entry, with the B-tree and heap cached
	bw.u64(0) //link name offset
	bw.u64(rootHeaderAddr)
	bw.u32(1) //cache type: group
	bw.u32(0)
	bw.u64(btree)
	bw.u64(heap)
}

const rootHeaderAddr = 96

func (w *Writer) writeRootHeader(bw *leWriter, btree, heap uint64) {
	bw.u8(1) //object header version
	bw.u8(0)
	bw.u16(1)  //message count
	bw.u32(1)  //reference count
	bw.u32(24) //message bytes
	bw.u32(0)  //padding to an 8 byte boundary
	bw.u16(msgSymbolTable)
	bw.u16(16)
	bw.u32(0) //flags, reserved
	bw.u64(btree)
	bw.u64(heap)
}

func (w *Writer) writeGroupBTree(bw *leWriter, snod uint64) {
	start := bw.n
	bw.b([]byte("TREE"))
	bw.u8(0) //node type: group
	bw.u8(0) //level
	used := 0
	if len(w.dsets) > 0 {
		used = 1
	}
	bw.u16(uint16(used))
	bw.u64(undefAddr) //left sibling
	bw.u64(undefAddr) //right sibling
	bw.u64(0)         //key 0: offset of the empty name
	if used == 1 {
		bw.u64(snod)
		//key 1: heap offset of the largest name in the child
		bw.u64(w.dsets[len(w.dsets)-1].nameOff)
	}
	bw.zeros(160 - int(bw.n-start))
}

func (w *Writer) writeSymbolNode(bw *leWriter) {
	start := bw.n
	bw.b([]byte("SNOD"))
	bw.u8(1) //version
	bw.u8(0)
	bw.u16(uint16(len(w.dsets)))
	for _, d := range w.dsets {
		bw.u64(d.nameOff)
		bw.u64(d.ohAddr)
		bw.u32(0) //cache type: none
		bw.u32(0)
		bw.zeros(16) //scratch
	}
	bw.zeros(2568 - int(bw.n-start))
}

func (w *Writer) writeHeap(bw *leWriter, dataAddr, dataSize uint64) {
	bw.b([]byte("HEAP"))
	bw.u8(0) //version
	bw.zeros(3)
	bw.u64(dataSize)
	bw.u64(undefAddr) //no free list
	bw.u64(dataAddr)
	start := bw.n
	bw.zeros(8)
	for _, d := range w.dsets {
		bw.b([]byte(d.name))
		bw.zeros(int(align8u(uint64(len(d.name))+1)) - len(d.name))
	}
	bw.zeros(int(dataSize) - int(bw.n-start))
}

//ohMessageSize returns the total message bytes of a dataset header:
//dataspace, datatype, fill value, layout, and the pipeline when the
//dataset is filtered. Every message is padded to 8 bytes.
func ohMessageSize(d *wdset) int {
	size := 8 + int(align8u(8+8*uint64(len(d.dims)))) //dataspace
	size += 8 + 24                                    //datatype (20 padded)
	size += 8 + 8                                     //fill value
	size += 8 + 24                                    //layout v3 (both classes pad to 24)
	if nf := len(d.filters); nf > 0 {
		size += 8 + 8 + 24*nf
	}
	return size
}

func (w *Writer) writeDatasetHeader(bw *leWriter, d *wdset) {
	nmsg := 4
	if len(d.filters) > 0 {
		nmsg = 5
	}
	bw.u8(1)
	bw.u8(0)
	bw.u16(uint16(nmsg))
	bw.u32(1)
	bw.u32(uint32(d.ohMsgSize))
	bw.u32(0)

	//dataspace, version 1
	sdata := int(align8u(8 + 8*uint64(len(d.dims))))
	bw.u16(msgDataspace)
	bw.u16(uint16(sdata))
	bw.u32(0)
	bw.u8(1) //version
	bw.u8(uint8(len(d.dims)))
	bw.u8(0) //flags: no maximum dims
	bw.zeros(5)
	for _, dim := range d.dims {
		bw.u64(dim)
	}
	bw.zeros(sdata - 8 - 8*len(d.dims))

	//datatype: IEEE 754 binary64, little endian
	bw.u16(msgDatatype)
	bw.u16(24)
	bw.u32(0)
	bw.b([]byte{
		0x11, 0x20, 0x3f, 0x00, //version 1, class float; LE, sign bit 63
		0x08, 0x00, 0x00, 0x00, //size
		0x00, 0x00, 0x40, 0x00, //bit offset 0, precision 64
		0x34, 0x0b, 0x00, 0x34, //exponent at 52 width 11, mantissa at 0 width 52
		0xff, 0x03, 0x00, 0x00, //exponent bias 1023
	})
	bw.zeros(4)

	//fill value, version 2: allocate late, never written
	bw.u16(msgFill)
	bw.u16(8)
	bw.u32(0)
	bw.b([]byte{2, 2, 0, 0})
	bw.zeros(4)

	if nf := len(d.filters); nf > 0 {
		bw.u16(msgPipeline)
		bw.u16(uint16(8 + 24*nf))
		bw.u32(0)
		bw.u8(1) //version
		bw.u8(uint8(nf))
		bw.zeros(6)
		for _, fe := range d.filters {
			name := filterName(fe.id)
			padded := int(align8u(uint64(len(name)) + 1))
			bw.u16(fe.id)
			bw.u16(uint16(len(name) + 1))
			bw.u16(0) //flags: mandatory
			bw.u16(uint16(len(fe.cd)))
			bw.b([]byte(name))
			bw.zeros(padded - len(name))
			for _, cd := range fe.cd {
				bw.u32(cd)
			}
			if len(fe.cd)%2 != 0 {
				bw.u32(0)
			}
		}
	}

	//layout, version 3
	bw.u16(msgLayout)
	bw.u16(24)
	bw.u32(0)
	start := bw.n
	bw.u8(3)
	if len(d.filters) == 0 {
		bw.u8(layoutContiguous)
		bw.u64(d.dataAddr)
		bw.u64(uint64(len(d.payload)))
	} else {
		bw.u8(layoutChunked)
		bw.u8(uint8(len(d.dims) + 1))
		bw.u64(d.dataAddr) //chunk B-tree
		for _, dim := range d.dims {
			bw.u32(uint32(dim)) //one chunk covers the dataset
		}
		bw.u32(8) //element size
	}
	bw.zeros(24 - int(bw.n-start))
}

//a rank 2 chunk B-tree node at the default K of 32, the size a reader
//built on the format defaults will fetch in one piece
const chunkNodeSize = 24 + 65*32 + 64*8

//writeChunkBTree emits a leaf with the single chunk of a filtered
//dataset. Keys carry the stored size, the filter mask and the chunk
//offset, with a trailing dimension for the element.
func (w *Writer) writeChunkBTree(bw *leWriter, d *wdset) {
	rank := len(d.dims)
	start := bw.n
	bw.b([]byte("TREE"))
	bw.u8(1) //node type: chunk
	bw.u8(0) //level
	bw.u16(1)
	bw.u64(undefAddr)
	bw.u64(undefAddr)
	bw.u32(uint32(len(d.payload)))
	bw.u32(0) //filter mask: all applied
	for i := 0; i <= rank; i++ {
		bw.u64(0)
	}
	bw.u64(d.chunkAddr)
	//final key: the offset just past the last chunk
	bw.u32(0)
	bw.u32(0)
	for _, dim := range d.dims {
		bw.u64(dim)
	}
	bw.u64(0)
	bw.zeros(chunkNodeSize - int(bw.n-start))
}

func filterName(id uint16) string {
	switch id {
	case filterDeflate:
		return "deflate"
	case filterShuffle:
		return "shuffle"
	case filterFletcher32:
		return "fletcher32"
	case filterZstd:
		return "zstd"
	}
	return "unknown"
}

func align8u(v uint64) uint64 {
	if v%8 != 0 {
		v += 8 - v%8
	}
	return v
}

//leWriter is a little endian writer with a sticky error and a running
//byte count, so block sizes can be asserted by padding to them.
type leWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (l *leWriter) b(p []byte) {
	if l.err != nil {
		return
	}
	var m int
	m, l.err = l.w.Write(p)
	l.n += int64(m)
}

func (l *leWriter) u8(v uint8)   { l.b([]byte{v}) }
func (l *leWriter) u16(v uint16) { var p [2]byte; binary.LittleEndian.PutUint16(p[:], v); l.b(p[:]) }
func (l *leWriter) u32(v uint32) { var p [4]byte; binary.LittleEndian.PutUint32(p[:], v); l.b(p[:]) }
func (l *leWriter) u64(v uint64) { var p [8]byte; binary.LittleEndian.PutUint64(p[:], v); l.b(p[:]) }

func (l *leWriter) zeros(n int) {
	if n <= 0 {
		return
	}
	l.b(make([]byte, n))
}
