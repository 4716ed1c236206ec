package h5

//symEntry is one link in a symbol-table group: a name (resolved through
//the group's local heap) and the address of the named object's header.
type symEntry struct {
	name string
	addr uint64
}

//bounds B-tree recursion so cyclic sibling/child pointers in a corrupt
//file cannot hang the reader.
const maxTreeDepth = 16

/*
Version 1 B-tree node:
	"TREE", node type (1), node level (1), entries used (2),
	left sibling (O), right sibling (O), then N+1 keys interleaved with
	N child pointers. Group nodes (type 0) key on local heap name offsets
	(lengthSize each) and point to symbol table nodes at level zero.
	Chunk nodes (type 1) key on chunk size (4), filter mask (4) and one
	64 bit offset per dimension plus one; their level zero children are
	the chunks themselves.
*/
func (f *File) readGroupBTree(addr, heapData uint64, depth int) ([]symEntry, error) {
	if depth > maxTreeDepth {
		return nil, Error{BadBTree, f.name, []string{"readGroupBTree"}, true}
	}
	c := f.cur.at(addr)
	sig, err := c.bytes(4)
	if err != nil {
		return nil, errDecorate(err, "readGroupBTree")
	}
	if string(sig) == "SNOD" {
		//some writers point a single-leaf group directly at the node
		return f.readSymbolNode(addr, heapData)
	}
	if string(sig) != "TREE" {
		return nil, Error{BadBTree, f.name, []string{"readGroupBTree"}, true}
	}
	nodeType, err := c.u8()
	if err != nil {
		return nil, errDecorate(err, "readGroupBTree")
	}
	if nodeType != 0 {
		return nil, Error{BadBTree, f.name, []string{"readGroupBTree"}, true}
	}
	level, err := c.u8()
	if err != nil {
		return nil, errDecorate(err, "readGroupBTree")
	}
	used, err := c.u16()
	if err != nil {
		return nil, errDecorate(err, "readGroupBTree")
	}
	c.skip(int64(2 * c.offSize)) //siblings
	var out []symEntry
	for i := 0; i < int(used); i++ {
		c.skip(int64(c.lenSize)) //key: heap offset of a bounding name
		child, err := c.offset()
		if err != nil {
			return nil, errDecorate(err, "readGroupBTree")
		}
		var sub []symEntry
		if level == 0 {
			sub, err = f.readSymbolNode(child, heapData)
		} else {
			sub, err = f.readGroupBTree(child, heapData, depth+1)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

/*
Symbol table node:
	"SNOD", version (1), reserved (1), number of symbols (2), then the
	entries: link name offset (O), object header address (O),
	cache type (4), reserved (4), scratch pad (16). A cache type of 2
	marks a symbolic link, which this reader skips.
*/
func (f *File) readSymbolNode(addr, heapData uint64) ([]symEntry, error) {
	c := f.cur.at(addr)
	sig, err := c.bytes(4)
	if err != nil {
		return nil, errDecorate(err, "readSymbolNode")
	}
	if string(sig) != "SNOD" {
		return nil, Error{BadSymbolTable, f.name, []string{"readSymbolNode"}, true}
	}
	c.skip(2) //version, reserved
	count, err := c.u16()
	if err != nil {
		return nil, errDecorate(err, "readSymbolNode")
	}
	out := make([]symEntry, 0, count)
	for i := 0; i < int(count); i++ {
		nameOff, err := c.offset()
		if err != nil {
			return nil, errDecorate(err, "readSymbolNode")
		}
		objAddr, err := c.offset()
		if err != nil {
			return nil, errDecorate(err, "readSymbolNode")
		}
		cache, err := c.u32()
		if err != nil {
			return nil, errDecorate(err, "readSymbolNode")
		}
		c.skip(4 + 16) //reserved, scratch pad
		if cache == 2 || undefined(objAddr, c.offSize) {
			continue //symbolic link, nothing to open behind it
		}
		name, err := f.heapString(heapData, nameOff)
		if err != nil {
			return nil, err
		}
		out = append(out, symEntry{name, objAddr})
	}
	return out, nil
}

//chunkLoc is the location of one stored chunk: its logical offset in
//dataset element coordinates, its stored (possibly compressed) byte
//size, its filter mask and its file address.
type chunkLoc struct {
	offset []uint64
	size   uint32
	mask   uint32
	addr   uint64
}

func (f *File) readChunkBTree(addr uint64, rank, depth int) ([]chunkLoc, error) {
	if depth > maxTreeDepth {
		return nil, Error{BadBTree, f.name, []string{"readChunkBTree"}, true}
	}
	c := f.cur.at(addr)
	sig, err := c.bytes(4)
	if err != nil {
		return nil, errDecorate(err, "readChunkBTree")
	}
	if string(sig) != "TREE" {
		return nil, Error{BadBTree, f.name, []string{"readChunkBTree"}, true}
	}
	nodeType, err := c.u8()
	if err != nil {
		return nil, errDecorate(err, "readChunkBTree")
	}
	if nodeType != 1 {
		return nil, Error{BadBTree, f.name, []string{"readChunkBTree"}, true}
	}
	level, err := c.u8()
	if err != nil {
		return nil, errDecorate(err, "readChunkBTree")
	}
	used, err := c.u16()
	if err != nil {
		return nil, errDecorate(err, "readChunkBTree")
	}
	c.skip(int64(2 * c.offSize))
	var out []chunkLoc
	for i := 0; i < int(used); i++ {
		loc := chunkLoc{offset: make([]uint64, rank)}
		loc.size, err = c.u32()
		if err != nil {
			return nil, errDecorate(err, "readChunkBTree")
		}
		loc.mask, err = c.u32()
		if err != nil {
			return nil, errDecorate(err, "readChunkBTree")
		}
		for d := 0; d <= rank; d++ { //one entry per dimension plus the element dimension
			v, err := c.u64()
			if err != nil {
				return nil, errDecorate(err, "readChunkBTree")
			}
			if d < rank {
				loc.offset[d] = v
			}
		}
		child, err := c.offset()
		if err != nil {
			return nil, errDecorate(err, "readChunkBTree")
		}
		if level == 0 {
			loc.addr = child
			out = append(out, loc)
			continue
		}
		sub, err := f.readChunkBTree(child, rank, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}
