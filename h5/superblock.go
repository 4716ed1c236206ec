package h5

import (
	"io"
)

//the eight magic bytes at the start of every HDF5 file, searched at
//offset 0 and then at every power-of-two multiple of 512.
var signature = []byte{0x89, 'H', 'D', 'F', '\r', '\n', 0x1a, '\n'}

type superblock struct {
	version  int
	offSize  int
	lenSize  int
	base     uint64 //physical offset where the signature was found
	eof      uint64
	rootAddr uint64 //object header address of the root group
	//root group symbol table entry cache, superblock v0/v1 only. If the
	//scratch space caches the B-tree and heap addresses we keep them so
	//the root group can be opened without rereading its header.
	rootBTree  uint64
	rootHeap   uint64
	rootCached bool
}

//findSignature scans the documented locations for the format signature
//and returns the physical offset of the first match.
func findSignature(r io.ReaderAt, fsize int64, fname string) (int64, error) {
	buf := make([]byte, 8)
	for off := int64(0); off+8 <= fsize; {
		if _, err := r.ReadAt(buf, off); err != nil {
			break
		}
		if string(buf) == string(signature) {
			return off, nil
		}
		if off == 0 {
			off = 512
		} else {
			off *= 2
		}
	}
	return 0, Error{BadSignature, fname, []string{"findSignature"}, true}
}

func readSuperblock(r io.ReaderAt, fsize int64, fname string) (*superblock, error) {
	sigOff, err := findSignature(r, fsize, fname)
	if err != nil {
		return nil, errDecorate(err, "readSuperblock")
	}
	sb := &superblock{base: uint64(sigOff)}
	c := &cursor{r: r, fname: fname, base: sb.base, offSize: 8, lenSize: 8}
	cur := c.at(8) //just past the signature
	ver, err := cur.u8()
	if err != nil {
		return nil, errDecorate(err, "readSuperblock")
	}
	sb.version = int(ver)
	switch sb.version {
	case 0, 1:
		return sb, readSuperblockV0(cur, sb)
	case 2, 3:
		return sb, readSuperblockV2(cur, sb)
	}
	return nil, Error{BadSuperblock, fname, []string{"readSuperblock"}, true}
}

/*
Superblock version 0/1, after the signature:
	superblock version (1), free space version (1), root group version (1),
	reserved (1), shared header version (1), size of offsets (1),
	size of lengths (1), reserved (1), group leaf K (2), group internal K (2),
	file consistency flags (4), [v1 only: indexed storage K (2), reserved (2)],
	base address (O), free space address (O), end of file address (O),
	driver info address (O), root group symbol table entry:
	link name offset (O), object header address (O), cache type (4),
	reserved (4), scratch pad (16).
A cache type of 1 means the scratch pad holds the B-tree and heap
addresses of the root group.
*/
func readSuperblockV0(c *cursor, sb *superblock) error {
	c.skip(4) //free space, root group and shared header versions, reserved
	offSize, err := c.u8()
	if err != nil {
		return errDecorate(err, "readSuperblock")
	}
	lenSize, err := c.u8()
	if err != nil {
		return errDecorate(err, "readSuperblock")
	}
	if !validSize(int(offSize)) || !validSize(int(lenSize)) {
		return Error{BadSuperblock, c.fname, []string{"readSuperblock"}, true}
	}
	sb.offSize, sb.lenSize = int(offSize), int(lenSize)
	c.offSize, c.lenSize = sb.offSize, sb.lenSize
	c.skip(1 + 2 + 2 + 4) //reserved, leaf K, internal K, consistency flags
	if sb.version == 1 {
		c.skip(4) //indexed storage K, reserved
	}
	c.skip(int64(3 * sb.offSize)) //base, free space and EOF addresses are not needed
	if _, err := c.offset(); err != nil {
		return errDecorate(err, "readSuperblock") //driver info address
	}
	c.skip(int64(sb.offSize)) //link name offset of the root entry
	root, err := c.offset()
	if err != nil {
		return errDecorate(err, "readSuperblock")
	}
	sb.rootAddr = root
	cache, err := c.u32()
	if err != nil {
		return errDecorate(err, "readSuperblock")
	}
	c.skip(4) //reserved
	if cache == 1 {
		bt, err := c.offset()
		if err != nil {
			return errDecorate(err, "readSuperblock")
		}
		hp, err := c.offset()
		if err != nil {
			return errDecorate(err, "readSuperblock")
		}
		sb.rootBTree, sb.rootHeap = bt, hp
		sb.rootCached = true
	}
	return nil
}

/*
Superblock version 2/3, after the signature:
	superblock version (1), size of offsets (1), size of lengths (1),
	file consistency flags (1), base address (O), extension address (O),
	end of file address (O), root group object header address (O),
	checksum (4, Jenkins lookup3 over everything before it).
*/
func readSuperblockV2(c *cursor, sb *superblock) error {
	offSize, err := c.u8()
	if err != nil {
		return errDecorate(err, "readSuperblock")
	}
	lenSize, err := c.u8()
	if err != nil {
		return errDecorate(err, "readSuperblock")
	}
	if !validSize(int(offSize)) || !validSize(int(lenSize)) {
		return Error{BadSuperblock, c.fname, []string{"readSuperblock"}, true}
	}
	sb.offSize, sb.lenSize = int(offSize), int(lenSize)
	c.offSize, c.lenSize = sb.offSize, sb.lenSize
	c.skip(1)                     //file consistency flags
	c.skip(int64(2 * sb.offSize)) //base and extension addresses
	eof, err := c.offset()
	if err != nil {
		return errDecorate(err, "readSuperblock")
	}
	sb.eof = eof
	root, err := c.offset()
	if err != nil {
		return errDecorate(err, "readSuperblock")
	}
	sb.rootAddr = root
	stored, err := c.u32()
	if err != nil {
		return errDecorate(err, "readSuperblock")
	}
	whole := c.at(0)
	blob, err := whole.bytes(12 + 4*sb.offSize)
	if err != nil {
		return errDecorate(err, "readSuperblock")
	}
	if lookup3(blob) != stored {
		return Error{ChecksumMismatch, c.fname, []string{"readSuperblock"}, true}
	}
	return nil
}

func validSize(n int) bool {
	return n == 2 || n == 4 || n == 8
}

//lookup3 is the Jenkins hashlittle variant the HDF5 library uses for its
//metadata checksums, with an initial value of zero.
func lookup3(data []byte) uint32 {
	initval := uint32(0xdeadbeef) + uint32(len(data))
	a, b, c := initval, initval, initval
	k := data
	for len(k) > 12 {
		a += uint32(k[0]) | uint32(k[1])<<8 | uint32(k[2])<<16 | uint32(k[3])<<24
		b += uint32(k[4]) | uint32(k[5])<<8 | uint32(k[6])<<16 | uint32(k[7])<<24
		c += uint32(k[8]) | uint32(k[9])<<8 | uint32(k[10])<<16 | uint32(k[11])<<24
		a, b, c = lookup3Mix(a, b, c)
		k = k[12:]
	}
	//the last 1 to 12 bytes go through the final mix; an empty tail
	//skips it, matching the reference implementation.
	switch len(k) {
	case 12:
		c += uint32(k[11]) << 24
		fallthrough
	case 11:
		c += uint32(k[10]) << 16
		fallthrough
	case 10:
		c += uint32(k[9]) << 8
		fallthrough
	case 9:
		c += uint32(k[8])
		fallthrough
	case 8:
		b += uint32(k[7]) << 24
		fallthrough
	case 7:
		b += uint32(k[6]) << 16
		fallthrough
	case 6:
		b += uint32(k[5]) << 8
		fallthrough
	case 5:
		b += uint32(k[4])
		fallthrough
	case 4:
		a += uint32(k[3]) << 24
		fallthrough
	case 3:
		a += uint32(k[2]) << 16
		fallthrough
	case 2:
		a += uint32(k[1]) << 8
		fallthrough
	case 1:
		a += uint32(k[0])
	case 0:
		return c
	}
	_, _, c = lookup3Final(a, b, c)
	return c
}

func lookup3Mix(a, b, c uint32) (uint32, uint32, uint32) {
	a -= c
	a ^= rotl32(c, 4)
	c += b
	b -= a
	b ^= rotl32(a, 6)
	a += c
	c -= b
	c ^= rotl32(b, 8)
	b += a
	a -= c
	a ^= rotl32(c, 16)
	c += b
	b -= a
	b ^= rotl32(a, 19)
	a += c
	c -= b
	c ^= rotl32(b, 4)
	b += a
	return a, b, c
}

func lookup3Final(a, b, c uint32) (uint32, uint32, uint32) {
	c ^= b
	c -= rotl32(b, 14)
	a ^= c
	a -= rotl32(c, 11)
	b ^= a
	b -= rotl32(a, 25)
	c ^= b
	c -= rotl32(b, 16)
	a ^= c
	a -= rotl32(c, 4)
	b ^= a
	b -= rotl32(a, 14)
	c ^= b
	c -= rotl32(b, 24)
	return a, b, c
}

func rotl32(x uint32, k uint) uint32 {
	return (x << k) | (x >> (32 - k))
}
