package h5

import (
	"encoding/binary"
	"io"
)

//cursor is a little-endian binary reader over an io.ReaderAt with a
//position and the variable offset/length field widths of the open file.
//All HDF5 metadata is little-endian regardless of the data byte order.
type cursor struct {
	r       io.ReaderAt
	fname   string
	base    uint64 //file address 0 maps to this physical offset
	pos     int64
	offSize int
	lenSize int
}

//at returns a new cursor over the same file positioned at the given
//HDF5 address (relative to the base address).
func (c *cursor) at(addr uint64) *cursor {
	c2 := *c
	c2.pos = int64(c.base + addr)
	return &c2
}

func (c *cursor) bytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, Error{TruncatedFile, c.fname, []string{"bytes"}, true}
	}
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	_, err := c.r.ReadAt(buf, c.pos)
	if err != nil {
		return nil, Error{TruncatedFile, c.fname, []string{"bytes"}, true}
	}
	c.pos += int64(n)
	return buf, nil
}

func (c *cursor) u8() (uint8, error) {
	b, err := c.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) u16() (uint16, error) {
	b, err := c.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *cursor) u32() (uint32, error) {
	b, err := c.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) u64() (uint64, error) {
	b, err := c.bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

//uint reads an unsigned little-endian integer n bytes wide, 1<=n<=8.
func (c *cursor) uint(n int) (uint64, error) {
	b, err := c.bytes(n)
	if err != nil {
		return 0, err
	}
	return leUint(b, n), nil
}

//offset reads a file address, offSize bytes wide.
func (c *cursor) offset() (uint64, error) {
	return c.uint(c.offSize)
}

//length reads a length, lenSize bytes wide.
func (c *cursor) length() (uint64, error) {
	return c.uint(c.lenSize)
}

func (c *cursor) skip(n int64) {
	c.pos += n
}

//align8 advances the position to the next multiple of 8 bytes.
func (c *cursor) align8() {
	if rem := c.pos % 8; rem != 0 {
		c.pos += 8 - rem
	}
}

func leUint(b []byte, n int) uint64 {
	var v uint64
	for i := 0; i < n && i < len(b); i++ {
		v |= uint64(b[i]) << (8 * uint(i))
	}
	return v
}

//undefined tells whether an address is the all-ones sentinel that HDF5
//uses for "no address".
func undefined(v uint64, size int) bool {
	if size >= 8 {
		return v == ^uint64(0)
	}
	return v == (uint64(1)<<(8*uint(size)))-1
}
