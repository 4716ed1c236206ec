package h5

//header message types used by this reader.
const (
	msgNil          = 0x0000
	msgDataspace    = 0x0001
	msgLinkInfo     = 0x0002
	msgDatatype     = 0x0003
	msgFillOld      = 0x0004
	msgFill         = 0x0005
	msgLink         = 0x0006
	msgLayout       = 0x0008
	msgGroupInfo    = 0x000A
	msgPipeline     = 0x000B
	msgAttribute    = 0x000C
	msgContinuation = 0x0010
	msgSymbolTable  = 0x0011
	msgModTime      = 0x0012
)

type headerMsg struct {
	kind uint16
	data []byte
}

type objectHeader struct {
	version  int
	messages []headerMsg
}

//find returns the first message of the given kind, or nil.
func (oh *objectHeader) find(kind uint16) []byte {
	for _, m := range oh.messages {
		if m.kind == kind {
			return m.data
		}
	}
	return nil
}

//readObjectHeader parses the object header at the given address, along
//with all its continuation blocks, into a flat message list. Both the
//version 1 layout and the version 2 "OHDR" layout are handled.
func (f *File) readObjectHeader(addr uint64) (*objectHeader, error) {
	c := f.cur.at(addr)
	peek, err := c.bytes(4)
	if err != nil {
		return nil, errDecorate(err, "readObjectHeader")
	}
	if string(peek) == "OHDR" {
		return f.readObjectHeaderV2(c)
	}
	return f.readObjectHeaderV1(f.cur.at(addr))
}

/*
Version 1 object header:
	version (1), reserved (1), number of messages (2), reference count (4),
	header size (4), then 4 bytes of padding so the first message starts on
	an 8 byte boundary. Messages: type (2), data size (2), flags (1),
	reserved (3), data, padded to 8 bytes. A continuation message points to
	a further block of messages with an address and a length.
*/
func (f *File) readObjectHeaderV1(c *cursor) (*objectHeader, error) {
	ver, err := c.u8()
	if err != nil {
		return nil, errDecorate(err, "readObjectHeader")
	}
	if ver != 1 {
		return nil, Error{BadObjectHeader, f.name, []string{"readObjectHeader"}, true}
	}
	c.skip(1)
	nmsg, err := c.u16()
	if err != nil {
		return nil, errDecorate(err, "readObjectHeader")
	}
	c.skip(4) //reference count
	hsize, err := c.u32()
	if err != nil {
		return nil, errDecorate(err, "readObjectHeader")
	}
	c.align8()
	oh := &objectHeader{version: 1}
	if err := f.readV1Messages(c, int64(hsize), int(nmsg), 0, oh); err != nil {
		return nil, err
	}
	return oh, nil
}

//maxContinuations bounds the continuation chain so a corrupt file with a
//block cycle cannot hang the reader.
const maxContinuations = 8

func (f *File) readV1Messages(c *cursor, size int64, budget, depth int, oh *objectHeader) error {
	if depth > maxContinuations {
		return Error{BadObjectHeader, f.name, []string{"readObjectHeader"}, true}
	}
	end := c.pos + size
	for c.pos+8 <= end && len(oh.messages) < budget+1 {
		kind, err := c.u16()
		if err != nil {
			return errDecorate(err, "readObjectHeader")
		}
		dlen, err := c.u16()
		if err != nil {
			return errDecorate(err, "readObjectHeader")
		}
		c.skip(4) //flags, reserved
		data, err := c.bytes(int(dlen))
		if err != nil {
			return errDecorate(err, "readObjectHeader")
		}
		c.align8()
		switch kind {
		case msgNil:
			continue
		case msgContinuation:
			off, length, err := parseContinuation(data, c.offSize, c.lenSize)
			if err != nil {
				return Error{BadObjectHeader, f.name, []string{"readObjectHeader"}, true}
			}
			if err := f.readV1Messages(f.cur.at(off), int64(length), budget, depth+1, oh); err != nil {
				return err
			}
		default:
			oh.messages = append(oh.messages, headerMsg{kind, data})
		}
	}
	return nil
}

/*
Version 2 object header:
	"OHDR", version (1), flags (1), optional times (4x4, flag bit 5),
	optional attribute phase change (2+2, flag bit 4), size of message
	block (1<<(flags&3) bytes), messages, gap, checksum (4).
	Messages: type (1), data size (2), flags (1), optional creation
	order (2, header flag bit 2). Continuation blocks start with "OCHK"
	and end with a checksum.
*/
func (f *File) readObjectHeaderV2(c *cursor) (*objectHeader, error) {
	ver, err := c.u8()
	if err != nil {
		return nil, errDecorate(err, "readObjectHeader")
	}
	if ver != 2 {
		return nil, Error{BadObjectHeader, f.name, []string{"readObjectHeader"}, true}
	}
	flags, err := c.u8()
	if err != nil {
		return nil, errDecorate(err, "readObjectHeader")
	}
	if flags&0x20 != 0 {
		c.skip(16)
	}
	if flags&0x10 != 0 {
		c.skip(4)
	}
	bsize, err := c.uint(1 << (flags & 0x03))
	if err != nil {
		return nil, errDecorate(err, "readObjectHeader")
	}
	oh := &objectHeader{version: 2}
	if err := f.readV2Messages(c, int64(bsize), flags&0x04 != 0, 0, oh); err != nil {
		return nil, err
	}
	return oh, nil
}

func (f *File) readV2Messages(c *cursor, size int64, tracked bool, depth int, oh *objectHeader) error {
	if depth > maxContinuations {
		return Error{BadObjectHeader, f.name, []string{"readObjectHeader"}, true}
	}
	hdrLen := int64(4)
	if tracked {
		hdrLen += 2
	}
	end := c.pos + size
	for c.pos+hdrLen <= end {
		kindB, err := c.u8()
		if err != nil {
			return errDecorate(err, "readObjectHeader")
		}
		kind := uint16(kindB)
		dlen, err := c.u16()
		if err != nil {
			return errDecorate(err, "readObjectHeader")
		}
		c.skip(1) //flags
		if tracked {
			c.skip(2)
		}
		if c.pos+int64(dlen) > end {
			break //trailing gap, smaller than a message header
		}
		data, err := c.bytes(int(dlen))
		if err != nil {
			return errDecorate(err, "readObjectHeader")
		}
		switch kind {
		case msgNil:
			continue
		case msgContinuation:
			off, length, err := parseContinuation(data, c.offSize, c.lenSize)
			if err != nil {
				return Error{BadObjectHeader, f.name, []string{"readObjectHeader"}, true}
			}
			cc := f.cur.at(off)
			sig, err := cc.bytes(4)
			if err != nil || string(sig) != "OCHK" {
				return Error{BadObjectHeader, f.name, []string{"readObjectHeader"}, true}
			}
			//signature and trailing checksum are not part of the message area
			if err := f.readV2Messages(cc, int64(length)-8, tracked, depth+1, oh); err != nil {
				return err
			}
		default:
			oh.messages = append(oh.messages, headerMsg{kind, data})
		}
	}
	return nil
}

func parseContinuation(data []byte, offSize, lenSize int) (uint64, uint64, error) {
	if len(data) < offSize+lenSize {
		return 0, 0, Error{BadObjectHeader, "", []string{"parseContinuation"}, true}
	}
	off := leUint(data, offSize)
	length := leUint(data[offSize:], lenSize)
	return off, length, nil
}
