package h5

/*
Local heap:
	"HEAP", version (1), reserved (3), data segment size (L),
	offset to head of free list (L), data segment address (O).
Strings stored in the heap are null terminated.
*/

//readLocalHeap returns the address of the heap's data segment.
func (f *File) readLocalHeap(addr uint64) (uint64, error) {
	c := f.cur.at(addr)
	sig, err := c.bytes(4)
	if err != nil {
		return 0, errDecorate(err, "readLocalHeap")
	}
	if string(sig) != "HEAP" {
		return 0, Error{BadHeap, f.name, []string{"readLocalHeap"}, true}
	}
	ver, err := c.u8()
	if err != nil {
		return 0, errDecorate(err, "readLocalHeap")
	}
	if ver != 0 {
		return 0, Error{BadHeap, f.name, []string{"readLocalHeap"}, true}
	}
	c.skip(3)                    //reserved
	c.skip(int64(2 * c.lenSize)) //data size, free list head
	data, err := c.offset()
	if err != nil {
		return 0, errDecorate(err, "readLocalHeap")
	}
	return data, nil
}

//heapString reads the null terminated string at the given offset into
//the heap data segment.
func (f *File) heapString(heapData, off uint64) (string, error) {
	c := f.cur.at(heapData + off)
	var out []byte
	for len(out) < 4096 {
		b, err := c.bytes(32)
		if err != nil {
			//a name can legitimately sit at the very end of the file
			b, err = c.bytes(1)
			if err != nil {
				return "", errDecorate(err, "heapString")
			}
		}
		for _, ch := range b {
			if ch == 0 {
				return string(out), nil
			}
			out = append(out, ch)
		}
	}
	return "", Error{BadHeap, f.name, []string{"heapString"}, true}
}
