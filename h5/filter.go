package h5

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

//decodePipeline undoes the filter pipeline on one stored chunk. Filters
//are listed in the order they were applied on write, so they are undone
//in reverse. Bit i of mask set means filter i was skipped for this chunk.
func decodePipeline(filters []filterEntry, mask uint32, data []byte, elemSize int, fname string) ([]byte, error) {
	var err error
	for i := len(filters) - 1; i >= 0; i-- {
		if mask&(1<<uint(i)) != 0 {
			continue
		}
		fe := filters[i]
		switch fe.id {
		case filterDeflate:
			data, err = inflate(data)
		case filterShuffle:
			es := elemSize
			if len(fe.cd) > 0 && fe.cd[0] > 0 {
				es = int(fe.cd[0])
			}
			data = unshuffle(data, es)
		case filterFletcher32:
			data, err = checkFletcher32(data)
		case filterZstd:
			data, err = unzstd(data)
		default:
			if fe.optional {
				continue
			}
			return nil, Error{UnsupportedFeature, fname, []string{"decodePipeline"}, true}
		}
		if err != nil {
			return nil, Error{FilterFailed, fname, []string{"decodePipeline"}, true}
		}
	}
	return data, nil
}

func inflate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func deflate(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unzstd(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

func zstdCompress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

//unshuffle regroups byte-plane ordered data back into whole elements.
//Shuffled data stores first the lowest byte of every element, then the
//next byte, and so on, which compresses better for slowly varying
//floating point fields.
func unshuffle(data []byte, elemSize int) []byte {
	if elemSize <= 1 {
		return data
	}
	n := len(data) / elemSize
	if n == 0 {
		return data
	}
	out := make([]byte, len(data))
	for j := 0; j < elemSize; j++ {
		plane := data[j*n:]
		for i := 0; i < n; i++ {
			out[i*elemSize+j] = plane[i]
		}
	}
	//bytes past the last whole element are carried through untouched
	copy(out[n*elemSize:], data[n*elemSize:])
	return out
}

func shuffle(data []byte, elemSize int) []byte {
	if elemSize <= 1 {
		return data
	}
	n := len(data) / elemSize
	if n == 0 {
		return data
	}
	out := make([]byte, len(data))
	for j := 0; j < elemSize; j++ {
		plane := out[j*n:]
		for i := 0; i < n; i++ {
			plane[i] = data[i*elemSize+j]
		}
	}
	copy(out[n*elemSize:], data[n*elemSize:])
	return out
}

//checkFletcher32 validates and strips the trailing checksum the
//Fletcher-32 filter appends to a chunk.
func checkFletcher32(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, Error{FilterFailed, "", []string{"checkFletcher32"}, true}
	}
	payload := data[:len(data)-4]
	stored := binary.LittleEndian.Uint32(data[len(data)-4:])
	if fletcher32(payload) != stored {
		return nil, Error{ChecksumMismatch, "", []string{"checkFletcher32"}, true}
	}
	return payload, nil
}

//fletcher32 is the HDF5 library's variant of the Fletcher checksum: the
//data is summed as big-endian 16 bit words with deferred folding, and an
//odd trailing byte is treated as the high byte of a final word.
func fletcher32(data []byte) uint32 {
	var sum1, sum2 uint32
	words := len(data) / 2
	i := 0
	for words > 0 {
		block := words
		if block > 360 {
			block = 360
		}
		words -= block
		for ; block > 0; block-- {
			sum1 += uint32(data[i])<<8 | uint32(data[i+1])
			sum2 += sum1
			i += 2
		}
		sum1 = (sum1 & 0xffff) + (sum1 >> 16)
		sum2 = (sum2 & 0xffff) + (sum2 >> 16)
	}
	if len(data)%2 != 0 {
		sum1 += uint32(data[len(data)-1]) << 8
		sum2 += sum1
		sum1 = (sum1 & 0xffff) + (sum1 >> 16)
		sum2 = (sum2 & 0xffff) + (sum2 >> 16)
	}
	sum1 = (sum1 & 0xffff) + (sum1 >> 16)
	sum2 = (sum2 & 0xffff) + (sum2 >> 16)
	return sum2<<16 | sum1
}
