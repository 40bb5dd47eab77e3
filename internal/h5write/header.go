package h5write

import "fmt"

// minGroupChunk is the smallest message area written for group headers.
// h5py and libhdf5 reserve the same amount.
const minGroupChunk = 120

var headerSignature = []byte("OHDR")

// writeHeader appends a version 2 object header holding msgs and returns
// its address. The message area is padded with a NIL message up to
// minChunk bytes.
func writeHeader(e *encoder, msgs []message, minChunk int) (uint64, error) {
	size := 0
	for _, m := range msgs {
		if len(m.body) > 0xFFFF {
			return 0, fmt.Errorf("header message type %#x: %d bytes exceeds 65535", m.typ, len(m.body))
		}
		size += 4 + len(m.body)
	}

	chunk := max(size, minChunk)
	gap := chunk - size
	// A NIL message needs at least its own 4 byte prefix.
	if gap > 0 && gap < 4 {
		chunk = size + 4
		gap = 4
	}

	start := e.pos()
	width := uintWidth(uint64(chunk))
	e.bytes(headerSignature)
	e.u8(2)
	e.u8(widthBits(width))
	e.uintN(uint64(chunk), width)

	for _, m := range msgs {
		e.u8(m.typ)
		e.u16(uint16(len(m.body)))
		e.u8(0)
		e.bytes(m.body)
	}
	if gap > 0 {
		e.u8(msgNil)
		e.u16(uint16(gap - 4))
		e.u8(0)
		e.zeros(gap - 4)
	}

	e.u32(lookup3(e.buf[start:]))
	return start, nil
}
