package h5write

import "encoding/binary"

// offsetSize and lengthSize are fixed for every file this package writes.
const (
	offsetSize = 8
	lengthSize = 8
)

// undefinedAddress marks an address field with no target.
const undefinedAddress = ^uint64(0)

// encoder appends little-endian HDF5 fields to a growing buffer.
type encoder struct {
	buf []byte
}

func (e *encoder) pos() uint64 { return uint64(len(e.buf)) }

func (e *encoder) u8(v uint8) { e.buf = append(e.buf, v) }

func (e *encoder) u16(v uint16) { e.buf = binary.LittleEndian.AppendUint16(e.buf, v) }

func (e *encoder) u32(v uint32) { e.buf = binary.LittleEndian.AppendUint32(e.buf, v) }

func (e *encoder) u64(v uint64) { e.buf = binary.LittleEndian.AppendUint64(e.buf, v) }

// uintN writes the low n bytes of v.
func (e *encoder) uintN(v uint64, n int) {
	for i := 0; i < n; i++ {
		e.buf = append(e.buf, byte(v>>(8*i)))
	}
}

func (e *encoder) offset(v uint64) { e.uintN(v, offsetSize) }

func (e *encoder) length(v uint64) { e.uintN(v, lengthSize) }

func (e *encoder) bytes(b []byte) { e.buf = append(e.buf, b...) }

func (e *encoder) zeros(n int) {
	for i := 0; i < n; i++ {
		e.buf = append(e.buf, 0)
	}
}

// uintWidth returns the smallest of 1, 2, 4 or 8 bytes that holds v.
func uintWidth(v uint64) int {
	switch {
	case v <= 0xFF:
		return 1
	case v <= 0xFFFF:
		return 2
	case v <= 0xFFFFFFFF:
		return 4
	default:
		return 8
	}
}
