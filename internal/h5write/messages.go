package h5write

// Header message types.
const (
	msgNil       = 0x00
	msgDataspace = 0x01
	msgLinkInfo  = 0x02
	msgDatatype  = 0x03
	msgLink      = 0x06
	msgLayout    = 0x08
	msgGroupInfo = 0x0A
)

// message is one encoded header message.
type message struct {
	typ  uint8
	body []byte
}

func build(typ uint8, fn func(e *encoder)) message {
	var e encoder
	fn(&e)
	return message{typ: typ, body: e.buf}
}

// dataspaceMessage is a version 2 dataspace; no dims means scalar.
func dataspaceMessage(dims []uint64) message {
	return build(msgDataspace, func(e *encoder) {
		e.u8(2)
		e.u8(uint8(len(dims)))
		e.u8(0)
		if len(dims) == 0 {
			e.u8(0)
			return
		}
		e.u8(1)
		for _, d := range dims {
			e.length(d)
		}
	})
}

func datatypeMessage(dt Datatype) message {
	return build(msgDatatype, dt.encode)
}

// layoutMessage is a version 3 contiguous layout.
func layoutMessage(addr, size uint64) message {
	return build(msgLayout, func(e *encoder) {
		e.u8(3)
		e.u8(1)
		e.offset(addr)
		e.length(size)
	})
}

// linkInfoMessage declares compact link storage: no fractal heap, no index.
func linkInfoMessage() message {
	return build(msgLinkInfo, func(e *encoder) {
		e.u8(0)
		e.u8(0)
		e.offset(undefinedAddress)
		e.offset(undefinedAddress)
	})
}

func groupInfoMessage() message {
	return build(msgGroupInfo, func(e *encoder) {
		e.u8(0)
		e.u8(0)
	})
}

// linkMessage is a version 1 hard link to the header at addr.
func linkMessage(name string, addr uint64) message {
	return build(msgLink, func(e *encoder) {
		width := uintWidth(uint64(len(name)))
		e.u8(1)
		e.u8(widthBits(width))
		e.uintN(uint64(len(name)), width)
		e.bytes([]byte(name))
		e.offset(addr)
	})
}

// widthBits encodes a 1, 2, 4 or 8 byte field width as the 2-bit code
// used in header and link flags.
func widthBits(width int) uint8 {
	switch width {
	case 1:
		return 0
	case 2:
		return 1
	case 4:
		return 2
	default:
		return 3
	}
}
