package h5write

import (
	"errors"
	"fmt"
)

// Class is a datatype class code as stored in the Datatype message.
type Class uint8

const (
	ClassFixedPoint Class = 0
	ClassFloatPoint Class = 1
	ClassString     Class = 3
	ClassCompound   Class = 6
)

// ErrDatatype reports a datatype this package cannot encode.
var ErrDatatype = errors.New("unsupported datatype")

// Datatype describes the element type of a dataset.
type Datatype struct {
	Class  Class
	Size   int
	Signed bool

	// Members is only set for ClassCompound, in storage order.
	Members []Member
}

// Member is one field of a compound datatype.
type Member struct {
	Name   string
	Offset int
	Type   Datatype
}

// Int returns a little-endian fixed-point type of width bytes.
func Int(width int, signed bool) Datatype {
	return Datatype{Class: ClassFixedPoint, Size: width, Signed: signed}
}

// Float returns an IEEE 754 type of width bytes.
func Float(width int) Datatype {
	return Datatype{Class: ClassFloatPoint, Size: width}
}

// FixedString returns a null-padded ASCII string type of size bytes.
func FixedString(size int) Datatype {
	if size < 1 {
		size = 1
	}
	return Datatype{Class: ClassString, Size: size}
}

// Compound returns a compound type whose members are packed in order.
func Compound(members []Member) Datatype {
	packed := make([]Member, len(members))
	off := 0
	for i, m := range members {
		packed[i] = Member{Name: m.Name, Offset: off, Type: m.Type}
		off += m.Type.Size
	}
	return Datatype{Class: ClassCompound, Size: off, Members: packed}
}

func (dt Datatype) validate() error {
	switch dt.Class {
	case ClassFixedPoint:
		switch dt.Size {
		case 1, 2, 4, 8:
			return nil
		}
	case ClassFloatPoint:
		if dt.Size == 4 || dt.Size == 8 {
			return nil
		}
	case ClassString:
		if dt.Size > 0 {
			return nil
		}
	case ClassCompound:
		if len(dt.Members) == 0 || len(dt.Members) > 0xFFFF {
			return fmt.Errorf("%w: compound with %d members", ErrDatatype, len(dt.Members))
		}
		for _, m := range dt.Members {
			if m.Type.Class == ClassCompound {
				return fmt.Errorf("%w: nested compound member %q", ErrDatatype, m.Name)
			}
			if err := m.Type.validate(); err != nil {
				return fmt.Errorf("member %q: %w", m.Name, err)
			}
			if m.Offset+m.Type.Size > dt.Size {
				return fmt.Errorf("%w: member %q outside record", ErrDatatype, m.Name)
			}
		}
		return nil
	}
	return fmt.Errorf("%w: class %d size %d", ErrDatatype, dt.Class, dt.Size)
}

// classBits returns the 24 class-specific bits of the Datatype message.
func (dt Datatype) classBits() uint32 {
	switch dt.Class {
	case ClassFixedPoint:
		if dt.Signed {
			return 0x08
		}
		return 0
	case ClassFloatPoint:
		// little-endian, implied mantissa MSB, sign at the top bit
		return 1<<5 | uint32(dt.Size*8-1)<<8
	case ClassString:
		// null pad, ASCII
		return 1
	case ClassCompound:
		return uint32(len(dt.Members))
	}
	return 0
}

var (
	float32Props = []byte{0, 0, 32, 0, 23, 8, 0, 23, 127, 0, 0, 0}
	float64Props = []byte{0, 0, 64, 0, 52, 11, 0, 52, 255, 3, 0, 0}
)

// encode appends the Datatype message body.
func (dt Datatype) encode(e *encoder) {
	version := uint8(1)
	if dt.Class == ClassCompound {
		version = 3
	}
	e.u8(uint8(dt.Class) | version<<4)
	bits := dt.classBits()
	e.u8(uint8(bits))
	e.u8(uint8(bits >> 8))
	e.u8(uint8(bits >> 16))
	e.u32(uint32(dt.Size))

	switch dt.Class {
	case ClassFixedPoint:
		e.u16(0)
		e.u16(uint16(dt.Size * 8))
	case ClassFloatPoint:
		if dt.Size == 4 {
			e.bytes(float32Props)
		} else {
			e.bytes(float64Props)
		}
	case ClassCompound:
		width := memberOffsetWidth(dt.Size)
		for _, m := range dt.Members {
			e.bytes([]byte(m.Name))
			e.u8(0)
			e.uintN(uint64(m.Offset), width)
			m.Type.encode(e)
		}
	}
}

// memberOffsetWidth is the byte width of version 3 compound member offsets.
func memberOffsetWidth(size int) int {
	switch {
	case size <= 0xFF:
		return 1
	case size <= 0xFFFF:
		return 2
	default:
		return 4
	}
}
