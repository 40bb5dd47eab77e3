package h5write

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Errors returned while building or encoding a model.
var (
	ErrExists = errors.New("member already exists")
	ErrRange  = errors.New("value out of range")
	ErrShape  = errors.New("data does not match dimensions")
)

// Node is a member of a Group: *Group or *Dataset.
type Node interface {
	NodeName() string
}

// Group is a container of named members kept in insertion order.
type Group struct {
	Name     string
	Children []Node
}

// NodeName implements Node.
func (g *Group) NodeName() string { return g.Name }

// Child returns the member called name, or nil.
func (g *Group) Child(name string) Node {
	for _, c := range g.Children {
		if c.NodeName() == name {
			return c
		}
	}
	return nil
}

// Add appends n to the group. Names are unique within a group.
func (g *Group) Add(n Node) error {
	if g.Child(n.NodeName()) != nil {
		return fmt.Errorf("%w: %q", ErrExists, n.NodeName())
	}
	g.Children = append(g.Children, n)
	return nil
}

// Dataset is a contiguous array of Type elements.
type Dataset struct {
	Name string

	// Dims is nil for a scalar.
	Dims []uint64
	Type Datatype

	// Data holds Elements()*Type.Size bytes.
	Data []byte
}

// NodeName implements Node.
func (d *Dataset) NodeName() string { return d.Name }

// Elements returns the product of Dims.
func (d *Dataset) Elements() uint64 {
	n := uint64(1)
	for _, v := range d.Dims {
		n *= v
	}
	return n
}

func (d *Dataset) validate() error {
	if err := d.Type.validate(); err != nil {
		return fmt.Errorf("dataset %q: %w", d.Name, err)
	}
	if want := d.Elements() * uint64(d.Type.Size); uint64(len(d.Data)) != want {
		return fmt.Errorf("dataset %q: %w: have %d bytes, want %d", d.Name, ErrShape, len(d.Data), want)
	}
	return nil
}

// EncodeInts packs data as little-endian integers of width bytes.
func EncodeInts(data []int64, width int, signed bool) ([]byte, error) {
	if err := Int(width, signed).validate(); err != nil {
		return nil, err
	}
	buf := make([]byte, len(data)*width)
	for i, v := range data {
		if !intFits(v, width, signed) {
			return nil, fmt.Errorf("%w: %d at index %d for %d-byte integer", ErrRange, v, i, width)
		}
		putInt(buf[i*width:], v, width)
	}
	return buf, nil
}

func intFits(v int64, width int, signed bool) bool {
	if width == 8 {
		return signed || v >= 0
	}
	bits := uint(width * 8)
	if signed {
		lim := int64(1) << (bits - 1)
		return v >= -lim && v < lim
	}
	return v >= 0 && v < int64(1)<<bits
}

func putInt(b []byte, v int64, width int) {
	switch width {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(b, uint64(v))
	}
}

// EncodeFloats packs data as IEEE 754 values of width bytes. Narrowing to
// 4 bytes rounds to the nearest float32; values outside its range fail.
func EncodeFloats(data []float64, width int) ([]byte, error) {
	if err := Float(width).validate(); err != nil {
		return nil, err
	}
	buf := make([]byte, len(data)*width)
	for i, v := range data {
		if err := putFloat(buf[i*width:], v, width); err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
	}
	return buf, nil
}

func putFloat(b []byte, v float64, width int) error {
	if width == 8 {
		binary.LittleEndian.PutUint64(b, math.Float64bits(v))
		return nil
	}
	f := float32(v)
	if math.IsInf(float64(f), 0) && !math.IsInf(v, 0) {
		return fmt.Errorf("%w: %g for 4-byte float", ErrRange, v)
	}
	binary.LittleEndian.PutUint32(b, math.Float32bits(f))
	return nil
}

// StringSize returns the fixed element size needed to hold every value.
func StringSize(data []string) int {
	size := 1
	for _, s := range data {
		size = max(size, len(s))
	}
	return size
}

// EncodeStrings packs data as null-padded strings of size bytes.
func EncodeStrings(data []string, size int) ([]byte, error) {
	buf := make([]byte, len(data)*size)
	for i, s := range data {
		if err := putString(buf[i*size:(i+1)*size], s); err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
	}
	return buf, nil
}

func putString(b []byte, s string) error {
	if len(s) > len(b) {
		return fmt.Errorf("%w: string of %d bytes for %d-byte element", ErrRange, len(s), len(b))
	}
	if strings.IndexByte(s, 0) >= 0 {
		return fmt.Errorf("%w: string contains NUL", ErrRange)
	}
	copy(b, s)
	return nil
}

// EncodeRecords packs rows with the compound type dt. Row values are looked
// up by member name; a missing value is stored as zero.
func EncodeRecords(dt Datatype, rows []map[string]any) ([]byte, error) {
	if dt.Class != ClassCompound {
		return nil, fmt.Errorf("%w: records need a compound type", ErrDatatype)
	}
	if err := dt.validate(); err != nil {
		return nil, err
	}
	buf := make([]byte, len(rows)*dt.Size)
	for i, row := range rows {
		rec := buf[i*dt.Size : (i+1)*dt.Size]
		for _, m := range dt.Members {
			v, ok := row[m.Name]
			if !ok {
				continue
			}
			if err := putMember(rec[m.Offset:m.Offset+m.Type.Size], m.Type, v); err != nil {
				return nil, fmt.Errorf("row %d member %q: %w", i, m.Name, err)
			}
		}
	}
	return buf, nil
}

func putMember(b []byte, dt Datatype, v any) error {
	switch dt.Class {
	case ClassFixedPoint:
		n, ok := asInt64(v)
		if !ok {
			return fmt.Errorf("%w: %T for integer member", ErrDatatype, v)
		}
		if !intFits(n, dt.Size, dt.Signed) {
			return fmt.Errorf("%w: %d", ErrRange, n)
		}
		putInt(b, n, dt.Size)
	case ClassFloatPoint:
		f, ok := asFloat64(v)
		if !ok {
			return fmt.Errorf("%w: %T for float member", ErrDatatype, v)
		}
		return putFloat(b, f, dt.Size)
	case ClassString:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: %T for string member", ErrDatatype, v)
		}
		return putString(b, s)
	default:
		return fmt.Errorf("%w: member class %d", ErrDatatype, dt.Class)
	}
	return nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	}
	if n, ok := asInt64(v); ok {
		return float64(n), true
	}
	return 0, false
}
