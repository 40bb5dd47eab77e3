// Package storage defines the contract between the lazy tree in package h5tree
// and the hierarchical file format underneath it.
//
// A Storage hands out opaque handles for open containers, groups and
// datasets. Every handle returned by an Open* call must be passed to Close
// (or CloseContainer) exactly once. Child handles are opened relative to an
// already open parent handle, so a parent must stay open while any of its
// children may still be opened.
package storage

import "fmt"

// Handle is an opaque reference to an open object in a container.
type Handle uint64

// InvalidHandle is never returned by a successful open.
const InvalidHandle Handle = 0

// Kind is the kind of object a group member refers to.
type Kind uint8

const (
	KindOther Kind = iota
	KindGroup
	KindDataset
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindDataset:
		return "dataset"
	default:
		return "other"
	}
}

// Class is the HDF5 datatype class code of a dataset's elements.
type Class uint8

const (
	ClassFixedPoint Class = 0
	ClassFloatPoint Class = 1
	ClassTime       Class = 2
	ClassString     Class = 3
	ClassBitfield   Class = 4
	ClassOpaque     Class = 5
	ClassCompound   Class = 6
	ClassReference  Class = 7
	ClassEnum       Class = 8
	ClassVarLen     Class = 9
	ClassArray      Class = 10
)

var classNames = [...]string{
	ClassFixedPoint: "integer",
	ClassFloatPoint: "float",
	ClassTime:       "time",
	ClassString:     "string",
	ClassBitfield:   "bitfield",
	ClassOpaque:     "opaque",
	ClassCompound:   "compound",
	ClassReference:  "reference",
	ClassEnum:       "enum",
	ClassVarLen:     "vlen",
	ClassArray:      "array",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// Child is one member of a group as reported by ListChildren.
type Child struct {
	Name string
	Kind Kind
}

// Meta describes a dataset without reading its payload.
type Meta struct {
	// Shape is nil for scalar datasets.
	Shape []uint64

	Class    Class
	ElemSize int

	// Signed is only meaningful for ClassFixedPoint.
	Signed bool

	// VarString marks a variable-length string (ClassVarLen holding text).
	VarString bool

	// ByteSize is the stored payload size: Elements() * ElemSize.
	ByteSize uint64
}

// Elements returns the number of elements described by Shape.
func (m Meta) Elements() uint64 {
	n := uint64(1)
	for _, d := range m.Shape {
		n *= d
	}
	return n
}

// FieldType is the coarse type of a compound member.
type FieldType uint8

const (
	FieldOther FieldType = iota
	FieldInt
	FieldFloat
	FieldString
)

func (t FieldType) String() string {
	switch t {
	case FieldInt:
		return "int"
	case FieldFloat:
		return "float"
	case FieldString:
		return "string"
	default:
		return "other"
	}
}

// Field describes one member of a compound record.
type Field struct {
	Name string
	Type FieldType

	// Size is the stored width in bytes, or 0 when the backend cannot tell.
	Size int

	// Offset is the byte offset of the member within a record, or -1 when
	// the backend cannot tell.
	Offset int

	// Mangled marks a Name that is the Go field name derived from the
	// stored member name (see GoFieldName) because the stored name could
	// not be recovered.
	Mangled bool
}

// Is reports whether f is the member stored as name.
func (f Field) Is(name string) bool {
	if f.Mangled {
		return f.Name == GoFieldName(name)
	}
	return f.Name == name
}

// GoFieldName returns the exported Go field name a reflecting backend
// derives from a compound member name. The mapping is not reversible.
func GoFieldName(name string) string {
	if name == "" {
		return "Field"
	}
	r := []rune(name)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	for i, c := range r {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_') {
			r[i] = '_'
		}
	}
	return string(r)
}

// RecordTable is the payload of a compound dataset.
type RecordTable struct {
	// Stride is the size of one stored record in bytes.
	Stride int
	Fields []Field

	// Raw holds len(Rows)*Stride bytes exactly as stored.
	Raw []byte

	// Rows holds the decoded records keyed by member name. Integers are
	// int64, or uint64 for unsigned 64-bit members; floats are float64.
	Rows []map[string]any
}

// Storage is the hierarchical file collaborator used by the tree.
//
// Implementations are not required to be safe for concurrent use.
type Storage interface {
	// OpenContainer opens an existing container read-only.
	OpenContainer(path string) (Handle, error)
	// CreateContainer creates a new, writable container at path.
	CreateContainer(path string) (Handle, error)
	// CloseContainer closes a container handle. All handles opened
	// beneath it must already be closed.
	CloseContainer(file Handle) error

	// OpenRoot opens the root group of a container.
	OpenRoot(file Handle) (Handle, error)
	// OpenChild opens the member called name of the group parent.
	// name is a single path segment.
	OpenChild(parent Handle, name string) (Handle, error)
	// ListChildren returns the members of a group in storage order.
	ListChildren(group Handle) ([]Child, error)

	DatasetMeta(ds Handle) (Meta, error)
	ReadInts(ds Handle) ([]int64, error)
	ReadFloats(ds Handle) ([]float64, error)
	ReadStrings(ds Handle) ([]string, error)
	ReadRecords(ds Handle) (*RecordTable, error)

	// Write primitives create a new member of group and write it at once.
	// They never replace an existing member.
	WriteInts(group Handle, name string, dims []uint64, data []int64, width int) error
	WriteFloats(group Handle, name string, dims []uint64, data []float64, width int) error
	WriteStrings(group Handle, name string, dims []uint64, data []string) error
	WriteRecords(group Handle, name string, fields []Field, rows []map[string]any) error
	CreateGroup(group Handle, name string) error

	// Close releases a group or dataset handle.
	Close(h Handle) error
}
