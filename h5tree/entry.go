package h5tree

import (
	"fmt"
	"strings"

	"github.com/robert-malhotra/go-h5tree/storage"
)

// MaxNameLen is the longest member name, in bytes, an entry can hold.
const MaxNameLen = 1024

// Kind is the kind of object an Entry refers to.
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

func kindOf(k storage.Kind) Kind {
	switch k {
	case storage.KindGroup:
		return KindGroup
	case storage.KindDataset:
		return KindDataset
	default:
		return KindOther
	}
}

// State is the evaluation state of an Entry.
type State uint8

const (
	StateUnevaluated State = iota
	StateEvaluating
	StateEvaluated
	// StateFailed entries hold nothing; evaluating them again retries.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnevaluated:
		return "unevaluated"
	case StateEvaluating:
		return "evaluating"
	case StateEvaluated:
		return "evaluated"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Entry is a node of a Tree: a group, a dataset or an object of another
// kind. Entries are created unevaluated when their group is enumerated and
// read from storage on first access.
//
// A group owns its children. Entries hold no reference to their parent,
// only the parent's handle, which stays open until the tree is closed.
type Entry struct {
	tree   *Tree
	kind   Kind
	name   string
	root   bool
	parent storage.Handle

	state  State
	handle storage.Handle
	err    error

	category Category
	shape    []uint64
	rows     int
	cols     int
	byteSize uint64
	data     Buffer
	diag     string

	children []*Entry
}

func (e *Entry) Name() string { return e.name }
func (e *Entry) Kind() Kind   { return e.kind }
func (e *Entry) State() State { return e.state }

func (e *Entry) IsGroup() bool   { return e.kind == KindGroup }
func (e *Entry) IsDataset() bool { return e.kind == KindDataset }

// Evaluated reports whether the entry's children or payload are loaded.
func (e *Entry) Evaluated() bool { return e.state == StateEvaluated }

// Err returns the error of the last failed evaluation, or nil.
func (e *Entry) Err() error { return e.err }

// Category returns the payload category of an evaluated dataset and
// CategoryNone otherwise.
func (e *Entry) Category() Category { return e.category }

// Shape returns the dataset's row and column counts. Scalars are 1x1, one
// dimensional data is a single row, and dimensions after the first are
// folded into the columns.
func (e *Entry) Shape() (rows, cols int) { return e.rows, e.cols }

func (e *Entry) Rows() int { return e.rows }
func (e *Entry) Cols() int { return e.cols }

// Dims returns the stored dimensions of an evaluated dataset; nil for
// scalars.
func (e *Entry) Dims() []uint64 { return append([]uint64(nil), e.shape...) }

// Rank returns the number of stored dimensions.
func (e *Entry) Rank() int { return len(e.shape) }

// ByteSize returns the stored payload size of an evaluated dataset.
func (e *Entry) ByteSize() uint64 { return e.byteSize }

// Data returns the payload of an evaluated dataset, or nil.
func (e *Entry) Data() Buffer { return e.data }

// Diagnostic describes a non-fatal problem met during evaluation, such as
// an unsupported datatype.
func (e *Entry) Diagnostic() string { return e.diag }

// NumChildren returns the number of members of an evaluated group.
func (e *Entry) NumChildren() int { return len(e.children) }

// Children returns the members of an evaluated group in storage order.
// Children are not evaluated by this call.
func (e *Entry) Children() []*Entry {
	return append([]*Entry(nil), e.children...)
}

// Names returns the member names of an evaluated group.
func (e *Entry) Names() []string {
	if e.children == nil {
		return nil
	}
	names := make([]string, len(e.children))
	for i, c := range e.children {
		names[i] = c.name
	}
	return names
}

func (e *Entry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %q", e.kind, e.name)
	switch {
	case e.state != StateEvaluated:
		fmt.Fprintf(&b, " (%s)", e.state)
	case e.kind == KindGroup:
		fmt.Fprintf(&b, " (%d members)", len(e.children))
	case e.kind == KindDataset:
		fmt.Fprintf(&b, " %s %dx%d, %d bytes", e.category, e.rows, e.cols, e.byteSize)
	}
	return b.String()
}
