package h5tree

import (
	"fmt"
	"strings"

	"github.com/robert-malhotra/go-h5tree/storage"
)

// Buffer is the payload of an evaluated dataset. It is one of *IntMatrix,
// *FloatMatrix, *Text, *RecordBlob or *Unsupported.
type Buffer interface {
	Category() Category
	// Len returns the number of stored elements (records for RecordBlob).
	Len() int

	isBuffer()
}

// Matrix is a row-major rows x cols block held in one allocation, with one
// row slice per row indexing into it.
type Matrix[T int64 | float64] struct {
	data  []T
	rows  [][]T
	nrows int
	ncols int
}

func newMatrix[T int64 | float64](data []T, rows, cols int) (Matrix[T], error) {
	if len(data) != rows*cols {
		return Matrix[T]{}, fmt.Errorf("%d values for a %dx%d matrix", len(data), rows, cols)
	}
	m := Matrix[T]{data: data, rows: make([][]T, rows), nrows: rows, ncols: cols}
	for i := range m.rows {
		m.rows[i] = data[i*cols : (i+1)*cols : (i+1)*cols]
	}
	return m, nil
}

// At returns the element at row i, column j.
func (m *Matrix[T]) At(i, j int) T { return m.rows[i][j] }

// Row returns row i. The slice aliases the matrix.
func (m *Matrix[T]) Row(i int) []T { return m.rows[i] }

// Rows returns every row. The slices alias the matrix.
func (m *Matrix[T]) Rows() [][]T { return m.rows }

// Flat returns the contiguous row-major block.
func (m *Matrix[T]) Flat() []T { return m.data }

// Dims returns the row and column counts.
func (m *Matrix[T]) Dims() (rows, cols int) { return m.nrows, m.ncols }

func (m *Matrix[T]) Len() int { return len(m.data) }

func (m *Matrix[T]) free() {
	m.data = nil
	m.rows = nil
}

// IntMatrix holds integer data widened to int64. Width is the stored
// element size in bytes.
type IntMatrix struct {
	Matrix[int64]
	Width int
}

func (*IntMatrix) Category() Category { return CategoryInteger }
func (*IntMatrix) isBuffer()          {}

// FloatMatrix holds floating point data widened to float64. Width is the
// stored element size in bytes, so 4 means every value is exact float32.
type FloatMatrix struct {
	Matrix[float64]
	Width int
}

func (*FloatMatrix) Category() Category { return CategoryFloat }
func (*FloatMatrix) isBuffer()          {}

// Text holds the elements of a string dataset with padding removed.
type Text struct {
	Values []string
}

func (*Text) Category() Category { return CategoryString }
func (t *Text) Len() int         { return len(t.Values) }
func (*Text) isBuffer()          {}

// String returns the elements concatenated.
func (t *Text) String() string { return strings.Join(t.Values, "") }

// RecordBlob holds a compound dataset as stored: Count records of Stride
// bytes. Channels is set when the records are channel locations.
type RecordBlob struct {
	Stride int
	Count  int
	Fields []storage.Field
	Raw    []byte

	// Rows holds the decoded records keyed by member name. Unsigned 64-bit
	// members stay uint64.
	Rows     []map[string]any
	Channels []ChannelLocation
}

func (*RecordBlob) Category() Category { return CategoryCompound }
func (r *RecordBlob) Len() int         { return r.Count }
func (*RecordBlob) isBuffer()          {}

// Record returns the stored bytes of record i.
func (r *RecordBlob) Record(i int) []byte {
	return r.Raw[i*r.Stride : (i+1)*r.Stride]
}

// Unsupported is the placeholder payload of a dataset whose class has no
// decoder.
type Unsupported struct {
	Class storage.Class
}

func (*Unsupported) Category() Category { return CategoryUnsupported }
func (*Unsupported) Len() int           { return 0 }
func (*Unsupported) isBuffer()          {}
