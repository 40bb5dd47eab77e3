package h5tree

import (
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-h5tree/storage"
)

func TestOpenEvaluatesOnlyRoot(t *testing.T) {
	tr, s := openSpy(t, "integers.h5")
	defer tr.Close()

	root := tr.Root()
	assert.True(t, root.Evaluated())
	assert.Equal(t, 8, root.NumChildren())
	assert.Equal(t, []string{"/"}, s.opened)
	for _, c := range root.Children() {
		assert.Equal(t, StateUnevaluated, c.State(), c.Name())
		assert.Nil(t, c.Data())
	}
	assert.ElementsMatch(t,
		[]string{"int8", "int16", "int32", "int64", "uint8", "uint16", "uint32", "uint64"},
		tr.Names())
}

func TestEagerRoot(t *testing.T) {
	tr, s := openSpy(t, "integers.h5", WithEagerRoot(true))
	defer tr.Close()

	assert.Len(t, s.opened, 9)
	for _, c := range tr.Root().Children() {
		assert.True(t, c.Evaluated(), c.Name())
	}
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(fixture("does-not-exist.h5"))
	assert.ErrorIs(t, err, ErrIO)

	_, err = Open("tree_test.go")
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, storage.ErrUnsupported)
}

func TestIntegers(t *testing.T) {
	tr, err := Open(fixture("integers.h5"))
	require.NoError(t, err)
	defer tr.Close()

	tests := []struct {
		name  string
		width int
	}{
		{"int8", 1},
		{"int16", 2},
		{"int32", 4},
		{"int64", 8},
		{"uint8", 1},
		{"uint16", 2},
		{"uint32", 4},
		{"uint64", 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := tr.Dataset(tt.name)
			require.NoError(t, err)
			require.NotNil(t, ds)

			assert.Equal(t, CategoryInteger, ds.Category())
			rows, cols := ds.Shape()
			assert.Equal(t, 1, rows)
			assert.Equal(t, 5, cols)
			assert.Equal(t, 1, ds.Rank())
			assert.Equal(t, uint64(5*tt.width), ds.ByteSize())

			got, err := ds.AsInt()
			require.NoError(t, err)
			assert.Equal(t, [][]int64{{1, 2, 3, 4, 5}}, got)
			assert.Equal(t, tt.width, ds.Data().(*IntMatrix).Width)
		})
	}
}

func TestFloats(t *testing.T) {
	tr, err := Open(fixture("floats.h5"))
	require.NoError(t, err)
	defer tr.Close()

	for _, name := range []string{"float32", "float64"} {
		ds, err := tr.Dataset(name)
		require.NoError(t, err)
		require.NotNil(t, ds, name)

		got, err := ds.AsFloat()
		require.NoError(t, err)
		assert.Equal(t, [][]float64{{1.5, 2.5, 3.5}}, got, name)

		_, err = ds.AsInt()
		var mismatch *MismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, CategoryInteger, mismatch.Want)
		assert.Equal(t, CategoryFloat, mismatch.Got)
		assert.ErrorIs(t, err, ErrTypeMismatch)
	}
}

func TestStrings(t *testing.T) {
	tr, err := Open(fixture("strings.h5"))
	require.NoError(t, err)
	defer tr.Close()

	tests := []struct {
		name string
		want []string
	}{
		{"fixed", []string{"hello", "world"}},
		{"variable", []string{"hello", "variable length world"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := tr.Dataset(tt.name)
			require.NoError(t, err)
			require.NotNil(t, ds)

			assert.Equal(t, CategoryString, ds.Category())
			got, err := ds.AsStrings()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			s, err := ds.AsString()
			require.NoError(t, err)
			assert.Equal(t, strings.Join(tt.want, ""), s)

			_, err = ds.AsFloat()
			assert.ErrorIs(t, err, ErrTypeMismatch)
		})
	}
}

func TestShapes(t *testing.T) {
	tr, err := Open(fixture("multidim.h5"))
	require.NoError(t, err)
	defer tr.Close()

	d2, err := tr.Dataset("2d")
	require.NoError(t, err)
	require.NotNil(t, d2)
	rows, cols := d2.Shape()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 4, cols)
	assert.Equal(t, 2, d2.Rank())
	got, err := d2.AsInt()
	require.NoError(t, err)
	assert.Equal(t, []int64{8, 9, 10, 11}, got[2])

	d3, err := tr.Dataset("3d")
	require.NoError(t, err)
	require.NotNil(t, d3)
	rows, cols = d3.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 12, cols)
	assert.Equal(t, []uint64{2, 3, 4}, d3.Dims())
	m := d3.Data().(*FloatMatrix)
	assert.Len(t, m.Flat(), 24)
	assert.Len(t, m.Row(1), 12)
	assert.Equal(t, m.Flat()[12], m.At(1, 0))

	sc, err := Open(fixture("scalar.h5"))
	require.NoError(t, err)
	defer sc.Close()
	ds, err := sc.Dataset("scalar")
	require.NoError(t, err)
	require.NotNil(t, ds)
	assert.Equal(t, 0, ds.Rank())
	assert.Nil(t, ds.Dims())
	v, err := ds.AsInt()
	require.NoError(t, err)
	assert.Equal(t, [][]int64{{42}}, v)
}

func TestShapeOf(t *testing.T) {
	tests := []struct {
		dims       []uint64
		rows, cols int
	}{
		{nil, 1, 1},
		{[]uint64{0}, 1, 0},
		{[]uint64{7}, 1, 7},
		{[]uint64{3, 4}, 3, 4},
		{[]uint64{2, 3, 4}, 2, 12},
		{[]uint64{5, 0, 2}, 5, 0},
	}
	for _, tt := range tests {
		rows, cols := shapeOf(tt.dims)
		assert.Equal(t, tt.rows, rows, "%v", tt.dims)
		assert.Equal(t, tt.cols, cols, "%v", tt.dims)
	}
}

func TestChunkedAndCompressed(t *testing.T) {
	tr, err := Open(fixture("compressed.h5"))
	require.NoError(t, err)
	defer tr.Close()

	for _, name := range []string{"gzip", "shuffle_gzip"} {
		ds, err := tr.Dataset(name)
		require.NoError(t, err)
		require.NotNil(t, ds, name)
		rows, err := ds.AsFloat()
		require.NoError(t, err)
		require.Len(t, rows, 100)
		assert.Len(t, rows[99], 100)
	}

	ch, err := Open(fixture("chunked.h5"))
	require.NoError(t, err)
	defer ch.Close()
	ds, err := ch.Dataset("chunked")
	require.NoError(t, err)
	require.NotNil(t, ds)
	rows, err := ds.AsFloat()
	require.NoError(t, err)
	assert.Equal(t, 99.0, rows[9][9])
}

func TestLookupMemoizes(t *testing.T) {
	tr, s := openSpy(t, "integers.h5")
	defer tr.Close()

	first, err := tr.Lookup("int16")
	require.NoError(t, err)
	second, err := tr.Lookup("int16")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, []string{"/", "int16"}, s.opened)
	assert.Equal(t, 1, s.reads)
}

func TestLookupMisses(t *testing.T) {
	tr, err := Open(fixture("groups.h5"))
	require.NoError(t, err)
	defer tr.Close()

	e, err := tr.Lookup("nope")
	assert.NoError(t, err)
	assert.Nil(t, e)

	// One level at a time.
	e, err = tr.Lookup("group1/data")
	assert.NoError(t, err)
	assert.Nil(t, e)

	e, err = tr.Dataset("group1")
	assert.NoError(t, err)
	assert.Nil(t, e)

	g, err := tr.Group("group1")
	require.NoError(t, err)
	require.NotNil(t, g)
	ds, err := g.Dataset("data")
	require.NoError(t, err)
	require.NotNil(t, ds)

	// Datasets have no members.
	e, err = ds.Lookup("data")
	assert.NoError(t, err)
	assert.Nil(t, e)
}

func TestEvaluationFailureIsRetryable(t *testing.T) {
	tr, s := openSpy(t, "integers.h5")
	defer tr.Close()

	injected := errors.New("disk on fire")
	s.failOpen["int32"] = injected

	e, err := tr.Lookup("int32")
	assert.Nil(t, e)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, injected)
	var ev *EvalError
	require.ErrorAs(t, err, &ev)
	assert.Equal(t, "open", ev.Op)
	assert.Equal(t, "int32", ev.Name)

	var failed *Entry
	for _, c := range tr.Root().Children() {
		if c.Name() == "int32" {
			failed = c
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, StateFailed, failed.State())
	assert.ErrorIs(t, failed.Err(), injected)

	// Siblings are untouched.
	sib, err := tr.Lookup("int8")
	require.NoError(t, err)
	assert.True(t, sib.Evaluated())

	delete(s.failOpen, "int32")
	e, err = tr.Lookup("int32")
	require.NoError(t, err)
	assert.Same(t, failed, e)
	assert.True(t, e.Evaluated())
	assert.NoError(t, e.Err())
}

func TestReadFailureClosesHandle(t *testing.T) {
	tr, s := openSpy(t, "integers.h5")
	defer tr.Close()

	s.failRead["uint8"] = errors.New("short read")
	_, err := tr.Lookup("uint8")
	var ev *EvalError
	require.ErrorAs(t, err, &ev)
	assert.Equal(t, "read", ev.Op)
	assert.Equal(t, []string{"uint8"}, s.closed)
}

func TestReentrantEvaluation(t *testing.T) {
	tr, s := openSpy(t, "integers.h5")
	defer tr.Close()

	var target *Entry
	for _, c := range tr.Root().Children() {
		if c.Name() == "int64" {
			target = c
		}
	}
	require.NotNil(t, target)

	var inner error
	s.onOpen = func(name string) {
		if name == "int64" {
			assert.Equal(t, StateEvaluating, target.State())
			inner = target.Evaluate()
		}
	}
	require.NoError(t, target.Evaluate())
	assert.ErrorIs(t, inner, ErrReentrant)
	assert.True(t, target.Evaluated())
}

func TestUnsupportedCategory(t *testing.T) {
	s := newSpy()
	l, hook := quietLogger()
	s.meta["int8"] = storage.Meta{Class: storage.ClassEnum, ElemSize: 1, Shape: []uint64{5}, ByteSize: 5}

	tr, err := OpenWithStorage(s, fixture("integers.h5"), WithLogger(l))
	require.NoError(t, err)

	ds, err := tr.Dataset("int8")
	require.NoError(t, err)
	require.NotNil(t, ds)
	assert.Equal(t, CategoryUnsupported, ds.Category())
	assert.Equal(t, "enum data is not decoded", ds.Diagnostic())
	assert.Equal(t, storage.ClassEnum, ds.Data().(*Unsupported).Class)
	assert.Zero(t, s.reads)

	_, err = ds.AsInt()
	assert.ErrorIs(t, err, ErrTypeMismatch)

	var warned bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && entry.Message == "unsupported datatype" {
			warned = true
			assert.Equal(t, "int8", entry.Data["entry"])
		}
	}
	assert.True(t, warned)

	require.NoError(t, tr.Close())
	assert.ElementsMatch(t, s.opened, s.closed)
}

func TestNameTooLong(t *testing.T) {
	s := newSpy()
	l, hook := quietLogger()
	long := strings.Repeat("x", MaxNameLen+1)
	s.extra["/"] = []storage.Child{{Name: long, Kind: storage.KindDataset}}

	tr, err := OpenWithStorage(s, fixture("scalar.h5"), WithLogger(l))
	require.NoError(t, err)
	defer tr.Close()
	assert.NotEmpty(t, hook.AllEntries())

	assert.Contains(t, tr.Names(), long)
	_, err = tr.Lookup(long)
	assert.ErrorIs(t, err, ErrNameTooLong)
	assert.NotContains(t, s.opened, long)

	listed := tr.Root().Children()
	require.NotEmpty(t, listed)
	tooLong := listed[len(listed)-1]
	assert.ErrorIs(t, tooLong.Evaluate(), ErrNameTooLong)
	assert.Equal(t, StateFailed, tooLong.State())

	ok, err := tr.Dataset("scalar")
	require.NoError(t, err)
	assert.NotNil(t, ok)
}

func TestDuplicatePolicy(t *testing.T) {
	tests := []struct {
		policy  DuplicatePolicy
		index   int
		wantErr error
	}{
		{FirstMatch, 0, nil},
		{LastMatch, 2, nil},
		{RejectDuplicates, -1, ErrDuplicateName},
	}
	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			s := newSpy()
			s.extra["/"] = []storage.Child{{Name: "scalar", Kind: storage.KindDataset}, {Name: "scalar", Kind: storage.KindDataset}}
			tr, err := OpenWithStorage(s, fixture("scalar.h5"), WithDuplicatePolicy(tt.policy))
			require.NoError(t, err)
			defer tr.Close()

			children := tr.Root().Children()
			require.Len(t, children, 3)

			e, err := tr.Lookup("scalar")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, e)
				return
			}
			require.NoError(t, err)
			assert.Same(t, children[tt.index], e)
		})
	}
}

func TestParseDuplicatePolicy(t *testing.T) {
	for _, p := range []DuplicatePolicy{FirstMatch, LastMatch, RejectDuplicates} {
		got, ok := ParseDuplicatePolicy(p.String())
		assert.True(t, ok)
		assert.Equal(t, p, got)
	}
	_, ok := ParseDuplicatePolicy("random")
	assert.False(t, ok)
}

func TestDanglingLinks(t *testing.T) {
	tr, err := Open(fixture("dangling_link.h5"))
	require.NoError(t, err)
	defer tr.Close()

	e, err := tr.Lookup("missing")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, KindOther, e.Kind())
	assert.False(t, e.Evaluated())

	_, err = e.AsInt()
	assert.ErrorIs(t, err, ErrTypeMismatch)

	realData, err := tr.Dataset("real_data")
	require.NoError(t, err)
	require.NotNil(t, realData)
	got, err := realData.AsInt()
	require.NoError(t, err)
	assert.Equal(t, [][]int64{{1, 2, 3}}, got)
}

func TestCloseReleasesEverything(t *testing.T) {
	tr, s := openSpy(t, "groups.h5")

	require.NoError(t, tr.Root().Force())
	g, err := tr.Group("group1")
	require.NoError(t, err)
	ds, err := g.Dataset("data")
	require.NoError(t, err)

	require.NoError(t, tr.Close())
	assert.ElementsMatch(t, s.opened, s.closed)
	assert.Equal(t, "/", s.closed[len(s.closed)-1])
	assert.Zero(t, s.Storage.(interface{ OpenHandles() int }).OpenHandles())

	assert.Equal(t, StateUnevaluated, ds.State())
	assert.Nil(t, ds.Data())
	assert.Zero(t, g.NumChildren())

	assert.ErrorIs(t, tr.Close(), ErrClosed)
	_, err = tr.Lookup("group1")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, ds.Evaluate(), ErrClosed)
	assert.Contains(t, tr.String(), "closed")
}

func TestUnevaluatedAccess(t *testing.T) {
	tr, err := Open(fixture("integers.h5"))
	require.NoError(t, err)
	defer tr.Close()

	c := tr.Root().Children()[0]
	_, err = c.AsInt()
	assert.ErrorIs(t, err, ErrNotEvaluated)
	assert.Contains(t, c.String(), "unevaluated")
}

func TestStringers(t *testing.T) {
	tr, err := Open(fixture("multidim.h5"))
	require.NoError(t, err)
	defer tr.Close()

	assert.Contains(t, tr.String(), "2 members")
	ds, err := tr.Dataset("2d")
	require.NoError(t, err)
	assert.Equal(t, `dataset "2d" integer 3x4, 48 bytes`, ds.String())
	assert.Equal(t, `group "/" (2 members)`, tr.Root().String())
}
