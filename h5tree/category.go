package h5tree

import (
	"fmt"

	"github.com/robert-malhotra/go-h5tree/storage"
)

// Category is the decoded type of a dataset's payload.
type Category uint8

const (
	// CategoryNone is the category of groups and unevaluated entries.
	CategoryNone Category = iota
	CategoryInteger
	CategoryFloat
	CategoryString
	CategoryCompound
	CategoryUnsupported
)

var categoryNames = [...]string{
	CategoryNone:        "none",
	CategoryInteger:     "integer",
	CategoryFloat:       "float",
	CategoryString:      "string",
	CategoryCompound:    "compound",
	CategoryUnsupported: "unsupported",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

// Classify maps dataset metadata to a Category.
func Classify(m storage.Meta) Category {
	switch m.Class {
	case storage.ClassFixedPoint:
		return CategoryInteger
	case storage.ClassFloatPoint:
		return CategoryFloat
	case storage.ClassString:
		return CategoryString
	case storage.ClassVarLen:
		if m.VarString {
			return CategoryString
		}
	case storage.ClassCompound:
		return CategoryCompound
	}
	return CategoryUnsupported
}

// handler reads and frees one category of payload.
type handler struct {
	read func(s storage.Storage, h storage.Handle, m storage.Meta, rows, cols int) (Buffer, error)
	free func(b Buffer)
}

var handlers = map[Category]handler{
	CategoryInteger:     {read: readInts, free: freeMatrix},
	CategoryFloat:       {read: readFloats, free: freeMatrix},
	CategoryString:      {read: readText, free: freeText},
	CategoryCompound:    {read: readRecords, free: freeRecords},
	CategoryUnsupported: {read: readUnsupported, free: func(Buffer) {}},
}

func handlerFor(c Category) (handler, error) {
	hd, ok := handlers[c]
	if !ok {
		return handler{}, fmt.Errorf("%w: %s", ErrNoHandler, c)
	}
	return hd, nil
}

func readInts(s storage.Storage, h storage.Handle, m storage.Meta, rows, cols int) (Buffer, error) {
	data, err := s.ReadInts(h)
	if err != nil {
		return nil, err
	}
	mat, err := newMatrix(data, rows, cols)
	if err != nil {
		return nil, err
	}
	return &IntMatrix{Matrix: mat, Width: m.ElemSize}, nil
}

func readFloats(s storage.Storage, h storage.Handle, m storage.Meta, rows, cols int) (Buffer, error) {
	data, err := s.ReadFloats(h)
	if err != nil {
		return nil, err
	}
	mat, err := newMatrix(data, rows, cols)
	if err != nil {
		return nil, err
	}
	return &FloatMatrix{Matrix: mat, Width: m.ElemSize}, nil
}

func readText(s storage.Storage, h storage.Handle, _ storage.Meta, _, _ int) (Buffer, error) {
	values, err := s.ReadStrings(h)
	if err != nil {
		return nil, err
	}
	return &Text{Values: values}, nil
}

func readRecords(s storage.Storage, h storage.Handle, _ storage.Meta, _, _ int) (Buffer, error) {
	t, err := s.ReadRecords(h)
	if err != nil {
		return nil, err
	}
	blob := &RecordBlob{
		Stride: t.Stride,
		Count:  len(t.Rows),
		Fields: t.Fields,
		Raw:    t.Raw,
		Rows:   t.Rows,
	}
	if isChannelTable(t.Fields) {
		blob.Fields = canonicalChannelFields(t.Fields)
		blob.Channels = unpackChannels(t.Rows)
	}
	return blob, nil
}

func readUnsupported(_ storage.Storage, _ storage.Handle, m storage.Meta, _, _ int) (Buffer, error) {
	return &Unsupported{Class: m.Class}, nil
}

func freeMatrix(b Buffer) {
	switch m := b.(type) {
	case *IntMatrix:
		m.free()
	case *FloatMatrix:
		m.free()
	}
}

func freeText(b Buffer) {
	if t, ok := b.(*Text); ok {
		t.Values = nil
	}
}

func freeRecords(b Buffer) {
	if r, ok := b.(*RecordBlob); ok {
		r.Raw = nil
		r.Rows = nil
		r.Channels = nil
	}
}
