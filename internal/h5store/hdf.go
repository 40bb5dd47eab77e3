package h5store

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/robert-malhotra/go-hdf5/hdf5"

	"github.com/robert-malhotra/go-h5tree/storage"
)

// hdfGroup is a group of a file opened read-only.
type hdfGroup struct {
	g *hdf5.Group
}

func (g *hdfGroup) children() ([]storage.Child, error) {
	infos, err := g.g.MembersInfo()
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", g.g.Path(), err)
	}
	out := make([]storage.Child, len(infos))
	for i, info := range infos {
		out[i] = storage.Child{Name: info.Name, Kind: kindOf(info.Type)}
	}
	return out, nil
}

func kindOf(t hdf5.ObjectType) storage.Kind {
	switch t {
	case hdf5.ObjectTypeGroup:
		return storage.KindGroup
	case hdf5.ObjectTypeDataset:
		return storage.KindDataset
	default:
		return storage.KindOther
	}
}

func (g *hdfGroup) child(name string) (any, error) {
	sub, err := g.g.OpenGroup(name)
	if err == nil {
		return &hdfGroup{g: sub}, nil
	}
	if errors.Is(err, hdf5.ErrNotGroup) {
		ds, err := g.g.OpenDataset(name)
		if err != nil {
			return nil, openError(g.g, name, err)
		}
		return &hdfDataset{d: ds}, nil
	}
	return nil, openError(g.g, name, err)
}

func openError(g *hdf5.Group, name string, err error) error {
	if errors.Is(err, hdf5.ErrNotFound) {
		return fmt.Errorf("%s/%s: %w: %w", trimRoot(g.Path()), name, storage.ErrNotFound, err)
	}
	return fmt.Errorf("opening %s/%s: %w", trimRoot(g.Path()), name, err)
}

func trimRoot(p string) string {
	if p == "/" {
		return ""
	}
	return p
}

// hdfDataset is a dataset of a file opened read-only.
type hdfDataset struct {
	d *hdf5.Dataset
}

func (d *hdfDataset) meta() (storage.Meta, error) {
	m := storage.Meta{
		Class:    storage.Class(uint8(d.d.DtypeClass())),
		ElemSize: d.d.DtypeSize(),
	}
	if shape := d.d.Shape(); shape != nil {
		m.Shape = append([]uint64(nil), shape...)
	}
	m.ByteSize = m.Elements() * uint64(m.ElemSize)

	switch m.Class {
	case storage.ClassFixedPoint:
		t, err := d.d.GoType()
		if err != nil {
			return storage.Meta{}, fmt.Errorf("%s: %w", d.d.Path(), err)
		}
		m.Signed = isSigned(t.Kind())
	case storage.ClassVarLen:
		// Variable-length sequences of other types report a slice.
		if t, err := d.d.GoType(); err == nil && t.Kind() == reflect.String {
			m.VarString = true
		}
	}
	return m, nil
}

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func (d *hdfDataset) ints() ([]int64, error) {
	var out []int64
	if err := d.d.Read(&out); err != nil {
		return nil, fmt.Errorf("reading %s: %w", d.d.Path(), err)
	}
	return out, nil
}

func (d *hdfDataset) floats() ([]float64, error) {
	var out []float64
	if err := d.d.Read(&out); err != nil {
		return nil, fmt.Errorf("reading %s: %w", d.d.Path(), err)
	}
	return out, nil
}

func (d *hdfDataset) strings() ([]string, error) {
	out, err := d.d.ReadString()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", d.d.Path(), err)
	}
	return out, nil
}

func (d *hdfDataset) records() (*storage.RecordTable, error) {
	if storage.Class(uint8(d.d.DtypeClass())) != storage.ClassCompound {
		return nil, fmt.Errorf("%s: %w", d.d.Path(), storage.ErrNotDataset)
	}
	stride := d.d.DtypeSize()
	count := int(d.d.NumElements())

	raw, err := d.d.ReadRaw()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", d.d.Path(), err)
	}
	if len(raw) < count*stride {
		return nil, fmt.Errorf("reading %s: short payload of %d bytes", d.d.Path(), len(raw))
	}
	raw = raw[:count*stride]

	var rows []map[string]interface{}
	if err := d.d.Read(&rows); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", d.d.Path(), err)
	}
	for _, row := range rows {
		for k, v := range row {
			row[k] = normalize(v)
		}
	}

	t, err := d.d.GoType()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.d.Path(), err)
	}
	return &storage.RecordTable{
		Stride: stride,
		Fields: recordFields(t, rows),
		Raw:    raw,
		Rows:   rows,
	}, nil
}

// recordFields describes the members of the struct type go-hdf5 derives
// for a compound. Struct field names are mangled, so the stored member
// names are recovered from the decoded row keys. Without rows the mangled
// names are reported with Mangled set. go-hdf5 does not expose member
// offsets, so Offset is -1.
func recordFields(t reflect.Type, rows []map[string]interface{}) []storage.Field {
	if t.Kind() != reflect.Struct {
		return nil
	}
	names := make(map[string]string)
	if len(rows) > 0 {
		for k := range rows[0] {
			names[storage.GoFieldName(k)] = k
		}
	}

	fields := make([]storage.Field, t.NumField())
	for i := range fields {
		sf := t.Field(i)
		f := storage.Field{Name: sf.Name, Type: fieldType(sf.Type.Kind()), Offset: -1}
		if name, ok := names[sf.Name]; ok {
			f.Name = name
		} else {
			f.Mangled = true
		}
		if f.Type != storage.FieldString {
			f.Size = int(sf.Type.Size())
		}
		fields[i] = f
	}
	return fields
}

func fieldType(k reflect.Kind) storage.FieldType {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return storage.FieldInt
	case reflect.Float32, reflect.Float64:
		return storage.FieldFloat
	case reflect.String:
		return storage.FieldString
	}
	return storage.FieldOther
}

// normalize widens decoded member values to int64 and float64. uint64
// values are kept as they are so values above math.MaxInt64 survive.
func normalize(v any) any {
	switch n := v.(type) {
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case float32:
		return float64(n)
	}
	return v
}
