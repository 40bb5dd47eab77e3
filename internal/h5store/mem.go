package h5store

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-h5tree/internal/h5write"
	"github.com/robert-malhotra/go-h5tree/storage"
)

// memGroup is a group of a writable container. Reads are served from the
// in-memory model the file is encoded from.
type memGroup struct {
	g *h5write.Group
	c *container
}

func (g *memGroup) children() ([]storage.Child, error) {
	out := make([]storage.Child, len(g.g.Children))
	for i, c := range g.g.Children {
		out[i] = storage.Child{Name: c.NodeName(), Kind: storage.KindGroup}
		if _, ok := c.(*h5write.Dataset); ok {
			out[i].Kind = storage.KindDataset
		}
	}
	return out, nil
}

func (g *memGroup) child(name string) (any, error) {
	switch n := g.g.Child(name).(type) {
	case *h5write.Group:
		return &memGroup{g: n, c: g.c}, nil
	case *h5write.Dataset:
		if d, ok := g.c.values[n]; ok {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", name, storage.ErrNotFound)
}

// memDataset is a dataset written through this Store. It keeps the values
// in the widened form the read primitives return.
type memDataset struct {
	info storage.Meta

	intData   []int64
	floatData []float64
	strData   []string
	recData   *storage.RecordTable
}

func (d *memDataset) meta() (storage.Meta, error) {
	m := d.info
	if d.info.Shape != nil {
		m.Shape = append([]uint64(nil), d.info.Shape...)
	}
	return m, nil
}

func (d *memDataset) ints() ([]int64, error) {
	if d.info.Class != storage.ClassFixedPoint {
		return nil, fmt.Errorf("reading %s as integers: %w", d.info.Class, storage.ErrUnsupported)
	}
	return append([]int64(nil), d.intData...), nil
}

func (d *memDataset) floats() ([]float64, error) {
	switch d.info.Class {
	case storage.ClassFloatPoint:
		return append([]float64(nil), d.floatData...), nil
	case storage.ClassFixedPoint:
		out := make([]float64, len(d.intData))
		for i, v := range d.intData {
			out[i] = float64(v)
		}
		return out, nil
	}
	return nil, fmt.Errorf("reading %s as floats: %w", d.info.Class, storage.ErrUnsupported)
}

func (d *memDataset) strings() ([]string, error) {
	if d.info.Class != storage.ClassString {
		return nil, fmt.Errorf("reading %s as strings: %w", d.info.Class, storage.ErrUnsupported)
	}
	return append([]string(nil), d.strData...), nil
}

func (d *memDataset) records() (*storage.RecordTable, error) {
	if d.recData == nil {
		return nil, fmt.Errorf("reading %s as records: %w", d.info.Class, storage.ErrUnsupported)
	}
	t := *d.recData
	t.Fields = append([]storage.Field(nil), d.recData.Fields...)
	t.Raw = append([]byte(nil), d.recData.Raw...)
	t.Rows = make([]map[string]any, len(d.recData.Rows))
	for i, row := range d.recData.Rows {
		cp := make(map[string]any, len(row))
		for k, v := range row {
			cp[k] = v
		}
		t.Rows[i] = cp
	}
	return &t, nil
}

// writableGroup resolves a group handle a write primitive may add to.
func (s *Store) writableGroup(h storage.Handle, name string) (*memGroup, error) {
	o, err := s.groupFor(h)
	if err != nil {
		return nil, err
	}
	g, ok := o.group.(*memGroup)
	if !ok {
		return nil, fmt.Errorf("%s: %w", o.file.path, storage.ErrReadOnly)
	}
	if !validName(name) {
		return nil, fmt.Errorf("%w: %q", h5write.ErrName, name)
	}
	if g.g.Child(name) != nil {
		return nil, fmt.Errorf("%q: %w", name, storage.ErrExists)
	}
	return g, nil
}

// commit adds n to g and rewrites the container. The model is left
// unchanged when the file cannot be written.
func (s *Store) commit(g *memGroup, n h5write.Node, value *memDataset) error {
	if err := g.g.Add(n); err != nil {
		if errors.Is(err, h5write.ErrExists) {
			return fmt.Errorf("%q: %w", n.NodeName(), storage.ErrExists)
		}
		return err
	}
	if err := h5write.WriteFile(g.c.path, g.c.model); err != nil {
		g.g.Children = g.g.Children[:len(g.g.Children)-1]
		return fmt.Errorf("writing %s: %w", g.c.path, err)
	}
	if ds, ok := n.(*h5write.Dataset); ok {
		g.c.values[ds] = value
	}
	s.log.WithField("name", n.NodeName()).Debug("member written")
	return nil
}

func checkDims(dims []uint64, n int) error {
	want := uint64(1)
	for _, d := range dims {
		want *= d
	}
	if want != uint64(n) {
		return fmt.Errorf("%w: %d values for dims %v", h5write.ErrShape, n, dims)
	}
	return nil
}

func cloneDims(dims []uint64) []uint64 {
	if len(dims) == 0 {
		return nil
	}
	return append([]uint64(nil), dims...)
}

// WriteInts creates a signed integer dataset of width bytes (8 when zero).
func (s *Store) WriteInts(group storage.Handle, name string, dims []uint64, data []int64, width int) error {
	g, err := s.writableGroup(group, name)
	if err != nil {
		return err
	}
	if width == 0 {
		width = 8
	}
	if err := checkDims(dims, len(data)); err != nil {
		return err
	}
	raw, err := h5write.EncodeInts(data, width, true)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	ds := &h5write.Dataset{Name: name, Dims: cloneDims(dims), Type: h5write.Int(width, true), Data: raw}
	return s.commit(g, ds, &memDataset{
		info:    metaOf(ds, storage.ClassFixedPoint),
		intData: append([]int64(nil), data...),
	})
}

// WriteFloats creates a floating point dataset of width bytes (8 when zero).
func (s *Store) WriteFloats(group storage.Handle, name string, dims []uint64, data []float64, width int) error {
	g, err := s.writableGroup(group, name)
	if err != nil {
		return err
	}
	if width == 0 {
		width = 8
	}
	if err := checkDims(dims, len(data)); err != nil {
		return err
	}
	raw, err := h5write.EncodeFloats(data, width)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	// Keep what a reader of the file would see after narrowing.
	values := make([]float64, len(data))
	for i, v := range data {
		if width == 4 {
			v = float64(float32(v))
		}
		values[i] = v
	}

	ds := &h5write.Dataset{Name: name, Dims: cloneDims(dims), Type: h5write.Float(width), Data: raw}
	return s.commit(g, ds, &memDataset{
		info:      metaOf(ds, storage.ClassFloatPoint),
		floatData: values,
	})
}

// WriteStrings creates a fixed-length string dataset sized to its longest
// value.
func (s *Store) WriteStrings(group storage.Handle, name string, dims []uint64, data []string) error {
	g, err := s.writableGroup(group, name)
	if err != nil {
		return err
	}
	if err := checkDims(dims, len(data)); err != nil {
		return err
	}
	size := h5write.StringSize(data)
	raw, err := h5write.EncodeStrings(data, size)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	ds := &h5write.Dataset{Name: name, Dims: cloneDims(dims), Type: h5write.FixedString(size), Data: raw}
	return s.commit(g, ds, &memDataset{
		info:    metaOf(ds, storage.ClassString),
		strData: append([]string(nil), data...),
	})
}

// WriteRecords creates a one dimensional compound dataset. Integer and
// float fields default to 8 bytes, string fields to their longest value.
func (s *Store) WriteRecords(group storage.Handle, name string, fields []storage.Field, rows []map[string]any) error {
	g, err := s.writableGroup(group, name)
	if err != nil {
		return err
	}

	members := make([]h5write.Member, len(fields))
	for i, f := range fields {
		dt, err := memberType(f, rows)
		if err != nil {
			return fmt.Errorf("%s: field %q: %w", name, f.Name, err)
		}
		members[i] = h5write.Member{Name: f.Name, Type: dt}
	}
	rt := h5write.Compound(members)
	raw, err := h5write.EncodeRecords(rt, rows)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	table := &storage.RecordTable{
		Stride: rt.Size,
		Fields: make([]storage.Field, len(fields)),
		Raw:    append([]byte(nil), raw...),
		Rows:   make([]map[string]any, len(rows)),
	}
	for i, m := range rt.Members {
		table.Fields[i] = storage.Field{Name: m.Name, Type: fields[i].Type, Offset: m.Offset}
		if fields[i].Type != storage.FieldString {
			table.Fields[i].Size = m.Type.Size
		}
	}
	for i, row := range rows {
		table.Rows[i] = decodedRow(rt, row)
	}

	ds := &h5write.Dataset{Name: name, Dims: []uint64{uint64(len(rows))}, Type: rt, Data: raw}
	return s.commit(g, ds, &memDataset{
		info:    metaOf(ds, storage.ClassCompound),
		recData: table,
	})
}

func memberType(f storage.Field, rows []map[string]any) (h5write.Datatype, error) {
	switch f.Type {
	case storage.FieldInt:
		return h5write.Int(orDefault(f.Size, 8), true), nil
	case storage.FieldFloat:
		return h5write.Float(orDefault(f.Size, 8)), nil
	case storage.FieldString:
		if f.Size > 0 {
			return h5write.FixedString(f.Size), nil
		}
		size := 1
		for _, row := range rows {
			if s, ok := row[f.Name].(string); ok {
				size = max(size, len(s))
			}
		}
		return h5write.FixedString(size), nil
	}
	return h5write.Datatype{}, h5write.ErrDatatype
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// decodedRow returns row as it reads back from the file: every member
// present, integers as int64, floats as float64.
func decodedRow(rt h5write.Datatype, row map[string]any) map[string]any {
	out := make(map[string]any, len(rt.Members))
	for _, m := range rt.Members {
		v := row[m.Name]
		switch m.Type.Class {
		case h5write.ClassFixedPoint:
			n, _ := toInt64(v)
			out[m.Name] = n
		case h5write.ClassFloatPoint:
			f, _ := toFloat64(v)
			if m.Type.Size == 4 {
				f = float64(float32(f))
			}
			out[m.Name] = f
		case h5write.ClassString:
			s, _ := v.(string)
			out[m.Name] = s
		}
	}
	return out
}

func toInt64(v any) (int64, bool) {
	switch n := normalize(v).(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		// Members written here are signed.
		return int64(n), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch f := normalize(v).(type) {
	case float64:
		return f, true
	case int:
		return float64(f), true
	case int64:
		return float64(f), true
	case uint64:
		return float64(f), true
	}
	return 0, false
}

func metaOf(ds *h5write.Dataset, class storage.Class) storage.Meta {
	return storage.Meta{
		Shape:    cloneDims(ds.Dims),
		Class:    class,
		ElemSize: ds.Type.Size,
		Signed:   class == storage.ClassFixedPoint,
		ByteSize: uint64(len(ds.Data)),
	}
}

// CreateGroup creates an empty group beneath group.
func (s *Store) CreateGroup(group storage.Handle, name string) error {
	g, err := s.writableGroup(group, name)
	if err != nil {
		return err
	}
	return s.commit(g, &h5write.Group{Name: name}, nil)
}
