package h5tree

import (
	"fmt"
)

// Write operations create a new member of an evaluated group and write it
// to the file before returning. They do not change the group's member
// list; call Refresh to see the new member.

func (e *Entry) checkWritable() error {
	if e.tree.closed {
		return ErrClosed
	}
	if e.kind != KindGroup {
		return fmt.Errorf("%q: %w", e.name, ErrNotGroup)
	}
	if e.state != StateEvaluated {
		return fmt.Errorf("%q: %w", e.name, ErrNotEvaluated)
	}
	return nil
}

func (e *Entry) wrapWrite(name string, err error) error {
	if err != nil {
		return fmt.Errorf("h5tree: writing %q in %q: %w", name, e.name, err)
	}
	e.tree.log.WithField("entry", e.name).WithField("member", name).Debug("member written")
	return nil
}

// WriteIntArray writes data as a one dimensional 8-byte integer dataset.
func (e *Entry) WriteIntArray(name string, data []int64) error {
	if err := e.checkWritable(); err != nil {
		return err
	}
	return e.wrapWrite(name, e.tree.store.WriteInts(e.handle, name, []uint64{uint64(len(data))}, data, 8))
}

// WriteIntMatrix writes rows as a two dimensional 8-byte integer dataset.
func (e *Entry) WriteIntMatrix(name string, rows [][]int64) error {
	if err := e.checkWritable(); err != nil {
		return err
	}
	flat, dims, err := flatten(rows)
	if err != nil {
		return fmt.Errorf("%q: %w", name, err)
	}
	return e.wrapWrite(name, e.tree.store.WriteInts(e.handle, name, dims, flat, 8))
}

// WriteFloatArray writes data as a one dimensional 8-byte float dataset.
func (e *Entry) WriteFloatArray(name string, data []float64) error {
	if err := e.checkWritable(); err != nil {
		return err
	}
	return e.wrapWrite(name, e.tree.store.WriteFloats(e.handle, name, []uint64{uint64(len(data))}, data, 8))
}

// WriteFloatMatrix writes rows as a two dimensional 8-byte float dataset.
func (e *Entry) WriteFloatMatrix(name string, rows [][]float64) error {
	if err := e.checkWritable(); err != nil {
		return err
	}
	flat, dims, err := flatten(rows)
	if err != nil {
		return fmt.Errorf("%q: %w", name, err)
	}
	return e.wrapWrite(name, e.tree.store.WriteFloats(e.handle, name, dims, flat, 8))
}

// WriteString writes s as a scalar fixed-length string.
func (e *Entry) WriteString(name, s string) error {
	if err := e.checkWritable(); err != nil {
		return err
	}
	return e.wrapWrite(name, e.tree.store.WriteStrings(e.handle, name, nil, []string{s}))
}

// WriteStrings writes values as a one dimensional fixed-length string
// dataset sized to the longest value.
func (e *Entry) WriteStrings(name string, values []string) error {
	if err := e.checkWritable(); err != nil {
		return err
	}
	return e.wrapWrite(name, e.tree.store.WriteStrings(e.handle, name, []uint64{uint64(len(values))}, values))
}

// WriteChannelLocations writes locs as a channel-location compound table.
func (e *Entry) WriteChannelLocations(name string, locs []ChannelLocation) error {
	if err := e.checkWritable(); err != nil {
		return err
	}
	return e.wrapWrite(name, e.tree.store.WriteRecords(e.handle, name, channelFields, packChannels(locs)))
}

// CreateGroup creates an empty group.
func (e *Entry) CreateGroup(name string) error {
	if err := e.checkWritable(); err != nil {
		return err
	}
	return e.wrapWrite(name, e.tree.store.CreateGroup(e.handle, name))
}

// flatten packs equal-length rows into one row-major block.
func flatten[T int64 | float64](rows [][]T) ([]T, []uint64, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, nil, ErrShape
	}
	cols := len(rows[0])
	flat := make([]T, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrShape, i, len(r), cols)
		}
		flat = append(flat, r...)
	}
	return flat, []uint64{uint64(len(rows)), uint64(cols)}, nil
}
