package h5tree

import "fmt"

// checkCategory validates e before a typed read. Groups and other kinds
// report CategoryNone as what they hold.
func (e *Entry) checkCategory(want Category) error {
	if e.kind == KindDataset && e.state != StateEvaluated {
		return ErrNotEvaluated
	}
	if e.category != want {
		return &MismatchError{Name: e.name, Want: want, Got: e.category}
	}
	return nil
}

// AsInt returns the rows of an integer dataset. The row slices alias the
// cached payload and must not be modified.
func (e *Entry) AsInt() ([][]int64, error) {
	if err := e.checkCategory(CategoryInteger); err != nil {
		return nil, err
	}
	return e.data.(*IntMatrix).Rows(), nil
}

// AsFloat returns the rows of a floating point dataset. The row slices
// alias the cached payload and must not be modified.
func (e *Entry) AsFloat() ([][]float64, error) {
	if err := e.checkCategory(CategoryFloat); err != nil {
		return nil, err
	}
	return e.data.(*FloatMatrix).Rows(), nil
}

// AsString returns the elements of a string dataset concatenated.
func (e *Entry) AsString() (string, error) {
	if err := e.checkCategory(CategoryString); err != nil {
		return "", err
	}
	return e.data.(*Text).String(), nil
}

// AsStrings returns the elements of a string dataset.
func (e *Entry) AsStrings() ([]string, error) {
	if err := e.checkCategory(CategoryString); err != nil {
		return nil, err
	}
	return append([]string(nil), e.data.(*Text).Values...), nil
}

// AsRecords returns the payload of a compound dataset.
func (e *Entry) AsRecords() (*RecordBlob, error) {
	if err := e.checkCategory(CategoryCompound); err != nil {
		return nil, err
	}
	return e.data.(*RecordBlob), nil
}

// AsChannelLocations returns the records of a channel-location table. A
// compound dataset with another layout is a mismatch.
func (e *Entry) AsChannelLocations() ([]ChannelLocation, error) {
	blob, err := e.AsRecords()
	if err != nil {
		return nil, err
	}
	if blob.Channels == nil && !isChannelTable(blob.Fields) {
		return nil, fmt.Errorf("%q: records are not channel locations: %w", e.name, ErrTypeMismatch)
	}
	out := make([]ChannelLocation, len(blob.Channels))
	copy(out, blob.Channels)
	return out, nil
}
