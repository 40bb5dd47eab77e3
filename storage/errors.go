package storage

import "errors"

// Errors reported by Storage implementations.
var (
	ErrBadHandle   = errors.New("invalid or closed handle")
	ErrNotFound    = errors.New("object not found")
	ErrNotGroup    = errors.New("object is not a group")
	ErrNotDataset  = errors.New("object is not a dataset")
	ErrReadOnly    = errors.New("container is read-only")
	ErrExists      = errors.New("object already exists")
	ErrUnsupported = errors.New("unsupported feature")
	ErrBusy        = errors.New("container has open handles")
)
