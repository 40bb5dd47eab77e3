package h5store

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/robert-malhotra/go-hdf5/hdf5"
	"github.com/sirupsen/logrus"

	"github.com/robert-malhotra/go-h5tree/internal/h5write"
	"github.com/robert-malhotra/go-h5tree/storage"
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for handle tracing.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Store is a storage.Storage over HDF5 files.
//
// A Store is not safe for concurrent use.
type Store struct {
	log     logrus.FieldLogger
	last    storage.Handle
	objects map[storage.Handle]*object
}

var _ storage.Storage = (*Store)(nil)

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		log:     logrus.StandardLogger(),
		objects: make(map[storage.Handle]*object),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type objectKind uint8

const (
	objContainer objectKind = iota
	objGroup
	objDataset
)

// object is one entry of the handle table.
type object struct {
	kind   objectKind
	parent storage.Handle
	file   *container

	// open counts handles opened directly beneath this one.
	open int

	group   groupNode
	dataset datasetNode
}

// container is an open file. Exactly one of file and model is set.
type container struct {
	path  string
	file  *hdf5.File
	model *h5write.Group

	// values holds every dataset written to model.
	values map[*h5write.Dataset]*memDataset
}

func (c *container) writable() bool { return c.model != nil }

type groupNode interface {
	children() ([]storage.Child, error)
	// child opens a direct member. The result is a groupNode or a
	// datasetNode.
	child(name string) (any, error)
}

type datasetNode interface {
	meta() (storage.Meta, error)
	ints() ([]int64, error)
	floats() ([]float64, error)
	strings() ([]string, error)
	records() (*storage.RecordTable, error)
}

// OpenHandles returns the number of handles currently open.
func (s *Store) OpenHandles() int { return len(s.objects) }

func (s *Store) add(parent storage.Handle, o *object) storage.Handle {
	s.last++
	h := s.last
	o.parent = parent
	s.objects[h] = o
	if p, ok := s.objects[parent]; ok {
		p.open++
	}
	s.log.WithFields(logrus.Fields{"handle": h, "parent": parent}).Debug("handle opened")
	return h
}

func (s *Store) get(h storage.Handle) (*object, error) {
	o, ok := s.objects[h]
	if !ok {
		return nil, fmt.Errorf("handle %d: %w", h, storage.ErrBadHandle)
	}
	return o, nil
}

func (s *Store) remove(h storage.Handle, o *object) error {
	if o.open > 0 {
		return fmt.Errorf("handle %d has %d open children: %w", h, o.open, storage.ErrBusy)
	}
	delete(s.objects, h)
	if p, ok := s.objects[o.parent]; ok {
		p.open--
	}
	s.log.WithField("handle", h).Debug("handle closed")
	return nil
}

func (s *Store) groupFor(h storage.Handle) (*object, error) {
	o, err := s.get(h)
	if err != nil {
		return nil, err
	}
	if o.kind != objGroup {
		return nil, fmt.Errorf("handle %d: %w", h, storage.ErrNotGroup)
	}
	return o, nil
}

func (s *Store) datasetFor(h storage.Handle) (datasetNode, error) {
	o, err := s.get(h)
	if err != nil {
		return nil, err
	}
	if o.kind != objDataset {
		return nil, fmt.Errorf("handle %d: %w", h, storage.ErrNotDataset)
	}
	return o.dataset, nil
}

// OpenContainer opens an existing HDF5 file read-only.
func (s *Store) OpenContainer(path string) (storage.Handle, error) {
	f, err := hdf5.Open(path)
	if err != nil {
		if errors.Is(err, hdf5.ErrNotHDF5) {
			return storage.InvalidHandle, fmt.Errorf("opening %s: %w: %w", path, storage.ErrUnsupported, err)
		}
		return storage.InvalidHandle, fmt.Errorf("opening %s: %w", path, err)
	}
	return s.add(storage.InvalidHandle, &object{kind: objContainer, file: &container{path: path, file: f}}), nil
}

// CreateContainer creates an empty HDF5 file at path, replacing any
// existing file, and keeps it open for writing.
func (s *Store) CreateContainer(path string) (storage.Handle, error) {
	c := &container{
		path:   path,
		model:  &h5write.Group{},
		values: make(map[*h5write.Dataset]*memDataset),
	}
	if err := h5write.WriteFile(path, c.model); err != nil {
		return storage.InvalidHandle, fmt.Errorf("creating %s: %w", path, err)
	}
	return s.add(storage.InvalidHandle, &object{kind: objContainer, file: c}), nil
}

// CloseContainer closes a container opened by OpenContainer or
// CreateContainer. Handles opened beneath it must be closed first.
func (s *Store) CloseContainer(file storage.Handle) error {
	o, err := s.get(file)
	if err != nil {
		return err
	}
	if o.kind != objContainer {
		return fmt.Errorf("handle %d is not a container: %w", file, storage.ErrBadHandle)
	}
	if err := s.remove(file, o); err != nil {
		return err
	}

	var result error
	if o.file.file != nil {
		if err := o.file.file.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("closing %s: %w", o.file.path, err))
		}
	}
	if o.file.writable() {
		if err := h5write.WriteFile(o.file.path, o.file.model); err != nil {
			result = multierror.Append(result, fmt.Errorf("flushing %s: %w", o.file.path, err))
		}
	}
	return result
}

// OpenRoot opens the root group of a container.
func (s *Store) OpenRoot(file storage.Handle) (storage.Handle, error) {
	o, err := s.get(file)
	if err != nil {
		return storage.InvalidHandle, err
	}
	if o.kind != objContainer {
		return storage.InvalidHandle, fmt.Errorf("handle %d is not a container: %w", file, storage.ErrBadHandle)
	}

	var g groupNode
	if o.file.writable() {
		g = &memGroup{g: o.file.model, c: o.file}
	} else {
		g = &hdfGroup{g: o.file.file.Root()}
	}
	return s.add(file, &object{kind: objGroup, file: o.file, group: g}), nil
}

// OpenChild opens the direct member name of the group parent.
func (s *Store) OpenChild(parent storage.Handle, name string) (storage.Handle, error) {
	o, err := s.groupFor(parent)
	if err != nil {
		return storage.InvalidHandle, err
	}
	if !validName(name) {
		return storage.InvalidHandle, fmt.Errorf("%q: %w", name, storage.ErrNotFound)
	}

	n, err := o.group.child(name)
	if err != nil {
		return storage.InvalidHandle, err
	}
	child := &object{file: o.file}
	switch n := n.(type) {
	case groupNode:
		child.kind, child.group = objGroup, n
	case datasetNode:
		child.kind, child.dataset = objDataset, n
	default:
		return storage.InvalidHandle, fmt.Errorf("%q: %w", name, storage.ErrUnsupported)
	}
	return s.add(parent, child), nil
}

// validName reports whether name is a single path segment.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] == '/' {
			return false
		}
	}
	return true
}

// ListChildren returns the members of a group in storage order.
func (s *Store) ListChildren(group storage.Handle) ([]storage.Child, error) {
	o, err := s.groupFor(group)
	if err != nil {
		return nil, err
	}
	return o.group.children()
}

// Close releases a group or dataset handle.
func (s *Store) Close(h storage.Handle) error {
	o, err := s.get(h)
	if err != nil {
		return err
	}
	if o.kind == objContainer {
		return fmt.Errorf("handle %d is a container: %w", h, storage.ErrBadHandle)
	}
	return s.remove(h, o)
}

func (s *Store) DatasetMeta(ds storage.Handle) (storage.Meta, error) {
	d, err := s.datasetFor(ds)
	if err != nil {
		return storage.Meta{}, err
	}
	return d.meta()
}

func (s *Store) ReadInts(ds storage.Handle) ([]int64, error) {
	d, err := s.datasetFor(ds)
	if err != nil {
		return nil, err
	}
	return d.ints()
}

func (s *Store) ReadFloats(ds storage.Handle) ([]float64, error) {
	d, err := s.datasetFor(ds)
	if err != nil {
		return nil, err
	}
	return d.floats()
}

func (s *Store) ReadStrings(ds storage.Handle) ([]string, error) {
	d, err := s.datasetFor(ds)
	if err != nil {
		return nil, err
	}
	return d.strings()
}

func (s *Store) ReadRecords(ds storage.Handle) (*storage.RecordTable, error) {
	d, err := s.datasetFor(ds)
	if err != nil {
		return nil, err
	}
	return d.records()
}
