package h5tree

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/robert-malhotra/go-h5tree/internal/h5store"
	"github.com/robert-malhotra/go-h5tree/storage"
)

// Tree is an open container and its lazily evaluated entries.
//
// A Tree is not safe for concurrent use.
type Tree struct {
	store    storage.Storage
	log      logrus.FieldLogger
	policy   DuplicatePolicy
	path     string
	file     storage.Handle
	writable bool
	closed   bool
	root     *Entry
}

// Open opens the HDF5 file at path read-only and evaluates its root group.
func Open(path string, opts ...Option) (*Tree, error) {
	return build(path, false, opts)
}

// Create creates an empty HDF5 file at path, replacing any existing file.
// The tree's groups accept writes.
func Create(path string, opts ...Option) (*Tree, error) {
	return build(path, true, opts)
}

// OpenWithStorage opens path through s instead of the HDF5 backend.
func OpenWithStorage(s storage.Storage, path string, opts ...Option) (*Tree, error) {
	return build(path, false, append([]Option{WithStorage(s)}, opts...))
}

func build(path string, create bool, opts []Option) (*Tree, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.store == nil {
		o.store = h5store.New(h5store.WithLogger(o.log))
	}

	t := &Tree{
		store:    o.store,
		log:      o.log.WithField("file", path),
		policy:   o.policy,
		path:     path,
		writable: create,
	}

	var err error
	if create {
		t.file, err = t.store.CreateContainer(path)
	} else {
		t.file, err = t.store.OpenContainer(path)
	}
	if err != nil {
		return nil, fmt.Errorf("h5tree: %w: %w", ErrIO, err)
	}

	t.root = &Entry{tree: t, kind: KindGroup, name: "/", root: true, parent: t.file}
	if err := t.root.Evaluate(); err != nil {
		return nil, t.abort(err)
	}
	if o.eagerRoot {
		for _, c := range t.root.children {
			if err := c.Evaluate(); err != nil {
				return nil, t.abort(err)
			}
		}
	}
	return t, nil
}

// abort releases a partly built tree and returns err with any teardown
// failures attached.
func (t *Tree) abort(err error) error {
	if cerr := t.Close(); cerr != nil {
		return multierror.Append(err, cerr)
	}
	return err
}

// Close releases every entry, children before parents, and closes the
// container. Calling Close again returns ErrClosed.
func (t *Tree) Close() error {
	if t.closed {
		return ErrClosed
	}
	t.closed = true

	var result error
	if err := t.root.release(t.store); err != nil {
		result = multierror.Append(result, err)
	}
	if err := t.store.CloseContainer(t.file); err != nil {
		result = multierror.Append(result, fmt.Errorf("closing %s: %w", t.path, err))
	}
	t.file = storage.InvalidHandle
	return result
}

// Root returns the root group.
func (t *Tree) Root() *Entry { return t.root }

// Path returns the path the tree was opened from.
func (t *Tree) Path() string { return t.path }

// Writable reports whether the tree was made by Create.
func (t *Tree) Writable() bool { return t.writable }

// Names returns the names of the root group's members.
func (t *Tree) Names() []string { return t.root.Names() }

// Lookup returns the root member called name, evaluated.
func (t *Tree) Lookup(name string) (*Entry, error) { return t.root.Lookup(name) }

// Group returns the root member called name if it is a group.
func (t *Tree) Group(name string) (*Entry, error) { return t.root.Group(name) }

// Dataset returns the root member called name if it is a dataset.
func (t *Tree) Dataset(name string) (*Entry, error) { return t.root.Dataset(name) }

func (t *Tree) String() string {
	if t.closed {
		return fmt.Sprintf("%s (closed)", t.path)
	}
	return fmt.Sprintf("%s: %d members", t.path, t.root.NumChildren())
}
