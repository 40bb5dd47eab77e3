package h5tree

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/robert-malhotra/go-h5tree/internal/h5store"
	"github.com/robert-malhotra/go-h5tree/storage"
)

func fixture(name string) string {
	return filepath.Join("..", "testdata", name)
}

// quietLogger discards output and records entries for assertions.
func quietLogger() (*logrus.Logger, *test.Hook) {
	l, hook := test.NewNullLogger()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.DebugLevel)
	return l, hook
}

// spy wraps the HDF5 store, recording handle traffic by entry name and
// injecting failures.
type spy struct {
	storage.Storage

	names  map[storage.Handle]string
	opened []string
	closed []string
	reads  int

	failOpen map[string]error
	failRead map[string]error
	meta     map[string]storage.Meta
	extra    map[string][]storage.Child

	// onOpen runs before a child is opened.
	onOpen func(name string)
}

func newSpy() *spy {
	return &spy{
		Storage:  h5store.New(h5store.WithLogger(logrus.New())),
		names:    map[storage.Handle]string{},
		failOpen: map[string]error{},
		failRead: map[string]error{},
		meta:     map[string]storage.Meta{},
		extra:    map[string][]storage.Child{},
	}
}

func (s *spy) track(h storage.Handle, name string, err error) (storage.Handle, error) {
	if err == nil {
		s.names[h] = name
		s.opened = append(s.opened, name)
	}
	return h, err
}

func (s *spy) OpenRoot(file storage.Handle) (storage.Handle, error) {
	h, err := s.Storage.OpenRoot(file)
	return s.track(h, "/", err)
}

func (s *spy) OpenChild(parent storage.Handle, name string) (storage.Handle, error) {
	if s.onOpen != nil {
		s.onOpen(name)
	}
	if err := s.failOpen[name]; err != nil {
		return storage.InvalidHandle, err
	}
	h, err := s.Storage.OpenChild(parent, name)
	return s.track(h, name, err)
}

func (s *spy) ListChildren(g storage.Handle) ([]storage.Child, error) {
	children, err := s.Storage.ListChildren(g)
	if err != nil {
		return nil, err
	}
	return append(children, s.extra[s.names[g]]...), nil
}

func (s *spy) DatasetMeta(h storage.Handle) (storage.Meta, error) {
	if m, ok := s.meta[s.names[h]]; ok {
		return m, nil
	}
	return s.Storage.DatasetMeta(h)
}

func (s *spy) read(h storage.Handle) error {
	s.reads++
	return s.failRead[s.names[h]]
}

func (s *spy) ReadInts(h storage.Handle) ([]int64, error) {
	if err := s.read(h); err != nil {
		return nil, err
	}
	return s.Storage.ReadInts(h)
}

func (s *spy) ReadFloats(h storage.Handle) ([]float64, error) {
	if err := s.read(h); err != nil {
		return nil, err
	}
	return s.Storage.ReadFloats(h)
}

func (s *spy) ReadStrings(h storage.Handle) ([]string, error) {
	if err := s.read(h); err != nil {
		return nil, err
	}
	return s.Storage.ReadStrings(h)
}

func (s *spy) ReadRecords(h storage.Handle) (*storage.RecordTable, error) {
	if err := s.read(h); err != nil {
		return nil, err
	}
	return s.Storage.ReadRecords(h)
}

func (s *spy) Close(h storage.Handle) error {
	s.closed = append(s.closed, s.names[h])
	delete(s.names, h)
	return s.Storage.Close(h)
}

// openSpy opens a fixture through a fresh spy.
func openSpy(t *testing.T, name string, opts ...Option) (*Tree, *spy) {
	t.Helper()
	s := newSpy()
	l, _ := quietLogger()
	tr, err := OpenWithStorage(s, fixture(name), append([]Option{WithLogger(l)}, opts...)...)
	if err != nil {
		t.Fatalf("open %s: %v", name, err)
	}
	return tr, s
}
