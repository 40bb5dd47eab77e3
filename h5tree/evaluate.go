package h5tree

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/robert-malhotra/go-h5tree/storage"
)

// Evaluate loads the entry from storage. A group lists its members, which
// are created unevaluated; a dataset reads its whole payload. Evaluating an
// evaluated entry does nothing.
//
// On failure the entry is left in StateFailed holding no handle, and a
// later call tries again. Entries of KindOther cannot be evaluated and are
// left as they are.
func (e *Entry) Evaluate() error {
	switch e.state {
	case StateEvaluated:
		return nil
	case StateEvaluating:
		return fmt.Errorf("%q: %w", e.name, ErrReentrant)
	}
	if e.tree.closed {
		return ErrClosed
	}
	if e.kind == KindOther {
		return nil
	}
	if len(e.name) > MaxNameLen {
		e.state, e.err = StateFailed, fmt.Errorf("%.32q...: %w", e.name, ErrNameTooLong)
		return e.err
	}

	e.state = StateEvaluating
	var err error
	if e.kind == KindGroup {
		err = e.evaluateGroup()
	} else {
		err = e.evaluateDataset()
	}
	if err != nil {
		e.state, e.err = StateFailed, err
		return err
	}
	e.state, e.err = StateEvaluated, nil
	return nil
}

func (e *Entry) open() (storage.Handle, error) {
	s := e.tree.store
	if e.root {
		return s.OpenRoot(e.parent)
	}
	return s.OpenChild(e.parent, e.name)
}

func (e *Entry) fail(op string, err error) error {
	return &EvalError{Op: op, Name: e.name, Err: err}
}

// abandon closes a handle opened by a failed evaluation.
func (e *Entry) abandon(h storage.Handle) {
	if err := e.tree.store.Close(h); err != nil {
		e.tree.log.WithError(err).WithField("entry", e.name).Warn("closing handle of failed evaluation")
	}
}

func (e *Entry) evaluateGroup() error {
	h, err := e.open()
	if err != nil {
		return e.fail("open", err)
	}
	members, err := e.tree.store.ListChildren(h)
	if err != nil {
		e.abandon(h)
		return e.fail("list", err)
	}

	children := make([]*Entry, len(members))
	for i, m := range members {
		if len(m.Name) > MaxNameLen {
			e.tree.log.WithFields(logrus.Fields{"entry": e.name, "length": len(m.Name)}).
				Warn("member name too long")
		}
		children[i] = &Entry{
			tree:   e.tree,
			kind:   kindOf(m.Kind),
			name:   m.Name,
			parent: h,
		}
	}

	e.handle = h
	e.children = children
	e.tree.log.WithFields(logrus.Fields{"entry": e.name, "handle": h, "members": len(children)}).
		Debug("group evaluated")
	return nil
}

func (e *Entry) evaluateDataset() error {
	s := e.tree.store
	h, err := e.open()
	if err != nil {
		return e.fail("open", err)
	}
	meta, err := s.DatasetMeta(h)
	if err != nil {
		e.abandon(h)
		return e.fail("meta", err)
	}

	cat := Classify(meta)
	hd, err := handlerFor(cat)
	if err != nil {
		e.abandon(h)
		return err
	}
	rows, cols := shapeOf(meta.Shape)
	buf, err := hd.read(s, h, meta, rows, cols)
	if err != nil {
		e.abandon(h)
		return e.fail("read", err)
	}

	if cat == CategoryUnsupported {
		e.diag = fmt.Sprintf("%s data is not decoded", meta.Class)
		e.tree.log.WithFields(logrus.Fields{"entry": e.name, "class": meta.Class}).
			Warn("unsupported datatype")
	}

	e.handle = h
	e.category = cat
	e.shape = meta.Shape
	e.rows, e.cols = rows, cols
	e.byteSize = meta.ByteSize
	e.data = buf
	e.tree.log.WithFields(logrus.Fields{"entry": e.name, "handle": h, "category": cat}).
		Debug("dataset evaluated")
	return nil
}

// shapeOf maps stored dimensions to rows and columns.
func shapeOf(dims []uint64) (rows, cols int) {
	switch len(dims) {
	case 0:
		return 1, 1
	case 1:
		return 1, int(dims[0])
	}
	cols = 1
	for _, d := range dims[1:] {
		cols *= int(d)
	}
	return int(dims[0]), cols
}
