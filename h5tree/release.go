package h5tree

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/robert-malhotra/go-h5tree/storage"
)

// release frees the subtree rooted at e, children before parents. Every
// handle is closed even when an earlier close fails; the failures are
// returned together.
func (e *Entry) release(s storage.Storage) error {
	var result error

	switch e.kind {
	case KindGroup:
		for _, c := range e.children {
			if err := c.release(s); err != nil {
				result = multierror.Append(result, err)
			}
		}
		e.children = nil
		if err := e.closeHandle(s); err != nil {
			result = multierror.Append(result, err)
		}
	case KindDataset:
		if err := e.closeHandle(s); err != nil {
			result = multierror.Append(result, err)
		}
		if e.data != nil {
			if hd, err := handlerFor(e.category); err == nil {
				hd.free(e.data)
			}
			e.data = nil
		}
	}

	e.state = StateUnevaluated
	e.category = CategoryNone
	return result
}

func (e *Entry) closeHandle(s storage.Storage) error {
	if e.state != StateEvaluated {
		return nil
	}
	h := e.handle
	e.handle = storage.InvalidHandle
	if err := s.Close(h); err != nil {
		return fmt.Errorf("closing %q: %w", e.name, err)
	}
	return nil
}
