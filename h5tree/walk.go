package h5tree

import (
	"errors"
	"iter"
	"path"
)

// WalkFunc is called for each entry during traversal. p is the
// slash-joined path of the entry; err is the error met evaluating it.
// Return nil to continue, ErrSkipGroup to skip a group's members,
// ErrStopWalk to stop without error, or any other error to stop and
// return it.
type WalkFunc func(p string, e *Entry, err error) error

// Walk visits e and everything below it depth-first in storage order,
// evaluating each entry before fn sees it. Members of a group that fails
// to evaluate are not visited.
func Walk(e *Entry, fn WalkFunc) error {
	return startWalk(e, fn, true)
}

// WalkGroups is Walk without reading payloads: only groups are evaluated,
// and datasets reach fn unevaluated with a nil error.
func WalkGroups(e *Entry, fn WalkFunc) error {
	return startWalk(e, fn, false)
}

func startWalk(e *Entry, fn WalkFunc, payloads bool) error {
	name := e.name
	if e.root {
		name = "/"
	}
	err := walk(name, e, fn, payloads)
	if errors.Is(err, ErrStopWalk) {
		return nil
	}
	return err
}

func walk(p string, e *Entry, fn WalkFunc, payloads bool) error {
	var evalErr error
	if payloads || e.kind == KindGroup {
		evalErr = e.Evaluate()
	}
	err := fn(p, e, evalErr)
	if errors.Is(err, ErrSkipGroup) {
		return nil
	}
	if err != nil {
		return err
	}
	if evalErr != nil || e.kind != KindGroup {
		return nil
	}
	for _, c := range e.children {
		if err := walk(path.Join(p, c.name), c, fn, payloads); err != nil {
			return err
		}
	}
	return nil
}

// Force evaluates the whole subtree below e and returns the first error.
func (e *Entry) Force() error {
	return Walk(e, func(_ string, _ *Entry, err error) error { return err })
}

// All iterates over the members of an evaluated group, evaluating each one
// as it is yielded. A member whose evaluation fails is yielded in
// StateFailed with Err set. Once the tree is closed, or while a member is
// already being evaluated further up the stack, members are yielded as
// they are and Err is left unchanged.
func (e *Entry) All() iter.Seq2[string, *Entry] {
	return func(yield func(string, *Entry) bool) {
		for _, c := range e.children {
			c.Evaluate()
			if !yield(c.name, c) {
				return
			}
		}
	}
}
