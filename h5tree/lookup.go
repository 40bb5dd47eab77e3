package h5tree

import (
	"fmt"
)

// Lookup returns the member of e called name, evaluating it first. The
// name is matched exactly against one level only; slashes are not
// interpreted.
//
// A missing member returns (nil, nil), as does a lookup on an entry that
// is not an evaluated group. A member that fails to evaluate returns the
// error and stays unevaluated.
func (e *Entry) Lookup(name string) (*Entry, error) {
	if e.tree.closed {
		return nil, ErrClosed
	}
	if e.kind != KindGroup || e.state != StateEvaluated {
		return nil, nil
	}
	c, err := e.match(name)
	if err != nil || c == nil {
		return nil, err
	}
	if err := c.Evaluate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (e *Entry) match(name string) (*Entry, error) {
	var found *Entry
	for _, c := range e.children {
		if c.name != name {
			continue
		}
		switch e.tree.policy {
		case FirstMatch:
			return c, nil
		case RejectDuplicates:
			if found != nil {
				return nil, fmt.Errorf("%q in %q: %w", name, e.name, ErrDuplicateName)
			}
		}
		found = c
	}
	return found, nil
}

// Group returns the member called name if it is a group, or nil.
func (e *Entry) Group(name string) (*Entry, error) {
	c, err := e.Lookup(name)
	if err != nil || c == nil || c.kind != KindGroup {
		return nil, err
	}
	return c, nil
}

// Dataset returns the member called name if it is a dataset, or nil.
func (e *Entry) Dataset(name string) (*Entry, error) {
	c, err := e.Lookup(name)
	if err != nil || c == nil || c.kind != KindDataset {
		return nil, err
	}
	return c, nil
}

// Find searches the subtree below e depth-first, in storage order, for the
// first group or dataset called name. Groups are evaluated as the search
// descends into them.
func (e *Entry) Find(name string) (*Entry, error) {
	return e.find(name, func(c *Entry) bool { return c.kind != KindOther })
}

// FindGroup is Find restricted to groups.
func (e *Entry) FindGroup(name string) (*Entry, error) {
	return e.find(name, (*Entry).IsGroup)
}

// FindDataset is Find restricted to datasets.
func (e *Entry) FindDataset(name string) (*Entry, error) {
	return e.find(name, (*Entry).IsDataset)
}

func (e *Entry) find(name string, want func(*Entry) bool) (*Entry, error) {
	if e.tree.closed {
		return nil, ErrClosed
	}
	if e.kind != KindGroup {
		return nil, nil
	}
	if err := e.Evaluate(); err != nil {
		return nil, err
	}
	for _, c := range e.children {
		if c.name == name && want(c) {
			if err := c.Evaluate(); err != nil {
				return nil, err
			}
			return c, nil
		}
		if c.kind == KindGroup {
			found, err := c.find(name, want)
			if err != nil || found != nil {
				return found, err
			}
		}
	}
	return nil, nil
}

// Refresh lists the members of an evaluated group again and appends the
// ones not seen before, unevaluated. Existing members keep their state.
func (e *Entry) Refresh() error {
	if e.tree.closed {
		return ErrClosed
	}
	if e.kind != KindGroup {
		return fmt.Errorf("%q: %w", e.name, ErrNotGroup)
	}
	if e.state != StateEvaluated {
		return e.Evaluate()
	}

	members, err := e.tree.store.ListChildren(e.handle)
	if err != nil {
		return e.fail("list", err)
	}
	seen := make(map[string]int, len(e.children))
	for _, c := range e.children {
		seen[c.name]++
	}
	for _, m := range members {
		if seen[m.Name] > 0 {
			seen[m.Name]--
			continue
		}
		e.children = append(e.children, &Entry{
			tree:   e.tree,
			kind:   kindOf(m.Kind),
			name:   m.Name,
			parent: e.handle,
		})
	}
	return nil
}
