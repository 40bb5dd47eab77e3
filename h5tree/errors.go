package h5tree

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrIO            = errors.New("i/o failure")
	ErrReentrant     = errors.New("entry is already being evaluated")
	ErrNotEvaluated  = errors.New("entry is not evaluated")
	ErrTypeMismatch  = errors.New("category mismatch")
	ErrNotGroup      = errors.New("entry is not a group")
	ErrShape         = errors.New("ragged or empty matrix")
	ErrClosed        = errors.New("tree is closed")
	ErrNameTooLong   = errors.New("name too long")
	ErrDuplicateName = errors.New("duplicate member name")
	ErrNoHandler     = errors.New("no handler for category")
)

// ErrStopWalk can be returned from a WalkFunc to stop walking without an error.
var ErrStopWalk = errors.New("walk stopped")

// ErrSkipGroup can be returned from a WalkFunc to skip the members of the
// group just visited. Returned for any other entry it is ignored.
var ErrSkipGroup = errors.New("skip this group")

// EvalError reports a failed evaluation. It matches ErrIO and the
// underlying storage error with errors.Is.
type EvalError struct {
	Op   string // "open", "list", "meta" or "read"
	Name string
	Err  error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("h5tree: %s %q: %v", e.Op, e.Name, e.Err)
}

func (e *EvalError) Unwrap() []error { return []error{ErrIO, e.Err} }

// MismatchError is returned by a typed accessor whose category does not
// match the entry's.
type MismatchError struct {
	Name string
	Want Category
	Got  Category
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("h5tree: %q is %s, not %s", e.Name, e.Got, e.Want)
}

func (e *MismatchError) Is(target error) bool { return target == ErrTypeMismatch }
