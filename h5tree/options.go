package h5tree

import (
	"github.com/sirupsen/logrus"

	"github.com/robert-malhotra/go-h5tree/storage"
)

// DuplicatePolicy decides which member Lookup returns when a group holds
// more than one member with the same name.
type DuplicatePolicy uint8

const (
	// FirstMatch returns the first member in storage order.
	FirstMatch DuplicatePolicy = iota
	// LastMatch returns the last member in storage order.
	LastMatch
	// RejectDuplicates fails the lookup with ErrDuplicateName.
	RejectDuplicates
)

func (p DuplicatePolicy) String() string {
	switch p {
	case FirstMatch:
		return "first"
	case LastMatch:
		return "last"
	case RejectDuplicates:
		return "reject"
	}
	return "unknown"
}

// ParseDuplicatePolicy parses the String form of a policy.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, bool) {
	for _, p := range []DuplicatePolicy{FirstMatch, LastMatch, RejectDuplicates} {
		if p.String() == s {
			return p, true
		}
	}
	return FirstMatch, false
}

// Option configures a Tree.
type Option func(*options)

type options struct {
	log       logrus.FieldLogger
	store     storage.Storage
	policy    DuplicatePolicy
	eagerRoot bool
}

func defaultOptions() *options {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return &options{log: l}
}

// WithLogger sets the logger for diagnostics. The default logs warnings
// to stderr.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithStorage replaces the HDF5 backend.
func WithStorage(s storage.Storage) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithDuplicatePolicy sets how Lookup resolves duplicate names.
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithEagerRoot evaluates every member of the root group when the tree is
// opened.
func WithEagerRoot(eager bool) Option {
	return func(o *options) {
		o.eagerRoot = eager
	}
}
