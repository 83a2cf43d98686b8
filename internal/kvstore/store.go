// Package kvstore is a small key-value object and the behaviors that
// specify it: set and del return nil, and get returns the value of the
// most recent set of the key unless a del followed it.
package kvstore

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownMethod = errors.New("unknown method")
	ErrArity         = errors.New("wrong number of arguments")
	// ErrUnhashableKey is returned for keys that cannot index a Go map.
	ErrUnhashableKey = errors.New("key is not hashable")
)

// Store is an in-memory key-value object.
type Store struct {
	vars  map[any]any
	stale bool
	prev  map[any]any
}

// Option configures a Store.
type Option func(*Store)

// WithStaleReads makes Get return the value a key held before its latest
// Set. It exists to demonstrate behavior violations.
func WithStaleReads() Option {
	return func(s *Store) { s.stale = true }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		vars: make(map[any]any),
		prev: make(map[any]any),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value stored for k, or nil.
func (s *Store) Get(k any) any {
	if s.stale {
		if v, ok := s.prev[k]; ok {
			return v
		}
	}
	return s.vars[k]
}

// Del removes k.
func (s *Store) Del(k any) {
	delete(s.vars, k)
	delete(s.prev, k)
}

// Set stores v for k.
func (s *Store) Set(k, v any) {
	if old, ok := s.vars[k]; ok {
		s.prev[k] = old
	}
	s.vars[k] = v
}

// Invoke dispatches a call by method name. set and del return nil.
func (s *Store) Invoke(method string, args []any) (result any, err error) {
	defer func() {
		// a slice or map key panics inside the map operation
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("%w: %v", ErrUnhashableKey, r)
		}
	}()

	switch method {
	case "get":
		if err := arity(method, args, 1); err != nil {
			return nil, err
		}
		return s.Get(args[0]), nil
	case "del":
		if err := arity(method, args, 1); err != nil {
			return nil, err
		}
		s.Del(args[0])
		return nil, nil
	case "set":
		if err := arity(method, args, 2); err != nil {
			return nil, err
		}
		s.Set(args[0], args[1])
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
}

func arity(method string, args []any, want int) error {
	if len(args) != want {
		return fmt.Errorf("%w: %s takes %d, got %d", ErrArity, method, want, len(args))
	}
	return nil
}
