// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/coreumfun/draw/kv"
	"github.com/coreumfun/draw/stackedmap"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Cause returns the underlying error.
func (e *Error) Cause() error { return e.cause }

// Unwrap supports errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

// Reader is the read side of the underlying store.
type Reader interface {
	kv.Getter
	Iterate(r kv.Range) kv.Iterator
}

// State is a revisable view over a store. Writes stay in memory until staged.
// A nil value in the stacked map marks a deleted key.
type State struct {
	src Reader
	sm  *stackedmap.StackedMap[string, []byte]
}

// New create state object reading from src.
func New(src Reader) *State {
	s := &State{src: src}
	s.sm = stackedmap.New(func(key string) ([]byte, bool, error) {
		val, err := src.Get([]byte(key))
		if err != nil {
			if src.IsNotFound(err) {
				return nil, true, nil
			}
			return nil, false, err
		}
		return nonNil(val), true, nil
	})
	return s
}

// nonNil copies val into a non-nil slice, so a stored empty value stays present.
func nonNil(val []byte) []byte {
	v := make([]byte, len(val))
	copy(v, val)
	return v
}

// Get returns the value of key. The second return value reports whether the key is present.
func (s *State) Get(key []byte) ([]byte, bool, error) {
	val, _, err := s.sm.Get(string(key))
	if err != nil {
		return nil, false, &Error{err}
	}
	if val == nil {
		return nil, false, nil
	}
	return val, true, nil
}

// Set sets the value of key. A nil val stores an empty value, which is present.
func (s *State) Set(key, val []byte) {
	if val == nil {
		val = []byte{}
	}
	s.sm.Put(string(key), val)
}

// Delete removes key.
func (s *State) Delete(key []byte) {
	s.sm.Put(string(key), nil)
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
	if s.sm.Depth() == 0 {
		s.sm.Push()
	}
}

// dirty returns the latest value of every key written since creation, keyed by key.
func (s *State) dirty() map[string][]byte {
	changes := make(map[string][]byte)
	s.sm.Journal(func(k string, v []byte) bool {
		changes[k] = v
		return true
	})
	return changes
}

// Iterate visits live keys with the given prefix in ascending byte order,
// merging pending writes over the underlying store. Iteration stops when fn
// returns false or an error.
func (s *State) Iterate(prefix []byte, fn func(key, val []byte) (bool, error)) error {
	type entry struct {
		key string
		val []byte
	}
	var pending []entry
	for k, v := range s.dirty() {
		if bytes.HasPrefix([]byte(k), prefix) {
			pending = append(pending, entry{k, v})
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].key < pending[j].key })

	it := s.src.Iterate(kv.PrefixRange(prefix))
	defer it.Release()

	emit := func(key string, val []byte) (bool, error) {
		if val == nil {
			return true, nil
		}
		return fn([]byte(key), val)
	}

	hasBase := it.Next()
	for hasBase || len(pending) > 0 {
		var (
			cont bool
			err  error
		)
		switch {
		case !hasBase:
			cont, err = emit(pending[0].key, pending[0].val)
			pending = pending[1:]
		case len(pending) == 0:
			cont, err = emit(string(it.Key()), nonNil(it.Value()))
			hasBase = it.Next()
		default:
			base := string(it.Key())
			switch {
			case base < pending[0].key:
				cont, err = emit(base, nonNil(it.Value()))
				hasBase = it.Next()
			case base == pending[0].key:
				// pending write shadows the stored value
				cont, err = emit(pending[0].key, pending[0].val)
				pending = pending[1:]
				hasBase = it.Next()
			default:
				cont, err = emit(pending[0].key, pending[0].val)
				pending = pending[1:]
			}
		}
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
	if err := it.Error(); err != nil {
		return &Error{err}
	}
	return nil
}

// Stage collects all pending writes into a stage ready to be committed.
func (s *State) Stage() *Stage {
	changes := s.dirty()
	keys := make([]string, 0, len(changes))
	for k := range changes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &Stage{keys: keys, changes: changes}
}
