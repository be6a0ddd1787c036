// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/coreumfun/draw/kv"
)

// Stage holds the changes of a state, in key order.
type Stage struct {
	keys    []string
	changes map[string][]byte
}

// Len returns the count of changed keys.
func (s *Stage) Len() int {
	return len(s.keys)
}

// Commit writes all changes through the bulk. Nothing is visible in the
// underlying store until the bulk is written.
func (s *Stage) Commit(bulk kv.Bulk) error {
	for _, k := range s.keys {
		v := s.changes[k]
		var err error
		if v == nil {
			err = bulk.Delete([]byte(k))
		} else {
			err = bulk.Put([]byte(k), v)
		}
		if err != nil {
			return &Error{err}
		}
	}
	if err := bulk.Write(); err != nil {
		return &Error{err}
	}
	return nil
}

// Inverse returns a stage that restores the values src holds now for every key
// changed by s. Build it before committing s.
func (s *Stage) Inverse(src kv.Getter) (*Stage, error) {
	changes := make(map[string][]byte, len(s.keys))
	for _, k := range s.keys {
		val, err := src.Get([]byte(k))
		switch {
		case err == nil:
			changes[k] = nonNil(val)
		case src.IsNotFound(err):
			changes[k] = nil
		default:
			return nil, &Error{err}
		}
	}
	return &Stage{keys: s.keys, changes: changes}, nil
}
