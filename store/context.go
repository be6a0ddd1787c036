// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package store provides typed storage primitives on top of a revisable state:
// singleton items and ordered maps, values encoded with RLP.
package store

import (
	"github.com/coreumfun/draw/state"
)

// Context binds storage primitives to a state and a namespace.
type Context struct {
	state     *state.State
	namespace []byte
}

// NewContext creates a context. All keys written through it are prefixed with namespace.
func NewContext(st *state.State, namespace string) *Context {
	return &Context{state: st, namespace: []byte(namespace)}
}

func (c *Context) State() *state.State {
	return c.state
}

func (c *Context) key(parts ...[]byte) []byte {
	n := len(c.namespace)
	for _, p := range parts {
		n += len(p)
	}
	k := make([]byte, 0, n)
	k = append(k, c.namespace...)
	for _, p := range parts {
		k = append(k, p...)
	}
	return k
}
