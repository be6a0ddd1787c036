// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import "context"

// Reader is the query side of the log db.
type Reader interface {
	// FilterInvocations returns the invocations matching filter, with their attributes.
	FilterInvocations(ctx context.Context, filter *InvocationFilter) ([]*Invocation, error)

	// InvocationByID returns nil if id is unknown.
	InvocationByID(ctx context.Context, id string) (*Invocation, error)

	// NewestSeq returns the seq of the last written invocation, 0 if none.
	NewestSeq(ctx context.Context) (uint64, error)
}
