// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import "sync/atomic"

// Stats counts cache hits and misses.
type Stats struct {
	hit, miss atomic.Int64
	flag      atomic.Int32
}

func (cs *Stats) Hit() int64  { return cs.hit.Add(1) }
func (cs *Stats) Miss() int64 { return cs.miss.Add(1) }

// Stats returns the hits and misses so far, and whether the hit rate, in
// permille, moved since the previous call.
func (cs *Stats) Stats() (changed bool, hit, miss int64) {
	hit, miss = cs.hit.Load(), cs.miss.Load()
	var rate float64
	if lookups := hit + miss; lookups > 0 {
		rate = float64(hit) / float64(lookups)
	}
	flag := int32(rate * 1000)
	return cs.flag.Swap(flag) != flag, hit, miss
}
