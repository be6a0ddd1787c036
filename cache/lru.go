// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cache wraps golang-lru with typed access and hit statistics.
package cache

import (
	lru "github.com/hashicorp/golang-lru"
)

// LRU is a typed, size bounded cache.
type LRU[K comparable, V any] struct {
	cache *lru.Cache
	stats Stats
}

// NewLRU creates a cache of maxSize entries. maxSize must be positive.
func NewLRU[K comparable, V any](maxSize int) (*LRU[K, V], error) {
	c, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU[K, V]{cache: c}, nil
}

func (l *LRU[K, V]) Get(key K) (v V, ok bool) {
	raw, ok := l.cache.Get(key)
	if !ok {
		l.stats.Miss()
		return v, false
	}
	l.stats.Hit()
	return raw.(V), true
}

func (l *LRU[K, V]) Add(key K, value V) {
	l.cache.Add(key, value)
}

func (l *LRU[K, V]) Len() int {
	return l.cache.Len()
}

// GetOrLoad returns the cached value, calling load on a miss. Load errors are not cached.
func (l *LRU[K, V]) GetOrLoad(key K, load func(K) (V, error)) (V, error) {
	if v, ok := l.Get(key); ok {
		return v, nil
	}
	v, err := load(key)
	if err != nil {
		return v, err
	}
	l.cache.Add(key, v)
	return v, nil
}

// Stats returns the hit statistics of Get and GetOrLoad.
func (l *LRU[K, V]) Stats() *Stats {
	return &l.stats
}
