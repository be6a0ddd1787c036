// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"encoding/json"
	"sync"

	"github.com/coreumfun/draw/cache"
	"github.com/coreumfun/draw/logdb"
	"github.com/coreumfun/draw/runtime"
)

// messageCache holds encoded receipt messages, so subscribers at the same
// position share one encoding.
type messageCache struct {
	cache *cache.LRU[string, []byte]
	mu    sync.Mutex
}

func newMessageCache(cacheSize uint32) (*messageCache, error) {
	if cacheSize > 1000 {
		cacheSize = 1000
	}
	if cacheSize == 0 {
		cacheSize = 1
	}
	c, err := cache.NewLRU[string, []byte](int(cacheSize))
	if err != nil {
		return nil, err
	}
	return &messageCache{cache: c}, nil
}

// GetOrAdd returns the message of inv. The second value reports whether it was
// encoded by this call.
func (mc *messageCache) GetOrAdd(inv *logdb.Invocation) ([]byte, bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	added := false
	msg, err := mc.cache.GetOrLoad(inv.ID, func(string) ([]byte, error) {
		added = true
		rcpt, err := runtime.ReceiptOf(inv)
		if err != nil {
			return nil, err
		}
		return json.Marshal(rcpt)
	})
	if err != nil {
		return nil, false, err
	}
	return msg, added, nil
}
