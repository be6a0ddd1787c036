// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"database/sql"
	"sync"

	"github.com/pkg/errors"
)

// stmtCache prepares each query once per connection pool.
type stmtCache struct {
	db    *sql.DB
	mu    sync.Mutex
	stmts map[string]*sql.Stmt
}

func newStmtCache(db *sql.DB) *stmtCache {
	return &stmtCache{db: db, stmts: make(map[string]*sql.Stmt)}
}

func (sc *stmtCache) Prepare(query string) (*sql.Stmt, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if stmt := sc.stmts[query]; stmt != nil {
		return stmt, nil
	}
	stmt, err := sc.db.Prepare(query)
	if err != nil {
		return nil, errors.Wrap(err, "prepare statement")
	}
	sc.stmts[query] = stmt
	return stmt, nil
}

// MustPrepare is for the package's constant statements.
func (sc *stmtCache) MustPrepare(query string) *sql.Stmt {
	stmt, err := sc.Prepare(query)
	if err != nil {
		panic(err)
	}
	return stmt
}

func (sc *stmtCache) Clear() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	for query, stmt := range sc.stmts {
		stmt.Close()
		delete(sc.stmts, query)
	}
}
