// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package logdb is the SQLite audit log of pool invocations and the event
// attributes they emitted.
package logdb

import (
	"context"
	"database/sql"
	"math"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/coreumfun/draw/log"
)

var logger = log.WithContext("pkg", "logdb")

const (
	insertInvocation = "INSERT INTO invocation(seq, id, time, sender, kind, admin, success, funds, messages, error) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	insertAttribute  = "INSERT INTO attribute(seq, invocation, key, value) VALUES(?, ?, ?, ?)"
	selectAttributes = "SELECT key, value FROM attribute WHERE invocation = ? ORDER BY seq ASC"
	invocationFields = "seq, id, time, sender, kind, admin, success, funds, messages, error"
)

type LogDB struct {
	path          string
	db            *sql.DB
	stmts         *stmtCache
	driverVersion string
}

var _ Reader = (*LogDB)(nil)

// New creates or opens the log db at path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// a memory database exists per connection
	if strings.Contains(path, ":memory:") {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(invocationTableSchema + attributeTableSchema); err != nil {
		return nil, errors.Wrap(err, "create tables")
	}

	driverVer, _, _ := sqlite3.Version()
	logger.Debug("log db opened", "path", path, "sqlite", driverVer)
	return &LogDB{
		path:          path,
		db:            db,
		stmts:         newStmtCache(db),
		driverVersion: driverVer,
	}, nil
}

// NewMem creates a log db in memory.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

func (db *LogDB) Close() error {
	db.stmts.Clear()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

// Write records one invocation with its attributes in a single sql transaction.
func (db *LogDB) Write(inv *Invocation) error {
	if inv.Seq > math.MaxUint32 {
		return errors.Errorf("invocation seq %d out of range", inv.Seq)
	}
	// prepared ahead of the transaction, which may hold the only connection
	invStmt, attrStmt := db.stmts.MustPrepare(insertInvocation), db.stmts.MustPrepare(insertAttribute)
	return db.execInTx(func(tx *sql.Tx) error {
		if _, err := tx.Stmt(invStmt).Exec(
			inv.Seq,
			inv.ID,
			inv.Time,
			inv.Sender,
			inv.Kind,
			inv.Admin,
			inv.Success,
			nullable(inv.Funds),
			nullable(inv.Messages),
			nullable(inv.Error),
		); err != nil {
			return errors.Wrapf(err, "insert invocation %d", inv.Seq)
		}
		stmt := tx.Stmt(attrStmt)
		for i, attr := range inv.Attributes {
			seq := newSequence(uint32(inv.Seq), uint32(i))
			if _, err := stmt.Exec(seq, inv.Seq, attr.Key, attr.Value); err != nil {
				return errors.Wrapf(err, "insert attribute %d of invocation %d", i, inv.Seq)
			}
		}
		return nil
	})
}

func (db *LogDB) execInTx(proc func(*sql.Tx) error) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// NewestSeq returns the highest recorded seq, 0 if none.
func (db *LogDB) NewestSeq(ctx context.Context) (uint64, error) {
	var seq sql.NullInt64
	if err := db.db.QueryRowContext(ctx, "SELECT MAX(seq) FROM invocation").Scan(&seq); err != nil {
		return 0, err
	}
	if !seq.Valid {
		return 0, nil
	}
	return uint64(seq.Int64), nil
}

// InvocationByID returns the invocation with the given id, or nil if there is none.
func (db *LogDB) InvocationByID(ctx context.Context, id string) (*Invocation, error) {
	invs, err := db.queryInvocations(ctx, "SELECT "+invocationFields+" FROM invocation WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(invs) == 0 {
		return nil, nil
	}
	return invs[0], nil
}

func (db *LogDB) FilterInvocations(ctx context.Context, filter *InvocationFilter) ([]*Invocation, error) {
	if filter == nil {
		return db.queryInvocations(ctx, "SELECT "+invocationFields+" FROM invocation ORDER BY seq ASC")
	}
	metricsHandleFilter(filter)

	var args []any
	stmt := "SELECT " + invocationFields + " FROM invocation WHERE 1"
	if filter.Range != nil {
		column := "seq"
		if filter.Range.Unit == Time {
			column = "time"
		}
		stmt += " AND " + column + " >= ?"
		args = append(args, filter.Range.From)
		if filter.Range.To >= filter.Range.From {
			stmt += " AND " + column + " <= ?"
			args = append(args, filter.Range.To)
		}
	}
	if filter.Kind != "" {
		stmt += " AND kind = ?"
		args = append(args, filter.Kind)
	}
	if filter.Sender != "" {
		stmt += " AND sender = ?"
		args = append(args, filter.Sender)
	}
	if filter.AdminOnly {
		stmt += " AND admin = 1"
	}
	if filter.Success != nil {
		stmt += " AND success = ?"
		args = append(args, *filter.Success)
	}
	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryInvocations(ctx, stmt, args...)
}

func (db *LogDB) queryInvocations(ctx context.Context, stmt string, args ...any) ([]*Invocation, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	var invs []*Invocation
	for rows.Next() {
		var (
			inv                     Invocation
			funds, messages, revert []byte
		)
		if err := rows.Scan(
			&inv.Seq,
			&inv.ID,
			&inv.Time,
			&inv.Sender,
			&inv.Kind,
			&inv.Admin,
			&inv.Success,
			&funds,
			&messages,
			&revert,
		); err != nil {
			rows.Close()
			return nil, err
		}
		inv.Funds, inv.Messages, inv.Error = funds, messages, revert
		invs = append(invs, &inv)
	}
	// the row cursor holds the only connection of a memory db
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, inv := range invs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if inv.Attributes, err = db.queryAttributes(ctx, inv.Seq); err != nil {
			return nil, err
		}
	}
	return invs, nil
}

func (db *LogDB) queryAttributes(ctx context.Context, seq uint64) ([]Attribute, error) {
	stmt, err := db.stmts.Prepare(selectAttributes)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, seq)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attrs := []Attribute{}
	for rows.Next() {
		var a Attribute
		if err := rows.Scan(&a.Key, &a.Value); err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attrs, rows.Err()
}

func nullable(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
