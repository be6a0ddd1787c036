// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

const invocationTableSchema = `CREATE TABLE IF NOT EXISTS invocation (
	seq INTEGER PRIMARY KEY NOT NULL,
	id TEXT NOT NULL UNIQUE,
	time INTEGER NOT NULL,
	sender TEXT NOT NULL,
	kind TEXT NOT NULL,
	admin INTEGER NOT NULL,
	success INTEGER NOT NULL,
	funds BLOB,
	messages BLOB,
	error BLOB
);

CREATE INDEX IF NOT EXISTS invocation_i_time ON invocation(time);
CREATE INDEX IF NOT EXISTS invocation_i_sender ON invocation(sender);
CREATE INDEX IF NOT EXISTS invocation_i_kind ON invocation(kind);
`

const attributeTableSchema = `CREATE TABLE IF NOT EXISTS attribute (
	seq INTEGER PRIMARY KEY NOT NULL,
	invocation INTEGER NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS attribute_i_invocation ON attribute(invocation);
`
