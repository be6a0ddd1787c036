// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import "encoding/json"

// Attribute is one key/value event attribute emitted by a handler.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Invocation is a recorded pool invocation, committed or rejected.
type Invocation struct {
	Seq     uint64 `json:"seq"`
	ID      string `json:"id"`
	Time    uint64 `json:"time"`
	Sender  string `json:"sender"`
	Kind    string `json:"kind"`
	Admin   bool   `json:"admin"`
	Success bool   `json:"success"`
	// Funds, Messages and Error are stored as the JSON the runtime produced.
	Funds      json.RawMessage `json:"funds,omitempty"`
	Messages   json.RawMessage `json:"messages,omitempty"`
	Error      json.RawMessage `json:"error,omitempty"`
	Attributes []Attribute     `json:"attributes"`
}

type RangeType string

const (
	Seq  RangeType = "seq"
	Time RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is inclusive. To below From means unbounded above.
type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// InvocationFilter selects invocations. Zero fields match everything.
type InvocationFilter struct {
	Range     *Range
	Kind      string
	Sender    string
	AdminOnly bool
	Success   *bool
	Options   *Options
	Order     Order // default asc
}
