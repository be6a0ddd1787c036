// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logs

import (
	"math"

	"github.com/coreumfun/draw/logdb"
	"github.com/coreumfun/draw/runtime"
)

type Range struct {
	Unit logdb.RangeType `json:"unit"`
	From *uint64         `json:"from,omitempty"`
	To   *uint64         `json:"to,omitempty"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// InvocationFilter is the request body of POST /logs/invocations.
type InvocationFilter struct {
	Range     *Range      `json:"range"`
	Kind      string      `json:"kind"`
	Sender    string      `json:"sender"`
	AdminOnly bool        `json:"adminOnly"`
	Success   *bool       `json:"success"`
	Options   *Options    `json:"options"`
	Order     logdb.Order `json:"order"`
}

func convertRange(r *Range) *logdb.Range {
	if r == nil {
		return nil
	}
	unit := r.Unit
	if unit == "" {
		unit = logdb.Seq
	}
	out := &logdb.Range{Unit: unit, To: math.MaxInt64}
	if r.From != nil {
		out.From = *r.From
	}
	if r.To != nil {
		out.To = *r.To
	}
	return out
}

func convertFilter(f *InvocationFilter) *logdb.InvocationFilter {
	out := &logdb.InvocationFilter{
		Range:     convertRange(f.Range),
		Kind:      f.Kind,
		Sender:    f.Sender,
		AdminOnly: f.AdminOnly,
		Success:   f.Success,
		Order:     f.Order,
	}
	if f.Options != nil {
		out.Options = &logdb.Options{Offset: f.Options.Offset, Limit: f.Options.Limit}
	}
	return out
}

func convertInvocations(invs []*logdb.Invocation) ([]*runtime.Receipt, error) {
	out := make([]*runtime.Receipt, 0, len(invs))
	for _, inv := range invs {
		rcpt, err := runtime.ReceiptOf(inv)
		if err != nil {
			return nil, err
		}
		out = append(out, rcpt)
	}
	return out, nil
}
