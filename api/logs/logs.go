// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logs

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/coreumfun/draw/api/utils"
	"github.com/coreumfun/draw/logdb"
)

type Logs struct {
	db    logdb.Reader
	limit uint64
}

func New(db logdb.Reader, limit uint64) *Logs {
	return &Logs{
		db:    db,
		limit: limit,
	}
}

func (l *Logs) handleFilter(w http.ResponseWriter, req *http.Request) error {
	var filter InvocationFilter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if filter.Options != nil && filter.Options.Limit > l.limit {
		return utils.Forbidden(fmt.Errorf("options.limit exceeds the maximum allowed value of %d", l.limit))
	}
	if filter.Options != nil && filter.Options.Offset > math.MaxInt64 {
		return utils.BadRequest(fmt.Errorf("options.offset exceeds the maximum allowed value of %d", int64(math.MaxInt64)))
	}
	if r := filter.Range; r != nil {
		if r.Unit != "" && r.Unit != logdb.Seq && r.Unit != logdb.Time {
			return utils.BadRequest(fmt.Errorf("range.unit: unknown %q", r.Unit))
		}
		if (r.From != nil && *r.From > math.MaxInt64) || (r.To != nil && *r.To > math.MaxInt64) {
			return utils.BadRequest(fmt.Errorf("range exceeds the maximum allowed value of %d", int64(math.MaxInt64)))
		}
		if r.From != nil && r.To != nil && *r.From > *r.To {
			return utils.BadRequest(errors.New("range.to must be greater than or equal to range.from"))
		}
	}
	if filter.Order != "" && filter.Order != logdb.ASC && filter.Order != logdb.DESC {
		return utils.BadRequest(fmt.Errorf("order: unknown %q", filter.Order))
	}
	if filter.Options == nil {
		// one more than the limit, to detect an oversized result
		filter.Options = &Options{Limit: l.limit + 1}
	}

	invs, err := l.db.FilterInvocations(req.Context(), convertFilter(&filter))
	if err != nil {
		return err
	}
	if len(invs) > int(l.limit) {
		return utils.Forbidden(fmt.Errorf("the number of filtered invocations exceeds the maximum allowed value of %d, please use pagination", l.limit))
	}
	receipts, err := convertInvocations(invs)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipts)
}

func (l *Logs) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/invocations").
		Methods(http.MethodPost).
		Name("POST /logs/invocations").
		HandlerFunc(utils.WrapHandlerFunc(l.handleFilter))
}
