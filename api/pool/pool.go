// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/coreumfun/draw/api/utils"
	"github.com/coreumfun/draw/draw"
	"github.com/coreumfun/draw/runtime"
)

type Pool struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Pool {
	return &Pool{rt}
}

// Summary identifies the pool served by the node.
type Summary struct {
	Address draw.Address `json:"address"`
	Seq     uint64       `json:"seq"`
}

func (p *Pool) handleGetPool(w http.ResponseWriter, _ *http.Request) error {
	pool := p.rt.Pool()
	if pool == "" {
		return convertError(runtime.ErrNotInstantiated)
	}
	return utils.WriteJSON(w, &Summary{Address: pool, Seq: p.rt.Seq()})
}

func (p *Pool) handleExecute(w http.ResponseWriter, req *http.Request) error {
	// unknown message kinds are left to the contract, which rejects them with a receipt
	var inv runtime.Invocation
	if err := json.NewDecoder(req.Body).Decode(&inv); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if inv.Sender == "" {
		return utils.BadRequest(errors.New("sender: empty"))
	}
	rcpt, err := p.rt.Execute(req.Context(), inv)
	if err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, rcpt)
}

func (p *Pool) handleQuery(w http.ResponseWriter, req *http.Request) error {
	var msg draw.QueryMsg
	if err := json.NewDecoder(req.Body).Decode(&msg); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	return p.query(w, req, &msg)
}

func (p *Pool) query(w http.ResponseWriter, req *http.Request, msg *draw.QueryMsg) error {
	resp, err := p.rt.Query(req.Context(), msg)
	if err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, resp)
}

// fixed returns a handler running the query built by build.
func (p *Pool) fixed(build func(req *http.Request) (*draw.QueryMsg, error)) utils.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		msg, err := build(req)
		if err != nil {
			return utils.BadRequest(err)
		}
		return p.query(w, req, msg)
	}
}

func (p *Pool) handleGetReceipt(w http.ResponseWriter, req *http.Request) error {
	rcpt, err := p.rt.Receipt(req.Context(), mux.Vars(req)["id"])
	if err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, rcpt)
}

func convertError(err error) error {
	switch {
	case errors.Is(err, runtime.ErrNotInstantiated):
		return utils.Forbidden(err)
	case errors.Is(err, runtime.ErrReceiptNotFound):
		return utils.NotFound(err)
	}
	return err
}

func constant(msg draw.QueryMsg) func(*http.Request) (*draw.QueryMsg, error) {
	return func(*http.Request) (*draw.QueryMsg, error) {
		return &msg, nil
	}
}

func addressVar(req *http.Request) (draw.Address, error) {
	addr := draw.Address(mux.Vars(req)["address"])
	if addr == "" {
		return "", errors.New("address: empty")
	}
	return addr, nil
}

func (p *Pool) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	empty := &struct{}{}

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /pool").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetPool))
	sub.Path("/execute").
		Methods(http.MethodPost).
		Name("POST /pool/execute").
		HandlerFunc(utils.WrapHandlerFunc(p.handleExecute))
	sub.Path("/query").
		Methods(http.MethodPost).
		Name("POST /pool/query").
		HandlerFunc(utils.WrapHandlerFunc(p.handleQuery))
	sub.Path("/receipts/{id}").
		Methods(http.MethodGet).
		Name("GET /pool/receipts/{id}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetReceipt))

	reads := []struct {
		path  string
		build func(*http.Request) (*draw.QueryMsg, error)
	}{
		{"/state", constant(draw.QueryMsg{GetCurrentState: empty})},
		{"/config", constant(draw.QueryMsg{GetContractConfig: empty})},
		{"/winner", constant(draw.QueryMsg{GetWinner: empty})},
		{"/participants", constant(draw.QueryMsg{GetParticipants: empty})},
		{"/holders", constant(draw.QueryMsg{GetTicketHolders: empty})},
		{"/sold", constant(draw.QueryMsg{GetNumberOfTicketsSold: empty})},
		{"/ownership", constant(draw.QueryMsg{GetOwnership: empty})},
		{"/claims", func(req *http.Request) (*draw.QueryMsg, error) {
			q := &draw.ClaimsQuery{}
			if v := req.URL.Query().Get("address"); v != "" {
				addr := draw.Address(v)
				q.Address = &addr
			}
			return &draw.QueryMsg{GetClaims: q}, nil
		}},
		{"/tickets/{address}", func(req *http.Request) (*draw.QueryMsg, error) {
			addr, err := addressVar(req)
			if err != nil {
				return nil, err
			}
			return &draw.QueryMsg{GetUserNumberOfTickets: &draw.AddressQuery{Address: addr}}, nil
		}},
		{"/tickets/{address}/chance", func(req *http.Request) (*draw.QueryMsg, error) {
			addr, err := addressVar(req)
			if err != nil {
				return nil, err
			}
			return &draw.QueryMsg{GetUserWinChance: &draw.AddressQuery{Address: addr}}, nil
		}},
	}
	for _, r := range reads {
		sub.Path(r.path).
			Methods(http.MethodGet).
			Name("GET /pool" + r.path).
			HandlerFunc(utils.WrapHandlerFunc(p.fixed(r.build)))
	}
}
