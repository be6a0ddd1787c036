// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/coreumfun/draw/api/utils"
	"github.com/coreumfun/draw/health"
)

type API struct {
	healthStatus *health.Health
}

func NewAPI(healthStatus *health.Health) *API {
	return &API{
		healthStatus: healthStatus,
	}
}

func (h *API) handleGetHealth(w http.ResponseWriter, r *http.Request) error {
	maxClockOffset := health.DefaultMaxClockOffset
	if v := r.URL.Query().Get("maxClockOffset"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "maxClockOffset"))
		}
		maxClockOffset = parsed
	}

	status, err := h.healthStatus.Status(maxClockOffset)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", utils.JSONContentType)
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	return utils.WriteJSON(w, status)
}

func (h *API) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("health").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetHealth))
}
