// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solo

import (
	"math"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/coreumfun/draw/api/utils"
	"github.com/coreumfun/draw/log"
	"github.com/coreumfun/draw/runtime"
)

var logger = log.WithContext("pkg", "solo")

// Clock is the offset-adjustable clock of a solo node.
type Clock interface {
	Now() time.Time
	Offset() time.Duration
	Advance(d time.Duration) error
}

type ClockStatus struct {
	Now    uint64 `json:"now"`
	Offset string `json:"offset"`
}

// AdvanceRequest moves the clock forward. Duration takes Go duration syntax, e.g. "168h".
type AdvanceRequest struct {
	Duration string `json:"duration"`
	Seconds  uint64 `json:"seconds"`
}

type Solo struct {
	clock Clock
}

func New(clock Clock) *Solo {
	return &Solo{clock}
}

var _ Clock = (*runtime.SoloClock)(nil)

func (s *Solo) status() *ClockStatus {
	return &ClockStatus{
		Now:    uint64(s.clock.Now().Unix()),
		Offset: s.clock.Offset().String(),
	}
}

func (s *Solo) handleGetClock(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, s.status())
}

func (s *Solo) handleAdvanceClock(w http.ResponseWriter, req *http.Request) error {
	var body AdvanceRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	var d time.Duration
	switch {
	case body.Duration != "" && body.Seconds != 0:
		return utils.BadRequest(errors.New("duration and seconds are mutually exclusive"))
	case body.Duration != "":
		var err error
		if d, err = time.ParseDuration(body.Duration); err != nil {
			return utils.BadRequest(errors.WithMessage(err, "duration"))
		}
	case body.Seconds > math.MaxInt64/uint64(time.Second):
		return utils.BadRequest(errors.New("seconds: out of range"))
	default:
		d = time.Duration(body.Seconds) * time.Second
	}
	if err := s.clock.Advance(d); err != nil {
		return utils.BadRequest(err)
	}
	logger.Info("clock advanced", "by", d, "offset", s.clock.Offset())
	return utils.WriteJSON(w, s.status())
}

func (s *Solo) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/clock").
		Methods(http.MethodGet).
		Name("GET /solo/clock").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetClock))
	sub.Path("/clock").
		Methods(http.MethodPost).
		Name("POST /solo/clock").
		HandlerFunc(utils.WrapHandlerFunc(s.handleAdvanceClock))
}
