// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/coreumfun/draw/api/utils"
	"github.com/coreumfun/draw/co"
	"github.com/coreumfun/draw/log"
	"github.com/coreumfun/draw/logdb"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	readBatch  = 100
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 7 / 10
	writeWait  = 10 * time.Second
)

// Source reports the newest invocation and wakes waiters on every new one.
type Source interface {
	Seq() uint64
	NewWaiter() co.Waiter
}

type Subscriptions struct {
	source         Source
	logs           logdb.Reader
	backtraceLimit uint64
	upgrader       *websocket.Upgrader
	cache          *messageCache
	done           chan struct{}
	wg             sync.WaitGroup
}

func New(source Source, logs logdb.Reader, allowedOrigins []string, backtraceLimit uint64) (*Subscriptions, error) {
	cache, err := newMessageCache(uint32(backtraceLimit))
	if err != nil {
		return nil, err
	}
	return &Subscriptions{
		source:         source,
		logs:           logs,
		backtraceLimit: backtraceLimit,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		cache: cache,
		done:  make(chan struct{}),
	}, nil
}

// invocationReader pages through the log from a position.
type invocationReader struct {
	logs logdb.Reader
	pos  uint64
	kind string
}

// Read returns the next batch of invocations after pos. The bool reports a full batch.
func (r *invocationReader) Read(ctx context.Context) ([]*logdb.Invocation, bool, error) {
	invs, err := r.logs.FilterInvocations(ctx, &logdb.InvocationFilter{
		Range:   &logdb.Range{Unit: logdb.Seq, From: r.pos + 1, To: math.MaxInt64},
		Kind:    r.kind,
		Options: &logdb.Options{Limit: readBatch},
	})
	if err != nil {
		return nil, false, err
	}
	if len(invs) > 0 {
		r.pos = invs[len(invs)-1].Seq
	}
	return invs, len(invs) == readBatch, nil
}

func (s *Subscriptions) parsePosition(posStr string) (uint64, error) {
	newest := s.source.Seq()
	if posStr == "" {
		return newest, nil
	}
	pos, err := utils.StringToUint64(posStr, newest)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "pos"))
	}
	if pos > newest {
		return 0, utils.BadRequest(errors.New("pos: out of range"))
	}
	if newest-pos > s.backtraceLimit {
		return 0, utils.Forbidden(errors.New("pos: backtrace limit exceeded"))
	}
	return pos, nil
}

func (s *Subscriptions) handleSubject(w http.ResponseWriter, req *http.Request) error {
	s.wg.Add(1)
	defer s.wg.Done()

	pos, err := s.parsePosition(req.URL.Query().Get("pos"))
	if err != nil {
		return err
	}
	reader := &invocationReader{logs: s.logs, pos: pos, kind: req.URL.Query().Get("kind")}

	conn, err := s.upgrader.Upgrade(w, req, nil)
	// since the conn is hijacked here, no error should be returned in lines below
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		return nil
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Debug("close websocket", "err", err)
		}
	}()

	var closeMsg []byte
	if err = s.pipe(req.Context(), conn, reader); err != nil {
		closeMsg = websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
	} else {
		closeMsg = websocket.FormatCloseMessage(websocket.CloseGoingAway, "")
	}
	if err := conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(writeWait)); err != nil {
		logger.Debug("write close message", "err", err)
	}
	return nil
}

func (s *Subscriptions) pipe(ctx context.Context, conn *websocket.Conn, reader *invocationReader) error {
	closed := make(chan struct{})
	// the client is not expected to send anything but pongs and close frames
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				logger.Debug("websocket read", "err", err)
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	waiter := s.source.NewWaiter()

	for {
		invs, full, err := reader.Read(ctx)
		if err != nil {
			return err
		}
		for _, inv := range invs {
			msg, _, err := s.cache.GetOrAdd(inv)
			if err != nil {
				return err
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return nil
			}
		}
		if full {
			continue
		}

		select {
		case <-s.done:
			return nil
		case <-closed:
			return nil
		case <-waiter.C():
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		}
	}
}

// Close disconnects every subscriber and waits for the handlers to return.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/events").
		Methods(http.MethodGet).
		Name(fmt.Sprintf("WS %s/events", pathPrefix)).
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubject))
}
