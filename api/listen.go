// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/coreumfun/draw/co"
)

// listenAndServe serves h on addr in the background. It returns the base url
// with path appended, and a stop function that waits for the server loop.
func listenAndServe(name, addr, path string, h http.Handler) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen %s addr [%v]", name, addr)
	}
	srv := &http.Server{Handler: h, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}

	var goes co.Goes
	goes.Go(func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("server stopped", "name", name, "err", err)
		}
	})
	stop := func() {
		srv.Close()
		goes.Wait()
	}
	return "http://" + listener.Addr().String() + path, stop, nil
}
