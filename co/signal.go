// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import "sync"

// Waiter hands out the channel to wait on. A value of true means the waiter
// was woken by Signal, a closed channel means Broadcast.
type Waiter interface {
	C() <-chan bool
}

// Signal is a channel based rendezvous, usable in select statements unlike sync.Cond.
// The zero value is ready to use.
type Signal struct {
	mu sync.Mutex
	ch chan bool
}

func (s *Signal) current() chan bool {
	if s.ch == nil {
		s.ch = make(chan bool, 1)
	}
	return s.ch
}

// Signal wakes at most one waiter. It never blocks.
func (s *Signal) Signal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case s.current() <- true:
	default:
	}
}

// Broadcast wakes every waiter.
func (s *Signal) Broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()
	close(s.current())
	s.ch = make(chan bool, 1)
}

// NewWaiter returns a Waiter. Each call to C returns the channel observed at the
// previous call, so no broadcast between two waits is missed.
func (s *Signal) NewWaiter() Waiter {
	s.mu.Lock()
	ref := s.current()
	s.mu.Unlock()

	return waiterFunc(func() <-chan bool {
		ch := ref
		s.mu.Lock()
		ref = s.current()
		s.mu.Unlock()
		return ch
	})
}

type waiterFunc func() <-chan bool

func (w waiterFunc) C() <-chan bool { return w() }
