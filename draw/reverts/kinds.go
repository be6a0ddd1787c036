// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"fmt"
)

func Unauthorized() *ErrRevert {
	return New(KindUnauthorized, "unauthorized")
}

func InvalidPhase(expected, actual fmt.Stringer) *ErrRevert {
	return New(KindInvalidPhase, "invalid draw state", "expected", expected, "actual", actual)
}

func InvalidTicketAmount() *ErrRevert {
	return New(KindInvalidTicketAmount, "invalid ticket amount")
}

func InvalidTicketPrice() *ErrRevert {
	return New(KindInvalidTicketPrice, "invalid ticket price")
}

func InvalidParameter(name, reason string) *ErrRevert {
	return New(KindInvalidParameter, "invalid parameter", "name", name, "reason", reason)
}

func NotOpen() *ErrRevert {
	return New(KindNotOpen, "ticket sales are closed")
}

func InventoryExhausted(requested, available uint64) *ErrRevert {
	return New(KindInventoryExhausted, "not enough tickets left", "requested", requested, "available", available)
}

func PerUserCapExceeded(requested, available uint64) *ErrRevert {
	return New(KindPerUserCapExceeded, "max tickets per user reached", "requested", requested, "available", available)
}

func NoFunds() *ErrRevert {
	return New(KindNoFunds, "no funds sent")
}

// InsufficientFunds takes amounts rendered in decimal.
func InsufficientFunds(required, provided string) *ErrRevert {
	return New(KindInsufficientFunds, "insufficient funds", "required", required, "provided", provided)
}

func InsufficientTickets(requested, available uint64) *ErrRevert {
	return New(KindInsufficientTickets, "not enough tickets", "requested", requested, "available", available)
}

func WinnerHoldsNoTickets() *ErrRevert {
	return New(KindWinnerHoldsNoTickets, "no tickets found for address")
}

func UnbondingNotMatured(now, deadline uint64) *ErrRevert {
	return New(KindUnbondingNotMatured, "undelegation period not completed", "now", now, "deadline", deadline)
}

func NoUndelegation() *ErrRevert {
	return New(KindNoUndelegation, "no undelegation in progress")
}

func NoWinner() *ErrRevert {
	return New(KindNoWinner, "no winner has been selected yet")
}

func WinnerAlreadyPaid() *ErrRevert {
	return New(KindWinnerAlreadyPaid, "winner already paid")
}

func BonusClosed(actual fmt.Stringer) *ErrRevert {
	return New(KindBonusClosed, "bonus contributions are closed", "state", actual)
}

func ArithmeticOverflow() *ErrRevert {
	return New(KindArithmeticOverflow, "overflow")
}

func UnknownMessage() *ErrRevert {
	return New(KindUnknownMessage, "message must carry exactly one known variant")
}

// StorageError wraps an infrastructure failure met while handling an invocation.
func StorageError(cause error) *ErrRevert {
	e := New(KindStorageError, "storage error: "+cause.Error())
	e.cause = cause
	return e
}

// FacilityRejected wraps a refusal of the outbound messages by an external facility.
func FacilityRejected(cause error) *ErrRevert {
	e := New(KindFacilityRejected, "facility rejected messages: "+cause.Error())
	e.cause = cause
	return e
}

func NotOwner() *ErrRevert {
	return New(KindNotOwner, "caller is not the contract's current owner")
}

func NoOwner() *ErrRevert {
	return New(KindNoOwner, "contract ownership has been renounced")
}

func NotPendingOwner() *ErrRevert {
	return New(KindNotPendingOwner, "caller is not the contract's pending owner")
}

func TransferNotFound() *ErrRevert {
	return New(KindTransferNotFound, "no ownership transfer is pending")
}

func TransferExpired() *ErrRevert {
	return New(KindTransferExpired, "ownership transfer has expired")
}

func CannotTransferToSelf() *ErrRevert {
	return New(KindCannotTransferToSelf, "cannot transfer ownership to self")
}
