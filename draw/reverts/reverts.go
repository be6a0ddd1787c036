// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a revert.
type Kind string

const (
	KindUnauthorized         Kind = "Unauthorized"
	KindInvalidPhase         Kind = "InvalidPhase"
	KindInvalidTicketAmount  Kind = "InvalidTicketAmount"
	KindInvalidTicketPrice   Kind = "InvalidTicketPrice"
	KindInvalidParameter     Kind = "InvalidParameter"
	KindNotOpen              Kind = "NotOpen"
	KindInventoryExhausted   Kind = "InventoryExhausted"
	KindPerUserCapExceeded   Kind = "PerUserCapExceeded"
	KindNoFunds              Kind = "NoFunds"
	KindInsufficientFunds    Kind = "InsufficientFunds"
	KindInsufficientTickets  Kind = "InsufficientTickets"
	KindWinnerHoldsNoTickets Kind = "WinnerHoldsNoTickets"
	KindUnbondingNotMatured  Kind = "UnbondingNotMatured"
	KindNoUndelegation       Kind = "NoUndelegation"
	KindNoWinner             Kind = "NoWinner"
	KindWinnerAlreadyPaid    Kind = "WinnerAlreadyPaid"
	KindBonusClosed          Kind = "BonusClosed"
	KindStorageError         Kind = "StorageError"
	KindFacilityRejected     Kind = "FacilityRejected"
	KindArithmeticOverflow   Kind = "ArithmeticOverflow"
	KindUnknownMessage       Kind = "UnknownMessage"

	// ownership
	KindNotOwner             Kind = "NotOwner"
	KindNoOwner              Kind = "NoOwner"
	KindNotPendingOwner      Kind = "NotPendingOwner"
	KindTransferNotFound     Kind = "TransferNotFound"
	KindTransferExpired      Kind = "TransferExpired"
	KindCannotTransferToSelf Kind = "CannotTransferToSelf"
)

// Operand is a named value carried by a revert.
type Operand struct {
	Name  string
	Value string
}

// ErrRevert is a rejected invocation. Nothing it touched is committed.
type ErrRevert struct {
	kind     Kind
	message  string
	operands []Operand
	cause    error
}

// New creates a revert of the given kind. Operands are name/value pairs.
func New(kind Kind, message string, operands ...any) *ErrRevert {
	e := &ErrRevert{kind: kind, message: message}
	for i := 0; i+1 < len(operands); i += 2 {
		e.operands = append(e.operands, Operand{
			Name:  fmt.Sprint(operands[i]),
			Value: fmt.Sprint(operands[i+1]),
		})
	}
	return e
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

func (e *ErrRevert) Operands() []Operand {
	return e.operands
}

// Operand returns the value of the named operand.
func (e *ErrRevert) Operand(name string) (string, bool) {
	for _, o := range e.operands {
		if o.Name == name {
			return o.Value, true
		}
	}
	return "", false
}

func (e *ErrRevert) Error() string {
	if len(e.operands) == 0 {
		return e.message
	}
	parts := make([]string, 0, len(e.operands))
	for _, o := range e.operands {
		parts = append(parts, o.Name+": "+o.Value)
	}
	return e.message + " (" + strings.Join(parts, ", ") + ")"
}

func (e *ErrRevert) Unwrap() error {
	return e.cause
}

// MarshalJSON renders {"error": kind, "message": text, "operands": {...}}.
func (e *ErrRevert) MarshalJSON() ([]byte, error) {
	ops := make(map[string]string, len(e.operands))
	for _, o := range e.operands {
		ops[o.Name] = o.Value
	}
	return json.Marshal(struct {
		Error    Kind              `json:"error"`
		Message  string            `json:"message"`
		Operands map[string]string `json:"operands,omitempty"`
	}{e.kind, e.Error(), ops})
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// KindOf returns the kind of a revert, or "" if err is not one.
func KindOf(err error) Kind {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind
	}
	return ""
}
