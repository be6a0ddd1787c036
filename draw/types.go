// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package draw

import (
	"fmt"

	"github.com/holiman/uint256"
)

const (
	// ContractName identifies the contract in its stored version info.
	ContractName = "coreum-fun"
	// ContractVersion is the version recorded at instantiation.
	ContractVersion = "0.1.0"

	// TicketPrecision is the number of decimals of the ticket token.
	TicketPrecision = 6
	// DefaultUnbondingPeriod is the staking unbonding period in seconds.
	DefaultUnbondingPeriod uint64 = 7 * 24 * 60 * 60
)

// ticketUnit is 10^TicketPrecision, the sub-units of one ticket.
var ticketUnit = uint256.NewInt(1_000_000)

// Address is an opaque account handle.
type Address string

func (a Address) Bytes() []byte {
	return []byte(a)
}

func (a Address) String() string {
	return string(a)
}

// Phase is the lifecycle phase of a round.
type Phase uint8

const (
	PhaseOpen Phase = iota
	PhaseSoldOut
	PhaseWinnerPicked
	PhaseUnbondingMatured
	PhaseFinished
)

var phaseNames = [...]string{
	PhaseOpen:             "TicketSalesOpen",
	PhaseSoldOut:          "TicketsSoldOutAccumulationInProgress",
	PhaseWinnerPicked:     "WinnerSelectedUndelegationInProcess",
	PhaseUnbondingMatured: "UndelegationCompletedTokensCanBeBurned",
	PhaseFinished:         "DrawFinished",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", p)
}

func (p Phase) MarshalText() ([]byte, error) {
	if int(p) >= len(phaseNames) {
		return nil, fmt.Errorf("invalid phase %d", p)
	}
	return []byte(phaseNames[p]), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown draw state %q", text)
}

// Config is the singleton round configuration and settlement state.
type Config struct {
	TicketSymbol        string
	BaseDenom           string
	Validator           string
	TotalTickets        uint64
	TicketPrice         *uint256.Int
	MaxTicketsPerUser   uint64
	UnbondingPeriod     uint64
	BurnRedeemedTickets bool

	Phase           Phase
	Winner          Address // empty until picked
	HasDeadline     bool
	Deadline        uint64
	RewardsSnapshot *uint256.Int
	BonusPool       *uint256.Int
	WinnerPaid      bool
}

// Payout is what the winner receives: the rewards snapshot plus the bonus pool.
func (c *Config) Payout() (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(c.RewardsSnapshot, c.BonusPool)
	if overflow {
		return nil, errOverflow
	}
	return sum, nil
}

func (c *Config) deadline() *uint64 {
	if !c.HasDeadline {
		return nil
	}
	d := c.Deadline
	return &d
}

// Ownership is the two-step ownership record.
type Ownership struct {
	Owner         Address // empty once renounced
	PendingOwner  Address
	HasExpiry     bool
	PendingExpiry uint64
}

// ContractInfo is the stored contract name and version.
type ContractInfo struct {
	Contract string `json:"contract"`
	Version  string `json:"version"`
}
