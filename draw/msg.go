// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package draw

import (
	"bytes"
	"encoding/json"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/coreumfun/draw/facility"
)

// InstantiateMsg carries the round parameters.
type InstantiateMsg struct {
	TicketSymbol      string       `json:"ticket_token_symbol"`
	BaseDenom         string       `json:"core_denom"`
	Validator         string       `json:"validator_address"`
	TotalTickets      uint64       `json:"total_tickets,string"`
	TicketPrice       *uint256.Int `json:"ticket_price"`
	MaxTicketsPerUser uint64       `json:"max_tickets_per_user,string"`
	// UnbondingPeriod in seconds, DefaultUnbondingPeriod when zero.
	UnbondingPeriod     uint64 `json:"unbonding_period,omitempty"`
	BurnRedeemedTickets bool   `json:"burn_redeemed_tickets,omitempty"`
}

// ExecuteMsg is a tagged union: exactly one field is set.
type ExecuteMsg struct {
	BuyTicket                 *BuyTicket                 `json:"buy_ticket,omitempty"`
	SelectWinnerAndUndelegate *SelectWinnerAndUndelegate `json:"select_winner_and_undelegate,omitempty"`
	SendFundsToWinner         *struct{}                  `json:"send_funds_to_winner,omitempty"`
	BurnTickets               *BurnTickets               `json:"burn_tickets,omitempty"`
	AddBonusRewardToThePool   *AddBonusRewardToThePool   `json:"add_bonus_reward_to_the_pool,omitempty"`
	UpdateDrawState           *UpdateDrawState           `json:"update_draw_state,omitempty"`
	SendFunds                 *SendFunds                 `json:"send_funds,omitempty"`
	SetUndelegationTimestamp  *SetUndelegationTimestamp  `json:"set_undelegation_timestamp,omitempty"`
	TransferTokenAdmin        *TransferTokenAdmin        `json:"transfer_token_admin,omitempty"`
	UpdateOwnership           *OwnershipAction           `json:"update_ownership,omitempty"`
}

type (
	BuyTicket struct {
		NumberOfTickets uint64 `json:"number_of_tickets,string"`
	}
	SelectWinnerAndUndelegate struct {
		WinnerAddress Address `json:"winner_address"`
	}
	BurnTickets struct {
		NumberOfTickets uint64 `json:"number_of_tickets,string"`
	}
	AddBonusRewardToThePool struct {
		Amount *uint256.Int `json:"amount"`
	}
	UpdateDrawState struct {
		NewState Phase `json:"new_state"`
	}
	SendFunds struct {
		Recipient Address      `json:"recipient"`
		Amount    *uint256.Int `json:"amount"`
	}
	SetUndelegationTimestamp struct {
		Timestamp uint64 `json:"timestamp"`
	}
	TransferTokenAdmin struct {
		NewAdmin Address `json:"new_admin"`
	}
)

// Kind returns the name of the variant that is set, or "" unless exactly one is.
func (m *ExecuteMsg) Kind() string {
	kinds := make([]string, 0, 1)
	add := func(set bool, name string) {
		if set {
			kinds = append(kinds, name)
		}
	}
	add(m.BuyTicket != nil, "buy_ticket")
	add(m.SelectWinnerAndUndelegate != nil, "select_winner_and_undelegate")
	add(m.SendFundsToWinner != nil, "send_funds_to_winner")
	add(m.BurnTickets != nil, "burn_tickets")
	add(m.AddBonusRewardToThePool != nil, "add_bonus_reward_to_the_pool")
	add(m.UpdateDrawState != nil, "update_draw_state")
	add(m.SendFunds != nil, "send_funds")
	add(m.SetUndelegationTimestamp != nil, "set_undelegation_timestamp")
	add(m.TransferTokenAdmin != nil, "transfer_token_admin")
	add(m.UpdateOwnership != nil, "update_ownership")
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

// Admin reports whether the message is one of the owner-only escape hatches.
func (m *ExecuteMsg) Admin() bool {
	return m.UpdateDrawState != nil ||
		m.SendFunds != nil ||
		m.SetUndelegationTimestamp != nil ||
		m.TransferTokenAdmin != nil ||
		m.UpdateOwnership != nil
}

// OwnershipAction is one of transfer_ownership, accept_ownership or renounce_ownership.
// The unit variants are encoded as bare strings.
type OwnershipAction struct {
	Transfer *TransferOwnership
	Accept   bool
	Renounce bool
}

type TransferOwnership struct {
	NewOwner Address `json:"new_owner"`
	// Expiry is a unix timestamp after which the transfer can no longer be accepted.
	Expiry *uint64 `json:"expiry,omitempty"`
}

const (
	acceptOwnership   = "accept_ownership"
	renounceOwnership = "renounce_ownership"
)

func (a OwnershipAction) MarshalJSON() ([]byte, error) {
	switch {
	case a.Transfer != nil:
		return json.Marshal(map[string]*TransferOwnership{"transfer_ownership": a.Transfer})
	case a.Accept:
		return json.Marshal(acceptOwnership)
	case a.Renounce:
		return json.Marshal(renounceOwnership)
	}
	return nil, errors.New("empty ownership action")
}

func (a *OwnershipAction) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch s {
		case acceptOwnership:
			*a = OwnershipAction{Accept: true}
		case renounceOwnership:
			*a = OwnershipAction{Renounce: true}
		default:
			return errors.Errorf("unknown ownership action %q", s)
		}
		return nil
	}
	var obj struct {
		Transfer *TransferOwnership `json:"transfer_ownership"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.Transfer == nil {
		return errors.New("unknown ownership action")
	}
	*a = OwnershipAction{Transfer: obj.Transfer}
	return nil
}

// QueryMsg is a tagged union: exactly one field is set.
type QueryMsg struct {
	Balance                             *BalanceQuery `json:"balance,omitempty"`
	GetParticipants                     *struct{}     `json:"get_participants,omitempty"`
	GetWinner                           *struct{}     `json:"get_winner,omitempty"`
	GetCurrentState                     *struct{}     `json:"get_current_state,omitempty"`
	GetNumberOfTicketsSold              *struct{}     `json:"get_number_of_tickets_sold,omitempty"`
	GetBonusRewards                     *struct{}     `json:"get_bonus_rewards,omitempty"`
	GetAccumulatedRewards               *struct{}     `json:"get_accumulated_rewards,omitempty"`
	GetAccumulatedRewardsAtUndelegation *struct{}     `json:"get_accumulated_rewards_at_undelegation,omitempty"`
	GetDraftTvl                         *struct{}     `json:"get_draft_tvl,omitempty"`
	GetTicketHolders                    *struct{}     `json:"get_ticket_holders,omitempty"`
	GetUserNumberOfTickets              *AddressQuery `json:"get_user_number_of_tickets,omitempty"`
	GetUserWinChance                    *AddressQuery `json:"get_user_win_chance,omitempty"`
	GetTotalTicketsBurned               *struct{}     `json:"get_total_tickets_burned,omitempty"`
	GetClaims                           *ClaimsQuery  `json:"get_claims,omitempty"`
	GetDelegatedAmount                  *struct{}     `json:"get_delegated_amount,omitempty"`
	GetContractConfig                   *struct{}     `json:"get_contract_config,omitempty"`
	GetOwnership                        *struct{}     `json:"ownership,omitempty"`
	GetContractVersion                  *struct{}     `json:"contract_version,omitempty"`
}

type (
	BalanceQuery struct {
		Account Address `json:"account"`
	}
	AddressQuery struct {
		Address Address `json:"address"`
	}
	ClaimsQuery struct {
		Address *Address `json:"address,omitempty"`
	}
)

// Responses.
type (
	BalanceResponse struct {
		Balance *uint256.Int `json:"balance"`
	}
	ParticipantInfo struct {
		Address   Address `json:"address"`
		Tickets   uint64  `json:"tickets,string"`
		WinChance string  `json:"win_chance"`
	}
	ParticipantsResponse struct {
		Participants      []ParticipantInfo `json:"participants"`
		TotalParticipants uint64            `json:"total_participants"`
	}
	TicketHoldersResponse struct {
		Holders      []ParticipantInfo `json:"holders"`
		TotalHolders uint64            `json:"total_holders"`
	}
	WinnerResponse struct {
		Winner  *Address     `json:"winner"`
		Rewards *uint256.Int `json:"rewards"`
		Paid    bool         `json:"paid"`
	}
	CurrentStateResponse struct {
		State                     Phase   `json:"state"`
		UndelegationDoneTimestamp *uint64 `json:"undelegation_done_timestamp"`
	}
	TicketsSoldResponse struct {
		TotalTickets     uint64 `json:"total_tickets,string"`
		TicketsSold      uint64 `json:"tickets_sold,string"`
		TicketsRemaining uint64 `json:"tickets_remaining,string"`
	}
	BonusRewardsResponse struct {
		BonusRewards *uint256.Int `json:"bonus_rewards"`
	}
	AccumulatedRewardsResponse struct {
		AccumulatedRewards *uint256.Int `json:"accumulated_rewards"`
	}
	DraftTvlResponse struct {
		Tvl   *uint256.Int `json:"tvl"`
		Denom string       `json:"denom"`
	}
	UserTicketsResponse struct {
		Address Address `json:"address"`
		Tickets uint64  `json:"tickets,string"`
	}
	UserWinChanceResponse struct {
		Address   Address `json:"address"`
		Tickets   uint64  `json:"tickets,string"`
		WinChance string  `json:"win_chance"`
	}
	TotalBurnedResponse struct {
		TotalBurned uint64 `json:"total_burned,string"`
	}
	ClaimInfo struct {
		Address Address      `json:"address"`
		Amount  *uint256.Int `json:"amount"`
	}
	ClaimsResponse struct {
		Claims       []ClaimInfo  `json:"claims"`
		TotalClaimed *uint256.Int `json:"total_claimed"`
	}
	DelegatedAmountResponse struct {
		Amount facility.Coin `json:"amount"`
	}
	ConfigResponse struct {
		Owner                     *Address     `json:"owner"`
		TicketSymbol              string       `json:"ticket_symbol"`
		TicketDenom               string       `json:"ticket_denom"`
		CoreDenom                 string       `json:"core_denom"`
		ValidatorAddress          string       `json:"validator_address"`
		TotalTickets              uint64       `json:"total_tickets,string"`
		TicketPrice               *uint256.Int `json:"ticket_price"`
		MaxTicketsPerUser         uint64       `json:"max_tickets_per_user,string"`
		UnbondingPeriod           uint64       `json:"unbonding_period"`
		BurnRedeemedTickets       bool         `json:"burn_redeemed_tickets"`
		DrawState                 Phase        `json:"draw_state"`
		Winner                    *Address     `json:"winner"`
		UndelegationDoneTimestamp *uint64      `json:"undelegation_done_timestamp"`
		AccumulatedRewards        *uint256.Int `json:"accumulated_rewards"`
		BonusRewards              *uint256.Int `json:"bonus_rewards"`
		WinnerPaid                bool         `json:"winner_paid"`
	}
	OwnershipResponse struct {
		Owner         *Address `json:"owner"`
		PendingOwner  *Address `json:"pending_owner"`
		PendingExpiry *uint64  `json:"pending_expiry"`
	}
)

func optAddress(a Address) *Address {
	if a == "" {
		return nil
	}
	return &a
}
