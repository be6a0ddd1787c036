// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package facility

import (
	"encoding/json"
)

// Msg is an outbound message addressed to one of the external facilities.
type Msg interface {
	Kind() string
}

type (
	// Delegate bonds Amount to Validator.
	Delegate struct {
		Validator string `json:"validator"`
		Amount    Coin   `json:"amount"`
	}
	// Undelegate starts unbonding Amount from Validator. Accrued rewards are withdrawn.
	Undelegate struct {
		Validator string `json:"validator"`
		Amount    Coin   `json:"amount"`
	}
	// BankSend transfers coins to an account.
	BankSend struct {
		To     string `json:"to_address"`
		Amount Coins  `json:"amount"`
	}
	// IssueToken creates a fungible token whose denom is "<subunit>-<issuer>".
	IssueToken struct {
		Symbol        string   `json:"symbol"`
		Subunit       string   `json:"subunit"`
		Precision     uint32   `json:"precision"`
		InitialAmount Coin     `json:"initial_amount"`
		Description   string   `json:"description"`
		Features      []string `json:"features"`
		URI           string   `json:"uri"`
	}
	// MintTokens mints Coin to Recipient. Only the token admin may mint.
	MintTokens struct {
		Coin      Coin   `json:"coin"`
		Recipient string `json:"recipient"`
	}
	// BurnTokens burns Coin from the sender balance.
	BurnTokens struct {
		Coin Coin `json:"coin"`
	}
	// TransferTokenAdmin hands the admin role of Denom to NewAdmin.
	TransferTokenAdmin struct {
		Denom    string `json:"denom"`
		NewAdmin string `json:"account"`
	}
)

// token features
const (
	FeatureMinting = "minting"
	FeatureBurning = "burning"
)

func (Delegate) Kind() string           { return "delegate" }
func (Undelegate) Kind() string         { return "undelegate" }
func (BankSend) Kind() string           { return "bank_send" }
func (IssueToken) Kind() string         { return "issue_token" }
func (MintTokens) Kind() string         { return "mint" }
func (BurnTokens) Kind() string         { return "burn" }
func (TransferTokenAdmin) Kind() string { return "transfer_admin" }

// Envelope is a message together with its sending account.
type Envelope struct {
	From string
	Msg  Msg
}

// MarshalJSON encodes the envelope as {"from":..,"<kind>":{..}}.
func (e Envelope) MarshalJSON() ([]byte, error) {
	body, err := json.Marshal(e.Msg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]json.RawMessage{
		"from":       mustJSON(e.From),
		e.Msg.Kind(): body,
	})
}

func mustJSON(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}
