// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package lcd queries the bank, staking and distribution modules of a Cosmos
// chain through its LCD REST endpoint.
package lcd

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/coreumfun/draw/facility"
)

var _ facility.Querier = (*Client)(nil)

// errNotFound is returned by get on http 404.
var errNotFound = errors.New("not found")

// Client is a read-only facility querier.
type Client struct {
	base   string
	client *http.Client
}

func NewClient(base string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: strings.TrimRight(base, "/"), client: httpClient}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "lcd %s", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errors.Errorf("lcd %s: %d %s", path, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "lcd %s: decode", path)
	}
	return nil
}

type lcdCoin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

func (c lcdCoin) parse() (*uint256.Int, error) {
	if c.Amount == "" {
		return new(uint256.Int), nil
	}
	v, err := uint256.FromDecimal(c.Amount)
	if err != nil {
		return nil, errors.Wrapf(err, "parse amount %q", c.Amount)
	}
	return v, nil
}

// Balance returns the bank balance of account in denom.
func (c *Client) Balance(ctx context.Context, account, denom string) (*uint256.Int, error) {
	var out struct {
		Balance lcdCoin `json:"balance"`
	}
	path := "/cosmos/bank/v1beta1/balances/" + url.PathEscape(account) + "/by_denom"
	if err := c.get(ctx, path, url.Values{"denom": {denom}}, &out); err != nil {
		return nil, err
	}
	return out.Balance.parse()
}

// TokenBalance returns the fungible-token balance. Issued tokens live in the bank module.
func (c *Client) TokenBalance(ctx context.Context, account, denom string) (*uint256.Int, error) {
	return c.Balance(ctx, account, denom)
}

// TokenHolders walks all pages of the denom owners endpoint.
func (c *Client) TokenHolders(ctx context.Context, denom string) ([]facility.Holder, error) {
	var (
		holders []facility.Holder
		next    string
	)
	for {
		q := url.Values{}
		if next != "" {
			q.Set("pagination.key", next)
		}
		var out struct {
			Owners []struct {
				Address string  `json:"address"`
				Balance lcdCoin `json:"balance"`
			} `json:"denom_owners"`
			Pagination struct {
				NextKey string `json:"next_key"`
			} `json:"pagination"`
		}
		if err := c.get(ctx, "/cosmos/bank/v1beta1/denom_owners/"+url.PathEscape(denom), q, &out); err != nil {
			return nil, err
		}
		for _, o := range out.Owners {
			bal, err := o.Balance.parse()
			if err != nil {
				return nil, err
			}
			if bal.IsZero() {
				continue
			}
			holders = append(holders, facility.Holder{Address: o.Address, Balance: bal})
		}
		if out.Pagination.NextKey == "" {
			break
		}
		next = out.Pagination.NextKey
	}
	sort.Slice(holders, func(i, j int) bool { return holders[i].Address < holders[j].Address })
	return holders, nil
}

// Delegation returns nil when the delegator has nothing bonded at validator.
func (c *Client) Delegation(ctx context.Context, delegator, validator string) (*facility.Delegation, error) {
	var out struct {
		Response struct {
			Delegation struct {
				Delegator string `json:"delegator_address"`
				Validator string `json:"validator_address"`
			} `json:"delegation"`
			Balance lcdCoin `json:"balance"`
		} `json:"delegation_response"`
	}
	path := "/cosmos/staking/v1beta1/validators/" + url.PathEscape(validator) + "/delegations/" + url.PathEscape(delegator)
	if err := c.get(ctx, path, nil, &out); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	amount, err := out.Response.Balance.parse()
	if err != nil {
		return nil, err
	}
	return &facility.Delegation{
		Delegator: delegator,
		Validator: validator,
		Amount:    facility.Coin{Denom: out.Response.Balance.Denom, Amount: amount},
	}, nil
}

func (c *Client) DelegationRewards(ctx context.Context, delegator, validator string) ([]facility.DecCoin, error) {
	var out struct {
		Rewards []lcdCoin `json:"rewards"`
	}
	path := "/cosmos/distribution/v1beta1/delegators/" + url.PathEscape(delegator) + "/rewards/" + url.PathEscape(validator)
	if err := c.get(ctx, path, nil, &out); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	rewards := make([]facility.DecCoin, 0, len(out.Rewards))
	for _, r := range out.Rewards {
		rewards = append(rewards, facility.DecCoin{Denom: r.Denom, Amount: r.Amount})
	}
	return rewards, nil
}
