// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package facility

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// Coin is an amount of a single denomination in its smallest unit.
type Coin struct {
	Denom  string       `json:"denom"`
	Amount *uint256.Int `json:"amount"`
}

func NewCoin(denom string, amount *uint256.Int) Coin {
	return Coin{Denom: denom, Amount: new(uint256.Int).Set(amount)}
}

func (c Coin) String() string {
	if c.Amount == nil {
		return "0" + c.Denom
	}
	return c.Amount.Dec() + c.Denom
}

// Coins is a list of coins, at most one per denomination.
type Coins []Coin

// AmountOf returns the amount of denom, zero if absent.
func (cs Coins) AmountOf(denom string) *uint256.Int {
	for _, c := range cs {
		if c.Denom == denom && c.Amount != nil {
			return new(uint256.Int).Set(c.Amount)
		}
	}
	return new(uint256.Int)
}

// Find returns the coin of denom.
func (cs Coins) Find(denom string) (Coin, bool) {
	for _, c := range cs {
		if c.Denom == denom {
			return c, true
		}
	}
	return Coin{}, false
}

// Validate checks for nil amounts and duplicated denominations.
func (cs Coins) Validate() error {
	seen := make(map[string]bool, len(cs))
	for _, c := range cs {
		if c.Denom == "" {
			return errors.New("empty denom")
		}
		if c.Amount == nil {
			return errors.Errorf("nil amount of %s", c.Denom)
		}
		if seen[c.Denom] {
			return errors.Errorf("duplicated denom %s", c.Denom)
		}
		seen[c.Denom] = true
	}
	return nil
}

func (cs Coins) String() string {
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, ",")
}

// DecCoin is a coin with a decimal amount, as reported for staking rewards.
type DecCoin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// Floor truncates the decimal amount toward zero.
func (d DecCoin) Floor() (*uint256.Int, error) {
	s := strings.TrimSpace(d.Amount)
	if s == "" {
		return new(uint256.Int), nil
	}
	if strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("negative amount %q", d.Amount)
	}
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		s = s[:idx]
		if s == "" {
			s = "0"
		}
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, errors.Wrapf(err, "parse amount %q", d.Amount)
	}
	return v, nil
}

// SumFloor adds up the floored amounts of denom.
func SumFloor(coins []DecCoin, denom string) (*uint256.Int, error) {
	total := new(uint256.Int)
	for _, c := range coins {
		if c.Denom != denom {
			continue
		}
		v, err := c.Floor()
		if err != nil {
			return nil, err
		}
		if _, overflow := total.AddOverflow(total, v); overflow {
			return nil, errors.New("rewards overflow")
		}
	}
	return total, nil
}
