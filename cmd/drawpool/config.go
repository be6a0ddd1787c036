// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/coreumfun/draw/draw"
	"github.com/coreumfun/draw/facility"
	"github.com/coreumfun/draw/facility/sim"
)

// poolConfig describes the round a fresh node instantiates.
type poolConfig struct {
	TicketSymbol        string `yaml:"ticket_token_symbol"`
	BaseDenom           string `yaml:"core_denom"`
	Validator           string `yaml:"validator_address"`
	TotalTickets        uint64 `yaml:"total_tickets"`
	TicketPrice         string `yaml:"ticket_price"`
	MaxTicketsPerUser   uint64 `yaml:"max_tickets_per_user"`
	UnbondingPeriod     uint64 `yaml:"unbonding_period"`
	BurnRedeemedTickets bool   `yaml:"burn_redeemed_tickets"`
}

// simConfig configures the simulated chain the pool settles against.
type simConfig struct {
	BondDenom       string        `yaml:"bond_denom"`
	RewardRateBps   uint64        `yaml:"reward_rate_bps"`
	UnbondingPeriod time.Duration `yaml:"unbonding_period"`
	// Genesis maps accounts to the amounts they start with, e.g. "1000000ucore".
	Genesis map[string][]string `yaml:"genesis"`
}

type config struct {
	Owner string     `yaml:"owner"`
	Label string     `yaml:"label"`
	Pool  poolConfig `yaml:"pool"`
	Sim   simConfig  `yaml:"sim"`
}

func defaultConfig() *config {
	return &config{
		Owner: "core1owner",
		Label: "drawpool",
		Pool: poolConfig{
			TicketSymbol:      "TKT",
			BaseDenom:         "ucore",
			Validator:         "corevaloper1validator",
			TotalTickets:      100,
			TicketPrice:       "1000000",
			MaxTicketsPerUser: 10,
		},
		Sim: simConfig{
			BondDenom:       "ucore",
			RewardRateBps:   1_000,
			UnbondingPeriod: sim.DefaultUnbondingPeriod,
		},
	}
}

func defaultGenesis() map[string][]string {
	return map[string][]string{
		"core1owner": {"1000000000ucore"},
		"core1alice": {"1000000000ucore"},
		"core1bob":   {"1000000000ucore"},
	}
}

// loadConfig reads a yaml config over the defaults. An empty path yields the defaults.
func loadConfig(path string) (*config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config")
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && err != io.EOF {
			return nil, errors.Wrapf(err, "decode config [%v]", path)
		}
	}
	// genesis defaults apply only when the file sets none
	if cfg.Sim.Genesis == nil {
		cfg.Sim.Genesis = defaultGenesis()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *config) validate() error {
	if strings.TrimSpace(c.Owner) == "" {
		return errors.New("config: empty owner")
	}
	if strings.TrimSpace(c.Label) == "" {
		return errors.New("config: empty label")
	}
	msg, err := c.instantiateMsg()
	if err != nil {
		return err
	}
	if err := msg.Validate(); err != nil {
		return errors.WithMessage(err, "config: pool")
	}
	if c.Sim.UnbondingPeriod < 0 {
		return errors.New("config: negative sim unbonding period")
	}
	if _, err := c.genesis(); err != nil {
		return err
	}
	return nil
}

func (c *config) instantiateMsg() (*draw.InstantiateMsg, error) {
	price, err := uint256.FromDecimal(c.Pool.TicketPrice)
	if err != nil {
		return nil, errors.Wrapf(err, "config: ticket_price %q", c.Pool.TicketPrice)
	}
	return &draw.InstantiateMsg{
		TicketSymbol:        c.Pool.TicketSymbol,
		BaseDenom:           c.Pool.BaseDenom,
		Validator:           c.Pool.Validator,
		TotalTickets:        c.Pool.TotalTickets,
		TicketPrice:         price,
		MaxTicketsPerUser:   c.Pool.MaxTicketsPerUser,
		UnbondingPeriod:     c.Pool.UnbondingPeriod,
		BurnRedeemedTickets: c.Pool.BurnRedeemedTickets,
	}, nil
}

func (c *config) simOptions() sim.Options {
	return sim.Options{
		BondDenom:       c.Sim.BondDenom,
		UnbondingPeriod: c.Sim.UnbondingPeriod,
		RewardRateBps:   c.Sim.RewardRateBps,
	}
}

type allocation struct {
	account string
	coins   []facility.Coin
}

// genesis parses the genesis balances, sorted by account.
func (c *config) genesis() ([]allocation, error) {
	allocs := make([]allocation, 0, len(c.Sim.Genesis))
	for account, amounts := range c.Sim.Genesis {
		a := allocation{account: account}
		for _, s := range amounts {
			coin, err := parseCoin(s)
			if err != nil {
				return nil, errors.WithMessagef(err, "config: genesis of %v", account)
			}
			a.coins = append(a.coins, coin)
		}
		allocs = append(allocs, a)
	}
	sort.Slice(allocs, func(i, j int) bool { return allocs[i].account < allocs[j].account })
	return allocs, nil
}

// parseCoin parses "<amount><denom>", e.g. "1000ucore".
func parseCoin(s string) (facility.Coin, error) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if i <= 0 {
		return facility.Coin{}, errors.Errorf("invalid coin %q", s)
	}
	amount, err := uint256.FromDecimal(s[:i])
	if err != nil {
		return facility.Coin{}, errors.Wrapf(err, "invalid coin %q", s)
	}
	return facility.NewCoin(s[i:], amount), nil
}
