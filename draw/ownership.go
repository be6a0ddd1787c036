// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package draw

import (
	"strings"

	"github.com/coreumfun/draw/draw/reverts"
)

func (c *Contract) updateOwnership(info Info, action OwnershipAction) (*Response, error) {
	o, err := c.storage.getOwnership()
	if err != nil {
		return nil, err
	}

	resp := &Response{}
	switch {
	case action.Transfer != nil:
		if err := c.checkOwner(o, info.Sender); err != nil {
			return nil, err
		}
		to := action.Transfer.NewOwner
		if strings.TrimSpace(to.String()) == "" {
			return nil, reverts.InvalidParameter("new_owner", "empty")
		}
		if to == o.Owner {
			return nil, reverts.CannotTransferToSelf()
		}
		expiry := action.Transfer.Expiry
		if expiry != nil && c.env.Time >= *expiry {
			return nil, reverts.TransferExpired()
		}
		o.PendingOwner = to
		o.HasExpiry = expiry != nil
		o.PendingExpiry = 0
		if expiry != nil {
			o.PendingExpiry = *expiry
		}
		resp.addAttribute("action", "transfer_ownership").
			addAttribute("pending_owner", to.String())
		logger.Warn("ownership transfer proposed", "pool", c.env.Pool, "owner", o.Owner, "pending_owner", to, "expiry", o.PendingExpiry)

	case action.Accept:
		if o.PendingOwner == "" {
			return nil, reverts.TransferNotFound()
		}
		if info.Sender != o.PendingOwner {
			return nil, reverts.NotPendingOwner()
		}
		if o.HasExpiry && c.env.Time >= o.PendingExpiry {
			return nil, reverts.TransferExpired()
		}
		previous := o.Owner
		*o = Ownership{Owner: info.Sender}
		resp.addAttribute("action", "accept_ownership").
			addAttribute("owner", info.Sender.String())
		logger.Warn("ownership accepted", "pool", c.env.Pool, "previous", previous, "owner", info.Sender)

	case action.Renounce:
		if err := c.checkOwner(o, info.Sender); err != nil {
			return nil, err
		}
		*o = Ownership{}
		resp.addAttribute("action", "renounce_ownership")
		logger.Warn("ownership renounced", "pool", c.env.Pool, "previous", info.Sender)

	default:
		return nil, reverts.UnknownMessage()
	}

	if err := c.storage.setOwnership(o); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Contract) checkOwner(o *Ownership, sender Address) error {
	if o.Owner == "" {
		return reverts.NoOwner()
	}
	if sender != o.Owner {
		return reverts.NotOwner()
	}
	return nil
}
