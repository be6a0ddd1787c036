// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/blake2b"

	"github.com/coreumfun/draw/draw"
	"github.com/coreumfun/draw/draw/reverts"
	"github.com/coreumfun/draw/facility"
	"github.com/coreumfun/draw/logdb"
)

// Receipt is the outcome of one invocation. Rejected invocations get a receipt
// too, with Success false and the revert in Error.
type Receipt struct {
	ID         string           `json:"id"`
	Seq        uint64           `json:"seq"`
	Time       uint64           `json:"time"`
	Sender     draw.Address     `json:"sender"`
	Kind       string           `json:"kind"`
	Admin      bool             `json:"admin"`
	Success    bool             `json:"success"`
	Funds      facility.Coins   `json:"funds,omitempty"`
	Attributes []draw.Attribute `json:"attributes"`
	// Messages are the facility envelopes applied, the attached funds first.
	Messages json.RawMessage `json:"messages,omitempty"`
	Error    json.RawMessage `json:"error,omitempty"`
}

// Attribute returns the value of the first attribute named key.
func (r *Receipt) Attribute(key string) (string, bool) {
	for _, a := range r.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// ErrorKind returns the revert kind of a rejected invocation, "" on success.
func (r *Receipt) ErrorKind() reverts.Kind {
	if len(r.Error) == 0 {
		return ""
	}
	var body struct {
		Error reverts.Kind `json:"error"`
	}
	if err := json.Unmarshal(r.Error, &body); err != nil {
		return ""
	}
	return body.Error
}

func (r *Receipt) invocation() (*logdb.Invocation, error) {
	inv := &logdb.Invocation{
		Seq:      r.Seq,
		ID:       r.ID,
		Time:     r.Time,
		Sender:   r.Sender.String(),
		Kind:     r.Kind,
		Admin:    r.Admin,
		Success:  r.Success,
		Messages: r.Messages,
		Error:    r.Error,
	}
	if len(r.Funds) > 0 {
		funds, err := json.Marshal(r.Funds)
		if err != nil {
			return nil, err
		}
		inv.Funds = funds
	}
	inv.Attributes = make([]logdb.Attribute, 0, len(r.Attributes))
	for _, a := range r.Attributes {
		inv.Attributes = append(inv.Attributes, logdb.Attribute{Key: a.Key, Value: a.Value})
	}
	return inv, nil
}

// ReceiptOf converts a recorded invocation back to a receipt.
func ReceiptOf(inv *logdb.Invocation) (*Receipt, error) {
	r := &Receipt{
		ID:       inv.ID,
		Seq:      inv.Seq,
		Time:     inv.Time,
		Sender:   draw.Address(inv.Sender),
		Kind:     inv.Kind,
		Admin:    inv.Admin,
		Success:  inv.Success,
		Messages: inv.Messages,
		Error:    inv.Error,
	}
	if len(inv.Funds) > 0 {
		if err := json.Unmarshal(inv.Funds, &r.Funds); err != nil {
			return nil, err
		}
	}
	r.Attributes = make([]draw.Attribute, 0, len(inv.Attributes))
	for _, a := range inv.Attributes {
		r.Attributes = append(r.Attributes, draw.Attribute{Key: a.Key, Value: a.Value})
	}
	return r, nil
}

// receiptID hashes the sequence number together with the invocation content.
func receiptID(seq, time uint64, sender draw.Address, payload []byte) string {
	h, _ := blake2b.New256(nil)
	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], seq)
	binary.BigEndian.PutUint64(b[8:], time)
	h.Write(b[:])
	h.Write([]byte(sender))
	h.Write(payload)
	return "0x" + hex.EncodeToString(h.Sum(nil))
}
