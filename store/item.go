// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package store

import (
	"errors"
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// ErrNotFound is returned by Load when the item was never saved.
var ErrNotFound = errors.New("not found")

// Item is a single value stored under a fixed name.
type Item[V any] struct {
	context *Context
	key     []byte
}

func NewItem[V any](context *Context, name string) *Item[V] {
	return &Item[V]{context: context, key: context.key([]byte(name))}
}

// Get returns the value and whether it exists. A missing value decodes to the zero value,
// with pointer types allocated.
func (i *Item[V]) Get() (value V, found bool, err error) {
	raw, found, err := i.context.state.Get(i.key)
	if err != nil {
		return value, false, err
	}
	if reflect.ValueOf(value).Kind() == reflect.Ptr {
		value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
	}
	if !found {
		return value, false, nil
	}
	if err := rlp.DecodeBytes(raw, value2ptr(&value)); err != nil {
		return value, false, err
	}
	return value, true, nil
}

// Load returns the value, or ErrNotFound when absent.
func (i *Item[V]) Load() (V, error) {
	v, found, err := i.Get()
	if err != nil {
		return v, err
	}
	if !found {
		return v, ErrNotFound
	}
	return v, nil
}

func (i *Item[V]) Save(value V) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	i.context.state.Set(i.key, raw)
	return nil
}

func (i *Item[V]) Exists() (bool, error) {
	_, found, err := i.context.state.Get(i.key)
	return found, err
}

// value2ptr returns the decode target: pointer values decode in place.
func value2ptr[V any](v *V) any {
	if reflect.ValueOf(*v).Kind() == reflect.Ptr {
		return *v
	}
	return v
}

// Counter is an unsigned 64-bit counter, zero when unset.
type Counter struct {
	item *Item[uint64]
}

func NewCounter(context *Context, name string) *Counter {
	return &Counter{NewItem[uint64](context, name)}
}

func (c *Counter) Get() (uint64, error) {
	v, _, err := c.item.Get()
	return v, err
}

func (c *Counter) Set(v uint64) error {
	return c.item.Save(v)
}

// Uint256 is an amount stored as a single value, zero when unset.
type Uint256 struct {
	item *Item[*uint256.Int]
}

func NewUint256(context *Context, name string) *Uint256 {
	return &Uint256{NewItem[*uint256.Int](context, name)}
}

func (u *Uint256) Get() (*uint256.Int, error) {
	v, _, err := u.item.Get()
	return v, err
}

func (u *Uint256) Set(v *uint256.Int) error {
	return u.item.Save(v)
}
