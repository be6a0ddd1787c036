// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package store

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"
)

type Key interface {
	Bytes() []byte
}

// Mapping is an ordered key/value map. Entries are laid out under a common
// prefix so that Range visits them in ascending key byte order.
type Mapping[K Key, V any] struct {
	context *Context
	prefix  []byte
}

func NewMapping[K Key, V any](context *Context, name string) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, prefix: context.key([]byte(name), []byte{'/'})}
}

func (m *Mapping[K, V]) newValue() (value V) {
	if reflect.ValueOf(value).Kind() == reflect.Ptr {
		value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
	}
	return
}

// Get returns the value of key, or the zero value if absent.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	value = m.newValue()
	raw, found, err := m.context.state.Get(m.entryKey(key))
	if err != nil || !found {
		return value, err
	}
	err = rlp.DecodeBytes(raw, value2ptr(&value))
	return
}

func (m *Mapping[K, V]) Has(key K) (bool, error) {
	_, found, err := m.context.state.Get(m.entryKey(key))
	return found, err
}

func (m *Mapping[K, V]) Set(key K, value V) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	m.context.state.Set(m.entryKey(key), raw)
	return nil
}

func (m *Mapping[K, V]) Delete(key K) {
	m.context.state.Delete(m.entryKey(key))
}

// Range visits entries in ascending key order. The raw key bytes are passed to fn.
func (m *Mapping[K, V]) Range(fn func(key []byte, value V) (bool, error)) error {
	return m.context.state.Iterate(m.prefix, func(k, raw []byte) (bool, error) {
		value := m.newValue()
		if err := rlp.DecodeBytes(raw, value2ptr(&value)); err != nil {
			return false, err
		}
		return fn(k[len(m.prefix):], value)
	})
}

func (m *Mapping[K, V]) entryKey(key K) []byte {
	return append(append(make([]byte, 0, len(m.prefix)+32), m.prefix...), key.Bytes()...)
}
