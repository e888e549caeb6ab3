// Copyright 2023 xgfone
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bencode

import (
	"math/big"
	"sort"
	"strconv"
)

// Kind is the kind of a bencoded value.
type Kind uint8

// Predefine the kinds of the bencoded values.
const (
	KindInteger Kind = iota + 1
	KindString
	KindList
	KindDict
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a decoded bencode value, which is one of Integer, String,
// List and Dict. No other type implements it.
//
// A Value is immutable once constructed.
type Value interface {
	Kind() Kind

	appendTo(b []byte) []byte
}

var (
	_ Value = Integer{}
	_ Value = String("")
	_ Value = List{}
	_ Value = Dict{}
)

/// >>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>

// Integer is an arbitrary-precision signed integer.
//
// The zero value is the integer 0.
type Integer struct {
	small int64
	big   *big.Int // Only set when the value overflows int64. Never mutated.
}

// NewInteger returns a new Integer with the value i.
func NewInteger(i int64) Integer { return Integer{small: i} }

// NewBigInteger returns a new Integer with a copy of the value of b.
func NewBigInteger(b *big.Int) Integer {
	if b.IsInt64() {
		return Integer{small: b.Int64()}
	}
	return Integer{big: new(big.Int).Set(b)}
}

// Kind implements the interface Value.
func (i Integer) Kind() Kind { return KindInteger }

// IsInt64 reports whether the integer can be represented as an int64.
func (i Integer) IsInt64() bool { return i.big == nil }

// Int64 returns the int64 representation and whether it is exact.
func (i Integer) Int64() (int64, bool) {
	if i.big == nil {
		return i.small, true
	}
	return 0, false
}

// Uint64 returns the uint64 representation and whether it is exact.
func (i Integer) Uint64() (uint64, bool) {
	if i.big == nil {
		if i.small < 0 {
			return 0, false
		}
		return uint64(i.small), true
	}
	if i.big.IsUint64() {
		return i.big.Uint64(), true
	}
	return 0, false
}

// Big returns a new big.Int with the value of the integer.
func (i Integer) Big() *big.Int {
	if i.big == nil {
		return big.NewInt(i.small)
	}
	return new(big.Int).Set(i.big)
}

// Sign returns -1, 0 or +1 according to the sign of the integer.
func (i Integer) Sign() int {
	if i.big != nil {
		return i.big.Sign()
	}
	switch {
	case i.small < 0:
		return -1
	case i.small > 0:
		return 1
	default:
		return 0
	}
}

// Cmp compares i and o, and returns -1, 0 or +1.
func (i Integer) Cmp(o Integer) int {
	if i.big == nil && o.big == nil {
		switch {
		case i.small < o.small:
			return -1
		case i.small > o.small:
			return 1
		default:
			return 0
		}
	}
	return i.Big().Cmp(o.Big())
}

func (i Integer) String() string {
	if i.big == nil {
		return strconv.FormatInt(i.small, 10)
	}
	return i.big.String()
}

func (i Integer) appendTo(b []byte) []byte {
	b = append(b, 'i')
	if i.big == nil {
		b = strconv.AppendInt(b, i.small, 10)
	} else {
		b = i.big.Append(b, 10)
	}
	return append(b, 'e')
}

/// >>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>

// String is a bencoded byte string.
//
// It holds raw bytes, which are not required to be valid UTF-8.
type String string

// Kind implements the interface Value.
func (s String) Kind() Kind { return KindString }

// Bytes returns a copy of the bytes of the string.
func (s String) Bytes() []byte { return []byte(s) }

func (s String) appendTo(b []byte) []byte {
	b = strconv.AppendInt(b, int64(len(s)), 10)
	b = append(b, ':')
	return append(b, s...)
}

/// >>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>

// List is an ordered sequence of values.
type List struct {
	values []Value
}

// NewList returns a new List containing a copy of values.
//
// It panics if any value is nil.
func NewList(values ...Value) List {
	for _, v := range values {
		if v == nil {
			panic("bencode: NewList: nil value")
		}
	}
	return List{values: append([]Value(nil), values...)}
}

// Kind implements the interface Value.
func (l List) Kind() Kind { return KindList }

// Len returns the number of the elements.
func (l List) Len() int { return len(l.values) }

// Index returns the i-th element.
func (l List) Index(i int) Value { return l.values[i] }

// Values returns a copy of the elements.
func (l List) Values() []Value { return append([]Value(nil), l.values...) }

func (l List) appendTo(b []byte) []byte {
	b = append(b, 'l')
	for _, v := range l.values {
		b = v.appendTo(b)
	}
	return append(b, 'e')
}

/// >>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>

// DictEntry is a key-value pair of Dict.
type DictEntry struct {
	Key   String
	Value Value
}

// Dict is a mapping from byte strings to values, which remembers
// the order in which the keys were first inserted.
type Dict struct {
	keys  []String
	vals  []Value
	index map[String]int
}

// NewDict returns a new Dict with the entries in order.
//
// If a key appears more than once, the last value wins and the key keeps
// the position of its first occurrence. It panics if any value is nil.
func NewDict(entries ...DictEntry) Dict {
	var d Dict
	for _, e := range entries {
		if e.Value == nil {
			panic("bencode: NewDict: nil value for key " + strconv.Quote(string(e.Key)))
		}
		d.set(e.Key, e.Value)
	}
	return d
}

// set must only be called before the dict is published.
func (d *Dict) set(key String, value Value) {
	if d.index == nil {
		d.index = make(map[String]int, 8)
	}
	if i, ok := d.index[key]; ok {
		d.vals[i] = value
		return
	}
	d.index[key] = len(d.keys)
	d.keys = append(d.keys, key)
	d.vals = append(d.vals, value)
}

// Kind implements the interface Value.
func (d Dict) Kind() Kind { return KindDict }

// Len returns the number of the keys.
func (d Dict) Len() int { return len(d.keys) }

// Keys returns the keys in insertion order.
func (d Dict) Keys() []String { return append([]String(nil), d.keys...) }

// Entries returns the key-value pairs in insertion order.
func (d Dict) Entries() []DictEntry {
	entries := make([]DictEntry, len(d.keys))
	for i, key := range d.keys {
		entries[i] = DictEntry{Key: key, Value: d.vals[i]}
	}
	return entries
}

// Range calls f for each key-value pair in insertion order
// until f returns false.
func (d Dict) Range(f func(key String, value Value) bool) {
	for i, key := range d.keys {
		if !f(key, d.vals[i]) {
			return
		}
	}
}

// Has reports whether the dict contains the key.
func (d Dict) Has(key string) bool {
	_, ok := d.index[String(key)]
	return ok
}

// Get returns the value of the key.
func (d Dict) Get(key string) (v Value, ok bool) {
	i, ok := d.index[String(key)]
	if ok {
		v = d.vals[i]
	}
	return
}

// GetString returns the value of the key if it is a String.
func (d Dict) GetString(key string) (s String, ok bool) {
	v, _ := d.Get(key)
	s, ok = v.(String)
	return
}

// GetInteger returns the value of the key if it is an Integer.
func (d Dict) GetInteger(key string) (i Integer, ok bool) {
	v, _ := d.Get(key)
	i, ok = v.(Integer)
	return
}

// GetList returns the value of the key if it is a List.
func (d Dict) GetList(key string) (l List, ok bool) {
	v, _ := d.Get(key)
	l, ok = v.(List)
	return
}

// GetDict returns the value of the key if it is a Dict.
func (d Dict) GetDict(key string) (m Dict, ok bool) {
	v, _ := d.Get(key)
	m, ok = v.(Dict)
	return
}

// appendTo writes the dict in the canonical form, that's, the keys are
// sorted by their raw bytes.
func (d Dict) appendTo(b []byte) []byte {
	order := make([]int, len(d.keys))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return d.keys[order[i]] < d.keys[order[j]] })

	b = append(b, 'd')
	for _, i := range order {
		b = d.keys[i].appendTo(b)
		b = d.vals[i].appendTo(b)
	}
	return append(b, 'e')
}

/// >>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>

// Equal reports whether a and b are structurally equal.
//
// Lists are compared in order. Dicts are compared as mappings, so two dicts
// holding the same pairs in different insertion orders are equal.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch av := a.(type) {
	case Integer:
		bv, ok := b.(Integer)
		return ok && av.Cmp(bv) == 0

	case String:
		bv, ok := b.(String)
		return ok && av == bv

	case List:
		bv, ok := b.(List)
		if !ok || len(av.values) != len(bv.values) {
			return false
		}
		for i := range av.values {
			if !Equal(av.values[i], bv.values[i]) {
				return false
			}
		}
		return true

	case Dict:
		bv, ok := b.(Dict)
		if !ok || len(av.keys) != len(bv.keys) {
			return false
		}
		for i, key := range av.keys {
			v, ok := bv.Get(string(key))
			if !ok || !Equal(av.vals[i], v) {
				return false
			}
		}
		return true
	}

	return false
}

// Interface converts v to the generic Go form:
//
//	Integer => int64, or *big.Int if it overflows int64
//	String  => string
//	List    => []interface{}
//	Dict    => map[string]interface{}
func Interface(v Value) interface{} {
	switch v := v.(type) {
	case Integer:
		if i, ok := v.Int64(); ok {
			return i
		}
		return v.Big()

	case String:
		return string(v)

	case List:
		vs := make([]interface{}, len(v.values))
		for i, e := range v.values {
			vs[i] = Interface(e)
		}
		return vs

	case Dict:
		ms := make(map[string]interface{}, len(v.keys))
		for i, key := range v.keys {
			ms[string(key)] = Interface(v.vals[i])
		}
		return ms

	default:
		return nil
	}
}
