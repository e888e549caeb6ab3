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
	"bytes"
	"errors"
	"math"
	"math/big"
	"testing"
)

func TestEncodeValues(t *testing.T) {
	dict := NewDict(
		DictEntry{Key: "spam", Value: String("eggs")},
		DictEntry{Key: "cow", Value: String("moo")},
	)

	tests := []struct {
		value  interface{}
		expect string
	}{
		{NewInteger(42), "i42e"},
		{String(""), "0:"},
		{NewList(String("spam"), String("eggs")), "l4:spam4:eggse"},
		{dict, "d3:cow3:moo4:spam4:eggse"},
		{NewDict(), "de"},
		{NewList(), "le"},
		{42, "i42e"},
		{-3, "i-3e"},
		{uint64(math.MaxUint64), "i18446744073709551615e"},
		{true, "i1e"},
		{false, "i0e"},
		{"spam", "4:spam"},
		{[]byte("eggs"), "4:eggs"},
		{[3]byte{'a', 'b', 'c'}, "3:abc"},
		{[]string{"a", "b"}, "l1:a1:be"},
		{[]interface{}{1, "a", []int{}}, "li1e1:alee"},
		{map[string]int{"b": 2, "a": 1}, "d1:ai1e1:bi2ee"},
		{map[string]int(nil), "de"},
		{big.NewInt(-99), "i-99e"},
		{RawMessage("d1:xi1ee"), "d1:xi1ee"},
	}

	for _, test := range tests {
		result, err := EncodeString(test.value)
		if err != nil {
			t.Errorf("%#v: unexpected error: %s", test.value, err)
		} else if result != test.expect {
			t.Errorf("%#v: expect '%s', but got '%s'", test.value, test.expect, result)
		}
	}
}

func TestEncodeStruct(t *testing.T) {
	v := testTorrent{
		testEmbedded: testEmbedded{Comment: "hi"},
		Announce:     "udp://a",
		Info:         RawMessage("d4:name1:ae"),
		Size:         big.NewInt(10),
		Ignored:      "ignored",
		Default:      3,
	}

	expect := "d7:Defaulti3e8:announce7:udp://a7:comment2:hi4:infod4:name1:ae4:sizei10ee"
	if result, err := EncodeString(v); err != nil {
		t.Fatal(err)
	} else if result != expect {
		t.Errorf("expect '%s', but got '%s'", expect, result)
	}

	// Pointers encode as their elements.
	if result, err := EncodeString(&v); err != nil {
		t.Fatal(err)
	} else if result != expect {
		t.Errorf("expect '%s', but got '%s'", expect, result)
	}
}

func TestEncodeErrors(t *testing.T) {
	if _, err := EncodeBytes(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expect ErrInvalidArgument, but got %v", err)
	}
	if _, err := EncodeBytes((*int)(nil)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expect ErrInvalidArgument, but got %v", err)
	}

	var ute *UnsupportedTypeError
	if _, err := EncodeBytes(1.5); !errors.As(err, &ute) {
		t.Errorf("expect UnsupportedTypeError, but got %v", err)
	}
	if _, err := EncodeBytes(map[int]int{1: 1}); !errors.As(err, &ute) {
		t.Errorf("expect UnsupportedTypeError, but got %v", err)
	}

	var me *MarshalerError
	if _, err := EncodeBytes(RawMessage(nil)); !errors.As(err, &me) {
		t.Errorf("expect MarshalerError, but got %v", err)
	}
}

func TestEncoder(t *testing.T) {
	buf := new(bytes.Buffer)
	enc := NewEncoder(buf)
	for _, v := range []interface{}{1, "a", []int{2}} {
		if err := enc.Encode(v); err != nil {
			t.Fatal(err)
		}
	}

	if expect := "i1e1:ali2ee"; buf.String() != expect {
		t.Errorf("expect '%s', but got '%s'", expect, buf.String())
	}
}

func TestIntegerRoundTrip(t *testing.T) {
	huge, _ := new(big.Int).SetString("-340282366920938463463374607431768211456", 10)
	for _, i := range []Integer{
		NewInteger(0),
		NewInteger(1),
		NewInteger(-1),
		NewInteger(math.MaxInt64),
		NewInteger(math.MinInt64),
		NewBigInteger(huge),
		NewBigInteger(new(big.Int).Neg(huge)),
	} {
		data, err := EncodeBytes(i)
		if err != nil {
			t.Fatal(err)
		}

		v, err := DecodeValue(data)
		if err != nil {
			t.Errorf("%s: unexpected error: %s", i, err)
		} else if !Equal(v, i) {
			t.Errorf("expect %s, but got %v", i, v)
		}
	}
}

func TestValueRoundTrip(t *testing.T) {
	input := "d1:bl1:xi-5edee1:ad1:c0:ee"
	v, err := DecodeValue([]byte(input))
	if err != nil {
		t.Fatal(err)
	}

	data, err := EncodeBytes(v)
	if err != nil {
		t.Fatal(err)
	}

	// The keys are sorted in the canonical form.
	if expect := "d1:ad1:c0:e1:bl1:xi-5edeee"; string(data) != expect {
		t.Errorf("expect '%s', but got '%s'", expect, data)
	}

	v2, err := DecodeValue(data)
	if err != nil {
		t.Fatal(err)
	} else if !Equal(v, v2) {
		t.Errorf("%v != %v", v, v2)
	}
}
