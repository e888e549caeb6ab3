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
	"math/big"
	"strings"
	"testing"
)

func TestDecoderLiterals(t *testing.T) {
	tests := []struct {
		input  string
		expect Value
	}{
		{"i42e", NewInteger(42)},
		{"i-3e", NewInteger(-3)},
		{"i0e", NewInteger(0)},
		{"4:spam", String("spam")},
		{"0:", String("")},
		{"l4:spam4:eggse", NewList(String("spam"), String("eggs"))},
		{"le", NewList()},
		{"d3:cow3:moo4:spam4:eggse", NewDict(
			DictEntry{Key: "cow", Value: String("moo")},
			DictEntry{Key: "spam", Value: String("eggs")},
		)},
		{"de", NewDict()},
		{"d4:listli1ei2ee4:dictd1:ai-1eee", NewDict(
			DictEntry{Key: "list", Value: NewList(NewInteger(1), NewInteger(2))},
			DictEntry{Key: "dict", Value: NewDict(DictEntry{Key: "a", Value: NewInteger(-1)})},
		)},
	}

	for _, test := range tests {
		d := NewDecoder([]byte(test.input))
		v, err := d.Decode()
		if err != nil {
			t.Errorf("%q: unexpected error: %s", test.input, err)
			continue
		}

		if !Equal(v, test.expect) {
			t.Errorf("%q: expect %#v, but got %#v", test.input, test.expect, v)
		}
		if d.Offset() != len(test.input) {
			t.Errorf("%q: expect offset %d, but got %d", test.input, len(test.input), d.Offset())
		}
	}
}

func TestDecoderDictOrder(t *testing.T) {
	v, err := DecodeValue([]byte("d4:spam4:eggs3:cow3:moo1:ai1ee"))
	if err != nil {
		t.Fatal(err)
	}

	dict := v.(Dict)
	expect := []String{"spam", "cow", "a"}
	keys := dict.Keys()
	if len(keys) != len(expect) {
		t.Fatalf("expect %d keys, but got %d", len(expect), len(keys))
	}
	for i := range expect {
		if keys[i] != expect[i] {
			t.Errorf("%d: expect key '%s', but got '%s'", i, expect[i], keys[i])
		}
	}

	if s, ok := dict.GetString("cow"); !ok || s != "moo" {
		t.Errorf("expect cow=moo, but got '%s'", s)
	}
	if _, ok := dict.GetString("a"); ok {
		t.Error("expect the value of 'a' not to be a string")
	}
	if i, ok := dict.GetInteger("a"); !ok || i.Cmp(NewInteger(1)) != 0 {
		t.Errorf("expect a=1, but got %s", i)
	}
}

func TestDecoderDuplicateKeys(t *testing.T) {
	v, err := DecodeValue([]byte("d1:ai1e1:bi2e1:ai3ee"))
	if err != nil {
		t.Fatal(err)
	}

	dict := v.(Dict)
	if dict.Len() != 2 {
		t.Fatalf("expect 2 keys, but got %d", dict.Len())
	}
	if keys := dict.Keys(); keys[0] != "a" || keys[1] != "b" {
		t.Errorf("unexpected key order: %v", keys)
	}
	if i, _ := dict.GetInteger("a"); i.String() != "3" {
		t.Errorf("expect the last value 3, but got %s", i)
	}
}

func TestDecoderTrailingData(t *testing.T) {
	d := NewDecoder([]byte("i1ei2e4:spam"))
	for _, expect := range []Value{NewInteger(1), NewInteger(2), String("spam")} {
		if !d.More() {
			t.Fatal("expect more data")
		}
		v, err := d.Decode()
		if err != nil {
			t.Fatal(err)
		} else if !Equal(v, expect) {
			t.Errorf("expect %v, but got %v", expect, v)
		}
	}
	if d.More() {
		t.Errorf("expect no more data, but got offset %d of %d", d.Offset(), d.Len())
	}

	if _, err := DecodeValue([]byte("i1ex")); !errors.Is(err, ErrTrailingData) {
		t.Errorf("expect ErrTrailingData, but got %v", err)
	}
}

func TestDecoderBigInteger(t *testing.T) {
	const s = "-123456789012345678901234567890"
	v, err := DecodeValue([]byte("i" + s + "e"))
	if err != nil {
		t.Fatal(err)
	}

	i := v.(Integer)
	if i.IsInt64() {
		t.Error("expect the integer to overflow int64")
	}
	if i.String() != s {
		t.Errorf("expect %s, but got %s", s, i.String())
	}

	expect, _ := new(big.Int).SetString(s, 10)
	if i.Big().Cmp(expect) != 0 {
		t.Errorf("expect %s, but got %s", expect, i.Big())
	}

	// 19 digits which still fit in int64.
	v, err = DecodeValue([]byte("i9223372036854775807e"))
	if err != nil {
		t.Fatal(err)
	} else if n, ok := v.(Integer).Int64(); !ok || n != 9223372036854775807 {
		t.Errorf("expect max int64, but got %v", v)
	}
}

func TestDecoderErrors(t *testing.T) {
	tests := []struct {
		input  string
		err    error
		offset int
	}{
		{"", ErrUnexpectedEOF, 0},
		{"i", ErrMissingDelimiter, 1},
		{"i42", ErrMissingDelimiter, 1},
		{"5:ab", ErrTruncatedInput, 2},
		{"99999999999999999999999:ab", ErrTruncatedInput, 24},
		{"4spam", ErrMissingDelimiter, 0},
		{"x", ErrInvalidToken, 0},
		{"e", ErrInvalidToken, 0},
		{"l4:spamx", ErrInvalidToken, 7},
		{"di5ei5ee", ErrInvalidKeyType, 1},
		{"dli1eei5ee", ErrInvalidKeyType, 1},
		{"d3:key", ErrUnexpectedEOF, 6},
		{"d3:keye", ErrInvalidToken, 6},
		{"l", ErrUnexpectedEOF, 1},
		{"li1e", ErrUnexpectedEOF, 4},
		{"d", ErrUnexpectedEOF, 1},
		{"ie", ErrInvalidInteger, 1},
		{"i-e", ErrInvalidInteger, 1},
		{"i-0e", ErrInvalidInteger, 1},
		{"i03e", ErrInvalidInteger, 1},
		{"i-03e", ErrInvalidInteger, 1},
		{"i1.5e", ErrInvalidInteger, 1},
		{"i+1e", ErrInvalidInteger, 1},
		{"i 1e", ErrInvalidInteger, 1},
		{"01:a", ErrInvalidInteger, 0},
		{"1a:a", ErrInvalidInteger, 0},
	}

	for _, test := range tests {
		v, err := NewDecoder([]byte(test.input)).Decode()
		if v != nil {
			t.Errorf("%q: expect no value on failure, but got %v", test.input, v)
		}
		if !errors.Is(err, test.err) {
			t.Errorf("%q: expect error '%v', but got '%v'", test.input, test.err, err)
			continue
		}

		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Errorf("%q: expect a SyntaxError, but got %T", test.input, err)
		} else if se.Offset != test.offset {
			t.Errorf("%q: expect offset %d, but got %d", test.input, test.offset, se.Offset)
		}
	}
}

func TestDecoderLastByte(t *testing.T) {
	// The value ends exactly at the end of the buffer.
	for _, input := range []string{"i7e", "1:x", "le", "de", "l1:xe"} {
		d := NewDecoder([]byte(input))
		if _, err := d.Decode(); err != nil {
			t.Errorf("%q: unexpected error: %s", input, err)
		} else if d.More() {
			t.Errorf("%q: expect the whole input consumed", input)
		}
	}
}

func TestDecoderMaxDepth(t *testing.T) {
	nested := strings.Repeat("l", 10) + strings.Repeat("e", 10)

	d := NewDecoder([]byte(nested))
	d.MaxDepth = 10
	if _, err := d.Decode(); err != nil {
		t.Errorf("unexpected error: %s", err)
	}

	d = NewDecoder([]byte(nested))
	d.MaxDepth = 9
	if _, err := d.Decode(); !errors.Is(err, ErrMaxDepth) {
		t.Errorf("expect ErrMaxDepth, but got %v", err)
	}

	deep := strings.Repeat("d1:a", DefaultMaxDepth+1) + "i1e" + strings.Repeat("e", DefaultMaxDepth+1)
	if _, err := DecodeValue([]byte(deep)); !errors.Is(err, ErrMaxDepth) {
		t.Errorf("expect ErrMaxDepth, but got %v", err)
	}
}

func TestDecoderIdempotent(t *testing.T) {
	input := []byte("d4:infod6:lengthi10e4:name4:testee5:nodesl2:n12:n2ee")
	origin := append([]byte(nil), input...)

	v1, err := NewDecoder(input).Decode()
	if err != nil {
		t.Fatal(err)
	}
	v2, err := NewDecoder(input).Decode()
	if err != nil {
		t.Fatal(err)
	}

	if !Equal(v1, v2) {
		t.Errorf("%v != %v", v1, v2)
	}
	if !bytes.Equal(input, origin) {
		t.Error("the input buffer is modified")
	}
}

func TestNewDecoderFrom(t *testing.T) {
	for _, src := range []interface{}{
		[]byte("i1e"),
		"i1e",
		String("i1e"),
		RawMessage("i1e"),
		bytes.NewBufferString("i1e"),
	} {
		d, err := NewDecoderFrom(src)
		if err != nil {
			t.Errorf("%T: unexpected error: %s", src, err)
			continue
		}
		if v, err := d.Decode(); err != nil || !Equal(v, NewInteger(1)) {
			t.Errorf("%T: expect 1, but got %v (%v)", src, v, err)
		}
	}

	for _, src := range []interface{}{nil, 123, []int{1}, (*bytes.Buffer)(nil), strings.NewReader("i1e")} {
		if _, err := NewDecoderFrom(src); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%T: expect ErrInvalidArgument, but got %v", src, err)
		}
	}
}

func TestNewDecoderFromBufferReused(t *testing.T) {
	buf := bytes.NewBufferString("3:abc")
	d, err := NewDecoderFrom(buf)
	if err != nil {
		t.Fatal(err)
	}

	buf.Reset()
	buf.WriteString("3:xyz")

	if v, err := d.Decode(); err != nil || !Equal(v, String("abc")) {
		t.Errorf("expect 'abc', but got %v (%v)", v, err)
	}
}
