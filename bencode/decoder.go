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
	"fmt"
	"math/big"
	"strconv"
)

// DefaultMaxDepth is the default maximum nesting depth of lists and dicts.
const DefaultMaxDepth = 512

const maxInt = int(^uint(0) >> 1)

// Decoder decodes bencoded values from a byte buffer.
//
// The decoder only reads the buffer, never modifies it, and keeps a cursor
// that only moves forward. It is not safe for concurrent use, and it should
// not be used any more once it has returned an error.
type Decoder struct {
	// MaxDepth is the maximum nesting depth of lists and dicts.
	//
	// Default: DefaultMaxDepth
	MaxDepth int

	data []byte
	off  int
}

// NewDecoder returns a new decoder reading from data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// NewDecoderFrom is the same as NewDecoder, but accepts any of []byte,
// string, String, RawMessage and *bytes.Buffer as the input.
//
// The unread bytes of *bytes.Buffer are copied, so the buffer may be
// reused after that. For other types, it returns an error matching
// ErrInvalidArgument.
func NewDecoderFrom(src interface{}) (*Decoder, error) {
	switch v := src.(type) {
	case []byte:
		return NewDecoder(v), nil
	case RawMessage:
		return NewDecoder(v), nil
	case string:
		return NewDecoder([]byte(v)), nil
	case String:
		return NewDecoder([]byte(v)), nil
	case *bytes.Buffer:
		if v != nil {
			return NewDecoder(append([]byte(nil), v.Bytes()...)), nil
		}
	}
	return nil, fmt.Errorf("%w: cannot decode from %T", ErrInvalidArgument, src)
}

// Offset returns the offset of the cursor, that's, the number of the bytes
// consumed so far.
func (d *Decoder) Offset() int { return d.off }

// Len returns the length of the whole input.
func (d *Decoder) Len() int { return len(d.data) }

// More reports whether there are the unconsumed bytes after the cursor.
func (d *Decoder) More() bool { return d.off < len(d.data) }

func (d *Decoder) maxDepth() int {
	if d.MaxDepth > 0 {
		return d.MaxDepth
	}
	return DefaultMaxDepth
}

// Decode decodes the value starting at the cursor, and leaves the cursor
// just after it. The bytes after the value, if any, are not inspected.
//
// If a dict contains a key more than once, the last value wins.
func (d *Decoder) Decode() (Value, error) {
	return d.decode(0)
}

// DecodeValue decodes a single value from b, which must contain nothing
// but that value.
func DecodeValue(b []byte) (Value, error) {
	d := NewDecoder(b)
	v, err := d.Decode()
	if err == nil && d.More() {
		return nil, newSyntaxError(d.off, ErrTrailingData, "%d bytes left", len(b)-d.off)
	}
	return v, err
}

func (d *Decoder) decode(depth int) (Value, error) {
	c, ok := d.peek()
	if !ok {
		return nil, newSyntaxError(d.off, ErrUnexpectedEOF, "")
	}

	switch {
	case c == 'i':
		return d.decodeInteger()
	case c == 'l':
		return d.decodeList(depth + 1)
	case c == 'd':
		return d.decodeDict(depth + 1)
	case c >= '0' && c <= '9':
		return d.decodeString()
	case c == 'e':
		return nil, newSyntaxError(d.off, ErrInvalidToken, "unexpected end marker")
	default:
		return nil, newSyntaxError(d.off, ErrInvalidToken, "unexpected byte %q", c)
	}
}

func (d *Decoder) decodeInteger() (Value, error) {
	d.consume() // 'i'
	start := d.off
	b, err := d.readUntil('e')
	if err != nil {
		return nil, err
	}

	i, ok := parseInteger(b)
	if !ok {
		return nil, newSyntaxError(start, ErrInvalidInteger, "%q", b)
	}
	return i, nil
}

func (d *Decoder) decodeString() (Value, error) {
	s, err := d.readString()
	if err != nil {
		return nil, err
	}
	return String(s), nil
}

func (d *Decoder) readString() ([]byte, error) {
	start := d.off
	b, err := d.readUntil(':')
	if err != nil {
		return nil, err
	}

	n, ok := parseLength(b)
	if !ok {
		return nil, newSyntaxError(start, ErrInvalidInteger, "invalid string length %q", b)
	}
	return d.readExact(n)
}

func (d *Decoder) decodeList(depth int) (Value, error) {
	if depth > d.maxDepth() {
		return nil, newSyntaxError(d.off, ErrMaxDepth, "")
	}

	d.consume() // 'l'
	var values []Value
	for {
		c, ok := d.peek()
		if !ok {
			return nil, newSyntaxError(d.off, ErrUnexpectedEOF, "unterminated list")
		} else if c == 'e' {
			d.consume()
			return List{values: values}, nil
		}

		v, err := d.decode(depth)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
}

func (d *Decoder) decodeDict(depth int) (Value, error) {
	if depth > d.maxDepth() {
		return nil, newSyntaxError(d.off, ErrMaxDepth, "")
	}

	d.consume() // 'd'
	var dict Dict
	for {
		c, ok := d.peek()
		if !ok {
			return nil, newSyntaxError(d.off, ErrUnexpectedEOF, "unterminated dict")
		} else if c == 'e' {
			d.consume()
			return dict, nil
		}

		keyOffset := d.off
		k, err := d.decode(depth)
		if err != nil {
			return nil, err
		}

		key, ok := k.(String)
		if !ok {
			return nil, newSyntaxError(keyOffset, ErrInvalidKeyType, "got %s", k.Kind())
		}

		v, err := d.decode(depth)
		if err != nil {
			return nil, err
		}
		dict.set(key, v)
	}
}

// rawValue skips the value at the cursor and returns its encoded bytes,
// which alias the input buffer.
func (d *Decoder) rawValue(depth int) ([]byte, error) {
	start := d.off
	if _, err := d.decode(depth); err != nil {
		return nil, err
	}
	return d.data[start:d.off], nil
}

/// >>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>
/// Cursor primitives

// peek returns the byte at the cursor without advancing.
func (d *Decoder) peek() (byte, bool) {
	if d.off >= len(d.data) {
		return 0, false
	}
	return d.data[d.off], true
}

// consume advances the cursor by one byte.
func (d *Decoder) consume() { d.off++ }

// readExact returns the next n bytes and advances the cursor past them.
func (d *Decoder) readExact(n int) ([]byte, error) {
	if left := len(d.data) - d.off; n > left {
		return nil, newSyntaxError(d.off, ErrTruncatedInput,
			"need %d bytes, but only %d left", n, left)
	}

	b := d.data[d.off : d.off+n]
	d.off += n
	return b, nil
}

// readUntil returns the bytes between the cursor and the first marker,
// and advances the cursor past the marker.
func (d *Decoder) readUntil(marker byte) ([]byte, error) {
	i := bytes.IndexByte(d.data[d.off:], marker)
	if i < 0 {
		return nil, newSyntaxError(d.off, ErrMissingDelimiter, "no %q found", marker)
	}

	b := d.data[d.off : d.off+i]
	d.off += i + 1
	return b, nil
}

/// >>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>

// parseInteger parses "-?[0-9]+" without leading zeros, and rejects "-0".
func parseInteger(b []byte) (Integer, bool) {
	digits := b
	neg := len(b) > 0 && b[0] == '-'
	if neg {
		digits = b[1:]
	}

	if len(digits) == 0 {
		return Integer{}, false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return Integer{}, false
		}
	}
	if digits[0] == '0' && (neg || len(digits) > 1) {
		return Integer{}, false
	}

	// 18 digits always fit in int64.
	if len(digits) <= 18 {
		n, err := strconv.ParseInt(string(b), 10, 64)
		if err != nil {
			return Integer{}, false
		}
		return NewInteger(n), true
	}

	n, ok := new(big.Int).SetString(string(b), 10)
	if !ok {
		return Integer{}, false
	}
	if n.IsInt64() {
		return NewInteger(n.Int64()), true
	}
	return Integer{big: n}, true
}

// parseLength parses a non-negative string length. A length which does not
// fit in int saturates to maxInt, which no buffer can satisfy.
func parseLength(b []byte) (n int, ok bool) {
	if len(b) == 0 || (b[0] == '0' && len(b) > 1) {
		return 0, false
	}

	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}

		if n > (maxInt-9)/10 {
			n = maxInt
		} else {
			n = n*10 + int(c-'0')
		}
	}
	return n, true
}
