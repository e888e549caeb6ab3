// Copyright 2020 xgfone
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

package metainfo

import (
	"bytes"
	"crypto/sha1"
	"encoding/base32"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/xgfone/bencoding/bencode"
	"github.com/xgfone/bencoding/internal/helper"
)

// HashSize is the size of the InfoHash.
const HashSize = 20

var zeroHash Hash

// Hash is the 20-byte SHA1 hash used for info and pieces.
type Hash [HashSize]byte

var (
	_ bencode.Marshaler   = Hash{}
	_ bencode.Unmarshaler = new(Hash)
)

// NewRandomHash returns a random hash.
func NewRandomHash() (h Hash) {
	helper.RandomBytes(h[:])
	return
}

// NewHashFromBytes returns the SHA1 hash of b.
func NewHashFromBytes(b []byte) Hash { return Hash(sha1.Sum(b)) }

// NewHashFromHexString returns a new Hash from a hex string.
//
// It panics if s is not a valid hex hash.
func NewHashFromHexString(s string) (h Hash) {
	if err := h.FromHexString(s); err != nil {
		panic(err)
	}
	return
}

// String is equal to HexString.
func (h Hash) String() string { return h.HexString() }

// HexString returns the hex string format.
func (h Hash) HexString() string { return hex.EncodeToString(h[:]) }

// BytesString returns the bytes string, that's, string(h[:]).
func (h Hash) BytesString() string { return string(h[:]) }

// IsZero reports whether the whole hash is zero.
func (h Hash) IsZero() bool { return h == zeroHash }

// FromString resets the hash from the string, which may be the raw
// 20 bytes, the 40-char hex form or the 32-char base32 form.
func (h *Hash) FromString(s string) (err error) {
	switch len(s) {
	case HashSize:
		copy(h[:], s)
	case 2 * HashSize:
		err = h.FromHexString(s)
	case 32:
		var bs []byte
		if bs, err = base32.StdEncoding.DecodeString(s); err == nil {
			copy(h[:], bs)
		}
	default:
		err = fmt.Errorf("hash string has bad length: %d", len(s))
	}
	return
}

// FromHexString resets the hash from the hex string.
func (h *Hash) FromHexString(s string) (err error) {
	if len(s) != 2*HashSize {
		return fmt.Errorf("hash hex string has bad length: %d", len(s))
	}
	_, err = hex.Decode(h[:], []byte(s))
	return
}

// UnmarshalBinary implements the interface encoding.BinaryUnmarshaler.
func (h *Hash) UnmarshalBinary(b []byte) error {
	if len(b) != HashSize {
		return errors.New("Hash.UnmarshalBinary: invalid length")
	}
	copy(h[:], b)
	return nil
}

// MarshalBinary implements the interface encoding.BinaryMarshaler.
func (h Hash) MarshalBinary() ([]byte, error) { return h[:], nil }

// MarshalBencode implements the interface bencode.Marshaler.
func (h Hash) MarshalBencode() ([]byte, error) {
	return bencode.EncodeBytes(h[:])
}

// UnmarshalBencode implements the interface bencode.Unmarshaler.
func (h *Hash) UnmarshalBencode(b []byte) (err error) {
	var s string
	if err = bencode.DecodeBytes(b, &s); err == nil {
		err = h.FromString(s)
	}
	return
}

/// >>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>

// Hashes is a set of Hashes, which is encoded as the concatenation
// of the raw hashes, such as the "pieces" of the info.
type Hashes []Hash

// Contains reports whether hs contains h.
func (hs Hashes) Contains(h Hash) bool {
	for _, _h := range hs {
		if h == _h {
			return true
		}
	}
	return false
}

// MarshalBencode implements the interface bencode.Marshaler.
func (hs Hashes) MarshalBencode() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, HashSize*len(hs)))
	for _, h := range hs {
		buf.Write(h[:])
	}
	return bencode.EncodeBytes(buf.Bytes())
}

// UnmarshalBencode implements the interface bencode.Unmarshaler.
func (hs *Hashes) UnmarshalBencode(b []byte) (err error) {
	var s bencode.String
	if err = bencode.DecodeBytes(b, &s); err != nil {
		return
	}

	_len := len(s)
	if _len%HashSize != 0 {
		return fmt.Errorf("Hashes: invalid bytes length '%d'", _len)
	}

	hashes := make(Hashes, 0, _len/HashSize)
	for i := 0; i < _len; i += HashSize {
		var h Hash
		copy(h[:], s[i:i+HashSize])
		hashes = append(hashes, h)
	}

	*hs = hashes
	return
}
