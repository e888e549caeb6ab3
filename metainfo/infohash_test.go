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
	"testing"

	"github.com/xgfone/bencoding/bencode"
)

func TestHash(t *testing.T) {
	hexHash := "0001020304050607080909080706050403020100"

	b, err := NewHashFromHexString(hexHash).MarshalBencode()
	if err != nil {
		t.Fatal(err)
	} else if len(b) != 23 || string(b[:3]) != "20:" {
		t.Errorf("unexpected encoding %q", b)
	}

	var h Hash
	if err = h.UnmarshalBencode(b); err != nil {
		t.Fatal(err)
	} else if hexs := h.String(); hexs != hexHash {
		t.Errorf("expect '%s', but got '%s'", hexHash, hexs)
	}

	// The hex form is accepted, too.
	h = Hash{}
	if err = bencode.DecodeString("40:"+hexHash, &h); err != nil {
		t.Fatal(err)
	} else if hexs := h.HexString(); hexs != hexHash {
		t.Errorf("expect '%s', but got '%s'", hexHash, hexs)
	}

	if err = bencode.DecodeString("3:abc", &h); err == nil {
		t.Error("expect an error for the bad length")
	}

	h = Hash{}
	hexHash = "0001020304050607080900010203040506070809"
	err = h.UnmarshalBinary([]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	if err != nil {
		t.Error(err)
	} else if hexs := h.HexString(); hexs != hexHash {
		t.Errorf("expect '%s', but got '%s'", hexHash, hexs)
	}
}

func TestHashFromBytes(t *testing.T) {
	// SHA1("abc")
	expect := "a9993e364706816aba3e25717850c26c9cd0d89d"
	if h := NewHashFromBytes([]byte("abc")); h.HexString() != expect {
		t.Errorf("expect '%s', but got '%s'", expect, h.HexString())
	}

	if h := NewRandomHash(); h.IsZero() {
		t.Error("expect a non-zero random hash")
	}
}

func TestHashes(t *testing.T) {
	hexHash1 := "0101010101010101010101010101010101010101"
	hexHash2 := "0202020202020202020202020202020202020202"

	hashes := Hashes{
		NewHashFromHexString(hexHash1),
		NewHashFromHexString(hexHash2),
	}

	b, err := hashes.MarshalBencode()
	if err != nil {
		t.Fatal(err)
	}

	hashes = Hashes{}
	if err = hashes.UnmarshalBencode(b); err != nil {
		t.Fatal(err)
	}

	if _len := len(hashes); _len != 2 {
		t.Fatalf("expect the length of hashes '%d', but got '%d'", 2, _len)
	}
	if h := hashes[0].HexString(); h != hexHash1 {
		t.Errorf("expect '%s', but got '%s'", hexHash1, h)
	}
	if h := hashes[1].HexString(); h != hexHash2 {
		t.Errorf("expect '%s', but got '%s'", hexHash2, h)
	}
	if !hashes.Contains(NewHashFromHexString(hexHash2)) {
		t.Error("expect the hashes to contain the second hash")
	}

	if err = hashes.UnmarshalBencode([]byte("3:abc")); err == nil {
		t.Error("expect an error for the bad length")
	}
}
