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

package httptracker

import (
	"reflect"
	"testing"

	"github.com/xgfone/bencoding/bencode"
)

func TestPeers(t *testing.T) {
	peers := Peers{
		{ID: "123", IP: "1.1.1.1", Port: 80},
		{ID: "456", IP: "2.2.2.2", Port: 81},
	}

	b, err := peers.MarshalBencode()
	if err != nil {
		t.Fatal(err)
	}

	var ps Peers
	if err = ps.UnmarshalBencode(b); err != nil {
		t.Fatal(err)
	} else if !reflect.DeepEqual(ps, peers) {
		t.Errorf("%v != %v", ps, peers)
	}

	/// For BEP 23
	peers = Peers{
		{IP: "1.1.1.1", Port: 80},
		{IP: "2.2.2.2", Port: 81},
	}

	b, err = peers.MarshalBencode()
	if err != nil {
		t.Fatal(err)
	} else if s := string(b); s != "12:\x01\x01\x01\x01\x00\x50\x02\x02\x02\x02\x00\x51" {
		t.Errorf("unexpected compact peers %q", s)
	}

	if err = ps.UnmarshalBencode(b); err != nil {
		t.Fatal(err)
	} else if !reflect.DeepEqual(ps, peers) {
		t.Errorf("%v != %v", ps, peers)
	}
}

func TestPeersNoPeerID(t *testing.T) {
	var ps Peers
	if err := bencode.DecodeString("ld2:ip7:1.2.3.44:porti80eee", &ps); err != nil {
		t.Fatal(err)
	} else if expect := (Peers{{IP: "1.2.3.4", Port: 80}}); !reflect.DeepEqual(ps, expect) {
		t.Errorf("expect %v, but got %v", expect, ps)
	}

	addr, err := ps[0].Address()
	if err != nil {
		t.Error(err)
	} else if s := addr.String(); s != "1.2.3.4:80" {
		t.Errorf("expect '1.2.3.4:80', but got '%s'", s)
	}

	invalids := []string{
		"i1e",
		"5:12345",
		"li1ee",
		"ld4:porti80eee",
		"ld2:ip7:1.2.3.44:porti70000eee",
		"ld2:ip7:1.2.3.44:port2:80ee",
	}
	for _, s := range invalids {
		if err := bencode.DecodeString(s, &ps); err == nil {
			t.Errorf("%q: expect an error, but got nil", s)
		}
	}
}

func TestPeers6(t *testing.T) {
	peers := Peers6{
		{IP: "fe80::5054:ff:fef0:1ab", Port: 80},
		{IP: "fe80::5054:ff:fe29:205d", Port: 81},
	}

	b, err := peers.MarshalBencode()
	if err != nil {
		t.Fatal(err)
	}

	var ps Peers6
	if err = ps.UnmarshalBencode(b); err != nil {
		t.Fatal(err)
	} else if !reflect.DeepEqual(ps, peers) {
		t.Errorf("%v != %v", ps, peers)
	}

	if err = ps.UnmarshalBencode([]byte("6:\x01\x01\x01\x01\x00\x50")); err == nil {
		t.Errorf("expect an error for the ipv4 compact peer")
	}
}
