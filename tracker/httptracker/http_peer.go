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
	"errors"
	"net"

	"github.com/xgfone/bencoding/bencode"
	"github.com/xgfone/bencoding/metainfo"
)

var errInvalidPeer = errors.New("invalid peer information format")

// Peer is a tracker peer.
type Peer struct {
	// ID is the peer's self-selected ID.
	ID string `bencode:"peer id"` // BEP 3

	// IP is the IP address or dns name.
	IP   string `bencode:"ip"`   // BEP 3
	Port uint16 `bencode:"port"` // BEP 3
}

// Address returns the address that the peer listens on.
//
// Return an error if IP is not an ip or I2P destination,
// since no DNS lookup is done.
func (p Peer) Address() (metainfo.Address, error) {
	if ip := net.ParseIP(p.IP); ip != nil {
		return metainfo.NewAddress(ip, p.Port), nil
	}

	addr, err := metainfo.ParseAddress(p.IP)
	if err == nil && p.Port > 0 {
		addr.Port = p.Port
	}
	return addr, err
}

func peerFromDict(v bencode.Value) (p Peer, err error) {
	m, ok := v.(bencode.Dict)
	if !ok {
		return p, errInvalidPeer
	}

	ip, ok := m.GetString("ip")
	if !ok {
		return p, errInvalidPeer
	}

	port, ok := m.GetInteger("port")
	if !ok {
		return p, errInvalidPeer
	} else if n, ok := port.Uint64(); !ok || n > 65535 {
		return p, errInvalidPeer
	}

	// The peer id is absent when the client announces with no_peer_id.
	id, _ := m.GetString("peer id")
	n, _ := port.Uint64()
	return Peer{ID: string(id), IP: string(ip), Port: uint16(n)}, nil
}

func peersFromCompact(b []byte, size int) (peers []Peer, err error) {
	var addrs []metainfo.CompactAddr
	switch size {
	case net.IPv4len + 2:
		var cas metainfo.CompactIPv4Addrs
		err = cas.UnmarshalBinary(b)
		addrs = cas
	default:
		var cas metainfo.CompactIPv6Addrs
		err = cas.UnmarshalBinary(b)
		addrs = cas
	}
	if err != nil {
		return nil, err
	}

	peers = make([]Peer, len(addrs))
	for i, addr := range addrs {
		peers[i] = Peer{IP: addr.IP.String(), Port: addr.Port}
	}
	return
}

// Peers is a set of the peers, which is decoded from either
// the list of the peer dictionaries or the compact string.
type Peers []Peer

var (
	_ bencode.Marshaler   = Peers{}
	_ bencode.Unmarshaler = new(Peers)
	_ bencode.Marshaler   = Peers6{}
	_ bencode.Unmarshaler = new(Peers6)
)

// UnmarshalBencode implements the interface bencode.Unmarshaler.
func (ps *Peers) UnmarshalBencode(b []byte) (err error) {
	v, err := bencode.DecodeValue(b)
	if err != nil {
		return
	}

	switch vs := v.(type) {
	case bencode.String: // BEP 23
		peers, err := peersFromCompact(vs.Bytes(), net.IPv4len+2)
		if err != nil {
			return err
		}
		*ps = peers

	case bencode.List: // BEP 3
		peers := make(Peers, vs.Len())
		for i := range peers {
			if peers[i], err = peerFromDict(vs.Index(i)); err != nil {
				return
			}
		}
		*ps = peers

	default:
		return errInvalidPeer
	}

	return
}

// MarshalBencode implements the interface bencode.Marshaler.
//
// If any peer has no ID, the peers are encoded as the compact string.
func (ps Peers) MarshalBencode() (b []byte, err error) {
	for _, p := range ps {
		if p.ID == "" {
			return ps.marshalCompactBencode() // BEP 23
		}
	}

	return bencode.EncodeBytes([]Peer(ps)) // BEP 3
}

func (ps Peers) marshalCompactBencode() (b []byte, err error) {
	addrs := make(metainfo.CompactIPv4Addrs, len(ps))
	for i, peer := range ps {
		ip := net.ParseIP(peer.IP).To4()
		if len(ip) == 0 {
			return nil, errInvalidPeer
		}
		addrs[i] = metainfo.NewCompactAddr(ip, peer.Port)
	}
	return addrs.MarshalBencode()
}

// Peers6 is a set of the peers for IPv6 in the compact case.
//
// BEP 7
type Peers6 []Peer

// UnmarshalBencode implements the interface bencode.Unmarshaler.
func (ps *Peers6) UnmarshalBencode(b []byte) (err error) {
	var s []byte
	if err = bencode.DecodeBytes(b, &s); err != nil {
		return
	}

	peers, err := peersFromCompact(s, net.IPv6len+2)
	if err == nil {
		*ps = peers
	}
	return
}

// MarshalBencode implements the interface bencode.Marshaler.
func (ps Peers6) MarshalBencode() (b []byte, err error) {
	addrs := make(metainfo.CompactIPv6Addrs, len(ps))
	for i, peer := range ps {
		ip := net.ParseIP(peer.IP).To16()
		if len(ip) == 0 {
			return nil, errInvalidPeer
		}
		addrs[i] = metainfo.CompactAddr{IP: ip, Port: peer.Port}
	}
	return addrs.MarshalBencode()
}
