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

package krpc

import (
	"fmt"
	"net"

	"github.com/xgfone/bencoding/bencode"
	"github.com/xgfone/bencoding/metainfo"
)

// Node represents a node information.
type Node struct {
	ID   metainfo.Hash
	Addr metainfo.CompactAddr
}

// NewNode returns a new Node.
func NewNode(id metainfo.Hash, ip net.IP, port uint16) Node {
	return Node{ID: id, Addr: metainfo.NewCompactAddr(ip, port)}
}

func (n Node) String() string {
	return fmt.Sprintf("Node<%x@%s>", n.ID, n.Addr)
}

// Equal reports whether n is equal to o.
func (n Node) Equal(o Node) bool {
	return n.ID == o.ID && n.Addr.Equal(o.Addr)
}

func (n Node) appendBinary(b []byte) ([]byte, error) {
	addr, err := n.Addr.MarshalBinary()
	if err != nil {
		return nil, err
	}
	b = append(b, n.ID[:]...)
	return append(b, addr...), nil
}

// MarshalBinary implements the interface binary.BinaryMarshaler,
// which is "Compact node info", that's, the 20-byte node id
// and the compact address.
func (n Node) MarshalBinary() (data []byte, err error) {
	return n.appendBinary(make([]byte, 0, 38))
}

// UnmarshalBinary implements the interface binary.BinaryUnmarshaler.
func (n *Node) UnmarshalBinary(b []byte) error {
	switch len(b) {
	case 26, 38:
	default:
		return fmt.Errorf("invalid compact node info length %d", len(b))
	}

	copy(n.ID[:], b[:metainfo.HashSize])
	return n.Addr.UnmarshalBinary(b[metainfo.HashSize:])
}

// CompactIPv4Nodes is a set of IPv4 Nodes, which is encoded as
// the concatenation of the 26-byte compact node info.
type CompactIPv4Nodes []Node

// CompactIPv6Nodes is a set of IPv6 Nodes, which is encoded as
// the concatenation of the 38-byte compact node info.
//
// BEP 32
type CompactIPv6Nodes []Node

var (
	_ bencode.Marshaler   = CompactIPv4Nodes{}
	_ bencode.Unmarshaler = new(CompactIPv4Nodes)
	_ bencode.Marshaler   = CompactIPv6Nodes{}
	_ bencode.Unmarshaler = new(CompactIPv6Nodes)
)

// MarshalBencode implements the interface bencode.Marshaler.
//
// The non-IPv4 nodes are skipped.
func (cns CompactIPv4Nodes) MarshalBencode() (b []byte, err error) {
	buf := make([]byte, 0, 26*len(cns))
	for _, n := range cns {
		if n.Addr.IP = n.Addr.IP.To4(); len(n.Addr.IP) == 0 {
			continue
		}
		if buf, err = n.appendBinary(buf); err != nil {
			return
		}
	}
	return bencode.EncodeBytes(buf)
}

// UnmarshalBencode implements the interface bencode.Unmarshaler.
func (cns *CompactIPv4Nodes) UnmarshalBencode(b []byte) (err error) {
	nodes, err := decodeCompactNodes(b, 26)
	if err == nil {
		*cns = nodes
	}
	return
}

// MarshalBencode implements the interface bencode.Marshaler.
func (cns CompactIPv6Nodes) MarshalBencode() (b []byte, err error) {
	buf := make([]byte, 0, 38*len(cns))
	for _, n := range cns {
		if n.Addr.IP = n.Addr.IP.To16(); len(n.Addr.IP) == 0 {
			return nil, fmt.Errorf("invalid ipv6 node %s", n)
		}
		if buf, err = n.appendBinary(buf); err != nil {
			return
		}
	}
	return bencode.EncodeBytes(buf)
}

// UnmarshalBencode implements the interface bencode.Unmarshaler.
func (cns *CompactIPv6Nodes) UnmarshalBencode(b []byte) (err error) {
	nodes, err := decodeCompactNodes(b, 38)
	if err == nil {
		*cns = nodes
	}
	return
}

func decodeCompactNodes(b []byte, size int) (nodes []Node, err error) {
	var data []byte
	if err = bencode.DecodeBytes(b, &data); err != nil {
		return
	}

	_len := len(data)
	if _len%size != 0 {
		return nil, fmt.Errorf("invalid compact nodes length %d", _len)
	}

	nodes = make([]Node, _len/size)
	for i := range nodes {
		if err = nodes[i].UnmarshalBinary(data[i*size : (i+1)*size]); err != nil {
			return nil, err
		}
	}
	return
}
