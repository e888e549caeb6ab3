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
	"net"
	"strconv"

	"github.com/xgfone/bencoding/bencode"
)

// HostAddr represents an address based on host and port,
// such as the "nodes" entries of the metainfo.
type HostAddr struct {
	Host string
	Port uint16
}

var (
	_ bencode.Marshaler   = HostAddr{}
	_ bencode.Unmarshaler = new(HostAddr)
)

// NewHostAddr returns a new host Addr.
func NewHostAddr(host string, port uint16) HostAddr {
	return HostAddr{Host: host, Port: port}
}

// ParseHostAddr parses a string s to Addr.
func ParseHostAddr(s string) (HostAddr, error) {
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		return HostAddr{}, err
	}

	_port, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return HostAddr{}, err
	}

	return NewHostAddr(host, uint16(_port)), nil
}

func (a HostAddr) String() string {
	if a.Port == 0 {
		return a.Host
	}
	return net.JoinHostPort(a.Host, strconv.FormatUint(uint64(a.Port), 10))
}

// Equal reports whether a is equal to o.
func (a HostAddr) Equal(o HostAddr) bool {
	return a.Port == o.Port && a.Host == o.Host
}

// MarshalBencode implements the interface bencode.Marshaler.
func (a HostAddr) MarshalBencode() ([]byte, error) {
	return bencode.EncodeBytes([]interface{}{a.Host, a.Port})
}

// UnmarshalBencode implements the interface bencode.Unmarshaler.
func (a *HostAddr) UnmarshalBencode(b []byte) (err error) {
	host, port, err := decodeHostPort(b)
	switch {
	case err != nil:
	case port < 0:
		*a, err = ParseHostAddr(host)
	default:
		*a = NewHostAddr(host, uint16(port))
	}
	return
}
