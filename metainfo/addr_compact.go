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

package metainfo

import (
	"bytes"
	"encoding"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/xgfone/bencoding/bencode"
)

// ErrInvalidAddr is returned when the compact address is invalid.
var ErrInvalidAddr = errors.New("invalid compact information of ip and port")

// CompactAddr represents an address based on ip and port,
// which implements "Compact IP-address/port info".
//
// See http://bittorrent.org/beps/bep_0005.html.
type CompactAddr struct {
	IP   net.IP // For IPv4, its length must be 4.
	Port uint16
}

var (
	_ bencode.Marshaler          = CompactAddr{}
	_ bencode.Unmarshaler        = new(CompactAddr)
	_ encoding.BinaryMarshaler   = CompactAddr{}
	_ encoding.BinaryUnmarshaler = new(CompactAddr)
)

// NewCompactAddr returns a new compact Addr with ip and port.
func NewCompactAddr(ip net.IP, port uint16) CompactAddr {
	if ipv4 := ip.To4(); ipv4 != nil {
		ip = ipv4
	}
	return CompactAddr{IP: ip, Port: port}
}

// Valid reports whether the addr is valid.
func (a CompactAddr) Valid() bool { return len(a.IP) > 0 && a.Port > 0 }

// Equal reports whether a is equal to o.
func (a CompactAddr) Equal(o CompactAddr) bool {
	return a.Port == o.Port && a.IP.Equal(o.IP)
}

func (a CompactAddr) String() string {
	if a.Port == 0 {
		return a.IP.String()
	}
	return net.JoinHostPort(a.IP.String(), strconv.FormatUint(uint64(a.Port), 10))
}

func (a CompactAddr) appendBinary(b []byte) []byte {
	b = append(b, a.IP...)
	return binary.BigEndian.AppendUint16(b, a.Port)
}

// MarshalBinary implements the interface encoding.BinaryMarshaler.
func (a CompactAddr) MarshalBinary() ([]byte, error) {
	return a.appendBinary(make([]byte, 0, len(a.IP)+2)), nil
}

// UnmarshalBinary implements the interface encoding.BinaryUnmarshaler.
func (a *CompactAddr) UnmarshalBinary(data []byte) error {
	_len := len(data) - 2
	switch _len {
	case net.IPv4len, net.IPv6len:
	default:
		return ErrInvalidAddr
	}

	a.IP = append(net.IP(nil), data[:_len]...)
	a.Port = binary.BigEndian.Uint16(data[_len:])
	return nil
}

// MarshalBencode implements the interface bencode.Marshaler.
func (a CompactAddr) MarshalBencode() ([]byte, error) {
	b, _ := a.MarshalBinary()
	return bencode.EncodeBytes(b)
}

// UnmarshalBencode implements the interface bencode.Unmarshaler.
func (a *CompactAddr) UnmarshalBencode(b []byte) (err error) {
	var data []byte
	if err = bencode.DecodeBytes(b, &data); err == nil {
		err = a.UnmarshalBinary(data)
	}
	return
}

/// >>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>

// CompactIPv4Addrs is a set of IPv4 Addrs, which is encoded as
// the concatenation of the 6-byte compact addresses.
//
// BEP 23
type CompactIPv4Addrs []CompactAddr

// CompactIPv6Addrs is a set of IPv6 Addrs, which is encoded as
// the concatenation of the 18-byte compact addresses.
//
// BEP 7
type CompactIPv6Addrs []CompactAddr

var (
	_ bencode.Marshaler   = CompactIPv4Addrs{}
	_ bencode.Unmarshaler = new(CompactIPv4Addrs)
	_ bencode.Marshaler   = CompactIPv6Addrs{}
	_ bencode.Unmarshaler = new(CompactIPv6Addrs)
)

// MarshalBinary implements the interface encoding.BinaryMarshaler.
//
// The non-IPv4 addresses are skipped.
func (cas CompactIPv4Addrs) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, 6*len(cas))
	for _, addr := range cas {
		if addr.IP = addr.IP.To4(); len(addr.IP) != 0 {
			b = addr.appendBinary(b)
		}
	}
	return b, nil
}

// UnmarshalBinary implements the interface encoding.BinaryUnmarshaler.
func (cas *CompactIPv4Addrs) UnmarshalBinary(b []byte) (err error) {
	addrs, err := unmarshalCompactAddrs(b, net.IPv4len+2)
	if err == nil {
		*cas = addrs
	}
	return
}

// MarshalBencode implements the interface bencode.Marshaler.
func (cas CompactIPv4Addrs) MarshalBencode() ([]byte, error) {
	b, _ := cas.MarshalBinary()
	return bencode.EncodeBytes(b)
}

// UnmarshalBencode implements the interface bencode.Unmarshaler.
func (cas *CompactIPv4Addrs) UnmarshalBencode(b []byte) (err error) {
	var data []byte
	if err = bencode.DecodeBytes(b, &data); err == nil {
		err = cas.UnmarshalBinary(data)
	}
	return
}

// MarshalBinary implements the interface encoding.BinaryMarshaler.
func (cas CompactIPv6Addrs) MarshalBinary() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 18*len(cas)))
	for _, addr := range cas {
		ip := addr.IP.To16()
		if len(ip) == 0 {
			return nil, fmt.Errorf("CompactIPv6Addrs: invalid ip '%s'", addr.IP)
		}
		buf.Write(ip)
		binary.Write(buf, binary.BigEndian, addr.Port)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements the interface encoding.BinaryUnmarshaler.
func (cas *CompactIPv6Addrs) UnmarshalBinary(b []byte) (err error) {
	addrs, err := unmarshalCompactAddrs(b, net.IPv6len+2)
	if err == nil {
		*cas = addrs
	}
	return
}

// MarshalBencode implements the interface bencode.Marshaler.
func (cas CompactIPv6Addrs) MarshalBencode() ([]byte, error) {
	b, err := cas.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return bencode.EncodeBytes(b)
}

// UnmarshalBencode implements the interface bencode.Unmarshaler.
func (cas *CompactIPv6Addrs) UnmarshalBencode(b []byte) (err error) {
	var data []byte
	if err = bencode.DecodeBytes(b, &data); err == nil {
		err = cas.UnmarshalBinary(data)
	}
	return
}

func unmarshalCompactAddrs(b []byte, size int) ([]CompactAddr, error) {
	_len := len(b)
	if _len%size != 0 {
		return nil, fmt.Errorf("invalid compact addr info length '%d'", _len)
	}

	addrs := make([]CompactAddr, 0, _len/size)
	for i := 0; i < _len; i += size {
		var addr CompactAddr
		if err := addr.UnmarshalBinary(b[i : i+size]); err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}
