// Copyright 2020 xgfone, 2023 idk
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
	"encoding/binary"
	"fmt"
	"net"
	"strconv"

	"github.com/eyedeekay/i2pkeys"
	"github.com/xgfone/bencoding/bencode"
)

// DefaultI2PPort is the port assigned to the I2P destinations,
// which carry no port of their own.
const DefaultI2PPort = 6881

// Address represents a peer or node address, whose IP is either
// a *net.IPAddr or an i2pkeys.I2PAddr destination.
type Address struct {
	IP   net.Addr
	Port uint16
}

var (
	_ bencode.Marshaler   = Address{}
	_ bencode.Unmarshaler = new(Address)
)

// NewAddress returns a new Address.
//
// ip may be a net.IP, *net.IPAddr, *net.UDPAddr, *net.TCPAddr
// or i2pkeys.I2PAddr. For others, the zero Address is returned.
func NewAddress(ip interface{}, port uint16) Address {
	switch v := ip.(type) {
	case net.IP:
		return Address{IP: newIPAddr(v), Port: port}
	case *net.IPAddr:
		return Address{IP: newIPAddr(v.IP), Port: port}
	case *net.UDPAddr:
		return Address{IP: newIPAddr(v.IP), Port: port}
	case *net.TCPAddr:
		return Address{IP: newIPAddr(v.IP), Port: port}
	case i2pkeys.I2PAddr:
		return Address{IP: v, Port: port}
	case *i2pkeys.I2PAddr:
		return Address{IP: *v, Port: port}
	default:
		return Address{}
	}
}

func newIPAddr(ip net.IP) *net.IPAddr {
	if ipv4 := ip.To4(); ipv4 != nil {
		ip = ipv4
	}
	return &net.IPAddr{IP: ip}
}

// ParseAddress parses the string s to Address, which is either "ip:port"
// or an I2P destination with the optional port.
//
// No DNS lookup is done, so the host must be an ip literal or
// a full base64 I2P destination.
func ParseAddress(s string) (addr Address, err error) {
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		host, port = s, ""
	}

	addr.IP, err = parseHost(host)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address '%s': %s", s, err)
	}

	switch {
	case port != "":
		v, err := strconv.ParseUint(port, 10, 16)
		if err != nil {
			return Address{}, fmt.Errorf("invalid address '%s': %s", s, err)
		}
		addr.Port = uint16(v)
	case addr.IsI2P():
		addr.Port = DefaultI2PPort
	default:
		return Address{}, fmt.Errorf("invalid address '%s': missing port", s)
	}

	return
}

func parseHost(host string) (net.Addr, error) {
	if ip := net.ParseIP(host); ip != nil {
		return newIPAddr(ip), nil
	}
	return i2pkeys.NewI2PAddrFromString(host)
}

// IsI2P reports whether the address is an I2P destination.
func (a Address) IsI2P() bool {
	_, ok := a.IP.(i2pkeys.I2PAddr)
	return ok
}

// IsIPv6 reports whether the address is an IPv6 address.
func (a Address) IsIPv6() bool {
	if ip, ok := a.IP.(*net.IPAddr); ok {
		return ip.IP.To4() == nil
	}
	return false
}

// Addr converts the address to a net.Addr, which is a *net.UDPAddr
// for the ip address or i2pkeys.I2PAddr for the I2P destination.
func (a Address) Addr() net.Addr {
	switch v := a.IP.(type) {
	case *net.IPAddr:
		return &net.UDPAddr{IP: v.IP, Port: int(a.Port)}
	case i2pkeys.I2PAddr:
		return v
	default:
		return nil
	}
}

func (a Address) host() string {
	if a.IP == nil {
		return ""
	}
	return a.IP.String()
}

func (a Address) String() string {
	if a.Port == 0 {
		return a.host()
	}
	return net.JoinHostPort(a.host(), strconv.FormatUint(uint64(a.Port), 10))
}

// Equal reports whether a is equal to o.
func (a Address) Equal(o Address) bool {
	return a.Port == o.Port && a.host() == o.host()
}

// MarshalBinary implements the interface encoding.BinaryMarshaler.
//
// The ip address is encoded as the compact form "ip+port",
// and the I2P destination is encoded as the raw destination bytes.
func (a Address) MarshalBinary() ([]byte, error) {
	switch v := a.IP.(type) {
	case *net.IPAddr:
		return CompactAddr{IP: v.IP, Port: a.Port}.MarshalBinary()
	case i2pkeys.I2PAddr:
		return v.ToBytes()
	default:
		return nil, fmt.Errorf("unsupported address type %T", a.IP)
	}
}

// UnmarshalBinary implements the interface encoding.BinaryUnmarshaler.
func (a *Address) UnmarshalBinary(b []byte) (err error) {
	switch len(b) {
	case net.IPv4len + 2, net.IPv6len + 2:
		ip := make(net.IP, len(b)-2)
		copy(ip, b)
		a.IP = &net.IPAddr{IP: ip}
		a.Port = binary.BigEndian.Uint16(b[len(ip):])
		return nil
	}

	if len(b) < net.IPv6len+2 {
		return ErrInvalidAddr
	}

	i2p, err := i2pkeys.NewI2PAddrFromBytes(b)
	if err == nil {
		a.IP, a.Port = i2p, DefaultI2PPort
	}
	return
}

// MarshalBencode implements the interface bencode.Marshaler,
// which encodes the address as the list [host, port].
func (a Address) MarshalBencode() ([]byte, error) {
	if a.IP == nil {
		return nil, ErrInvalidAddr
	}
	return bencode.EncodeBytes([]interface{}{a.IP.String(), a.Port})
}

// UnmarshalBencode implements the interface bencode.Unmarshaler,
// which accepts the list [host, port] or the string "host:port".
func (a *Address) UnmarshalBencode(b []byte) (err error) {
	host, port, err := decodeHostPort(b)
	if err != nil {
		return
	}

	if port < 0 {
		*a, err = ParseAddress(host)
		return
	}

	ip, err := parseHost(host)
	if err != nil {
		return fmt.Errorf("invalid address host '%s': %s", host, err)
	}

	a.IP, a.Port = ip, uint16(port)
	return
}

// decodeHostPort decodes the list [host, port] or the string "host:port".
// For the string form, port is -1 and host is the whole string.
func decodeHostPort(b []byte) (host string, port int, err error) {
	v, err := bencode.DecodeValue(b)
	if err != nil {
		return
	}

	switch v := v.(type) {
	case bencode.String:
		return string(v), -1, nil

	case bencode.List:
		if v.Len() != 2 {
			return "", 0, fmt.Errorf("invalid address list length %d", v.Len())
		}

		h, ok := v.Index(0).(bencode.String)
		if !ok {
			return "", 0, fmt.Errorf("the address host is a %s, not string", v.Index(0).Kind())
		}

		p, ok := v.Index(1).(bencode.Integer)
		if !ok {
			return "", 0, fmt.Errorf("the address port is a %s, not integer", v.Index(1).Kind())
		} else if n, ok := p.Int64(); !ok || n < 0 || n > 65535 {
			return "", 0, fmt.Errorf("invalid address port %s", p.String())
		}

		n, _ := p.Int64()
		return string(h), int(n), nil

	default:
		return "", 0, fmt.Errorf("unsupported address type: %s", v.Kind())
	}
}
