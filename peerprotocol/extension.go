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

// Package peerprotocol implements the bencoded extension messages
// carried by the BitTorrent peer wire protocol.
package peerprotocol

import (
	"bytes"
	"errors"
	"fmt"
	"net"

	"github.com/eyedeekay/i2pkeys"
	"github.com/xgfone/bencoding/bencode"
	"github.com/xgfone/bencoding/metainfo"
)

var errInvalidIP = errors.New("invalid ipv4, ipv6 or i2p destination hash")

// ErrMetadataHash is returned when the info hash of the metadata
// does not match the expected one.
var ErrMetadataHash = errors.New("metadata info hash mismatch")

// Predefine some extended message identifiers.
const (
	ExtendedIDHandshake = 0 // BEP 10
)

// Predefine some extended message names.
const (
	ExtendedMessageNameMetadata = "ut_metadata" // BEP 9
	ExtendedMessageNamePex      = "ut_pex"      // BEP 11
)

// Predefine some "ut_metadata" extended message types.
const (
	UtMetadataExtendedMsgTypeRequest = 0 // BEP 9
	UtMetadataExtendedMsgTypeData    = 1 // BEP 9
	UtMetadataExtendedMsgTypeReject  = 2 // BEP 9
)

// MetadataPieceSize is the size of each metadata piece except the last.
const MetadataPieceSize = 16384 // BEP 9

// CompactIP is the compact ipv4, ipv6 or 32-byte I2P destination hash.
type CompactIP []byte

// NewCompactIP returns a new CompactIP, which is converted to ipv4
// if possible.
func NewCompactIP(ip net.IP) CompactIP {
	if ipv4 := ip.To4(); ipv4 != nil {
		return CompactIP(ipv4)
	}
	return CompactIP(ip)
}

func (ci CompactIP) valid() bool {
	switch len(ci) {
	case net.IPv4len, net.IPv6len, 32:
		return true
	}
	return false
}

func (ci CompactIP) String() string {
	switch len(ci) {
	case net.IPv4len, net.IPv6len:
		return net.IP(ci).String()
	case 32:
		var h i2pkeys.I2PDestHash
		copy(h[:], ci)
		return h.String()
	}
	return ""
}

// MarshalBencode implements the interface bencode.Marshaler.
func (ci CompactIP) MarshalBencode() ([]byte, error) {
	if !ci.valid() {
		return nil, errInvalidIP
	}
	return bencode.EncodeBytes([]byte(ci))
}

// UnmarshalBencode implements the interface bencode.Unmarshaler.
func (ci *CompactIP) UnmarshalBencode(b []byte) (err error) {
	var ip []byte
	if err = bencode.DecodeBytes(b, &ip); err != nil {
		return
	}

	if !CompactIP(ip).valid() {
		return errInvalidIP
	}
	*ci = CompactIP(ip)
	return
}

// ExtendedHandshakeMsg represent the extended handshake message.
//
// BEP 10
type ExtendedHandshakeMsg struct {
	// M is the type of map[ExtendedMessageName]ExtendedMessageID.
	M    map[string]uint8 `bencode:"m"`              // BEP 10
	V    string           `bencode:"v,omitempty"`    // BEP 10
	Reqq int              `bencode:"reqq,omitempty"` // BEP 10

	// Port is the local client port, which is redundant and no need
	// for the receiving side of the connection to send this.
	Port   uint16    `bencode:"p,omitempty"`      // BEP 10
	IPv6   CompactIP `bencode:"ipv6,omitempty"`   // BEP 10
	IPv4   CompactIP `bencode:"ipv4,omitempty"`   // BEP 10
	YourIP CompactIP `bencode:"yourip,omitempty"` // BEP 10

	MetadataSize int `bencode:"metadata_size,omitempty"` // BEP 9
}

// Decode decodes the extended handshake message from b.
func (ehm *ExtendedHandshakeMsg) Decode(b []byte) (err error) {
	return bencode.DecodeBytes(b, ehm)
}

// Encode encodes the extended handshake message to b.
func (ehm ExtendedHandshakeMsg) Encode() (b []byte, err error) {
	return bencode.EncodeBytes(ehm)
}

// CountMetadataPieces returns the number of the metadata pieces.
func (ehm ExtendedHandshakeMsg) CountMetadataPieces() int {
	return (ehm.MetadataSize + MetadataPieceSize - 1) / MetadataPieceSize
}

// UtMetadataExtendedMsg represents the "ut_metadata" extended message.
type UtMetadataExtendedMsg struct {
	MsgType uint8 `bencode:"msg_type"` // BEP 9
	Piece   int   `bencode:"piece"`    // BEP 9

	// They are only used by "data" type
	TotalSize int    `bencode:"total_size,omitempty"` // BEP 9
	Data      []byte `bencode:"-"`
}

// EncodeToPayload encodes UtMetadataExtendedMsg to extended payload
// and write the result into buf.
func (um UtMetadataExtendedMsg) EncodeToPayload(buf *bytes.Buffer) (err error) {
	if um.MsgType != UtMetadataExtendedMsgTypeData {
		um.TotalSize = 0
		um.Data = nil
	}

	buf.Grow(len(um.Data) + 50)
	if err = bencode.NewEncoder(buf).Encode(um); err == nil {
		_, err = buf.Write(um.Data)
	}
	return
}

// EncodeToBytes is equal to
//
//	buf := new(bytes.Buffer)
//	err = um.EncodeToPayload(buf)
//	return buf.Bytes(), err
func (um UtMetadataExtendedMsg) EncodeToBytes() (b []byte, err error) {
	buf := bytes.NewBuffer(make([]byte, 0, 128))
	if err = um.EncodeToPayload(buf); err == nil {
		b = buf.Bytes()
	}
	return
}

// DecodeFromPayload decodes the extended payload to itself.
//
// The payload is a bencoded dict, and the bytes following it
// are the metadata piece of the "data" message.
func (um *UtMetadataExtendedMsg) DecodeFromPayload(b []byte) (err error) {
	dec := bencode.NewDecoder(b)
	if err = dec.DecodeTo(um); err == nil {
		um.Data = b[dec.Offset():]
	}
	return
}

// DecodeMetadata joins the metadata pieces received by the "data"
// messages in order, checks them against the info hash, and decodes
// the info dictionary.
func DecodeMetadata(infohash metainfo.Hash, pieces [][]byte) (info metainfo.Info, err error) {
	data := bytes.Join(pieces, nil)
	if h := metainfo.NewHashFromBytes(data); h != infohash {
		err = fmt.Errorf("%w: expect %s, but got %s", ErrMetadataHash, infohash, h)
		return
	}

	err = bencode.DecodeBytes(data, &info)
	return
}
