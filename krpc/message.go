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

// Package krpc implements the bencoded messages of the KRPC protocol
// used by the DHT.
//
// See http://bittorrent.org/beps/bep_0005.html.
package krpc

import (
	"errors"
	"fmt"

	"github.com/xgfone/bencoding/bencode"
	"github.com/xgfone/bencoding/metainfo"
)

// Predefine some message types.
const (
	Query    = "q"
	Response = "r"
	Failure  = "e"
)

// Predefine some query methods.
const (
	QueryPing         = "ping"
	QueryFindNode     = "find_node"
	QueryGetPeers     = "get_peers"
	QueryAnnouncePeer = "announce_peer"
)

// Predefine some error codes.
const (
	ErrorCodeGeneric       = 201
	ErrorCodeServer        = 202
	ErrorCodeProtocol      = 203
	ErrorCodeMethodUnknown = 204
)

// Error represents the error of the KRPC, which is encoded as the list
// of the integer code and the string message.
type Error struct {
	Code   int64
	Reason string
}

var (
	_ bencode.Marshaler   = Error{}
	_ bencode.Unmarshaler = new(Error)
)

// NewError returns a new Error.
func NewError(code int64, reason string) Error {
	return Error{Code: code, Reason: reason}
}

func (e Error) Error() string {
	return fmt.Sprintf("krpc error %d: %s", e.Code, e.Reason)
}

// MarshalBencode implements the interface bencode.Marshaler.
func (e Error) MarshalBencode() (b []byte, err error) {
	return bencode.EncodeBytes([]interface{}{e.Code, e.Reason})
}

// UnmarshalBencode implements the interface bencode.Unmarshaler.
func (e *Error) UnmarshalBencode(b []byte) (err error) {
	v, err := bencode.DecodeValue(b)
	if err != nil {
		return
	}

	list, ok := v.(bencode.List)
	if !ok || list.Len() != 2 {
		return errors.New("krpc error is not a list of code and reason")
	}

	code, ok := list.Index(0).(bencode.Integer)
	if !ok {
		return fmt.Errorf("the code of krpc error is a %s", list.Index(0).Kind())
	}

	reason, ok := list.Index(1).(bencode.String)
	if !ok {
		return fmt.Errorf("the reason of krpc error is a %s", list.Index(1).Kind())
	}

	n, ok := code.Int64()
	if !ok {
		return fmt.Errorf("the code of krpc error %s overflows", code.String())
	}

	e.Code, e.Reason = n, string(reason)
	return
}

// QueryArg represents the arguments used by the query message.
type QueryArg struct {
	// ID is the id of the querying node.
	ID metainfo.Hash `bencode:"id"` // BEP 5

	// Target is the id of the node that the querying node is looking for.
	Target metainfo.Hash `bencode:"target,omitempty"` // BEP 5

	// InfoHash is the infohash of the torrent for get_peers and announce_peer.
	InfoHash metainfo.Hash `bencode:"info_hash,omitempty"` // BEP 5

	// Port is the port on which the querying node's peer listens.
	Port uint16 `bencode:"port,omitempty"` // BEP 5

	// ImpliedPort indicates that the source port of the UDP packet
	// should be used as the peer's port instead of Port.
	ImpliedPort bool `bencode:"implied_port,omitempty"` // BEP 5

	// Token is received in response to a previous get_peers query.
	Token string `bencode:"token,omitempty"` // BEP 5

	// Want is the list of the node address families, "n4" and "n6".
	Want []string `bencode:"want,omitempty"` // BEP 32
}

// ResponseResult represents the result of the response message.
type ResponseResult struct {
	// ID is the id of the responding node.
	ID metainfo.Hash `bencode:"id"` // BEP 5

	// Token is used by the querying node in a future announce_peer query.
	Token string `bencode:"token,omitempty"` // BEP 5

	// Nodes is the compact IPv4 node info of the closest nodes.
	Nodes CompactIPv4Nodes `bencode:"nodes,omitempty"` // BEP 5

	// Nodes6 is the compact IPv6 node info of the closest nodes.
	Nodes6 CompactIPv6Nodes `bencode:"nodes6,omitempty"` // BEP 32

	// Values is the list of the compact peer addresses for get_peers.
	Values []metainfo.CompactAddr `bencode:"values,omitempty"` // BEP 5
}

// Message represents messages that nodes send to each other.
type Message struct {
	// T is the transaction id generated by the querying node,
	// and echoed in the response.
	T string `bencode:"t"` // BEP 5

	// Y is the type of the message, one of Query, Response and Failure.
	Y string `bencode:"y"` // BEP 5

	// Q is the method name of the query.
	Q string `bencode:"q,omitempty"` // BEP 5

	// A is the arguments of the query.
	A *QueryArg `bencode:"a,omitempty"` // BEP 5

	// R is the result of the response.
	R *ResponseResult `bencode:"r,omitempty"` // BEP 5

	// E is the error of the failure message.
	E *Error `bencode:"e,omitempty"` // BEP 5

	// RO indicates that the node is read-only.
	RO bool `bencode:"ro,omitempty"` // BEP 43
}

// NewQueryMsg returns a new query message.
func NewQueryMsg(tid, method string, arg QueryArg) Message {
	return Message{T: tid, Y: Query, Q: method, A: &arg}
}

// NewResponseMsg returns a new response message.
func NewResponseMsg(tid string, r ResponseResult) Message {
	return Message{T: tid, Y: Response, R: &r}
}

// NewErrorMsg returns a new error message.
func NewErrorMsg(tid string, e Error) Message {
	return Message{T: tid, Y: Failure, E: &e}
}

// IsQuery reports whether the message is a query.
func (m Message) IsQuery() bool { return m.Y == Query }

// IsResponse reports whether the message is a response.
func (m Message) IsResponse() bool { return m.Y == Response }

// IsError reports whether the message is an error.
func (m Message) IsError() bool { return m.Y == Failure }

// Validate checks whether the message has the fields required by its type.
func (m Message) Validate() error {
	if m.T == "" {
		return errors.New("krpc message has no transaction id")
	}

	switch m.Y {
	case Query:
		if m.Q == "" || m.A == nil {
			return errors.New("krpc query has no method or arguments")
		}
	case Response:
		if m.R == nil {
			return errors.New("krpc response has no result")
		}
	case Failure:
		if m.E == nil {
			return errors.New("krpc error message has no error")
		}
	default:
		return fmt.Errorf("unknown krpc message type '%s'", m.Y)
	}

	return nil
}

// DecodeMessage decodes and validates the message from a UDP packet.
func DecodeMessage(b []byte) (m Message, err error) {
	if err = bencode.DecodeBytes(b, &m); err == nil {
		err = m.Validate()
	}
	return
}

// EncodeMessage validates and encodes the message.
func EncodeMessage(m Message) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return bencode.EncodeBytes(m)
}
