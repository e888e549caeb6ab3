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

package bencode

import (
	"errors"
	"fmt"
	"reflect"
)

// Predefine some errors, which may be matched by errors.Is.
var (
	// ErrInvalidArgument is returned when the decoder input is not a buffer
	// of bytes, or when the decoding target is not a non-nil pointer.
	ErrInvalidArgument = errors.New("bencode: invalid argument")

	ErrUnexpectedEOF    = errors.New("bencode: unexpected end of input")
	ErrInvalidToken     = errors.New("bencode: invalid token")
	ErrMissingDelimiter = errors.New("bencode: missing delimiter")
	ErrTruncatedInput   = errors.New("bencode: truncated input")
	ErrInvalidKeyType   = errors.New("bencode: dictionary key is not a byte string")
	ErrInvalidInteger   = errors.New("bencode: invalid integer")
	ErrMaxDepth         = errors.New("bencode: exceeded max nesting depth")
	ErrTrailingData     = errors.New("bencode: trailing data after value")
)

// SyntaxError is returned when the input is not well-formed bencode.
type SyntaxError struct {
	Offset int    // The offset in the input where the error was detected.
	Err    error  // One of the Err* sentinels.
	Msg    string // Optional detail.
}

func newSyntaxError(offset int, err error, format string, args ...interface{}) *SyntaxError {
	e := &SyntaxError{Offset: offset, Err: err}
	if format != "" {
		e.Msg = fmt.Sprintf(format, args...)
	}
	return e
}

func (e *SyntaxError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s at offset %d", e.Err, e.Offset)
	}
	return fmt.Sprintf("%s at offset %d: %s", e.Err, e.Offset, e.Msg)
}

// Unwrap returns the sentinel error.
func (e *SyntaxError) Unwrap() error { return e.Err }

// UnmarshalTypeError describes a bencoded value that was not appropriate
// for a Go value of a specific type.
type UnmarshalTypeError struct {
	Value  string // The bencode kind, such as "integer" or "dict".
	Type   reflect.Type
	Offset int
}

func (e *UnmarshalTypeError) Error() string {
	return fmt.Sprintf("bencode: cannot unmarshal %s into Go value of type %s at offset %d",
		e.Value, e.Type, e.Offset)
}

// MarshalerError wraps an error returned by a Marshaler or Unmarshaler.
type MarshalerError struct {
	Type reflect.Type
	Err  error
}

func (e *MarshalerError) Error() string {
	return fmt.Sprintf("bencode: error calling method of type %s: %s", e.Type, e.Err)
}

func (e *MarshalerError) Unwrap() error { return e.Err }

// UnsupportedTypeError is returned by Encoder when encoding a type
// that cannot be represented in bencode.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return "bencode: unsupported type: " + e.Type.String()
}
