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
	"fmt"
	"io"
	"math/big"
	"reflect"
	"sort"
	"strconv"
)

// Marshaler is the interface implemented by types that can marshal
// themselves into a valid bencoded value.
type Marshaler interface {
	MarshalBencode() ([]byte, error)
}

var marshalerType = reflect.TypeOf((*Marshaler)(nil)).Elem()

// Encoder writes the bencoded values to an output stream.
//
// The output is canonical: the keys of the dicts, maps and structs
// are sorted by their raw bytes.
type Encoder struct {
	w   io.Writer
	buf []byte
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes the bencoded form of v to the stream.
//
// The mapping between the Go values and the bencode values:
//
//	int*, uint*, big.Int => integer
//	bool                 => integer, i1e or i0e
//	string, []byte, [N]byte => string
//	slice, array         => list
//	map, struct          => dict
//
// Value, Marshaler and the pointers to them encode themselves. The nil
// pointers and interfaces in the struct fields are omitted, and so are
// the empty fields with the option "omitempty".
func (e *Encoder) Encode(v interface{}) (err error) {
	b, err := appendValue(e.buf[:0], reflect.ValueOf(v))
	if err == nil {
		e.buf = b
		_, err = e.w.Write(b)
	}
	return
}

// EncodeBytes returns the bencoded form of v.
func EncodeBytes(v interface{}) ([]byte, error) {
	return appendValue(nil, reflect.ValueOf(v))
}

// EncodeString is the same as EncodeBytes, but returns a string.
func EncodeString(v interface{}) (string, error) {
	b, err := appendValue(nil, reflect.ValueOf(v))
	return string(b), err
}

func appendValue(b []byte, v reflect.Value) ([]byte, error) {
	if !v.IsValid() {
		return b, fmt.Errorf("%w: cannot encode nil", ErrInvalidArgument)
	}

	if v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return b, fmt.Errorf("%w: cannot encode nil %s", ErrInvalidArgument, v.Type())
		}
	}

	if v.Type().Implements(marshalerType) {
		return appendMarshaler(b, v.Interface().(Marshaler), v.Type())
	} else if v.Kind() != reflect.Ptr && v.CanAddr() &&
		reflect.PointerTo(v.Type()).Implements(marshalerType) {
		return appendMarshaler(b, v.Addr().Interface().(Marshaler), v.Type())
	}

	if v.Kind() != reflect.Interface && v.Type().Implements(valueType) {
		return v.Interface().(Value).appendTo(b), nil
	}

	switch v.Kind() {
	case reflect.Interface, reflect.Ptr:
		return appendValue(b, v.Elem())

	case reflect.Bool:
		if v.Bool() {
			return append(b, "i1e"...), nil
		}
		return append(b, "i0e"...), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b = append(b, 'i')
		b = strconv.AppendInt(b, v.Int(), 10)
		return append(b, 'e'), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		b = append(b, 'i')
		b = strconv.AppendUint(b, v.Uint(), 10)
		return append(b, 'e'), nil

	case reflect.String:
		return appendString(b, v.String()), nil

	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return appendBytes(b, v.Bytes()), nil
		}
		return appendList(b, v)

	case reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return appendBytes(b, arrayBytes(v)), nil
		}
		return appendList(b, v)

	case reflect.Map:
		return appendMap(b, v)

	case reflect.Struct:
		if v.Type() == bigIntType {
			bi := v.Interface().(big.Int)
			b = append(b, 'i')
			b = bi.Append(b, 10)
			return append(b, 'e'), nil
		}
		return appendStruct(b, v)

	default:
		return b, &UnsupportedTypeError{Type: v.Type()}
	}
}

func appendMarshaler(b []byte, m Marshaler, t reflect.Type) ([]byte, error) {
	data, err := m.MarshalBencode()
	if err != nil {
		return b, &MarshalerError{Type: t, Err: err}
	}
	return append(b, data...), nil
}

func appendString(b []byte, s string) []byte {
	b = strconv.AppendInt(b, int64(len(s)), 10)
	b = append(b, ':')
	return append(b, s...)
}

func appendBytes(b []byte, s []byte) []byte {
	b = strconv.AppendInt(b, int64(len(s)), 10)
	b = append(b, ':')
	return append(b, s...)
}

func arrayBytes(v reflect.Value) []byte {
	bs := make([]byte, v.Len())
	reflect.Copy(reflect.ValueOf(bs), v)
	return bs
}

func appendList(b []byte, v reflect.Value) (_ []byte, err error) {
	b = append(b, 'l')
	for i, _len := 0, v.Len(); i < _len; i++ {
		if b, err = appendValue(b, v.Index(i)); err != nil {
			return
		}
	}
	return append(b, 'e'), nil
}

type mapEntry struct {
	key   string
	value reflect.Value
}

func appendMap(b []byte, v reflect.Value) (_ []byte, err error) {
	entries := make([]mapEntry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		key, err := mapKey(iter.Key())
		if err != nil {
			return b, err
		}
		entries = append(entries, mapEntry{key: key, value: iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	b = append(b, 'd')
	for _, e := range entries {
		b = appendString(b, e.key)
		if b, err = appendValue(b, e.value); err != nil {
			return
		}
	}
	return append(b, 'e'), nil
}

// mapKey returns the raw bytes of a map key, which must be a string,
// a byte array, or a Marshaler producing a bencoded string.
func mapKey(k reflect.Value) (string, error) {
	if k.Type().Implements(marshalerType) {
		data, err := k.Interface().(Marshaler).MarshalBencode()
		if err != nil {
			return "", &MarshalerError{Type: k.Type(), Err: err}
		}

		v, err := DecodeValue(data)
		if err != nil {
			return "", &MarshalerError{Type: k.Type(), Err: err}
		}

		s, ok := v.(String)
		if !ok {
			return "", &MarshalerError{Type: k.Type(), Err: ErrInvalidKeyType}
		}
		return string(s), nil
	}

	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Array:
		if k.Type().Elem().Kind() == reflect.Uint8 {
			return string(arrayBytes(k)), nil
		}
	}

	return "", &UnsupportedTypeError{Type: k.Type()}
}

func appendStruct(b []byte, v reflect.Value) (_ []byte, err error) {
	b = append(b, 'd')
	for _, f := range cachedTypeFields(v.Type()).list {
		fv := v.FieldByIndex(f.index)
		switch fv.Kind() {
		case reflect.Ptr, reflect.Interface:
			if fv.IsNil() {
				continue
			}
		}

		if f.omitEmpty && isEmptyValue(fv) {
			continue
		}

		b = appendString(b, f.name)
		if b, err = appendValue(b, fv); err != nil {
			return
		}
	}
	return append(b, 'e'), nil
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array:
		return v.IsZero()
	case reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	case reflect.Struct:
		if v.Type() == integerType {
			return v.Interface().(Integer).Sign() == 0
		} else if v.Type() == listType {
			return v.Interface().(List).Len() == 0
		} else if v.Type() == dictType {
			return v.Interface().(Dict).Len() == 0
		}
	}
	return false
}

var (
	integerType = reflect.TypeOf(Integer{})
	listType    = reflect.TypeOf(List{})
	dictType    = reflect.TypeOf(Dict{})
)
