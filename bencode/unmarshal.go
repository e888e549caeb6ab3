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
	"math/big"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Unmarshaler is the interface implemented by types that can unmarshal
// a bencoded value of themselves.
//
// The argument is the complete encoding of the value. It may alias the
// input, so it must be copied if retained after returning.
type Unmarshaler interface {
	UnmarshalBencode([]byte) error
}

var (
	valueType  = reflect.TypeOf((*Value)(nil)).Elem()
	bigIntType = reflect.TypeOf(big.Int{})
)

// DecodeBytes decodes the first bencoded value in b into v,
// which must be a non-nil pointer. The bytes after the value are ignored.
func DecodeBytes(b []byte, v interface{}) error {
	return NewDecoder(b).DecodeTo(v)
}

// DecodeString is the same as DecodeBytes, but decodes from a string.
func DecodeString(s string, v interface{}) error {
	return DecodeBytes([]byte(s), v)
}

// DecodeTo decodes the value starting at the cursor into v,
// which must be a non-nil pointer.
//
// The mapping between the bencode values and the Go values:
//
//	integer => int*, uint*, bool, big.Int
//	string  => string, []byte, [N]byte
//	list    => slice, array
//	dict    => map, struct
//
// An empty interface receives the form returned by Interface, and
// a Value receives the decoded tree. The struct fields are matched by
// the name in the "bencode" tag, or the field name if missing, and the
// keys without a matched field are skipped.
func (d *Decoder) DecodeTo(v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("%w: decoding target must be a non-nil pointer, but got %T",
			ErrInvalidArgument, v)
	}
	return d.unmarshal(rv.Elem(), 0)
}

// indirect allocates the nil pointers on the way down to a non-pointer
// value, and stops early if it meets an Unmarshaler.
func indirect(v reflect.Value) (Unmarshaler, reflect.Value) {
	for {
		if v.Kind() != reflect.Ptr && v.CanAddr() {
			if u, ok := v.Addr().Interface().(Unmarshaler); ok {
				return u, reflect.Value{}
			}
		}

		if v.Kind() != reflect.Ptr {
			return nil, v
		}

		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		v = v.Elem()
	}
}

func (d *Decoder) typeError(kind string, t reflect.Type, offset int) error {
	return &UnmarshalTypeError{Value: kind, Type: t, Offset: offset}
}

func (d *Decoder) unmarshal(rv reflect.Value, depth int) error {
	u, rv := indirect(rv)
	if u != nil {
		raw, err := d.rawValue(depth)
		if err != nil {
			return err
		}
		if err = u.UnmarshalBencode(raw); err != nil {
			return &MarshalerError{Type: reflect.TypeOf(u), Err: err}
		}
		return nil
	}

	if rv.Kind() == reflect.Interface || rv.Type().Implements(valueType) {
		return d.unmarshalValue(rv, depth)
	}

	c, ok := d.peek()
	if !ok {
		return newSyntaxError(d.off, ErrUnexpectedEOF, "")
	}

	switch {
	case c == 'i':
		return d.unmarshalInteger(rv)
	case c == 'l':
		return d.unmarshalList(rv, depth+1)
	case c == 'd':
		return d.unmarshalDict(rv, depth+1)
	case c >= '0' && c <= '9':
		return d.unmarshalString(rv)
	case c == 'e':
		return newSyntaxError(d.off, ErrInvalidToken, "unexpected end marker")
	default:
		return newSyntaxError(d.off, ErrInvalidToken, "unexpected byte %q", c)
	}
}

func (d *Decoder) unmarshalValue(rv reflect.Value, depth int) error {
	offset := d.off
	v, err := d.decode(depth)
	if err != nil {
		return err
	}

	if rv.Kind() == reflect.Interface && rv.NumMethod() == 0 {
		rv.Set(reflect.ValueOf(Interface(v)))
		return nil
	}

	if vv := reflect.ValueOf(v); vv.Type().AssignableTo(rv.Type()) {
		rv.Set(vv)
		return nil
	}
	return d.typeError(v.Kind().String(), rv.Type(), offset)
}

func (d *Decoder) unmarshalInteger(rv reflect.Value) error {
	offset := d.off
	v, err := d.decodeInteger()
	if err != nil {
		return err
	}
	i := v.(Integer)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := i.Int64()
		if !ok || rv.OverflowInt(n) {
			return d.typeError("integer "+i.String(), rv.Type(), offset)
		}
		rv.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, ok := i.Uint64()
		if !ok || rv.OverflowUint(n) {
			return d.typeError("integer "+i.String(), rv.Type(), offset)
		}
		rv.SetUint(n)

	case reflect.Bool:
		rv.SetBool(i.Sign() != 0)

	case reflect.Struct:
		if rv.Type() != bigIntType || !rv.CanAddr() {
			return d.typeError("integer", rv.Type(), offset)
		}
		rv.Addr().Interface().(*big.Int).Set(i.Big())

	default:
		return d.typeError("integer", rv.Type(), offset)
	}

	return nil
}

func (d *Decoder) unmarshalString(rv reflect.Value) error {
	offset := d.off
	b, err := d.readString()
	if err != nil {
		return err
	}

	switch rv.Kind() {
	case reflect.String:
		rv.SetString(string(b))

	case reflect.Slice:
		if rv.Type().Elem().Kind() != reflect.Uint8 {
			return d.typeError("string", rv.Type(), offset)
		}
		rv.SetBytes(append([]byte{}, b...))

	case reflect.Array:
		if rv.Type().Elem().Kind() != reflect.Uint8 {
			return d.typeError("string", rv.Type(), offset)
		} else if rv.Len() != len(b) {
			return d.typeError(fmt.Sprintf("string of length %d", len(b)), rv.Type(), offset)
		}
		reflect.Copy(rv, reflect.ValueOf(b))

	default:
		return d.typeError("string", rv.Type(), offset)
	}

	return nil
}

func (d *Decoder) unmarshalList(rv reflect.Value, depth int) error {
	if depth > d.maxDepth() {
		return newSyntaxError(d.off, ErrMaxDepth, "")
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
	default:
		return d.typeError("list", rv.Type(), d.off)
	}

	d.consume() // 'l'
	isSlice := rv.Kind() == reflect.Slice
	if isSlice {
		rv.Set(reflect.MakeSlice(rv.Type(), 0, 0))
	}

	for i := 0; ; i++ {
		c, ok := d.peek()
		if !ok {
			return newSyntaxError(d.off, ErrUnexpectedEOF, "unterminated list")
		} else if c == 'e' {
			d.consume()
			if !isSlice {
				zero := reflect.Zero(rv.Type().Elem())
				for ; i < rv.Len(); i++ {
					rv.Index(i).Set(zero)
				}
			}
			return nil
		}

		if isSlice {
			rv.Set(reflect.Append(rv, reflect.Zero(rv.Type().Elem())))
		} else if i >= rv.Len() {
			// The array is full, so discard the rest.
			if _, err := d.rawValue(depth); err != nil {
				return err
			}
			continue
		}

		if err := d.unmarshal(rv.Index(i), depth); err != nil {
			return err
		}
	}
}

func (d *Decoder) unmarshalDict(rv reflect.Value, depth int) error {
	if depth > d.maxDepth() {
		return newSyntaxError(d.off, ErrMaxDepth, "")
	}

	switch rv.Kind() {
	case reflect.Map:
		return d.unmarshalMap(rv, depth)
	case reflect.Struct:
		return d.unmarshalStruct(rv, depth)
	default:
		return d.typeError("dict", rv.Type(), d.off)
	}
}

// nextKey returns the raw encoded key, or nil at the end of the dict.
func (d *Decoder) nextKey(depth int) (raw []byte, end bool, err error) {
	c, ok := d.peek()
	if !ok {
		return nil, false, newSyntaxError(d.off, ErrUnexpectedEOF, "unterminated dict")
	} else if c == 'e' {
		d.consume()
		return nil, true, nil
	}

	offset := d.off
	if c < '0' || c > '9' {
		k, err := d.decode(depth)
		if err != nil {
			return nil, false, err
		}
		return nil, false, newSyntaxError(offset, ErrInvalidKeyType, "got %s", k.Kind())
	}

	raw, err = d.rawValue(depth)
	return
}

func (d *Decoder) unmarshalMap(rv reflect.Value, depth int) error {
	t := rv.Type()
	if rv.IsNil() {
		rv.Set(reflect.MakeMap(t))
	}

	d.consume() // 'd'
	for {
		rawKey, end, err := d.nextKey(depth)
		if err != nil {
			return err
		} else if end {
			return nil
		}

		key := reflect.New(t.Key()).Elem()
		kd := &Decoder{MaxDepth: d.MaxDepth, data: rawKey}
		if err = kd.unmarshal(key, depth); err != nil {
			return err
		}

		elem := reflect.New(t.Elem()).Elem()
		if err = d.unmarshal(elem, depth); err != nil {
			return err
		}
		rv.SetMapIndex(key, elem)
	}
}

func (d *Decoder) unmarshalStruct(rv reflect.Value, depth int) error {
	if rv.Type() == bigIntType {
		return d.typeError("dict", rv.Type(), d.off)
	}

	fields := cachedTypeFields(rv.Type())
	d.consume() // 'd'
	for {
		rawKey, end, err := d.nextKey(depth)
		if err != nil {
			return err
		} else if end {
			return nil
		}

		key, _ := NewDecoder(rawKey).readString()
		f, ok := fields.byName[string(key)]
		if !ok {
			if _, err = d.rawValue(depth); err != nil {
				return err
			}
			continue
		}

		if err = d.unmarshal(rv.FieldByIndex(f.index), depth); err != nil {
			return err
		}
	}
}

/// >>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>

type field struct {
	name      string
	index     []int
	omitEmpty bool
}

type structFields struct {
	list   []*field // Sorted by name.
	byName map[string]*field
}

var fieldCache sync.Map // map[reflect.Type]*structFields

func cachedTypeFields(t reflect.Type) *structFields {
	if f, ok := fieldCache.Load(t); ok {
		return f.(*structFields)
	}
	f, _ := fieldCache.LoadOrStore(t, typeFields(t))
	return f.(*structFields)
}

func typeFields(t reflect.Type) *structFields {
	var fields []*field
	collectFields(t, nil, &fields)

	// For the same name, the shallower field wins, then the first one.
	sort.SliceStable(fields, func(i, j int) bool {
		if fields[i].name != fields[j].name {
			return fields[i].name < fields[j].name
		}
		return len(fields[i].index) < len(fields[j].index)
	})

	sf := &structFields{byName: make(map[string]*field, len(fields))}
	for _, f := range fields {
		if _, ok := sf.byName[f.name]; !ok {
			sf.byName[f.name] = f
			sf.list = append(sf.list, f)
		}
	}
	return sf
}

func collectFields(t reflect.Type, index []int, fields *[]*field) {
	for i, _len := 0, t.NumField(); i < _len; i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("bencode")
		if tag == "-" {
			continue
		}

		name, opts := parseTag(tag)
		fieldIndex := make([]int, len(index)+1)
		copy(fieldIndex, index)
		fieldIndex[len(index)] = i

		if sf.Anonymous && name == "" && sf.Type.Kind() == reflect.Struct {
			collectFields(sf.Type, fieldIndex, fields)
			continue
		}

		if sf.PkgPath != "" {
			continue
		}

		if name == "" {
			name = sf.Name
		}

		*fields = append(*fields, &field{
			name:      name,
			index:     fieldIndex,
			omitEmpty: opts.contains("omitempty"),
		})
	}
}

type tagOptions []string

func (opts tagOptions) contains(name string) bool {
	for _, opt := range opts {
		if opt == name {
			return true
		}
	}
	return false
}

func parseTag(tag string) (string, tagOptions) {
	if tag == "" {
		return "", nil
	}
	parts := strings.Split(tag, ",")
	return parts[0], tagOptions(parts[1:])
}
