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

// Package bencode implements decoding and encoding of bencoded objects.
//
// The core is Decoder, a cursor over an immutable byte buffer which parses
// one value at a time into a tree of the four bencode kinds: Integer,
// String, List and Dict. On top of it, DecodeBytes and Encoder map bencoded
// data to and from Go values with an API similar to the encoding/json
// package, using the struct tag "bencode".
//
// Decoding never performs I/O and never coerces malformed input: every
// failure is reported as an error matching one of the Err* sentinels by
// errors.Is, and *SyntaxError carries the offset where it was detected.
package bencode
