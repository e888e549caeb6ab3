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

package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/xgfone/bencoding/bencode"
)

// maxTextLen is the maximum length of the string printed as text.
const maxTextLen = 256

func printValue(w io.Writer, v bencode.Value, indent int) {
	printEntry(w, "", v, indent)
}

func printEntry(w io.Writer, label string, v bencode.Value, indent int) {
	prefix := strings.Repeat("  ", indent) + label
	switch v := v.(type) {
	case bencode.Integer:
		fmt.Fprintf(w, "%s%s\n", prefix, v.String())

	case bencode.String:
		fmt.Fprintf(w, "%s%s\n", prefix, formatString(v))

	case bencode.List:
		fmt.Fprintf(w, "%slist(%d)\n", prefix, v.Len())
		for i, _len := 0, v.Len(); i < _len; i++ {
			printEntry(w, "", v.Index(i), indent+1)
		}

	case bencode.Dict:
		fmt.Fprintf(w, "%sdict(%d)\n", prefix, v.Len())
		v.Range(func(key bencode.String, value bencode.Value) bool {
			printEntry(w, formatString(key)+": ", value, indent+1)
			return true
		})
	}
}

// formatString returns the quoted text if s is printable UTF-8,
// or the hex form with the length.
func formatString(s bencode.String) string {
	if len(s) <= maxTextLen && isText(string(s)) {
		return strconv.Quote(string(s))
	}

	if len(s) > maxTextLen {
		return fmt.Sprintf("<%d bytes> %s...", len(s), hex.EncodeToString(s.Bytes()[:32]))
	}
	return fmt.Sprintf("<%d bytes> %s", len(s), hex.EncodeToString(s.Bytes()))
}

func isText(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
