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

// Package helper provides some small helper functions shared by packages.
package helper

import (
	crand "crypto/rand"
	"math/rand"
)

// RandomBytes fills b with the random bytes, falling back to math/rand
// if crypto/rand cannot fill all of them.
func RandomBytes(b []byte) {
	if n, _ := crand.Read(b); n < len(b) {
		for ; n < len(b); n++ {
			b[n] = byte(rand.Intn(256))
		}
	}
}

// RandomString returns a random string of size bytes.
func RandomString(size int) string {
	bs := make([]byte, size)
	RandomBytes(bs)
	return string(bs)
}

// ContainsString reports whether s is in ss.
func ContainsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
