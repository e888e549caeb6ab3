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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunStdin(t *testing.T) {
	stdout := new(bytes.Buffer)
	input := "d1:bli1e3:xyze1:ai-42e1:c3:\x00\x01\x02e"
	if code := run(nil, strings.NewReader(input), stdout); code != 0 {
		t.Fatalf("expect exit code 0, but got %d", code)
	}

	expect := `# <stdin>
dict(3)
  "b": list(2)
    1
    "xyz"
  "a": -42
  "c": <3 bytes> 000102
`
	if s := stdout.String(); s != expect {
		t.Errorf("expect %q, but got %q", expect, s)
	}
}

func TestRunErrors(t *testing.T) {
	cases := []struct {
		args  []string
		input string
	}{
		{nil, "i-0e"},
		{nil, "d1:ae"},
		{[]string{"-strict"}, "i1ei2e"},
		{[]string{"-max-depth", "2"}, "llleee"},
		{[]string{"-torrent"}, "d8:announce1:ae"},
		{[]string{"-tracker"}, "le"},
		{[]string{"-unknown"}, "i1e"},
	}

	for _, c := range cases {
		if code := run(c.args, strings.NewReader(c.input), new(bytes.Buffer)); code == 0 {
			t.Errorf("%v %q: expect a non-zero exit code", c.args, c.input)
		}
	}

	if code := run(nil, strings.NewReader("i1ei2e"), new(bytes.Buffer)); code != 0 {
		t.Errorf("expect the trailing data to be allowed, but got exit code %d", code)
	}
}

func TestRunTorrentFile(t *testing.T) {
	torrent := "d8:announce19:http://a.b/announce" +
		"4:infod6:lengthi10e4:name3:abc12:piece lengthi16e6:pieces20:01234567890123456789ee"
	filename := filepath.Join(t.TempDir(), "test.torrent")
	if err := os.WriteFile(filename, []byte(torrent), 0o600); err != nil {
		t.Fatal(err)
	}

	stdout := new(bytes.Buffer)
	if code := run([]string{"-torrent", filename}, nil, stdout); code != 0 {
		t.Fatalf("expect exit code 0, but got %d", code)
	}

	out := stdout.String()
	for _, s := range []string{"name: abc\n", "total length: 10\n", "pieces: 1\n", "announce: http://a.b/announce\n", "info hash: "} {
		if !strings.Contains(out, s) {
			t.Errorf("expect the output to contain %q, but got %q", s, out)
		}
	}

	if code := run([]string{filename, filepath.Join(t.TempDir(), "none")}, nil, new(bytes.Buffer)); code != 1 {
		t.Errorf("expect exit code 1 for the missing file, but got %d", code)
	}
}

func TestRunTracker(t *testing.T) {
	stdout := new(bytes.Buffer)
	input := "d8:intervali1800e5:peers6:\x01\x02\x03\x04\x1a\xe1e"
	if code := run([]string{"-tracker"}, strings.NewReader(input), stdout); code != 0 {
		t.Fatalf("expect exit code 0, but got %d", code)
	}

	out := stdout.String()
	for _, s := range []string{"interval: 1800\n", "peer: 1.2.3.4:6881\n"} {
		if !strings.Contains(out, s) {
			t.Errorf("expect the output to contain %q, but got %q", s, out)
		}
	}

	stdout.Reset()
	input = "d14:failure reason7:invalide"
	if code := run([]string{"-tracker"}, strings.NewReader(input), stdout); code != 0 {
		t.Fatalf("expect exit code 0, but got %d", code)
	} else if out := stdout.String(); !strings.Contains(out, "failure reason: invalid\n") {
		t.Errorf("expect the failure reason, but got %q", out)
	}
}
