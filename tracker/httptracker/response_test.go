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

package httptracker

import (
	"errors"
	"testing"

	"github.com/xgfone/bencoding/bencode"
)

func TestResponseFailureReason(t *testing.T) {
	resp, err := ParseResponse([]byte("d14:failure reason15:torrent is gonee"))
	if err != nil {
		t.Fatal(err)
	}

	if reason, ok := resp.FailureReason(); !ok {
		t.Errorf("expect the failure reason")
	} else if reason != "torrent is gone" {
		t.Errorf("expect 'torrent is gone', but got '%s'", reason)
	}

	var ferr FailureError
	if err := resp.Err(); !errors.As(err, &ferr) || ferr.Reason != "torrent is gone" {
		t.Errorf("expect FailureError, but got %v", err)
	}
}

func TestResponseNoFailure(t *testing.T) {
	data := "d8:completei5e10:incompletei3e8:intervali1800e12:min intervali60e" +
		"5:peers0:10:tracker id3:abc15:warning message4:slowe"

	resp, err := ParseResponse([]byte(data))
	if err != nil {
		t.Fatal(err)
	}

	if reason, ok := resp.FailureReason(); ok {
		t.Errorf("unexpected failure reason '%s'", reason)
	} else if err := resp.Err(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	check := func(name string, get func() (int64, bool), expect int64) {
		if v, ok := get(); !ok || v != expect {
			t.Errorf("%s: expect %d, but got %d", name, expect, v)
		}
	}
	check("interval", resp.Interval, 1800)
	check("min interval", resp.MinInterval, 60)
	check("complete", resp.Complete, 5)
	check("incomplete", resp.Incomplete, 3)

	if id, ok := resp.TrackerID(); !ok || id != "abc" {
		t.Errorf("expect tracker id 'abc', but got '%s'", id)
	}
	if msg, ok := resp.WarningMessage(); !ok || msg != "slow" {
		t.Errorf("expect warning 'slow', but got '%s'", msg)
	}
	if !resp.Has(KeyPeers) || resp.Has(KeyPeers6) {
		t.Errorf("unexpected peers keys: %v", resp.Keys())
	}
}

func TestResponseInvalid(t *testing.T) {
	if _, err := ParseResponse([]byte("l14:failure reasone")); !errors.Is(err, ErrNotDict) {
		t.Errorf("expect ErrNotDict, but got %v", err)
	}

	if _, err := ParseResponse([]byte("d14:failure reason")); !errors.Is(err, bencode.ErrUnexpectedEOF) {
		t.Errorf("expect ErrUnexpectedEOF, but got %v", err)
	}

	if _, err := ParseResponse([]byte("di1e1:xe")); !errors.Is(err, bencode.ErrInvalidKeyType) {
		t.Errorf("expect ErrInvalidKeyType, but got %v", err)
	}
}

func TestResponseFailureReasonNotUTF8(t *testing.T) {
	resp, err := ParseResponse([]byte("d14:failure reason3:a\xffbe"))
	if err != nil {
		t.Fatal(err)
	}

	if reason, ok := resp.FailureReason(); !ok || reason != "a\uFFFDb" {
		t.Errorf("expect 'a\\uFFFDb', but got %q", reason)
	}

	if raw, ok := resp.GetString(KeyFailureReason); !ok || string(raw) != "a\xffb" {
		t.Errorf("expect the raw reason 'a\\xffb', but got %q", raw)
	}
}

func TestResponseNonStringFailureReason(t *testing.T) {
	resp, err := ParseResponse([]byte("d14:failure reasoni1ee"))
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := resp.FailureReason(); ok {
		t.Errorf("expect no failure reason for the integer value")
	}
}
