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
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xgfone/bencoding/bencode"
)

// Some keys of the tracker response.
const (
	KeyFailureReason  = "failure reason"  // BEP 3
	KeyWarningMessage = "warning message" // Extension
	KeyInterval       = "interval"        // BEP 3
	KeyMinInterval    = "min interval"    // Extension
	KeyTrackerID      = "tracker id"      // Extension
	KeyComplete       = "complete"        // Extension
	KeyIncomplete     = "incomplete"      // Extension
	KeyPeers          = "peers"           // BEP 3, BEP 23
	KeyPeers6         = "peers6"          // BEP 7
)

// ErrNotDict is returned when the root of the tracker response
// is not a dictionary.
var ErrNotDict = errors.New("tracker response is not a dictionary")

// FailureError is returned by the client when the tracker responds
// with the failure reason.
type FailureError struct {
	Reason string
}

func (e FailureError) Error() string {
	return fmt.Sprintf("tracker failure: %s", e.Reason)
}

// Response is the decoded tracker response, which reads the known keys
// from the dictionary but does not validate which keys must exist.
type Response struct {
	bencode.Dict
}

// ParseResponse decodes the bencoded tracker response, the root of which
// must be a dictionary. The bytes after the dictionary are ignored.
func ParseResponse(b []byte) (Response, error) {
	v, err := bencode.NewDecoder(b).Decode()
	if err != nil {
		return Response{}, err
	}

	dict, ok := v.(bencode.Dict)
	if !ok {
		return Response{}, fmt.Errorf("%w: got %s", ErrNotDict, v.Kind())
	}
	return Response{Dict: dict}, nil
}

// text returns the string value of key as UTF-8 text, the invalid bytes
// of which are replaced with utf8.RuneError.
func (r Response) text(key string) (string, bool) {
	s, ok := r.GetString(key)
	if !ok {
		return "", false
	}
	return strings.ToValidUTF8(string(s), string(utf8.RuneError)), true
}

func (r Response) integer(key string) (int64, bool) {
	i, ok := r.GetInteger(key)
	if !ok {
		return 0, false
	}
	return i.Int64()
}

// FailureReason returns the human-readable reason why the request failed.
//
// If the key is absent or not a string, return ("", false),
// which means no failure. The invalid UTF-8 bytes of the reason are
// replaced with U+FFFD, so it may differ from the raw bytes, which are
// still available by r.GetString(KeyFailureReason).
func (r Response) FailureReason() (string, bool) { return r.text(KeyFailureReason) }

// WarningMessage returns the warning message, which is processed
// like the failure reason but the response is still valid.
func (r Response) WarningMessage() (string, bool) { return r.text(KeyWarningMessage) }

// TrackerID returns the tracker id that the client should send back
// on its next announcements.
func (r Response) TrackerID() (string, bool) {
	s, ok := r.GetString(KeyTrackerID)
	return string(s), ok
}

// Interval returns the seconds that the client should wait between
// the regular announces.
func (r Response) Interval() (int64, bool) { return r.integer(KeyInterval) }

// MinInterval returns the minimum announce interval in seconds.
func (r Response) MinInterval() (int64, bool) { return r.integer(KeyMinInterval) }

// Complete returns the number of the peers with the entire file.
func (r Response) Complete() (int64, bool) { return r.integer(KeyComplete) }

// Incomplete returns the number of the non-seeder peers.
func (r Response) Incomplete() (int64, bool) { return r.integer(KeyIncomplete) }

// Err returns a FailureError if the response carries the failure reason.
// Or, return nil.
func (r Response) Err() error {
	if reason, ok := r.FailureReason(); ok {
		return FailureError{Reason: reason}
	}
	return nil
}
