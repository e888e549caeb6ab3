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

// Package httptracker implements the client side of the tracker protocol
// based on HTTP/HTTPS, and the types to decode and encode the bencoded
// tracker responses.
package httptracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/xgfone/bencoding/bencode"
	"github.com/xgfone/bencoding/metainfo"
)

// Predefine some announce events.
//
// BEP 3
const (
	None      uint32 = iota
	Completed        // The local peer just completed the torrent.
	Started          // The local peer has just resumed this torrent.
	Stopped          // The local peer is leaving the swarm.
)

var eventNames = []string{None: "", Completed: "completed", Started: "started", Stopped: "stopped"}

// EventName returns the name of the announce event used in the query,
// which is empty for None or the unknown event.
func EventName(event uint32) string {
	if int(event) < len(eventNames) {
		return eventNames[event]
	}
	return ""
}

func parseEvent(s string) (uint32, error) {
	for i, name := range eventNames {
		if name == s {
			return uint32(i), nil
		}
	}

	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid announce event '%s'", s)
	}
	return uint32(v), nil
}

// AnnounceRequest is the tracker announce requests.
//
// BEP 3
type AnnounceRequest struct {
	// InfoHash is the sha1 hash of the bencoded form of the info value
	// from the metainfo file.
	InfoHash metainfo.Hash

	// PeerID is the id of the downloader, which is generated
	// at random at the start of a new download.
	PeerID metainfo.Hash

	Uploaded   int64 // The total amount uploaded so far.
	Downloaded int64 // The total amount downloaded so far.

	// Left is the number of bytes this peer still has to download.
	Left int64

	// Port is the port that this peer is listening on.
	Port uint16

	// IP is the ip or DNS name which this peer is at.
	//
	// Optional.
	IP string

	// Event is one of None, Completed, Started and Stopped.
	//
	// Optional.
	Event uint32

	// Compact indicates whether it hopes the tracker to return
	// the compact peer lists.
	//
	// Optional, BEP 23.
	Compact bool

	// NumWant is the number of peers that the client would like to receive
	// from the tracker. If 0, the tracker uses its default, typically 50.
	//
	// Optional.
	NumWant int32

	// TrackerID is the tracker id returned by the previous announce.
	//
	// Optional.
	TrackerID string

	Key int32 // Optional
}

// ToQuery converts the Request to URL Query.
func (r AnnounceRequest) ToQuery() (vs url.Values) {
	vs = make(url.Values, 10)
	vs.Set("info_hash", r.InfoHash.BytesString())
	vs.Set("peer_id", r.PeerID.BytesString())
	vs.Set("uploaded", strconv.FormatInt(r.Uploaded, 10))
	vs.Set("downloaded", strconv.FormatInt(r.Downloaded, 10))
	vs.Set("left", strconv.FormatInt(r.Left, 10))

	if r.IP != "" {
		vs.Set("ip", r.IP)
	}
	if event := EventName(r.Event); event != "" {
		vs.Set("event", event)
	}
	if r.Port > 0 {
		vs.Set("port", strconv.FormatUint(uint64(r.Port), 10))
	}
	if r.NumWant != 0 {
		vs.Set("numwant", strconv.FormatInt(int64(r.NumWant), 10))
	}
	if r.Key != 0 {
		vs.Set("key", strconv.FormatInt(int64(r.Key), 10))
	}
	if r.TrackerID != "" {
		vs.Set("trackerid", r.TrackerID)
	}

	// BEP 23
	if r.Compact {
		vs.Set("compact", "1")
	} else {
		vs.Set("compact", "0")
	}

	return
}

// FromQuery converts URL Query to itself.
func (r *AnnounceRequest) FromQuery(vs url.Values) (err error) {
	if err = r.InfoHash.FromString(vs.Get("info_hash")); err != nil {
		return
	}

	if err = r.PeerID.FromString(vs.Get("peer_id")); err != nil {
		return
	}

	if r.Uploaded, err = strconv.ParseInt(vs.Get("uploaded"), 10, 64); err != nil {
		return
	}
	if r.Downloaded, err = strconv.ParseInt(vs.Get("downloaded"), 10, 64); err != nil {
		return
	}
	if r.Left, err = strconv.ParseInt(vs.Get("left"), 10, 64); err != nil {
		return
	}

	if s := vs.Get("event"); s != "" {
		if r.Event, err = parseEvent(s); err != nil {
			return
		}
	}

	if s := vs.Get("port"); s != "" {
		v, err := strconv.ParseUint(s, 10, 16)
		if err != nil {
			return err
		}
		r.Port = uint16(v)
	}

	if s := vs.Get("numwant"); s != "" {
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return err
		}
		r.NumWant = int32(v)
	}

	if s := vs.Get("key"); s != "" {
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return err
		}
		r.Key = int32(v)
	}

	r.IP = vs.Get("ip")
	r.TrackerID = vs.Get("trackerid")
	switch vs.Get("compact") {
	case "1":
		r.Compact = true
	case "0":
		r.Compact = false
	}

	return
}

// AnnounceResponse is a announce response.
type AnnounceResponse struct {
	FailureReason  string `bencode:"failure reason,omitempty"`
	WarningMessage string `bencode:"warning message,omitempty"`

	// Interval is the seconds the downloader should wait before next rerequest.
	Interval uint32 `bencode:"interval,omitempty"` // BEP 3

	// MinInterval is the minimum announce interval in seconds.
	MinInterval uint32 `bencode:"min interval,omitempty"`

	// Peers is the list of the peers.
	Peers Peers `bencode:"peers,omitempty"` // BEP 3, BEP 23

	// Peers6 is only used for ipv6 in the compact case.
	Peers6 Peers6 `bencode:"peers6,omitempty"` // BEP 7

	// Complete is the number of peers with the entire file.
	Complete uint32 `bencode:"complete,omitempty"`
	// Incomplete is the number of non-seeder peers.
	Incomplete uint32 `bencode:"incomplete,omitempty"`
	// TrackerID is that the client should send back on its next announcements.
	// If absent and a previous announce sent a tracker id,
	// do not discard the old value; keep using it.
	TrackerID string `bencode:"tracker id,omitempty"`
}

// ScrapeResponseResult is the result of the scraped file.
type ScrapeResponseResult struct {
	// Complete is the number of active peers that have completed downloading.
	Complete uint32 `bencode:"complete"` // BEP 48

	// Incomplete is the number of active peers that have not completed downloading.
	Incomplete uint32 `bencode:"incomplete"` // BEP 48

	// The number of peers that have ever completed downloading.
	Downloaded uint32 `bencode:"downloaded"` // BEP 48
}

// ScrapeResponse represents a Scrape response.
//
// BEP 48
type ScrapeResponse struct {
	FailureReason string `bencode:"failure reason,omitempty"`

	Files map[metainfo.Hash]ScrapeResponseResult `bencode:"files,omitempty"`
}

// DecodeFrom reads the []byte data from r and decodes them to sr by bencode.
//
// r may be the body of the response from the http client.
func (sr *ScrapeResponse) DecodeFrom(r io.Reader) (err error) {
	data, err := io.ReadAll(r)
	if err == nil {
		err = bencode.DecodeBytes(data, sr)
	}
	return
}

// EncodeTo encodes the response to []byte by bencode and write the result into w.
//
// w may be http.ResponseWriter.
func (sr ScrapeResponse) EncodeTo(w io.Writer) (err error) {
	return bencode.NewEncoder(w).Encode(sr)
}

// DefaultMaxResponseSize is the default maximum size of the tracker response.
const DefaultMaxResponseSize = 1024 * 1024

// ErrResponseTooLarge is returned when the tracker response exceeds
// the maximum size.
var ErrResponseTooLarge = errors.New("tracker response is too large")

// Client represents a tracker client based on HTTP/HTTPS.
type Client struct {
	Client      *http.Client
	ID          metainfo.Hash
	AnnounceURL string
	ScrapeURL   string

	// MaxResponseSize is the maximum size of the response body.
	//
	// Default: DefaultMaxResponseSize
	MaxResponseSize int64

	// ErrorLog is used to log the warning message of the tracker.
	//
	// Default: log.Printf
	ErrorLog func(format string, args ...interface{})
}

// NewClient returns a new HTTPClient.
//
// scrapeURL may be empty, which will replace the last "announce"
// in announceURL with "scrape" to generate the scrapeURL.
func NewClient(announceURL, scrapeURL string) *Client {
	if scrapeURL == "" {
		scrapeURL = ScrapeURL(announceURL)
	}
	id := metainfo.NewRandomHash()
	return &Client{AnnounceURL: announceURL, ScrapeURL: scrapeURL, ID: id}
}

// ScrapeURL converts the announce url to the scrape url by replacing
// the last "announce" in the path with "scrape", which is returned as is
// if the last path element does not start with "announce".
func ScrapeURL(announceURL string) string {
	slash := strings.LastIndexByte(announceURL, '/')
	if slash < 0 || !strings.HasPrefix(announceURL[slash+1:], "announce") {
		return announceURL
	}
	return announceURL[:slash+1] + "scrape" + announceURL[slash+1+len("announce"):]
}

// Close closes the client, which does nothing at present.
func (t *Client) Close() error   { return nil }
func (t *Client) String() string { return t.AnnounceURL }

func (t *Client) errorf(format string, args ...interface{}) {
	if t.ErrorLog == nil {
		log.Printf(format, args...)
	} else {
		t.ErrorLog(format, args...)
	}
}

func (t *Client) get(c context.Context, u string, vs url.Values) (data []byte, err error) {
	var url string
	if strings.IndexByte(u, '?') < 0 {
		url = fmt.Sprintf("%s?%s", u, vs.Encode())
	} else {
		url = fmt.Sprintf("%s&%s", u, vs.Encode())
	}

	req, err := http.NewRequestWithContext(c, http.MethodGet, url, nil)
	if err != nil {
		return
	}

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	maxSize := t.MaxResponseSize
	if maxSize <= 0 {
		maxSize = DefaultMaxResponseSize
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, maxSize+1))
	if err != nil {
		return nil, err
	} else if int64(len(data)) > maxSize {
		return nil, ErrResponseTooLarge
	}

	// The tracker may respond with the failure reason and a non-200 code.
	if resp.StatusCode != http.StatusOK && len(data) == 0 {
		return nil, fmt.Errorf("tracker responded with status code %d", resp.StatusCode)
	}

	return
}

func (t *Client) send(c context.Context, u string, vs url.Values, r interface{}) (err error) {
	data, err := t.get(c, u, vs)
	if err != nil {
		return
	}

	resp, err := ParseResponse(data)
	if err != nil {
		return fmt.Errorf("invalid tracker response: %w", err)
	} else if err = resp.Err(); err != nil {
		return
	} else if msg, ok := resp.WarningMessage(); ok {
		t.errorf("tracker '%s' warning: %s", u, msg)
	}

	return bencode.DecodeBytes(data, r)
}

// Announce sends a Announce request to the tracker.
//
// If the tracker responds with the failure reason, return a FailureError.
func (t *Client) Announce(c context.Context, req AnnounceRequest) (resp AnnounceResponse, err error) {
	if req.PeerID.IsZero() {
		if t.ID.IsZero() {
			req.PeerID = metainfo.NewRandomHash()
		} else {
			req.PeerID = t.ID
		}
	}

	err = t.send(c, t.AnnounceURL, req.ToQuery(), &resp)
	return
}

// Scrape sends a Scrape request to the tracker.
//
// If the tracker responds with the failure reason, return a FailureError.
func (t *Client) Scrape(c context.Context, infohashes []metainfo.Hash) (resp ScrapeResponse, err error) {
	hs := make([]string, len(infohashes))
	for i, h := range infohashes {
		hs[i] = h.BytesString()
	}

	err = t.send(c, t.ScrapeURL, url.Values{"info_hash": hs}, &resp)
	return
}
