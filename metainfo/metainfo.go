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

package metainfo

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xgfone/bencoding/bencode"
	"github.com/xgfone/bencoding/internal/helper"
)

// AnnounceList is a list of the announce tiers.
type AnnounceList [][]string

// Unique returns the list of the unique announces, keeping the tier order.
func (al AnnounceList) Unique() (announces []string) {
	announces = make([]string, 0, len(al))
	for _, tier := range al {
		for _, v := range tier {
			if v != "" && !helper.ContainsString(announces, v) {
				announces = append(announces, v)
			}
		}
	}
	return
}

// URLList represents a list of the web seed urls,
// which may be encoded as a single string or a list of strings.
//
// BEP 19
type URLList []string

var (
	_ bencode.Marshaler   = URLList{}
	_ bencode.Unmarshaler = new(URLList)
)

// FullURL returns the index-th full url.
//
// For the single-file case, name is the "name" of "info".
// For the multi-file case, name is the path "name/path/file"
// from "info" and "files".
func (us URLList) FullURL(index int, name string) (url string) {
	if url = us[index]; strings.HasSuffix(url, "/") {
		url += name
	}
	return
}

// MarshalBencode implements the interface bencode.Marshaler.
func (us URLList) MarshalBencode() (b []byte, err error) {
	return bencode.EncodeBytes([]string(us))
}

// UnmarshalBencode implements the interface bencode.Unmarshaler.
func (us *URLList) UnmarshalBencode(b []byte) (err error) {
	v, err := bencode.DecodeValue(b)
	if err != nil {
		return
	}

	switch vs := v.(type) {
	case bencode.String:
		*us = URLList{string(vs)}

	case bencode.List:
		urls := make(URLList, vs.Len())
		for i := range urls {
			s, ok := vs.Index(i).(bencode.String)
			if !ok {
				return errors.New("the element of 'url-list' is not string")
			}
			urls[i] = string(s)
		}
		*us = urls

	default:
		return fmt.Errorf("invalid 'url-list' type %s", v.Kind())
	}

	return
}

// MetaInfo represents the .torrent file.
type MetaInfo struct {
	InfoBytes    bencode.RawMessage `bencode:"info"`                    // BEP 3
	Announce     string             `bencode:"announce,omitempty"`      // BEP 3
	AnnounceList AnnounceList       `bencode:"announce-list,omitempty"` // BEP 12
	Nodes        []HostAddr         `bencode:"nodes,omitempty"`         // BEP 5
	URLList      URLList            `bencode:"url-list,omitempty"`      // BEP 19

	// CreationDate is the creation time of the torrent, in standard UNIX epoch
	// format (seconds since 1-Jan-1970 00:00:00 UTC).
	CreationDate int64 `bencode:"creation date,omitempty"`
	// Comment is the free-form textual comments of the author.
	Comment string `bencode:"comment,omitempty"`
	// CreatedBy is name and version of the program used to create the .torrent.
	CreatedBy string `bencode:"created by,omitempty"`
	// Encoding is the string encoding format used to generate the pieces part
	// of the info dictionary in the .torrent metafile.
	Encoding string `bencode:"encoding,omitempty"`
}

// Load loads a MetaInfo from an io.Reader.
func Load(r io.Reader) (mi MetaInfo, err error) {
	data, err := io.ReadAll(r)
	if err == nil {
		mi, err = LoadFromBytes(data)
	}
	return
}

// LoadFromBytes loads a MetaInfo from the bencoded data.
func LoadFromBytes(data []byte) (mi MetaInfo, err error) {
	if err = bencode.DecodeBytes(data, &mi); err != nil {
		return
	} else if len(mi.InfoBytes) == 0 {
		err = errors.New("metainfo: missing the info dictionary")
	}
	return
}

// LoadFromFile loads a MetaInfo from a file.
func LoadFromFile(filename string) (mi MetaInfo, err error) {
	f, err := os.Open(filename)
	if err == nil {
		defer f.Close()
		mi, err = Load(f)
	}
	return
}

// Announces returns all the announces.
func (mi MetaInfo) Announces() AnnounceList {
	if len(mi.AnnounceList) > 0 {
		return mi.AnnounceList
	} else if mi.Announce != "" {
		return [][]string{{mi.Announce}}
	}
	return nil
}

// Write encodes the metainfo to w.
func (mi MetaInfo) Write(w io.Writer) error {
	return bencode.NewEncoder(w).Encode(mi)
}

// InfoHash returns the hash of the info, which is computed over
// the original bytes of the info dictionary.
func (mi MetaInfo) InfoHash() Hash {
	return NewHashFromBytes(mi.InfoBytes)
}

// Info parses the InfoBytes to the Info.
func (mi MetaInfo) Info() (info Info, err error) {
	err = bencode.DecodeBytes(mi.InfoBytes, &info)
	return
}

// SetInfo encodes info and stores it as the InfoBytes.
func (mi *MetaInfo) SetInfo(info Info) (err error) {
	b, err := bencode.EncodeBytes(info)
	if err == nil {
		mi.InfoBytes = b
	}
	return
}
