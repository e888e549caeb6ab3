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
)

// Info is the "info" dictionary of the metainfo.
type Info struct {
	// Name is the name of the file in the single file case.
	// Or, it is the name of the directory in the muliple file case.
	Name string `bencode:"name"` // BEP 3

	// PieceLength is the number of bytes in each piece.
	PieceLength int64 `bencode:"piece length"` // BEP 3

	// Pieces is the concatenation of all 20-byte SHA1 hash values,
	// one per piece.
	Pieces Hashes `bencode:"pieces"` // BEP 3

	// Length is the length of the file in the single file case.
	// It's mutually exclusive with Files.
	Length int64 `bencode:"length,omitempty"` // BEP 3

	// Files is the list of all the files in the multi-file case,
	// which are treated as a single stream concatenated in order.
	// It's mutually exclusive with Length.
	Files []File `bencode:"files,omitempty"` // BEP 3

	// Private is set to 1 to disable DHT and PEX for the torrent.
	Private bool `bencode:"private,omitempty"` // BEP 27
}

// IsDir reports whether the name is a directory, that's, the file is not
// a single file.
func (info Info) IsDir() bool { return len(info.Files) != 0 }

// CountPieces returns the number of the pieces.
func (info Info) CountPieces() int { return len(info.Pieces) }

// TotalLength returns the total length of the torrent file.
func (info Info) TotalLength() (ret int64) {
	if !info.IsDir() {
		return info.Length
	}

	for _, fi := range info.Files {
		ret += fi.Length
	}
	return
}

// Validate checks the layout of the info, such as the mutual exclusion
// of length and files and the number of pieces.
func (info Info) Validate() error {
	switch {
	case info.Name == "":
		return errors.New("missing the name of info")
	case info.PieceLength <= 0:
		return fmt.Errorf("invalid piece length %d", info.PieceLength)
	case info.Length != 0 && len(info.Files) != 0:
		return errors.New("info has both length and files")
	case info.Length < 0:
		return fmt.Errorf("invalid file length %d", info.Length)
	}

	for i, f := range info.Files {
		if f.Length < 0 {
			return fmt.Errorf("invalid length %d of file #%d", f.Length, i)
		} else if len(f.Paths) == 0 {
			return fmt.Errorf("missing the path of file #%d", i)
		}
	}

	total := info.TotalLength()
	if expect := (total + info.PieceLength - 1) / info.PieceLength; int64(len(info.Pieces)) != expect {
		return fmt.Errorf("expect %d pieces for length %d, but got %d",
			expect, total, len(info.Pieces))
	}

	return nil
}

// PieceOffset returns the total offset of the piece.
//
// offset is the offset relative to the beginning of the piece.
func (info Info) PieceOffset(index, offset uint32) int64 {
	return int64(index)*info.PieceLength + int64(offset)
}

// GetFileByOffset returns the file and the offset in it by the total offset.
//
// If fileOffset is equal to file.Length, it means to reach the end.
func (info Info) GetFileByOffset(offset int64) (file File, fileOffset int64, err error) {
	if offset < 0 || offset > info.TotalLength() {
		err = fmt.Errorf("offset '%d' is out of the range [0, %d]",
			offset, info.TotalLength())
		return
	}

	if !info.IsDir() {
		return File{Length: info.Length, Paths: []string{info.Name}}, offset, nil
	}

	fileOffset = offset
	last := len(info.Files) - 1
	for i, f := range info.Files {
		if fileOffset < f.Length || (i == last && fileOffset == f.Length) {
			return f, fileOffset, nil
		}
		fileOffset -= f.Length
	}

	return
}

// AllFiles returns all the files.
//
// Notice: for the single file, the Path is nil.
func (info Info) AllFiles() []File {
	if info.IsDir() {
		return info.Files
	}
	return []File{{Length: info.Length}}
}
