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

import "path/filepath"

// File represents a file in the multi-file case.
type File struct {
	// Length is the length of the file in bytes.
	Length int64 `bencode:"length"` // BEP 3

	// Paths is the list of the path elements, the last of which is
	// the filename, such as "l4:dir14:dir28:file.exte" for "dir1/dir2/file.ext".
	Paths []string `bencode:"path"` // BEP 3
}

func (f File) String() string {
	return filepath.Join(f.Paths...)
}

// Path returns the path of the current.
func (f File) Path(info Info) string {
	if info.IsDir() {
		return f.String()
	}
	return info.Name
}

// Offset returns the offset of the current file from the start.
//
// Return -1 if the file is not in info.
func (f File) Offset(info Info) (ret int64) {
	path := f.Path(info)
	for _, file := range info.AllFiles() {
		if path == file.Path(info) {
			return
		}
		ret += file.Length
	}
	return -1
}
