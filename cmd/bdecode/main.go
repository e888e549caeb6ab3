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

// Command bdecode decodes the bencoded files and prints them as a tree.
//
//	bdecode [flags] [file ...]
//
// If no file is given, it reads the data from stdin.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/xgfone/bencoding/bencode"
	"github.com/xgfone/bencoding/metainfo"
	"github.com/xgfone/bencoding/tracker/httptracker"
)

type options struct {
	Strict   bool
	MaxDepth int
	Torrent  bool
	Tracker  bool
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("bdecode: ")
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

func run(args []string, stdin io.Reader, stdout io.Writer) int {
	var opts options
	fs := flag.NewFlagSet("bdecode", flag.ContinueOnError)
	fs.BoolVar(&opts.Strict, "strict", false, "reject the trailing data after the value")
	fs.IntVar(&opts.MaxDepth, "max-depth", bencode.DefaultMaxDepth, "the maximum nesting depth of lists and dicts")
	fs.BoolVar(&opts.Torrent, "torrent", false, "print the summary of the torrent metainfo")
	fs.BoolVar(&opts.Tracker, "tracker", false, "print the summary of the tracker response")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fs.NArg() == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			log.Printf("fail to read stdin: %s", err)
			return 1
		}
		if err = process(stdout, "<stdin>", data, opts); err != nil {
			log.Printf("<stdin>: %s", err)
			return 1
		}
		return 0
	}

	code := 0
	for _, filename := range fs.Args() {
		data, err := os.ReadFile(filename)
		if err == nil {
			err = process(stdout, filename, data, opts)
		}
		if err != nil {
			log.Printf("%s: %s", filename, err)
			code = 1
		}
	}
	return code
}

func process(w io.Writer, name string, data []byte, opts options) error {
	dec := bencode.NewDecoder(data)
	dec.MaxDepth = opts.MaxDepth

	v, err := dec.Decode()
	if err != nil {
		return err
	} else if dec.More() {
		if opts.Strict {
			return fmt.Errorf("%w: %d bytes after offset %d",
				bencode.ErrTrailingData, dec.Len()-dec.Offset(), dec.Offset())
		}
		log.Printf("%s: ignore %d trailing bytes after offset %d",
			name, dec.Len()-dec.Offset(), dec.Offset())
	}

	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "# %s\n", name)
	printValue(buf, v, 0)

	if opts.Torrent {
		if err = printTorrent(buf, data[:dec.Offset()]); err != nil {
			return err
		}
	}
	if opts.Tracker {
		if err = printTracker(buf, data[:dec.Offset()]); err != nil {
			return err
		}
	}

	_, err = buf.WriteTo(w)
	return err
}

func printTorrent(w io.Writer, data []byte) error {
	mi, err := metainfo.LoadFromBytes(data)
	if err != nil {
		return fmt.Errorf("invalid torrent: %w", err)
	}

	info, err := mi.Info()
	if err != nil {
		return fmt.Errorf("invalid torrent info: %w", err)
	}

	fmt.Fprintf(w, "info hash: %s\n", mi.InfoHash().HexString())
	fmt.Fprintf(w, "name: %s\n", info.Name)
	fmt.Fprintf(w, "total length: %d\n", info.TotalLength())
	fmt.Fprintf(w, "piece length: %d\n", info.PieceLength)
	fmt.Fprintf(w, "pieces: %d\n", info.CountPieces())
	for _, f := range info.AllFiles() {
		fmt.Fprintf(w, "file: %s (%d)\n", f.Path(info), f.Length)
	}
	for _, announce := range mi.Announces().Unique() {
		fmt.Fprintf(w, "announce: %s\n", announce)
	}
	if err = info.Validate(); err != nil {
		log.Printf("torrent '%s' is invalid: %s", info.Name, err)
	}
	return nil
}

func printTracker(w io.Writer, data []byte) error {
	resp, err := httptracker.ParseResponse(data)
	if err != nil {
		return fmt.Errorf("invalid tracker response: %w", err)
	}

	if reason, ok := resp.FailureReason(); ok {
		fmt.Fprintf(w, "failure reason: %s\n", reason)
		return nil
	}

	if msg, ok := resp.WarningMessage(); ok {
		fmt.Fprintf(w, "warning message: %s\n", msg)
	}
	if interval, ok := resp.Interval(); ok {
		fmt.Fprintf(w, "interval: %d\n", interval)
	}
	if interval, ok := resp.MinInterval(); ok {
		fmt.Fprintf(w, "min interval: %d\n", interval)
	}
	if n, ok := resp.Complete(); ok {
		fmt.Fprintf(w, "complete: %d\n", n)
	}
	if n, ok := resp.Incomplete(); ok {
		fmt.Fprintf(w, "incomplete: %d\n", n)
	}

	var ar httptracker.AnnounceResponse
	if err = bencode.DecodeBytes(data, &ar); err != nil {
		return fmt.Errorf("invalid announce response: %w", err)
	}
	for _, p := range ar.Peers {
		fmt.Fprintf(w, "peer: %s:%d\n", p.IP, p.Port)
	}
	for _, p := range ar.Peers6 {
		fmt.Fprintf(w, "peer6: [%s]:%d\n", p.IP, p.Port)
	}
	return nil
}
