/*
Copyright 2011-2026 Frederic Langlet
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Command mtbzip2 is the CLI front-end for the parallel block-at-a-time
// bzip2 compressor: it parses flags, resolves input/output streams, and
// hands everything off to the pipeline package.
package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"

	mtbzip2 "github.com/flanglet/mtbzip2-go"
	"github.com/flanglet/mtbzip2-go/pipeline"
)

const appHeader = "mtbzip2-go 1.0"

// options collects the parsed CLI surface (spec.md §6).
type options struct {
	blockSize100k int
	jobs          int
	keep          bool
	verbose       bool
	inputs        []string
}

func main() {
	opts, err := parseArgs(os.Args[1:])

	if err != nil {
		fail(err)
	}

	if len(opts.inputs) == 0 {
		if err := pipeline.Compress(os.Stdin, nopWriteCloser{os.Stdout}, opts.blockSize100k, opts.jobs); err != nil {
			fail(err)
		}

		os.Exit(0)
	}

	if opts.verbose {
		fmt.Fprintln(os.Stderr, appHeader)
	}

	for _, path := range opts.inputs {
		if err := compressFile(path, opts); err != nil {
			fail(err)
		}
	}

	os.Exit(0)
}

// fail prints a single diagnostic line and exits 1, per spec.md §7: all
// fatal error kinds share one policy, regardless of their ERR_* code.
func fail(err error) {
	fmt.Fprintln(os.Stderr, "mtbzip2: "+err.Error())
	os.Exit(1)
}

// parseArgs follows the teacher's hand-rolled os.Args scanner
// (app/Kanzi.go's processCommandLine) rather than the stdlib flag
// package, since this CLI's short-flag surface (-1.."-9, -p N, -k) is a
// pbzip2-compatible shape flag.FlagSet cannot express directly.
func parseArgs(args []string) (options, error) {
	opts := options{blockSize100k: 9, jobs: defaultJobs()}

	for i := 0; i < len(args); i++ {
		arg := strings.TrimSpace(args[i])

		switch {
		case len(arg) == 2 && arg[0] == '-' && arg[1] >= '1' && arg[1] <= '9':
			opts.blockSize100k = int(arg[1] - '0')

		case arg == "-p":
			if i+1 >= len(args) {
				return opts, &mtbzip2.IOError{Msg: "-p requires an argument", Code: mtbzip2.ERR_INVALID_PARAM}
			}

			i++
			n, err := strconv.Atoi(args[i])

			if err != nil || n < 1 {
				return opts, &mtbzip2.IOError{Msg: "invalid worker count: " + args[i], Code: mtbzip2.ERR_INVALID_PARAM}
			}

			opts.jobs = n

		case arg == "-k":
			opts.keep = true

		case arg == "-v":
			opts.verbose = true

		case strings.HasPrefix(arg, "-") && arg != "-":
			return opts, &mtbzip2.IOError{Msg: "unknown option: " + arg, Code: mtbzip2.ERR_INVALID_PARAM}

		default:
			opts.inputs = append(opts.inputs, arg)
		}
	}

	return opts, nil
}

// defaultJobs auto-detects the local CPU count (spec.md §6), falling
// back to 1 if the OS query is somehow unavailable.
func defaultJobs() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}

	return 1
}

// compressFile compresses path to path+".bz2", refusing to clobber an
// existing output file (there is no -f/force flag in this CLI's
// surface) and removing the source afterward unless -k was given.
func compressFile(path string, opts options) error {
	in, err := os.Open(path)

	if err != nil {
		return &mtbzip2.IOError{Msg: "cannot open " + path + ": " + err.Error(), Code: mtbzip2.ERR_OPEN_FILE}
	}

	defer in.Close()

	outPath := path + ".bz2"
	out, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)

	if err != nil {
		if os.IsExist(err) {
			return &mtbzip2.IOError{Msg: outPath + " already exists, not overwritten", Code: mtbzip2.ERR_OVERWRITE_FILE}
		}

		return &mtbzip2.IOError{Msg: "cannot create " + outPath + ": " + err.Error(), Code: mtbzip2.ERR_CREATE_FILE}
	}

	var listeners []mtbzip2.Listener

	if opts.verbose {
		listeners = append(listeners, newProgressPrinter(path))
	}

	if err := pipeline.Compress(in, out, opts.blockSize100k, opts.jobs, listeners...); err != nil {
		os.Remove(outPath)
		return err
	}

	if !opts.keep {
		if err := os.Remove(path); err != nil {
			return &mtbzip2.IOError{Msg: "compressed but failed to remove source " + path + ": " + err.Error(), Code: mtbzip2.ERR_WRITE_FILE}
		}
	}

	return nil
}

// nopWriteCloser adapts an io.Writer the pipeline must not close (e.g.
// stdout) to io.WriteCloser.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
