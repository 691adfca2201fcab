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

package pipeline

import (
	"io"

	"golang.org/x/sync/errgroup"

	mtbzip2 "github.com/flanglet/mtbzip2-go"
	"github.com/flanglet/mtbzip2-go/bitstream"
	"github.com/flanglet/mtbzip2-go/compress"
)

// bitstreamBufferSize is the byte-buffer size the file-level bitstream
// Writer flushes through; unrelated to block size.
const bitstreamBufferSize = 64 * 1024

// Compress runs the whole parallel pipeline: a Reader slices input into
// RLE-1'd blocks, numWorkers Workers compress them concurrently in any
// order, and a Writer reassembles them in order onto output as a single
// bzip2-compatible stream. blockSize100k is bzip2's block-size class
// (1..9); numWorkers must be at least 1. The free pool is sized
// numWorkers+2 so every Worker, plus the block the Reader is currently
// filling and one more waiting in the busy queue, can always find a
// buffer without deadlocking.
func Compress(input io.Reader, output io.WriteCloser, blockSize100k, numWorkers int, listeners ...mtbzip2.Listener) error {
	if blockSize100k < 1 || blockSize100k > 9 {
		return &mtbzip2.IOError{Msg: "block size must be in [1..9]", Code: mtbzip2.ERR_BLOCK_SIZE}
	}

	if numWorkers < 1 {
		return &mtbzip2.IOError{Msg: "worker count must be at least 1", Code: mtbzip2.ERR_INVALID_PARAM}
	}

	notify(listeners, mtbzip2.EVT_COMPRESSION_START, 0, 0, 0)

	poolSize := numWorkers + 2
	reader := NewReader(input, blockSize100k, poolSize, listeners...)

	bw, err := bitstream.New(output, bitstreamBufferSize)

	if err != nil {
		return &mtbzip2.IOError{Msg: "failed to create output bitstream: " + err.Error(), Code: mtbzip2.ERR_CREATE_BITSTREAM}
	}

	writer := NewWriter(bw, listeners...)

	var readerGroup, writerGroup, workersGroup errgroup.Group

	readerGroup.Go(reader.Run)
	writerGroup.Go(func() error { return writer.Run(blockSize100k) })

	for i := 0; i < numWorkers; i++ {
		worker := NewWorker(reader, writer, compress.NewBzBlockCompressor(), listeners...)
		workersGroup.Go(worker.Run)
	}

	// closeBusy (called by reader.Run on every exit path, success or
	// error) and the abort path wired into Writer both guarantee
	// workersGroup and writerGroup drain even when the reader or a
	// worker errors, so every goroutine is joined before Compress
	// returns. errgroup.Group keeps the first error from each group
	// without a separate error variable per goroutine.
	readerErr := readerGroup.Wait()
	writer.SetLastBlock(reader.BlocksProduced())
	workersErr := workersGroup.Wait()
	writerErr := writerGroup.Wait()

	if readerErr != nil {
		return readerErr
	}

	if workersErr != nil {
		return workersErr
	}

	if writerErr != nil {
		return writerErr
	}

	notify(listeners, mtbzip2.EVT_COMPRESSION_END, 0, 0, 0)
	return nil
}

func notify(listeners []mtbzip2.Listener, evtType int, id uint64, size int64, crcVal uint32) {
	if len(listeners) == 0 {
		return
	}

	evt := mtbzip2.NewEvent(evtType, id, size, crcVal)

	for _, l := range listeners {
		l.ProcessEvent(evt)
	}
}
