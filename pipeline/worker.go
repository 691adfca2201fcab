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
	mtbzip2 "github.com/flanglet/mtbzip2-go"
	"github.com/flanglet/mtbzip2-go/compress"
)

// Worker repeatedly pulls a filled block from a Reader, compresses it
// with a BlockCompressor, and submits the result to a Writer keyed by
// block id. Workers carry no shared state: any number may run
// concurrently against the same Reader and Writer, and in any order —
// the Writer alone is responsible for restoring block order.
type Worker struct {
	reader     *Reader
	writer     *Writer
	compressor compress.BlockCompressor
	listeners  []mtbzip2.Listener
}

// NewWorker returns a Worker that drains reader and feeds writer.
func NewWorker(reader *Reader, writer *Writer, compressor compress.BlockCompressor, listeners ...mtbzip2.Listener) *Worker {
	return &Worker{reader: reader, writer: writer, compressor: compressor, listeners: listeners}
}

// Run processes blocks until the Reader reports end-of-stream, then
// returns nil. It returns the first compression error encountered.
func (w *Worker) Run() error {
	for {
		blk, ok := w.reader.Get()

		if !ok {
			return nil
		}

		data := make([]byte, blk.Size)
		copy(data, blk.Data[:blk.Size])
		id, blockCRC := blk.ID, blk.CRC

		w.reader.Put(blk)

		payload, bits, err := w.compressor.Compress(data, blockCRC)

		if err != nil {
			ioErr := &mtbzip2.IOError{Msg: "block compression failed: " + err.Error(), Code: mtbzip2.ERR_PROCESS_BLOCK}
			w.writer.Abort(ioErr)

			// Keep handing buffers back so the Reader can reach the end of
			// its input and every pipeline goroutine can be joined.
			for blk, ok := w.reader.Get(); ok; blk, ok = w.reader.Get() {
				w.reader.Put(blk)
			}

			return ioErr
		}

		w.notify(mtbzip2.EVT_BLOCK_COMPRESSED, id, int64(bits), blockCRC)
		w.writer.Add(&CompressedBlock{Payload: payload, Bits: bits, CRC: blockCRC, ID: id})
	}
}

func (w *Worker) notify(evtType int, id uint64, size int64, crcVal uint32) {
	if len(w.listeners) == 0 {
		return
	}

	evt := mtbzip2.NewEvent(evtType, id, size, crcVal)

	for _, l := range w.listeners {
		l.ProcessEvent(evt)
	}
}
