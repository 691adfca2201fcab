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
	"sync"

	mtbzip2 "github.com/flanglet/mtbzip2-go"
	"github.com/flanglet/mtbzip2-go/bitstream"
	"github.com/flanglet/mtbzip2-go/crc"
)

const (
	fileMagic = 0x425A68 // "BZh"
	eosMarker = 0x177245385090
)

// Writer owns the output bitstream. Workers submit finished blocks in
// whatever order they complete; the Writer buffers out-of-order
// arrivals in pending and emits them strictly in block-id order,
// folding each one's CRC into the running file CRC as it goes. One
// mutex and one condition variable guard pending and the "next id to
// emit" cursor.
type Writer struct {
	bw *bitstream.Writer

	mu       sync.Mutex
	cond     *sync.Cond
	pending  map[uint64]*CompressedBlock
	nextID   uint64
	lastID   uint64
	haveLast bool

	listeners []mtbzip2.Listener
	fileCRC   uint32

	aborted  bool
	abortErr error
}

// NewWriter returns a Writer over bw. The block-size class written as
// the file header's digit ('1'..'9') is passed to Run.
func NewWriter(bw *bitstream.Writer, listeners ...mtbzip2.Listener) *Writer {
	w := &Writer{
		bw:        bw,
		pending:   make(map[uint64]*CompressedBlock),
		nextID:    1,
		listeners: listeners,
	}
	w.cond = sync.NewCond(&w.mu)
	return w
}

// Add submits one compressed block, identified by its 1-based block id
// (blk.ID). Safe for concurrent use by any number of Workers, in any
// order.
func (w *Writer) Add(blk *CompressedBlock) {
	w.mu.Lock()
	w.pending[blk.ID] = blk
	w.mu.Unlock()
	w.cond.Broadcast()
}

// SetLastBlock records the total block count K once the Reader has
// finished producing. A K of 0 (empty input) lets Run proceed straight
// to the trailer.
func (w *Writer) SetLastBlock(k uint64) {
	w.mu.Lock()
	w.lastID = k
	w.haveLast = true
	w.mu.Unlock()
	w.cond.Broadcast()
}

// Abort records a fatal error from a Worker and wakes Run so it stops
// waiting for a block id that will never arrive. Only the first call
// has an effect.
func (w *Writer) Abort(err error) {
	w.mu.Lock()
	if !w.aborted {
		w.aborted = true
		w.abortErr = err
	}
	w.mu.Unlock()
	w.cond.Broadcast()
}

// Run writes the file header, drains every block in id order as it
// becomes available, and writes the end-of-stream marker and composed
// file CRC. It returns once the whole stream, including the trailer,
// has been written and the underlying sink closed.
func (w *Writer) Run(blockSize100k int) error {
	w.bw.WriteBits(fileMagic, 24)
	w.bw.WriteBits(uint64('0'+blockSize100k), 8)

	for {
		w.mu.Lock()

		for {
			if _, ok := w.pending[w.nextID]; ok {
				break
			}

			if w.aborted {
				break
			}

			if w.haveLast && w.nextID > w.lastID {
				break
			}

			w.cond.Wait()
		}

		if w.aborted {
			err := w.abortErr
			w.mu.Unlock()
			return err
		}

		blk, ok := w.pending[w.nextID]

		if !ok {
			w.mu.Unlock()
			break
		}

		delete(w.pending, w.nextID)
		id := w.nextID
		w.nextID++
		w.mu.Unlock()

		w.bw.WriteArray(blk.Payload, uint(blk.Bits))
		w.fileCRC = crc.ComposeBlockCRC(w.fileCRC, blk.CRC)
		w.notify(mtbzip2.EVT_BLOCK_EMITTED, id, int64(blk.Bits), blk.CRC)
	}

	w.bw.WriteBits(eosMarker, 48)
	w.bw.WriteBits(uint64(w.fileCRC), 32)
	return w.bw.Close()
}

func (w *Writer) notify(evtType int, id uint64, size int64, crcVal uint32) {
	if len(w.listeners) == 0 {
		return
	}

	evt := mtbzip2.NewEvent(evtType, id, size, crcVal)

	for _, l := range w.listeners {
		l.ProcessEvent(evt)
	}
}
