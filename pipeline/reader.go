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
	"bytes"
	"io"

	mtbzip2 "github.com/flanglet/mtbzip2-go"
	"github.com/flanglet/mtbzip2-go/crc"
)

// rleMaxLiteral is the number of identical bytes bzip2's RLE-1 pass
// emits verbatim before switching to a length byte for any further
// repeats of the same value.
const rleMaxLiteral = 4

// rleMaxExtra is the largest extra-repeat count a single length byte
// can encode; a run longer than rleMaxLiteral+rleMaxExtra bytes is
// split across consecutive tuples.
const rleMaxExtra = 255

// Reader is the pipeline's single producer. It reads src, applies
// bzip2's RLE-1 pre-pass, slices the result into blocks of at most
// nblockMax bytes, computes each block's pre-RLE CRC, assigns
// monotonically increasing block ids, and hands filled blocks to
// Workers through a bounded free-pool/busy-queue pair.
type Reader struct {
	src       io.Reader
	queue     *blockQueue
	nblockMax int
	listeners []mtbzip2.Listener

	cur    *InputBlock
	digest *crc.Digest

	blocksDone uint64
}

// NewReader returns a Reader over src. blockSize100k is bzip2's block
// size class (1..9, each unit 100,000 bytes); poolSize is the number of
// reusable InputBlock buffers the free pool holds.
func NewReader(src io.Reader, blockSize100k, poolSize int, listeners ...mtbzip2.Listener) *Reader {
	capacity := 100000 * blockSize100k

	return &Reader{
		src:       src,
		queue:     newBlockQueue(poolSize, capacity),
		nblockMax: capacity - 19,
		digest:    crc.NewDigest(),
		listeners: listeners,
	}
}

// Get blocks until a filled block is available, or returns (nil, false)
// once the Reader has finished and every dispatched block has been
// drained. Called by Workers.
func (r *Reader) Get() (*InputBlock, bool) {
	return r.queue.get()
}

// Put returns a consumed buffer to the free pool. Called by Workers
// once they've copied a block's bytes out for compression.
func (r *Reader) Put(blk *InputBlock) {
	r.queue.put(blk)
}

// BlocksProduced returns the total number of blocks dispatched. Only
// meaningful after Run has returned.
func (r *Reader) BlocksProduced() uint64 {
	return r.blocksDone
}

// Run drains src to completion, applying the RLE-1 pass and dispatching
// blocks as they fill. It returns once the whole input has been
// consumed and the final (possibly partial) block has been dispatched.
func (r *Reader) Run() error {
	r.cur = r.queue.acquire()

	readBuf := make([]byte, 64*1024)

	ch := -1 // current run's byte value, -1 if no run is open
	runLen := 0
	extra := 0

	flush := func() {
		if runLen == 0 {
			return
		}

		b := byte(ch)
		tuple := make([]byte, 0, rleMaxLiteral+1)

		for i := 0; i < runLen; i++ {
			tuple = append(tuple, b)
		}

		if runLen == rleMaxLiteral {
			tuple = append(tuple, byte(extra))
		}

		r.emit(tuple, b, runLen+extra)

		runLen = 0
		extra = 0
		ch = -1
	}

	for {
		n, err := r.src.Read(readBuf)

		for i := 0; i < n; i++ {
			b := readBuf[i]

			switch {
			case ch == int(b) && runLen == rleMaxLiteral && extra < rleMaxExtra:
				extra++
			case ch == int(b) && runLen == rleMaxLiteral:
				flush()
				ch = int(b)
				runLen = 1
			case ch == int(b):
				runLen++
			default:
				flush()
				ch = int(b)
				runLen = 1
			}
		}

		if err == io.EOF {
			flush()
			r.finishBlock(true)
			r.queue.closeBusy()
			return nil
		}

		if err != nil {
			flush()
			r.finishBlock(true)
			r.queue.closeBusy()
			return &mtbzip2.IOError{Msg: "failed to read input: " + err.Error(), Code: mtbzip2.ERR_READ_FILE}
		}
	}
}

// emit writes one complete RLE-1 tuple into the current block,
// dispatching the current block first if the tuple would overflow it.
// origByte/origCount describe the original (pre-RLE) bytes the tuple
// represents, for the block's CRC.
func (r *Reader) emit(tuple []byte, origByte byte, origCount int) {
	if r.cur.Size+len(tuple) > r.nblockMax {
		r.finishBlock(false)
	}

	copy(r.cur.Data[r.cur.Size:], tuple)
	r.cur.Size += len(tuple)
	r.digest.Update(bytes.Repeat([]byte{origByte}, origCount))
}

// finishBlock dispatches the current block if it holds any bytes
// (returning it to the free pool untouched otherwise, e.g. for an empty
// input), then — unless final — acquires a fresh one.
func (r *Reader) finishBlock(final bool) {
	if r.cur.Size > 0 {
		r.cur.CRC = r.digest.Sum32()
		r.blocksDone++
		r.cur.ID = r.blocksDone
		r.notify(mtbzip2.EVT_BLOCK_DISPATCHED, r.cur.ID, int64(r.cur.Size), r.cur.CRC)
		r.queue.dispatch(r.cur)
	} else {
		r.queue.put(r.cur)
	}

	if !final {
		r.cur = r.queue.acquire()
		r.digest.Reset()
	}
}

func (r *Reader) notify(evtType int, id uint64, size int64, crcVal uint32) {
	if len(r.listeners) == 0 {
		return
	}

	evt := mtbzip2.NewEvent(evtType, id, size, crcVal)

	for _, l := range r.listeners {
		l.ProcessEvent(evt)
	}
}
