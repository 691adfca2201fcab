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

package compress

import (
	"errors"

	"github.com/flanglet/mtbzip2-go/bitstream"
	"github.com/flanglet/mtbzip2-go/internal"
	"github.com/flanglet/mtbzip2-go/transform"
)

const (
	blockMagic       = 0x314159265359
	maxHuffmanLength = 20
	groupSize        = 50
	numHuffmanTrees  = 2 // format minimum; both trees are built identical, see below
)

// BlockCompressor turns one prepared (already RLE-1'd) block into a
// self-contained bzip2 block: block magic, block CRC, BWT origin
// pointer, symbol bitmap, Huffman tables and Huffman-coded data. The
// pipeline depends on this interface rather than a concrete type, so
// the block-compression primitive stays a pluggable collaborator.
type BlockCompressor interface {
	// Compress returns the block's compressed bitstream and its exact
	// bit length (which need not be a multiple of 8). blockCRC is the
	// pre-RLE CRC the Reader already computed for this block's bytes.
	Compress(data []byte, blockCRC uint32) (payload []byte, bits uint64, err error)
}

// BzBlockCompressor implements BlockCompressor with an in-module
// encoder: SA-IS Burrows-Wheeler transform, move-to-front, zero-run
// length encoding and a single canonical Huffman table (duplicated to
// satisfy the wire format's minimum of two selectable trees — see
// DESIGN.md for why a real multi-table optimizer is out of scope here).
type BzBlockCompressor struct{}

// NewBzBlockCompressor returns a ready-to-use BzBlockCompressor. It
// holds no state and is safe to share across worker goroutines.
func NewBzBlockCompressor() *BzBlockCompressor {
	return &BzBlockCompressor{}
}

// Compress implements BlockCompressor.
func (c *BzBlockCompressor) Compress(data []byte, blockCRC uint32) ([]byte, uint64, error) {
	if len(data) == 0 {
		return nil, 0, errors.New("compress: empty block")
	}

	bwt, origPtr, err := transform.ComputeBWT(data)

	if err != nil {
		return nil, 0, err
	}

	alphabet := usedAlphabet(bwt)
	mtf := newMTFState(alphabet)
	ranks := make([]int, len(bwt))

	for i, b := range bwt {
		ranks[i] = mtf.encode(b)
	}

	numSymbols := len(alphabet)
	eob := numSymbols + 1
	symbols := encodeZeroRuns(ranks, eob)

	freqs := make([]int, numSymbols+2)

	for _, s := range symbols {
		freqs[s]++
	}

	lengths := BuildLengths(freqs, maxHuffmanLength)
	codes := CanonicalCodes(lengths)

	buf := internal.NewBufferStream()
	w, err := bitstream.New(buf, 8192)

	if err != nil {
		return nil, 0, err
	}

	w.WriteBits(blockMagic, 48)
	w.WriteBits(uint64(blockCRC), 32)
	w.WriteBits(0, 1) // randomized: always false, per spec.md Non-goals
	w.WriteBits(uint64(origPtr), 24)

	writeSymbolBitmap(w, alphabet)

	w.WriteBits(numHuffmanTrees, 3)

	numGroups := (len(symbols) + groupSize - 1) / groupSize
	w.WriteBits(uint64(numGroups), 15)

	for i := 0; i < numGroups; i++ {
		w.WriteBits(0, 1) // selector MTF-unary: always tree 0, already at the front
	}

	for t := 0; t < numHuffmanTrees; t++ {
		writeLengthTable(w, lengths)
	}

	for _, s := range symbols {
		w.WriteBits(uint64(codes[s]), uint(lengths[s]))
	}

	bits := w.Written()

	if err := w.Close(); err != nil {
		return nil, 0, err
	}

	return buf.Bytes(), bits, nil
}

// usedAlphabet returns, in ascending order, every byte value present in
// data — the symbol set bzip2's two-level bitmap declares and the
// move-to-front list is seeded from.
func usedAlphabet(data []byte) []byte {
	var present [256]bool

	for _, b := range data {
		present[b] = true
	}

	alphabet := make([]byte, 0, 256)

	for i := 0; i < 256; i++ {
		if present[i] {
			alphabet = append(alphabet, byte(i))
		}
	}

	return alphabet
}

// writeSymbolBitmap writes bzip2's two-level 16x16 presence bitmap: one
// bit per 16-value range indicating whether any symbol in that range is
// used, followed by a 16-bit sub-bitmap for each range that is.
func writeSymbolBitmap(w *bitstream.Writer, alphabet []byte) {
	var present [256]bool

	for _, b := range alphabet {
		present[b] = true
	}

	var rangeBits uint64

	for r := 0; r < 16; r++ {
		for s := 0; s < 16; s++ {
			if present[16*r+s] {
				rangeBits |= 1 << uint(15-r)
				break
			}
		}
	}

	w.WriteBits(rangeBits, 16)

	for r := 0; r < 16; r++ {
		if rangeBits&(1<<uint(15-r)) == 0 {
			continue
		}

		var bits uint64

		for s := 0; s < 16; s++ {
			if present[16*r+s] {
				bits |= 1 << uint(15-s)
			}
		}

		w.WriteBits(bits, 16)
	}
}

// writeLengthTable writes one Huffman table as bzip2 expects it: a
// 5-bit base length followed by, for every symbol in order, a sequence
// of "continue" bits (1 = adjust, 0 = stop) each paired with a
// direction bit (0 = grow, 1 = shrink) walking the running length from
// the previous symbol's length to this one's.
func writeLengthTable(w *bitstream.Writer, lengths []byte) {
	cur := lengths[0]
	w.WriteBits(uint64(cur), 5)

	for _, target := range lengths {
		for cur != target {
			w.WriteBits(1, 1)

			if cur < target {
				w.WriteBits(0, 1)
				cur++
			} else {
				w.WriteBits(1, 1)
				cur--
			}
		}

		w.WriteBits(0, 1)
	}
}
