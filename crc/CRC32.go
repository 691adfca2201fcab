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

// Package crc implements the MSB-first, non-reflected CRC-32 variant
// bzip2 uses for both per-block and whole-file checksums.
package crc

// table is bzip2's CRC-32 polynomial table (0x04C11DB7, MSB-first, no
// input/output reflection) — distinct from the reflected IEEE CRC-32
// the standard library's hash/crc32 package implements, so it is built
// by hand rather than reused from there.
var table [256]uint32

func init() {
	const poly = 0x04C11DB7

	for i := 0; i < 256; i++ {
		crc := uint32(i) << 24

		for bit := 0; bit < 8; bit++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc = crc << 1
			}
		}

		table[i] = crc
	}
}

// Digest accumulates a bzip2-style block CRC over the pre-RLE bytes of
// one block. Create it with NewDigest: the zero value starts from a
// zero register, not bzip2's all-ones seed.
type Digest struct {
	crc uint32
}

// NewDigest returns a Digest initialized to bzip2's all-ones seed.
func NewDigest() *Digest {
	return &Digest{crc: 0xFFFFFFFF}
}

// Reset returns the digest to its initial state, for reuse across
// blocks without reallocating.
func (d *Digest) Reset() {
	d.crc = 0xFFFFFFFF
}

// Update folds len(p) bytes into the running CRC.
func (d *Digest) Update(p []byte) {
	crc := d.crc

	for _, b := range p {
		crc = (crc << 8) ^ table[byte(crc>>24)^b]
	}

	d.crc = crc
}

// Sum32 returns the finalized CRC-32 of all bytes passed to Update so
// far, without mutating the digest (more bytes may still be added).
func (d *Digest) Sum32() uint32 {
	return ^d.crc
}

// ComposeBlockCRC folds one block's finalized CRC into the running
// whole-file CRC, in block emission order: fileCRC' = rotl1(fileCRC) xor
// blockCRC. This matches the fold a bzip2 decoder reverses
// (fileCRC = (fileCRC<<1 | fileCRC>>31) ^ blockCRC) and is why block
// CRCs must be combined in stream order even when blocks were computed
// out of order.
func ComposeBlockCRC(fileCRC uint32, blockCRC uint32) uint32 {
	return ((fileCRC << 1) | (fileCRC >> 31)) ^ blockCRC
}
