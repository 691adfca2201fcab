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

package crc

import "testing"

// TestCheckValue verifies against the CRC-32/BZIP2 catalogue check
// value for the standard "123456789" test string.
func TestCheckValue(t *testing.T) {
	d := NewDigest()
	d.Update([]byte("123456789"))

	if got := d.Sum32(); got != 0xFC891918 {
		t.Fatalf("expected 0xFC891918, got %#x", got)
	}
}

func TestEmptyInput(t *testing.T) {
	d := NewDigest()

	if got := d.Sum32(); got != 0x00000000 {
		t.Fatalf("expected 0x00000000 for empty input, got %#x", got)
	}
}

func TestSingleByte(t *testing.T) {
	d := NewDigest()
	d.Update([]byte("a"))

	if got := d.Sum32(); got != 0x19939B6B {
		t.Fatalf("expected 0x19939b6b, got %#x", got)
	}
}

// TestIncrementalMatchesBulk checks that feeding bytes across multiple
// Update calls yields the same digest as one bulk call, since the
// reader may hand a block's bytes to the digest in RLE-driven chunks.
func TestIncrementalMatchesBulk(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")

	bulk := NewDigest()
	bulk.Update(data)

	incremental := NewDigest()
	for _, b := range data {
		incremental.Update([]byte{b})
	}

	if bulk.Sum32() != incremental.Sum32() {
		t.Fatalf("incremental digest %#x != bulk digest %#x", incremental.Sum32(), bulk.Sum32())
	}
}

// TestComposeBlockCRCOrderMatters verifies the fold is order-sensitive:
// this is what forces the writer to combine block CRCs in emission
// order rather than completion order.
func TestComposeBlockCRCOrderMatters(t *testing.T) {
	a := uint32(0x11111111)
	b := uint32(0x22222222)

	forward := ComposeBlockCRC(ComposeBlockCRC(0, a), b)
	backward := ComposeBlockCRC(ComposeBlockCRC(0, b), a)

	if forward == backward {
		t.Fatalf("expected order-dependent composition, got equal results %#x", forward)
	}
}

// TestComposeBlockCRCRoundTrip checks the fold against the exact formula
// a decoder uses to rebuild the whole-file CRC: fileCRC = (fileCRC<<1 |
// fileCRC>>31) ^ blockCRC.
func TestComposeBlockCRCRoundTrip(t *testing.T) {
	fileCRC := uint32(0)
	blockCRCs := []uint32{0xDEADBEEF, 0x12345678, 0x00000000, 0xFFFFFFFF}

	for _, bc := range blockCRCs {
		fileCRC = ComposeBlockCRC(fileCRC, bc)
	}

	want := uint32(0)
	for _, bc := range blockCRCs {
		want = ((want << 1) | (want >> 31)) ^ bc
	}

	if fileCRC != want {
		t.Fatalf("expected %#x, got %#x", want, fileCRC)
	}
}
