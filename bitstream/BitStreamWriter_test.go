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

package bitstream

import (
	"math/rand"
	"testing"

	"github.com/flanglet/mtbzip2-go/internal"
)

// bitReader is a minimal MSB-first reader used only to verify Writer's
// output in tests; production code never decodes its own bitstream.
type bitReader struct {
	data []byte
	pos  uint64 // bit position
}

func (r *bitReader) readBits(n uint) uint64 {
	var v uint64

	for i := uint(0); i < n; i++ {
		byteIdx := r.pos >> 3
		bitIdx := 7 - (r.pos & 7)
		bit := (r.data[byteIdx] >> bitIdx) & 1
		v = (v << 1) | uint64(bit)
		r.pos++
	}

	return v
}

func TestWriteBitsAligned(t *testing.T) {
	bs := internal.NewBufferStream()
	w, err := New(bs, 16384)

	if err != nil {
		t.Fatalf("New: %v", err)
	}

	w.WriteBits(0xFF, 8)
	w.WriteBits(0x00, 8)
	w.WriteBits(0xAB, 8)

	if w.Written() != 24 {
		t.Fatalf("expected 24 bits written, got %d", w.Written())
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out := bs.Bytes()

	if len(out) != 3 || out[0] != 0xFF || out[1] != 0x00 || out[2] != 0xAB {
		t.Fatalf("unexpected output bytes: %x", out)
	}
}

// TestBitConcatenation exercises spec property 3: writing a sequence of
// values with arbitrary bit widths must be readable back, in order, as
// the exact same sequence, regardless of byte alignment.
func TestBitConcatenation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	widths := make([]uint, 200)
	values := make([]uint64, 200)

	for i := range widths {
		width := uint(rng.Intn(64) + 1)
		widths[i] = width

		if width == 64 {
			values[i] = rng.Uint64()
		} else {
			values[i] = rng.Uint64() & ((uint64(1) << width) - 1)
		}
	}

	bs := internal.NewBufferStream()
	w, err := New(bs, 16384)

	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var totalBits uint64

	for i, width := range widths {
		w.WriteBits(values[i], width)
		totalBits += uint64(width)
	}

	if w.Written() != totalBits {
		t.Fatalf("expected %d bits written, got %d", totalBits, w.Written())
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r := &bitReader{data: bs.Bytes()}

	for i, width := range widths {
		got := r.readBits(width)

		if got != values[i] {
			t.Fatalf("value %d: expected %x, got %x (width %d)", i, values[i], got, width)
		}
	}
}

// TestCloseZeroPads checks that Close pads a partial trailing byte with
// zero bits rather than leaving garbage.
func TestCloseZeroPads(t *testing.T) {
	bs := internal.NewBufferStream()
	w, _ := New(bs, 16384)
	w.WriteBits(0x1, 3) // "001"

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out := bs.Bytes()

	if len(out) != 1 {
		t.Fatalf("expected 1 padded byte, got %d", len(out))
	}

	if out[0] != 0x20 { // "001" followed by five zero bits => 0b00100000
		t.Fatalf("expected 0x20, got %#x", out[0])
	}
}

func TestWriteArrayMisaligned(t *testing.T) {
	bs := internal.NewBufferStream()
	w, _ := New(bs, 16384)
	w.WriteBits(0x5, 4) // 4 leading bits, misaligns the cursor

	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	w.WriteArray(payload, uint(len(payload)*8))

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r := &bitReader{data: bs.Bytes()}

	if got := r.readBits(4); got != 0x5 {
		t.Fatalf("expected leading nibble 0x5, got %x", got)
	}

	for _, want := range payload {
		if got := r.readBits(8); got != uint64(want) {
			t.Fatalf("expected byte %#x, got %#x", want, got)
		}
	}
}

func TestClosedStreamRejectsWrites(t *testing.T) {
	bs := internal.NewBufferStream()
	w, _ := New(bs, 16384)
	w.WriteBits(0x1, 1)

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("expected WriteArray on closed stream to panic")
		}
	}()

	w.WriteArray([]byte{0x1}, 8)
}
