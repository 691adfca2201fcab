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

// Package pipeline wires a Reader, a pool of Workers and a Writer into
// the parallel block-at-a-time compressor: the Reader slices RLE-1'd
// input into blocks and hands them to Workers through a bounded
// free-pool/busy-queue pair, Workers compress blocks independently and
// in any order, and the Writer reassembles them in block-id order onto
// a single bit-exact output stream.
package pipeline

// InputBlock is a reusable buffer owned by the Reader's free pool. Data
// is allocated once at pool-creation time and reused across the whole
// run; Size is the number of valid bytes currently held.
type InputBlock struct {
	Data []byte
	Size int
	CRC  uint32
	ID   uint64
}

// CompressedBlock is one Worker's output: a finished bzip2 block
// payload, its exact bit length, and the identity it must be replayed
// under by the Writer. Workers hand these to Writer.Add; the Writer
// buffers them in its pending map, keyed by ID, until it is their turn
// to be emitted in order.
type CompressedBlock struct {
	Payload []byte
	Bits    uint64
	CRC     uint32
	ID      uint64
}
