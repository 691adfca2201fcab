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

// Package compress implements the block-at-a-time bzip2 primitive the
// pipeline treats as a pluggable BlockCompressor: move-to-front,
// zero-run encoding and canonical Huffman coding over a Burrows-Wheeler
// transformed block.
package compress

// mtfListLength is the node count of every bucket but the first, the
// same split the teacher's MTFT.go uses for its 256-symbol alphabet.
// Here the symbol count is the block's pruned alphabet (1..256 values,
// not always the full byte range), so the bucket count is derived from
// it instead of fixed at 16.
const mtfListLength = 17

// mtfResetThreshold bounds how far bucket 0 (the most-recently-used
// run) is allowed to grow before the buckets are rebuilt from scratch;
// past this point a linear rebalance is cheaper than letting bucket 0's
// linear scans grow unbounded.
const mtfResetThreshold = 64

// mtfNode is one entry in the recency list: a doubly-linked list node
// split across fixed-size buckets so a move-to-front update only walks
// the bucket containing the symbol, not the whole alphabet.
type mtfNode struct {
	previous, next *mtfNode
	value          byte
}

// mtfState is the move-to-front recency list used to turn the BWT
// output's byte values into small, locally-correlated ranks before
// zero-run encoding. It is grounded on the teacher's transform/MTFT.go
// (its Forward/balanceLists bucket-list technique), generalized from a
// fixed 256-symbol alphabet with 16 fixed buckets to bzip2's per-block
// pruned alphabet (whatever subset of byte values the block's
// two-level bitmap declares), whose size varies block to block, so the
// bucket count is derived from len(alphabet) rather than fixed. Unlike
// MTFT, which is reused transform-wide and so must support resetting
// its values between calls, mtfState is built fresh per block and only
// ever runs forward once, so there is no value-reset path to carry.
type mtfState struct {
	heads   []*mtfNode
	lengths []int
	buckets []int // buckets[denseIdx] = index of the bucket holding that symbol
	anchor  *mtfNode
	idx     [256]int // idx[byteValue] = dense index into buckets, -1 if unused in this block
}

// newMTFState builds the initial recency list in alphabet order (the
// same order bzip2's two-level bitmap declares): one bucket of a single
// node (the most-recently-used slot) plus as many mtfListLength-sized
// buckets as the remaining symbols need. Mirrors MTFT.initLists, sized
// to the block's alphabet instead of to the full byte range.
func newMTFState(alphabet []byte) *mtfState {
	n := len(alphabet)
	bucketCount := 1

	if n > 1 {
		bucketCount += (n-2)/mtfListLength + 1
	}

	s := &mtfState{
		heads:   make([]*mtfNode, bucketCount),
		lengths: make([]int, bucketCount),
		buckets: make([]int, n),
	}

	for i := range s.idx {
		s.idx[i] = -1
	}

	nodes := make([]*mtfNode, n)

	for i, b := range alphabet {
		nodes[i] = &mtfNode{value: b}
		s.idx[b] = i
	}

	// Fake end anchor so every node in every bucket has a next.
	anchor := &mtfNode{}
	s.anchor = anchor

	for i := 0; i < n; i++ {
		if i > 0 {
			nodes[i].previous = nodes[i-1]
		}

		if i+1 < n {
			nodes[i].next = nodes[i+1]
		} else {
			nodes[i].next = anchor
		}
	}

	if n > 0 {
		anchor.previous = nodes[n-1]
		s.heads[0] = nodes[0]
		s.lengths[0] = 1
		s.buckets[0] = 0
	}

	bucketIdx := 0

	for i := 1; i < n; i++ {
		if (i-1)%mtfListLength == 0 {
			bucketIdx++
			s.heads[bucketIdx] = nodes[i]
			s.lengths[bucketIdx] = 0
		}

		s.lengths[bucketIdx]++
		s.buckets[i] = bucketIdx
	}

	return s
}

// rebalance recreates the bucket split (1 node in bucket 0, the rest in
// mtfListLength-sized buckets) from the list's current order, without
// touching node identity or values. Mirrors MTFT.balanceLists(false);
// there is no resetValues=true path here since a block's alphabet
// values never need renumbering mid-block.
func (s *mtfState) rebalance() {
	s.lengths[0] = 1
	p := s.heads[0].next

	for bucketIdx := 1; bucketIdx < len(s.heads); bucketIdx++ {
		s.heads[bucketIdx] = p
		s.lengths[bucketIdx] = 0

		for n := 0; n < mtfListLength && p != s.anchor; n++ {
			s.lengths[bucketIdx]++
			s.buckets[s.idx[p.value]] = bucketIdx
			p = p.next
		}
	}
}

// encode returns the rank (0 = front of the list) of b and moves b to
// the front, touching only the bucket that contains b rather than the
// whole alphabet — the same tradeoff MTFT.Forward makes.
func (s *mtfState) encode(b byte) int {
	denseIdx := s.idx[b]
	bucketIdx := s.buckets[denseIdx]
	p := s.heads[bucketIdx]
	rank := 0

	for i := 0; i < bucketIdx; i++ {
		rank += s.lengths[i]
	}

	for p.value != b {
		p = p.next
		rank++
	}

	if rank == 0 {
		return 0
	}

	oldNext := p.next
	wasBucketHead := p == s.heads[bucketIdx]

	// Unlink p from its current position (the anchor node guarantees
	// p.next is never nil).
	p.previous.next = p.next
	p.next.previous = p.previous

	// Re-link p at the head of bucket 0.
	p.previous = nil
	p.next = s.heads[0]
	p.next.previous = p
	s.heads[0] = p

	if bucketIdx != 0 {
		if wasBucketHead {
			s.heads[bucketIdx] = oldNext
		}

		s.buckets[denseIdx] = 0

		if s.lengths[0] >= mtfResetThreshold {
			s.rebalance()
		} else {
			s.lengths[bucketIdx]--
			s.lengths[0]++
		}
	}

	return rank
}
