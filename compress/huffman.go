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
	"container/heap"
	"sort"
)

// hNode is one node of a Huffman merge tree: a leaf (sym >= 0) or an
// internal node joining two children. seq breaks freq ties in FIFO
// insertion order so the resulting lengths are a pure function of the
// input frequency table, not of map/goroutine iteration order.
type hNode struct {
	freq        int
	sym         int
	seq         int
	left, right *hNode
}

type nodeHeap []*hNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].freq != h[j].freq {
		return h[i].freq < h[j].freq
	}
	return h[i].seq < h[j].seq
}
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)   { *h = append(*h, x.(*hNode)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// rawLengths builds unrestricted-depth Huffman code lengths from a
// frequency table. Symbols with zero frequency still get a code (a
// weight of 1 is substituted) since bzip2's delta-coded length table
// must cover the whole alphabet regardless of use.
func rawLengths(freqs []int) []int {
	n := len(freqs)
	lengths := make([]int, n)

	if n == 0 {
		return lengths
	}

	h := make(nodeHeap, 0, n)
	seq := 0

	for i, f := range freqs {
		w := f
		if w == 0 {
			w = 1
		}
		h = append(h, &hNode{freq: w, sym: i, seq: seq})
		seq++
	}

	heap.Init(&h)

	if h.Len() == 1 {
		lengths[h[0].sym] = 1
		return lengths
	}

	for h.Len() > 1 {
		a := heap.Pop(&h).(*hNode)
		b := heap.Pop(&h).(*hNode)
		parent := &hNode{freq: a.freq + b.freq, sym: -1, seq: seq, left: a, right: b}
		seq++
		heap.Push(&h, parent)
	}

	root := heap.Pop(&h).(*hNode)

	var walk func(node *hNode, depth int)
	walk = func(node *hNode, depth int) {
		if node.sym >= 0 {
			if depth == 0 {
				depth = 1
			}
			lengths[node.sym] = depth
			return
		}
		walk(node.left, depth+1)
		walk(node.right, depth+1)
	}

	walk(root, 0)
	return lengths
}

// limitLengths clamps raw Huffman lengths to maxLen and, if clamping
// left the implied code over-subscribed (Kraft sum > 1), lengthens the
// shortest in-use codes one step at a time until the code is valid
// again. Simpler than an exact length-limited construction (e.g.
// package-merge) but always produces a decodable canonical code.
func limitLengths(raw []int, maxLen int) []byte {
	n := len(raw)
	blCount := make([]int, maxLen+1)

	for _, l := range raw {
		if l > maxLen {
			l = maxLen
		}
		blCount[l]++
	}

	full := uint64(1) << uint(maxLen)
	kraft := uint64(0)

	for l := 1; l <= maxLen; l++ {
		kraft += uint64(blCount[l]) << uint(maxLen-l)
	}

	for kraft > full {
		l := 1

		for l < maxLen && blCount[l] == 0 {
			l++
		}

		blCount[l]--
		blCount[l+1]++
		kraft -= uint64(1) << uint(maxLen-l-1)
	}

	type item struct {
		idx int
		raw int
	}

	items := make([]item, n)

	for i, l := range raw {
		items[i] = item{idx: i, raw: l}
	}

	sort.SliceStable(items, func(a, b int) bool { return items[a].raw < items[b].raw })

	out := make([]byte, n)
	pos := 0

	for l := 1; l <= maxLen; l++ {
		for c := 0; c < blCount[l]; c++ {
			out[items[pos].idx] = byte(l)
			pos++
		}
	}

	return out
}

// BuildLengths returns a canonical Huffman code length (1..maxLen) for
// every symbol index in freqs, including unused ones.
func BuildLengths(freqs []int, maxLen int) []byte {
	raw := rawLengths(freqs)
	return limitLengths(raw, maxLen)
}

// canonicalWidth must be at least the largest code length CanonicalCodes
// is ever asked to assign (maxHuffmanLength); it mirrors the 32-bit
// accumulator the standard library's own bzip2 decoder builds its
// Huffman tree against.
const canonicalWidth = 32

// CanonicalCodes assigns canonical codes from a length table: symbols
// are ordered by (length, symbol index) and processed longest-first,
// each one claiming the next available slot of a canonicalWidth-bit
// left-justified counter before the counter advances by one unit at
// that slot's own depth. This is the construction compress/bzip2's
// newHuffmanTree uses to rebuild a decode tree from lengths alone with
// no codes transmitted on the wire. That decoder takes its tree's
// zero-bit branch when it reads a 1 from the stream, so each code is
// emitted as the bitwise complement, within its own length, of the slot
// it claimed; the resulting table is the one the shortest-first
// assignment (the textbook DEFLATE presentation) produces.
func CanonicalCodes(lengths []byte) []uint32 {
	n := len(lengths)

	if n == 0 {
		return nil
	}

	order := make([]int, n)

	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool { return lengths[order[a]] < lengths[order[b]] })

	codes := make([]uint32, n)
	var acc uint32
	length := canonicalWidth

	for i := n - 1; i >= 0; i-- {
		s := order[i]
		l := int(lengths[s])

		if length > l {
			length = l
		}

		codes[s] = ^acc >> uint(canonicalWidth-length)
		acc += 1 << uint(canonicalWidth-length)
	}

	return codes
}
